package thr

import "context"

type ThrService interface {
	ComputeForEmployee(ctx context.Context, req ComputeThrRequest) (ThrResponse, error)
}
