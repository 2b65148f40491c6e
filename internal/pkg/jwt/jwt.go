package jwt

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

var ErrMissingCompanyClaim = errors.New("company_id claim is missing or invalid")

// Claims are the token claims payroll relies on. Tokens are issued by the HRIS auth service.
type Claims struct {
	UserID    string
	CompanyID string
	Role      string
}

// NewAuth builds the HS256 verifier shared with the issuing service.
func NewAuth(secretKey string) *jwtauth.JWTAuth {
	return jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second))
}

// ClaimsFromContext reads the verified claims jwtauth.Verifier stored in ctx.
func ClaimsFromContext(ctx context.Context) (Claims, error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return Claims{}, fmt.Errorf("failed to extract claims from context: %w", err)
	}

	companyID, ok := claims["company_id"].(string)
	if !ok || companyID == "" {
		return Claims{}, ErrMissingCompanyClaim
	}

	userID, _ := claims["user_id"].(string)
	role, _ := claims["role"].(string)

	return Claims{UserID: userID, CompanyID: companyID, Role: role}, nil
}
