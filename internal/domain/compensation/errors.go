package compensation

import "errors"

var (
	ErrUnknownStrategy  = errors.New("unknown pay component strategy")
	ErrInvalidComponent = errors.New("invalid pay component")
)
