// Package jwttest signs tokens the way the HRIS auth service does, for tests that
// need verified claims without a running issuer.
package jwttest

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/jwt"
	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/require"
)

// Token signs an access token carrying c, valid for ttl.
func Token(t testing.TB, ja *jwtauth.JWTAuth, c jwt.Claims, ttl time.Duration) string {
	t.Helper()

	claims := map[string]interface{}{
		"user_id":    c.UserID,
		"company_id": c.CompanyID,
		"role":       c.Role,
		"type":       "access",
		"exp":        time.Now().Add(ttl).Unix(),
	}
	_, token, err := ja.Encode(claims)
	require.NoError(t, err)
	return token
}

// Context returns a context carrying a verified token for c, as jwtauth.Verifier leaves it.
func Context(t testing.TB, ja *jwtauth.JWTAuth, c jwt.Claims) context.Context {
	t.Helper()

	token, err := ja.Decode(Token(t, ja, c, time.Hour))
	require.NoError(t, err)
	return jwtauth.NewContext(context.Background(), token, nil)
}
