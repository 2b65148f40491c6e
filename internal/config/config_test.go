package config

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/loan"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/statutory"
	"github.com/cmlabs-hris/hris-payroll-go/internal/fixtures"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		Database: DatabaseConfig{Password: "secret"},
		JWT:      JWTConfig{Secret: "jwt-secret"},
		App:      AppConfig{LogLevel: "debug"},
		Payroll:  PayrollConfig{OverpaymentPolicy: loan.OverpaymentReject, Workers: 4},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"missing db password", func(c *Config) { c.Database.Password = "" }, true},
		{"missing jwt secret", func(c *Config) { c.JWT.Secret = "" }, true},
		{"unknown overpayment policy", func(c *Config) { c.Payroll.OverpaymentPolicy = "refund" }, true},
		{"clamp policy", func(c *Config) { c.Payroll.OverpaymentPolicy = loan.OverpaymentClamp }, false},
		{"zero workers", func(c *Config) { c.Payroll.Workers = 0 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLogLevel(t *testing.T) {
	c := validConfig()
	assert.Equal(t, slog.LevelDebug, c.LogLevel())

	c.App.LogLevel = "verbose"
	assert.Equal(t, slog.LevelInfo, c.LogLevel())
}

func TestLoadRulesets_Default(t *testing.T) {
	book, err := LoadRulesets("")
	require.NoError(t, err)

	rs, err := book.For(2024, 6)
	require.NoError(t, err)
	assert.Equal(t, fixtures.DefaultRuleset().Name, rs.Name)
}

func TestLoadRulesets_File(t *testing.T) {
	next := fixtures.DefaultRuleset()
	next.Name = "ID-2025"
	next.EffectiveFrom = next.EffectiveFrom.AddDate(1, 0, 0)

	raw, err := json.Marshal([]statutory.Ruleset{fixtures.DefaultRuleset(), next})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "rulesets.json")
	require.NoError(t, os.WriteFile(path, raw, 0o600))

	book, err := LoadRulesets(path)
	require.NoError(t, err)

	rs, err := book.For(2024, 12)
	require.NoError(t, err)
	assert.Equal(t, "ID-2024", rs.Name)

	rs, err = book.For(2025, 1)
	require.NoError(t, err)
	assert.Equal(t, "ID-2025", rs.Name)
	assert.True(t, rs.BPJS[statutory.ProgramHealth].Cap.Equal(fixtures.DefaultRuleset().BPJS[statutory.ProgramHealth].Cap))
}

func TestLoadRulesets_Errors(t *testing.T) {
	_, err := LoadRulesets(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "empty.json")
	require.NoError(t, os.WriteFile(path, []byte(`[]`), 0o600))
	_, err = LoadRulesets(path)
	assert.ErrorIs(t, err, statutory.ErrNoRulesetEffective)

	broken := fixtures.DefaultRuleset()
	broken.Overtime.HourlyDivisor = broken.Overtime.HourlyDivisor.Neg()
	raw, err := json.Marshal([]statutory.Ruleset{broken})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, raw, 0o600))
	_, err = LoadRulesets(path)
	assert.ErrorIs(t, err, statutory.ErrInvalidRuleset)
}

func TestGetEnvSlice(t *testing.T) {
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://hr.example.com, https://admin.example.com,")
	assert.Equal(t, []string{"https://hr.example.com", "https://admin.example.com"}, getEnvSlice("CORS_ALLOWED_ORIGINS"))

	t.Setenv("CORS_ALLOWED_ORIGINS", "")
	assert.Empty(t, getEnvSlice("CORS_ALLOWED_ORIGINS"))
}
