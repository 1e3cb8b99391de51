package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bais/internal/errors"
)

var configKeys = []string{
	"BAIS_ALPHA",
	"BAIS_BOOTSTRAP_ITERATIONS",
	"BAIS_PERMUTATION_ITERATIONS",
	"BAIS_SEED",
	"BAIS_WORKERS",
	"BAIS_MIN_GROUP_SIZE",
	"PORT",
}

func clearEnv(t *testing.T) {
	for _, key := range configKeys {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, uint32(123456789), cfg.Analysis.Seed)
	assert.Equal(t, "8080", cfg.Server.Port)
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("BAIS_ALPHA", "0.01")
	t.Setenv("BAIS_BOOTSTRAP_ITERATIONS", "5000")
	t.Setenv("BAIS_SEED", "42")
	t.Setenv("BAIS_WORKERS", "8")
	t.Setenv("PORT", "9090")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 0.01, cfg.Analysis.Alpha)
	assert.Equal(t, 5000, cfg.Analysis.BootstrapIterations)
	assert.Equal(t, uint32(42), cfg.Analysis.Seed)
	assert.Equal(t, 8, cfg.Analysis.Workers)
	assert.Equal(t, 10000, cfg.Analysis.PermutationIterations)
	assert.Equal(t, "9090", cfg.Server.Port)
}

func TestLoad_Invalid(t *testing.T) {
	cases := []struct {
		key, value string
	}{
		{"BAIS_ALPHA", "1.5"},
		{"BAIS_BOOTSTRAP_ITERATIONS", "10"},
		{"BAIS_WORKERS", "0"},
		{"BAIS_MIN_GROUP_SIZE", "1"},
		{"BAIS_SEED", "-3"},
	}

	for _, tc := range cases {
		t.Run(tc.key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tc.key, tc.value)

			_, err := Load()
			require.Error(t, err)
			assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
		})
	}
}
