package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseBindsRequiredAndDefaultedFields(t *testing.T) {
	t.Parallel()

	cfg, err := Parse([]string{
		"--edges", "edges.csv",
		"--amount", "10000",
	})
	require.NoError(t, err)
	require.Equal(t, "edges.csv", cfg.EdgesPath)
	require.Equal(t, int64(10000), cfg.Amount)
	require.Equal(t, "./output", cfg.OutputDir)
	require.Equal(t, 0.8, cfg.Epsilon)
	require.Equal(t, "total_fee", cfg.Weight)
	require.Equal(t, 2, cfg.MaxThreads)
}

func TestParseRejectsMissingRequiredFlag(t *testing.T) {
	t.Parallel()

	_, err := Parse([]string{"--amount", "1000"})
	require.Error(t, err)
}

func TestValidateRejectsOutOfRangeEpsilon(t *testing.T) {
	t.Parallel()

	cfg := &Config{Amount: 1000, Epsilon: 1.5, CapacityFraction: 1.0}
	require.Error(t, cfg.Validate())
}

func TestValidateRejectsShortRequiredLength(t *testing.T) {
	t.Parallel()

	short := 2
	cfg := &Config{Amount: 1000, CapacityFraction: 1.0, RequiredLength: &short}
	require.Error(t, cfg.Validate())
}

func TestValidateAcceptsZeroValueDefaults(t *testing.T) {
	t.Parallel()

	cfg := &Config{Amount: 1000, CapacityFraction: 1.0}
	require.NoError(t, cfg.Validate())
}
