package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_MatchesCanonicalValues(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 0.1, cfg.Dt)
	assert.Equal(t, 60.0, cfg.TimeoutSeconds)
	assert.Equal(t, 0.2, cfg.DamageDelaySeconds)
	assert.True(t, cfg.SnapshotEveryTick)
	assert.Equal(t, 0.2, cfg.AnimationDuration)
	require.NoError(t, cfg.Validate())
}

func TestValidate_RejectsNonPositiveDt(t *testing.T) {
	cfg := Default()
	cfg.Dt = 0

	err := cfg.Validate()

	require.Error(t, err)
}

func TestValidate_RejectsNegativeDamageDelay(t *testing.T) {
	cfg := Default()
	cfg.DamageDelaySeconds = -1

	require.Error(t, cfg.Validate())
}

func TestLoad_NoConfigPathUsesDefaults(t *testing.T) {
	cfg, err := Load("")

	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}
