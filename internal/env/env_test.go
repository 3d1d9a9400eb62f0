package env

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Name    string        `env:"TEST_ENV_NAME"`
	Port    int           `env:"TEST_ENV_PORT"`
	Debug   bool          `env:"TEST_ENV_DEBUG"`
	Timeout time.Duration `env:"TEST_ENV_TIMEOUT"`
	Nested  nestedConfig
}

type nestedConfig struct {
	Horizon int `env:"TEST_ENV_HORIZON"`
}

func (n *nestedConfig) Validate() error {
	if n.Horizon < 0 {
		return errors.New("horizon must not be negative")
	}
	return nil
}

func TestLoad(t *testing.T) {
	t.Setenv("TEST_ENV_NAME", "almanac")
	t.Setenv("TEST_ENV_PORT", "8081")
	t.Setenv("TEST_ENV_DEBUG", "true")
	t.Setenv("TEST_ENV_TIMEOUT", "45s")
	t.Setenv("TEST_ENV_HORIZON", "5")

	var cfg testConfig
	require.NoError(t, Load(&cfg))

	assert.Equal(t, "almanac", cfg.Name)
	assert.Equal(t, 8081, cfg.Port)
	assert.True(t, cfg.Debug)
	assert.Equal(t, 45*time.Second, cfg.Timeout)
	assert.Equal(t, 5, cfg.Nested.Horizon)
}

func TestLoad_UnsetKeepsZeroValues(t *testing.T) {
	var cfg testConfig
	require.NoError(t, Load(&cfg))

	assert.Empty(t, cfg.Name)
	assert.Zero(t, cfg.Port)
}

func TestLoad_InvalidValue(t *testing.T) {
	t.Setenv("TEST_ENV_PORT", "not-a-number")

	var cfg testConfig
	err := Load(&cfg)

	var invalid ErrInvalidValue
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "TEST_ENV_PORT", invalid.EnvVar)
}

func TestLoad_NestedValidation(t *testing.T) {
	t.Setenv("TEST_ENV_HORIZON", "-1")

	var cfg testConfig
	err := Load(&cfg)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "horizon")
}

func TestLoad_RejectsNonStructPointer(t *testing.T) {
	assert.Error(t, Load(42))
	assert.Error(t, Load(testConfig{}))
}
