package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadOrCreate_Defaults(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "app")

	c, err := ReadOrCreate(dir)
	require.NoError(t, err)
	require.NotNil(t, c)

	assert.Equal(t, 1000, c.Samples)
	assert.Equal(t, int64(42), c.Seed)
	assert.InDelta(t, 0.2, c.TestFraction, 1e-12)
	assert.InDelta(t, 1.0, c.RidgeLambda, 1e-12)
	assert.InDelta(t, 0.1, c.ElasticAlpha, 1e-12)
	assert.InDelta(t, 0.5, c.ElasticL1Ratio, 1e-12)
	assert.InDelta(t, 0.5, c.HighCostQuantile, 1e-12)
	assert.Equal(t, 8080, c.Port)

	// The default file gets written on first read.
	_, err = os.Stat(filepath.Join(dir, configFileName))
	assert.NoError(t, err)
}

func TestReadOrCreate_PersistsEdits(t *testing.T) {
	dir := t.TempDir()

	c, err := ReadOrCreate(dir)
	require.NoError(t, err)

	c.Samples = 250
	c.Port = 9090
	require.NoError(t, Save(dir, c))

	c2, err := ReadOrCreate(dir)
	require.NoError(t, err)
	assert.Equal(t, 250, c2.Samples)
	assert.Equal(t, 9090, c2.Port)
}

func TestReadOrCreate_RejectsInvalidFile(t *testing.T) {
	dir := t.TempDir()

	c := getDefaultConfig()
	c.TestFraction = 1.5
	require.NoError(t, Save(dir, c))

	_, err := ReadOrCreate(dir)
	assert.Error(t, err)
}

func TestReadOrCreate_RejectsBadYAML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, configFileName), []byte("samples: [nope"), fileMode))

	_, err := ReadOrCreate(dir)
	assert.Error(t, err)
}

func TestReadOrCreate_EmptyDir(t *testing.T) {
	_, err := ReadOrCreate("")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"too few samples", func(c *Config) { c.Samples = 1 }},
		{"test fraction too low", func(c *Config) { c.TestFraction = 0 }},
		{"test fraction too high", func(c *Config) { c.TestFraction = 1 }},
		{"quantile out of range", func(c *Config) { c.HighCostQuantile = 1 }},
		{"port too low", func(c *Config) { c.Port = 0 }},
		{"port too high", func(c *Config) { c.Port = 70000 }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := getDefaultConfig()
			tc.mutate(c)
			assert.Error(t, c.Validate())
		})
	}

	assert.NoError(t, getDefaultConfig().Validate())
}

func TestSave_Invalid(t *testing.T) {
	assert.Error(t, Save("", getDefaultConfig()))
	assert.Error(t, Save(t.TempDir(), nil))
}

func TestGetOrCreateHomeDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	dir, created, err := GetOrCreateHomeDir("testapp")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, filepath.Join(home, ".testapp"), dir)

	_, created, err = GetOrCreateHomeDir("testapp")
	require.NoError(t, err)
	assert.False(t, created)
}

func TestGetOrCreateHomeDir_EmptyName(t *testing.T) {
	_, _, err := GetOrCreateHomeDir("")
	assert.Error(t, err)
}
