package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const (
	configFileName = "config.yaml"
	dirMode        = 0700
	fileMode       = 0600
)

// Config holds the pipeline defaults. Everything here can be overridden by a
// command flag.
type Config struct {
	Samples          int     `yaml:"samples"`
	Seed             int64   `yaml:"seed"`
	TestFraction     float64 `yaml:"testFraction"`
	RidgeLambda      float64 `yaml:"ridgeLambda"`
	ElasticAlpha     float64 `yaml:"elasticAlpha"`
	ElasticL1Ratio   float64 `yaml:"elasticL1Ratio"`
	HighCostQuantile float64 `yaml:"highCostQuantile"`
	Port             int     `yaml:"port"`
}

func getDefaultConfig() *Config {
	return &Config{
		Samples:          1000,
		Seed:             42,
		TestFraction:     0.2,
		RidgeLambda:      1.0,
		ElasticAlpha:     0.1,
		ElasticL1Ratio:   0.5,
		HighCostQuantile: 0.5,
		Port:             8080,
	}
}

// Validate checks the ranges a bad hand-edit could break.
func (c *Config) Validate() error {
	if c.Samples < 2 {
		return errors.Errorf("samples must be at least 2, got %d", c.Samples)
	}
	if c.TestFraction <= 0 || c.TestFraction >= 1 {
		return errors.Errorf("testFraction must be in (0, 1), got %f", c.TestFraction)
	}
	if c.HighCostQuantile <= 0 || c.HighCostQuantile >= 1 {
		return errors.Errorf("highCostQuantile must be in (0, 1), got %f", c.HighCostQuantile)
	}
	if c.Port < 1 || c.Port > 65535 {
		return errors.Errorf("invalid port: %d", c.Port)
	}
	return nil
}

func Save(dirPath string, c *Config) error {
	if dirPath == "" {
		return errors.New("config directory required")
	}
	if c == nil {
		return errors.New("config required")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "failed to marshal config")
	}
	path := filepath.Join(dirPath, configFileName)
	if err := os.WriteFile(path, b, fileMode); err != nil {
		return errors.Wrapf(err, "failed to write config file: %s", configFileName)
	}
	return nil
}

// ReadOrCreate reads app config from directory or creates a new one.
func ReadOrCreate(dirPath string) (*Config, error) {
	if dirPath == "" {
		return nil, errors.New("config directory required")
	}

	if _, err := os.Stat(dirPath); errors.Is(err, os.ErrNotExist) {
		err := os.Mkdir(dirPath, dirMode)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to create dir: %s", dirPath)
		}
	}

	path := filepath.Join(dirPath, configFileName)

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := Save(dirPath, getDefaultConfig()); err != nil {
			return nil, errors.Wrap(err, "failed to create default config")
		}
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "error reading config file: %s", path)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, errors.Wrapf(err, "error unmarshalling config file: %s", path)
	}

	if err := c.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid config: %s", path)
	}
	return &c, nil
}

// GetOrCreateHomeDir returns the app directory under the user's home,
// creating it on first use.
func GetOrCreateHomeDir(name string) (path string, created bool, err error) {
	if name == "" {
		return "", false, errors.New("name cannot be empty")
	}

	if !strings.HasPrefix(name, ".") {
		name = "." + name
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", false, errors.Wrap(err, "failed to get user home dir")
	}
	log.Debugf("home dir: %s", home)

	dir := filepath.Join(home, name)
	if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
		log.Debugf("creating dir: %s", dir)
		err := os.Mkdir(dir, dirMode)
		if err != nil {
			return "", false, errors.Wrapf(err, "failed to create dir: %s", dir)
		}
		created = true
	}
	return dir, created, nil
}
