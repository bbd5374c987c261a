package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/korthochain/srpverifier/pkg/journal"
	"github.com/korthochain/srpverifier/pkg/limiter"
	"github.com/korthochain/srpverifier/pkg/logger"
	"github.com/korthochain/srpverifier/pkg/srp"
	"github.com/korthochain/srpverifier/pkg/workerpool"
)

const (
	configName = "srpConf"
	envPrefix  = "SRP"

	minSaltLength = 16
	maxPoolSize   = 64
)

var ErrInvalidConfig = errors.New("config: invalid configuration")

type CfgInfo struct {
	LogConfig     *logger.Config    `yaml:"log" mapstructure:"log"`
	PoolConfig    workerpool.Config `yaml:"pool" mapstructure:"pool"`
	KDFConfig     srp.KDFParams     `yaml:"kdf" mapstructure:"kdf"`
	SaltConfig    SaltConfig        `yaml:"salt" mapstructure:"salt"`
	LimiterConfig limiter.Config    `yaml:"limiter" mapstructure:"limiter"`
	JournalConfig journal.Config    `yaml:"journal" mapstructure:"journal"`
}

type SaltConfig struct {
	Length int `yaml:"length" mapstructure:"length"`
}

// DefaultConfig fills every section with its package default.
func DefaultConfig() *CfgInfo {
	return &CfgInfo{
		LogConfig:     logger.DefaultConfig(),
		PoolConfig:    workerpool.DefaultConfig(),
		KDFConfig:     srp.DefaultKDFParams(),
		SaltConfig:    SaltConfig{Length: 16},
		LimiterConfig: limiter.DefaultConfig(),
		JournalConfig: journal.DefaultConfig(),
	}
}

// LoadConfig load configuration information. An empty path searches
// ./config/ and the working directory for srpConf.yaml; a missing file there
// leaves the defaults in place. SRP_* environment variables override both.
func LoadConfig(path string) (*CfgInfo, error) {
	v := viper.New()
	setDefaults(v, DefaultConfig())

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(configName)
		v.SetConfigType("yaml")
		v.AddConfigPath("./config/")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, d *CfgInfo) {
	v.SetDefault("log.level", d.LogConfig.Level)
	v.SetDefault("log.filename", d.LogConfig.FileName)
	v.SetDefault("log.maxsize", d.LogConfig.MaxSize)
	v.SetDefault("log.maxage", d.LogConfig.MaxAge)
	v.SetDefault("log.maxbackups", d.LogConfig.MaxBackups)
	v.SetDefault("log.compress", d.LogConfig.Compress)
	v.SetDefault("log.stdout", d.LogConfig.Stdout)

	v.SetDefault("pool.size", d.PoolConfig.Size)
	v.SetDefault("pool.inline", d.PoolConfig.Inline)

	v.SetDefault("kdf.iterations", d.KDFConfig.Iterations)
	v.SetDefault("kdf.keylength", d.KDFConfig.KeyLength)
	v.SetDefault("kdf.hash", d.KDFConfig.Hash)

	v.SetDefault("salt.length", d.SaltConfig.Length)

	v.SetDefault("limiter.rate", d.LimiterConfig.Rate)
	v.SetDefault("limiter.burst", d.LimiterConfig.Burst)
	v.SetDefault("limiter.cachesize", d.LimiterConfig.CacheSize)

	v.SetDefault("journal.backend", d.JournalConfig.Backend)
	v.SetDefault("journal.path", d.JournalConfig.Path)
	v.SetDefault("journal.size", d.JournalConfig.Size)
	v.SetDefault("journal.ttl", d.JournalConfig.TTL)
}

func (c *CfgInfo) Validate() error {
	if c.PoolConfig.Size < 1 || c.PoolConfig.Size > maxPoolSize {
		return fmt.Errorf("%w: pool.size must be within [1, %d]", ErrInvalidConfig, maxPoolSize)
	}
	if c.SaltConfig.Length < minSaltLength {
		return fmt.Errorf("%w: salt.length must be >= %d", ErrInvalidConfig, minSaltLength)
	}
	if err := c.KDFConfig.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if c.LimiterConfig.Rate < 0 {
		return fmt.Errorf("%w: limiter.rate must be >= 0", ErrInvalidConfig)
	}
	switch c.JournalConfig.Backend {
	case journal.BackendMemory, journal.BackendBadger:
	default:
		return fmt.Errorf("%w: journal.backend %q", ErrInvalidConfig, c.JournalConfig.Backend)
	}
	return nil
}
