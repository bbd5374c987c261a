package logger

// Config controls the zap core and the rotating file writer.
type Config struct {
	Level      string `yaml:"level" mapstructure:"level"`
	FileName   string `yaml:"filename" mapstructure:"filename"`
	MaxSize    int    `yaml:"maxsize" mapstructure:"maxsize"`
	MaxAge     int    `yaml:"maxage" mapstructure:"maxage"`
	MaxBackups int    `yaml:"maxbackups" mapstructure:"maxbackups"`
	Compress   bool   `yaml:"compress" mapstructure:"compress"`
	// Stdout mirrors every entry to standard output as well as the file.
	Stdout bool `yaml:"stdout" mapstructure:"stdout"`
}

func DefaultConfig() *Config {
	return &Config{
		Level:      "INFO",
		FileName:   "./logs/srp.log",
		MaxSize:    100,
		MaxAge:     30,
		MaxBackups: 10,
		Compress:   true,
	}
}
