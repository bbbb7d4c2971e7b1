package logger

import (
	"fmt"

	"go.uber.org/zap/zapcore"
)

// Config is the "log" section of the service configuration. Keys are
// flattened lowercase so viper env overrides work without tags per field.
type Config struct {
	Level            string     `mapstructure:"level"`
	Format           string     `mapstructure:"format"` // json | console
	Output           string     `mapstructure:"output"` // console | stderr | file | both
	File             FileConfig `mapstructure:"file"`
	EnableCaller     bool       `mapstructure:"enablecaller"`
	EnableStacktrace bool       `mapstructure:"enablestacktrace"`
}

// FileConfig is handed to lumberjack. Sizes are MB, ages are days.
type FileConfig struct {
	Filename   string `mapstructure:"filename"`
	MaxSize    int    `mapstructure:"maxsize"`
	MaxAge     int    `mapstructure:"maxage"`
	MaxBackups int    `mapstructure:"maxbackups"`
	Compress   bool   `mapstructure:"compress"`
}

func DefaultConfig() *Config {
	return &Config{
		Level:            "info",
		Format:           "json",
		Output:           "console",
		EnableCaller:     true,
		EnableStacktrace: true,
		File: FileConfig{
			Filename:   "logs/model-catalog.log",
			MaxSize:    100,
			MaxAge:     30,
			MaxBackups: 10,
			Compress:   true,
		},
	}
}

func (c *Config) writesFile() bool {
	return c.Output == "file" || c.Output == "both"
}

func (c *Config) Validate() error {
	if _, err := zapcore.ParseLevel(c.Level); err != nil {
		return fmt.Errorf("invalid log level %q", c.Level)
	}

	switch c.Format {
	case "json", "console":
	default:
		return fmt.Errorf("invalid log format %q, must be json or console", c.Format)
	}

	switch c.Output {
	case "console", "stderr", "file", "both":
	default:
		return fmt.Errorf("invalid log output %q, must be console, stderr, file or both", c.Output)
	}

	if !c.writesFile() {
		return nil
	}
	switch {
	case c.File.Filename == "":
		return fmt.Errorf("log.file.filename is required for output %q", c.Output)
	case c.File.MaxSize <= 0, c.File.MaxAge <= 0:
		return fmt.Errorf("log.file.maxsize and log.file.maxage must be > 0")
	case c.File.MaxBackups < 0:
		return fmt.Errorf("log.file.maxbackups must be >= 0")
	}
	return nil
}
