package logger

// Option adjusts DefaultConfig before New builds the logger.
type Option func(*Config)

func WithLevel(level string) Option {
	return func(c *Config) { c.Level = level }
}

// WithStderr writes human-readable lines to stderr.
func WithStderr() Option {
	return func(c *Config) {
		c.Format = "console"
		c.Output = "stderr"
	}
}

// WithFile writes JSON lines to filename only.
func WithFile(filename string) Option {
	return func(c *Config) {
		c.Format = "json"
		c.Output = "file"
		c.File.Filename = filename
	}
}

// WithoutCaller drops caller and stacktrace annotations.
func WithoutCaller() Option {
	return func(c *Config) {
		c.EnableCaller = false
		c.EnableStacktrace = false
	}
}

func NewWithOptions(opts ...Option) (*Logger, error) {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return New(cfg)
}

// CLI logs to stderr so stdout carries only command output. Verbose
// switches from warn to debug.
func CLI(verbose bool) (*Logger, error) {
	level := "warn"
	if verbose {
		level = "debug"
	}
	return NewWithOptions(WithLevel(level), WithStderr(), WithoutCaller())
}
