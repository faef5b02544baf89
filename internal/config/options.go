package config

func WithSourceLanguage(name string) Option {
	return func(c *Config) {
		c.Translate.SourceLanguage = name
	}
}

func WithTargetLanguage(name string) Option {
	return func(c *Config) {
		c.Translate.TargetLanguage = name
	}
}

func WithModel(model string) Option {
	return func(c *Config) {
		c.LLM.Model = model
	}
}

func WithBatchSize(n int) Option {
	return func(c *Config) {
		c.Translate.BatchSize = n
	}
}

func WithWorkers(n int) Option {
	return func(c *Config) {
		c.Translate.Workers = n
	}
}

func WithReplaceOriginal(v bool) Option {
	return func(c *Config) {
		c.Translate.ReplaceOriginal = v
	}
}

func WithAltPrompt(v bool) Option {
	return func(c *Config) {
		c.Translate.AltPrompt = v
	}
}

func WithClean(v bool) Option {
	return func(c *Config) {
		c.Translate.Clean = v
	}
}

// WithDebug also lowers the log level to debug.
func WithDebug(v bool) Option {
	return func(c *Config) {
		c.Translate.Debug = v
		if v {
			c.Log.Level = "debug"
		}
	}
}

func WithConflictPolicy(policy string) Option {
	return func(c *Config) {
		c.Translate.ConflictPolicy = policy
	}
}

func WithEncoding(name string) Option {
	return func(c *Config) {
		c.Translate.Encoding = name
	}
}

func WithPromptsFile(path string) Option {
	return func(c *Config) {
		c.Translate.PromptsFile = path
	}
}

func WithWatchDirs(dirs ...string) Option {
	return func(c *Config) {
		c.Watch.Dirs = dirs
	}
}
