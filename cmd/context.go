package main

import (
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/etklam/srt-subtitle-translator/internal/config"
	"github.com/etklam/srt-subtitle-translator/pkg/log"
)

type commandContext struct {
	configFlag *string
	logFile    *log.FileLogger
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

// loadConfig reads the configuration with the command's flag overrides and
// points the logger at stderr, or at log.file when set.
func (c *commandContext) loadConfig(cmd *cobra.Command, opts ...config.Option) (*config.Config, error) {
	var path string
	if c.configFlag != nil {
		path = strings.TrimSpace(*c.configFlag)
	}
	cfg, err := config.Load(path, opts...)
	if err != nil {
		return nil, err
	}
	if err := c.setupLogging(cfg, cmd.ErrOrStderr()); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *commandContext) setupLogging(cfg *config.Config, stderr io.Writer) error {
	level := log.ParseLevel(cfg.Log.Level)
	if cfg.Log.File == "" {
		logger := log.NewLogger(level)
		logger.SetOutput(stderr)
		log.SetLogger(logger)
		return nil
	}

	fileLogger, err := log.NewFileLogger(cfg.Log.File, level)
	if err != nil {
		return err
	}
	c.closeLog()
	c.logFile = fileLogger
	log.SetLogger(fileLogger.Logger)
	return nil
}

func (c *commandContext) closeLog() {
	if c.logFile != nil {
		_ = c.logFile.Close()
		c.logFile = nil
	}
}
