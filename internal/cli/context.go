package cli

import (
	"go.uber.org/zap"

	"github.com/fairfund/fairfund/internal/config"
	"github.com/fairfund/fairfund/internal/output"
)

// CommandContext holds dependencies for CLI commands. Commands read it from
// the globals by default; tests construct one directly.
type CommandContext struct {
	Config    *config.Config
	Logger    *zap.Logger
	Formatter *output.Formatter
}

// NewCommandContext creates a context with the given dependencies.
func NewCommandContext(cfg *config.Config, logger *zap.Logger, formatter *output.Formatter) *CommandContext {
	return &CommandContext{
		Config:    cfg,
		Logger:    logger,
		Formatter: formatter,
	}
}

// globalContext assembles a CommandContext from the CLI globals.
func globalContext() *CommandContext {
	return NewCommandContext(cfg, logger, formatter)
}
