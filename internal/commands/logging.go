package commands

import (
	"strings"

	"github.com/goliatone/go-polyglot/internal/logging"
	"github.com/goliatone/go-polyglot/pkg/interfaces"
)

const commandModuleRoot = "polyglot.commands"

// CommandLogger returns the logger for command handlers of module, e.g.
// "merge" logs under polyglot.commands.merge.
func CommandLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	name := strings.TrimSpace(module)
	if name == "" {
		name = "core"
	}
	logger := logging.ModuleLogger(provider, commandModuleRoot+"."+name)
	return logging.WithFields(logger, map[string]any{
		"component":      "command",
		"command_module": name,
	})
}
