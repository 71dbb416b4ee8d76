package commands

import (
	"strings"

	"github.com/goliatone/go-biotite/internal/logging"
	"github.com/goliatone/go-biotite/pkg/interfaces"
)

const commandModuleRoot = "biotite.commands"

// CommandLogger returns a logger for the command handlers of module, named
// "biotite.commands.<module>". A blank module yields the namespace root.
func CommandLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	name := strings.TrimSpace(module)
	if name == "" {
		return logging.WithFields(logging.CommandLogger(provider), map[string]any{"component": "command"})
	}
	logger := logging.ModuleLogger(provider, commandModuleRoot+"."+name)
	return logging.WithFields(logger, map[string]any{
		"component":      "command",
		"command_module": name,
	})
}
