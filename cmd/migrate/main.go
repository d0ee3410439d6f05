// Command migrate applies the document store schema.
//
//	migrate [up|down|status|version]
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/ghuser/nurseryinventory/migrations/inventory"
	"github.com/ghuser/nurseryinventory/pkg/config"
	"github.com/ghuser/nurseryinventory/pkg/logger"
	"github.com/ghuser/nurseryinventory/pkg/migrator"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg)

	var arg string
	if len(os.Args) > 1 {
		arg = os.Args[1]
	}
	cmd, err := migrator.ParseCommand(arg)
	if err != nil {
		log.Error("invalid arguments", "error", err)
		os.Exit(2)
	}

	version, err := migrator.Run(context.Background(), cfg.DatabaseURL, inventory.FS, cmd)
	if err != nil {
		log.Error("migrations failed", "command", cmd, "error", err)
		os.Exit(1)
	}
	if cmd == migrator.CmdVersion {
		log.Info("schema version", "version", version)
		return
	}
	log.Info("migrations done", "command", cmd)
}
