// Command seaview shows a sea session in a window: the height field shaded
// with the sea colors and the floating objects on top. Space pauses, the up
// and down arrows grow and shrink the patch.
package main

import (
	"fmt"
	"os"

	"CartoonSea/internal/config"
	"CartoonSea/internal/logger"
	"CartoonSea/internal/sea"

	"github.com/hajimehoshi/ebiten/v2"
	"go.uber.org/zap"
)

const screenSize = 640

func main() {
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	fileCfg := logger.FileConfig{}
	if cfg.Logging.LogFile != "" {
		fileCfg = logger.DefaultFileConfig(cfg.Logging.LogFile)
	}
	logger.InitWithConfig(cfg.Logging.Level, fileCfg, cfg.Logging.Console)
	defer logger.Sync()

	objects := cfg.Registry()
	if objects.Len() == 0 {
		objects = gridOfCrates(5, 1.8)
	}

	store := &sea.SnapshotStore{}
	opts, err := cfg.SessionOptions(store, objects)
	if err != nil {
		logger.Log.Error("Invalid configuration", zap.Error(err))
		os.Exit(1)
	}
	session := sea.NewSession(opts)
	if err := session.Start(); err != nil {
		logger.Log.Error("Failed to start session", zap.Error(err))
		os.Exit(1)
	}

	g := newViewer(session, store, objects)
	ebiten.SetWindowSize(screenSize, screenSize)
	ebiten.SetWindowTitle("CartoonSea")
	runErr := ebiten.RunGame(g)

	if err := session.Stop(); err != nil {
		logger.Log.Warn("Session teardown reported errors", zap.Error(err))
	}
	if runErr != nil {
		logger.Log.Error("Viewer stopped", zap.Error(runErr))
		logger.Sync()
		os.Exit(1)
	}
}
