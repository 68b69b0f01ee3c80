// Command seasim runs a headless sea session and logs where the floating
// objects end up.
package main

import (
	"context"
	"flag"
	"fmt"
	"math"
	"os"
	"os/signal"
	"time"

	"CartoonSea/internal/config"
	"CartoonSea/internal/logger"
	"CartoonSea/internal/scene"
	"CartoonSea/internal/sea"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

var (
	flagTicks = flag.Int("ticks", 600, "Ticks to simulate, 0 runs until interrupted")
	flagDT    = flag.Float64("dt", 1.0/60, "Seconds per tick")
	flagWatch = flag.Bool("watch", false, "Reload the wave section when the config file changes")
	flagReal  = flag.Bool("realtime", false, "Sleep dt between ticks")
	flagEvery = flag.Int("report", 60, "Log object placement every N ticks")
)

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

	if err := run(cfg); err != nil {
		logger.Log.Error("Simulation failed", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	objects := cfg.Registry()
	if objects.Len() == 0 {
		objects = defaultObjects()
	}

	store := &sea.SnapshotStore{}
	opts, err := cfg.SessionOptions(store, objects)
	if err != nil {
		return err
	}
	session := sea.NewSession(opts)
	if err := session.Start(); err != nil {
		return err
	}
	defer func() {
		if err := session.Stop(); err != nil {
			logger.Log.Warn("Session teardown reported errors", zap.Error(err))
		}
	}()

	reloads := make(chan *config.Config, 1)
	if *flagWatch {
		path := config.ConfigPath()
		if path == "" {
			logger.Log.Warn("-watch needs -config; hot reload disabled")
		} else {
			go func() {
				err := config.Watch(ctx, path, func(c *config.Config) {
					select {
					case reloads <- c:
					default:
						// Drop the stale pending reload for the newest one.
						select {
						case <-reloads:
						default:
						}
						reloads <- c
					}
				})
				if err != nil {
					logger.Log.Error("Config watcher stopped", zap.Error(err))
				}
			}()
		}
	}

	dt := *flagDT
	for tick := 1; *flagTicks == 0 || tick <= *flagTicks; tick++ {
		select {
		case <-ctx.Done():
			logger.Log.Info("Interrupted", zap.Int("tick", tick))
			return nil
		case c := <-reloads:
			applyReload(session, c)
		default:
		}

		if err := session.Tick(dt); err != nil {
			return fmt.Errorf("tick %d: %w", tick, err)
		}
		if *flagEvery > 0 && tick%*flagEvery == 0 {
			report(session, objects, store)
		}
		if *flagReal {
			time.Sleep(time.Duration(dt * float64(time.Second)))
		}
	}

	st := session.Stats()
	logger.Log.Info("Simulation finished",
		zap.Uint64("ticks", st.Ticks),
		zap.Uint64("dispatches", st.Dispatches),
		zap.Uint64("placed", st.Placed),
		zap.Uint64("outOfRange", st.OutOfRange))
	return nil
}

func applyReload(session *sea.Session, c *config.Config) {
	wave, err := c.Wave.Build()
	if err == nil {
		err = session.ReloadWave(wave)
	}
	if err != nil {
		logger.Log.Warn("Rejected wave reload", zap.Error(err))
		return
	}
	if c.Surface.InitialSize[0] > 0 && c.Surface.InitialSize[1] > 0 {
		if err := session.SetExtent(mgl32.Vec2(c.Surface.InitialSize)); err != nil {
			logger.Log.Warn("Rejected size reload", zap.Error(err))
		}
	}
}

func report(session *sea.Session, objects *scene.Registry, store *sea.SnapshotStore) {
	if snap := store.Latest(); snap != nil {
		logger.Log.Info("Tick",
			zap.Uint64("tick", snap.Tick),
			zap.Float32("time", snap.Time.X()),
			zap.Float32("seaSizeX", snap.SeaSize.X()),
			zap.Float32("seaSizeZ", snap.SeaSize.Y()),
			zap.Bool("paused", session.Paused()))
	}
	for _, t := range objects.Transforms() {
		logger.Log.Info("Object",
			zap.String("name", t.Name),
			zap.Float32("x", t.Position.X()),
			zap.Float32("y", t.Position.Y()),
			zap.Float32("z", t.Position.Z()),
			zap.Float32("tilt", tilt(t)))
	}
}

// tilt is the angle in degrees between an object's up axis and world up.
func tilt(t *scene.Transform) float32 {
	up := t.Up()
	return mgl32.RadToDeg(float32(math.Acos(float64(mgl32.Clamp(up.Y(), -1, 1)))))
}

func defaultObjects() *scene.Registry {
	reg := scene.NewRegistry()
	for i, pos := range []mgl32.Vec3{{0, 0, 0}, {2, 0, -1.5}, {-3, 0, 3}, {4.5, 0, 4.5}} {
		t := scene.NewTransform(fmt.Sprintf("Crate%d", i))
		t.SetPosition(pos)
		reg.Add(t)
	}
	return reg
}
