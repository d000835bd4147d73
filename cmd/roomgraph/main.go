// Package main provides a headless runner that builds a level graph, plays
// frames against it with the player looking along its spawn facing, and
// logs what the visibility pass saw.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/periphery/internal/audio"
	"github.com/cory-johannsen/periphery/internal/audio/device"
	"github.com/cory-johannsen/periphery/internal/config"
	"github.com/cory-johannsen/periphery/internal/game/session"
	"github.com/cory-johannsen/periphery/internal/loop"
	"github.com/cory-johannsen/periphery/internal/observability"
	"github.com/cory-johannsen/periphery/internal/physics"
	"github.com/cory-johannsen/periphery/internal/render"
	"github.com/cory-johannsen/periphery/internal/scripting"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	root := flag.String("root", ".", "directory level and script paths are resolved against")
	frames := flag.Int("frames", 600, "frames to run; 0 runs until interrupted")
	hz := flag.Float64("hz", 60, "frame rate")
	sound := flag.Bool("audio", false, "play cues through the system audio device")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	fsys := os.DirFS(*root)

	var scripts *scripting.Manager
	if cfg.Scripting.Dir != "" {
		scripts = scripting.NewManager(logger)
		if err := scripts.Load(fsys, cfg.Scripting.Dir, cfg.Scripting.InstructionLimit); err != nil {
			logger.Fatal("loading crest scripts", zap.Error(err))
		}
		defer scripts.Close()
	}

	var sink audio.Sink = audio.NullSink{}
	if *sound {
		spk, err := device.Open(cfg.Audio, logger)
		if err != nil {
			logger.Warn("audio disabled", zap.Error(err))
		} else {
			defer spk.Close()
			sink = spk
		}
	}

	recorder := render.NewRecorder()
	sess, err := session.New(session.Deps{
		Config:    cfg,
		FS:        fsys,
		Physics:   physics.NewWorld(cfg.Physics, logger),
		Post:      recorder,
		Instances: recorder,
		Sink:      sink,
		Scripts:   scripts,
		Logger:    logger,
	})
	if err != nil {
		logger.Fatal("creating session", zap.Error(err))
	}
	if err := sess.Start(); err != nil {
		logger.Fatal("starting session", zap.Error(err))
	}
	defer sess.Teardown()

	cam := physics.NewCamera(cfg.Vision)
	var seen, transitions int
	frameLoop := loop.NewFrameLoop(loop.TickerFunc(func(dt float32) error {
		sess.AimCamera(cam)
		rep, err := sess.Tick(dt, cam)
		if err != nil {
			return err
		}
		seen += len(rep.Gate.Seen)
		transitions += rep.Gate.Transitions
		if rep.Advanced || rep.Respawned {
			logger.Info("frame event",
				zap.Bool("advanced", rep.Advanced),
				zap.Bool("respawned", rep.Respawned),
				zap.String("room", rep.Room))
		}
		if sess.Finished() {
			return errFinished
		}
		return nil
	}), float32(*hz), *frames, logger)

	lc := loop.NewLifecycle(logger)
	lc.Add("frames", frameLoop)
	if err := lc.Run(context.Background()); err != nil && !isFinished(err) {
		if errors.Is(err, loop.ErrDrainTimeout) {
			// the frame goroutine still owns the session
			logger.Fatal("frame loop did not stop", zap.Error(err))
		}
		logger.Error("frame loop failed", zap.Error(err))
	}

	status := sess.Status()
	logger.Info("run complete",
		zap.Int("frames", frameLoop.Frames()),
		zap.Int("rooms", len(sess.Rooms())),
		zap.Int("objects", len(sess.Objects())),
		zap.Int("crest_sightings", seen),
		zap.Int("view_transitions", transitions),
		zap.Float32("win_percent", status.WinPercent),
		zap.Bool("finished", sess.Finished()),
		zap.Int("render_builds", recorder.Builds()),
		zap.Duration("elapsed", time.Since(start)),
	)
}
