package session

import (
	"fmt"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"cogentcore.org/core/math32"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cory-johannsen/periphery/internal/audio"
	"github.com/cory-johannsen/periphery/internal/config"
	"github.com/cory-johannsen/periphery/internal/physics"
	"github.com/cory-johannsen/periphery/internal/render"
	"github.com/cory-johannsen/periphery/internal/scripting"
)

// room writes a 5x5 walled room with the given extra elements.
func room(spawn string, exits, crests []string) []byte {
	var sb strings.Builder
	sb.WriteString("<level>\n<walls>\n")
	for _, w := range []string{
		`row="0" col="0" xLength="5" yLength="3" zLength="1" centerX="2.5" centerZ="0.5"`,
		`row="4" col="0" xLength="5" yLength="3" zLength="1" centerX="2.5" centerZ="4.5"`,
		`row="0" col="0" xLength="1" yLength="3" zLength="5" centerX="0.5" centerZ="2.5"`,
		`row="0" col="4" xLength="1" yLength="3" zLength="5" centerX="4.5" centerZ="2.5"`,
	} {
		fmt.Fprintf(&sb, "<wall %s/>\n", w)
	}
	sb.WriteString("</walls>\n")
	if spawn != "" {
		fmt.Fprintf(&sb, "<spawns><spawn %s/></spawns>\n", spawn)
	}
	if len(crests) > 0 {
		sb.WriteString("<crests>\n")
		for _, c := range crests {
			fmt.Fprintf(&sb, "<crest %s/>\n", c)
		}
		sb.WriteString("</crests>\n")
	}
	sb.WriteString("<exits>\n")
	for _, e := range exits {
		fmt.Fprintf(&sb, "<exit %s/>\n", e)
	}
	sb.WriteString("</exits>\n</level>\n")
	return []byte(sb.String())
}

func exit(row, col int, file string) string {
	return fmt.Sprintf(`row="%d" col="%d" xLength="1" zLength="1" centerX="%d.5" centerZ="%d.5" file="%s"`, row, col, col, row, file)
}

// area is a win room a1 between two exits and a plain room c1 below it.
//
//	a1: spawn (2,1) facing left, win crest at (2,3), exits b1 (top) and c1 (bottom)
//	c1: spawn (2,2) facing up, one exit back to a1 (top)
func area() fstest.MapFS {
	return fstest.MapFS{
		"levels/a1.xml": {Data: room(
			`row="2" col="1" centerX="1.5" centerZ="2.5" dir="left"`,
			[]string{exit(0, 2, "b1.xml"), exit(4, 2, "c1.xml")},
			[]string{`row="2" col="3" xLength="1" zLength="1" centerX="3.5" centerZ="2.5" effect="5"`},
		)},
		"levels/c1.xml": {Data: room(
			`row="2" col="2" centerX="2.5" centerZ="2.5" dir="up"`,
			[]string{exit(0, 2, "a1.xml")},
			nil,
		)},
	}
}

func testConfig(start string) config.Config {
	return config.Config{
		Logging: config.LoggingConfig{Level: "info", Format: "json"},
		Level:   config.LevelConfig{AssetsDir: "levels", Start: start},
		Physics: config.PhysicsConfig{StepHz: 60, Gravity: -9.81},
		Vision:  config.VisionConfig{Trigger: "level", FovDeg: 60, Near: 0.1, Far: 100},
		Player: config.PlayerConfig{
			KillPlane:    -5,
			DevKillPlane: -100,
			SpawnHeight:  2,
			WinRate:      0.1,
			MoverSpeed:   0.05,
		},
		Audio: config.AudioConfig{SampleRate: 8000, WinCue: 50 * time.Millisecond, Volume: 1},
	}
}

type fixture struct {
	s        *Session
	world    *physics.World
	recorder *render.Recorder
	cam      *physics.Camera
}

// corridor is two one-exit rooms: s1 with f1 below it.
func corridor() fstest.MapFS {
	return fstest.MapFS{
		"levels/s1.xml": {Data: room(
			`row="2" col="2" centerX="2.5" centerZ="2.5" dir="up"`,
			[]string{exit(4, 2, "f1.xml")},
			nil,
		)},
		"levels/f1.xml": {Data: room(
			`row="2" col="2" centerX="2.5" centerZ="2.5" dir="up"`,
			[]string{exit(0, 2, "s1.xml")},
			nil,
		)},
	}
}

func newFixture(t *testing.T, cfg config.Config, scripts *scripting.Manager) fixture {
	t.Helper()
	return newFixtureFS(t, cfg, area(), scripts, zap.NewNop())
}

func newFixtureFS(t *testing.T, cfg config.Config, fsys fstest.MapFS, scripts *scripting.Manager, logger *zap.Logger) fixture {
	t.Helper()
	w := physics.NewWorld(cfg.Physics, logger)
	rec := render.NewRecorder()
	s, err := New(Deps{
		Config:    cfg,
		FS:        fsys,
		Physics:   w,
		Post:      rec,
		Instances: rec,
		Sink:      audio.NullSink{},
		Scripts:   scripts,
		Logger:    logger,
	})
	require.NoError(t, err)
	require.NoError(t, s.Start())
	return fixture{s: s, world: w, recorder: rec, cam: physics.NewCamera(cfg.Vision)}
}

// a1 crest and eye positions with a1 at the origin.
var (
	crestPos = math32.Vec3(3.5, 2.1, 2.5)
	eyePos   = math32.Vec3(1.5, 1.5, 2.5)
)

func (f fixture) lookAtCrest() {
	f.cam.LookAt(eyePos, crestPos)
}

func (f fixture) lookAway() {
	f.cam.LookAt(eyePos, eyePos.Sub(math32.Vec3(1, 0, 0)))
}
