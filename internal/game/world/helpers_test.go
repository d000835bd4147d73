package world

import (
	"fmt"
	"strings"
	"testing/fstest"

	"go.uber.org/zap"

	"github.com/cory-johannsen/periphery/internal/config"
	"github.com/cory-johannsen/periphery/internal/physics"
)

// levelDoc assembles an XML level from element attribute lists.
type levelDoc struct {
	walls, exits, spawns, cubes, crests []string
}

func (l levelDoc) bytes() []byte {
	var sb strings.Builder
	sb.WriteString("<level>\n")
	section := func(outer, inner string, items []string) {
		if items == nil {
			return
		}
		fmt.Fprintf(&sb, "  <%s>\n", outer)
		for _, it := range items {
			fmt.Fprintf(&sb, "    <%s %s/>\n", inner, it)
		}
		fmt.Fprintf(&sb, "  </%s>\n", outer)
	}
	section("walls", "wall", l.walls)
	section("spawns", "spawn", l.spawns)
	section("cubes", "cube", l.cubes)
	section("crests", "crest", l.crests)
	if l.exits == nil {
		l.exits = []string{}
	}
	section("exits", "exit", l.exits)
	sb.WriteString("</level>\n")
	return []byte(sb.String())
}

// boxWalls returns the four border walls of a w by d room shifted by (sx, sz) grid cells.
func boxWalls(w, d, sx, sz int) []string {
	wall := func(row, col int, xl, zl, cx, cz float32) string {
		return fmt.Sprintf(`row="%d" col="%d" xLength="%g" yLength="3" zLength="%g" centerX="%g" centerY="1.5" centerZ="%g"`,
			row+sz, col+sx, xl, zl, cx+float32(sx), cz+float32(sz))
	}
	fw, fd := float32(w), float32(d)
	return []string{
		wall(0, 0, fw, 1, fw/2, 0.5),
		wall(d-1, 0, fw, 1, fw/2, fd-0.5),
		wall(0, 0, 1, fd, 0.5, fd/2),
		wall(0, w-1, 1, fd, fw-0.5, fd/2),
	}
}

// exitAt returns a one-cell exit record shifted by (sx, sz) grid cells.
func exitAt(row, col, sx, sz int, file string) string {
	return fmt.Sprintf(`row="%d" col="%d" xLength="1" zLength="1" centerX="%g" centerY="0" centerZ="%g" file="%s"`,
		row+sz, col+sx, float32(col+sx)+0.5, float32(row+sz)+0.5, file)
}

func cubeAt(row, col int, translateY float32) string {
	return fmt.Sprintf(`row="%d" col="%d" xLength="1" zLength="1" centerX="%g" centerZ="%g" translateY="%g"`,
		row, col, float32(col)+0.5, float32(row)+0.5, translateY)
}

func crestAt(row, col, effect int, target string) string {
	return fmt.Sprintf(`row="%d" col="%d" xLength="1" zLength="1" centerX="%g" centerZ="%g" effect="%d" target="%s"`,
		row, col, float32(col)+0.5, float32(row)+0.5, effect, target)
}

func spawnAt(row, col int, dir string) string {
	return fmt.Sprintf(`row="%d" col="%d" centerX="%g" centerZ="%g" dir="%s"`,
		row, col, float32(col)+0.5, float32(row)+0.5, dir)
}

type testEnv struct {
	*Env
	world *physics.World
}

// helper is satisfied by *testing.T and *rapid.T.
type helper interface {
	Helper()
}

func newTestEnv(h helper, files map[string]levelDoc) testEnv {
	h.Helper()
	fsys := fstest.MapFS{}
	for name, doc := range files {
		fsys["levels/"+name] = &fstest.MapFile{Data: doc.bytes()}
	}
	return newTestEnvFS(fsys, zap.NewNop())
}

func newTestEnvFS(fsys fstest.MapFS, logger *zap.Logger) testEnv {
	w := physics.NewWorld(config.PhysicsConfig{StepHz: 60, Gravity: -9.81}, logger)
	return testEnv{
		Env: &Env{
			FS:         fsys,
			AssetsDir:  "levels",
			Bodies:     w,
			MoverSpeed: 0.05,
			Logger:     logger,
		},
		world: w,
	}
}
