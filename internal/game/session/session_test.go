package session

import (
	"testing"
	"testing/fstest"

	"cogentcore.org/core/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/periphery/internal/game/object"
	"github.com/cory-johannsen/periphery/internal/physics"
	"github.com/cory-johannsen/periphery/internal/render"
	"github.com/cory-johannsen/periphery/internal/scripting"
)

func TestNew_RejectsUnknownTrigger(t *testing.T) {
	cfg := testConfig("a1.xml")
	cfg.Vision.Trigger = "pulse"
	rec := render.NewRecorder()
	_, err := New(Deps{
		Config:    cfg,
		FS:        area(),
		Physics:   physics.NewWorld(cfg.Physics, zap.NewNop()),
		Post:      rec,
		Instances: rec,
		Logger:    zap.NewNop(),
	})
	assert.Error(t, err)
}

func TestStart_MissingLevel(t *testing.T) {
	cfg := testConfig("nope.xml")
	rec := render.NewRecorder()
	s, err := New(Deps{
		Config:    cfg,
		FS:        fstest.MapFS{},
		Physics:   physics.NewWorld(cfg.Physics, zap.NewNop()),
		Post:      rec,
		Instances: rec,
		Logger:    zap.NewNop(),
	})
	require.NoError(t, err)
	assert.Error(t, s.Start())
}

func TestStart_BuildsAndSpawns(t *testing.T) {
	f := newFixture(t, testConfig("a1.xml"), nil)

	require.Len(t, f.s.Rooms(), 1, "a win room does not load its neighbors")
	assert.Equal(t, "levels/a1.xml", f.s.CurrentRoom().File)
	assert.Equal(t, math32.Vec3(1.5, 2, 2.5), f.s.PlayerPosition())
	assert.InDelta(t, math32.Pi, f.s.Yaw(), 1e-5)

	assert.Equal(t, 1, f.recorder.Builds())
	var instances int
	for _, b := range f.recorder.Batches() {
		instances += len(b.Instances)
	}
	assert.Equal(t, len(f.s.Objects()), instances)
}

func TestTick_WinCrestChargesMeterAndCue(t *testing.T) {
	f := newFixture(t, testConfig("a1.xml"), nil)
	f.lookAtCrest()

	rep, err := f.s.Tick(0, f.cam)
	require.NoError(t, err)
	require.Len(t, rep.Gate.Seen, 1)
	assert.Equal(t, object.Win, rep.Gate.Seen[0].Crest.Type)
	assert.Equal(t, "levels/a1.xml", rep.Room)
	assert.InDelta(t, 0.1, f.s.Status().WinPercent, 1e-6)
	assert.True(t, f.s.Status().WinSeen)
	assert.True(t, f.s.WinCue().Playing())

	on, c := f.recorder.Blur()
	assert.True(t, on)
	assert.InDelta(t, 0.099, c.X, 1e-5)
}

func TestTick_CueStopsTickAfterWinLeavesView(t *testing.T) {
	f := newFixture(t, testConfig("a1.xml"), nil)
	f.lookAtCrest()
	_, err := f.s.Tick(0, f.cam)
	require.NoError(t, err)

	f.lookAway()
	rep, err := f.s.Tick(0, f.cam)
	require.NoError(t, err)
	assert.Empty(t, rep.Gate.Seen)
	assert.True(t, f.s.WinCue().Playing(), "the cue is judged on the previous pass")
	on, _ := f.recorder.Blur()
	assert.False(t, on)

	_, err = f.s.Tick(0, f.cam)
	require.NoError(t, err)
	assert.False(t, f.s.WinCue().Playing())
}

func TestTick_EdgeTriggerHoldsEffectsWhileSeen(t *testing.T) {
	cfg := testConfig("a1.xml")
	cfg.Vision.Trigger = "edge"
	f := newFixture(t, cfg, nil)
	f.lookAtCrest()

	for i := 0; i < 5; i++ {
		rep, err := f.s.Tick(0, f.cam)
		require.NoError(t, err)
		require.Len(t, rep.Gate.Seen, 1, "tick %d", i)
		if i == 0 {
			assert.Equal(t, 1, rep.Gate.Hooks)
		} else {
			assert.Zero(t, rep.Gate.Hooks, "tick %d", i)
			assert.Equal(t, 1, rep.Gate.Held, "tick %d", i)
		}
		on, _ := f.recorder.Blur()
		assert.True(t, on, "tick %d", i)
		assert.True(t, f.s.WinCue().Playing(), "tick %d", i)
	}
	assert.InDelta(t, 0.5, f.s.Status().WinPercent, 1e-5)

	f.lookAway()
	_, err := f.s.Tick(0, f.cam)
	require.NoError(t, err)
	on, _ := f.recorder.Blur()
	assert.False(t, on)
	_, err = f.s.Tick(0, f.cam)
	require.NoError(t, err)
	assert.False(t, f.s.WinCue().Playing())
	assert.InDelta(t, 0.5, f.s.Status().WinPercent, 1e-5)
}

func TestTick_FullMeterAdvancesToGreatestExit(t *testing.T) {
	cfg := testConfig("a1.xml")
	cfg.Player.WinRate = 0.5
	f := newFixture(t, cfg, nil)
	f.lookAtCrest()
	for i := 0; i < 2; i++ {
		_, err := f.s.Tick(0, f.cam)
		require.NoError(t, err)
	}
	assert.Equal(t, float32(1), f.s.Status().WinPercent)

	rep, err := f.s.Tick(0, f.cam)
	require.NoError(t, err)
	assert.True(t, rep.Advanced)
	assert.Zero(t, f.s.Status().WinPercent)
	assert.Equal(t, "levels/c1.xml", f.s.CurrentRoom().File)
	require.Len(t, f.s.Rooms(), 2)
	assert.Equal(t, math32.Vec3(2.5, 2, 2.5), f.s.PlayerPosition())
	assert.False(t, f.s.Finished())
	// start, teardown, rebuild
	assert.Equal(t, 3, f.recorder.Builds())
}

func TestAdvanceArea_OneExitFinishes(t *testing.T) {
	f := newFixture(t, testConfig("c1.xml"), nil)
	require.Len(t, f.s.Rooms(), 2)

	f.s.Status().WinPercent = 1
	rep, err := f.s.Tick(0, f.cam)
	require.NoError(t, err)
	assert.True(t, rep.Advanced)
	assert.True(t, f.s.Finished())
	assert.Equal(t, "levels/c1.xml", f.s.CurrentRoom().File)
	assert.Zero(t, f.s.Status().WinPercent)
}

func TestAdvanceArea_FinishLogsTheWonRoom(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	f := newFixtureFS(t, testConfig("s1.xml"), corridor(), nil, zap.New(core))
	require.Len(t, f.s.Rooms(), 2)

	f.s.MovePlayer(math32.Vec3(2.5, 2, 7.5))
	_, err := f.s.Tick(0, f.cam)
	require.NoError(t, err)
	require.Equal(t, "levels/f1.xml", f.s.CurrentRoom().File)

	f.s.Status().WinPercent = 1
	_, err = f.s.Tick(0, f.cam)
	require.NoError(t, err)
	assert.True(t, f.s.Finished())
	assert.Equal(t, "levels/s1.xml", f.s.CurrentRoom().File, "the player returns to the first room")

	finished := logs.FilterMessage("game finished").All()
	require.Len(t, finished, 1)
	assert.Equal(t, "levels/f1.xml", finished[0].ContextMap()["room"])
}

func TestTick_RoomTracking(t *testing.T) {
	f := newFixture(t, testConfig("c1.xml"), nil)
	// a1 sits north of c1
	f.s.MovePlayer(math32.Vec3(2.5, 2, -2.5))
	rep, err := f.s.Tick(0, f.cam)
	require.NoError(t, err)
	assert.Equal(t, "levels/a1.xml", rep.Room)

	// outside every room keeps the last room
	f.s.MovePlayer(math32.Vec3(50, 2, 50))
	rep, err = f.s.Tick(0, f.cam)
	require.NoError(t, err)
	assert.Equal(t, "levels/a1.xml", rep.Room)
}

func TestTick_KillPlaneRespawns(t *testing.T) {
	f := newFixture(t, testConfig("c1.xml"), nil)
	f.s.MovePlayer(math32.Vec3(2.5, -6, 2.5))
	rep, err := f.s.Tick(0, f.cam)
	require.NoError(t, err)
	assert.True(t, rep.Respawned)
	assert.Equal(t, math32.Vec3(2.5, 2, 2.5), f.s.PlayerPosition())
	assert.InDelta(t, math32.Pi/2, f.s.Yaw(), 1e-5)
}

func TestTick_DevKillPlaneIsDeeper(t *testing.T) {
	cfg := testConfig("c1.xml")
	cfg.Player.DevMode = true
	f := newFixture(t, cfg, nil)
	f.s.MovePlayer(math32.Vec3(2.5, -6, 2.5))
	rep, err := f.s.Tick(0, f.cam)
	require.NoError(t, err)
	assert.False(t, rep.Respawned)
}

func TestTick_PlayerLandsOnFloor(t *testing.T) {
	f := newFixture(t, testConfig("c1.xml"), nil)
	for i := 0; i < 120; i++ {
		_, err := f.s.Tick(1.0/60.0, f.cam)
		require.NoError(t, err)
	}
	assert.InDelta(t, 0.9, f.s.PlayerPosition().Y, 1e-3)
	assert.True(t, f.s.Status().OnGround)
}

func TestThrowCrest_AndDespawn(t *testing.T) {
	f := newFixture(t, testConfig("c1.xml"), nil)
	before := len(f.s.Objects())
	bodies := f.world.Len()

	obj, err := f.s.ThrowCrest(object.Leap, math32.Vec3(0, 0, 2))
	require.NoError(t, err)
	assert.Equal(t, object.KindCrest, obj.Kind)
	assert.Equal(t, "leap", obj.MaterialKey)
	assert.Equal(t, physics.ShapeCube, obj.MeshKey)
	assert.Equal(t, f.s.PlayerPosition().Add(math32.Vec3(0, 0, 2)), obj.Transform.Position)
	assert.Len(t, f.s.Objects(), before+1)
	assert.Equal(t, bodies+1, f.world.Len())
	assert.Equal(t, 2, f.recorder.Builds())

	b, ok := f.world.Body(obj.Body)
	require.True(t, ok)
	assert.Equal(t, math32.Vec3(0, 0, 15), b.Velocity)

	_, err = f.s.Tick(1.0/60.0, f.cam)
	require.NoError(t, err)
	assert.Greater(t, obj.Transform.Position.Z, f.s.PlayerPosition().Z+2)

	assert.True(t, f.s.Despawn(obj))
	assert.False(t, f.s.Despawn(obj))
	assert.Len(t, f.s.Objects(), before)
	assert.Equal(t, bodies, f.world.Len())
}

func TestTeardown_ReleasesEverythingButPlayer(t *testing.T) {
	f := newFixture(t, testConfig("c1.xml"), nil)
	_, err := f.s.ThrowCrest(object.Mobility, math32.Vec3(1, 0, 0))
	require.NoError(t, err)

	f.s.Teardown()
	assert.Empty(t, f.s.Objects())
	assert.Empty(t, f.s.Procedural())
	assert.Empty(t, f.s.Rooms())
	assert.Nil(t, f.s.CurrentRoom())
	assert.Equal(t, 1, f.world.Len())
	assert.Empty(t, f.recorder.Batches())
}

func TestCycleRoom(t *testing.T) {
	cfg := testConfig("c1.xml")
	f := newFixture(t, cfg, nil)
	f.s.CycleRoom(1)
	assert.Equal(t, "levels/c1.xml", f.s.CurrentRoom().File, "no cycling outside dev mode")

	cfg.Player.DevMode = true
	f = newFixture(t, cfg, nil)
	f.s.CycleRoom(1)
	assert.Equal(t, "levels/a1.xml", f.s.CurrentRoom().File)
	assert.Equal(t, math32.Vec3(1.5, 2, -2.5), f.s.PlayerPosition())
	f.s.CycleRoom(-1)
	assert.Equal(t, "levels/c1.xml", f.s.CurrentRoom().File)
	f.s.CycleRoom(3)
	assert.Equal(t, "levels/a1.xml", f.s.CurrentRoom().File)
}

func TestSkipArea(t *testing.T) {
	cfg := testConfig("c1.xml")
	cfg.Player.DevMode = true
	f := newFixture(t, cfg, nil)
	require.NoError(t, f.s.SkipArea())
	assert.Equal(t, "levels/a1.xml", f.s.CurrentRoom().File)
	assert.Len(t, f.s.Rooms(), 1)
}

func TestSkipArea_LeavesTerminalWinRoom(t *testing.T) {
	cfg := testConfig("a1.xml")
	cfg.Player.DevMode = true
	f := newFixture(t, cfg, nil)
	require.Len(t, f.s.Rooms(), 1, "win rooms load no neighbors")

	require.NoError(t, f.s.SkipArea())
	assert.Equal(t, "levels/c1.xml", f.s.CurrentRoom().File)
}

func TestScripts_ConsumeWinAndBlur(t *testing.T) {
	mgr := scripting.NewManager(zap.NewNop())
	require.NoError(t, mgr.Load(fstest.MapFS{"scripts/win.lua": {Data: []byte(`
		function on_crest_view(crest, seen, id)
			if crest == "win" and seen then
				engine.world.blur(0, 0, engine.world.win_percent() + 0.5, 1)
				return true
			end
			return false
		end
	`)}}, "scripts", 0))
	f := newFixture(t, testConfig("a1.xml"), mgr)
	f.lookAtCrest()

	_, err := f.s.Tick(0, f.cam)
	require.NoError(t, err)
	assert.Zero(t, f.s.Status().WinPercent)
	assert.False(t, f.s.WinCue().Playing())
	on, c := f.recorder.Blur()
	assert.True(t, on)
	assert.Equal(t, math32.Vec4(0, 0, 0.5, 1), c)
}

func TestPropertyRespawnAlwaysLandsOnSpawn(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		f := newFixture(t, testConfig("c1.xml"), nil)
		x := rapid.Float32Range(-50, 50).Draw(rt, "x")
		z := rapid.Float32Range(-50, 50).Draw(rt, "z")
		y := rapid.Float32Range(-1000, -5.01).Draw(rt, "y")
		f.s.MovePlayer(math32.Vec3(x, y, z))
		if _, err := f.s.Tick(0, f.cam); err != nil {
			rt.Fatal(err)
		}
		want, _ := f.s.CurrentRoom().SpawnPoint(2)
		if got := f.s.PlayerPosition(); got != want {
			rt.Fatalf("respawned at %v, want %v", got, want)
		}
	})
}

func TestAimCamera_FollowsSpawnFacing(t *testing.T) {
	f := newFixture(t, testConfig("c1.xml"), nil)
	f.s.AimCamera(f.cam)
	assert.InDelta(t, 2.7, f.cam.Eye.Y, 1e-5)
	assert.Equal(t, float32(2.5), f.cam.Eye.X)
	look := f.cam.Look()
	assert.InDelta(t, 0, look.X, 1e-5)
	assert.InDelta(t, -1, look.Z, 1e-5)

	f = newFixture(t, testConfig("a1.xml"), nil)
	f.s.AimCamera(f.cam)
	look = f.cam.Look()
	assert.InDelta(t, -1, look.X, 1e-5)
	assert.InDelta(t, 0, look.Z, 1e-5)
}
