// Package session runs one play session: the room graph, the player body,
// the per-tick visibility pass and the effects it drives.
package session

import (
	"fmt"
	"io/fs"

	"cogentcore.org/core/math32"
	"go.uber.org/zap"

	"github.com/cory-johannsen/periphery/internal/audio"
	"github.com/cory-johannsen/periphery/internal/config"
	"github.com/cory-johannsen/periphery/internal/effects"
	"github.com/cory-johannsen/periphery/internal/game/object"
	"github.com/cory-johannsen/periphery/internal/game/world"
	"github.com/cory-johannsen/periphery/internal/observability"
	"github.com/cory-johannsen/periphery/internal/physics"
	"github.com/cory-johannsen/periphery/internal/render"
	"github.com/cory-johannsen/periphery/internal/scripting"
	"github.com/cory-johannsen/periphery/internal/vision"
)

var _ vision.Effects = (*effects.Dispatcher)(nil)

// winThreshold is the meter value that ends an area.
const winThreshold = 0.99

// eyeHeight is the camera's height above the player body's center.
const eyeHeight = 0.7

var playerScale = math32.Vec3(0.5, 1.8, 0.5)

// Deps are the collaborators a Session drives.
type Deps struct {
	Config    config.Config
	FS        fs.FS
	Physics   *physics.World
	Post      render.PostProcessor
	Instances render.InstanceBuilder
	Sink      audio.Sink
	// Scripts is optional; nil disables crest hooks.
	Scripts *scripting.Manager
	Logger  *zap.Logger
}

// Report summarises one Tick.
type Report struct {
	Stepped   bool
	Advanced  bool
	Respawned bool
	Room      string
	Gate      vision.Report
}

// Session owns the active object list and everything built from it.
// It is single-threaded: all calls happen on the gameplay thread.
type Session struct {
	cfg        config.Config
	physics    *physics.World
	builder    *world.Builder
	active     *object.List
	gate       *vision.Gate
	dispatcher *effects.Dispatcher
	status     *effects.Status
	cue        *audio.Cue
	post       render.PostProcessor
	instances  render.InstanceBuilder
	player     physics.BodyID
	yaw        float32
	current    *world.Room
	procedural []*object.GameObject
	finished   bool
	logger     *zap.Logger
}

// New wires a Session. No rooms are loaded until Start.
//
// Precondition: every field of d except Scripts must be set.
// Postcondition: Returns error for an unknown vision trigger or a failed player body.
func New(d Deps) (*Session, error) {
	trigger, err := vision.ParseTrigger(d.Config.Vision.Trigger)
	if err != nil {
		return nil, err
	}
	player, err := d.Physics.CreateScaledRigidBody(physics.ShapeCube, math32.Vec3(0, d.Config.Player.SpawnHeight, 0), playerScale, 1)
	if err != nil {
		return nil, fmt.Errorf("creating player body: %w", err)
	}

	s := &Session{
		cfg:       d.Config,
		physics:   d.Physics,
		active:    &object.List{},
		status:    &effects.Status{},
		cue:       audio.NewWinCue(d.Config.Audio, d.Sink, d.Logger),
		post:      d.Post,
		instances: d.Instances,
		player:    player,
		logger:    d.Logger,
	}
	env := &world.Env{
		FS:         d.FS,
		AssetsDir:  d.Config.Level.AssetsDir,
		Bodies:     d.Physics,
		MoverSpeed: d.Config.Player.MoverSpeed,
		Logger:     d.Logger,
	}
	s.builder = world.NewBuilder(env, s.active)
	s.dispatcher = effects.NewDispatcher(s.status, d.Post, s.cue, d.Config.Player.WinRate, d.Logger)
	s.gate = vision.NewGate(d.Physics, s.dispatcher, trigger, d.Logger)

	if d.Scripts != nil {
		d.Scripts.WinPercent = func() float64 { return float64(s.status.WinPercent) }
		d.Scripts.SetBlur = func(r, g, b, a float64) {
			s.post.SetBlurColor(math32.Vec4(float32(r), float32(g), float32(b), float32(a)))
			s.post.AddBlur()
		}
		s.dispatcher.SetHooks(d.Scripts)
	}
	return s, nil
}

// Start builds the configured start level at the configured root offset.
func (s *Session) Start() error {
	return s.build(s.cfg.Level.StartPath(), s.cfg.Level.RootX, s.cfg.Level.RootZ)
}

func (s *Session) build(file string, x, z float32) error {
	id, err := s.builder.Root(file, x, z)
	if err != nil {
		return fmt.Errorf("starting area %s: %w", file, err)
	}
	if err := s.builder.BuildRooms(id); err != nil {
		return fmt.Errorf("starting area %s: %w", file, err)
	}
	s.current = s.builder.Room(id)
	s.respawn()
	s.rebuildRender()
	s.logger.Info("area built",
		zap.String("root", file),
		zap.Int("rooms", s.builder.Len()),
		zap.Int("objects", s.active.Len()))
	return nil
}

// Tick runs one frame: win check, physics, room tracking, respawn, then
// the visibility pass with cam.
func (s *Session) Tick(dt float32, cam *physics.Camera) (Report, error) {
	var rep Report
	if s.status.WinPercent >= winThreshold {
		rep.Advanced = true
		return rep, s.AdvanceArea()
	}

	if s.physics.Update(dt) {
		rep.Stepped = true
		s.syncTransforms()
	}

	pos := s.PlayerPosition()
	if r, ok := s.builder.RoomAt(pos.X, pos.Z); ok && r != s.current {
		s.current = r
		s.logger.Debug("entered room", observability.Room(r.File, r.X, r.Z)...)
	}
	if s.current != nil {
		rep.Room = s.current.File
	}

	if pos.Y < s.killPlane() {
		s.respawn()
		rep.Respawned = true
	}

	if !s.status.WinSeen && s.cue.Playing() {
		s.cue.Stop()
	}
	s.status.ResetFlags()
	s.status.OnGround = s.physics.OnGround(s.player)
	s.post.RemoveBlur()

	rep.Gate = s.gate.Tick(s.active.All(), cam)
	return rep, nil
}

func (s *Session) killPlane() float32 {
	if s.cfg.Player.DevMode {
		return s.cfg.Player.DevKillPlane
	}
	return s.cfg.Player.KillPlane
}

func (s *Session) syncTransforms() {
	for _, o := range s.active.All() {
		if o.Body == 0 {
			continue
		}
		if p, ok := s.physics.Position(o.Body); ok {
			o.Transform.Position = p
		}
	}
}

// respawn moves the player to the current room's spawn and faces it.
func (s *Session) respawn() {
	if s.current == nil {
		return
	}
	s.placeAt(s.current)
}

func (s *Session) placeAt(r *world.Room) {
	p, dir := r.SpawnPoint(s.cfg.Player.SpawnHeight)
	s.physics.SetPosition(s.player, p)
	s.yaw = dir.Yaw()
	s.current = r
}

func (s *Session) rebuildRender() {
	s.instances.BuildInstancedBuffer(s.active.SortedByMesh())
}

// PlayerPosition returns the player body's position.
func (s *Session) PlayerPosition() math32.Vector3 {
	p, _ := s.physics.Position(s.player)
	return p
}

// AimCamera puts cam at the player's eye looking along the current yaw.
// Yaw π/2 faces -Z, the top of a level map.
func (s *Session) AimCamera(cam *physics.Camera) {
	eye := s.PlayerPosition().Add(math32.Vec3(0, eyeHeight, 0))
	look := math32.Vec3(math32.Cos(s.yaw), 0, -math32.Sin(s.yaw))
	cam.LookAt(eye, eye.Add(look))
}

// MovePlayer teleports the player. Input handling lives with the caller.
func (s *Session) MovePlayer(p math32.Vector3) {
	s.physics.SetPosition(s.player, p)
}

// Yaw returns the facing set by the last respawn, in radians.
func (s *Session) Yaw() float32 {
	return s.yaw
}

// Status returns the player's crest-driven state.
func (s *Session) Status() *effects.Status {
	return s.status
}

// WinCue returns the cue played while a Win crest is in view.
func (s *Session) WinCue() *audio.Cue {
	return s.cue
}

// Dispatcher returns the crest effect dispatcher so callers can register handlers.
func (s *Session) Dispatcher() *effects.Dispatcher {
	return s.dispatcher
}

// CurrentRoom returns the room the player was last seen in, or nil.
func (s *Session) CurrentRoom() *world.Room {
	return s.current
}

// Rooms returns the built rooms in build order.
func (s *Session) Rooms() []*world.Room {
	return s.builder.Loaded()
}

// Objects returns the active objects.
func (s *Session) Objects() []*object.GameObject {
	return s.active.All()
}

// Finished reports whether the last area has been won.
func (s *Session) Finished() bool {
	return s.finished
}
