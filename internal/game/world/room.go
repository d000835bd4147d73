package world

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"

	"cogentcore.org/core/math32"
	"go.uber.org/zap"

	"github.com/cory-johannsen/periphery/internal/game/object"
	"github.com/cory-johannsen/periphery/internal/level"
	"github.com/cory-johannsen/periphery/internal/observability"
	"github.com/cory-johannsen/periphery/internal/physics"
)

var (
	// ErrNoWalls is returned when a level description has no wall records.
	ErrNoWalls = errors.New("room has no walls")
	// ErrNoReciprocalExit is returned when a neighbor has no exit leading back.
	ErrNoReciprocalExit = errors.New("neighbor has no exit back to room")
	// ErrExitNotOnEdge is returned when an exit lies on none of the room's four edges.
	ErrExitNotOnEdge = errors.New("exit is not on a room edge")
)

// Mesh and material keys of level geometry.
const (
	MeshCube      = "Cube"
	MeshCrest     = "medusacrest"
	MaterialWall  = "Test Wall"
	MaterialWood  = "Test Wood"
	MaterialCrest = "medusacrest"
)

const (
	cubeHeight     = 1.5
	crestHeight    = 1.5
	crestYaw       = 3.14
	crestLift      = 0.6
	floorThickness = 1
	platformHeight = 3
)

// Bodies is the part of the physics service rooms create geometry with.
type Bodies interface {
	CreateScaledRigidBody(shape string, pos, scale math32.Vector3, mass float32) (physics.BodyID, error)
	SetLayer(id physics.BodyID, layer physics.Layer)
	RemoveBody(id physics.BodyID)
}

// Env is the session-scoped context rooms are parsed and loaded in.
type Env struct {
	// FS holds the level files.
	FS fs.FS
	// AssetsDir is the directory exit file names are resolved against.
	AssetsDir string
	// Bodies creates and removes physics bodies.
	Bodies Bodies
	// MoverSpeed is the per-tick speed of platforms.
	MoverSpeed float32
	Logger     *zap.Logger
}

// Room is one rectangular level segment loaded from a description file.
type Room struct {
	ID    RoomID
	File  string
	X, Z  float32
	Width float32
	Depth float32

	env        *Env
	offX, offZ int
	exits      []Wall
	spawns     []Wall
	cubes      []Cube
	crests     []Wall
	objects    []*object.GameObject
	bodies     []physics.BodyID
	neighbors  []RoomID
	loaded     bool
}

// ParseRoom reads the walls and exits of file and computes the room's extents.
//
// Precondition: env must be fully populated.
// Postcondition: Returns an unloaded Room or an error; a file without walls
// fails with ErrNoWalls.
func ParseRoom(env *Env, file string, x, z float32) (*Room, error) {
	file = path.Clean(file)
	desc, err := level.Load(env.FS, file)
	if err != nil {
		return nil, fmt.Errorf("parsing room: %w", err)
	}
	if len(desc.Walls) == 0 {
		return nil, fmt.Errorf("parsing room %s: %w", file, ErrNoWalls)
	}

	r := &Room{File: file, X: x, Z: z, env: env}
	r.offX, r.offZ = normalisation(desc.Walls)

	for _, rec := range desc.Walls {
		r.extend(wallFromRecord(rec, r.offX, r.offZ))
	}
	for _, rec := range desc.Exits {
		e := wallFromRecord(rec, r.offX, r.offZ)
		e.File = path.Join(env.AssetsDir, rec.String("file"))
		r.extend(e)
		r.exits = append(r.exits, e)
	}
	return r, nil
}

// normalisation returns the offsets that make every wall's row and column non-negative.
func normalisation(walls []level.Record) (offX, offZ int) {
	for i, rec := range walls {
		col, row := rec.Int("col"), rec.Int("row")
		if i == 0 || col < -offX {
			offX = -col
		}
		if i == 0 || row < -offZ {
			offZ = -row
		}
	}
	return offX, offZ
}

func (r *Room) extend(w Wall) {
	r.Width = math32.Max(r.Width, float32(w.Col)+w.XLength)
	r.Depth = math32.Max(r.Depth, float32(w.Row)+w.ZLength)
}

// Loaded reports whether Load has instantiated the room's objects.
func (r *Room) Loaded() bool {
	return r.loaded
}

// Exits returns the room's exit descriptors.
func (r *Room) Exits() []Wall {
	return r.exits
}

// Spawns returns the room's spawn descriptors. Empty until loaded.
func (r *Room) Spawns() []Wall {
	return r.spawns
}

// Cubes returns the room's platform descriptors. Empty until loaded.
func (r *Room) Cubes() []Cube {
	return r.cubes
}

// Crests returns the room's crest descriptors. Empty until loaded.
func (r *Room) Crests() []Wall {
	return r.crests
}

// Objects returns the objects the room owns.
func (r *Room) Objects() []*object.GameObject {
	return r.objects
}

// Neighbors returns the arena ids of linked rooms, one per exit.
func (r *Room) Neighbors() []RoomID {
	return r.neighbors
}

// HasWinCrest reports whether the room holds a Win crest, which makes it terminal.
func (r *Room) HasWinCrest() bool {
	for _, c := range r.crests {
		if c.Effect == object.Win {
			return true
		}
	}
	return false
}

// ExitTo returns the exit leading to file.
func (r *Room) ExitTo(file string) (Wall, bool) {
	for _, e := range r.exits {
		if e.File == file {
			return e, true
		}
	}
	return Wall{}, false
}

// Contains reports whether the world point (x, z) lies strictly inside the room.
func (r *Room) Contains(x, z float32) bool {
	return x > r.X && x < r.X+r.Width && z > r.Z && z < r.Z+r.Depth
}

// SpawnPoint returns the world position of the room's first spawn and its facing.
//
// Postcondition: A room without spawns yields its center and Up.
func (r *Room) SpawnPoint(height float32) (math32.Vector3, Direction) {
	if len(r.spawns) == 0 {
		return math32.Vec3(r.X+r.Width/2, height, r.Z+r.Depth/2), Up
	}
	s := r.spawns[0]
	return math32.Vec3(r.X+s.CenterX, height, r.Z+s.CenterZ), s.Direction
}

// Load instantiates the room's bodies and objects at world offset (x, z).
//
// Postcondition: On success the room is loaded and a second call is a no-op.
// On failure every body created by this call is removed.
func (r *Room) Load(x, z float32) error {
	if r.loaded {
		return nil
	}
	desc, err := level.Load(r.env.FS, r.File)
	if err != nil {
		return fmt.Errorf("loading room: %w", err)
	}
	r.X, r.Z = x, z

	rows := make(map[int][]Wall)
	for _, rec := range desc.Walls {
		w := wallFromRecord(rec, r.offX, r.offZ)
		rows[w.Row] = append(rows[w.Row], w)
	}
	r.spawns = r.spawns[:0]
	for _, rec := range desc.Spawns {
		r.spawns = append(r.spawns, spawnFromRecord(rec, r.offX, r.offZ))
	}
	r.cubes = r.cubes[:0]
	for _, rec := range desc.Cubes {
		r.cubes = append(r.cubes, cubeFromRecord(rec, r.offX, r.offZ))
	}
	r.crests = r.crests[:0]
	for _, rec := range desc.Crests {
		r.crests = append(r.crests, crestFromRecord(rec, r.offX, r.offZ))
	}

	if err := r.instantiate(rows); err != nil {
		r.Release()
		return fmt.Errorf("loading room %s: %w", r.File, err)
	}
	r.loaded = true

	r.env.Logger.Info("room loaded", append(observability.Room(r.File, r.X, r.Z),
		zap.Float32("width", r.Width),
		zap.Float32("depth", r.Depth),
		zap.Int("objects", len(r.objects)),
	)...)
	return nil
}

func (r *Room) instantiate(rows map[int][]Wall) error {
	order := make([]int, 0, len(rows))
	for row := range rows {
		order = append(order, row)
	}
	sort.Ints(order)
	for _, row := range order {
		for _, w := range rows[row] {
			pos := math32.Vec3(w.CenterX+r.X, w.YLength/2, w.CenterZ+r.Z)
			scale := math32.Vec3(w.XLength, w.YLength, w.ZLength)
			if _, err := r.addStatic(MaterialWall, pos, scale, physics.LayerWorld); err != nil {
				return err
			}
		}
	}

	platforms := make(map[string]*object.GameObject, len(r.cubes))
	for _, c := range r.cubes {
		origin, displaced := c.Waypoints(r.X, r.Z)
		body, err := r.createBody(origin, math32.Vec3(c.XLength, platformHeight, c.ZLength), physics.LayerPlatform)
		if err != nil {
			return err
		}
		obj := object.NewMoving(MeshCube, MaterialWood, body, object.NewMover(r.env.MoverSpeed, origin, displaced))
		obj.SetScale(c.XLength, platformHeight, c.ZLength)
		platforms[c.Key] = obj
		r.objects = append(r.objects, obj)
	}

	for _, c := range r.crests {
		pos := math32.Vec3(c.CenterX+r.X, crestHeight, c.CenterZ+r.Z)
		body, err := r.createBody(pos, math32.Vec3(1, 1, 1), physics.LayerObject)
		if err != nil {
			return err
		}
		obj := object.NewCrest(MeshCrest, MaterialCrest, body, pos, c.Effect)
		obj.Rotate(0, crestYaw, 0)
		obj.Translate(0, crestLift, 0)
		if c.Target != "" {
			if target, ok := platforms[c.Target]; ok {
				obj.Crest.Target = target
			} else {
				r.env.Logger.Debug("crest target not found",
					zap.String("room", r.File), zap.String("target", c.Target))
			}
		}
		r.objects = append(r.objects, obj)
	}

	floor := math32.Vec3(r.X+r.Width/2, -floorThickness/2.0, r.Z+r.Depth/2)
	_, err := r.addStatic(MaterialWood, floor, math32.Vec3(r.Width, floorThickness, r.Depth), physics.LayerWorld)
	return err
}

func (r *Room) createBody(pos, scale math32.Vector3, layer physics.Layer) (physics.BodyID, error) {
	id, err := r.env.Bodies.CreateScaledRigidBody(physics.ShapeCube, pos, scale, 0)
	if err != nil {
		return 0, err
	}
	r.env.Bodies.SetLayer(id, layer)
	r.bodies = append(r.bodies, id)
	return id, nil
}

func (r *Room) addStatic(material string, pos, scale math32.Vector3, layer physics.Layer) (*object.GameObject, error) {
	body, err := r.createBody(pos, scale, layer)
	if err != nil {
		return nil, err
	}
	obj := object.New(MeshCube, material, body, pos)
	obj.SetScale(scale.X, scale.Y, scale.Z)
	obj.Layer = layer
	r.objects = append(r.objects, obj)
	return obj, nil
}

// LoadNeighbors links the room to a room for each of its exits, parsing and
// loading rooms the arena does not hold yet at an offset that makes them abut.
//
// Precondition: the room is in arena.
// Postcondition: len(Neighbors()) == len(Exits()) on success.
func (r *Room) LoadNeighbors(arena *Arena) error {
	r.neighbors = r.neighbors[:0]
	for _, exit := range r.exits {
		if id, ok := arena.Lookup(exit.File); ok {
			r.neighbors = append(r.neighbors, id)
			continue
		}

		nb, err := ParseRoom(r.env, exit.File, 0, 0)
		if err != nil {
			return fmt.Errorf("neighbor of %s: %w", r.File, err)
		}
		entrance, ok := nb.ExitTo(r.File)
		if !ok {
			return fmt.Errorf("%s -> %s: %w", r.File, nb.File, ErrNoReciprocalExit)
		}
		x, z, err := r.neighborOffset(exit, entrance, nb)
		if err != nil {
			return err
		}
		if err := nb.Load(x, z); err != nil {
			return fmt.Errorf("neighbor of %s: %w", r.File, err)
		}
		r.neighbors = append(r.neighbors, arena.Add(nb))
	}
	return nil
}

// neighborOffset places nb so its entrance lines up with exit. Edges are
// tried top, bottom, left, right; the first match wins, so a corner exit
// connects through its row edge.
func (r *Room) neighborOffset(exit, entrance Wall, nb *Room) (x, z float32, err error) {
	x, z = r.X, r.Z
	switch {
	case exit.Row == 0:
		x -= entrance.CenterX - exit.CenterX
		z -= nb.Depth
	case float32(exit.Row) == r.Depth-1:
		x -= entrance.CenterX - exit.CenterX
		z += r.Depth
	case exit.Col == 0:
		x -= nb.Width
		z -= entrance.CenterZ - exit.CenterZ
	case float32(exit.Col) == r.Width-1:
		x += r.Width
		z -= entrance.CenterZ - exit.CenterZ
	default:
		return 0, 0, fmt.Errorf("%s exit to %s at row %d col %d: %w", r.File, exit.File, exit.Row, exit.Col, ErrExitNotOnEdge)
	}
	return x, z, nil
}

// Release removes the room's bodies and drops its objects and descriptors.
// Neighbor links are arena ids and are left to the arena.
func (r *Room) Release() {
	for _, id := range r.bodies {
		r.env.Bodies.RemoveBody(id)
	}
	r.bodies = nil
	r.objects = nil
	r.spawns = nil
	r.cubes = nil
	r.crests = nil
	r.neighbors = nil
	r.loaded = false
}
