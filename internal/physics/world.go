// Package physics is the rigid-body service used by rooms and the visibility gate.
//
// Bodies are axis-aligned boxes. Static bodies (mass 0) never move on their
// own; dynamic bodies fall under gravity and come to rest on World-layer boxes.
package physics

import (
	"errors"
	"fmt"
	"sort"

	"cogentcore.org/core/math32"
	"go.uber.org/zap"

	"github.com/cory-johannsen/periphery/internal/config"
)

// ShapeCube is the unit cube every level box is built from.
const ShapeCube = "Cube"

// ErrUnknownShape is returned when a body is requested for an unregistered shape.
var ErrUnknownShape = errors.New("unknown shape")

// BodyID is a weak handle to a body. The zero value means no body.
type BodyID uint32

// Layer groups bodies for collision and occlusion queries.
type Layer int

const (
	// LayerObject holds props, crests and projectiles.
	LayerObject Layer = iota
	// LayerWorld holds walls and floors. Only World bodies occlude vision.
	LayerWorld
	// LayerPlatform holds scripted platforms: dynamic bodies rest on them
	// but they do not occlude vision.
	LayerPlatform
)

// stepUp is how far below a support's top a body may sink and still be put
// back on it, so a rising platform carries what stands on it.
const stepUp = 0.1

// String returns the layer name.
func (l Layer) String() string {
	switch l {
	case LayerWorld:
		return "world"
	case LayerPlatform:
		return "platform"
	default:
		return "object"
	}
}

// Body is a snapshot of one rigid body.
type Body struct {
	ID       BodyID
	Shape    string
	Position math32.Vector3
	Scale    math32.Vector3
	Velocity math32.Vector3
	Mass     float32
	Layer    Layer
}

// Dynamic reports whether the body is moved by the simulation.
func (b Body) Dynamic() bool {
	return b.Mass != 0
}

// Bounds returns the world-space box occupied by the body.
func (b Body) Bounds(size math32.Vector3) math32.Box3 {
	var box math32.Box3
	box.SetFromCenterAndSize(b.Position, size.Mul(b.Scale))
	return box
}

// World owns every body of a session and advances them on a fixed step.
type World struct {
	step    float32
	gravity float32
	acc     float32

	shapes map[string]math32.Vector3
	bodies map[BodyID]*Body
	nextID BodyID
	logger *zap.Logger
}

// NewWorld creates an empty world with the unit cube shape registered.
//
// Precondition: cfg.StepHz > 0; logger must not be nil.
// Postcondition: Returns a World with no bodies.
func NewWorld(cfg config.PhysicsConfig, logger *zap.Logger) *World {
	w := &World{
		step:    cfg.Step(),
		gravity: cfg.Gravity,
		shapes:  make(map[string]math32.Vector3),
		bodies:  make(map[BodyID]*Body),
		logger:  logger,
	}
	w.RegisterShape(ShapeCube, math32.Vec3(1, 1, 1))
	return w
}

// RegisterShape adds or replaces a named box shape of the given unscaled size.
func (w *World) RegisterShape(name string, size math32.Vector3) {
	w.shapes[name] = size
	w.logger.Debug("shape registered", zap.String("shape", name), zap.Any("size", size))
}

// CreateRigidBody creates a unit-scaled body of the named shape.
//
// Precondition: shape must be registered.
// Postcondition: Returns a non-zero BodyID or an error wrapping ErrUnknownShape.
func (w *World) CreateRigidBody(shape string, pos math32.Vector3, mass float32) (BodyID, error) {
	return w.CreateScaledRigidBody(shape, pos, math32.Vec3(1, 1, 1), mass)
}

// CreateScaledRigidBody creates a body of the named shape with the given scale.
//
// Precondition: shape must be registered.
// Postcondition: Returns a non-zero BodyID or an error wrapping ErrUnknownShape.
func (w *World) CreateScaledRigidBody(shape string, pos, scale math32.Vector3, mass float32) (BodyID, error) {
	if _, ok := w.shapes[shape]; !ok {
		return 0, fmt.Errorf("creating body %q: %w", shape, ErrUnknownShape)
	}
	w.nextID++
	id := w.nextID
	w.bodies[id] = &Body{
		ID:       id,
		Shape:    shape,
		Position: pos,
		Scale:    scale,
		Mass:     mass,
		Layer:    LayerObject,
	}
	return id, nil
}

// SetLayer moves a body to the given layer. Unknown ids are ignored.
func (w *World) SetLayer(id BodyID, layer Layer) {
	if b, ok := w.bodies[id]; ok {
		b.Layer = layer
	}
}

// RemoveBody deletes a body. Removing an unknown id is a no-op.
func (w *World) RemoveBody(id BodyID) {
	delete(w.bodies, id)
}

// Body returns a snapshot of the body with the given id.
func (w *World) Body(id BodyID) (Body, bool) {
	b, ok := w.bodies[id]
	if !ok {
		return Body{}, false
	}
	return *b, true
}

// Position returns the body's center.
func (w *World) Position(id BodyID) (math32.Vector3, bool) {
	b, ok := w.bodies[id]
	if !ok {
		return math32.Vector3{}, false
	}
	return b.Position, true
}

// SetPosition teleports a body and clears its velocity.
func (w *World) SetPosition(id BodyID, pos math32.Vector3) {
	if b, ok := w.bodies[id]; ok {
		b.Position = pos
		b.Velocity = math32.Vector3{}
	}
}

// SetVelocity sets a body's linear velocity. Static bodies ignore it.
func (w *World) SetVelocity(id BodyID, v math32.Vector3) {
	if b, ok := w.bodies[id]; ok && b.Dynamic() {
		b.Velocity = v
	}
}

// Len returns the number of live bodies.
func (w *World) Len() int {
	return len(w.bodies)
}

// Update accumulates dt and runs at most one fixed step.
//
// Postcondition: Returns true if a step was simulated during this call.
func (w *World) Update(dt float32) bool {
	w.acc += dt
	if w.acc < w.step {
		return false
	}
	w.acc -= w.step
	// a long frame must not queue a burst of catch-up steps
	if w.acc > w.step {
		w.acc = w.step
	}
	w.simulate(w.step)
	return true
}

func (w *World) simulate(h float32) {
	static := w.supports()
	for _, id := range w.ids() {
		b := w.bodies[id]
		if !b.Dynamic() {
			continue
		}
		size := w.shapes[b.Shape].Mul(b.Scale)
		prevBottom := b.Position.Y - size.Y/2

		b.Velocity.Y += w.gravity * h
		b.Position = b.Position.Add(b.Velocity.MulScalar(h))

		bottom := b.Position.Y - size.Y/2
		for _, s := range static {
			top := s.Max.Y
			if prevBottom < top-stepUp || bottom > top {
				continue
			}
			if !overlapsXZ(b.Bounds(w.shapes[b.Shape]), s) {
				continue
			}
			b.Position.Y = top + size.Y/2
			if b.Velocity.Y < 0 {
				b.Velocity.Y = 0
			}
			break
		}
	}
}

// OnGround reports whether a dynamic body is resting on a World or Platform box.
func (w *World) OnGround(id BodyID) bool {
	b, ok := w.bodies[id]
	if !ok {
		return false
	}
	size := w.shapes[b.Shape].Mul(b.Scale)
	bottom := b.Position.Y - size.Y/2
	for _, s := range w.supports() {
		if math32.Abs(bottom-s.Max.Y) < 1e-3 && overlapsXZ(b.Bounds(w.shapes[b.Shape]), s) {
			return true
		}
	}
	return false
}

// supports returns the boxes dynamic bodies can stand on.
func (w *World) supports() []math32.Box3 {
	var out []math32.Box3
	for _, id := range w.ids() {
		b := w.bodies[id]
		if !b.Dynamic() && (b.Layer == LayerWorld || b.Layer == LayerPlatform) {
			out = append(out, b.Bounds(w.shapes[b.Shape]))
		}
	}
	return out
}

// ids returns body ids in creation order so simulation is deterministic.
func (w *World) ids() []BodyID {
	ids := make([]BodyID, 0, len(w.bodies))
	for id := range w.bodies {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func overlapsXZ(a, b math32.Box3) bool {
	return a.Min.X < b.Max.X && a.Max.X > b.Min.X &&
		a.Min.Z < b.Max.Z && a.Max.Z > b.Min.Z
}
