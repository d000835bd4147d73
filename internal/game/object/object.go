// Package object defines the game objects placed by rooms and gameplay.
package object

import (
	"cogentcore.org/core/math32"
	"github.com/google/uuid"

	"github.com/cory-johannsen/periphery/internal/physics"
)

// Kind selects which variant payload a GameObject carries.
type Kind int

const (
	// KindStatic is plain geometry.
	KindStatic Kind = iota
	// KindMoving carries a Mover.
	KindMoving
	// KindCrest carries a Crest.
	KindCrest
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindMoving:
		return "moving"
	case KindCrest:
		return "crest"
	default:
		return "static"
	}
}

// Transform is an object's placement. Offset is a visual displacement
// applied on top of Position, which tracks the physics body.
type Transform struct {
	Position math32.Vector3
	Offset   math32.Vector3
	Rotation math32.Vector3
	Scale    math32.Vector3
}

// GameObject is anything a room or gameplay puts in the world.
//
// Exactly one of Mover and Crest is set for KindMoving and KindCrest
// respectively; both are nil for KindStatic.
type GameObject struct {
	ID             uuid.UUID
	MeshKey        string
	MaterialKey    string
	Transform      Transform
	Body           physics.BodyID
	Layer          physics.Layer
	VisionAffected bool
	Kind           Kind
	Mover          *Mover
	Crest          *Crest
}

// New creates a static object bound to body.
//
// Postcondition: Scale is (1,1,1) and Position is pos.
func New(mesh, material string, body physics.BodyID, pos math32.Vector3) *GameObject {
	return &GameObject{
		ID:          uuid.New(),
		MeshKey:     mesh,
		MaterialKey: material,
		Transform: Transform{
			Position: pos,
			Scale:    math32.Vec3(1, 1, 1),
		},
		Body: body,
	}
}

// NewMoving creates a vision-affected object that follows mover.
//
// Precondition: mover must not be nil.
func NewMoving(mesh, material string, body physics.BodyID, mover *Mover) *GameObject {
	o := New(mesh, material, body, mover.Position())
	o.Kind = KindMoving
	o.Mover = mover
	o.VisionAffected = true
	return o
}

// NewCrest creates a vision-affected crest of the given type.
func NewCrest(mesh, material string, body physics.BodyID, pos math32.Vector3, t CrestType) *GameObject {
	o := New(mesh, material, body, pos)
	o.Kind = KindCrest
	o.Crest = &Crest{Type: t}
	o.VisionAffected = true
	return o
}

// SetScale replaces the object's scale.
func (o *GameObject) SetScale(x, y, z float32) {
	o.Transform.Scale = math32.Vec3(x, y, z)
}

// Rotate adds Euler angles in radians to the object's rotation.
func (o *GameObject) Rotate(x, y, z float32) {
	o.Transform.Rotation = o.Transform.Rotation.Add(math32.Vec3(x, y, z))
}

// Translate adds to the object's visual offset.
func (o *GameObject) Translate(x, y, z float32) {
	o.Transform.Offset = o.Transform.Offset.Add(math32.Vec3(x, y, z))
}

// WorldPosition returns where the object is drawn.
func (o *GameObject) WorldPosition() math32.Vector3 {
	return o.Transform.Position.Add(o.Transform.Offset)
}

// WorldMatrix returns the model matrix built from scale, rotation and world position.
func (o *GameObject) WorldMatrix() *math32.Matrix4 {
	var m math32.Matrix4
	m.SetTransform(o.WorldPosition(), math32.NewQuatEuler(o.Transform.Rotation), o.Transform.Scale)
	return &m
}
