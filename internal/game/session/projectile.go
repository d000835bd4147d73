package session

import (
	"fmt"

	"cogentcore.org/core/math32"
	"go.uber.org/zap"

	"github.com/cory-johannsen/periphery/internal/game/object"
	"github.com/cory-johannsen/periphery/internal/physics"
)

const (
	throwDistance = 2
	throwSpeed    = 15
	throwMass     = 1
)

// ThrowCrest launches a crest of type t from the player along look.
//
// Precondition: look must be non-zero.
// Postcondition: The crest is active, vision affected and owned by the session.
func (s *Session) ThrowCrest(t object.CrestType, look math32.Vector3) (*object.GameObject, error) {
	dir := look.Normal()
	pos := s.PlayerPosition().Add(dir.MulScalar(throwDistance))
	body, err := s.physics.CreateRigidBody(physics.ShapeCube, pos, throwMass)
	if err != nil {
		return nil, fmt.Errorf("throwing crest: %w", err)
	}
	s.physics.SetVelocity(body, dir.MulScalar(throwSpeed))

	obj := object.NewCrest(physics.ShapeCube, t.String(), body, pos, t)
	s.procedural = append(s.procedural, obj)
	s.active.Add(obj)
	s.rebuildRender()
	s.logger.Debug("crest thrown", zap.Stringer("crest", t), zap.Stringer("id", obj.ID))
	return obj, nil
}

// Despawn removes a thrown crest.
//
// Postcondition: Returns false if obj is not a procedural object of this session.
func (s *Session) Despawn(obj *object.GameObject) bool {
	for i, o := range s.procedural {
		if o != obj {
			continue
		}
		s.procedural = append(s.procedural[:i], s.procedural[i+1:]...)
		s.active.Remove(obj)
		s.physics.RemoveBody(obj.Body)
		s.rebuildRender()
		return true
	}
	return false
}

// Procedural returns the thrown crests still alive.
func (s *Session) Procedural() []*object.GameObject {
	return s.procedural
}
