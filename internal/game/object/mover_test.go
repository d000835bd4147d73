package object

import (
	"testing"

	"cogentcore.org/core/math32"
	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestMover_StartsAtFirstWaypoint(t *testing.T) {
	m := NewMover(0.1, math32.Vec3(1, 2, 3), math32.Vec3(4, 5, 6))
	assert.Equal(t, math32.Vec3(1, 2, 3), m.Position())
	assert.Equal(t, 0, m.Destination())
	assert.True(t, m.AtDestination())

	_, moved := m.Advance()
	assert.False(t, moved)
}

func TestMover_AdvanceAndSnap(t *testing.T) {
	m := NewMover(0.4, math32.Vec3(0, 0, 0), math32.Vec3(0, 1, 0))
	m.SetDestination(1)

	p, moved := m.Advance()
	assert.True(t, moved)
	assert.InDelta(t, 0.4, p.Y, 1e-6)
	p, _ = m.Advance()
	assert.InDelta(t, 0.8, p.Y, 1e-6)
	p, _ = m.Advance()
	assert.Equal(t, float32(1), p.Y)
	assert.True(t, m.AtDestination())
}

func TestMover_SetDestinationClamps(t *testing.T) {
	m := NewMover(1, math32.Vec3(0, 0, 0), math32.Vec3(1, 0, 0))
	m.SetDestination(7)
	assert.Equal(t, 1, m.Destination())
	m.SetDestination(-3)
	assert.Equal(t, 0, m.Destination())

	empty := NewMover(1)
	empty.SetDestination(2)
	assert.Equal(t, 0, empty.Destination())
	_, moved := empty.Advance()
	assert.False(t, moved)
}

func TestMover_WaypointsIsCopy(t *testing.T) {
	m := NewMover(1, math32.Vec3(0, 0, 0))
	wp := m.Waypoints()
	wp[0] = math32.Vec3(9, 9, 9)
	assert.Equal(t, math32.Vector3{}, m.Waypoints()[0])
}

func TestPropertyMoverConverges(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		coord := rapid.Float32Range(-20, 20)
		a := math32.Vec3(coord.Draw(t, "ax"), coord.Draw(t, "ay"), coord.Draw(t, "az"))
		b := math32.Vec3(coord.Draw(t, "bx"), coord.Draw(t, "by"), coord.Draw(t, "bz"))
		speed := rapid.Float32Range(0.05, 2).Draw(t, "speed")

		m := NewMover(speed, a, b)
		m.SetDestination(1)
		limit := int(b.Sub(a).Length()/speed) + 2
		for i := 0; i < limit && !m.AtDestination(); i++ {
			m.Advance()
		}
		if !m.AtDestination() {
			t.Fatalf("mover at %v did not reach %v in %d steps", m.Position(), b, limit)
		}
	})
}
