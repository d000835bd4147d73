package object

import (
	"cogentcore.org/core/math32"
)

// Mover interpolates an object between waypoints at a fixed speed per tick.
type Mover struct {
	waypoints []math32.Vector3
	pos       math32.Vector3
	dest      int
	speed     float32
}

// NewMover creates a mover resting on its first waypoint.
//
// Precondition: len(waypoints) >= 1; speed > 0.
func NewMover(speed float32, waypoints ...math32.Vector3) *Mover {
	m := &Mover{
		waypoints: append([]math32.Vector3(nil), waypoints...),
		speed:     speed,
	}
	if len(m.waypoints) > 0 {
		m.pos = m.waypoints[0]
	}
	return m
}

// Position returns the current position.
func (m *Mover) Position() math32.Vector3 {
	return m.pos
}

// Waypoints returns a copy of the waypoint list.
func (m *Mover) Waypoints() []math32.Vector3 {
	return append([]math32.Vector3(nil), m.waypoints...)
}

// Destination returns the index of the waypoint being approached.
func (m *Mover) Destination() int {
	return m.dest
}

// SetDestination selects the waypoint to approach, clamped to the valid range.
func (m *Mover) SetDestination(i int) {
	if i < 0 {
		i = 0
	}
	if i >= len(m.waypoints) {
		i = len(m.waypoints) - 1
	}
	if i < 0 {
		i = 0
	}
	m.dest = i
}

// AtDestination reports whether the mover sits on its destination waypoint.
func (m *Mover) AtDestination() bool {
	if len(m.waypoints) == 0 {
		return true
	}
	return m.pos == m.waypoints[m.dest]
}

// Advance moves one step toward the destination, snapping onto it when
// closer than one step.
//
// Postcondition: Returns the new position and whether it changed.
func (m *Mover) Advance() (math32.Vector3, bool) {
	if m.AtDestination() {
		return m.pos, false
	}
	target := m.waypoints[m.dest]
	delta := target.Sub(m.pos)
	dist := delta.Length()
	if dist <= m.speed {
		m.pos = target
	} else {
		m.pos = m.pos.Add(delta.MulScalar(m.speed / dist))
	}
	return m.pos, true
}
