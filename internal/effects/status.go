// Package effects turns crest view results into gameplay state: player
// status flags, the win meter, screen blur and the win cue.
package effects

// Status is the player's crest-driven state.
type Status struct {
	Mobility bool
	Leap     bool
	Medusa   bool
	// WinSeen records that a Win crest was in view during the last gate pass.
	WinSeen bool
	// OnGround is owned by the session and refreshed from physics each tick.
	OnGround bool
	// WinPercent is the win meter in [0, 1].
	WinPercent float32
}

// ResetFlags clears the per-pass crest flags.
//
// Postcondition: OnGround and WinPercent are unchanged.
func (s *Status) ResetFlags() {
	s.Mobility = false
	s.Leap = false
	s.Medusa = false
	s.WinSeen = false
}

// AddWin raises the win meter by delta, capped at 1.
func (s *Status) AddWin(delta float32) {
	s.WinPercent += delta
	if s.WinPercent > 1 {
		s.WinPercent = 1
	}
}
