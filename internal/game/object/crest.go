package object

// CrestType is the effect a crest has while seen.
type CrestType int

const (
	Mobility CrestType = iota
	Leap
	Medusa
	Unlock
	Hades
	Win
)

var crestNames = [...]string{"mobility", "leap", "medusa", "unlock", "hades", "win"}

// String returns the lowercase crest name, or "unknown" for out-of-range values.
func (t CrestType) String() string {
	if t < 0 || int(t) >= len(crestNames) {
		return "unknown"
	}
	return crestNames[t]
}

// ParseCrestType returns the crest type with the given name.
func ParseCrestType(name string) (CrestType, bool) {
	for i, n := range crestNames {
		if n == name {
			return CrestType(i), true
		}
	}
	return 0, false
}

// Crest is the state of a vision-triggered object.
type Crest struct {
	Type CrestType
	// Seen is the result of the most recent visibility test.
	Seen bool
	// Target is a weak reference to the object this crest drives, or nil.
	Target *GameObject
}

// ChangeView records a visibility result.
//
// Postcondition: Returns true when the seen state changed.
func (c *Crest) ChangeView(seen bool) bool {
	changed := c.Seen != seen
	c.Seen = seen
	return changed
}

// DriveTarget sends a moving target to its far waypoint while seen and back
// to its origin while unseen.
//
// Postcondition: No effect when the target is nil or not a moving object.
func (c *Crest) DriveTarget() {
	if c.Target == nil || c.Target.Mover == nil {
		return
	}
	if c.Seen {
		c.Target.Mover.SetDestination(1)
	} else {
		c.Target.Mover.SetDestination(0)
	}
}
