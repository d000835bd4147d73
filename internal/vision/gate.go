// Package vision decides each tick which crests the player can see.
package vision

import (
	"fmt"

	"cogentcore.org/core/math32"
	"go.uber.org/zap"

	"github.com/cory-johannsen/periphery/internal/game/object"
	"github.com/cory-johannsen/periphery/internal/physics"
)

// Physics is the body service the gate queries and moves platforms through.
type Physics interface {
	BroadPhaseVisible(cam *physics.Camera, p math32.Vector3) bool
	NarrowPhaseVisible(cam *physics.Camera, target physics.BodyID) bool
	SetPosition(id physics.BodyID, p math32.Vector3)
}

// Effects receives crest view results. The gate never interprets crest types.
type Effects interface {
	// ViewChanged reports a view result: every tick under Level, on a flip under Edge.
	ViewChanged(obj *object.GameObject, seen bool)
	// StillSeen is called under Edge for a crest that stays in view, so
	// effects that hold only while seen can be re-applied each tick.
	StillSeen(obj *object.GameObject)
}

// Trigger selects when Effects.ViewChanged is called.
type Trigger int

const (
	// Level calls ViewChanged for every crest on every tick.
	Level Trigger = iota
	// Edge calls ViewChanged only when a crest's seen state flips.
	Edge
)

// ParseTrigger converts a configuration value to a Trigger.
func ParseTrigger(s string) (Trigger, error) {
	switch s {
	case "level", "":
		return Level, nil
	case "edge":
		return Edge, nil
	default:
		return Level, fmt.Errorf("unknown vision trigger %q", s)
	}
}

// String returns the configuration name of the trigger.
func (t Trigger) String() string {
	if t == Edge {
		return "edge"
	}
	return "level"
}

// Report summarises one gate pass.
type Report struct {
	// Seen lists the crests visible this tick.
	Seen []*object.GameObject
	// Transitions counts crests whose seen state flipped.
	Transitions int
	// Hooks counts ViewChanged calls.
	Hooks int
	// Held counts StillSeen calls.
	Held int
	// Moved counts platforms that advanced.
	Moved int
}

// Gate runs the per-tick visibility pass over the active objects.
type Gate struct {
	physics Physics
	effects Effects
	trigger Trigger
	logger  *zap.Logger
}

// NewGate creates a Gate.
//
// Precondition: p, e and logger must not be nil.
func NewGate(p Physics, e Effects, trigger Trigger, logger *zap.Logger) *Gate {
	return &Gate{physics: p, effects: e, trigger: trigger, logger: logger}
}

// Tick advances platforms and tests every vision-affected crest against cam.
//
// Postcondition: Every crest's Seen flag holds this tick's result.
func (g *Gate) Tick(objs []*object.GameObject, cam *physics.Camera) Report {
	var rep Report
	for _, obj := range objs {
		if !obj.VisionAffected {
			continue
		}
		switch obj.Kind {
		case object.KindMoving:
			pos, moved := obj.Mover.Advance()
			if moved {
				obj.Transform.Position = pos
				g.physics.SetPosition(obj.Body, pos)
				rep.Moved++
			}
		case object.KindCrest:
			seen := g.physics.BroadPhaseVisible(cam, obj.WorldPosition()) &&
				g.physics.NarrowPhaseVisible(cam, obj.Body)
			changed := obj.Crest.ChangeView(seen)
			if changed {
				rep.Transitions++
				g.logger.Debug("crest view changed",
					zap.Stringer("id", obj.ID),
					zap.Stringer("crest", obj.Crest.Type),
					zap.Bool("seen", seen))
			}
			if seen {
				rep.Seen = append(rep.Seen, obj)
			}
			switch {
			case g.trigger == Level || changed:
				g.effects.ViewChanged(obj, seen)
				rep.Hooks++
			case seen:
				g.effects.StillSeen(obj)
				rep.Held++
			}
		}
	}
	return rep
}
