package effects

import (
	"cogentcore.org/core/math32"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/periphery/internal/game/object"
	"github.com/cory-johannsen/periphery/internal/render"
)

// Handler applies one crest type's effect for a single view result.
type Handler func(obj *object.GameObject, seen bool)

// Hooks lets scripts observe every view result. A true return means the
// script handled it and the registered handler is skipped.
type Hooks interface {
	CallCrestHook(crest string, seen bool, id string) bool
}

// Cue is a restartable sound.
type Cue interface {
	Play()
	Playing() bool
}

var medusaBlur = math32.Vec4(0, 0.25, 0, 1)

// Dispatcher routes crest view results to per-type handlers.
type Dispatcher struct {
	status   *Status
	post     render.PostProcessor
	cue      Cue
	hooks    Hooks
	winRate  float32
	handlers map[object.CrestType]Handler
	// consumed holds crests whose seen edge a script handled.
	consumed map[uuid.UUID]bool
	logger   *zap.Logger
}

// NewDispatcher creates a Dispatcher with the default handlers registered.
//
// Precondition: status, post, cue and logger must not be nil; winRate in (0, 1].
func NewDispatcher(status *Status, post render.PostProcessor, cue Cue, winRate float32, logger *zap.Logger) *Dispatcher {
	d := &Dispatcher{
		status:   status,
		post:     post,
		cue:      cue,
		winRate:  winRate,
		handlers: make(map[object.CrestType]Handler),
		consumed: make(map[uuid.UUID]bool),
		logger:   logger,
	}
	d.Register(object.Mobility, d.mobility)
	d.Register(object.Leap, d.leap)
	d.Register(object.Medusa, d.medusa)
	d.Register(object.Win, d.win)
	return d
}

// SetHooks installs script hooks. nil removes them.
func (d *Dispatcher) SetHooks(h Hooks) {
	d.hooks = h
}

// Register replaces the handler for t.
func (d *Dispatcher) Register(t object.CrestType, h Handler) {
	d.handlers[t] = h
}

// ViewChanged implements vision.Effects.
//
// Postcondition: A crest's target platform is driven whatever its type.
func (d *Dispatcher) ViewChanged(obj *object.GameObject, seen bool) {
	c := obj.Crest
	if c == nil {
		return
	}
	c.DriveTarget()
	delete(d.consumed, obj.ID)
	if d.hooks != nil && d.hooks.CallCrestHook(c.Type.String(), seen, obj.ID.String()) {
		if seen {
			d.consumed[obj.ID] = true
		}
		return
	}
	d.handle(obj, seen)
}

// StillSeen implements vision.Effects. The crest's handler runs as if seen
// again; targets and scripts only hear about flips.
func (d *Dispatcher) StillSeen(obj *object.GameObject) {
	if obj.Crest == nil || d.consumed[obj.ID] {
		return
	}
	d.handle(obj, true)
}

func (d *Dispatcher) handle(obj *object.GameObject, seen bool) {
	if h, ok := d.handlers[obj.Crest.Type]; ok {
		h(obj, seen)
	}
}

func (d *Dispatcher) mobility(_ *object.GameObject, seen bool) {
	if seen {
		d.status.Mobility = true
	}
}

func (d *Dispatcher) leap(_ *object.GameObject, seen bool) {
	if seen {
		d.status.Leap = true
	}
}

func (d *Dispatcher) medusa(_ *object.GameObject, seen bool) {
	if !seen {
		return
	}
	d.status.Medusa = true
	if d.status.OnGround {
		d.post.SetBlurColor(medusaBlur)
		d.post.AddBlur()
	}
}

func (d *Dispatcher) win(obj *object.GameObject, seen bool) {
	if !seen {
		return
	}
	d.status.WinSeen = true
	d.status.AddWin(d.winRate)
	if !d.cue.Playing() {
		d.cue.Play()
		d.logger.Debug("win cue started", zap.Stringer("crest", obj.ID))
	}
	w := 0.99 * d.status.WinPercent
	d.post.SetBlurColor(math32.Vec4(w, w, 0, 1))
	d.post.AddBlur()
}
