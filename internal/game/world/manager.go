package world

import (
	"fmt"
	"path"

	"go.uber.org/zap"

	"github.com/cory-johannsen/periphery/internal/game/object"
	"github.com/cory-johannsen/periphery/internal/observability"
)

// Builder discovers and loads the room graph reachable from a root room.
// It is single-threaded: all calls happen on the gameplay thread.
type Builder struct {
	env    *Env
	arena  *Arena
	loaded []RoomID
	seen   map[string]bool
	active *object.List
}

// NewBuilder creates a Builder that appends room objects to active.
//
// Precondition: env and active must not be nil.
func NewBuilder(env *Env, active *object.List) *Builder {
	return &Builder{
		env:    env,
		arena:  NewArena(),
		seen:   make(map[string]bool),
		active: active,
	}
}

// Root parses and loads the room in file at (x, z) and adds it to the arena.
//
// Postcondition: Returns the root's id; a file already in the arena returns
// the existing room.
func (b *Builder) Root(file string, x, z float32) (RoomID, error) {
	if id, ok := b.arena.Lookup(path.Clean(file)); ok {
		return id, nil
	}
	r, err := ParseRoom(b.env, file, x, z)
	if err != nil {
		return 0, err
	}
	if err := r.Load(x, z); err != nil {
		return 0, err
	}
	return b.arena.Add(r), nil
}

// BuildRooms loads the graph depth-first from id. Rooms already built are
// skipped; rooms holding a Win crest are terminal and do not load neighbors.
//
// Postcondition: Every room reachable from id is loaded once and its objects
// are in the active list once.
func (b *Builder) BuildRooms(id RoomID) error {
	r := b.arena.Get(id)
	if r == nil {
		return fmt.Errorf("building rooms: unknown room id %d", id)
	}
	if b.seen[r.File] {
		b.env.Logger.Debug("room already built", zap.String("room", r.File))
		return nil
	}

	b.active.Add(r.Objects()...)
	if !r.HasWinCrest() {
		if err := r.LoadNeighbors(b.arena); err != nil {
			return fmt.Errorf("building rooms: %w", err)
		}
	}
	b.seen[r.File] = true
	b.loaded = append(b.loaded, id)

	for _, nb := range r.Neighbors() {
		if err := b.BuildRooms(nb); err != nil {
			return err
		}
	}
	return nil
}

// ClearRooms releases every room in the arena and forgets the graph.
// Callers must discard the active list afterwards.
func (b *Builder) ClearRooms() {
	for _, r := range b.arena.Rooms() {
		b.env.Logger.Debug("room released", observability.Room(r.File, r.X, r.Z)...)
		r.Release()
	}
	b.arena.Reset()
	b.loaded = nil
	b.seen = make(map[string]bool)
}

// Loaded returns the built rooms in build order.
func (b *Builder) Loaded() []*Room {
	out := make([]*Room, 0, len(b.loaded))
	for _, id := range b.loaded {
		out = append(out, b.arena.Get(id))
	}
	return out
}

// Room returns the room with the given id, or nil.
func (b *Builder) Room(id RoomID) *Room {
	return b.arena.Get(id)
}

// RoomAt returns the built room containing the world point (x, z).
func (b *Builder) RoomAt(x, z float32) (*Room, bool) {
	for _, id := range b.loaded {
		if r := b.arena.Get(id); r.Contains(x, z) {
			return r, true
		}
	}
	return nil, false
}

// Len returns the number of built rooms.
func (b *Builder) Len() int {
	return len(b.loaded)
}

// Arena returns the builder's arena.
func (b *Builder) Arena() *Arena {
	return b.arena
}
