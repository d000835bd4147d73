package world

// RoomID indexes a room in an Arena.
type RoomID int

// Arena holds every room instantiated in a session, keyed by file.
type Arena struct {
	rooms  []*Room
	byFile map[string]RoomID
}

// NewArena creates an empty arena.
func NewArena() *Arena {
	return &Arena{byFile: make(map[string]RoomID)}
}

// Add stores r and assigns its ID.
//
// Postcondition: If a room with the same file is already present, its id is
// returned and r is not stored.
func (a *Arena) Add(r *Room) RoomID {
	if id, ok := a.byFile[r.File]; ok {
		return id
	}
	id := RoomID(len(a.rooms))
	r.ID = id
	a.rooms = append(a.rooms, r)
	a.byFile[r.File] = id
	return id
}

// Lookup returns the id of the room parsed from file.
func (a *Arena) Lookup(file string) (RoomID, bool) {
	id, ok := a.byFile[file]
	return id, ok
}

// Get returns the room with the given id, or nil.
func (a *Arena) Get(id RoomID) *Room {
	if id < 0 || int(id) >= len(a.rooms) {
		return nil
	}
	return a.rooms[id]
}

// Rooms returns every room in insertion order.
func (a *Arena) Rooms() []*Room {
	return a.rooms
}

// Len returns the number of rooms.
func (a *Arena) Len() int {
	return len(a.rooms)
}

// Reset drops every room.
func (a *Arena) Reset() {
	a.rooms = nil
	a.byFile = make(map[string]RoomID)
}
