package session

import (
	"fmt"
	"sort"

	"go.uber.org/zap"
)

// AdvanceArea is called once the win meter fills. From a room with one exit
// the game is finished; from a room with two exits the area is torn down and
// rebuilt from the exit file that sorts last. Other rooms do nothing.
//
// Postcondition: The win meter is 0.
func (s *Session) AdvanceArea() error {
	s.status.WinPercent = 0
	if s.current == nil {
		return nil
	}
	exits := s.current.Exits()
	switch len(exits) {
	case 1:
		won := s.current.File
		if rooms := s.builder.Loaded(); len(rooms) > 0 {
			s.placeAt(rooms[0])
		}
		s.finished = true
		s.logger.Info("game finished", zap.String("room", won))
		return nil
	case 2:
		files := make([]string, 0, len(exits))
		for _, e := range exits {
			files = append(files, e.File)
		}
		return s.rebuildFrom(files)
	default:
		return nil
	}
}

// SkipArea rebuilds from the current room's exit file that sorts last,
// whatever the exit count. It is a development shortcut and only works in
// dev mode.
func (s *Session) SkipArea() error {
	if !s.cfg.Player.DevMode || s.current == nil {
		return nil
	}
	var files []string
	for _, e := range s.current.Exits() {
		files = append(files, e.File)
	}
	if len(files) == 0 {
		return nil
	}
	return s.rebuildFrom(files)
}

func (s *Session) rebuildFrom(files []string) error {
	sort.Strings(files)
	next := files[len(files)-1]
	s.logger.Info("advancing area", zap.String("from", s.current.File), zap.String("to", next))
	s.Teardown()
	if err := s.build(next, 0, 0); err != nil {
		return fmt.Errorf("advancing area: %w", err)
	}
	return nil
}

// CycleRoom teleports the player to the spawn of the built room delta places
// away from the current one, wrapping around. Only works in dev mode.
func (s *Session) CycleRoom(delta int) {
	rooms := s.builder.Loaded()
	if !s.cfg.Player.DevMode || len(rooms) == 0 {
		return
	}
	idx := 0
	for i, r := range rooms {
		if r == s.current {
			idx = i
			break
		}
	}
	n := len(rooms)
	idx = ((idx+delta)%n + n) % n
	s.placeAt(rooms[idx])
	s.logger.Debug("cycled room", zap.String("room", rooms[idx].File))
}

// Teardown removes every procedural object, releases every room and empties
// the active list.
func (s *Session) Teardown() {
	for _, o := range s.procedural {
		s.physics.RemoveBody(o.Body)
	}
	s.procedural = nil
	s.builder.ClearRooms()
	s.active.Reset()
	s.current = nil
	s.cue.Stop()
	s.post.RemoveBlur()
	s.rebuildRender()
}
