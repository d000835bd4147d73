// Package world builds the explorable level from room description files:
// rooms, their descriptors, and the graph linking them through exits.
package world

import (
	"fmt"
	"math"

	"cogentcore.org/core/math32"

	"github.com/cory-johannsen/periphery/internal/game/object"
	"github.com/cory-johannsen/periphery/internal/level"
)

// Direction is the facing of a spawn point.
type Direction string

// Spawn facings as written in level files.
const (
	Up    Direction = "up"
	Left  Direction = "left"
	Down  Direction = "down"
	Right Direction = "right"
)

// StandardDirections contains every facing a spawn may declare.
var StandardDirections = []Direction{Up, Left, Down, Right}

// IsStandard reports whether d is one of the four spawn facings.
func (d Direction) IsStandard() bool {
	for _, sd := range StandardDirections {
		if d == sd {
			return true
		}
	}
	return false
}

// Opposite returns the reverse facing, or "" for unknown directions.
func (d Direction) Opposite() Direction {
	switch d {
	case Up:
		return Down
	case Down:
		return Up
	case Left:
		return Right
	case Right:
		return Left
	default:
		return ""
	}
}

// Yaw returns the player's heading in radians for the facing.
//
// Postcondition: Unknown directions yield 0.
func (d Direction) Yaw() float32 {
	switch d {
	case Up:
		return math.Pi / 2
	case Left:
		return math.Pi
	case Down:
		return 3 * math.Pi / 2
	case Right:
		return 2 * math.Pi
	default:
		return 0
	}
}

// Wall is one parsed grid record: a wall, spawn, crest or exit.
// Row, Col and the X/Z centers are offset-normalised to the room.
type Wall struct {
	Row, Col                  int
	XLength, YLength, ZLength float32
	CenterX, CenterY, CenterZ float32
	// Direction is set for spawns.
	Direction Direction
	// File is the cleaned level path an exit leads to.
	File string
	// Effect is set for crests.
	Effect object.CrestType
	// Target is a crest's "row|col" cube key, or "".
	Target string
}

// Cube is a scripted platform descriptor.
type Cube struct {
	Wall
	Translate math32.Vector3
	Scale     math32.Vector3
	// Key is the un-normalised "row|col" crests use to target the cube.
	Key string
}

// Waypoints returns the resting position and the displaced position for a room at (x, z).
func (c Cube) Waypoints(x, z float32) (math32.Vector3, math32.Vector3) {
	origin := math32.Vec3(c.CenterX+x, cubeHeight, c.CenterZ+z)
	return origin, origin.Add(c.Translate)
}

// cubeKey is the lookup key crests use to reference a cube.
func cubeKey(row, col int) string {
	return fmt.Sprintf("%d|%d", row, col)
}

func wallFromRecord(r level.Record, offX, offZ int) Wall {
	return Wall{
		Row:     r.Int("row") + offZ,
		Col:     r.Int("col") + offX,
		XLength: r.Float("xLength"),
		YLength: r.Float("yLength"),
		ZLength: r.Float("zLength"),
		CenterX: r.Float("centerX") + float32(offX),
		CenterY: r.Float("centerY"),
		CenterZ: r.Float("centerZ") + float32(offZ),
	}
}

func cubeFromRecord(r level.Record, offX, offZ int) Cube {
	return Cube{
		Wall:      wallFromRecord(r, offX, offZ),
		Translate: math32.Vec3(r.Float("translateX"), r.Float("translateY"), r.Float("translateZ")),
		Scale:     math32.Vec3(r.Float("scaleX"), r.Float("scaleY"), r.Float("scaleZ")),
		Key:       cubeKey(r.Int("row"), r.Int("col")),
	}
}

func crestFromRecord(r level.Record, offX, offZ int) Wall {
	w := wallFromRecord(r, offX, offZ)
	w.Effect = object.CrestType(r.Int("effect"))
	w.Target = r.String("target")
	return w
}

func spawnFromRecord(r level.Record, offX, offZ int) Wall {
	w := wallFromRecord(r, offX, offZ)
	w.Direction = Direction(r.String("dir"))
	return w
}
