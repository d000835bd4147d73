package main

import "errors"

// errFinished ends the frame loop once the last area is won.
var errFinished = errors.New("game finished")

func isFinished(err error) bool {
	return errors.Is(err, errFinished)
}
