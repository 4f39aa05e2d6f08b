package main

import (
	"fmt"
	"math"

	"github.com/charmbracelet/harmonica"
)

// sweepArc is the yaw range the camera covers, [0, sweepArc).
const sweepArc = math.Pi / 8

// yawSweep yields the camera yaw of each successive frame.
type yawSweep interface {
	Next() float64
}

func newSweep(mode string, frames int) (yawSweep, error) {
	switch mode {
	case "", "linear":
		return &linearSweep{step: sweepArc / float64(frames)}, nil
	case "spring":
		return newSpringSweep(frames), nil
	default:
		return nil, fmt.Errorf("unknown sweep %q (use linear or spring)", mode)
	}
}

// linearSweep advances yaw by a fixed step per frame.
type linearSweep struct {
	step float64
	n    int
}

func (s *linearSweep) Next() float64 {
	yaw := float64(s.n) * s.step
	s.n++
	return yaw
}

// springSweep eases yaw toward the end of the arc with a critically damped
// spring, so it starts fast and settles without overshoot.
type springSweep struct {
	spring   harmonica.Spring
	pos, vel float64
}

// newSpringSweep tunes the spring so it is close to settled after frames
// steps.
func newSpringSweep(frames int) *springSweep {
	fps := max(frames/2, 1)
	return &springSweep{
		// Frequency 4.0 = moderate speed, damping 1.0 = critically damped (no overshoot)
		spring: harmonica.NewSpring(harmonica.FPS(fps), 4.0, 1.0),
	}
}

func (s *springSweep) Next() float64 {
	yaw := s.pos
	s.pos, s.vel = s.spring.Update(s.pos, s.vel, sweepArc)
	// keep the half-open range even if rounding lands on the target
	s.pos = math.Min(s.pos, math.Nextafter(sweepArc, 0))
	return yaw
}
