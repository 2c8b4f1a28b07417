package domain

import (
	"math"
	"time"
)

// Command is the action category classified from a transcript.
type Command string

const (
	CommandNoMatch   Command = "no_match"
	CommandRotate    Command = "rotate"
	CommandMove      Command = "move"
	CommandScaleUp   Command = "scale_up"
	CommandScaleDown Command = "scale_down"
	CommandNotify    Command = "notify"
)

// IsSpatial reports whether the command transforms a scene target.
func (c Command) IsSpatial() bool {
	switch c {
	case CommandRotate, CommandMove, CommandScaleUp, CommandScaleDown:
		return true
	}
	return false
}

// TargetRef identifies one of the fixed addressable scene objects.
type TargetRef string

const (
	TargetNone  TargetRef = ""
	TargetRed   TargetRef = "red"
	TargetGreen TargetRef = "green"
	TargetBlue  TargetRef = "blue"
)

// Targets lists the addressable objects in resolution order.
var Targets = []TargetRef{TargetRed, TargetGreen, TargetBlue}

// Valid reports whether t is one of the known targets.
func (t TargetRef) Valid() bool {
	for _, known := range Targets {
		if t == known {
			return true
		}
	}
	return false
}

// Direction is the vertical modifier used by CommandMove.
type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
)

// Decision is the resolved result of interpreting one transcript.
type Decision struct {
	Command   Command
	Target    TargetRef
	Direction Direction
	RawText   string
}

// HasTarget reports whether a target was resolved.
func (d Decision) HasTarget() bool {
	return d.Target != TargetNone
}

const (
	RotateDuration = 3 * time.Second
	MoveDuration   = 300 * time.Millisecond
	ScaleDuration  = 300 * time.Millisecond

	MoveAmount      = 0.08
	ScaleUpFactor   = 2.0
	ScaleDownFactor = 0.5
)

// Transform is a relative spatial change applied to a single target over
// Duration. Zero-valued fields leave that component unchanged, except Scale
// where 0 means "no scaling".
type Transform struct {
	Kind      Command       `json:"kind"`
	Target    TargetRef     `json:"target"`
	Direction Direction     `json:"direction,omitempty"`
	RotateY   float64       `json:"rotate_y,omitempty"`
	MoveY     float64       `json:"move_y,omitempty"`
	Scale     float64       `json:"scale,omitempty"`
	Duration  time.Duration `json:"duration"`
}

// RotateTransform turns target a full revolution around the vertical axis.
func RotateTransform(target TargetRef) Transform {
	return Transform{
		Kind:     CommandRotate,
		Target:   target,
		RotateY:  2 * math.Pi,
		Duration: RotateDuration,
	}
}

// MoveTransform shifts target along the vertical axis.
func MoveTransform(target TargetRef, dir Direction) Transform {
	amount := MoveAmount
	if dir == DirectionDown {
		amount = -MoveAmount
	}
	return Transform{
		Kind:      CommandMove,
		Target:    target,
		Direction: dir,
		MoveY:     amount,
		Duration:  MoveDuration,
	}
}

// ScaleTransform scales target by factor.
func ScaleTransform(kind Command, target TargetRef, factor float64) Transform {
	return Transform{
		Kind:     kind,
		Target:   target,
		Scale:    factor,
		Duration: ScaleDuration,
	}
}
