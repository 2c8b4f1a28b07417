package application

import (
	"log/slog"

	"voice-scene/internal/domain"
)

// Dispatcher performs at most one effect per Decision. Effects are fire and
// forget: nothing here waits for or observes their outcome.
type Dispatcher struct {
	spatial SpatialEffect
	notify  NotifyEffect
	logger  *slog.Logger
}

func NewDispatcher(spatial SpatialEffect, notify NotifyEffect, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		spatial: spatial,
		notify:  notify,
		logger:  logger,
	}
}

// Dispatch reports whether an effect was invoked. A spatial command with no
// resolved target is a silent no-op, as is CommandNoMatch.
func (d *Dispatcher) Dispatch(dec domain.Decision) bool {
	if dec.Command == domain.CommandNotify {
		d.notify.Send(dec.RawText)
		return true
	}

	if !dec.Command.IsSpatial() || !dec.HasTarget() || !dec.Target.Valid() {
		d.logger.Debug("nothing to dispatch",
			"command", dec.Command,
			"target", dec.Target,
		)
		return false
	}

	var t domain.Transform
	switch dec.Command {
	case domain.CommandRotate:
		t = domain.RotateTransform(dec.Target)
	case domain.CommandMove:
		dir := dec.Direction
		if dir == "" {
			dir = domain.DirectionUp
		}
		t = domain.MoveTransform(dec.Target, dir)
	case domain.CommandScaleUp:
		t = domain.ScaleTransform(dec.Command, dec.Target, domain.ScaleUpFactor)
	case domain.CommandScaleDown:
		t = domain.ScaleTransform(dec.Command, dec.Target, domain.ScaleDownFactor)
	}

	d.spatial.Apply(t)
	return true
}
