// Package scene is the spatial-effect collaborator: it keeps the state of
// the addressable spheres and streams every change to connected renderers.
package scene

import (
	"sync"

	"voice-scene/internal/domain"
)

type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Node is one sphere. Transforms accumulate, the same way relative
// animations stack on a scene graph node.
type Node struct {
	Target    domain.TargetRef `json:"target"`
	Color     string           `json:"color"`
	Radius    float64          `json:"radius"`
	Position  Vec3             `json:"position"`
	RotationY float64          `json:"rotation_y"`
	Scale     float64          `json:"scale"`
}

type Scene struct {
	mu    sync.RWMutex
	nodes map[domain.TargetRef]*Node
}

// New returns the initial layout: three spheres in a row 30 cm in front of
// the origin.
func New() *Scene {
	s := &Scene{nodes: make(map[domain.TargetRef]*Node)}
	for i, target := range domain.Targets {
		s.nodes[target] = &Node{
			Target:   target,
			Color:    string(target),
			Radius:   0.03,
			Position: Vec3{X: 0.1 * float64(i), Y: 0, Z: -0.3},
			Scale:    1,
		}
	}
	return s
}

// Apply mutates the addressed node and returns its new state.
func (s *Scene) Apply(t domain.Transform) (Node, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.nodes[t.Target]
	if !ok {
		return Node{}, false
	}

	n.RotationY += t.RotateY
	n.Position.Y += t.MoveY
	if t.Scale != 0 {
		n.Scale *= t.Scale
	}
	return *n, true
}

func (s *Scene) Node(target domain.TargetRef) (Node, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.nodes[target]
	if !ok {
		return Node{}, false
	}
	return *n, true
}

// Snapshot returns every node in target order.
func (s *Scene) Snapshot() []Node {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Node, 0, len(domain.Targets))
	for _, target := range domain.Targets {
		out = append(out, *s.nodes[target])
	}
	return out
}
