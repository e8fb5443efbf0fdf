// Package water provides the double-buffered height-field water simulation:
// localized drops and a damped neighbour-averaging wave step.
package water

import (
	"Caustics/internal/logger"
	"Caustics/internal/workers"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// Backend executes one simulation pass from src into dst. mask, when non-nil,
// marks the texels inside the simulation domain; the others must be copied
// from src unchanged.
type Backend interface {
	Drop(src, dst *Grid, d Drop, mask []bool) error
	Step(src, dst *Grid, p Params, mask []bool) error
	Name() string
	Close()
}

// CPUBackend runs the kernels on row bands across all CPUs.
type CPUBackend struct{}

func (CPUBackend) Name() string { return "cpu" }

func (CPUBackend) Close() {}

func (CPUBackend) Drop(src, dst *Grid, d Drop, mask []bool) error {
	size := src.Size
	workers.Rows(size, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			for x := 0; x < size; x++ {
				i := y*size + x
				if mask != nil && !mask[i] {
					dst.Texels[i] = src.Texels[i]
					continue
				}
				dst.Texels[i] = DropTexel(src, x, y, d)
			}
		}
	})
	return nil
}

func (CPUBackend) Step(src, dst *Grid, p Params, mask []bool) error {
	size := src.Size
	workers.Rows(size, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			for x := 0; x < size; x++ {
				i := y*size + x
				if mask != nil && !mask[i] {
					dst.Texels[i] = src.Texels[i]
					continue
				}
				dst.Texels[i] = UpdateTexel(src, x, y, p)
			}
		}
	})
	return nil
}

// Simulation owns two grids and alternates between them: every operation
// reads the current grid, writes the other one and then makes it current.
type Simulation struct {
	targetA *Grid
	targetB *Grid
	current *Grid
	params  Params
	mask    []bool
	backend Backend
}

// NewSimulation allocates a still simulation of size×size texels over domain.
func NewSimulation(size int, params Params, domain Domain) *Simulation {
	a := NewGrid(size)
	s := &Simulation{
		targetA: a,
		targetB: NewGrid(size),
		current: a,
		params:  params,
		mask:    domainMask(size, domain),
		backend: CPUBackend{},
	}
	logger.Log.Info("Height field created",
		zap.Int("size", size),
		zap.Float32("gain", params.Gain),
		zap.Float32("damping", params.Damping))
	return s
}

// SetBackend replaces the pass executor. The previous backend is closed.
func (s *Simulation) SetBackend(b Backend) {
	if s.backend != nil {
		s.backend.Close()
	}
	s.backend = b
}

// Backend returns the active pass executor.
func (s *Simulation) Backend() Backend {
	return s.backend
}

// Size is the grid side in texels.
func (s *Simulation) Size() int {
	return s.targetA.Size
}

// Params returns the wave propagation parameters.
func (s *Simulation) Params() Params {
	return s.params
}

// Current is the grid holding the latest state. Callers must treat it as
// read-only; it stays valid until the next operation.
func (s *Simulation) Current() *Grid {
	return s.current
}

// OnPrimary reports whether the current grid is the first of the pair.
func (s *Simulation) OnPrimary() bool {
	return s.current == s.targetA
}

// AddDrop adds a cosine eased bump at (x, y) in [-1,1]². Drops that miss the
// grid leave the heights untouched but still swap buffers.
func (s *Simulation) AddDrop(x, y, radius, strength float32) {
	d := Drop{Center: mgl32.Vec2{x, y}, Radius: radius, Strength: strength}
	s.render(func(src, dst *Grid) error {
		return s.backend.Drop(src, dst, d, s.mask)
	})
}

// Step advances the wave equation by one tick.
func (s *Simulation) Step() {
	s.render(func(src, dst *Grid) error {
		return s.backend.Step(src, dst, s.params, s.mask)
	})
}

// Reset flattens the water.
func (s *Simulation) Reset() {
	s.targetA.Clear()
	s.targetB.Clear()
	s.current = s.targetA
}

// Close releases backend resources.
func (s *Simulation) Close() {
	if s.backend != nil {
		s.backend.Close()
	}
}

func (s *Simulation) render(pass func(src, dst *Grid) error) {
	oldTarget := s.current
	newTarget := s.targetB
	if oldTarget == s.targetB {
		newTarget = s.targetA
	}
	if err := pass(oldTarget, newTarget); err != nil {
		// A failed device pass is redone on the CPU.
		logger.Log.Warn("Simulation backend failed, switching to CPU",
			zap.String("backend", s.backend.Name()), zap.Error(err))
		s.SetBackend(CPUBackend{})
		_ = pass(oldTarget, newTarget)
	}
	s.current = newTarget
}
