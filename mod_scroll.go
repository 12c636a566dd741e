package starride

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// ScrollState carries the host's scroll position. The host writes the target
// with SetTarget or SetPixels; the damping system eases Offset toward it.
type ScrollState struct {
	Target float32
	Offset float32
	// Pages is the height of the scroll area in viewport heights.
	Pages float32
	// Damping is the smoothing time in seconds; 0 follows the target exactly.
	Damping float32
}

// SetTarget clamps o into [0, 1]. NaN is ignored.
func (s *ScrollState) SetTarget(o float32) {
	if o != o {
		return
	}
	s.Target = mgl32.Clamp(o, 0, 1)
}

// SetPixels converts a scroll position in pixels into the normalized target,
// for a scroll area Pages viewports tall.
func (s *ScrollState) SetPixels(scrollTop, viewportHeight float32) {
	travel := (s.Pages - 1) * viewportHeight
	if travel <= 0 {
		s.SetTarget(0)
		return
	}
	s.SetTarget(scrollTop / travel)
}

func (s *ScrollState) damp(dt float32) {
	if s.Damping <= 0 || dt <= 0 {
		if s.Damping <= 0 {
			s.Offset = s.Target
		}
		return
	}
	k := 1 - float32(math.Exp(float64(-2*dt/s.Damping)))
	s.Offset += (s.Target - s.Offset) * k
	if mgl32.Abs(s.Target-s.Offset) < 1e-5 {
		s.Offset = s.Target
	}
}

type ScrollModule struct {
	Pages   float32
	Damping float32
}

func (m ScrollModule) Install(app *App, cmd *Commands) {
	pages := m.Pages
	if pages <= 0 {
		pages = 1
	}
	cmd.AddResources(&ScrollState{Pages: pages, Damping: m.Damping})
	app.UseSystem(
		System(ScrollDampingSystem).
			InStage(PreUpdate),
	)
}

func ScrollDampingSystem(clock *Time, scroll *ScrollState) {
	scroll.damp(clock.Seconds())
}
