package rig

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

type State int

const (
	Uninitialized State = iota
	Tracking
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "Uninitialized"
	case Tracking:
		return "Tracking"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Updater drives a pose along a sampled path. The first update snaps the
// pose onto the target; every later update eases toward it.
type Updater struct {
	Params Params
	state  State
}

func NewUpdater(p Params) *Updater {
	return &Updater{Params: p.normalized()}
}

func (u *Updater) State() State { return u.state }

// Reset returns the updater to Uninitialized so the next update snaps again.
func (u *Updater) Reset() { u.state = Uninitialized }

// Update advances pose for one frame and reports the sample index used.
// An empty sample sequence leaves the pose and state untouched.
func (u *Updater) Update(pose *Pose, samples []mgl32.Vec3, offset, delta float32) int {
	if len(samples) == 0 {
		return -1
	}
	u.Params = u.Params.normalized()
	idx := SampleIndex(offset, len(samples))

	if u.state == Uninitialized {
		_, _, roll := EulerXYZ(pose.Orientation)
		*pose = Target(samples, idx, roll, u.Params.Gain)
		u.state = Tracking
		return idx
	}

	*pose = Step(*pose, samples, offset, delta, u.Params)
	return idx
}
