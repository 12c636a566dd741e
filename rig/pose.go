package rig

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	DefaultGain      = 80
	DefaultLerpRate  = 24
	DefaultSlerpRate = 1

	// MaxSteer bounds both steering axes to ±60°.
	MaxSteer = math.Pi / 3
)

type Pose struct {
	Position    mgl32.Vec3
	Orientation mgl32.Quat
}

func DefaultPose() Pose {
	return Pose{Orientation: mgl32.QuatIdent()}
}

type Params struct {
	// Gain scales the sample-to-sample displacement into a steering angle.
	Gain float32
	// LerpRate and SlerpRate are multiplied by the frame delta (seconds) to
	// get the fraction of the remaining distance covered this frame.
	LerpRate  float32
	SlerpRate float32
}

func DefaultParams() Params {
	return Params{
		Gain:      DefaultGain,
		LerpRate:  DefaultLerpRate,
		SlerpRate: DefaultSlerpRate,
	}
}

func (p Params) normalized() Params {
	d := DefaultParams()
	if p.Gain <= 0 {
		p.Gain = d.Gain
	}
	if p.LerpRate <= 0 {
		p.LerpRate = d.LerpRate
	}
	if p.SlerpRate <= 0 {
		p.SlerpRate = d.SlerpRate
	}
	return p
}

// Steering converts the look-ahead displacement into pitch and yaw angles.
// Yaw is positive when the path bends toward -X, turning the -Z facing
// camera into the bend. Pitch follows the climb and is damped by the gain.
// Both magnitudes are bounded by MaxSteer for any input.
func Steering(cur, ahead mgl32.Vec3, gain float32) (pitch, yaw float32) {
	if gain <= 0 {
		gain = DefaultGain
	}
	dx := float64(ahead.X()-cur.X()) * float64(gain)
	dy := float64(ahead.Y()-cur.Y()) * float64(gain)

	yaw = float32(-boundedSteer(dx))
	pitch = float32(boundedSteer(boundedSteer(dy) / float64(gain)))
	return pitch, yaw
}

func boundedSteer(d float64) float64 {
	if math.IsNaN(d) {
		return 0
	}
	mag := math.Min(math.Abs(d), MaxSteer)
	if d < 0 {
		return -mag
	}
	return mag
}

// Target is the pose the rig steers toward at sample idx: positioned on the
// current sample, oriented by Steering with the given roll kept.
func Target(samples []mgl32.Vec3, idx int, roll, gain float32) Pose {
	cur, ahead := Lookahead(samples, idx)
	pitch, yaw := Steering(cur, ahead, gain)
	return Pose{
		Position:    cur,
		Orientation: mgl32.AnglesToQuat(pitch, yaw, roll, mgl32.XYZ),
	}
}

// Approach moves current toward target: orientation by slerp along the
// shortest arc, position by lerp. Fractions are clamped to [0, 1] so a long
// frame lands on the target instead of overshooting it.
func Approach(current, target Pose, delta float32, p Params) Pose {
	p = p.normalized()
	turn := clamp01(delta * p.SlerpRate)
	move := clamp01(delta * p.LerpRate)

	from := current.Orientation
	if from.Len() == 0 {
		from = mgl32.QuatIdent()
	}
	to := target.Orientation
	if from.Dot(to) < 0 {
		to = to.Scale(-1)
	}

	return Pose{
		Position:    current.Position.Add(target.Position.Sub(current.Position).Mul(move)),
		Orientation: mgl32.QuatSlerp(from, to, turn).Normalize(),
	}
}

// Step is one tracking frame: sample the path at offset and approach the
// resulting target from current.
func Step(current Pose, samples []mgl32.Vec3, offset, delta float32, p Params) Pose {
	if len(samples) == 0 {
		return current
	}
	p = p.normalized()
	idx := SampleIndex(offset, len(samples))
	_, _, roll := EulerXYZ(current.Orientation)
	return Approach(current, Target(samples, idx, roll, p.Gain), delta, p)
}

// EulerXYZ decomposes q into intrinsic X, Y, Z angles, the inverse of
// mgl32.AnglesToQuat(x, y, z, mgl32.XYZ).
func EulerXYZ(q mgl32.Quat) (x, y, z float32) {
	if q.Len() == 0 {
		return 0, 0, 0
	}
	q = q.Normalize()
	qw, qx, qy, qz := float64(q.W), float64(q.V[0]), float64(q.V[1]), float64(q.V[2])

	m11 := 1 - 2*(qy*qy+qz*qz)
	m12 := 2 * (qx*qy - qw*qz)
	m13 := 2 * (qx*qz + qw*qy)
	m22 := 1 - 2*(qx*qx+qz*qz)
	m23 := 2 * (qy*qz - qw*qx)
	m32 := 2 * (qy*qz + qw*qx)
	m33 := 1 - 2*(qx*qx+qy*qy)

	ey := math.Asin(math.Max(-1, math.Min(1, m13)))
	var ex, ez float64
	if math.Abs(m13) < 0.9999999 {
		ex = math.Atan2(-m23, m33)
		ez = math.Atan2(-m12, m11)
	} else {
		ex = math.Atan2(m32, m22)
	}
	return float32(ex), float32(ey), float32(ez)
}

func clamp01(v float32) float32 {
	if v != v {
		return 0
	}
	return mgl32.Clamp(v, 0, 1)
}
