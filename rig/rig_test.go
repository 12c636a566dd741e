package rig

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func straightSamples(n int) []mgl32.Vec3 {
	out := make([]mgl32.Vec3, n)
	for i := range out {
		out[i] = mgl32.Vec3{0, 0, -float32(i)}
	}
	return out
}

func TestSampleIndex_Bounds(t *testing.T) {
	const m = 2000
	assert.Equal(t, 0, SampleIndex(0, m))
	assert.Equal(t, m-1, SampleIndex(1, m))
	assert.Equal(t, 1000, SampleIndex(0.5, m))
	assert.Equal(t, m-1, SampleIndex(0.99999, m))
}

func TestSampleIndex_ClampsOutOfRange(t *testing.T) {
	const m = 2000
	assert.Equal(t, 0, SampleIndex(-0.5, m))
	assert.Equal(t, m-1, SampleIndex(3, m))
	assert.Equal(t, 0, SampleIndex(float32(math.NaN()), m))
	assert.Equal(t, 0, SampleIndex(float32(math.Inf(-1)), m))
	assert.Equal(t, m-1, SampleIndex(float32(math.Inf(1)), m))
	assert.Equal(t, 0, SampleIndex(0.5, 0))
}

func TestSampleIndex_MatchesRoundedLinearMap(t *testing.T) {
	const m = 2000
	for i := 0; i <= 1000; i++ {
		o := float32(i) / 1000
		want := int(math.Round(float64(o) * m))
		if want > m-1 {
			want = m - 1
		}
		require.Equal(t, want, SampleIndex(o, m), "offset %v", o)
	}
}

func TestLookahead_ClampsAtEnd(t *testing.T) {
	samples := straightSamples(5)

	cur, ahead := Lookahead(samples, 4)
	assert.Equal(t, samples[4], cur)
	assert.Equal(t, samples[4], ahead)

	cur, ahead = Lookahead(samples, 2)
	assert.Equal(t, samples[2], cur)
	assert.Equal(t, samples[3], ahead)

	cur, _ = Lookahead(samples, 99)
	assert.Equal(t, samples[4], cur)
}

func TestSteering_Bounded(t *testing.T) {
	inputs := []float32{0, 1e-4, -1e-4, 0.01, -0.01, 1, -1, 1e6, -1e6,
		float32(math.Inf(1)), float32(math.Inf(-1)), float32(math.NaN())}

	for _, dx := range inputs {
		for _, dy := range inputs {
			pitch, yaw := Steering(mgl32.Vec3{}, mgl32.Vec3{dx, dy, -1}, DefaultGain)
			assert.LessOrEqual(t, math.Abs(float64(yaw)), MaxSteer+1e-6, "yaw for dx=%v", dx)
			assert.LessOrEqual(t, math.Abs(float64(pitch)), MaxSteer+1e-6, "pitch for dy=%v", dy)
		}
	}
}

func TestSteering_SmallGainStillBounded(t *testing.T) {
	pitch, yaw := Steering(mgl32.Vec3{}, mgl32.Vec3{50, 50, 0}, 0.1)
	assert.LessOrEqual(t, math.Abs(float64(pitch)), MaxSteer+1e-6)
	assert.LessOrEqual(t, math.Abs(float64(yaw)), MaxSteer+1e-6)
}

func TestSteering_Direction(t *testing.T) {
	_, yaw := Steering(mgl32.Vec3{}, mgl32.Vec3{-0.001, 0, -1}, DefaultGain)
	assert.Greater(t, yaw, float32(0), "bending toward -X turns left")

	_, yaw = Steering(mgl32.Vec3{}, mgl32.Vec3{0.001, 0, -1}, DefaultGain)
	assert.Less(t, yaw, float32(0))

	pitch, _ := Steering(mgl32.Vec3{}, mgl32.Vec3{0, 1, -1}, DefaultGain)
	assert.InDelta(t, MaxSteer/DefaultGain, pitch, 1e-6)

	pitch, yaw = Steering(mgl32.Vec3{}, mgl32.Vec3{0, 0, -1}, DefaultGain)
	assert.Zero(t, pitch)
	assert.Zero(t, yaw)
}

func TestEulerXYZ_RoundTrip(t *testing.T) {
	angles := [][3]float32{
		{0, 0, 0},
		{0.3, -0.5, 0.2},
		{-0.01, 1.0, 0},
		{0.7, 0.2, -1.1},
	}
	for _, a := range angles {
		q := mgl32.AnglesToQuat(a[0], a[1], a[2], mgl32.XYZ)
		x, y, z := EulerXYZ(q)
		assert.InDelta(t, a[0], x, 1e-4, "x of %v", a)
		assert.InDelta(t, a[1], y, 1e-4, "y of %v", a)
		assert.InDelta(t, a[2], z, 1e-4, "z of %v", a)
	}
}

func TestUpdater_FirstFrameSnaps(t *testing.T) {
	samples := straightSamples(100)
	u := NewUpdater(DefaultParams())
	pose := DefaultPose()
	require.Equal(t, Uninitialized, u.State())

	_, _, roll := EulerXYZ(pose.Orientation)
	want := Target(samples, SampleIndex(0.5, len(samples)), roll, DefaultGain)

	idx := u.Update(&pose, samples, 0.5, 1.0/60)

	assert.Equal(t, 50, idx)
	assert.Equal(t, Tracking, u.State())
	assert.Equal(t, want.Position, pose.Position, "no residual on the first frame")
	assert.Equal(t, want.Orientation, pose.Orientation)
}

func TestUpdater_EasesAfterFirstFrame(t *testing.T) {
	samples := straightSamples(100)
	u := NewUpdater(DefaultParams())
	pose := DefaultPose()

	u.Update(&pose, samples, 0, 1.0/60)
	require.Equal(t, samples[0], pose.Position)

	u.Update(&pose, samples, 0.5, 1.0/60)

	// 24/60 of the way from z=0 toward z=-50.
	assert.InDelta(t, -20, pose.Position.Z(), 1e-3)
	assert.Equal(t, Tracking, u.State())
}

func TestUpdater_LongFrameLandsOnTarget(t *testing.T) {
	samples := straightSamples(100)
	u := NewUpdater(DefaultParams())
	pose := DefaultPose()

	u.Update(&pose, samples, 0, 0)
	u.Update(&pose, samples, 1, 5)

	assert.Equal(t, samples[99], pose.Position)
}

func TestUpdater_EmptySamples(t *testing.T) {
	u := NewUpdater(Params{})
	pose := DefaultPose()
	pose.Position = mgl32.Vec3{1, 2, 3}

	assert.Equal(t, -1, u.Update(&pose, nil, 0.5, 0.1))
	assert.Equal(t, mgl32.Vec3{1, 2, 3}, pose.Position)
	assert.Equal(t, Uninitialized, u.State())
}

func TestUpdater_Reset(t *testing.T) {
	u := NewUpdater(DefaultParams())
	pose := DefaultPose()
	u.Update(&pose, straightSamples(10), 0, 0.1)
	require.Equal(t, Tracking, u.State())

	u.Reset()
	assert.Equal(t, Uninitialized, u.State())
}

func TestStep_ZeroDeltaHoldsPose(t *testing.T) {
	samples := straightSamples(10)
	start := Pose{Position: mgl32.Vec3{4, 0, 0}, Orientation: mgl32.QuatIdent()}

	got := Step(start, samples, 1, 0, DefaultParams())
	assert.Equal(t, start.Position, got.Position)
	assert.InDelta(t, 1, got.Orientation.W, 1e-6)
}

func TestStep_TurnsIntoBend(t *testing.T) {
	samples := []mgl32.Vec3{{0, 0, 0}, {-0.1, 0, -1}, {-0.2, 0, -2}}
	pose := Step(DefaultPose(), samples, 0, 0.5, DefaultParams())

	_, yaw, _ := EulerXYZ(pose.Orientation)
	assert.Greater(t, yaw, float32(0))
}

func TestStep_ShortestArc(t *testing.T) {
	samples := straightSamples(10)
	// -identity is the same rotation as identity.
	start := Pose{Orientation: mgl32.Quat{W: -1}}

	got := Step(start, samples, 0, 0.5, DefaultParams())
	assert.InDelta(t, 1, math.Abs(float64(got.Orientation.W)), 1e-5)
}
