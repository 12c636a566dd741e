package spline

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Profile is a 2D cross-section swept along a curve. X runs along the frame
// normal and Y along the binormal.
type Profile []mgl32.Vec2

// RailProfile is the thin vertical blade the flight track is drawn with.
func RailProfile() Profile {
	return Profile{{0, -0.2}, {0, 0.2}}
}

type Frame struct {
	Tangent  mgl32.Vec3
	Normal   mgl32.Vec3
	Binormal mgl32.Vec3
}

// Frames computes parallel-transported frames at t = i/steps for i in
// [0, steps]. Normals do not flip at inflection points.
func Frames(c *Curve, steps int) []Frame {
	if steps < 1 {
		steps = 1
	}
	frames := make([]Frame, steps+1)
	for i := range frames {
		frames[i].Tangent = c.Tangent(float32(i) / float32(steps))
	}

	t0 := frames[0].Tangent
	axis := mgl32.Vec3{1, 0, 0}
	smallest := float32(math.MaxFloat32)
	for i := 0; i < 3; i++ {
		if a := abs32(t0[i]); a <= smallest {
			smallest = a
			axis = mgl32.Vec3{}
			axis[i] = 1
		}
	}
	side := t0.Cross(axis).Normalize()
	frames[0].Normal = t0.Cross(side)
	frames[0].Binormal = t0.Cross(frames[0].Normal)

	for i := 1; i < len(frames); i++ {
		prev, cur := frames[i-1].Tangent, frames[i].Tangent
		n := frames[i-1].Normal

		pivot := prev.Cross(cur)
		if pivot.Len() > 1e-6 {
			theta := float32(math.Acos(float64(mgl32.Clamp(prev.Dot(cur), -1, 1))))
			n = mgl32.QuatRotate(theta, pivot.Normalize()).Rotate(n)
		}
		frames[i].Normal = n
		frames[i].Binormal = cur.Cross(n)
	}

	if c.IsClosed() {
		closeFrames(frames)
	}
	return frames
}

// closeFrames twists the normals so the last frame lines up with the first.
func closeFrames(frames []Frame) {
	last := len(frames) - 1
	if last < 1 {
		return
	}
	theta := float32(math.Acos(float64(mgl32.Clamp(frames[0].Normal.Dot(frames[last].Normal), -1, 1))))
	theta /= float32(last)
	if frames[0].Tangent.Dot(frames[0].Normal.Cross(frames[last].Normal)) > 0 {
		theta = -theta
	}
	for i := 1; i <= last; i++ {
		q := mgl32.QuatRotate(theta*float32(i), frames[i].Tangent)
		frames[i].Normal = q.Rotate(frames[i].Normal)
		frames[i].Binormal = frames[i].Tangent.Cross(frames[i].Normal)
	}
}

// Mesh is an indexed triangle list. Vertices are laid out ring by ring, one
// ring of len(profile) vertices per step.
type Mesh struct {
	Vertices []mgl32.Vec3
	Normals  []mgl32.Vec3
	Indices  []uint32
	Rings    int
	RingSize int
}

// Extrude sweeps profile along c, producing steps+1 rings. Consecutive
// profile points are joined into quads; the profile is not closed.
func Extrude(c *Curve, profile Profile, steps int) Mesh {
	if len(profile) == 0 {
		profile = RailProfile()
	}
	frames := Frames(c, steps)
	ringSize := len(profile)

	mesh := Mesh{
		Vertices: make([]mgl32.Vec3, 0, len(frames)*ringSize),
		Normals:  make([]mgl32.Vec3, 0, len(frames)*ringSize),
		Rings:    len(frames),
		RingSize: ringSize,
	}

	last := float32(len(frames) - 1)
	for i, f := range frames {
		center := c.Point(float32(i) / last)
		for _, v := range profile {
			pos := center.Add(f.Normal.Mul(v.X())).Add(f.Binormal.Mul(v.Y()))
			mesh.Vertices = append(mesh.Vertices, pos)
			mesh.Normals = append(mesh.Normals, f.Normal)
		}
	}

	if ringSize < 2 {
		return mesh
	}

	mesh.Indices = make([]uint32, 0, (len(frames)-1)*(ringSize-1)*6)
	for r := 0; r < len(frames)-1; r++ {
		for s := 0; s < ringSize-1; s++ {
			a := uint32(r*ringSize + s)
			b := uint32((r+1)*ringSize + s)
			mesh.Indices = append(mesh.Indices,
				a, b, a+1,
				b, b+1, a+1,
			)
		}
	}
	return mesh
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
