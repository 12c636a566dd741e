package spline

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrames_Orthonormal(t *testing.T) {
	c, err := New(flightPoints(), WithType(Uniform))
	require.NoError(t, err)

	frames := Frames(c, 200)
	require.Len(t, frames, 201)

	for i, f := range frames {
		assert.InDelta(t, 1, f.Tangent.Len(), 1e-3, "tangent %d", i)
		assert.InDelta(t, 1, f.Normal.Len(), 1e-3, "normal %d", i)
		assert.InDelta(t, 0, f.Tangent.Dot(f.Normal), 1e-3, "tangent·normal %d", i)
		assert.InDelta(t, 0, f.Tangent.Dot(f.Binormal), 1e-3, "tangent·binormal %d", i)
	}
}

func TestExtrude_RingLayout(t *testing.T) {
	c, err := New(flightPoints())
	require.NoError(t, err)

	mesh := Extrude(c, RailProfile(), 100)

	assert.Equal(t, 101, mesh.Rings)
	assert.Equal(t, 2, mesh.RingSize)
	assert.Len(t, mesh.Vertices, 202)
	assert.Len(t, mesh.Normals, 202)
	assert.Len(t, mesh.Indices, 100*6)

	for _, idx := range mesh.Indices {
		assert.Less(t, int(idx), len(mesh.Vertices))
	}
}

func TestExtrude_ProfileWidth(t *testing.T) {
	c, err := New([]mgl32.Vec3{{0, 0, 0}, {0, 0, -10}})
	require.NoError(t, err)

	mesh := Extrude(c, RailProfile(), 4)
	for r := 0; r < mesh.Rings; r++ {
		a := mesh.Vertices[r*2]
		b := mesh.Vertices[r*2+1]
		assert.InDelta(t, 0.4, b.Sub(a).Len(), 1e-4, "ring %d", r)

		center := a.Add(b).Mul(0.5)
		assert.InDelta(t, 0, center.X(), 1e-4)
		assert.InDelta(t, 0, center.Y(), 1e-4)
	}
}

func TestExtrude_EmptyProfileUsesRail(t *testing.T) {
	c, err := New([]mgl32.Vec3{{0, 0, 0}, {5, 0, 0}})
	require.NoError(t, err)

	mesh := Extrude(c, nil, 3)
	assert.Equal(t, 2, mesh.RingSize)
}
