package starride

import (
	"fmt"

	"github.com/gekko3d/starride/spline"
	"github.com/go-gl/mathgl/mgl32"
)

// FlightPath is the sampled curve the camera rig follows. It is built once
// and never changes afterwards.
type FlightPath struct {
	Points  []mgl32.Vec3
	Curve   *spline.Curve
	Samples []mgl32.Vec3
}

// TrackModule builds the flight path from a scene and spawns the visible
// track mesh swept along it.
type TrackModule struct {
	Scene SceneDef
}

func (m TrackModule) Install(app *App, cmd *Commands) {
	curve, err := m.Scene.BuildCurve()
	if err != nil {
		panic(fmt.Errorf("track: %w", err))
	}

	path := &FlightPath{
		Points:  curve.ControlPoints(),
		Curve:   curve,
		Samples: curve.Samples(m.Scene.SampleCount()),
	}
	cmd.AddResources(path)
	cmd.Logger().Infof("flight path: %d control points, %d samples, %s curve",
		len(path.Points), len(path.Samples), curve.Type())

	if m.Scene.Track.Hidden {
		return
	}

	mesh := spline.Extrude(curve, spline.Profile(m.Scene.Track.Profile), m.Scene.SampleCount())
	color := m.Scene.Track.Color
	tr := IdentityTransform()
	tr.Position = m.Scene.Track.Offset
	cmd.AddEntity(
		&tr,
		&TrackMeshComponent{Mesh: mesh, Color: color, Opacity: color[3]},
	)
}
