package starride

import (
	"github.com/gekko3d/starride/caption"
	"github.com/gekko3d/starride/rig"
	"github.com/gekko3d/starride/spline"
	"github.com/go-gl/mathgl/mgl32"
)

type TransformComponent struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat
	Scale    mgl32.Vec3
}

func IdentityTransform() TransformComponent {
	return TransformComponent{
		Rotation: mgl32.QuatIdent(),
		Scale:    mgl32.Vec3{1, 1, 1},
	}
}

func (t TransformComponent) Pose() rig.Pose {
	return rig.Pose{Position: t.Position, Orientation: t.Rotation}
}

func (t *TransformComponent) SetPose(p rig.Pose) {
	t.Position = p.Position
	t.Rotation = p.Orientation
}

// CameraRigComponent marks the group that carries the camera along the
// flight path. Its TransformComponent is the camera pose.
type CameraRigComponent struct {
	Updater rig.Updater
	// SampleIndex is the path sample the rig tracked last frame, -1 before
	// the first frame.
	SampleIndex int
}

// LensComponent is the perspective camera inside the rig group. Offset is
// its position relative to the rig.
type LensComponent struct {
	Fov    float32
	Offset mgl32.Vec3
	Aspect float32
}

type TrackMeshComponent struct {
	Mesh    spline.Mesh
	Color   [4]float32
	Opacity float32
}

type CaptionComponent struct {
	Section caption.TextSection
	Color   [4]float32
}
