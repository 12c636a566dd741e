package starride

import (
	"github.com/gekko3d/starride/rig"
)

// CameraRigModule spawns the camera rig and moves it along the flight path
// every frame from the current scroll offset. The lens is a child of the rig,
// held at the preset offset; install HierarchyModule to resolve its world
// transform.
type CameraRigModule struct {
	Params rig.Params
	Lens   LensPreset
}

func (m CameraRigModule) Install(app *App, cmd *Commands) {
	lens := m.Lens
	if lens.Fov <= 0 {
		lens = DefaultScene().Lens.Landscape
	}

	rigTransform := IdentityTransform()
	rigTransform.SetPose(rig.DefaultPose())
	rigId := cmd.AddEntity(
		&rigTransform,
		&CameraRigComponent{Updater: *rig.NewUpdater(m.Params), SampleIndex: -1},
	)

	local := IdentityLocal()
	local.Position = lens.Offset
	lensTransform := IdentityTransform()
	cmd.AddEntity(
		&Parent{Entity: rigId},
		&local,
		&lensTransform,
		&LensComponent{Fov: lens.Fov, Offset: lens.Offset},
	)

	app.UseSystem(
		System(CameraRigSystem).
			InStage(Update),
	)
}

func CameraRigSystem(cmd *Commands, clock *Time, scroll *ScrollState, path *FlightPath) {
	dt := clock.Seconds()
	MakeQuery2[CameraRigComponent, TransformComponent](cmd).Map(func(eid EntityId, cam *CameraRigComponent, tr *TransformComponent) bool {
		pose := tr.Pose()
		first := cam.Updater.State() == rig.Uninitialized

		cam.SampleIndex = cam.Updater.Update(&pose, path.Samples, scroll.Offset, dt)
		tr.SetPose(pose)

		if first && cam.Updater.State() == rig.Tracking {
			cmd.Logger().Debugf("camera rig %d tracking from sample %d", eid, cam.SampleIndex)
		}
		return true
	})
}

// CameraPose returns the pose of the first camera rig.
func CameraPose(cmd *Commands) (rig.Pose, bool) {
	var (
		pose  rig.Pose
		found bool
	)
	MakeQuery2[CameraRigComponent, TransformComponent](cmd).Map(func(eid EntityId, _ *CameraRigComponent, tr *TransformComponent) bool {
		pose, found = tr.Pose(), true
		return false
	})
	return pose, found
}

// LensTransform returns the world transform of the first lens.
func LensTransform(cmd *Commands) (TransformComponent, bool) {
	var (
		tr    TransformComponent
		found bool
	)
	MakeQuery2[LensComponent, TransformComponent](cmd).Map(func(eid EntityId, _ *LensComponent, world *TransformComponent) bool {
		tr, found = *world, true
		return false
	})
	return tr, found
}
