package starride

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Parent attaches an entity to another one. A child's TransformComponent is
// derived from its LocalTransformComponent and the parent's world transform.
type Parent struct {
	Entity EntityId
}

type LocalTransformComponent struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat
	Scale    mgl32.Vec3
}

func IdentityLocal() LocalTransformComponent {
	return LocalTransformComponent{
		Rotation: mgl32.QuatIdent(),
		Scale:    mgl32.Vec3{1, 1, 1},
	}
}

type HierarchyModule struct{}

func (HierarchyModule) Install(app *App, cmd *Commands) {
	app.UseSystem(
		System(TransformHierarchySystem).
			InStage(Finale),
	)
}

const maxHierarchyDepth = 8

// TransformHierarchySystem recomputes child world transforms. Each pass
// settles one more level, so it stops once a pass changes nothing.
func TransformHierarchySystem(cmd *Commands) {
	for pass := 0; pass < maxHierarchyDepth; pass++ {
		changed := false
		MakeQuery3[LocalTransformComponent, Parent, TransformComponent](cmd).Map(func(eid EntityId, local *LocalTransformComponent, parent *Parent, world *TransformComponent) bool {
			parentWorld, ok := Component[TransformComponent](cmd, parent.Entity)
			if !ok {
				return true
			}

			next := compose(*parentWorld, *local)
			if next != *world {
				*world = next
				changed = true
			}
			return true
		})
		if !changed {
			return
		}
	}
}

// compose keeps scale per axis so mirrored parents stay mirrored.
func compose(parent TransformComponent, local LocalTransformComponent) TransformComponent {
	scaled := mgl32.Vec3{
		local.Position.X() * parent.Scale.X(),
		local.Position.Y() * parent.Scale.Y(),
		local.Position.Z() * parent.Scale.Z(),
	}
	return TransformComponent{
		Position: parent.Position.Add(parent.Rotation.Rotate(scaled)),
		Rotation: parent.Rotation.Mul(local.Rotation).Normalize(),
		Scale: mgl32.Vec3{
			parent.Scale.X() * local.Scale.X(),
			parent.Scale.Y() * local.Scale.Y(),
			parent.Scale.Z() * local.Scale.Z(),
		},
	}
}
