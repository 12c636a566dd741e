package starride

// Viewport is the host's drawing surface size in pixels.
type Viewport struct {
	Width  float32
	Height float32
}

func (v Viewport) Aspect() float32 {
	if v.Height <= 0 {
		return 1
	}
	return v.Width / v.Height
}

// Portrait is true when the surface is taller than wide.
func (v Viewport) Portrait() bool {
	return v.Height > v.Width
}

// ViewportModule switches lenses between the landscape and portrait presets
// as the surface is resized.
type ViewportModule struct {
	Width     float32
	Height    float32
	Landscape LensPreset
	Portrait  LensPreset
}

type lensPresets struct {
	landscape LensPreset
	portrait  LensPreset
}

func (m ViewportModule) Install(app *App, cmd *Commands) {
	defaults := DefaultScene().Lens
	presets := &lensPresets{landscape: m.Landscape, portrait: m.Portrait}
	if presets.landscape.Fov <= 0 {
		presets.landscape = defaults.Landscape
	}
	if presets.portrait.Fov <= 0 {
		presets.portrait = defaults.Portrait
	}

	width, height := m.Width, m.Height
	if width <= 0 || height <= 0 {
		width, height = 1280, 720
	}
	cmd.AddResources(&Viewport{Width: width, Height: height}, presets)
	app.UseSystem(
		System(ViewportLensSystem).
			InStage(PostUpdate),
	)
}

func ViewportLensSystem(cmd *Commands, vp *Viewport, presets *lensPresets) {
	preset := presets.landscape
	if vp.Portrait() {
		preset = presets.portrait
	}
	aspect := vp.Aspect()
	MakeQuery2[LensComponent, LocalTransformComponent](cmd).Map(func(eid EntityId, lens *LensComponent, local *LocalTransformComponent) bool {
		lens.Fov = preset.Fov
		lens.Offset = preset.Offset
		lens.Aspect = aspect
		if local != nil {
			local.Position = preset.Offset
		}
		return true
	}, LocalTransformComponent{})
}
