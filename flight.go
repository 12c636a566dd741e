package starride

import (
	"github.com/gekko3d/starride/celestial"
)

// FlightOptions are the host-side knobs that are not part of a scene.
type FlightOptions struct {
	Logger *DefaultLogger
	Debug  bool
	// Client and Store are handed to CelestialModule. A nil Client builds
	// one from the scene's celestial config.
	Client   *celestial.Client
	Store    *celestial.SnapshotStore
	Offline  bool
	Viewport Viewport
}

// FlightModules returns the modules for a complete flight over scene, in
// install order.
func FlightModules(scene SceneDef, opts FlightOptions) []Module {
	return []Module{
		LoggingModule{Prefix: scene.Name, Debug: opts.Debug, Logger: opts.Logger},
		TimeModule{},
		ScrollModule{Pages: scene.Scroll.Pages, Damping: scene.Scroll.Damping},
		TrackModule{Scene: scene},
		CameraRigModule{Params: scene.Rig.Params(), Lens: scene.Lens.Landscape},
		ViewportModule{
			Width:     opts.Viewport.Width,
			Height:    opts.Viewport.Height,
			Landscape: scene.Lens.Landscape,
			Portrait:  scene.Lens.Portrait,
		},
		HierarchyModule{},
		celestialFor(scene, opts),
		CaptionModule{Defs: scene.Captions, Layout: scene.Layout},
	}
}

func celestialFor(scene SceneDef, opts FlightOptions) Module {
	return celestialModuleBuilder{scene: scene, opts: opts}
}

// celestialModuleBuilder defers client construction until the logger is
// installed, so the client logs through it.
type celestialModuleBuilder struct {
	scene SceneDef
	opts  FlightOptions
}

func (b celestialModuleBuilder) Install(app *App, cmd *Commands) {
	client := b.opts.Client
	if client == nil && !b.opts.Offline {
		client = celestial.NewClient(b.scene.Celestial, celestial.WithLogger(namedLogger(cmd.Logger(), "celestial")))
	}
	CelestialModule{Client: client, Store: b.opts.Store, Disabled: b.opts.Offline}.Install(app, cmd)
}

// NewFlight builds an app for scene.
func NewFlight(scene SceneDef, opts FlightOptions) (*App, error) {
	if err := scene.Validate(); err != nil {
		return nil, err
	}
	return NewAppBuilder().
		UseModule(FlightModules(scene, opts)...).
		Build(), nil
}
