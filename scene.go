package starride

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gekko3d/starride/caption"
	"github.com/gekko3d/starride/celestial"
	"github.com/gekko3d/starride/rig"
	"github.com/gekko3d/starride/spline"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// SceneDef is everything that makes one flight: the path, how the camera
// follows it, how it is drawn and what the captions say.
type SceneDef struct {
	Name          string           `yaml:"name" toml:"name"`
	ControlPoints []mgl32.Vec3     `yaml:"control_points" toml:"control_points"`
	Curve         CurveDef         `yaml:"curve" toml:"curve"`
	Track         TrackDef         `yaml:"track" toml:"track"`
	Rig           RigDef           `yaml:"rig" toml:"rig"`
	Scroll        ScrollDef        `yaml:"scroll" toml:"scroll"`
	Lens          LensDef          `yaml:"lens" toml:"lens"`
	Captions      []caption.Def    `yaml:"captions" toml:"captions"`
	Layout        caption.Layout   `yaml:"layout" toml:"layout"`
	Celestial     celestial.Config `yaml:"celestial" toml:"celestial"`
}

type CurveDef struct {
	Type    string  `yaml:"type" toml:"type"`
	Tension float32 `yaml:"tension" toml:"tension"`
	Samples int     `yaml:"samples" toml:"samples"`
}

type TrackDef struct {
	Profile []mgl32.Vec2 `yaml:"profile" toml:"profile"`
	Offset  mgl32.Vec3   `yaml:"offset" toml:"offset"`
	Color   [4]float32   `yaml:"color" toml:"color"`
	Hidden  bool         `yaml:"hidden" toml:"hidden"`
}

type RigDef struct {
	Gain      float32 `yaml:"gain" toml:"gain"`
	LerpRate  float32 `yaml:"lerp_rate" toml:"lerp_rate"`
	SlerpRate float32 `yaml:"slerp_rate" toml:"slerp_rate"`
}

func (r RigDef) Params() rig.Params {
	return rig.Params{Gain: r.Gain, LerpRate: r.LerpRate, SlerpRate: r.SlerpRate}
}

type ScrollDef struct {
	Pages   float32 `yaml:"pages" toml:"pages"`
	Damping float32 `yaml:"damping" toml:"damping"`
}

type LensPreset struct {
	Fov    float32    `yaml:"fov" toml:"fov"`
	Offset mgl32.Vec3 `yaml:"offset" toml:"offset"`
}

type LensDef struct {
	Landscape LensPreset `yaml:"landscape" toml:"landscape"`
	Portrait  LensPreset `yaml:"portrait" toml:"portrait"`
}

const DefaultSamples = 2000

// DefaultScene is the flight past the solar system model.
func DefaultScene() SceneDef {
	return SceneDef{
		Name: "universe",
		ControlPoints: []mgl32.Vec3{
			{20, 0, 10},
			{21, 0, 0},
			{28.5, 0.5, -11},
			{28, 5, -33},
			{18, 6, -40},
			{5, 0, -50},
			{7, 0, -60},
			{7, 0, -64},
		},
		Curve: CurveDef{
			Type:    spline.Uniform.String(),
			Tension: spline.DefaultTension,
			Samples: DefaultSamples,
		},
		Track: TrackDef{
			Profile: spline.RailProfile(),
			Offset:  mgl32.Vec3{0, -2, 0},
			Color:   [4]float32{1, 1, 1, 0.7},
		},
		Rig: RigDef{
			Gain:      rig.DefaultGain,
			LerpRate:  rig.DefaultLerpRate,
			SlerpRate: rig.DefaultSlerpRate,
		},
		Scroll: ScrollDef{Pages: 30, Damping: 1},
		Lens: LensDef{
			Landscape: LensPreset{Fov: 60, Offset: mgl32.Vec3{-1, 0, 5}},
			Portrait:  LensPreset{Fov: 100, Offset: mgl32.Vec3{-1, 0, 9}},
		},
		Captions:  caption.DefaultDefs(),
		Layout:    caption.DefaultLayout(),
		Celestial: celestial.DefaultConfig(),
	}
}

func (s SceneDef) Validate() error {
	var errs []error
	if len(s.ControlPoints) < 2 {
		errs = append(errs, fmt.Errorf("scene %q: %w", s.Name, spline.ErrTooFewPoints))
	}
	if _, err := spline.ParseCurveType(s.Curve.Type); err != nil {
		errs = append(errs, fmt.Errorf("scene %q: %w", s.Name, err))
	}
	if s.Curve.Samples < 0 {
		errs = append(errs, fmt.Errorf("scene %q: negative sample count %d", s.Name, s.Curve.Samples))
	}
	for i, c := range s.Captions {
		if c.Anchor < 0 || c.Anchor >= len(s.ControlPoints) {
			errs = append(errs, fmt.Errorf("scene %q: caption %d anchored to missing control point %d", s.Name, i, c.Anchor))
		}
	}
	return errors.Join(errs...)
}

// BuildCurve constructs the flight curve described by the scene.
func (s SceneDef) BuildCurve() (*spline.Curve, error) {
	kind, err := spline.ParseCurveType(s.Curve.Type)
	if err != nil {
		return nil, err
	}
	opts := []spline.Option{spline.WithType(kind)}
	if s.Curve.Tension > 0 {
		opts = append(opts, spline.WithTension(s.Curve.Tension))
	}
	return spline.New(s.ControlPoints, opts...)
}

func (s SceneDef) SampleCount() int {
	if s.Curve.Samples <= 0 {
		return DefaultSamples
	}
	return s.Curve.Samples
}

// LoadSceneFile reads a scene from YAML (.yaml, .yml) or TOML (.toml).
// Fields the file leaves out keep their DefaultScene values.
func LoadSceneFile(path string) (SceneDef, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return SceneDef{}, fmt.Errorf("failed to read scene file: %w", err)
	}

	var unmarshal func([]byte, any) error
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		unmarshal = yaml.Unmarshal
	case ".toml":
		unmarshal = toml.Unmarshal
	default:
		return SceneDef{}, fmt.Errorf("unsupported scene file extension %q", ext)
	}

	var present map[string]any
	if err := unmarshal(data, &present); err != nil {
		return SceneDef{}, fmt.Errorf("failed to parse scene %s: %w", path, err)
	}
	scene := DefaultScene()
	scene.dropListsIn(present)
	if err := unmarshal(data, &scene); err != nil {
		return SceneDef{}, fmt.Errorf("failed to parse scene %s: %w", path, err)
	}

	if err := scene.Validate(); err != nil {
		return SceneDef{}, err
	}
	return scene, nil
}

// dropListsIn clears the default lists the file provides, so decoding
// replaces them rather than appending to them.
func (s *SceneDef) dropListsIn(present map[string]any) {
	if _, ok := present["control_points"]; ok {
		s.ControlPoints = nil
	}
	if _, ok := present["captions"]; ok {
		s.Captions = nil
	}
	if track, ok := present["track"].(map[string]any); ok {
		if _, ok := track["profile"]; ok {
			s.Track.Profile = nil
		}
	}
	if cel, ok := present["celestial"].(map[string]any); ok {
		if _, ok := cel["planets"]; ok {
			s.Celestial.PlanetIDs = nil
		}
	}
}

// SaveSceneFile writes a scene in the format implied by the extension.
func SaveSceneFile(path string, scene SceneDef) error {
	var (
		data []byte
		err  error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(scene)
	case ".toml":
		data, err = toml.Marshal(scene)
	default:
		return fmt.Errorf("unsupported scene file extension %q", ext)
	}
	if err != nil {
		return fmt.Errorf("failed to encode scene: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
