package caption

import (
	"bytes"
	"errors"
	"fmt"
	"text/template"

	"github.com/gekko3d/starride/celestial"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

type Source string

const (
	Static       Source = ""
	CrewSource   Source = "crew"
	PlanetSource Source = "planet"
)

// Def describes one caption. Title and Subtitle are text/template strings
// evaluated against Fields. A caption whose Source has no data is dropped,
// unless Placeholder is set, in which case Placeholder replaces the subtitle.
type Def struct {
	Anchor      int        `yaml:"anchor" toml:"anchor"`
	Offset      mgl32.Vec3 `yaml:"offset" toml:"offset"`
	Rotation    mgl32.Vec3 `yaml:"rotation" toml:"rotation"`
	Title       string     `yaml:"title" toml:"title"`
	Subtitle    string     `yaml:"subtitle" toml:"subtitle"`
	Source      Source     `yaml:"source,omitempty" toml:"source,omitempty"`
	Planet      string     `yaml:"planet,omitempty" toml:"planet,omitempty"`
	Placeholder string     `yaml:"placeholder,omitempty" toml:"placeholder,omitempty"`
}

// Fields is what caption templates see.
type Fields struct {
	Crew    int
	Planet  celestial.Planet
	Planets []celestial.Planet
}

type TextSection struct {
	ID       uuid.UUID
	Position mgl32.Vec3
	Rotation mgl32.Quat
	Euler    mgl32.Vec3
	Title    string
	Subtitle string
	// Lines is Subtitle wrapped to the layout width.
	Lines []string
}

// DefaultDefs places a caption beside the first, third and sixth control
// points of the default flight.
func DefaultDefs() []Def {
	return []Def{
		{
			Anchor:   0,
			Offset:   mgl32.Vec3{-3, 0, -1},
			Rotation: mgl32.Vec3{0, -0.2768, 0},
			Title:    "Welcome to your ride",
			Subtitle: "Did you know that there's {{.Crew}} people in space right now?",
			Source:   CrewSource,
		},
		{
			Anchor:   2,
			Offset:   mgl32.Vec3{3, 0, -1},
			Rotation: mgl32.Vec3{-0.005, -1.047, 0},
			Title:    "Home sweet home",
			Subtitle: `{{.Planet.Name}} averages {{printf "%.0f" .Planet.AvgTempF}}°F. Enjoy it while it lasts.`,
			Source:   PlanetSource,
			Planet:   "terre",
		},
		{
			Anchor:      5,
			Offset:      mgl32.Vec3{-3, 0, -1},
			Rotation:    mgl32.Vec3{0, 0.35, 0},
			Title:       "Getting colder",
			Subtitle:    `{{.Planet.Name}} sits at {{printf "%.0f" .Planet.AvgTempF}}°F on average.`,
			Source:      PlanetSource,
			Planet:      "jupiter",
			Placeholder: "Out here the thermometers stop making sense.",
		},
	}
}

// Build turns caption definitions into positioned text sections. anchors are
// the flight's control points; each caption sits at anchors[Anchor]+Offset.
// A caption with a bad anchor or template is left out and the rest are still
// built; the returned error joins one error per skipped caption.
func Build(defs []Def, anchors []mgl32.Vec3, report celestial.Report, layout Layout) ([]TextSection, error) {
	sections := make([]TextSection, 0, len(defs))
	var errs []error
	for i, def := range defs {
		section, ok, err := build(i, def, anchors, report, layout)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if ok {
			sections = append(sections, section)
		}
	}
	return sections, errors.Join(errs...)
}

func build(i int, def Def, anchors []mgl32.Vec3, report celestial.Report, layout Layout) (TextSection, bool, error) {
	if def.Anchor < 0 || def.Anchor >= len(anchors) {
		return TextSection{}, false, fmt.Errorf("caption %d: anchor %d outside %d control points", i, def.Anchor, len(anchors))
	}

	fields, ok := resolve(def, report)
	title, err := render(def.Title, fields)
	if err != nil {
		return TextSection{}, false, fmt.Errorf("caption %d title: %w", i, err)
	}

	var subtitle string
	switch {
	case ok:
		subtitle, err = render(def.Subtitle, fields)
		if err != nil {
			return TextSection{}, false, fmt.Errorf("caption %d subtitle: %w", i, err)
		}
	case def.Placeholder != "":
		subtitle = def.Placeholder
	default:
		return TextSection{}, false, nil
	}

	return TextSection{
		ID:       uuid.NewSHA1(uuid.NameSpaceOID, fmt.Appendf(nil, "caption/%d/%s", i, def.Title)),
		Position: anchors[def.Anchor].Add(def.Offset),
		Rotation: mgl32.AnglesToQuat(def.Rotation[0], def.Rotation[1], def.Rotation[2], mgl32.XYZ),
		Euler:    def.Rotation,
		Title:    title,
		Subtitle: subtitle,
		Lines:    layout.Wrap(subtitle),
	}, true, nil
}

func resolve(def Def, report celestial.Report) (Fields, bool) {
	fields := Fields{Planets: report.Planets}
	if report.Crew != nil {
		fields.Crew = report.Crew.Count
	}

	switch def.Source {
	case CrewSource:
		return fields, report.Crew != nil
	case PlanetSource:
		p, ok := report.Planet(def.Planet)
		fields.Planet = p
		return fields, ok
	}
	return fields, true
}

func render(text string, fields Fields) (string, error) {
	if text == "" {
		return "", nil
	}
	tmpl, err := template.New("caption").Option("missingkey=error").Parse(text)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, fields); err != nil {
		return "", err
	}
	return buf.String(), nil
}
