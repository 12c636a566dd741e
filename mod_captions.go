package starride

import (
	"github.com/gekko3d/starride/caption"
)

// CaptionBoard tracks whether the captions have been placed. They are built
// once, on the first frame after the celestial feed is ready.
type CaptionBoard struct {
	Defs   []caption.Def
	Layout caption.Layout

	built    bool
	entities []EntityId
}

func (b *CaptionBoard) Built() bool { return b.built }

func (b *CaptionBoard) Entities() []EntityId { return b.entities }

type CaptionModule struct {
	Defs   []caption.Def
	Layout caption.Layout
	Color  [4]float32
}

type captionStyle struct {
	color [4]float32
}

func (m CaptionModule) Install(app *App, cmd *Commands) {
	defs := m.Defs
	if defs == nil {
		defs = caption.DefaultDefs()
	}
	color := m.Color
	if color == ([4]float32{}) {
		color = [4]float32{1, 1, 1, 1}
	}
	cmd.AddResources(
		&CaptionBoard{Defs: defs, Layout: m.Layout},
		&captionStyle{color: color},
	)
	app.UseSystem(
		System(CaptionSystem).
			InStage(Update),
	)
}

func CaptionSystem(cmd *Commands, board *CaptionBoard, feed *CelestialFeed, path *FlightPath, style *captionStyle) {
	if board.built || !feed.Ready() {
		return
	}
	board.built = true

	sections, err := caption.Build(board.Defs, path.Points, feed.Report(), board.Layout)
	for _, skipped := range unjoin(err) {
		cmd.Logger().Errorf("caption skipped: %v", skipped)
	}

	for _, s := range sections {
		tr := IdentityTransform()
		tr.Position = s.Position
		tr.Rotation = s.Rotation
		board.entities = append(board.entities, cmd.AddEntity(
			&tr,
			&CaptionComponent{Section: s, Color: style.color},
		))
	}
	cmd.Logger().Infof("placed %d of %d captions", len(sections), len(board.Defs))
}

func unjoin(err error) []error {
	if err == nil {
		return nil
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		return joined.Unwrap()
	}
	return []error{err}
}

// Captions returns the placed caption sections in entity order.
func Captions(cmd *Commands) []caption.TextSection {
	var out []caption.TextSection
	MakeQuery1[CaptionComponent](cmd).Map(func(eid EntityId, c *CaptionComponent) bool {
		out = append(out, c.Section)
		return true
	})
	return out
}
