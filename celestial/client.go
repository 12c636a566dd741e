// Package celestial fetches the flavor data shown in flight captions: how
// many people are in space right now and a few facts about each planet.
package celestial

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

var ErrUnexpectedStatus = errors.New("celestial: unexpected HTTP status")

const (
	DefaultCrewURL   = "http://api.open-notify.org/astros.json"
	DefaultBodiesURL = "https://api.le-systeme-solaire.net/rest/bodies/"
	DefaultTimeout   = Duration(10 * time.Second)
)

// DefaultPlanetIDs are the body identifiers of the eight planets, in order
// from the sun, as the bodies endpoint names them.
var DefaultPlanetIDs = []string{"mercure", "venus", "terre", "mars", "jupiter", "saturn", "uranus", "neptune"}

type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any) {}
func (nopLogger) Infof(string, ...any)  {}
func (nopLogger) Warnf(string, ...any)  {}
func (nopLogger) Errorf(string, ...any) {}

type Config struct {
	CrewURL   string   `yaml:"crew_url" toml:"crew_url"`
	BodiesURL string   `yaml:"bodies_url" toml:"bodies_url"`
	PlanetIDs []string `yaml:"planets" toml:"planets"`
	Timeout   Duration `yaml:"timeout" toml:"timeout"`
}

func DefaultConfig() Config {
	return Config{
		CrewURL:   DefaultCrewURL,
		BodiesURL: DefaultBodiesURL,
		PlanetIDs: append([]string(nil), DefaultPlanetIDs...),
		Timeout:   DefaultTimeout,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.CrewURL == "" {
		c.CrewURL = d.CrewURL
	}
	if c.BodiesURL == "" {
		c.BodiesURL = d.BodiesURL
	}
	if len(c.PlanetIDs) == 0 {
		c.PlanetIDs = d.PlanetIDs
	}
	if c.Timeout <= 0 {
		c.Timeout = d.Timeout
	}
	return c
}

type Crew struct {
	Count int      `yaml:"count"`
	Names []string `yaml:"names,omitempty"`
}

type Planet struct {
	ID       string  `yaml:"id"`
	Name     string  `yaml:"name"`
	AvgTempK float64 `yaml:"avg_temp_k"`
	AvgTempF float64 `yaml:"avg_temp_f"`
}

// Report is the outcome of one Fetch. Each half carries its own error; a
// failed half leaves its data nil.
type Report struct {
	RunID     uuid.UUID
	FetchedAt time.Time

	Crew    *Crew
	CrewErr error
	// CrewCached is set when Crew was restored from a snapshot.
	CrewCached bool

	Planets       []Planet
	PlanetsErr    error
	PlanetsCached bool
}

func (r Report) Planet(id string) (Planet, bool) {
	for _, p := range r.Planets {
		if p.ID == id {
			return p, true
		}
	}
	return Planet{}, false
}

type ClientOption func(*Client)

func WithHTTPClient(h *http.Client) ClientOption {
	return func(c *Client) { c.http = h }
}

func WithLogger(l Logger) ClientOption {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

type Client struct {
	cfg  Config
	http *http.Client
	log  Logger
}

func NewClient(cfg Config, opts ...ClientOption) *Client {
	cfg = cfg.withDefaults()
	c := &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout.Std()},
		log:  nopLogger{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Config() Config { return c.cfg }

type crewPayload struct {
	People []struct {
		Name  string `json:"name"`
		Craft string `json:"craft"`
	} `json:"people"`
}

func (c *Client) FetchCrew(ctx context.Context) (Crew, error) {
	var payload crewPayload
	if err := c.getJSON(ctx, c.cfg.CrewURL, &payload); err != nil {
		return Crew{}, fmt.Errorf("fetch crew: %w", err)
	}
	crew := Crew{Count: len(payload.People)}
	for _, p := range payload.People {
		crew.Names = append(crew.Names, p.Name)
	}
	return crew, nil
}

type bodyPayload struct {
	ID          string `json:"id"`
	EnglishName string `json:"englishName"`
	AvgTemp     any    `json:"avgTemp"`
}

func (c *Client) FetchPlanet(ctx context.Context, id string) (Planet, error) {
	var body bodyPayload
	endpoint := strings.TrimSuffix(c.cfg.BodiesURL, "/") + "/" + url.PathEscape(id)
	if err := c.getJSON(ctx, endpoint, &body); err != nil {
		return Planet{}, fmt.Errorf("fetch planet %s: %w", id, err)
	}

	kelvin, err := toFloat(body.AvgTemp)
	if err != nil {
		return Planet{}, fmt.Errorf("planet %s avgTemp: %w", id, err)
	}
	name := body.EnglishName
	if name == "" {
		name = id
	}
	return Planet{ID: id, Name: name, AvgTempK: kelvin, AvgTempF: fahrenheit(kelvin)}, nil
}

// FetchPlanets requests every configured planet concurrently. The set is all
// or nothing: the first failure cancels the remaining requests.
func (c *Client) FetchPlanets(ctx context.Context) ([]Planet, error) {
	planets := make([]Planet, len(c.cfg.PlanetIDs))
	g, gctx := errgroup.WithContext(ctx)
	for i, id := range c.cfg.PlanetIDs {
		g.Go(func() error {
			p, err := c.FetchPlanet(gctx, id)
			if err != nil {
				return err
			}
			planets[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return planets, nil
}

// Fetch runs the crew and planet requests concurrently and waits for both.
// It never fails as a whole; errors are reported per half and logged.
func (c *Client) Fetch(ctx context.Context) Report {
	report := Report{RunID: uuid.New()}
	c.log.Debugf("celestial fetch %s started", report.RunID)

	var g errgroup.Group
	g.Go(func() error {
		crew, err := c.FetchCrew(ctx)
		if err != nil {
			report.CrewErr = err
			return nil
		}
		report.Crew = &crew
		return nil
	})
	g.Go(func() error {
		planets, err := c.FetchPlanets(ctx)
		if err != nil {
			report.PlanetsErr = err
			return nil
		}
		report.Planets = planets
		return nil
	})
	_ = g.Wait()
	report.FetchedAt = time.Now()

	if report.CrewErr != nil {
		c.log.Warnf("celestial fetch %s: %v", report.RunID, report.CrewErr)
	}
	if report.PlanetsErr != nil {
		c.log.Warnf("celestial fetch %s: %v", report.RunID, report.PlanetsErr)
	}
	c.log.Infof("celestial fetch %s done: crew=%t planets=%d", report.RunID, report.Crew != nil, len(report.Planets))
	return report
}

func (c *Client) getJSON(ctx context.Context, endpoint string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: %s from %s", ErrUnexpectedStatus, resp.Status, endpoint)
	}

	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", endpoint, err)
	}
	return nil
}
