package celestial

import (
	"fmt"
	"time"

	"github.com/quasilyte/gdata/v2"
	"gopkg.in/yaml.v3"
)

const (
	snapshotObject   = "celestial"
	snapshotProperty = "snapshot"
)

// Snapshot is the last successfully fetched data, kept so a later offline
// start can still fill its captions.
type Snapshot struct {
	RunID   string    `yaml:"run_id"`
	SavedAt time.Time `yaml:"saved_at"`
	Crew    *Crew     `yaml:"crew,omitempty"`
	Planets []Planet  `yaml:"planets,omitempty"`
}

// SnapshotStore persists Snapshots through gdata. A nil store, or one built
// over a nil manager, keeps nothing and restores nothing.
type SnapshotStore struct {
	m *gdata.Manager
}

func NewSnapshotStore(m *gdata.Manager) *SnapshotStore {
	return &SnapshotStore{m: m}
}

func OpenSnapshotStore(appName string) (*SnapshotStore, error) {
	m, err := gdata.Open(gdata.Config{AppName: appName})
	if err != nil {
		return nil, fmt.Errorf("open snapshot store: %w", err)
	}
	return NewSnapshotStore(m), nil
}

func (s *SnapshotStore) enabled() bool {
	return s != nil && s.m != nil
}

func (s *SnapshotStore) Load() (Snapshot, bool, error) {
	if !s.enabled() || !s.m.ObjectPropExists(snapshotObject, snapshotProperty) {
		return Snapshot{}, false, nil
	}
	data, err := s.m.LoadObjectProp(snapshotObject, snapshotProperty)
	if err != nil {
		return Snapshot{}, false, fmt.Errorf("load snapshot: %w", err)
	}
	var snap Snapshot
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, false, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return snap, true, nil
}

// Save merges the successful halves of r into the stored snapshot. Halves
// that failed, or were themselves restored from the snapshot, are left as
// they were.
func (s *SnapshotStore) Save(r Report) error {
	if !s.enabled() {
		return nil
	}
	fresh := (r.Crew != nil && !r.CrewCached) || (r.Planets != nil && !r.PlanetsCached)
	if !fresh {
		return nil
	}

	snap, _, err := s.Load()
	if err != nil {
		snap = Snapshot{}
	}
	snap.RunID = r.RunID.String()
	snap.SavedAt = r.FetchedAt
	if r.Crew != nil && !r.CrewCached {
		crew := *r.Crew
		snap.Crew = &crew
	}
	if r.Planets != nil && !r.PlanetsCached {
		snap.Planets = append([]Planet(nil), r.Planets...)
	}

	data, err := yaml.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := s.m.SaveObjectProp(snapshotObject, snapshotProperty, data); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

// Patch fills the failed halves of r from the stored snapshot and reports
// whether anything was restored. The original errors stay on r.
func (s *SnapshotStore) Patch(r *Report) (bool, error) {
	if r.Crew != nil && r.Planets != nil {
		return false, nil
	}
	snap, ok, err := s.Load()
	if err != nil || !ok {
		return false, err
	}

	patched := false
	if r.Crew == nil && snap.Crew != nil {
		crew := *snap.Crew
		r.Crew = &crew
		r.CrewCached = true
		patched = true
	}
	if r.Planets == nil && len(snap.Planets) > 0 {
		r.Planets = append([]Planet(nil), snap.Planets...)
		r.PlanetsCached = true
		patched = true
	}
	return patched, nil
}
