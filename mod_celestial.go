package starride

import (
	"context"
	"sync"

	"github.com/gekko3d/starride/celestial"
)

// CelestialFeed hands the background fetch result to the frame loop. The
// worker writes into pending under mu; the drain system moves it into report
// on the frame goroutine, so systems read Report without locking.
type CelestialFeed struct {
	mu      sync.Mutex
	pending *celestial.Report

	ready  bool
	report celestial.Report
}

// Deliver queues a report for the next frame. Safe from any goroutine. A
// second delivery before the drain replaces the first.
func (f *CelestialFeed) Deliver(r celestial.Report) {
	f.mu.Lock()
	f.pending = &r
	f.mu.Unlock()
}

func (f *CelestialFeed) Ready() bool { return f.ready }

func (f *CelestialFeed) Report() celestial.Report { return f.report }

func (f *CelestialFeed) drain() (celestial.Report, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pending == nil {
		return celestial.Report{}, false
	}
	r := *f.pending
	f.pending = nil
	f.ready = true
	f.report = r
	return r, true
}

// CelestialModule fetches the crew count and planet temperatures once in the
// background. Failed halves are patched from Store when it has a snapshot,
// and fresh halves are saved back. Disabled skips the fetch; the host may
// still Deliver a report itself.
type CelestialModule struct {
	Client   *celestial.Client
	Store    *celestial.SnapshotStore
	Disabled bool
}

func (m CelestialModule) Install(app *App, cmd *Commands) {
	feed := &CelestialFeed{}
	cmd.AddResources(feed)
	app.UseSystem(
		System(CelestialDrainSystem).
			InStage(PreUpdate),
	)

	if m.Disabled {
		return
	}

	log := namedLogger(cmd.Logger(), "celestial")
	client := m.Client
	if client == nil {
		client = celestial.NewClient(celestial.DefaultConfig(), celestial.WithLogger(log))
	}
	store := m.Store

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	app.OnClose(func() {
		cancel()
		<-done
	})

	go func() {
		defer close(done)
		report := client.Fetch(ctx)
		if ctx.Err() != nil {
			return
		}
		if patched, err := store.Patch(&report); err != nil {
			log.Warnf("celestial snapshot unreadable: %v", err)
		} else if patched {
			log.Infof("celestial fetch %s: restored missing data from snapshot", report.RunID)
		}
		if err := store.Save(report); err != nil {
			log.Warnf("celestial snapshot not saved: %v", err)
		}
		feed.Deliver(report)
	}()
}

func CelestialDrainSystem(cmd *Commands, feed *CelestialFeed) {
	report, ok := feed.drain()
	if !ok {
		return
	}
	if report.Crew == nil {
		cmd.Logger().Warnf("crew count unavailable, its caption is hidden")
	}
	if report.Planets == nil {
		cmd.Logger().Warnf("planet temperatures unavailable, their captions are hidden")
	}
}
