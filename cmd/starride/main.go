package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/gekko3d/starride"
	"github.com/gekko3d/starride/celestial"
	"github.com/gekko3d/starride/rig"
	"github.com/gekko3d/starride/spline"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/spf13/cobra"
)

const appName = "starride"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

type globalFlags struct {
	scene string
	debug bool
}

func rootCmd() *cobra.Command {
	var g globalFlags
	root := &cobra.Command{
		Use:          appName,
		Short:        "Fly a camera along a spline through the solar system",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&g.scene, "scene", "", "scene file (.yaml, .yml or .toml); the built-in flight when empty")
	root.PersistentFlags().BoolVar(&g.debug, "debug", false, "enable debug logging")

	root.AddCommand(flyCmd(&g), fetchCmd(&g), trackCmd(&g))
	return root
}

func (g *globalFlags) loadScene() (starride.SceneDef, error) {
	if g.scene == "" {
		return starride.DefaultScene(), nil
	}
	return starride.LoadSceneFile(g.scene)
}

func (g *globalFlags) logger() *starride.DefaultLogger {
	return starride.NewLogger(os.Stderr, os.Stderr, appName, g.debug)
}

func openStore(log starride.Logger, enabled bool) *celestial.SnapshotStore {
	if !enabled {
		return nil
	}
	store, err := celestial.OpenSnapshotStore(appName)
	if err != nil {
		log.Warnf("snapshot cache unavailable: %v", err)
		return nil
	}
	return store
}

func flyCmd(g *globalFlags) *cobra.Command {
	var (
		steps   int
		fps     int
		offline bool
		cache   bool
		wait    time.Duration
	)
	cmd := &cobra.Command{
		Use:   "fly",
		Short: "Sweep the scroll offset from 0 to 1 and print the camera pose per frame",
		RunE: func(cmd *cobra.Command, args []string) error {
			scene, err := g.loadScene()
			if err != nil {
				return err
			}
			if steps < 2 {
				return fmt.Errorf("--steps must be at least 2, got %d", steps)
			}
			if fps <= 0 {
				return fmt.Errorf("--fps must be positive, got %d", fps)
			}

			log := g.logger()
			app, err := starride.NewFlight(scene, starride.FlightOptions{
				Logger:  log,
				Debug:   g.debug,
				Store:   openStore(log, cache && !offline),
				Offline: offline,
			})
			if err != nil {
				return err
			}
			defer app.Close()

			if !offline {
				waitForCaptions(cmd.Context(), app, wait)
			}
			return fly(cmd.OutOrStdout(), app, steps, time.Second/time.Duration(fps))
		},
	}
	cmd.Flags().IntVar(&steps, "steps", 120, "number of frames in the sweep")
	cmd.Flags().IntVar(&fps, "fps", 60, "simulated frame rate")
	cmd.Flags().BoolVar(&offline, "offline", false, "skip fetching crew and planet data")
	cmd.Flags().BoolVar(&cache, "cache", true, "restore and save fetched data in the local snapshot")
	cmd.Flags().DurationVar(&wait, "wait", 15*time.Second, "how long to wait for fetched data before flying")
	return cmd
}

// waitForCaptions runs still frames until the captions are placed or wait
// elapses.
func waitForCaptions(ctx context.Context, app *starride.App, wait time.Duration) {
	board, ok := starride.Resource[starride.CaptionBoard](app)
	if !ok {
		return
	}
	deadline := time.Now().Add(wait)
	for !board.Built() && time.Now().Before(deadline) && ctx.Err() == nil {
		app.Frame(0)
		time.Sleep(20 * time.Millisecond)
	}
	if !board.Built() {
		app.Logger().Warnf("no celestial data after %s, flying without captions", wait)
	}
}

func fly(out io.Writer, app *starride.App, steps int, dt time.Duration) error {
	scroll, ok := starride.Resource[starride.ScrollState](app)
	if !ok {
		return fmt.Errorf("flight has no scroll state")
	}
	cmd := app.Commands()

	fmt.Fprintln(out, "frame\toffset\tx\ty\tz\tpitch\tyaw\troll")
	for i := 0; i < steps; i++ {
		scroll.SetTarget(float32(i) / float32(steps-1))
		app.Frame(dt)

		pose, ok := starride.CameraPose(cmd)
		if !ok {
			return fmt.Errorf("flight has no camera rig")
		}
		pitch, yaw, roll := rig.EulerXYZ(pose.Orientation)
		p := pose.Position
		fmt.Fprintf(out, "%d\t%.4f\t%.3f\t%.3f\t%.3f\t%.2f\t%.2f\t%.2f\n",
			i, scroll.Offset, p.X(), p.Y(), p.Z(),
			mgl32.RadToDeg(pitch), mgl32.RadToDeg(yaw), mgl32.RadToDeg(roll))
	}

	for _, s := range starride.Captions(cmd) {
		fmt.Fprintf(out, "caption %q at (%.1f, %.1f, %.1f): %s\n",
			s.Title, s.Position.X(), s.Position.Y(), s.Position.Z(), s.Subtitle)
	}
	return nil
}

func fetchCmd(g *globalFlags) *cobra.Command {
	var (
		cache   bool
		timeout time.Duration
	)
	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch the crew count and planet temperatures",
		RunE: func(cmd *cobra.Command, args []string) error {
			scene, err := g.loadScene()
			if err != nil {
				return err
			}
			cfg := scene.Celestial
			if timeout > 0 {
				cfg.Timeout = celestial.Duration(timeout)
			}

			log := g.logger()
			client := celestial.NewClient(cfg, celestial.WithLogger(log.Named("celestial")))
			store := openStore(log, cache)

			report := client.Fetch(cmd.Context())
			if _, err := store.Patch(&report); err != nil {
				log.Warnf("snapshot unreadable: %v", err)
			}
			if err := store.Save(report); err != nil {
				log.Warnf("snapshot not saved: %v", err)
			}
			return printReport(cmd.OutOrStdout(), report)
		},
	}
	cmd.Flags().BoolVar(&cache, "cache", true, "fall back to and refresh the local snapshot")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "per-request timeout (default from the scene)")
	return cmd
}

func printReport(out io.Writer, r celestial.Report) error {
	fmt.Fprintf(out, "run %s at %s\n", r.RunID, r.FetchedAt.Format(time.RFC3339))

	switch {
	case r.Crew != nil:
		note := ""
		if r.CrewCached {
			note = " (cached)"
		}
		fmt.Fprintf(out, "people in space: %d%s\n", r.Crew.Count, note)
		for _, name := range r.Crew.Names {
			fmt.Fprintf(out, "  %s\n", name)
		}
	default:
		fmt.Fprintf(out, "people in space: unavailable (%v)\n", r.CrewErr)
	}

	switch {
	case r.Planets != nil:
		note := ""
		if r.PlanetsCached {
			note = " (cached)"
		}
		fmt.Fprintf(out, "planets%s:\n", note)
		for _, p := range r.Planets {
			fmt.Fprintf(out, "  %-8s %7.1f K %7.0f°F\n", p.Name, p.AvgTempK, p.AvgTempF)
		}
	default:
		fmt.Fprintf(out, "planets: unavailable (%v)\n", r.PlanetsErr)
	}

	if r.Crew == nil && r.Planets == nil {
		return fmt.Errorf("no celestial data")
	}
	return nil
}

func trackCmd(g *globalFlags) *cobra.Command {
	var (
		steps int
		dump  bool
	)
	cmd := &cobra.Command{
		Use:   "track",
		Short: "Print the sampled flight path and the track mesh it extrudes",
		RunE: func(cmd *cobra.Command, args []string) error {
			scene, err := g.loadScene()
			if err != nil {
				return err
			}
			if steps > 0 {
				scene.Curve.Samples = steps
			}
			curve, err := scene.BuildCurve()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			n := scene.SampleCount()
			samples := curve.Samples(n)
			mesh := spline.Extrude(curve, spline.Profile(scene.Track.Profile), n)

			fmt.Fprintf(out, "curve: %s, %d control points, %d samples\n", curve.Type(), curve.Len(), len(samples))
			fmt.Fprintf(out, "mesh: %d rings of %d, %d vertices, %d triangles\n",
				mesh.Rings, mesh.RingSize, len(mesh.Vertices), len(mesh.Indices)/3)

			var length float32
			for i := 1; i < len(samples); i++ {
				length += samples[i].Sub(samples[i-1]).Len()
			}
			fmt.Fprintf(out, "length: %.2f\n", length)

			if dump {
				for i, p := range samples {
					fmt.Fprintf(out, "%d\t%.4f\t%.4f\t%.4f\n", i, p.X(), p.Y(), p.Z())
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&steps, "steps", 0, "number of samples (default from the scene)")
	cmd.Flags().BoolVar(&dump, "dump", false, "print every sample")
	return cmd
}
