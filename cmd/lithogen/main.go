// Command lithogen runs a lithosphere simulation to completion (or
// indefinitely, in serve mode) and reports a topography summary.
package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/onuse/lithogen/internal/config"
	"github.com/onuse/lithogen/internal/lithosphere"
	"github.com/onuse/lithogen/internal/noise"
	"github.com/onuse/lithogen/internal/query"
	"github.com/onuse/lithogen/internal/statsum"
	"github.com/onuse/lithogen/internal/worldparams"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to a JSON settings file (optional, defaults are used otherwise)")
		width      = flag.Int("width", 0, "world width in cells (overrides config)")
		height     = flag.Int("height", 0, "world height in cells (overrides config)")
		maxSteps   = flag.Int("steps", 2000, "maximum number of iterations to run before stopping (0 = unbounded)")
		serve      = flag.Bool("serve", false, "stream live snapshots over a websocket instead of running to completion")
		quiet      = flag.Bool("quiet", false, "suppress per-report console output")
	)
	flag.Parse()

	settings := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("lithogen: %v", err)
		}
		settings = loaded
	}
	if *width > 0 {
		settings.World.Width = *width
	}
	if *height > 0 {
		settings.World.Height = *height
	}

	fmt.Printf("=== Lithosphere Simulator ===\n")
	fmt.Printf("World: %dx%d, plates: %d, seed: %d\n",
		settings.World.Width, settings.World.Height, settings.Simulation.NumPlates, settings.Simulation.Seed)

	source := noise.SquareDiamond{Roughness: 0.6}
	engine, err := lithosphere.New(settings.World.Width, settings.World.Height, settings.Params(), source, nil)
	if err != nil {
		log.Fatalf("lithogen: failed to construct engine: %v", err)
	}

	if *serve {
		runServer(engine, settings)
		return
	}

	runToCompletion(engine, *maxSteps, *quiet)
}

func runToCompletion(engine *lithosphere.Lithosphere, maxSteps int, quiet bool) {
	lastReport := time.Now()
	for step := 0; maxSteps == 0 || step < maxSteps; step++ {
		finished, err := engine.Update()
		if err != nil {
			log.Fatalf("lithogen: step %d failed: %v", step, err)
		}

		if !quiet && time.Since(lastReport) >= time.Second {
			printReport(engine)
			lastReport = time.Now()
		}
		if finished {
			break
		}
	}

	fmt.Println("\n=== Final summary ===")
	printReport(engine)
}

func printReport(engine *lithosphere.Lithosphere) {
	stats := engine.Snapshot()
	summary := statsum.Summarize(engine, worldparams.ContinentalBase)
	fmt.Printf("iter=%d cycle=%d plates=%d land=%.1f%% meanHeight=%.4f kinetic=%.4f\n",
		stats.IterationCount, stats.CycleCount, stats.PlateCount,
		summary.LandFraction*100, summary.Mean, stats.TotalKinetic)
}

func runServer(engine *lithosphere.Lithosphere, settings config.Settings) {
	period := time.Duration(settings.Server.UpdateIntervalMs) * time.Millisecond
	if period <= 0 {
		period = 250 * time.Millisecond
	}

	srv := query.New(engine, period)
	http.Handle("/ws", srv.Handler())

	done := make(chan struct{})
	go srv.Run(done)

	addr := fmt.Sprintf(":%d", settings.Server.Port)
	fmt.Printf("Streaming snapshots on ws://localhost%s/ws\n", addr)

	httpServer := &http.Server{Addr: addr}
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("lithogen: server error: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)
	<-sig

	close(done)
	fmt.Println("\nShutting down...")
}
