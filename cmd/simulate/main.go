package main

import (
	"flag"
	"os"
	"sync"
	"time"

	kitlog "github.com/go-kit/kit/log"
	helio "github.com/ksks2012/unfriendly-engine-sub000"
)

// This code reads the configuration, launches the rocket and propagates the
// whole system for the requested duration, streaming states to CSV.

var (
	confPath string
	duration time.Duration
	step     time.Duration
	export   string
	verbose  bool
)

func init() {
	flag.StringVar(&confPath, "conf", ".", "path to the directory holding conf.toml")
	flag.DurationVar(&duration, "duration", 2*time.Hour, "simulated duration")
	flag.DurationVar(&step, "step", 10*time.Millisecond, "tick size")
	flag.StringVar(&export, "export", "", "CSV export filename prefix (empty disables)")
	flag.BoolVar(&verbose, "verbose", false, "log every tick")
}

func main() {
	flag.Parse()
	logger := kitlog.NewLogfmtLogger(kitlog.NewSyncWriter(os.Stdout))
	logger = kitlog.With(logger, "ts", kitlog.DefaultTimestampUTC)

	cfg := helio.LoadConfig(confPath, logger)
	plan := helio.NewFlightPlan()
	if cfg.FlightPlanPath != "" {
		loaded, err := helio.LoadFlightPlan(cfg.FlightPlanPath)
		if err != nil {
			logger.Log("level", "warning", "subsys", "main", "message", "flying without a flight plan", "err", err)
		} else {
			plan = loaded
		}
	}

	sim := helio.NewSimulation(cfg, logger, plan)

	var wg sync.WaitGroup
	if export != "" {
		stateChan := make(chan helio.State, 64)
		sim.SetStateChan(stateChan)
		wg.Add(1)
		go func() {
			defer wg.Done()
			helio.StreamStates(helio.ExportConfig{Filename: export, Epoch: time.Now(), Timestamp: true}, stateChan)
		}()
		defer func() {
			close(stateChan)
			wg.Wait()
		}()
	}

	sim.Rocket.ToggleLaunch()
	h := step.Seconds()
	for sim.Elapsed() < duration.Seconds() {
		sim.Update(h)
		if verbose {
			logger.Log("level", "info", "subsys", "main", "elapsed", sim.Elapsed(), "fuel", sim.Rocket.FuelMass, "launched", sim.Rocket.Launched)
		}
	}
	logger.Log("level", "notice", "subsys", "main", "elapsed", sim.Elapsed(), "fuel", sim.Rocket.FuelMass)
}
