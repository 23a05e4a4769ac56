// Command chronicle runs the historical-world simulator: it loads a
// SimConfig, assembles a starting world, ticks the scheduler across every
// subsystem, and flushes the resulting chronicle to JSONL.
//
// Structured the way the teacher's cmd/server/main.go decomposes a small
// set of single-purpose functions (loadAndConfigureSystem,
// initializeServer, executeServerLifecycle) rather than one long main;
// here there is no listener lifecycle to manage, just load -> run -> flush.
package main

import (
	"flag"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/historica/chronicle/internal/agency"
	"github.com/historica/chronicle/internal/buildings"
	"github.com/historica/chronicle/internal/command"
	"github.com/historica/chronicle/internal/conflict"
	"github.com/historica/chronicle/internal/config"
	"github.com/historica/chronicle/internal/culture"
	"github.com/historica/chronicle/internal/demographics"
	"github.com/historica/chronicle/internal/disease"
	"github.com/historica/chronicle/internal/economy"
	"github.com/historica/chronicle/internal/education"
	"github.com/historica/chronicle/internal/environment"
	"github.com/historica/chronicle/internal/items"
	"github.com/historica/chronicle/internal/metrics"
	"github.com/historica/chronicle/internal/migration"
	"github.com/historica/chronicle/internal/politics"
	"github.com/historica/chronicle/internal/reputation"
	"github.com/historica/chronicle/internal/runlog"
	"github.com/historica/chronicle/internal/scenario"
	"github.com/historica/chronicle/internal/scheduler"
	"github.com/historica/chronicle/internal/signal"
	"github.com/historica/chronicle/internal/world"
	"github.com/historica/chronicle/internal/worldlog"
)

func main() {
	simConfigPath := flag.String("sim-config", "", "path to SimConfig YAML (required)")
	outDir := flag.String("out", "./out", "directory to flush the JSONL chronicle to")
	logLevel := flag.String("log-level", "info", "logrus level: debug, info, warn, error")
	flag.Parse()

	if *simConfigPath == "" {
		logrus.Fatal("--sim-config is required")
	}

	level, err := logrus.ParseLevel(*logLevel)
	if err != nil {
		logrus.WithError(err).Warn("invalid log level, using info")
		level = logrus.InfoLevel
	}
	run := runlog.New(level)

	defer func() {
		if r := recover(); r != nil {
			run.WithFields(logrus.Fields{"component": "main"}).Errorf("precondition violated, halting simulation: %v", r)
			os.Exit(1)
		}
	}()

	simCfg, err := config.LoadSimConfig(*simConfigPath)
	if err != nil {
		run.WithFields(logrus.Fields{"component": "main"}).Fatalf("failed to load sim config: %v", err)
	}

	b := scenario.Bootstrap(simCfg.Seed, world.Timestamp{Year: simCfg.StartYear, Month: 1})
	w := b.W
	w.Log = run.Log

	bus := signal.NewBus()
	app := command.NewApplicator(w, bus, run.Log)
	m := metrics.New()

	sched := scheduler.New(w, app, bus, simCfg.Seed, run.Log,
		demographics.New(),
		environment.New(),
		disease.New(),
		economy.New(),
		buildings.New(),
		conflict.New(),
		politics.New(),
		migration.New(),
		reputation.New(),
		items.New(),
		education.New(),
		culture.New(simCfg.Seed),
		agency.New(),
	)

	run.WithFields(logrus.Fields{
		"component": "main", "seed": simCfg.Seed, "start_year": simCfg.StartYear, "num_years": simCfg.NumYears,
	}).Info("starting simulation run")

	sched.Run(int(simCfg.NumYears) * 12)

	for _, kind := range []world.EntityKind{world.KindPerson, world.KindSettlement, world.KindFaction} {
		m.SetEntitiesAlive(string(kind), len(w.LivingByKind(kind)))
	}
	m.RecordEffects(len(w.Effects()))

	if err := worldlog.Flush(w, *outDir, run.Log); err != nil {
		run.WithFields(logrus.Fields{"component": "main"}).Fatalf("failed to flush world log: %v", err)
	}

	run.WithFields(logrus.Fields{
		"component": "main", "final_tick": w.Current.String(), "effects": len(w.Effects()),
	}).Info("simulation run complete")
}
