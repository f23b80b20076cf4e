package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/loopline/loopline/sim"
	"github.com/loopline/loopline/sim/ledger"
	"github.com/loopline/loopline/sim/trace"
	"github.com/loopline/loopline/sim/workload"
)

var (
	// CLI flags for the line
	seed          int64   // Seed for inspector, alighting, disturbance and rider draws
	routePath     string  // Route YAML overlaid on the defaults
	logLevel      string  // Log verbosity level
	simHours      float64 // Simulated hours to run
	secsPerMinute float64 // Real seconds per simulated minute
	tickSeconds   float64 // Real seconds per update
	startHour     float64 // Simulated hour the run starts at
	market        string  // Market condition for the whole run
	traceLevel    string  // Decision trace level: none, decisions
	summarize     bool    // Print the trace summary

	// CLI flags for riders
	arrivalRate    float64 // Riders per stop per simulated minute
	arrivalProcess string  // poisson, gamma, weibull, constant
	arrivalCV      float64 // CV for gamma and weibull arrivals

	// CLI flags for the player
	withPlayer bool
	startCash  int
	vouchers   int
	staffBadge bool
	homeStop   int
	destStop   int
	flagStop   bool
	evade      bool
	usePass    bool
	bribeMax   int
	confront   bool
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "loopline",
	Short: "Scheduled loop-line transit simulator",
}

// runCmd fast-forwards a line headlessly and prints the results
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the line simulation",
	Run: func(cmd *cobra.Command, args []string) {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)

		if !trace.IsValidTraceLevel(traceLevel) {
			logrus.Fatalf("Invalid trace level: %s", traceLevel)
		}
		if tickSeconds <= 0 {
			logrus.Fatalf("--tick must be positive, got %f", tickSeconds)
		}
		if simHours <= 0 {
			logrus.Fatalf("--hours must be positive, got %f", simHours)
		}

		route, err := loadRoute(routePath)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		mc, err := parseMarket(market)
		if err != nil {
			logrus.Fatalf("%v", err)
		}

		wallet := ledger.NewWallet(startingItems(startCash, vouchers, staffBadge))
		cfg := sessionConfig{
			Route:         route,
			Seed:          seed,
			StartHour:     startHour,
			SecsPerMinute: secsPerMinute,
			Spawner:       spawnerConfig(arrivalRate, arrivalProcess, arrivalCV),
			Wallet:        wallet,
			KeepEvents:    true,
		}
		if withPlayer {
			cfg.Player = &playerPlan{
				Home: homeStop, Dest: destStop, Flag: flagStop, Evade: evade,
				Pass: usePass, BribeMax: bribeMax, Confront: confront,
			}
			if err := cfg.Player.validate(route.StopCount()); err != nil {
				logrus.Fatalf("%v", err)
			}
		}

		logrus.Infof("Starting line %q: %d stops, seed=%d, %.1f sim hours from %05.2f, %.3fs per sim minute",
			route.Name, route.StopCount(), seed, simHours, startHour, secsPerMinute)
		startTime := time.Now()

		s, err := newSession(cfg)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		st := trace.NewSimulationTrace(trace.TraceConfig{Level: trace.TraceLevel(traceLevel)})
		s.vehicle.SetTrace(st)
		s.setMarket(mc)

		runFor(s, simHours*60*secsPerMinute, tickSeconds)

		s.vehicle.Metrics.Print()
		printLedger(s.ledger, wallet)
		printEvents(s.recorder)
		if summarize {
			printTraceSummary(trace.Summarize(st))
		}
		logrus.Infof("Simulation complete in %s (%s).", time.Since(startTime).Round(time.Millisecond), s.clock)
	},
}

// runFor advances s by total real seconds in steps of tick.
func runFor(s *session, total, tick float64) {
	for remaining := total; remaining > 0; remaining -= tick {
		s.step(min(tick, remaining))
	}
}

func loadRoute(path string) (sim.RouteConfig, error) {
	if path == "" {
		return sim.DefaultRouteConfig(), nil
	}
	return sim.LoadRouteConfig(path)
}

func parseMarket(s string) (sim.MarketCondition, error) {
	switch m := sim.MarketCondition(s); m {
	case sim.MarketNormal, sim.MarketCrackdown, sim.MarketFestival:
		return m, nil
	case "":
		return sim.MarketNormal, nil
	}
	return "", fmt.Errorf("unknown market condition %q", s)
}

func startingItems(cash, passVouchers int, badge bool) map[sim.ItemKind]int {
	items := map[sim.ItemKind]int{sim.ItemCash: cash}
	if passVouchers > 0 {
		items[sim.ItemPassVoucher] = passVouchers
	}
	if badge {
		items[sim.ItemStaffBadge] = 1
	}
	return items
}

func spawnerConfig(rate float64, process string, cv float64) workload.SpawnerConfig {
	spec := workload.ArrivalSpec{Process: process}
	if process == "gamma" || process == "weibull" {
		spec.CV = &cv
	}
	return workload.SpawnerConfig{RatePerMinute: rate, Arrival: spec}
}

func (p playerPlan) validate(stops int) error {
	if p.Home < 0 || p.Home >= stops || p.Dest < 0 || p.Dest >= stops {
		return fmt.Errorf("player stops must be in [0,%d), got home=%d dest=%d", stops, p.Home, p.Dest)
	}
	if p.Home == p.Dest {
		return fmt.Errorf("player home and destination must differ, both %d", p.Home)
	}
	if p.BribeMax < 0 {
		return fmt.Errorf("bribe must be non-negative, got %d", p.BribeMax)
	}
	return nil
}

func printLedger(l *ledger.Set, w *ledger.Wallet) {
	fmt.Println("=== Player ===")
	fmt.Printf("Wallet               : %s\n", w)
	fmt.Printf("Reputation           : %d (tier %d)\n", l.Reputation.Score(), l.Reputation.Tier())
	fmt.Printf("Record               : %d fare evasions, %d ticketless\n",
		l.Record.Count(sim.OffenseFareEvasion), l.Record.Count(sim.OffenseTicketless))
	fmt.Printf("Wanted Level         : %d\n", l.Wanted.Level())
	fmt.Printf("Rides Taken          : %d\n", l.Achievements.Count(sim.AchievementRidesTaken))
}

func printEvents(r *sim.EventRecorder) {
	fmt.Println("=== Events ===")
	for _, kind := range []sim.EventKind{
		sim.EventSpawned, sim.EventArrived, sim.EventSkipped, sim.EventDespawned,
		sim.EventMissed, sim.EventDisturbance, sim.EventPlayerBoarded, sim.EventBoardingRefused,
		sim.EventInspectionPassed, sim.EventInspectionFailed, sim.EventWanted,
	} {
		if n := r.Count(kind); n > 0 {
			fmt.Printf("%-21s: %d\n", kind, n)
		}
	}
}

func printTraceSummary(ts *trace.TraceSummary) {
	fmt.Println("=== Trace Summary ===")
	fmt.Printf("Boardings            : %d (%d paid, %d pass, %d evaded, %d refused)\n",
		ts.TotalBoardings, ts.PaidBoardings, ts.PassBoardings, ts.EvadedBoardings, ts.RefusedBoardings)
	fmt.Printf("Fare Revenue         : %d\n", ts.FareRevenue)
	fmt.Printf("Inspections          : %d (%d ticketless, fines %d, %d escalated)\n",
		ts.Inspections, ts.Ticketless, ts.FineRevenue, ts.Escalations)
	for outcome, n := range ts.OutcomeCounts {
		fmt.Printf("  %-19s: %d\n", outcome, n)
	}
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	runCmd.Flags().Int64Var(&seed, "seed", 42, "Seed for all probabilistic decisions")
	runCmd.Flags().StringVar(&routePath, "route", "", "Route YAML file overlaid on the default loop")
	runCmd.Flags().StringVar(&logLevel, "log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic)")
	runCmd.Flags().Float64Var(&simHours, "hours", 24, "Simulated hours to run")
	runCmd.Flags().Float64Var(&secsPerMinute, "speed", 1, "Real seconds per simulated minute")
	runCmd.Flags().Float64Var(&tickSeconds, "tick", 0.1, "Real seconds per update")
	runCmd.Flags().Float64Var(&startHour, "start-hour", 6, "Simulated hour of day to start at")
	runCmd.Flags().StringVar(&market, "market", "normal", "Market condition (normal, crackdown, festival)")
	runCmd.Flags().StringVar(&traceLevel, "trace-level", "none", "Decision trace level (none, decisions)")
	runCmd.Flags().BoolVar(&summarize, "summarize-trace", false, "Print the decision trace summary")

	// Rider arrivals
	runCmd.Flags().Float64Var(&arrivalRate, "rate", 0.2, "Riders per stop per simulated minute")
	runCmd.Flags().StringVar(&arrivalProcess, "arrivals", "poisson", "Arrival process (poisson, gamma, weibull, constant)")
	runCmd.Flags().Float64Var(&arrivalCV, "arrival-cv", 2, "Coefficient of variation for gamma and weibull arrivals")

	// Player
	runCmd.Flags().BoolVar(&withPlayer, "player", false, "Simulate a commuting player")
	runCmd.Flags().IntVar(&startCash, "cash", 100, "Player starting cash")
	runCmd.Flags().IntVar(&vouchers, "vouchers", 0, "Player starting pass vouchers")
	runCmd.Flags().BoolVar(&staffBadge, "staff-badge", false, "Give the player a staff badge")
	runCmd.Flags().IntVar(&homeStop, "home", 0, "Stop the player commutes from")
	runCmd.Flags().IntVar(&destStop, "dest", 2, "Stop the player commutes to")
	runCmd.Flags().BoolVar(&flagStop, "flag", false, "Player flags the vehicle instead of boarding at the stop")
	runCmd.Flags().BoolVar(&evade, "evade", false, "Player never pays")
	runCmd.Flags().BoolVar(&usePass, "pass", false, "Player activates a pass at the start")
	runCmd.Flags().IntVar(&bribeMax, "bribe", 0, "Bribe offered to inspectors when ticketless; 0 never bribes")
	runCmd.Flags().BoolVar(&confront, "confront", false, "Player confronts inspectors when ticketless")

	rootCmd.AddCommand(runCmd)
}
