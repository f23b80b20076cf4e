package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/loopline/loopline/internal/config"
	"github.com/loopline/loopline/internal/db"
	"github.com/loopline/loopline/internal/hub"
	"github.com/loopline/loopline/internal/metrics"
	"github.com/loopline/loopline/internal/publisher"
	"github.com/loopline/loopline/sim"
	"github.com/loopline/loopline/sim/ledger"
)

var (
	envFile     string // .env file read before the environment
	resetWallet bool   // overwrite a persisted wallet with the starting balance
)

// serveCmd runs one line in real time and exposes it to observers
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the line in real time with metrics, NATS, websocket and player API",
	Run: func(cmd *cobra.Command, args []string) {
		var files []string
		if envFile != "" {
			files = append(files, envFile)
		}
		cfg, err := config.Load(files...)
		if err != nil {
			logrus.Fatalf("config error: %v", err)
		}
		level, err := logrus.ParseLevel(cfg.LogLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", cfg.LogLevel)
		}
		logrus.SetLevel(level)

		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		if err := serve(ctx, cfg); err != nil {
			logrus.Fatalf("%v", err)
		}
		logrus.Info("shutdown complete")
	},
}

func serve(ctx context.Context, cfg *config.Config) error {
	route, err := loadRoute(cfg.RouteFile)
	if err != nil {
		return err
	}

	var mcol *metrics.Collector
	if cfg.MetricsAddr != "" {
		mcol = metrics.NewCollector(cfg.SecsPerMinute, cfg.TickInterval)
		srv := mcol.Serve(cfg.MetricsAddr)
		defer shutdownServer(srv)
	}

	wallet, closeWallet, err := openWallet(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeWallet()

	sinks := sim.MultiSink{}
	if mcol != nil {
		sinks = append(sinks, mcol)
	}

	var pub *publisher.NATSPublisher
	if cfg.NATSURL != "" {
		pub, err = publisher.NewNATSPublisher(cfg.NATSURL, cfg.NATSSubjectPrefix, cfg.LogNATSSubjects, publisherMetrics(mcol))
		if err != nil {
			return err
		}
		defer pub.Close()
		sinks = append(sinks, pub.Sink(route.Name))
	}

	var h *hub.Hub
	if cfg.WSAddr != "" {
		h = hub.New()
		if mcol != nil {
			h.ClientsChanged = mcol.ClientsChanged
		}
		go h.Run(ctx.Done())
		sinks = append(sinks, h.Sink(route.Name))
	}

	s, err := newSession(sessionConfig{
		Route:         route,
		Seed:          cfg.Seed,
		StartHour:     cfg.StartHour,
		SecsPerMinute: cfg.SecsPerMinute,
		Spawner:       spawnerConfig(cfg.ArrivalRate, "poisson", 1),
		Wallet:        wallet,
		Events:        sinks,
	})
	if err != nil {
		return err
	}
	if mcol != nil {
		s.clock.AddListener(mcol.ObserveClock)
	}
	live := &liveLine{s: s}

	if h != nil {
		mux := http.NewServeMux()
		mux.HandleFunc("/ws", h.ServeWs)
		live.routes(mux)
		srv := &http.Server{Addr: cfg.WSAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logrus.Errorf("api server error: %v", err)
			}
		}()
		logrus.Infof("api and websocket listening on %s", cfg.WSAddr)
		defer shutdownServer(srv)
	}

	logrus.Infof("serving line %q: %d stops, seed=%d, tick=%s", route.Name, route.StopCount(), cfg.Seed, cfg.TickInterval)
	ticker := time.NewTicker(cfg.TickInterval)
	defer ticker.Stop()
	last := time.Now()
	var lastPublish time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			start := time.Now()
			snap := live.step(now.Sub(last).Seconds())
			last = now
			if mcol != nil {
				mcol.ObserveTick(time.Since(start))
				mcol.ObserveSnapshot(snap)
			}
			if now.Sub(lastPublish) < cfg.PublishInterval {
				continue
			}
			lastPublish = now
			if pub != nil {
				if err := pub.PublishSnapshot(snap); err != nil {
					logrus.Warnf("publishing snapshot: %v", err)
				}
			}
			if h != nil {
				h.BroadcastSnapshot(snap)
			}
		}
	}
}

// openWallet returns a Postgres wallet when a database is configured and an
// in-memory one otherwise.
func openWallet(ctx context.Context, cfg *config.Config) (sim.CurrencyStore, func(), error) {
	items := startingItems(cfg.StartCash, 0, false)
	if cfg.DatabaseURL == "" {
		return ledger.NewWallet(items), func() {}, nil
	}
	dsn, err := walletDSN(cfg)
	if err != nil {
		return nil, nil, err
	}
	sqlDB, err := db.Open(dsn)
	if err != nil {
		return nil, nil, err
	}
	if err := db.Ping(ctx, sqlDB); err != nil {
		sqlDB.Close()
		return nil, nil, err
	}
	w := ledger.NewPGWallet(sqlDB, cfg.PlayerID)
	if err := w.EnsureSchema(ctx); err != nil {
		sqlDB.Close()
		return nil, nil, err
	}
	if err := seedWallet(ctx, w, items, resetWallet); err != nil {
		sqlDB.Close()
		return nil, nil, err
	}
	logrus.Infof("wallet for %q persisted in postgres", cfg.PlayerID)
	return w, func() { sqlDB.Close() }, nil
}

// walletDSN points DATABASE_URL at LOOPLINE_DB_NAME when one is given.
func walletDSN(cfg *config.Config) (string, error) {
	if cfg.DatabaseName == "" {
		return cfg.DatabaseURL, nil
	}
	dsn, err := db.WithDBName(cfg.DatabaseURL, cfg.DatabaseName)
	if err != nil {
		return "", fmt.Errorf("database name %q: %w", cfg.DatabaseName, err)
	}
	return dsn, nil
}

type seedableWallet interface {
	Exists(ctx context.Context) (bool, error)
	Seed(ctx context.Context, items map[sim.ItemKind]int) error
}

// seedWallet gives a new player the starting items. An existing wallet is
// only overwritten when reset is set, even if it has been spent down to zero.
func seedWallet(ctx context.Context, w seedableWallet, items map[sim.ItemKind]int, reset bool) error {
	if !reset {
		exists, err := w.Exists(ctx)
		if err != nil {
			return err
		}
		if exists {
			return nil
		}
	}
	return w.Seed(ctx, items)
}

// publisherMetrics avoids handing the publisher a typed nil.
func publisherMetrics(c *metrics.Collector) publisher.PublisherMetrics {
	if c == nil {
		return nil
	}
	return c
}

func shutdownServer(srv *http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
}

func init() {
	serveCmd.Flags().StringVar(&envFile, "env-file", "", "Env file to load (default .env)")
	serveCmd.Flags().BoolVar(&resetWallet, "reset-wallet", false, "Reset a persisted wallet to the starting cash")
	rootCmd.AddCommand(serveCmd)
}
