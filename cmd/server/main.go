package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/DoyleJ11/cricket-auction-backend/internal/auction"
	"github.com/DoyleJ11/cricket-auction-backend/internal/broadcast"
	"github.com/DoyleJ11/cricket-auction-backend/internal/config"
	"github.com/DoyleJ11/cricket-auction-backend/internal/httpapi"
	"github.com/DoyleJ11/cricket-auction-backend/internal/logging"
	"github.com/DoyleJ11/cricket-auction-backend/internal/metrics"
	"github.com/DoyleJ11/cricket-auction-backend/internal/records"
	"github.com/DoyleJ11/cricket-auction-backend/internal/store"
	"github.com/DoyleJ11/cricket-auction-backend/internal/viewer"
)

func main() {
	app := &cli.App{
		Name:  "cricket-auction",
		Usage: "run and watch live tournament auctions",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Value: "config.yaml", Usage: "YAML config file", EnvVars: []string{"CONFIG_PATH"}},
		},
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "start the HTTP server",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "memory", Usage: "keep records in process memory instead of Postgres"},
					&cli.BoolFlag{Name: "migrate", Usage: "migrate the schema before serving"},
				},
				Action: serve,
			},
			{
				Name:   "migrate",
				Usage:  "create or update the database schema",
				Action: migrate,
			},
			{
				Name:  "watch",
				Usage: "follow an auction's live stream and print each change",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "url", Value: "http://localhost:8080", Usage: "server base URL"},
					&cli.StringFlag{Name: "tournament", Aliases: []string{"t"}, Required: true},
					&cli.StringFlag{Name: "auction", Aliases: []string{"a"}, Required: true},
				},
				Action: watch,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func setup(c *cli.Context) (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, nil, err
	}
	log, err := logging.New(logging.Options{Env: cfg.App.Env, Level: cfg.Log.Level, Path: cfg.Log.Path})
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}

func openStore(cfg *config.Config, memory, migrate bool) (store.Store, error) {
	if memory {
		return store.NewMemory(), nil
	}
	if err := cfg.RequireDSN(); err != nil {
		return nil, err
	}
	db, err := store.Open(cfg.DB.DSN, cfg.IsDevelopment())
	if err != nil {
		return nil, err
	}
	if migrate {
		if err := store.Migrate(db); err != nil {
			return nil, err
		}
	}
	return store.NewGorm(db), nil
}

func serve(c *cli.Context) error {
	cfg, log, err := setup(c)
	if err != nil {
		return err
	}
	defer log.Sync()

	st, err := openStore(cfg, c.Bool("memory"), c.Bool("migrate"))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	hub := broadcast.NewHub(ctx)
	policy := broadcast.Policy{
		Interval:    cfg.Poll.Interval,
		MaxBackoff:  cfg.Poll.MaxBackoff,
		MaxFailures: cfg.Poll.MaxFailures,
	}

	handler := httpapi.SetupRoutes(httpapi.Deps{
		Auctions: auction.NewService(st, log, auction.WithNotifier(hub), auction.WithMetrics(m)),
		Records:  records.NewService(st, log, m),
		Poller:   broadcast.NewPoller(st, hub, policy, log, m),
		Metrics:  m,
		Gatherer: reg,
		Log:      log,
		Origins:  cfg.App.AllowedOrigins,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", srv.Addr), zap.String("env", cfg.App.Env))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	hub.Close()
	return srv.Shutdown(shutdownCtx)
}

func migrate(c *cli.Context) error {
	cfg, log, err := setup(c)
	if err != nil {
		return err
	}
	defer log.Sync()

	if _, err := openStore(cfg, false, true); err != nil {
		return err
	}
	log.Info("schema migrated")
	return nil
}

func watch(c *cli.Context) error {
	_, log, err := setup(c)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := viewer.NewClient(c.String("url"), log)
	err = client.Follow(ctx, c.String("tournament"), c.String("auction"), viewer.NewReconciler(), func(o viewer.Outcome, s viewer.State) {
		fmt.Fprintln(c.App.Writer, describe(o, s))
	})
	if ctx.Err() != nil {
		return nil
	}
	return err
}

func describe(o viewer.Outcome, s viewer.State) string {
	at := s.LastUpdated.Format(time.RFC3339Nano)
	switch o {
	case viewer.OutcomeStatus:
		return fmt.Sprintf("%s status %s", at, s.Status)
	case viewer.OutcomeMeta:
		m := s.Meta
		if m.CurrentPlayer.ID == "" {
			return fmt.Sprintf("%s group %q", at, m.CurrentGroup)
		}
		return fmt.Sprintf("%s group %q player %s (%s) bid %d, %d/%d sold",
			at, m.CurrentGroup, m.CurrentPlayer.Name, m.CurrentPlayer.Role, m.CurrentBid, m.SoldPlayers, m.TotalPlayers)
	default:
		return fmt.Sprintf("%s %s: %s, group %q", at, s.TournamentName, s.Status, s.Meta.CurrentGroup)
	}
}
