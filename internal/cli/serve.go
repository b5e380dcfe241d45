package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/raoulx24/dirsync/internal/app"
	"github.com/raoulx24/dirsync/internal/config"
	"github.com/raoulx24/dirsync/internal/logging"
	"github.com/raoulx24/dirsync/internal/mailbox"
	"github.com/raoulx24/dirsync/internal/metrics"
	"github.com/raoulx24/dirsync/internal/replicator"
	"github.com/raoulx24/dirsync/internal/schedule"
	"github.com/raoulx24/dirsync/internal/watcher"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Replicate on schedule and on source changes until stopped",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, base, err := loadConfig()
		if err != nil {
			return err
		}
		log := logging.NewSwitch(base)

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		m := metrics.New()
		env, err := app.Build(ctx, cfg, log, m)
		if err != nil {
			return err
		}
		defer env.Close()

		r, err := replicator.New(env.ReplicatorOptions())
		if err != nil {
			return err
		}

		// Mailbox for sync requests
		mb := mailbox.New[replicator.Request]()

		sched, err := schedule.New(cfg.Schedule.Cron, mb, log)
		if err != nil {
			return err
		}
		watch := watcher.New(cfg.Source, cfg.Watch, env.Registry, log, mb)

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error { return r.Serve(gctx, mb) })
		g.Go(func() error {
			sched.Start(gctx)
			return nil
		})
		g.Go(func() error { return watch.Start(gctx) })
		if cfg.Metrics.Listen != "" {
			g.Go(func() error { return serveMetrics(gctx, cfg.Metrics.Listen, m, log) })
		}

		// Hot reload on SIGHUP
		rl := &reloader{log: log, env: env, r: r, sched: sched, watch: watch}
		g.Go(func() error {
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGHUP)
			defer signal.Stop(sigCh)

			for {
				select {
				case <-gctx.Done():
					return nil
				case <-sigCh:
				}
				if err := rl.reload(cfgPath); err != nil {
					log.Error("config reload failed", "error", err)
					continue
				}
				log.Info("config reloaded")
			}
		})

		mb.Put(replicator.NewRequest("startup"))
		log.Info("dirsync started", "config", cfgPath, "source", cfg.Source, "target", cfg.Target)

		err = g.Wait()
		log.Info("exit complete")
		return err
	},
}

// reloader applies a reloaded config file to the running components.
type reloader struct {
	log   *logging.Switch
	env   *app.Env
	r     *replicator.Replicator
	sched *schedule.Scheduler
	watch *watcher.Watcher
}

func (rl *reloader) reload(path string) error {
	next, err := config.Load(path)
	if err != nil {
		return err
	}
	nextEnv, err := rl.env.Reload(next)
	if err != nil {
		return err
	}

	// Apply updates
	if err := rl.r.UpdateConfig(nextEnv.ReplicatorOptions()); err != nil {
		return err
	}
	if err := rl.sched.UpdateConfig(next.Schedule.Cron); err != nil {
		return fmt.Errorf("schedule: %w", err)
	}
	rl.watch.UpdateConfig(next.Source, next.Watch, nextEnv.Registry)
	rl.log.Set(newLogger(next.Logging))
	rl.env = nextEnv
	return nil
}

func serveMetrics(ctx context.Context, addr string, m *metrics.Collector, log logging.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info("metrics listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
