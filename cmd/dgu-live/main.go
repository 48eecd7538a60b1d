package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"dgu-live/internal/baseline"
	"dgu-live/internal/config"
	"dgu-live/internal/influx"
	"dgu-live/internal/logger"
	"dgu-live/internal/metrics"
	"dgu-live/internal/model"
	"dgu-live/internal/store"
	"dgu-live/internal/view"
)

func main() {
	configPath := pflag.StringP("config", "c", os.Getenv("DGU_CONFIG_PATH"), "path to YAML config")
	source := pflag.String("source", "", "push source: ws or mqtt (overrides config)")
	pflag.Parse()

	if err := run(*configPath, *source); err != nil {
		l := logger.GetLogger()
		l.Fatal().Err(err).Msg("dgu-live")
	}
}

// run owns every resource of the session; it returns only after they are released.
func run(configPath, source string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if source != "" {
		cfg.Source = source
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("config: %w", err)
		}
	}
	if err := logger.Init(cfg.Log); err != nil {
		return fmt.Errorf("logger: %w", err)
	}

	sessionID := uuid.NewString()
	log := logger.WithSession(logger.WithComponent("session"), sessionID)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st := store.New(store.WithLogger(logger.WithSession(logger.WithComponent("store"), sessionID)))

	src, err := startSource(cfg, st, sessionID)
	if err != nil {
		return fmt.Errorf("push source %s: %w", cfg.Source, err)
	}
	defer src.Close()
	log.Info().Str("source", cfg.Source).Msg("session running")

	g, ctx := errgroup.WithContext(ctx)

	if cfg.Metrics.Addr != "" {
		reg := prometheus.NewRegistry()
		if err := metrics.Register(reg, src, st); err != nil {
			return fmt.Errorf("metrics: %w", err)
		}
		serveMetrics(ctx, g, cfg.Metrics.Addr, reg, log)
	}

	if cfg.Influx.Enabled {
		writer := influx.NewWriter(cfg.Influx.URL, cfg.Influx.Token, cfg.Influx.Org, cfg.Influx.Bucket)
		defer writer.Close()
		if err := writer.Health(ctx); err != nil {
			log.Warn().Err(err).Msg("influx not healthy; diagnostics will retry each interval")
		}
		g.Go(func() error {
			return writer.Run(ctx, cfg.Influx.Interval, func() influx.Sample {
				return sample(st, src, cfg, sessionID, time.Now())
			}, func(err error) {
				log.Warn().Err(err).Msg("diagnostics write failed")
			})
		})
	}

	cache := &baseline.Cache{}
	if site := cfg.BaselineSite(); site != "" && cfg.API.BaseURL != "" {
		client := baseline.NewClient(cfg.API.BaseURL, cfg.API.Token, nil)
		g.Go(func() error {
			return baseline.Poll(ctx, client, site, cfg.API.Refresh, cache, logger.WithComponent("baseline"))
		})
	}

	rep := &reporter{log: log}
	g.Go(func() error {
		return view.Refresh(ctx, cfg.View.Tick, func(now time.Time) {
			rep.report(st, view.Fleet(cache.Rows(), st.Keys(), liveOf(st), now, cfg.View.Registers, cfg.View.StaleAfter), now)
		})
	})

	err = g.Wait()
	log.Info().Msg("shutting down")
	return err
}

func serveMetrics(ctx context.Context, g *errgroup.Group, addr string, reg *prometheus.Registry, log zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler(reg))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	g.Go(func() error {
		log.Info().Str("addr", addr).Msg("metrics listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
}

func liveOf(st *store.Store) func(model.Key) view.Live {
	return func(k model.Key) view.Live {
		e, _ := st.Equipment(k)
		return view.Live{Registers: e.Registers, Status: e.Status, LastUpdate: e.LastUpdate}
	}
}

func sample(st *store.Store, src source, cfg *config.Config, sessionID string, now time.Time) influx.Sample {
	fresh := 0
	for _, k := range st.Keys() {
		if last, ok := st.LastUpdate(k); ok && view.Fresh(last, now, cfg.View.StaleAfter) {
			fresh++
		}
	}
	return influx.Sample{
		Session:    sessionID,
		Source:     cfg.Source,
		Connected:  st.Connected(),
		Frames:     src.Frames(),
		Discarded:  src.Discarded(),
		Reconnects: src.Reconnects(),
		Equipment:  st.Len(),
		Fresh:      fresh,
		Drifts:     st.Drifts(),
		Time:       now,
	}
}
