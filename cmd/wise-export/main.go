// Command wise-export writes the activity feed of a Wise profile to stdout
// as JSON lines, one activity per line.
//
// Configuration comes from flags, WISE_* environment variables or a config
// file. With a Redis URL the export is resumable: an interrupted run picks
// up at the last completed page.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Sternrassler/wise-api-client/pkg/checkpoint"
	"github.com/Sternrassler/wise-api-client/pkg/client"
	"github.com/Sternrassler/wise-api-client/pkg/logging"
	"github.com/Sternrassler/wise-api-client/pkg/metrics"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(os.Args[1:])
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "wise-export: %v\n", err)
		os.Exit(2)
	}

	logging.Setup(logging.Config{
		Level:  logging.LogLevel(cfg.LogLevel),
		Pretty: cfg.LogPretty,
		Output: os.Stderr,
	})

	if err := run(ctx, cfg, os.Stdout); err != nil {
		log.Error().Err(err).Msg("Export failed")
		os.Exit(1)
	}
}

// run performs one export. Extra client options are appended after the
// configured ones.
func run(ctx context.Context, cfg exportConfig, out io.Writer, opts ...client.Option) error {
	runID := uuid.NewString()
	logger := logging.NewLogger("wise-export").With().
		Str("run_id", runID).
		Str("profile_id", cfg.ProfileID).
		Logger()

	clientCfg, err := cfg.clientConfig()
	if err != nil {
		return err
	}

	wise, err := client.New(clientCfg, append([]client.Option{client.WithLogger(logger)}, opts...)...)
	if err != nil {
		return fmt.Errorf("create client: %w", err)
	}
	defer wise.Close()

	exp := &exporter{
		client: wise,
		out:    out,
		runID:  runID,
		logger: logger,
	}

	if cfg.RedisURL != "" {
		redisClient, err := connectRedis(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer redisClient.Close()
		exp.store = checkpoint.NewStore(redisClient, cfg.CheckpointTTL)
	}

	if cfg.MetricsAddr != "" {
		srv := newMetricsServer(cfg.MetricsAddr)
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error().Err(err).Msg("Metrics server failed")
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()
		logger.Info().Str("addr", cfg.MetricsAddr).Msg("Serving metrics")
	}

	logger.Info().
		Str("base_url", clientCfg.BaseURL()).
		Msg("Export started")

	res, err := exp.Run(ctx, client.ID(cfg.ProfileID), cfg.filters())
	if err != nil {
		logger.Error().Err(err).Int("exported", res.Exported).Msg("Export aborted")
		return err
	}

	logger.Info().
		Int("exported", res.Exported).
		Bool("resumed", res.Resumed).
		Msg("Export finished")
	return nil
}

func connectRedis(ctx context.Context, rawURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	redisClient := redis.NewClient(opts)
	if err := redisClient.Ping(ctx).Err(); err != nil {
		redisClient.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return redisClient, nil
}

func newMetricsServer(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthHandler)
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.Gatherer, promhttp.HandlerOpts{}))
	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "OK")
}
