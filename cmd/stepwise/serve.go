package main

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aretw0/stepwise"
	"github.com/aretw0/stepwise/internal/presentation/tui"
	httpadapter "github.com/aretw0/stepwise/pkg/adapters/http"
	"github.com/aretw0/stepwise/pkg/adapters/memory"
	redisadapter "github.com/aretw0/stepwise/pkg/adapters/redis"
	"github.com/aretw0/stepwise/pkg/observability"
	"github.com/aretw0/stepwise/pkg/persistence/middleware"
	"github.com/aretw0/stepwise/pkg/pipeline"
	"github.com/aretw0/stepwise/pkg/ports"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve <pipeline.yaml>",
		Short: "Serve a pipeline over HTTP",
		Long:  `Exposes recipes, the Mermaid graph, runs and stored reports as a JSON API. Reports are kept in memory unless a Redis address is given.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, _ := cmd.Flags().GetString("addr")
			redisAddr, _ := cmd.Flags().GetString("redis-addr")
			redisPassword, _ := cmd.Flags().GetString("redis-password")
			redisDB, _ := cmd.Flags().GetInt("redis-db")
			reportTTL, _ := cmd.Flags().GetDuration("report-ttl")
			quiet, _ := cmd.Flags().GetBool("quiet")

			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector())
			metrics, err := observability.NewMetrics(reg, "stepwise")
			if err != nil {
				return err
			}

			mws, err := storeMiddlewares(cmd)
			if err != nil {
				return err
			}

			var (
				store  ports.ReportStore
				locker ports.DistributedLocker
			)
			if redisAddr != "" {
				client := goredis.NewClient(&goredis.Options{Addr: redisAddr, Password: redisPassword, DB: redisDB})
				defer client.Close()
				store = redisadapter.NewFromClient(client, redisadapter.WithTTL(reportTTL))
				locker = redisadapter.NewLocker(client, "stepwise:")
			} else {
				store = memory.NewStore()
				locker = memory.NewLocker()
			}

			opts := []stepwise.Option{
				stepwise.WithLifecycleHooks(metrics.Hooks().Merge(observability.LoggingHooks(a.logger))),
				stepwise.WithReportStore(middleware.Chain(store, mws...)),
				stepwise.WithLocker(locker, stepwise.DefaultLockTTL),
			}

			p, s, err := a.load(args[0], opts...)
			if err != nil {
				return err
			}

			handler := httpadapter.NewHandler(s,
				httpadapter.WithLogger(a.logger),
				httpadapter.WithMetricsHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})),
				httpadapter.WithInputDecoder(func(raw map[string]any) (map[string]any, error) {
					decoded, err := pipeline.DecodeInputs(p.Steps, raw)
					if err != nil {
						return nil, err
					}
					return merge(p.Inputs, decoded), nil
				}),
			)
			srv := &http.Server{
				Addr:              addr,
				Handler:           handler,
				ReadHeaderTimeout: 10 * time.Second,
			}

			out := cmd.OutOrStdout()
			if !quiet && tui.IsTerminal(os.Stdout) {
				tui.PrintBanner(out)
			}

			serverErrors := make(chan error, 1)
			go func() {
				fmt.Fprintf(out, "Serving %s on %s\n", displayName(p.Name, args[0]), addr)
				serverErrors <- srv.ListenAndServe()
			}()

			shutdown := make(chan os.Signal, 1)
			signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
			defer signal.Stop(shutdown)

			select {
			case err := <-serverErrors:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case sig := <-shutdown:
				a.logger.Info("shutting down", "signal", sig.String())
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := srv.Shutdown(ctx); err != nil {
					_ = srv.Close()
					return fmt.Errorf("graceful shutdown did not complete: %w", err)
				}
				fmt.Fprintln(out, "stopped")
				return nil
			}
		},
	}
	cmd.Flags().String("addr", ":8080", "Address to listen on")
	cmd.Flags().String("redis-addr", "", "Redis address for reports and run locks")
	cmd.Flags().String("redis-password", "", "Redis password")
	cmd.Flags().Int("redis-db", 0, "Redis database")
	cmd.Flags().Duration("report-ttl", 24*time.Hour, "How long Redis keeps reports (0 keeps them forever)")
	cmd.Flags().Bool("quiet", false, "Skip the banner")
	cmd.Flags().StringSlice("redact", nil, "Regexps of step names or result types whose stored values are masked")
	cmd.Flags().String("encryption-key", "", "Hex encoded AES-256 key sealing stored reports (or STEPWISE_ENCRYPTION_KEY)")
	return cmd
}

func storeMiddlewares(cmd *cobra.Command) ([]middleware.Middleware, error) {
	var mws []middleware.Middleware

	if patterns, _ := cmd.Flags().GetStringSlice("redact"); len(patterns) > 0 {
		mw, err := middleware.NewRedactionMiddleware(patterns)
		if err != nil {
			return nil, fmt.Errorf("redact: %w", err)
		}
		mws = append(mws, mw)
	}

	keyHex, _ := cmd.Flags().GetString("encryption-key")
	if keyHex == "" {
		keyHex = os.Getenv("STEPWISE_ENCRYPTION_KEY")
	}
	if keyHex != "" {
		key, err := hex.DecodeString(keyHex)
		if err != nil {
			return nil, fmt.Errorf("encryption key: %w", err)
		}
		mw, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key})
		if err != nil {
			return nil, fmt.Errorf("encryption key: %w", err)
		}
		mws = append(mws, mw)
	}
	return mws, nil
}
