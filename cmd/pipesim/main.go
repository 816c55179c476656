package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	gracefully "github.com/tj/go-gracefully"
	"github.com/travisjeffery/pipesim/log"
	"github.com/travisjeffery/pipesim/prometheus"
	"github.com/travisjeffery/pipesim/simulate"
	"github.com/travisjeffery/pipesim/simulate/config"
	"github.com/uber/jaeger-lib/metrics"

	"github.com/uber/jaeger-client-go"
	jaegercfg "github.com/uber/jaeger-client-go/config"
	jaegerlog "github.com/uber/jaeger-client-go/log"
)

var cli = &cobra.Command{
	Use:   "pipesim",
	Short: "Simulate ingest pipelines over a binary protocol",
}

func init() {
	serverCmd := &cobra.Command{Use: "server", Short: "Run a pipesim server", Run: runServer}
	serverCmd.Flags().String("addr", config.DefaultAddr, "Address for the server to bind on")
	serverCmd.Flags().String("http-addr", config.DefaultHTTPAddr, "Address to serve /metrics on, empty to disable")
	serverCmd.Flags().Int32("max-request-size", config.DefaultMaxRequestSize, "Largest request frame accepted, in bytes, 0 for the protocol maximum")
	serverCmd.Flags().Duration("idle-timeout", 5*time.Minute, "Close connections idle for this long, 0 to never")
	serverCmd.Flags().Bool("debug", false, "Human readable debug logs")

	cli.AddCommand(serverCmd)

	//add client commands
	for _, ccmd := range clientCmds() {
		cli.AddCommand(ccmd)
	}
}

// bindEnv returns a viper instance over flags, each of which can be overridden
// by PIPESIM_<FLAG> with dashes as underscores.
func bindEnv(flags *pflag.FlagSet) *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("pipesim")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(flags); err != nil {
		fmt.Fprintf(os.Stderr, "error binding flags: %v\n", err)
		os.Exit(1)
	}
	return v
}

func runServer(cmd *cobra.Command, args []string) {
	v := bindEnv(cmd.Flags())

	serverCfg := config.DefaultServerConfig()
	serverCfg.Addr = v.GetString("addr")
	serverCfg.HTTPAddr = v.GetString("http-addr")
	serverCfg.MaxRequestSize = v.GetInt32("max-request-size")
	serverCfg.IdleTimeout = v.GetDuration("idle-timeout")

	logger := log.NewProduction()
	if v.GetBool("debug") {
		logger = log.New()
	}
	defer logger.Sync()
	logger = logger.With(
		log.String("addr", serverCfg.Addr),
		log.String("http addr", serverCfg.HTTPAddr),
	)

	cfg := jaegercfg.Configuration{
		Sampler: &jaegercfg.SamplerConfig{
			Type:  jaeger.SamplerTypeConst,
			Param: 1,
		},
		Reporter: &jaegercfg.ReporterConfig{
			LogSpans: true,
		},
	}

	jLogger := jaegerlog.StdLogger
	jMetricsFactory := metrics.NullFactory

	tracer, closer, err := cfg.New(
		"pipesim",
		jaegercfg.Logger(jLogger),
		jaegercfg.Metrics(jMetricsFactory),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error creating tracer: %v\n", err)
		os.Exit(1)
	}

	handler := simulate.NewHandler(simulate.IdentitySimulator{}, prometheus.NewMetrics(), tracer, logger)
	srv := simulate.NewServer(serverCfg, handler, tracer, closer.Close, logger)
	if err := srv.Start(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "error starting server: %v\n", err)
		os.Exit(1)
	}

	var httpSrv *http.Server
	if serverCfg.HTTPAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		httpSrv = &http.Server{Addr: serverCfg.HTTPAddr, Handler: mux}
		go func() {
			if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("metrics server failed", log.Error("error", err))
			}
		}()
	}

	gracefully.Timeout = 10 * time.Second
	gracefully.Shutdown()

	if httpSrv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), gracefully.Timeout)
		httpSrv.Shutdown(ctx)
		cancel()
	}
	if err := srv.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "error shutting down server: %v\n", err)
		os.Exit(1)
	}
	srv.Wait()
}

func main() {
	cli.Execute()
}
