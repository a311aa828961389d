package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/rhuss/azproxy/pkg/config"
	"github.com/rhuss/azproxy/pkg/debug"
	"github.com/rhuss/azproxy/pkg/engine"
	"github.com/rhuss/azproxy/pkg/provider/openaicompat"
	transporthttp "github.com/rhuss/azproxy/pkg/transport/http"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the proxy server",
	Long: `Start the proxy server.

Examples:
  # Start with discovered config
  azproxy serve

  # Override the upstream
  azproxy serve --upstream-host http://vllm --upstream-port 8000

  # Embeddings deployment
  azproxy serve --upstream-type embeddings`,
	RunE: runServe,
}

func init() {
	addServeFlags(serveCmd)
	rootCmd.AddCommand(serveCmd)
}

// addServeFlags registers the config override flags on cmd. Defaults are
// documentation only; unset flags never override lower layers.
func addServeFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("host", "0.0.0.0", "listen host")
	f.Int("port", 80, "listen port")
	f.String("upstream-host", "http://localhost", "upstream host, with or without scheme")
	f.Int("upstream-port", 0, "upstream port (0 keeps the host's port)")
	f.String("upstream-type", config.UpstreamTypeChatCompletions, "upstream type: chat-completions or embeddings")
	f.String("log-level", "INFO", "log level: TRACE, DEBUG, INFO, WARN, ERROR")
}

// overridesFromFlags maps the flags the user actually set.
func overridesFromFlags(f *pflag.FlagSet) (config.Overrides, error) {
	var o config.Overrides
	var err error

	stringFlag := func(name string) *string {
		if err != nil || !f.Changed(name) {
			return nil
		}
		var v string
		v, err = f.GetString(name)
		return &v
	}
	intFlag := func(name string) *int {
		if err != nil || !f.Changed(name) {
			return nil
		}
		var v int
		v, err = f.GetInt(name)
		return &v
	}

	o.Host = stringFlag("host")
	o.Port = intFlag("port")
	o.UpstreamHost = stringFlag("upstream-host")
	o.UpstreamPort = intFlag("upstream-port")
	o.UpstreamType = stringFlag("upstream-type")
	o.LogLevel = stringFlag("log-level")
	return o, err
}

func runServe(cmd *cobra.Command, _ []string) error {
	if err := config.LoadDotenvOnce(); err != nil {
		return err
	}

	overrides, err := overridesFromFlags(cmd.Flags())
	if err != nil {
		return fmt.Errorf("reading flags: %w", err)
	}

	cfg, err := config.Load(cfgFile, overrides)
	if err != nil {
		return err
	}

	debug.Init(cfg.Logging.Debug, cfg.Logging.Level, cfg.Logging.Format)
	debug.Log("config", "configuration loaded",
		"server", cfg.Server.Addr(),
		"upstream_host", cfg.Upstream.Host,
		"upstream_port", cfg.Upstream.Port,
		"upstream_timeout", cfg.Upstream.Timeout,
		"max_body_size", cfg.Server.MaxBodySize,
	)

	baseURL, err := cfg.Upstream.BaseURL()
	if err != nil {
		return fmt.Errorf("upstream: %w", err)
	}

	client := openaicompat.NewClient(baseURL, cfg.Upstream.APIKey, cfg.Upstream.Timeout)
	defer client.Close()

	eng, err := engine.New(client, engine.Config{
		ModelType: cfg.Upstream.ModelType(),
	})
	if err != nil {
		return fmt.Errorf("creating engine: %w", err)
	}

	metricsPath := ""
	if cfg.Observability.Metrics.Enabled {
		metricsPath = cfg.Observability.Metrics.Path
	}

	srv := transporthttp.NewServer(eng,
		transporthttp.WithAddr(cfg.Server.Addr()),
		transporthttp.WithMaxBodySize(cfg.Server.MaxBodySize),
		transporthttp.WithReadTimeout(cfg.Server.ReadTimeout),
		transporthttp.WithWriteTimeout(cfg.Server.WriteTimeout),
		transporthttp.WithShutdownTimeout(cfg.Server.ShutdownTimeout),
		transporthttp.WithMetricsPath(metricsPath),
		transporthttp.WithLogger(slog.Default()),
	)

	slog.Info("proxy configured",
		"listen", cfg.Server.Addr(),
		"upstream", baseURL.String(),
		"upstream_type", cfg.Upstream.Type,
		"api_key", cfg.Upstream.APIKey != "",
		"metrics", metricsPath,
		"debug_categories", debug.Categories(),
	)

	return srv.ListenAndServe()
}
