package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/vango-dev/popular/internal/app"
	"github.com/vango-dev/popular/internal/assets"
	"github.com/vango-dev/popular/internal/build"
	"github.com/vango-dev/popular/internal/config"
	"github.com/vango-dev/popular/internal/dev"
	"github.com/vango-dev/popular/internal/github"
	"github.com/vango-dev/popular/internal/server"
	"github.com/vango-dev/popular/pkg/render"
)

func serveCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Long: `Start the HTTP server.

Every path outside /static/, /metrics, /healthz and /_dev/reload is
rendered on the server with its data embedded in the page.

With --dev the client bundle is rebuilt when Go sources change and
connected browsers reload when the bundle changes.

Examples:
  popular serve
  popular serve --port=8080
  popular serve --dev`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(v)
			if err != nil {
				return err
			}
			return runServe(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringP("host", "H", "", "Host to bind to (default from server.host)")
	cmd.Flags().IntP("port", "p", config.DefaultPort, "Port to listen on")
	cmd.Flags().Bool("dev", false, "Rebuild and live reload on change")
	_ = v.BindPFlag("server.host", cmd.Flags().Lookup("host"))
	_ = v.BindPFlag("server.port", cmd.Flags().Lookup("port"))
	_ = v.BindPFlag("dev.enabled", cmd.Flags().Lookup("dev"))

	return cmd
}

func runServe(parent context.Context, cfg *config.Config) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := cfg.NewLogger(os.Stderr)
	slog.SetDefault(logger)

	st, err := assemble(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer st.close()

	if st.watcher != nil {
		if err := st.watcher.Start(); err != nil {
			return err
		}
		go st.loop.Run(ctx)
	}

	logger.Info("listening", "url", cfg.URL(), "dev", cfg.Dev.Enabled)
	return st.server.Run(ctx)
}

// stack is everything serve runs.
type stack struct {
	server  *server.Server
	reload  *dev.ReloadServer
	watcher *dev.Watcher
	loop    *dev.Loop
}

func (s *stack) close() {
	if s.watcher != nil {
		s.watcher.Stop()
	}
	if s.reload != nil {
		s.reload.Close()
	}
}

// assemble wires the server from cfg. In dev mode the client bundle is
// built once up front with plain names, so the page references stay valid
// across rebuilds.
func assemble(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*stack, error) {
	gh := github.NewClient(github.Config{
		BaseURL:   cfg.GitHub.BaseURL,
		Token:     cfg.GitHub.Token,
		UserAgent: "popular/" + version,
		Timeout:   cfg.GitHub.Timeout,
		Logger:    logger,
	})
	page := app.NewPage(app.NewRegistry(gh))

	var builder *build.Builder
	if cfg.Dev.Enabled {
		builder = build.New(cfg, build.Options{SkipServer: true, NoFingerprint: true})
		if _, err := builder.BuildClient(ctx); err != nil {
			logger.Warn("initial client build failed", "error", err)
		}
	}

	origin := staticOrigin(cfg)
	manifest, err := assets.LoadManifest(ctx, origin)
	if err != nil {
		return nil, err
	}
	resolver := assets.NewResolver(manifest, cfg.Static.Prefix)

	doc := render.Document{
		Title:      cfg.Page.Title,
		MountID:    cfg.Page.MountID,
		DataGlobal: cfg.Page.DataGlobal,
		Bundles:    []string{resolver.Asset(cfg.Page.Bundle)},
	}

	opts := server.Options{
		Addr:            cfg.Addr(),
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		Page:            page,
		Table:           app.NewTable(),
		Static: assets.NewHandler(assets.HandlerConfig{
			Origin:  origin,
			Prefix:  cfg.Static.Prefix,
			NoCache: cfg.Dev.Enabled,
			Logger:  logger,
		}),
		StaticPrefix: cfg.Static.Prefix,
		Logger:       logger,
	}
	if cfg.Metrics.Enabled {
		opts.Metrics = server.NewMetrics(cfg.Metrics.Namespace)
		opts.MetricsPath = cfg.Metrics.Path
	}

	st := &stack{}
	if cfg.Dev.Enabled {
		st.reload = dev.NewReloadServer(logger)
		opts.Reload = st.reload
		opts.ReloadPath = dev.ReloadPath
		doc.Scripts = append(doc.Scripts, render.ScriptTag{Inline: dev.ClientScript(dev.ReloadPath)})

		st.watcher, err = dev.NewWatcher(dev.WatcherConfig{
			Paths:     dev.WatchPaths(".", cfg.Build.Output),
			BundleDir: cfg.Build.Output,
		})
		if err != nil {
			st.reload.Close()
			return nil, fmt.Errorf("dev watcher: %w", err)
		}
		st.loop = dev.NewLoop(dev.LoopOptions{
			Changes: st.watcher.Changes,
			Notify:  st.reload,
			Rebuild: func(ctx context.Context) error {
				_, err := builder.BuildClient(ctx)
				return err
			},
			Logger: logger,
		})
	}

	opts.Document = doc
	st.server = server.New(opts)
	return st, nil
}

// staticOrigin serves the bundle from S3 when a bucket is configured and
// from the local directory otherwise. Dev mode always uses the directory
// it builds into.
func staticOrigin(cfg *config.Config) assets.Origin {
	if cfg.Dev.Enabled {
		return assets.NewDirOrigin(cfg.Build.Output)
	}
	if s3cfg := cfg.Static.S3; s3cfg.Bucket != "" {
		client := assets.NewS3Client(assets.S3Config{
			Bucket:    s3cfg.Bucket,
			Region:    s3cfg.Region,
			Endpoint:  s3cfg.Endpoint,
			Prefix:    s3cfg.Prefix,
			PathStyle: s3cfg.PathStyle,
		})
		return assets.NewS3Origin(client, s3cfg.Bucket, s3cfg.Prefix)
	}
	return assets.NewDirOrigin(cfg.Static.Dir)
}
