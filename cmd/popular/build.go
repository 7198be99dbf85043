package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/vango-dev/popular/internal/build"
	"github.com/vango-dev/popular/internal/config"
)

func buildCmd(v *viper.Viper) *cobra.Command {
	var (
		skipServer bool
		clean      bool
	)

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build the client bundle and the server binary",
		Long: `Build both targets for deployment.

This command:
  • Compiles cmd/client with GOOS=js GOARCH=wasm
  • Copies wasm_exec.js from the Go toolchain
  • Writes the fingerprinted loader and manifest.json
  • Compiles the server binary from cmd/popular

Examples:
  popular build
  popular build --output=dist/public
  popular build --skip-server`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(v)
			if err != nil {
				return err
			}
			return runBuild(cmd.Context(), cfg, skipServer, clean)
		},
	}

	cmd.Flags().StringP("output", "o", "", "Bundle output directory (default from build.output)")
	cmd.Flags().String("server-output", "", "Server binary path (default from build.server_output)")
	cmd.Flags().BoolVar(&skipServer, "skip-server", false, "Build only the client bundle")
	cmd.Flags().BoolVar(&clean, "clean", false, "Remove the output directory before building")
	_ = v.BindPFlag("build.output", cmd.Flags().Lookup("output"))
	_ = v.BindPFlag("build.server_output", cmd.Flags().Lookup("server-output"))

	return cmd
}

// progress reports a builder step verbatim; steps may carry file names with '%'.
func progress(step string) {
	info("%s", step)
}

func runBuild(parent context.Context, cfg *config.Config, skipServer, clean bool) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	builder := build.New(cfg, build.Options{
		SkipServer: skipServer,
		Version:    version,
		OnProgress: progress,
	})

	if clean {
		info("Cleaning output directory...")
		if err := builder.Clean(); err != nil {
			return err
		}
	}

	result, err := builder.Build(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintln(stdout)
	success("Build complete in %s", result.Duration.Round(time.Millisecond))
	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, "  Output:")
	fmt.Fprintf(stdout, "    %s/\n", cfg.Build.Output)
	fmt.Fprintf(stdout, "    ├── %s  (%s, %s gzip)\n", result.Manifest[build.WasmName],
		formatBytes(result.WasmSize), formatBytes(result.WasmGzipSize))
	fmt.Fprintf(stdout, "    ├── %s\n", result.Manifest[build.WasmExecName])
	fmt.Fprintf(stdout, "    ├── %s\n", result.Manifest[build.LoaderName])
	fmt.Fprintf(stdout, "    └── manifest.json\n")
	if result.Binary != "" {
		fmt.Fprintf(stdout, "    %s  (%s)\n", result.Binary, formatBytes(result.BinarySize))
	}
	fmt.Fprintln(stdout)

	return nil
}

// formatBytes formats bytes as a human-readable string.
func formatBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(b)/float64(div), "KMGTPE"[exp])
}
