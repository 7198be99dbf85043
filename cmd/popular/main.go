// Command popular serves and builds the popular repositories browser.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/vango-dev/popular/internal/config"
	"github.com/vango-dev/popular/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// stdout receives the human-readable progress lines.
var stdout io.Writer = os.Stdout

func main() {
	if err := newRootCmd(viper.New()).Execute(); err != nil {
		errors.Fprint(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(v *viper.Viper) *cobra.Command {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "popular",
		Short: "Browse the most-starred GitHub repositories by language",
		Long: `popular renders a small repository browser on the server, embeds
the data it fetched into the page and hands off to a Go WebAssembly
client that takes over navigation.

Configuration is read from popular.yaml in the working directory
(or --config) and POPULAR_* environment variables.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return config.Init(v, cfgFile)
		},
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default ./popular.yaml)")

	rootCmd.AddCommand(
		serveCmd(v),
		buildCmd(v),
		versionCmd(),
	)
	return rootCmd
}

// success prints a success message.
func success(format string, args ...any) {
	fmt.Fprintf(stdout, "\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(format string, args ...any) {
	fmt.Fprintf(stdout, "  %s\n", fmt.Sprintf(format, args...))
}
