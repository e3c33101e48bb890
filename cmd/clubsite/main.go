// Command clubsite serves the club website.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/eringen/clubsite"
)

// version is set at build time via ldflags.
var version = "dev"

// configFile is set by the --config flag.
var configFile string

const shutdownTimeout = 10 * time.Second

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "clubsite",
	Short: "Athletics club website backed by a Strapi CMS",
	Long: `clubsite renders the club's public website. News, meet results,
archive links and homepage settings are read from the CMS on every request.

Running clubsite without a subcommand starts the server.`,
	SilenceUsage: true,
	RunE:         runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration as YAML",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(configFile, cmd.Flags())
		if err != nil {
			return err
		}
		cfg.SetDefaults()
		out, err := yaml.Marshal(toFileConfig(cfg))
		if err != nil {
			return fmt.Errorf("encode config: %w", err)
		}
		_, err = cmd.OutOrStdout().Write(out)
		return err
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the clubsite version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), "clubsite", version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default: ./clubsite.yaml)")
	rootCmd.PersistentFlags().String("addr", "", "listen address (default :3000)")
	rootCmd.PersistentFlags().String("cms-url", "", "Strapi origin, without /api")
	rootCmd.PersistentFlags().String("log-level", "", "debug, info, warn or error")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(configFile, cmd.Flags())
	if err != nil {
		return err
	}
	app, err := clubsite.New(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() { errc <- app.Start() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	app.Logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return app.Shutdown(shutdownCtx)
}
