package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/gamebridge/kick-relay/internal/auth"
	"github.com/gamebridge/kick-relay/internal/config"
	"github.com/gamebridge/kick-relay/internal/logger"
	"github.com/gamebridge/kick-relay/internal/server"
	"github.com/gamebridge/kick-relay/internal/upstream"
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "kick-relay",
	Short: "OAuth and asset relay for the browser game client",
	Long: `kick-relay sits between the browser game and the third-party API.
It completes the OAuth authorization-code exchange without exposing the
client secret, resolves user and channel metadata through a fallback list
of upstream endpoints, and relays emote images past CORS restrictions.`,
	RunE: run,
}

func main() {
	Execute()
}

// Execute sets flags appropriately and runs the root command.
func Execute() {
	config.InitFlags()
	rootCmd.Flags().AddFlagSet(pflag.CommandLine)
	rootCmd.Flags().BoolP("version", "v", false, "Show version information")

	// Place version check in PreRun to ensure flags are parsed first
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if versionFlag, _ := cmd.Flags().GetBool("version"); versionFlag {
			cmd.Println(config.GetVersionInfo())
			os.Exit(0)
		}
	}

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if err := logger.InitLogger(&cfg.Logging); err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	if !cfg.OAuth.Configured() {
		logger.Warn("OAuth client credentials are not configured; token exchange will fail until they are set")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var srv *server.Server
	app := fx.New(
		fx.NopLogger,
		fx.Supply(cfg),
		fx.Provide(
			func(c *config.Config) *config.OAuthConfig { return &c.OAuth },
			func(c *config.Config) *config.UpstreamConfig { return &c.Upstream },
		),
		auth.Module,
		upstream.Module,
		server.Module,
		fx.Populate(&srv),
	)
	if err := app.Err(); err != nil {
		logger.Error("Failed to wire dependencies", zap.Error(err))
		return err
	}

	return srv.Start(ctx)
}
