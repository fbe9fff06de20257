package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sentry-itest/lib/configutil"
	"sentry-itest/lib/restyutil"
	"sentry-itest/lib/scrapers/sentry"
	"sentry-itest/lib/telemetry"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

type Config struct {
	BaseUrl  string `json:"base_url"`
	Username string `json:"username"`
	Password string `json:"password"`
}

var (
	configPath *string
	verbose    *bool
	dumpDir    *string
)

var tel telemetry.Telemetry

var rootCmd = &cobra.Command{
	Use:   "sentry-cli",
	Short: "sentry-cli logs into a sentry dashboard and prints what the integration tests would see.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		telemetry.InitSlog(*verbose)

		var err error
		tel, err = telemetry.SetupFromEnv(cmd.Context(), "sentry-cli")
		if err != nil && !os.IsNotExist(err) {
			return err
		}

		if *dumpDir != "" {
			out, err := restyutil.NewFilesystemOutput(*dumpDir)
			if err != nil {
				return err
			}
			sentry.SetRestyInstrumentOutput(out)
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return tel.Shutdown(context.Background())
	},
}

func init() {
	configPath = rootCmd.PersistentFlags().String("config", "sentry.json5", "The dashboard credentials to use.")
	verbose = rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log every request.")
	dumpDir = rootCmd.PersistentFlags().String(
		"dump", "",
		"Write every request/response pair into this directory (requires -v), '<dev_state>/...' is allowed.",
	)
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// login builds a client from the config file and logs it in.
func login(ctx context.Context) (*sentry.Client, error) {
	cfg, err := configutil.ReadConfigWithDefaults(*configPath, Config{
		BaseUrl:  sentry.DefaultHost,
		Username: "admin",
		Password: "admin",
	})
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	client, err := sentry.NewClient(ctx, sentry.ClientOptions{BaseUrl: cfg.BaseUrl})
	if err != nil {
		return nil, err
	}

	slog.Info("logging in", "host", cfg.BaseUrl, "username", cfg.Username)
	ok, err := client.Login(ctx, cfg.Username, cfg.Password)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("the dashboard rejected the credentials of '%s'", cfg.Username)
	}
	return client, nil
}

func newTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(os.Stdout)
	return t
}
