package cli

import (
	"fmt"
	"os"

	"time_dividends/internal/app/bootstrap"
	"time_dividends/internal/infrastructure/configloader"
	"time_dividends/internal/pkg/logger"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var (
	cfgFile   string
	logLevel  string
	devLogs   bool
	jsonOut   bool
	cfg       *configloader.Config
	zapLogger *zap.Logger
	version   = "dev"
)

var rootCmd = &cobra.Command{
	Use:   "dividends",
	Short: "TIME token dividends service",
	Long: `dividends reads TIME dividend positions across EVM networks and
claims or sweeps them with the configured signer.

Run "dividends serve" for the HTTP API used by the browser frontend.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "version" {
			return nil
		}

		var err error
		cfg, err = configloader.LoadOrDefault(configloader.ResolvePath(cfgFile))
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if logLevel != "" {
			cfg.Logging.Level = logLevel
		}
		zapLogger, err = logger.Init(cfg.Logging.Level, devLogs)
		if err != nil {
			return fmt.Errorf("failed to init logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if zapLogger != nil {
			_ = zapLogger.Sync()
		}
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("dividends %s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (default $CONFIG_PATH or config/config.yml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVar(&devLogs, "dev-logs", false, "human readable development logs")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "print results as JSON")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(networksCmd)
	rootCmd.AddCommand(balanceCmd)
	rootCmd.AddCommand(dividendsCmd)
	rootCmd.AddCommand(claimCmd)
	rootCmd.AddCommand(sweepCmd)
	rootCmd.AddCommand(estimateCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(versionCmd)
}

func SetVersion(v string) {
	version = v
}

func Execute() error {
	return rootCmd.Execute()
}

func Root() *cobra.Command {
	return rootCmd
}

// newContainer builds the service container for one command run.
func newContainer(cmd *cobra.Command) (*bootstrap.Container, error) {
	c, err := bootstrap.New(cmd.Context(), cfg, zapLogger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}
	return c, nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
