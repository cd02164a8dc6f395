// cryptodetails looks up a cryptocurrency by symbol and shows its latest
// market quote, either once from the terminal or through an HTTP API.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/seenimoa/cryptodetails/api"
	"github.com/seenimoa/cryptodetails/internal/config"
	"github.com/seenimoa/cryptodetails/internal/logging"
	"github.com/seenimoa/cryptodetails/internal/lookup"
	"github.com/seenimoa/cryptodetails/internal/metrics"
	"github.com/seenimoa/cryptodetails/internal/provider"
	"github.com/seenimoa/cryptodetails/internal/providers"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Global config and logger, set in PersistentPreRunE.
var (
	cfg    *config.Config
	logger zerolog.Logger
)

var errNoProvider = errors.New("no market-data provider configured: set CRYPTODETAILS_PROVIDER_API_KEY or CMC_API_KEY")

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "cryptodetails",
	Short:         "Look up cryptocurrency quotes by symbol",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		configFile, _ := cmd.Flags().GetString("config")
		if configFile != "" {
			cfg, err = config.LoadFromFile(configFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
			cfg.Logging.Level = lvl
		}
		logger, err = logging.Setup(cfg.Logging)
		return err
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")

	lookupCmd.Flags().Bool("json", false, "print the result as JSON")
	lookupCmd.Flags().String("convert", "", "reference currency (default from config)")
	serveCmd.Flags().Int("port", 0, "listen port (default from config)")
	statusCmd.Flags().Bool("ping", false, "check connectivity to each provider")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(lookupCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(statusCmd)
}

// newRegistry registers every provider the loaded config enables.
func newRegistry() (*provider.Registry, error) {
	reg := provider.NewRegistry()
	if err := providers.RegisterAllTo(reg, cfg); err != nil {
		return nil, fmt.Errorf("register providers: %w", err)
	}
	return reg, nil
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("cryptodetails %s\n", version)
		fmt.Printf("  commit:  %s\n", commit)
		fmt.Printf("  built:   %s\n", date)
	},
}

// --- Lookup Command ---

var lookupCmd = &cobra.Command{
	Use:   "lookup [symbol]",
	Short: "Fetch the latest quote for a symbol",
	Long:  "Resolve a ticker symbol (e.g. BTC) to its provider identifier and print the latest quote.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")
		convert, _ := cmd.Flags().GetString("convert")
		if convert == "" {
			convert = cfg.Provider.Convert
		}

		reg, err := newRegistry()
		if err != nil {
			return err
		}
		if len(reg.List()) == 0 {
			return errNoProvider
		}

		flow := lookup.NewFlow(
			lookup.NewRegistrySource(reg, lookup.WithConvert(convert)),
			lookup.WithLogger(logger),
		)
		if !asJSON {
			unsub := flow.Subscribe(func(st lookup.State) {
				if st.Loading() {
					renderState(cmd.ErrOrStderr(), st)
				}
			})
			defer unsub()
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		st, err := flow.Submit(ctx, args[0])
		if err != nil {
			var le *lookup.Error
			if errors.As(err, &le) {
				return errors.New(le.Message())
			}
			return err
		}

		if asJSON {
			if err := renderJSON(cmd.OutOrStdout(), st); err != nil {
				return err
			}
		} else if st.Phase() == lookup.PhaseLoaded {
			renderState(cmd.OutOrStdout(), st)
		}

		if st.Phase() == lookup.PhaseFailed {
			return errors.New(st.Message())
		}
		return nil
	},
}

// --- Serve Command ---

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		if port, _ := cmd.Flags().GetInt("port"); port > 0 {
			cfg.API.Port = port
		}

		reg, err := newRegistry()
		if err != nil {
			return err
		}
		if len(reg.List()) == 0 {
			logger.Warn().Err(errNoProvider).Msg("starting without a provider; every lookup will fail")
		}

		m := metrics.New("")
		flow := lookup.NewFlow(
			lookup.NewRegistrySource(reg, lookup.WithConvert(cfg.Provider.Convert)),
			lookup.WithLogger(logger.With().Str("component", "lookup").Logger()),
			lookup.WithRecorder(m),
		)
		srv := api.NewServer(cfg, flow, reg,
			api.WithMetrics(m),
			api.WithLogger(logger.With().Str("component", "api").Logger()),
			api.WithVersion(version),
		)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return srv.ListenAndServe(ctx, cfg.API.Addr())
	},
}

// --- Status Command ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show configuration and provider status",
	RunE: func(cmd *cobra.Command, args []string) error {
		ping, _ := cmd.Flags().GetBool("ping")

		fmt.Println("═══════════════════════════════════════")
		fmt.Println("  cryptodetails status")
		fmt.Println("═══════════════════════════════════════")
		fmt.Printf("  Version:       %s (%s)\n", version, commit)
		fmt.Printf("  Time (UTC):    %s\n", time.Now().UTC().Format(time.RFC3339))
		fmt.Println()

		fmt.Println("  Configuration:")
		fmt.Printf("    Provider:      %s (%s)\n", cfg.Provider.Name, cfg.Provider.BaseURL)
		fmt.Printf("    Currency:      %s\n", cfg.Provider.Convert)
		fmt.Printf("    Timeout:       %s\n", cfg.Provider.Timeout())
		fmt.Printf("    API Server:    %s\n", cfg.API.Addr())
		fmt.Println()

		fmt.Println("  API Keys:")
		for _, k := range config.CheckAPIKeys(cfg) {
			status := "not set"
			if k.IsSet {
				status = fmt.Sprintf("set (%s: %s)", k.Source, k.Masked)
			}
			fmt.Printf("    %-25s %s\n", k.Name+":", status)
		}
		fmt.Println()

		reg, err := newRegistry()
		if err != nil {
			return err
		}
		fmt.Println("  Providers:")
		infos := reg.List()
		if len(infos) == 0 {
			fmt.Println("    (none registered)")
		}
		for _, info := range infos {
			line := fmt.Sprintf("    %-25s %v", info.Name, info.Models)
			if ping {
				p, _ := reg.Get(info.Name)
				ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Provider.Timeout())
				if err := p.Ping(ctx); err != nil {
					line += "  unreachable: " + err.Error()
				} else {
					line += "  ok"
				}
				cancel()
			}
			fmt.Println(line)
		}

		fmt.Println("═══════════════════════════════════════")
		return nil
	},
}
