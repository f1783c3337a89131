// newsvani fetches company news, scores its sentiment, and reads out a
// Hindi summary.
//
// Main CLI entrypoint using cobra command framework.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/seenimoa/newsvani/api"
	"github.com/seenimoa/newsvani/internal/config"
	"github.com/seenimoa/newsvani/internal/datasource"
	"github.com/seenimoa/newsvani/internal/infra"
	"github.com/seenimoa/newsvani/internal/pipeline"
	"github.com/seenimoa/newsvani/pkg/utils"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Global config and logger, set by the root command.
var (
	cfg    *config.Config
	logger *slog.Logger
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "newsvani",
	Short: "newsvani: company news sentiment with a Hindi audio summary",
	Long: `newsvani scrapes recent news about a company, classifies the sentiment
of every article, reports the overall trend and trending words, and produces
a spoken Hindi summary.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.LoadDotEnv(); err != nil {
			return err
		}

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
		logger = infra.NewLogger(os.Stderr, cfg.Logging.Level, cfg.Logging.Format)
		slog.SetDefault(logger)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(statusCmd)
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("newsvani %s\n", version)
		fmt.Printf("  commit:  %s\n", commit)
		fmt.Printf("  built:   %s\n", date)
	},
}

// --- Analyze Command ---

var analyzeCmd = &cobra.Command{
	Use:   "analyze [company]",
	Short: "Analyze news sentiment for a company",
	Long: `Fetch the latest news for a company, print the sentiment summary,
trending words and article details, then generate the Hindi audio summary.
Prompts for the company name when none is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		company := strings.Join(args, " ")
		if company == "" {
			var err error
			company, err = promptCompany(cmd.InOrStdin(), cmd.OutOrStdout())
			if err != nil {
				return err
			}
		}
		company = utils.NormalizeCompany(company)
		if company == "" {
			return errors.New("company name is required")
		}

		if n, _ := cmd.Flags().GetInt("articles"); n > 0 {
			cfg.Fetch.NumArticles = n
		}
		p, err := pipeline.FromConfig(ctx, cfg, logger, nil)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		report, err := p.Analyze(ctx, company)
		if err != nil {
			if errors.Is(err, datasource.ErrFetchUnavailable) {
				fmt.Fprintln(out, "\n❌ Error: Failed to fetch news. Please check your internet connection or try again.")
			}
			return err
		}
		printReport(out, report)

		if skip, _ := cmd.Flags().GetBool("no-audio"); skip {
			return nil
		}
		path, _ := cmd.Flags().GetString("output")
		if path == "" {
			path = cfg.Speech.OutputPath()
		}
		fmt.Fprintln(out, "\n🔹 Generating Hindi News Summary... 🎙")
		if err := p.Speak(ctx, report, path); err != nil {
			fmt.Fprintf(out, "❌ Error in generating Hindi summary: %v\n", err)
			return nil
		}
		fmt.Fprintf(out, "✅ Hindi audio saved to %s\n", path)
		return nil
	},
}

func init() {
	analyzeCmd.Flags().Int("articles", 0, "number of articles to fetch (default from config)")
	analyzeCmd.Flags().StringP("output", "o", "", "audio output path (default from config)")
	analyzeCmd.Flags().Bool("no-audio", false, "skip the Hindi audio summary")
}

// promptCompany asks for a company name on in.
func promptCompany(in io.Reader, out io.Writer) (string, error) {
	fmt.Fprint(out, "Enter company name: ")
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read company name: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// --- Serve Command (API Server) ---

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server with the web form",
	RunE: func(cmd *cobra.Command, args []string) error {
		if port, _ := cmd.Flags().GetInt("port"); port > 0 {
			cfg.API.Port = port
		}
		api.Version = version

		srv, err := api.NewServer(context.Background(), cfg, logger)
		if err != nil {
			return err
		}
		if noUI, _ := cmd.Flags().GetBool("no-ui"); noUI {
			srv.SetServeUI(false)
		}
		fmt.Printf("🌐 Starting newsvani on %s\n", cfg.API.Addr())
		return srv.ListenAndServe(cfg.API.Addr())
	},
}

func init() {
	serveCmd.Flags().Int("port", 0, "port to listen on (default from config)")
	serveCmd.Flags().Bool("no-ui", false, "serve only the JSON API")
}

// --- Status Command ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show configuration and API key status",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("═══════════════════════════════════════")
		fmt.Println("  newsvani · System Status")
		fmt.Println("═══════════════════════════════════════")
		fmt.Printf("  Version:       %s (%s)\n", version, commit)
		fmt.Printf("  Time (IST):    %s\n", utils.FormatDateTimeIST(utils.NowIST()))
		fmt.Printf("  Config file:   %s\n", config.ConfigFilePath())
		fmt.Println()

		fmt.Println("  Configuration:")
		fmt.Printf("    News source:   %s (%d articles, cache %ds)\n", cfg.Fetch.Provider, cfg.Fetch.NumArticles, cfg.Fetch.CacheTTL)
		fmt.Printf("    Translator:    %s → %s\n", cfg.Speech.Translator, cfg.Speech.Language)
		fmt.Printf("    Audio output:  %s\n", cfg.Speech.OutputPath())
		fmt.Printf("    API Server:    %s\n", cfg.API.Addr())
		fmt.Println()

		fmt.Println("  API Keys:")
		for _, k := range config.CheckAPIKeys(cfg) {
			status := "❌ not set"
			if k.IsSet {
				status = fmt.Sprintf("✅ set (%s: %s)", k.Source, k.Masked)
			}
			if k.Required && !k.IsSet {
				status += " (required)"
			}
			fmt.Printf("    %-25s %s\n", k.Name+":", status)
		}

		fmt.Println("═══════════════════════════════════════")
		return nil
	},
}
