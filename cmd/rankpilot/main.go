package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rankpilot/rankpilot/internal/config"
	"github.com/rankpilot/rankpilot/internal/logging"
	"github.com/rankpilot/rankpilot/internal/models"
	"github.com/rankpilot/rankpilot/pkg/content"
	"github.com/rankpilot/rankpilot/pkg/discovery"
	"github.com/rankpilot/rankpilot/pkg/health"
	"github.com/rankpilot/rankpilot/pkg/keywords"
	"github.com/rankpilot/rankpilot/pkg/metadata"
	"github.com/rankpilot/rankpilot/pkg/optimizer"
	"github.com/rankpilot/rankpilot/pkg/orchestrator"
	"github.com/rankpilot/rankpilot/pkg/reporter"
	"github.com/rankpilot/rankpilot/pkg/submitter"
	"github.com/rankpilot/rankpilot/pkg/trust"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "rankpilot",
	Short: "RankPilot - search visibility pipeline",
	Long: `RankPilot scores pages against target keyword sets, generates page
metadata and structured markup, pushes updated URLs to index endpoints
and audits the site's indexing and technical health.`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
}

// app bundles the wired components. Everything is constructed once here
// and injected; no package holds global state.
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	catalog keywords.Catalog
	client  *submitter.Client
	monitor *health.Monitor
	orch    *orchestrator.Orchestrator
	report  *reporter.Reporter
}

// buildApp is the composition root.
func buildApp(cmd *cobra.Command) (*app, error) {
	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return nil, err
	}

	var catalog keywords.Catalog
	if cfg.Site.KeywordFile != "" {
		fc, err := keywords.LoadFile(cfg.Site.KeywordFile)
		if err != nil {
			return nil, err
		}
		catalog = fc
	} else {
		catalog = keywords.Static{}
	}

	var pages []models.Page
	if cfg.Site.PagesFile != "" {
		pages, err = orchestrator.LoadPages(cfg.Site.PagesFile)
		if err != nil {
			return nil, err
		}
	}

	signals := trustSignals(cfg.Trust)
	scorer := content.NewScorer(logger)
	trustScorer := trust.NewScorer()
	builder := metadata.NewBuilder(cfg.Site.Name, cfg.Site.BaseURL, logger)
	fetcher := optimizer.NewHTTPFetcher(cfg.Submitter.Timeout, cfg.Submitter.UserAgent)
	opt := optimizer.New(scorer, trustScorer, builder, fetcher, signals, logger)

	client := submitter.NewClient(cfg.Submitter, logger)

	var monitorOpts []health.Option
	if cfg.Monitor.AlertWebhook != "" {
		monitorOpts = append(monitorOpts, health.WithNotifier(health.NewWebhookNotifier(cfg.Monitor.AlertWebhook)))
	}
	monitor := health.NewMonitor(cfg.Monitor, cfg.Submitter.Engines, logger, monitorOpts...)

	orch := orchestrator.New(cfg.Orchestrator, cfg.Site, opt, client, catalog, pages, logger)

	return &app{
		cfg:     cfg,
		logger:  logger,
		catalog: catalog,
		client:  client,
		monitor: monitor,
		orch:    orch,
		report:  reporter.New(),
	}, nil
}

func trustSignals(tc config.TrustConfig) trust.Signals {
	return trust.Signals{
		AuthorBylines:      tc.AuthorBylines,
		AuthorCredentials:  tc.AuthorCredentials,
		ExpertReview:       tc.ExpertReview,
		OriginalResearch:   tc.OriginalResearch,
		YearsInBusiness:    tc.YearsInBusiness,
		ReferringDomains:   tc.ReferringDomains,
		BrandMentions:      tc.BrandMentions,
		IndustryAwards:     tc.IndustryAwards,
		MediaCitations:     tc.MediaCitations,
		SocialFollowing:    tc.SocialFollowing,
		HTTPS:              tc.HTTPS,
		ReviewRating:       tc.ReviewRating,
		PrivacyPolicy:      tc.PrivacyPolicy,
		ContactInfo:        tc.ContactInfo,
		SecurePayment:      tc.SecurePayment,
		TransparentPricing: tc.TransparentPricing,
	}
}

// signalContext cancels on SIGINT/SIGTERM so in-flight requests abort
// cleanly and already-produced results are retained.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

var optimizeCmd = &cobra.Command{
	Use:   "optimize [URL]",
	Short: "Optimize a single page and print the result",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp(cmd)
		if err != nil {
			return err
		}
		defer a.logger.Sync()

		pageType, _ := cmd.Flags().GetString("type")
		location, _ := cmd.Flags().GetString("location")

		ctx, cancel := signalContext()
		defer cancel()

		result := a.orch.OptimizePage(ctx, args[0], pageType, location)
		rendered, err := a.report.RenderPage(result)
		if err != nil {
			return err
		}
		fmt.Println(rendered)
		return nil
	},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full optimization and submission pipeline",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp(cmd)
		if err != nil {
			return err
		}
		defer a.logger.Sync()

		output, _ := cmd.Flags().GetString("output")

		ctx, cancel := signalContext()
		defer cancel()

		report := a.orch.GenerateOrchestrationReport(ctx)
		rendered, err := a.report.RenderOrchestration(report)
		if err != nil {
			return err
		}
		return a.report.Write(rendered, output)
	},
}

var submitCmd = &cobra.Command{
	Use:   "submit [URL...]",
	Short: "Submit URLs to all configured index endpoints",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp(cmd)
		if err != nil {
			return err
		}
		defer a.logger.Sync()

		ctx, cancel := signalContext()
		defer cancel()

		urls := args
		if fromSitemap, _ := cmd.Flags().GetBool("from-sitemap"); fromSitemap {
			d := discovery.NewSitemapDiscoverer(a.cfg.Monitor.ProbeTimeout, a.logger)
			discovered, err := d.Discover(ctx, a.cfg.Site.BaseURL)
			if err != nil {
				return fmt.Errorf("sitemap discovery failed: %w", err)
			}
			urls = append(urls, discovered...)
		}

		results, err := a.client.SubmitToAllEngines(ctx, urls, a.cfg.Site.Host, a.cfg.Site.IndexKey)
		if err != nil {
			return fmt.Errorf("submission failed: %w", err)
		}

		rendered, err := a.report.RenderSubmission(submitter.GenerateReport(results))
		if err != nil {
			return err
		}
		fmt.Println(rendered)
		return nil
	},
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Run a site health check",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp(cmd)
		if err != nil {
			return err
		}
		defer a.logger.Sync()

		watch, _ := cmd.Flags().GetBool("watch")
		output, _ := cmd.Flags().GetString("output")

		ctx, cancel := signalContext()
		defer cancel()

		if watch {
			a.monitor.Run(ctx, a.cfg.Site.BaseURL)
			return nil
		}

		report := a.monitor.PerformHealthCheck(ctx, a.cfg.Site.BaseURL)
		rendered, err := a.report.RenderHealth(report)
		if err != nil {
			return err
		}
		return a.report.Write(rendered, output)
	},
}

func init() {
	optimizeCmd.Flags().String("type", "page", "Page type (home, service, article, contact)")
	optimizeCmd.Flags().String("location", "", "Optional location for local templates")

	runCmd.Flags().String("output", "", "Output file for the report")

	submitCmd.Flags().Bool("from-sitemap", false, "Discover URLs from the site's sitemap.xml")

	healthCmd.Flags().Bool("watch", false, "Re-check on the configured interval until interrupted")
	healthCmd.Flags().String("output", "", "Output file for the report")

	rootCmd.AddCommand(optimizeCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(submitCmd)
	rootCmd.AddCommand(healthCmd)

	rootCmd.PersistentFlags().String("config", "", "Config file path")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
