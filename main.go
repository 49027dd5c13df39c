package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/machinebox/graphql"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yogeshwarirj/github-monitor-analysis/config"
	"github.com/yogeshwarirj/github-monitor-analysis/internal/analytics"
	"github.com/yogeshwarirj/github-monitor-analysis/internal/gitmetrics"
	"github.com/yogeshwarirj/github-monitor-analysis/internal/tokenstore"
	"github.com/yogeshwarirj/github-monitor-analysis/server"
)

var (
	verbose bool
	logger  *logrus.Logger
	cfg     *config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "ghmon",
	Short: "Team repository analytics backend",
	Long: `ghmon serves the team analytics dashboard: roster uploads, commit
trends, quality scores and repository activity fetched from the GitHub API.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger = logrus.New()
		if verbose {
			logger.SetLevel(logrus.DebugLevel)
		} else {
			logger.SetLevel(logrus.InfoLevel)
		}

		var err error
		cfg, err = config.LoadConfig()
		if err != nil {
			return fmt.Errorf("could not load config: %w", err)
		}
		return nil
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the dashboard API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openTokenStore()
		if err != nil {
			return err
		}

		client := gitmetrics.NewClient(nil, gitmetrics.WithRateLimit(cfg.RateLimit))
		holder := tokenstore.NewHolder(store, client)
		if err := holder.Load(); err != nil {
			return fmt.Errorf("could not load credential: %w", err)
		}

		tokens := &fallbackTokens{holder: holder, fallback: cfg.GitHubToken}
		apiClient := gitmetrics.NewClient(tokens, gitmetrics.WithRateLimit(cfg.RateLimit))
		gql := graphql.NewClient(gitmetrics.GraphQLEndpoint)

		srv := server.New(logger, apiClient, holder, gql)
		return srv.Start(cfg.ListenAddr)
	},
}

var (
	reportURL  string
	reportFrom string
	reportTo   string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print a one-shot analytics report for a repository",
	RunE: func(cmd *cobra.Command, args []string) error {
		loc, err := gitmetrics.ParseRepoURL(reportURL)
		if err != nil {
			return err
		}

		window := analytics.DefaultWindow(time.Now())
		if reportFrom != "" && reportTo != "" {
			from, err := time.ParseInLocation("2006-01-02", reportFrom, time.UTC)
			if err != nil {
				return fmt.Errorf("invalid --from: %w", err)
			}
			to, err := time.ParseInLocation("2006-01-02", reportTo, time.UTC)
			if err != nil {
				return fmt.Errorf("invalid --to: %w", err)
			}
			window = analytics.DateWindow{From: from, To: to}
			if !window.Valid() {
				return fmt.Errorf("--from must not be after --to")
			}
		}

		ctx := context.Background()
		client := gitmetrics.NewClient(gitmetrics.StaticToken(cfg.GitHubToken), gitmetrics.WithRateLimit(cfg.RateLimit))

		commits, err := client.ListCommits(ctx, loc, window.From, window.To)
		if err != nil {
			return err
		}
		readme, err := client.GetReadme(ctx, loc)
		if err != nil {
			return err
		}
		events, err := client.ListEvents(ctx, loc)
		if err != nil {
			return err
		}

		report := map[string]interface{}{
			"repo":    loc.String(),
			"commits": analytics.AggregateCommits(commits, window),
			"quality": analytics.ScoreQuality(commits, readme.Exists),
			"events":  analytics.AggregateEvents(events, time.Now()),
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	},
}

// fallbackTokens prefers the user-submitted credential and falls back to the
// token configured at startup.
type fallbackTokens struct {
	holder   *tokenstore.Holder
	fallback string
}

func (t *fallbackTokens) Token() string {
	if tok := t.holder.Token(); tok != "" {
		return tok
	}
	return t.fallback
}

func openTokenStore() (tokenstore.Store, error) {
	switch cfg.TokenStoreBackend {
	case "keyring":
		return tokenstore.NewKeyringStore(), nil
	case "memory":
		return tokenstore.NewMemoryStore(), nil
	case "bolt":
		return tokenstore.NewBoltStore(cfg.TokenStorePath)
	default:
		return nil, fmt.Errorf("unknown token store backend %q", cfg.TokenStoreBackend)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	reportCmd.Flags().StringVar(&reportURL, "url", "", "repository URL, e.g. https://github.com/owner/repo")
	reportCmd.Flags().StringVar(&reportFrom, "from", "", "window start (YYYY-MM-DD)")
	reportCmd.Flags().StringVar(&reportTo, "to", "", "window end (YYYY-MM-DD)")
	_ = reportCmd.MarkFlagRequired("url")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(reportCmd)
}
