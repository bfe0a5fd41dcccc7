package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/alecf/careerprep/internal/cache"
	"github.com/alecf/careerprep/internal/coach"
	"github.com/alecf/careerprep/internal/config"
	"github.com/alecf/careerprep/internal/generate"
	"github.com/alecf/careerprep/internal/logging"
	"github.com/alecf/careerprep/internal/output"
	"github.com/alecf/careerprep/internal/pricing"
	"github.com/alecf/careerprep/internal/store"
)

const defaultUser = "local"

var (
	cfgFile    string
	profile    string
	userFlag   string
	verbose    bool
	debug      bool
	quiet      bool
	jsonOutput bool
	showTokens bool
)

func Execute(version, commit, date string) error {
	config.LoadEnv()

	rootCmd := &cobra.Command{
		Use:   "careerprep",
		Short: "AI career coaching from the command line",
		Long: `careerprep generates cover letters, interview quizzes, industry insights,
skill roadmaps and coding challenges for your profile. Every command
returns a usable result even when the model is unavailable.

Example:
  careerprep profile set --industry "Software Development" --skills Go,SQL
  careerprep quiz --take`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.config/careerprep/config.toml)")
	rootCmd.PersistentFlags().StringVarP(&profile, "profile", "p", "", "LLM profile to use")
	rootCmd.PersistentFlags().StringVarP(&userFlag, "user", "u", "", "user ID to act as (default: local)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "show operation details")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress progress messages")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "show full request/response details")
	rootCmd.PersistentFlags().BoolVarP(&jsonOutput, "json", "j", false, "JSON output with source and metadata")
	rootCmd.PersistentFlags().BoolVarP(&showTokens, "tokens", "t", false, "show token usage and costs")

	// Coaching commands
	rootCmd.AddCommand(profileCmd())
	rootCmd.AddCommand(coverLetterCmd())
	rootCmd.AddCommand(quizCmd())
	rootCmd.AddCommand(questionsCmd())
	rootCmd.AddCommand(insightsCmd())
	rootCmd.AddCommand(roadmapCmd())
	rootCmd.AddCommand(challengesCmd())
	rootCmd.AddCommand(questionBankCmd())
	rootCmd.AddCommand(dashboardCmd())
	rootCmd.AddCommand(serveCmd())

	// Management commands
	rootCmd.AddCommand(setupCmd())
	rootCmd.AddCommand(setProfileCmd())
	rootCmd.AddCommand(listProfilesCmd())
	rootCmd.AddCommand(testConfigCmd())
	rootCmd.AddCommand(cacheStatsCmd())
	rootCmd.AddCommand(clearCacheCmd())

	// Bind flags to viper
	viper.BindPFlag("profile", rootCmd.PersistentFlags().Lookup("profile"))
	viper.BindPFlag("user", rootCmd.PersistentFlags().Lookup("user"))
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))

	// Environment variable support
	viper.SetEnvPrefix("CAREERPREP")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	return rootCmd.Execute()
}

// app is the wiring behind a coaching command
type app struct {
	cfg      *config.Config
	profile  *config.Profile
	logger   *zap.Logger
	db       *store.Store
	provider *progressProvider
	svc      *coach.Service
}

func newLogger() *zap.Logger {
	return logging.New(logging.Options{Debug: debug, Verbose: verbose, Quiet: quiet})
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadFrom(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// newApp loads the configuration and connects the provider, the cache,
// and the database
func newApp(ctx context.Context) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	logger := newLogger()

	activeProfile, err := cfg.GetActiveProfile()
	if err != nil {
		return nil, fmt.Errorf("no profile configured: %w\nRun 'careerprep setup' to configure", err)
	}

	logger.Info("using profile",
		zap.String("profile", activeProfile.Name),
		zap.String("provider", activeProfile.Provider),
		zap.String("model", activeProfile.Model))

	providerConfig, err := CreateProvider(ctx, cfg, activeProfile, logger)
	if err != nil {
		return nil, err
	}

	db, err := store.Open(ctx, cfg.Database.Driver, cfg.DatabaseDSN())
	if err != nil {
		return nil, err
	}

	showProgress := !quiet && !verbose && !debug && !jsonOutput
	provider := newProgressProvider(providerConfig.Provider, activeProfile.Model, showProgress)

	orch := generate.New(newCache(cfg), provider, orchestratorOptions(cfg, activeProfile.Model, providerConfig.ContextWindow, logger))

	return &app{
		cfg:      cfg,
		profile:  activeProfile,
		logger:   logger,
		db:       db,
		provider: provider,
		svc:      coach.New(orch, db, logger),
	}, nil
}

func newCache(cfg *config.Config) *cache.Store {
	return cache.New(cache.Options{
		TTL:        cfg.CacheTTL(),
		MaxEntries: cfg.Cache.MaxEntries,
	})
}

func orchestratorOptions(cfg *config.Config, model string, contextWindow int, logger *zap.Logger) generate.Options {
	opts := generate.Options{
		Model:         model,
		ContextWindow: contextWindow,
		Coalesce:      cfg.Cache.Coalesce,
		Logger:        logger,
	}
	if cfg.Breaker.Enabled {
		opts.Breaker = &generate.BreakerSettings{
			FailureRatio: cfg.Breaker.FailureRatio,
			MinRequests:  cfg.Breaker.MinRequests,
			OpenTimeout:  cfg.BreakerOpenTimeout(),
		}
	}
	return opts
}

func (a *app) Close() {
	if err := a.db.Close(); err != nil {
		a.logger.Warn("failed to close database", zap.Error(err))
	}
	_ = a.logger.Sync()
}

// userID returns the user the command acts as
func (a *app) userID() string {
	if id := viper.GetString("user"); id != "" {
		return id
	}
	return defaultUser
}

// withApp runs fn against a freshly wired app
func withApp(cmd *cobra.Command, fn func(a *app) error) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}

// emit prints v as JSON in --json mode and through text otherwise,
// followed by token usage when --tokens is set
func (a *app) emit(w io.Writer, v any, source string, text func(io.Writer)) error {
	usage := a.provider.Usage()
	db := pricing.GetDatabase()
	modelPricing := db.GetPricing(a.profile.Model)

	if jsonOutput {
		var meta *output.Metadata
		if showTokens {
			meta = &output.Metadata{
				Provider:     a.profile.Provider,
				Model:        a.profile.Model,
				LiveCalls:    usage.Calls,
				TokensInput:  usage.TokensInput,
				TokensOutput: usage.TokensOutput,
			}
			if modelPricing != nil {
				cost := modelPricing.CalculateCost(usage.TokensInput, usage.TokensOutput)
				meta.Cost = &cost
			}
		}

		out, err := output.FormatJSON(v, source, meta)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, out)
		return nil
	}

	text(w)
	if source == string(generate.SourceFallback) && !quiet {
		fmt.Fprintln(os.Stderr, "\nNote: the model was unavailable; showing a built-in result.")
	}
	if showTokens {
		fmt.Fprintln(w)
		fmt.Fprintln(w, pricing.FormatTokenUsage(a.profile.Provider, usage.Calls, usage.TokensInput, usage.TokensOutput, modelPricing, db.LastUpdated))
	}
	return nil
}
