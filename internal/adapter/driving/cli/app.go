package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/diillson/rightsizing-tickets/internal/domain/repository"
	"github.com/diillson/rightsizing-tickets/internal/shared/types"
	"github.com/diillson/rightsizing-tickets/pkg/version"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// Environment variables carrying credentials.
const (
	EnvAPIKey       = "CLDY_API_KEY"
	EnvJiraUsername = "JIRA_USERNAME"
	EnvJiraPassword = "JIRA_PASSWORD"
)

// TicketRunner runs one recommendation to ticket pass.
type TicketRunner interface {
	Run(ctx context.Context, cfg *types.Config) error
}

// RunnerFactory builds the runner once the effective configuration is known.
type RunnerFactory func(cfg *types.Config, logger zerolog.Logger) (TicketRunner, error)

// CLIApp represents the command-line interface application.
type CLIApp struct {
	rootCmd    *cobra.Command
	configRepo repository.ConfigRepository
	newRunner  RunnerFactory
	version    string
	lookupEnv  func(string) (string, bool)
	loadDotEnv func() error
	showBanner bool
}

// NewCLIApp cria uma nova aplicação CLI.
func NewCLIApp(versionStr string, configRepo repository.ConfigRepository, newRunner RunnerFactory) *CLIApp {
	app := &CLIApp{
		configRepo: configRepo,
		newRunner:  newRunner,
		version:    versionStr,
		lookupEnv:  os.LookupEnv,
		loadDotEnv: func() error { return godotenv.Load() },
		showBanner: true,
	}

	// Obtem a versão formatada
	formattedVersion := version.FormatVersion()

	rootCmd := &cobra.Command{
		Use:           "rightsizing-tickets",
		Short:         "File Jira tickets for Cloudability EC2 rightsizing recommendations",
		Version:       formattedVersion,
		RunE:          app.runCommand,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate(`{{printf "rightsizing-tickets version: %s\n" .Version}}`)

	flags := rootCmd.PersistentFlags()
	flags.StringP("config-file", "C", "", "Path to a TOML, YAML, or JSON configuration file")
	flags.String("api-key", "", "Cloudability API key (default: $"+EnvAPIKey+")")
	flags.Int("dimension", 0, "Business mapping dimension index (default 3)")
	flags.String("tag-key", "", "Tag the business mapping is keyed on (default \"Role\")")
	flags.Float64("min-savings", 0, "Only include recommendations saving more than this amount (default 1000)")
	flags.Int("limit", 0, "Maximum number of recommendations to ticket (default 10)")
	flags.String("jira-url", "", "Jira base URL (default \"http://localhost:8080\")")
	flags.String("jira-user", "", "Jira username (default: $"+EnvJiraUsername+")")
	flags.String("jira-password", "", "Jira password or API token (default: $"+EnvJiraPassword+")")
	flags.String("project-key", "", "Jira project key (default \"CLOUD\")")
	flags.String("savings-field", "", "Jira custom field ID that receives the savings amount")
	flags.Bool("dry-run", false, "Print tickets instead of creating them")
	flags.Bool("verify-instances", false, "Skip recommendations whose EC2 instance is gone")
	flags.String("aws-profile", "", "AWS profile used for instance verification")
	flags.StringSliceP("regions", "r", nil, "AWS regions to search when a recommendation has no region (comma-separated)")
	flags.StringP("report-name", "n", "", "Base name for the run report file (without extension)")
	flags.StringSliceP("report-type", "y", nil, "Run report types: csv, json, pdf")
	flags.StringP("dir", "d", "", "Directory to save the report files (default: current directory)")
	flags.Bool("debug", false, "Log HTTP requests to stderr")

	app.rootCmd = rootCmd
	return app
}

// Execute runs the CLI application.
func (app *CLIApp) Execute() error {
	return app.rootCmd.Execute()
}

// parseArgs parses command-line arguments into a CLIArgs struct.
func (app *CLIApp) parseArgs() (*types.CLIArgs, error) {
	flags := app.rootCmd.Flags()

	configFile, _ := flags.GetString("config-file")
	apiKey, _ := flags.GetString("api-key")
	dimension, _ := flags.GetInt("dimension")
	tagKey, _ := flags.GetString("tag-key")
	minSavings, _ := flags.GetFloat64("min-savings")
	limit, _ := flags.GetInt("limit")
	jiraURL, _ := flags.GetString("jira-url")
	jiraUser, _ := flags.GetString("jira-user")
	jiraPassword, _ := flags.GetString("jira-password")
	projectKey, _ := flags.GetString("project-key")
	savingsField, _ := flags.GetString("savings-field")
	dryRun, _ := flags.GetBool("dry-run")
	verify, _ := flags.GetBool("verify-instances")
	awsProfile, _ := flags.GetString("aws-profile")
	regions, _ := flags.GetStringSlice("regions")
	reportName, _ := flags.GetString("report-name")
	reportType, _ := flags.GetStringSlice("report-type")
	dir, _ := flags.GetString("dir")
	debug, _ := flags.GetBool("debug")

	if dir != "" {
		absDir, err := filepath.Abs(dir)
		if err != nil {
			return nil, err
		}
		dir = absDir
	}

	var minSavingsPtr *float64
	if flags.Changed("min-savings") {
		minSavingsPtr = &minSavings
	}

	return &types.CLIArgs{
		ConfigFile:      configFile,
		APIKey:          apiKey,
		Dimension:       dimension,
		TagKey:          tagKey,
		MinSavings:      minSavingsPtr,
		Limit:           limit,
		JiraURL:         jiraURL,
		JiraUser:        jiraUser,
		JiraPassword:    jiraPassword,
		ProjectKey:      projectKey,
		SavingsField:    savingsField,
		DryRun:          dryRun,
		VerifyInstances: verify,
		AWSProfile:      awsProfile,
		Regions:         regions,
		ReportName:      reportName,
		ReportType:      reportType,
		Dir:             dir,
		Debug:           debug,
	}, nil
}

// buildConfig resolves the effective configuration:
// defaults < config file < environment < command-line flags.
func (app *CLIApp) buildConfig(args *types.CLIArgs) (*types.Config, error) {
	cfg := types.DefaultConfig()

	if args.ConfigFile != "" {
		fileCfg, err := app.configRepo.LoadConfigFile(args.ConfigFile)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", types.ErrInvalidConfig, err)
		}
		cfg.Merge(fileCfg)
	}

	// Um .env ausente não é erro.
	if err := app.loadDotEnv(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: reading .env: %v", types.ErrInvalidConfig, err)
	}
	if v, ok := app.lookupEnv(EnvAPIKey); ok && v != "" {
		cfg.Cloudability.APIKey = v
	}
	if v, ok := app.lookupEnv(EnvJiraUsername); ok && v != "" {
		cfg.Jira.Username = v
	}
	if v, ok := app.lookupEnv(EnvJiraPassword); ok && v != "" {
		cfg.Jira.Password = v
	}

	cfg.Merge(flagConfig(args))
	if args.MinSavings != nil {
		cfg.Recommendations.MinSavings = *args.MinSavings
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func flagConfig(args *types.CLIArgs) *types.Config {
	return &types.Config{
		Cloudability:    types.CloudabilityConfig{APIKey: args.APIKey},
		BusinessMapping: types.BusinessMappingConfig{DimensionIndex: args.Dimension, TagKey: args.TagKey},
		Recommendations: types.RecommendationsConfig{Limit: args.Limit},
		Jira: types.JiraConfig{
			URL:          args.JiraURL,
			Username:     args.JiraUser,
			Password:     args.JiraPassword,
			ProjectKey:   args.ProjectKey,
			SavingsField: args.SavingsField,
		},
		AWS: types.AWSConfig{
			VerifyInstances: args.VerifyInstances,
			Profile:         args.AWSProfile,
			Regions:         args.Regions,
		},
		Report: types.ReportConfig{
			Name:  args.ReportName,
			Types: args.ReportType,
			Dir:   args.Dir,
		},
		DryRun: args.DryRun,
	}
}

// newLogger returns the request logger handed to the HTTP adapters.
func newLogger(debug bool) zerolog.Logger {
	if !debug {
		return zerolog.Nop()
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(zerolog.DebugLevel).
		With().Timestamp().Logger()
}

// runCommand é o ponto de entrada principal para o comando CLI.
func (app *CLIApp) runCommand(cmd *cobra.Command, args []string) error {
	if app.showBanner {
		displayWelcomeBanner(app.version)
		go version.CheckLatestVersion(app.version)
	}

	cliArgs, err := app.parseArgs()
	if err != nil {
		return err
	}

	cfg, err := app.buildConfig(cliArgs)
	if err != nil {
		return err
	}

	runner, err := app.newRunner(cfg, newLogger(cliArgs.Debug))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()
	return runner.Run(ctx, cfg)
}
