package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/diillson/rightsizing-tickets/internal/adapter/driven/aws"
	"github.com/diillson/rightsizing-tickets/internal/adapter/driven/cloudability"
	"github.com/diillson/rightsizing-tickets/internal/adapter/driven/config"
	"github.com/diillson/rightsizing-tickets/internal/adapter/driven/export"
	"github.com/diillson/rightsizing-tickets/internal/adapter/driven/jira"
	"github.com/diillson/rightsizing-tickets/internal/adapter/driving/cli"
	"github.com/diillson/rightsizing-tickets/internal/application/usecase"
	"github.com/diillson/rightsizing-tickets/internal/domain/repository"
	"github.com/diillson/rightsizing-tickets/internal/shared/types"
	"github.com/diillson/rightsizing-tickets/pkg/console"
	"github.com/diillson/rightsizing-tickets/pkg/version"
	"github.com/rs/zerolog"
)

const httpTimeout = 60 * time.Second

func main() {
	// Inicializa o aplicativo CLI
	app := cli.NewCLIApp(version.Version, config.NewConfigRepository(), newTicketUseCase)

	// Executa o aplicativo
	if err := app.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newTicketUseCase inicializa os repositórios e o caso de uso a partir da configuração efetiva.
func newTicketUseCase(cfg *types.Config, logger zerolog.Logger) (cli.TicketRunner, error) {
	client := &http.Client{Timeout: httpTimeout}

	costRepo := cloudability.NewCostRepository(cfg.Cloudability.BaseURL, cfg.Cloudability.APIKey, client, logger)
	trackerRepo := jira.NewTrackerRepository(jira.Settings{
		BaseURL:      cfg.Jira.URL,
		Username:     cfg.Jira.Username,
		Password:     cfg.Jira.Password,
		ProjectKey:   cfg.Jira.ProjectKey,
		IssueType:    cfg.Jira.IssueType,
		SavingsField: cfg.Jira.SavingsField,
	}, client, logger)

	var instanceRepo repository.InstanceRepository
	if cfg.AWS.VerifyInstances {
		instanceRepo = aws.NewInstanceRepository(cfg.AWS.Profile)
	}

	return usecase.NewTicketUseCase(
		costRepo,
		trackerRepo,
		instanceRepo,
		export.NewExportRepository(),
		console.NewConsole(),
	), nil
}
