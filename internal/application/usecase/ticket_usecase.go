package usecase

import (
	"context"
	"fmt"
	"net/http"

	"github.com/diillson/rightsizing-tickets/internal/domain/entity"
	"github.com/diillson/rightsizing-tickets/internal/domain/repository"
	"github.com/diillson/rightsizing-tickets/internal/shared/types"
)

// TicketUseCase runs the recommendation to ticket pipeline.
type TicketUseCase struct {
	costRepo     repository.CostRepository
	trackerRepo  repository.TrackerRepository
	instanceRepo repository.InstanceRepository
	exportRepo   repository.ExportRepository
	console      types.ConsoleInterface
}

// NewTicketUseCase creates a new ticket use case. instanceRepo may be nil when
// instance verification is never enabled.
func NewTicketUseCase(
	costRepo repository.CostRepository,
	trackerRepo repository.TrackerRepository,
	instanceRepo repository.InstanceRepository,
	exportRepo repository.ExportRepository,
	console types.ConsoleInterface,
) *TicketUseCase {
	return &TicketUseCase{
		costRepo:     costRepo,
		trackerRepo:  trackerRepo,
		instanceRepo: instanceRepo,
		exportRepo:   exportRepo,
		console:      console,
	}
}

// RecommendationQuery maps the configured right-sizing parameters to a first-page query.
func RecommendationQuery(cfg types.RecommendationsConfig) entity.RecommendationQuery {
	return entity.RecommendationQuery{
		Basis:              cfg.Basis,
		Duration:           cfg.Duration,
		Limit:              cfg.Limit,
		Offset:             0,
		MaxRecsPerResource: cfg.MaxRecsPerResource,
		Rank:               cfg.Rank,
		Sort:               cfg.Sort,
		MinSavings:         cfg.MinSavings,
	}
}

// LoadLookups resolves the account directory and the team lookup. Both are complete
// before any ticket is built and are never modified afterwards.
func (uc *TicketUseCase) LoadLookups(ctx context.Context, cfg *types.Config) (entity.AccountDirectory, entity.TeamLookup, error) {
	status := uc.console.Status("Fetching vendor accounts...")
	accounts, err := uc.costRepo.GetAccounts(ctx)
	status.Stop()
	if err != nil {
		return nil, nil, err
	}
	directory := ResolveAccounts(accounts)
	uc.console.LogInfo("Loaded %d vendor accounts", len(directory))

	status = uc.console.Status(fmt.Sprintf("Fetching business mapping %d...", cfg.BusinessMapping.DimensionIndex))
	mapping, err := uc.costRepo.GetBusinessMapping(ctx, cfg.BusinessMapping.DimensionIndex)
	status.Stop()
	if err != nil {
		return nil, nil, err
	}

	parser, err := NewMatchExpressionParser(cfg.BusinessMapping.TagKey)
	if err != nil {
		return nil, nil, err
	}
	teams, err := ResolveTeams(mapping, parser)
	if err != nil {
		return nil, nil, err
	}
	uc.console.LogInfo("Business mapping %q maps %d %s tag values", mapping.Name, len(teams), cfg.BusinessMapping.TagKey)

	return directory, teams, nil
}

// Run executes the whole pipeline. The first error stops the run; tickets already
// filed stay filed.
func (uc *TicketUseCase) Run(ctx context.Context, cfg *types.Config) error {
	accounts, teams, err := uc.LoadLookups(ctx, cfg)
	if err != nil {
		return err
	}

	status := uc.console.Status("Fetching EC2 rightsizing recommendations...")
	recs, err := uc.costRepo.GetEC2Recommendations(ctx, RecommendationQuery(cfg.Recommendations))
	status.Stop()
	if err != nil {
		return err
	}
	uc.console.LogInfo("Found %d EC2 recommendations with savings above $%s", len(recs), FormatAmount(cfg.Recommendations.MinSavings))

	records := make([]entity.TicketRecord, 0, len(recs))
	for _, rec := range recs {
		record, err := uc.processRecommendation(ctx, cfg, rec, accounts, teams)
		if err != nil {
			uc.finish(cfg, records)
			return err
		}
		records = append(records, record)
	}

	uc.finish(cfg, records)
	return nil
}

func (uc *TicketUseCase) processRecommendation(
	ctx context.Context,
	cfg *types.Config,
	rec entity.Recommendation,
	accounts entity.AccountDirectory,
	teams entity.TeamLookup,
) (entity.TicketRecord, error) {
	ticket, err := BuildTicket(rec, accounts, teams, cfg.BusinessMapping.TagKey)
	if err != nil {
		return entity.TicketRecord{}, err
	}

	record := entity.TicketRecord{
		ResourceID:     ticket.ResourceID,
		AccountName:    ticket.AccountName,
		TeamName:       ticket.TeamName,
		Summary:        ticket.Summary,
		Savings:        ticket.Savings,
		OptimizedSpend: ticket.OptimizedSpend,
	}

	if cfg.AWS.VerifyInstances {
		state, err := uc.instanceState(ctx, cfg, ticket)
		if err != nil {
			return entity.TicketRecord{}, err
		}
		if state == "" || state == "terminated" || state == "shutting-down" {
			note := "instance not found"
			if state != "" {
				note = "instance " + state
			}
			uc.console.LogWarning("Skipping %s: %s", ticket.ResourceID, note)
			record.Status = entity.TicketStatusSkipped
			record.Note = note
			return record, nil
		}
	}

	uc.console.Println(ticket.Summary)

	if cfg.DryRun {
		uc.console.Println(ticket.Description)
		record.Status = entity.TicketStatusDryRun
		return record, nil
	}

	resp, err := uc.trackerRepo.CreateIssue(ctx, ticket)
	if err != nil {
		return entity.TicketRecord{}, err
	}

	pretty, err := resp.Pretty()
	if err != nil {
		pretty = string(resp.Raw)
	}
	uc.console.Println(pretty)

	record.IssueKey = resp.Key
	record.Status = entity.TicketStatusCreated
	if resp.StatusCode >= http.StatusBadRequest {
		uc.console.LogWarning("Tracker answered %d for %s", resp.StatusCode, ticket.ResourceID)
		record.Status = entity.TicketStatusRejected
		record.Note = fmt.Sprintf("HTTP %d", resp.StatusCode)
	}
	return record, nil
}

// instanceState returns the EC2 state of the ticket's instance, or "" when it was not
// found in any candidate region.
func (uc *TicketUseCase) instanceState(ctx context.Context, cfg *types.Config, ticket entity.Ticket) (string, error) {
	if uc.instanceRepo == nil {
		return "", fmt.Errorf("instance verification is enabled but no EC2 repository is configured")
	}

	regions := cfg.AWS.Regions
	if ticket.Region != "" {
		regions = []string{ticket.Region}
	}
	if len(regions) == 0 {
		// Região padrão do perfil.
		regions = []string{""}
	}

	for _, region := range regions {
		states, err := uc.instanceRepo.GetInstanceStates(ctx, region, []string{ticket.ResourceID})
		if err != nil {
			return "", err
		}
		if state, ok := states[ticket.ResourceID]; ok {
			return state, nil
		}
	}
	return "", nil
}

func (uc *TicketUseCase) finish(cfg *types.Config, records []entity.TicketRecord) {
	if len(records) == 0 {
		return
	}

	uc.displaySummary(records)

	if cfg.Report.Name == "" || uc.exportRepo == nil {
		return
	}

	for _, reportType := range cfg.Report.Types {
		var (
			path string
			err  error
		)
		switch reportType {
		case "csv":
			path, err = uc.exportRepo.ExportTicketsToCSV(records, cfg.Report.Name, cfg.Report.Dir)
		case "json":
			path, err = uc.exportRepo.ExportTicketsToJSON(records, cfg.Report.Name, cfg.Report.Dir)
		case "pdf":
			path, err = uc.exportRepo.ExportTicketsToPDF(records, cfg.Report.Name, cfg.Report.Dir)
		default:
			uc.console.LogWarning("Unknown report type %q", reportType)
			continue
		}

		if err != nil {
			uc.console.LogError("Failed to export ticket report to %s: %s", reportType, err)
		} else {
			uc.console.LogSuccess("Successfully exported ticket report to %s: %s", reportType, path)
		}
	}
}

func (uc *TicketUseCase) displaySummary(records []entity.TicketRecord) {
	table := uc.console.CreateTable()
	table.AddColumn("Resource ID")
	table.AddColumn("Account")
	table.AddColumn("Team")
	table.AddColumn("Savings")
	table.AddColumn("Status")
	table.AddColumn("Issue")

	var total float64
	filed := 0
	for _, r := range records {
		table.AddRow(r.ResourceID, r.AccountName, r.TeamName, fmt.Sprintf("$%.2f", r.Savings), string(r.Status), r.IssueKey)
		if r.Status == entity.TicketStatusCreated || r.Status == entity.TicketStatusDryRun {
			total += r.Savings
			filed++
		}
	}

	uc.console.Println(table.Render())
	uc.console.LogInfo("%d of %d recommendations ticketed, $%.2f potential 30-day savings", filed, len(records), total)
}
