package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/diillson/rightsizing-tickets/internal/domain/entity"
	"github.com/diillson/rightsizing-tickets/internal/shared/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockCostRepo struct{ mock.Mock }

func (m *mockCostRepo) GetAccounts(ctx context.Context) ([]entity.Account, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Account), args.Error(1)
}

func (m *mockCostRepo) GetBusinessMapping(ctx context.Context, index int) (entity.BusinessMapping, error) {
	args := m.Called(ctx, index)
	return args.Get(0).(entity.BusinessMapping), args.Error(1)
}

func (m *mockCostRepo) GetEC2Recommendations(ctx context.Context, query entity.RecommendationQuery) ([]entity.Recommendation, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Recommendation), args.Error(1)
}

type mockTracker struct{ mock.Mock }

func (m *mockTracker) CreateIssue(ctx context.Context, ticket entity.Ticket) (entity.IssueResponse, error) {
	args := m.Called(ctx, ticket)
	return args.Get(0).(entity.IssueResponse), args.Error(1)
}

type mockInstances struct{ mock.Mock }

func (m *mockInstances) GetInstanceStates(ctx context.Context, region string, ids []string) (entity.InstanceState, error) {
	args := m.Called(ctx, region, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(entity.InstanceState), args.Error(1)
}

type mockExport struct{ mock.Mock }

func (m *mockExport) ExportTicketsToCSV(records []entity.TicketRecord, filename, outputDir string) (string, error) {
	args := m.Called(records, filename, outputDir)
	return args.String(0), args.Error(1)
}

func (m *mockExport) ExportTicketsToJSON(records []entity.TicketRecord, filename, outputDir string) (string, error) {
	args := m.Called(records, filename, outputDir)
	return args.String(0), args.Error(1)
}

func (m *mockExport) ExportTicketsToPDF(records []entity.TicketRecord, filename, outputDir string) (string, error) {
	args := m.Called(records, filename, outputDir)
	return args.String(0), args.Error(1)
}

// recordingConsole keeps everything printed so tests can inspect operator output.
type recordingConsole struct {
	lines    []string
	warnings []string
}

func (c *recordingConsole) Print(a ...interface{}) { c.lines = append(c.lines, fmt.Sprint(a...)) }
func (c *recordingConsole) Printf(format string, a ...interface{}) { c.lines = append(c.lines, fmt.Sprintf(format, a...)) }
func (c *recordingConsole) Println(a ...interface{}) { c.lines = append(c.lines, fmt.Sprint(a...)) }
func (c *recordingConsole) LogInfo(string, ...interface{}) {}
func (c *recordingConsole) LogWarning(format string, a ...interface{}) {
	c.warnings = append(c.warnings, fmt.Sprintf(format, a...))
}
func (c *recordingConsole) LogError(string, ...interface{}) {}
func (c *recordingConsole) LogSuccess(string, ...interface{}) {}
func (c *recordingConsole) Status(string) types.StatusHandle { return nopStatus{} }
func (c *recordingConsole) CreateTable() types.TableInterface { return &nopTable{} }

type nopStatus struct{}

func (nopStatus) Update(string) {}
func (nopStatus) Stop() {}

type nopTable struct{ rows int }

func (t *nopTable) AddColumn(string, ...interface{}) {}
func (t *nopTable) AddRow(...interface{}) { t.rows++ }
func (t *nopTable) Render() string { return "" }

func testConfig() *types.Config {
	cfg := types.DefaultConfig()
	cfg.Cloudability.APIKey = "key"
	return cfg
}

func recommendationFor(i int) entity.Recommendation {
	rec := sampleRecommendation()
	rec.ResourceIdentifier = fmt.Sprintf("i-%03d", i)
	return rec
}

func setupLookups(cost *mockCostRepo) {
	cost.On("GetAccounts", mock.Anything).
		Return([]entity.Account{{VendorAccountID: "123", VendorAccountName: "Prod"}}, nil)
	cost.On("GetBusinessMapping", mock.Anything, 3).
		Return(entity.BusinessMapping{
			Name: "Cost Center",
			Statements: []entity.MappingStatement{
				{MatchExpression: "TAG['Role'] == 'payments'", ValueExpression: "'FinOps Team'"},
			},
		}, nil)
}

func TestRun_OneTicketPerRecommendation(t *testing.T) {
	cost := new(mockCostRepo)
	tracker := new(mockTracker)
	console := &recordingConsole{}
	setupLookups(cost)

	recs := make([]entity.Recommendation, 10)
	for i := range recs {
		recs[i] = recommendationFor(i)
	}
	cost.On("GetEC2Recommendations", mock.Anything, entity.RecommendationQuery{
		Basis:              "effective",
		Duration:           "thirty-day",
		Limit:              10,
		Offset:             0,
		MaxRecsPerResource: 1,
		Rank:               "default",
		Sort:               "-recommendations.savings",
		MinSavings:         1000,
	}).Return(recs, nil)

	seen := map[string]bool{}
	tracker.On("CreateIssue", mock.Anything, mock.AnythingOfType("entity.Ticket")).
		Run(func(args mock.Arguments) {
			seen[args.Get(1).(entity.Ticket).ResourceID] = true
		}).
		Return(entity.IssueResponse{StatusCode: 201, Key: "CLOUD-1", Raw: []byte(`{"key":"CLOUD-1"}`)}, nil)

	uc := NewTicketUseCase(cost, tracker, nil, nil, console)
	require.NoError(t, uc.Run(context.Background(), testConfig()))

	tracker.AssertNumberOfCalls(t, "CreateIssue", 10)
	assert.Len(t, seen, 10)
	cost.AssertExpectations(t)
}

func TestRun_PrintsSummaryThenResponse(t *testing.T) {
	cost := new(mockCostRepo)
	tracker := new(mockTracker)
	console := &recordingConsole{}
	setupLookups(cost)

	cost.On("GetEC2Recommendations", mock.Anything, mock.Anything).
		Return([]entity.Recommendation{sampleRecommendation()}, nil)
	tracker.On("CreateIssue", mock.Anything, mock.Anything).
		Return(entity.IssueResponse{StatusCode: 201, Key: "CLOUD-7", Raw: []byte(`{"key":"CLOUD-7","id":"10007"}`)}, nil)

	uc := NewTicketUseCase(cost, tracker, nil, nil, console)
	require.NoError(t, uc.Run(context.Background(), testConfig()))

	require.GreaterOrEqual(t, len(console.lines), 2)
	assert.Contains(t, console.lines[0], "Resize AWS EC2 Resource ID i-abc")
	assert.Equal(t, "{\n    \"id\": \"10007\",\n    \"key\": \"CLOUD-7\"\n}", console.lines[1])
}

func TestRun_StopsAtFirstBadRecord(t *testing.T) {
	cost := new(mockCostRepo)
	tracker := new(mockTracker)
	setupLookups(cost)

	untagged := recommendationFor(2)
	untagged.TagMappings = nil
	cost.On("GetEC2Recommendations", mock.Anything, mock.Anything).
		Return([]entity.Recommendation{recommendationFor(1), untagged, recommendationFor(3)}, nil)
	tracker.On("CreateIssue", mock.Anything, mock.Anything).
		Return(entity.IssueResponse{StatusCode: 201, Raw: []byte(`{}`)}, nil)

	uc := NewTicketUseCase(cost, tracker, nil, nil, &recordingConsole{})
	err := uc.Run(context.Background(), testConfig())

	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrMappingLookup)
	tracker.AssertNumberOfCalls(t, "CreateIssue", 1)
}

func TestRun_UpstreamFailureAbortsBeforeTickets(t *testing.T) {
	cost := new(mockCostRepo)
	tracker := new(mockTracker)

	cost.On("GetAccounts", mock.Anything).
		Return(nil, fmt.Errorf("%w: GET /v3/vendors/AWS/accounts returned 401", types.ErrUpstreamFetch))

	uc := NewTicketUseCase(cost, tracker, nil, nil, &recordingConsole{})
	err := uc.Run(context.Background(), testConfig())

	assert.ErrorIs(t, err, types.ErrUpstreamFetch)
	tracker.AssertNotCalled(t, "CreateIssue", mock.Anything, mock.Anything)
	cost.AssertNotCalled(t, "GetEC2Recommendations", mock.Anything, mock.Anything)
}

func TestRun_SubmissionFailureAborts(t *testing.T) {
	cost := new(mockCostRepo)
	tracker := new(mockTracker)
	setupLookups(cost)

	cost.On("GetEC2Recommendations", mock.Anything, mock.Anything).
		Return([]entity.Recommendation{recommendationFor(1), recommendationFor(2)}, nil)
	tracker.On("CreateIssue", mock.Anything, mock.Anything).
		Return(entity.IssueResponse{}, fmt.Errorf("%w: connection refused", types.ErrTicketSubmission)).Once()

	uc := NewTicketUseCase(cost, tracker, nil, nil, &recordingConsole{})
	err := uc.Run(context.Background(), testConfig())

	assert.ErrorIs(t, err, types.ErrTicketSubmission)
	tracker.AssertNumberOfCalls(t, "CreateIssue", 1)
}

func TestRun_RejectedTicketIsReportedNotFatal(t *testing.T) {
	cost := new(mockCostRepo)
	tracker := new(mockTracker)
	export := new(mockExport)
	console := &recordingConsole{}
	setupLookups(cost)

	cost.On("GetEC2Recommendations", mock.Anything, mock.Anything).
		Return([]entity.Recommendation{sampleRecommendation()}, nil)
	tracker.On("CreateIssue", mock.Anything, mock.Anything).
		Return(entity.IssueResponse{StatusCode: 400, Raw: []byte(`{"errors":{"project":"required"}}`)}, nil)
	export.On("ExportTicketsToJSON", mock.MatchedBy(func(records []entity.TicketRecord) bool {
		return len(records) == 1 && records[0].Status == entity.TicketStatusRejected && records[0].Note == "HTTP 400"
	}), "run", "/tmp/out").Return("/tmp/out/run.json", nil)

	cfg := testConfig()
	cfg.Report = types.ReportConfig{Name: "run", Types: []string{"json"}, Dir: "/tmp/out"}

	uc := NewTicketUseCase(cost, tracker, nil, export, console)
	require.NoError(t, uc.Run(context.Background(), cfg))

	require.Len(t, console.warnings, 1)
	assert.Contains(t, console.warnings[0], "400")
	export.AssertExpectations(t)
}

func TestRun_DryRunSkipsTracker(t *testing.T) {
	cost := new(mockCostRepo)
	tracker := new(mockTracker)
	console := &recordingConsole{}
	setupLookups(cost)

	cost.On("GetEC2Recommendations", mock.Anything, mock.Anything).
		Return([]entity.Recommendation{sampleRecommendation()}, nil)

	cfg := testConfig()
	cfg.DryRun = true

	uc := NewTicketUseCase(cost, tracker, nil, nil, console)
	require.NoError(t, uc.Run(context.Background(), cfg))

	tracker.AssertNotCalled(t, "CreateIssue", mock.Anything, mock.Anything)
	require.GreaterOrEqual(t, len(console.lines), 2)
	assert.Contains(t, console.lines[1], "Cost after recommendation: $350.0")
}

func TestRun_VerifyInstancesSkipsGoneInstances(t *testing.T) {
	cost := new(mockCostRepo)
	tracker := new(mockTracker)
	instances := new(mockInstances)
	console := &recordingConsole{}
	setupLookups(cost)

	running := recommendationFor(1)
	running.Region = "us-east-1"
	terminated := recommendationFor(2)
	terminated.Region = "us-east-1"
	missing := recommendationFor(3)

	cost.On("GetEC2Recommendations", mock.Anything, mock.Anything).
		Return([]entity.Recommendation{running, terminated, missing}, nil)

	instances.On("GetInstanceStates", mock.Anything, "us-east-1", []string{"i-001"}).
		Return(entity.InstanceState{"i-001": "running"}, nil)
	instances.On("GetInstanceStates", mock.Anything, "us-east-1", []string{"i-002"}).
		Return(entity.InstanceState{"i-002": "terminated"}, nil)
	instances.On("GetInstanceStates", mock.Anything, "eu-west-1", []string{"i-003"}).
		Return(entity.InstanceState{}, nil)
	instances.On("GetInstanceStates", mock.Anything, "eu-central-1", []string{"i-003"}).
		Return(entity.InstanceState{}, nil)

	tracker.On("CreateIssue", mock.Anything, mock.MatchedBy(func(ticket entity.Ticket) bool {
		return ticket.ResourceID == "i-001"
	})).Return(entity.IssueResponse{StatusCode: 201, Key: "CLOUD-1", Raw: []byte(`{"key":"CLOUD-1"}`)}, nil)

	cfg := testConfig()
	cfg.AWS.VerifyInstances = true
	cfg.AWS.Regions = []string{"eu-west-1", "eu-central-1"}

	uc := NewTicketUseCase(cost, tracker, instances, nil, console)
	require.NoError(t, uc.Run(context.Background(), cfg))

	tracker.AssertNumberOfCalls(t, "CreateIssue", 1)
	instances.AssertExpectations(t)
	assert.Len(t, console.warnings, 2)
}

func TestRun_CustomTagKeyAndDimension(t *testing.T) {
	cost := new(mockCostRepo)
	tracker := new(mockTracker)

	cost.On("GetAccounts", mock.Anything).
		Return([]entity.Account{{VendorAccountID: "123", VendorAccountName: "Prod"}}, nil)
	cost.On("GetBusinessMapping", mock.Anything, 9).
		Return(entity.BusinessMapping{Statements: []entity.MappingStatement{
			{MatchExpression: "TAG['Team'] == 'core'", ValueExpression: "Core Platform"},
		}}, nil)

	rec := sampleRecommendation()
	rec.TagMappings = []entity.TagMapping{{TagName: "Team", VendorTagValue: "core"}}
	rec.Recommendations[0].Savings = json.Number("1200")
	cost.On("GetEC2Recommendations", mock.Anything, mock.Anything).
		Return([]entity.Recommendation{rec}, nil)

	tracker.On("CreateIssue", mock.Anything, mock.MatchedBy(func(ticket entity.Ticket) bool {
		return ticket.TeamName == "Core Platform" && ticket.Savings == 1200
	})).Return(entity.IssueResponse{StatusCode: 201, Raw: []byte(`{}`)}, nil)

	cfg := testConfig()
	cfg.BusinessMapping = types.BusinessMappingConfig{DimensionIndex: 9, TagKey: "Team"}

	uc := NewTicketUseCase(cost, tracker, nil, nil, &recordingConsole{})
	require.NoError(t, uc.Run(context.Background(), cfg))
	tracker.AssertExpectations(t)
}
