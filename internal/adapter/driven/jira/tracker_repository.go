package jira

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/diillson/rightsizing-tickets/internal/domain/entity"
	"github.com/diillson/rightsizing-tickets/internal/domain/repository"
	"github.com/diillson/rightsizing-tickets/internal/shared/types"
	"github.com/rs/zerolog"
)

const issuePath = "/rest/api/2/issue/"

// Settings configures the Jira Server issue creation.
type Settings struct {
	BaseURL    string
	Username   string
	Password   string
	ProjectKey string
	IssueType  string
	// SavingsField is the custom field that receives the savings amount; empty omits it.
	SavingsField string
}

// TrackerRepositoryImpl implementa o TrackerRepository sobre a REST API v2 do Jira Server.
type TrackerRepositoryImpl struct {
	settings Settings
	client   *http.Client
	logger   zerolog.Logger
}

// NewTrackerRepository cria uma nova implementação do TrackerRepository.
func NewTrackerRepository(settings Settings, client *http.Client, logger zerolog.Logger) repository.TrackerRepository {
	if client == nil {
		client = http.DefaultClient
	}
	settings.BaseURL = strings.TrimRight(settings.BaseURL, "/")
	return &TrackerRepositoryImpl{
		settings: settings,
		client:   client,
		logger:   logger,
	}
}

type issueRequest struct {
	Fields map[string]interface{} `json:"fields"`
}

type keyRef struct {
	Key string `json:"key"`
}

type nameRef struct {
	Name string `json:"name"`
}

func (r *TrackerRepositoryImpl) buildRequest(ticket entity.Ticket) issueRequest {
	fields := map[string]interface{}{
		"project":     keyRef{Key: r.settings.ProjectKey},
		"summary":     ticket.Summary,
		"description": ticket.Description,
		"issuetype":   nameRef{Name: r.settings.IssueType},
	}
	if r.settings.SavingsField != "" {
		fields[r.settings.SavingsField] = ticket.Savings
	}
	return issueRequest{Fields: fields}
}

// CreateIssue files one ticket. The tracker's status code is reported, not judged:
// only transport failures and non-JSON bodies are errors.
func (r *TrackerRepositoryImpl) CreateIssue(ctx context.Context, ticket entity.Ticket) (entity.IssueResponse, error) {
	payload, err := json.Marshal(r.buildRequest(ticket))
	if err != nil {
		return entity.IssueResponse{}, fmt.Errorf("%w: encoding issue for %s: %v", types.ErrTicketSubmission, ticket.ResourceID, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.settings.BaseURL+issuePath, bytes.NewReader(payload))
	if err != nil {
		return entity.IssueResponse{}, fmt.Errorf("%w: building request: %v", types.ErrTicketSubmission, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(r.settings.Username, r.settings.Password)

	start := time.Now()
	resp, err := r.client.Do(req)
	if err != nil {
		return entity.IssueResponse{}, fmt.Errorf("%w: POST %s: %v", types.ErrTicketSubmission, issuePath, err)
	}
	defer resp.Body.Close()

	r.logger.Debug().
		Str("method", http.MethodPost).
		Str("path", issuePath).
		Str("resource", ticket.ResourceID).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("jira request")

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return entity.IssueResponse{}, fmt.Errorf("%w: reading response: %v", types.ErrTicketSubmission, err)
	}

	var created struct {
		ID  string `json:"id"`
		Key string `json:"key"`
	}
	if err := json.Unmarshal(body, &created); err != nil {
		// Jira de vez em quando responde com HTML (proxy, login page).
		var anyJSON interface{}
		if json.Unmarshal(body, &anyJSON) != nil {
			return entity.IssueResponse{}, fmt.Errorf("%w: status %d with non-JSON body: %v", types.ErrTicketSubmission, resp.StatusCode, err)
		}
	}

	return entity.IssueResponse{
		StatusCode: resp.StatusCode,
		ID:         created.ID,
		Key:        created.Key,
		Raw:        body,
	}, nil
}
