package entity

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Ticket is the issue-tracker ticket derived from one recommendation.
type Ticket struct {
	ResourceID     string  `json:"resource_id"`
	ResourceName   string  `json:"resource_name"`
	AccountID      string  `json:"account_id"`
	AccountName    string  `json:"account_name"`
	TeamName       string  `json:"team_name"`
	Region         string  `json:"region,omitempty"`
	Summary        string  `json:"summary"`
	Description    string  `json:"description"`
	CurrentSpend   float64 `json:"current_spend"`
	Savings        float64 `json:"savings"`
	OptimizedSpend float64 `json:"optimized_spend"`
}

// IssueResponse is what the tracker answered to a ticket creation request.
type IssueResponse struct {
	StatusCode int
	ID         string
	Key        string
	Raw        []byte
}

// TicketStatus describes what happened to a ticket during a run.
type TicketStatus string

const (
	TicketStatusCreated  TicketStatus = "created"
	TicketStatusRejected TicketStatus = "rejected"
	TicketStatusDryRun   TicketStatus = "dry-run"
	TicketStatusSkipped  TicketStatus = "skipped"
)

// TicketRecord is one row of the run report.
type TicketRecord struct {
	ResourceID     string       `json:"resource_id"`
	AccountName    string       `json:"account_name"`
	TeamName       string       `json:"team_name"`
	Summary        string       `json:"summary"`
	Savings        float64      `json:"savings"`
	OptimizedSpend float64      `json:"optimized_spend"`
	IssueKey       string       `json:"issue_key,omitempty"`
	Status         TicketStatus `json:"status"`
	Note           string       `json:"note,omitempty"`
}

// Pretty renders the raw response body as indented JSON with sorted keys.
func (r IssueResponse) Pretty() (string, error) {
	var v interface{}
	if err := json.Unmarshal(r.Raw, &v); err != nil {
		return "", err
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}
