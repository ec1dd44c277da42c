package repository

import (
	"context"

	"github.com/diillson/rightsizing-tickets/internal/domain/entity"
)

// TrackerRepository defines the interface for the issue tracker.
type TrackerRepository interface {
	CreateIssue(ctx context.Context, ticket entity.Ticket) (entity.IssueResponse, error)
}
