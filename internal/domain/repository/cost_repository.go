package repository

import (
	"context"

	"github.com/diillson/rightsizing-tickets/internal/domain/entity"
)

// CostRepository defines the interface for the cost-management API.
type CostRepository interface {
	GetAccounts(ctx context.Context) ([]entity.Account, error)
	GetBusinessMapping(ctx context.Context, index int) (entity.BusinessMapping, error)
	GetEC2Recommendations(ctx context.Context, query entity.RecommendationQuery) ([]entity.Recommendation, error)
}
