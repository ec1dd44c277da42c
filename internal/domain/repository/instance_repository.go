package repository

import (
	"context"

	"github.com/diillson/rightsizing-tickets/internal/domain/entity"
)

// InstanceRepository looks up the current state of EC2 instances.
// Instances that do not exist are absent from the returned map.
type InstanceRepository interface {
	GetInstanceStates(ctx context.Context, region string, instanceIDs []string) (entity.InstanceState, error)
}
