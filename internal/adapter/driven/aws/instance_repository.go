package aws

import (
	"context"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2Types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/diillson/rightsizing-tickets/internal/domain/entity"
	"github.com/diillson/rightsizing-tickets/internal/domain/repository"
)

// describeInstancesAPI is the slice of the EC2 client used here.
type describeInstancesAPI interface {
	DescribeInstances(ctx context.Context, params *ec2.DescribeInstancesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeInstancesOutput, error)
}

// InstanceRepositoryImpl implementa o InstanceRepository com cache de clientes por região.
type InstanceRepositoryImpl struct {
	profile     string
	cfg         *aws.Config
	clientCache map[string]describeInstancesAPI
	newClient   func(cfg aws.Config) describeInstancesAPI
	mu          sync.Mutex
}

// NewInstanceRepository cria uma nova implementação do InstanceRepository.
// An empty profile uses the default credential chain.
func NewInstanceRepository(profile string) repository.InstanceRepository {
	return &InstanceRepositoryImpl{
		profile:     profile,
		clientCache: make(map[string]describeInstancesAPI),
		newClient: func(cfg aws.Config) describeInstancesAPI {
			return ec2.NewFromConfig(cfg)
		},
	}
}

func (r *InstanceRepositoryImpl) getAWSConfig(ctx context.Context) (aws.Config, error) {
	if r.cfg != nil {
		return *r.cfg, nil
	}

	var opts []func(*config.LoadOptions) error
	if r.profile != "" {
		opts = append(opts, config.WithSharedConfigProfile(r.profile))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load AWS config for profile %q: %w", r.profile, err)
	}

	r.cfg = &cfg
	return cfg, nil
}

func (r *InstanceRepositoryImpl) getClient(ctx context.Context, region string) (describeInstancesAPI, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if client, ok := r.clientCache[region]; ok {
		return client, nil
	}

	cfg, err := r.getAWSConfig(ctx)
	if err != nil {
		return nil, err
	}

	regionalCfg := cfg.Copy()
	if region != "" {
		regionalCfg.Region = region
	}

	client := r.newClient(regionalCfg)
	r.clientCache[region] = client
	return client, nil
}

// GetInstanceStates returns the lifecycle state of each instance that exists in the region.
// The instance-id filter is used instead of InstanceIds so unknown IDs are simply absent
// rather than failing the whole call.
func (r *InstanceRepositoryImpl) GetInstanceStates(ctx context.Context, region string, instanceIDs []string) (entity.InstanceState, error) {
	states := make(entity.InstanceState)
	if len(instanceIDs) == 0 {
		return states, nil
	}

	client, err := r.getClient(ctx, region)
	if err != nil {
		return nil, err
	}

	input := &ec2.DescribeInstancesInput{
		Filters: []ec2Types.Filter{
			{
				Name:   aws.String("instance-id"),
				Values: instanceIDs,
			},
		},
	}

	paginator := ec2.NewDescribeInstancesPaginator(client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("error describing instances in %s: %w", region, err)
		}

		for _, reservation := range page.Reservations {
			for _, instance := range reservation.Instances {
				if instance.InstanceId == nil {
					continue
				}
				state := "unknown"
				if instance.State != nil {
					state = string(instance.State.Name)
				}
				states[*instance.InstanceId] = state
			}
		}
	}

	return states, nil
}
