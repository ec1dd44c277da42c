package cloudability

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/diillson/rightsizing-tickets/internal/domain/entity"
	"github.com/diillson/rightsizing-tickets/internal/domain/repository"
	"github.com/diillson/rightsizing-tickets/internal/shared/types"
	"github.com/rs/zerolog"
)

const (
	accountsPath        = "/v3/vendors/AWS/accounts"
	businessMappingPath = "/v3/business-mappings/%d"
	ec2RightsizingPath  = "/v3/rightsizing/aws/recommendations/ec2"
)

// CostRepositoryImpl implementa o CostRepository sobre a API v3 do Cloudability.
type CostRepositoryImpl struct {
	baseURL string
	apiKey  string
	client  *http.Client
	logger  zerolog.Logger
}

// NewCostRepository cria uma nova implementação do CostRepository.
// A nil client falls back to http.DefaultClient, which has no timeout.
func NewCostRepository(baseURL, apiKey string, client *http.Client, logger zerolog.Logger) repository.CostRepository {
	if client == nil {
		client = http.DefaultClient
	}
	return &CostRepositoryImpl{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  client,
		logger:  logger,
	}
}

// GetAccounts lists the AWS vendor accounts known to the cost platform.
func (r *CostRepositoryImpl) GetAccounts(ctx context.Context) ([]entity.Account, error) {
	var payload struct {
		Result []entity.Account `json:"result"`
	}
	if err := r.getJSON(ctx, accountsPath, nil, &payload); err != nil {
		return nil, err
	}
	return payload.Result, nil
}

// GetBusinessMapping fetches one business-mapping dimension by index.
func (r *CostRepositoryImpl) GetBusinessMapping(ctx context.Context, index int) (entity.BusinessMapping, error) {
	var payload struct {
		Result entity.BusinessMapping `json:"result"`
	}
	if err := r.getJSON(ctx, fmt.Sprintf(businessMappingPath, index), nil, &payload); err != nil {
		return entity.BusinessMapping{}, err
	}
	return payload.Result, nil
}

// GetEC2Recommendations fetches a single page of EC2 right-sizing recommendations.
func (r *CostRepositoryImpl) GetEC2Recommendations(ctx context.Context, query entity.RecommendationQuery) ([]entity.Recommendation, error) {
	var payload struct {
		Result []entity.Recommendation `json:"result"`
	}
	if err := r.getJSON(ctx, ec2RightsizingPath, recommendationParams(query), &payload); err != nil {
		return nil, err
	}
	return payload.Result, nil
}

func recommendationParams(q entity.RecommendationQuery) url.Values {
	params := url.Values{}
	params.Set("basis", q.Basis)
	params.Set("limit", strconv.Itoa(q.Limit))
	params.Set("maxRecsPerResource", strconv.Itoa(q.MaxRecsPerResource))
	params.Set("rank", q.Rank)
	params.Set("sort", q.Sort)
	params.Set("offset", strconv.Itoa(q.Offset))
	params.Set("duration", q.Duration)
	params.Set("filters", "recommendations.savings>"+strconv.FormatFloat(q.MinSavings, 'f', -1, 64))
	return params
}

func (r *CostRepositoryImpl) getJSON(ctx context.Context, path string, params url.Values, out interface{}) error {
	endpoint := r.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("%w: building request for %s: %v", types.ErrUpstreamFetch, path, err)
	}
	req.Header.Set("Accept", "application/json")
	// A chave da API vai como usuário, senha vazia.
	req.SetBasicAuth(r.apiKey, "")

	start := time.Now()
	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: GET %s: %v", types.ErrUpstreamFetch, path, err)
	}
	defer resp.Body.Close()

	r.logger.Debug().
		Str("method", http.MethodGet).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("cloudability request")

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: reading %s response: %v", types.ErrUpstreamFetch, path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: GET %s returned %d: %s", types.ErrUpstreamFetch, path, resp.StatusCode, truncate(body, 200))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: decoding %s response: %v", types.ErrUpstreamFetch, path, err)
	}
	return nil
}

func truncate(b []byte, n int) string {
	s := strings.TrimSpace(string(b))
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
