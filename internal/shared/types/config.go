package types

import (
	"fmt"
	"strings"
)

// CloudabilityConfig holds the cost-management API settings.
type CloudabilityConfig struct {
	BaseURL string `json:"base_url" yaml:"base_url" toml:"base_url"`
	APIKey  string `json:"api_key" yaml:"api_key" toml:"api_key"`
}

// BusinessMappingConfig selects the business-mapping dimension and the tag it is keyed on.
type BusinessMappingConfig struct {
	DimensionIndex int    `json:"dimension_index" yaml:"dimension_index" toml:"dimension_index"`
	TagKey         string `json:"tag_key" yaml:"tag_key" toml:"tag_key"`
}

// RecommendationsConfig holds the right-sizing query parameters.
type RecommendationsConfig struct {
	Basis              string  `json:"basis" yaml:"basis" toml:"basis"`
	Duration           string  `json:"duration" yaml:"duration" toml:"duration"`
	Limit              int     `json:"limit" yaml:"limit" toml:"limit"`
	MaxRecsPerResource int     `json:"max_recs_per_resource" yaml:"max_recs_per_resource" toml:"max_recs_per_resource"`
	Rank               string  `json:"rank" yaml:"rank" toml:"rank"`
	Sort               string  `json:"sort" yaml:"sort" toml:"sort"`
	MinSavings         float64 `json:"min_savings" yaml:"min_savings" toml:"min_savings"`
}

// JiraConfig holds the issue-tracker settings.
// SavingsField, when set, is the custom field ID (e.g. customfield_10200) that receives
// the raw savings amount.
type JiraConfig struct {
	URL          string `json:"url" yaml:"url" toml:"url"`
	Username     string `json:"username" yaml:"username" toml:"username"`
	Password     string `json:"password" yaml:"password" toml:"password"`
	ProjectKey   string `json:"project_key" yaml:"project_key" toml:"project_key"`
	IssueType    string `json:"issue_type" yaml:"issue_type" toml:"issue_type"`
	SavingsField string `json:"savings_field" yaml:"savings_field" toml:"savings_field"`
}

// AWSConfig controls the optional EC2 instance verification.
type AWSConfig struct {
	VerifyInstances bool     `json:"verify_instances" yaml:"verify_instances" toml:"verify_instances"`
	Profile         string   `json:"profile" yaml:"profile" toml:"profile"`
	Regions         []string `json:"regions" yaml:"regions" toml:"regions"`
}

// ReportConfig controls the run report export.
type ReportConfig struct {
	Name  string   `json:"name" yaml:"name" toml:"name"`
	Types []string `json:"types" yaml:"types" toml:"types"`
	Dir   string   `json:"dir" yaml:"dir" toml:"dir"`
}

// Config represents the application configuration that can be loaded from a file.
type Config struct {
	Cloudability    CloudabilityConfig    `json:"cloudability" yaml:"cloudability" toml:"cloudability"`
	BusinessMapping BusinessMappingConfig `json:"business_mapping" yaml:"business_mapping" toml:"business_mapping"`
	Recommendations RecommendationsConfig `json:"recommendations" yaml:"recommendations" toml:"recommendations"`
	Jira            JiraConfig            `json:"jira" yaml:"jira" toml:"jira"`
	AWS             AWSConfig             `json:"aws" yaml:"aws" toml:"aws"`
	Report          ReportConfig          `json:"report" yaml:"report" toml:"report"`
	DryRun          bool                  `json:"dry_run" yaml:"dry_run" toml:"dry_run"`
}

// DefaultConfig returns the settings the tool runs with when nothing is configured.
func DefaultConfig() *Config {
	return &Config{
		Cloudability: CloudabilityConfig{
			BaseURL: "https://api.cloudability.com",
		},
		BusinessMapping: BusinessMappingConfig{
			DimensionIndex: 3,
			TagKey:         "Role",
		},
		Recommendations: RecommendationsConfig{
			Basis:              "effective",
			Duration:           "thirty-day",
			Limit:              10,
			MaxRecsPerResource: 1,
			Rank:               "default",
			Sort:               "-recommendations.savings",
			MinSavings:         1000,
		},
		Jira: JiraConfig{
			URL:        "http://localhost:8080",
			ProjectKey: "CLOUD",
			IssueType:  "Change",
		},
		Report: ReportConfig{
			Types: []string{"csv"},
		},
	}
}

// Merge overlays every non-zero field of other onto c.
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	setString(&c.Cloudability.BaseURL, other.Cloudability.BaseURL)
	setString(&c.Cloudability.APIKey, other.Cloudability.APIKey)

	setInt(&c.BusinessMapping.DimensionIndex, other.BusinessMapping.DimensionIndex)
	setString(&c.BusinessMapping.TagKey, other.BusinessMapping.TagKey)

	r := other.Recommendations
	setString(&c.Recommendations.Basis, r.Basis)
	setString(&c.Recommendations.Duration, r.Duration)
	setInt(&c.Recommendations.Limit, r.Limit)
	setInt(&c.Recommendations.MaxRecsPerResource, r.MaxRecsPerResource)
	setString(&c.Recommendations.Rank, r.Rank)
	setString(&c.Recommendations.Sort, r.Sort)
	if r.MinSavings != 0 {
		c.Recommendations.MinSavings = r.MinSavings
	}

	j := other.Jira
	setString(&c.Jira.URL, j.URL)
	setString(&c.Jira.Username, j.Username)
	setString(&c.Jira.Password, j.Password)
	setString(&c.Jira.ProjectKey, j.ProjectKey)
	setString(&c.Jira.IssueType, j.IssueType)
	setString(&c.Jira.SavingsField, j.SavingsField)

	c.AWS.VerifyInstances = c.AWS.VerifyInstances || other.AWS.VerifyInstances
	setString(&c.AWS.Profile, other.AWS.Profile)
	if len(other.AWS.Regions) > 0 {
		c.AWS.Regions = other.AWS.Regions
	}

	setString(&c.Report.Name, other.Report.Name)
	setString(&c.Report.Dir, other.Report.Dir)
	if len(other.Report.Types) > 0 {
		c.Report.Types = other.Report.Types
	}

	c.DryRun = c.DryRun || other.DryRun
}

// Validate checks the settings a run cannot do without.
func (c *Config) Validate() error {
	var problems []string

	if c.Cloudability.BaseURL == "" {
		problems = append(problems, "cloudability base URL is empty")
	}
	if c.Cloudability.APIKey == "" {
		problems = append(problems, "cloudability API key is empty (set --api-key or CLDY_API_KEY)")
	}
	if strings.TrimSpace(c.BusinessMapping.TagKey) == "" {
		problems = append(problems, "business mapping tag key is empty")
	}
	if c.Recommendations.Limit <= 0 {
		problems = append(problems, fmt.Sprintf("recommendation limit must be positive, got %d", c.Recommendations.Limit))
	}
	if !c.DryRun {
		if c.Jira.URL == "" {
			problems = append(problems, "jira URL is empty")
		}
		if c.Jira.ProjectKey == "" {
			problems = append(problems, "jira project key is empty")
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}
