package entity

import "encoding/json"

// TagMapping is a resource tag as reported with a recommendation.
type TagMapping struct {
	TagName        string `json:"tagName"`
	VendorTagValue string `json:"vendorTagValue"`
}

// RecommendedAction is one ranked right-sizing alternative for a resource.
// Amounts keep the textual form returned by the API.
type RecommendedAction struct {
	Action     string      `json:"action"`
	Savings    json.Number `json:"savings"`
	SavingsPct json.Number `json:"savingsPct"`
	NodeType   string      `json:"nodeType"`
}

// Recommendation is an EC2 right-sizing record.
type Recommendation struct {
	ResourceIdentifier string              `json:"resourceIdentifier"`
	Name               string              `json:"name"`
	VendorAccountID    string              `json:"vendorAccountId"`
	Region             string              `json:"region,omitempty"`
	NodeType           string              `json:"nodeType"`
	OS                 string              `json:"os"`
	TotalSpend         json.Number         `json:"totalSpend"`
	TagMappings        []TagMapping        `json:"tagMappings"`
	Recommendations    []RecommendedAction `json:"recommendations"`
}

// RecommendationQuery holds the filter, sort and page parameters of a recommendations fetch.
type RecommendationQuery struct {
	Basis              string
	Duration           string
	Limit              int
	Offset             int
	MaxRecsPerResource int
	Rank               string
	Sort               string
	MinSavings         float64
}
