package entity

// MappingStatement is one rule of a business-mapping dimension.
type MappingStatement struct {
	MatchExpression string `json:"matchExpression"`
	ValueExpression string `json:"valueExpression"`
}

// BusinessMapping is a business-mapping dimension definition.
type BusinessMapping struct {
	Index        int                `json:"index"`
	Name         string             `json:"name"`
	DefaultValue string             `json:"defaultValue,omitempty"`
	Statements   []MappingStatement `json:"statements"`
}

// TeamLookup maps a tag value to the business label (team, cost center) it belongs to.
type TeamLookup map[string]string
