package types

import "errors"

var (
	ErrUpstreamFetch              = errors.New("cost API fetch failed")
	ErrMappingLookup              = errors.New("mapping lookup failed")
	ErrUnsupportedMatchExpression = errors.New("unsupported business mapping match expression")
	ErrTicketSubmission           = errors.New("ticket submission failed")
	ErrInvalidConfig              = errors.New("invalid configuration")
)
