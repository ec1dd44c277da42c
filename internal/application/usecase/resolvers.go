package usecase

import (
	"fmt"

	"github.com/diillson/rightsizing-tickets/internal/domain/entity"
)

// ResolveAccounts builds the account directory. Duplicate IDs keep the last name seen.
func ResolveAccounts(accounts []entity.Account) entity.AccountDirectory {
	directory := make(entity.AccountDirectory, len(accounts))
	for _, account := range accounts {
		directory[account.VendorAccountID] = account.VendorAccountName
	}
	return directory
}

// ResolveTeams flattens a business-mapping dimension into a tag value to label lookup.
// Statements are applied in order, so a tag value matched twice keeps the later label.
// The first statement the parser rejects aborts the whole lookup.
func ResolveTeams(mapping entity.BusinessMapping, parser *MatchExpressionParser) (entity.TeamLookup, error) {
	teams := make(entity.TeamLookup, len(mapping.Statements))
	for i, statement := range mapping.Statements {
		values, err := parser.MatchValues(statement.MatchExpression)
		if err != nil {
			return nil, fmt.Errorf("business mapping %q statement %d: %w", mapping.Name, i, err)
		}

		label, err := parser.LabelValue(statement.ValueExpression)
		if err != nil {
			return nil, fmt.Errorf("business mapping %q statement %d: %w", mapping.Name, i, err)
		}

		for _, value := range values {
			teams[value] = label
		}
	}
	return teams, nil
}
