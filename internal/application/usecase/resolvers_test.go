package usecase

import (
	"testing"

	"github.com/diillson/rightsizing-tickets/internal/domain/entity"
	"github.com/diillson/rightsizing-tickets/internal/shared/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveAccounts_LastWriteWins(t *testing.T) {
	directory := ResolveAccounts([]entity.Account{
		{VendorAccountID: "123", VendorAccountName: "Prod"},
		{VendorAccountID: "456", VendorAccountName: "Dev"},
		{VendorAccountID: "123", VendorAccountName: "Production"},
	})

	assert.Equal(t, entity.AccountDirectory{"123": "Production", "456": "Dev"}, directory)
}

func TestResolveAccounts_Empty(t *testing.T) {
	assert.Empty(t, ResolveAccounts(nil))
}

func TestResolveTeams(t *testing.T) {
	mapping := entity.BusinessMapping{
		Name: "Cost Center",
		Statements: []entity.MappingStatement{
			{MatchExpression: "TAG['Role'] == 'payments'", ValueExpression: "'FinOps Team'"},
			{MatchExpression: "TAG['Role'] == 'web' || TAG['Role'] == 'api'", ValueExpression: "'Platform'"},
			{MatchExpression: "TAG['Role'] == 'payments'", ValueExpression: "'Payments Team'"},
		},
	}

	teams, err := ResolveTeams(mapping, newParser(t))
	require.NoError(t, err)
	assert.Equal(t, entity.TeamLookup{
		"payments": "Payments Team",
		"web":      "Platform",
		"api":      "Platform",
	}, teams)
}

func TestResolveTeams_RejectsUnrecognizedShape(t *testing.T) {
	mapping := entity.BusinessMapping{
		Name: "Cost Center",
		Statements: []entity.MappingStatement{
			{MatchExpression: "TAG['Role'] == 'payments'", ValueExpression: "'FinOps Team'"},
			{MatchExpression: "TAG['Role'] == 'web' && TAG['Env'] == 'prod'", ValueExpression: "'Platform'"},
		},
	}

	_, err := ResolveTeams(mapping, newParser(t))
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrUnsupportedMatchExpression)
	assert.Contains(t, err.Error(), "statement 1")
}
