package usecase

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/diillson/rightsizing-tickets/internal/domain/entity"
	"github.com/diillson/rightsizing-tickets/internal/shared/types"
)

// Jira wiki markup needs a blank line between description lines.
const lineBreak = "\r\n\r\n"

// BuildTicket turns one recommendation into a ticket. Only the first ranked action is
// used. The account and the tagKey tag must both resolve; there is no fallback label.
func BuildTicket(
	rec entity.Recommendation,
	accounts entity.AccountDirectory,
	teams entity.TeamLookup,
	tagKey string,
) (entity.Ticket, error) {
	accountName, ok := accounts[rec.VendorAccountID]
	if !ok {
		return entity.Ticket{}, fmt.Errorf("%w: account %q of resource %s is not in the account list",
			types.ErrMappingLookup, rec.VendorAccountID, rec.ResourceIdentifier)
	}

	tagValue, ok := lookupTag(rec.TagMappings, tagKey)
	if !ok {
		return entity.Ticket{}, fmt.Errorf("%w: resource %s has no %q tag",
			types.ErrMappingLookup, rec.ResourceIdentifier, tagKey)
	}

	teamName, ok := teams[tagValue]
	if !ok {
		return entity.Ticket{}, fmt.Errorf("%w: %s tag value %q of resource %s has no business mapping",
			types.ErrMappingLookup, tagKey, tagValue, rec.ResourceIdentifier)
	}

	if len(rec.Recommendations) == 0 {
		return entity.Ticket{}, fmt.Errorf("%w: resource %s has no recommended action",
			types.ErrMappingLookup, rec.ResourceIdentifier)
	}
	action := rec.Recommendations[0]

	currentSpend, err := amount(rec.TotalSpend, "totalSpend", rec.ResourceIdentifier)
	if err != nil {
		return entity.Ticket{}, err
	}
	savings, err := amount(action.Savings, "savings", rec.ResourceIdentifier)
	if err != nil {
		return entity.Ticket{}, err
	}
	optimized := OptimizedSpend(currentSpend, savings)

	summary := fmt.Sprintf(
		"Apptio Cloudability Recommendations: %s AWS EC2 Resource ID %s (Account Name: %s) from %s to %s to achieve 30-days cost savings of $%s (%s%%).",
		action.Action, rec.ResourceIdentifier, accountName, rec.NodeType, action.NodeType,
		action.Savings.String(), action.SavingsPct.String(),
	)

	var b strings.Builder
	b.WriteString("*Details of Recommendations*" + lineBreak)
	writeLine(&b, "Service Name", "AWS EC2")
	writeLine(&b, "Team Name", teamName)
	writeLine(&b, "Resource Name", rec.Name)
	writeLine(&b, "Resource ID", rec.ResourceIdentifier)
	writeLine(&b, "Account ID", rec.VendorAccountID)
	writeLine(&b, "Account Name", accountName)
	writeLine(&b, "Recommended Action", action.Action)
	writeLine(&b, "Current Instance Size", rec.NodeType)
	writeLine(&b, "Recommended Instance Size", action.NodeType)
	writeLine(&b, "Operating System", rec.OS)
	b.WriteString("\r\n----\r\n*Financial Summary*" + lineBreak)
	writeLine(&b, "Cost before recommendation", "$"+rec.TotalSpend.String())
	writeLine(&b, "Cost after recommendation", "$"+FormatAmount(optimized))
	writeLine(&b, "Cost saving amount", "$"+action.Savings.String())
	writeLine(&b, "Cost saving percentage", action.SavingsPct.String()+"%")
	b.WriteString("----\r\n*Resource Tags Summary*" + lineBreak)
	for _, tag := range rec.TagMappings {
		writeLine(&b, tag.TagName, tag.VendorTagValue)
	}

	return entity.Ticket{
		ResourceID:     rec.ResourceIdentifier,
		ResourceName:   rec.Name,
		AccountID:      rec.VendorAccountID,
		AccountName:    accountName,
		TeamName:       teamName,
		Region:         rec.Region,
		Summary:        summary,
		Description:    b.String(),
		CurrentSpend:   currentSpend,
		Savings:        savings,
		OptimizedSpend: optimized,
	}, nil
}

// OptimizedSpend is the spend left after applying the savings, rounded to cents.
// Ties round to even on the binary value.
func OptimizedSpend(currentSpend, savings float64) float64 {
	rounded, _ := strconv.ParseFloat(strconv.FormatFloat(currentSpend-savings, 'f', 2, 64), 64)
	return rounded
}

// FormatAmount prints a computed amount with at least one decimal, e.g. 350.0 or 12.35.
func FormatAmount(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// lookupTag returns the value of the last tag named key.
func lookupTag(tags []entity.TagMapping, key string) (string, bool) {
	var (
		value string
		found bool
	)
	for _, tag := range tags {
		if tag.TagName == key {
			value, found = tag.VendorTagValue, true
		}
	}
	return value, found
}

func amount(n json.Number, field, resourceID string) (float64, error) {
	v, err := n.Float64()
	if err != nil {
		return 0, fmt.Errorf("%w: resource %s has no usable %s (%q)", types.ErrMappingLookup, resourceID, field, n.String())
	}
	return v, nil
}

func writeLine(b *strings.Builder, label, value string) {
	b.WriteString(label)
	b.WriteString(": ")
	b.WriteString(value)
	b.WriteString(lineBreak)
}
