package usecase

import (
	"fmt"
	"strings"

	"github.com/diillson/rightsizing-tickets/internal/shared/types"
	"github.com/google/cel-go/cel"
	celast "github.com/google/cel-go/common/ast"
	"github.com/google/cel-go/common/operators"
)

// tagVariable is the identifier business-mapping expressions use for resource tags.
const tagVariable = "TAG"

// MatchExpressionParser reads business-mapping match expressions of the form
//
//	TAG['Role'] == 'payments'
//	TAG['Role'] == 'payments' || TAG['Role'] == 'billing'
//
// and returns the tag values they match. The expressions are valid CEL, so they are
// parsed and type-checked by cel-go and the resulting AST is walked. Anything other
// than equalities on the configured tag key joined by || is rejected.
type MatchExpressionParser struct {
	env    *cel.Env
	tagKey string
}

// NewMatchExpressionParser creates a parser for expressions keyed on tagKey.
func NewMatchExpressionParser(tagKey string) (*MatchExpressionParser, error) {
	env, err := cel.NewEnv(
		cel.Variable(tagVariable, cel.MapType(cel.StringType, cel.StringType)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}
	return &MatchExpressionParser{env: env, tagKey: tagKey}, nil
}

// MatchValues returns the tag values matched by expr, in expression order.
func (p *MatchExpressionParser) MatchValues(expr string) ([]string, error) {
	checked, issues := p.env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, p.unsupported(expr, issues.Err().Error())
	}

	var values []string
	if err := p.collect(expr, checked.NativeRep().Expr(), &values); err != nil {
		return nil, err
	}
	return values, nil
}

func (p *MatchExpressionParser) collect(expr string, e celast.Expr, out *[]string) error {
	if e.Kind() != celast.CallKind {
		return p.unsupported(expr, "expected a tag comparison")
	}

	call := e.AsCall()
	switch call.FunctionName() {
	case operators.LogicalOr:
		for _, arg := range call.Args() {
			if err := p.collect(expr, arg, out); err != nil {
				return err
			}
		}
		return nil
	case operators.Equals:
		lhs, rhs := call.Args()[0], call.Args()[1]
		if isIndex(rhs) && !isIndex(lhs) {
			// 'payments' == TAG['Role'] também é aceito.
			lhs, rhs = rhs, lhs
		}
		value, err := p.tagEquality(expr, lhs, rhs)
		if err != nil {
			return err
		}
		*out = append(*out, value)
		return nil
	default:
		return p.unsupported(expr, fmt.Sprintf("operator %s is not supported", displayOperator(call.FunctionName())))
	}
}

// tagEquality accepts TAG['<tagKey>'] on the left and a string literal on the right.
func (p *MatchExpressionParser) tagEquality(expr string, lhs, rhs celast.Expr) (string, error) {
	if !isIndex(lhs) {
		return "", p.unsupported(expr, "left side is not a tag lookup")
	}

	index := lhs.AsCall().Args()
	if index[0].Kind() != celast.IdentKind || index[0].AsIdent() != tagVariable {
		return "", p.unsupported(expr, "left side is not a tag lookup")
	}

	key, ok := stringLiteral(index[1])
	if !ok {
		return "", p.unsupported(expr, "tag name is not a string literal")
	}
	if key != p.tagKey {
		return "", p.unsupported(expr, fmt.Sprintf("tag %q is not the configured tag %q", key, p.tagKey))
	}

	value, ok := stringLiteral(rhs)
	if !ok {
		return "", p.unsupported(expr, "compared value is not a string literal")
	}
	return value, nil
}

// LabelValue returns the business label of a value expression. Quoted literals are
// unquoted and bare text is used as-is. Labels computed from tags cannot be resolved
// statically and are rejected.
func (p *MatchExpressionParser) LabelValue(expr string) (string, error) {
	trimmed := strings.TrimSpace(expr)

	parsed, issues := p.env.Parse(trimmed)
	if issues != nil && issues.Err() != nil {
		return trimmed, nil
	}

	e := parsed.NativeRep().Expr()
	if value, ok := stringLiteral(e); ok {
		return value, nil
	}
	if isIndex(e) {
		return "", p.unsupported(expr, "value expression reads a tag")
	}
	return trimmed, nil
}

func (p *MatchExpressionParser) unsupported(expr, reason string) error {
	return fmt.Errorf("%w: %q: %s", types.ErrUnsupportedMatchExpression, expr, reason)
}

func isIndex(e celast.Expr) bool {
	return e.Kind() == celast.CallKind && e.AsCall().FunctionName() == operators.Index
}

func stringLiteral(e celast.Expr) (string, bool) {
	if e.Kind() != celast.LiteralKind {
		return "", false
	}
	s, ok := e.AsLiteral().Value().(string)
	return s, ok
}

func displayOperator(fn string) string {
	if op, found := operators.FindReverse(fn); found {
		return op
	}
	return fn
}
