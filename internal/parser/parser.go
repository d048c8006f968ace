// Package parser turns free-text entries such as "コンビニでパン 300円" into
// structured expenses and incomes.
package parser

import (
	"regexp"
	"strings"

	"moneylite/internal/core"
)

// amountPattern matches the first run of (full- or half-width) digits with
// optional thousands separators and an optional trailing 円.
var amountPattern = regexp.MustCompile(`[0-9０-９][0-9０-９,，]*\s*円?`)

// Parser extracts amounts and classifies items by keyword.
type Parser struct {
	rules []Rule
}

// New returns a parser using the given rules, or DefaultRules when none are
// supplied.
func New(rules ...Rule) *Parser {
	if len(rules) == 0 {
		rules = DefaultRules
	}
	return &Parser{rules: rules}
}

// splitAmount returns the text with the amount removed and the amount itself.
// Text without digits yields amount 0; digits that do not fit an int64
// yield core.ErrInvalidAmount.
func splitAmount(text string) (string, int64, error) {
	match := amountPattern.FindString(text)
	if match == "" {
		return strings.TrimSpace(text), 0, nil
	}
	amount, err := core.ParseYen(match)
	if err != nil {
		return "", 0, err
	}
	rest := strings.TrimSpace(strings.ReplaceAll(text, match, ""))
	return rest, amount, nil
}

// Classify returns the category of an item.
func (p *Parser) Classify(item string) string {
	for _, rule := range p.rules {
		for _, kw := range rule.Keywords {
			if strings.Contains(item, kw) {
				return rule.Category
			}
		}
	}
	return DefaultCategory
}

// ParseExpense extracts item, price and category from free text.
func (p *Parser) ParseExpense(text string) (core.NewExpense, error) {
	if strings.TrimSpace(text) == "" {
		return core.NewExpense{}, core.ErrEmptyText
	}
	item, price, err := splitAmount(text)
	if err != nil {
		return core.NewExpense{}, err
	}
	e := core.NewExpense{
		Item:     item,
		Category: p.Classify(item),
		Price:    price,
	}
	if err := e.Validate(); err != nil {
		return core.NewExpense{}, err
	}
	return e, nil
}

// ParseIncome extracts source and amount from free text.
func (p *Parser) ParseIncome(text string) (core.NewIncome, error) {
	if strings.TrimSpace(text) == "" {
		return core.NewIncome{}, core.ErrEmptyText
	}
	source, amount, err := splitAmount(text)
	if err != nil {
		return core.NewIncome{}, err
	}
	i := core.NewIncome{Source: source, Amount: amount}
	if err := i.Validate(); err != nil {
		return core.NewIncome{}, err
	}
	return i, nil
}
