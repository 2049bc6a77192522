// Package ofx imports bank and credit card statements as expenses.
package ofx

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"

	"github.com/aclindsa/ofxgo"
	"github.com/shopspring/decimal"

	"github.com/Veraticus/spent/internal/llm"
	"github.com/Veraticus/spent/internal/model"
)

var (
	severityRegex = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	tagFixRegex   = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
)

// RawInputPrefix marks the raw input of imported expenses.
const RawInputPrefix = "ofx:"

// Imported is one debit from a statement, ready to be stored.
type Imported struct {
	Expense  model.ValidatedExpense
	RawInput string
	FitID    string
}

// Parser converts OFX/QFX statements into expenses.
type Parser struct {
	logger *slog.Logger
}

// NewParser creates a new OFX parser.
func NewParser(logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{logger: logger}
}

// preprocessOFX fixes common formatting issues in OFX files.
func preprocessOFX(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")

	// SEVERITY must be upper case.
	content = severityRegex.ReplaceAllStringFunc(content, strings.ToUpper)

	// Some SGML exports leave opening tags without their closing bracket.
	content = tagFixRegex.ReplaceAllString(content, "$1>")

	return content
}

// Parse reads a statement and returns its debits. Credits are skipped, and a
// transaction id seen twice in the same file is imported once.
func (p *Parser) Parse(ctx context.Context, reader io.Reader) ([]Imported, error) {
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(preprocessOFX(string(content))))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX file: %w", err)
	}

	var lists []*ofxgo.TransactionList
	for _, msg := range resp.Bank {
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok && stmt.BankTranList != nil {
			lists = append(lists, stmt.BankTranList)
		}
	}
	for _, msg := range resp.CreditCard {
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok && stmt.BankTranList != nil {
			lists = append(lists, stmt.BankTranList)
		}
	}

	var (
		imported []Imported
		skipped  int
	)
	seen := make(map[string]bool)
	for _, list := range lists {
		for _, tx := range list.Transactions {
			item, ok := p.convert(tx)
			if !ok || seen[item.FitID] {
				skipped++
				continue
			}
			seen[item.FitID] = true
			imported = append(imported, item)
		}
	}

	p.logger.Info("Parsed OFX file",
		"statements", len(lists),
		"imported", len(imported),
		"skipped", skipped)

	return imported, nil
}

// convert turns a debit into an expense. It reports false for credits and
// transactions that fail validation.
func (p *Parser) convert(tx ofxgo.Transaction) (Imported, bool) {
	amount, err := decimal.NewFromString(tx.TrnAmt.FloatString(2))
	if err != nil || !amount.IsNegative() {
		return Imported{}, false
	}

	description := extractMerchantName(tx)
	item := Imported{
		FitID:    string(tx.FiTID),
		RawInput: fmt.Sprintf("%s%s %s", RawInputPrefix, tx.FiTID, strings.TrimSpace(string(tx.Name))),
		Expense: model.ValidatedExpense{
			Amount:      amount.Abs(),
			Description: description,
			Category:    llm.GuessCategory(description),
			Date:        model.Day(tx.DtPosted.Time),
		},
	}
	if err := item.Expense.Validate(); err != nil {
		p.logger.Debug("Skipping OFX transaction", "fitid", item.FitID, "error", err)
		return Imported{}, false
	}
	return item, true
}

// extractMerchantName tries to get a clean merchant name from OFX data.
func extractMerchantName(tx ofxgo.Transaction) string {
	if tx.Payee != nil && tx.Payee.Name != "" {
		return strings.TrimSpace(string(tx.Payee.Name))
	}

	name := strings.TrimSpace(string(tx.Name))
	if tx.Memo != "" && isGenericDescription(name) {
		name = strings.TrimSpace(string(tx.Memo))
	}

	prefixes := []string{
		"POS PURCHASE ",
		"PURCHASE AUTHORIZED ON ",
		"DEBIT CARD PURCHASE ",
		"ACH DEBIT ",
		"CHECK CARD ",
		"VISA PURCHASE ",
		"MC PURCHASE ",
		"DEBIT PURCHASE ",
	}
	for _, prefix := range prefixes {
		if strings.HasPrefix(strings.ToUpper(name), prefix) {
			name = name[len(prefix):]
			break
		}
	}

	// Leading "MM/DD " dates.
	if len(name) > 5 && name[2] == '/' && name[5] == ' ' {
		name = strings.TrimSpace(name[6:])
	}

	return name
}

// isGenericDescription checks if a transaction name is too generic.
func isGenericDescription(name string) bool {
	switch strings.ToUpper(name) {
	case "DEBIT", "CREDIT", "PURCHASE", "PAYMENT", "POS TRANSACTION", "CARD PURCHASE":
		return true
	}
	return false
}
