// Package ofx reads bank statements in OFX/QFX format.
package ofx

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/Veraticus/paycal/internal/model"
	"github.com/aclindsa/ofxgo"
	"github.com/shopspring/decimal"
)

var (
	severityRegex = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	tagFixRegex   = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
)

// LedgerBalance is the statement's closing balance.
type LedgerBalance struct {
	AsOf   time.Time
	Amount decimal.Decimal
}

// Statement is one account's section of an OFX file. Transactions carry no
// paycal account ID; the importer assigns one.
type Statement struct {
	Balance      *LedgerBalance
	AccountID    string // bank's account number
	Kind         string // CHECKING, SAVINGS, CREDITCARD, ...
	Transactions []model.Transaction
}

// Parser implements OFX/QFX file parsing.
type Parser struct {
	loc *time.Location
}

// NewParser creates a parser that places posting dates on civil days in
// loc. A nil loc means time.Local.
func NewParser(loc *time.Location) *Parser {
	if loc == nil {
		loc = time.Local
	}
	return &Parser{loc: loc}
}

// preprocessOFX fixes common formatting issues in OFX files.
func preprocessOFX(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")

	// Mixed-case SEVERITY values are rejected by ofxgo
	content = severityRegex.ReplaceAllStringFunc(content, strings.ToUpper)

	// SGML files sometimes drop the closing bracket of a bare opening tag
	return tagFixRegex.ReplaceAllString(content, "$1>")
}

// ParseFile parses an OFX/QFX file into one Statement per account.
func (p *Parser) ParseFile(ctx context.Context, reader io.Reader) ([]Statement, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(preprocessOFX(string(content))))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX file: %w", err)
	}

	var statements []Statement

	for _, msg := range resp.Bank {
		stmt, ok := msg.(*ofxgo.StatementResponse)
		if !ok {
			continue
		}
		s := Statement{
			AccountID: string(stmt.BankAcctFrom.AcctID),
			Kind:      stmt.BankAcctFrom.AcctType.String(),
			Balance:   p.ledgerBalance(stmt.BalAmt, stmt.DtAsOf),
		}
		if stmt.BankTranList != nil {
			s.Transactions = p.convertTransactions(stmt.BankTranList.Transactions)
		}
		statements = append(statements, s)
	}

	for _, msg := range resp.CreditCard {
		stmt, ok := msg.(*ofxgo.CCStatementResponse)
		if !ok {
			continue
		}
		s := Statement{
			AccountID: string(stmt.CCAcctFrom.AcctID),
			Kind:      "CREDITCARD",
			Balance:   p.ledgerBalance(stmt.BalAmt, stmt.DtAsOf),
		}
		if stmt.BankTranList != nil {
			s.Transactions = p.convertTransactions(stmt.BankTranList.Transactions)
		}
		statements = append(statements, s)
	}

	total := 0
	for _, s := range statements {
		total += len(s.Transactions)
	}
	slog.Info("parsed OFX file",
		"statements", len(statements),
		"transactions", total)

	return statements, nil
}

func (p *Parser) ledgerBalance(amount ofxgo.Amount, asOf ofxgo.Date) *LedgerBalance {
	if asOf.IsZero() {
		return nil
	}
	bal, err := toDecimal(amount)
	if err != nil {
		slog.Warn("ignoring unreadable ledger balance", "error", err)
		return nil
	}
	return &LedgerBalance{Amount: bal, AsOf: p.civilDay(asOf.Time)}
}

func (p *Parser) convertTransactions(in []ofxgo.Transaction) []model.Transaction {
	out := make([]model.Transaction, 0, len(in))
	for _, ofxTx := range in {
		amount, err := toDecimal(ofxTx.TrnAmt)
		if err != nil {
			slog.Warn("skipping transaction with unreadable amount",
				"fitid", string(ofxTx.FiTID),
				"error", err)
			continue
		}
		out = append(out, model.Transaction{
			Date:        p.civilDay(ofxTx.DtPosted.Time),
			Description: description(ofxTx),
			Amount:      amount,
			FITID:       string(ofxTx.FiTID),
		})
	}
	return out
}

// civilDay keeps the calendar date as the bank reported it, at midnight in
// the parser's zone.
func (p *Parser) civilDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, p.loc)
}

func toDecimal(a ofxgo.Amount) (decimal.Decimal, error) {
	return decimal.NewFromString(a.FloatString(4))
}

// description picks the cleanest human-readable label for a transaction.
func description(tx ofxgo.Transaction) string {
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
		"DEBIT PURCHASE ",
	}
	for _, prefix := range prefixes {
		if strings.HasPrefix(strings.ToUpper(name), prefix) {
			name = name[len(prefix):]
			break
		}
	}

	// Leading "MM/DD " posting dates
	if len(name) > 5 && name[2] == '/' && name[5] == ' ' {
		name = strings.TrimSpace(name[6:])
	}

	if name == "" {
		return fmt.Sprintf("%v", tx.TrnType)
	}
	return name
}

func isGenericDescription(name string) bool {
	switch strings.ToUpper(name) {
	case "DEBIT", "CREDIT", "PURCHASE", "PAYMENT", "POS TRANSACTION", "CARD PURCHASE":
		return true
	}
	return false
}
