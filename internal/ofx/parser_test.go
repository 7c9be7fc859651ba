package ofx

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ofxHeader = `OFXHEADER:100
DATA:OFXSGML
VERSION:102
SECURITY:NONE
ENCODING:USASCII
CHARSET:1252
COMPRESSION:NONE
OLDFILEUID:NONE
NEWFILEUID:NONE

<OFX>
<SIGNONMSGSRSV1>
<SONRS>
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<DTSERVER>20240401090000[0:GMT]
<LANGUAGE>ENG
</SONRS>
</SIGNONMSGSRSV1>
`

const checkingOFX = ofxHeader + `<BANKMSGSRSV1>
<STMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<STMTRS>
<CURDEF>USD
<BANKACCTFROM>
<BANKID>021000021
<ACCTID>998877
<ACCTTYPE>CHECKING
</BANKACCTFROM>
<BANKTRANLIST>
<DTSTART>20240301000000[0:GMT]
<DTEND>20240331235959[0:GMT]
<STMTTRN>
<TRNTYPE>CREDIT
<DTPOSTED>20240315080000[0:GMT]
<TRNAMT>2150.00
<FITID>P20240315
<NAME>ACME CORP PAYROLL
</STMTTRN>
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240318170000[0:GMT]
<TRNAMT>-64.37
<FITID>D20240318
<NAME>POS PURCHASE CORNER GROCER
</STMTTRN>
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240320120000[0:GMT]
<TRNAMT>-30.00
<FITID>D20240320
<NAME>DEBIT
<MEMO>CITY WATER UTILITY
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>3120.45
<DTASOF>20240331235959[0:GMT]
</LEDGERBAL>
</STMTRS>
</STMTTRNRS>
</BANKMSGSRSV1>
</OFX>`

const cardOFX = ofxHeader + `<CREDITCARDMSGSRSV1>
<CCSTMTTRNRS>
<TRNUID>2
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<CCSTMTRS>
<CURDEF>USD
<CCACCTFROM>
<ACCTID>5500000000000004
</CCACCTFROM>
<BANKTRANLIST>
<DTSTART>20240301000000[0:GMT]
<DTEND>20240331235959[0:GMT]
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240302120000[0:GMT]
<TRNAMT>-12.99
<FITID>C1
<NAME>03/02 STREAMING SVC
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>-412.10
<DTASOF>20240331120000[0:GMT]
</LEDGERBAL>
</CCSTMTRS>
</CCSTMTTRNRS>
</CREDITCARDMSGSRSV1>
</OFX>`

func TestParseFile_Checking(t *testing.T) {
	parser := NewParser(time.UTC)

	statements, err := parser.ParseFile(context.Background(), strings.NewReader(checkingOFX))
	require.NoError(t, err)
	require.Len(t, statements, 1)

	stmt := statements[0]
	assert.Equal(t, "998877", stmt.AccountID)
	assert.Equal(t, "CHECKING", stmt.Kind)

	require.NotNil(t, stmt.Balance)
	assert.True(t, decimal.RequireFromString("3120.45").Equal(stmt.Balance.Amount))
	assert.Equal(t, time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC), stmt.Balance.AsOf)

	require.Len(t, stmt.Transactions, 3)

	payroll := stmt.Transactions[0]
	assert.Equal(t, "ACME CORP PAYROLL", payroll.Description)
	assert.True(t, decimal.RequireFromString("2150").Equal(payroll.Amount), "credits stay positive")
	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), payroll.Date)
	assert.Equal(t, "P20240315", payroll.FITID)
	assert.Zero(t, payroll.AccountID)

	grocer := stmt.Transactions[1]
	assert.Equal(t, "CORNER GROCER", grocer.Description)
	assert.True(t, decimal.RequireFromString("-64.37").Equal(grocer.Amount), "debits stay negative")

	assert.Equal(t, "CITY WATER UTILITY", stmt.Transactions[2].Description, "generic name falls back to memo")
}

func TestParseFile_CreditCard(t *testing.T) {
	statements, err := NewParser(time.UTC).ParseFile(context.Background(), strings.NewReader(cardOFX))
	require.NoError(t, err)
	require.Len(t, statements, 1)

	stmt := statements[0]
	assert.Equal(t, "CREDITCARD", stmt.Kind)
	require.NotNil(t, stmt.Balance)
	assert.True(t, decimal.RequireFromString("-412.10").Equal(stmt.Balance.Amount))
	require.Len(t, stmt.Transactions, 1)
	assert.Equal(t, "STREAMING SVC", stmt.Transactions[0].Description)
}

func TestParseFile_PostingDateKeepsBankDay(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*3600)
	statements, err := NewParser(tokyo).ParseFile(context.Background(), strings.NewReader(checkingOFX))
	require.NoError(t, err)

	// 17:00 GMT on the 18th is the 19th in Tokyo, but the bank said the 18th.
	assert.Equal(t, time.Date(2024, 3, 18, 0, 0, 0, 0, tokyo), statements[0].Transactions[1].Date)
}

func TestParseFile_Invalid(t *testing.T) {
	for name, data := range map[string]string{
		"garbage": "not valid OFX",
		"empty":   "",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := NewParser(time.UTC).ParseFile(context.Background(), strings.NewReader(data))
			assert.Error(t, err)
		})
	}
}

func TestParseFile_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewParser(nil).ParseFile(ctx, strings.NewReader(checkingOFX))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPreprocessOFX(t *testing.T) {
	in := "\n\n  <SEVERITY>Warn</SEVERITY>\n<STMTTRN\n"
	out := preprocessOFX(in)
	assert.True(t, strings.HasPrefix(out, "<SEVERITY>WARN</SEVERITY>"))
	assert.Contains(t, out, "<STMTTRN>\n")
}
