package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Veraticus/paycal/internal/budget"
	"github.com/Veraticus/paycal/internal/common"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newCLI returns a runner that executes paycal commands against a fresh
// database, with the clock pinned to 2024-03-05 UTC.
func newCLI(t *testing.T) func(stdin string, args ...string) (string, error) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("PAYCAL_DATABASE_PATH", filepath.Join(dir, "paycal.db"))
	t.Setenv("PAYCAL_CALENDAR_TIMEZONE", "UTC")

	prevNow := now
	now = func() time.Time { return time.Date(2024, 3, 5, 12, 30, 0, 0, time.UTC) }
	t.Cleanup(func() { now = prevNow })

	return func(stdin string, args ...string) (string, error) {
		viper.Reset()
		cfgFile = ""

		root := newRootCmd()
		var out bytes.Buffer
		root.SetOut(&out)
		root.SetErr(io.Discard)
		root.SetIn(strings.NewReader(stdin))
		root.SetArgs(append([]string{"--log-level", "error"}, args...))

		err := root.ExecuteContext(context.Background())
		return out.String(), err
	}
}

func TestVersion(t *testing.T) {
	run := newCLI(t)
	out, err := run("", "version")
	require.NoError(t, err)
	assert.Equal(t, "paycal dev\n", out)
}

func TestBudgetFlow(t *testing.T) {
	run := newCLI(t)

	out, err := run("", "accounts", "add", "Checking", "--balance", "$1,000")
	require.NoError(t, err)
	assert.Contains(t, out, `Created account 1 "Checking" with balance $1,000.00 (primary)`)

	out, err = run("", "payday", "set", "--frequency", "monthly", "--reference", "2024-01-15")
	require.NoError(t, err)
	assert.Contains(t, out, "monthly on the 15th")
	assert.Contains(t, out, "Fri Mar 15, 2024 (10 days)")

	_, err = run("", "bills", "add", "Rent", "--amount", "800", "--due", "2024-03-10")
	require.NoError(t, err)

	out, err = run("", "budget")
	require.NoError(t, err)
	assert.Contains(t, out, "$1,000.00")
	assert.Contains(t, out, "$100.00")
	assert.Contains(t, out, "$800.00 in bills due before payday")

	out, err = run("", "bills", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Rent")
	assert.Contains(t, out, "due soon")

	out, err = run("", "bills", "pay", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Paid Rent $800.00 (due 2024-03-10)")
	assert.Contains(t, out, "$200.00")
	assert.Contains(t, out, "2024-04-10")

	out, err = run("", "calendar", "--month", "2024-04")
	require.NoError(t, err)
	assert.Contains(t, out, "April 2024")
	assert.Contains(t, out, "Apr 10  Rent")
	assert.Contains(t, out, "Apr 15  payday")
}

func TestAccountsAdd_Duplicate(t *testing.T) {
	run := newCLI(t)
	_, err := run("", "accounts", "add", "Checking")
	require.NoError(t, err)

	_, err = run("", "accounts", "add", "Checking")
	assert.ErrorIs(t, err, common.ErrDuplicateEntry)
}

func TestBudget_PaydayNotConfigured(t *testing.T) {
	run := newCLI(t)
	_, err := run("", "accounts", "add", "Checking")
	require.NoError(t, err)

	_, err = run("", "budget")
	assert.ErrorIs(t, err, budget.ErrPaydayNotConfigured)
}

func TestPaydaySet_WeekdayFromReference(t *testing.T) {
	run := newCLI(t)

	// 2024-03-01 is a Friday.
	out, err := run("", "payday", "set", "--frequency", "biweekly", "--reference", "2024-03-01")
	require.NoError(t, err)
	assert.Contains(t, out, "every other Friday")

	out, err = run("", "payday", "next", "-n", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "2024-03-15")
	assert.Contains(t, out, "2024-03-29")

	out, err = run("", "payday", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "biweekly")
	assert.Contains(t, out, "Reference:   2024-03-01")
}

func TestPaydaySet_Invalid(t *testing.T) {
	run := newCLI(t)

	_, err := run("", "payday", "set", "--frequency", "biweekly", "--reference", "2024-03-01", "--weekday", "monday")
	assert.Error(t, err)

	_, err = run("", "payday", "set", "--frequency", "semimonthly", "--first-day", "15", "--second-day", "1")
	assert.Error(t, err)

	_, err = run("", "payday", "set", "--frequency", "hourly")
	assert.Error(t, err)
}

func TestAccountsDelete_Confirmation(t *testing.T) {
	run := newCLI(t)
	_, err := run("", "accounts", "add", "Checking")
	require.NoError(t, err)
	_, err = run("", "accounts", "add", "Savings")
	require.NoError(t, err)

	out, err := run("n\n", "accounts", "delete", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Canceled")

	out, err = run("y\n", "accounts", "delete", "1")
	require.NoError(t, err)
	assert.Contains(t, out, `Deleted account "Checking"`)

	out, err = run("", "accounts", "list")
	require.NoError(t, err)
	assert.NotContains(t, out, "Checking")
	assert.Contains(t, out, "Savings")
	assert.Contains(t, out, "✓", "remaining account was promoted to primary")
}

const importOFX = `OFXHEADER:100
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
<DTSERVER>20240301090000[0:GMT]
<LANGUAGE>ENG
</SONRS>
</SIGNONMSGSRSV1>
<BANKMSGSRSV1>
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
<DTSTART>20240201000000[0:GMT]
<DTEND>20240229235959[0:GMT]
<STMTTRN>
<TRNTYPE>CREDIT
<DTPOSTED>20240215080000[0:GMT]
<TRNAMT>2150.00
<FITID>P20240215
<NAME>ACME CORP PAYROLL
</STMTTRN>
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240218170000[0:GMT]
<TRNAMT>-64.37
<FITID>D20240218
<NAME>CORNER GROCER
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>2085.63
<DTASOF>20240229235959[0:GMT]
</LEDGERBAL>
</STMTRS>
</STMTTRNRS>
</BANKMSGSRSV1>
</OFX>`

func TestImportOFX(t *testing.T) {
	run := newCLI(t)
	_, err := run("", "accounts", "add", "Checking", "--balance", "5")
	require.NoError(t, err)

	file := filepath.Join(t.TempDir(), "checking.qfx")
	require.NoError(t, os.WriteFile(file, []byte(importOFX), 0o600))

	out, err := run("", "import-ofx", "--account", "1", "--dry-run", file)
	require.NoError(t, err)
	assert.Contains(t, out, "Would import 2 transactions")

	out, err = run("", "accounts", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "$5.00", "dry run saves nothing")

	out, err = run("", "import-ofx", "--account", "1", file)
	require.NoError(t, err)
	assert.Contains(t, out, `Imported 2 transactions into "Checking" (0 already present)`)
	assert.Contains(t, out, "$2,085.63")

	out, err = run("", "import-ofx", "--account", "1", file)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 0 transactions")
	assert.Contains(t, out, "(2 already present)")
}

func TestImportOFX_NoFiles(t *testing.T) {
	run := newCLI(t)
	_, err := run("", "import-ofx", "--account", "1", filepath.Join(t.TempDir(), "*.qfx"))
	assert.ErrorIs(t, err, errNoImportFiles)
}

func TestMigrateStatus(t *testing.T) {
	run := newCLI(t)

	out, err := run("", "migrate", "--status")
	require.NoError(t, err)
	assert.Contains(t, out, "Current version: 0")

	_, err = run("", "migrate")
	require.NoError(t, err)

	out, err = run("", "migrate", "--status")
	require.NoError(t, err)
	assert.Contains(t, out, "Current version: 3")
	assert.NotContains(t, out, "migrations pending")
}

func TestParseWeekday(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{in: "sunday", want: 1},
		{in: "Fri", want: 6},
		{in: "SATURDAY", want: 7},
		{in: "3", want: 3},
		{in: "0", wantErr: true},
		{in: "8", wantErr: true},
		{in: "fr", wantErr: true},
		{in: "someday", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseWeekday(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOrdinal(t *testing.T) {
	for n, want := range map[int]string{1: "1st", 2: "2nd", 3: "3rd", 4: "4th", 11: "11th", 12: "12th", 13: "13th", 21: "21st", 22: "22nd", 31: "31st"} {
		assert.Equal(t, want, ordinal(n))
	}
}

func TestParseMoney(t *testing.T) {
	for in, want := range map[string]string{"1234.5": "1234.5", "$1,234.50": "1234.5", "-12": "-12", " 7 ": "7"} {
		got, err := parseMoney(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got.String(), in)
	}
	_, err := parseMoney("abc")
	assert.Error(t, err)
}
