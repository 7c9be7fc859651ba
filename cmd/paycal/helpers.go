package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/Veraticus/paycal/internal/budget"
	"github.com/Veraticus/paycal/internal/cli"
	"github.com/Veraticus/paycal/internal/common"
	"github.com/Veraticus/paycal/internal/config"
	"github.com/Veraticus/paycal/internal/recurrence"
	"github.com/Veraticus/paycal/internal/storage"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// now is the only wall-clock read in paycal. Tests replace it.
var now = time.Now

// app bundles what a command needs.
type app struct {
	cfg   *config.Config
	store *storage.SQLiteStorage
	svc   *budget.Service
	cal   recurrence.Calendar
}

// initStorage opens the configured database and runs pending migrations.
func initStorage(ctx context.Context, cfg *config.Config) (*storage.SQLiteStorage, error) {
	store, err := storage.NewSQLiteStorage(cfg.DatabasePath, storage.WithLocation(cfg.Location))
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// initApp loads configuration and opens storage and the budget service.
// Callers must Close the returned app.
func initApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, err
	}

	store, err := initStorage(ctx, cfg)
	if err != nil {
		return nil, err
	}

	cal := recurrence.NewCalendar(cfg.Location)
	slog.Debug("opened database", "path", store.Path(), "timezone", cal.Location().String())

	return &app{
		cfg:   cfg,
		store: store,
		cal:   cal,
		svc:   budget.NewService(store, cal, cfg.PaydayLenient),
	}, nil
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		slog.Warn("failed to close database", "error", err)
	}
}

// today is read once per command and passed down.
func (a *app) today() time.Time {
	return a.cal.StartOfDay(now())
}

// parseDate reads a YYYY-MM-DD civil date in the calendar's zone.
func (a *app) parseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(time.DateOnly, strings.TrimSpace(s), a.cal.Location())
	if err != nil {
		return time.Time{}, common.NewUserError(fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", s), err)
	}
	return t, nil
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, common.NewUserError(fmt.Sprintf("invalid id %q", s), err)
	}
	return id, nil
}

// parseMoney accepts "1234.50", "$1,234.50" and "-12".
func parseMoney(s string) (decimal.Decimal, error) {
	clean := strings.NewReplacer("$", "", ",", "", " ", "").Replace(s)
	d, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Zero, common.NewUserError(fmt.Sprintf("invalid amount %q", s), err)
	}
	return d, nil
}

// parseWeekday accepts a day name ("friday", "fri") or 1 (Sunday) to 7.
func parseWeekday(s string) (int, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if n, err := strconv.Atoi(s); err == nil {
		if n < 1 || n > 7 {
			return 0, common.NewUserError(fmt.Sprintf("invalid weekday %q", s), recurrence.ErrInvalidWeekday)
		}
		return n, nil
	}
	for d := time.Sunday; d <= time.Saturday; d++ {
		name := strings.ToLower(d.String())
		if s == name || (len(s) >= 3 && strings.HasPrefix(name, s)) {
			return int(d) + 1, nil
		}
	}
	return 0, common.NewUserError(fmt.Sprintf("invalid weekday %q", s), recurrence.ErrInvalidWeekday)
}

func weekdayName(w int) string {
	return time.Weekday(w - 1).String()
}

// newTable returns a tabwriter with a styled header row.
func newTable(out io.Writer, headers ...string) *tabwriter.Writer {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	styled := make([]string, len(headers))
	rules := make([]string, len(headers))
	for i, h := range headers {
		styled[i] = cli.TableHeaderStyle.Render(h)
		rules[i] = strings.Repeat("-", max(len(h), 4))
	}
	fmt.Fprintln(w, strings.Join(styled, "\t"))
	fmt.Fprintln(w, strings.Join(rules, "\t"))
	return w
}
