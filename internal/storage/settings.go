package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Veraticus/paycal/internal/common"
	"github.com/Veraticus/paycal/internal/model"
	"github.com/Veraticus/paycal/internal/recurrence"
)

// ErrPaydaySettingsNotFound is returned before payday settings are saved.
var ErrPaydaySettingsNotFound = fmt.Errorf("payday settings %w", common.ErrNotFound)

// GetPaydaySettings loads the saved payday configuration.
func (s *SQLiteStorage) GetPaydaySettings(ctx context.Context) (*model.PaydaySettings, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.getPaydaySettings(ctx, s.db)
}

func (s *SQLiteStorage) getPaydaySettings(ctx context.Context, q queryable) (*model.PaydaySettings, error) {
	var (
		settings  model.PaydaySettings
		frequency string
		reference sql.NullString
		weekday   sql.NullInt64
		first     sql.NullInt64
		second    sql.NullInt64
	)
	err := q.QueryRowContext(ctx, `
		SELECT frequency, reference_date, weekday, semi_monthly_first_day,
			semi_monthly_second_day, updated_at
		FROM payday_settings WHERE id = 1`,
	).Scan(&frequency, &reference, &weekday, &first, &second, &settings.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPaydaySettingsNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query payday settings: %w", err)
	}

	settings.Frequency = recurrence.Frequency(frequency)
	if reference.Valid && reference.String != "" {
		if settings.ReferenceDate, err = s.parseDate(reference.String); err != nil {
			return nil, err
		}
	}
	settings.Weekday = intPtr(weekday)
	settings.SemiMonthlyFirstDay = intPtr(first)
	settings.SemiMonthlySecondDay = intPtr(second)
	return &settings, nil
}

// SavePaydaySettings replaces the saved payday configuration.
func (s *SQLiteStorage) SavePaydaySettings(ctx context.Context, settings *model.PaydaySettings) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if settings == nil {
		return fmt.Errorf("%w: settings", ErrNilParameter)
	}
	return s.savePaydaySettings(ctx, s.db, settings)
}

func (s *SQLiteStorage) savePaydaySettings(ctx context.Context, q queryable, settings *model.PaydaySettings) error {
	if err := validateString(string(settings.Frequency), "frequency"); err != nil {
		return err
	}

	var reference any
	if !settings.ReferenceDate.IsZero() {
		reference = s.formatDate(settings.ReferenceDate)
	}

	_, err := q.ExecContext(ctx, `
		INSERT INTO payday_settings (
			id, frequency, reference_date, weekday, semi_monthly_first_day, semi_monthly_second_day
		) VALUES (1, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			frequency = excluded.frequency,
			reference_date = excluded.reference_date,
			weekday = excluded.weekday,
			semi_monthly_first_day = excluded.semi_monthly_first_day,
			semi_monthly_second_day = excluded.semi_monthly_second_day,
			updated_at = CURRENT_TIMESTAMP`,
		string(settings.Frequency), reference,
		nullableInt(settings.Weekday), nullableInt(settings.SemiMonthlyFirstDay), nullableInt(settings.SemiMonthlySecondDay),
	)
	if err != nil {
		return fmt.Errorf("failed to save payday settings: %w", err)
	}

	slog.Info("saved payday settings", "frequency", settings.Frequency)
	return nil
}

func intPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	i := int(v.Int64)
	return &i
}

func nullableInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}
