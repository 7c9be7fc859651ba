package common

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserError(t *testing.T) {
	cause := errors.New("no rows")
	err := fmt.Errorf("loading summary: %w", NewUserError("run `paycal payday set` first", cause))

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "run `paycal payday set` first", UserMessage(err))
	assert.Equal(t, "plain", UserMessage(errors.New("plain")))
	assert.Equal(t, "bare", NewUserError("bare", nil).Error())
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    slog.Level
		wantErr bool
	}{
		{input: "debug", want: slog.LevelDebug},
		{input: "INFO", want: slog.LevelInfo},
		{input: "", want: slog.LevelInfo},
		{input: "warn", want: slog.LevelWarn},
		{input: "error", want: slog.LevelError},
		{input: "verbose", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLevel(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidConfig)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(&buf, slog.LevelInfo, "json")
	require.NoError(t, err)

	logger.Debug("hidden")
	logger.Info("paid bill", "id", 7)
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"paid bill"`)
	assert.Contains(t, buf.String(), `"id":7`)

	_, err = NewLogger(&buf, slog.LevelInfo, "xml")
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
