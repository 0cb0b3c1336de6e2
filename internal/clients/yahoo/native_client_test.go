package yahoo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestNewNativeClient(t *testing.T) {
	log := zerolog.New(nil).Level(zerolog.Disabled)
	client := NewNativeClient(log)

	assert.NotNil(t, client)
	assert.NotNil(t, client.now)
}

func TestNativeClient_ImplementsFullClientInterface(t *testing.T) {
	var _ FullClientInterface = NewNativeClient(zerolog.Nop())
}

func TestPeriodCovering(t *testing.T) {
	now := time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		start    time.Time
		expected string
	}{
		{now.AddDate(0, 0, -10), "1mo"},
		{now.AddDate(0, -2, 0), "3mo"},
		{now.AddDate(0, -5, 0), "6mo"},
		{now.AddDate(0, -11, 0), "1y"},
		{now.AddDate(-1, -6, 0), "2y"},
		{now.AddDate(-4, 0, 0), "5y"},
		{now.AddDate(-8, 0, 0), "10y"},
		{now.AddDate(-30, 0, 0), "max"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, periodCovering(tt.start, now))
		})
	}
}

func TestClassifyNativeError(t *testing.T) {
	assert.ErrorIs(t, classifyNativeError(errors.New("HTTP 404: Not Found")), ErrSymbolNotFound)
	assert.ErrorIs(t, classifyNativeError(errors.New("429 Too Many Requests")), ErrRateLimited)

	other := errors.New("connection reset")
	assert.Equal(t, other, classifyNativeError(other))
}

func TestNativeClient_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := NewNativeClient(zerolog.Nop())
	_, err := client.GetHistoricalPrices(ctx, "AAPL", time.Now().AddDate(0, -1, 0), time.Now())
	assert.ErrorIs(t, err, context.Canceled)
}
