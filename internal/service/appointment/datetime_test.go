package appointment

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDateTime(t *testing.T) {
	want := time.Date(2025, 4, 12, 10, 30, 0, 0, time.UTC)

	tests := []struct {
		in   string
		want time.Time
	}{
		{"2025-04-12T10:30:00Z", want},
		{"2025-04-12T10:30:00+00:00", want},
		{"2025-04-12T12:30:00+02:00", want},
		{"2025-04-12T10:30:00", want},
		{"2025-04-12T10:30", want},
		{"2025-04-12 10:30:00", want},
		{"2025-04-12 10:30", want},
		{"2025-04-12T10:30:00.123456789Z", want.Add(123456 * time.Microsecond)},
		{"2025-04-12", time.Date(2025, 4, 12, 0, 0, 0, 0, time.UTC)},
		{"  2025-04-12T10:30:00Z  ", want},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDateTime(tt.in)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s", got)
			assert.Equal(t, time.UTC, got.Location())
		})
	}
}

func TestParseDateTime_Invalid(t *testing.T) {
	for _, in := range []string{"", "tomorrow", "2025-13-01", "2025-04-12T25:00:00Z", "12/04/2025"} {
		_, err := ParseDateTime(in)
		assert.Error(t, err, in)
	}
}

func TestDayWindow(t *testing.T) {
	start, end := dayWindow(time.Date(2025, 4, 12, 18, 0, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2025, 4, 12, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2025, 4, 12, 23, 59, 0, 0, time.UTC), end)
}
