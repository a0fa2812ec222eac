package scheduler_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/pocketfolio/pocketfolio/internal/scheduler"
)

func TestNextRunAfter(t *testing.T) {
	offset := 10 * time.Minute
	loc := time.FixedZone("UTC+8", 8*60*60)

	tests := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{
			name: "before today's run",
			now:  time.Date(2025, time.April, 15, 0, 3, 0, 0, loc),
			want: time.Date(2025, time.April, 15, 0, 10, 0, 0, loc),
		},
		{
			name: "exactly at the run instant moves to tomorrow",
			now:  time.Date(2025, time.April, 15, 0, 10, 0, 0, loc),
			want: time.Date(2025, time.April, 16, 0, 10, 0, 0, loc),
		},
		{
			name: "later in the day moves to tomorrow",
			now:  time.Date(2025, time.April, 15, 18, 0, 0, 0, loc),
			want: time.Date(2025, time.April, 16, 0, 10, 0, 0, loc),
		},
		{
			name: "end of month rolls over",
			now:  time.Date(2025, time.April, 30, 23, 59, 0, 0, loc),
			want: time.Date(2025, time.May, 1, 0, 10, 0, 0, loc),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := scheduler.NextRunAfter(tt.now, offset)
			assert.True(t, got.Equal(tt.want), "got %s want %s", got, tt.want)
		})
	}
}
