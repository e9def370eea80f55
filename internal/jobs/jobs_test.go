package jobs

import (
	"context"
	"errors"
	"testing"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduler_RunNow(t *testing.T) {
	var ran []string
	s, err := NewScheduler(logging.New("error"),
		Job{Name: "ok", Schedule: "@hourly", Run: func(ctx context.Context) error {
			_, hasDeadline := ctx.Deadline()
			assert.True(t, hasDeadline)
			ran = append(ran, "ok")
			return nil
		}},
		Job{Name: "broken", Schedule: "@daily", Run: func(context.Context) error {
			ran = append(ran, "broken")
			return errors.New("boom")
		}},
	)
	require.NoError(t, err)

	require.NoError(t, s.RunNow(context.Background(), "ok"))
	assert.EqualError(t, s.RunNow(context.Background(), "broken"), "boom")
	assert.Error(t, s.RunNow(context.Background(), "missing"))
	assert.Equal(t, []string{"ok", "broken"}, ran)
}

func TestNewScheduler_BadSchedule(t *testing.T) {
	_, err := NewScheduler(logging.New("error"), Job{Name: "x", Schedule: "every tuesday", Run: func(context.Context) error { return nil }})
	assert.Error(t, err)
}

func TestScheduler_StartStop(t *testing.T) {
	s, err := NewScheduler(logging.New("error"), Defaults(nil, nil, nil)...)
	require.NoError(t, err)
	s.Start()
	s.Stop(context.Background())
}
