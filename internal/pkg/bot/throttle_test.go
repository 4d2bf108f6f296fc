package bot

import (
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThrottledSender(t *testing.T) {
	inner := &fakeSender{}
	ts := NewThrottledSender(inner, 2*time.Second)

	clock := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	var waits []time.Duration
	ts.now = func() time.Time { return clock }
	ts.sleep = func(d time.Duration) { waits = append(waits, d) }

	send := func(chatID int64) {
		_, err := ts.Send(tgbotapi.NewMessage(chatID, "x"))
		require.NoError(t, err)
	}

	send(1) // no wait
	send(1) // same instant, full interval
	send(2) // other chat, no wait
	clock = clock.Add(500 * time.Millisecond)
	send(1) // queued behind the previous slot
	clock = clock.Add(10 * time.Second)
	send(1) // long after, no wait

	assert.Equal(t, []time.Duration{2 * time.Second, 3500 * time.Millisecond}, waits)
	assert.Len(t, inner.texts(), 5)
}

func TestThrottledSender_RequestsPassThrough(t *testing.T) {
	inner := &fakeSender{}
	ts := NewThrottledSender(inner, time.Hour)
	ts.sleep = func(time.Duration) { t.Fatal("requests must not be throttled") }

	_, err := ts.Request(tgbotapi.NewSetMyCommands())
	require.NoError(t, err)
	assert.Len(t, inner.requests, 1)
}
