package bot

import (
	"log/slog"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// ThrottledSender spaces out messages to the same chat by at least interval
// to stay under Telegram's per-chat limit and avoid 429 Too Many Requests.
// Requests other than messages pass straight through.
type ThrottledSender struct {
	Sender

	interval time.Duration
	now      func() time.Time
	sleep    func(time.Duration)

	mu       sync.Mutex
	lastSend map[int64]time.Time
}

func NewThrottledSender(s Sender, interval time.Duration) *ThrottledSender {
	return &ThrottledSender{
		Sender:   s,
		interval: interval,
		now:      time.Now,
		sleep:    time.Sleep,
		lastSend: make(map[int64]time.Time),
	}
}

func (t *ThrottledSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if msg, ok := c.(tgbotapi.MessageConfig); ok && t.interval > 0 {
		if wait := t.reserve(msg.ChatID); wait > 0 {
			slog.Debug("Telegram send: waiting for rate limit", "chat_id", msg.ChatID, "wait_time", wait)
			t.sleep(wait)
		}
	}
	return t.Sender.Send(c)
}

// reserve books the next send slot for chatID and returns how long to wait
// for it.
func (t *ThrottledSender) reserve(chatID int64) time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	slot := now
	if last, ok := t.lastSend[chatID]; ok && last.Add(t.interval).After(now) {
		slot = last.Add(t.interval)
	}
	t.lastSend[chatID] = slot
	return slot.Sub(now)
}
