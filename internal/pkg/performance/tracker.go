package performance

import (
	"log/slog"
	"sync"
	"time"
)

// Tracker counts bot activity. All methods are safe for concurrent use and
// a nil *Tracker is a no-op.
type Tracker struct {
	mu sync.RWMutex

	startedAt time.Time

	TotalMessages   int
	TotalCommands   int
	LinksBuilt      int
	AffiliatesSaved int
	NotUnderstood   int
	StoreErrors     int
	Panics          int
	ParseFailures   map[string]int // by error kind
	Commands        map[string]int // by command name

	LastLinkAt time.Time
}

// Metrics is a point-in-time copy of the tracker, safe to encode.
type Metrics struct {
	Uptime          string         `json:"uptime"`
	TotalMessages   int            `json:"total_messages"`
	TotalCommands   int            `json:"total_commands"`
	LinksBuilt      int            `json:"links_built"`
	AffiliatesSaved int            `json:"affiliates_saved"`
	NotUnderstood   int            `json:"not_understood"`
	StoreErrors     int            `json:"store_errors"`
	Panics          int            `json:"panics"`
	ParseFailures   map[string]int `json:"parse_failures"`
	Commands        map[string]int `json:"commands"`
	LastLinkAt      *time.Time     `json:"last_link_at,omitempty"`
}

func NewTracker() *Tracker {
	return &Tracker{
		startedAt:     time.Now(),
		ParseFailures: make(map[string]int),
		Commands:      make(map[string]int),
	}
}

var globalTracker = NewTracker()

// GetTracker returns the process-wide tracker.
func GetTracker() *Tracker {
	return globalTracker
}

// Reset zeroes all counters.
func (t *Tracker) Reset() {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	t.startedAt = time.Now()
	t.TotalMessages = 0
	t.TotalCommands = 0
	t.LinksBuilt = 0
	t.AffiliatesSaved = 0
	t.NotUnderstood = 0
	t.StoreErrors = 0
	t.Panics = 0
	t.ParseFailures = make(map[string]int)
	t.Commands = make(map[string]int)
	t.LastLinkAt = time.Time{}
}

func (t *Tracker) RecordMessage() {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.TotalMessages++
}

func (t *Tracker) RecordCommand(name string) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.TotalCommands++
	t.Commands[name]++
}

func (t *Tracker) RecordLinkBuilt() {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.LinksBuilt++
	t.LastLinkAt = time.Now()
}

func (t *Tracker) RecordAffiliateSaved() {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.AffiliatesSaved++
}

func (t *Tracker) RecordNotUnderstood() {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.NotUnderstood++
}

func (t *Tracker) RecordParseFailure(kind string) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.ParseFailures[kind]++
}

func (t *Tracker) RecordStoreError() {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.StoreErrors++
}

func (t *Tracker) RecordPanic() {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Panics++
}

// GetMetrics returns a snapshot of the counters.
func (t *Tracker) GetMetrics() Metrics {
	if t == nil {
		return Metrics{ParseFailures: map[string]int{}, Commands: map[string]int{}}
	}
	t.mu.RLock()
	defer t.mu.RUnlock()

	m := Metrics{
		Uptime:          time.Since(t.startedAt).Round(time.Second).String(),
		TotalMessages:   t.TotalMessages,
		TotalCommands:   t.TotalCommands,
		LinksBuilt:      t.LinksBuilt,
		AffiliatesSaved: t.AffiliatesSaved,
		NotUnderstood:   t.NotUnderstood,
		StoreErrors:     t.StoreErrors,
		Panics:          t.Panics,
		ParseFailures:   make(map[string]int, len(t.ParseFailures)),
		Commands:        make(map[string]int, len(t.Commands)),
	}
	for k, v := range t.ParseFailures {
		m.ParseFailures[k] = v
	}
	for k, v := range t.Commands {
		m.Commands[k] = v
	}
	if !t.LastLinkAt.IsZero() {
		last := t.LastLinkAt
		m.LastLinkAt = &last
	}
	return m
}

// PrintSummary logs the counters, used on shutdown.
func (t *Tracker) PrintSummary() {
	m := t.GetMetrics()
	slog.Info("Activity summary",
		"uptime", m.Uptime,
		"messages", m.TotalMessages,
		"commands", m.TotalCommands,
		"links_built", m.LinksBuilt,
		"affiliates_saved", m.AffiliatesSaved,
		"not_understood", m.NotUnderstood,
		"parse_failures", m.ParseFailures,
		"store_errors", m.StoreErrors,
		"panics", m.Panics)
}
