package conversation

import (
	"context"
	"log/slog"
	"strings"

	"github.com/Vodeneev/betlinkbot/internal/pkg/models"
	"github.com/Vodeneev/betlinkbot/internal/pkg/performance"
	"github.com/Vodeneev/betlinkbot/internal/pkg/storage"
	"github.com/Vodeneev/betlinkbot/internal/pkg/tracking"
)

// Machine drives the per-user conversation: it decides how incoming text is
// interpreted from the stored state, updates the session and returns the
// reply. Messages for the same user must be handled one at a time.
type Machine struct {
	store   storage.SessionStore
	tracker *performance.Tracker
	logger  *slog.Logger
}

type Option func(*Machine)

// WithTracker records activity counters into t.
func WithTracker(t *performance.Tracker) Option {
	return func(m *Machine) { m.tracker = t }
}

func WithLogger(l *slog.Logger) Option {
	return func(m *Machine) { m.logger = l }
}

func NewMachine(store storage.SessionStore, opts ...Option) *Machine {
	m := &Machine{
		store:  store,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// HandleCommand applies an explicit command. Commands work from any state.
func (m *Machine) HandleCommand(ctx context.Context, userID string, cmd Command) string {
	m.tracker.RecordCommand(cmd.Name())
	session := m.store.Get(ctx, userID)

	switch cmd {
	case CommandStart:
		session.State = models.StateAwaitingAffiliateLink
		m.save(ctx, userID, session)
		return msgStart

	case CommandSetLink:
		session.State = models.StateAwaitingAffiliateLink
		m.save(ctx, userID, session)
		return msgSetLink

	case CommandBet:
		if !session.HasAffiliate() {
			session.State = models.StateAwaitingAffiliateLink
			m.save(ctx, userID, session)
			return msgNeedAffiliate
		}
		session.State = models.StateAwaitingBetReference
		m.save(ctx, userID, session)
		return msgAskBet

	case CommandMe:
		if !session.HasAffiliate() {
			return msgNotConfigured
		}
		return msgProfile(session.Affiliate)

	case CommandReset:
		if err := m.store.Reset(ctx, userID); err != nil {
			m.storeFailed(userID, err)
		}
		return msgReset

	case CommandHelp:
		return msgHelp()

	default:
		return msgUnknownCommand
	}
}

// HandleText interprets free text according to the user's current state.
func (m *Machine) HandleText(ctx context.Context, userID string, text string) string {
	m.tracker.RecordMessage()
	text = strings.TrimSpace(text)
	session := m.store.Get(ctx, userID)

	switch session.State {
	case models.StateAwaitingAffiliateLink:
		affiliate, err := tracking.ParseAffiliate(text)
		if err != nil {
			return m.rejected(userID, session.State, err)
		}
		session.Affiliate = &affiliate
		session.State = models.StateAwaitingBetReference
		m.save(ctx, userID, session)
		m.tracker.RecordAffiliateSaved()
		return msgAffiliateSaved(session.Affiliate)

	case models.StateAwaitingBetReference:
		if !session.HasAffiliate() {
			m.logger.Warn("Session waiting for bet without affiliate, reverting", "user_id", userID)
			session.State = models.StateAwaitingAffiliateLink
			m.save(ctx, userID, session)
			return msgAffiliateFirst
		}
		link, err := m.buildLink(session.Affiliate, text)
		if err != nil {
			return m.rejected(userID, session.State, err)
		}
		session.State = models.StateIdle
		m.save(ctx, userID, session)
		return msgTrackedLink(link)

	case models.StateIdle:
		return m.handleUnprompted(ctx, userID, session, text)

	default:
		m.logger.Warn("Unknown session state, handling as idle", "user_id", userID, "state", session.State)
		return m.handleUnprompted(ctx, userID, session, text)
	}
}

// handleUnprompted handles text that arrives outside of a guided step: a
// pasted affiliate link or bet slip is recognized by its shape.
func (m *Machine) handleUnprompted(ctx context.Context, userID string, session models.Session, text string) string {
	switch {
	case tracking.LooksLikeAffiliate(text):
		affiliate, err := tracking.ParseAffiliate(text)
		if err != nil {
			return m.rejected(userID, session.State, err)
		}
		session.Affiliate = &affiliate
		session.State = models.StateAwaitingBetReference
		m.save(ctx, userID, session)
		m.tracker.RecordAffiliateSaved()
		return msgAffiliateSavedShort

	case tracking.LooksLikeBet(text):
		if !session.HasAffiliate() {
			session.State = models.StateAwaitingAffiliateLink
			m.save(ctx, userID, session)
			return msgConfigureFirst
		}
		link, err := m.buildLink(session.Affiliate, text)
		if err != nil {
			return m.rejected(userID, session.State, err)
		}
		return msgTrackedLink(link)

	default:
		m.tracker.RecordNotUnderstood()
		return msgNotUnderstood
	}
}

func (m *Machine) buildLink(affiliate *models.AffiliateParams, text string) (string, error) {
	bet, err := tracking.ParseBet(text)
	if err != nil {
		return "", err
	}
	m.tracker.RecordLinkBuilt()
	return tracking.BuildLink(*affiliate, bet.ResolvedURL), nil
}

// rejected reports a parse failure. The session is left as it was so the
// user can simply try again.
func (m *Machine) rejected(userID string, state models.State, err error) string {
	kind := tracking.KindOf(err)
	m.tracker.RecordParseFailure(kind.String())
	m.logger.Info("Rejected user input", "user_id", userID, "state", state, "kind", kind, "error", err)
	return describeError(err)
}

// save persists the session. A failed write is logged and counted but never
// turns into a failed reply.
func (m *Machine) save(ctx context.Context, userID string, session models.Session) {
	if err := m.store.Save(ctx, userID, session); err != nil {
		m.storeFailed(userID, err)
	}
}

func (m *Machine) storeFailed(userID string, err error) {
	m.tracker.RecordStoreError()
	m.logger.Error("Failed to persist session", "user_id", userID, "error", err)
}

// InternalErrorReply is the reply sent when handling a message failed
// unexpectedly.
func InternalErrorReply() string {
	return msgInternalError
}

// UnknownCommandReply is the reply to a command the bot does not know.
func UnknownCommandReply() string {
	return msgUnknownCommand
}
