package bot

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"

	"github.com/Vodeneev/betlinkbot/internal/pkg/conversation"
	"github.com/Vodeneev/betlinkbot/internal/pkg/performance"
)

const msgAccessDenied = "Acesso negado. Você não tem permissão para usar este bot."

// Sender is the part of *tgbotapi.BotAPI the bot uses.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Handler turns user input into reply text. *conversation.Machine
// implements it.
type Handler interface {
	HandleCommand(ctx context.Context, userID string, cmd conversation.Command) string
	HandleText(ctx context.Context, userID string, text string) string
}

// Bot delivers Telegram messages to a Handler and sends back its replies.
type Bot struct {
	api     Sender
	handler Handler
	allowed map[int64]struct{}
	tracker *performance.Tracker
	logger  *slog.Logger
}

type Option func(*Bot)

// WithAllowedUsers restricts the bot to the given Telegram user IDs. An empty
// list allows everyone.
func WithAllowedUsers(ids []int64) Option {
	return func(b *Bot) {
		if len(ids) == 0 {
			b.allowed = nil
			return
		}
		b.allowed = make(map[int64]struct{}, len(ids))
		for _, id := range ids {
			b.allowed[id] = struct{}{}
		}
	}
}

func WithTracker(t *performance.Tracker) Option {
	return func(b *Bot) { b.tracker = t }
}

func WithLogger(l *slog.Logger) Option {
	return func(b *Bot) { b.logger = l }
}

func New(api Sender, handler Handler, opts ...Option) *Bot {
	b := &Bot{
		api:     api,
		handler: handler,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// RegisterCommands publishes the command menu shown by Telegram clients.
func (b *Bot) RegisterCommands() error {
	var cmds []tgbotapi.BotCommand
	for _, info := range conversation.Commands() {
		cmds = append(cmds, tgbotapi.BotCommand{Command: info.Name, Description: info.Description})
	}
	if _, err := b.api.Request(tgbotapi.NewSetMyCommands(cmds...)); err != nil {
		return fmt.Errorf("failed to register bot commands: %w", err)
	}
	return nil
}

// Run handles updates one at a time until ctx is done or updates is closed.
func (b *Bot) Run(ctx context.Context, updates <-chan tgbotapi.Update) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.HandleUpdate(ctx, update)
		}
	}
}

// HandleUpdate processes a single update. It never panics.
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	msg := update.Message
	if msg == nil || msg.From == nil || msg.Chat == nil {
		return
	}
	text := strings.TrimSpace(msg.Text)
	if text == "" {
		return
	}

	userID := strconv.FormatInt(msg.From.ID, 10)
	logger := b.logger.With(
		"request_id", uuid.NewString(),
		"update_id", update.UpdateID,
		"user_id", userID,
		"chat_id", msg.Chat.ID,
	)

	if !b.isAllowed(msg.From.ID) {
		logger.Warn("Rejected message from user not on the allow list", "username", msg.From.UserName)
		b.reply(logger, msg.Chat.ID, msgAccessDenied)
		return
	}

	reply := b.dispatch(ctx, logger, msg, userID, text)
	b.reply(logger, msg.Chat.ID, reply)
}

// dispatch routes the message to the handler. Any panic is logged and turned
// into a generic error reply.
func (b *Bot) dispatch(ctx context.Context, logger *slog.Logger, msg *tgbotapi.Message, userID, text string) (reply string) {
	defer func() {
		if r := recover(); r != nil {
			b.tracker.RecordPanic()
			logger.Error("Panic while handling message", "panic", r, "stack", string(debug.Stack()))
			reply = conversation.InternalErrorReply()
		}
	}()

	if msg.IsCommand() {
		cmd, ok := conversation.ParseCommand(msg.Command())
		if !ok {
			logger.Debug("Unknown command", "command", msg.Command())
			return conversation.UnknownCommandReply()
		}
		logger.Info("Handling command", "command", cmd.Name())
		return b.handler.HandleCommand(ctx, userID, cmd)
	}

	logger.Debug("Handling text", "length", len(text))
	return b.handler.HandleText(ctx, userID, text)
}

func (b *Bot) reply(logger *slog.Logger, chatID int64, text string) {
	out := tgbotapi.NewMessage(chatID, text)
	out.DisableWebPagePreview = true
	if _, err := b.api.Send(out); err != nil {
		logger.Error("Failed to send reply", "error", err)
	}
}

func (b *Bot) isAllowed(userID int64) bool {
	if b.allowed == nil {
		return true
	}
	_, ok := b.allowed[userID]
	return ok
}
