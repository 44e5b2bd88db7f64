// Package bot wires Telegram updates to the command handlers. One update is
// handled at a time so counter updates and moderation calls never interleave.
package bot

import (
	"context"
	"log/slog"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/quailyquaily/groupwarden/internal/worker"
	"github.com/quailyquaily/groupwarden/moderation"
	"github.com/quailyquaily/groupwarden/stats"
)

// API is what the handlers need from the Telegram client: the moderation
// surface plus sending replies. *tgbotapi.BotAPI satisfies it.
type API interface {
	moderation.API
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// UpdateSource produces the update stream Run consumes. *tgbotapi.BotAPI
// satisfies it.
type UpdateSource interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

type Options struct {
	API   API
	BotID int64
	Store *stats.Store

	Logger       *slog.Logger
	MuteDuration time.Duration
	PollTimeout  time.Duration

	// Now is overridable in tests.
	Now func() time.Time
}

type Bot struct {
	api          API
	gate         *moderation.Gate
	actions      *moderation.Actions
	store        *stats.Store
	logger       *slog.Logger
	muteDuration time.Duration
	pollTimeout  time.Duration
	now          func() time.Time

	handlers map[string]func(context.Context, *tgbotapi.Message)
}

func New(opts Options) *Bot {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	muteDuration := opts.MuteDuration
	if muteDuration <= 0 {
		muteDuration = time.Hour
	}
	pollTimeout := opts.PollTimeout
	if pollTimeout <= 0 {
		pollTimeout = 60 * time.Second
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	b := &Bot{
		api:          opts.API,
		gate:         moderation.NewGate(opts.API, opts.BotID),
		actions:      moderation.NewActions(opts.API),
		store:        opts.Store,
		logger:       logger,
		muteDuration: muteDuration,
		pollTimeout:  pollTimeout,
		now:          now,
	}
	b.handlers = map[string]func(context.Context, *tgbotapi.Message){
		"start":  b.handleStart,
		"stats":  b.handleStats,
		"lock":   b.handleLock,
		"unlock": b.handleUnlock,
		"mute":   b.handleMute,
		"unmute": b.handleUnmute,
		"ban":    b.handleBan,
		"kick":   b.handleKick,
		"help":   b.handleHelp,
	}
	return b
}

// Run long-polls src until ctx is canceled. Updates are funneled through a
// single worker so they are processed in arrival order.
func (b *Bot) Run(ctx context.Context, src UpdateSource) error {
	timeout := int(b.pollTimeout / time.Second)
	if timeout < 1 {
		timeout = 1
	}
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = timeout
	updates := src.GetUpdatesChan(cfg)

	jobs := make(chan tgbotapi.Update, 64)
	worker.Start(worker.Options[tgbotapi.Update]{
		Ctx:    ctx,
		Limit:  1,
		Jobs:   jobs,
		Handle: b.HandleUpdate,
	})

	for {
		select {
		case <-ctx.Done():
			src.StopReceivingUpdates()
			b.logger.Info("bot_stop")
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if err := worker.Enqueue(ctx, jobs, update); err != nil {
				src.StopReceivingUpdates()
				b.logger.Info("bot_stop")
				return nil
			}
		}
	}
}

// HandleUpdate dispatches one update. Known commands go to their handler and
// do not advance the activity counters; everything else in a group chat does.
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	msg := update.Message
	if msg == nil || msg.From == nil {
		return
	}
	if msg.IsCommand() {
		if handler, ok := b.handlers[msg.Command()]; ok {
			handler(ctx, msg)
			return
		}
	}
	b.trackActivity(ctx, msg)
}
