package bot

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Rom2555/VK-BOT/internal/service"
	"github.com/Rom2555/VK-BOT/internal/vk"
)

const msgStoreError = "Произошла ошибка. Попробуйте ещё раз."

// Messenger sends chat messages to users
type Messenger interface {
	SendMessage(ctx context.Context, userID int64, text, attachment, keyboard string) error
}

// EventSource yields inbound user messages
type EventSource interface {
	Run(ctx context.Context, events chan<- vk.Event) error
}

// Bot connects the event source to the matchmaking state machine. Distinct
// users are handled on a bounded worker pool; messages from one user are
// serialized through a per-user lock so the read-mutate-persist sequence
// never works from a stale session.
type Bot struct {
	source     EventSource
	messenger  Messenger
	matchmaker *service.Matchmaker
	logger     *zap.Logger
	workers    int

	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

// New creates a new Bot instance
func New(source EventSource, messenger Messenger, matchmaker *service.Matchmaker, logger *zap.Logger, workers int) *Bot {
	if workers <= 0 {
		workers = 1
	}
	return &Bot{
		source:     source,
		messenger:  messenger,
		matchmaker: matchmaker,
		logger:     logger,
		workers:    workers,
		locks:      make(map[int64]*sync.Mutex),
	}
}

// Start runs the bot until the context is canceled or the event source fails
func (b *Bot) Start(ctx context.Context) error {
	events := make(chan vk.Event)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(events)
		return b.source.Run(ctx, events)
	})

	g.Go(func() error {
		var pool errgroup.Group
		pool.SetLimit(b.workers)
		for event := range events {
			event := event
			pool.Go(func() error {
				b.process(ctx, event)
				return nil
			})
		}
		return pool.Wait()
	})

	return g.Wait()
}

// process handles one inbound message to completion
func (b *Bot) process(ctx context.Context, event vk.Event) {
	lock := b.userLock(event.UserID)
	lock.Lock()
	defer lock.Unlock()

	replies, err := b.matchmaker.HandleMessage(ctx, event.UserID, event.Text)
	if err != nil {
		// Store failures are logged here; the loop keeps consuming events
		b.logger.Error("failed to handle message",
			zap.Int64("user_id", event.UserID),
			zap.Error(err))
		b.send(ctx, event.UserID, service.Reply{Text: msgStoreError})
		return
	}

	for _, reply := range replies {
		b.send(ctx, event.UserID, reply)
	}
}

func (b *Bot) send(ctx context.Context, userID int64, reply service.Reply) {
	attachment := strings.Join(reply.Attachments, ",")
	keyboard := renderKeyboard(reply.Keyboard)

	if err := b.messenger.SendMessage(ctx, userID, reply.Text, attachment, keyboard); err != nil {
		b.logger.Error("failed to send message",
			zap.Int64("user_id", userID),
			zap.Error(err))
	}
}

func (b *Bot) userLock(userID int64) *sync.Mutex {
	b.mu.Lock()
	defer b.mu.Unlock()

	lock, ok := b.locks[userID]
	if !ok {
		lock = &sync.Mutex{}
		b.locks[userID] = lock
	}
	return lock
}
