package reminders

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const (
	defaultWindow   = 5 * time.Minute
	defaultSchedule = "* * * * *"
)

// DispatcherConfig wires a Dispatcher.
type DispatcherConfig struct {
	Store     Store
	Messenger Messenger
	Logger    *zap.Logger
	Window    time.Duration
	Schedule  string
	Now       func() time.Time

	// MediaBaseURL resolves reminder media stored as relative paths.
	MediaBaseURL string
}

// Validate applies defaults and checks required dependencies.
func (config *DispatcherConfig) Validate() error {
	if config.Store == nil {
		return fmt.Errorf("%w: store is required", ErrInvalidConfig)
	}
	if config.Messenger == nil {
		return fmt.Errorf("%w: messenger is required", ErrInvalidConfig)
	}
	if config.Logger == nil {
		config.Logger = zap.NewNop()
	}
	if config.Window <= 0 {
		config.Window = defaultWindow
	}
	if config.Schedule == "" {
		config.Schedule = defaultSchedule
	}
	if config.Now == nil {
		config.Now = func() time.Time { return time.Now().UTC() }
	}
	if strings.TrimSpace(config.MediaBaseURL) != "" {
		base, err := url.Parse(strings.TrimSpace(config.MediaBaseURL))
		if err != nil || !base.IsAbs() {
			return fmt.Errorf("%w: media base url %q must be absolute", ErrInvalidConfig, config.MediaBaseURL)
		}
		config.MediaBaseURL = base.String()
	}
	return nil
}

// TickResult summarizes one dispatch pass.
type TickResult struct {
	Due     int
	Sent    int
	Failed  int
	Skipped int
}

// Dispatcher sends due reminders. Each reminder gets at most one attempt per tick;
// failures stay unsent and are retried on later ticks while inside the window.
type Dispatcher struct {
	config DispatcherConfig
}

// NewDispatcher validates config and returns a Dispatcher.
func NewDispatcher(config DispatcherConfig) (*Dispatcher, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Dispatcher{config: config}, nil
}

// Tick runs one dispatch pass.
func (dispatcher *Dispatcher) Tick(ctx context.Context) (TickResult, error) {
	now := dispatcher.config.Now()
	due, err := dispatcher.config.Store.DueReminders(ctx, now.Add(-dispatcher.config.Window), now.Add(dispatcher.config.Window))
	if err != nil {
		return TickResult{}, fmt.Errorf("load due reminders: %w", err)
	}
	result := TickResult{Due: len(due)}
	for _, reminder := range due {
		logger := dispatcher.config.Logger.With(zap.String("reminder_id", reminder.ID), zap.String("phone", reminder.Phone))
		messageID, sendErr := dispatcher.config.Messenger.Send(ctx, Message{
			To:       reminder.Phone,
			Body:     reminder.Render(),
			MediaURL: dispatcher.mediaURL(reminder.MediaURL),
		})
		if sendErr != nil {
			result.Failed++
			logger.Error("reminder delivery failed", zap.Error(sendErr))
			continue
		}
		marked, markErr := dispatcher.config.Store.MarkSent(ctx, reminder.ID, now)
		if markErr != nil {
			result.Failed++
			logger.Error("reminder delivered but not marked sent", zap.String("message_id", messageID), zap.Error(markErr))
			continue
		}
		if !marked {
			result.Skipped++
			logger.Warn("reminder already marked sent by another worker", zap.String("message_id", messageID))
			continue
		}
		result.Sent++
		logger.Info("reminder sent", zap.String("message_id", messageID))
	}
	return result, nil
}

func (dispatcher *Dispatcher) mediaURL(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || dispatcher.config.MediaBaseURL == "" {
		return trimmed
	}
	reference, err := url.Parse(trimmed)
	if err != nil || reference.IsAbs() {
		return trimmed
	}
	base, err := url.Parse(dispatcher.config.MediaBaseURL)
	if err != nil {
		return trimmed
	}
	return base.ResolveReference(reference).String()
}

// Run ticks on the configured cron schedule until ctx is cancelled.
func (dispatcher *Dispatcher) Run(ctx context.Context) error {
	scheduler := cron.New()
	_, err := scheduler.AddFunc(dispatcher.config.Schedule, func() {
		result, err := dispatcher.Tick(ctx)
		if err != nil {
			dispatcher.config.Logger.Error("reminder tick failed", zap.Error(err))
			return
		}
		if result.Due > 0 {
			dispatcher.config.Logger.Info("reminder tick",
				zap.Int("due", result.Due),
				zap.Int("sent", result.Sent),
				zap.Int("failed", result.Failed),
				zap.Int("skipped", result.Skipped),
			)
		}
	})
	if err != nil {
		return fmt.Errorf("%w: schedule %q: %v", ErrInvalidConfig, dispatcher.config.Schedule, err)
	}
	scheduler.Start()
	dispatcher.config.Logger.Info("reminder dispatcher started", zap.String("schedule", dispatcher.config.Schedule))
	<-ctx.Done()
	<-scheduler.Stop().Done()
	dispatcher.config.Logger.Info("reminder dispatcher stopped")
	return nil
}
