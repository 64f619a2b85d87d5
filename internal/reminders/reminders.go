package reminders

import (
	"context"
	"errors"
	"strings"
	"time"
)

const (
	cycleDateLayout = "02/01/2006 at 15:04"
	defaultTemplate = "*Reminder - {cycle_name}*\n\nDate: {cycle_date}\nSent: {send_at}\n\nIt starts soon!"
)

var (
	ErrInvalidConfig   = errors.New("invalid reminder config")
	ErrMessageRejected = errors.New("message rejected")
)

// Reminder is a scheduled message about an upcoming cycle.
type Reminder struct {
	ID         string
	CycleName  string
	CycleStart time.Time
	SendAt     time.Time
	Phone      string
	Template   string
	MediaURL   string
}

// Message is one outbound WhatsApp message.
type Message struct {
	To       string
	Body     string
	MediaURL string
}

// Store reads due reminders and records deliveries.
type Store interface {
	// DueReminders returns active, unsent reminders with from < send_at < to.
	DueReminders(ctx context.Context, from time.Time, to time.Time) ([]Reminder, error)
	// MarkSent flags the reminder as sent unless another worker already did; it reports
	// whether this call performed the update.
	MarkSent(ctx context.Context, reminderID string, sentAt time.Time) (bool, error)
}

// Messenger delivers a message.
type Messenger interface {
	Send(ctx context.Context, message Message) (string, error)
}

// Render fills the reminder template. An empty template falls back to the default text.
func (reminder Reminder) Render() string {
	template := strings.TrimSpace(reminder.Template)
	if template == "" {
		template = defaultTemplate
	}
	replacer := strings.NewReplacer(
		"{cycle_name}", reminder.CycleName,
		"{cycle_date}", reminder.CycleStart.Format(cycleDateLayout),
		"{send_at}", reminder.SendAt.Format(cycleDateLayout),
	)
	return replacer.Replace(template)
}
