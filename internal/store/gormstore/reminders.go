package gormstore

import (
	"context"
	"time"

	"github.com/MarkoPoloResearchLab/lodging/internal/reminders"
)

const (
	errorSubjectReminder = "reminder"
	errorSubjectCycle    = "cycle"
	errorCodeDue         = "due"
	errorCodeMarkSent    = "mark_sent"
)

type dueReminderRow struct {
	ReminderID string
	SendAt     time.Time
	Phone      string
	Message    string
	MediaURL   string
	CycleName  string
	StartsAt   time.Time
}

// DueReminders returns active unsent reminders whose send time is strictly inside (from, to).
func (store *Store) DueReminders(ctx context.Context, from time.Time, to time.Time) ([]reminders.Reminder, error) {
	var rows []dueReminderRow
	err := store.db.WithContext(ctx).
		Table("reminders").
		Select("reminders.reminder_id, reminders.send_at, reminders.phone, reminders.message, reminders.media_url, cycles.name AS cycle_name, cycles.starts_at").
		Joins("JOIN cycles ON cycles.cycle_id = reminders.cycle_id").
		Where("reminders.active = ? AND reminders.sent = ?", true, false).
		Where("reminders.send_at > ? AND reminders.send_at < ?", from.UTC(), to.UTC()).
		Order("reminders.send_at ASC").
		Order("reminders.reminder_id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, wrapStoreError(errorSubjectReminder, errorCodeDue, err)
	}
	due := make([]reminders.Reminder, 0, len(rows))
	for _, row := range rows {
		due = append(due, reminders.Reminder{
			ID:         row.ReminderID,
			CycleName:  row.CycleName,
			CycleStart: row.StartsAt,
			SendAt:     row.SendAt,
			Phone:      row.Phone,
			Template:   row.Message,
			MediaURL:   row.MediaURL,
		})
	}
	return due, nil
}

// MarkSent flips sent for an unsent reminder and reports whether this call did it.
func (store *Store) MarkSent(ctx context.Context, reminderID string, sentAt time.Time) (bool, error) {
	sentAtUTC := sentAt.UTC()
	result := store.db.WithContext(ctx).
		Model(&Reminder{}).
		Where("reminder_id = ? AND sent = ?", reminderID, false).
		Updates(map[string]interface{}{
			"sent":    true,
			"sent_at": &sentAtUTC,
		})
	if result.Error != nil {
		return false, wrapStoreError(errorSubjectReminder, errorCodeMarkSent, result.Error)
	}
	return result.RowsAffected == 1, nil
}

// CreateCycle stores a cycle row referenced by reminders.
func (store *Store) CreateCycle(ctx context.Context, cycle Cycle) error {
	if cycle.CreatedAt.IsZero() {
		cycle.CreatedAt = store.now()
	}
	if err := store.db.WithContext(ctx).Create(&cycle).Error; err != nil {
		return wrapStoreError(errorSubjectCycle, errorCodeCreate, err)
	}
	return nil
}

// CreateReminder schedules a reminder and returns its identifier.
func (store *Store) CreateReminder(ctx context.Context, reminder Reminder) (string, error) {
	if reminder.CreatedAt.IsZero() {
		reminder.CreatedAt = store.now()
	}
	reminder.SendAt = reminder.SendAt.UTC()
	if err := store.db.WithContext(ctx).Create(&reminder).Error; err != nil {
		return "", wrapStoreError(errorSubjectReminder, errorCodeCreate, err)
	}
	return reminder.ReminderID, nil
}

var _ reminders.Store = (*Store)(nil)
