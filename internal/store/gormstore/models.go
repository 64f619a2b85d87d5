package gormstore

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Resource mirrors the resources table.
type Resource struct {
	ResourceID string    `gorm:"size:64;primaryKey"`
	Code       string    `gorm:"size:64;not null;uniqueIndex:uniq_resources_code"`
	Capacity   int       `gorm:"not null"`
	Status     string    `gorm:"size:16;not null;index"`
	Accessible bool      `gorm:"not null;default:false"`
	Notes      string    `gorm:"type:text;not null;default:''"`
	CreatedAt  time.Time `gorm:"not null"`
	UpdatedAt  time.Time `gorm:"not null"`
}

func (Resource) TableName() string { return "resources" }

func (resource *Resource) BeforeCreate(tx *gorm.DB) error {
	if resource.ResourceID == "" {
		resource.ResourceID = uuid.NewString()
	}
	return nil
}

// Blackout mirrors the blackouts table.
type Blackout struct {
	BlackoutID  string    `gorm:"size:64;primaryKey"`
	CycleID     string    `gorm:"size:64;not null;index:idx_blackouts_cycle_resource,priority:1"`
	ResourceID  string    `gorm:"size:64;not null;index:idx_blackouts_cycle_resource,priority:2"`
	Kind        string    `gorm:"size:16;not null"`
	Title       string    `gorm:"size:120;not null"`
	StartDate   time.Time `gorm:"type:date;not null;index:idx_blackouts_cycle_resource,priority:3"`
	EndDate     time.Time `gorm:"type:date;not null"`
	Description string    `gorm:"type:text;not null;default:''"`
	Active      bool      `gorm:"not null"`
	CreatedBy   string    `gorm:"size:64"`
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedBy   string    `gorm:"size:64"`
	UpdatedAt   time.Time `gorm:"not null"`
}

func (Blackout) TableName() string { return "blackouts" }

// Reservation mirrors the reservations table.
type Reservation struct {
	ReservationID      string    `gorm:"size:64;primaryKey"`
	CycleID            string    `gorm:"size:64;not null;index:idx_reservations_cycle_resource,priority:1"`
	ResourceID         string    `gorm:"size:64;not null;index:idx_reservations_cycle_resource,priority:2"`
	ResponsibleName    string    `gorm:"size:200;not null"`
	Adults             int       `gorm:"not null"`
	Children           int       `gorm:"not null"`
	ChildAges          string    `gorm:"size:120;not null;default:''"`
	SpecialNeeds       bool      `gorm:"not null;default:false"`
	SpecialNeedsDetail string    `gorm:"type:text;not null;default:''"`
	EntryDate          time.Time `gorm:"type:date;not null;index:idx_reservations_cycle_resource,priority:3"`
	ExitDate           time.Time `gorm:"type:date;not null"`
	Status             string    `gorm:"size:16;not null;index"`
	AmountCents        int64     `gorm:"not null;default:0"`
	Paid               bool      `gorm:"not null;default:false"`
	PaymentMethod      string    `gorm:"size:16;not null;default:''"`
	AccountRef         string    `gorm:"size:120;not null;default:''"`
	LedgerEntryID      *string   `gorm:"size:64;uniqueIndex:uniq_reservations_ledger_entry"`
	Notes              string    `gorm:"type:text;not null;default:''"`
	CreatedBy          string    `gorm:"size:64"`
	CreatedAt          time.Time `gorm:"not null;index"`
	UpdatedBy          string    `gorm:"size:64"`
	UpdatedAt          time.Time `gorm:"not null"`
}

func (Reservation) TableName() string { return "reservations" }

// LedgerEntry mirrors the ledger_entries table that receives lodging receipts.
type LedgerEntry struct {
	EntryID       string         `gorm:"size:64;primaryKey"`
	CycleID       string         `gorm:"size:64;not null;index"`
	Category      string         `gorm:"size:32;not null;index"`
	AccountRef    string         `gorm:"size:120;not null"`
	EntryDate     time.Time      `gorm:"type:date;not null"`
	Description   string         `gorm:"size:255;not null"`
	AmountCents   int64          `gorm:"not null"`
	PaymentMethod string         `gorm:"size:16;not null"`
	Metadata      datatypes.JSON `gorm:"not null"`
	CreatedBy     string         `gorm:"size:64"`
	CreatedAt     time.Time      `gorm:"not null"`
}

func (LedgerEntry) TableName() string { return "ledger_entries" }

func (entry *LedgerEntry) BeforeCreate(tx *gorm.DB) error {
	if entry.EntryID == "" {
		entry.EntryID = uuid.NewString()
	}
	return nil
}

// Cycle mirrors the cycles table read by the reminder dispatcher.
type Cycle struct {
	CycleID   string    `gorm:"size:64;primaryKey"`
	Name      string    `gorm:"size:200;not null"`
	StartsAt  time.Time `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`
}

func (Cycle) TableName() string { return "cycles" }

// Reminder mirrors the reminders table.
type Reminder struct {
	ReminderID string     `gorm:"size:64;primaryKey"`
	CycleID    string     `gorm:"size:64;not null;index"`
	SendAt     time.Time  `gorm:"not null;index:idx_reminders_due,priority:3"`
	Phone      string     `gorm:"size:32;not null"`
	Message    string     `gorm:"type:text;not null;default:''"`
	MediaURL   string     `gorm:"size:500;not null;default:''"`
	Active     bool       `gorm:"not null;index:idx_reminders_due,priority:1"`
	Sent       bool       `gorm:"not null;default:false;index:idx_reminders_due,priority:2"`
	SentAt     *time.Time `gorm:""`
	CreatedAt  time.Time  `gorm:"not null"`
}

func (Reminder) TableName() string { return "reminders" }

func (reminder *Reminder) BeforeCreate(tx *gorm.DB) error {
	if reminder.ReminderID == "" {
		reminder.ReminderID = uuid.NewString()
	}
	return nil
}

// Models lists every table managed by AutoMigrate.
func Models() []interface{} {
	return []interface{}{
		&Resource{},
		&Blackout{},
		&Reservation{},
		&LedgerEntry{},
		&Cycle{},
		&Reminder{},
	}
}
