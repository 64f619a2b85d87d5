package main

import (
	"context"
	"fmt"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/MarkoPoloResearchLab/lodging/internal/reminders"
	"github.com/MarkoPoloResearchLab/lodging/internal/store/gormstore"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const (
	flagSchedule         = "schedule"
	flagWindow           = "window"
	flagTwilioAccountSID = "twilio-account-sid"
	flagTwilioAuthToken  = "twilio-auth-token"
	flagTwilioFrom       = "twilio-from"
	flagTwilioBaseURL    = "twilio-base-url"
	flagMediaBaseURL     = "media-base-url"
	flagOnce             = "once"

	flagCycle    = "cycle"
	flagSendAt   = "send-at"
	flagPhone    = "phone"
	flagMessage  = "message"
	flagMediaURL = "media-url"
	sendAtLayout = "2006-01-02T15:04"
)

type remindConfig struct {
	DatabaseURL  string
	Schedule     string
	Window       time.Duration
	Twilio       reminders.TwilioConfig
	MediaBaseURL string
	Once         bool
}

func newRemindCommand() *cobra.Command {
	cfg := &remindConfig{}
	cmd := &cobra.Command{
		Use:   "remind",
		Short: "Send due WhatsApp reminders on a cron schedule",
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return loadRemindConfig(cmd, cfg)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runRemind(ctx, cfg)
		},
	}

	cmd.Flags().String(flagDatabaseURL, defaultDatabaseURL, "database URL: sqlite path or sqlite://, postgres://, mysql://")
	cmd.Flags().String(flagSchedule, "* * * * *", "cron schedule of dispatch ticks")
	cmd.Flags().Duration(flagWindow, 5*time.Minute, "send reminders whose send time is within this distance of now")
	cmd.Flags().String(flagTwilioAccountSID, "", "Twilio account SID (required)")
	cmd.Flags().String(flagTwilioAuthToken, "", "Twilio auth token (required)")
	cmd.Flags().String(flagTwilioFrom, "", "Twilio WhatsApp sender number (required)")
	cmd.Flags().String(flagTwilioBaseURL, "", "Twilio API base URL")
	cmd.Flags().String(flagMediaBaseURL, "", "absolute URL that relative reminder media paths resolve against")
	cmd.Flags().Bool(flagOnce, false, "run a single dispatch pass and exit")

	cmd.AddCommand(newScheduleReminderCommand())
	return cmd
}

func loadRemindConfig(cmd *cobra.Command, cfg *remindConfig) error {
	v, err := bindFlags(cmd,
		flagDatabaseURL, flagSchedule, flagWindow, flagTwilioAccountSID, flagTwilioAuthToken,
		flagTwilioFrom, flagTwilioBaseURL, flagMediaBaseURL, flagOnce,
	)
	if err != nil {
		return err
	}
	cfg.DatabaseURL = defaultIfBlank(v.GetString(flagDatabaseURL), defaultDatabaseURL)
	cfg.Schedule = v.GetString(flagSchedule)
	cfg.Window = v.GetDuration(flagWindow)
	cfg.MediaBaseURL = v.GetString(flagMediaBaseURL)
	cfg.Once = v.GetBool(flagOnce)
	cfg.Twilio = reminders.TwilioConfig{
		AccountSID: v.GetString(flagTwilioAccountSID),
		AuthToken:  v.GetString(flagTwilioAuthToken),
		FromNumber: v.GetString(flagTwilioFrom),
		BaseURL:    v.GetString(flagTwilioBaseURL),
	}
	return cfg.Twilio.Validate()
}

func runRemind(ctx context.Context, cfg *remindConfig) error {
	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("logger init: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	database, err := gormstore.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("database open: %w", err)
	}
	defer func() { _ = database.Close() }()

	messenger, err := reminders.NewTwilioMessenger(cfg.Twilio)
	if err != nil {
		return err
	}
	dispatcher, err := reminders.NewDispatcher(reminders.DispatcherConfig{
		Store:        gormstore.New(database.DB),
		Messenger:    messenger,
		Logger:       logger.Named("reminders"),
		Window:       cfg.Window,
		Schedule:     cfg.Schedule,
		MediaBaseURL: cfg.MediaBaseURL,
	})
	if err != nil {
		return err
	}
	if cfg.Once {
		result, err := dispatcher.Tick(ctx)
		if err != nil {
			return err
		}
		logger.Info("reminder pass finished",
			zap.Int("due", result.Due),
			zap.Int("sent", result.Sent),
			zap.Int("failed", result.Failed),
			zap.Int("skipped", result.Skipped),
		)
		return nil
	}
	return dispatcher.Run(ctx)
}

type scheduleReminderConfig struct {
	DatabaseURL string
	Reminder    gormstore.Reminder
}

func newScheduleReminderCommand() *cobra.Command {
	cfg := &scheduleReminderConfig{}
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Schedule a reminder for a cycle",
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return loadScheduleReminderConfig(cmd, cfg)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			database, err := gormstore.Open(cmd.Context(), cfg.DatabaseURL)
			if err != nil {
				return fmt.Errorf("database open: %w", err)
			}
			defer func() { _ = database.Close() }()
			reminderID, err := gormstore.New(database.DB).CreateReminder(cmd.Context(), cfg.Reminder)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), reminderID)
			return nil
		},
	}
	cmd.Flags().String(flagDatabaseURL, defaultDatabaseURL, "database URL: sqlite path or sqlite://, postgres://, mysql://")
	cmd.Flags().String(flagCycle, "", "cycle identifier (required)")
	cmd.Flags().String(flagSendAt, "", "send time in UTC as YYYY-MM-DDTHH:MM (required)")
	cmd.Flags().String(flagPhone, "", "recipient phone number (required)")
	cmd.Flags().String(flagMessage, "", "message template; {cycle_name}, {cycle_date} and {send_at} are replaced")
	cmd.Flags().String(flagMediaURL, "", "media attachment URL or path")
	return cmd
}

func loadScheduleReminderConfig(cmd *cobra.Command, cfg *scheduleReminderConfig) error {
	v, err := bindFlags(cmd, flagDatabaseURL, flagCycle, flagSendAt, flagPhone, flagMessage, flagMediaURL)
	if err != nil {
		return err
	}
	cfg.DatabaseURL = defaultIfBlank(v.GetString(flagDatabaseURL), defaultDatabaseURL)
	cycleID := strings.TrimSpace(v.GetString(flagCycle))
	if cycleID == "" {
		return fmt.Errorf("%s is required", flagCycle)
	}
	phone := strings.TrimSpace(v.GetString(flagPhone))
	if phone == "" {
		return fmt.Errorf("%s is required", flagPhone)
	}
	sendAt, err := time.ParseInLocation(sendAtLayout, strings.TrimSpace(v.GetString(flagSendAt)), time.UTC)
	if err != nil {
		return fmt.Errorf("%s: %w", flagSendAt, err)
	}
	cfg.Reminder = gormstore.Reminder{
		ReminderID: uuid.NewString(),
		CycleID:    cycleID,
		SendAt:     sendAt,
		Phone:      phone,
		Message:    v.GetString(flagMessage),
		MediaURL:   strings.TrimSpace(v.GetString(flagMediaURL)),
		Active:     true,
	}
	return nil
}

func defaultIfBlank(value string, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return strings.TrimSpace(value)
}
