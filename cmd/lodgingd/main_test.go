package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/MarkoPoloResearchLab/lodging/internal/store/gormstore"
	"github.com/golang-jwt/jwt/v5"
	"github.com/tyemirov/tauth/pkg/sessionvalidator"
)

func executeCommand(test *testing.T, args ...string) string {
	test.Helper()
	var output bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&output)
	cmd.SetErr(&output)
	cmd.SetArgs(args)
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		test.Fatalf("lodgingd %s: %v (%s)", strings.Join(args, " "), err, output.String())
	}
	return strings.TrimSpace(output.String())
}

func TestLoadDatabaseConfig(test *testing.T) {
	test.Parallel()
	testCases := []struct {
		name    string
		flags   []string
		wantErr bool
		want    databaseConfig
	}{
		{name: "defaults", want: databaseConfig{URL: defaultDatabaseURL, StoreDriver: storeDriverGORM}},
		{name: "pgx on postgres", flags: []string{"--database-url=postgres://localhost/lodging", "--store-driver=pgx"}, want: databaseConfig{URL: "postgres://localhost/lodging", StoreDriver: storeDriverPGX}},
		{name: "pgx on sqlite", flags: []string{"--store-driver=pgx"}, wantErr: true},
		{name: "unknown driver", flags: []string{"--store-driver=bolt"}, wantErr: true},
	}
	for _, testCase := range testCases {
		testCase := testCase
		test.Run(testCase.name, func(test *testing.T) {
			test.Parallel()
			cmd := newMigrateCommand()
			if err := cmd.ParseFlags(testCase.flags); err != nil {
				test.Fatalf("parse flags: %v", err)
			}
			v, err := bindFlags(cmd, flagDatabaseURL, flagStoreDriver)
			if err != nil {
				test.Fatalf("bind flags: %v", err)
			}
			got, err := loadDatabaseConfig(v)
			if testCase.wantErr {
				if err == nil {
					test.Fatalf("expected error, got %+v", got)
				}
				return
			}
			if err != nil || got != testCase.want {
				test.Fatalf("got %+v, %v; want %+v", got, err, testCase.want)
			}
		})
	}
}

func TestMintSessionTokenIsAcceptedByValidatorClaims(test *testing.T) {
	test.Parallel()
	now := time.Now().UTC()
	signed, err := mintSessionToken(tokenConfig{
		SigningKey: "dev-key",
		Issuer:     "tauth",
		UserID:     "operator-1",
		Roles:      []string{"lodging", "admin"},
		TTL:        time.Hour,
	}, now)
	if err != nil {
		test.Fatalf("mint: %v", err)
	}
	claims := &sessionvalidator.Claims{}
	parsed, err := jwt.ParseWithClaims(signed, claims, func(*jwt.Token) (interface{}, error) {
		return []byte("dev-key"), nil
	}, jwt.WithIssuer("tauth"), jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !parsed.Valid {
		test.Fatalf("parse: %v", err)
	}
	if claims.GetUserID() != "operator-1" || len(claims.GetUserRoles()) != 2 {
		test.Fatalf("unexpected claims %+v", claims)
	}
	if !claims.GetExpiresAt().Equal(now.Add(time.Hour).Truncate(time.Second)) {
		test.Fatalf("unexpected expiry %v", claims.GetExpiresAt())
	}

	if err := (&tokenConfig{SigningKey: "dev-key"}).Validate(); err == nil {
		test.Fatalf("expected missing user id error")
	}
}

func TestMigrateCycleAndReminderCommands(test *testing.T) {
	test.Parallel()
	databasePath := filepath.Join(test.TempDir(), "lodging.db")
	databaseFlag := "--database-url=" + databasePath

	if output := executeCommand(test, "migrate", databaseFlag); output != "schema up to date" {
		test.Fatalf("unexpected migrate output %q", output)
	}
	if output := executeCommand(test, "cycle", "create", databaseFlag, "--cycle=cycle-2026", "--name=Winter Retreat", "--starts-at=2026-07-11T19:30"); output != "cycle-2026" {
		test.Fatalf("unexpected cycle output %q", output)
	}
	reminderID := executeCommand(test, "remind", "schedule", databaseFlag, "--cycle=cycle-2026", "--phone=+5511999990000", "--send-at=2026-07-10T18:00")
	if reminderID == "" {
		test.Fatalf("expected reminder id")
	}

	ctx := context.Background()
	database, err := gormstore.Open(ctx, databasePath)
	if err != nil {
		test.Fatalf("open: %v", err)
	}
	defer func() { _ = database.Close() }()
	sendAt := time.Date(2026, time.July, 10, 18, 0, 0, 0, time.UTC)
	due, err := gormstore.New(database.DB).DueReminders(ctx, sendAt.Add(-time.Minute), sendAt.Add(time.Minute))
	if err != nil {
		test.Fatalf("due reminders: %v", err)
	}
	if len(due) != 1 || due[0].ID != reminderID || due[0].CycleName != "Winter Retreat" {
		test.Fatalf("unexpected due reminders %+v", due)
	}
}
