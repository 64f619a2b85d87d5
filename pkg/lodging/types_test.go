package lodging

import (
	"errors"
	"testing"
	"time"
)

func TestIdentifiersRejectBlankValues(test *testing.T) {
	test.Parallel()
	testCases := []struct {
		name    string
		build   func() error
		wantErr error
	}{
		{name: "cycle", build: func() error { _, err := NewCycleID("  "); return err }, wantErr: ErrInvalidCycleID},
		{name: "resource", build: func() error { _, err := NewResourceID(""); return err }, wantErr: ErrInvalidResourceID},
		{name: "reservation", build: func() error { _, err := NewReservationID("\t"); return err }, wantErr: ErrInvalidReservationID},
		{name: "blackout", build: func() error { _, err := NewBlackoutID(""); return err }, wantErr: ErrInvalidBlackoutID},
		{name: "ledger entry", build: func() error { _, err := NewLedgerEntryID(""); return err }, wantErr: ErrInvalidLedgerEntryID},
		{name: "user", build: func() error { _, err := NewUserID(" "); return err }, wantErr: ErrInvalidUserID},
	}
	for _, testCase := range testCases {
		testCase := testCase
		test.Run(testCase.name, func(test *testing.T) {
			test.Parallel()
			if err := testCase.build(); !errors.Is(err, testCase.wantErr) {
				test.Fatalf("expected %v, got %v", testCase.wantErr, err)
			}
		})
	}
}

func TestIdentifiersTrimInput(test *testing.T) {
	test.Parallel()
	resourceID := mustResourceID(test, "  cabin-7 ")
	if resourceID.String() != "cabin-7" {
		test.Fatalf("expected trimmed id, got %q", resourceID.String())
	}
	var decoded ResourceID
	if err := decoded.UnmarshalText([]byte("cabin-7")); err != nil {
		test.Fatalf("unmarshal: %v", err)
	}
	if decoded != resourceID {
		test.Fatalf("expected %v, got %v", resourceID, decoded)
	}
}

func TestParseDate(test *testing.T) {
	test.Parallel()
	date := mustDate(test, "2026-07-10")
	if date.String() != "2026-07-10" {
		test.Fatalf("unexpected date %s", date)
	}
	if _, err := ParseDate("10/07/2026"); !errors.Is(err, ErrInvalidDate) {
		test.Fatalf("expected ErrInvalidDate, got %v", err)
	}
	if _, err := ParseDate(""); !errors.Is(err, ErrInvalidDate) {
		test.Fatalf("expected ErrInvalidDate for empty input, got %v", err)
	}
	if !DateOf(time.Date(2026, time.July, 10, 23, 59, 0, 0, time.UTC)).Equal(date) {
		test.Fatalf("expected DateOf to drop the time of day")
	}
}

func TestNewDateRangeRequiresEndAfterStart(test *testing.T) {
	test.Parallel()
	day := mustDate(test, "2026-07-10")
	if _, err := NewDateRange(day, day); !errors.Is(err, ErrInvalidDateRange) {
		test.Fatalf("expected zero-length range to fail, got %v", err)
	}
	if _, err := NewDateRange(day, day.AddDays(-1)); !errors.Is(err, ErrInvalidDateRange) {
		test.Fatalf("expected inverted range to fail, got %v", err)
	}
	if _, err := NewDateRange(Date{}, day); !errors.Is(err, ErrInvalidDateRange) {
		test.Fatalf("expected missing start to fail, got %v", err)
	}
	dateRange := mustRange(test, "2026-07-10", "2026-07-13")
	if dateRange.Nights() != 3 {
		test.Fatalf("expected 3 nights, got %d", dateRange.Nights())
	}
}

func TestDateRangeOverlapIsHalfOpen(test *testing.T) {
	test.Parallel()
	testCases := []struct {
		name     string
		first    DateRange
		second   DateRange
		expected bool
	}{
		{name: "back to back", first: mustRange(test, "2026-07-01", "2026-07-05"), second: mustRange(test, "2026-07-05", "2026-07-08"), expected: false},
		{name: "one day shared", first: mustRange(test, "2026-07-01", "2026-07-05"), second: mustRange(test, "2026-07-04", "2026-07-06"), expected: true},
		{name: "nested", first: mustRange(test, "2026-07-01", "2026-07-10"), second: mustRange(test, "2026-07-03", "2026-07-04"), expected: true},
		{name: "disjoint", first: mustRange(test, "2026-07-01", "2026-07-02"), second: mustRange(test, "2026-07-20", "2026-07-22"), expected: false},
		{name: "identical", first: mustRange(test, "2026-07-01", "2026-07-02"), second: mustRange(test, "2026-07-01", "2026-07-02"), expected: true},
		{name: "unset", first: DateRange{}, second: mustRange(test, "2026-07-01", "2026-07-02"), expected: false},
	}
	for _, testCase := range testCases {
		testCase := testCase
		test.Run(testCase.name, func(test *testing.T) {
			test.Parallel()
			if got := Overlaps(testCase.first, testCase.second); got != testCase.expected {
				test.Fatalf("expected %v, got %v", testCase.expected, got)
			}
			if got := Overlaps(testCase.second, testCase.first); got != testCase.expected {
				test.Fatalf("expected symmetric result %v, got %v", testCase.expected, got)
			}
		})
	}
}

func TestDateRangeContainsExcludesEnd(test *testing.T) {
	test.Parallel()
	dateRange := mustRange(test, "2026-07-01", "2026-07-03")
	if !dateRange.Contains(mustDate(test, "2026-07-01")) {
		test.Fatalf("expected start day to be contained")
	}
	if !dateRange.Contains(mustDate(test, "2026-07-02")) {
		test.Fatalf("expected last night to be contained")
	}
	if dateRange.Contains(mustDate(test, "2026-07-03")) {
		test.Fatalf("expected exit day to be free")
	}
}

func TestReservationStatusTransitions(test *testing.T) {
	test.Parallel()
	testCases := []struct {
		from     ReservationStatus
		to       ReservationStatus
		expected bool
	}{
		{from: ReservationStatusTentative, to: ReservationStatusTentative, expected: true},
		{from: ReservationStatusTentative, to: ReservationStatusConfirmed, expected: true},
		{from: ReservationStatusTentative, to: ReservationStatusCancelled, expected: true},
		{from: ReservationStatusConfirmed, to: ReservationStatusCancelled, expected: true},
		{from: ReservationStatusConfirmed, to: ReservationStatusTentative, expected: false},
		{from: ReservationStatusCancelled, to: ReservationStatusTentative, expected: false},
		{from: ReservationStatusCancelled, to: ReservationStatusConfirmed, expected: false},
		{from: ReservationStatusCancelled, to: ReservationStatusCancelled, expected: true},
	}
	for _, testCase := range testCases {
		if got := testCase.from.CanTransitionTo(testCase.to); got != testCase.expected {
			test.Fatalf("%s -> %s: expected %v, got %v", testCase.from, testCase.to, testCase.expected, got)
		}
	}
}

func TestParseEnumerations(test *testing.T) {
	test.Parallel()
	if _, err := ParseResourceStatus("closed"); !errors.Is(err, ErrInvalidResourceStatus) {
		test.Fatalf("expected ErrInvalidResourceStatus, got %v", err)
	}
	if _, err := ParseBlackoutKind("party"); !errors.Is(err, ErrInvalidBlackoutKind) {
		test.Fatalf("expected ErrInvalidBlackoutKind, got %v", err)
	}
	if _, err := ParseReservationStatus("pending"); !errors.Is(err, ErrInvalidReservationStatus) {
		test.Fatalf("expected ErrInvalidReservationStatus, got %v", err)
	}
	method, err := ParsePaymentMethod("")
	if err != nil || method != PaymentMethodNone {
		test.Fatalf("expected empty payment method to parse as none, got %q %v", method, err)
	}
	if _, err := ParsePaymentMethod("cheque"); !errors.Is(err, ErrInvalidPaymentMethod) {
		test.Fatalf("expected ErrInvalidPaymentMethod, got %v", err)
	}
}

func TestReservationNeedsReceipt(test *testing.T) {
	test.Parallel()
	reservation := Reservation{Paid: true, PaymentMethod: PaymentMethodPix, AccountRef: "cash-box"}
	if !reservation.NeedsReceipt() {
		test.Fatalf("expected paid reservation to need a receipt")
	}
	entryID, err := NewLedgerEntryID("entry-1")
	if err != nil {
		test.Fatalf("ledger entry id: %v", err)
	}
	reservation.LedgerEntryID = entryID
	if reservation.NeedsReceipt() {
		test.Fatalf("expected linked reservation to skip receipt generation")
	}
	if (Reservation{Paid: true, PaymentMethod: PaymentMethodPix}).NeedsReceipt() {
		test.Fatalf("expected missing account to skip receipt generation")
	}
}
