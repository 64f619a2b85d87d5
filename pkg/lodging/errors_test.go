package lodging

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

const (
	operationName    = "lodging"
	subjectName      = "reservation"
	codeName         = "invalid"
	baseErrorMessage = "base error"
)

func TestOperationErrorFormatting(test *testing.T) {
	test.Parallel()
	baseError := errors.New(baseErrorMessage)
	wrappedError := WrapError(operationName, subjectName, codeName, baseError)
	if wrappedError == nil {
		test.Fatalf("expected wrapped error")
	}
	expected := operationName + "." + subjectName + "." + codeName + ": " + baseErrorMessage
	if wrappedError.Error() != expected {
		test.Fatalf("expected %q, got %q", expected, wrappedError.Error())
	}
	var operationError OperationError
	if !errors.As(wrappedError, &operationError) || operationError.Code() != codeName {
		test.Fatalf("expected OperationError with code %q", codeName)
	}
}

func TestWrapErrorNil(test *testing.T) {
	test.Parallel()
	if WrapError(operationName, subjectName, codeName, nil) != nil {
		test.Fatalf("expected nil wrapped error")
	}
}

func TestNotFoundRefinementsMatchClass(test *testing.T) {
	test.Parallel()
	for _, err := range []error{ErrUnknownResource, ErrUnknownReservation, ErrUnknownBlackout, ErrUnknownCycle} {
		if !errors.Is(err, ErrNotFound) {
			test.Fatalf("expected %v to match ErrNotFound", err)
		}
	}
}

func TestValidationErrorClasses(test *testing.T) {
	test.Parallel()
	plain := newValidationError([]FieldError{requiredField(FieldTitle, "title is required")})
	if !errors.Is(plain, ErrValidation) || errors.Is(plain, ErrConflict) {
		test.Fatalf("expected plain validation error, got %v", plain)
	}
	if !strings.Contains(plain.Error(), "title: title is required") {
		test.Fatalf("unexpected message %q", plain.Error())
	}
	conflict := Conflict{Kind: ConflictBlackout, BlackoutID: mustBlackoutID(test, "window-1")}.validationError(FieldStart)
	if !errors.Is(conflict, ErrValidation) || !errors.Is(conflict, ErrConflict) {
		test.Fatalf("expected conflict to match both classes, got %v", conflict)
	}
	if !strings.Contains(conflict.Error(), "window-1") {
		test.Fatalf("expected blackout id in message, got %q", conflict.Error())
	}
	if newValidationError(nil) != nil {
		test.Fatalf("expected nil for empty field list")
	}
}

func TestClassify(test *testing.T) {
	test.Parallel()
	conflict := Conflict{Kind: ConflictReservation}.validationError(FieldEntry)
	testCases := []struct {
		name string
		err  error
		want ErrorClass
	}{
		{name: "nil", want: ErrorClassNone},
		{name: "authorization", err: WrapError(operationCreateReservation, "principal", "forbidden", ErrAuthorization), want: ErrorClassAuthorization},
		{name: "unknown blackout", err: ErrUnknownBlackout, want: ErrorClassNotFound},
		{name: "field validation", err: newValidationError([]FieldError{requiredField(FieldTitle, "title is required")}), want: ErrorClassValidation},
		{name: "conflict", err: conflict, want: ErrorClassValidation},
		{name: "commit race", err: WrapError("store", "transaction", "race", fmt.Errorf("%w: serialization failure", ErrConflict)), want: ErrorClassValidation},
		{name: "malformed date", err: WrapError(operationCreateReservation, "entry", "invalid", ErrInvalidDate), want: ErrorClassValidation},
		{name: "storage", err: errors.New("disk full"), want: ErrorClassInternal},
	}
	for _, testCase := range testCases {
		testCase := testCase
		test.Run(testCase.name, func(test *testing.T) {
			test.Parallel()
			if got := Classify(testCase.err); got != testCase.want {
				test.Fatalf("Classify(%v) = %q, want %q", testCase.err, got, testCase.want)
			}
		})
	}
}
