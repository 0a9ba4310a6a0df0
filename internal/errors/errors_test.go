package errors_test

import (
	"errors"
	"fmt"
	"testing"

	errs "github.com/edgard/taskpilot/internal/errors"
)

func TestIs_MatchesByCode(t *testing.T) {
	t.Parallel()

	err := errs.Newf(errs.CodeTaskNotFound, "Task #%d not found.", 3)
	if !errors.Is(err, errs.ErrTaskNotFound) {
		t.Error("errors.Is should match a sentinel with the same code")
	}
	if errors.Is(err, errs.ErrNotOwner) {
		t.Error("errors.Is matched a sentinel with a different code")
	}

	wrapped := fmt.Errorf("completing task: %w", err)
	if !errors.Is(wrapped, errs.ErrTaskNotFound) {
		t.Error("errors.Is should see through fmt wrapping")
	}
}

func TestWrap_KeepsCause(t *testing.T) {
	t.Parallel()

	cause := errors.New("parsing time")
	err := errs.Wrap(errs.CodeInvalidDateFormat, "Invalid date format. Please use YYYY-MM-DD format.", cause)

	if !errors.Is(err, cause) {
		t.Error("cause lost")
	}
	if got := err.Error(); got != "Invalid date format. Please use YYYY-MM-DD format.: parsing time" {
		t.Errorf("Error() = %q", got)
	}
	if got := err.Message(); got != "Invalid date format. Please use YYYY-MM-DD format." {
		t.Errorf("Message() = %q", got)
	}
}

func TestCodeAndUserMessage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		wantCode string
		wantMsg  string
	}{
		{
			name:     "coded",
			err:      errs.New(errs.CodePastDeadline, "Deadline cannot be in the past."),
			wantCode: errs.CodePastDeadline,
			wantMsg:  "Deadline cannot be in the past.",
		},
		{
			name:     "wrapped coded",
			err:      fmt.Errorf("add: %w", errs.Wrap(errs.CodeDelivery, "failed to deliver", errors.New("timeout"))),
			wantCode: errs.CodeDelivery,
			wantMsg:  "failed to deliver",
		},
		{
			name:     "plain",
			err:      errors.New("boom"),
			wantCode: errs.CodeUnknown,
			wantMsg:  "boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := errs.Code(tt.err); got != tt.wantCode {
				t.Errorf("Code() = %q, want %q", got, tt.wantCode)
			}
			if got := errs.UserMessage(tt.err); got != tt.wantMsg {
				t.Errorf("UserMessage() = %q, want %q", got, tt.wantMsg)
			}
		})
	}
}
