package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestErrorFormat(t *testing.T) {
	err := NewInvalidRequest("folder is required")
	want := "INVALID_REQUEST: folder is required"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestFolderNotFoundDetails(t *testing.T) {
	err := NewFolderNotFound("Work")
	if err.Status != 404 {
		t.Errorf("Status = %d, want 404", err.Status)
	}
	if err.Details["folder"] != "Work" {
		t.Errorf("Details[folder] = %v, want Work", err.Details["folder"])
	}
}

func TestTurnNotFoundMessage(t *testing.T) {
	err := NewTurnNotFound("Work", "01ABC")
	if !strings.Contains(err.Message, "01ABC") || !strings.Contains(err.Message, "Work") {
		t.Errorf("message missing identifiers: %q", err.Message)
	}
}

func TestIs(t *testing.T) {
	if !Is(NewNotReady("still streaming"), ErrNotReady) {
		t.Error("Is should match NOT_READY")
	}
	if Is(NewNotReady("still streaming"), ErrStorage) {
		t.Error("Is should not match a different code")
	}
	if Is(errors.New("plain"), ErrInternal) {
		t.Error("Is should not match non-StashError")
	}
}

func TestStatusCodes(t *testing.T) {
	cases := []struct {
		err    *StashError
		status int
	}{
		{NewInvalidRequest("x"), 400},
		{NewFolderNotFound("x"), 404},
		{NewNotReady("x"), 425},
		{NewEmptyCapture(), 422},
		{NewUnreachable(nil), 502},
		{NewClipboard(errors.New("denied")), 500},
		{NewStorage(errors.New("locked")), 500},
		{NewInternal(nil), 500},
	}
	for _, tc := range cases {
		if tc.err.Status != tc.status {
			t.Errorf("%s: Status = %d, want %d", tc.err.Code, tc.err.Status, tc.status)
		}
	}
}
