package turn

import (
	"testing"
	"time"
)

func TestCapturedPairMeaningful(t *testing.T) {
	tests := []struct {
		name string
		pair CapturedPair
		want bool
	}{
		{"both present", CapturedPair{Prompt: "q", Response: "a"}, true},
		{"prompt only", CapturedPair{Prompt: "q", Response: Sentinel}, true},
		{"response only", CapturedPair{Prompt: Sentinel, Response: "a"}, true},
		{"both sentinel", CapturedPair{Prompt: Sentinel, Response: Sentinel}, false},
		{"both empty", CapturedPair{}, false},
		{"whitespace only", CapturedPair{Prompt: "  \n\t ", Response: "   "}, false},
		{"sentinel and blank", CapturedPair{Prompt: Sentinel, Response: " "}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.pair.Meaningful(); got != tt.want {
				t.Errorf("Meaningful() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSavedTurnEmpty(t *testing.T) {
	if !(SavedTurn{Prompt: Sentinel, Response: ""}).Empty() {
		t.Error("sentinel+blank turn should be empty")
	}
	if (SavedTurn{Prompt: "hello", Response: Sentinel}).Empty() {
		t.Error("turn with a prompt is not empty")
	}
}

func TestFolderIndexFind(t *testing.T) {
	fi := FolderIndex{
		"Work": {
			{ID: "a", Prompt: "one"},
			{ID: "b", Prompt: "two"},
		},
	}

	if got := fi.Find("Work", "b"); got == nil || got.Prompt != "two" {
		t.Errorf("Find(Work, b) = %v, want turn two", got)
	}
	if fi.Find("Work", "z") != nil {
		t.Error("Find should return nil for unknown id")
	}
	if fi.Find("Nope", "a") != nil {
		t.Error("Find should return nil for unknown folder")
	}
}

func TestFolderIndexTurnCount(t *testing.T) {
	fi := FolderIndex{
		"A": {{ID: "1"}, {ID: "2"}},
		"B": {{ID: "3"}},
	}
	if got := fi.TurnCount(); got != 3 {
		t.Errorf("TurnCount() = %d, want 3", got)
	}
}

func TestPreview(t *testing.T) {
	if got := Preview("short", 40); got != "short" {
		t.Errorf("Preview(short) = %q", got)
	}
	got := Preview("the quick brown fox jumps over the lazy dog", 9)
	if got != "the quick…" {
		t.Errorf("Preview truncated = %q, want %q", got, "the quick…")
	}
	if got := Preview("line\none\n\ntwo", 40); got != "line one two" {
		t.Errorf("Preview should flatten whitespace, got %q", got)
	}
}

func TestRelativeTime(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		at   time.Time
		want string
	}{
		{"seconds ago", now.Add(-30 * time.Second), "just now"},
		{"minutes ago", now.Add(-5 * time.Minute), "5m ago"},
		{"hours ago", now.Add(-3 * time.Hour), "3h ago"},
		{"days ago", now.Add(-48 * time.Hour), "2d ago"},
		{"older", now.Add(-30 * 24 * time.Hour), "Jul 29, 2026"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RelativeTime(tt.at.UnixMilli(), now); got != tt.want {
				t.Errorf("RelativeTime = %q, want %q", got, tt.want)
			}
		})
	}
}
