package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestIsMatchesByCode(t *testing.T) {
	err := New(CodeAbilityOnCooldown, "tail-swipe is cooling down")
	target := New(CodeAbilityOnCooldown, "different message")

	if !stderrors.Is(err, target) {
		t.Fatal("expected errors with the same code to match")
	}
	if stderrors.Is(err, New(CodeAbilityNotFound, "other code")) {
		t.Fatal("expected errors with different codes not to match")
	}
}

func TestCodeOfWalksChain(t *testing.T) {
	base := WithMetadata(CodeParticipantLevelTooLow, "level gate", map[string]string{"required": "20"})
	wrapped := fmt.Errorf("join rejected: %w", base)
	doubleWrapped := fmt.Errorf("command failed: %w", wrapped)

	if got := CodeOf(doubleWrapped); got != CodeParticipantLevelTooLow {
		t.Fatalf("CodeOf = %q, want %q", got, CodeParticipantLevelTooLow)
	}
	if got := CodeOf(stderrors.New("plain error")); got != CodeUnknown {
		t.Fatalf("CodeOf on plain error = %q, want %q", got, CodeUnknown)
	}
	if got := CodeOf(nil); got != CodeUnknown {
		t.Fatalf("CodeOf(nil) = %q, want %q", got, CodeUnknown)
	}
}

func TestMetadataOfWalksChain(t *testing.T) {
	base := WithMetadata(CodeAbilityOnCooldown, "cooling", map[string]string{"seconds": "12"})
	wrapped := fmt.Errorf("use ability: %w", base)

	metadata := MetadataOf(wrapped)
	if metadata["seconds"] != "12" {
		t.Fatalf("metadata seconds = %q, want %q", metadata["seconds"], "12")
	}
	if MetadataOf(stderrors.New("plain")) != nil {
		t.Fatal("expected nil metadata for plain error")
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := stderrors.New("disk full")
	err := Wrap(CodeUnknown, "save checkpoint", cause)

	if !stderrors.Is(err, cause) {
		t.Fatal("expected wrapped cause to remain reachable via errors.Is")
	}
	if err.Error() != "save checkpoint" {
		t.Fatalf("Error() = %q, want the message", err.Error())
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		code Code
		want int
	}{
		{CodeDefinitionEmptyID, http.StatusBadRequest},
		{CodeDefinitionInvalidPool, http.StatusBadRequest},
		{CodeEncounterDuplicateActive, http.StatusConflict},
		{CodeAbilityOnCooldown, http.StatusConflict},
		{CodeParticipantLevelTooLow, http.StatusForbidden},
		{CodeParticipantNotJoined, http.StatusForbidden},
		{CodeEncounterNotFound, http.StatusNotFound},
		{CodeNotFound, http.StatusNotFound},
		{CodeUnknown, http.StatusInternalServerError},
		{Code("SOMETHING_ELSE"), http.StatusInternalServerError},
	}
	for _, tc := range tests {
		if got := tc.code.HTTPStatus(); got != tc.want {
			t.Errorf("HTTPStatus(%s) = %d, want %d", tc.code, got, tc.want)
		}
	}
}
