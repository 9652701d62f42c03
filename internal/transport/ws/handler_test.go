package ws

import (
	"encoding/json"
	"testing"

	"github.com/stoneveil/bastion/internal/platform/errors/i18n"
)

func TestNegotiateLocale(t *testing.T) {
	h := NewHandler(nil, nil, nil)

	tests := []struct {
		name           string
		acceptLanguage string
		want           string
	}{
		{"empty header", "", i18n.BaseLocale},
		{"exact base", "en-US", "en-US"},
		{"exact spanish", "es-ES", "es-ES"},
		{"regional spanish", "es-MX", "es-ES"},
		{"bare language", "es", "es-ES"},
		{"weighted list", "fr-FR;q=0.9, es;q=0.8", "es-ES"},
		{"unsupported", "ja-JP", i18n.BaseLocale},
		{"garbage", ";;;", i18n.BaseLocale},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := h.negotiateLocale(tc.acceptLanguage); got != tc.want {
				t.Fatalf("negotiateLocale(%q) = %q, want %q", tc.acceptLanguage, got, tc.want)
			}
		})
	}
}

func TestCommandDecoding(t *testing.T) {
	raw := `{"type":"attack","requestId":"r-7","encounterId":"enc-1","payload":{"playerId":"aria","damage":40,"critical":true}}`

	var command Command
	if err := json.Unmarshal([]byte(raw), &command); err != nil {
		t.Fatalf("decode command: %v", err)
	}
	if command.Type != CommandAttack {
		t.Fatalf("type = %q", command.Type)
	}
	if command.RequestID != "r-7" || command.EncounterID != "enc-1" {
		t.Fatalf("envelope fields = %q / %q", command.RequestID, command.EncounterID)
	}

	var payload attackPayload
	if err := json.Unmarshal(command.Payload, &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if payload.PlayerID != "aria" || payload.Damage != 40 || !payload.Critical {
		t.Fatalf("payload = %+v", payload)
	}
}

func TestErrorResponseShape(t *testing.T) {
	resp := Response{
		Type:      ResponseError,
		RequestID: "r-9",
		Error: &Fault{
			Code:     "ABILITY_ON_COOLDOWN",
			Message:  "on cooldown",
			Metadata: map[string]string{"seconds": "12"},
		},
	}

	data, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("marshal response: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("round trip: %v", err)
	}
	if decoded["type"] != ResponseError {
		t.Fatalf("type = %v", decoded["type"])
	}
	fault, ok := decoded["error"].(map[string]any)
	if !ok {
		t.Fatalf("missing error object in %s", data)
	}
	if fault["code"] != "ABILITY_ON_COOLDOWN" || fault["message"] != "on cooldown" {
		t.Fatalf("fault = %v", fault)
	}
}
