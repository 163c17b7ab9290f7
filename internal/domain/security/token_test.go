package security

import (
	"strings"
	"testing"
	"time"
)

func TestGenerateSessionID_ValidatesAndIsUnique(t *testing.T) {
	gen := NewIDGenerator("Mozilla/5.0 test agent")

	seen := make(map[string]bool, 1000)
	for i := 0; i < 1000; i++ {
		id, err := gen.Generate()
		if err != nil {
			t.Fatalf("Generate() error = %v", err)
		}
		if !ValidateSessionID(id) {
			t.Fatalf("ValidateSessionID(%q) = false for generated id", id)
		}
		if seen[id] {
			t.Fatalf("Generate() produced duplicate id %q", id)
		}
		seen[id] = true
	}
}

func TestGenerateSessionID_MonotonicTimestampSegment(t *testing.T) {
	frozen := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	gen := NewIDGenerator("agent").WithClock(func() time.Time { return frozen })

	var prev int64
	for i := 0; i < 5; i++ {
		id, err := gen.Generate()
		if err != nil {
			t.Fatalf("Generate() error = %v", err)
		}
		parts := strings.Split(id, "_")
		if len(parts) != 4 {
			t.Fatalf("id %q has %d segments, want 4", id, len(parts))
		}
		var millis int64
		for _, c := range parts[1] {
			millis = millis*10 + int64(c-'0')
		}
		if millis <= prev {
			t.Fatalf("timestamp segment %d not greater than previous %d under frozen clock", millis, prev)
		}
		prev = millis
	}
}

func TestGenerateSessionID_EmptyFingerprint(t *testing.T) {
	id, err := NewIDGenerator("").Generate()
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if !ValidateSessionID(id) {
		t.Errorf("ValidateSessionID(%q) = false with empty fingerprint", id)
	}
}

func TestValidateSessionID(t *testing.T) {
	tests := []struct {
		name string
		id   string
		want bool
	}{
		{"well-formed", "session_1772366400000_a1b2c3d4e_Ab-_Cd9Z", true},
		{"empty", "", false},
		{"wrong prefix", "sess_1772366400000_a1b2c3d4e_AbCdEf99", false},
		{"random too short", "session_1772366400000_a1b2c3d_AbCdEf99", false},
		{"random uppercase", "session_1772366400000_A1B2C3D4E_AbCdEf99", false},
		{"fingerprint too short", "session_1772366400000_a1b2c3d4e_AbCdEf9", false},
		{"std base64 plus", "session_1772366400000_a1b2c3d4e_AbCd+f99", false},
		{"trailing garbage", "session_1772366400000_a1b2c3d4e_AbCdEf99x", false},
		{"missing timestamp", "session__a1b2c3d4e_AbCdEf99", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidateSessionID(tt.id); got != tt.want {
				t.Errorf("ValidateSessionID(%q) = %v, want %v", tt.id, got, tt.want)
			}
		})
	}
}
