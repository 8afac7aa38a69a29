package shared

import (
	"strings"
	"testing"
)

func TestFormatDuration(t *testing.T) {
	tc := []struct {
		name string
		ms   int
		want string
	}{
		{"zero", 0, "0:00"},
		{"negative", -100, "0:00"},
		{"under a minute", 45000, "0:45"},
		{"typical track", 215000, "3:35"},
		{"padded seconds", 61000, "1:01"},
		{"over an hour", 3723000, "62:03"},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatDuration(tt.ms); got != tt.want {
				t.Errorf("FormatDuration(%d) = %q, want %q", tt.ms, got, tt.want)
			}
		})
	}
}

func TestFormatBytes(t *testing.T) {
	tc := []struct {
		name string
		n    int64
		want string
	}{
		{"bytes", 512, "512 B"},
		{"kibibytes", 2048, "2.0 KiB"},
		{"mebibytes", 3 * 1024 * 1024, "3.0 MiB"},
		{"fractional", 1536, "1.5 KiB"},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatBytes(tt.n); got != tt.want {
				t.Errorf("FormatBytes(%d) = %q, want %q", tt.n, got, tt.want)
			}
		})
	}
}

func TestMarshalJSON(t *testing.T) {
	v := map[string]string{"title": "Song A"}

	compact, err := MarshalJSON(v, false)
	if err != nil {
		t.Fatalf("MarshalJSON failed: %v", err)
	}
	if strings.Contains(string(compact), "\n") {
		t.Errorf("compact output contains newlines: %q", compact)
	}

	indented, err := MarshalJSON(v, true)
	if err != nil {
		t.Fatalf("MarshalJSON indented failed: %v", err)
	}
	if !strings.Contains(string(indented), "\n  ") {
		t.Errorf("indented output not indented: %q", indented)
	}
}
