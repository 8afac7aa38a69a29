package shared

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseCurlCommand(t *testing.T) {
	tt := []struct {
		name        string
		curlCmd     string
		wantHeaders map[string]string
		wantCookie  string
		wantErr     bool
	}{
		{
			name:    "single header with single quotes",
			curlCmd: `curl -H 'Authorization: Bearer token123' https://api.example.com`,
			wantHeaders: map[string]string{
				"Authorization": "Bearer token123",
			},
		},
		{
			name:    "multiple headers",
			curlCmd: `curl -H "Content-Type: application/json" -H 'Authorization: Bearer token' https://api.example.com`,
			wantHeaders: map[string]string{
				"Content-Type":  "application/json",
				"Authorization": "Bearer token",
			},
		},
		{
			name:        "cookie in -b flag",
			curlCmd:     `curl -b 'session=abc123' https://api.example.com`,
			wantHeaders: map[string]string{},
			wantCookie:  "session=abc123",
		},
		{
			name:    "cookie header is excluded from regular headers",
			curlCmd: `curl -H 'Cookie: session=abc123' -H 'Authorization: Bearer token' https://api.example.com`,
			wantHeaders: map[string]string{
				"Authorization": "Bearer token",
			},
			wantCookie: "session=abc123",
		},
		{
			name:        "-b cookie takes precedence over -H cookie",
			curlCmd:     `curl -H 'Cookie: old=value' -b 'new=value' https://api.example.com`,
			wantHeaders: map[string]string{},
			wantCookie:  "new=value",
		},
		{
			name: "multiline curl with backslashes",
			curlCmd: `curl 'https://music.youtube.com/api' \
  -H 'accept: */*' \
  -H 'authorization: SAPISIDHASH token_here' \
  -H 'cookie: VISITOR_INFO=xyz; CONSENT=YES' \
  --data-raw '{"context":{}}'`,
			wantHeaders: map[string]string{
				"accept":        "*/*",
				"authorization": "SAPISIDHASH token_here",
			},
			wantCookie: "VISITOR_INFO=xyz; CONSENT=YES",
		},
		{
			name:    "no headers or cookies",
			curlCmd: `curl https://api.example.com`,
			wantErr: true,
		},
		{
			name:    "empty command",
			curlCmd: "",
			wantErr: true,
		},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			result, err := ParseCurlCommand([]byte(tc.curlCmd))

			if (err != nil) != tc.wantErr {
				t.Errorf("ParseCurlCommand() error = %v, wantErr %v", err, tc.wantErr)
				return
			}
			if tc.wantErr {
				return
			}

			if len(result.Headers) != len(tc.wantHeaders) {
				t.Errorf("ParseCurlCommand() headers count = %v, want %v", len(result.Headers), len(tc.wantHeaders))
			}
			for key, want := range tc.wantHeaders {
				if got := result.Headers[key]; got != want {
					t.Errorf("ParseCurlCommand() header[%s] = %v, want %v", key, got, want)
				}
			}
			if result.Cookie != tc.wantCookie {
				t.Errorf("ParseCurlCommand() cookie = %v, want %v", result.Cookie, tc.wantCookie)
			}
		})
	}
}

func TestParseCurlFile(t *testing.T) {
	t.Run("successful file parse", func(t *testing.T) {
		curlFile := filepath.Join(t.TempDir(), "curl.sh")
		curlCmd := `curl -H 'Authorization: Bearer token123' -H 'Content-Type: application/json' https://api.example.com`
		if err := os.WriteFile(curlFile, []byte(curlCmd), 0644); err != nil {
			t.Fatalf("failed to create test file: %v", err)
		}

		result, err := ParseCurlFile(curlFile)
		if err != nil {
			t.Fatalf("ParseCurlFile() error = %v", err)
		}
		if result.Headers["Authorization"] != "Bearer token123" {
			t.Errorf("ParseCurlFile() Authorization = %v", result.Headers["Authorization"])
		}
	})

	t.Run("file does not exist", func(t *testing.T) {
		if _, err := ParseCurlFile("/nonexistent/file.sh"); err == nil {
			t.Error("ParseCurlFile() expected error for nonexistent file")
		}
	})
}

func TestToHeadersRaw(t *testing.T) {
	headers := &CurlHeaders{
		Headers: map[string]string{"Authorization": "Bearer token"},
		Cookie:  "session=abc123",
	}

	raw := headers.ToHeadersRaw()
	if !strings.Contains(raw, "Authorization: Bearer token") {
		t.Errorf("ToHeadersRaw() missing Authorization line: %q", raw)
	}
	if !strings.Contains(raw, "cookie: session=abc123") {
		t.Errorf("ToHeadersRaw() missing cookie line: %q", raw)
	}

	empty := &CurlHeaders{Headers: map[string]string{}}
	if got := empty.ToHeadersRaw(); got != "" {
		t.Errorf("ToHeadersRaw() on empty = %q, want empty string", got)
	}
}
