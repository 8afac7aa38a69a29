package shared

import (
	"strings"
	"testing"
)

func TestSanitizeFilename(t *testing.T) {
	tc := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "clean name untouched",
			in:   "Artist - Song.mp3",
			want: "Artist - Song.mp3",
		},
		{
			name: "path separators replaced",
			in:   "AC/DC - Back\\In Black.mp3",
			want: "AC-DC - Back-In Black.mp3",
		},
		{
			name: "unsafe punctuation dropped",
			in:   `What? "A" <Song> |Title.mp3`,
			want: "What A Song Title.mp3",
		},
		{
			name: "control characters stripped",
			in:   "Song\x00\x1fTitle.mp3",
			want: "SongTitle.mp3",
		},
		{
			name: "whitespace collapsed",
			in:   "  Artist   -   Song  .mp3",
			want: "Artist - Song .mp3",
		},
		{
			name: "empty input",
			in:   "   ",
			want: "",
		},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			got := SanitizeFilename(tt.in)
			if got != tt.want {
				t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}

	t.Run("long name truncated keeping extension", func(t *testing.T) {
		got := SanitizeFilename(strings.Repeat("a", 200) + ".mp3")
		if len(got) > 120 {
			t.Errorf("length %d exceeds bound", len(got))
		}
		if !strings.HasSuffix(got, ".mp3") {
			t.Errorf("extension lost: %q", got)
		}
	})
}

func TestCleanTrackTitle(t *testing.T) {
	tc := []struct {
		name  string
		title string
		want  string
	}{
		{
			name:  "plain title",
			title: "Song Title",
			want:  "Song Title",
		},
		{
			name:  "parenthesized suffix",
			title: "Song Title (Remastered 2011)",
			want:  "Song Title",
		},
		{
			name:  "bracketed suffix",
			title: "Song Title [Live]",
			want:  "Song Title",
		},
		{
			name:  "both kinds",
			title: "Song Title (feat. Someone) [Bonus Track]",
			want:  "Song Title",
		},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			got := CleanTrackTitle(tt.title)
			if got != tt.want {
				t.Errorf("CleanTrackTitle(%q) = %q, want %q", tt.title, got, tt.want)
			}
		})
	}
}

func TestGenerateID(t *testing.T) {
	a := GenerateID()
	b := GenerateID()

	if a == b {
		t.Error("expected distinct ids")
	}
	if len(a) != 36 {
		t.Errorf("expected uuid string length 36, got %d", len(a))
	}
}
