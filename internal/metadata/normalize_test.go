package metadata

import (
	"reflect"
	"testing"
)

func TestSplitArtists(t *testing.T) {
	tests := []struct {
		name       string
		raw        []string
		exceptions []string
		want       []string
	}{
		{
			name: "feat marker",
			raw:  []string{"Artist A feat. Artist B"},
			want: []string{"Artist A", "Artist B"},
		},
		{
			name: "featuring marker",
			raw:  []string{"Artist A featuring Artist B"},
			want: []string{"Artist A", "Artist B"},
		},
		{
			name: "ft marker case insensitive",
			raw:  []string{"Artist A FT. Artist B"},
			want: []string{"Artist A", "Artist B"},
		},
		{
			name: "x marker",
			raw:  []string{"Artist A x Artist B"},
			want: []string{"Artist A", "Artist B"},
		},
		{
			name: "with marker chained",
			raw:  []string{"A with B feat. C"},
			want: []string{"A", "B", "C"},
		},
		{
			name: "no marker without spaces",
			raw:  []string{"Quinn XCII"},
			want: []string{"Quinn XCII"},
		},
		{
			name: "ampersand is not a marker",
			raw:  []string{"Simon & Garfunkel"},
			want: []string{"Simon & Garfunkel"},
		},
		{
			name:       "exception kept verbatim",
			raw:        []string{"Tyler x Hodgy"},
			exceptions: []string{"Tyler x Hodgy"},
			want:       []string{"Tyler x Hodgy"},
		},
		{
			name: "multiple inputs preserve order",
			raw:  []string{"A feat. B", "C"},
			want: []string{"A", "B", "C"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitArtists(tt.raw, tt.exceptions)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SplitArtists(%v) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestSortKey(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"english article", "The Beatles", "beatles, the"},
		{"lowercase passthrough", "beatles", "beatles"},
		{"spanish article", "Los Lobos", "lobos, los"},
		{"german article", "Die Ärzte", "ärzte, die"},
		{"french elision", "L'Impératrice", "impératrice, l'"},
		{"prefix needs following space", "Theory of a Deadman", "theory of a deadman"},
		{"no prefix", "Radiohead", "radiohead"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SortKey(tt.in); got != tt.want {
				t.Errorf("SortKey(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		secs int
		want string
	}{
		{0, "0:00"},
		{59, "0:59"},
		{61, "1:01"},
		{600, "10:00"},
		{3599, "59:59"},
		{3600, "1:00:00"},
		{3661, "1:01:01"},
	}

	for _, tt := range tests {
		if got := FormatDuration(tt.secs); got != tt.want {
			t.Errorf("FormatDuration(%d) = %q, want %q", tt.secs, got, tt.want)
		}
	}
}
