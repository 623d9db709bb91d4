package transcode

import "testing"

func TestResolveProfile(t *testing.T) {
	tests := []struct {
		codec    string
		encoder  string
		format   string
		mime     string
		lossless bool
	}{
		{"mp3", "libmp3lame", "mp3", "audio/mpeg", false},
		{"ogg", "libvorbis", "ogg", "audio/ogg", false},
		{"opus", "libopus", "ogg", "audio/ogg", false},
		{"aac", "aac", "ipod", "audio/m4a", false},
		{"alac", "alac", "ipod", "audio/m4a", true},
		{"flac", "flac", "flac", "audio/flac", true},
		// Unknown and empty fall back to the default codec
		{"wma", "libmp3lame", "mp3", "audio/mpeg", false},
		{"", "libmp3lame", "mp3", "audio/mpeg", false},
	}

	for _, tt := range tests {
		p := ResolveProfile(tt.codec)
		if p.Encoder != tt.encoder {
			t.Errorf("ResolveProfile(%q).Encoder = %q, want %q", tt.codec, p.Encoder, tt.encoder)
		}
		if p.Format != tt.format {
			t.Errorf("ResolveProfile(%q).Format = %q, want %q", tt.codec, p.Format, tt.format)
		}
		if p.MIME != tt.mime {
			t.Errorf("ResolveProfile(%q).MIME = %q, want %q", tt.codec, p.MIME, tt.mime)
		}
		if p.Lossless != tt.lossless {
			t.Errorf("ResolveProfile(%q).Lossless = %v, want %v", tt.codec, p.Lossless, tt.lossless)
		}
	}
}

func TestNormalizeBitrate(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"128", "128k"},
		{"320", "320k"},
		{"8", "8k"},
		{"512", "512k"},
		{"", "128k"},
		{"abc", "128k"},
		{"-5", "128k"},
		{"4", "128k"},
		{"9999", "128k"},
	}
	for _, tt := range tests {
		if got := NormalizeBitrate(tt.in); got != tt.want {
			t.Errorf("NormalizeBitrate(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCacheKeyStable(t *testing.T) {
	a := cacheKey("/m/a.flac", "opus", "128k")
	b := cacheKey("/m/a.flac", "opus", "128k")
	if a != b {
		t.Errorf("Expected stable keys, got %q and %q", a, b)
	}
	for _, other := range []string{
		cacheKey("/m/b.flac", "opus", "128k"),
		cacheKey("/m/a.flac", "mp3", "128k"),
		cacheKey("/m/a.flac", "opus", "192k"),
	} {
		if other == a {
			t.Errorf("Expected distinct key, got collision on %q", other)
		}
	}
}
