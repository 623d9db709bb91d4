// Package constants contains application-wide constants to avoid magic numbers and strings.
package constants

import "time"

// Application defaults
const (
	DefaultPort       = "8080"
	DefaultDBPath     = "calliope.db"
	DefaultArtDir     = "./art"
	DefaultFFmpegPath = "ffmpeg"

	DefaultHTTPTimeout = 10 * time.Second
	DefaultRetryCount  = 3
	DefaultRetryBase   = 1 * time.Second

	// Minimum spacing between requests to a single collaborator service.
	EnrichRequestInterval = 1050 * time.Millisecond
)

// Scanner / watcher timing
const (
	// Delay before rescanning a freshly created file, so the writer can finish.
	WatchSettleDelay = 75 * time.Millisecond

	// Interval of the full-rescan poll fallback behind the OS watcher.
	WatchPollInterval = 30 * time.Second
)

// Transcoding
const (
	// Capacity of the in-memory duplex buffer between the encoder and the
	// HTTP response. When full, encoder output backpressures into the pipe.
	StreamBufferSize = 4 << 20

	DefaultTranscodeCodec   = "mp3"
	DefaultTranscodeBitrate = "128"
)

// MIME types
const (
	MimeTypeFLAC = "audio/flac"
	MimeTypeMP3  = "audio/mpeg"
	MimeTypeWAV  = "audio/wav"
	MimeTypeAIFF = "audio/aiff"
	MimeTypeAVIF = "image/avif"
)

// AudioMIMETypes maps recognized audio extensions to their content types.
var AudioMIMETypes = map[string]string{
	ExtFLAC: MimeTypeFLAC,
	ExtMP3:  MimeTypeMP3,
	ExtWAV:  MimeTypeWAV,
	ExtAIFF: MimeTypeAIFF,
}

// Recognized audio file extensions
const (
	ExtFLAC = ".flac"
	ExtMP3  = ".mp3"
	ExtWAV  = ".wav"
	ExtAIFF = ".aiff"
)

// File permissions
const (
	DirPermissions  = 0755
	FilePermissions = 0644
)

// Enrichment placeholders used when collaborator lookups fail.
const (
	PlaceholderBio         = "What a mysterious artist. No bio found."
	PlaceholderArtistImage = "https://http.cat/404.jpg"
)
