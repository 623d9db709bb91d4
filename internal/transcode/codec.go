// Package transcode turns catalog files into client-requested codecs by
// piping them through ffmpeg, caching finished conversions on disk.
package transcode

import (
	"strconv"

	"github.com/calliope-music/calliope/internal/constants"
)

// Profile describes one output codec: the ffmpeg encoder, the container
// format flag, the response content type and whether a bitrate applies.
type Profile struct {
	Name      string
	Encoder   string
	Format    string
	MIME      string
	Extension string
	Lossless  bool
	// ExtraArgs go after the encoder flag. MP4-family containers need
	// fragmenting to be writable to a pipe.
	ExtraArgs []string
}

var fragmentedMP4 = []string{"-movflags", "frag_keyframe+empty_moov"}

var profiles = map[string]Profile{
	"mp3": {
		Name: "mp3", Encoder: "libmp3lame", Format: "mp3",
		MIME: "audio/mpeg", Extension: ".mp3",
	},
	"ogg": {
		Name: "ogg", Encoder: "libvorbis", Format: "ogg",
		MIME: "audio/ogg", Extension: ".ogg",
	},
	"opus": {
		Name: "opus", Encoder: "libopus", Format: "ogg",
		MIME: "audio/ogg", Extension: ".opus",
	},
	"aac": {
		Name: "aac", Encoder: "aac", Format: "ipod",
		MIME: "audio/m4a", Extension: ".m4a", ExtraArgs: fragmentedMP4,
	},
	"alac": {
		Name: "alac", Encoder: "alac", Format: "ipod",
		MIME: "audio/m4a", Extension: ".m4a", Lossless: true,
		ExtraArgs: fragmentedMP4,
	},
	"flac": {
		Name: "flac", Encoder: "flac", Format: "flac",
		MIME: "audio/flac", Extension: ".flac", Lossless: true,
	},
}

// ResolveProfile maps a requested codec name to its profile. Unknown names
// fall back to the default codec rather than failing the request.
func ResolveProfile(codec string) Profile {
	if p, ok := profiles[codec]; ok {
		return p
	}
	return profiles[constants.DefaultTranscodeCodec]
}

// NormalizeBitrate validates a requested bitrate in kbit/s and returns it as
// an ffmpeg -b:a value. Non-numeric or out-of-range requests fall back to
// the default.
func NormalizeBitrate(dps string) string {
	n, err := strconv.Atoi(dps)
	if err != nil || n < 8 || n > 512 {
		dps = constants.DefaultTranscodeBitrate
	}
	return dps + "k"
}
