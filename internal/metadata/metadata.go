// Package metadata reads per-format audio tags into a uniform record.
//
// Dispatch is by file extension. Adding a container format means adding one
// parser function and one case below; callers never change.
package metadata

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/calliope-music/calliope/internal/constants"
	"github.com/calliope-music/calliope/internal/domain"
)

var (
	// ErrUnsupportedFormat marks extensions we do not recognize at all.
	ErrUnsupportedFormat = errors.New("unsupported audio format")

	// ErrUnimplemented marks recognized formats (wav, aiff) that have no
	// parser yet. Callers skip these instead of treating them as damage.
	ErrUnimplemented = errors.New("audio format recognized but not implemented")

	// ErrMissingTitle is returned when a file carries no title tag, the one
	// field the catalog cannot do without.
	ErrMissingTitle = errors.New("missing title tag")
)

// Parse reads the file at path and returns its metadata record.
// exceptions is the artist-split exception list from configuration.
func Parse(path string, exceptions []string) (*domain.AudioMetadata, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case constants.ExtFLAC:
		return parseFLAC(path, exceptions)
	case constants.ExtMP3:
		return parseMP3(path, exceptions)
	case constants.ExtWAV, constants.ExtAIFF:
		return nil, fmt.Errorf("%s: %w", path, ErrUnimplemented)
	default:
		return nil, fmt.Errorf("%s: %w", path, ErrUnsupportedFormat)
	}
}

// Recognized reports whether the extension belongs to a format the scanner
// should hand to Parse at all.
func Recognized(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case constants.ExtFLAC, constants.ExtMP3, constants.ExtWAV, constants.ExtAIFF:
		return true
	}
	return false
}

// pictureTypeLabels maps ID3v2/FLAC picture type codes to their semantic
// labels. Both containers share the table.
var pictureTypeLabels = []string{
	"Other",
	"Icon",
	"Other Icon",
	"Cover (Front)",
	"Cover (Back)",
	"Leaflet",
	"Media",
	"Lead Artist",
	"Artist",
	"Conductor",
	"Band",
	"Composer",
	"Lyricist",
	"Recording Location",
	"During Recording",
	"During Performance",
	"Screen Capture",
	"Bright Fish",
	"Illustration",
	"Band Logo",
	"Publisher Logo",
}

func pictureTypeLabel(code int) string {
	if code >= 0 && code < len(pictureTypeLabels) {
		return pictureTypeLabels[code]
	}
	return "Other"
}
