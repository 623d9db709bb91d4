package metadata

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bogem/id3v2/v2"

	"github.com/calliope-music/calliope/internal/domain"
)

// parseMP3 reads ID3v2 frames from an MP3 file. Duration prefers the TLEN
// frame; absent or unparseable TLEN falls back to walking the MPEG frame
// headers. MP3 is never lossless and carries no reliable stream info in its
// tags, so those fields stay zero.
func parseMP3(path string, exceptions []string) (*domain.AudioMetadata, error) {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return nil, fmt.Errorf("parse mp3 %s: %w", path, err)
	}
	defer tag.Close()

	title := tag.Title()
	if title == "" {
		return nil, fmt.Errorf("%s: %w", path, ErrMissingTitle)
	}

	// A TPE1 frame may hold several null-separated values (ID3v2.4). A single
	// value goes through the collaboration split instead.
	var artists []string
	rawArtist := tag.Artist()
	if parts := strings.Split(rawArtist, "\x00"); len(parts) > 1 {
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				artists = append(artists, p)
			}
		}
	} else if rawArtist != "" {
		artists = SplitArtists([]string{rawArtist}, exceptions)
	}

	albumArtist := tag.GetTextFrame(tag.CommonID("Band/Orchestra/Accompaniment")).Text
	if len(artists) == 0 {
		if albumArtist != "" {
			artists = []string{albumArtist}
		} else {
			artists = []string{"Unknown"}
		}
	}
	if albumArtist == "" {
		albumArtist = artists[0]
	}

	duration := 0
	if tlen := tag.GetTextFrame("TLEN").Text; tlen != "" {
		if ms, err := strconv.Atoi(strings.TrimSpace(tlen)); err == nil && ms > 0 {
			duration = ms / 1000
		}
	}
	if duration == 0 {
		// Tag offset skips straight to the audio frames.
		if secs, err := mp3FileDuration(path); err == nil {
			duration = secs
		}
	}

	var pictures []domain.Picture
	for _, framer := range tag.GetFrames(tag.CommonID("Attached picture")) {
		pic, ok := framer.(id3v2.PictureFrame)
		if !ok {
			continue
		}
		pictures = append(pictures, domain.Picture{
			Type:  pictureTypeLabel(int(pic.PictureType)),
			Bytes: pic.Picture,
		})
	}

	album := tag.Album()
	meta := &domain.AudioMetadata{
		Name:        title,
		Number:      leadingInt(tag.GetTextFrame(tag.CommonID("Track number/Position in set")).Text),
		Disc:        leadingInt(tag.GetTextFrame(tag.CommonID("Part of a set")).Text),
		Duration:    duration,
		Album:       album,
		AlbumArtist: albumArtist,
		AlbumSort:   SortKey(album),
		Artists:     artists,
		Genres:      resolveGenres(tag.Genre()),
		Pictures:    pictures,
		Path:        path,
		Year:        leadingInt(tag.Year()),

		Lossless: false,
	}
	return meta, nil
}

// resolveGenres turns an ID3 genre string into a genre list. Numeric ID3v1
// references like "(17)" or "(17)Rock" resolve against the ID3v1 table, with
// any trailing free text kept as a second genre.
func resolveGenres(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	if strings.HasPrefix(raw, "(") {
		if end := strings.IndexByte(raw, ')'); end > 1 {
			if idx, err := strconv.Atoi(raw[1:end]); err == nil && idx >= 0 && idx < len(id3v1Genres) {
				genres := []string{id3v1Genres[idx]}
				if rest := strings.TrimSpace(raw[end+1:]); rest != "" && rest != genres[0] {
					genres = append(genres, rest)
				}
				return genres
			}
		}
	}
	return []string{raw}
}
