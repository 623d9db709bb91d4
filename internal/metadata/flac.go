package metadata

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-flac/flacpicture"
	"github.com/go-flac/flacvorbis"
	flac "github.com/go-flac/go-flac"

	"github.com/calliope-music/calliope/internal/domain"
)

// parseFLAC reads vorbis comments, stream info and embedded pictures from a
// FLAC file. Duration comes from stream info (total samples / sample rate);
// FLAC is always lossless.
func parseFLAC(path string, exceptions []string) (*domain.AudioMetadata, error) {
	f, err := flac.ParseFile(path)
	if err != nil {
		return nil, fmt.Errorf("parse flac %s: %w", path, err)
	}

	info, err := f.GetStreamInfo()
	if err != nil {
		return nil, fmt.Errorf("flac stream info %s: %w", path, err)
	}

	var comments *flacvorbis.MetaDataBlockVorbisComment
	var pictures []domain.Picture
	for _, block := range f.Meta {
		switch block.Type {
		case flac.VorbisComment:
			if comments != nil {
				continue
			}
			cmt, err := flacvorbis.ParseFromMetaDataBlock(*block)
			if err != nil {
				return nil, fmt.Errorf("flac vorbis comment %s: %w", path, err)
			}
			comments = cmt
		case flac.Picture:
			pic, err := flacpicture.ParseFromMetaDataBlock(*block)
			if err != nil {
				// A corrupt picture block should not sink the whole file.
				continue
			}
			pictures = append(pictures, domain.Picture{
				Type:  pictureTypeLabel(int(pic.PictureType)),
				Bytes: pic.ImageData,
			})
		}
	}

	if comments == nil {
		return nil, fmt.Errorf("%s: no vorbis comment block: %w", path, ErrMissingTitle)
	}

	title := vorbisFirst(comments, flacvorbis.FIELD_TITLE)
	if title == "" {
		return nil, fmt.Errorf("%s: %w", path, ErrMissingTitle)
	}

	// ARTISTS (multi-valued, non-standard but common) wins over ARTIST.
	artists := vorbisAll(comments, "ARTISTS")
	if len(artists) == 0 {
		artists = vorbisAll(comments, flacvorbis.FIELD_ARTIST)
	}
	if len(artists) == 0 {
		if aa := vorbisFirst(comments, "ALBUMARTIST"); aa != "" {
			artists = []string{aa}
		} else {
			artists = []string{"Unknown"}
		}
	}

	album := vorbisFirst(comments, flacvorbis.FIELD_ALBUM)
	albumArtist := vorbisFirst(comments, "ALBUMARTIST")
	if albumArtist == "" {
		albumArtist = artists[0]
	}
	albumSort := vorbisFirst(comments, "ALBUMSORT")
	if albumSort == "" {
		albumSort = SortKey(album)
	}

	duration := 0
	if info.SampleRate > 0 {
		duration = int(info.SampleCount / int64(info.SampleRate))
	}

	meta := &domain.AudioMetadata{
		Name:        title,
		Number:      leadingInt(vorbisFirst(comments, flacvorbis.FIELD_TRACKNUMBER)),
		Disc:        leadingInt(vorbisFirst(comments, "DISCNUMBER")),
		Duration:    duration,
		Album:       album,
		AlbumArtist: albumArtist,
		AlbumSort:   albumSort,
		Artists:     artists,
		Genres:      vorbisAll(comments, flacvorbis.FIELD_GENRE),
		Pictures:    pictures,
		Path:        path,
		Year:        leadingInt(vorbisFirst(comments, flacvorbis.FIELD_DATE)),

		Lossless:      true,
		SampleRate:    info.SampleRate,
		BitsPerSample: info.BitDepth,
		NumChannels:   info.ChannelCount,
	}
	return meta, nil
}

func vorbisAll(cmt *flacvorbis.MetaDataBlockVorbisComment, key string) []string {
	vals, err := cmt.Get(key)
	if err != nil || len(vals) == 0 {
		return nil
	}
	return vals
}

func vorbisFirst(cmt *flacvorbis.MetaDataBlockVorbisComment, key string) string {
	if vals := vorbisAll(cmt, key); len(vals) > 0 {
		return vals[0]
	}
	return ""
}

// leadingInt parses the leading integer of values like "3", "3/12" or
// "2024-01-01". Returns 0 when there is none.
func leadingInt(s string) int {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return n
}
