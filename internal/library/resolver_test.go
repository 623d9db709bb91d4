package library

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/calliope-music/calliope/internal/artwork"
	"github.com/calliope-music/calliope/internal/domain"
	"github.com/calliope-music/calliope/internal/enrich"
	"github.com/calliope-music/calliope/internal/logger"
	"github.com/calliope-music/calliope/internal/store"
)

type stubBios struct {
	calls int
}

func (s *stubBios) ArtistInfo(_ context.Context, name string) enrich.ArtistInfo {
	s.calls++
	return enrich.ArtistInfo{Bio: "bio for " + name, Tags: "rock"}
}

type stubImages struct {
	calls int
}

func (s *stubImages) ArtistImage(_ context.Context, name string) string {
	s.calls++
	return "https://img.example/" + name
}

func testLogger() *logger.Logger {
	return logger.Default()
}

func setupResolver(t *testing.T) (*Resolver, *store.Store, *stubBios, *stubImages) {
	t.Helper()
	log := testLogger()

	db, err := store.Open(filepath.Join(t.TempDir(), "test.db"), log)
	if err != nil {
		t.Fatalf("Failed to open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	art, err := artwork.New(t.TempDir(), log)
	if err != nil {
		t.Fatalf("Failed to create artwork store: %v", err)
	}

	bios := &stubBios{}
	images := &stubImages{}
	return NewResolver(db, art, bios, images, log), db, bios, images
}

func coverBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("Failed to encode cover: %v", err)
	}
	return buf.Bytes()
}

func testRecord() *domain.AudioMetadata {
	return &domain.AudioMetadata{
		Name:        "Song One",
		Number:      1,
		Duration:    180,
		Album:       "First Album",
		AlbumArtist: "Band",
		AlbumSort:   "first album",
		Artists:     []string{"Band", "Guest"},
		Genres:      []string{"Rock", "Indie"},
		Path:        "/music/one.flac",
		Year:        2020,
		Lossless:    true,
		SampleRate:  44100,
	}
}

func TestAddSong(t *testing.T) {
	resolver, db, bios, images := setupResolver(t)
	ctx := context.Background()

	meta := testRecord()
	meta.Pictures = []domain.Picture{{Type: "Cover (Front)", Bytes: coverBytes(t)}}

	if err := resolver.AddSong(ctx, meta); err != nil {
		t.Fatalf("AddSong failed: %v", err)
	}

	// Two performing artists, one shared with the album artist
	if bios.calls != 2 || images.calls != 2 {
		t.Errorf("Expected 2 enrichment calls each, got %d/%d", bios.calls, images.calls)
	}

	id, found, err := db.ArtistIDByName(ctx, "Band")
	if err != nil || !found {
		t.Fatalf("Expected artist Band to exist: found=%v err=%v", found, err)
	}
	artist, err := db.GetArtist(ctx, id)
	if err != nil {
		t.Fatalf("GetArtist failed: %v", err)
	}
	if artist.Bio != "bio for Band" {
		t.Errorf("Expected enriched bio, got %q", artist.Bio)
	}
	if artist.Picture != "https://img.example/Band" {
		t.Errorf("Expected enriched picture, got %q", artist.Picture)
	}

	n, _ := db.CountSongs(ctx)
	if n != 1 {
		t.Errorf("Expected 1 song, got %d", n)
	}
}

func TestAddSongIdempotent(t *testing.T) {
	resolver, db, bios, _ := setupResolver(t)
	ctx := context.Background()

	meta := testRecord()
	meta.Pictures = []domain.Picture{{Type: "Cover (Front)", Bytes: coverBytes(t)}}

	if err := resolver.AddSong(ctx, meta); err != nil {
		t.Fatalf("AddSong failed: %v", err)
	}
	callsAfterFirst := bios.calls

	if err := resolver.AddSong(ctx, testRecordWithCover(t)); err != nil {
		t.Fatalf("AddSong (repeat) failed: %v", err)
	}

	// Known artists are never re-enriched
	if bios.calls != callsAfterFirst {
		t.Errorf("Expected no new enrichment calls, got %d extra", bios.calls-callsAfterFirst)
	}

	n, _ := db.CountSongs(ctx)
	if n != 1 {
		t.Errorf("Expected 1 song after re-add, got %d", n)
	}
}

func testRecordWithCover(t *testing.T) *domain.AudioMetadata {
	meta := testRecord()
	meta.Pictures = []domain.Picture{{Type: "Cover (Front)", Bytes: coverBytes(t)}}
	return meta
}

func TestAddSongSplitsDelimitedGenreString(t *testing.T) {
	resolver, db, _, _ := setupResolver(t)
	ctx := context.Background()

	// Some taggers pack the whole genre list into one comma-joined value
	meta := testRecord()
	meta.Genres = []string{"Rock, Pop"}

	if err := resolver.AddSong(ctx, meta); err != nil {
		t.Fatalf("AddSong failed: %v", err)
	}

	for _, want := range []string{"Rock", "Pop"} {
		if _, found, err := db.GenreIDByName(ctx, want); err != nil || !found {
			t.Errorf("Expected genre %q to exist: found=%v err=%v", want, found, err)
		}
	}
	if _, found, _ := db.GenreIDByName(ctx, "Rock, Pop"); found {
		t.Error("Expected delimited string to be split, not stored verbatim")
	}
}

func TestGenreNames(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{"already split", []string{"Rock", "Pop"}, []string{"Rock", "Pop"}},
		{"single plain", []string{"Rock"}, []string{"Rock"}},
		{"single delimited", []string{"Rock, Pop"}, []string{"Rock", "Pop"}},
		{"delimited no space", []string{"Rock,Pop,Jazz"}, []string{"Rock", "Pop", "Jazz"}},
		{"trailing comma", []string{"Rock,"}, []string{"Rock"}},
		{"empty", nil, nil},
	}
	for _, tt := range tests {
		got := genreNames(tt.in)
		if len(got) != len(tt.want) {
			t.Errorf("%s: expected %v, got %v", tt.name, tt.want, got)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("%s: expected %v, got %v", tt.name, tt.want, got)
				break
			}
		}
	}
}

func TestAddSongBindsArtOnlyAtAlbumCreation(t *testing.T) {
	log := testLogger()
	db, err := store.Open(filepath.Join(t.TempDir(), "test.db"), log)
	if err != nil {
		t.Fatalf("Failed to open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	artDir := t.TempDir()
	art, err := artwork.New(artDir, log)
	if err != nil {
		t.Fatalf("Failed to create artwork store: %v", err)
	}
	resolver := NewResolver(db, art, &stubBios{}, &stubImages{}, log)
	ctx := context.Background()

	if err := resolver.AddSong(ctx, testRecordWithCover(t)); err != nil {
		t.Fatalf("AddSong failed: %v", err)
	}
	entries, err := os.ReadDir(artDir)
	if err != nil {
		t.Fatalf("Failed to read art dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("Expected 1 encoded image, got %d", len(entries))
	}

	// Empty the art dir; re-resolving into the existing album must not
	// re-encode the embedded picture
	for _, e := range entries {
		if err := os.Remove(filepath.Join(artDir, e.Name())); err != nil {
			t.Fatalf("Failed to remove image: %v", err)
		}
	}

	second := testRecordWithCover(t)
	second.Name = "Song Two"
	second.Path = "/music/two.flac"
	if err := resolver.AddSong(ctx, second); err != nil {
		t.Fatalf("AddSong (same album) failed: %v", err)
	}

	entries, err = os.ReadDir(artDir)
	if err != nil {
		t.Fatalf("Failed to read art dir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Expected no re-encoded images for an existing album, got %d", len(entries))
	}
}

func TestAddSongSkipsBadArtwork(t *testing.T) {
	resolver, db, _, _ := setupResolver(t)
	ctx := context.Background()

	meta := testRecord()
	meta.Pictures = []domain.Picture{{Type: "Cover (Front)", Bytes: []byte("garbage")}}

	if err := resolver.AddSong(ctx, meta); err != nil {
		t.Fatalf("AddSong failed: %v", err)
	}
	n, _ := db.CountSongs(ctx)
	if n != 1 {
		t.Errorf("Expected song despite bad artwork, got %d songs", n)
	}
}

func TestAddSongEmptyNamesFallBack(t *testing.T) {
	resolver, db, _, _ := setupResolver(t)
	ctx := context.Background()

	meta := testRecord()
	meta.Album = ""
	meta.AlbumArtist = ""
	meta.Artists = nil
	meta.Genres = nil

	if err := resolver.AddSong(ctx, meta); err != nil {
		t.Fatalf("AddSong failed: %v", err)
	}

	if _, found, _ := db.ArtistIDByName(ctx, "Unknown"); !found {
		t.Error("Expected Unknown artist fallback")
	}
}
