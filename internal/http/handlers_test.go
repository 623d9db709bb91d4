package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/calliope-music/calliope/internal/artwork"
	"github.com/calliope-music/calliope/internal/domain"
	"github.com/calliope-music/calliope/internal/logger"
	"github.com/calliope-music/calliope/internal/store"
	"github.com/calliope-music/calliope/internal/transcode"
)

type testEnv struct {
	router chi.Router
	store  *store.Store
	songID int64
	path   string
}

func setupHandler(t *testing.T) *testEnv {
	t.Helper()
	log := logger.Default()

	db, err := store.Open(filepath.Join(t.TempDir(), "test.db"), log)
	if err != nil {
		t.Fatalf("Failed to open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	art, err := artwork.New(t.TempDir(), log)
	if err != nil {
		t.Fatalf("Failed to create artwork store: %v", err)
	}

	tc, err := transcode.New("/nonexistent/ffmpeg", t.TempDir(), log)
	if err != nil {
		t.Fatalf("Failed to create transcoder: %v", err)
	}

	// Seed one song backed by a real file
	ctx := context.Background()
	audioPath := filepath.Join(t.TempDir(), "song.mp3")
	if err := os.WriteFile(audioPath, []byte("raw audio bytes"), 0644); err != nil {
		t.Fatalf("Failed to write audio file: %v", err)
	}
	artist, _ := db.UpsertArtist(ctx, "Band", "", "", "")
	album, _, _ := db.UpsertAlbum(ctx, "Album", artist, 0)
	songID, err := db.UpsertSong(ctx, &domain.AudioMetadata{
		Name: "Song", Path: audioPath, Duration: 100,
	}, album, artist)
	if err != nil {
		t.Fatalf("Failed to seed song: %v", err)
	}

	h := NewHandler(db, art, tc, log)
	return &testEnv{router: NewRouter(h), store: db, songID: songID, path: audioPath}
}

func (e *testEnv) do(t *testing.T, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func TestGetTrack(t *testing.T) {
	env := setupHandler(t)

	rec := env.do(t, http.MethodGet, "/track/1")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	var song domain.Song
	if err := json.NewDecoder(rec.Body).Decode(&song); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if song.Name != "Song" {
		t.Errorf("Expected song name Song, got %q", song.Name)
	}

	if rec := env.do(t, http.MethodGet, "/track/999"); rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for missing track, got %d", rec.Code)
	}
	if rec := env.do(t, http.MethodGet, "/track/abc"); rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for bad id, got %d", rec.Code)
	}
	if rec := env.do(t, http.MethodGet, "/track/-1"); rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for negative id, got %d", rec.Code)
	}
}

func TestStreamTrack(t *testing.T) {
	env := setupHandler(t)

	rec := env.do(t, http.MethodGet, "/track/1/stream")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if got := rec.Body.String(); got != "raw audio bytes" {
		t.Errorf("Expected file contents, got %q", got)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "audio/mpeg" {
		t.Errorf("Expected audio/mpeg, got %q", ct)
	}

	if rec := env.do(t, http.MethodGet, "/track/999/stream"); rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for missing track, got %d", rec.Code)
	}
}

func TestRecordPlay(t *testing.T) {
	env := setupHandler(t)

	for i := 0; i < 3; i++ {
		if rec := env.do(t, http.MethodPost, "/track/1/play"); rec.Code != http.StatusNoContent {
			t.Fatalf("Expected 204, got %d", rec.Code)
		}
	}

	song, err := env.store.GetSong(context.Background(), env.songID)
	if err != nil {
		t.Fatalf("GetSong failed: %v", err)
	}
	if song.Plays != 3 {
		t.Errorf("Expected 3 plays, got %d", song.Plays)
	}

	if rec := env.do(t, http.MethodPost, "/track/999/play"); rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for missing track, got %d", rec.Code)
	}
}

func TestLikeUnlike(t *testing.T) {
	env := setupHandler(t)
	ctx := context.Background()

	if rec := env.do(t, http.MethodPost, "/track/1/like"); rec.Code != http.StatusNoContent {
		t.Fatalf("Expected 204, got %d", rec.Code)
	}
	song, _ := env.store.GetSong(ctx, env.songID)
	if !song.Liked {
		t.Error("Expected song to be liked")
	}

	if rec := env.do(t, http.MethodDelete, "/track/1/like"); rec.Code != http.StatusNoContent {
		t.Fatalf("Expected 204, got %d", rec.Code)
	}
	song, _ = env.store.GetSong(ctx, env.songID)
	if song.Liked {
		t.Error("Expected song to be unliked")
	}
}

func TestGetImage(t *testing.T) {
	env := setupHandler(t)

	if rec := env.do(t, http.MethodGet, "/image/..%2Fsecret"); rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for malformed key, got %d", rec.Code)
	}
	if rec := env.do(t, http.MethodGet, "/image/AAAAAAAAAAAAAA"); rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for missing key, got %d", rec.Code)
	}
}

func TestHealth(t *testing.T) {
	env := setupHandler(t)
	if rec := env.do(t, http.MethodGet, "/health"); rec.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", rec.Code)
	}
}
