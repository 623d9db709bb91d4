package library

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bogem/id3v2/v2"
)

func writeTaggedMP3(t *testing.T, path, title, artist string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create dir: %v", err)
	}
	tag := id3v2.NewEmptyTag()
	tag.SetTitle(title)
	tag.SetArtist(artist)
	tag.SetAlbum("Scan Album")
	tag.AddTextFrame("TLEN", tag.DefaultEncoding(), "120000")

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create file: %v", err)
	}
	defer f.Close()
	if _, err := tag.WriteTo(f); err != nil {
		t.Fatalf("Failed to write tag: %v", err)
	}
}

func TestScan(t *testing.T) {
	resolver, db, _, _ := setupResolver(t)
	root := t.TempDir()

	writeTaggedMP3(t, filepath.Join(root, "one.mp3"), "One", "Band")
	writeTaggedMP3(t, filepath.Join(root, "sub", "two.mp3"), "Two", "Band")
	// Damaged and irrelevant files must not stop the walk
	if err := os.WriteFile(filepath.Join(root, "junk.mp3"), []byte("not audio"), 0644); err != nil {
		t.Fatalf("Failed to write junk: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, "cover.jpg"), []byte("jpeg"), 0644); err != nil {
		t.Fatalf("Failed to write cover: %v", err)
	}

	scanner := NewScanner(root, resolver, nil, testLogger())
	if err := scanner.Scan(context.Background()); err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	n, err := db.CountSongs(context.Background())
	if err != nil {
		t.Fatalf("CountSongs failed: %v", err)
	}
	if n != 2 {
		t.Errorf("Expected 2 songs, got %d", n)
	}

	// Rescanning is idempotent
	if err := scanner.Scan(context.Background()); err != nil {
		t.Fatalf("Rescan failed: %v", err)
	}
	if n, _ := db.CountSongs(context.Background()); n != 2 {
		t.Errorf("Expected 2 songs after rescan, got %d", n)
	}
}

func TestScanMissingRoot(t *testing.T) {
	resolver, _, _, _ := setupResolver(t)
	scanner := NewScanner("/does/not/exist", resolver, nil, testLogger())
	if err := scanner.Scan(context.Background()); err == nil {
		t.Error("Expected error for missing root")
	}
}

func TestWatcherStopsOnCancel(t *testing.T) {
	resolver, db, _, _ := setupResolver(t)
	root := t.TempDir()

	scanner := NewScanner(root, resolver, nil, testLogger())
	watcher := NewWatcher(root, scanner, db, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- watcher.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		if err != context.Canceled {
			t.Errorf("Expected context.Canceled, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Watcher did not stop after cancel")
	}
}

func TestWatcherIngestsCreatedFile(t *testing.T) {
	resolver, db, _, _ := setupResolver(t)
	root := t.TempDir()

	scanner := NewScanner(root, resolver, nil, testLogger())
	watcher := NewWatcher(root, scanner, db, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = watcher.Run(ctx) }()

	// Give the watch a moment to land before creating the file
	time.Sleep(200 * time.Millisecond)
	writeTaggedMP3(t, filepath.Join(root, "fresh.mp3"), "Fresh", "Band")

	deadline := time.After(10 * time.Second)
	for {
		if known, _ := db.HasSongAtPath(ctx, filepath.Join(root, "fresh.mp3")); known {
			return
		}
		select {
		case <-deadline:
			t.Fatal("File was never ingested")
		case <-time.After(50 * time.Millisecond):
		}
	}
}
