// Package artwork stores embedded cover images as content-addressed AVIF
// files on disk. Identical images across an album collapse to a single file,
// keyed by a short digest of the encoded bytes.
package artwork

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"regexp"

	// Decoders for the image formats found embedded in audio tags.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/gen2brain/avif"
	"golang.org/x/crypto/sha3"

	"github.com/calliope-music/calliope/internal/constants"
	"github.com/calliope-music/calliope/internal/logger"
)

// ErrBadKey is returned by Path for keys that could not have been produced
// by Save. It keeps request paths from escaping the art directory.
var ErrBadKey = errors.New("malformed artwork key")

var keyPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Store writes and resolves content-addressed artwork files under a single
// directory. Safe for concurrent use; writes are idempotent per key.
type Store struct {
	dir string
	log *logger.Logger
}

// New creates the art directory if needed and returns a store over it.
func New(dir string, log *logger.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, constants.DirPermissions); err != nil {
		return nil, fmt.Errorf("create art dir %s: %w", dir, err)
	}
	return &Store{dir: dir, log: log.WithComponent("artwork")}, nil
}

// Save decodes an embedded image, re-encodes it as AVIF and writes it under
// its content key. Returns the key. A key that already has a file on disk is
// returned without rewriting, so duplicate covers cost one decode and no IO.
func (s *Store) Save(data []byte) (string, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("decode artwork: %w", err)
	}

	var buf bytes.Buffer
	if err := avif.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("encode artwork: %w", err)
	}

	key := contentKey(buf.Bytes())
	path := s.filePath(key)
	if _, err := os.Stat(path); err == nil {
		return key, nil
	}
	if err := os.WriteFile(path, buf.Bytes(), constants.FilePermissions); err != nil {
		return "", fmt.Errorf("write artwork %s: %w", key, err)
	}
	s.log.Debug("stored artwork", "key", key, "bytes", buf.Len())
	return key, nil
}

// Path resolves a key to its file on disk. The key is validated before it
// touches the filesystem.
func (s *Store) Path(key string) (string, error) {
	if !keyPattern.MatchString(key) {
		return "", fmt.Errorf("%q: %w", key, ErrBadKey)
	}
	path := s.filePath(key)
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("artwork %s: %w", key, err)
	}
	return path, nil
}

func (s *Store) filePath(key string) string {
	return filepath.Join(s.dir, key+".avif")
}

// contentKey digests the encoded image with SHAKE128 and encodes the first
// 10 bytes as unpadded URL-safe base64, giving short stable filenames.
func contentKey(encoded []byte) string {
	h := sha3.NewShake128()
	h.Write(encoded)
	sum := make([]byte, 10)
	h.Read(sum)
	return base64.RawURLEncoding.EncodeToString(sum)
}
