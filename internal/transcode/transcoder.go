package transcode

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/smallnest/ringbuffer"
	"golang.org/x/crypto/sha3"

	"github.com/calliope-music/calliope/internal/constants"
	"github.com/calliope-music/calliope/internal/logger"
)

// errClientGone unblocks the producer goroutine once the response writer is
// no longer consuming.
var errClientGone = errors.New("client stopped reading")

// Transcoder spawns ffmpeg sessions and maintains the conversion cache. One
// session serves one request; a finished conversion is renamed into the
// cache so the next identical request is a plain file copy.
type Transcoder struct {
	ffmpegPath string
	cacheDir   string
	log        *logger.Logger

	mu       sync.Mutex
	inflight map[string]struct{}
}

// New creates the cache directory and returns a transcoder.
func New(ffmpegPath, cacheDir string, log *logger.Logger) (*Transcoder, error) {
	if err := os.MkdirAll(cacheDir, constants.DirPermissions); err != nil {
		return nil, fmt.Errorf("create cache dir %s: %w", cacheDir, err)
	}
	return &Transcoder{
		ffmpegPath: ffmpegPath,
		cacheDir:   cacheDir,
		log:        log.WithComponent("transcode"),
		inflight:   make(map[string]struct{}),
	}, nil
}

// Stream writes the requested conversion of srcPath to w. A complete cached
// conversion is served from disk; otherwise ffmpeg output is streamed to the
// client as it is produced and teed into the cache. Cancelling ctx kills the
// subprocess and discards the partial cache file.
func (t *Transcoder) Stream(ctx context.Context, w io.Writer, srcPath string, profile Profile, bitrate string) error {
	log := t.log.WithSession(uuid.NewString())
	key := conversionKey(srcPath, profile, bitrate)
	final := filepath.Join(t.cacheDir, key+profile.Extension)

	if f, err := os.Open(final); err == nil {
		defer f.Close()
		log.Debug("serving cached conversion", "key", key)
		if _, err := io.Copy(w, f); err != nil {
			return fmt.Errorf("serve cached conversion %s: %w", key, err)
		}
		return nil
	}

	args := []string{"-i", srcPath, "-map", "0:a:0",
		"-f", profile.Format, "-c:a", profile.Encoder}
	if !profile.Lossless {
		args = append(args, "-b:a", bitrate)
	}
	args = append(args, profile.ExtraArgs...)
	args = append(args, "-")

	cmd := exec.CommandContext(ctx, t.ffmpegPath, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("ffmpeg stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start ffmpeg: %w", err)
	}
	log.Debug("started ffmpeg", "path", srcPath, "codec", profile.Name, "bitrate", bitrate)

	// Only one session per key writes the cache; concurrent requests for the
	// same conversion just stream their own ffmpeg output.
	var part *os.File
	partPath := final + ".part"
	if t.claim(key) {
		defer t.release(key)
		part, err = os.OpenFile(partPath,
			os.O_CREATE|os.O_WRONLY|os.O_TRUNC, constants.FilePermissions)
		if err != nil {
			log.Warn("cache write disabled for session", "key", key, "error", err)
			part = nil
		}
	}

	// The ring buffer decouples ffmpeg's burst rate from the client's read
	// rate with a bounded amount of memory. Blocking mode gives backpressure
	// on both sides instead of overruns.
	rb := ringbuffer.New(constants.StreamBufferSize)
	rb.SetBlocking(true)

	produced := make(chan struct{})
	go func() {
		defer close(produced)
		var dst io.Writer = rb
		if part != nil {
			dst = io.MultiWriter(rb, part)
		}
		if _, err := io.Copy(dst, stdout); err != nil {
			rb.CloseWithError(err)
			return
		}
		rb.CloseWriter()
	}()

	_, copyErr := io.Copy(w, rb)
	if copyErr != nil {
		// Unblock the producer; ffmpeg dies with the context or a broken pipe.
		rb.CloseWithError(errClientGone)
	}
	// Wait closes stdout, so the producer must be done reading it first.
	<-produced
	waitErr := cmd.Wait()

	complete := copyErr == nil && waitErr == nil && ctx.Err() == nil
	if part != nil {
		part.Close()
		if complete {
			if err := os.Rename(partPath, final); err != nil {
				log.Warn("failed to finalize cache entry", "key", key, "error", err)
			}
		} else {
			os.Remove(partPath)
		}
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	if waitErr != nil {
		return fmt.Errorf("ffmpeg failed: %w: %s", waitErr, lastStderrLine(&stderr))
	}
	if copyErr != nil {
		return fmt.Errorf("stream conversion %s: %w", key, copyErr)
	}
	return nil
}

func (t *Transcoder) claim(key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, busy := t.inflight[key]; busy {
		return false
	}
	t.inflight[key] = struct{}{}
	return true
}

func (t *Transcoder) release(key string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.inflight, key)
}

// conversionKey names one conversion for caching and in-flight claims.
// Lossless profiles ignore the requested bitrate, so it is dropped from the
// key and every bitrate shares a single cache entry.
func conversionKey(srcPath string, profile Profile, bitrate string) string {
	if profile.Lossless {
		bitrate = ""
	}
	return cacheKey(srcPath, profile.Name, bitrate)
}

// cacheKey derives a stable filename for one (source, codec, bitrate)
// conversion.
func cacheKey(path, codec, bitrate string) string {
	h := sha3.NewShake128()
	fmt.Fprintf(h, "%s|%s|%s", path, codec, bitrate)
	sum := make([]byte, 10)
	h.Read(sum)
	return base64.RawURLEncoding.EncodeToString(sum)
}

// lastStderrLine extracts the final non-empty stderr line, which is where
// ffmpeg puts its actual complaint.
func lastStderrLine(buf *bytes.Buffer) string {
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return "no stderr output"
}
