// Package http exposes the catalog over REST: raw streaming, on-the-fly
// transcoding, artwork and the play/like counters.
package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/calliope-music/calliope/internal/artwork"
	"github.com/calliope-music/calliope/internal/constants"
	"github.com/calliope-music/calliope/internal/logger"
	"github.com/calliope-music/calliope/internal/store"
	"github.com/calliope-music/calliope/internal/transcode"
)

// Handler carries the dependencies of every route.
type Handler struct {
	store      *store.Store
	art        *artwork.Store
	transcoder *transcode.Transcoder
	log        *logger.Logger
}

// NewHandler wires a handler over the store, artwork store and transcoder.
func NewHandler(st *store.Store, art *artwork.Store, tc *transcode.Transcoder, log *logger.Logger) *Handler {
	return &Handler{store: st, art: art, transcoder: tc, log: log.WithComponent("http")}
}

func (h *Handler) getTrack(w http.ResponseWriter, r *http.Request) {
	id, ok := trackID(w, r)
	if !ok {
		return
	}
	song, err := h.store.GetSong(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, song)
}

// streamTrack serves the original file untouched. ServeFile handles range
// requests, which seeking clients depend on.
func (h *Handler) streamTrack(w http.ResponseWriter, r *http.Request) {
	id, ok := trackID(w, r)
	if !ok {
		return
	}
	path, err := h.store.SongPath(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if mime, ok := constants.AudioMIMETypes[strings.ToLower(filepath.Ext(path))]; ok {
		w.Header().Set("Content-Type", mime)
	}
	http.ServeFile(w, r, path)
}

// transcodeTrack converts the file to the requested codec and bitrate and
// streams the result as it is produced. Unknown codec or bitrate values fall
// back to defaults instead of failing.
func (h *Handler) transcodeTrack(w http.ResponseWriter, r *http.Request) {
	id, ok := trackID(w, r)
	if !ok {
		return
	}
	path, err := h.store.SongPath(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	profile := transcode.ResolveProfile(r.URL.Query().Get("codec"))
	bitrate := transcode.NormalizeBitrate(r.URL.Query().Get("dps"))

	w.Header().Set("Content-Type", profile.MIME)
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", strconv.FormatInt(id, 10)+profile.Extension))
	err = h.transcoder.Stream(r.Context(), w, path, profile, bitrate)
	if err != nil && r.Context().Err() == nil {
		// Headers are long gone; all we can do is cut the stream and log.
		h.log.Error("transcode stream failed", "song", id, "codec", profile.Name, "error", err)
	}
}

func (h *Handler) getImage(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	path, err := h.art.Path(key)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", constants.MimeTypeAVIF)
	http.ServeFile(w, r, path)
}

func (h *Handler) recordPlay(w http.ResponseWriter, r *http.Request) {
	id, ok := trackID(w, r)
	if !ok {
		return
	}
	if err := h.store.IncrementPlays(r.Context(), id); err != nil {
		h.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) likeTrack(w http.ResponseWriter, r *http.Request) {
	h.setLiked(w, r, true)
}

func (h *Handler) unlikeTrack(w http.ResponseWriter, r *http.Request) {
	h.setLiked(w, r, false)
}

func (h *Handler) setLiked(w http.ResponseWriter, r *http.Request, liked bool) {
	id, ok := trackID(w, r)
	if !ok {
		return
	}
	if err := h.store.SetLiked(r.Context(), id, liked); err != nil {
		h.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func trackID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "invalid track id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func (h *Handler) respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound), errors.Is(err, fs.ErrNotExist):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, artwork.ErrBadKey):
		http.Error(w, "bad request", http.StatusBadRequest)
	default:
		h.log.Error("request failed", "path", r.URL.Path, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}
