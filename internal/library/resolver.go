// Package library drives ingestion: resolving parsed metadata into catalog
// rows, scanning the music tree, and watching it for new files.
package library

import (
	"context"
	"fmt"
	"strings"

	"github.com/calliope-music/calliope/internal/artwork"
	"github.com/calliope-music/calliope/internal/domain"
	"github.com/calliope-music/calliope/internal/enrich"
	"github.com/calliope-music/calliope/internal/logger"
	"github.com/calliope-music/calliope/internal/store"
)

// Resolver turns one parsed metadata record into catalog rows, creating
// artists, album, genres and the song itself as needed. All writes are
// idempotent, so resolving the same file twice leaves the catalog unchanged.
type Resolver struct {
	store  *store.Store
	art    *artwork.Store
	bios   enrich.BioSource
	images enrich.ImageSource
	log    *logger.Logger
}

// NewResolver wires a resolver over the store, artwork store and enrichment
// sources.
func NewResolver(st *store.Store, art *artwork.Store, bios enrich.BioSource, images enrich.ImageSource, log *logger.Logger) *Resolver {
	return &Resolver{
		store:  st,
		art:    art,
		bios:   bios,
		images: images,
		log:    log.WithComponent("resolver"),
	}
}

// AddSong resolves one metadata record into the catalog. Artwork and
// enrichment failures are logged and skipped; only database errors abort.
func (r *Resolver) AddSong(ctx context.Context, meta *domain.AudioMetadata) error {
	artistIDs := make([]int64, 0, len(meta.Artists))
	for _, name := range meta.Artists {
		id, err := r.findOrCreateArtist(ctx, name)
		if err != nil {
			return err
		}
		artistIDs = append(artistIDs, id)
	}

	albumArtistID, err := r.findOrCreateArtist(ctx, meta.AlbumArtist)
	if err != nil {
		return err
	}

	albumName := meta.Album
	if albumName == "" {
		albumName = "Unknown"
	}
	albumID, created, err := r.store.UpsertAlbum(ctx, albumName, albumArtistID, meta.Year)
	if err != nil {
		return err
	}

	// Artwork is bound once, when the album row is created. Re-encoding every
	// embedded picture on every rescan would burn CPU for nothing.
	if created {
		for _, pic := range meta.Pictures {
			key, err := r.art.Save(pic.Bytes)
			if err != nil {
				r.log.Warn("skipping artwork", "song", meta.Name, "type", pic.Type, "error", err)
				continue
			}
			if err := r.store.LinkAlbumArt(ctx, albumID, key); err != nil {
				return err
			}
		}
	}

	songID, err := r.store.UpsertSong(ctx, meta, albumID, albumArtistID)
	if err != nil {
		return err
	}

	for _, artistID := range artistIDs {
		if err := r.store.LinkSongArtist(ctx, songID, artistID); err != nil {
			return err
		}
	}
	for _, genre := range genreNames(meta.Genres) {
		genreID, err := r.store.UpsertGenre(ctx, genre)
		if err != nil {
			return err
		}
		if err := r.store.LinkSongGenre(ctx, songID, genreID); err != nil {
			return err
		}
	}

	r.log.Debug("resolved song", "song", meta.Name, "path", meta.Path)
	return nil
}

// genreNames normalizes a parsed genre list. A lone entry may be a single
// delimited string ("Rock, Pop"), which splits on commas; longer lists are
// already split by the parser.
func genreNames(genres []string) []string {
	if len(genres) != 1 {
		return genres
	}
	parts := strings.Split(genres[0], ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// findOrCreateArtist returns the artist's id, enriching and inserting the
// row on first sighting. Existing artists are never re-enriched.
func (r *Resolver) findOrCreateArtist(ctx context.Context, name string) (int64, error) {
	if name == "" {
		name = "Unknown"
	}

	if id, found, err := r.store.ArtistIDByName(ctx, name); err != nil {
		return 0, err
	} else if found {
		return id, nil
	}

	info := r.bios.ArtistInfo(ctx, name)
	picture := r.images.ArtistImage(ctx, name)

	id, err := r.store.UpsertArtist(ctx, name, info.Bio, picture, info.Tags)
	if err != nil {
		return 0, fmt.Errorf("create artist %q: %w", name, err)
	}
	r.log.Info("created artist", "artist", name)
	return id, nil
}
