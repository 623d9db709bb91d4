// Package enrich fetches artist context (bio, tags, picture) from external
// services. Enrichment runs once per artist, at creation time, and every
// failure degrades to a placeholder so the ingestion pipeline never stalls
// on the network.
package enrich

import "context"

// ArtistInfo is the textual context attached to a new artist row.
type ArtistInfo struct {
	Bio  string
	Tags string
}

// BioSource supplies biography and tags for an artist name.
type BioSource interface {
	ArtistInfo(ctx context.Context, name string) ArtistInfo
}

// ImageSource supplies a picture URL for an artist name.
type ImageSource interface {
	ArtistImage(ctx context.Context, name string) string
}
