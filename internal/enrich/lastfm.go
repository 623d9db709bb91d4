package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/calliope-music/calliope/internal/constants"
	"github.com/calliope-music/calliope/internal/logger"
)

const lastFMBaseURL = "https://ws.audioscrobbler.com/2.0/"

// LastFM fetches artist biographies and tags via the artist.getinfo method.
// A zero API key disables it; callers get placeholders back.
type LastFM struct {
	apiKey  string
	baseURL string
	client  *client
	log     *logger.Logger
}

// NewLastFM builds a Last.fm bio source. apiKey may be empty.
func NewLastFM(apiKey string, log *logger.Logger) *LastFM {
	return &LastFM{
		apiKey:  apiKey,
		baseURL: lastFMBaseURL,
		client:  newClient(constants.EnrichRequestInterval),
		log:     log.WithComponent("lastfm"),
	}
}

type lastFMResponse struct {
	Artist struct {
		Bio struct {
			Summary string `json:"summary"`
		} `json:"bio"`
		Tags struct {
			Tag []struct {
				Name string `json:"name"`
			} `json:"tag"`
		} `json:"tags"`
	} `json:"artist"`
}

// ArtistInfo returns the artist's bio summary and comma-joined tags, or
// placeholders when the service is unconfigured, unreachable or has never
// heard of the artist.
func (l *LastFM) ArtistInfo(ctx context.Context, name string) ArtistInfo {
	placeholder := ArtistInfo{Bio: constants.PlaceholderBio}
	if l.apiKey == "" {
		return placeholder
	}

	info, err := l.fetch(ctx, name)
	if err != nil {
		l.log.Warn("artist info lookup failed", "artist", name, "error", err)
		return placeholder
	}
	return info
}

func (l *LastFM) fetch(ctx context.Context, name string) (ArtistInfo, error) {
	q := url.Values{}
	q.Set("method", "artist.getinfo")
	q.Set("artist", name)
	q.Set("api_key", l.apiKey)
	q.Set("format", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		l.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return ArtistInfo{}, fmt.Errorf("build request: %w", err)
	}

	resp, err := l.client.do(ctx, req)
	if err != nil {
		return ArtistInfo{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ArtistInfo{}, fmt.Errorf("last.fm returned status %d", resp.StatusCode)
	}

	var body lastFMResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return ArtistInfo{}, fmt.Errorf("decode response: %w", err)
	}

	bio := body.Artist.Bio.Summary
	// The summary ends in a "Read more" anchor; everything from the first
	// opening tag on is boilerplate.
	if i := strings.Index(bio, " <a href"); i >= 0 {
		bio = bio[:i]
	}
	bio = strings.TrimSpace(bio)
	if bio == "" {
		bio = constants.PlaceholderBio
	}

	var tags []string
	for _, t := range body.Artist.Tags.Tag {
		if t.Name != "" {
			tags = append(tags, t.Name)
		}
	}

	return ArtistInfo{Bio: bio, Tags: strings.Join(tags, ", ")}, nil
}
