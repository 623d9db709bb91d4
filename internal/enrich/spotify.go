package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/calliope-music/calliope/internal/constants"
	"github.com/calliope-music/calliope/internal/logger"
)

const (
	spotifyTokenURL  = "https://accounts.spotify.com/api/token"
	spotifySearchURL = "https://api.spotify.com/v1/search"
)

// Spotify resolves artist picture URLs through the Web API using the
// client-credentials flow. Tokens are cached until shortly before expiry.
// Missing credentials or any upstream failure yields the placeholder image.
type Spotify struct {
	clientID     string
	clientSecret string
	tokenURL     string
	searchURL    string
	client       *client
	log          *logger.Logger

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

// NewSpotify builds a Spotify image source. Credentials may be empty.
func NewSpotify(clientID, clientSecret string, log *logger.Logger) *Spotify {
	return &Spotify{
		clientID:     clientID,
		clientSecret: clientSecret,
		tokenURL:     spotifyTokenURL,
		searchURL:    spotifySearchURL,
		client:       newClient(constants.EnrichRequestInterval),
		log:          log.WithComponent("spotify"),
	}
}

// ArtistImage returns the URL of the artist's largest profile image, or the
// placeholder when the lookup cannot be completed.
func (s *Spotify) ArtistImage(ctx context.Context, name string) string {
	if s.clientID == "" || s.clientSecret == "" {
		return constants.PlaceholderArtistImage
	}

	img, err := s.fetch(ctx, name)
	if err != nil {
		s.log.Warn("artist image lookup failed", "artist", name, "error", err)
		return constants.PlaceholderArtistImage
	}
	return img
}

func (s *Spotify) fetch(ctx context.Context, name string) (string, error) {
	token, err := s.token(ctx)
	if err != nil {
		return "", err
	}

	q := url.Values{}
	q.Set("q", name)
	q.Set("type", "artist")
	q.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		s.searchURL+"?"+q.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := s.client.do(ctx, req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("spotify returned status %d", resp.StatusCode)
	}

	var body struct {
		Artists struct {
			Items []struct {
				Images []struct {
					URL string `json:"url"`
				} `json:"images"`
			} `json:"items"`
		} `json:"artists"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	if len(body.Artists.Items) == 0 || len(body.Artists.Items[0].Images) == 0 {
		return "", fmt.Errorf("no image for artist %q", name)
	}
	return body.Artists.Items[0].Images[0].URL, nil
}

// token returns a cached access token, refreshing it when expired.
func (s *Spotify) token(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.accessToken != "" && time.Now().Before(s.tokenExpiry) {
		return s.accessToken, nil
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		s.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("build token request: %w", err)
	}
	req.SetBasicAuth(s.clientID, s.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.do(ctx, req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("spotify token returned status %d", resp.StatusCode)
	}

	var body struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}
	if body.AccessToken == "" {
		return "", fmt.Errorf("spotify token response had no access_token")
	}

	s.accessToken = body.AccessToken
	// Refresh a minute early so in-flight requests never carry a dying token.
	s.tokenExpiry = time.Now().Add(time.Duration(body.ExpiresIn)*time.Second - time.Minute)
	return s.accessToken, nil
}
