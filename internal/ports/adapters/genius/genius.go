// Package genius fetches lyrics through the Genius search API plus a
// page scrape, since the API itself does not serve lyric text.
package genius

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/cazares/karaoke-time-by-miguel/internal/domain/lyrics"
)

// ErrNotFound means no Genius page exists for the song, or the page had
// no extractable lyric containers.
var ErrNotFound = errors.New("genius: lyrics not found")

type Adapter struct {
	token      string
	apiBaseURL string
	client     *http.Client
}

// New builds an adapter. apiBaseURL overrides api.genius.com for tests;
// pass "" for the real endpoint.
func New(token, apiBaseURL string) *Adapter {
	if apiBaseURL == "" {
		apiBaseURL = "https://api.genius.com"
	}
	return &Adapter{
		token:      token,
		apiBaseURL: strings.TrimRight(apiBaseURL, "/"),
		client:     &http.Client{Timeout: 30 * time.Second},
	}
}

type searchResponse struct {
	Response struct {
		Hits []struct {
			Result struct {
				URL           string `json:"url"`
				PrimaryArtist struct {
					Name string `json:"name"`
				} `json:"primary_artist"`
			} `json:"result"`
		} `json:"hits"`
	} `json:"response"`
}

// Fetch looks the song up, scrapes its page, and returns cleaned lyric
// text. A hit whose primary artist matches is preferred; otherwise the
// first hit is used, matching the original fetcher's behavior.
func (a *Adapter) Fetch(ctx context.Context, artist, title string) (string, error) {
	pageURL, err := a.findSongURL(ctx, artist, title)
	if err != nil {
		return "", err
	}
	raw, err := a.scrapePage(ctx, pageURL)
	if err != nil {
		return "", err
	}
	clean := lyrics.Clean(raw)
	if strings.TrimSpace(clean) == "" {
		return "", fmt.Errorf("%w: page %s had no lyric text", ErrNotFound, pageURL)
	}
	return clean, nil
}

func (a *Adapter) findSongURL(ctx context.Context, artist, title string) (string, error) {
	q := url.Values{"q": {title + " " + artist}}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.apiBaseURL+"/search?"+q.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("genius: build search request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+a.token)

	resp, err := a.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("genius: search: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("genius: search returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var sr searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return "", fmt.Errorf("genius: decode search response: %w", err)
	}
	hits := sr.Response.Hits
	if len(hits) == 0 {
		return "", fmt.Errorf("%w: no search hits for %q by %q", ErrNotFound, title, artist)
	}
	for _, hit := range hits {
		if strings.Contains(strings.ToLower(hit.Result.PrimaryArtist.Name), strings.ToLower(artist)) {
			return hit.Result.URL, nil
		}
	}
	return hits[0].Result.URL, nil
}

var (
	lyricsContainer = regexp.MustCompile(`(?s)<div[^>]+data-lyrics-container="true"[^>]*>(.*?)</div>`)
	legacyContainer = regexp.MustCompile(`(?s)<div[^>]+class="Lyrics__Container[^"]*"[^>]*>(.*?)</div>`)
	lineBreak       = regexp.MustCompile(`<br\s*/?>`)
	anyTag          = regexp.MustCompile(`<[^>]*>`)
)

func (a *Adapter) scrapePage(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("genius: build page request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; karaoke-time/1.0)")

	resp, err := a.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("genius: fetch page: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("genius: page returned %d for %s", resp.StatusCode, pageURL)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", fmt.Errorf("genius: read page: %w", err)
	}

	blocks := lyricsContainer.FindAllStringSubmatch(string(body), -1)
	if len(blocks) == 0 {
		blocks = legacyContainer.FindAllStringSubmatch(string(body), -1)
	}
	if len(blocks) == 0 {
		return "", fmt.Errorf("%w: no lyric container on %s", ErrNotFound, pageURL)
	}

	var parts []string
	for _, m := range blocks {
		text := lineBreak.ReplaceAllString(m[1], "\n")
		text = anyTag.ReplaceAllString(text, "")
		parts = append(parts, html.UnescapeString(text))
	}
	return strings.TrimSpace(strings.Join(parts, "\n")), nil
}
