package genius

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestServer(t *testing.T, hits func(base string) string, page string) *httptest.Server {
	t.Helper()
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/search"):
			if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
				t.Errorf("missing bearer token, got %q", got)
			}
			fmt.Fprintf(w, `{"response":{"hits":[%s]}}`, hits(srv.URL))
		case r.URL.Path == "/song-page":
			fmt.Fprint(w, page)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

const songPage = `<html><body>
<div data-lyrics-container="true">The past recedes<br/>Like a wave goodbye<br/><br/>And I wonder why</div>
<div data-lyrics-container="true">42 Contributors<br/>One more verse &amp; done</div>
</body></html>`

func TestFetch_ScrapesAndCleans(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, func(base string) string {
		return fmt.Sprintf(`{"result":{"url":%q,"primary_artist":{"name":"John Frusciante"}}}`, base+"/song-page")
	}, songPage)

	a := New("test-token", srv.URL)
	got, err := a.Fetch(context.Background(), "John Frusciante", "The Past Recedes")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	for _, want := range []string{"The past recedes", "Like a wave goodbye", "One more verse & done"} {
		if !strings.Contains(got, want) {
			t.Errorf("lyrics missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "Contributors") {
		t.Errorf("metadata survived cleanup:\n%s", got)
	}
}

func TestFetch_PrefersMatchingArtist(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, func(base string) string {
		wrong := fmt.Sprintf(`{"result":{"url":%q,"primary_artist":{"name":"Cover Band"}}}`, base+"/nope")
		right := fmt.Sprintf(`{"result":{"url":%q,"primary_artist":{"name":"John Frusciante"}}}`, base+"/song-page")
		return wrong + "," + right
	}, songPage)

	a := New("test-token", srv.URL)
	if _, err := a.Fetch(context.Background(), "Frusciante", "The Past Recedes"); err != nil {
		t.Fatalf("fetch should use the artist-matching hit: %v", err)
	}
}

func TestFetch_NoHits(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, func(string) string { return "" }, "")
	a := New("test-token", srv.URL)
	_, err := a.Fetch(context.Background(), "Nobody", "Nothing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestFetch_PageWithoutLyricContainer(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, func(base string) string {
		return fmt.Sprintf(`{"result":{"url":%q,"primary_artist":{"name":"X"}}}`, base+"/song-page")
	}, `<html><body><p>nothing here</p></body></html>`)

	a := New("test-token", srv.URL)
	_, err := a.Fetch(context.Background(), "X", "Y")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
