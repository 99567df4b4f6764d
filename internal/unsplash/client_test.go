package unsplash

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"

	"slidesmith/internal/deck"
)

const photoBody = `{
  "total": 1,
  "results": [{
    "urls": {"regular": "https://images.unsplash.com/photo-1?w=1080"},
    "user": {"name": "Ada Lens", "links": {"html": "https://unsplash.com/@adalens"}},
    "links": {"html": "https://unsplash.com/photos/abc?ref=x"}
  }]
}`

func newTestClient(serverURL string) *Client {
	c := NewClient("test-key", "slidesmith")
	c.baseURL = serverURL
	return c
}

func TestFetchImage(t *testing.T) {
	tests := []struct {
		name       string
		keyword    string
		statusCode int
		body       string
		want       *deck.ImageResult
		wantErr    bool
	}{
		{
			name:       "found",
			keyword:    "mountain",
			statusCode: http.StatusOK,
			body:       photoBody,
			want: &deck.ImageResult{
				URL: "https://images.unsplash.com/photo-1?w=1080",
				Attribution: deck.Attribution{
					PhotographerName: "Ada Lens",
					PhotographerURL:  "https://unsplash.com/@adalens?utm_medium=referral&utm_source=slidesmith",
					UnsplashURL:      "https://unsplash.com/photos/abc?ref=x&utm_medium=referral&utm_source=slidesmith",
				},
			},
		},
		{
			name:       "noResults",
			keyword:    "qwzx",
			statusCode: http.StatusOK,
			body:       `{"total":0,"results":[]}`,
		},
		{
			name:       "unauthorized",
			keyword:    "mountain",
			statusCode: http.StatusUnauthorized,
			body:       `{"errors":["OAuth error: The access token is invalid"]}`,
			wantErr:    true,
		},
		{
			name:       "rateLimited",
			keyword:    "mountain",
			statusCode: http.StatusForbidden,
			body:       `Rate Limit Exceeded`,
			wantErr:    true,
		},
		{
			name:       "badJSON",
			keyword:    "mountain",
			statusCode: http.StatusOK,
			body:       `{"results": [`,
			wantErr:    true,
		},
		{
			name:       "missingURL",
			keyword:    "mountain",
			statusCode: http.StatusOK,
			body:       `{"results":[{"urls":{}}]}`,
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.statusCode)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			got, err := newTestClient(server.URL).FetchImage(context.Background(), tt.keyword)
			if tt.wantErr {
				if !errors.Is(err, deck.ErrImageFetch) {
					t.Errorf("FetchImage() error = %v, want ErrImageFetch", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("FetchImage() unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("FetchImage() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFetchImageRequest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search/photos" {
			t.Errorf("path = %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("query") != "city skyline" || q.Get("per_page") != "1" || q.Get("orientation") != "landscape" {
			t.Errorf("query = %s", r.URL.RawQuery)
		}
		if got := r.Header.Get("Authorization"); got != "Client-ID test-key" {
			t.Errorf("Authorization = %q", got)
		}
		if got := r.Header.Get("Accept-Version"); got != "v1" {
			t.Errorf("Accept-Version = %q", got)
		}
		_, _ = w.Write([]byte(photoBody))
	}))
	defer server.Close()

	if _, err := newTestClient(server.URL).FetchImage(context.Background(), " city skyline "); err != nil {
		t.Fatalf("FetchImage() error = %v", err)
	}
}

func TestFetchImageEmptyKeyword(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer server.Close()

	got, err := newTestClient(server.URL).FetchImage(context.Background(), "   ")
	if got != nil || err != nil {
		t.Errorf("FetchImage() = %v, %v, want nil, nil", got, err)
	}
	if calls != 0 {
		t.Errorf("server called %d times, want 0", calls)
	}
}

func TestFetchImageCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestClient(server.URL).FetchImage(ctx, "mountain")
	if !errors.Is(err, deck.ErrImageFetch) || !errors.Is(err, context.Canceled) {
		t.Errorf("FetchImage() error = %v, want ErrImageFetch wrapping context.Canceled", err)
	}
}
