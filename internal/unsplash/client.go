package unsplash

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"slidesmith/internal/deck"
	"slidesmith/pkg/httputil"
)

const (
	baseURL        = "https://api.unsplash.com"
	defaultTimeout = 10 * time.Second
)

// Provider looks up a single image for a keyword. A nil result with a nil
// error means nothing matched.
type Provider interface {
	FetchImage(ctx context.Context, keyword string) (*deck.ImageResult, error)
}

var _ Provider = (*Client)(nil)

type Client struct {
	accessKey string
	appName   string
	http      *httputil.Client
	baseURL   string
}

type searchResponse struct {
	Results []photo `json:"results"`
}

type photo struct {
	URLs struct {
		Regular string `json:"regular"`
	} `json:"urls"`
	User struct {
		Name  string `json:"name"`
		Links struct {
			HTML string `json:"html"`
		} `json:"links"`
	} `json:"user"`
	Links struct {
		HTML string `json:"html"`
	} `json:"links"`
}

func NewClient(accessKey, appName string) *Client {
	return &Client{
		accessKey: accessKey,
		appName:   appName,
		http:      httputil.NewClient(&http.Client{Timeout: defaultTimeout}, 0),
		baseURL:   baseURL,
	}
}

func (c *Client) FetchImage(ctx context.Context, keyword string) (*deck.ImageResult, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, nil
	}

	params := url.Values{}
	params.Set("query", keyword)
	params.Set("per_page", "1")
	params.Set("orientation", "landscape")

	reqURL := fmt.Sprintf("%s/search/photos?%s", c.baseURL, params.Encode())

	header := http.Header{}
	header.Set("Authorization", "Client-ID "+c.accessKey)
	header.Set("Accept-Version", "v1")

	var resp searchResponse
	if err := c.http.GetJSON(ctx, reqURL, header, &resp); err != nil {
		return nil, fmt.Errorf("%w: search %q: %w", deck.ErrImageFetch, keyword, err)
	}

	if len(resp.Results) == 0 {
		return nil, nil
	}

	p := resp.Results[0]
	if p.URLs.Regular == "" {
		return nil, fmt.Errorf("%w: search %q: result has no image url", deck.ErrImageFetch, keyword)
	}

	return &deck.ImageResult{
		URL: p.URLs.Regular,
		Attribution: deck.Attribution{
			PhotographerName: p.User.Name,
			PhotographerURL:  c.referral(p.User.Links.HTML),
			UnsplashURL:      c.referral(p.Links.HTML),
		},
	}, nil
}

// referral adds the utm tags Unsplash requires on attribution links.
func (c *Client) referral(link string) string {
	if link == "" {
		return ""
	}
	u, err := url.Parse(link)
	if err != nil {
		return link
	}
	q := u.Query()
	q.Set("utm_source", c.appName)
	q.Set("utm_medium", "referral")
	u.RawQuery = q.Encode()
	return u.String()
}
