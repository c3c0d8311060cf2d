package wikimedia

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const (
	defaultBaseURL   = "https://commons.wikimedia.org/w/api.php"
	defaultUserAgent = "garden-cli/1.0 (+https://github.com/plotwise/garden)"
	thumbWidth       = 400
)

var ErrNoImage = errors.New("no wikimedia image found")

type Image struct {
	Title          string
	URL            string
	ThumbURL       string
	DescriptionURL string
	Author         string
	License        string
}

type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	UserAgent  string
}

// SearchImage returns the best Commons file match for query along with the
// raw response body, which callers may cache.
func (c *Client) SearchImage(ctx context.Context, query string) (Image, []byte, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return Image{}, nil, fmt.Errorf("wikimedia query is required")
	}
	base := strings.TrimSpace(c.BaseURL)
	if base == "" {
		base = defaultBaseURL
	}
	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	ua := strings.TrimSpace(c.UserAgent)
	if ua == "" {
		ua = defaultUserAgent
	}

	params := url.Values{}
	params.Set("action", "query")
	params.Set("format", "json")
	params.Set("formatversion", "2")
	params.Set("generator", "search")
	params.Set("gsrsearch", query+" filetype:bitmap")
	params.Set("gsrnamespace", "6")
	params.Set("gsrlimit", "3")
	params.Set("prop", "imageinfo")
	params.Set("iiprop", "url|extmetadata")
	params.Set("iiurlwidth", fmt.Sprint(thumbWidth))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"?"+params.Encode(), nil)
	if err != nil {
		return Image{}, nil, fmt.Errorf("create wikimedia request: %w", err)
	}
	req.Header.Set("User-Agent", ua)
	req.Header.Set("Accept", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		return Image{}, nil, fmt.Errorf("execute wikimedia request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Image{}, nil, fmt.Errorf("read wikimedia response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Image{}, body, fmt.Errorf("wikimedia request failed with status %d", resp.StatusCode)
	}

	var parsed searchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return Image{}, body, fmt.Errorf("decode wikimedia response: %w", err)
	}
	if parsed.Error != nil {
		return Image{}, body, fmt.Errorf("wikimedia api error %s: %s", parsed.Error.Code, parsed.Error.Info)
	}

	pages := parsed.Query.Pages
	sort.SliceStable(pages, func(i, j int) bool { return pages[i].Index < pages[j].Index })
	for _, p := range pages {
		if len(p.ImageInfo) == 0 || p.ImageInfo[0].URL == "" {
			continue
		}
		info := p.ImageInfo[0]
		return Image{
			Title:          p.Title,
			URL:            info.URL,
			ThumbURL:       info.ThumbURL,
			DescriptionURL: info.DescriptionURL,
			Author:         htmlText(info.ExtMetadata["Artist"].Value),
			License:        htmlText(info.ExtMetadata["LicenseShortName"].Value),
		}, body, nil
	}
	return Image{}, body, fmt.Errorf("%w for %q", ErrNoImage, query)
}

// htmlText flattens the HTML fragments Commons returns in extmetadata.
func htmlText(fragment string) string {
	fragment = strings.TrimSpace(fragment)
	if fragment == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return fragment
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}

type searchResponse struct {
	Query struct {
		Pages []page `json:"pages"`
	} `json:"query"`
	Error *struct {
		Code string `json:"code"`
		Info string `json:"info"`
	} `json:"error"`
}

type page struct {
	PageID    int64       `json:"pageid"`
	Title     string      `json:"title"`
	Index     int         `json:"index"`
	ImageInfo []imageInfo `json:"imageinfo"`
}

type imageInfo struct {
	URL            string                   `json:"url"`
	ThumbURL       string                   `json:"thumburl"`
	DescriptionURL string                   `json:"descriptionurl"`
	ExtMetadata    map[string]metadataValue `json:"extmetadata"`
}

type metadataValue struct {
	Value string `json:"value"`
}
