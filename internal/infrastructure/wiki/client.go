package wiki

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"

	"WikiAnswers/internal/config"
	"WikiAnswers/internal/domain"
	"WikiAnswers/internal/ports"
)

const captionPlaceholder = "No caption available"

// supportedSuffixes lists raster/vector formats kept from image enumeration,
// matched case-insensitively against the file title.
var supportedSuffixes = []string{".jpg", ".jpeg", ".png", ".svg"}

// Client talks to a MediaWiki action API for search, extracts, and image
// metadata.
type Client struct {
	apiURL     string
	userAgent  string
	httpClient *http.Client
	sanitizer  *bluemonday.Policy
}

var _ ports.ContentService = (*Client)(nil)

// NewClient builds a content-service client from configuration.
func NewClient(cfg config.WikiConfig) *Client {
	return &Client{
		apiURL:     cfg.APIURL,
		userAgent:  cfg.UserAgent,
		httpClient: &http.Client{Timeout: cfg.Timeout()},
		sanitizer:  bluemonday.StrictPolicy(),
	}
}

type searchResponse struct {
	Query struct {
		Search []struct {
			Title string `json:"title"`
		} `json:"search"`
	} `json:"query"`
}

type pagesResponse struct {
	Query struct {
		Pages []page `json:"pages"`
	} `json:"query"`
}

type page struct {
	Title   string      `json:"title"`
	Missing bool        `json:"missing"`
	Extract *string     `json:"extract"`
	Images  []imageRef  `json:"images"`
	Info    []imageInfo `json:"imageinfo"`
}

type imageRef struct {
	Title string `json:"title"`
}

type imageInfo struct {
	URL         string `json:"url"`
	ExtMetadata struct {
		ObjectName       metaValue `json:"ObjectName"`
		ImageDescription metaValue `json:"ImageDescription"`
	} `json:"extmetadata"`
}

type metaValue struct {
	Value string `json:"value"`
}

// Search returns the top search hit's title, or "" when nothing matched.
func (c *Client) Search(ctx context.Context, term string) (string, error) {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("list", "search")
	params.Set("srsearch", term)
	params.Set("srlimit", "1")

	var resp searchResponse
	if err := c.get(ctx, params, &resp); err != nil {
		return "", fmt.Errorf("search %q: %w", term, err)
	}

	if len(resp.Query.Search) == 0 {
		return "", nil
	}
	return resp.Query.Search[0].Title, nil
}

// Extract fetches the plain-text body of the titled article.
func (c *Client) Extract(ctx context.Context, title string) (string, error) {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("prop", "extracts")
	params.Set("explaintext", "1")
	params.Set("redirects", "1")
	params.Set("titles", title)

	pg, err := c.firstPage(ctx, params)
	if err != nil {
		return "", fmt.Errorf("extract %q: %w", title, err)
	}

	if pg.Missing {
		return "", fmt.Errorf("extract %q: %w", title, domain.ErrNotFound)
	}
	if pg.Extract == nil {
		return "", fmt.Errorf("extract %q: %w", title, domain.ErrFetchFailure)
	}

	return *pg.Extract, nil
}

// ListImages enumerates the article's image file titles, keeping only
// supported formats.
func (c *Client) ListImages(ctx context.Context, title string) ([]string, error) {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("prop", "images")
	params.Set("imlimit", "max")
	params.Set("redirects", "1")
	params.Set("titles", title)

	pg, err := c.firstPage(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("list images for %q: %w", title, err)
	}

	titles := make([]string, 0, len(pg.Images))
	for _, img := range pg.Images {
		if hasSupportedSuffix(img.Title) {
			titles = append(titles, img.Title)
		}
	}

	return titles, nil
}

// ImageInfo resolves one file title to its direct URL, caption, and
// description.
func (c *Client) ImageInfo(ctx context.Context, fileTitle string) (domain.ImageCandidate, error) {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("prop", "imageinfo")
	params.Set("iiprop", "url|extmetadata")
	params.Set("iiextmetadatalanguage", "en")
	params.Set("titles", fileTitle)

	pg, err := c.firstPage(ctx, params)
	if err != nil {
		return domain.ImageCandidate{}, fmt.Errorf("image info for %q: %w", fileTitle, err)
	}

	if len(pg.Info) == 0 || pg.Info[0].URL == "" {
		return domain.ImageCandidate{}, fmt.Errorf("image info for %q: no url in response", fileTitle)
	}

	info := pg.Info[0]
	return domain.ImageCandidate{
		Identifier:  fileTitle,
		SourceURL:   info.URL,
		Caption:     c.plainCaption(info.ExtMetadata.ObjectName.Value),
		Description: htmlToText(info.ExtMetadata.ImageDescription.Value),
	}, nil
}

func (c *Client) firstPage(ctx context.Context, params url.Values) (page, error) {
	var resp pagesResponse
	if err := c.get(ctx, params, &resp); err != nil {
		return page{}, err
	}
	if len(resp.Query.Pages) == 0 {
		return page{}, fmt.Errorf("no pages in response")
	}
	return resp.Query.Pages[0], nil
}

func (c *Client) get(ctx context.Context, params url.Values, v any) error {
	params.Set("format", "json")
	params.Set("formatversion", "2")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request content service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("content service returned %s", resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}

// plainCaption accepts a caption only when it carries no markup; anything
// else is replaced with a fixed placeholder.
func (c *Client) plainCaption(caption string) string {
	caption = strings.TrimSpace(caption)
	if caption == "" {
		return captionPlaceholder
	}
	if html.UnescapeString(c.sanitizer.Sanitize(caption)) != caption {
		return captionPlaceholder
	}
	return caption
}

// htmlToText flattens an HTML fragment to whitespace-normalized plain text.
func htmlToText(fragment string) string {
	fragment = strings.TrimSpace(fragment)
	if fragment == "" {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return ""
	}

	return strings.Join(strings.Fields(doc.Text()), " ")
}

func hasSupportedSuffix(title string) bool {
	lower := strings.ToLower(title)
	for _, suffix := range supportedSuffixes {
		if strings.HasSuffix(lower, suffix) {
			return true
		}
	}
	return false
}
