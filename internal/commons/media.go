package commons

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/olgasafonova/commons-mcp-server/internal/kvstore"
	"github.com/olgasafonova/commons-mcp-server/metrics"
)

// Media query types
const (
	QueryTypeSearch   = "search"
	QueryTypeCategory = "category"
)

// ContinuationKeyPrefix prefixes the store key holding a keyword's continuation
const ContinuationKeyPrefix = "query_continue_"

// Image-info fields requested for every media listing
const extMetadataFilter = "DateTime|Categories|GPSLatitude|GPSLongitude|ImageDescription|DateTimeOriginal|Artist|LicenseShortName"

// Page sizes of the two generators
const (
	searchLimit   = "25"
	categoryLimit = "10"
)

// ContinuationKey returns the store key for keyword
func ContinuationKey(keyword string) string {
	return ContinuationKeyPrefix + keyword
}

// PictureOfTheDay returns today's picture of the day, or nil when the
// template lists no image.
func (c *Client) PictureOfTheDay(ctx context.Context) (*Media, error) {
	params := url.Values{}
	params.Set("generator", "images")
	params.Set("titles", "Template:Potd/"+c.now().Format("2006-01-02"))
	params.Set("prop", "imageinfo")
	params.Set("iiprop", "url|extmetadata")

	var resp QueryResponse
	if err := c.getJSON(ctx, serviceCommons, "picture_of_the_day", c.apiURL(params), &resp); err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return nil, resp.Error
	}

	page := resp.Query.FirstPage()
	if page == nil {
		return nil, nil
	}
	m, ok := MediaFromPage(*page)
	if !ok {
		metrics.MediaSkipped.Inc()
		return nil, nil
	}
	return m, nil
}

// MediaQuery selects one page of a search or category listing
type MediaQuery struct {
	// Type is QueryTypeSearch for full-text search; anything else lists a category.
	Type string
	// Keyword is the search text or the category title ("Category:Foo").
	Keyword string
	// Continue is the continuation returned with the previous page; empty for the first page.
	Continue map[string]string
}

// MediaPageResult is one page of media plus the continuation for the next page.
// Continue is empty when there are no further pages.
type MediaPageResult struct {
	Media    []Media           `json:"media"`
	Continue map[string]string `json:"continue"`
}

// MediaPage fetches one page of a listing using the caller's continuation.
// Nothing is read from or written to the store.
func (c *Client) MediaPage(ctx context.Context, q MediaQuery) (*MediaPageResult, error) {
	resp, err := c.queryMedia(ctx, q)
	if err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return nil, resp.Error
	}
	return &MediaPageResult{
		Media:    c.mediaFromPages(resp.Query),
		Continue: continuation(resp),
	}, nil
}

// MediaList fetches the next page of a listing, resuming from the continuation
// stored for keyword and storing the server's new continuation afterwards.
// Calls for the same keyword are serialized. It returns an empty slice on failure.
func (c *Client) MediaList(ctx context.Context, queryType, keyword string) ([]Media, error) {
	page, err := c.mediaList(ctx, queryType, keyword)
	if err != nil {
		return []Media{}, err
	}
	return page.Media, nil
}

// mediaList is MediaList returning the continuation it stored, read under the
// keyword's lock.
func (c *Client) mediaList(ctx context.Context, queryType, keyword string) (*MediaPageResult, error) {
	key := ContinuationKey(keyword)

	unlock, err := c.keys.Lock(ctx, key)
	if err != nil {
		return nil, err
	}
	defer unlock()

	cont, err := kvstore.GetStringMap(ctx, c.store, key)
	if err != nil {
		return nil, fmt.Errorf("reading continuation for %q: %w", keyword, err)
	}

	resp, err := c.queryMedia(ctx, MediaQuery{Type: queryType, Keyword: keyword, Continue: cont})
	if err != nil {
		return nil, err
	}

	next := continuation(resp)
	if err := kvstore.PutStringMap(ctx, c.store, key, next); err != nil {
		c.Logger.Warn("Failed to store continuation", "keyword", keyword, "error", err)
	} else {
		metrics.RecordContinuation(queryTypeLabel(queryType), len(next) > 0)
	}

	if resp.Error != nil {
		return nil, resp.Error
	}
	return &MediaPageResult{Media: c.mediaFromPages(resp.Query), Continue: next}, nil
}

// ResetContinuation forgets the stored continuation so the next MediaList call
// for keyword starts from the first page.
func (c *Client) ResetContinuation(ctx context.Context, keyword string) error {
	key := ContinuationKey(keyword)

	unlock, err := c.keys.Lock(ctx, key)
	if err != nil {
		return err
	}
	defer unlock()

	return c.store.Delete(ctx, key)
}

// queryMedia performs the listing request
func (c *Client) queryMedia(ctx context.Context, q MediaQuery) (*QueryResponse, error) {
	var resp QueryResponse
	reqURL := c.apiURL(MediaListParams(q, c.endpoints.Language))
	if err := c.getJSON(ctx, serviceCommons, "media_"+queryTypeLabel(q.Type), reqURL, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// mediaFromPages converts pages in order, skipping those without image info
func (c *Client) mediaFromPages(q *QueryResult) []Media {
	if q == nil {
		return []Media{}
	}
	out := make([]Media, 0, len(q.Pages))
	for _, page := range q.Pages {
		m, ok := MediaFromPage(page)
		if !ok {
			metrics.MediaSkipped.Inc()
			c.Logger.Debug("Skipping page without image info", "title", page.Title)
			continue
		}
		out = append(out, *m)
	}
	return out
}

// MediaListParams builds the generator, continuation and image-info parameters
// of a listing request (without action and format).
func MediaListParams(q MediaQuery, lang string) url.Values {
	params := url.Values{}

	if q.Type == QueryTypeSearch {
		params.Set("generator", "search")
		params.Set("gsrwhat", "text")
		params.Set("gsrnamespace", "6")
		params.Set("gsrlimit", searchLimit)
		params.Set("gsrsearch", q.Keyword)
	} else {
		params.Set("generator", "categorymembers")
		params.Set("gcmtype", "file")
		params.Set("gcmtitle", q.Keyword)
		params.Set("gcmsort", "timestamp")
		params.Set("gcmdir", "desc")
		params.Set("gcmlimit", categoryLimit)
	}

	for k, v := range q.Continue {
		params.Add(k, v)
	}

	params.Add("prop", "imageinfo")
	params.Add("iiprop", "url|extmetadata")
	params.Add("iiextmetadatafilter", extMetadataFilter)
	if lang = strings.TrimSpace(lang); lang != "" {
		params.Add("iiextmetadatalanguage", lang)
	}

	return params
}

// continuation returns the server continuation, never nil
func continuation(resp *QueryResponse) map[string]string {
	if resp == nil || resp.Continue == nil {
		return map[string]string{}
	}
	return map[string]string(resp.Continue)
}

func queryTypeLabel(queryType string) string {
	if queryType == QueryTypeSearch {
		return QueryTypeSearch
	}
	return QueryTypeCategory
}
