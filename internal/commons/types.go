package commons

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

// ============================================================================
// Toolforge statistics
// ============================================================================

// WikidataEditCountResponse is returned by /wikidataedits.py
type WikidataEditCountResponse struct {
	WikidataEditCount int `json:"wikidataEditCount"`
}

// FeedbackResponse is the achievements summary returned by the feedback tool
type FeedbackResponse struct {
	User                      string         `json:"user"`
	UniqueUsedImages          int            `json:"uniqueUsedImages"`
	ArticlesUsingImages       int            `json:"articlesUsingImages"`
	DeletedUploads            int            `json:"deletedUploads"`
	FeaturedImages            FeaturedImages `json:"featuredImages"`
	ThanksReceived            int            `json:"thanksReceived"`
	Labels                    string         `json:"labels,omitempty"`
	ImagesEditedBySomeoneElse int            `json:"imagesEditedBySomeoneElse"`
}

// FeaturedImages counts a user's featured and quality images
type FeaturedImages struct {
	QualityImages    int `json:"Quality_images"`
	FeaturedPictures int `json:"Featured_pictures"`
}

// fallbackFeedback is returned when the feedback body cannot be decoded
func fallbackFeedback() *FeedbackResponse {
	return &FeedbackResponse{FeaturedImages: FeaturedImages{}}
}

// ============================================================================
// SPARQL
// ============================================================================

// NearbyResponse is the SPARQL JSON result of the nearby query
type NearbyResponse struct {
	Results NearbyResults `json:"results"`
}

// NearbyResults wraps the result bindings
type NearbyResults struct {
	Bindings []NearbyBinding `json:"bindings"`
}

// NearbyBinding is one row of the nearby query
type NearbyBinding struct {
	Item             ResultValue `json:"item"`
	Label            ResultValue `json:"label"`
	Location         ResultValue `json:"location"`
	Class            ResultValue `json:"class"`
	ClassLabel       ResultValue `json:"class_label"`
	Icon             ResultValue `json:"icon"`
	WikipediaArticle ResultValue `json:"wikipediaArticle"`
	CommonsArticle   ResultValue `json:"commonsArticle"`
	CommonsCategory  ResultValue `json:"commonsCategory"`
	Pic              ResultValue `json:"pic"`
	Destroyed        ResultValue `json:"destroyed"`
}

// ResultValue is a single SPARQL binding value
type ResultValue struct {
	Type     string `json:"type,omitempty"`
	Value    string `json:"value,omitempty"`
	Lang     string `json:"xml:lang,omitempty"`
	Datatype string `json:"datatype,omitempty"`
}

// ============================================================================
// Campaigns
// ============================================================================

// CampaignResponse is the campaigns feed
type CampaignResponse struct {
	Config    *CampaignConfig `json:"config,omitempty"`
	Campaigns []Campaign      `json:"campaigns"`
}

// CampaignConfig controls how the app shows campaigns
type CampaignConfig struct {
	ShowOnlyLiveCampaigns bool   `json:"showOnlyLiveCampaigns"`
	SortBy                string `json:"sortBy,omitempty"`
}

// Campaign is a single upload campaign
type Campaign struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	StartDate   string `json:"startDate,omitempty"`
	EndDate     string `json:"endDate,omitempty"`
	Link        string `json:"link,omitempty"`
}

// ============================================================================
// MediaWiki query API
// ============================================================================

// QueryResponse is the generic action=query response
type QueryResponse struct {
	BatchComplete json.RawMessage `json:"batchcomplete,omitempty"`
	Continue      Continuation    `json:"continue,omitempty"`
	Query         *QueryResult    `json:"query,omitempty"`
	Error         *APIError       `json:"error,omitempty"`
}

// Continuation is the MediaWiki "continue" object. Values arrive as strings or
// numbers (gsroffset is numeric) and are kept in their query-string form.
type Continuation map[string]string

// UnmarshalJSON implements json.Unmarshaler
func (c *Continuation) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil {
		*c = nil
		return nil
	}

	out := make(Continuation, len(raw))
	for k, v := range raw {
		v = bytes.TrimSpace(v)
		switch {
		case bytes.Equal(v, []byte("null")):
			continue
		case len(v) > 0 && v[0] == '"':
			var s string
			if err := json.Unmarshal(v, &s); err != nil {
				return fmt.Errorf("continue.%s: %w", k, err)
			}
			out[k] = s
		case len(v) > 0 && (v[0] == '{' || v[0] == '['):
			return fmt.Errorf("continue.%s: unexpected %s value", k, string(v[:1]))
		default:
			out[k] = string(v)
		}
	}
	*c = out
	return nil
}

// APIError is the MediaWiki error object
type APIError struct {
	Code string `json:"code"`
	Info string `json:"info"`
}

// QueryResult holds the query payload
type QueryResult struct {
	Pages         QueryPages     `json:"pages,omitempty"`
	RecentChanges []RecentChange `json:"recentchanges,omitempty"`
}

// FirstPage returns the first page, or nil when there are none
func (q *QueryResult) FirstPage() *QueryPage {
	if q == nil || len(q.Pages) == 0 {
		return nil
	}
	return &q.Pages[0]
}

// QueryPages decodes both the formatversion=1 object keyed by page id and the
// formatversion=2 array. Object form is ordered by the generator's "index"
// when present, else by key.
type QueryPages []QueryPage

// UnmarshalJSON implements json.Unmarshaler
func (p *QueryPages) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*p = nil
		return nil
	}

	if data[0] == '[' {
		var pages []QueryPage
		if err := json.Unmarshal(data, &pages); err != nil {
			return err
		}
		*p = pages
		return nil
	}

	var byID map[string]QueryPage
	if err := json.Unmarshal(data, &byID); err != nil {
		return err
	}
	keys := make([]string, 0, len(byID))
	for k := range byID {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := byID[keys[i]], byID[keys[j]]
		if a.Index != b.Index {
			return a.Index < b.Index
		}
		return lessPageKey(keys[i], keys[j])
	})

	pages := make([]QueryPage, 0, len(keys))
	for _, k := range keys {
		pages = append(pages, byID[k])
	}
	*p = pages
	return nil
}

// lessPageKey orders numeric page ids numerically; missing pages have negative ids
func lessPageKey(a, b string) bool {
	ai, aerr := strconv.Atoi(a)
	bi, berr := strconv.Atoi(b)
	if aerr == nil && berr == nil {
		return ai < bi
	}
	return a < b
}

// QueryPage is one page of a query response
type QueryPage struct {
	PageID    int         `json:"pageid,omitempty"`
	NS        int         `json:"ns"`
	Title     string      `json:"title"`
	Index     int         `json:"index,omitempty"`
	ImageInfo []ImageInfo `json:"imageinfo,omitempty"`
	Revisions []Revision  `json:"revisions,omitempty"`
}

// ImageInfo is the prop=imageinfo payload
type ImageInfo struct {
	URL            string                 `json:"url,omitempty"`
	DescriptionURL string                 `json:"descriptionurl,omitempty"`
	ThumbURL       string                 `json:"thumburl,omitempty"`
	Width          int                    `json:"width,omitempty"`
	Height         int                    `json:"height,omitempty"`
	ExtMetadata    map[string]ExtMetadata `json:"extmetadata,omitempty"`
}

// ExtMetadata is one extmetadata field. Value is usually a string but some
// fields (GPS, dates) can arrive as numbers.
type ExtMetadata struct {
	Value  json.RawMessage `json:"value,omitempty"`
	Source string          `json:"source,omitempty"`
	Hidden json.RawMessage `json:"hidden,omitempty"`
}

// String returns the value as text
func (m ExtMetadata) String() string {
	if len(m.Value) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(m.Value, &s); err == nil {
		return s
	}
	return string(bytes.TrimSpace(m.Value))
}

// metadata looks up an extmetadata field by name
func (ii *ImageInfo) metadata(name string) string {
	if ii == nil || ii.ExtMetadata == nil {
		return ""
	}
	return ii.ExtMetadata[name].String()
}

// Revision is one entry of prop=revisions
type Revision struct {
	RevID     int64  `json:"revid"`
	ParentID  int64  `json:"parentid"`
	User      string `json:"user"`
	Timestamp string `json:"timestamp"`
}

// RecentChange is one entry of list=recentchanges
type RecentChange struct {
	Type      string `json:"type"`
	NS        int    `json:"ns"`
	Title     string `json:"title"`
	PageID    int    `json:"pageid"`
	RevID     int64  `json:"revid"`
	OldRevID  int64  `json:"old_revid"`
	RCID      int64  `json:"rcid"`
	Timestamp string `json:"timestamp,omitempty"`
}

func (e *APIError) Error() string {
	return "mediawiki api error " + e.Code + ": " + e.Info
}
