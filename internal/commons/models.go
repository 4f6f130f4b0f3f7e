package commons

import (
	"fmt"
	"net/url"
	"path"
	"strconv"
	"strings"
)

// LatLng is a WGS84 coordinate
type LatLng struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// String formats the coordinate as "lat,long"
func (l LatLng) String() string {
	return strconv.FormatFloat(l.Latitude, 'f', -1, 64) + "," + strconv.FormatFloat(l.Longitude, 'f', -1, 64)
}

// Media is a Commons file with its image info and metadata
type Media struct {
	PageID         int      `json:"page_id,omitempty"`
	Title          string   `json:"title"`
	Filename       string   `json:"filename"`
	ImageURL       string   `json:"image_url"`
	ThumbURL       string   `json:"thumb_url,omitempty"`
	DescriptionURL string   `json:"description_url,omitempty"`
	Description    string   `json:"description,omitempty"`
	Date           string   `json:"date,omitempty"`
	Author         string   `json:"author,omitempty"`
	License        string   `json:"license,omitempty"`
	Categories     []string `json:"categories,omitempty"`
	Coordinates    *LatLng  `json:"coordinates,omitempty"`
}

// MediaFromPage converts a query page. It returns false for pages without
// image info, which list operations skip.
func MediaFromPage(page QueryPage) (*Media, bool) {
	if len(page.ImageInfo) == 0 {
		return nil, false
	}
	ii := &page.ImageInfo[0]
	if ii.URL == "" {
		return nil, false
	}

	m := &Media{
		PageID:         page.PageID,
		Title:          page.Title,
		Filename:       fileName(page.Title),
		ImageURL:       ii.URL,
		ThumbURL:       ii.ThumbURL,
		DescriptionURL: ii.DescriptionURL,
		Description:    ii.metadata("ImageDescription"),
		Author:         ii.metadata("Artist"),
		License:        ii.metadata("LicenseShortName"),
		Categories:     splitCategories(ii.metadata("Categories")),
	}

	m.Date = ii.metadata("DateTimeOriginal")
	if m.Date == "" {
		m.Date = ii.metadata("DateTime")
	}

	lat, latErr := strconv.ParseFloat(strings.TrimSpace(ii.metadata("GPSLatitude")), 64)
	lon, lonErr := strconv.ParseFloat(strings.TrimSpace(ii.metadata("GPSLongitude")), 64)
	if latErr == nil && lonErr == nil {
		m.Coordinates = &LatLng{Latitude: lat, Longitude: lon}
	}

	return m, true
}

// fileName strips the namespace prefix from a file title
func fileName(title string) string {
	if i := strings.Index(title, ":"); i >= 0 {
		return title[i+1:]
	}
	return title
}

// splitCategories splits the pipe-separated Categories metadata
func splitCategories(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, "|")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Place is a Wikidata item near a location
type Place struct {
	WikidataID      string  `json:"wikidata_id"`
	Label           string  `json:"label"`
	Class           string  `json:"class,omitempty"`
	ClassLabel      string  `json:"class_label,omitempty"`
	Location        *LatLng `json:"location,omitempty"`
	WikipediaLink   string  `json:"wikipedia_link,omitempty"`
	CommonsLink     string  `json:"commons_link,omitempty"`
	CommonsCategory string  `json:"commons_category,omitempty"`
	Picture         string  `json:"picture,omitempty"`
	Destroyed       string  `json:"destroyed,omitempty"`
	Icon            string  `json:"icon,omitempty"`
}

// PlaceFromBinding converts one SPARQL binding. An unparseable location leaves
// Location nil.
func PlaceFromBinding(b NearbyBinding) Place {
	p := Place{
		WikidataID:      lastSegment(b.Item.Value),
		Label:           b.Label.Value,
		Class:           lastSegment(b.Class.Value),
		ClassLabel:      b.ClassLabel.Value,
		WikipediaLink:   b.WikipediaArticle.Value,
		CommonsLink:     b.CommonsArticle.Value,
		CommonsCategory: b.CommonsCategory.Value,
		Picture:         lastSegment(b.Pic.Value),
		Destroyed:       b.Destroyed.Value,
		Icon:            b.Icon.Value,
	}
	if loc, err := ParsePoint(b.Location.Value); err == nil {
		p.Location = &loc
	}
	return p
}

// ParsePoint parses a WKT literal "Point(long lat)"
func ParsePoint(wkt string) (LatLng, error) {
	s := strings.TrimSpace(wkt)
	open := strings.Index(s, "(")
	end := strings.LastIndex(s, ")")
	if open < 0 || end <= open || !strings.EqualFold(strings.TrimSpace(s[:open]), "point") {
		return LatLng{}, fmt.Errorf("not a WKT point: %q", wkt)
	}
	fields := strings.Fields(s[open+1 : end])
	if len(fields) != 2 {
		return LatLng{}, fmt.Errorf("not a WKT point: %q", wkt)
	}
	lon, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return LatLng{}, fmt.Errorf("invalid longitude in %q: %w", wkt, err)
	}
	lat, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return LatLng{}, fmt.Errorf("invalid latitude in %q: %w", wkt, err)
	}
	return LatLng{Latitude: lat, Longitude: lon}, nil
}

// lastSegment returns the unescaped last path segment of an entity or file URL
func lastSegment(raw string) string {
	if raw == "" {
		return ""
	}
	seg := path.Base(raw)
	if unescaped, err := url.PathUnescape(seg); err == nil {
		return unescaped
	}
	return seg
}
