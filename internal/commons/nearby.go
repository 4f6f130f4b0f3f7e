package commons

import (
	"context"
	_ "embed"
	"net/url"
	"strconv"
	"strings"

	"github.com/olgasafonova/commons-mcp-server/internal/base"
)

//go:embed queries/nearby_query.rq
var nearbyQueryTemplate string

// NearbyQuery fills the nearby SPARQL template: radius (km) with two decimals,
// coordinates with four, and the label language verbatim.
func NearbyQuery(cur LatLng, lang string, radius float64) string {
	return strings.NewReplacer(
		"${RAD}", strconv.FormatFloat(radius, 'f', 2, 64),
		"${LAT}", strconv.FormatFloat(cur.Latitude, 'f', 4, 64),
		"${LONG}", strconv.FormatFloat(cur.Longitude, 'f', 4, 64),
		"${LANG}", lang,
	).Replace(nearbyQueryTemplate)
}

// NearbyPlaces returns Wikidata items within radius kilometers of cur, with
// labels in lang. It returns an empty slice on failure.
func (c *Client) NearbyPlaces(ctx context.Context, cur LatLng, lang string, radius float64) ([]Place, error) {
	params := url.Values{}
	params.Set("query", NearbyQuery(cur, lang, radius))
	params.Set("format", "json")
	reqURL := base.JoinURL(c.endpoints.SparqlURL, "", params)

	var resp NearbyResponse
	if err := c.getJSON(ctx, serviceSparql, "nearby_places", reqURL, &resp); err != nil {
		return []Place{}, err
	}

	places := make([]Place, 0, len(resp.Results.Bindings))
	for _, b := range resp.Results.Bindings {
		places = append(places, PlaceFromBinding(b))
	}
	return places, nil
}
