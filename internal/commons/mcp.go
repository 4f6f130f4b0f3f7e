package commons

import (
	"context"
	"fmt"
	"strings"
)

// MCP Tool wrapper methods
// These methods wrap the client methods with Args/Result types for MCP integration.

// DefaultNearbyRadius is used when the caller gives no radius (kilometers)
const DefaultNearbyRadius = 1.0

// UploadCountMCP is the MCP wrapper for UploadCount
func (c *Client) UploadCountMCP(ctx context.Context, args UserArgs) (CountResult, error) {
	user, err := requireUser(args.User)
	if err != nil {
		return CountResult{}, err
	}
	n, err := c.UploadCount(ctx, user)
	if err != nil {
		return CountResult{}, err
	}
	return CountResult{User: user, Count: n}, nil
}

// WikidataEditCountMCP is the MCP wrapper for WikidataEditCount
func (c *Client) WikidataEditCountMCP(ctx context.Context, args UserArgs) (CountResult, error) {
	user, err := requireUser(args.User)
	if err != nil {
		return CountResult{}, err
	}
	n, err := c.WikidataEditCount(ctx, user)
	if err != nil {
		return CountResult{}, err
	}
	return CountResult{User: user, Count: n}, nil
}

// AchievementsMCP is the MCP wrapper for Achievements
func (c *Client) AchievementsMCP(ctx context.Context, args UserArgs) (AchievementsResult, error) {
	user, err := requireUser(args.User)
	if err != nil {
		return AchievementsResult{}, err
	}
	resp, err := c.Achievements(ctx, user)
	if err != nil {
		return AchievementsResult{}, err
	}
	return AchievementsResult{Achievements: resp}, nil
}

// UserStatsMCP is the MCP wrapper for UserStats
func (c *Client) UserStatsMCP(ctx context.Context, args UserArgs) (UserStatsResult, error) {
	user, err := requireUser(args.User)
	if err != nil {
		return UserStatsResult{}, err
	}
	stats, err := c.UserStats(ctx, user)
	if err != nil {
		return UserStatsResult{}, err
	}
	return UserStatsResult{Stats: stats}, nil
}

// NearbyPlacesMCP is the MCP wrapper for NearbyPlaces
func (c *Client) NearbyPlacesMCP(ctx context.Context, args NearbyPlacesArgs) (NearbyPlacesResult, error) {
	if args.Latitude < -90 || args.Latitude > 90 {
		return NearbyPlacesResult{}, fmt.Errorf("latitude must be between -90 and 90, got %g", args.Latitude)
	}
	if args.Longitude < -180 || args.Longitude > 180 {
		return NearbyPlacesResult{}, fmt.Errorf("longitude must be between -180 and 180, got %g", args.Longitude)
	}
	radius := args.Radius
	if radius <= 0 {
		radius = DefaultNearbyRadius
	}
	lang := strings.TrimSpace(args.Language)
	if lang == "" {
		lang = c.endpoints.Language
	}
	if lang == "" {
		lang = "en"
	}

	places, err := c.NearbyPlaces(ctx, LatLng{Latitude: args.Latitude, Longitude: args.Longitude}, lang, radius)
	if err != nil {
		return NearbyPlacesResult{}, err
	}
	return NearbyPlacesResult{Places: places, Count: len(places)}, nil
}

// CampaignsMCP is the MCP wrapper for Campaigns
func (c *Client) CampaignsMCP(ctx context.Context, _ CampaignsArgs) (CampaignsResult, error) {
	resp, err := c.Campaigns(ctx)
	if err != nil {
		return CampaignsResult{}, err
	}
	campaigns := resp.Campaigns
	if campaigns == nil {
		campaigns = []Campaign{}
	}
	return CampaignsResult{Campaigns: campaigns, Config: resp.Config}, nil
}

// PictureOfTheDayMCP is the MCP wrapper for PictureOfTheDay
func (c *Client) PictureOfTheDayMCP(ctx context.Context, _ PictureOfTheDayArgs) (PictureOfTheDayResult, error) {
	m, err := c.PictureOfTheDay(ctx)
	if err != nil {
		return PictureOfTheDayResult{}, err
	}
	return PictureOfTheDayResult{Media: m}, nil
}

// MediaListMCP is the MCP wrapper for media listings. With an explicit
// continuation it uses MediaPage; otherwise it uses the stored continuation.
func (c *Client) MediaListMCP(ctx context.Context, args MediaListArgs) (MediaListResult, error) {
	keyword := strings.TrimSpace(args.Keyword)
	if keyword == "" {
		return MediaListResult{}, fmt.Errorf("keyword is required")
	}
	queryType := strings.ToLower(strings.TrimSpace(args.QueryType))

	if args.Continue != nil {
		page, err := c.MediaPage(ctx, MediaQuery{Type: queryType, Keyword: keyword, Continue: args.Continue})
		if err != nil {
			return MediaListResult{}, err
		}
		return MediaListResult{
			Media:    page.Media,
			Count:    len(page.Media),
			Continue: page.Continue,
			HasMore:  len(page.Continue) > 0,
		}, nil
	}

	page, err := c.mediaList(ctx, queryType, keyword)
	if err != nil {
		return MediaListResult{}, err
	}
	return MediaListResult{
		Media:    page.Media,
		Count:    len(page.Media),
		Continue: page.Continue,
		HasMore:  len(page.Continue) > 0,
	}, nil
}

// RecentChangesMCP is the MCP wrapper for RecentFileChanges
func (c *Client) RecentChangesMCP(ctx context.Context, _ RecentChangesArgs) (RecentChangesResult, error) {
	changes, err := c.RecentFileChanges(ctx)
	if err != nil {
		return RecentChangesResult{}, err
	}
	return RecentChangesResult{Changes: changes, Count: len(changes)}, nil
}

// FirstRevisionMCP is the MCP wrapper for FirstRevisionOfFile
func (c *Client) FirstRevisionMCP(ctx context.Context, args FirstRevisionArgs) (FirstRevisionResult, error) {
	filename := strings.TrimSpace(args.Filename)
	if filename == "" {
		return FirstRevisionResult{}, fmt.Errorf("filename is required")
	}
	rev, err := c.FirstRevisionOfFile(ctx, filename)
	if err != nil {
		return FirstRevisionResult{}, err
	}
	return FirstRevisionResult{Filename: filename, Revision: rev}, nil
}

// ResetContinuationMCP is the MCP wrapper for ResetContinuation
func (c *Client) ResetContinuationMCP(ctx context.Context, args ResetContinuationArgs) (ResetContinuationResult, error) {
	keyword := strings.TrimSpace(args.Keyword)
	if keyword == "" {
		return ResetContinuationResult{}, fmt.Errorf("keyword is required")
	}
	if err := c.ResetContinuation(ctx, keyword); err != nil {
		return ResetContinuationResult{}, err
	}
	return ResetContinuationResult{Keyword: keyword, Reset: true}, nil
}

// requireUser trims and validates a user name
func requireUser(user string) (string, error) {
	user = strings.TrimSpace(user)
	user = strings.TrimPrefix(user, "User:")
	if user == "" {
		return "", fmt.Errorf("user is required")
	}
	return user, nil
}
