package commons

// UserArgs identifies a Commons user
type UserArgs struct {
	User string `json:"user" jsonschema:"Commons user name, without the User: prefix"`
}

// CountResult is a single count
type CountResult struct {
	User  string `json:"user"`
	Count int    `json:"count"`
}

// AchievementsResult wraps the feedback summary
type AchievementsResult struct {
	Achievements *FeedbackResponse `json:"achievements,omitempty"`
}

// UserStatsResult wraps the combined statistics
type UserStatsResult struct {
	Stats *UserStats `json:"stats"`
}

// NearbyPlacesArgs contains parameters for the nearby search
type NearbyPlacesArgs struct {
	Latitude  float64 `json:"latitude" jsonschema:"Latitude in decimal degrees"`
	Longitude float64 `json:"longitude" jsonschema:"Longitude in decimal degrees"`
	Radius    float64 `json:"radius,omitempty" jsonschema:"Search radius in kilometers (default 1)"`
	Language  string  `json:"language,omitempty" jsonschema:"Label language code (default: configured language)"`
}

// NearbyPlacesResult lists places near a location
type NearbyPlacesResult struct {
	Places []Place `json:"places"`
	Count  int     `json:"count"`
}

// CampaignsArgs takes no parameters
type CampaignsArgs struct{}

// CampaignsResult wraps the campaigns feed
type CampaignsResult struct {
	Campaigns []Campaign      `json:"campaigns"`
	Config    *CampaignConfig `json:"config,omitempty"`
}

// PictureOfTheDayArgs takes no parameters
type PictureOfTheDayArgs struct{}

// PictureOfTheDayResult holds today's picture, absent when none is set
type PictureOfTheDayResult struct {
	Media *Media `json:"media,omitempty"`
}

// MediaListArgs contains parameters for a search or category listing
type MediaListArgs struct {
	QueryType string            `json:"query_type,omitempty" jsonschema:"search for full-text search, category to list a category (default category)"`
	Keyword   string            `json:"keyword" jsonschema:"Search text, or category title such as Category:Bridges"`
	Continue  map[string]string `json:"continue,omitempty" jsonschema:"Continuation returned by the previous page; omit to use the stored continuation for this keyword"`
}

// MediaListResult is one page of media
type MediaListResult struct {
	Media    []Media           `json:"media"`
	Count    int               `json:"count"`
	Continue map[string]string `json:"continue,omitempty"`
	HasMore  bool              `json:"has_more"`
}

// RecentChangesArgs takes no parameters
type RecentChangesArgs struct{}

// RecentChangesResult lists recent file changes
type RecentChangesResult struct {
	Changes []RecentChange `json:"changes"`
	Count   int            `json:"count"`
}

// FirstRevisionArgs identifies a file
type FirstRevisionArgs struct {
	Filename string `json:"filename" jsonschema:"File title including the namespace, e.g. File:Example.jpg"`
}

// FirstRevisionResult holds the oldest revision of a file
type FirstRevisionResult struct {
	Filename string    `json:"filename"`
	Revision *Revision `json:"revision"`
}

// ResetContinuationArgs identifies a stored listing
type ResetContinuationArgs struct {
	Keyword string `json:"keyword" jsonschema:"Keyword whose stored continuation should be cleared"`
}

// ResetContinuationResult confirms the reset
type ResetContinuationResult struct {
	Keyword string `json:"keyword"`
	Reset   bool   `json:"reset"`
}
