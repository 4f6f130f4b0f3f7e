package tools

// AllTools contains all tool specifications for the Commons MCP server.
// Tool descriptions follow a structured format for LLM tool selection:
// - USE WHEN: Natural language triggers
// - NOT FOR: Disambiguation from similar tools
// - PARAMETERS: Key arguments with defaults
// - RETURNS: What the tool returns
var AllTools = []ToolSpec{
	// ==========================================================================
	// CONTRIBUTOR STATISTICS
	// ==========================================================================
	{
		Name:     "commons_upload_count",
		Method:   "UploadCount",
		Title:    "Upload Count",
		Category: "stats",
		Service:  "toolforge",
		Description: `Number of files a user has uploaded to Wikimedia Commons.

USE WHEN: User asks "how many files has X uploaded", "upload count for X".

NOT FOR: A full contributor profile (use commons_user_stats).

PARAMETERS:
- user: Commons user name (required)

RETURNS: The upload count.`,
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},
	{
		Name:     "commons_wikidata_edit_count",
		Method:   "WikidataEditCount",
		Title:    "Wikidata Edit Count",
		Category: "stats",
		Service:  "toolforge",
		Description: `Number of Wikidata edits a user has made through the Commons app.

USE WHEN: User asks "how many Wikidata edits has X made".

PARAMETERS:
- user: Commons user name (required)

RETURNS: The edit count.`,
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},
	{
		Name:     "commons_achievements",
		Method:   "Achievements",
		Title:    "Achievements",
		Category: "stats",
		Service:  "toolforge",
		Description: `Achievement summary for a Commons contributor.

USE WHEN: User asks about a contributor's featured or quality images, images used in articles, thanks received or deleted uploads.

PARAMETERS:
- user: Commons user name (required)

RETURNS: Used images, articles using images, featured and quality image counts, thanks received, deleted uploads.`,
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},
	{
		Name:     "commons_user_stats",
		Method:   "UserStats",
		Title:    "Contributor Profile",
		Category: "stats",
		Service:  "toolforge",
		Description: `Upload count, Wikidata edit count and achievements for a user in one call.

USE WHEN: User asks for an overview of a contributor.

PARAMETERS:
- user: Commons user name (required)

RETURNS: All three statistics. Parts that failed are listed under errors.`,
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},

	// ==========================================================================
	// PLACES AND CAMPAIGNS
	// ==========================================================================
	{
		Name:     "commons_nearby_places",
		Method:   "NearbyPlaces",
		Title:    "Nearby Places",
		Category: "places",
		Service:  "sparql",
		Description: `Wikidata items near a location, for finding things that need photos.

USE WHEN: User asks "what is near 52.52, 13.40", "places to photograph around here".

PARAMETERS:
- latitude, longitude: Decimal degrees (required)
- radius: Kilometers (default 1)
- language: Label language (default: configured language)

RETURNS: Places with Wikidata id, label, type, location, Wikipedia and Commons links, and existing picture.`,
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},
	{
		Name:     "commons_campaigns",
		Method:   "Campaigns",
		Title:    "Campaigns",
		Category: "places",
		Service:  "campaigns",
		Description: `Current and upcoming upload campaigns (Wiki Loves Monuments, Wiki Loves Earth, ...).

USE WHEN: User asks "which photo campaigns are running".

RETURNS: Campaign titles, descriptions, dates and links.`,
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},

	// ==========================================================================
	// MEDIA
	// ==========================================================================
	{
		Name:     "commons_picture_of_the_day",
		Method:   "PictureOfTheDay",
		Title:    "Picture of the Day",
		Category: "media",
		Service:  "commons",
		Description: `Today's Commons picture of the day.

USE WHEN: User asks for "today's picture", "picture of the day".

RETURNS: The image with URL, description, author and license; empty when none is set.`,
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},
	{
		Name:     "commons_media_list",
		Method:   "MediaList",
		Title:    "Search or List Media",
		Category: "media",
		Service:  "commons",
		Description: `Search Commons files or list the files in a category, one page at a time.

USE WHEN: User asks "find photos of X", "show files in Category:Y", "next page".

NOT FOR: A single file's history (use commons_first_revision).

PARAMETERS:
- keyword: Search text, or category title such as Category:Bridges (required)
- query_type: search or category (default category)
- continue: Continuation from the previous page. Without it, each call resumes where the last call for the same keyword stopped.

RETURNS: Files with URLs and metadata, plus the continuation for the next page.`,
		ReadOnly:  false,
		OpenWorld: true,
	},
	{
		Name:     "commons_reset_continuation",
		Method:   "ResetContinuation",
		Title:    "Restart Listing",
		Category: "media",
		Service:  "commons",
		Description: `Forget where a search or category listing stopped, so the next commons_media_list call starts at the first page.

USE WHEN: User wants to "start over" a listing.

PARAMETERS:
- keyword: The keyword used with commons_media_list (required)`,
		ReadOnly:    false,
		Destructive: true,
		Idempotent:  true,
	},

	// ==========================================================================
	// HISTORY
	// ==========================================================================
	{
		Name:     "commons_recent_changes",
		Method:   "RecentFileChanges",
		Title:    "Recent File Changes",
		Category: "history",
		Service:  "commons",
		Description: `A sample of recent new files and file log entries, starting from a random point in the last 30 days.

USE WHEN: User asks for "some recent uploads", "random recent files".

RETURNS: Changes with title, type, page id and revision ids. Each call samples a different period.`,
		ReadOnly:  true,
		OpenWorld: true,
	},
	{
		Name:     "commons_first_revision",
		Method:   "FirstRevisionOfFile",
		Title:    "First Revision",
		Category: "history",
		Service:  "commons",
		Description: `The first revision of a file: original uploader and upload time.

USE WHEN: User asks "who uploaded File:X", "when was File:X first uploaded".

PARAMETERS:
- filename: File title including namespace, e.g. File:Example.jpg (required)

RETURNS: Revision id, user and timestamp. Fails for files that do not exist.`,
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},
}
