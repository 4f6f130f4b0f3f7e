package commons

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"
)

// RecentChangesWindow bounds how far back the random recent-changes start may fall
const RecentChangesWindow = 30 * 24 * time.Hour

// fileNamespace is the MediaWiki File: namespace
const fileNamespace = "6"

// mwDateFormat is the MediaWiki API timestamp format
const mwDateFormat = "2006-01-02T15:04:05Z"

// ErrNoRevisions is returned by FirstRevisionOfFile when the file has no
// revisions, typically because it does not exist. Callers should only ask for
// files they know exist.
var ErrNoRevisions = errors.New("file has no revisions")

// RecentFileChanges lists recent top-level changes in the File namespace,
// starting from a random point within the last 30 days so repeated calls
// sample different periods. It returns an empty slice on failure.
func (c *Client) RecentFileChanges(ctx context.Context) ([]RecentChange, error) {
	params := url.Values{}
	params.Set("list", "recentchanges")
	params.Set("rcstart", c.recentChangesStart().Format(mwDateFormat))
	params.Set("rcnamespace", fileNamespace)
	params.Set("rcprop", "title|ids")
	params.Set("rctype", "new|log")
	params.Set("rctoponly", "1")

	var resp QueryResponse
	if err := c.getJSON(ctx, serviceCommons, "recent_changes", c.apiURL(params), &resp); err != nil {
		return []RecentChange{}, err
	}
	if resp.Error != nil {
		return []RecentChange{}, resp.Error
	}
	if resp.Query == nil || resp.Query.RecentChanges == nil {
		return []RecentChange{}, nil
	}
	return resp.Query.RecentChanges, nil
}

// recentChangesStart picks a start in (now-30d, now] at whole-second offsets, in UTC
func (c *Client) recentChangesStart() time.Time {
	c.randMu.Lock()
	offset := c.rand.Int64N(int64(RecentChangesWindow / time.Second))
	c.randMu.Unlock()

	return c.now().UTC().Add(-time.Duration(offset) * time.Second)
}

// FirstRevisionOfFile returns the oldest revision of filename ("File:Foo.jpg").
// It returns ErrNoRevisions when the response has no page or no revisions.
func (c *Client) FirstRevisionOfFile(ctx context.Context, filename string) (*Revision, error) {
	params := url.Values{}
	params.Set("prop", "revisions")
	params.Set("rvprop", "timestamp|ids|user")
	params.Set("titles", filename)
	params.Set("rvdir", "newer")
	params.Set("rvlimit", "1")

	var resp QueryResponse
	if err := c.getJSON(ctx, serviceCommons, "first_revision", c.apiURL(params), &resp); err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return nil, resp.Error
	}

	page := resp.Query.FirstPage()
	if page == nil || len(page.Revisions) == 0 {
		return nil, fmt.Errorf("%s: %w", filename, ErrNoRevisions)
	}
	rev := page.Revisions[0]
	return &rev, nil
}
