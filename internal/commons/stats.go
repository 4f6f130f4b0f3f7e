package commons

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/olgasafonova/commons-mcp-server/internal/base"
	apierrors "github.com/olgasafonova/commons-mcp-server/internal/errors"
)

// UploadCount returns the number of files user has uploaded. A body that is
// not an integer is reported as a decode error.
func (c *Client) UploadCount(ctx context.Context, user string) (int, error) {
	const action = "upload_count"

	reqURL := base.JoinURL(c.endpoints.ToolforgeURL, "/uploadsbyuser.py", url.Values{"user": {user}})
	body, err := c.get(ctx, serviceToolforge, action, reqURL)
	if err != nil {
		return 0, err
	}

	n, err := strconv.Atoi(strings.TrimSpace(string(body)))
	if err != nil {
		return 0, &apierrors.DecodeError{Service: serviceToolforge, Action: action, Err: err}
	}
	return n, nil
}

// WikidataEditCount returns the number of Wikidata edits made by user through the app
func (c *Client) WikidataEditCount(ctx context.Context, user string) (int, error) {
	reqURL := base.JoinURL(c.endpoints.ToolforgeURL, "/wikidataedits.py", url.Values{"user": {user}})

	var resp WikidataEditCountResponse
	if err := c.getJSON(ctx, serviceToolforge, "wikidata_edit_count", reqURL, &resp); err != nil {
		return 0, err
	}
	return resp.WikidataEditCount, nil
}

// Achievements returns the feedback summary for user. A body that cannot be
// decoded yields an all-zero summary and no error.
func (c *Client) Achievements(ctx context.Context, user string) (*FeedbackResponse, error) {
	const action = "achievements"

	reqURL := base.JoinURL(c.endpoints.ToolforgeURL, c.achievementsPath(user), url.Values{"user": {user}})
	var resp FeedbackResponse
	err := c.getJSON(ctx, serviceToolforge, action, reqURL, &resp)
	switch {
	case err == nil:
		return &resp, nil
	case apierrors.IsDecode(err):
		c.Logger.Warn("Achievements response not decodable, using fallback", "user", user, "error", err)
		return fallbackFeedback(), nil
	default:
		return nil, err
	}
}

// achievementsPath expands the {user} placeholder of the configured path
func (c *Client) achievementsPath(user string) string {
	p := c.endpoints.AchievementsPath
	if p == "" {
		p = DefaultAchievementsPath
	}
	return strings.ReplaceAll(p, "{user}", url.PathEscape(pageTitleText(user)))
}

// UserStats combines the three per-user statistics
type UserStats struct {
	User              string            `json:"user"`
	UploadCount       int               `json:"upload_count"`
	WikidataEditCount int               `json:"wikidata_edit_count"`
	Achievements      *FeedbackResponse `json:"achievements,omitempty"`
	Errors            map[string]string `json:"errors,omitempty"`
}

// UserStats fetches upload count, Wikidata edit count and achievements
// concurrently. Individual failures are reported in Errors with the field left
// at its neutral value; an error is returned only when all three fail.
func (c *Client) UserStats(ctx context.Context, user string) (*UserStats, error) {
	stats := &UserStats{User: user}
	var uploadErr, editErr, achErr error

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		stats.UploadCount, uploadErr = c.UploadCount(gctx, user)
		return nil
	})
	g.Go(func() error {
		stats.WikidataEditCount, editErr = c.WikidataEditCount(gctx, user)
		return nil
	})
	g.Go(func() error {
		stats.Achievements, achErr = c.Achievements(gctx, user)
		return nil
	})
	_ = g.Wait()

	for name, err := range map[string]error{
		"upload_count":        uploadErr,
		"wikidata_edit_count": editErr,
		"achievements":        achErr,
	} {
		if err == nil {
			continue
		}
		if stats.Errors == nil {
			stats.Errors = make(map[string]string)
		}
		stats.Errors[name] = err.Error()
	}

	if uploadErr != nil && editErr != nil && achErr != nil {
		return stats, fmt.Errorf("all statistics failed for %s: %w", user, errors.Join(uploadErr, editErr, achErr))
	}
	return stats, nil
}
