package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/olgasafonova/commons-mcp-server/internal/commons"
)

// writeJSON prints v as indented JSON
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// runQuery adapts a client call to a cobra RunE that prints the result
func runQuery[T any](call func(ctx context.Context, args []string) (T, error)) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		result, err := call(cmd.Context(), args)
		if err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), result)
	}
}

func newQueryCmds(a *app) []*cobra.Command {
	userCmd := func(use, short string, call func(context.Context, commons.UserArgs) (any, error)) *cobra.Command {
		return &cobra.Command{
			Use:   use + " <user>",
			Short: short,
			Args:  cobra.ExactArgs(1),
			RunE: runQuery(func(ctx context.Context, args []string) (any, error) {
				return call(ctx, commons.UserArgs{User: args[0]})
			}),
		}
	}

	uploads := userCmd("uploads", "Print a user's upload count", func(ctx context.Context, args commons.UserArgs) (any, error) {
		return a.client.UploadCountMCP(ctx, args)
	})
	edits := userCmd("edits", "Print a user's Wikidata edit count", func(ctx context.Context, args commons.UserArgs) (any, error) {
		return a.client.WikidataEditCountMCP(ctx, args)
	})
	achievements := userCmd("achievements", "Print a user's achievements", func(ctx context.Context, args commons.UserArgs) (any, error) {
		return a.client.AchievementsMCP(ctx, args)
	})
	stats := userCmd("stats", "Print upload count, edit count and achievements together", func(ctx context.Context, args commons.UserArgs) (any, error) {
		return a.client.UserStatsMCP(ctx, args)
	})

	var nearbyArgs commons.NearbyPlacesArgs
	nearby := &cobra.Command{
		Use:   "nearby",
		Short: "Print Wikidata places near a coordinate",
		Args:  cobra.NoArgs,
		RunE: runQuery(func(ctx context.Context, _ []string) (commons.NearbyPlacesResult, error) {
			return a.client.NearbyPlacesMCP(ctx, nearbyArgs)
		}),
	}
	nearby.Flags().Float64Var(&nearbyArgs.Latitude, "lat", 0, "latitude in decimal degrees")
	nearby.Flags().Float64Var(&nearbyArgs.Longitude, "lon", 0, "longitude in decimal degrees")
	nearby.Flags().Float64Var(&nearbyArgs.Radius, "radius", commons.DefaultNearbyRadius, "search radius in kilometers")
	nearby.Flags().StringVar(&nearbyArgs.Language, "lang", "", "label language (default: configured locale)")
	_ = nearby.MarkFlagRequired("lat")
	_ = nearby.MarkFlagRequired("lon")

	campaigns := &cobra.Command{
		Use:   "campaigns",
		Short: "Print the upload campaigns feed",
		Args:  cobra.NoArgs,
		RunE: runQuery(func(ctx context.Context, _ []string) (commons.CampaignsResult, error) {
			return a.client.CampaignsMCP(ctx, commons.CampaignsArgs{})
		}),
	}

	potd := &cobra.Command{
		Use:   "potd",
		Short: "Print today's picture of the day",
		Args:  cobra.NoArgs,
		RunE: runQuery(func(ctx context.Context, _ []string) (commons.PictureOfTheDayResult, error) {
			return a.client.PictureOfTheDayMCP(ctx, commons.PictureOfTheDayArgs{})
		}),
	}

	var queryType string
	media := &cobra.Command{
		Use:   "media <keyword>",
		Short: "Print the next page of a search or category listing",
		Long: `Print the next page of media for keyword. Each run resumes where the
previous run for the same keyword stopped; use "reset-continuation" to start over. The
position survives restarts when store.driver is sqlite or redis.`,
		Args: cobra.ExactArgs(1),
		RunE: runQuery(func(ctx context.Context, args []string) (commons.MediaListResult, error) {
			return a.client.MediaListMCP(ctx, commons.MediaListArgs{QueryType: queryType, Keyword: args[0]})
		}),
	}
	media.Flags().StringVar(&queryType, "type", commons.QueryTypeCategory, fmt.Sprintf("%s or %s", commons.QueryTypeSearch, commons.QueryTypeCategory))

	reset := &cobra.Command{
		Use:     "reset-continuation <keyword>",
		Aliases: []string{"reset"},
		Short:   "Forget the stored listing position for keyword",
		Args:    cobra.ExactArgs(1),
		RunE: runQuery(func(ctx context.Context, args []string) (commons.ResetContinuationResult, error) {
			return a.client.ResetContinuationMCP(ctx, commons.ResetContinuationArgs{Keyword: args[0]})
		}),
	}

	recent := &cobra.Command{
		Use:   "recent",
		Short: "Print a random sample of recent file changes",
		Args:  cobra.NoArgs,
		RunE: runQuery(func(ctx context.Context, _ []string) (commons.RecentChangesResult, error) {
			return a.client.RecentChangesMCP(ctx, commons.RecentChangesArgs{})
		}),
	}

	firstRevision := &cobra.Command{
		Use:   "first-revision <File:name>",
		Short: "Print the first revision of a file",
		Args:  cobra.ExactArgs(1),
		RunE: runQuery(func(ctx context.Context, args []string) (commons.FirstRevisionResult, error) {
			return a.client.FirstRevisionMCP(ctx, commons.FirstRevisionArgs{Filename: args[0]})
		}),
	}

	return []*cobra.Command{
		uploads, edits, achievements, stats,
		nearby, campaigns, potd,
		media, reset, recent, firstRevision,
	}
}
