package cli

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/city-events/internal/filter"
)

func newEventsCmd(g *globalFlags) *cobra.Command {
	var (
		city, search, status string
		from, to             string
		format, sortBy       string
	)

	cmd := &cobra.Command{
		Use:   "events",
		Short: "List stored events",
		Long: `List the stored events. The filters behave like the query parameters of
GET /events: city and search are case-insensitive substring matches and the
date range only keeps events with a normalized date.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := OutputFormat(strings.ToLower(format))
			if f != FormatText && f != FormatJSON {
				return fmt.Errorf("invalid format: %s (must be 'text' or 'json')", format)
			}
			order := SortOrder(strings.ToLower(sortBy))
			if !order.valid() {
				return fmt.Errorf("invalid sort: %s (must be 'date', 'title' or 'city')", sortBy)
			}

			rt, err := g.open(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer rt.close()

			query := url.Values{}
			for key, val := range map[string]string{
				"city":      city,
				"search":    search,
				"status":    status,
				"startDate": from,
				"endDate":   to,
			} {
				if val != "" {
					query.Set(key, val)
				}
			}
			flt, err := filter.Parse(query, rt.cfg.Location())
			if err != nil {
				return err
			}

			events, err := rt.store.List(cmd.Context(), flt)
			if err != nil {
				return fmt.Errorf("listing events: %w", err)
			}
			sortEvents(events, order)

			return WriteEvents(cmd.OutOrStdout(), &EventList{
				Filter: flt.String(),
				Events: events,
			}, f, g.verbose)
		},
	}

	cmd.Flags().StringVar(&city, "city", "", "Only events whose city contains this text")
	cmd.Flags().StringVar(&search, "search", "", "Match title, venue or description")
	cmd.Flags().StringVar(&status, "status", "", "Only events with this status (new, updated, inactive, imported)")
	cmd.Flags().StringVar(&from, "from", "", "Earliest event date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "Latest event date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&format, "format", "text", "Output format: text or json")
	cmd.Flags().StringVar(&sortBy, "sort", string(SortByDate), "Sort by: date, title or city")

	return cmd
}
