package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

func newScrapeCmd(g *globalFlags) *cobra.Command {
	var (
		format   string
		exitCode bool
	)

	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Run one reconciliation and print the report",
		Long: `Fetch every configured source, reconcile the listings with the store
and print what changed. With --exit-code the command exits 2 when new events
were created.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := OutputFormat(strings.ToLower(format))
			if f != FormatText && f != FormatJSON {
				return fmt.Errorf("invalid format: %s (must be 'text' or 'json')", format)
			}

			rt, err := g.open(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer rt.close()

			engine, err := rt.engine()
			if err != nil {
				return err
			}

			report := engine.Run(cmd.Context(), rt.catalog, time.Now().In(rt.cfg.Location()))

			if err := WriteReport(cmd.OutOrStdout(), report, f, g.verbose); err != nil {
				return fmt.Errorf("writing output: %w", err)
			}

			if exitCode && report.Created > 0 {
				return &ExitCodeError{Code: ExitNewEvents}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "text", "Output format: text or json")
	cmd.Flags().BoolVar(&exitCode, "exit-code", false, "Exit with status 2 when new events were created")

	return cmd
}
