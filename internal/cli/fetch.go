package cli

import (
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
)

var fetchAt string

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Run one acquisition and print the fetched files",
	RunE: func(cmd *cobra.Command, args []string) error {
		ref := time.Now().UTC()
		if fetchAt != "" {
			t, err := time.Parse(time.RFC3339, fetchAt)
			if err != nil {
				return fmt.Errorf("invalid --at: %w", err)
			}
			ref = t
		}

		p := newPipeline(&http.Client{Timeout: cfg.HTTPTimeout})
		res, err := p.orchestrator.Run(cmd.Context(), ref)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "run %s cycle %s: %d files\n", res.RunID, res.Cycle, len(res.Files))
		for _, f := range res.Files {
			fmt.Fprintln(out, f)
		}
		return nil
	},
}

func init() {
	fetchCmd.Flags().StringVar(&fetchAt, "at", "", "reference moment (RFC3339), defaults to now")
}
