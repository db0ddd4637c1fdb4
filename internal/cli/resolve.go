package cli

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
)

var (
	resolveForecast int
	resolveQuiet    bool
)

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Print the document that would be served for the given forecast hour",
	RunE: func(cmd *cobra.Command, args []string) error {
		if resolveForecast < 0 {
			return fmt.Errorf("--forecast must not be negative")
		}

		p := newPipeline(http.DefaultClient)
		doc, err := p.resolver.Resolve(cmd.Context(), resolveForecast)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s (cycle %s, offset %d)\n", doc.Name, doc.Cycle, doc.Offset)
		if resolveQuiet {
			return nil
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(doc.Content)
	},
}

func init() {
	resolveCmd.Flags().IntVar(&resolveForecast, "forecast", 0, "hours ahead of now")
	resolveCmd.Flags().BoolVarP(&resolveQuiet, "quiet", "q", false, "print only the document name")
}
