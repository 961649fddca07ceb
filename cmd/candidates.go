package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sells-group/transcript-geo/internal/locate"
)

var candidatesCmd = &cobra.Command{
	Use:   "candidates <name>",
	Short: "Show the search candidates and expectation derived from a name",
	Long:  "Prints what the resolver would query for a raw location name without calling the search service.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		formatCandidates(cmd.OutOrStdout(), strings.Join(args, " "))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(candidatesCmd)
}

// formatCandidates writes the expectation and numbered candidates for name.
func formatCandidates(out io.Writer, name string) {
	exp := locate.Expect(name)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "NAME\t%s\n", name)
	_, _ = fmt.Fprintf(w, "REGION\t%s\n", orDash(exp.Region))
	_, _ = fmt.Fprintf(w, "FEATURE\t%s\n", orDash(string(exp.Feature)))
	for i, c := range locate.Candidates(name) {
		_, _ = fmt.Fprintf(w, "%d\t%s\n", i+1, c)
	}
	_ = w.Flush()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
