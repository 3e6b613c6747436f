package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/pytutor/internal/curriculum"
)

var topicsCmd = &cobra.Command{
	Use:   "topics",
	Short: "List the curriculum",
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")
		catalog := curriculum.Default()
		w := cmd.OutOrStdout()

		if asJSON {
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			return enc.Encode(map[string]any{"sections": catalog.Sections()})
		}

		for i, sec := range catalog.Sections() {
			if i > 0 {
				fmt.Fprintln(w)
			}
			fmt.Fprintln(w, sec.Title)
			fmt.Fprintln(w, strings.Repeat("─", len([]rune(sec.Title))))
			for _, t := range sec.Topics {
				fmt.Fprintf(w, "  %-20s  %s\n", t.ID, t.Title)
				for _, name := range t.Subtopics {
					fmt.Fprintf(w, "  %-20s    · %s\n", "", name)
				}
			}
		}
		return nil
	},
}

func init() {
	topicsCmd.Flags().Bool("json", false, "Print the catalog as JSON")
}
