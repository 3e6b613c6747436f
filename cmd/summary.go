package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/pytutor/internal/store"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show the summary of the last tutor reply",
	RunE: func(cmd *cobra.Command, args []string) error {
		clearSaved, _ := cmd.Flags().GetBool("clear")

		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		ctx := cmd.Context()
		repo := st.LocalStateRepo()
		w := cmd.OutOrStdout()

		if clearSaved {
			if err := store.ClearProcessed(ctx, repo); err != nil {
				return fmt.Errorf("clear summary: %w", err)
			}
			fmt.Fprintln(w, "Summary cleared.")
			return nil
		}

		rec, ok, err := store.LoadProcessed(ctx, repo)
		if err != nil {
			return fmt.Errorf("load summary: %w", err)
		}
		if !ok {
			fmt.Fprintln(w, "No summary saved yet.")
			return nil
		}

		fmt.Fprintf(w, "Summary:        %s\n", rec.Summary)
		fmt.Fprintf(w, "Random Number:  %d\n", rec.RandomNumber)
		fmt.Fprintln(w)
		rule(w, 60)
		fmt.Fprintln(w, rec.OriginalResponse)
		return nil
	},
}

func init() {
	summaryCmd.Flags().Bool("clear", false, "Delete the saved summary")
}
