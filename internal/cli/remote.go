package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mcoot/gomoku-server/internal/api/response"
)

func newMatchesCmd() *cobra.Command {
	var recent bool

	cmd := &cobra.Command{
		Use:   "matches [id]",
		Short: "List live matches, or show one with its board",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := NewOutput(cfg.Output, cmd.OutOrStdout())

			if len(args) == 1 {
				var detail response.MatchDetail
				if err := client.Get(cmd.Context(), "/api/v1/matches/"+args[0], &detail); err != nil {
					return err
				}
				out.Print(detail)
				return nil
			}

			path := "/api/v1/matches"
			if recent {
				path = "/api/v1/results"
			}
			var matches []response.Match
			if err := client.Get(cmd.Context(), path, &matches); err != nil {
				return err
			}
			out.Print(matches)
			return nil
		},
	}

	cmd.Flags().BoolVar(&recent, "recent", false, "List recently finished matches instead")
	return cmd
}

func newWhoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "who",
		Short: "List online users",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Who
			if err := client.Get(cmd.Context(), "/api/v1/who", &result); err != nil {
				return err
			}
			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

// matchLabel is the one-line summary used by the text output
func matchLabel(m response.Match) string {
	label := fmt.Sprintf("%d: %s (Black) vs %s (White)", m.ID, m.Black, m.White)
	if m.Winner != "" {
		return label + fmt.Sprintf(" [FINISHED - Winner: %s (%s)]", m.Winner, m.Reason)
	}
	return label + fmt.Sprintf(" [%s to move, %d moves]", m.Turn, m.Moves)
}
