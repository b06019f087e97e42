package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/benbjohnson/clock"
	"github.com/spf13/cobra"

	"github.com/randomtoy/memory-match/internal/domain"
	"github.com/randomtoy/memory-match/internal/score"
)

// NewHighScoreCommand creates the highscore command group.
func NewHighScoreCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "highscore",
		Short: "Show or clear the stored high score",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the best result",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			keeper, done, err := openKeeper(rootOpts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer done()
			return printHighScore(cmd.OutOrStdout(), rootOpts.Format, keeper.ReadBest(cmd.Context()))
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Delete the best result",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			keeper, done, err := openKeeper(rootOpts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer done()
			if err := keeper.ClearBest(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "High score cleared.")
			return nil
		},
	})

	return cmd
}

func openKeeper(opts *RootOptions, logw io.Writer) (*score.Keeper, func(), error) {
	logger := newLogger(logw, opts.Config.LogLevel)
	kv, done, err := openStore(opts.Config, logger)
	if err != nil {
		return nil, nil, err
	}
	return score.NewKeeper(kv, clock.New(), logger), done, nil
}

func printHighScore(w io.Writer, format string, hs *domain.HighScore) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			HighScore *domain.HighScore `json:"high_score"`
		}{hs})
	}
	if hs == nil {
		_, err := fmt.Fprintln(w, "No high score yet.")
		return err
	}
	_, err := fmt.Fprintf(w, "Best: %d (%s, %d moves) on %s\n", hs.Score, score.FormatDuration(hs.Time), hs.Moves, hs.Date)
	return err
}
