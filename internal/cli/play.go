package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/spf13/cobra"

	"github.com/randomtoy/memory-match/internal/app"
	"github.com/randomtoy/memory-match/internal/domain"
	"github.com/randomtoy/memory-match/internal/game"
	"github.com/randomtoy/memory-match/internal/render"
)

const playHelp = "Enter a tile number to flip it, empty line to refresh, r to play again, q to quit."

// NewPlayCommand creates the play command.
func NewPlayCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "play",
		Short: "Play the memory game in the terminal",
		Long: `Play one memory game session in the terminal.

` + playHelp,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger(cmd.ErrOrStderr(), rootOpts.Config.LogLevel)
			svc, err := newServices(rootOpts.Config, clock.New(), logger)
			if err != nil {
				return err
			}
			defer svc.close()

			cfg := rootOpts.Config
			wait := max(cfg.MatchDelay, cfg.MismatchDelay)
			return play(cmd.Context(), svc.games, clock.New(), wait, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

// play runs an interactive session until q or end of input. After the second
// flip of a pair it sleeps for wait so the board is shown resolved.
func play(ctx context.Context, games *app.GameService, clk clock.Clock, wait time.Duration, in io.Reader, out io.Writer) error {
	snap, err := games.StartSession(ctx)
	if err != nil {
		return err
	}
	id := snap.SessionID
	defer func() { _ = games.End(ctx, id) }()

	fmt.Fprintln(out, playHelp)
	show := func(s game.Snapshot) {
		fmt.Fprint(out, "\n"+render.Board(s, games.HighScore(ctx)))
	}
	show(snap)

	sc := bufio.NewScanner(in)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		switch line {
		case "q", "quit":
			fmt.Fprintln(out, "Bye.")
			return nil
		case "":
			snap, err = games.Session(ctx, id)
		case "r", "reset":
			snap, err = games.Reset(ctx, id)
		default:
			tile, convErr := strconv.Atoi(line)
			if convErr != nil {
				fmt.Fprintf(out, "unknown command %q. %s\n", line, playHelp)
				continue
			}
			snap, err = games.Flip(ctx, id, tile)
			if err == nil && snap.Checking {
				// show the pair, then wait for it to resolve
				show(snap)
				clk.Sleep(wait)
				snap, err = games.Session(ctx, id)
			}
		}

		switch {
		case errors.Is(err, domain.ErrFlipRejected), errors.Is(err, domain.ErrTileNotFound):
			fmt.Fprintf(out, "%v\n", err)
			continue
		case err != nil:
			return err
		}
		show(snap)
	}
	return sc.Err()
}
