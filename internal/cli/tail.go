package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/dicetray/dicetray/internal/feed"
	"github.com/dicetray/dicetray/internal/model"
)

func newTailCmd() *cobra.Command {
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "tail <game-id>",
		Short: "Follow a game's rolls live, Ctrl+C to stop",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			gameID := args[0]

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			logLevel := slog.LevelError
			if cfg.Verbose {
				logLevel = slog.LevelDebug
			}
			logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

			fetch := func(ctx context.Context) ([]model.DieRoll, error) {
				var result DieRollsResult
				if err := client.Get("/api/v1/games/"+gameID+"/dice", &result); err != nil {
					return nil, err
				}
				return rollsToModels(result.DieRolls), nil
			}

			assembler := feed.New(fetch, feed.Config{PollInterval: interval}, logger)

			out := NewOutput(cfg.Output)
			updates := make(chan feed.Update)
			go func() {
				for {
					select {
					case <-ctx.Done():
						return
					case update := <-updates:
						printUpdate(out, update)
					}
				}
			}()

			return assembler.Run(ctx, updates)
		},
	}

	cmd.Flags().DurationVar(&interval, "interval", 2*time.Second, "Poll interval")

	return cmd
}

// printUpdate renders one feed update. Replaces print the page oldest first
// so the terminal reads top to bottom like a log.
func printUpdate(out *Output, update feed.Update) {
	switch update.Kind {
	case feed.UpdateReplace:
		fmt.Println("---")
		for i := len(update.Rolls) - 1; i >= 0; i-- {
			out.printRollLine(rollToResult(update.Rolls[i]))
		}
	case feed.UpdateAppend:
		out.printRollLine(rollToResult(*update.Roll))
	}
}

func rollsToModels(rolls []DieRoll) []model.DieRoll {
	models := make([]model.DieRoll, len(rolls))
	for i, roll := range rolls {
		dice := make([]model.Die, len(roll.Dice))
		for j, d := range roll.Dice {
			dice[j] = model.Die{Die: model.DieType(d.Die), Value: d.Value}
		}
		models[i] = model.DieRoll{
			ID:        model.DieRollID(roll.ID),
			PlayerID:  model.PlayerID(roll.PlayerID),
			GameID:    model.GameID(roll.GameID),
			RollTotal: roll.RollTotal,
			Context:   roll.Notation,
			PromptID:  model.PromptID(roll.PromptID),
			Dice:      dice,
			CreatedAt: roll.CreatedAt,
		}
	}
	return models
}

func rollToResult(roll model.DieRoll) DieRoll {
	dice := make([]Die, len(roll.Dice))
	for i, d := range roll.Dice {
		dice[i] = Die{Die: string(d.Die), Value: d.Value}
	}
	return DieRoll{
		ID:        string(roll.ID),
		PlayerID:  string(roll.PlayerID),
		GameID:    string(roll.GameID),
		RollTotal: roll.RollTotal,
		Notation:  roll.Context,
		PromptID:  string(roll.PromptID),
		Dice:      dice,
		CreatedAt: roll.CreatedAt,
	}
}
