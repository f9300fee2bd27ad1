package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/dicetray/dicetray/internal/services/dice"
)

func newRollCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "roll",
		Short: "Die roll commands",
	}

	cmd.AddCommand(newRollCreateCmd())
	cmd.AddCommand(newRollListCmd())

	return cmd
}

func newRollCreateCmd() *cobra.Command {
	var promptID string

	cmd := &cobra.Command{
		Use:   "create <game-id> <notation>",
		Short: "Roll dice in a game, e.g. dicetray roll create <id> \"2d6 d20\"",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			gameID := args[0]
			notation := strings.Join(args[1:], " ")

			// Expand notation locally so typos fail before the request
			diceTypes, err := dice.ParseNotation(notation)
			if err != nil {
				return err
			}

			diceStrs := make([]string, len(diceTypes))
			for i, d := range diceTypes {
				diceStrs[i] = string(d)
			}

			req := map[string]any{
				"dice":     diceStrs,
				"notation": notation,
			}
			if promptID != "" {
				req["prompt_id"] = promptID
			}

			var result DieRollsResult
			if err := client.Post("/api/v1/games/"+gameID+"/dice", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&promptID, "prompt", "", "Prompt this roll answers (optional)")

	return cmd
}

func newRollListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list <game-id>",
		Short: "List recent rolls in a game, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result DieRollsResult

			if err := client.Get("/api/v1/games/"+args[0]+"/dice", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}
