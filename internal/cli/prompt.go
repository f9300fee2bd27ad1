package cli

import (
	"github.com/spf13/cobra"
)

func newPromptCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prompt",
		Short: "Roll prompt commands",
	}

	cmd.AddCommand(newPromptCreateCmd())
	cmd.AddCommand(newPromptListCmd())

	return cmd
}

func newPromptCreateCmd() *cobra.Command {
	var reason string
	var players []string

	cmd := &cobra.Command{
		Use:   "create <game-id>",
		Short: "Ask specific players to roll (game owner only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]any{
				"player_ids": players,
				"reason":     reason,
			}
			var result Prompt

			if err := client.Post("/api/v1/games/"+args[0]+"/prompts", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&reason, "reason", "", "What the roll is for (required)")
	cmd.Flags().StringSliceVar(&players, "player", nil, "Player id to prompt, repeatable (required)")
	_ = cmd.MarkFlagRequired("reason")
	_ = cmd.MarkFlagRequired("player")

	return cmd
}

func newPromptListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list <game-id>",
		Short: "List recent prompts and the rolls answering them",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result PromptsResult

			if err := client.Get("/api/v1/games/"+args[0]+"/prompts", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}
