package cli

import (
	"github.com/spf13/cobra"
)

func newGameCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "game",
		Short: "Game table commands",
	}

	cmd.AddCommand(newGameCreateCmd())
	cmd.AddCommand(newGameJoinCmd())
	cmd.AddCommand(newGameListCmd())
	cmd.AddCommand(newGameMembersCmd())

	return cmd
}

func newGameCreateCmd() *cobra.Command {
	var name, secret string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a game you own",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{"name": name, "secret": secret}
			var result Game

			if err := client.Post("/api/v1/games", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Game name (required)")
	cmd.Flags().StringVar(&secret, "secret", "", "Join secret shared with players (required)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("secret")

	return cmd
}

func newGameJoinCmd() *cobra.Command {
	var name, secret, character string

	cmd := &cobra.Command{
		Use:   "join",
		Short: "Join a game by name and secret",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{
				"name":           name,
				"secret":         secret,
				"character_name": character,
			}
			var result Membership

			if err := client.Post("/api/v1/games/join", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Game name (required)")
	cmd.Flags().StringVar(&secret, "secret", "", "Join secret (required)")
	cmd.Flags().StringVar(&character, "character", "", "Character name (optional)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("secret")

	return cmd
}

func newGameListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List games you own or have joined",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result GamesResult

			if err := client.Get("/api/v1/games", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newGameMembersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "members <game-id>",
		Short: "List everyone seated at a game",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result MembersResult

			if err := client.Get("/api/v1/games/"+args[0]+"/members", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}
