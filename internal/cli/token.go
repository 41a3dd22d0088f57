package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"trivia-quiz/internal/state"
)

// NewTokenCmd manages the persisted question bank session token.
func NewTokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Inspect or reset the question bank session token",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print the stored session token",
			RunE: func(cmd *cobra.Command, args []string) error {
				return withTokens(cmd, func(tokens *state.TokenStore) error {
					token, ok := tokens.Get(cmd.Context())
					if !ok {
						fmt.Fprintln(cmd.OutOrStdout(), "no session token stored")
						return nil
					}
					fmt.Fprintln(cmd.OutOrStdout(), token)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Forget the stored session token",
			RunE: func(cmd *cobra.Command, args []string) error {
				return withTokens(cmd, func(tokens *state.TokenStore) error {
					return tokens.Clear(cmd.Context())
				})
			},
		},
		&cobra.Command{
			Use:   "reset",
			Short: "Ask the bank to serve already-seen questions again",
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, _, err := loadConfig(cmd)
				if err != nil {
					return err
				}
				store, closeStore, err := openStateStore(cmd.Context(), cfg)
				if err != nil {
					return err
				}
				defer closeStore()

				tokens := newTokenStore(cfg, store)
				token, ok := tokens.Get(cmd.Context())
				if !ok {
					return fmt.Errorf("no session token stored")
				}
				if err := newBankClient(cfg, tokens).ResetToken(cmd.Context(), token); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "session token reset")
				return nil
			},
		},
	)
	return cmd
}

func withTokens(cmd *cobra.Command, fn func(tokens *state.TokenStore) error) error {
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	store, closeStore, err := openStateStore(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer closeStore()
	return fn(newTokenStore(cfg, store))
}
