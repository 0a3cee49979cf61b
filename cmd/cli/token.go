package main

import (
	"fmt"
	"time"

	"github.com/gamewallet/wallet/pkg/middleware"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func newTokenCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "token USER_ID",
		Short: "Issue a bearer token for a user, for local testing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid user id: %w", err)
			}
			cfg, err := e.config()
			if err != nil {
				return err
			}
			token, err := middleware.SignToken(cfg.Auth.Jwt, userID, time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
}
