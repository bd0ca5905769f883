package main

import (
	"fmt"

	"github.com/aretw0/cartsync/internal/cli"
	"github.com/aretw0/cartsync/pkg/identity"
	"github.com/spf13/cobra"
)

var identityCmd = &cobra.Command{
	Use:   "identity",
	Short: "Inspect or reset the persisted checkout identity",
}

var identityShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the stored checkout id",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withIdentity(cmd, func(store *identity.Store) error {
			id, ok := store.Read(cmd.Context())
			if !ok {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: (none)\n", store.Key())
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", store.Key(), id)
			return nil
		})
	},
}

var identityClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Forget the stored checkout id so the next start creates a new checkout",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withIdentity(cmd, func(store *identity.Store) error {
			if err := store.Clear(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared %s\n", store.Key())
			return nil
		})
	},
}

func withIdentity(cmd *cobra.Command, fn func(*identity.Store) error) error {
	cfg, logger, _, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	kv, closer, err := cli.OpenStore(cmd.Context(), cfg.Identity)
	if err != nil {
		return err
	}
	defer closer()

	return fn(identity.New(kv, identity.WithKey(cfg.Identity.Key), identity.WithLogger(logger)))
}

func init() {
	identityCmd.AddCommand(identityShowCmd, identityClearCmd)
	rootCmd.AddCommand(identityCmd)
}
