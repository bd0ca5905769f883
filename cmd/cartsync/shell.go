package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aretw0/cartsync/internal/cli"
	"github.com/aretw0/cartsync/internal/presentation/tui"
	"github.com/aretw0/cartsync/pkg/ports"
	"github.com/spf13/cobra"
)

var shellCmd = &cobra.Command{
	Use:     "shell",
	Aliases: []string{"run"},
	Short:   "Open an interactive cart session",
	Long:    `Starts the cart against the sandbox storefront and reads cart commands from stdin. Type 'help' for the command list.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sc := cli.NewSignalContext(context.Background())
		defer sc.Cancel()

		navigator := ports.NavigatorFunc(func(ctx context.Context, url string) error {
			_, err := fmt.Fprintf(os.Stdout, "Continue to payment: %s\n", url)
			return err
		})

		app, err := buildApp(sc, cmd, cli.BuildOptions{Navigator: navigator})
		if err != nil {
			return err
		}
		defer app.Close()

		tui.PrintBanner(os.Stdout)
		app.Cart.Start(sc)

		shell := &cli.Shell{
			Cart:    app.Cart,
			Sandbox: app.Sandbox,
			Render:  tui.RendererFor(os.Stdout),
			In:      os.Stdin,
			Out:     os.Stdout,
		}
		if err := shell.Run(sc); err != nil && !cli.IsInterrupted(err) {
			return err
		}
		fmt.Fprintln(os.Stdout, "Bye!")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(shellCmd)
}
