package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/aretw0/cartsync/internal/presentation/tui"
	"github.com/aretw0/cartsync/pkg/adapters/memory"
	"github.com/aretw0/cartsync/pkg/domain"
	"github.com/aretw0/cartsync/pkg/ports"
)

const shellHelp = `Commands:
  show                     print the cart
  catalog                  list sandbox variants
  add <variant> [qty]      add a variant (qty defaults to 1)
  update <line> <qty>      change a line item quantity
  remove <line>            remove a line item
  reconcile                re-run checkout reconciliation
  checkout                 hand the checkout URL to the browser
  pay                      complete the checkout in the sandbox
  help                     show this help
  quit                     leave the shell
`

// Shell is an interactive cart REPL.
type Shell struct {
	Cart    ports.CartService
	Sandbox *memory.Backend
	Render  tui.Renderer
	In      io.Reader
	Out     io.Writer
}

// Run reads commands until quit, EOF or ctx cancellation.
func (s *Shell) Run(ctx context.Context) error {
	scanner := bufio.NewScanner(s.In)
	for {
		fmt.Fprint(s.Out, "cart> ")

		lines := make(chan bool, 1)
		go func() { lines <- scanner.Scan() }()

		select {
		case <-ctx.Done():
			fmt.Fprintln(s.Out)
			return ctx.Err()
		case ok := <-lines:
			if !ok {
				fmt.Fprintln(s.Out)
				return scanner.Err()
			}
		}

		quit, err := s.Exec(ctx, scanner.Text(), s.Render)
		if err != nil {
			fmt.Fprintf(s.Out, "error: %v\n", err)
		}
		if quit {
			return nil
		}
	}
}

// Exec runs a single command line. A nil render prints plain markdown.
func (s *Shell) Exec(ctx context.Context, line string, render tui.Renderer) (bool, error) {
	if render == nil {
		render = tui.PlainRenderer
	}
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, nil
	}
	cmd, args := strings.ToLower(fields[0]), fields[1:]

	switch cmd {
	case "quit", "exit":
		return true, nil
	case "help", "?":
		fmt.Fprint(s.Out, shellHelp)
		return false, nil
	case "show", "cart", "ls":
		return false, s.show(render)
	case "catalog":
		return false, s.catalog()
	case "add":
		if len(args) < 1 {
			return false, errors.New("usage: add <variant> [qty]")
		}
		qty := "1"
		if len(args) > 1 {
			qty = args[1]
		}
		if err := s.Cart.AddVariantToCart(ctx, args[0], qty); err != nil {
			return false, err
		}
		return false, s.show(render)
	case "update":
		if len(args) < 2 {
			return false, errors.New("usage: update <line> <qty>")
		}
		if err := s.Cart.UpdateLineItemQuantity(ctx, args[0], args[1]); err != nil {
			return false, err
		}
		return false, s.show(render)
	case "remove", "rm":
		if len(args) < 1 {
			return false, errors.New("usage: remove <line>")
		}
		if err := s.Cart.RemoveLineItem(ctx, args[0]); err != nil {
			return false, err
		}
		return false, s.show(render)
	case "reconcile":
		outcome := s.Cart.Reconcile(ctx)
		fmt.Fprintf(s.Out, "reconcile: %s\n", outcome)
		return false, s.show(render)
	case "checkout":
		return false, s.Cart.ProceedToCheckout(ctx)
	case "pay":
		return false, s.pay()
	default:
		return false, fmt.Errorf("unknown command %q (try help)", cmd)
	}
}

func (s *Shell) show(render tui.Renderer) error {
	out, err := render(tui.CartMarkdown(s.Cart.Snapshot()))
	if err != nil {
		return err
	}
	fmt.Fprint(s.Out, out)
	return nil
}

func (s *Shell) catalog() error {
	if s.Sandbox == nil {
		return errors.New("no sandbox backend")
	}
	variants := s.Sandbox.Catalog()
	if len(variants) == 0 {
		fmt.Fprintln(s.Out, "catalog is empty: any variant id is accepted at 0.00")
		return nil
	}
	ids := make([]string, 0, len(variants))
	for id := range variants {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		v := variants[id]
		fmt.Fprintf(s.Out, "  %-12s %-24s %s\n", v.ID, v.Title, v.Price)
	}
	return nil
}

func (s *Shell) pay() error {
	if s.Sandbox == nil {
		return errors.New("no sandbox backend")
	}
	id := s.Cart.Snapshot().Checkout.ID
	if id == "" {
		return domain.ErrCheckoutUnset
	}
	if err := s.Sandbox.Complete(id); err != nil {
		return err
	}
	fmt.Fprintf(s.Out, "checkout %s completed; run reconcile to start a new cart\n", id)
	return nil
}
