// Package mcp exposes a cart to MCP clients (AI agents) as tools and a resource.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/cartsync"
	"github.com/aretw0/cartsync/internal/logging"
	"github.com/aretw0/cartsync/pkg/domain"
	"github.com/aretw0/cartsync/pkg/ports"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// CheckoutURI is the resource holding the current cart.
const CheckoutURI = "cart://checkout"

// CartResponse is the structured result of every cart tool.
type CartResponse struct {
	Checkout         domain.Checkout       `json:"checkout" jsonschema_description:"The current checkout"`
	CheckoutEditable bool                  `json:"checkout_editable" jsonschema_description:"False while a mutation is in flight"`
	TotalQuantity    int                   `json:"total_quantity" jsonschema_description:"Sum of line item quantities"`
	Status           domain.CheckoutStatus `json:"status" jsonschema_description:"uninitialized, active or stale"`
}

// ReconcileResponse is the result of reconcile_checkout.
type ReconcileResponse struct {
	Outcome domain.ReconcileOutcome `json:"outcome" jsonschema_description:"created, resumed, replaced, cleared, create_failed or canceled"`
	Cart    CartResponse            `json:"cart"`
}

// CheckoutResponse is the result of proceed_to_checkout.
type CheckoutResponse struct {
	WebURL string `json:"web_url" jsonschema_description:"URL where the buyer completes payment"`
}

// Server wraps a cart and exposes it as an MCP server.
type Server struct {
	cart      ports.CartService
	mcpServer *server.MCPServer
	logger    *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(cart ports.CartService, opts ...Option) *Server {
	s := &Server{
		cart:      cart,
		mcpServer: server.NewMCPServer("cartsync-mcp", strings.TrimSpace(cartsync.Version)),
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying mcp-go server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves MCP over SSE on port until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(fmt.Sprintf("http://localhost:%d", port)))

	mux := http.NewServeMux()
	mux.Handle("/sse", sseServer.SSEHandler())
	mux.Handle("/message", sseServer.MessageHandler())

	httpServer := &http.Server{Addr: addr, Handler: mux}
	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("get_cart",
		mcp.WithDescription("Get the current cart: line items, total price and quantity."),
		mcp.WithOutputSchema[CartResponse](),
	), mcp.NewStructuredToolHandler(s.handleGetCart))

	s.mcpServer.AddTool(mcp.NewTool("add_to_cart",
		mcp.WithDescription("Add units of a product variant to the cart."),
		mcp.WithString("variant_id", mcp.Required(), mcp.Description("Product variant ID")),
		mcp.WithNumber("quantity", mcp.Description("Units to add (default 1)")),
		mcp.WithOutputSchema[CartResponse](),
	), mcp.NewStructuredToolHandler(s.handleAddToCart))

	s.mcpServer.AddTool(mcp.NewTool("update_line_item",
		mcp.WithDescription("Set the quantity of a line item already in the cart."),
		mcp.WithString("line_item_id", mcp.Required(), mcp.Description("Line item ID from get_cart")),
		mcp.WithNumber("quantity", mcp.Required(), mcp.Description("New quantity (>= 1)")),
		mcp.WithOutputSchema[CartResponse](),
	), mcp.NewStructuredToolHandler(s.handleUpdateLineItem))

	s.mcpServer.AddTool(mcp.NewTool("remove_line_item",
		mcp.WithDescription("Remove a line item from the cart."),
		mcp.WithString("line_item_id", mcp.Required(), mcp.Description("Line item ID from get_cart")),
		mcp.WithOutputSchema[CartResponse](),
	), mcp.NewStructuredToolHandler(s.handleRemoveLineItem))

	s.mcpServer.AddTool(mcp.NewTool("reconcile_checkout",
		mcp.WithDescription("Re-sync the stored checkout with the storefront. Use when the cart has no checkout."),
		mcp.WithOutputSchema[ReconcileResponse](),
	), mcp.NewStructuredToolHandler(s.handleReconcile))

	s.mcpServer.AddTool(mcp.NewTool("proceed_to_checkout",
		mcp.WithDescription("Get the URL where the buyer pays for the cart."),
		mcp.WithOutputSchema[CheckoutResponse](),
	), mcp.NewStructuredToolHandler(s.handleProceedToCheckout))
}

func (s *Server) view() CartResponse {
	snap := s.cart.Snapshot()
	return CartResponse{
		Checkout:         snap.Checkout,
		CheckoutEditable: snap.CheckoutEditable,
		TotalQuantity:    snap.Checkout.TotalQuantity(),
		Status:           snap.Status(),
	}
}

func (s *Server) handleGetCart(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (CartResponse, error) {
	return s.view(), nil
}

func (s *Server) handleAddToCart(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (CartResponse, error) {
	variantID, _ := args["variant_id"].(string)
	quantity, ok := args["quantity"]
	if !ok || quantity == nil {
		quantity = 1
	}
	if err := s.cart.AddVariantToCart(ctx, variantID, quantity); err != nil {
		s.logger.Warn("MCP add_to_cart failed", "variant_id", variantID, "err", err)
		return CartResponse{}, fmt.Errorf("add to cart failed: %w", err)
	}
	return s.view(), nil
}

func (s *Server) handleUpdateLineItem(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (CartResponse, error) {
	lineItemID, _ := args["line_item_id"].(string)
	if err := s.cart.UpdateLineItemQuantity(ctx, lineItemID, args["quantity"]); err != nil {
		s.logger.Warn("MCP update_line_item failed", "line_item_id", lineItemID, "err", err)
		return CartResponse{}, fmt.Errorf("update line item failed: %w", err)
	}
	return s.view(), nil
}

func (s *Server) handleRemoveLineItem(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (CartResponse, error) {
	lineItemID, _ := args["line_item_id"].(string)
	if err := s.cart.RemoveLineItem(ctx, lineItemID); err != nil {
		s.logger.Warn("MCP remove_line_item failed", "line_item_id", lineItemID, "err", err)
		return CartResponse{}, fmt.Errorf("remove line item failed: %w", err)
	}
	return s.view(), nil
}

func (s *Server) handleReconcile(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (ReconcileResponse, error) {
	outcome := s.cart.Reconcile(ctx)
	return ReconcileResponse{Outcome: outcome, Cart: s.view()}, nil
}

func (s *Server) handleProceedToCheckout(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (CheckoutResponse, error) {
	if err := s.cart.ProceedToCheckout(ctx); err != nil {
		return CheckoutResponse{}, fmt.Errorf("checkout unavailable: %w", err)
	}
	return CheckoutResponse{WebURL: s.cart.Snapshot().Checkout.WebURL}, nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(CheckoutURI, "Current Cart",
		mcp.WithMIMEType("application/json"),
	), s.readCheckout)
}

func (s *Server) readCheckout(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	jsonBytes, err := json.Marshal(s.view())
	if err != nil {
		return nil, fmt.Errorf("failed to encode cart: %w", err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      CheckoutURI,
			MIMEType: "application/json",
			Text:     string(jsonBytes),
		},
	}, nil
}
