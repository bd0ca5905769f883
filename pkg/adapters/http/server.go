// Package http exposes a cart over a small JSON API built on chi.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/cartsync"
	"github.com/aretw0/cartsync/internal/logging"
	"github.com/aretw0/cartsync/pkg/domain"
	"github.com/aretw0/cartsync/pkg/ports"
	"github.com/go-chi/chi/v5"
)

// Server serves one cart.
type Server struct {
	Cart    ports.CartService
	Streams *StreamManager
	logger  *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// CartView is the JSON shape of GET /cart.
type CartView struct {
	Checkout         domain.Checkout       `json:"checkout"`
	CheckoutEditable bool                  `json:"checkout_editable"`
	TotalQuantity    int                   `json:"total_quantity"`
	Status           domain.CheckoutStatus `json:"status"`
}

type addLineRequest struct {
	VariantID string `json:"variant_id"`
	Quantity  any    `json:"quantity"`
}

type updateLineRequest struct {
	Quantity any `json:"quantity"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// NewServer creates a Server for cart.
func NewServer(cart ports.CartService, opts ...Option) *Server {
	s := &Server{
		Cart:   cart,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Streams = NewStreamManager(s.logger)
	return s
}

// NewHandler creates the HTTP handler for cart.
func NewHandler(cart ports.CartService, opts ...Option) http.Handler {
	return NewServer(cart, opts...).Routes()
}

// Routes builds the router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)

	r.Route("/cart", func(r chi.Router) {
		r.Get("/", s.GetCart)
		r.Get("/events", s.SubscribeEvents)
		r.Post("/lines", s.AddLine)
		r.Patch("/lines/{lineItemID}", s.UpdateLine)
		r.Delete("/lines/{lineItemID}", s.RemoveLine)
		r.Post("/reconcile", s.Reconcile)
		r.Post("/checkout", s.Checkout)
	})

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles GET /info.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":     "cartsync-http",
		"version": strings.TrimSpace(cartsync.Version),
	})
}

// GetCart handles GET /cart.
func (s *Server) GetCart(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.view())
}

// AddLine handles POST /cart/lines.
func (s *Server) AddLine(w http.ResponseWriter, r *http.Request) {
	var body addLineRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	s.mutated(w, r, s.Cart.AddVariantToCart(r.Context(), body.VariantID, body.Quantity))
}

// UpdateLine handles PATCH /cart/lines/{lineItemID}.
func (s *Server) UpdateLine(w http.ResponseWriter, r *http.Request) {
	var body updateLineRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	id := chi.URLParam(r, "lineItemID")
	s.mutated(w, r, s.Cart.UpdateLineItemQuantity(r.Context(), id, body.Quantity))
}

// RemoveLine handles DELETE /cart/lines/{lineItemID}.
func (s *Server) RemoveLine(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "lineItemID")
	s.mutated(w, r, s.Cart.RemoveLineItem(r.Context(), id))
}

// Reconcile handles POST /cart/reconcile.
func (s *Server) Reconcile(w http.ResponseWriter, r *http.Request) {
	outcome := s.Cart.Reconcile(r.Context())
	s.broadcast()
	s.writeJSON(w, http.StatusOK, map[string]any{
		"outcome": outcome,
		"cart":    s.view(),
	})
}

// Checkout handles POST /cart/checkout.
func (s *Server) Checkout(w http.ResponseWriter, r *http.Request) {
	if err := s.Cart.ProceedToCheckout(r.Context()); err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{
		"web_url": s.Cart.Snapshot().Checkout.WebURL,
	})
}

func (s *Server) mutated(w http.ResponseWriter, r *http.Request, err error) {
	if err != nil {
		s.logger.Warn("Cart mutation rejected", "path", r.URL.Path, "err", err)
		s.writeError(w, statusFor(err), err)
		return
	}
	s.broadcast()
	s.writeJSON(w, http.StatusOK, s.view())
}

func (s *Server) view() CartView {
	snap := s.Cart.Snapshot()
	return CartView{
		Checkout:         snap.Checkout,
		CheckoutEditable: snap.CheckoutEditable,
		TotalQuantity:    snap.Checkout.TotalQuantity(),
		Status:           snap.Status(),
	}
}

func (s *Server) broadcast() {
	payload, err := json.Marshal(s.view())
	if err != nil {
		s.logger.Error("Failed to encode cart event", "err", err)
		return
	}
	s.Streams.Broadcast(string(payload))
}

// statusFor maps the error taxonomy to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrCheckoutUnset), errors.Is(err, domain.ErrNoCheckoutURL):
		return http.StatusConflict
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, domain.ErrRemote):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Response encode failed", "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.writeJSON(w, status, errorResponse{Error: err.Error()})
}
