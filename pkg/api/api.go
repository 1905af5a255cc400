// Package api exposes the order service over HTTP.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.opentelemetry.io/otel/trace"

	"ordersvc/pkg/logger"
	"ordersvc/pkg/metrics"
	"ordersvc/pkg/order"
	"ordersvc/pkg/otel"
)

// Server owns the HTTP router and its handlers.
type Server struct {
	svc    *order.Service
	log    *logger.Logger
	tracer trace.Tracer
	redis  *redis.Client
	router *mux.Router
}

// Options configures the optional parts of the server. Tracer and Redis
// may be nil; auth requires Redis.
type Options struct {
	Tracer      trace.Tracer
	Redis       *redis.Client
	AuthEnabled bool
}

// New builds the router. The /orders subtree is only wrapped in session
// auth when enabled; the rest of the surface is always open.
func New(svc *order.Service, log *logger.Logger, m *metrics.Registry, opts Options) *Server {
	s := &Server{svc: svc, log: log, tracer: opts.Tracer, redis: opts.Redis}

	r := mux.NewRouter()
	r.Use(s.requestIDMiddleware)
	if s.tracer != nil {
		r.Use(s.traceMiddleware)
	}

	r.HandleFunc("/", s.healthHandler).Methods(http.MethodGet)
	r.Handle("/metrics", m.Handler()).Methods(http.MethodGet)
	if s.redis != nil {
		r.HandleFunc("/login", s.loginHandler).Methods(http.MethodPost)
	}

	api := r.PathPrefix("/orders").Subrouter()
	if opts.AuthEnabled {
		api.Use(s.authMiddleware)
	}
	api.HandleFunc("", s.createOrderHandler).Methods(http.MethodPost)
	api.HandleFunc("", s.listOrdersHandler).Methods(http.MethodGet)
	api.HandleFunc("/{id}", s.getOrderHandler).Methods(http.MethodGet)
	api.HandleFunc("/{id}", s.updateOrderHandler).Methods(http.MethodPatch)
	api.HandleFunc("/{id}", s.deleteOrderHandler).Methods(http.MethodDelete)

	r.PathPrefix("/swagger/").Handler(httpSwagger.WrapHandler)

	s.router = r
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// healthHandler reports process liveness.
// @Summary Liveness
// @Produce json
// @Success 200
// @Router / [get]
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// createOrderHandler creates a new order and publishes its created event.
// @Summary Create order
// @Accept json
// @Produce json
// @Param order body order.Order true "Order"
// @Success 200 {object} order.Order
// @Router /orders [post]
func (s *Server) createOrderHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "createOrderHandler")
	defer span.End()

	var o order.Order
	if err := json.NewDecoder(r.Body).Decode(&o); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	created, err := s.svc.Create(ctx, o)
	if err != nil {
		var pubErr *order.PublishError
		if errors.As(err, &pubErr) {
			s.log.Error(ctx, "order created event not published", "id", pubErr.Order.ID, "error", err)
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}
		s.log.Error(ctx, "create order", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, created)
}

// listOrdersHandler lists orders.
// @Summary List orders
// @Produce json
// @Success 200 {array} order.Order
// @Router /orders [get]
func (s *Server) listOrdersHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "listOrdersHandler")
	defer span.End()

	orders, err := s.svc.List(ctx)
	if err != nil {
		s.log.Error(ctx, "list orders", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if orders == nil {
		orders = []order.Order{}
	}
	writeJSON(w, http.StatusOK, orders)
}

// getOrderHandler retrieves an order by id.
// @Summary Get order
// @Produce json
// @Param id path int true "Order ID"
// @Success 200 {object} order.Order
// @Failure 404 {object} map[string]string
// @Router /orders/{id} [get]
func (s *Server) getOrderHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "getOrderHandler")
	defer span.End()

	id, err := orderID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	o, err := s.svc.Get(ctx, id)
	if err != nil {
		if errors.Is(err, order.ErrNotFound) {
			writeNotFound(w)
			return
		}
		s.log.Error(ctx, "get order", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

// updateOrderHandler replaces item and quantity of an existing order.
// @Summary Update order
// @Accept json
// @Produce json
// @Param id path int true "Order ID"
// @Param order body order.Order true "Order"
// @Success 200 {object} order.Order
// @Failure 404 {object} map[string]string
// @Router /orders/{id} [patch]
func (s *Server) updateOrderHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "updateOrderHandler")
	defer span.End()

	id, err := orderID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var o order.Order
	if err := json.NewDecoder(r.Body).Decode(&o); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	updated, err := s.svc.Update(ctx, id, o)
	if err != nil {
		if errors.Is(err, order.ErrNotFound) {
			writeNotFound(w)
			return
		}
		s.log.Error(ctx, "update order", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// deleteOrderHandler removes an order.
// @Summary Delete order
// @Param id path int true "Order ID"
// @Success 204
// @Failure 404 {object} map[string]string
// @Router /orders/{id} [delete]
func (s *Server) deleteOrderHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "deleteOrderHandler")
	defer span.End()

	id, err := orderID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	removed, err := s.svc.Delete(ctx, id)
	if err != nil {
		s.log.Error(ctx, "delete order", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if !removed {
		writeNotFound(w)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// loginRequest represents login credentials.
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// loginHandler handles user login and session creation.
// @Summary Login
// @Description Authenticates user and sets session cookie
// @Accept json
// @Produce json
// @Param creds body loginRequest true "Credentials"
// @Success 200
// @Router /login [post]
func (s *Server) loginHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "loginHandler")
	defer span.End()

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Username == "" {
		http.Error(w, "invalid credentials", http.StatusBadRequest)
		return
	}
	sid := uuid.NewString()
	if err := s.redis.Set(ctx, "session:"+sid, req.Username, time.Hour).Err(); err != nil {
		http.Error(w, "session error", http.StatusInternalServerError)
		return
	}
	http.SetCookie(w, &http.Cookie{Name: "session_id", Value: sid, Path: "/", Expires: time.Now().Add(time.Hour), HttpOnly: true})
	w.WriteHeader(http.StatusOK)
}

// authMiddleware ensures a valid session exists.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie("session_id")
		if err != nil {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		user, err := s.redis.Get(r.Context(), "session:"+c.Value).Result()
		if err != nil || user == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rid := r.Header.Get("X-Request-ID")
		if rid == "" {
			rid = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", rid)
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Info(r.Context(), "request", "method", r.Method, "path", r.URL.Path, "request_id", rid, "duration", time.Since(start).String())
	})
}

func (s *Server) traceMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := otel.InjectTracing(r.Context(), s.tracer)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func orderID(r *http.Request) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeNotFound(w http.ResponseWriter) {
	writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Order not found"})
}
