package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ordersetu-be/internal/auth"
	"ordersetu-be/internal/billing"
	"ordersetu-be/internal/config"
	"ordersetu-be/internal/db"
	"ordersetu-be/internal/events"
	"ordersetu-be/internal/httpx"
	"ordersetu-be/internal/logger"
	"ordersetu-be/internal/middleware"
	"ordersetu-be/internal/order"
	"ordersetu-be/internal/realtime"
	"ordersetu-be/internal/restaurant"
	"ordersetu-be/internal/staff"

	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

var (
	initDBFunc      = db.NewDatabase
	startServerFunc = func(srv *http.Server) error { return srv.ListenAndServe() }
)

func main() {
	if err := run(); err != nil {
		logger.L().Fatal("server stopped", zap.Error(err))
	}
}

func run() error {
	cfg := config.LoadConfig()
	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	database, err := initDBFunc(cfg)
	if err != nil {
		return err
	}

	app := newServer(cfg, database)
	defer app.close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go app.limiter.Run(ctx)

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           app.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.L().Info("server running", zap.String("port", cfg.AppPort))
		errCh <- startServerFunc(srv)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.L().Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	// Hijacked websocket connections are not tracked by http.Server.
	app.hub.Shutdown()
	return srv.Shutdown(shutdownCtx)
}

// server holds the wired application and the resources it must release.
type server struct {
	handler    http.Handler
	hub        *realtime.Hub
	dispatcher *realtime.Dispatcher
	limiter    *middleware.RateLimiter
	publisher  events.Publisher
	redis      *redis.Client
	db         *sql.DB
}

type handlers struct {
	order      *order.Handler
	billing    *billing.Handler
	restaurant *restaurant.Handler
	staff      *staff.Handler
}

func newServer(cfg *config.Config, database *sql.DB) *server {
	registry := realtime.NewRegistry()
	dispatcher := realtime.NewDispatcher(registry)
	hub := realtime.NewHub(registry, cfg.FrontendURL)
	publisher := events.New(cfg.KafkaBrokers, cfg.KafkaTopic)

	var (
		cache       restaurant.StatsCache
		redisClient *redis.Client
	)
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		cache = restaurant.NewRedisStatsCache(redisClient, cfg.StatsCacheTTL)
	}

	restaurantSvc := restaurant.NewService(
		restaurant.NewRepository(database),
		cache,
		restaurant.TableQRGenerator{BaseURL: cfg.FrontendURL},
	)
	orderSvc := order.NewService(order.NewRepository(database), dispatcher, publisher)
	billingSvc := billing.NewService(billing.NewRepository(database), orderSvc, restaurantSvc, dispatcher, publisher)
	staffSvc := staff.NewService(staff.NewRepository(database), dispatcher)

	router := setupRouter(handlers{
		order:      order.NewHandler(orderSvc),
		billing:    billing.NewHandler(billingSvc),
		restaurant: restaurant.NewHandler(restaurantSvc),
		staff:      staff.NewHandler(staffSvc),
	}, hub, dispatcher, cfg.JWTSecret)

	limiter := middleware.NewRateLimiter()

	var h http.Handler = router
	h = limiter.Middleware(h)
	h = middleware.Identify(cfg.JWTSecret)(h)
	h = middleware.CORS(cfg.FrontendURL)(h)
	h = logger.LoggingMiddleware(h)
	h = logger.RequestIDMiddleware(h)

	return &server{
		handler:    h,
		hub:        hub,
		dispatcher: dispatcher,
		limiter:    limiter,
		publisher:  publisher,
		redis:      redisClient,
		db:         database,
	}
}

func (s *server) close() {
	if err := s.publisher.Close(); err != nil {
		logger.L().Warn("failed to close event publisher", zap.Error(err))
	}
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			logger.L().Warn("failed to close redis", zap.Error(err))
		}
	}
	if err := s.db.Close(); err != nil {
		logger.L().Warn("failed to close database", zap.Error(err))
	}
}

func setupRouter(h handlers, hub http.Handler, dispatcher *realtime.Dispatcher, secret string) *mux.Router {
	r := mux.NewRouter()

	protect := func(fn http.HandlerFunc, roles ...auth.Role) http.Handler {
		return middleware.Authenticate(secret)(middleware.RequireRoles(roles...)(fn))
	}

	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, map[string]any{
			"status": "OK",
			"push":   dispatcher.Stats(),
		})
	}).Methods(http.MethodGet)

	r.Handle("/ws", hub)
	r.Handle("/", hub).HeadersRegexp("Upgrade", "(?i)^websocket$")

	// Orders
	r.HandleFunc("/add-confirmed-items", h.order.AddConfirmedItems).Methods(http.MethodPost)
	r.Handle("/accept-confirmed-order",
		protect(h.order.AcceptConfirmedOrder, auth.RoleWaiter, auth.RoleOwner)).Methods(http.MethodPatch)
	r.Handle("/update-confirmed-item",
		protect(h.order.UpdateConfirmedItem, auth.RoleWaiter, auth.RoleOwner)).Methods(http.MethodPatch)
	r.Handle("/mark-item-delivered",
		protect(h.order.MarkItemDelivered, auth.RoleWaiter, auth.RoleOwner)).Methods(http.MethodPost)
	r.Handle("/get-confirmed-orders",
		protect(h.order.GetConfirmedOrders, auth.RoleWaiter, auth.RoleChef)).Methods(http.MethodGet)
	r.Handle("/chef-item-summary",
		protect(h.order.ChefItemSummary, auth.RoleChef)).Methods(http.MethodGet)
	r.Handle("/delete-confirmed-orders/{confirmedOrderId}",
		protect(h.order.DeleteConfirmedOrder, auth.RoleOwner, auth.RoleWaiter)).Methods(http.MethodDelete)

	// Bills
	r.HandleFunc("/add-bill-request", h.billing.AddBillRequest).Methods(http.MethodPost)
	r.Handle("/get-bill-request",
		protect(h.billing.GetBillRequest, auth.RoleOwner, auth.RoleWaiter)).Methods(http.MethodGet)
	r.Handle("/edit-payment-status/{billId}",
		protect(h.billing.EditPaymentStatus, auth.RoleOwner)).Methods(http.MethodPatch)

	// Staff and restaurant
	r.Handle("/edit-worker-salary/{workerId}",
		protect(h.staff.EditWorkerSalary, auth.RoleOwner)).Methods(http.MethodPatch)
	r.HandleFunc("/ordersetu-stats", h.restaurant.GetOrderSetuStats).Methods(http.MethodGet)
	r.HandleFunc("/restaurant/{restaurantId}/tables/{table}/qr", h.restaurant.TableQR).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		httpx.WriteMessage(w, http.StatusNotFound, "Route not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		httpx.WriteMessage(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	return r
}
