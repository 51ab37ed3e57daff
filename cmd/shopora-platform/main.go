package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopora/shopora-platform/internal/api/handlers"
	"github.com/shopora/shopora-platform/internal/api/middleware"
	"github.com/shopora/shopora-platform/internal/cache"
	"github.com/shopora/shopora-platform/internal/config"
	"github.com/shopora/shopora-platform/internal/health"
	"github.com/shopora/shopora-platform/internal/metrics"
	"github.com/shopora/shopora-platform/internal/models"
	repository "github.com/shopora/shopora-platform/internal/repositories"
	service "github.com/shopora/shopora-platform/internal/services"
	"github.com/shopora/shopora-platform/pkg/cloudinary"
	"github.com/shopora/shopora-platform/pkg/sendgrid"
	"github.com/shopora/shopora-platform/pkg/stripe"
)

func main() {

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg := config.MustLoad()

	repos, err := repository.New(cfg)
	if err != nil {
		slog.Error("error accessing the database", "error", err.Error())
		os.Exit(1)
	}

	defer func() {
		if err := repos.Close(); err != nil {
			slog.Error("error closing database connection", slog.String("error", err.Error()))
		}
	}()

	redisClient, err := repository.NewRedisClient(cfg)
	if err != nil {
		slog.Error("error accessing the redis instance", "error", err.Error())
		os.Exit(1)
	}

	rateLimiter := repository.NewRateLimitRepo(redisClient, cfg)
	appCache := cache.NewRedisCache(redisClient, &cfg.Cache)

	defer func() {
		if err := appCache.Close(); err != nil {
			slog.Error("error closing redis connection", slog.String("error", err.Error()))
		}
	}()

	jwtKey := []byte(cfg.Security.JWTKey)

	var imageStore cloudinary.Client
	if cfg.Cloudinary.CloudName != "" {
		imageStore, err = cloudinary.NewClient(cfg.Cloudinary.CloudName, cfg.Cloudinary.APIKey,
			cfg.Cloudinary.APISecret, cfg.Cloudinary.Folder)
		if err != nil {
			slog.Error("error initializing cloudinary", "error", err.Error())
			os.Exit(1)
		}
	}

	var stripeClient stripe.Client
	if cfg.Stripe.APIKey != "" {
		stripeClient = stripe.NewStripeClient(cfg.Stripe.APIKey)
	}

	var notifier service.OrderNotifier
	if cfg.SendGrid.APIKey != "" {
		notifier = sendgrid.NewEmailService(cfg.SendGrid.APIKey, cfg.SendGrid.FromEmail, cfg.SendGrid.FromName)
	}

	userService := service.NewUserService(repos.User, rateLimiter, jwtKey, cfg.Security.TokenExpiry)
	productService := service.NewProductService(repos.Product, appCache, imageStore)
	cartService := service.NewCartService(repos.Cart, repos.Product)
	orderService := service.NewOrderService(repos.Order, repos.Cart, repos.Product, notifier)
	reviewService := service.NewReviewService(repos.Review, repos.Order, repos.Product)
	settingsService := service.NewSettingsService(repos.Settings, appCache)

	userHandler := handlers.NewUserHandler(userService)
	adminHandler := handlers.NewAdminHandler(userService)
	productHandler := handlers.NewProductHandler(productService)
	cartHandler := handlers.NewCartHandler(cartService)
	orderHandler := handlers.NewOrderHandler(orderService)
	reviewHandler := handlers.NewReviewHandler(reviewService)
	settingsHandler := handlers.NewSettingsHandler(settingsService)
	uploadHandler := handlers.NewUploadHandler(imageStore)
	paymentHandler := handlers.NewPaymentHandler(stripeClient, cfg.Stripe.SupportedCurrencies)

	authMiddleware := middleware.NewAuthMiddleware(jwtKey, repos.User)
	adminOnly := authMiddleware.Authorize(models.RoleAdmin)

	healthHandler, err := health.NewHealthHandler(cfg)
	if err != nil {
		slog.Error("error initializing health checks", "error", err.Error())
		os.Exit(1)
	}

	slog.Info("storage initialized", slog.String("env", cfg.Env))

	routerMux := http.NewServeMux()

	// auth + profile
	routerMux.HandleFunc("POST /api/v1/users/register", userHandler.Register())
	routerMux.HandleFunc("POST /api/v1/users/login", userHandler.Login())
	routerMux.HandleFunc("GET /api/v1/users/profile", authMiddleware.Authenticate(userHandler.Profile()))
	routerMux.HandleFunc("PUT /api/v1/users/profile", authMiddleware.Authenticate(userHandler.UpdateProfile()))
	routerMux.HandleFunc("PUT /api/v1/users/address", authMiddleware.Authenticate(userHandler.UpdateAddress()))

	// catalog
	routerMux.HandleFunc("GET /api/v1/products", productHandler.List())
	routerMux.HandleFunc("GET /api/v1/products/{id}", productHandler.Get())
	routerMux.HandleFunc("POST /api/v1/products", authMiddleware.Authenticate(adminOnly(productHandler.Create())))
	routerMux.HandleFunc("PUT /api/v1/products/{id}", authMiddleware.Authenticate(adminOnly(productHandler.Update())))
	routerMux.HandleFunc("DELETE /api/v1/products/{id}", authMiddleware.Authenticate(adminOnly(productHandler.Delete())))

	// cart
	routerMux.HandleFunc("GET /api/v1/cart", authMiddleware.Authenticate(cartHandler.Get()))
	routerMux.HandleFunc("POST /api/v1/cart/items", authMiddleware.Authenticate(cartHandler.AddItem()))
	routerMux.HandleFunc("PUT /api/v1/cart/items", authMiddleware.Authenticate(cartHandler.UpdateQuantity()))
	routerMux.HandleFunc("DELETE /api/v1/cart/items/{productId}", authMiddleware.Authenticate(cartHandler.RemoveItem()))
	routerMux.HandleFunc("DELETE /api/v1/cart", authMiddleware.Authenticate(cartHandler.Clear()))

	// orders
	routerMux.HandleFunc("POST /api/v1/orders", authMiddleware.Authenticate(orderHandler.Checkout()))
	routerMux.HandleFunc("GET /api/v1/orders", authMiddleware.Authenticate(orderHandler.ListMine()))
	routerMux.HandleFunc("GET /api/v1/orders/{id}", authMiddleware.Authenticate(orderHandler.Get()))
	routerMux.HandleFunc("GET /api/v1/admin/orders", authMiddleware.Authenticate(adminOnly(orderHandler.ListAll())))
	routerMux.HandleFunc("PATCH /api/v1/orders/{id}/status", authMiddleware.Authenticate(adminOnly(orderHandler.UpdateStatus())))

	// reviews
	routerMux.HandleFunc("GET /api/v1/products/{productId}/reviews", reviewHandler.ListByProduct())
	routerMux.HandleFunc("POST /api/v1/products/{productId}/reviews", authMiddleware.Authenticate(reviewHandler.Create()))
	routerMux.HandleFunc("GET /api/v1/reviews/mine", authMiddleware.Authenticate(reviewHandler.ListMine()))
	routerMux.HandleFunc("PUT /api/v1/reviews/{id}", authMiddleware.Authenticate(reviewHandler.Update()))
	routerMux.HandleFunc("DELETE /api/v1/reviews/{id}", authMiddleware.Authenticate(reviewHandler.Delete()))

	// settings
	routerMux.HandleFunc("GET /api/v1/settings/{key}", settingsHandler.Get())
	routerMux.HandleFunc("PUT /api/v1/settings/{key}", authMiddleware.Authenticate(adminOnly(settingsHandler.Put())))

	// user administration
	routerMux.HandleFunc("GET /api/v1/admin/users", authMiddleware.Authenticate(adminOnly(adminHandler.ListUsers())))
	routerMux.HandleFunc("GET /api/v1/admin/users/{id}", authMiddleware.Authenticate(adminOnly(adminHandler.GetUser())))
	routerMux.HandleFunc("PATCH /api/v1/admin/users/{id}/role", authMiddleware.Authenticate(adminOnly(adminHandler.UpdateRole())))
	routerMux.HandleFunc("PATCH /api/v1/admin/users/{id}/active", authMiddleware.Authenticate(adminOnly(adminHandler.UpdateActive())))
	routerMux.HandleFunc("DELETE /api/v1/admin/users/{id}", authMiddleware.Authenticate(adminOnly(adminHandler.DeleteUser())))

	// media + payments
	routerMux.HandleFunc("POST /api/v1/uploads", authMiddleware.Authenticate(adminOnly(uploadHandler.Upload())))
	routerMux.HandleFunc("POST /api/v1/uploads/batch", authMiddleware.Authenticate(adminOnly(uploadHandler.UploadBatch())))
	routerMux.HandleFunc("DELETE /api/v1/uploads/{publicId}", authMiddleware.Authenticate(adminOnly(uploadHandler.Delete())))
	routerMux.HandleFunc("POST /api/v1/payments/intent", authMiddleware.Authenticate(paymentHandler.CreateIntent()))
	routerMux.HandleFunc("GET /api/v1/payments/intent/{id}", authMiddleware.Authenticate(paymentHandler.GetIntent()))

	// operational endpoints
	routerMux.Handle("GET /health", healthHandler.Handler())
	routerMux.Handle("GET /metrics", metrics.Handler())

	var handler http.Handler = routerMux
	handler = metrics.Middleware(handler)
	handler = middleware.Logging(handler)

	server := http.Server{
		Addr:    cfg.Addr,
		Handler: handler,
	}

	slog.Info("server is starting", slog.String("address", cfg.Addr))

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			slog.Error("failed to start server", slog.Any("error", err.Error()))
		}
	}()

	<-done

	slog.Warn("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown encountered an issue", slog.String("error", err.Error()))
	} else {
		slog.Info("server shut down gracefully")
	}
}
