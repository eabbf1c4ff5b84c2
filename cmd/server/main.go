package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/nomadhub/nomadhub-backend/internal/config"
	"github.com/nomadhub/nomadhub-backend/internal/db"
	httpHandlers "github.com/nomadhub/nomadhub-backend/internal/http/handlers"
	httpRouter "github.com/nomadhub/nomadhub-backend/internal/http/router"
	"github.com/nomadhub/nomadhub-backend/internal/logger"
	"github.com/nomadhub/nomadhub-backend/internal/payment"
	"github.com/nomadhub/nomadhub-backend/internal/repository"
	"github.com/nomadhub/nomadhub-backend/internal/service"
	"github.com/nomadhub/nomadhub-backend/internal/storage"
	"github.com/nomadhub/nomadhub-backend/internal/ws"
)

func main() {
	// Готовим контекст для graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("main: ошибка загрузки конфигурации: %v", err)
	}

	// Инициализация логгера
	if cfg.Env == "development" {
		logger.Init("debug")
		logger.SetTextFormatter()
	} else {
		logger.Init("info")
	}

	// Подключение к базе и миграции.
	dbConn, err := db.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("main: ошибка подключения к базе: %v", err)
	}
	defer safeClose(dbConn)

	if err := db.RunMigrations(ctx, dbConn, cfg.MigrationsPath); err != nil {
		log.Fatalf("main: ошибка миграций: %v", err)
	}

	// Инициализируем вспомогательные сервисы.
	tokenManager := service.NewTokenManager(cfg.JWTSecret, cfg.RefreshSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	fileStorage, err := storage.NewFileStorage(cfg.FileStoragePath, cfg.MaxUploadSizeMB)
	if err != nil {
		log.Fatalf("main: не удалось подготовить файловое хранилище: %v", err)
	}

	// Платёжный шлюз: sandbox всегда, в live режиме добавляем ретраи.
	var gateway payment.Gateway = payment.NewSandboxGateway()
	if cfg.PaymentRetryLimit > 1 {
		gateway = payment.NewRetryingGateway(gateway, int(cfg.PaymentRetryLimit))
	}
	if cfg.PaymentProviderMode != "sandbox" {
		log.Printf("main: платёжный провайдер %q ещё не подключён, используется sandbox", cfg.PaymentProviderMode)
	}

	// Репозитории.
	userRepo := repository.NewUserRepository(dbConn)
	projectRepo := repository.NewProjectRepository(dbConn)
	proposalRepo := repository.NewProposalRepository(dbConn)
	contractRepo := repository.NewContractRepository(dbConn)
	deliveryRepo := repository.NewDeliveryRepository(dbConn)
	disputeRepo := repository.NewDisputeRepository(dbConn)
	paymentRepo := repository.NewPaymentRepository(dbConn)
	communityRepo := repository.NewCommunityRepository(dbConn)
	notificationRepo := repository.NewNotificationRepository(dbConn)

	// Вебсокеты.
	hub := ws.NewHub(ctx)
	go hub.Run()

	// Сервисы.
	notificationService := service.NewNotificationService(notificationRepo, hub)
	authService := service.NewAuthService(userRepo, tokenManager)
	userService := service.NewUserService(userRepo)
	projectService := service.NewProjectService(projectRepo)
	proposalService := service.NewProposalService(proposalRepo, projectRepo, notificationService)
	escrowService := service.NewEscrowService(contractRepo, userRepo, projectRepo, gateway, notificationService)
	deliveryService := service.NewDeliveryService(deliveryRepo, contractRepo, fileStorage, notificationService)
	disputeService := service.NewDisputeService(disputeRepo, contractRepo, contractRepo, userRepo, notificationService)
	paymentService := service.NewPaymentService(paymentRepo, gateway, cfg.MinWithdrawal)
	fiscalService := service.NewFiscalService(paymentRepo)
	communityService := service.NewCommunityService(communityRepo)

	// HTTP хэндлеры.
	authHandler := httpHandlers.NewAuthHandler(authService)
	profileHandler := httpHandlers.NewProfileHandler(userService)
	projectHandler := httpHandlers.NewProjectHandler(projectService, userService)
	proposalHandler := httpHandlers.NewProposalHandler(proposalService, userService)
	contractHandler := httpHandlers.NewContractHandler(escrowService)
	deliveryHandler := httpHandlers.NewDeliveryHandler(deliveryService)
	disputeHandler := httpHandlers.NewDisputeHandler(disputeService)
	paymentHandler := httpHandlers.NewPaymentHandler(paymentService)
	fiscalHandler := httpHandlers.NewFiscalHandler(fiscalService)
	communityHandler := httpHandlers.NewCommunityHandler(communityService)
	notificationHandler := httpHandlers.NewNotificationHandler(notificationService)
	wsHandler := httpHandlers.NewWSHandler(hub, tokenManager)
	healthHandler := httpHandlers.NewHealthHandler(dbConn)

	// Роутер.
	engine := httpRouter.SetupRouter(
		cfg,
		authHandler,
		profileHandler,
		projectHandler,
		proposalHandler,
		contractHandler,
		deliveryHandler,
		disputeHandler,
		paymentHandler,
		fiscalHandler,
		communityHandler,
		notificationHandler,
		wsHandler,
		healthHandler,
		tokenManager,
	)

	server := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: engine,
	}

	// Завершаем сервер при получении сигнала.
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("main: ошибка остановки http сервера: %v", err)
		}
	}()

	log.Printf("main: HTTP сервер запущен на порту %s", cfg.HTTPPort)

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("main: сервер завершился с ошибкой: %v", err)
	}
}

// safeClose закрывает соединение с базой.
func safeClose(db *sqlx.DB) {
	if err := db.Close(); err != nil {
		log.Printf("main: ошибка закрытия базы: %v", err)
	}
}
