package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/silverbackhw/portal-sync/internal/api"
	"github.com/silverbackhw/portal-sync/internal/config"
	"github.com/silverbackhw/portal-sync/internal/database"
	"github.com/silverbackhw/portal-sync/internal/gmail"
	"github.com/silverbackhw/portal-sync/internal/repository"
	"github.com/silverbackhw/portal-sync/internal/service"
	"github.com/silverbackhw/portal-sync/internal/watcher"
	"github.com/silverbackhw/portal-sync/internal/zoho"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	log.Println("Database connected successfully")

	log.Println("Running database migrations...")
	if err := database.RunMigrations(db); err != nil {
		return err
	}
	log.Println("Migrations completed successfully")

	policyRepo := repository.NewPolicyRepository(db.Gorm)
	claimRepo := repository.NewClaimRepository(db.Gorm)
	reProRepo := repository.NewREProRepository(db.Gorm)
	userRepo := repository.NewUserRepository(db.Gorm)
	mappingRepo := repository.NewFieldMappingRepository(db.Gorm)

	// CRM access: the env refresh token, else the one an admin saved
	credentials := service.NewFallbackCredentials(zoho.ExternalCredential{
		ClientID:     cfg.ZohoClientID,
		ClientSecret: cfg.ZohoClientSecret,
		RefreshToken: cfg.ZohoRefreshToken,
	}, userRepo)
	tokens := zoho.NewTokenProvider(credentials, cfg.ZohoAccountsURL, nil)
	zohoClient := zoho.NewClient(cfg.ZohoAPIURL, nil)

	syncService := service.NewSyncService(tokens, zohoClient, service.Stores{
		Policies: policyRepo,
		Claims:   claimRepo,
		REPros:   reProRepo,
		Users:    userRepo,
		Mappings: mappingRepo,
	}, cfg.SyncLimit)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.ReportsEnabled() {
		reporter, err := gmail.NewReporter(ctx, gmail.Config{
			ClientID:     cfg.GmailClientID,
			ClientSecret: cfg.GmailClientSecret,
			RefreshToken: cfg.GmailRefreshToken,
			From:         cfg.GmailUser,
			To:           cfg.SyncReportTo,
		})
		if err != nil {
			return err
		}
		syncService.SetReporter(reporter)
		log.Printf("Sync reports will be sent to %s", cfg.SyncReportTo)
	}

	router := api.NewRouter(api.Deps{
		Sync:        syncService,
		Mappings:    service.NewMappingService(mappingRepo),
		Connector:   service.NewConnectionService(tokens, userRepo),
		Users:       userRepo,
		JWTSecret:   cfg.JWTSecret,
		RedirectURL: cfg.ZohoRedirectURL,
	})

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 2)
	go func() {
		log.Printf("HTTP server listening on %s", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	if cfg.SyncInterval > 0 {
		w := watcher.New(syncService, time.Duration(cfg.SyncInterval)*time.Minute, cfg.SyncLimit)
		go func() {
			if err := w.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				errChan <- err
			}
		}()
	}

	select {
	case <-sigChan:
		log.Println("Shutdown signal received")
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Duration(cfg.ShutdownTimeout)*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("HTTP server shutdown error: %v", err)
		}

		log.Println("Application stopped")
		return nil

	case err := <-errChan:
		return err
	}
}
