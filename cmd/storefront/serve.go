package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/Skotchmaster/storefront/internal/config"
	"github.com/Skotchmaster/storefront/internal/db"
	"github.com/Skotchmaster/storefront/internal/es"
	"github.com/Skotchmaster/storefront/internal/graph"
	"github.com/Skotchmaster/storefront/internal/handlers"
	"github.com/Skotchmaster/storefront/internal/httpserver"
	"github.com/Skotchmaster/storefront/internal/jobs"
	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/mailer"
	authmw "github.com/Skotchmaster/storefront/internal/middleware/auth"
	"github.com/Skotchmaster/storefront/internal/mykafka"
	"github.com/Skotchmaster/storefront/internal/payment"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/session"
	"github.com/Skotchmaster/storefront/internal/storage"
	"github.com/Skotchmaster/storefront/internal/tokens"
	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var migrateOnStart bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server and background jobs",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		if err := cfg.Validate(); err != nil {
			return err
		}
		return serve(cmd.Context(), cfg)
	},
}

func init() {
	serveCmd.Flags().BoolVar(&migrateOnStart, "migrate", false, "run database migrations before serving")
}

func serve(ctx context.Context, cfg config.Config) error {
	l := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(l)

	initCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	gdb, err := db.Open(initCtx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		return fmt.Errorf("db init: %w", err)
	}
	defer db.Close(gdb)

	if migrateOnStart {
		if err := db.Migrate(ctx, gdb); err != nil {
			return err
		}
	}

	r := repo.New(gdb)
	codec := &tokens.Codec{Secret: cfg.AppSecret, MaxAge: session.MaxAge}

	var events service.Publisher = mykafka.Nop{}
	if len(cfg.KafkaBrokers) > 0 {
		prod, err := mykafka.NewProducer(cfg.KafkaBrokers, l)
		if err != nil {
			return err
		}
		defer prod.Close()
		events = prod
	} else {
		l.Warn("kafka_disabled", "reason", "KAFKA_BROKERS is empty")
	}

	var index service.ItemIndexer
	if cfg.ES.URL != "" {
		client, err := es.NewClient(cfg.ES, l)
		if err != nil {
			return err
		}
		index = &es.ItemIndex{Client: client, Index: cfg.ES.Index}
	} else {
		l.Warn("search_index_disabled", "reason", "ES_URL is empty")
	}

	mail, err := mailer.NewSMTP(cfg.Mail)
	if err != nil {
		return err
	}
	charger, err := payment.NewStripeCharger(cfg.Stripe.SecretKey)
	if err != nil {
		return err
	}

	authSvc := &service.AuthService{Repo: r, Codec: codec, Mailer: mail, Events: events, FrontendURL: cfg.FrontendURL}
	orderSvc := &service.OrderService{Repo: r, Charger: charger, Events: events, Currency: cfg.Stripe.Currency}

	schema, err := graph.NewSchema(&graph.Resolver{
		AuthSvc:      authSvc,
		ItemSvc:      &service.ItemService{Repo: r, Index: index, Events: events},
		CartSvc:      &service.CartService{Repo: r, Events: events},
		OrderSvc:     orderSvc,
		CookieSecure: cfg.CookieSecure,
		PerPage:      cfg.PerPage,
	})
	if err != nil {
		return fmt.Errorf("graphql schema: %w", err)
	}

	var upload *handlers.UploadHTTP
	if cfg.Minio.Endpoint != "" {
		store, err := storage.NewMinioStore(cfg.Minio)
		if err != nil {
			return err
		}
		if err := store.EnsureBucket(ctx); err != nil {
			return fmt.Errorf("minio bucket: %w", err)
		}
		upload = &handlers.UploadHTTP{Store: store}
	} else {
		l.Warn("upload_disabled", "reason", "MINIO_ENDPOINT is empty")
	}

	scheduler, err := jobs.NewScheduler(l, jobs.Defaults(r, orderSvc, nil)...)
	if err != nil {
		return err
	}
	scheduler.Start()

	e := echo.New()
	e.HideBanner = true
	httpserver.Register(e, &httpserver.Deps{
		Logger:      l,
		FrontendURL: cfg.FrontendURL,
		Session:     &authmw.SessionAuth{Codec: codec, Identity: authSvc, CookieSecure: cfg.CookieSecure},
		GraphQL:     &graph.Handler{Schema: schema},
		Upload:      upload,
		Jobs:        scheduler,
		Ready:       func(ctx context.Context) error { return ping(ctx, gdb) },
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		l.Info("http_server_started", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		l.Error("http_shutdown_failed", "error", err)
	}
	scheduler.Stop(shutdownCtx)
	l.Info("http_server_stopped")
	return nil
}

func ping(ctx context.Context, gdb *gorm.DB) error {
	sqlDB, err := gdb.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
