package main

import (
	"context"
	"database/sql"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	"github.com/rl1809/shop-backoffice/internal/adapter/handler"
	"github.com/rl1809/shop-backoffice/internal/adapter/provider"
	"github.com/rl1809/shop-backoffice/internal/adapter/storage"
	"github.com/rl1809/shop-backoffice/internal/config"
	"github.com/rl1809/shop-backoffice/internal/core/money"
	"github.com/rl1809/shop-backoffice/internal/core/service"
)

func main() {
	app := &cli.App{
		Name:  "shop-backoffice",
		Usage: "back-office API for inventory, orders, products and MercadoPago",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "env-file", Value: ".env", Usage: "optional dotenv file loaded before the environment"},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the HTTP and gRPC servers",
				Action: serve,
			},
			{
				Name:  "migrate",
				Usage: "manage the database schema",
				Subcommands: []*cli.Command{
					{Name: "up", Usage: "apply pending migrations", Action: migrateUp},
					{Name: "down", Usage: "revert the last migration", Action: migrateDown},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		logrus.WithError(err).Fatal("shop-backoffice exited with error")
	}
}

func setup(c *cli.Context) (*config.Config, *logrus.Logger, error) {
	cfg, err := config.Load(c.String("env-file"))
	if err != nil {
		return nil, nil, err
	}
	logger, err := cfg.NewLogger()
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

func openMySQL(ctx context.Context, cfg *config.Config) (*sql.DB, error) {
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		return nil, errors.Wrap(err, "open mysql")
	}
	db.SetMaxOpenConns(cfg.MySQLMaxOpenConns)
	db.SetMaxIdleConns(cfg.MySQLMaxIdleConns)
	db.SetConnMaxLifetime(cfg.MySQLConnLifetime)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "ping mysql")
	}
	return db, nil
}

func migrateUp(c *cli.Context) error {
	cfg, logger, err := setup(c)
	if err != nil {
		return err
	}
	db, err := openMySQL(c.Context, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := storage.Migrate(db); err != nil {
		return err
	}
	logger.Info("migrations applied")
	return nil
}

func migrateDown(c *cli.Context) error {
	cfg, logger, err := setup(c)
	if err != nil {
		return err
	}
	db, err := openMySQL(c.Context, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := storage.Rollback(db); err != nil {
		return err
	}
	logger.Info("last migration reverted")
	return nil
}

func serve(c *cli.Context) error {
	cfg, logger, err := setup(c)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := openMySQL(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()
	logger.Info("connected to mysql")

	if cfg.MigrateOnStart {
		if err := storage.Migrate(db); err != nil {
			return err
		}
		logger.Info("migrations applied")
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddress,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
		PoolSize: cfg.RedisPoolSize,
	})
	defer rdb.Close()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return errors.Wrap(err, "ping redis")
	}
	logger.Info("connected to redis")

	mysqlAdapter := storage.NewMySQLAdapter(db)
	redisAdapter := storage.NewRedisAdapter(rdb)
	mercadoPago := provider.NewMercadoPagoClient(provider.MercadoPagoConfig{
		ClientID:     cfg.MercadoPago.ClientID,
		ClientSecret: cfg.MercadoPago.ClientSecret,
		RedirectURL:  cfg.MercadoPago.RedirectURL,
		AuthURL:      cfg.MercadoPago.AuthURL,
		APIBaseURL:   cfg.MercadoPago.APIBaseURL,
		Timeout:      cfg.MercadoPago.Timeout,
	})
	priceOpts := []money.Option{money.WithLocale(cfg.PriceLocale), money.WithCurrency(cfg.PriceCurrency)}

	orderService := service.NewOrderService(mysqlAdapter, priceOpts...)
	ledgerService := service.NewLedgerService(mysqlAdapter)
	services := handler.Services{
		Catalog:  service.NewCatalogService(mysqlAdapter),
		Ledger:   ledgerService,
		Orders:   orderService,
		Products: service.NewProductService(mysqlAdapter, redisAdapter, cfg.TagsCacheTTL, logger, priceOpts...),
		Payments: service.NewPaymentService(mysqlAdapter, mysqlAdapter, mercadoPago, redisAdapter, redisAdapter,
			service.PaymentConfig{StateTTL: cfg.MercadoPago.StateTTL, CodeClaimTTL: cfg.MercadoPago.CodeClaimTTL},
			logger),
		Sessions: service.NewSessionService(redisAdapter),
	}

	grpcServer := grpc.NewServer(grpc.UnaryInterceptor(handler.UnaryLogInterceptor(logger)))
	handler.RegisterOrderQueryServer(grpcServer, handler.NewGRPCHandler(orderService, ledgerService, logger))
	lis, err := net.Listen("tcp", cfg.GRPCAddress)
	if err != nil {
		return errors.Wrap(err, "listen grpc")
	}

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddress,
		Handler:           handler.NewHTTPHandler(services, logger, cfg.SessionCookie).Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.WithField("addr", cfg.GRPCAddress).Info("gRPC server listening")
		return errors.Wrap(grpcServer.Serve(lis), "grpc server")
	})
	g.Go(func() error {
		logger.WithField("addr", cfg.HTTPAddress).Info("HTTP server listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "http server")
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.WithError(err).Error("HTTP server shutdown failed")
		}
		logger.Info("HTTP server stopped")

		grpcServer.GracefulStop()
		logger.Info("gRPC server stopped")
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("connections closed")
	return nil
}
