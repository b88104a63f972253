package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/wb-go/wbf/dbpg"
	"github.com/wb-go/wbf/rabbitmq"
	"github.com/wb-go/wbf/redis"
	"github.com/wb-go/wbf/zlog"

	notifhandler "github.com/aidanlowson/notify-dispatch/internal/api/handlers/notification"
	userhandler "github.com/aidanlowson/notify-dispatch/internal/api/handlers/user"
	"github.com/aidanlowson/notify-dispatch/internal/api/router"
	"github.com/aidanlowson/notify-dispatch/internal/api/server"
	"github.com/aidanlowson/notify-dispatch/internal/config"
	"github.com/aidanlowson/notify-dispatch/internal/dispatch"
	"github.com/aidanlowson/notify-dispatch/internal/rabbitmq/queue"
	notifrepo "github.com/aidanlowson/notify-dispatch/internal/repository/notification"
	userrepo "github.com/aidanlowson/notify-dispatch/internal/repository/user"
	notifsvc "github.com/aidanlowson/notify-dispatch/internal/service/notification"
	usersvc "github.com/aidanlowson/notify-dispatch/internal/service/user"
	"github.com/aidanlowson/notify-dispatch/internal/worker"
	"github.com/aidanlowson/notify-dispatch/pkg/email"
	"github.com/aidanlowson/notify-dispatch/pkg/push"
	"github.com/aidanlowson/notify-dispatch/pkg/sms"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	zlog.Init()
	cfg := config.Must()
	val := validator.New()

	conn, err := rabbitmq.Connect(cfg.RabbitMQ.URL(), cfg.RabbitMQ.Retries, cfg.RabbitMQ.Pause)
	if err != nil {
		zlog.Logger.Fatal().Err(err).Msg("failed to connect to rabbitmq")
	}

	ch, err := conn.Channel()
	if err != nil {
		zlog.Logger.Fatal().Err(err).Msg("failed to open channel")
	}

	q, err := queue.NewNotificationQueue(ch, cfg.RabbitMQ.RetryTTL)
	if err != nil {
		zlog.Logger.Fatal().Err(err).Msg("failed to create notification queue")
	}

	opts := &dbpg.Options{
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}

	slaveDSNs := make([]string, 0, len(cfg.Database.Slaves))

	for _, s := range cfg.Database.Slaves {
		slaveDSNs = append(slaveDSNs, s.DSN())
	}

	db, err := dbpg.New(cfg.Database.Master.DSN(), slaveDSNs, opts)
	if err != nil {
		zlog.Logger.Fatal().Err(err).Msg("failed to connect to database")
	}

	recordRepo := notifrepo.NewRepository(db)
	usersRepo := userrepo.NewRepository(db)

	dbNum, err := strconv.Atoi(cfg.Redis.Database)
	if err != nil {
		zlog.Logger.Fatal().Err(err).Msg("failed to parse redis database")
	}

	rdb := redis.New(cfg.Redis.Address, cfg.Redis.Password, dbNum)

	if err = rdb.Ping(ctx).Err(); err != nil {
		zlog.Logger.Fatal().Err(err).Msg("failed to connect to redis")
	}

	smtpPort, err := strconv.Atoi(cfg.Email.SMTPPort)
	if err != nil {
		zlog.Logger.Fatal().Err(err).Msg("failed to parse email smtp port")
	}

	emailClient := email.NewClient(
		cfg.Email.SMTPHost,
		smtpPort,
		cfg.Email.Username,
		cfg.Email.Password,
		cfg.Timeouts.Channel,
	)
	smsClient := sms.NewClient(cfg.SMS.GatewayURL, cfg.SMS.APIKey, cfg.Timeouts.Channel)

	var pushClient dispatch.PushSender
	if cfg.Push.GatewayURL != "" {
		pushClient = push.NewClient(cfg.Push.GatewayURL, cfg.Push.APIKey, cfg.Timeouts.Channel)
	} else {
		zlog.Logger.Warn().Msg("push gateway not configured, using no-op push sender")
		pushClient = push.NewNoop()
	}

	providers := dispatch.Providers{
		Email: emailClient,
		SMS:   smsClient,
		Push:  pushClient,
	}

	dispatcher, err := dispatch.New(recordRepo, providers, dispatch.Config{
		SenderIdentity: cfg.Email.From,
		Strategy:       cfg.Retry,
		StoreTimeout:   cfg.Timeouts.Store,
		ChannelTimeout: cfg.Timeouts.Channel,
	})
	if err != nil {
		zlog.Logger.Fatal().Err(err).Msg("failed to create dispatcher")
	}

	notifService := notifsvc.NewService(recordRepo, q, rdb)
	userService := usersvc.NewService(usersRepo)

	notifHandler := notifhandler.NewHandler(notifService, val, cfg)
	userHandler := userhandler.NewHandler(userService, val)

	w := worker.NewWorker(q, dispatcher, worker.Config{
		Count:         cfg.Workers.Count,
		BatchSize:     cfg.Workers.BatchSize,
		FlushInterval: cfg.Workers.FlushInterval,
		MaxAttempts:   cfg.RabbitMQ.MaxAttempts,
	})

	go w.Run(ctx)

	r := router.New(notifHandler, userHandler)
	s := server.New(cfg.Server.HTTPPort, r)

	go func() {
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Logger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	<-ctx.Done()
	zlog.Logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	zlog.Logger.Info().Msg("shutting down server")
	if err := s.Shutdown(shutdownCtx); err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to shutdown server")
	}

	if errors.Is(shutdownCtx.Err(), context.DeadlineExceeded) {
		zlog.Logger.Info().Msg("timeout exceeded, forcing shutdown")
	}

	if err := db.Master.Close(); err != nil {
		zlog.Logger.Printf("failed to close master DB: %v", err)
	}

	for i, s := range db.Slaves {
		if err := s.Close(); err != nil {
			zlog.Logger.Printf("failed to close slave DB %d: %v", i, err)
		}
	}

	if err := ch.Close(); err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to close RabbitMQ channel")
	}

	if err := conn.Close(); err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to close RabbitMQ connection")
	}
}
