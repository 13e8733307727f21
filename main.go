package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/inaciosamuel465/estateflow/internal/api"
	"github.com/inaciosamuel465/estateflow/internal/cache"
	"github.com/inaciosamuel465/estateflow/internal/config"
	"github.com/inaciosamuel465/estateflow/internal/db"
	"github.com/inaciosamuel465/estateflow/internal/email"
	"github.com/inaciosamuel465/estateflow/internal/logger"
	"github.com/inaciosamuel465/estateflow/internal/models"
	"github.com/inaciosamuel465/estateflow/internal/realtime"
	"github.com/inaciosamuel465/estateflow/internal/services"
	"github.com/inaciosamuel465/estateflow/internal/state"
	"github.com/inaciosamuel465/estateflow/internal/storage"
	"github.com/inaciosamuel465/estateflow/internal/tasks"
)

var runMode = flag.String("m", "all", "Run mode: 'api', 'bg' (background tasks), 'img' (image processing), 'seed' (create admin and demo data, then exit), 'all' (default)")

func main() {
	flag.Parse()

	cfg, err := config.Load(*runMode)
	if err != nil {
		stdlog.Fatalf("Failed to load configuration: %v", err)
	}

	log := logger.New(cfg.Environment)
	log.Info().Str("mode", cfg.RunMode).Msg("starting estateflow")

	mongoClient, mongoDb, err := db.ConnectDB(cfg.MongoURI, cfg.MongoDbName)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to MongoDB")
	}
	defer func() {
		if err := db.DisconnectDB(mongoClient); err != nil {
			log.Error().Err(err).Msg("error disconnecting from MongoDB")
		}
	}()

	redisClient, err := cache.ConnectRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to Redis")
	}
	defer func() {
		if err := cache.DisconnectRedis(redisClient); err != nil {
			log.Error().Err(err).Msg("error disconnecting from Redis")
		}
	}()

	storageService, err := storage.NewS3Storage(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize S3 storage")
	}

	// Email sending: SMTP when configured, plus an optional file log for
	// local debugging.
	var emailSender email.Sender = email.NewSMTPSender(cfg, log)
	if path := os.Getenv("LOG_EMAILS"); path != "" {
		fileSender, err := email.NewFileSender(path)
		if err != nil {
			log.Fatal().Err(err).Str("path", path).Msg("failed to open email log file")
		}
		emailSender = email.NewCompositeSender(emailSender, fileSender)
	}

	propertyService := services.NewPropertyService(mongoDb, cfg)
	contractService := services.NewContractService(mongoDb, cfg)
	userService := services.NewUserService(mongoDb, cfg)
	chatService := services.NewChatService(mongoDb, cfg)
	notificationService := services.NewNotificationService(mongoDb, cfg)

	if cfg.RunMode == "seed" {
		seed(cfg, log, userService, propertyService)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := realtime.NewHub(redisClient, log)
	go hub.Run(ctx)

	taskClient := tasks.NewClient(redisClient)
	defer taskClient.Close()

	// Lead alerts go out as background email tasks so chat writes never wait
	// on SMTP.
	alertLead := services.LeadAlertFunc(func(ctx context.Context, leadName, message string) error {
		task, err := tasks.NewLeadEmailTask(leadName, message)
		if err != nil {
			return err
		}
		_, err = taskClient.EnqueueContext(ctx, task)
		return err
	})

	remote := services.NewRemote(propertyService, contractService, userService, chatService, notificationService, hub, alertLead, log)
	store := state.NewStore()
	controller := state.NewController(store, remote, log, cfg.AnonymousChatID)

	if err := controller.LoadInitial(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to load initial snapshots")
	}
	bridgeSnapshots(ctx, hub, controller, log)

	taskProcessor := tasks.NewTaskProcessor(cfg, log, emailSender, storageService, propertyService, controller, taskClient)

	var (
		wg                sync.WaitGroup
		mainApiSrv        *http.Server
		backgroundTaskSrv *asynq.Server
		imageTaskSrv      *asynq.Server
	)

	apiMode := func() {
		router := api.SetupRouter(api.Deps{
			Cfg:             cfg,
			Controller:      controller,
			Hub:             hub,
			UserService:     userService,
			ContractService: contractService,
			Storage:         storageService,
			TaskClient:      taskClient,
		})
		mainApiSrv = &http.Server{
			Addr:    ":" + cfg.ApiPort,
			Handler: router,
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			log.Info().Str("port", cfg.ApiPort).Msg("API listening")
			if err := mainApiSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatal().Err(err).Msg("API server error")
			}
			log.Info().Msg("API server stopped")
		}()
	}

	bgMode := func() {
		backgroundTaskSrv = tasks.SetupServer(redisClient, taskProcessor, false, true)

		// A single unique enqueue keeps the scan chain alive; the handler
		// re-enqueues itself after every run.
		scanTask := tasks.NewExpiryScanTask()
		if _, err := taskClient.EnqueueContext(ctx, scanTask, asynq.Unique(cfg.ExpiryScanInterval)); err != nil && !errors.Is(err, asynq.ErrDuplicateTask) {
			log.Error().Err(err).Msg("failed to enqueue initial expiry scan")
		}
	}

	imgMode := func() {
		imageTaskSrv = tasks.SetupServer(redisClient, taskProcessor, true, false)
	}

	switch cfg.RunMode {
	case "api":
		apiMode()
	case "bg":
		bgMode()
	case "img":
		imgMode()
	case "all":
		apiMode()
		bgMode()
		imgMode()
	default:
		log.Fatal().Str("mode", cfg.RunMode).Msg("invalid run mode")
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info().Str("signal", sig.String()).Msg("shutting down")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelShutdown()

	if mainApiSrv != nil {
		if err := mainApiSrv.Shutdown(ctxShutdown); err != nil {
			log.Error().Err(err).Msg("API server shutdown error")
		}
	}
	if backgroundTaskSrv != nil {
		backgroundTaskSrv.Shutdown()
	}
	if imageTaskSrv != nil {
		imageTaskSrv.Shutdown()
	}
	cancel()

	wg.Wait()
	log.Info().Msg("stopped")
}

// bridgeSnapshots feeds hub snapshot events back into the controller so every
// instance converges on the collections written by its peers. Re-applying a
// snapshot this instance published itself is a harmless no-op.
func bridgeSnapshots(ctx context.Context, hub *realtime.Hub, controller *state.Controller, log zerolog.Logger) {
	bridge(ctx, hub, log, realtime.TopicProperties, func(raw json.RawMessage) error {
		var props []models.Property
		if err := json.Unmarshal(raw, &props); err != nil {
			return err
		}
		controller.ApplyProperties(props)
		return nil
	})
	bridge(ctx, hub, log, realtime.TopicContracts, func(raw json.RawMessage) error {
		var contracts []models.Contract
		if err := json.Unmarshal(raw, &contracts); err != nil {
			return err
		}
		controller.ApplyContracts(contracts)
		return nil
	})
	bridge(ctx, hub, log, realtime.TopicUsers, func(raw json.RawMessage) error {
		var users []models.User
		if err := json.Unmarshal(raw, &users); err != nil {
			return err
		}
		controller.ApplyUsers(users)
		return nil
	})
	bridge(ctx, hub, log, realtime.TopicConversations, func(raw json.RawMessage) error {
		var convs []models.Conversation
		if err := json.Unmarshal(raw, &convs); err != nil {
			return err
		}
		controller.ApplyConversations(convs)
		return nil
	})
	bridge(ctx, hub, log, realtime.TopicNotifications, func(raw json.RawMessage) error {
		var notifs []models.Notification
		if err := json.Unmarshal(raw, &notifs); err != nil {
			return err
		}
		controller.ApplyNotifications(notifs)
		return nil
	})
}

func bridge(ctx context.Context, hub *realtime.Hub, log zerolog.Logger, topic string, apply func(json.RawMessage) error) {
	events, unsubscribe := hub.Subscribe(topic)
	go func() {
		defer unsubscribe()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-events:
				if !ok {
					return
				}
				if err := apply(ev.Payload); err != nil {
					log.Error().Err(err).Str("topic", topic).Msg("failed to apply snapshot")
				}
			}
		}
	}()
}

// seed provisions an admin account and a few demo properties so a fresh
// deployment is usable immediately.
func seed(cfg *config.Config, log zerolog.Logger, users services.IUserService, properties services.IPropertyService) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	adminEmail := os.Getenv("SEED_ADMIN_EMAIL")
	adminPassword := os.Getenv("SEED_ADMIN_PASSWORD")
	if adminEmail == "" || adminPassword == "" {
		log.Fatal().Msg("SEED_ADMIN_EMAIL and SEED_ADMIN_PASSWORD must be set for seed mode")
	}

	admin, err := users.CreateUser(ctx, "Administrator", adminEmail, "", adminPassword, models.RoleAdmin)
	switch {
	case errors.Is(err, services.ErrEmailTaken):
		log.Info().Str("email", adminEmail).Msg("admin already exists, skipping")
	case err != nil:
		log.Fatal().Err(err).Msg("failed to create admin user")
	default:
		log.Info().Str("id", admin.ID).Str("email", admin.Email).Msg("admin user created")
	}

	demo := []models.Property{
		{
			Title:       "Casa Azul",
			Description: "Three bedroom family house with a garden.",
			Status:      models.PropertyAvailable,
			Price:       1850,
			Location:    "Maputo, Sommerschield",
			Bedrooms:    3,
			Bathrooms:   2,
			AreaSqM:     210,
		},
		{
			Title:       "Apartamento Central",
			Description: "Compact two bedroom apartment near the waterfront.",
			Status:      models.PropertyAvailable,
			Price:       95000,
			Location:    "Maputo, Baixa",
			Bedrooms:    2,
			Bathrooms:   1,
			AreaSqM:     78,
		},
		{
			Title:       "Vivenda das Acacias",
			Description: "Spacious villa with a pool and staff quarters.",
			Status:      models.PropertyAvailable,
			Price:       4200,
			Location:    "Matola, Fomento",
			Bedrooms:    5,
			Bathrooms:   4,
			AreaSqM:     460,
		},
	}
	for _, p := range demo {
		if err := properties.CreateProperty(ctx, p); err != nil {
			log.Fatal().Err(err).Str("title", p.Title).Msg("failed to seed property")
		}
		log.Info().Str("title", p.Title).Msg("seeded property")
	}
	log.Info().Msg("seed complete")
}
