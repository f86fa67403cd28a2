package main

import (
	"context"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"hangout-service/internal/chats"
	"hangout-service/internal/config"
	"hangout-service/internal/db"
	"hangout-service/internal/handlers"
	"hangout-service/internal/hangouts"
	"hangout-service/internal/middleware"
	"hangout-service/internal/observability"
	"hangout-service/internal/rabbitmq"
	"hangout-service/internal/repositories"
	"hangout-service/internal/scheduling"
	"hangout-service/internal/telemetry"
	"hangout-service/internal/tracing"
	"hangout-service/internal/ws"
)

const serviceName = "hangout-service"

func main() {
	cfg := config.Load()

	shutdownTracing, err := tracing.Init(context.Background(), serviceName, cfg.OTLPEndpoint)
	if err != nil {
		log.Fatalf("failed to init tracing: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(ctx); err != nil {
			log.Printf("tracing shutdown failed: %v", err)
		}
	}()

	database, err := db.Connect(cfg.DBDSN)
	if err != nil {
		log.Fatalf("failed to connect to db: %v", err)
	}

	redisClient := db.ConnectRedis(cfg.RedisURL)
	if redisClient != nil {
		defer redisClient.Close()
	}

	publisher := rabbitmq.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange)
	defer publisher.Close()
	log.Printf("event publisher mode=%s", rabbitmq.PublisherMode(publisher))

	observability.SetPublisher(publisher)
	auditEmitter := telemetry.NewAuditEmitter(publisher, "audit.hangout", serviceName, cfg.Environment)

	availabilityRepo := repositories.NewAvailabilityRepo(database)
	hangoutRepo := repositories.NewHangoutRepo(database)
	chatRepo := repositories.NewChatRepo(database)
	messageRepo := repositories.NewMessageRepo(database)
	userRepo := repositories.NewUserRepo(database)

	overlapCache := scheduling.NewOverlapCache(redisClient, cfg.CacheTTL)
	overlapEngine := scheduling.NewOverlapEngine(availabilityRepo, overlapCache)

	hangoutService := hangouts.NewService(hangoutRepo, chatRepo, cfg.ChatTTL)
	retention := chats.NewRetentionService(chatRepo, userRepo)

	hub := ws.NewHub()

	sweeper := chats.NewSweeper(chatRepo, hub, cfg.SweepSpec)
	if err := sweeper.Start(); err != nil {
		log.Fatalf("failed to start chat sweeper: %v", err)
	}
	defer sweeper.Stop()

	availabilityHandler := handlers.NewAvailabilityHandler(availabilityRepo, overlapEngine, overlapCache, auditEmitter)
	hangoutHandler := handlers.NewHangoutHandler(hangoutService, hangoutRepo, userRepo, auditEmitter)
	chatHandler := handlers.NewChatHandler(chatRepo, messageRepo, userRepo, retention, hub, auditEmitter)
	chatWS := ws.NewChatWebSocketHandler(hub, chatRepo, []byte(cfg.JWTSecret))

	router := gin.Default()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(serviceName))
	router.Use(observability.HTTPMetricsMiddleware())

	authMiddleware := middleware.AuthMiddleware([]byte(cfg.JWTSecret))

	router.GET("/availability", authMiddleware, availabilityHandler.ListMine)
	router.GET("/availability/:user_id", authMiddleware, availabilityHandler.ListForUser)
	router.POST("/availability", authMiddleware, availabilityHandler.Add)
	router.DELETE("/availability/:window_id", authMiddleware, availabilityHandler.Delete)
	router.GET("/overlaps/:user_id", authMiddleware, availabilityHandler.Overlaps)

	router.POST("/hangouts", authMiddleware, hangoutHandler.Create)
	router.GET("/hangouts", authMiddleware, hangoutHandler.List)
	router.GET("/hangouts/:hangout_id", authMiddleware, hangoutHandler.Get)
	router.POST("/hangouts/:hangout_id/respond", authMiddleware, hangoutHandler.Respond)
	router.POST("/hangouts/:hangout_id/participants", authMiddleware, hangoutHandler.AddParticipant)
	router.DELETE("/hangouts/:hangout_id/participants/:user_id", authMiddleware, hangoutHandler.RemoveParticipant)

	router.GET("/chats", authMiddleware, chatHandler.ListChats)
	router.GET("/chats/:chat_id", authMiddleware, chatHandler.GetChat)
	router.POST("/chats/:chat_id/keep", authMiddleware, chatHandler.Keep)
	router.GET("/chats/:chat_id/messages", authMiddleware, chatHandler.GetMessages)
	router.POST("/chats/:chat_id/messages", authMiddleware, chatHandler.PostMessage)

	router.GET("/ws/chats/:chat_id", chatWS.Handle)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	handlers.RegisterDebugRoutes(router, auditEmitter, cfg.DebugRoutes)

	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
