package main

import (
	"context"
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"placechat/internal/auth"
	"placechat/internal/cache"
	"placechat/internal/config"
	"placechat/internal/db"
	"placechat/internal/handlers"
	"placechat/internal/middleware"
	"placechat/internal/observability"
	"placechat/internal/placesearch"
	"placechat/internal/rabbitmq"
	"placechat/internal/repositories"
	"placechat/internal/telemetry"
	"placechat/internal/ws"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	database, err := db.Connect(cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("failed to connect to db: %v", err)
	}
	defer database.Close()

	shutdownTracer, err := telemetry.InitTracer(ctx, cfg.ServiceName, cfg.Environment, cfg.OTLPEndpoint)
	if err != nil {
		log.Printf("tracing disabled: %v", err)
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shutdownTracer(shutdownCtx)
		}()
	}

	var revocations auth.RevocationStore
	var placeCache placesearch.Cache
	if cfg.RedisURL != "" {
		redisClient, err := cache.Connect(ctx, cfg.RedisURL, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			log.Printf("redis disabled: %v", err)
		} else {
			defer redisClient.Close()
			revocations = auth.NewRedisRevocationStore(redisClient)
			placeCache = cache.NewPlaceCache(redisClient, cfg.PlaceCacheTTL)
		}
	}

	broker := rabbitmq.Connect(cfg.AMQPURL, cfg.AMQPExchange, cfg.ServiceName)
	defer broker.Close()
	log.Printf("rabbitmq mode=%s reason=%s", rabbitmq.Mode(broker), rabbitmq.DisabledReason(broker))
	auditEmitter := telemetry.NewAuditEmitter(broker, cfg.AuditRoutingKey, cfg.ServiceName, cfg.Environment)
	observability.SetPublisher(broker)

	authn := auth.NewAuthenticator(auth.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL), revocations)

	userRepo := repositories.NewUserRepo(database)
	placeRepo := repositories.NewPlaceRepo(database)
	roomRepo := repositories.NewRoomRepo(database)
	messageRepo := repositories.NewMessageRepo(database)
	interestRepo := repositories.NewInterestRepo(database)
	matchRepo := repositories.NewMatchRepo(database)

	search := placesearch.NewService(placesearch.NewProvider(cfg), placeCache)

	hub := ws.NewHub()

	authHandler := handlers.NewAuthHandler(userRepo, authn, auditEmitter)
	placeHandler := handlers.NewPlaceHandler(placeRepo, roomRepo, search)
	roomHandler := handlers.NewRoomHandler(roomRepo, placeRepo, hub, auditEmitter)
	messageHandler := handlers.NewMessageHandler(roomRepo, messageRepo, hub)
	interestHandler := handlers.NewInterestHandler(interestRepo, matchRepo, roomRepo, userRepo, hub, auditEmitter)
	matchHandler := handlers.NewMatchHandler(matchRepo)

	roomWS := ws.NewRoomWebSocketHandler(hub, roomRepo, authn)

	router := gin.Default()

	// middlewares
	router.Use(cors.New(corsConfig(cfg.CORSAllowedOrigins)))
	router.Use(otelgin.Middleware(cfg.ServiceName))
	router.Use(middleware.RequestID())
	router.Use(observability.HTTPMetricsMiddleware())

	router.GET("/healthz", handlers.Health(database))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	handlers.RegisterDebugRoutes(router, auditEmitter, hub, cfg.DebugRoutes)

	authMiddleware := middleware.AuthMiddleware(authn)

	guest := router.Group("/auth", middleware.RejectAuthenticated(authn))
	guest.POST("/register", authHandler.Register)
	guest.POST("/login", authHandler.Login)
	router.POST("/auth/logout", authMiddleware, authHandler.Logout)
	router.GET("/auth/me", authMiddleware, authHandler.Me)

	api := router.Group("/", authMiddleware)

	api.GET("/places", placeHandler.ListPlaces)
	api.POST("/places", placeHandler.CreatePlace)
	api.GET("/places/nearby", placeHandler.Nearby)
	api.GET("/places/external/:external_id", placeHandler.ExternalPlace)
	api.GET("/places/:id", placeHandler.GetPlace)
	api.PUT("/places/:id", placeHandler.UpdatePlace)
	api.DELETE("/places/:id", placeHandler.DeletePlace)

	api.GET("/rooms", roomHandler.ListRooms)
	api.POST("/rooms", roomHandler.CreateRoom)
	api.GET("/rooms/:id", roomHandler.GetRoom)
	api.PUT("/rooms/:id", roomHandler.UpdateRoom)
	api.DELETE("/rooms/:id", roomHandler.DeleteRoom)
	api.GET("/rooms/:id/participants", roomHandler.ListParticipants)
	api.POST("/rooms/:id/participants", roomHandler.JoinRoom)
	api.DELETE("/rooms/:id/participants", roomHandler.LeaveRoom)
	api.GET("/rooms/:id/messages", messageHandler.ListMessages)
	api.POST("/rooms/:id/messages", messageHandler.PostMessage)

	api.GET("/interests", interestHandler.ListInterests)
	api.POST("/interests", interestHandler.CreateInterest)
	api.PUT("/interests/:id", interestHandler.UpdateInterest)
	api.DELETE("/interests/:id", interestHandler.WithdrawInterest)

	api.GET("/matches", matchHandler.ListMatches)
	api.DELETE("/matches/:id", matchHandler.Unmatch)

	router.GET("/ws/rooms/:id", roomWS.Handle)

	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func corsConfig(origins []string) cors.Config {
	c := cors.DefaultConfig()
	c.AllowHeaders = append(c.AllowHeaders, "Authorization", middleware.RequestIDHeader)
	c.ExposeHeaders = []string{middleware.RequestIDHeader}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		c.AllowAllOrigins = true
		return c
	}
	c.AllowOrigins = origins
	c.AllowCredentials = true
	return c
}
