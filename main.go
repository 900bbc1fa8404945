package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fashionstudio/config"
	"fashionstudio/database"
	"fashionstudio/database/repository"
	"fashionstudio/handlers"
	"fashionstudio/middleware"
	"fashionstudio/models"
	"fashionstudio/routes"
	"fashionstudio/services/intelligence"
	"fashionstudio/services/ledger"
	"fashionstudio/services/phoneauth"
	"fashionstudio/services/session"
	"fashionstudio/services/storage"
	"fashionstudio/services/studio"
	"fashionstudio/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	identitytoolkit "google.golang.org/api/identitytoolkit/v3"
)

// stores groups the persistence backends selected by STORE_BACKEND.
type stores struct {
	profiles repository.ProfileRepository
	records  repository.GenerationRepository
	catalog  repository.CatalogRepository
}

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()
	defer logger.Sync()

	if err := config.ValidateProduction(config.AppConfig); err != nil {
		logger.Fatal("main: unsafe production configuration", zap.Error(err))
	}
	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	rootCtx, cancelRoot := context.WithCancel(context.Background())
	defer cancelRoot()
	cfg := config.AppConfig
	pingers := map[string]utils.Pinger{}

	var fb *utils.FirebaseClients
	if cfg.StoreBackend == "firestore" || cfg.BlobBackend == "firebase" || cfg.OTPChannel == "firebase" {
		var err error
		fb, err = utils.FirebaseInit(rootCtx)
		if err != nil {
			logger.Fatal("main: failed to initialize Firebase", zap.Error(err))
		}
		defer fb.Close()
	}

	st := buildStores(fb, pingers)
	blobs := buildBlobStore(fb)
	cooldowns := buildCooldownStore(pingers)

	var toolkit *identitytoolkit.Service
	if cfg.FirebaseAPIKey != "" {
		var err error
		toolkit, err = phoneauth.NewIdentityToolkitService(rootCtx, cfg.FirebaseAPIKey)
		if err != nil {
			logger.Fatal("main: failed to create identity toolkit client", zap.Error(err))
		}
	}

	var channel phoneauth.OTPChannel
	switch cfg.OTPChannel {
	case "stub":
		logger.Warn("main: OTP stub channel enabled, every number accepts the configured code")
		channel = phoneauth.NewStubChannel(cfg.OTPStubCode)
	default:
		if toolkit == nil {
			logger.Fatal("main: OTP_CHANNEL=firebase requires FIREBASE_API_KEY")
		}
		channel = phoneauth.NewIdentityToolkitChannel(toolkit)
	}

	phoneCfg := phoneauth.DefaultConfig()
	phoneCfg.NumberCooldown = cfg.OTPNumberCooldown
	phoneCfg.GlobalCooldown = cfg.OTPGlobalCooldown
	registry := phoneauth.NewRegistry(channel, cooldowns, phoneCfg, cfg.OTPMachineIdleTTL)
	go registry.Run(rootCtx, time.Minute)

	// services.
	sessionService := &session.DefaultSessionService{
		Profiles:        st.profiles,
		IssueToken:      utils.GenerateToken,
		StartingCredits: cfg.StartingCredits,
		TokenTTL:        cfg.SessionTTL,
	}
	if toolkit != nil {
		sessionService.Passwords = session.NewIdentityToolkitPasswords(toolkit)
	}
	if fb != nil {
		sessionService.IDTokens = session.NewFirebaseIDTokens(fb.Auth)
	}

	ledgerMetrics, err := ledger.NewMetrics(nil)
	if err != nil {
		logger.Fatal("main: failed to register ledger metrics", zap.Error(err))
	}
	ledgerService := ledger.NewLedgerService(st.profiles, ledgerMetrics)

	studioService := &studio.DefaultStudioService{
		Records:           st.records,
		Models:            st.catalog,
		Blobs:             blobs,
		Generators:        buildGenerators(rootCtx),
		Ledger:            ledgerService,
		DefaultMethod:     cfg.DefaultGenerationMethod,
		GenerationTimeout: cfg.GenerationTimeout,
		MaxUploadBytes:    cfg.MaxUploadBytes,
	}

	httpMetrics, err := middleware.NewHTTPMetrics(middleware.HTTPMetricsOptions{})
	if err != nil {
		logger.Fatal("main: failed to register http metrics", zap.Error(err))
	}

	// Create the Gin router.
	router := gin.New()
	if err := router.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		logger.Fatal("main: invalid TRUSTED_PROXIES", zap.Error(err))
	}
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(middleware.RequestLogger())
	router.Use(httpMetrics.Handler())
	router.Use(middleware.RateLimitMiddleware(cfg.MaxRequestsPerMin))

	handlerBundle := handlers.NewHandlerBundle(
		handlers.NewPhoneAuthHandler(registry, sessionService),
		handlers.NewAuthHandler(sessionService),
		handlers.NewProfileHandler(sessionService),
		handlers.NewStorageHandler(studioService, cfg.MaxUploadBytes),
		handlers.NewStudioHandler(studioService),
	)
	routes.RegisterRoutes(router, handlerBundle)

	utils.StartHealthMonitor(rootCtx, 30*time.Second, pingers)

	// Start the HTTP server.
	port := cfg.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")
	cancelRoot()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}

func buildStores(fb *utils.FirebaseClients, pingers map[string]utils.Pinger) stores {
	logger := utils.GetLogger()
	switch config.AppConfig.StoreBackend {
	case "mongo":
		if err := database.InitDB(); err != nil {
			logger.Fatal("main: failed to connect to MongoDB", zap.Error(err))
		}
		pingers["mongo"] = database.Ping
		db := database.Database()
		return stores{
			profiles: repository.NewMongoProfileRepo(db),
			records:  repository.NewMongoGenerationRepo(db),
			catalog:  repository.NewMongoCatalogRepo(db),
		}
	case "memory":
		logger.Warn("main: using in-memory stores, data is lost on restart")
		return stores{
			profiles: repository.NewMemoryProfileRepo(),
			records:  repository.NewMemoryGenerationRepo(),
			catalog:  repository.NewMemoryCatalogRepo(),
		}
	default:
		pingers["firestore"] = func(ctx context.Context) error {
			_, err := fb.Firestore.Collection("users").Limit(1).Documents(ctx).GetAll()
			return err
		}
		return stores{
			profiles: repository.NewFirestoreProfileRepo(fb.Firestore),
			records:  repository.NewFirestoreGenerationRepo(fb.Firestore),
			catalog:  repository.NewFirestoreCatalogRepo(fb.Firestore),
		}
	}
}

func buildBlobStore(fb *utils.FirebaseClients) storage.BlobStore {
	cfg := config.AppConfig
	switch cfg.BlobBackend {
	case "cloudinary":
		svc, err := storage.NewCloudinaryStorageService(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
		if err != nil {
			utils.GetLogger().Fatal("main: failed to initialize cloudinary storage service", zap.Error(err))
		}
		return svc
	case "memory":
		return storage.NewMemoryStorageService("local")
	default:
		return storage.NewFirebaseStorageService(fb.Bucket, cfg.FirebaseStorageBucket)
	}
}

func buildCooldownStore(pingers map[string]utils.Pinger) phoneauth.CooldownStore {
	if err := utils.InitOTPCache(); err != nil {
		if config.IsProduction() {
			utils.GetLogger().Fatal("main: Redis is required in production", zap.Error(err))
		}
		utils.GetLogger().Warn("main: Redis unavailable, cooldowns are kept in memory", zap.Error(err))
		return phoneauth.NewMemoryCooldownStore()
	}
	client := utils.GetOTPCacheClient()
	pingers["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }
	return phoneauth.NewRedisCooldownStore(client)
}

func buildGenerators(ctx context.Context) intelligence.Generators {
	cfg := config.AppConfig
	logger := utils.GetLogger()
	generators := intelligence.Generators{}

	if cfg.VertexProjectID != "" {
		gen, err := intelligence.NewVertexGenerator(ctx, cfg.VertexProjectID, cfg.VertexLocation, cfg.VertexModel)
		if err != nil {
			logger.Fatal("main: failed to create Vertex AI generator", zap.Error(err))
		}
		generators[models.MethodVertexAI] = gen
	}
	if cfg.GeminiAPIKey != "" {
		gen, err := intelligence.NewGeminiAPIGenerator(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			logger.Fatal("main: failed to create Gemini API generator", zap.Error(err))
		}
		generators[models.MethodGeminiAPI] = gen
	}
	if len(generators) == 0 {
		logger.Warn("main: no image generator configured, generation requests will be rejected")
	}
	return generators
}
