package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"testprep_backend/internal/config"
	"testprep_backend/internal/controller"
	"testprep_backend/internal/repository"
	"testprep_backend/internal/service"
	"testprep_backend/pkg/database"
	"testprep_backend/pkg/logger"
	"testprep_backend/pkg/monitoring"
	"testprep_backend/pkg/security"
	"testprep_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user        *repository.UserRepository
	plan        *repository.TestPlanRepository
	attempt     *repository.TestAttemptRepository
	question    *repository.QuestionRepository
	progress    *repository.ProgressRepository
	mastery     *repository.MasteryRepository
	achievement *repository.AchievementRepository
	reward      *repository.RewardRepository
	activity    *repository.ActivityRepository
	levelConfig *repository.LevelConfigRepository
}

type services struct {
	execution   *service.ExecutionService
	progression *service.ProgressionService
	guard       *service.AccessGuard
}

type controllers struct {
	attempt     *controller.AttemptController
	progression *controller.ProgressionController
	achievement *controller.AchievementController
	reward      *controller.RewardController
	health      *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) initRepositories(db *gorm.DB, rdb *redis.Client) *repositories {
	return &repositories{
		user:        repository.NewUserRepository(db),
		plan:        repository.NewTestPlanRepository(db),
		attempt:     repository.NewTestAttemptRepository(db),
		question:    repository.NewQuestionRepository(db),
		progress:    repository.NewProgressRepository(db, rdb),
		mastery:     repository.NewMasteryRepository(db),
		achievement: repository.NewAchievementRepository(db),
		reward:      repository.NewRewardRepository(db),
		activity:    repository.NewActivityRepository(db),
		levelConfig: repository.NewLevelConfigRepository(db),
	}
}

func (a *App) initServices(repos *repositories, db *gorm.DB) *services {
	s := &services{}

	s.guard = service.NewAccessGuard(repos.user)
	s.progression = service.NewProgressionService(
		repos.progress,
		repos.mastery,
		repos.achievement,
		repos.reward,
		repos.activity,
		repos.levelConfig,
		db,
	)
	s.execution = service.NewExecutionService(
		repos.attempt,
		repos.plan,
		repos.question,
		s.progression,
		s.guard,
		db,
	)

	return s
}

func (a *App) initControllers(s *services, repos *repositories, db *gorm.DB) *controllers {
	return &controllers{
		attempt:     controller.NewAttemptController(s.execution),
		progression: controller.NewProgressionController(s.progression, repos.user),
		achievement: controller.NewAchievementController(s.progression, repos.achievement),
		reward:      controller.NewRewardController(s.progression, repos.reward),
		health:      controller.NewHealthController(db),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 100000
	}
	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	if window <= 0 {
		window = time.Minute
	}
	router.Use(security.RateLimiter(maxRequests, window))

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
		log.Fatalf("Failed to initialize database: %v", err)
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
		log.Fatalf("Failed to initialize redis: %v", err)
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db, rdb)
	services := app.initServices(repos, db)
	controllers := app.initControllers(services, repos, db)

	monitoring.Init()

	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer("assessment-platform", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		defer func() {
			if err := tp.Shutdown(context.Background()); err != nil {
				logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
			}
		}()
	}

	app.registerRoutes(router, controllers, repos, cfg)

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
