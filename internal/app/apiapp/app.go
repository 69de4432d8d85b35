package apiapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/minio/minio-go/v7"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/olzhas-sembi/dating-backend/internal/config"
	s3infra "github.com/olzhas-sembi/dating-backend/internal/infra/s3"
	"github.com/olzhas-sembi/dating-backend/internal/jobs/cleanup"
	pgrepo "github.com/olzhas-sembi/dating-backend/internal/repo/postgres"
	redrepo "github.com/olzhas-sembi/dating-backend/internal/repo/redis"
	discoverysvc "github.com/olzhas-sembi/dating-backend/internal/services/discovery"
	matchessvc "github.com/olzhas-sembi/dating-backend/internal/services/matches"
	mediasvc "github.com/olzhas-sembi/dating-backend/internal/services/media"
	messagessvc "github.com/olzhas-sembi/dating-backend/internal/services/messages"
	postssvc "github.com/olzhas-sembi/dating-backend/internal/services/posts"
	profilesvc "github.com/olzhas-sembi/dating-backend/internal/services/profiles"
	ratesvc "github.com/olzhas-sembi/dating-backend/internal/services/rate"
	swipesvc "github.com/olzhas-sembi/dating-backend/internal/services/swipes"
)

type App struct {
	cfg        config.Config
	logger     *zap.Logger
	server     *http.Server
	postgres   *pgxpool.Pool
	redis      *goredis.Client
	s3         *minio.Client
	cleanupJob *cleanup.Job
	httpRouter http.Handler
}

func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	r := chi.NewRouter()
	ApplyMiddlewares(r, log)

	var pool *pgxpool.Pool
	if p, err := pgrepo.NewPool(ctx, cfg.Postgres.DSN); err != nil {
		log.Warn("postgres init failed, continuing in degraded mode", zap.Error(err))
	} else {
		pool = p
	}

	redisClient := redrepo.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	rateRepo := redrepo.NewRateRepo(redisClient)

	userRepo := pgrepo.NewUserRepo(pool)
	profileRepo := pgrepo.NewProfileRepo(pool)
	matchRepo := pgrepo.NewMatchRepo(pool)
	messageRepo := pgrepo.NewMessageRepo(pool)
	postRepo := pgrepo.NewPostRepo(pool)

	var s3Client *minio.Client
	if c, err := s3infra.NewClient(s3infra.Config{
		Endpoint:  cfg.S3.Endpoint,
		AccessKey: cfg.S3.AccessKey,
		SecretKey: cfg.S3.SecretKey,
		UseSSL:    cfg.S3.UseSSL,
	}); err != nil {
		log.Warn("s3 init failed, continuing in degraded mode", zap.Error(err))
	} else {
		s3Client = c
	}
	mediaStorage := mediasvc.NewPhotoStore(s3Client, cfg.S3.Bucket)
	if s3Client != nil {
		if err := mediaStorage.EnsureBucket(ctx); err != nil {
			log.Warn("s3 bucket check failed, photo links may not resolve", zap.Error(err))
		}
	}

	rateLimiter := ratesvc.NewLimiter(rateRepo, cfg.Likes.RatePerMinute, cfg.Likes.RatePer10Seconds)
	notifier := newLoggingNotifier(log)

	swipeService := swipesvc.NewService(swipesvc.Dependencies{
		Users:       userRepo,
		Matches:     matchRepo,
		RateLimiter: rateLimiter,
		Notifier:    notifier,
	}, swipesvc.Config{
		SaveRetries: cfg.Likes.SaveRetries,
	})
	discoveryService := discoverysvc.NewService(discoverysvc.Dependencies{
		Users:     userRepo,
		Profiles:  profileRepo,
		Matches:   matchRepo,
		PhotoSign: mediaStorage,
	}, discoverysvc.Config{
		DefaultPageSize: cfg.Search.DefaultPageSize,
		MaxPageSize:     cfg.Search.MaxPageSize,
	})
	profileService := profilesvc.NewService(profileRepo, mediaStorage)
	matchesService := matchessvc.NewService(matchRepo)
	messageService := messagessvc.NewService(messageRepo, matchRepo, notifier)
	postService := postssvc.NewService(postRepo)

	cleanupJob := cleanup.New(matchRepo, messageRepo, postRepo, cfg.Cleanup.Retention, log)

	RegisterRoutes(r, Dependencies{
		LastSeenStore:    userRepo,
		DiscoveryService: discoveryService,
		MatchService:     matchesService,
		MessageService:   messageService,
		PostService:      postService,
		ProfileService:   profileService,
		SwipeService:     swipeService,
		Logger:           log,
	})

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      r,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	return &App{
		cfg:        cfg,
		logger:     log,
		server:     server,
		postgres:   pool,
		redis:      redisClient,
		s3:         s3Client,
		cleanupJob: cleanupJob,
		httpRouter: r,
	}, nil
}

func (a *App) Run() error {
	a.logger.Info("api server started", zap.String("addr", a.cfg.HTTP.Addr))
	err := a.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// StartCleanup launches the retention purge loop; it stops when ctx is
// cancelled.
func (a *App) StartCleanup(ctx context.Context) {
	if a.cleanupJob == nil {
		return
	}
	go a.cleanupJob.RunPeriodically(ctx, a.cfg.Cleanup.Interval)
}

func (a *App) Shutdown(ctx context.Context) error {
	var shutdownErr error

	if err := a.server.Shutdown(ctx); err != nil {
		shutdownErr = err
	}
	if a.postgres != nil {
		a.postgres.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil && shutdownErr == nil {
			shutdownErr = err
		}
	}

	return shutdownErr
}

func (a *App) Handler() http.Handler {
	return a.httpRouter
}
