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

	"github.com/ThisIsMahim/Upp-campus/internal/config"
	s3infra "github.com/ThisIsMahim/Upp-campus/internal/infra/s3"
	"github.com/ThisIsMahim/Upp-campus/internal/jobs/cleanup"
	pgrepo "github.com/ThisIsMahim/Upp-campus/internal/repo/postgres"
	redrepo "github.com/ThisIsMahim/Upp-campus/internal/repo/redis"
	authsvc "github.com/ThisIsMahim/Upp-campus/internal/services/auth"
	campusessvc "github.com/ThisIsMahim/Upp-campus/internal/services/campuses"
	friendssvc "github.com/ThisIsMahim/Upp-campus/internal/services/friends"
	mediasvc "github.com/ThisIsMahim/Upp-campus/internal/services/media"
	notifsvc "github.com/ThisIsMahim/Upp-campus/internal/services/notifications"
	postssvc "github.com/ThisIsMahim/Upp-campus/internal/services/posts"
	profilessvc "github.com/ThisIsMahim/Upp-campus/internal/services/profiles"
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
	sessionRepo := redrepo.NewSessionRepo(redisClient)

	accountRepo := pgrepo.NewAccountRepo(pool)
	profileRepo := pgrepo.NewProfileRepo(pool)
	campusRepo := pgrepo.NewCampusRepo(pool)
	postRepo := pgrepo.NewPostRepo(pool)
	commentRepo := pgrepo.NewCommentRepo(pool)
	likeRepo := pgrepo.NewLikeRepo(pool)
	friendRepo := pgrepo.NewFriendRepo(pool)
	notificationRepo := pgrepo.NewNotificationRepo(pool)
	registrar := pgrepo.NewRegistrar(pool, accountRepo, profileRepo)

	jwtManager := authsvc.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTAccessTTL.Std())
	authService := authsvc.NewService(authsvc.Dependencies{
		JWT:       jwtManager,
		Sessions:  sessionRepo,
		Accounts:  accountRepo,
		Profiles:  profileRepo,
		Registrar: registrar,
	}, cfg.Auth.RefreshTTL.Std(), cfg.Auth.BcryptCost)

	campusService := campusessvc.NewService(campusRepo)
	profileService := profilessvc.NewService(profileRepo, campusRepo)
	notificationService := notifsvc.NewService(notificationRepo)
	postService := postssvc.NewService(postRepo, commentRepo, likeRepo, profileRepo, notificationService, log, postssvc.Config{
		PageSize:    cfg.Feed.PageSize,
		MaxPageSize: cfg.Feed.MaxPageSize,
	})
	friendService := friendssvc.NewService(pool, friendRepo, profileRepo, notificationService, log)

	var s3Client *minio.Client
	if c, err := s3infra.NewClient(s3infra.Config{
		Endpoint:  cfg.S3.Endpoint,
		AccessKey: cfg.S3.AccessKey,
		SecretKey: cfg.S3.SecretKey,
		Region:    cfg.S3.Region,
		UseSSL:    cfg.S3.UseSSL,
	}); err != nil {
		log.Warn("s3 init failed, continuing in degraded mode", zap.Error(err))
	} else {
		s3Client = c
	}

	mediaStorage := mediasvc.NewS3Storage(s3Client, cfg.S3.Bucket)
	mediaService := mediasvc.NewService(profileRepo, mediaStorage)

	cleanupJob := cleanup.New(notificationRepo, cfg.Cleanup.NotificationRetention.Std(), log)

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      r,
		ReadTimeout:  cfg.HTTP.ReadTimeout.Std(),
		WriteTimeout: cfg.HTTP.WriteTimeout.Std(),
		IdleTimeout:  cfg.HTTP.IdleTimeout.Std(),
	}

	RegisterRoutes(r, Dependencies{
		AuthService:         authService,
		ProfileService:      profileService,
		CampusService:       campusService,
		PostService:         postService,
		FriendService:       friendService,
		NotificationService: notificationService,
		MediaService:        mediaService,
		Logger:              log,
		Config:              cfg,
	})

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

// RunCleanup blocks running the retention job until the context ends.
func (a *App) RunCleanup(ctx context.Context) {
	a.cleanupJob.RunEvery(ctx, a.cfg.Cleanup.Interval.Std())
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
