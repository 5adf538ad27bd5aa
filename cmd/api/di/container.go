package di

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"vet-clinic-service/cmd/api/infrastructure"
	"vet-clinic-service/internal/adapter/blob"
	"vet-clinic-service/internal/adapter/db/postgres"
	ginhandler "vet-clinic-service/internal/adapter/gin/handler"
	ginmiddleware "vet-clinic-service/internal/adapter/gin/middleware"
	ginrouter "vet-clinic-service/internal/adapter/gin/router"
	"vet-clinic-service/internal/config"
	"vet-clinic-service/internal/usecase/auth"
	"vet-clinic-service/internal/usecase/clinic"
	"vet-clinic-service/internal/usecase/profile"
	redisclient "vet-clinic-service/pkg/redis"
	"vet-clinic-service/pkg/security"
)

// Container holds all application dependencies.
type Container struct {
	Config      *config.Config
	Logger      *zap.Logger
	DB          *gorm.DB
	RedisClient *redisclient.Client
	BlobStore   *blob.CloudinaryStore
	Tokens      *security.TokenManager
	ProfileUC   profile.Usecase
	AuthUC      auth.Usecase
	ClinicUC    clinic.Usecase
	RateLimiter *ginmiddleware.RateLimiter
	Handlers    ginrouter.Handlers
}

// NewContainer creates and initializes all application dependencies.
func NewContainer(cfg *config.Config, l *zap.Logger) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	db, err := infrastructure.NewDatabase(cfg, l)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	rdb, err := infrastructure.NewRedisClient(cfg, l)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Redis: %w", err)
	}

	blobs, err := infrastructure.NewBlobStore(cfg, l)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize blob store: %w", err)
	}

	tokens := security.NewTokenManager(
		cfg.Auth.JWTSecret,
		time.Duration(cfg.Auth.TokenTTLMinutes)*time.Minute,
	)

	userRepo := postgres.NewUserRepoPG(db, l)
	clinicRepo := postgres.NewClinicRepoPG(db, l)

	profileUC := profile.New(userRepo, blobs, cfg.Blob.UserFolder, l)
	authUC := auth.New(userRepo, tokens, l)
	clinicUC := clinic.New(clinicRepo, userRepo, blobs, cfg.Blob.PetFolder, l)

	rateLimiter := ginmiddleware.NewRateLimiter(
		rdb.Client,
		ginmiddleware.RateLimiterConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			BurstCapacity:     cfg.RateLimit.BurstCapacity,
			Enabled:           cfg.RateLimit.Enabled,
		},
		l,
	)

	handlers := ginrouter.Handlers{
		Auth:         ginhandler.NewAuthHandler(authUC, l),
		Users:        ginhandler.NewUserHandler(profileUC, l),
		Owners:       ginhandler.NewOwnerHandler(clinicUC, l),
		PetTypes:     ginhandler.NewPetTypeHandler(clinicUC, l),
		Pets:         ginhandler.NewPetHandler(clinicUC, l),
		Appointments: ginhandler.NewAppointmentHandler(clinicUC, l),
		Records:      ginhandler.NewRecordHandler(clinicUC, l),
	}

	return &Container{
		Config:      cfg,
		Logger:      l,
		DB:          db,
		RedisClient: rdb,
		BlobStore:   blobs,
		Tokens:      tokens,
		ProfileUC:   profileUC,
		AuthUC:      authUC,
		ClinicUC:    clinicUC,
		RateLimiter: rateLimiter,
		Handlers:    handlers,
	}, nil
}

// Close closes all resources held by the container.
func (c *Container) Close() error {
	var errs []error

	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close Redis: %w", err))
		}
	}

	if c.DB != nil {
		if err := infrastructure.CloseDatabase(c.DB); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("container close errors: %v", errs)
	}

	return nil
}
