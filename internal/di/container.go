package di

import (
	"github.com/saurav0523/liaplusAI-Backend/internal/handler"
	"github.com/saurav0523/liaplusAI-Backend/internal/repository"
	"github.com/saurav0523/liaplusAI-Backend/internal/security"
	"github.com/saurav0523/liaplusAI-Backend/internal/service"
	"github.com/saurav0523/liaplusAI-Backend/pkg/logger"
)

// Container holds all dependencies for the auth service
type Container struct {
	// Infrastructure
	Logger   *logger.Logger
	Sessions security.SessionTokenCodec

	// Repositories
	AccountStore repository.AccountStore
	PostRepo     repository.PostRepository

	// Services
	AuthService service.AuthService
	PostService service.PostService

	// Handlers
	HealthHandler *handler.HealthHandler
	AuthHandler   *handler.AuthHandler
	PostHandler   *handler.PostHandler
}

// ContainerConfig contains configuration for building the container
type ContainerConfig struct {
	ServiceName    string
	AccountStore   repository.AccountStore
	PostRepo       repository.PostRepository
	Hasher         security.PasswordHasher
	Sessions       security.SessionTokenCodec
	Email          service.EmailSender
	HealthCheckers map[string]handler.HealthChecker
	Logger         *logger.Logger
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *ContainerConfig) *Container {
	log := cfg.Logger
	if log == nil {
		log = logger.Get()
	}

	c := &Container{
		Logger:       log,
		Sessions:     cfg.Sessions,
		AccountStore: cfg.AccountStore,
		PostRepo:     cfg.PostRepo,
	}

	// Initialize services
	c.AuthService = service.NewAuthService(service.AuthServiceDeps{
		Store:    c.AccountStore,
		Hasher:   cfg.Hasher,
		Sessions: c.Sessions,
		Email:    cfg.Email,
		Logger:   log,
	})
	c.PostService = service.NewPostService(c.PostRepo)

	// Initialize handlers
	c.HealthHandler = handler.NewHealthHandler(cfg.ServiceName, cfg.HealthCheckers)
	c.AuthHandler = handler.NewAuthHandler(c.AuthService, log.Named("http"))
	c.PostHandler = handler.NewPostHandler(c.PostService, log.Named("http"))

	return c
}
