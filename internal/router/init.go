package router

import (
	"github.com/bloghive/bloghive-api/internal/application"
	"github.com/bloghive/bloghive-api/internal/container"
	pginfra "github.com/bloghive/bloghive-api/internal/infrastructure/postgres"
	"github.com/bloghive/bloghive-api/internal/infrastructure/redisstore"
	handlers "github.com/bloghive/bloghive-api/internal/interface/http"
	"github.com/bloghive/bloghive-api/internal/router/modules"
)

// InitModules builds the repositories, services and handlers from the
// container singletons and registers every feature module with the registry.
// Called once during startup.
func InitModules(r *Registry) {
	cfg := container.GetConfig()
	logger := container.GetLogger()

	users := pginfra.NewUserRepository(container.GetPGPool())
	blogs := pginfra.NewBlogRepository(container.GetPGPool())
	tokens := redisstore.NewTokenStore(container.GetRedis())

	authSvc := &application.AuthService{
		Users:         users,
		Tokens:        tokens,
		JWT:           container.GetJWT(),
		Redis:         container.GetRedis(),
		Logger:        logger,
		Pub:           container.GetRabbitPub(),
		ResetTokenTTL: cfg.ResetTokenTTL,
		ResetURL:      cfg.ResetPasswordURL,
		MailEnabled:   cfg.MailSendEnabled,
	}
	userSvc := &application.UserService{
		Users:        users,
		GCS:          container.GetGCS(),
		GCSBucket:    cfg.GCSBucket,
		Logger:       logger,
		ES:           container.GetES(),
		ESUsersIndex: cfg.ESUsersIndex,
	}
	blogSvc := &application.BlogService{Blogs: blogs, Logger: logger}
	adminSvc := &application.AdminService{Users: users, Blogs: blogs, Logger: logger}

	authHandler := handlers.NewAuthHandler(authSvc, logger, cfg.CookieDomain, cfg.CookieSecure)
	userHandler := handlers.NewUserHandler(userSvc, blogSvc, logger)
	blogHandler := handlers.NewBlogHandler(blogSvc, logger)
	adminHandler := handlers.NewAdminHandler(adminSvc, logger)

	r.Add(modules.NewAuthModule(authHandler))
	r.Add(modules.NewUserModule(userHandler, users))
	r.Add(modules.NewBlogModule(blogHandler, users))
	r.Add(modules.NewAdminModule(adminHandler))
}
