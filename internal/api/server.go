package api

import (
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"github.com/bienestar-u/eventos-api/docs"
	v1 "github.com/bienestar-u/eventos-api/internal/api/handler/v1"
	"github.com/bienestar-u/eventos-api/internal/api/middleware"
	"github.com/bienestar-u/eventos-api/internal/config"
	"github.com/bienestar-u/eventos-api/internal/repository"
	"github.com/bienestar-u/eventos-api/internal/repository/dao"
	"github.com/bienestar-u/eventos-api/internal/service"
	"github.com/bienestar-u/eventos-api/internal/storage"
)

type Server struct {
	Config *config.AppConfig
	Router *gin.Engine
}

func NewServer(conf *config.AppConfig, db *gorm.DB, store *storage.DiskStore) *Server {
	gin.SetMode(conf.Gin.Mode)
	engine := gin.New()

	s := &Server{
		Config: conf,
		Router: engine,
	}

	s.MountMiddlewares()

	userRepo := repository.NewUserRepository(dao.NewUserDAO(db))
	eventRepo := repository.NewEventRepository(dao.NewEventDAO(db))
	organizationRepo := repository.NewOrganizationRepository(dao.NewOrganizationDAO(db))
	installationRepo := repository.NewInstallationRepository(dao.NewInstallationDAO(db))
	evaluationRepo := repository.NewEvaluationRepository(dao.NewEvaluationDAO(db))
	notificationRepo := repository.NewNotificationRepository(dao.NewNotificationDAO(db))

	userSvc := service.NewUserService(userRepo)
	installationSvc := service.NewInstallationService(installationRepo)
	notificationSvc := service.NewNotificationService(notificationRepo, userRepo)
	avalRepo := repository.NewAvalRepository(dao.NewAvalDAO(db))
	eventSvc := service.NewEventService(eventRepo, installationSvc, organizationRepo, avalRepo, notificationSvc, store)
	evaluationSvc := service.NewEvaluationService(evaluationRepo, eventRepo, notificationSvc, store)
	organizationSvc := service.NewOrganizationService(organizationRepo)

	authHandler := v1.NewAuthHandler(s.Config.API, service.NewAuthService(userRepo))
	userHandler := v1.NewUserHandler(userSvc)
	eventHandler := v1.NewEventHandler(eventSvc, userSvc)
	evaluationHandler := v1.NewEvaluationHandler(evaluationSvc, userSvc)
	notificationHandler := v1.NewNotificationHandler(notificationSvc)
	installationHandler := v1.NewInstallationHandler(installationSvc)
	organizationHandler := v1.NewOrganizationHandler(organizationSvc)

	s.MountHandlers(store,
		authHandler, userHandler, eventHandler, evaluationHandler,
		notificationHandler, installationHandler, organizationHandler)

	return s
}

func (s *Server) MountMiddlewares() {
	// Logger and Recovery are needed unless we use gin.Default().
	s.Router.Use(gin.Logger())
	s.Router.Use(gin.Recovery())
	s.Router.Use(requestid.New())
	s.Router.Use(middleware.ConfigCORS(s.Config.API.AllowedCORSDomains))
}

func (s *Server) MountHandlers(
	store *storage.DiskStore,
	authHandler *v1.AuthHandler,
	userHandler *v1.UserHandler,
	eventHandler *v1.EventHandler,
	evaluationHandler *v1.EvaluationHandler,
	notificationHandler *v1.NotificationHandler,
	installationHandler *v1.InstallationHandler,
	organizationHandler *v1.OrganizationHandler,
) {
	const basePath = "/api/v1"

	auth := s.Router.Group(basePath)
	{
		auth.POST("/auth/signup", authHandler.HandleSignup)
		auth.POST("/auth/login", authHandler.HandleLogin)
	}

	authenticated := s.Router.Group(basePath, middleware.NewAuthenticator(s.Config.API.JWTSigningKey).VerifyJWT())
	{
		authenticated.GET("/users/:userID", userHandler.HandleGetUser)

		authenticated.GET("/installations", installationHandler.HandleGetInstallations)

		authenticated.GET("/organizations", organizationHandler.HandleGetOrganizations)
		authenticated.POST("/organizations", organizationHandler.HandleCreateOrganization)
		authenticated.GET("/organizations/:organizationID", organizationHandler.HandleGetOrganization)
		authenticated.PUT("/organizations/:organizationID", organizationHandler.HandleUpdateOrganization)

		authenticated.GET("/events", eventHandler.HandleGetEvents)
		authenticated.POST("/events", eventHandler.HandleCreateEvent)
		authenticated.GET("/events/:eventID", eventHandler.HandleGetEvent)
		authenticated.PUT("/events/:eventID", eventHandler.HandleUpdateEvent)
		authenticated.DELETE("/events/:eventID", eventHandler.HandleDeleteEvent)
		authenticated.POST("/events/:eventID/send", eventHandler.HandleSubmitEvent)
		authenticated.GET("/events/:eventID/aval", eventHandler.HandleGetEventAval)
		authenticated.GET("/events/:eventID/evaluations", evaluationHandler.HandleGetEvaluations)

		authenticated.POST("/events/evaluate", evaluationHandler.HandleEvaluateEvent)

		authenticated.GET("/notifications", notificationHandler.HandleGetNotifications)
		authenticated.PUT("/notifications/:notificationID/read", notificationHandler.HandleMarkNotificationRead)
		authenticated.DELETE("/notifications/:notificationID", notificationHandler.HandleDeleteNotification)
	}

	// Uploaded avales, certificates and actas are served from disk.
	s.Router.Static(storage.URLPrefix, store.Root())

	s.Router.GET("/", v1.HandleHealthcheck)

	// Setup Swagger UI.
	docs.SwaggerInfo.Host = s.Config.API.BaseURL
	docs.SwaggerInfo.BasePath = basePath
	docs.SwaggerInfo.Title = "API de eventos de Bienestar Universitario"
	docs.SwaggerInfo.Description = "Registro, revision y aprobacion de eventos universitarios."
	docs.SwaggerInfo.Version = "1.0"
	s.Router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))
}
