package config

import (
	"context"
	"fmt"
	"os"
	"time"

	"ProjectVTO/database/postgres"
	measurementHandler "ProjectVTO/internal/api/measurement/handler"
	measurementRepository "ProjectVTO/internal/api/measurement/repository"
	measurementService "ProjectVTO/internal/api/measurement/service"
	"ProjectVTO/internal/middleware"
	"ProjectVTO/pkg/redis"
	"ProjectVTO/pkg/s3"
	"ProjectVTO/pkg/utils"
	websocketPkg "ProjectVTO/pkg/websocket"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

type ServerOption func(*Server) error

type Server struct {
	engine             *fiber.App
	db                 *sqlx.DB
	log                *logrus.Logger
	middleware         middleware.Middleware
	validator          *validator.Validate
	utils              utils.IUtils
	handlers           []handler
	redisServer        redis.IRedis
	detector           websocketPkg.IWebsocket
	s3Client           s3.ItfS3
	measurementConfig  measurementService.Config
	measurementService measurementService.IMeasurementService
}

type handler interface {
	Start(srv fiber.Router)
}

func NewServer(options ...ServerOption) (*Server, error) {
	server := &Server{
		measurementConfig: measurementService.DefaultConfig(),
	}

	for _, option := range options {
		if err := option(server); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	if server.engine == nil {
		return nil, fmt.Errorf("fiber app is required")
	}
	if server.log == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if server.middleware == nil {
		server.middleware = middleware.New(server.log)
	}
	if server.validator == nil {
		server.validator = NewValidator()
	}
	if server.utils == nil {
		server.utils = utils.New()
	}

	return server, nil
}

func WithFiber(fiberApp *fiber.App) ServerOption {
	return func(s *Server) error {
		s.engine = fiberApp
		return nil
	}
}

func WithLogger(logger *logrus.Logger) ServerOption {
	return func(s *Server) error {
		s.log = logger
		return nil
	}
}

func WithValidator(validator *validator.Validate) ServerOption {
	return func(s *Server) error {
		s.validator = validator
		return nil
	}
}

func WithDatabase() ServerOption {
	return func(s *Server) error {
		db, err := postgres.New()
		if err != nil {
			if s.log != nil {
				s.log.Errorf("Failed to connect to database: %v", err)
			}
			return fmt.Errorf("failed to create database connection: %w", err)
		}
		s.db = db
		return nil
	}
}

func WithRedisServer(redisServer redis.IRedis) ServerOption {
	return func(s *Server) error {
		s.redisServer = redisServer
		return nil
	}
}

func WithDetector(detector websocketPkg.IWebsocket) ServerOption {
	return func(s *Server) error {
		s.detector = detector
		return nil
	}
}

func WithMiddleware(opts ...middleware.Option) ServerOption {
	return func(s *Server) error {
		if s.log == nil {
			return fmt.Errorf("logger must be initialized before middleware")
		}
		s.middleware = middleware.New(s.log, opts...)
		return nil
	}
}

func WithS3Client() ServerOption {
	return func(s *Server) error {
		client, err := s3.New()
		if err != nil {
			if s.log != nil {
				s.log.Errorf("Failed to initialize S3 client: %v", err)
			}
			return fmt.Errorf("failed to create S3 client: %w", err)
		}
		s.s3Client = client
		return nil
	}
}

func WithUtils() ServerOption {
	return func(s *Server) error {
		s.utils = utils.New()
		return nil
	}
}

func WithMeasurementConfig(cfg measurementService.Config) ServerOption {
	return func(s *Server) error {
		if err := cfg.VTO.Validate(); err != nil {
			return err
		}
		s.measurementConfig = cfg
		return nil
	}
}

func (s *Server) RegisterHandler() {
	s.engine.Use(s.middleware.NewRequestIDMiddleware())
	s.engine.Use(s.middleware.NewLoggingMiddleware)

	// Measurement Domain
	measurementRepo := measurementRepository.New(s.db, s.log)
	s.measurementService = measurementService.NewMeasurementService(s.log, measurementRepo, s.redisServer, s.detector, s.s3Client, s.utils, s.measurementConfig)
	measurementHandlers := measurementHandler.New(s.log, s.validator, s.middleware, s.measurementService)

	s.setupHealthCheck()
	s.handlers = append(s.handlers, measurementHandlers)
}

func (s *Server) Run() error {
	router := s.engine.Group("/api/v1")

	for _, h := range s.handlers {
		h.Start(router)
	}

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "3000"
	}

	return s.engine.Listen(fmt.Sprintf(":%s", port))
}

// Shutdown stops accepting requests and releases the session janitor,
// detector connection and database pool.
func (s *Server) Shutdown(timeout time.Duration) error {
	err := s.engine.ShutdownWithTimeout(timeout)

	if s.measurementService != nil {
		s.measurementService.Close()
	}
	if s.detector != nil {
		s.detector.CloseConnections()
	}
	if s.db != nil {
		if dbErr := s.db.Close(); dbErr != nil {
			s.log.Errorf("Failed to close database: %v", dbErr)
		}
	}

	return err
}

func (s *Server) setupHealthCheck() {
	s.engine.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.JSON(fiber.Map{
			"message": "Server is Healthy!",
		})
	})

	s.engine.Get("/health", func(ctx *fiber.Ctx) error {
		status := fiber.Map{
			"detector": s.detector != nil && s.detector.IsConnected(),
			"redis":    false,
			"database": false,
		}

		c, cancel := context.WithTimeout(ctx.Context(), 2*time.Second)
		defer cancel()

		if s.redisServer != nil {
			status["redis"] = s.redisServer.Ping(c) == nil
		}
		if s.db != nil {
			status["database"] = s.db.PingContext(c) == nil
		}

		return ctx.JSON(status)
	})
}
