package measurementHandler

import (
	measurementService "ProjectVTO/internal/api/measurement/service"
	"ProjectVTO/internal/middleware"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/sirupsen/logrus"
)

type MeasurementHandler struct {
	log                *logrus.Logger
	validator          *validator.Validate
	middleware         middleware.Middleware
	measurementService measurementService.IMeasurementService
}

func New(
	log *logrus.Logger,
	validator *validator.Validate,
	middleware middleware.Middleware,
	ms measurementService.IMeasurementService,
) *MeasurementHandler {
	return &MeasurementHandler{
		log:                log,
		validator:          validator,
		middleware:         middleware,
		measurementService: ms,
	}
}

func (h *MeasurementHandler) Start(srv fiber.Router) {
	wsMiddleware := func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	}

	measurement := srv.Group("/measurement")

	measurement.Post("/sessions", h.HandleCreateSession)
	measurement.Delete("/sessions/:id", h.HandleCloseSession)
	measurement.Get("/sessions/:id/snapshot", h.HandleGetSnapshot)

	measurement.Post("/frames", h.middleware.NewRateLimiter, h.HandleProcessFrame)
	measurement.Get("/fov", h.HandleFieldOfView)

	measurement.Use("/ws", wsMiddleware)
	measurement.Get("/ws/:id", websocket.New(h.handleLandmarkStream))
	measurement.Get("/ws/:id/video", websocket.New(h.handleVideoStream))

	measurement.Post("/fittings", h.middleware.NewTokenMiddleware, h.HandleSaveFitting)
	measurement.Get("/fittings", h.middleware.NewTokenMiddleware, h.HandleGetFittings)
	measurement.Get("/fittings/:id", h.middleware.NewTokenMiddleware, h.HandleGetFittingByID)
	measurement.Delete("/fittings/:id", h.middleware.NewTokenMiddleware, h.HandleDeleteFitting)
}
