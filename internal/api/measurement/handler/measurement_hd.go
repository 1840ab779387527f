package measurementHandler

import (
	"context"
	"math"
	"strconv"
	"time"

	"ProjectVTO/internal/api/measurement"
	contextPkg "ProjectVTO/pkg/context"
	"ProjectVTO/pkg/handlerUtil"
	"ProjectVTO/pkg/log"

	"github.com/gofiber/fiber/v2"
	"github.com/vmihailenco/msgpack/v5"
)

const msgpackContentType = "application/msgpack"

func (h *MeasurementHandler) HandleCreateSession(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 10*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	session, err := h.measurementService.CreateSession(c)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "create_session")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusCreated, measurement.CreateSessionResponse{
			SessionID: session.ID,
			CreatedAt: session.CreatedAt,
		})
	}
}

func (h *MeasurementHandler) HandleCloseSession(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 10*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	if err := h.measurementService.CloseSession(c, ctx.Params("id")); err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "close_session")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusNoContent, nil)
	}
}

func (h *MeasurementHandler) HandleGetSnapshot(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 10*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	snapshot, err := h.measurementService.GetSnapshot(c, ctx.Params("id"))
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "get_snapshot")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, measurement.SnapshotResponse{Data: snapshot})
	}
}

// HandleProcessFrame accepts a landmark frame as JSON, or as msgpack when the
// request says so in its content type.
func (h *MeasurementHandler) HandleProcessFrame(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 10*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	var req measurement.FrameRequest
	if string(ctx.Request().Header.ContentType()) == msgpackContentType {
		if err := msgpack.Unmarshal(ctx.Body(), &req); err != nil {
			return errHandler.Handle(ctx, requestID, measurement.ErrInvalidFrame, ctx.Path(), "parse_request_body")
		}
	} else if err := ctx.BodyParser(&req); err != nil {
		return errHandler.Handle(ctx, requestID, measurement.ErrInvalidFrame, ctx.Path(), "parse_request_body")
	}

	if err := h.validator.Struct(req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	result, err := h.measurementService.ProcessFrame(c, req.SessionID, req.LandmarkFrame)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "process_frame")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, measurement.FrameResponse{Data: result})
	}
}

func (h *MeasurementHandler) HandleFieldOfView(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	errHandler := handlerUtil.New(h.log)

	width, err := strconv.ParseFloat(ctx.Query("width"), 64)
	if err != nil || width < 0 || math.IsNaN(width) || math.IsInf(width, 0) {
		h.log.WithFields(log.Fields{
			"request_id": requestID,
			"width":      ctx.Query("width"),
		}).Debug("Rejected field of view width")
		return errHandler.Handle(ctx, requestID, measurement.ErrInvalidWidth, ctx.Path(), "parse_width")
	}

	return errHandler.HandleSuccess(ctx, fiber.StatusOK, measurement.FovResponse{
		Width: width,
		FOV:   h.measurementService.FieldOfView(width),
	})
}
