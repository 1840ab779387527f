package measurementHandler

import (
	"context"
	"errors"
	"strconv"
	"time"

	"ProjectVTO/internal/api/measurement"
	"ProjectVTO/internal/middleware"
	"ProjectVTO/pkg/codec"
	contextPkg "ProjectVTO/pkg/context"
	"ProjectVTO/pkg/response"
	"ProjectVTO/pkg/vto"

	"github.com/gofiber/websocket/v2"
	"github.com/sirupsen/logrus"
)

const (
	streamReadTimeout  = 60 * time.Second
	streamWriteTimeout = 10 * time.Second
	streamFrameTimeout = 10 * time.Second
)

type frameFunc func(ctx context.Context, messageType int, message []byte) (vto.FrameResult, error)

func (h *MeasurementHandler) handleLandmarkStream(c *websocket.Conn) {
	sessionID := c.Params("id")

	h.serveStream(c, "landmark", func(ctx context.Context, messageType int, message []byte) (vto.FrameResult, error) {
		frame, err := codec.Decode(messageType, message)
		if err != nil {
			return vto.FrameResult{}, err
		}
		return h.measurementService.ProcessFrame(ctx, sessionID, frame)
	})
}

// handleVideoStream forwards encoded camera frames to the landmark detector.
// Options are fixed for the connection through query parameters.
func (h *MeasurementHandler) handleVideoStream(c *websocket.Conn) {
	sessionID := c.Params("id")
	opts := videoOptions(c)

	h.serveStream(c, "video", func(ctx context.Context, messageType int, message []byte) (vto.FrameResult, error) {
		if messageType != websocket.BinaryMessage {
			return vto.FrameResult{}, measurement.ErrInvalidFrame
		}
		return h.measurementService.ProcessVideoFrame(ctx, sessionID, message, opts)
	})
}

func videoOptions(c *websocket.Conn) vto.FrameOptions {
	width, _ := strconv.Atoi(c.Query("width"))
	height, _ := strconv.Atoi(c.Query("height"))
	classify, _ := strconv.ParseBool(c.Query("classify", "false"))
	tryOn, err := strconv.ParseBool(c.Query("try_on", "true"))
	if err != nil {
		tryOn = true
	}

	return vto.FrameOptions{
		Viewport:      vto.Viewport{Width: width, Height: height},
		ClassifyShape: classify,
		TryOn:         tryOn,
	}
}

func (h *MeasurementHandler) serveStream(c *websocket.Conn, kind string, process frameFunc) {
	sessionID := c.Params("id")
	requestID, _ := c.Locals(middleware.RequestIDKey).(string)

	log := h.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"session_id": sessionID,
		"stream":     kind,
	})
	log.Info("Measurement stream connected")
	defer log.Info("Measurement stream disconnected")

	c.SetPingHandler(func(data string) error {
		if err := c.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(5*time.Second)); err != nil {
			log.Errorf("Error sending pong: %v", err)
		}
		return nil
	})

	baseCtx := contextPkg.WithSessionID(contextPkg.WithRequestID(context.Background(), requestID), sessionID)

	for {
		if err := c.SetReadDeadline(time.Now().Add(streamReadTimeout)); err != nil {
			log.Errorf("Error setting read deadline: %v", err)
			return
		}

		messageType, message, err := c.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Errorf("Stream error: %v", err)
			}
			return
		}

		ctx, cancel := context.WithTimeout(baseCtx, streamFrameTimeout)
		result, err := process(ctx, messageType, message)
		cancel()

		var payload any = result
		if err != nil {
			log.WithField("error", err.Error()).Debug("Frame rejected")
			payload = streamError(err)
		}

		if err := h.writeStream(c, payload); err != nil {
			log.Errorf("Error writing stream response: %v", err)
			return
		}

		// A closed or evicted session cannot recover on this connection.
		if errors.Is(err, measurement.ErrSessionNotFound) {
			return
		}
	}
}

func (h *MeasurementHandler) writeStream(c *websocket.Conn, payload any) error {
	if err := c.SetWriteDeadline(time.Now().Add(streamWriteTimeout)); err != nil {
		return err
	}
	if err := c.WriteJSON(payload); err != nil {
		return err
	}
	return c.SetWriteDeadline(time.Time{})
}

func streamError(err error) measurement.StreamError {
	var respErr *response.Error
	if errors.As(err, &respErr) {
		return measurement.StreamError{Error: err.Error(), Code: respErr.Reason}
	}
	if errors.Is(err, codec.ErrEmptyMessage) || errors.Is(err, codec.ErrUnsupportedMessage) {
		return measurement.StreamError{Error: err.Error(), Code: "INVALID_FRAME"}
	}
	return measurement.StreamError{Error: err.Error(), Code: "DECODE_ERROR"}
}
