package websocketPkg

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"ProjectVTO/pkg/geometry"

	"github.com/gorilla/websocket"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
)

var ErrNotConnected = errors.New("not connected to landmark detector")

// DetectorResult is the reply of the face-mesh detector for one video frame.
type DetectorResult struct {
	Faces       [][]geometry.Point `json:"faces"`
	Width       int                `json:"width"`
	Height      int                `json:"height"`
	InferenceMs float64            `json:"inference_ms"`
	Error       string             `json:"error,omitempty"`
}

type IWebsocket interface {
	DetectLandmarks(ctx context.Context, frame []byte) (*DetectorResult, error)
	IsConnected() bool
	Reconnect() error
	CloseConnections()
}

type Option func(*webSocketClient)

func WithURL(url string) Option {
	return func(c *webSocketClient) {
		c.url = url
	}
}

func WithTimeouts(read, write time.Duration) Option {
	return func(c *webSocketClient) {
		c.readTimeout = read
		c.writeTimeout = write
	}
}

type webSocketClient struct {
	url          string
	conn         *websocket.Conn
	mu           sync.Mutex
	roundTrip    sync.Mutex
	pingInterval time.Duration
	readTimeout  time.Duration
	writeTimeout time.Duration
	json         jsoniter.API
	log          *logrus.Entry
}

func NewDetectorClient(opts ...Option) IWebsocket {
	client := &webSocketClient{
		url:          getDetectorURL(),
		pingInterval: 30 * time.Second,
		readTimeout:  10 * time.Second,
		writeTimeout: 5 * time.Second,
		json:         jsoniter.ConfigCompatibleWithStandardLibrary,
		log:          logrus.WithField("component", "landmark_detector"),
	}
	for _, opt := range opts {
		opt(client)
	}

	go client.connectInBackground()

	return client
}

func (c *webSocketClient) connectInBackground() {
	c.roundTrip.Lock()
	defer c.roundTrip.Unlock()

	if c.IsConnected() {
		return
	}
	if err := c.Reconnect(); err != nil {
		c.log.WithError(err).Warn("Initial connection to landmark detector failed, will retry on demand")
		return
	}
	c.log.WithField("url", c.url).Info("Connected to landmark detector")
}

func (c *webSocketClient) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil
}

func (c *webSocketClient) Reconnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}

	if c.url == "" {
		return errors.New("landmark detector URL not configured")
	}

	dialer := *websocket.DefaultDialer
	dialer.HandshakeTimeout = 10 * time.Second

	conn, _, err := dialer.Dial(c.url, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", c.url, err)
	}

	conn.SetPingHandler(func(appData string) error {
		err := conn.WriteControl(websocket.PongMessage, []byte(appData), time.Now().Add(c.writeTimeout))
		if err != nil {
			c.log.WithError(err).Debug("Error sending pong")
		}
		return nil
	})

	c.conn = conn
	go c.keepAlive(conn)

	return nil
}

func (c *webSocketClient) CloseConnections() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
}

func (c *webSocketClient) keepAlive(conn *websocket.Conn) {
	ticker := time.NewTicker(c.pingInterval)
	defer ticker.Stop()

	for range ticker.C {
		c.mu.Lock()
		if c.conn != conn {
			c.mu.Unlock()
			return
		}

		if err := conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(c.writeTimeout)); err != nil {
			c.log.WithError(err).Warn("Ping failed, marking detector connection as dead")
			c.conn = nil
			conn.Close()
			c.mu.Unlock()
			return
		}

		c.mu.Unlock()
	}
}

func (c *webSocketClient) getConnection() (*websocket.Conn, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return nil, ErrNotConnected
	}
	return c.conn, nil
}

func (c *webSocketClient) drop(conn *websocket.Conn) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == conn {
		c.conn = nil
	}
	conn.Close()
}

// DetectLandmarks sends one encoded video frame and waits for the detector's
// landmark reply. Round trips are serialized over the single connection.
func (c *webSocketClient) DetectLandmarks(ctx context.Context, frame []byte) (*DetectorResult, error) {
	c.roundTrip.Lock()
	defer c.roundTrip.Unlock()

	conn, err := c.getConnection()
	if err != nil {
		if err := c.Reconnect(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrNotConnected, err)
		}
		if conn, err = c.getConnection(); err != nil {
			return nil, err
		}
	}

	writeDeadline := deadline(ctx, c.writeTimeout)
	readDeadline := deadline(ctx, c.readTimeout)

	c.mu.Lock()
	conn.SetWriteDeadline(writeDeadline)
	err = conn.WriteMessage(websocket.BinaryMessage, frame)
	c.mu.Unlock()
	if err != nil {
		c.drop(conn)
		return nil, fmt.Errorf("error sending video frame: %w", err)
	}

	c.log.WithField("bytes", len(frame)).Debug("Sent video frame to landmark detector")

	conn.SetReadDeadline(readDeadline)
	_, message, err := conn.ReadMessage()
	if err != nil {
		c.drop(conn)
		return nil, fmt.Errorf("error reading detector reply: %w", err)
	}
	conn.SetReadDeadline(time.Time{})

	var result DetectorResult
	if err := c.json.Unmarshal(message, &result); err != nil {
		return nil, fmt.Errorf("error unmarshaling detector reply: %w", err)
	}
	if result.Error != "" {
		return nil, fmt.Errorf("landmark detector: %s", result.Error)
	}

	c.log.WithFields(logrus.Fields{
		"faces":        len(result.Faces),
		"inference_ms": result.InferenceMs,
	}).Debug("Received landmarks from detector")

	return &result, nil
}

func deadline(ctx context.Context, timeout time.Duration) time.Time {
	d := time.Now().Add(timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(d) {
		return ctxDeadline
	}
	return d
}

func getDetectorURL() string {
	url := os.Getenv("DETECTOR_WS_URL")
	if url == "" {
		url = "ws://localhost:8000/api/v1/face-mesh/ws"
	}
	return url
}
