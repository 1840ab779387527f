package websocketPkg

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func newFakeDetector(t *testing.T, reply func(frame []byte) string) *httptest.Server {
	t.Helper()

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, []byte(reply(msg))); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)

	return srv
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestDetectLandmarks(t *testing.T) {
	srv := newFakeDetector(t, func(frame []byte) string {
		if string(frame) != "jpeg-bytes" {
			return `{"error":"unexpected frame"}`
		}
		return `{"faces":[[{"x":0.1,"y":0.2,"z":-0.01}]],"width":640,"height":480,"inference_ms":4.5}`
	})

	client := NewDetectorClient(WithURL(wsURL(srv)), WithTimeouts(2*time.Second, 2*time.Second))
	defer client.CloseConnections()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	res, err := client.DetectLandmarks(ctx, []byte("jpeg-bytes"))
	if err != nil {
		t.Fatalf("DetectLandmarks() error = %v", err)
	}
	if len(res.Faces) != 1 || res.Faces[0][0].Y != 0.2 {
		t.Errorf("DetectLandmarks() faces = %+v", res.Faces)
	}
	if res.Width != 640 || res.Height != 480 {
		t.Errorf("DetectLandmarks() size = %dx%d, want 640x480", res.Width, res.Height)
	}
	if !client.IsConnected() {
		t.Error("client should stay connected after a round trip")
	}
}

func TestDetectLandmarksDetectorError(t *testing.T) {
	srv := newFakeDetector(t, func([]byte) string {
		return `{"error":"model not loaded"}`
	})

	client := NewDetectorClient(WithURL(wsURL(srv)))
	defer client.CloseConnections()

	_, err := client.DetectLandmarks(context.Background(), []byte("frame"))
	if err == nil || !strings.Contains(err.Error(), "model not loaded") {
		t.Errorf("DetectLandmarks() error = %v, want detector error", err)
	}
}

func TestDetectLandmarksUnreachable(t *testing.T) {
	client := NewDetectorClient(WithURL("ws://127.0.0.1:1/unreachable"))
	defer client.CloseConnections()

	_, err := client.DetectLandmarks(context.Background(), []byte("frame"))
	if !errors.Is(err, ErrNotConnected) {
		t.Errorf("DetectLandmarks() error = %v, want ErrNotConnected", err)
	}
}
