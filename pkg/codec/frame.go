package codec

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"

	"ProjectVTO/pkg/geometry"
	"ProjectVTO/pkg/vto"

	"github.com/gorilla/websocket"
	jsoniter "github.com/json-iterator/go"
	"github.com/vmihailenco/msgpack/v5"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const maxRecordingLine = 4 * 1024 * 1024

var (
	ErrEmptyMessage       = errors.New("empty message")
	ErrUnsupportedMessage = errors.New("unsupported message type")
)

// LandmarkFrame is one frame of a landmark stream: the faces the detector
// found plus the options the host wants applied.
type LandmarkFrame struct {
	Faces         [][]geometry.Point `json:"faces" msgpack:"faces"`
	Viewport      vto.Viewport       `json:"viewport" msgpack:"viewport"`
	ClassifyShape bool               `json:"classify_shape" msgpack:"classify_shape"`
	TryOn         *bool              `json:"try_on,omitempty" msgpack:"try_on,omitempty"`
	TimestampMs   int64              `json:"t,omitempty" msgpack:"t,omitempty"`
}

// PrimaryFace returns the first detected face, or nil when the frame has no
// face.
func (f LandmarkFrame) PrimaryFace() (*vto.FrameLandmarks, error) {
	if len(f.Faces) == 0 || len(f.Faces[0]) == 0 {
		return nil, nil
	}
	return vto.NewFrameLandmarks(f.Faces[0])
}

// Options resolves the per-frame options. Try-on defaults to enabled.
func (f LandmarkFrame) Options() vto.FrameOptions {
	tryOn := true
	if f.TryOn != nil {
		tryOn = *f.TryOn
	}
	return vto.FrameOptions{
		Viewport:      f.Viewport,
		ClassifyShape: f.ClassifyShape,
		TryOn:         tryOn,
	}
}

func DecodeJSON(data []byte) (LandmarkFrame, error) {
	var f LandmarkFrame
	if len(bytes.TrimSpace(data)) == 0 {
		return f, ErrEmptyMessage
	}
	if err := json.Unmarshal(data, &f); err != nil {
		return f, fmt.Errorf("decode json frame: %w", err)
	}
	return f, nil
}

func DecodeMsgpack(data []byte) (LandmarkFrame, error) {
	var f LandmarkFrame
	if len(data) == 0 {
		return f, ErrEmptyMessage
	}
	if err := msgpack.Unmarshal(data, &f); err != nil {
		return f, fmt.Errorf("decode msgpack frame: %w", err)
	}
	return f, nil
}

// Decode picks the codec from the websocket message type: text frames carry
// JSON, binary frames carry msgpack.
func Decode(messageType int, data []byte) (LandmarkFrame, error) {
	switch messageType {
	case websocket.TextMessage:
		return DecodeJSON(data)
	case websocket.BinaryMessage:
		return DecodeMsgpack(data)
	default:
		return LandmarkFrame{}, fmt.Errorf("%w: %d", ErrUnsupportedMessage, messageType)
	}
}

func EncodeJSON(v any) ([]byte, error) {
	return json.Marshal(v)
}

func EncodeMsgpack(v any) ([]byte, error) {
	return msgpack.Marshal(v)
}

// ReadRecording parses a JSON-lines recording, one LandmarkFrame per line.
// Blank lines are skipped.
func ReadRecording(r io.Reader) ([]LandmarkFrame, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxRecordingLine)

	var frames []LandmarkFrame
	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(bytes.TrimSpace(raw)) == 0 {
			continue
		}

		f, err := DecodeJSON(raw)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		frames = append(frames, f)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read recording: %w", err)
	}

	return frames, nil
}
