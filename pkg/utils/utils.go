package utils

import (
	"bytes"
	"crypto/rand"
	"errors"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"mime/multipart"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	ErrNoFile          = errors.New("no file uploaded")
	ErrFileTooLarge    = errors.New("file size exceeds limit")
	ErrNotAnImage      = errors.New("uploaded file is not an image")
	ErrEmptyFrame      = errors.New("empty video frame")
	ErrFrameTooLarge   = errors.New("video frame exceeds limit")
	ErrUnknownEncoding = errors.New("video frame is not a jpeg or png image")
)

type IUtils interface {
	NewULIDFromTimestamp(t time.Time) (string, error)
	ValidateImageFile(file *multipart.FileHeader) error
	FrameDimensions(frame []byte) (width, height int, err error)
}

type utils struct {
	maxFileSize  int64
	maxFrameSize int
}

func New() IUtils {
	return &utils{
		maxFileSize:  5 * 1024 * 1024,
		maxFrameSize: 2 * 1024 * 1024,
	}
}

func (u *utils) NewULIDFromTimestamp(t time.Time) (string, error) {
	ms := ulid.Timestamp(t)
	entropy := ulid.Monotonic(rand.Reader, 0)

	id, err := ulid.New(ms, entropy)
	if err != nil {
		return "", err
	}

	return id.String(), nil
}

func (u *utils) ValidateImageFile(file *multipart.FileHeader) error {
	if file == nil {
		return ErrNoFile
	}

	if file.Size > u.maxFileSize {
		return ErrFileTooLarge
	}

	contentType := file.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		return ErrNotAnImage
	}

	return nil
}

// FrameDimensions reads the pixel size of an encoded video frame without
// decoding the whole image.
func (u *utils) FrameDimensions(frame []byte) (int, int, error) {
	if len(frame) == 0 {
		return 0, 0, ErrEmptyFrame
	}
	if len(frame) > u.maxFrameSize {
		return 0, 0, ErrFrameTooLarge
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(frame))
	if err != nil || (format != "jpeg" && format != "png") {
		return 0, 0, ErrUnknownEncoding
	}

	return cfg.Width, cfg.Height, nil
}
