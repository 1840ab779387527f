package s3

import (
	"fmt"
	"mime/multipart"
	"net/url"
	"os"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/sirupsen/logrus"
)

type ItfS3 interface {
	UploadFile(file *multipart.FileHeader, prefix string) (string, error)
	PresignUrl(fileUrl string) (string, error)
	DeleteFile(fileUrl string) error
}

type s3Client struct {
	client     *s3.S3
	session    *session.Session
	bucketName string
}

func New() (ItfS3, error) {
	sess, err := newSession()
	if err != nil {
		return nil, err
	}

	return &s3Client{
		client:     s3.New(sess),
		session:    sess,
		bucketName: os.Getenv("AWS_BUCKET_NAME"),
	}, nil
}

// UploadFile stores the file under prefix and returns its public location.
func (s *s3Client) UploadFile(file *multipart.FileHeader, prefix string) (string, error) {
	uploader := s3manager.NewUploader(s.session)

	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer func(src multipart.File) {
		if err := src.Close(); err != nil {
			logrus.WithError(err).Warn("Failed to close uploaded file")
		}
	}(src)

	input := &s3manager.UploadInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(objectKey(prefix, file.Filename, time.Now())),
		Body:   src,
	}
	if contentType := file.Header.Get("Content-Type"); contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	uploadOutput, err := uploader.Upload(input)
	if err != nil {
		return "", err
	}

	return uploadOutput.Location, nil
}

func (s *s3Client) PresignUrl(fileUrl string) (string, error) {
	key, err := KeyFromURL(fileUrl)
	if err != nil {
		return "", err
	}

	_, err = s.client.HeadObject(&s3.HeadObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		return "", fmt.Errorf("file does not exist: %w", err)
	}

	req, _ := s.client.GetObjectRequest(&s3.GetObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(key),
	})

	return req.Presign(15 * time.Minute)
}

func (s *s3Client) DeleteFile(fileUrl string) error {
	key, err := KeyFromURL(fileUrl)
	if err != nil {
		return err
	}

	_, err = s.client.DeleteObject(&s3.DeleteObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(key),
	})

	return err
}

// KeyFromURL extracts the unescaped object key from an S3 object location.
// A bare key is returned as is.
func KeyFromURL(fileUrl string) (string, error) {
	key := fileUrl
	if parts := strings.SplitN(fileUrl, ".com/", 2); len(parts) == 2 {
		key = parts[1]
	}

	decoded, err := url.QueryUnescape(key)
	if err != nil {
		return "", fmt.Errorf("failed to decode S3 key: %w", err)
	}
	return decoded, nil
}

func objectKey(prefix, fileName string, now time.Time) string {
	name := fmt.Sprintf("%d-%s", now.UnixNano(), path.Base(strings.ReplaceAll(fileName, " ", "_")))
	if prefix == "" {
		return name
	}
	return path.Join(prefix, name)
}

func newSession() (*session.Session, error) {
	return session.NewSession(&aws.Config{
		Region: aws.String(os.Getenv("AWS_REGION")),
		Credentials: credentials.NewStaticCredentials(
			os.Getenv("AWS_ACCESS_KEY_ID"),
			os.Getenv("AWS_SECRET_ACCESS_KEY"),
			"",
		),
	})
}
