package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strconv"
	"strings"

	"github.com/ds124wfegd/learnlink/internal/entity"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	ThumbnailWidth  = 480
	ThumbnailHeight = 270
)

// CoverStorage keeps an original course cover plus a 16:9 thumbnail.
type CoverStorage struct {
	files     FileStorage
	publicURL string
	maxUpload int64
}

func NewCoverStorage(files FileStorage, publicURL string, maxUpload int64) *CoverStorage {
	return &CoverStorage{
		files:     files,
		publicURL: strings.TrimRight(publicURL, "/"),
		maxUpload: maxUpload,
	}
}

// SaveCover stores the image and returns the public URL of its thumbnail.
func (s *CoverStorage) SaveCover(ctx context.Context, courseID int64, filename string, image io.Reader) (string, error) {
	format, err := imaging.FormatFromFilename(filename)
	if err != nil || (format != imaging.JPEG && format != imaging.PNG) {
		return "", entity.ErrUnsupportedImage
	}

	data, err := io.ReadAll(io.LimitReader(image, s.maxUpload+1))
	if err != nil {
		return "", fmt.Errorf("failed to read upload: %w", err)
	}
	if int64(len(data)) > s.maxUpload {
		return "", entity.Invalidf("cover exceeds %d bytes", s.maxUpload)
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return "", entity.ErrUnsupportedImage
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	ext := ".jpg"
	if format == imaging.PNG {
		ext = ".png"
	}
	dir := path.Join("covers", strconv.FormatInt(courseID, 10))
	name := uuid.NewString()
	originalPath := path.Join(dir, name+ext)
	thumbPath := path.Join(dir, name+"_thumb"+ext)

	if err := s.files.Save(originalPath, bytes.NewReader(data)); err != nil {
		return "", fmt.Errorf("failed to save cover: %w", err)
	}

	var buf bytes.Buffer
	thumb := imaging.Fill(img, ThumbnailWidth, ThumbnailHeight, imaging.Center, imaging.Lanczos)
	if err := imaging.Encode(&buf, thumb, format); err != nil {
		s.cleanup(originalPath)
		return "", fmt.Errorf("failed to encode thumbnail: %w", err)
	}
	if err := s.files.Save(thumbPath, &buf); err != nil {
		s.cleanup(originalPath)
		return "", fmt.Errorf("failed to save thumbnail: %w", err)
	}

	return s.publicURL + "/" + thumbPath, nil
}

func (s *CoverStorage) cleanup(p string) {
	if err := s.files.Delete(p); err != nil {
		logrus.WithError(err).WithField("path", p).Warn("Failed to remove orphaned cover")
	}
}
