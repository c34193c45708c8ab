package service

import (
	"archive/zip"
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tdnguyen-dev/classroom-go-api/internal/dto"
	"github.com/tdnguyen-dev/classroom-go-api/internal/models"
	"github.com/tdnguyen-dev/classroom-go-api/internal/observability"
	"github.com/tdnguyen-dev/classroom-go-api/internal/repository"
)

var (
	// ErrUploadTooLarge indicates the payload exceeded the configured limit.
	ErrUploadTooLarge = errors.New("file exceeds maximum allowed size")
	// ErrUploadTypeNotAllowed indicates the file extension is not permitted.
	ErrUploadTypeNotAllowed = errors.New("file type not allowed")
	// ErrUploadMimeMismatch indicates the sniffed content type contradicts
	// the file extension.
	ErrUploadMimeMismatch = errors.New("file content does not match extension")
	// ErrUploadScanFailed indicates validation of the file failed.
	ErrUploadScanFailed = errors.New("file scanning failed")
)

// FileStorage abstracts upload destinations.
type FileStorage interface {
	Upload(ctx context.Context, name string, reader io.Reader) (string, error)
}

// UploadService validates and stores submission files.
type UploadService interface {
	Upload(ctx context.Context, file *multipart.FileHeader, userID *uint) (dto.UploadResponse, error)
}

type uploadService struct {
	storage     FileStorage
	repo        repository.UploadRepository
	allowedExts map[string]struct{}
	maxSize     int64
	logger      zerolog.Logger
	tracer      trace.Tracer
	now         func() time.Time
}

// NewUploadService constructs an upload service. Extensions are matched
// case-insensitively without the leading dot.
func NewUploadService(storage FileStorage, repo repository.UploadRepository, maxSizeMB int, allowedExts []string, logger zerolog.Logger) UploadService {
	if maxSizeMB <= 0 {
		maxSizeMB = 10
	}

	exts := make(map[string]struct{}, len(allowedExts))
	for _, ext := range allowedExts {
		normalized := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(ext, ".")))
		if normalized != "" {
			exts[normalized] = struct{}{}
		}
	}

	return &uploadService{
		storage:     storage,
		repo:        repo,
		allowedExts: exts,
		maxSize:     int64(maxSizeMB) * 1024 * 1024,
		logger:      logger.With().Str("component", "upload_service").Logger(),
		tracer:      otel.Tracer("github.com/tdnguyen-dev/classroom-go-api/internal/service/upload"),
		now:         time.Now,
	}
}

func (s *uploadService) Upload(ctx context.Context, file *multipart.FileHeader, userID *uint) (dto.UploadResponse, error) {
	ctx, span := s.tracer.Start(ctx, "upload.store")
	defer span.End()

	span.SetAttributes(attribute.Int64("upload.max_bytes", s.maxSize))

	start := s.now()
	defer func() {
		observability.UploadLatency().Observe(time.Since(start).Seconds())
	}()

	if file == nil {
		err := errors.New("file is required")
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation failed")
		return dto.UploadResponse{}, err
	}

	span.SetAttributes(
		attribute.String("upload.original_name", strings.TrimSpace(file.Filename)),
		attribute.Int64("upload.request_size", file.Size),
	)

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(file.Filename), "."))
	if _, ok := s.allowedExts[ext]; !ok {
		observability.UploadRejected().WithLabelValues("extension").Inc()
		span.SetStatus(codes.Error, "extension not allowed")
		return dto.UploadResponse{}, ErrUploadTypeNotAllowed
	}

	if file.Size > s.maxSize {
		observability.UploadRejected().WithLabelValues("size").Inc()
		span.SetStatus(codes.Error, "payload too large")
		return dto.UploadResponse{}, ErrUploadTooLarge
	}

	handle, err := file.Open()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "open failed")
		return dto.UploadResponse{}, err
	}
	defer handle.Close()

	buf := bytes.NewBuffer(nil)
	if _, err := io.Copy(buf, io.LimitReader(handle, s.maxSize+1)); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "read failed")
		return dto.UploadResponse{}, err
	}
	if int64(buf.Len()) > s.maxSize {
		observability.UploadRejected().WithLabelValues("size").Inc()
		span.SetStatus(codes.Error, "payload too large")
		return dto.UploadResponse{}, ErrUploadTooLarge
	}

	detected := mimetype.Detect(buf.Bytes())
	span.SetAttributes(attribute.String("upload.detected_mime", detected.String()))
	if !mimeMatchesExtension(detected, ext) {
		observability.UploadRejected().WithLabelValues("mime").Inc()
		span.SetStatus(codes.Error, "mime mismatch")
		return dto.UploadResponse{}, ErrUploadMimeMismatch
	}

	if err := s.scan(buf.Bytes(), ext); err != nil {
		observability.UploadRejected().WithLabelValues("scan").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "scan failed")
		return dto.UploadResponse{}, err
	}

	checksum := sha256.Sum256(buf.Bytes())
	sanitizedName := sanitizeFileName(file.Filename)
	span.SetAttributes(
		attribute.String("upload.sanitized_name", sanitizedName),
		attribute.Int64("upload.size_bytes", int64(buf.Len())),
	)

	url, err := s.storage.Upload(ctx, sanitizedName, bytes.NewReader(buf.Bytes()))
	if err != nil {
		observability.UploadRejected().WithLabelValues("storage").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "storage failed")
		return dto.UploadResponse{}, err
	}

	record := models.UploadRecord{
		UserID:    userID,
		FileName:  sanitizedName,
		URL:       url,
		MimeType:  detected.String(),
		SizeBytes: int64(buf.Len()),
		Checksum:  hex.EncodeToString(checksum[:]),
	}

	if err := s.repo.Create(ctx, &record); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "persistence failed")
		return dto.UploadResponse{}, err
	}

	observability.UploadRequests().WithLabelValues(ext).Inc()
	span.SetStatus(codes.Ok, "stored")

	return dto.UploadResponse{
		URL:       record.URL,
		FileName:  record.FileName,
		MimeType:  record.MimeType,
		SizeBytes: record.SizeBytes,
		Checksum:  record.Checksum,
		CreatedAt: record.CreatedAt,
	}, nil
}

// scan rejects zip bombs: the declared uncompressed size of an archive may
// not exceed twenty times the upload limit.
func (s *uploadService) scan(payload []byte, ext string) error {
	if ext != "zip" {
		return nil
	}

	reader, err := zip.NewReader(bytes.NewReader(payload), int64(len(payload)))
	if err != nil {
		return ErrUploadScanFailed
	}

	var totalUncompressed uint64
	for _, f := range reader.File {
		totalUncompressed += f.UncompressedSize64
		if totalUncompressed > uint64(s.maxSize*20) {
			return fmt.Errorf("zip archive uncompressed size too large: %w", ErrUploadScanFailed)
		}
	}
	return nil
}

// mimeMatchesExtension cross-checks the sniffed content type against the
// claimed extension. Plain-text formats share a family, so txt accepts any
// text/* detection.
func mimeMatchesExtension(detected *mimetype.MIME, ext string) bool {
	switch ext {
	case "pdf":
		return detected.Is("application/pdf")
	case "zip":
		return detected.Is("application/zip") || detected.Is("application/x-zip-compressed")
	case "doc":
		return detected.Is("application/msword") || detected.Is("application/x-ole-storage")
	case "docx":
		return detected.Is("application/vnd.openxmlformats-officedocument.wordprocessingml.document") ||
			detected.Is("application/zip")
	case "txt":
		return strings.HasPrefix(detected.String(), "text/")
	default:
		return false
	}
}

func sanitizeFileName(name string) string {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	base = strings.ToLower(base)
	base = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			return r
		}
		if r == '-' || r == '_' {
			return r
		}
		return '-'
	}, base)
	base = strings.Trim(base, "-")
	if base == "" {
		base = fmt.Sprintf("upload-%d", time.Now().Unix())
	}
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		ext = ".bin"
	}
	return base + ext
}
