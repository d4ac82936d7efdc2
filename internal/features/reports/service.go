package reports

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/h2non/filetype"
	"github.com/sirupsen/logrus"

	"github.com/muhammedshamil8/CivicGuard/internal/pkg/notify"
	apperrors "github.com/muhammedshamil8/CivicGuard/pkg/errors"
)

// ImageUploader stores a photo and returns its public URL.
type ImageUploader interface {
	UploadImage(ctx context.Context, path string, data []byte, contentType string) (string, error)
}

// Notifier announces a new report. Every outcome is best-effort.
type Notifier interface {
	NewReportSubmitted(ctx context.Context) []notify.Result
}

// Image is an uploaded photo as received from the client.
type Image struct {
	Filename string
	Reader   io.Reader
}

type SubmitInput struct {
	Location      string
	Description   string
	WalletAddress string
	Category      Category
	Image         *Image
}

type SubmitResult struct {
	Report        *Report         `json:"report"`
	Notifications []notify.Result `json:"notifications"`
}

type Options struct {
	DefaultWalletAddress string
	MaxImageBytes        int64
	NotifyTimeout        time.Duration
}

type Service struct {
	store    Store
	uploader ImageUploader
	notifier Notifier
	opts     Options
	log      logrus.FieldLogger
	now      func() time.Time
}

func NewService(store Store, uploader ImageUploader, notifier Notifier, opts Options, log logrus.FieldLogger) *Service {
	if opts.MaxImageBytes <= 0 {
		opts.MaxImageBytes = 10 << 20
	}
	if opts.NotifyTimeout <= 0 {
		opts.NotifyTimeout = 30 * time.Second
	}
	return &Service{
		store:    store,
		uploader: uploader,
		notifier: notifier,
		opts:     opts,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Submit validates, uploads the photo if any, stores the report as pending,
// then notifies the relay. Notification failures never fail the submission.
func (s *Service) Submit(ctx context.Context, in SubmitInput) (*SubmitResult, error) {
	location := strings.TrimSpace(in.Location)
	description := strings.TrimSpace(in.Description)
	if location == "" || description == "" {
		return nil, apperrors.Validation("location and description are required")
	}
	if !in.Category.Valid() {
		return nil, apperrors.Validation("category must be dealer or user")
	}

	wallet := strings.TrimSpace(in.WalletAddress)
	if wallet == "" {
		wallet = s.opts.DefaultWalletAddress
	}

	now := s.now()
	report := &Report{
		WalletAddress: wallet,
		Location:      location,
		Description:   description,
		Status:        StatusPending,
		Category:      in.Category,
		CreatedAt:     now,
	}

	if in.Image != nil {
		url, err := s.uploadImage(ctx, in.Image, now)
		if err != nil {
			return nil, err
		}
		report.ImageURL = url
	}

	if err := s.store.Create(ctx, report); err != nil {
		return nil, WrapStoreError("Failed to submit report", err)
	}

	log := s.log.WithField("report_id", report.ID.Hex())
	log.Info("report submitted")

	var results []notify.Result
	if s.notifier != nil {
		nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.opts.NotifyTimeout)
		results = s.notifier.NewReportSubmitted(nctx)
		cancel()
		for _, r := range results {
			if r.Attempted && !r.OK {
				log.WithField("channel", r.Channel).WithError(r.Err).Warn("notification not delivered")
			}
		}
	}

	return &SubmitResult{Report: report, Notifications: results}, nil
}

// ListByWallet returns one submitter's reports, newest first.
func (s *Service) ListByWallet(ctx context.Context, wallet string) ([]Report, error) {
	wallet = strings.TrimSpace(wallet)
	if wallet == "" {
		wallet = s.opts.DefaultWalletAddress
	}
	reports, err := s.store.List(ctx, ListFilter{WalletAddress: wallet})
	if err != nil {
		return nil, WrapStoreError("Failed to fetch reports", err)
	}
	return reports, nil
}

func (s *Service) uploadImage(ctx context.Context, img *Image, now time.Time) (string, error) {
	if s.uploader == nil {
		return "", apperrors.Upload("Image storage is not configured", nil)
	}

	data, err := io.ReadAll(io.LimitReader(img.Reader, s.opts.MaxImageBytes+1))
	if err != nil {
		return "", apperrors.Upload("Failed to read image", err)
	}
	if len(data) == 0 {
		return "", apperrors.Validation("image is empty")
	}
	if int64(len(data)) > s.opts.MaxImageBytes {
		return "", apperrors.Validation(fmt.Sprintf("image exceeds %d MB", s.opts.MaxImageBytes>>20))
	}

	kind, err := filetype.Match(data)
	if err != nil || !filetype.IsImage(data) {
		return "", apperrors.Validation("file is not a supported image")
	}

	data, err = stripMetadata(data, kind)
	if err != nil {
		return "", apperrors.Validation("image could not be decoded")
	}

	path := fmt.Sprintf("reports/%d-%s", now.UnixMilli(), sanitizeFilename(img.Filename, kind.Extension))
	url, err := s.uploader.UploadImage(ctx, path, data, kind.MIME.Value)
	if err != nil {
		s.log.WithError(err).WithField("path", path).Error("image upload failed")
		return "", apperrors.Upload("Failed to upload image", err)
	}
	return url, nil
}

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

func sanitizeFilename(name, ext string) string {
	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	base = unsafeFilenameChars.ReplaceAllString(base, "_")
	base = strings.Trim(base, "._")
	if base == "" {
		base = "photo"
	}
	if filepath.Ext(base) == "" && ext != "" {
		base += "." + ext
	}
	if len(base) > 100 {
		base = base[len(base)-100:]
	}
	return base
}

// WrapStoreError keeps typed errors (NotFound) and wraps anything else as a store failure.
func WrapStoreError(message string, err error) error {
	if apperrors.KindOf(err) != "" {
		return err
	}
	return apperrors.Store(message, err)
}

// BytesImage wraps photo bytes already held in memory.
func BytesImage(filename string, data []byte) *Image {
	return &Image{Filename: filename, Reader: bytes.NewReader(data)}
}
