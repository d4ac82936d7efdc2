package cloudinary

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// Service handles Cloudinary upload operations
type Service struct {
	cld          *cloudinary.Cloudinary
	uploadFolder string
}

// NewService creates a new Cloudinary service instance
func NewService(cloudName, apiKey, apiSecret, uploadFolder string) (*Service, error) {
	if cloudName == "" || apiKey == "" || apiSecret == "" {
		return nil, errors.New("cloudinary credentials are required")
	}

	cloudinaryURL := fmt.Sprintf("cloudinary://%s:%s@%s", apiKey, apiSecret, cloudName)

	cld, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloudinary client: %w", err)
	}

	if uploadFolder == "" {
		uploadFolder = "civicguard"
	}

	return &Service{
		cld:          cld,
		uploadFolder: uploadFolder,
	}, nil
}

// UploadImage uploads photo bytes under objectPath and returns the secure URL.
// The bytes travel base64-encoded as a data URI.
func (s *Service) UploadImage(ctx context.Context, objectPath string, data []byte, contentType string) (string, error) {
	folder, publicID := splitPath(s.uploadFolder, objectPath)

	uploadParams := uploader.UploadParams{
		Folder:         folder,
		PublicID:       publicID,
		ResourceType:   "image",
		Overwrite:      api.Bool(false),
		UniqueFilename: api.Bool(false),
	}

	result, err := s.cld.Upload.Upload(ctx, DataURI(contentType, data), uploadParams)
	if err != nil {
		return "", fmt.Errorf("failed to upload image: %w", err)
	}
	if result.Error.Message != "" {
		return "", fmt.Errorf("failed to upload image: %s", result.Error.Message)
	}

	return result.SecureURL, nil
}

// Ping checks the credentials against the Admin API.
func (s *Service) Ping(ctx context.Context) error {
	_, err := s.cld.Admin.Ping(ctx)
	return err
}

// DataURI encodes data as a base64 data URI.
func DataURI(contentType string, data []byte) string {
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// splitPath turns "reports/123-photo.png" under root "civicguard" into folder
// "civicguard/reports" and public id "123-photo". Cloudinary adds the extension.
func splitPath(root, objectPath string) (string, string) {
	dir, file := path.Split(strings.TrimPrefix(objectPath, "/"))
	folder := strings.TrimSuffix(path.Join(root, dir), "/")
	return folder, strings.TrimSuffix(file, path.Ext(file))
}
