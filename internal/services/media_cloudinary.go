package services

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/cloudinary/cloudinary-go/v2/asset"
)

// CloudinaryMediaStore uploads media to Cloudinary. Keys are public ids,
// prefixed with the resource type for anything that is not an image.
type CloudinaryMediaStore struct {
	cld    *cloudinary.Cloudinary
	folder string
}

func NewCloudinaryMediaStore(cloudName, apiKey, apiSecret, folder string) (*CloudinaryMediaStore, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Cloudinary: %w", err)
	}
	cld.Config.URL.Secure = true
	return &CloudinaryMediaStore{cld: cld, folder: folder}, nil
}

func (s *CloudinaryMediaStore) Save(ctx context.Context, name string, r io.Reader, _ int64, contentType string) (string, error) {
	resourceType := cloudinaryResourceType(contentType)
	publicID := name
	if resourceType != "raw" {
		publicID = strings.TrimSuffix(name, path.Ext(name))
	}
	res, err := s.cld.Upload.Upload(ctx, r, uploader.UploadParams{
		PublicID:     publicID,
		Folder:       s.folder,
		ResourceType: resourceType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to Cloudinary: %w", err)
	}
	if res.Error.Message != "" {
		return "", fmt.Errorf("cloudinary upload rejected: %s", res.Error.Message)
	}
	if res.ResourceType != "" {
		resourceType = res.ResourceType
	}
	return cloudinaryKey(resourceType, res.PublicID), nil
}

func (s *CloudinaryMediaStore) Remove(ctx context.Context, key string) error {
	resourceType, publicID := splitCloudinaryKey(key)
	res, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID, ResourceType: resourceType})
	if err != nil {
		return fmt.Errorf("failed to delete from Cloudinary: %w", err)
	}
	if res.Error.Message != "" {
		return fmt.Errorf("cloudinary destroy rejected: %s", res.Error.Message)
	}
	// Result is "ok" or "not found"; both leave nothing behind.
	return nil
}

func (s *CloudinaryMediaStore) URL(key string) string {
	if isAbsoluteURL(key) {
		return key
	}
	resourceType, publicID := splitCloudinaryKey(key)
	var (
		a   *asset.Asset
		err error
	)
	switch resourceType {
	case "video":
		a, err = s.cld.Video(publicID)
	case "raw":
		a, err = s.cld.File(publicID)
	default:
		a, err = s.cld.Image(publicID)
	}
	if err != nil {
		return ""
	}
	u, err := a.String()
	if err != nil {
		return ""
	}
	return u
}

// cloudinaryResourceType maps a sniffed MIME type to a Cloudinary resource type.
// Unknown types upload as "auto" and Cloudinary decides.
func cloudinaryResourceType(contentType string) string {
	switch {
	case contentType == "":
		return "auto"
	case strings.HasPrefix(contentType, "image/"):
		return "image"
	case strings.HasPrefix(contentType, "video/"), strings.HasPrefix(contentType, "audio/"):
		return "video"
	default:
		return "raw"
	}
}

// Image keys are bare public ids. Other resource types are stored as
// "<type>:<public id>" so Remove and URL address the right resource.
func cloudinaryKey(resourceType, publicID string) string {
	if resourceType == "" || resourceType == "image" {
		return publicID
	}
	return resourceType + ":" + publicID
}

func splitCloudinaryKey(key string) (resourceType, publicID string) {
	if t, id, ok := strings.Cut(key, ":"); ok && (t == "video" || t == "raw") {
		return t, id
	}
	return "image", key
}
