package services

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"

	"github.com/feedbackdesk/feedbackdesk-backend/internal/config"
)

const cloudinaryFolder = "feedbackdesk"

// Attachments is the process-wide attachment store, set up from main.
var Attachments *AttachmentStore

// AttachmentStore persists feedback attachments. Files go to Cloudinary when
// credentials are configured, otherwise to a local upload directory served
// statically under /uploads.
type AttachmentStore struct {
	dir string
	cld *cloudinary.Cloudinary
}

// InitAttachments configures the global attachment store.
func InitAttachments(cfg *config.Config) error {
	store := &AttachmentStore{dir: cfg.UploadDir}

	if cfg.CloudinaryName != "" && cfg.CloudinaryAPIKey != "" && cfg.CloudinaryAPISecret != "" {
		cld, err := cloudinary.NewFromParams(cfg.CloudinaryName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
		if err != nil {
			return fmt.Errorf("failed to initialize Cloudinary: %w", err)
		}
		store.cld = cld
	} else if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		return fmt.Errorf("failed to create upload directory: %w", err)
	}

	Attachments = store
	return nil
}

// Dir returns the local upload directory.
func (s *AttachmentStore) Dir() string { return s.dir }

// Save stores an uploaded file and returns the path recorded on the feedback
// record: a Cloudinary secure URL, or a /uploads/<name> path on local disk.
func (s *AttachmentStore) Save(ctx context.Context, fileHeader *multipart.FileHeader) (string, error) {
	file, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	if s.cld != nil {
		return s.saveCloudinary(ctx, file, fileHeader.Filename)
	}
	return s.saveLocal(file, fileHeader.Filename)
}

func (s *AttachmentStore) saveCloudinary(ctx context.Context, file multipart.File, filename string) (string, error) {
	publicID := strings.TrimSuffix(uuid.NewString(), filepath.Ext(filename))

	result, err := s.cld.Upload.Upload(ctx, file, uploader.UploadParams{
		Folder:       cloudinaryFolder,
		PublicID:     publicID,
		ResourceType: "auto",
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to Cloudinary: %w", err)
	}
	return result.SecureURL, nil
}

func (s *AttachmentStore) saveLocal(file multipart.File, filename string) (string, error) {
	name := uuid.NewString() + filepath.Ext(filename)

	dst, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		os.Remove(dst.Name())
		return "", err
	}
	return "/uploads/" + name, nil
}

// Remove deletes a stored attachment. Callers treat failures as best-effort.
func (s *AttachmentStore) Remove(ctx context.Context, storedPath string) error {
	if strings.HasPrefix(storedPath, "http://") || strings.HasPrefix(storedPath, "https://") {
		if s.cld == nil {
			return nil
		}
		base := path.Base(storedPath)
		publicID := cloudinaryFolder + "/" + strings.TrimSuffix(base, path.Ext(base))
		_, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
		return err
	}

	// Local paths look like /uploads/<name>; never follow anything outside
	// the upload directory.
	name := filepath.Base(storedPath)
	if name == "." || name == "/" {
		return nil
	}
	return os.Remove(filepath.Join(s.dir, name))
}
