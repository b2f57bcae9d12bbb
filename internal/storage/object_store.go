// Package storage retains the original uploaded import files so a batch
// can be audited or re-imported later.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/agridash/dealer-insights/internal/models"
)

// ObjectStore is the object-storage collaborator contract.
type ObjectStore interface {
	Upload(name string, content []byte) (models.FileRef, error)
	List() ([]models.FileRef, error)
	Delete(publicID string) error
}

// LocalObjectStore keeps uploaded files on the local filesystem, one
// content file plus a JSON metadata sidecar per upload, keyed by a
// generated public ID.
type LocalObjectStore struct {
	baseDir string
	logger  *zap.Logger
}

// NewLocalObjectStore creates the store, making the base directory.
func NewLocalObjectStore(baseDir string, logger *zap.Logger) (*LocalObjectStore, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &LocalObjectStore{baseDir: baseDir, logger: logger}, nil
}

type fileMeta struct {
	PublicID   string    `json:"publicId"`
	Name       string    `json:"name"`
	Size       int64     `json:"size"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// Upload stores the file content and returns its reference.
func (s *LocalObjectStore) Upload(name string, content []byte) (models.FileRef, error) {
	publicID := uuid.NewString()

	contentPath := s.contentPath(publicID)
	if err := s.validatePath(contentPath); err != nil {
		return models.FileRef{}, err
	}
	if err := os.WriteFile(contentPath, content, 0644); err != nil {
		s.logger.Error("Failed to write uploaded file", zap.String("public_id", publicID), zap.Error(err))
		return models.FileRef{}, fmt.Errorf("failed to write file: %w", err)
	}

	meta := fileMeta{
		PublicID:   publicID,
		Name:       filepath.Base(name),
		Size:       int64(len(content)),
		UploadedAt: time.Now().UTC(),
	}
	data, err := json.Marshal(meta)
	if err != nil {
		return models.FileRef{}, fmt.Errorf("failed to encode file metadata: %w", err)
	}
	if err := os.WriteFile(s.metaPath(publicID), data, 0644); err != nil {
		_ = os.Remove(contentPath)
		return models.FileRef{}, fmt.Errorf("failed to write file metadata: %w", err)
	}

	s.logger.Info("Original file retained",
		zap.String("public_id", publicID),
		zap.String("name", meta.Name),
		zap.Int64("size", meta.Size))
	return s.ref(meta), nil
}

// List enumerates retained files, newest first.
func (s *LocalObjectStore) List() ([]models.FileRef, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload directory: %w", err)
	}

	var refs []models.FileRef
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.baseDir, entry.Name()))
		if err != nil {
			continue
		}
		var meta fileMeta
		if err := json.Unmarshal(data, &meta); err != nil {
			s.logger.Warn("Skipping unreadable file metadata", zap.String("file", entry.Name()))
			continue
		}
		refs = append(refs, s.ref(meta))
	}

	sort.Slice(refs, func(i, j int) bool {
		return refs[i].UploadedAt.After(refs[j].UploadedAt)
	})
	return refs, nil
}

// Delete removes a retained file and its metadata.
func (s *LocalObjectStore) Delete(publicID string) error {
	metaPath := s.metaPath(publicID)
	if err := s.validatePath(metaPath); err != nil {
		return err
	}
	if _, err := os.Stat(metaPath); os.IsNotExist(err) {
		return fmt.Errorf("file not found: %s", publicID)
	}
	if err := os.Remove(s.contentPath(publicID)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file content: %w", err)
	}
	if err := os.Remove(metaPath); err != nil {
		return fmt.Errorf("failed to delete file metadata: %w", err)
	}
	s.logger.Info("Retained file deleted", zap.String("public_id", publicID))
	return nil
}

func (s *LocalObjectStore) contentPath(publicID string) string {
	return filepath.Join(s.baseDir, publicID+".bin")
}

func (s *LocalObjectStore) metaPath(publicID string) string {
	return filepath.Join(s.baseDir, publicID+".json")
}

func (s *LocalObjectStore) ref(meta fileMeta) models.FileRef {
	return models.FileRef{
		PublicID:   meta.PublicID,
		Name:       meta.Name,
		URL:        s.contentPath(meta.PublicID),
		Size:       meta.Size,
		UploadedAt: meta.UploadedAt,
	}
}

// validatePath guards against IDs that escape the base directory.
func (s *LocalObjectStore) validatePath(fullPath string) error {
	absPath, err := filepath.Abs(fullPath)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}
	absBase, err := filepath.Abs(s.baseDir)
	if err != nil {
		return fmt.Errorf("failed to resolve base path: %w", err)
	}
	if !strings.HasPrefix(absPath, absBase+string(filepath.Separator)) {
		return fmt.Errorf("path escapes upload directory: %s", fullPath)
	}
	return nil
}
