package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/kkarhua/fullrest-backend/pkg/db/models"
	pkgerrors "github.com/kkarhua/fullrest-backend/pkg/errors"
	"github.com/kkarhua/fullrest-backend/pkg/logger"
	"github.com/kkarhua/fullrest-backend/pkg/storage/local"
	"go.uber.org/multierr"
	"gorm.io/gorm"
)

const (
	DefaultDownloadPath = "/api/imagenes/"

	msgProductNotFound = "product not found"
	msgImageNotFound   = "image not found"

	maxNameAttempts = 16
)

// UploadDTO describes a stored product image.
type UploadDTO struct {
	FileName    string `json:"fileName"`
	DownloadURI string `json:"fileDownloadUri"`
	FileType    string `json:"fileType"`
	Size        int64  `json:"size"`
}

// Service manages product images on top of the blob store.
type Service interface {
	Upload(ctx context.Context, productID int64, originalName string, r io.Reader) (*UploadDTO, error)
	Open(ctx context.Context, name string) (*os.File, error)
	Delete(ctx context.Context, productID int64) error
}

type repository interface {
	FindProduct(ctx context.Context, id int64) (*models.Product, error)
	SetImage(ctx context.Context, id int64, name *string) error
}

type blobStore interface {
	Put(ctx context.Context, name string, r io.Reader) (int64, error)
	Open(name string) (*os.File, error)
	Delete(name string) error
}

type ServiceParams struct {
	Repo         repository
	Store        blobStore
	MaxBytes     int64
	DownloadPath string
	Logger       *logger.Logger
	Now          func() time.Time
}

type service struct {
	repo         repository
	store        blobStore
	maxBytes     int64
	downloadPath string
	logg         *logger.Logger
	now          func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("media repository required")
	}
	if params.Store == nil {
		return nil, fmt.Errorf("blob store required")
	}
	if params.MaxBytes <= 0 {
		return nil, fmt.Errorf("max upload bytes must be positive")
	}
	svc := &service{
		repo:         params.Repo,
		store:        params.Store,
		maxBytes:     params.MaxBytes,
		downloadPath: params.DownloadPath,
		logg:         params.Logger,
		now:          params.Now,
	}
	if svc.downloadPath == "" {
		svc.downloadPath = DefaultDownloadPath
	}
	if !strings.HasSuffix(svc.downloadPath, "/") {
		svc.downloadPath += "/"
	}
	if svc.logg == nil {
		svc.logg = logger.Nop()
	}
	if svc.now == nil {
		svc.now = time.Now
	}
	return svc, nil
}

// Upload stores the image as <unix-millis><ext>, points the product at it
// and removes the previous blob. The new blob is removed again when the
// product row cannot be updated.
func (s *service) Upload(ctx context.Context, productID int64, originalName string, r io.Reader) (*UploadDTO, error) {
	product, err := s.loadProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	content, err := io.ReadAll(io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "could not read upload")
	}
	if len(content) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "file is empty")
	}
	if int64(len(content)) > s.maxBytes {
		return nil, pkgerrors.New(pkgerrors.CodeTooLarge, fmt.Sprintf("file exceeds %d bytes", s.maxBytes))
	}

	detected, ok := sniffImage(content)
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "file must be an image").
			WithDetails(map[string]any{"fileType": detected.String()})
	}

	name, size, err := s.putUnique(ctx, s.now().UnixMilli(), extensionFor(detected, originalName), content)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "store image")
	}

	if err := s.repo.SetImage(ctx, productID, &name); err != nil {
		err = multierr.Append(err, s.store.Delete(name))
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "attach image to product")
	}

	if previous := product.Image; previous != nil && *previous != "" && *previous != name {
		s.removeBlob(ctx, productID, *previous)
	}

	ctx = s.logg.WithFields(ctx, map[string]any{"product_id": productID, "file_name": name, "size": size})
	s.logg.Info(ctx, "media.upload.stored")

	return &UploadDTO{
		FileName:    name,
		DownloadURI: s.downloadPath + name,
		FileType:    detected.String(),
		Size:        size,
	}, nil
}

// putUnique stores content as <millis><ext>, falling back to
// <millis>-<n><ext> while the name is taken by a concurrent upload.
func (s *service) putUnique(ctx context.Context, millis int64, ext string, content []byte) (string, int64, error) {
	for attempt := 0; attempt < maxNameAttempts; attempt++ {
		name := fmt.Sprintf("%d%s", millis, ext)
		if attempt > 0 {
			name = fmt.Sprintf("%d-%d%s", millis, attempt, ext)
		}
		size, err := s.store.Put(ctx, name, bytes.NewReader(content))
		if errors.Is(err, local.ErrExists) {
			continue
		}
		return name, size, err
	}
	return "", 0, fmt.Errorf("no free name for %d%s after %d attempts", millis, ext, maxNameAttempts)
}

func (s *service) Open(ctx context.Context, name string) (*os.File, error) {
	if err := local.ValidateName(name); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid file name")
	}
	f, err := s.store.Open(name)
	if err != nil {
		if errors.Is(err, local.ErrNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, msgImageNotFound)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "open image")
	}
	return f, nil
}

// Delete clears the product image and then removes the blob.
func (s *service) Delete(ctx context.Context, productID int64) error {
	product, err := s.loadProduct(ctx, productID)
	if err != nil {
		return err
	}
	if product.Image == nil || *product.Image == "" {
		return pkgerrors.New(pkgerrors.CodeNotFound, msgImageNotFound)
	}
	if err := s.repo.SetImage(ctx, productID, nil); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clear product image")
	}
	s.removeBlob(ctx, productID, *product.Image)
	return nil
}

func (s *service) removeBlob(ctx context.Context, productID int64, name string) {
	if err := s.store.Delete(name); err != nil {
		ctx = s.logg.WithFields(ctx, map[string]any{"product_id": productID, "file_name": name})
		s.logg.Warn(ctx, "media.blob.delete_failed", err)
	}
}

func (s *service) loadProduct(ctx context.Context, id int64) (*models.Product, error) {
	p, err := s.repo.FindProduct(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, msgProductNotFound)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}
	return p, nil
}
