package storage

//go:generate go run go.uber.org/mock/mockgen -source=./storage.go -destination=./mocks/storage_mock.go -package=mocks

import (
	"context"
	"errors"
	"fmt"
	"hostel/config"
	"hostel/infras/otel"
	"hostel/infras/s3"
	"hostel/shared/constant"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
)

var ErrUnknownReference = errors.New("file reference does not belong to this storage")

// Storage keeps uploaded files and hands back the reference stored on records.
type Storage interface {
	Save(ctx context.Context, directory, fileName, contentType string, content []byte) (ref string, err error)
	Remove(ctx context.Context, ref string) error
}

// New picks the driver named by APP_UPLOAD_DRIVER.
func New(cfg *config.Config, ot otel.Otel) Storage {
	switch cfg.App.Upload.Driver {
	case constant.StorageDriverS3:
		log.Info().Str("bucket", cfg.External.S3.BucketName).Msg("Uploads stored in S3")

		return NewS3(s3.New(cfg, ot), ot)
	default:
		log.Info().Str("dir", cfg.App.Upload.Dir).Msg("Uploads stored on local disk")

		return NewLocal(cfg.App.Upload.Dir, cfg.App.Upload.PublicPath, ot)
	}
}

type local struct {
	root       string
	publicPath string
	otel       otel.Otel
}

// NewLocal stores files under root and references them as publicPath/<dir>/<name>.
func NewLocal(root, publicPath string, ot otel.Otel) Storage {
	return &local{
		root:       root,
		publicPath: "/" + strings.Trim(publicPath, "/"),
		otel:       ot,
	}
}

func (l *local) Save(ctx context.Context, directory, fileName, _ string, content []byte) (ref string, err error) {
	_, scope := l.otel.NewScope(ctx, constant.OtelStorageScopeName, constant.OtelStorageScopeName+".local.Save")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	relative := path.Join(path.Clean("/"+directory), path.Base(fileName))
	target := filepath.Join(l.root, filepath.FromSlash(relative))

	if err = os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return constant.Empty, fmt.Errorf("failed to create upload directory: %w", err)
	}

	if err = os.WriteFile(target, content, 0o644); err != nil { //nolint:gosec
		return constant.Empty, fmt.Errorf("failed to write upload: %w", err)
	}

	return l.publicPath + relative, nil
}

func (l *local) Remove(ctx context.Context, ref string) (err error) {
	_, scope := l.otel.NewScope(ctx, constant.OtelStorageScopeName, constant.OtelStorageScopeName+".local.Remove")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	relative, found := strings.CutPrefix(ref, l.publicPath+"/")
	if !found || relative == "" {
		return fmt.Errorf("%w: %s", ErrUnknownReference, ref)
	}

	target := filepath.Join(l.root, filepath.FromSlash(path.Clean("/"+relative)))

	if err = os.Remove(target); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove upload: %w", err)
	}

	return nil
}

type objectStorage struct {
	client s3.S3
	otel   otel.Otel
}

func NewS3(client s3.S3, ot otel.Otel) Storage {
	return &objectStorage{client: client, otel: ot}
}

func (o *objectStorage) Save(ctx context.Context, directory, fileName, contentType string, content []byte) (ref string, err error) {
	ctx, scope := o.otel.NewScope(ctx, constant.OtelStorageScopeName, constant.OtelStorageScopeName+".s3.Save")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	ref, err = o.client.UploadFileBytes(ctx, directory, path.Base(fileName), contentType, content)
	if err != nil {
		return constant.Empty, fmt.Errorf("failed to store upload: %w", err)
	}

	return ref, nil
}

func (o *objectStorage) Remove(ctx context.Context, ref string) (err error) {
	ctx, scope := o.otel.NewScope(ctx, constant.OtelStorageScopeName, constant.OtelStorageScopeName+".s3.Remove")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	key := o.client.GetObjectNameFromURL(ref)
	if key == constant.Empty {
		return fmt.Errorf("%w: %s", ErrUnknownReference, ref)
	}

	return o.client.DeleteFile(ctx, key) //nolint:wrapcheck
}

// ReadAll is a small helper for callers holding a reader rather than bytes.
func ReadAll(r io.Reader, limit int64) ([]byte, error) {
	content, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}

	if int64(len(content)) > limit {
		return nil, fmt.Errorf("upload exceeds %d bytes", limit)
	}

	return content, nil
}
