package usecase

import (
	"context"
	"io"

	"github.com/xavierca1/ligue-crm/internal/infra/queue"
)

// TxManager runs fn in one database transaction; repositories called with
// the context passed to fn take part in it.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// BlobStore keeps contract documents. Remove and Open return
// entity.ErrBlobNotFound for unknown keys.
type BlobStore interface {
	Save(ctx context.Context, filename string, r io.Reader) (string, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Remove(ctx context.Context, key string) error
}

type EventPublisher interface {
	PublishCustomerConverted(ctx context.Context, payload queue.CustomerConvertedPayload) error
}
