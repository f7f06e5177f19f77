package memstore

import (
	"bytes"
	"context"
	"io"
	"strconv"
	"sync"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

// Blobs is an in-memory document store.
type Blobs struct {
	mu    sync.Mutex
	data  map[string][]byte
	count int
}

func NewBlobs() *Blobs {
	return &Blobs{data: map[string][]byte{}}
}

func (b *Blobs) Save(_ context.Context, filename string, r io.Reader) (string, error) {
	body, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.count++
	key := strconv.Itoa(b.count) + "-" + filename
	b.data[key] = body
	return key, nil
}

func (b *Blobs) Open(_ context.Context, key string) (io.ReadCloser, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	body, ok := b.data[key]
	if !ok {
		return nil, entity.ErrBlobNotFound
	}
	return io.NopCloser(bytes.NewReader(body)), nil
}

func (b *Blobs) Remove(_ context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.data[key]; !ok {
		return entity.ErrBlobNotFound
	}
	delete(b.data, key)
	return nil
}

func (b *Blobs) Has(key string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.data[key]
	return ok
}

func (b *Blobs) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.data)
}
