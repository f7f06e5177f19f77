package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

// MockBlobLister
type MockBlobLister struct {
	mock.Mock
}

func (m *MockBlobLister) List(ctx context.Context) ([]entity.BlobInfo, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.BlobInfo), args.Error(1)
}

func (m *MockBlobLister) Remove(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// MockDocumentIndex
type MockDocumentIndex struct {
	mock.Mock
}

func (m *MockDocumentIndex) DocKeys(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

var now = time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)

func newSweeper(blobs *MockBlobLister, index *MockDocumentIndex) *DocumentSweeper {
	w := NewDocumentSweeper(blobs, index, time.Hour, 30*time.Minute, zap.NewNop())
	w.Now = func() time.Time { return now }
	return w
}

func TestSweep(t *testing.T) {
	blobs := new(MockBlobLister)
	index := new(MockDocumentIndex)
	blobs.On("List", mock.Anything).Return([]entity.BlobInfo{
		{Key: "kept.pdf", ModTime: now.Add(-2 * time.Hour)},
		{Key: "orphan.pdf", ModTime: now.Add(-2 * time.Hour)},
		{Key: "fresh.pdf", ModTime: now.Add(-time.Minute)},
		{Key: "stuck.pdf", ModTime: now.Add(-2 * time.Hour)},
	}, nil)
	index.On("DocKeys", mock.Anything).Return([]string{"kept.pdf"}, nil)
	blobs.On("Remove", mock.Anything, "orphan.pdf").Return(nil)
	blobs.On("Remove", mock.Anything, "stuck.pdf").Return(errors.New("permission denied"))

	removed, err := newSweeper(blobs, index).Sweep(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, removed)
	blobs.AssertNotCalled(t, "Remove", mock.Anything, "kept.pdf")
	blobs.AssertNotCalled(t, "Remove", mock.Anything, "fresh.pdf")
	blobs.AssertExpectations(t)
}

func TestSweep_IndexError(t *testing.T) {
	blobs := new(MockBlobLister)
	index := new(MockDocumentIndex)
	blobs.On("List", mock.Anything).Return([]entity.BlobInfo{{Key: "a.pdf"}}, nil)
	index.On("DocKeys", mock.Anything).Return(nil, errors.New("db down"))

	_, err := newSweeper(blobs, index).Sweep(context.Background())
	assert.EqualError(t, err, "db down")
	blobs.AssertNotCalled(t, "Remove", mock.Anything, mock.Anything)
}

func TestStart_StopsOnCancel(t *testing.T) {
	blobs := new(MockBlobLister)
	index := new(MockDocumentIndex)
	blobs.On("List", mock.Anything).Return([]entity.BlobInfo{}, nil)
	index.On("DocKeys", mock.Anything).Return([]string{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		newSweeper(blobs, index).Start(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}
