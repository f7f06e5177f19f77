package usecase

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

// MockBlobStore
type MockBlobStore struct {
	mock.Mock
}

func (m *MockBlobStore) Save(ctx context.Context, filename string, r io.Reader) (string, error) {
	args := m.Called(ctx, filename, r)
	return args.String(0), args.Error(1)
}

func (m *MockBlobStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

func (m *MockBlobStore) Remove(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func TestContractUseCase_CreateAndDownload(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := f.service(t)

	c, err := f.contracts.Create(ctx, contractInput("C1", svc.ID, "2027-01-31", "12.345"))
	require.NoError(t, err)
	assert.Equal(t, "12.35", c.Cost.StringFixed(2))
	assert.Equal(t, today.Format(entity.DateLayout), c.StartDate.Format(entity.DateLayout))

	rc, got, err := f.contracts.Document(ctx, c.ID)
	require.NoError(t, err)
	defer rc.Close()
	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "signed C1", string(body))
	assert.Equal(t, c.ID, got.ID)
}

func TestContractUseCase_UpdateKeepsStartDateAndDocument(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := f.service(t)

	c, err := f.contracts.Create(ctx, contractInput("C1", svc.ID, "2027-01-31", "10.00"))
	require.NoError(t, err)

	f.contracts.Validator.Now = func() time.Time { return today.AddDate(0, 1, 0) }
	in := contractInput("C1", svc.ID, "2027-12-31", "20.00")
	in.Document = nil
	updated, err := f.contracts.Update(ctx, c.ID, in)
	require.NoError(t, err)

	assert.Equal(t, c.StartDate, updated.StartDate)
	assert.Equal(t, c.Doc, updated.Doc)
	assert.True(t, f.blobs.Has(c.Doc))
}

func TestContractUseCase_DeleteRemovesDocumentFirst(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := f.service(t)

	c, err := f.contracts.Create(ctx, contractInput("C1", svc.ID, "2027-01-31", "10.00"))
	require.NoError(t, err)

	require.NoError(t, f.contracts.Delete(ctx, c.ID))
	assert.False(t, f.blobs.Has(c.Doc))
	assert.Equal(t, 0, f.store.Count("contracts"))
}

func TestContractUseCase_DeleteWithMissingDocument(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := f.service(t)

	c, err := f.contracts.Create(ctx, contractInput("C1", svc.ID, "2027-01-31", "10.00"))
	require.NoError(t, err)
	require.NoError(t, f.blobs.Remove(ctx, c.Doc))

	require.NoError(t, f.contracts.Delete(ctx, c.ID))
	assert.Equal(t, 0, f.store.Count("contracts"))

	_, _, err = f.contracts.Document(ctx, c.ID)
	requireDomainError(t, err, CodeNotFound)
}

func TestContractUseCase_DeleteKeepsRowWhenStorageFails(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := f.service(t)

	c, err := f.contracts.Create(ctx, contractInput("C1", svc.ID, "2027-01-31", "10.00"))
	require.NoError(t, err)

	blobs := new(MockBlobStore)
	blobs.On("Remove", mock.Anything, c.Doc).Return(errors.New("permission denied"))
	uc := NewContractUseCase(f.store.Contracts(), f.store.Services(), blobs, f.contracts.Validator.Now, zap.NewNop())

	err = uc.Delete(ctx, c.ID)
	assert.True(t, IsTechnicalError(err))
	assert.Equal(t, 1, f.store.Count("contracts"))
	blobs.AssertExpectations(t)
}

func TestContractUseCase_CreateCompensatesDocumentOnConflict(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := f.service(t)

	blobs := new(MockBlobStore)
	blobs.On("Save", mock.Anything, "C1.pdf", mock.Anything).Return("key-1", nil).Once()
	blobs.On("Remove", mock.Anything, "key-1").Return(nil).Once()
	uc := NewContractUseCase(f.store.Contracts(), f.store.Services(), blobs, f.contracts.Validator.Now, zap.NewNop())

	f.store.FailOn["contracts.create"] = &entity.ConflictError{
		Constraint: "contracts_name_key", Field: "name", Value: "C1",
		Detail: "Key (name)=(C1) already exists.",
	}
	_, err := uc.Create(ctx, contractInput("C1", svc.ID, "2027-01-31", "10.00"))

	d := requireDomainError(t, err, CodeConflict)
	assert.Equal(t, []string{"Key (name)=(C1) already exists."}, d.Errors.Fields()["name"])
	blobs.AssertExpectations(t)
}

func TestContractUseCase_DeletingServiceCascades(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := f.service(t)

	_, err := f.customers.Create(ctx, CustomerInput{
		Lead:     leadInput(1, nil),
		Contract: contractInput("C1", svc.ID, "2027-01-31", "10.00"),
	})
	require.NoError(t, err)

	require.NoError(t, f.services.Delete(ctx, svc.ID))
	assert.Equal(t, 0, f.store.Count("contracts"))
	assert.Equal(t, 0, f.store.Count("customers"))
	assert.Equal(t, 1, f.store.Count("leads"))
}
