package repository_test

import (
	"context"
	"testing"

	"github.com/atlas-procurement/request-api/internal/domain"
	"github.com/atlas-procurement/request-api/internal/repository"
	"github.com/atlas-procurement/request-api/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func createTestRequest(t *testing.T, db *gorm.DB, reference string) *domain.Request {
	t.Helper()
	requester := testutil.CreateTestRequester(t, db, "Requester "+reference)
	buyer := testutil.CreateTestBuyer(t, db, "Buyer "+reference)

	request := &domain.Request{
		RequesterID: requester.ID,
		BuyerID:     buyer.ID,
		RequestType: domain.TypePOCreation,
		Status:      domain.StatusNotStarted,
		Subject:     "Subject " + reference,
		Reference:   reference,
	}
	require.NoError(t, repository.NewRequestRepository(db).Create(context.Background(), request))
	return request
}

func TestRequestRepository_CreateAndGet(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewRequestRepository(db)

	request := createTestRequest(t, db, "PO001")

	found, err := repo.GetByID(context.Background(), request.ID)
	require.NoError(t, err)
	assert.Equal(t, "PO001", found.Reference)
	require.NotNil(t, found.Requester)
	assert.Equal(t, "Requester PO001", found.Requester.Name)
	require.NotNil(t, found.Buyer)
	assert.Equal(t, "Buyer PO001", found.Buyer.Name)
	assert.Nil(t, found.User)
	assert.Equal(t, "", found.Comments)
}

func TestRequestRepository_GetByReference(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewRequestRepository(db)

	createTestRequest(t, db, "NDA007")

	found, err := repo.GetByReference(context.Background(), "NDA007")
	require.NoError(t, err)
	assert.Equal(t, "NDA007", found.Reference)

	_, err = repo.GetByReference(context.Background(), "NDA999")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRequestRepository_AppendComment(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewRequestRepository(db)
	ctx := context.Background()

	request := createTestRequest(t, db, "PO002")

	// First entry lands without a separator
	require.NoError(t, repo.AppendComment(ctx, request.ID, "2024-03-15 09:30:45 - jsmith: first"))

	found, err := repo.GetByID(ctx, request.ID)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-15 09:30:45 - jsmith: first", found.Comments)

	// Second entry is separated by a blank line; the first is untouched
	require.NoError(t, repo.AppendComment(ctx, request.ID, "2024-03-16 10:00:00 - mdoe: second"))

	found, err = repo.GetByID(ctx, request.ID)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-15 09:30:45 - jsmith: first\n\n2024-03-16 10:00:00 - mdoe: second", found.Comments)
}

func TestRequestRepository_AppendCommentMissingRequest(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewRequestRepository(db)

	err := repo.AppendComment(context.Background(), uuid.New(), "entry")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRequestRepository_GetByIDsPreservesOrder(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewRequestRepository(db)
	ctx := context.Background()

	first := createTestRequest(t, db, "PO010")
	second := createTestRequest(t, db, "PO011")
	third := createTestRequest(t, db, "PO012")

	// Request them out of creation order, with one unknown ID mixed in
	requests, err := repo.GetByIDs(ctx, []uuid.UUID{third.ID, uuid.New(), first.ID, second.ID})
	require.NoError(t, err)
	require.Len(t, requests, 3)
	assert.Equal(t, "PO012", requests[0].Reference)
	assert.Equal(t, "PO010", requests[1].Reference)
	assert.Equal(t, "PO011", requests[2].Reference)
}

func TestRequestRepository_ListFilters(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewRequestRepository(db)
	ctx := context.Background()

	request := createTestRequest(t, db, "SUP001")
	createTestRequest(t, db, "PO020")

	status := domain.StatusNotStarted
	requests, total, err := repo.List(ctx, 1, 20, &repository.RequestFilters{Status: &status}, repository.DefaultSortConfig())
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, requests, 2)

	requesterID := request.RequesterID
	requests, total, err = repo.List(ctx, 1, 20, &repository.RequestFilters{RequesterID: &requesterID}, repository.DefaultSortConfig())
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, requests, 1)
	assert.Equal(t, "SUP001", requests[0].Reference)

	requests, total, err = repo.List(ctx, 1, 20, &repository.RequestFilters{Search: "po02"}, repository.DefaultSortConfig())
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, requests, 1)
	assert.Equal(t, "PO020", requests[0].Reference)
}

func TestRequestRepository_RequesterCascadeDelete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewRequestRepository(db)
	ctx := context.Background()

	request := createTestRequest(t, db, "PO030")

	require.NoError(t, repository.NewRequesterRepository(db).Delete(ctx, request.RequesterID))

	_, err := repo.GetByID(ctx, request.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRequestRepository_UserDeleteSetsOwnerNull(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewRequestRepository(db)
	ctx := context.Background()

	request := createTestRequest(t, db, "PO031")
	user := testutil.CreateTestUser(t, db, "departing")

	request.UserID = &user.ID
	require.NoError(t, repo.Update(ctx, request))

	require.NoError(t, db.Delete(&domain.User{}, "id = ?", user.ID).Error)

	found, err := repo.GetByID(ctx, request.ID)
	require.NoError(t, err)
	assert.Nil(t, found.UserID)
	assert.Equal(t, "N/A", found.OwnerUsername())
}
