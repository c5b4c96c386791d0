package repository_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/atlas-procurement/request-api/internal/repository"
	"github.com/atlas-procurement/request-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequesterRepository_ListSearch(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewRequesterRepository(db)
	ctx := context.Background()

	testutil.CreateTestRequester(t, db, "Acme Industrial")
	testutil.CreateTestRequester(t, db, "Globex Corp")
	testutil.CreateTestRequester(t, db, "Initech")

	// Search matches name case-insensitively
	requesters, total, err := repo.List(ctx, 1, 20, "ACME", repository.DefaultSortConfig())
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, requesters, 1)
	assert.Equal(t, "Acme Industrial", requesters[0].Name)

	// Search also matches the email address
	requesters, total, err = repo.List(ctx, 1, 20, "globex.corp@", repository.DefaultSortConfig())
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, requesters, 1)
	assert.Equal(t, "Globex Corp", requesters[0].Name)

	_, total, err = repo.List(ctx, 1, 20, "", repository.DefaultSortConfig())
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
}

func TestRequesterRepository_ListPagination(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewRequesterRepository(db)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		testutil.CreateTestRequester(t, db, fmt.Sprintf("Requester %02d", i))
	}

	sort := repository.SortConfig{Field: "name", Order: repository.SortOrderAsc}

	requesters, total, err := repo.List(ctx, 1, 2, "", sort)
	require.NoError(t, err)
	assert.EqualValues(t, 5, total)
	require.Len(t, requesters, 2)
	assert.Equal(t, "Requester 00", requesters[0].Name)

	requesters, _, err = repo.List(ctx, 3, 2, "", sort)
	require.NoError(t, err)
	require.Len(t, requesters, 1)
	assert.Equal(t, "Requester 04", requesters[0].Name)

	// Out-of-range page numbers are clamped to the first page
	requesters, _, err = repo.List(ctx, 0, 2, "", sort)
	require.NoError(t, err)
	require.Len(t, requesters, 2)
	assert.Equal(t, "Requester 00", requesters[0].Name)
}

func TestRequesterRepository_CountRequests(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewRequesterRepository(db)
	ctx := context.Background()

	request := createTestRequest(t, db, "PO050")

	count, err := repo.CountRequests(ctx, request.RequesterID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	other := testutil.CreateTestRequester(t, db, "No Requests Yet")
	count, err = repo.CountRequests(ctx, other.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, count)
}
