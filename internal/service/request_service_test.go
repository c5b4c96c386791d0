package service_test

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/atlas-procurement/request-api/internal/auth"
	"github.com/atlas-procurement/request-api/internal/domain"
	"github.com/atlas-procurement/request-api/internal/repository"
	"github.com/atlas-procurement/request-api/internal/service"
	"github.com/atlas-procurement/request-api/internal/storage"
	"github.com/atlas-procurement/request-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type requestServiceFixture struct {
	db      *gorm.DB
	service *service.RequestService
}

func newRequestServiceFixture(t *testing.T) *requestServiceFixture {
	t.Helper()
	db := testutil.SetupTestDB(t)

	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	svc := service.NewRequestService(
		repository.NewRequestRepository(db),
		repository.NewRequesterRepository(db),
		repository.NewBuyerRepository(db),
		repository.NewRequestSequenceRepository(db),
		store,
		1<<20,
		zap.NewNop(),
	)

	return &requestServiceFixture{db: db, service: svc}
}

// userContext builds an authenticated context backed by a real user row so
// owner assignment satisfies the foreign key
func (f *requestServiceFixture) userContext(t *testing.T, username string) context.Context {
	t.Helper()
	user := testutil.CreateTestUser(t, f.db, username)
	return auth.WithUserContext(context.Background(), &auth.UserContext{
		UserID:      user.ID,
		Username:    user.Username,
		DisplayName: user.DisplayName,
		Email:       user.Email,
	})
}

func (f *requestServiceFixture) createRequest(t *testing.T, requestType domain.RequestType, subject string) *domain.RequestDTO {
	t.Helper()
	requester := testutil.CreateTestRequester(t, f.db, "Acme")
	buyer := testutil.CreateTestBuyer(t, f.db, "Globex")

	dto, err := f.service.Create(context.Background(), &domain.CreateRequestRequest{
		RequesterID: requester.ID,
		BuyerID:     buyer.ID,
		RequestType: requestType,
		Subject:     subject,
	})
	require.NoError(t, err)
	return dto
}

func TestRequestService_CreateMintsReference(t *testing.T) {
	f := newRequestServiceFixture(t)

	dto := f.createRequest(t, domain.TypePOCreation, "Laptop order")

	assert.Equal(t, "PO001", dto.Reference)
	assert.Equal(t, domain.StatusNotStarted, dto.Status)
	assert.Equal(t, "N/A", dto.CreatedBy)
	assert.Equal(t, "PO creation_Laptop order_PO001_Acme_Globex_N/A_Not Started", dto.Object)
}

func TestRequestService_CreateSequencesPerType(t *testing.T) {
	f := newRequestServiceFixture(t)

	assert.Equal(t, "PO001", f.createRequest(t, domain.TypePOCreation, "First").Reference)
	assert.Equal(t, "PO002", f.createRequest(t, domain.TypePOCreation, "Second").Reference)
	assert.Equal(t, "SUP001", f.createRequest(t, domain.TypeSupplierCreation, "Third").Reference)
	assert.Equal(t, "OTHER001", f.createRequest(t, domain.TypeOtherRequest, "Fourth").Reference)
	assert.Equal(t, "OTHER002", f.createRequest(t, domain.TypePOModification, "Fifth").Reference)
}

func TestRequestService_CreateKeepsInitialCommentsVerbatim(t *testing.T) {
	f := newRequestServiceFixture(t)
	requester := testutil.CreateTestRequester(t, f.db, "Acme")
	buyer := testutil.CreateTestBuyer(t, f.db, "Globex")

	dto, err := f.service.Create(context.Background(), &domain.CreateRequestRequest{
		RequesterID: requester.ID,
		BuyerID:     buyer.ID,
		RequestType: domain.TypeNDA,
		Subject:     "Mutual NDA",
		Comments:    "please expedite",
	})
	require.NoError(t, err)

	// Initial text is stored as written, without timestamp or attribution
	assert.Equal(t, "please expedite", dto.Comments)
}

func TestRequestService_CreateRejectsUnknownType(t *testing.T) {
	f := newRequestServiceFixture(t)
	requester := testutil.CreateTestRequester(t, f.db, "Acme")
	buyer := testutil.CreateTestBuyer(t, f.db, "Globex")

	_, err := f.service.Create(context.Background(), &domain.CreateRequestRequest{
		RequesterID: requester.ID,
		BuyerID:     buyer.ID,
		RequestType: domain.RequestType("Procurement magic"),
		Subject:     "Nope",
	})
	assert.ErrorIs(t, err, service.ErrInvalidRequestType)
}

func TestRequestService_CreateRejectsUnknownParties(t *testing.T) {
	f := newRequestServiceFixture(t)
	buyer := testutil.CreateTestBuyer(t, f.db, "Globex")

	_, err := f.service.Create(context.Background(), &domain.CreateRequestRequest{
		RequesterID: buyer.ID, // not a requester ID
		BuyerID:     buyer.ID,
		RequestType: domain.TypePOCreation,
		Subject:     "Nope",
	})
	assert.ErrorIs(t, err, service.ErrRequesterNotFound)
}

func TestRequestService_UpdateAssignsOwnerOnce(t *testing.T) {
	f := newRequestServiceFixture(t)
	dto := f.createRequest(t, domain.TypePOCreation, "Laptop order")

	firstCtx := f.userContext(t, "jsmith")
	updated, err := f.service.Update(firstCtx, dto.ID, &domain.UpdateRequestRequest{
		RequesterID: dto.RequesterID,
		BuyerID:     dto.BuyerID,
		RequestType: dto.RequestType,
		Status:      domain.StatusInProgress,
		Subject:     dto.Subject,
	})
	require.NoError(t, err)
	assert.Equal(t, "jsmith", updated.CreatedBy)
	assert.True(t, strings.HasSuffix(updated.Object, "_jsmith_In Progress"), "object was %q", updated.Object)

	// A later edit by someone else does not take over ownership
	secondCtx := f.userContext(t, "mdoe")
	updated, err = f.service.Update(secondCtx, dto.ID, &domain.UpdateRequestRequest{
		RequesterID: dto.RequesterID,
		BuyerID:     dto.BuyerID,
		RequestType: dto.RequestType,
		Status:      domain.StatusCompleted,
		Subject:     dto.Subject,
	})
	require.NoError(t, err)
	assert.Equal(t, "jsmith", updated.CreatedBy)
}

func TestRequestService_UpdateNeverChangesReference(t *testing.T) {
	f := newRequestServiceFixture(t)
	dto := f.createRequest(t, domain.TypePOCreation, "Laptop order")
	require.Equal(t, "PO001", dto.Reference)

	ctx := f.userContext(t, "jsmith")
	updated, err := f.service.Update(ctx, dto.ID, &domain.UpdateRequestRequest{
		RequesterID: dto.RequesterID,
		BuyerID:     dto.BuyerID,
		RequestType: domain.TypeNDA, // type change
		Status:      domain.StatusInProgress,
		Subject:     "Now an NDA",
	})
	require.NoError(t, err)

	// Reference keeps the prefix it was minted with; the label tracks the new type
	assert.Equal(t, "PO001", updated.Reference)
	assert.True(t, strings.HasPrefix(updated.Object, "NDA_Now an NDA_PO001_"), "object was %q", updated.Object)
}

func TestRequestService_UpdateRoutesNewCommentToLog(t *testing.T) {
	f := newRequestServiceFixture(t)
	dto := f.createRequest(t, domain.TypePOCreation, "Laptop order")

	ctx := f.userContext(t, "jsmith")
	updated, err := f.service.Update(ctx, dto.ID, &domain.UpdateRequestRequest{
		RequesterID: dto.RequesterID,
		BuyerID:     dto.BuyerID,
		RequestType: dto.RequestType,
		Status:      domain.StatusInProgress,
		Subject:     dto.Subject,
		NewComment:  "ordered from supplier",
	})
	require.NoError(t, err)
	assert.Contains(t, updated.Comments, " - jsmith: ordered from supplier")

	// Blank comments are dropped, not logged
	updated, err = f.service.Update(ctx, dto.ID, &domain.UpdateRequestRequest{
		RequesterID: dto.RequesterID,
		BuyerID:     dto.BuyerID,
		RequestType: dto.RequestType,
		Status:      domain.StatusInProgress,
		Subject:     dto.Subject,
		NewComment:  "   ",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(updated.Comments, "jsmith"))
}

func TestRequestService_AddCommentAppends(t *testing.T) {
	f := newRequestServiceFixture(t)
	dto := f.createRequest(t, domain.TypePOCreation, "Laptop order")

	ctx := f.userContext(t, "jsmith")
	updated, err := f.service.AddComment(ctx, dto.ID, &domain.AddCommentRequest{Text: "first note"})
	require.NoError(t, err)
	assert.Contains(t, updated.Comments, " - jsmith: first note")

	updated, err = f.service.AddComment(ctx, dto.ID, &domain.AddCommentRequest{Text: "second note"})
	require.NoError(t, err)
	assert.Contains(t, updated.Comments, "first note\n\n")
	assert.Contains(t, updated.Comments, " - jsmith: second note")
}

func TestRequestService_DeleteRetiresReference(t *testing.T) {
	f := newRequestServiceFixture(t)
	dto := f.createRequest(t, domain.TypePOCreation, "Laptop order")
	require.Equal(t, "PO001", dto.Reference)

	require.NoError(t, f.service.Delete(context.Background(), dto.ID))

	_, err := f.service.GetByID(context.Background(), dto.ID)
	assert.ErrorIs(t, err, service.ErrRequestNotFound)

	// The counter moves on; deleted references are never reissued
	next := f.createRequest(t, domain.TypePOCreation, "Replacement")
	assert.Equal(t, "PO002", next.Reference)
}

func TestRequestService_AttachmentRoundTrip(t *testing.T) {
	f := newRequestServiceFixture(t)
	dto := f.createRequest(t, domain.TypePOCreation, "Laptop order")
	ctx := context.Background()

	uploaded, err := f.service.UploadAttachment(ctx, dto.ID, "quote.pdf", "application/pdf", strings.NewReader("pdf-bytes"))
	require.NoError(t, err)
	require.NotNil(t, uploaded.Attachment)
	assert.Equal(t, "quote.pdf", uploaded.Attachment.Filename)
	assert.EqualValues(t, len("pdf-bytes"), uploaded.Attachment.Size)

	reader, attachment, err := f.service.DownloadAttachment(ctx, dto.ID)
	require.NoError(t, err)
	defer reader.Close()

	content, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, "pdf-bytes", string(content))
	assert.Equal(t, "application/pdf", attachment.ContentType)

	deleted, err := f.service.DeleteAttachment(ctx, dto.ID)
	require.NoError(t, err)
	assert.Nil(t, deleted.Attachment)

	_, _, err = f.service.DownloadAttachment(ctx, dto.ID)
	assert.ErrorIs(t, err, service.ErrAttachmentNotFound)
}

func TestRequestService_UploadRejectsOversizedFile(t *testing.T) {
	f := newRequestServiceFixture(t)
	dto := f.createRequest(t, domain.TypePOCreation, "Laptop order")

	big := strings.NewReader(strings.Repeat("x", (1<<20)+1))
	_, err := f.service.UploadAttachment(context.Background(), dto.ID, "big.bin", "application/octet-stream", big)
	assert.ErrorIs(t, err, service.ErrAttachmentTooLarge)
}
