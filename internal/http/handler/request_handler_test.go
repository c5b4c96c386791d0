package handler_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/atlas-procurement/request-api/internal/domain"
	"github.com/atlas-procurement/request-api/internal/http/handler"
	"github.com/atlas-procurement/request-api/internal/repository"
	"github.com/atlas-procurement/request-api/internal/service"
	"github.com/atlas-procurement/request-api/internal/storage"
	"github.com/atlas-procurement/request-api/internal/testutil"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newRequestRouter(t *testing.T) (chi.Router, *gorm.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)

	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	requestRepo := repository.NewRequestRepository(db)
	svc := service.NewRequestService(
		requestRepo,
		repository.NewRequesterRepository(db),
		repository.NewBuyerRepository(db),
		repository.NewRequestSequenceRepository(db),
		store,
		1<<20,
		zap.NewNop(),
	)
	exportSvc := service.NewExportService(requestRepo, zap.NewNop())
	h := handler.NewRequestHandler(svc, exportSvc, zap.NewNop())

	r := chi.NewRouter()
	r.Get("/requests", h.List)
	r.Post("/requests", h.Create)
	r.Post("/requests/export", h.Export)
	r.Get("/requests/{id}", h.GetByID)
	return r, db
}

func TestRequestHandler_Create(t *testing.T) {
	router, db := newRequestRouter(t)

	requester := testutil.CreateTestRequester(t, db, "Acme")
	buyer := testutil.CreateTestBuyer(t, db, "Globex")

	body := fmt.Sprintf(
		`{"requesterId":%q,"buyerId":%q,"requestType":"PO creation","subject":"Laptop order"}`,
		requester.ID, buyer.ID,
	)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/requests", strings.NewReader(body)))

	require.Equal(t, http.StatusCreated, rec.Code)

	var created domain.RequestDTO
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&created))
	assert.Equal(t, "PO001", created.Reference)
	assert.Equal(t, domain.StatusNotStarted, created.Status)
	assert.Equal(t, "/api/v1/requests/"+created.ID.String(), rec.Header().Get("Location"))
}

func TestRequestHandler_CreateRejectsBadType(t *testing.T) {
	router, db := newRequestRouter(t)

	requester := testutil.CreateTestRequester(t, db, "Acme")
	buyer := testutil.CreateTestBuyer(t, db, "Globex")

	body := fmt.Sprintf(
		`{"requesterId":%q,"buyerId":%q,"requestType":"Wishful thinking","subject":"Nope"}`,
		requester.ID, buyer.ID,
	)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/requests", strings.NewReader(body)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRequestHandler_ExportStreamsWorkbook(t *testing.T) {
	router, _ := newRequestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/requests/export", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		rec.Header().Get("Content-Type"),
	)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "Requests.xlsx")
	assert.NotZero(t, rec.Body.Len())
}
