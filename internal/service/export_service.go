package service

import (
	"context"
	"fmt"

	"github.com/atlas-procurement/request-api/internal/domain"
	"github.com/atlas-procurement/request-api/internal/repository"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// ExportFilename is the download name of the generated workbook
const ExportFilename = "Requests.xlsx"

// exportTimestampLayout is the cell format for created/updated columns
const exportTimestampLayout = "2006-01-02 15:04"

// exportSheet is the sheet the rows are written to
const exportSheet = "Requests"

// exportHeader is the fixed column set, written even when no rows follow
var exportHeader = []interface{}{
	"Requester", "Buyer", "Request Type", "PO Ref", "Status",
	"Subject", "Reference", "Created By", "Created At", "Updated At",
}

// ExportService builds xlsx workbooks from request selections
type ExportService struct {
	requestRepo *repository.RequestRepository
	logger      *zap.Logger
}

// NewExportService creates a new export service instance
func NewExportService(requestRepo *repository.RequestRepository, logger *zap.Logger) *ExportService {
	return &ExportService{
		requestRepo: requestRepo,
		logger:      logger,
	}
}

// Export builds a workbook holding the selected requests, one row each, in
// the order the IDs were supplied. An empty selection yields a workbook
// with just the header row. Unknown IDs are skipped rather than failing
// the whole export.
func (s *ExportService) Export(ctx context.Context, ids []uuid.UUID) (*excelize.File, error) {
	var requests []domain.Request

	if len(ids) > 0 {
		var err error
		requests, err = s.requestRepo.GetByIDs(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("failed to load requests for export: %w", err)
		}
	}

	f := excelize.NewFile()
	f.SetSheetName("Sheet1", exportSheet)

	if err := f.SetSheetRow(exportSheet, "A1", &exportHeader); err != nil {
		return nil, fmt.Errorf("failed to write export header: %w", err)
	}

	for i := range requests {
		req := &requests[i]

		requesterName := ""
		if req.Requester != nil {
			requesterName = req.Requester.Name
		}
		buyerName := ""
		if req.Buyer != nil {
			buyerName = req.Buyer.Name
		}

		row := []interface{}{
			requesterName,
			buyerName,
			string(req.RequestType),
			req.PORef,
			string(req.Status),
			req.Subject,
			req.Reference,
			req.OwnerUsername(),
			req.CreatedAt.Format(exportTimestampLayout),
			req.UpdatedAt.Format(exportTimestampLayout),
		}

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, fmt.Errorf("failed to compute export cell: %w", err)
		}
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write export row: %w", err)
		}
	}

	s.logger.Info("requests exported",
		zap.Int("selected", len(ids)),
		zap.Int("rows", len(requests)),
	)

	return f, nil
}
