package handler

import (
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/iliyamo/patient-dashboard-api/internal/middleware"
	"github.com/iliyamo/patient-dashboard-api/internal/model"
	"github.com/iliyamo/patient-dashboard-api/internal/queue"
	"github.com/iliyamo/patient-dashboard-api/internal/service"
	"github.com/iliyamo/patient-dashboard-api/internal/tabular"
)

// UploadField is the multipart form field carrying the lab report.
const UploadField = "file"

const publishTimeout = 3 * time.Second

// EventPublisher receives a notification for every successfully processed
// upload.
type EventPublisher interface {
	PublishLabReportProcessed(ctx context.Context, event queue.LabReportProcessedEvent) error
}

// UploadHandler serves POST /upload-lab-report.
type UploadHandler struct {
	Events EventPublisher // nil disables events
	now    func() time.Time
}

// NewUploadHandler returns an upload handler; a nil events disables publishing.
func NewUploadHandler(events EventPublisher) *UploadHandler {
	return &UploadHandler{Events: events, now: time.Now}
}

// UploadLabReport parses the uploaded CSV and answers with the patient's
// recommendations.  Every failure, whether the field is missing, the part
// cannot be read or the content is not tabular, is reported as 400 with the
// error text in "detail".
func (h *UploadHandler) UploadLabReport(c echo.Context) error {
	fh, err := c.FormFile(UploadField)
	if err != nil {
		return h.reject(c, fmt.Errorf("read form field %q: %w", UploadField, err))
	}
	table, err := parseUpload(fh)
	if err != nil {
		return h.reject(c, err)
	}

	recs := service.GenerateRecommendations(table)
	middleware.ObserveUpload("ok")
	log.Info().
		Str("component", "upload").
		Str("file", fh.Filename).
		Int64("size", fh.Size).
		Int("rows", table.Len()).
		Int("columns", len(table.Columns)).
		Msg("lab report processed")

	h.publish(c, fh, table)
	return c.JSON(http.StatusOK, recs)
}

func parseUpload(fh *multipart.FileHeader) (*tabular.Table, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()
	return tabular.Parse(f)
}

func (h *UploadHandler) reject(c echo.Context, err error) error {
	middleware.ObserveUpload("rejected")
	log.Warn().Err(err).Str("component", "upload").Msg("lab report rejected")
	return c.JSON(http.StatusBadRequest, model.ErrorResponse{Detail: err.Error()})
}

// publish is best-effort; the response does not depend on it.
func (h *UploadHandler) publish(c echo.Context, fh *multipart.FileHeader, table *tabular.Table) {
	if h.Events == nil {
		return
	}
	now := time.Now
	if h.now != nil {
		now = h.now
	}
	ev := queue.LabReportProcessedEvent{
		EventID:     uuid.NewString(),
		RequestID:   c.Response().Header().Get(echo.HeaderXRequestID),
		FileName:    fh.Filename,
		SizeBytes:   fh.Size,
		Columns:     table.Columns,
		RowCount:    table.Len(),
		ProcessedAt: now().UTC().Format(time.RFC3339),
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), publishTimeout)
	defer cancel()
	if err := h.Events.PublishLabReportProcessed(ctx, ev); err != nil {
		log.Warn().Err(err).Str("component", "upload").Str("event_id", ev.EventID).Msg("publish lab report event failed")
	}
}
