package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/patient-dashboard-api/internal/model"
	"github.com/iliyamo/patient-dashboard-api/internal/queue"
	"github.com/iliyamo/patient-dashboard-api/internal/service"
)

type fakePublisher struct {
	events []queue.LabReportProcessedEvent
	err    error
}

func (f *fakePublisher) PublishLabReportProcessed(_ context.Context, ev queue.LabReportProcessedEvent) error {
	f.events = append(f.events, ev)
	return f.err
}

func multipartUpload(t *testing.T, field, filename string, content []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload-lab-report", &body)
	req.Header.Set(echo.HeaderContentType, mw.FormDataContentType())
	return req
}

func serveUpload(t *testing.T, h *UploadHandler, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	require.NoError(t, h.UploadLabReport(c))
	return rec
}

func decodeDetail(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body model.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Detail
}

func TestWelcome(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	require.NoError(t, Welcome(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Welcome to the Patient Dashboard API"}`, rec.Body.String())
}

func TestHealth(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/healthz", nil), rec)

	require.NoError(t, Health(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestUploadLabReport_GlucoseRow(t *testing.T) {
	rec := serveUpload(t, NewUploadHandler(nil), multipartUpload(t, "file", "labs.csv", []byte("test,value\nGlucose,95\n")))
	require.Equal(t, http.StatusOK, rec.Code)

	var got model.PatientRecommendations
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "Based on your lab results, your overall health indicators are within normal ranges.", got.ClinicianSummary)
	assert.Equal(t, []string{"Leafy greens", "Lean proteins", "Whole grains"}, got.RecommendedFoods)
}

func TestUploadLabReport_OutputIndependentOfInput(t *testing.T) {
	want, err := json.Marshal(service.GenerateRecommendations(nil))
	require.NoError(t, err)

	for name, content := range map[string]string{
		"header only":  "test_name,value,unit,reference_range,date\n",
		"many rows":    "test,value\nLDL,220\nHbA1c,9.1\nTSH,0.1\n",
		"short rows":   "a,b,c\n1\n\n2,3\n",
		"single field": "x\n",
		"index column": "test,value\nLDL,100,mg/dL\n",
	} {
		t.Run(name, func(t *testing.T) {
			rec := serveUpload(t, NewUploadHandler(nil), multipartUpload(t, "file", "labs.csv", []byte(content)))
			require.Equal(t, http.StatusOK, rec.Code)
			assert.JSONEq(t, string(want), rec.Body.String())
		})
	}
}

func TestUploadLabReport_Rejections(t *testing.T) {
	for name, content := range map[string][]byte{
		"empty file": {},
		"binary":     {0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 0x00, 0xFF},
		"long row":   []byte("test,value\nGlucose,95\nLDL,100,mg/dL\n"),
	} {
		t.Run(name, func(t *testing.T) {
			rec := serveUpload(t, NewUploadHandler(nil), multipartUpload(t, "file", "labs.csv", content))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.NotEmpty(t, decodeDetail(t, rec))
		})
	}
}

func TestUploadLabReport_EmptyFileDetail(t *testing.T) {
	rec := serveUpload(t, NewUploadHandler(nil), multipartUpload(t, "file", "empty.csv", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "no columns to parse from file", decodeDetail(t, rec))
}

func TestUploadLabReport_MissingField(t *testing.T) {
	rec := serveUpload(t, NewUploadHandler(nil), multipartUpload(t, "document", "labs.csv", []byte("a,b\n1,2\n")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeDetail(t, rec), `"file"`)
}

func TestUploadLabReport_NotMultipart(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/upload-lab-report", strings.NewReader("test,value\n"))
	req.Header.Set(echo.HeaderContentType, "text/csv")

	rec := serveUpload(t, NewUploadHandler(nil), req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NotEmpty(t, decodeDetail(t, rec))
}

func TestUploadLabReport_PublishesEvent(t *testing.T) {
	pub := &fakePublisher{}
	h := NewUploadHandler(pub)
	h.now = func() time.Time { return time.Date(2026, 10, 18, 9, 30, 0, 0, time.FixedZone("CEST", 2*3600)) }

	rec := serveUpload(t, h, multipartUpload(t, "file", "labs.csv", []byte("test,value\nGlucose,95\n")))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, pub.events, 1)

	ev := pub.events[0]
	assert.NotEmpty(t, ev.EventID)
	assert.Equal(t, "labs.csv", ev.FileName)
	assert.Equal(t, int64(len("test,value\nGlucose,95\n")), ev.SizeBytes)
	assert.Equal(t, []string{"test", "value"}, ev.Columns)
	assert.Equal(t, 1, ev.RowCount)
	assert.Equal(t, "2026-10-18T07:30:00Z", ev.ProcessedAt)
}

func TestUploadLabReport_PublishFailureIgnored(t *testing.T) {
	pub := &fakePublisher{err: errors.New("broker down")}

	rec := serveUpload(t, NewUploadHandler(pub), multipartUpload(t, "file", "labs.csv", []byte("test,value\n")))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, pub.events, 1)
}

func TestUploadLabReport_NoEventOnRejection(t *testing.T) {
	pub := &fakePublisher{}

	rec := serveUpload(t, NewUploadHandler(pub), multipartUpload(t, "file", "labs.csv", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, pub.events)
}
