package handler

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

const (
	testLessonID  = "6f1c2a3e-1b4d-4e8a-9c2f-000000000001"
	testStudentID = "6f1c2a3e-1b4d-4e8a-9c2f-000000000002"
	testCommentID = "6f1c2a3e-1b4d-4e8a-9c2f-000000000003"
	testPaymentID = "6f1c2a3e-1b4d-4e8a-9c2f-000000000004"
	testMarkerID  = "6f1c2a3e-1b4d-4e8a-9c2f-000000000005"
	missingID     = "6f1c2a3e-1b4d-4e8a-9c2f-0000000000ff"
)

type responseEnvelope struct {
	Data  json.RawMessage        `json:"data"`
	Meta  map[string]interface{} `json:"meta"`
	Error *struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details"`
	} `json:"error"`
}

func newTestContext(method, target string, body interface{}) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)

	var payload *bytes.Reader
	switch v := body.(type) {
	case nil:
		payload = bytes.NewReader(nil)
	case string:
		payload = bytes.NewReader([]byte(v))
	default:
		raw, _ := json.Marshal(v)
		payload = bytes.NewReader(raw)
	}
	c.Request = httptest.NewRequest(method, target, payload)
	if body != nil {
		c.Request.Header.Set("Content-Type", "application/json")
	}
	return c, rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) responseEnvelope {
	t.Helper()
	var envelope responseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return envelope
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, dest interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, dest))
}
