package httpx

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mbolis/expert-mapper/api"
	"github.com/mbolis/expert-mapper/log"
)

func init() {
	log.SetOutput(io.Discard)
}

func TestResponseBuffer(t *testing.T) {
	buf := NewResponseBuffer()
	assert.Equal(t, 0, buf.Status())

	buf.Header().Set("Content-Type", "text/plain")
	buf.WriteHeader(http.StatusTeapot)
	buf.WriteHeader(http.StatusOK)
	io.WriteString(buf, "short and stout")
	assert.Equal(t, http.StatusTeapot, buf.Status())

	rec := httptest.NewRecorder()
	assert.NoError(t, buf.Flush(rec))
	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, "text/plain", rec.Header().Get("Content-Type"))
	assert.Equal(t, "short and stout", rec.Body.String())
}

func TestResponseBuffer_ImplicitOK(t *testing.T) {
	buf := NewResponseBuffer()
	io.WriteString(buf, "hi")
	assert.Equal(t, http.StatusOK, buf.Status())
	assert.Equal(t, []byte("hi"), buf.Body())
}

func TestBackendError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		body   string
	}{
		{
			name:   "status relayed",
			err:    &api.StatusError{StatusCode: http.StatusUnprocessableEntity, Body: []byte("bad user_id")},
			status: http.StatusUnprocessableEntity,
			body:   `{"error":"backend responded 422 Unprocessable Entity","backend":"bad user_id"}`,
		},
		{
			name:   "transport",
			err:    errors.New("dial tcp: connection refused"),
			status: http.StatusBadGateway,
			body:   `{"error":"dial tcp: connection refused"}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/form/submit", nil)
			BackendError(rec, req, "form.submit", tt.err)
			assert.Equal(t, tt.status, rec.Code)
			assert.JSONEq(t, tt.body, rec.Body.String())
		})
	}
}

func TestLogStatusMsg(t *testing.T) {
	out := &bytes.Buffer{}
	log.SetOutput(out)
	defer log.SetOutput(io.Discard)

	rec := httptest.NewRecorder()
	LogStatusMsg(rec, http.StatusBadRequest, log.ErrorLevel, "form.update", "unknown step %d", 7)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "unknown step 7\n", rec.Body.String())
	assert.Contains(t, out.String(), "form.update: unknown step 7")
}
