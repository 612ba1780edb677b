package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apperrors "github.com/chainsafe/wallet-sync/pkg/app/errors"
	"github.com/chainsafe/wallet-sync/pkg/config"
)

func TestHandleError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantMsg  string
	}{
		{"bad request", apperrors.BadRequestError(nil, "invalid chain id"), http.StatusBadRequest, "invalid chain id"},
		{"wrapped conflict", fmt.Errorf("failed to add: %w", apperrors.ConflictError(nil, "duplicate")), http.StatusConflict, "duplicate"},
		{"storage", apperrors.StorageError(errors.New("disk"), "failed to read"), http.StatusServiceUnavailable, "failed to read"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "Unexpected Service Error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := HandleError(func(http.ResponseWriter, *http.Request) error { return tt.err })
			rec := httptest.NewRecorder()
			h(rec, httptest.NewRequest(http.MethodGet, "/", nil))

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			var got errorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
			assert.Equal(t, tt.wantMsg, got.ErrMsg)
			assert.Equal(t, tt.wantCode, got.ErrMsgCode)
		})
	}
}

func TestServe_ShutsDownOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	go func() {
		done <- Serve(ctx, ln, handler, zap.NewNop(), &config.ServerConfig{ShutdownTimeout: time.Second})
	}()

	resp, err := http.Get("http://" + ln.Addr().String())
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusTeapot, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestServeAndWait_Validation(t *testing.T) {
	assert.Error(t, ServeAndWait(context.Background(), nil, nil, &config.ServerConfig{}))
	assert.Error(t, ServeAndWait(context.Background(), http.NotFoundHandler(), nil, nil))
}
