package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/guiltyguilty/disturb/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(srv *Server, method, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func TestListElements(t *testing.T) {
	srv := newTestServer(t, &mockElements{
		elementsFn: func() []domain.ElementInfo {
			return []domain.ElementInfo{
				{ID: "0", Rate: 0.001, RestoreDelayMS: 100, Alphabet: "ab", Original: "hello", Text: "hello"},
				{ID: "1", Rate: 0.002, RestoreDelayMS: 250, Alphabet: "01", Original: "x", Text: "0"},
			}
		},
	})

	rec := serve(srv, http.MethodGet, "/api/elements")

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Elements []domain.ElementInfo `json:"elements"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Elements, 2)
	assert.Equal(t, "hello", body.Elements[0].Original)
	assert.Equal(t, int64(250), body.Elements[1].RestoreDelayMS)
	assert.Equal(t, "0", body.Elements[1].Text)
}

func TestGetElement(t *testing.T) {
	srv := newTestServer(t, &mockElements{
		elementFn: func(id string) (domain.ElementInfo, error) {
			if id != "0" {
				return domain.ElementInfo{}, domain.ErrElementNotFound
			}
			return domain.ElementInfo{ID: "0", Original: "hello", Text: "h%llo"}, nil
		},
	})

	rec := serve(srv, http.MethodGet, "/api/elements/0")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"text":"h%llo"`)

	rec = serve(srv, http.MethodGet, "/api/elements/7")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `"type":"not_found"`)
	assert.Contains(t, rec.Body.String(), `"element_id":"7"`)
}

func TestGetElement_InternalError(t *testing.T) {
	srv := newTestServer(t, &mockElements{
		elementFn: func(string) (domain.ElementInfo, error) {
			return domain.ElementInfo{}, errors.New("boom")
		},
	})

	rec := serve(srv, http.MethodGet, "/api/elements/0")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "boom")
}

func TestDisturbElement(t *testing.T) {
	var gotID string
	srv := newTestServer(t, &mockElements{
		disturbFn: func(_ context.Context, id string) (string, error) {
			gotID = id
			return "he/lo", nil
		},
	})

	rec := serve(srv, http.MethodPost, "/api/elements/3/disturb")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "3", gotID)
	assert.JSONEq(t, `{"id":"3","text":"he/lo"}`, rec.Body.String())
}

func TestDisturbElement_Errors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantType string
	}{
		{"unknown element", domain.ErrElementNotFound, http.StatusNotFound, "not_found"},
		{"service stopped", domain.ErrServiceStopped, http.StatusConflict, "conflict"},
		{"wrapped stop", fmt.Errorf("manual disturb: %w", domain.ErrServiceStopped), http.StatusConflict, "conflict"},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError, "internal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, &mockElements{
				disturbFn: func(context.Context, string) (string, error) { return "", tt.err },
			})

			rec := serve(srv, http.MethodPost, "/api/elements/0/disturb")

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Contains(t, rec.Body.String(), fmt.Sprintf(`"type":%q`, tt.wantType))
		})
	}
}

func TestDisturbElement_RequiresPost(t *testing.T) {
	srv := newTestServer(t, &mockElements{})
	rec := serve(srv, http.MethodGet, "/api/elements/0/disturb")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
