package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	domainagg "github.com/yungbote/notebook-backend/internal/domain/aggregates"
	"github.com/yungbote/notebook-backend/internal/http/response"
	"github.com/yungbote/notebook-backend/internal/services"
)

type pruneStub struct {
	services.PageService
	deleted int
	err     error
	gotKeep int
}

func (s *pruneStub) Prune(_ context.Context, _ uuid.UUID, keepLatest int) (int, error) {
	s.gotKeep = keepLatest
	return s.deleted, s.err
}

func pruneRouter(stub *pruneStub) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/pages/:id/versions/prune", NewPageVersionHandler(stub).Prune)
	return r
}

func doPrune(t *testing.T, r *gin.Engine, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/pages/"+uuid.NewString()+"/versions/prune", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestPruneReportsPartialCountOnFailure(t *testing.T) {
	stub := &pruneStub{
		deleted: 3,
		err:     domainagg.NewError(domainagg.CodeUnavailable, "Notes.Page.PruneVersions", "store unavailable", nil),
	}
	rec := doPrune(t, pruneRouter(stub), `{"keep_latest":10}`)

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.Equal(t, "3", rec.Header().Get("X-Pruned-Count"))
	require.Equal(t, 10, stub.gotKeep)
	var env response.ErrorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.Equal(t, string(domainagg.CodeUnavailable), env.Error.Code)
}

func TestPruneOmitsCountHeaderWhenNothingDeleted(t *testing.T) {
	stub := &pruneStub{err: domainagg.NewError(domainagg.CodeNotFound, "Notes.Page.PruneVersions", "page not found", nil)}
	rec := doPrune(t, pruneRouter(stub), `{"keep_latest":1}`)

	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Empty(t, rec.Header().Get("X-Pruned-Count"))
}

func TestPruneSuccessReturnsDeleted(t *testing.T) {
	stub := &pruneStub{deleted: 7}
	rec := doPrune(t, pruneRouter(stub), `{"keep_latest":0}`)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, rec.Header().Get("X-Pruned-Count"))
	var out struct {
		Deleted int `json:"deleted"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Equal(t, 7, out.Deleted)
}

func TestPruneRequiresKeepLatest(t *testing.T) {
	rec := doPrune(t, pruneRouter(&pruneStub{}), `{}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
