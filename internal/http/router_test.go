package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/notebook-backend/internal/data/aggregates"
	"github.com/yungbote/notebook-backend/internal/data/repos"
	repotest "github.com/yungbote/notebook-backend/internal/data/repos/testutil"
	httpH "github.com/yungbote/notebook-backend/internal/http/handlers"
	httpMW "github.com/yungbote/notebook-backend/internal/http/middleware"
	"github.com/yungbote/notebook-backend/internal/observability"
	"github.com/yungbote/notebook-backend/internal/services"
)

type apiFixture struct {
	t      *testing.T
	router *gin.Engine
	auth   services.AuthService
	token  string
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := repotest.DB(t)
	log := repotest.Logger(t)
	nbRepo := repos.NewNotebookRepo(db, log)
	pageRepo := repos.NewPageRepo(db, log)
	versionRepo := repos.NewPageVersionRepo(db, log)
	metrics := observability.NewMetrics()
	agg := aggregates.NewPageAggregate(aggregates.PageAggregateDeps{
		Base:      aggregates.BaseDeps{DB: db, Log: log, Hooks: aggregates.NewObservabilityHooks(metrics)},
		Notebooks: nbRepo,
		Pages:     pageRepo,
		Versions:  versionRepo,
	})
	auth := services.NewAuthService(log, "test-secret", time.Minute)
	notebooks := services.NewNotebookService(log, nbRepo, agg)
	pages := services.NewPageService(log, nbRepo, pageRepo, versionRepo, agg, nil, metrics, 0)

	router := NewRouter(RouterConfig{
		Log:                log,
		Metrics:            metrics,
		AuthMiddleware:     httpMW.NewAuthMiddleware(log, auth),
		HealthHandler:      httpH.NewHealthHandler(nil),
		NotebookHandler:    httpH.NewNotebookHandler(notebooks, pages),
		PageHandler:        httpH.NewPageHandler(pages),
		PageVersionHandler: httpH.NewPageVersionHandler(pages),
	})
	tok, err := auth.IssueToken(uuid.New())
	require.NoError(t, err)
	return &apiFixture{t: t, router: router, auth: auth, token: tok}
}

func (f *apiFixture) do(method, path, token string, body any) *httptest.ResponseRecorder {
	f.t.Helper()
	var rdr *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(f.t, err)
		rdr = bytes.NewReader(raw)
	} else {
		rdr = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rdr)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func (f *apiFixture) call(method, path string, body any, wantStatus int, out any) {
	f.t.Helper()
	rec := f.do(method, path, f.token, body)
	require.Equal(f.t, wantStatus, rec.Code, "body: %s", rec.Body.String())
	if out != nil {
		require.NoError(f.t, json.Unmarshal(rec.Body.Bytes(), out))
	}
}

type pageJSON struct {
	ID           uuid.UUID  `json:"id"`
	ParentPageID *uuid.UUID `json:"parent_page_id"`
	Title        string     `json:"title"`
	Content      string     `json:"content"`
	Version      int        `json:"version"`
}

type versionJSON struct {
	ID      uuid.UUID `json:"id"`
	Version int       `json:"version"`
	Content string    `json:"content"`
}

func (f *apiFixture) createNotebook(title string) uuid.UUID {
	var out struct {
		Notebook struct {
			ID uuid.UUID `json:"id"`
		} `json:"notebook"`
	}
	f.call(http.MethodPost, "/api/notebooks", gin.H{"title": title}, http.StatusCreated, &out)
	return out.Notebook.ID
}

func (f *apiFixture) createPage(notebookID uuid.UUID, title, content string, parent *uuid.UUID) pageJSON {
	var out struct {
		Page pageJSON `json:"page"`
	}
	body := gin.H{"title": title, "content": content}
	if parent != nil {
		body["parent_page_id"] = parent.String()
	}
	f.call(http.MethodPost, "/api/notebooks/"+notebookID.String()+"/pages", body, http.StatusCreated, &out)
	return out.Page
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var env struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env.Error.Code
}

func TestHealthAndMetricsArePublic(t *testing.T) {
	f := newAPIFixture(t)
	rec := f.do(http.MethodGet, "/healthcheck", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ok", rec.Body.String())

	f.do(http.MethodGet, "/api/notebooks", "", nil)
	rec = f.do(http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "notebook_api_requests_total")
}

func TestAPIRequiresBearerToken(t *testing.T) {
	f := newAPIFixture(t)
	rec := f.do(http.MethodGet, "/api/notebooks", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "unauthorized", errorCode(t, rec))
}

func TestPageLifecycleOverHTTP(t *testing.T) {
	f := newAPIFixture(t)
	nb := f.createNotebook("Work")
	a := f.createPage(nb, "A", "one\ntwo", nil)
	b := f.createPage(nb, "B", "", &a.ID)
	require.Equal(t, 1, a.Version)
	require.Equal(t, a.ID, *b.ParentPageID)

	var updated struct {
		Page pageJSON `json:"page"`
	}
	f.call(http.MethodPatch, "/api/pages/"+a.ID.String(), gin.H{"content": "one\nthree", "expected_version": 1}, http.StatusOK, &updated)
	require.Equal(t, 2, updated.Page.Version)

	rec := f.do(http.MethodPatch, "/api/pages/"+a.ID.String(), f.token, gin.H{"content": "stale", "expected_version": 1})
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Equal(t, "conflict", errorCode(t, rec))

	var versions struct {
		Versions []versionJSON `json:"versions"`
	}
	f.call(http.MethodGet, "/api/pages/"+a.ID.String()+"/versions", nil, http.StatusOK, &versions)
	require.Len(t, versions.Versions, 1)
	v1 := versions.Versions[0]
	require.Equal(t, 1, v1.Version)
	require.Equal(t, "one\ntwo", v1.Content)

	var got struct {
		Version versionJSON `json:"version"`
	}
	f.call(http.MethodGet, "/api/pages/"+a.ID.String()+"/versions/"+v1.ID.String(), nil, http.StatusOK, &got)
	require.Equal(t, v1.ID, got.Version.ID)

	var diff struct {
		Diff struct {
			FromVersion int `json:"from_version"`
			ToVersion   int `json:"to_version"`
			Added       int `json:"added"`
			Removed     int `json:"removed"`
			Unchanged   int `json:"unchanged"`
		} `json:"diff"`
	}
	f.call(http.MethodGet, "/api/pages/"+a.ID.String()+"/diff?from="+v1.ID.String()+"&to=current", nil, http.StatusOK, &diff)
	require.Equal(t, 1, diff.Diff.FromVersion)
	require.Equal(t, 2, diff.Diff.ToVersion)
	require.Equal(t, 1, diff.Diff.Unchanged)

	rec = f.do(http.MethodGet, "/api/pages/"+a.ID.String()+"/diff?from="+v1.ID.String()+"&format=patch", f.token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/x-diff"))
	require.Contains(t, rec.Body.String(), "+three")

	rec = f.do(http.MethodGet, "/api/pages/"+a.ID.String()+"/diff?from="+v1.ID.String()+"&format=xml", f.token, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var restored struct {
		Page         pageJSON `json:"page"`
		RestoredFrom int      `json:"restored_from"`
	}
	f.call(http.MethodPost, "/api/pages/"+a.ID.String()+"/versions/"+v1.ID.String()+"/restore", nil, http.StatusOK, &restored)
	require.Equal(t, 3, restored.Page.Version)
	require.Equal(t, "one\ntwo", restored.Page.Content)
	require.Equal(t, 1, restored.RestoredFrom)

	var pruned struct {
		Deleted int `json:"deleted"`
	}
	f.call(http.MethodPost, "/api/pages/"+a.ID.String()+"/versions/prune", gin.H{"keep_latest": 1}, http.StatusOK, &pruned)
	require.Equal(t, 1, pruned.Deleted)
	f.call(http.MethodGet, "/api/pages/"+a.ID.String()+"/versions", nil, http.StatusOK, &versions)
	require.Len(t, versions.Versions, 1)
	require.Equal(t, 2, versions.Versions[0].Version)
}

func TestMoveOverHTTP(t *testing.T) {
	f := newAPIFixture(t)
	nb := f.createNotebook("Tree")
	a := f.createPage(nb, "A", "", nil)
	b := f.createPage(nb, "B", "", &a.ID)
	c := f.createPage(nb, "C", "", nil)

	rec := f.do(http.MethodPost, "/api/pages/"+a.ID.String()+"/move", f.token, gin.H{"target_id": b.ID, "relation": "child"})
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Equal(t, "cycle_rejected", errorCode(t, rec))

	var plan struct {
		Decision struct {
			Accepted bool   `json:"accepted"`
			Reason   string `json:"reason"`
		} `json:"decision"`
	}
	f.call(http.MethodPost, "/api/pages/"+a.ID.String()+"/move/plan", gin.H{"target_id": b.ID, "relation": "child"}, http.StatusOK, &plan)
	require.False(t, plan.Decision.Accepted)
	require.NotEmpty(t, plan.Decision.Reason)

	rec = f.do(http.MethodPost, "/api/pages/"+a.ID.String()+"/move", f.token, gin.H{"target_id": c.ID, "relation": "sideways"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "validation", errorCode(t, rec))

	var moved struct {
		Page pageJSON `json:"page"`
	}
	f.call(http.MethodPost, "/api/pages/"+c.ID.String()+"/move", gin.H{"target_id": b.ID, "relation": "child"}, http.StatusOK, &moved)
	require.Equal(t, b.ID, *moved.Page.ParentPageID)

	var tree struct {
		Tree []struct {
			ID       uuid.UUID `json:"id"`
			Children []struct {
				ID       uuid.UUID `json:"id"`
				Children []struct {
					ID uuid.UUID `json:"id"`
				} `json:"children"`
			} `json:"children"`
		} `json:"tree"`
	}
	f.call(http.MethodGet, "/api/notebooks/"+nb.String()+"/tree", nil, http.StatusOK, &tree)
	require.Len(t, tree.Tree, 1)
	require.Equal(t, a.ID, tree.Tree[0].ID)
	require.Equal(t, b.ID, tree.Tree[0].Children[0].ID)
	require.Equal(t, c.ID, tree.Tree[0].Children[0].Children[0].ID)

	var deleted struct {
		DeletedPages []uuid.UUID `json:"deleted_pages"`
	}
	f.call(http.MethodDelete, "/api/pages/"+a.ID.String(), nil, http.StatusOK, &deleted)
	require.Len(t, deleted.DeletedPages, 3)
	rec = f.do(http.MethodGet, "/api/pages/"+c.ID.String(), f.token, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestOtherOwnersSeeNotFound(t *testing.T) {
	f := newAPIFixture(t)
	nb := f.createNotebook("Private")
	p := f.createPage(nb, "Secret", "x", nil)

	other, err := f.auth.IssueToken(uuid.New())
	require.NoError(t, err)
	for _, path := range []string{"/api/notebooks/" + nb.String(), "/api/pages/" + p.ID.String()} {
		rec := f.do(http.MethodGet, path, other, nil)
		require.Equal(t, http.StatusNotFound, rec.Code, path)
		require.Equal(t, "not_found", errorCode(t, rec))
	}

	rec := f.do(http.MethodGet, "/api/pages/not-a-uuid", f.token, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestNotebookUpdateAndDelete(t *testing.T) {
	f := newAPIFixture(t)
	nb := f.createNotebook("Old")
	f.createPage(nb, "P", "", nil)

	var out struct {
		Notebook struct {
			Title    string `json:"title"`
			Settings struct {
				KeepLatestVersions int `json:"keep_latest_versions"`
			} `json:"settings"`
		} `json:"notebook"`
	}
	f.call(http.MethodPatch, "/api/notebooks/"+nb.String(), gin.H{"title": "New", "keep_latest_versions": 3}, http.StatusOK, &out)
	require.Equal(t, "New", out.Notebook.Title)
	require.Equal(t, 3, out.Notebook.Settings.KeepLatestVersions)

	rec := f.do(http.MethodPatch, "/api/notebooks/"+nb.String(), f.token, gin.H{"keep_latest_versions": -1})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var list struct {
		Notebooks []struct {
			ID uuid.UUID `json:"id"`
		} `json:"notebooks"`
	}
	f.call(http.MethodGet, "/api/notebooks", nil, http.StatusOK, &list)
	require.Len(t, list.Notebooks, 1)

	var deleted struct {
		DeletedPages []uuid.UUID `json:"deleted_pages"`
	}
	f.call(http.MethodDelete, "/api/notebooks/"+nb.String(), nil, http.StatusOK, &deleted)
	require.Len(t, deleted.DeletedPages, 1)
	rec = f.do(http.MethodGet, "/api/notebooks/"+nb.String(), f.token, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}
