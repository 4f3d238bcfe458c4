package art

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"atelier/internal/domain/auth"
)

type apiResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func setupRouter(t *testing.T, env *testEnv) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	r := gin.New()
	api := r.Group("/api/v1")
	NewHandler(env.svc).RegisterRoutes(api, auth.NewGate(env.tokens), nil)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body any) (*httptest.ResponseRecorder, apiResponse) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp apiResponse
	if w.Header().Get("Content-Type") == "application/json; charset=utf-8" {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return w, resp
}

func TestPublicListsNeedNoHeader(t *testing.T) {
	env := newTestEnv(t)
	r := setupRouter(t, env)
	artist := env.createUser(t, "artist", auth.RoleArtist)
	env.upload(t, artist, "Public", 1)

	for _, path := range []string{"/all", "/new", "/popular", "/trend", "/category/1", "/categories"} {
		w, resp := doJSON(t, r, http.MethodGet, "/api/v1/arts"+path, "", nil)
		assert.Equal(t, http.StatusOK, w.Code, path)
		assert.True(t, resp.Success, path)
	}

	w, resp := doJSON(t, r, http.MethodGet, "/api/v1/arts/all", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []ArtSummary
	require.NoError(t, json.Unmarshal(resp.Data, &list))
	require.Len(t, list, 1)
	assert.Equal(t, "Public", list[0].Name)
}

func TestDetailRequiresHeader(t *testing.T) {
	env := newTestEnv(t)
	r := setupRouter(t, env)
	artist := env.createUser(t, "artist", auth.RoleArtist)
	id := env.upload(t, artist, "Hidden", 1)
	path := "/api/v1/arts/detail/" + strconv.FormatInt(id, 10)

	w, resp := doJSON(t, r, http.MethodGet, path, "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "AUTHORITY_ERROR", resp.Error.Code)
	assert.Equal(t, "authorization header missing", resp.Error.Message)

	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("Authorization", "Bearer")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, resp = doJSON(t, r, http.MethodGet, path, env.token(t, artist), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	var detail ArtDetail
	require.NoError(t, json.Unmarshal(resp.Data, &detail))
	assert.True(t, detail.IsOwner)
}

func TestLikeEndpoints(t *testing.T) {
	env := newTestEnv(t)
	r := setupRouter(t, env)
	artist := env.createUser(t, "artist", auth.RoleArtist)
	viewer := env.createUser(t, "viewer", auth.RoleUser)
	id := env.upload(t, artist, "Likeable", 1)
	token := env.token(t, viewer)

	w, resp := doJSON(t, r, http.MethodPost, "/api/v1/arts/like", token, LikeRequest{ArtSeq: id})
	require.Equal(t, http.StatusOK, w.Code)
	var state ArtState
	require.NoError(t, json.Unmarshal(resp.Data, &state))
	assert.Equal(t, ArtState{ArtID: id, LikeCount: 1, Liked: true}, state)

	w, _ = doJSON(t, r, http.MethodPost, "/api/v1/arts/like", "", LikeRequest{ArtSeq: id})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, resp = doJSON(t, r, http.MethodPost, "/api/v1/arts/like", token, LikeRequest{ArtSeq: 9999})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", resp.Error.Code)

	w, resp = doJSON(t, r, http.MethodPost, "/api/v1/arts/like", token, map[string]string{"artSeq": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)

	w, resp = doJSON(t, r, http.MethodDelete, "/api/v1/arts/like", token, LikeRequest{ArtSeq: id})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(resp.Data, &state))
	assert.False(t, state.Liked)
	assert.Zero(t, state.LikeCount)
}

func TestArtistOnlyRoutes(t *testing.T) {
	env := newTestEnv(t)
	r := setupRouter(t, env)
	artist := env.createUser(t, "artist", auth.RoleArtist)
	other := env.createUser(t, "other", auth.RoleArtist)
	viewer := env.createUser(t, "viewer", auth.RoleUser)
	id := env.upload(t, artist, "Original", 1)

	update := UpdateArtRequest{ArtSeq: id, ArtName: strPtr("Renamed")}

	w, resp := doJSON(t, r, http.MethodPut, "/api/v1/arts", env.token(t, viewer), update)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "AUTHORITY_ERROR", resp.Error.Code)

	w, resp = doJSON(t, r, http.MethodPut, "/api/v1/arts", env.token(t, other), update)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "FORBIDDEN", resp.Error.Code)

	w, resp = doJSON(t, r, http.MethodPut, "/api/v1/arts", env.token(t, artist), update)
	require.Equal(t, http.StatusOK, w.Code)
	var updated Art
	require.NoError(t, json.Unmarshal(resp.Data, &updated))
	assert.Equal(t, "Renamed", updated.Name)

	w, _ = doJSON(t, r, http.MethodPut, "/api/v1/arts/masterpiece", env.token(t, viewer), []MasterpieceRequest{{ArtSeq: id}})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, resp = doJSON(t, r, http.MethodPut, "/api/v1/arts/masterpiece", env.token(t, artist), []MasterpieceRequest{{ArtSeq: id}})
	require.Equal(t, http.StatusOK, w.Code)
	var showcase []ArtSummary
	require.NoError(t, json.Unmarshal(resp.Data, &showcase))
	assert.Equal(t, []int64{id}, ids(showcase))

	w, resp = doJSON(t, r, http.MethodGet, "/api/v1/arts/"+strconv.FormatInt(artist.UserID, 10)+"/masterpiece", env.token(t, viewer), nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(resp.Data, &showcase))
	assert.Equal(t, []int64{id}, ids(showcase))
}

func TestSetMasterpiecesOverLimitEndpoint(t *testing.T) {
	env := newTestEnv(t, func(cfg *Config) { cfg.MasterpieceLimit = 1 })
	r := setupRouter(t, env)
	artist := env.createUser(t, "artist", auth.RoleArtist)
	a := env.upload(t, artist, "A", 1)
	b := env.upload(t, artist, "B", 1)

	w, resp := doJSON(t, r, http.MethodPut, "/api/v1/arts/masterpiece", env.token(t, artist),
		[]MasterpieceRequest{{ArtSeq: a}, {ArtSeq: b}})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "LIMIT_EXCEEDED", resp.Error.Code)
}

func TestUploadDownloadAndDeleteEndpoints(t *testing.T) {
	env := newTestEnv(t)
	r := setupRouter(t, env)
	artist := env.createUser(t, "artist", auth.RoleArtist)
	token := env.token(t, artist)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("artRequest", `{"artName":"Sunrise","artDescription":"dawn","artCategorySeq":1}`))
	part, err := mw.CreateFormFile("artFile", "sunrise.png")
	require.NoError(t, err)
	_, err = part.Write(pngBytes)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/arts", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp apiResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	var created UploadResponse
	require.NoError(t, json.Unmarshal(resp.Data, &created))
	require.Positive(t, created.ArtID)
	id := strconv.FormatInt(created.ArtID, 10)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/arts/download/"+id, nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="sunrise.png"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, pngBytes, w.Body.Bytes())
	etag := w.Header().Get("ETag")
	require.NotEmpty(t, etag)

	cond := httptest.NewRequest(http.MethodGet, "/api/v1/arts/download/"+id, nil)
	cond.Header.Set("If-None-Match", etag)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, cond)
	assert.Equal(t, http.StatusNotModified, w.Code)

	w, _ = doJSON(t, r, http.MethodDelete, "/api/v1/arts/delete", "", DeleteRequest{Seq: created.ArtID})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = doJSON(t, r, http.MethodDelete, "/api/v1/arts/delete", token, DeleteRequest{Seq: created.ArtID})
	assert.Equal(t, http.StatusOK, w.Code)

	w, resp = doJSON(t, r, http.MethodGet, "/api/v1/arts/download/"+id, "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", resp.Error.Code)
}

func TestUploadRejectsNonImage(t *testing.T) {
	env := newTestEnv(t)
	r := setupRouter(t, env)
	artist := env.createUser(t, "artist", auth.RoleArtist)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("artRequest", `{"artName":"Notes","artCategorySeq":1}`))
	part, err := mw.CreateFormFile("artFile", "notes.txt")
	require.NoError(t, err)
	_, err = part.Write([]byte("plain text, not a picture"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/arts", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+env.token(t, artist))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "VALIDATION_ERROR")
}

func TestUserScopedLists(t *testing.T) {
	env := newTestEnv(t)
	r := setupRouter(t, env)
	artist := env.createUser(t, "artist", auth.RoleArtist)
	viewer := env.createUser(t, "viewer", auth.RoleUser)
	id := env.upload(t, artist, "Mine", 1)
	env.like(t, viewer, id)
	token := env.token(t, viewer)

	w, resp := doJSON(t, r, http.MethodGet, "/api/v1/arts/"+strconv.FormatInt(artist.UserID, 10), token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []ArtSummary
	require.NoError(t, json.Unmarshal(resp.Data, &list))
	assert.Equal(t, []int64{id}, ids(list))

	w, resp = doJSON(t, r, http.MethodGet, "/api/v1/arts/"+strconv.FormatInt(viewer.UserID, 10)+"/like", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(resp.Data, &list))
	assert.Equal(t, []int64{id}, ids(list))

	w, resp = doJSON(t, r, http.MethodGet, "/api/v1/arts/abc", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
}
