package post

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gorilla/mux"
	"github.com/okboard/board-server/cmd/models"
	"github.com/okboard/board-server/cmd/utils"
	"github.com/okboard/board-server/service/comment"
	"github.com/okboard/board-server/service/file"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
}

func newTestRouter(t *testing.T) (*mux.Router, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	store, err := file.NewStore(filepath.Join(t.TempDir(), "uploads"))
	require.NoError(t, err)

	router := mux.NewRouter()
	NewHandler(NewService(db, store, comment.NewService(db))).RegisterRoutes(router)
	file.NewHandler(store).RegisterRoutes(router)
	return router, db
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func TestCreatePostMultipartAndServeFile(t *testing.T) {
	router, db := newTestRouter(t)
	owner := seedUser(t, db, "owner")

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	require.NoError(t, writer.WriteField("post", `{"title":"multipart post","content":"uploaded body"}`))
	part, err := writer.CreateFormFile("files", "hello.txt")
	require.NoError(t, err)
	_, err = part.Write([]byte("hello from the upload"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest("POST", fmt.Sprintf("/posts?userId=%d", owner.ID), &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	env := decodeEnvelope(t, rec)
	assert.True(t, env.Success)

	var created struct {
		ID uint `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))
	require.NotZero(t, created.ID)

	// Fetch the detail and follow the stored file URL.
	req = httptest.NewRequest("GET", fmt.Sprintf("/posts/%d?userId=%d", created.ID, owner.ID), nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var detail Detail
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &detail))
	assert.Equal(t, "multipart post", detail.Title)
	assert.True(t, detail.IsOwner)
	require.Len(t, detail.Files, 1)
	assert.Equal(t, "hello.txt", detail.Files[0].OriginalName)

	req = httptest.NewRequest("GET", detail.Files[0].URL, nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "hello from the upload", rec.Body.String())
	assert.Equal(t, "public, max-age=31536000", rec.Header().Get("Cache-Control"))
}

func TestCreatePostWithoutUserIDRejected(t *testing.T) {
	router, _ := newTestRouter(t)

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	require.NoError(t, writer.WriteField("post", `{"title":"t","content":"c"}`))
	require.NoError(t, writer.Close())

	req := httptest.NewRequest("POST", "/posts", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, decodeEnvelope(t, rec).Success)
}

func TestListPostsEndpoint(t *testing.T) {
	router, db := newTestRouter(t)
	owner := seedUser(t, db, "owner")
	for i := 0; i < 3; i++ {
		require.NoError(t, db.Create(&models.Post{
			Title: fmt.Sprintf("post %d", i), Content: "body", AuthorID: owner.ID,
		}).Error)
	}

	req := httptest.NewRequest("GET", "/posts?page=0&size=2", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var page utils.Page
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &page))
	assert.Equal(t, int64(3), page.Total)
	assert.Equal(t, int64(2), page.TotalPages)
}

func TestGetMissingPostEnvelope(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest("GET", "/posts/42", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.False(t, env.Success)

	var errBody utils.ErrorBody
	require.NoError(t, json.Unmarshal(env.Data, &errBody))
	assert.Equal(t, "NOT_FOUND", errBody.Code)
}
