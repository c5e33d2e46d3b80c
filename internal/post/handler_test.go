package post

import (
	"bytes"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(h *Handler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	api := r.Group("/api", func(c *gin.Context) {
		c.Set("user_id", c.GetHeader("X-Test-User"))
		c.Set("user_email", c.GetHeader("X-Test-Email"))
		c.Next()
	})
	api.POST("/upload", h.Upload)
	api.GET("/feed", h.Feed)
	api.GET("/posts/:id", h.GetPost)
	api.DELETE("/posts/:id", h.DeletePost)
	return r
}

func multipartBody(t *testing.T, caption, filename, contentType string, content []byte) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	if caption != "" {
		require.NoError(t, w.WriteField("caption", caption))
	}
	if filename != "" {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
		header.Set("Content-Type", contentType)
		part, err := w.CreatePart(header)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return body, w.FormDataContentType()
}

func doUpload(t *testing.T, r *gin.Engine, userID, caption, filename, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	body, ct := multipartBody(t, caption, filename, contentType, []byte("bytes"))
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", ct)
	req.Header.Set("X-Test-User", userID)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func doRequest(r *gin.Engine, method, path, userID string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	req.Header.Set("X-Test-User", userID)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestUploadHandler(t *testing.T) {
	tests := []struct {
		name           string
		caption        string
		filename       string
		contentType    string
		storeErr       error
		expectedStatus int
		expectedType   FileType
	}{
		{name: "Image upload", caption: "cute", filename: "cat.jpg", contentType: "image/jpeg", expectedStatus: http.StatusOK, expectedType: FileTypeImage},
		{name: "Video upload", caption: "run", filename: "run.mp4", contentType: "video/mp4", expectedStatus: http.StatusOK, expectedType: FileTypeVideo},
		{name: "Missing caption", filename: "cat.jpg", contentType: "image/jpeg", expectedStatus: http.StatusBadRequest},
		{name: "Missing file", caption: "cute", expectedStatus: http.StatusBadRequest},
		{name: "Store failure", caption: "cute", filename: "cat.jpg", contentType: "image/jpeg", storeErr: errors.New("unreachable"), expectedStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, nil)
			f.store.UploadErr = tt.storeErr
			r := newTestRouter(NewHandler(f.service))

			w := doUpload(t, r, alice.ID, tt.caption, tt.filename, tt.contentType)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus == http.StatusOK {
				var view PostView
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
				assert.Equal(t, tt.caption, view.Caption)
				assert.Equal(t, tt.expectedType, view.FileType)
				assert.NotEmpty(t, view.ID)
				assert.NotEmpty(t, view.URL)
			} else {
				assert.Empty(t, f.feed(t, alice.ID))
			}
		})
	}
}

func TestUploadHandlerUnknownUser(t *testing.T) {
	tests := []struct {
		name            string
		email           string
		expectedStatus  int
		expectedUploads int
	}{
		{name: "No email claim", expectedStatus: http.StatusNotFound},
		{name: "Email claim creates user", email: "carol@example.com", expectedStatus: http.StatusOK, expectedUploads: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, nil)
			r := newTestRouter(NewHandler(f.service))

			body, ct := multipartBody(t, "cute", "cat.jpg", "image/jpeg", []byte("bytes"))
			req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
			req.Header.Set("Content-Type", ct)
			req.Header.Set("X-Test-User", uuid.NewString())
			req.Header.Set("X-Test-Email", tt.email)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, tt.expectedUploads, f.store.Uploads)
		})
	}
}

func TestUploadHandlerBodyTooLarge(t *testing.T) {
	f := newFixture(t, nil)
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/api/upload", func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, 1024)
		c.Set("user_id", alice.ID)
		c.Next()
	}, NewHandler(f.service).Upload)

	body, ct := multipartBody(t, "huge", "big.jpg", "image/jpeg", bytes.Repeat([]byte("x"), 64<<10))
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", ct)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Equal(t, 0, f.store.Uploads)
	assert.Empty(t, f.feed(t, alice.ID))
}

func TestFeedHandler(t *testing.T) {
	f := newFixture(t, nil)
	r := newTestRouter(NewHandler(f.service))

	empty := doRequest(r, http.MethodGet, "/api/feed", bob.ID)
	assert.Equal(t, http.StatusOK, empty.Code)
	assert.JSONEq(t, `{"posts":[]}`, empty.Body.String())

	require.Equal(t, http.StatusOK, doUpload(t, r, alice.ID, "cute", "cat.jpg", "image/jpeg").Code)

	w := doRequest(r, http.MethodGet, "/api/feed", bob.ID)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Posts []map[string]interface{} `json:"posts"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Posts, 1)

	item := body.Posts[0]
	for _, key := range []string{"id", "caption", "url", "file_type", "file_name", "created_at", "user_id", "is_owner", "email"} {
		assert.Contains(t, item, key)
	}
	assert.Equal(t, false, item["is_owner"])
	assert.Equal(t, alice.Email, item["email"])
	assert.Equal(t, "image", item["file_type"])
}

func TestDeleteHandler(t *testing.T) {
	f := newFixture(t, nil)
	r := newTestRouter(NewHandler(f.service))

	up := doUpload(t, r, alice.ID, "cute", "cat.jpg", "image/jpeg")
	require.Equal(t, http.StatusOK, up.Code)
	var view PostView
	require.NoError(t, json.Unmarshal(up.Body.Bytes(), &view))

	forbidden := doRequest(r, http.MethodDelete, "/api/posts/"+view.ID, bob.ID)
	assert.Equal(t, http.StatusForbidden, forbidden.Code)

	missing := doRequest(r, http.MethodDelete, "/api/posts/"+uuid.NewString(), alice.ID)
	assert.Equal(t, http.StatusNotFound, missing.Code)

	get := doRequest(r, http.MethodGet, "/api/posts/"+view.ID, bob.ID)
	assert.Equal(t, http.StatusOK, get.Code)

	ok := doRequest(r, http.MethodDelete, "/api/posts/"+view.ID, alice.ID)
	assert.Equal(t, http.StatusOK, ok.Code)
	assert.JSONEq(t, `{"detail":"Post deleted successfully"}`, ok.Body.String())

	gone := doRequest(r, http.MethodGet, "/api/posts/"+view.ID, alice.ID)
	assert.Equal(t, http.StatusNotFound, gone.Code)
}
