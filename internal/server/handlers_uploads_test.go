package server

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/cover-letter-studio/internal/blob"
	"github.com/jonathan/cover-letter-studio/internal/server/middleware"
	"github.com/jonathan/cover-letter-studio/internal/upload"
)

func uploadServer(t *testing.T) *Server {
	t.Helper()
	store, err := blob.NewStore(t.TempDir())
	require.NoError(t, err)
	return &Server{
		blobStore: store,
		uploadLimits: upload.Limits{
			Accept:   map[string][]string{"application/pdf": {".pdf"}},
			MaxSize:  1 << 20,
			MaxFiles: 2,
		},
	}
}

func multipartBody(t *testing.T, files map[string][]byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for name, data := range files {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", `form-data; name="files"; filename="`+name+`"`)
		header.Set("Content-Type", "application/pdf")
		part, err := writer.CreatePart(header)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return &buf, writer.FormDataContentType()
}

func doUpload(t *testing.T, s *Server, files map[string][]byte) uploadResponse {
	t.Helper()
	body, contentType := multipartBody(t, files)
	req := httptest.NewRequest(http.MethodPost, "/uploads", body)
	req.Header.Set("Content-Type", contentType)
	req = middleware.WithUserID(req, uuid.New())

	rec := httptest.NewRecorder()
	s.handleUploads(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp uploadResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestHandleUploadsStoresFiles(t *testing.T) {
	s := uploadServer(t)

	resp := doUpload(t, s, map[string][]byte{"resume.pdf": []byte("pdf bytes")})

	require.Len(t, resp.Files, 1)
	entry := resp.Files[0]
	assert.Equal(t, "resume.pdf", entry.FileName)
	assert.Equal(t, "success", entry.Status)
	assert.Equal(t, 1, entry.Tries)
	require.NotNil(t, entry.Key)
	assert.Empty(t, resp.RootError)

	r, err := s.blobStore.Open(*entry.Key)
	require.NoError(t, err)
	defer r.Close()
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "pdf bytes", string(data))
}

func TestHandleUploadsRejectsOverCapacity(t *testing.T) {
	s := uploadServer(t)

	resp := doUpload(t, s, map[string][]byte{
		"a.pdf": []byte("a"),
		"b.pdf": []byte("b"),
		"c.pdf": []byte("c"),
	})

	assert.Len(t, resp.Files, 2)
	assert.Contains(t, resp.RootError, "2 files")
}

func TestHandleUploadsRejectsWrongType(t *testing.T) {
	s := uploadServer(t)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="files"; filename="notes.txt"`)
	header.Set("Content-Type", "text/plain")
	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write([]byte("plain text"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/uploads", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req = middleware.WithUserID(req, uuid.New())

	rec := httptest.NewRecorder()
	s.handleUploads(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp uploadResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Empty(t, resp.Files)
	assert.Contains(t, resp.RootError, ".pdf")
}

func TestHandleUploadsRequiresAuth(t *testing.T) {
	s := uploadServer(t)

	body, contentType := multipartBody(t, map[string][]byte{"resume.pdf": []byte("x")})
	req := httptest.NewRequest(http.MethodPost, "/uploads", body)
	req.Header.Set("Content-Type", contentType)

	rec := httptest.NewRecorder()
	s.handleUploads(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHandleUploadsKeepsSubmissionOrder(t *testing.T) {
	s := uploadServer(t)
	s.uploadLimits.MaxFiles = 4

	names := []string{"first.pdf", "second.pdf", "third.pdf"}
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for _, name := range names {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", `form-data; name="files"; filename="`+name+`"`)
		header.Set("Content-Type", "application/pdf")
		part, err := writer.CreatePart(header)
		require.NoError(t, err)
		_, err = part.Write([]byte(name))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/uploads", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req = middleware.WithUserID(req, uuid.New())

	rec := httptest.NewRecorder()
	s.handleUploads(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp uploadResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Files, len(names))
	for i, name := range names {
		assert.Equal(t, name, resp.Files[i].FileName)
	}
}

func TestHandleUploadsIgnoresOtherFields(t *testing.T) {
	s := uploadServer(t)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="attachment"; filename="resume.pdf"`)
	header.Set("Content-Type", "application/pdf")
	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write([]byte("pdf bytes"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/uploads", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req = middleware.WithUserID(req, uuid.New())

	rec := httptest.NewRecorder()
	s.handleUploads(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleUploadsRequiresFiles(t *testing.T) {
	s := uploadServer(t)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	require.NoError(t, writer.WriteField("note", "no files"))
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/uploads", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req = middleware.WithUserID(req, uuid.New())

	rec := httptest.NewRecorder()
	s.handleUploads(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
