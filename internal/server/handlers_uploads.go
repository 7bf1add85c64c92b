package server

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"path"

	"github.com/google/uuid"

	"github.com/jonathan/cover-letter-studio/internal/server/middleware"
	"github.com/jonathan/cover-letter-studio/internal/upload"
)

// uploadedFile is one entry in the upload response.
type uploadedFile struct {
	ID       string  `json:"id"`
	FileName string  `json:"file_name"`
	Status   string  `json:"status"`
	Tries    int     `json:"tries"`
	Key      *string `json:"key,omitempty"`
	Error    *string `json:"error,omitempty"`
}

type uploadResponse struct {
	Files     []uploadedFile `json:"files"`
	RootError string         `json:"root_error,omitempty"`
}

// handleUploads accepts a multipart batch of documents, validates it
// against the configured limits, and stores the accepted files in the
// blob store. Per-file failures and batch-level rejections are reported
// in the response body; the request itself succeeds. All files must be
// posted under the files field, which keeps them in submission order;
// capacity slicing and eviction depend on that order.
func (s *Server) handleUploads(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	maxBody := s.uploadLimits.MaxSize * int64(s.uploadLimits.MaxFiles+1)
	if maxBody <= 0 {
		maxBody = 32 << 20
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)
	if err := r.ParseMultipartForm(maxBody); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid multipart request")
		return
	}

	var files []upload.File
	for _, header := range r.MultipartForm.File["files"] {
		f, err := header.Open()
		if err != nil {
			s.errorResponse(w, http.StatusBadRequest, "failed to read uploaded file")
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			s.errorResponse(w, http.StatusBadRequest, "failed to read uploaded file")
			return
		}
		files = append(files, upload.File{
			Name:        header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Data:        data,
		})
	}
	if len(files) == 0 {
		s.errorResponse(w, http.StatusBadRequest, "no files in request")
		return
	}

	controller, err := s.newUploadController(r.Context(), userID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "failed to start upload")
		return
	}
	defer controller.Close()

	controller.Drop(r.Context(), files)

	resp := uploadResponse{RootError: controller.RootError()}
	for _, tf := range controller.Files() {
		entry := uploadedFile{
			ID:       tf.ID,
			FileName: tf.FileName,
			Status:   string(tf.Status),
			Tries:    tf.Tries,
			Key:      tf.Result,
			Error:    tf.Err,
		}
		resp.Files = append(resp.Files, entry)
	}

	s.jsonResponse(w, http.StatusOK, resp)
}

// newUploadController builds a single-batch controller whose transport
// writes into the blob store under the owner's prefix.
func (s *Server) newUploadController(ctx context.Context, ownerID uuid.UUID) (*upload.Controller[string, string], error) {
	return upload.NewController(ctx, upload.Config[string, string]{
		UploadFile: func(_ context.Context, f upload.File) upload.Outcome[string, string] {
			key := path.Join(ownerID.String(), uuid.NewString()+"-"+path.Base(f.Name))
			if err := s.blobStore.Put(key, bytes.NewReader(f.Data)); err != nil {
				return upload.Failed[string, string](fmt.Sprintf("failed to store %s", f.Name))
			}
			return upload.Succeeded[string, string](key)
		},
		Limits: s.uploadLimits,
	})
}
