package http

import (
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/examgate/examgate/internal/auth"
	"github.com/examgate/examgate/internal/storage"
	"github.com/examgate/examgate/internal/upload"
)

// MountUploads wires the file picker onto the router. Each request gets
// its own picker so no selection state is shared across requests; an
// accepted file is streamed to the blob store from the select callback.
func MountUploads(r chi.Router, cfg upload.Config, bs storage.BlobStore) {
	// POST /uploads (multipart, field "file")
	r.Post("/uploads", func(w http.ResponseWriter, req *http.Request) {
		id, ok := auth.IdentityFromContext(req.Context())
		if !ok {
			writeMessage(w, http.StatusUnauthorized, "authentication required")
			return
		}
		f, hdr, err := req.FormFile("file")
		if err != nil {
			writeMessage(w, http.StatusBadRequest, "file is required")
			return
		}
		defer f.Close()

		var key string
		var putErr error
		picker := upload.NewPicker(upload.Config{
			Accept:    cfg.Accept,
			MaxSizeMB: cfg.MaxSizeMB,
			OnFileSelect: func(sel upload.File) {
				key, putErr = bs.Put(uploadKey(id.UserID, sel.Name), f)
			},
		})
		err = picker.Select(upload.File{
			Name:        hdr.Filename,
			Size:        hdr.Size,
			ContentType: hdr.Header.Get("Content-Type"),
		})
		if err != nil {
			writeMessage(w, http.StatusBadRequest, picker.Err())
			return
		}
		if putErr != nil {
			respondErr(w, putErr, "failed to store uploaded file")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"key": key})
	})

	// GET /uploads/{name}
	r.Get("/uploads/{name}", func(w http.ResponseWriter, req *http.Request) {
		id, ok := auth.IdentityFromContext(req.Context())
		if !ok {
			writeMessage(w, http.StatusUnauthorized, "authentication required")
			return
		}
		name := chi.URLParam(req, "name")
		rc, err := bs.Get(uploadKey(id.UserID, name))
		if err != nil {
			writeMessage(w, http.StatusNotFound, "file not found")
			return
		}
		defer rc.Close()
		w.Header().Set("Content-Type", "application/octet-stream")
		_, _ = io.Copy(w, rc)
	})

	// DELETE /uploads?name=<filename>
	r.Delete("/uploads", func(w http.ResponseWriter, req *http.Request) {
		id, ok := auth.IdentityFromContext(req.Context())
		if !ok {
			writeMessage(w, http.StatusUnauthorized, "authentication required")
			return
		}
		name := strings.TrimSpace(req.URL.Query().Get("name"))
		if name == "" {
			writeMessage(w, http.StatusBadRequest, "name is required")
			return
		}
		if err := bs.Remove(uploadKey(id.UserID, name)); err != nil {
			writeMessage(w, http.StatusNotFound, "file not found")
			return
		}
		writeMessage(w, http.StatusOK, "file removed")
	})
}

func uploadKey(userID, filename string) string {
	return "uploads/" + userID + "/" + path.Base(filename)
}
