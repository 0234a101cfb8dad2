package file

import (
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/okboard/board-server/cmd/utils"
)

type Handler struct {
	store *Store
}

func NewHandler(store *Store) *Handler {
	return &Handler{store: store}
}

func (h *Handler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/files/{name}", h.ServeFile).Methods("GET")
}

// ServeFile streams a stored attachment with its inferred content type.
// Stored names never change, so clients may cache aggressively.
func (h *Handler) ServeFile(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	f, info, err := h.store.Open(name)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	defer f.Close()

	contentType := mime.TypeByExtension(filepath.Ext(info.Name()))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.FormatInt(info.Size(), 10))
	w.Header().Set("Cache-Control", "public, max-age=31536000")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", info.Name()))
	io.Copy(w, f)
}
