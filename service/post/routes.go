package post

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/okboard/board-server/cmd/utils"
)

// Multipart create requests are parsed with this memory ceiling; larger
// parts spill to temp files.
const maxMultipartMemory = 64 << 20

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/posts", h.ListPosts).Methods("GET")
	router.HandleFunc("/posts", h.CreatePost).Methods("POST")
	router.HandleFunc("/posts/{id}", h.GetPost).Methods("GET")
	router.HandleFunc("/posts/{id}", h.UpdatePost).Methods("PUT")
	router.HandleFunc("/posts/{id}", h.DeletePost).Methods("DELETE")
}

type postRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// ListPosts returns paginated post summaries, optionally filtered by keyword
func (h *Handler) ListPosts(w http.ResponseWriter, r *http.Request) {
	keyword := r.URL.Query().Get("keyword")
	page, size := utils.ParsePage(r)

	summaries, total, err := h.service.List(keyword, page, size)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.NewPage(summaries, total, page, size))
}

// GetPost returns the full detail view and increments the view counter
func (h *Handler) GetPost(w http.ResponseWriter, r *http.Request) {
	id, err := utils.PathID(r, "id")
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	callerID, err := utils.OptionalCallerID(r)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	detail, err := h.service.Get(id, callerID)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, detail)
}

// CreatePost accepts a multipart request: a "post" JSON part plus up to ten
// "files" parts.
func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		utils.WriteError(w, utils.NewValidationError("invalid multipart request", nil))
		return
	}
	callerID, err := utils.CallerID(r)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	var req postRequest
	if err := json.Unmarshal([]byte(r.FormValue("post")), &req); err != nil {
		utils.WriteError(w, utils.NewValidationError("invalid post part", utils.FieldErrors{"post": "must be a JSON object"}))
		return
	}

	var uploads []Upload
	if r.MultipartForm != nil {
		for _, header := range r.MultipartForm.File["files"] {
			part, err := header.Open()
			if err != nil {
				utils.WriteError(w, &utils.StorageError{Op: "read upload " + header.Filename, Err: err})
				return
			}
			data, err := io.ReadAll(part)
			part.Close()
			if err != nil {
				utils.WriteError(w, &utils.StorageError{Op: "read upload " + header.Filename, Err: err})
				return
			}
			uploads = append(uploads, Upload{
				Data:         data,
				OriginalName: header.Filename,
				Size:         header.Size,
				MimeType:     header.Header.Get("Content-Type"),
			})
		}
	}

	id, err := h.service.Create(callerID, req.Title, req.Content, uploads)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]uint{"id": id})
}

// UpdatePost replaces a post's title and content
func (h *Handler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	id, err := utils.PathID(r, "id")
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	callerID, err := utils.CallerID(r)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	var req postRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, utils.NewValidationError("invalid request body", nil))
		return
	}

	if err := h.service.Update(id, callerID, req.Title, req.Content); err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, nil)
}

// DeletePost soft-deletes a post
func (h *Handler) DeletePost(w http.ResponseWriter, r *http.Request) {
	id, err := utils.PathID(r, "id")
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	callerID, err := utils.CallerID(r)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	if err := h.service.Delete(id, callerID); err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, nil)
}
