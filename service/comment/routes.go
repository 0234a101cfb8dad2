package comment

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/okboard/board-server/cmd/utils"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/posts/{postId}/comments", h.ListComments).Methods("GET")
	router.HandleFunc("/posts/{postId}/comments", h.CreateComment).Methods("POST")
	router.HandleFunc("/comments/{id}", h.UpdateComment).Methods("PUT")
	router.HandleFunc("/comments/{id}", h.DeleteComment).Methods("DELETE")
}

type commentRequest struct {
	Content  string `json:"content"`
	ParentID *uint  `json:"parent_id,omitempty"`
}

// ListComments returns the assembled comment tree for a post
func (h *Handler) ListComments(w http.ResponseWriter, r *http.Request) {
	postID, err := utils.PathID(r, "postId")
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	callerID, err := utils.OptionalCallerID(r)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	tree, err := h.service.List(postID, callerID)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, tree)
}

// CreateComment adds a comment or a reply to a post
func (h *Handler) CreateComment(w http.ResponseWriter, r *http.Request) {
	postID, err := utils.PathID(r, "postId")
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	callerID, err := utils.CallerID(r)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	var req commentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, utils.NewValidationError("invalid request body", nil))
		return
	}

	id, err := h.service.Create(postID, callerID, req.Content, req.ParentID)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]uint{"id": id})
}

// UpdateComment replaces a comment's content
func (h *Handler) UpdateComment(w http.ResponseWriter, r *http.Request) {
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

	var req commentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, utils.NewValidationError("invalid request body", nil))
		return
	}

	if err := h.service.Update(id, callerID, req.Content); err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, nil)
}

// DeleteComment soft-deletes a comment
func (h *Handler) DeleteComment(w http.ResponseWriter, r *http.Request) {
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
