package user

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
	router.HandleFunc("/users", h.Register).Methods("POST")
	router.HandleFunc("/users/login", h.Login).Methods("POST")
	router.HandleFunc("/users/me", h.Me).Methods("GET")
	router.HandleFunc("/users/{id}", h.DeleteUser).Methods("DELETE")
}

type userRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Nickname string `json:"nickname"`
}

// Register creates an account
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, utils.NewValidationError("invalid request body", nil))
		return
	}

	id, err := h.service.Register(req.Username, req.Password, req.Nickname)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]uint{"id": id})
}

// Login checks a credential and returns the user view
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, utils.NewValidationError("invalid request body", nil))
		return
	}

	view, err := h.service.Login(req.Username, req.Password)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, view)
}

// Me returns the caller's own record
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	callerID, err := utils.CallerID(r)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	view, err := h.service.Get(callerID)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, view)
}

// DeleteUser removes an account permanently
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := utils.PathID(r, "id")
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	if err := h.service.Delete(id); err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, nil)
}
