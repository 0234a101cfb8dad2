package api

import (
	"net/http"
	"os"
	"strconv"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/okboard/board-server/cmd/utils"
	"github.com/okboard/board-server/service/comment"
	"github.com/okboard/board-server/service/file"
	"github.com/okboard/board-server/service/post"
	"github.com/okboard/board-server/service/user"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type APIServer struct {
	address string
	db      *gorm.DB
	uploads *file.Store
}

func NewApiServer(address string, db *gorm.DB, uploads *file.Store) *APIServer {
	return &APIServer{
		address: address,
		db:      db,
		uploads: uploads,
	}
}

func (s *APIServer) Run() error {
	router := mux.NewRouter()

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods("GET")

	userHandler := user.NewHandler(user.NewService(s.db))
	userHandler.RegisterRoutes(router)

	commentService := comment.NewService(s.db)
	if v, err := strconv.ParseBool(os.Getenv("ENFORCE_PARENT_POST")); err == nil {
		commentService.EnforceParentPost = v
	}
	commentHandler := comment.NewHandler(commentService)
	commentHandler.RegisterRoutes(router)

	postHandler := post.NewHandler(post.NewService(s.db, s.uploads, commentService))
	postHandler.RegisterRoutes(router)

	fileHandler := file.NewHandler(s.uploads)
	fileHandler.RegisterRoutes(router)

	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type"}),
	)

	utils.Logger.Info("server listening", zap.String("address", s.address))
	return http.ListenAndServe(s.address, handlers.LoggingHandler(os.Stdout, cors(router)))
}
