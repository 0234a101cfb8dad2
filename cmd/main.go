package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/okboard/board-server/cmd/api"
	"github.com/okboard/board-server/cmd/models"
	"github.com/okboard/board-server/db"
	"github.com/okboard/board-server/service/file"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/okboard/board-server/cmd/utils"
)

func main() {
	utils.InitLogger(os.Getenv("LOG_LEVEL"))
	defer utils.Logger.Sync()

	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "migrate":
			runMigrations()
			return
		case "clear-db":
			runDatabaseClear()
			return
		default:
			utils.Logger.Fatal("unknown command", zap.String("command", os.Args[1]))
		}
	}

	startServer()
}

func runMigrations() {
	DB, err := db.NewPSQLStorage()
	if err != nil {
		utils.Logger.Fatal("database initialization error", zap.Error(err))
	}
	defer closeDB(DB)

	if err := performMigrations(DB); err != nil {
		utils.Logger.Fatal("migration error", zap.Error(err))
	}
	utils.Logger.Info("migrations completed successfully")
}

func performMigrations(DB *gorm.DB) error {

	migrations := map[interface{}]string{
		&models.User{}:     "User",
		&models.Post{}:     "Post",
		&models.PostFile{}: "PostFile",
		&models.Comment{}:  "Comment",
	}

	utils.Logger.Info("starting database migrations")
	for model, name := range migrations {
		if err := DB.AutoMigrate(model); err != nil {
			return fmt.Errorf("error migrating %s table: %w", name, err)
		}
		utils.Logger.Info("table migrated", zap.String("table", name))
	}

	if _, err := file.NewStore(uploadDir()); err != nil {
		return fmt.Errorf("error preparing upload directory: %w", err)
	}
	utils.Logger.Info("upload directory ready", zap.String("dir", uploadDir()))

	return nil
}

func startServer() {
	DB, err := db.NewPSQLStorage()
	if err != nil {
		utils.Logger.Fatal("database initialization error", zap.Error(err))
	}
	defer closeDB(DB)
	utils.Logger.Info("connected to the database")

	uploads, err := file.NewStore(uploadDir())
	if err != nil {
		utils.Logger.Fatal("upload store initialization error", zap.Error(err))
	}

	// Graceful shutdown setup
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	port := os.Getenv("SERVER_PORT")
	if port == "" {
		port = "8080"
	}
	server := api.NewApiServer(":"+port, DB, uploads)

	go func() {
		if err := server.Run(); err != nil {
			utils.Logger.Fatal("server error", zap.Error(err))
		}
	}()
	utils.Logger.Info("server running", zap.String("port", port))

	<-quit
	utils.Logger.Info("shutting down server")
}

func uploadDir() string {
	dir := os.Getenv("UPLOAD_DIR")
	if dir == "" {
		dir = "uploads"
	}
	return dir
}

func closeDB(DB *gorm.DB) {
	sqlDB, _ := DB.DB()
	sqlDB.Close()
	utils.Logger.Info("database connection closed")
}

func runDatabaseClear() {
	DB, err := db.NewPSQLStorage()
	if err != nil {
		utils.Logger.Fatal("database initialization error", zap.Error(err))
	}
	defer closeDB(DB)

	var confirmation string
	fmt.Print("Are you sure you want to clear the database? (yes/no): ")
	fmt.Scanln(&confirmation)

	if confirmation != "yes" {
		utils.Logger.Info("database clearing cancelled")
		return
	}

	tables := []interface{}{
		&models.Comment{},
		&models.PostFile{},
		&models.Post{},
		&models.User{},
	}

	for _, table := range tables {
		if err := DB.Migrator().DropTable(table); err != nil {
			utils.Logger.Warn("error dropping table", zap.Error(err))
		}
	}
	utils.Logger.Info("database cleared")
}
