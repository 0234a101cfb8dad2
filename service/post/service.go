package post

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/okboard/board-server/cmd/models"
	"github.com/okboard/board-server/cmd/utils"
	"github.com/okboard/board-server/service/comment"
	"github.com/okboard/board-server/service/file"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	MaxTitleLen   = 150
	MaxContentLen = 10000
	MaxFiles      = 10
	MaxFileSize   = 5 << 20 // 5 MiB per attachment
)

type Service struct {
	db       *gorm.DB
	files    *file.Store
	comments *comment.Service
}

func NewService(db *gorm.DB, files *file.Store, comments *comment.Service) *Service {
	return &Service{db: db, files: files, comments: comments}
}

// Summary is the listing projection: no body, no files, live comment count.
type Summary struct {
	ID             uint      `json:"id"`
	Title          string    `json:"title"`
	AuthorNickname string    `json:"author_nickname"`
	ViewCount      int64     `json:"view_count"`
	LikeCount      int64     `json:"like_count"`
	CommentCount   int64     `json:"comment_count"`
	CreatedAt      time.Time `json:"created_at"`
}

type FileView struct {
	URL          string `json:"url"`
	OriginalName string `json:"original_name"`
	FileSize     int64  `json:"file_size"`
	MimeType     string `json:"mime_type"`
}

type Detail struct {
	ID             uint            `json:"id"`
	Title          string          `json:"title"`
	Content        string          `json:"content"`
	AuthorNickname string          `json:"author_nickname"`
	IsOwner        bool            `json:"is_owner"`
	ViewCount      int64           `json:"view_count"`
	LikeCount      int64           `json:"like_count"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	Files          []FileView      `json:"files"`
	Comments       []*comment.Node `json:"comments"`
}

// Upload carries one attachment through creation; the payload is held in
// memory until validation for the whole request has passed.
type Upload struct {
	Data         []byte
	OriginalName string
	Size         int64
	MimeType     string
}

func (s *Service) searchQuery(keyword string) *gorm.DB {
	q := s.db.Model(&models.Post{}).Where("posts.is_deleted = ?", false)
	if keyword != "" {
		pattern := "%" + keyword + "%"
		q = q.Where("posts.title LIKE ? OR posts.content LIKE ?", pattern, pattern)
	}
	return q
}

// List returns one page of summaries, newest first with id as the tie
// breaker. Comment counts are computed live against non-deleted comments.
func (s *Service) List(keyword string, page, size int) ([]Summary, int64, error) {
	var total int64
	if err := s.searchQuery(keyword).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	commentCount := s.db.Model(&models.Comment{}).
		Select("count(*)").
		Where("comments.post_id = posts.id AND comments.is_deleted = ?", false)

	summaries := []Summary{}
	err := s.searchQuery(keyword).
		Select("posts.id, posts.title, users.nickname AS author_nickname, posts.view_count, posts.like_count, posts.created_at, (?) AS comment_count", commentCount).
		Joins("JOIN users ON users.id = posts.author_id").
		Order("posts.created_at DESC, posts.id DESC").
		Offset(page * size).
		Limit(size).
		Scan(&summaries).Error
	if err != nil {
		return nil, 0, err
	}
	return summaries, total, nil
}

// Get loads the full detail view and bumps the view counter by exactly one.
// The increment runs as a single relative UPDATE so concurrent fetches never
// lose each other's count.
func (s *Service) Get(id uint, callerID *uint) (*Detail, error) {
	var post models.Post
	err := s.db.Preload("Author").Preload("Files").
		Where("is_deleted = ?", false).
		First(&post, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.NewNotFoundError("post", id)
	}
	if err != nil {
		return nil, err
	}

	if err := s.db.Model(&models.Post{}).Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + ?", 1)).Error; err != nil {
		return nil, err
	}
	post.ViewCount++

	tree, err := s.comments.List(post.ID, callerID)
	if err != nil {
		return nil, err
	}

	detail := &Detail{
		ID:        post.ID,
		Title:     post.Title,
		Content:   post.Content,
		IsOwner:   callerID != nil && *callerID == post.AuthorID,
		ViewCount: post.ViewCount,
		LikeCount: post.LikeCount,
		CreatedAt: post.CreatedAt,
		UpdatedAt: post.UpdatedAt,
		Files:     make([]FileView, 0, len(post.Files)),
		Comments:  tree,
	}
	if post.Author != nil {
		detail.AuthorNickname = post.Author.Nickname
	}
	for _, f := range post.Files {
		detail.Files = append(detail.Files, FileView{
			URL:          f.FileURL,
			OriginalName: f.OriginalName,
			FileSize:     f.FileSize,
			MimeType:     f.MimeType,
		})
	}
	return detail, nil
}

// Create validates the whole request before anything is persisted, stores
// each attachment, then commits the post and its file rows in one
// transaction. Stored files are removed again if the commit fails.
func (s *Service) Create(callerID uint, title, content string, uploads []Upload) (uint, error) {
	fields := validatePostFields(title, content)
	if len(uploads) > MaxFiles {
		fields["files"] = "at most 10 files may be attached"
	}
	for _, u := range uploads {
		if u.Size > MaxFileSize {
			fields["files"] = "each file must be at most 5 MiB"
			break
		}
	}
	if len(fields) > 0 {
		return 0, utils.NewValidationError("invalid post", fields)
	}

	var author models.User
	err := s.db.First(&author, callerID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, utils.NewNotFoundError("user", callerID)
	}
	if err != nil {
		return 0, err
	}

	stored := make([]string, 0, len(uploads))
	cleanup := func() {
		for _, name := range stored {
			s.files.Remove(name)
		}
	}

	fileRows := make([]models.PostFile, 0, len(uploads))
	for _, u := range uploads {
		name, err := s.files.Save(u.Data, u.OriginalName)
		if err != nil {
			cleanup()
			return 0, err
		}
		stored = append(stored, name)

		mimeType := u.MimeType
		if mimeType == "" {
			mimeType = "application/octet-stream"
		}
		fileRows = append(fileRows, models.PostFile{
			FileURL:      "/files/" + name,
			OriginalName: u.OriginalName,
			FileSize:     u.Size,
			MimeType:     mimeType,
		})
	}

	tx := s.db.Begin()
	if tx.Error != nil {
		cleanup()
		return 0, tx.Error
	}

	post := models.Post{
		Title:    title,
		Content:  content,
		AuthorID: callerID,
	}
	if err := tx.Create(&post).Error; err != nil {
		tx.Rollback()
		cleanup()
		return 0, err
	}

	for i := range fileRows {
		fileRows[i].PostID = post.ID
		if err := tx.Create(&fileRows[i]).Error; err != nil {
			tx.Rollback()
			cleanup()
			return 0, err
		}
	}

	if err := tx.Commit().Error; err != nil {
		cleanup()
		return 0, err
	}

	utils.Logger.Info("post created",
		zap.Uint("post_id", post.ID),
		zap.Uint("author_id", callerID),
		zap.Int("files", len(fileRows)))
	return post.ID, nil
}

func (s *Service) Update(id, callerID uint, title, content string) error {
	if fields := validatePostFields(title, content); len(fields) > 0 {
		return utils.NewValidationError("invalid post", fields)
	}

	tx := s.db.Begin()
	if tx.Error != nil {
		return tx.Error
	}

	post, err := findVisible(tx, id)
	if err != nil {
		tx.Rollback()
		return err
	}
	if post.AuthorID != callerID {
		tx.Rollback()
		return &utils.ForbiddenError{Message: "only the owner may edit this post"}
	}

	err = tx.Model(post).Updates(map[string]interface{}{
		"title":   title,
		"content": content,
	}).Error
	if err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit().Error
}

// Delete soft-deletes a post. Files and comments are left in place.
func (s *Service) Delete(id, callerID uint) error {
	tx := s.db.Begin()
	if tx.Error != nil {
		return tx.Error
	}

	post, err := findVisible(tx, id)
	if err != nil {
		tx.Rollback()
		return err
	}
	if post.AuthorID != callerID {
		tx.Rollback()
		return &utils.ForbiddenError{Message: "only the owner may delete this post"}
	}

	if err := tx.Model(post).Update("is_deleted", true).Error; err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit().Error; err != nil {
		return err
	}

	utils.Logger.Info("post soft-deleted", zap.Uint("post_id", id), zap.Uint("author_id", callerID))
	return nil
}

// findVisible loads a post, treating soft-deleted rows as absent. Existence
// is settled before ownership so a deleted row never answers Forbidden.
func findVisible(tx *gorm.DB, id uint) (*models.Post, error) {
	var post models.Post
	err := tx.Where("is_deleted = ?", false).First(&post, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.NewNotFoundError("post", id)
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func validatePostFields(title, content string) utils.FieldErrors {
	fields := utils.FieldErrors{}
	if strings.TrimSpace(title) == "" {
		fields["title"] = "must not be blank"
	} else if utf8.RuneCountInString(title) > MaxTitleLen {
		fields["title"] = "must be at most 150 characters"
	}
	if strings.TrimSpace(content) == "" {
		fields["content"] = "must not be blank"
	} else if utf8.RuneCountInString(content) > MaxContentLen {
		fields["content"] = "must be at most 10000 characters"
	}
	return fields
}
