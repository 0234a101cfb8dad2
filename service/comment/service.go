package comment

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/okboard/board-server/cmd/models"
	"github.com/okboard/board-server/cmd/utils"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const MaxContentLen = 1000

type Service struct {
	db *gorm.DB

	// EnforceParentPost requires a reply's parent to belong to the same post.
	// Off by default, matching the permissive legacy behavior.
	EnforceParentPost bool
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Node is one comment in the assembled thread. A soft-deleted comment that
// still has visible descendants survives as an id-bearing tombstone: Deleted
// is set and content/author are blanked, but its replies keep their position.
type Node struct {
	ID             uint      `json:"id"`
	Content        string    `json:"content"`
	AuthorNickname string    `json:"author_nickname,omitempty"`
	IsAuthor       bool      `json:"is_author"`
	ParentID       *uint     `json:"parent_id,omitempty"`
	Deleted        bool      `json:"deleted"`
	CreatedAt      time.Time `json:"created_at"`
	Replies        []*Node   `json:"replies"`
}

// List assembles the comment tree for a post. Comments arrive as a single
// flat fetch ordered by creation time; the tree is built in one pass over an
// id-keyed map, and a comment whose parent is not in the fetched set becomes
// a root rather than being dropped.
func (s *Service) List(postID uint, callerID *uint) ([]*Node, error) {
	var comments []models.Comment
	err := s.db.Preload("Author").
		Where("post_id = ?", postID).
		Order("created_at ASC, id ASC").
		Find(&comments).Error
	if err != nil {
		return nil, err
	}

	nodes := make(map[uint]*Node, len(comments))
	ordered := make([]*Node, 0, len(comments))
	for i := range comments {
		c := &comments[i]
		n := &Node{
			ID:        c.ID,
			Content:   c.Content,
			IsAuthor:  callerID != nil && *callerID == c.AuthorID,
			ParentID:  c.ParentID,
			Deleted:   c.IsDeleted,
			CreatedAt: c.CreatedAt,
			Replies:   []*Node{},
		}
		if c.Author != nil {
			n.AuthorNickname = c.Author.Nickname
		}
		nodes[c.ID] = n
		ordered = append(ordered, n)
	}

	roots := []*Node{}
	for i := range comments {
		n := ordered[i]
		if n.ParentID != nil {
			if parent, ok := nodes[*n.ParentID]; ok {
				parent.Replies = append(parent.Replies, n)
				continue
			}
		}
		roots = append(roots, n)
	}

	return prune(roots), nil
}

// prune drops soft-deleted comments without visible descendants and strips
// the content of those that must stay for their children's sake.
func prune(nodes []*Node) []*Node {
	kept := []*Node{}
	for _, n := range nodes {
		n.Replies = prune(n.Replies)
		if n.Deleted {
			if len(n.Replies) == 0 {
				continue
			}
			n.Content = ""
			n.AuthorNickname = ""
			n.IsAuthor = false
		}
		kept = append(kept, n)
	}
	return kept
}

func (s *Service) Create(postID, callerID uint, content string, parentID *uint) (uint, error) {
	if err := validateContent(content); err != nil {
		return 0, err
	}

	var post models.Post
	err := s.db.Where("is_deleted = ?", false).First(&post, postID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, utils.NewNotFoundError("post", postID)
	}
	if err != nil {
		return 0, err
	}

	var author models.User
	err = s.db.First(&author, callerID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, utils.NewNotFoundError("user", callerID)
	}
	if err != nil {
		return 0, err
	}

	if parentID != nil {
		var parent models.Comment
		err = s.db.First(&parent, *parentID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, utils.NewNotFoundError("parent comment", *parentID)
		}
		if err != nil {
			return 0, err
		}
		if s.EnforceParentPost && parent.PostID != postID {
			return 0, utils.NewValidationError("parent comment belongs to another post",
				utils.FieldErrors{"parent_id": "must reference a comment on the same post"})
		}
	}

	comment := models.Comment{
		PostID:   postID,
		AuthorID: callerID,
		Content:  content,
		ParentID: parentID,
	}
	if err := s.db.Create(&comment).Error; err != nil {
		return 0, err
	}

	utils.Logger.Info("comment created",
		zap.Uint("comment_id", comment.ID),
		zap.Uint("post_id", postID),
		zap.Uint("author_id", callerID))
	return comment.ID, nil
}

func (s *Service) Update(id, callerID uint, content string) error {
	if err := validateContent(content); err != nil {
		return err
	}

	tx := s.db.Begin()
	if tx.Error != nil {
		return tx.Error
	}

	comment, err := findVisible(tx, id)
	if err != nil {
		tx.Rollback()
		return err
	}
	if comment.AuthorID != callerID {
		tx.Rollback()
		return &utils.ForbiddenError{Message: "only the author may edit this comment"}
	}

	if err := tx.Model(comment).Update("content", content).Error; err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit().Error
}

// Delete soft-deletes a comment. Its replies stay visible; List decides how
// they are displayed.
func (s *Service) Delete(id, callerID uint) error {
	tx := s.db.Begin()
	if tx.Error != nil {
		return tx.Error
	}

	comment, err := findVisible(tx, id)
	if err != nil {
		tx.Rollback()
		return err
	}
	if comment.AuthorID != callerID {
		tx.Rollback()
		return &utils.ForbiddenError{Message: "only the author may delete this comment"}
	}

	if err := tx.Model(comment).Update("is_deleted", true).Error; err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit().Error; err != nil {
		return err
	}

	utils.Logger.Info("comment soft-deleted", zap.Uint("comment_id", id), zap.Uint("author_id", callerID))
	return nil
}

// findVisible loads a comment, treating soft-deleted rows as absent so the
// caller learns nothing beyond "not found". Existence is always settled
// before ownership.
func findVisible(tx *gorm.DB, id uint) (*models.Comment, error) {
	var comment models.Comment
	err := tx.Where("is_deleted = ?", false).First(&comment, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.NewNotFoundError("comment", id)
	}
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

func validateContent(content string) error {
	fields := utils.FieldErrors{}
	if strings.TrimSpace(content) == "" {
		fields["content"] = "must not be blank"
	} else if utf8.RuneCountInString(content) > MaxContentLen {
		fields["content"] = "must be at most 1000 characters"
	}
	if len(fields) > 0 {
		return utils.NewValidationError("invalid comment", fields)
	}
	return nil
}
