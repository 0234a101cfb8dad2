package user

import (
	"errors"
	"strings"
	"time"

	"github.com/okboard/board-server/cmd/models"
	"github.com/okboard/board-server/cmd/utils"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

type View struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	Nickname  string    `json:"nickname"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

func viewOf(u *models.User) *View {
	return &View{
		ID:        u.ID,
		Username:  u.Username,
		Nickname:  u.Nickname,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

// Register creates a user with the USER role. The credential is stored as
// given; real authentication is deferred to a later iteration.
func (s *Service) Register(username, password, nickname string) (uint, error) {
	fields := utils.FieldErrors{}
	if strings.TrimSpace(username) == "" {
		fields["username"] = "must not be blank"
	}
	if strings.TrimSpace(password) == "" {
		fields["password"] = "must not be blank"
	}
	if strings.TrimSpace(nickname) == "" {
		fields["nickname"] = "must not be blank"
	}
	if len(fields) > 0 {
		return 0, utils.NewValidationError("invalid user", fields)
	}

	var existing models.User
	err := s.db.Where("username = ?", username).First(&existing).Error
	if err == nil {
		return 0, &utils.ConflictError{Message: "username is already taken"}
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, err
	}

	user := models.User{
		Username: username,
		Password: password,
		Nickname: nickname,
		Role:     "USER",
	}
	if err := s.db.Create(&user).Error; err != nil {
		return 0, err
	}

	utils.Logger.Info("user registered", zap.Uint("user_id", user.ID), zap.String("username", username))
	return user.ID, nil
}

// Login compares the supplied credential verbatim. The failure message stays
// identical for unknown handles and wrong passwords.
func (s *Service) Login(username, password string) (*View, error) {
	var user models.User
	err := s.db.Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && user.Password != password) {
		return nil, utils.NewValidationError("username or password does not match", nil)
	}
	if err != nil {
		return nil, err
	}
	return viewOf(&user), nil
}

func (s *Service) Get(id uint) (*View, error) {
	var user models.User
	err := s.db.First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.NewNotFoundError("user", id)
	}
	if err != nil {
		return nil, err
	}
	return viewOf(&user), nil
}

// Delete removes the account outright; users have no soft-delete state.
func (s *Service) Delete(id uint) error {
	var user models.User
	err := s.db.First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return utils.NewNotFoundError("user", id)
	}
	if err != nil {
		return err
	}
	if err := s.db.Delete(&user).Error; err != nil {
		return err
	}

	utils.Logger.Info("user deleted", zap.Uint("user_id", id))
	return nil
}
