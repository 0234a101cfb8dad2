package file

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/okboard/board-server/cmd/utils"
	"go.uber.org/zap"
)

// Store persists uploaded attachments under a single root directory and
// guarantees that every read resolves inside it.
type Store struct {
	root string
}

func NewStore(root string) (*Store, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, &utils.StorageError{Op: "resolve upload root", Err: err}
	}
	if err := os.MkdirAll(abs, 0755); err != nil {
		return nil, &utils.StorageError{Op: "create upload root", Err: err}
	}
	return &Store{root: abs}, nil
}

func (s *Store) Root() string { return s.root }

// Save writes the payload under a collision-resistant name and returns the
// stored file name. The original name contributes nothing but its extension,
// so client-controlled paths never reach the filesystem.
func (s *Store) Save(data []byte, originalName string) (string, error) {
	if len(data) == 0 {
		return "", utils.NewValidationError("file payload is empty", utils.FieldErrors{"file": "must not be empty"})
	}

	cleaned := filepath.Base(filepath.Clean(originalName))
	ext := ""
	if i := strings.LastIndex(cleaned, "."); i > 0 {
		ext = cleaned[i:]
	}
	name := uuid.New().String() + ext

	if err := os.WriteFile(filepath.Join(s.root, name), data, 0644); err != nil {
		return "", &utils.StorageError{Op: "write " + name, Err: err}
	}
	utils.Logger.Info("file stored", zap.String("name", name), zap.Int("size", len(data)))
	return name, nil
}

// Open resolves a stored reference against the root. References that escape
// the root, through .. segments or an absolute path, are rejected before any
// filesystem access.
func (s *Store) Open(reference string) (*os.File, os.FileInfo, error) {
	abs, err := s.resolve(reference)
	if err != nil {
		return nil, nil, err
	}

	info, err := os.Stat(abs)
	if err != nil || info.IsDir() {
		return nil, nil, utils.NewNotFoundError("file", 0)
	}
	f, err := os.Open(abs)
	if err != nil {
		return nil, nil, utils.NewNotFoundError("file", 0)
	}
	return f, info, nil
}

// Remove deletes a stored file. Missing files are not an error, so a create
// rollback can clean up blindly.
func (s *Store) Remove(reference string) error {
	abs, err := s.resolve(reference)
	if err != nil {
		return err
	}
	if err := os.Remove(abs); err != nil && !os.IsNotExist(err) {
		return &utils.StorageError{Op: "remove " + reference, Err: err}
	}
	return nil
}

func (s *Store) resolve(reference string) (string, error) {
	if filepath.IsAbs(reference) {
		return "", &utils.AccessDeniedError{Message: "file reference escapes the storage root"}
	}
	abs, err := filepath.Abs(filepath.Join(s.root, reference))
	if err != nil {
		return "", &utils.StorageError{Op: "resolve " + reference, Err: err}
	}
	if !strings.HasPrefix(abs, s.root+string(os.PathSeparator)) {
		return "", &utils.AccessDeniedError{Message: "file reference escapes the storage root"}
	}
	return abs, nil
}
