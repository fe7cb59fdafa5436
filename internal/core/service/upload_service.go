package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/martijn/homedash/internal/core/domain"
	"github.com/martijn/homedash/internal/core/repository"
	"github.com/martijn/homedash/internal/infrastructure/filestore"
)

const (
	AvatarURLPrefix     = "/uploads/avatars/"
	BackgroundURLPrefix = "/uploads/backgrounds/"

	DefaultMaxUploadBytes = 10 << 20
)

var allowedImageExtensions = map[string]bool{
	"jpg":  true,
	"jpeg": true,
	"png":  true,
	"gif":  true,
}

// FileStore is where uploaded images end up.
type FileStore interface {
	Save(name string, r io.Reader, maxBytes int64) (int64, error)
	Remove(name string) error
}

type imageKind struct {
	label     string
	prefix    string
	urlPrefix string
	store     FileStore
	current   func(*domain.User) *string
	mutation  func(url string) domain.UserMutation
}

type UploadService struct {
	userRepo    repository.UserRepository
	avatars     imageKind
	backgrounds imageKind
	maxBytes    int64
	logger      *slog.Logger
	now         func() time.Time
}

func NewUploadService(
	userRepo repository.UserRepository,
	avatars FileStore,
	backgrounds FileStore,
	maxBytes int64,
	logger *slog.Logger,
) *UploadService {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxUploadBytes
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &UploadService{
		userRepo: userRepo,
		avatars: imageKind{
			label:     "avatar",
			prefix:    "avatar",
			urlPrefix: AvatarURLPrefix,
			store:     avatars,
			current:   func(u *domain.User) *string { return u.AvatarURL },
			mutation:  func(url string) domain.UserMutation { return domain.UserMutation{AvatarURL: &url} },
		},
		backgrounds: imageKind{
			label:     "background",
			prefix:    "bg",
			urlPrefix: BackgroundURLPrefix,
			store:     backgrounds,
			current:   func(u *domain.User) *string { return u.BackgroundImage },
			mutation:  func(url string) domain.UserMutation { return domain.UserMutation{BackgroundImage: &url} },
		},
		maxBytes: maxBytes,
		logger:   logger.With("component", "uploads"),
		now:      time.Now,
	}
}

// UploadAvatar stores a new avatar for user and drops the previous one.
func (s *UploadService) UploadAvatar(ctx context.Context, user *domain.User, filename string, content io.Reader) (*domain.User, error) {
	return s.upload(ctx, s.avatars, user, filename, content)
}

// UploadBackground stores a new background image for user and drops the
// previous one unless it is the default.
func (s *UploadService) UploadBackground(ctx context.Context, user *domain.User, filename string, content io.Reader) (*domain.User, error) {
	return s.upload(ctx, s.backgrounds, user, filename, content)
}

func (s *UploadService) upload(ctx context.Context, kind imageKind, user *domain.User, filename string, content io.Reader) (*domain.User, error) {
	ext, err := imageExtension(filename)
	if err != nil {
		return nil, err
	}

	var previous string
	if cur := kind.current(user); cur != nil {
		previous = *cur
	}

	name := s.fileName(kind.prefix, user.ID, ext)
	if _, err := kind.store.Save(name, content, s.maxBytes); err != nil {
		if errors.Is(err, filestore.ErrTooLarge) {
			return nil, domain.NewValidationError("File is too large, the limit is %d bytes", s.maxBytes)
		}
		return nil, internal("save "+kind.label, err)
	}

	updated, err := s.userRepo.Update(ctx, user.ID, kind.mutation(kind.urlPrefix+name))
	if err != nil {
		if rmErr := kind.store.Remove(name); rmErr != nil {
			s.logger.Error("failed to remove orphaned upload", "file", name, "error", rmErr)
		}
		return nil, internal("store "+kind.label+" url", err)
	}

	s.removePrevious(kind, user.ID, previous, name)

	return updated, nil
}

// removePrevious deletes the file behind an old URL. Only files this user
// uploaded are touched; failures are logged and otherwise ignored.
func (s *UploadService) removePrevious(kind imageKind, userID int64, previous, current string) {
	if previous == "" || previous == domain.DefaultBackgroundImage {
		return
	}
	if !strings.HasPrefix(previous, kind.urlPrefix) {
		return
	}

	name := path.Base(strings.TrimPrefix(previous, kind.urlPrefix))
	if name == current || !strings.HasPrefix(name, ownerPrefix(kind.prefix, userID)) {
		return
	}

	if err := kind.store.Remove(name); err != nil {
		s.logger.Warn("failed to delete previous upload", "kind", kind.label, "file", name, "error", err)
		return
	}
	s.logger.Debug("deleted previous upload", "kind", kind.label, "file", name)
}

// fileName builds <prefix>_<user id>_<YYYYMMDD_HHMMSS>_<8 hex>.<ext>.
func (s *UploadService) fileName(prefix string, userID int64, ext string) string {
	fragment := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("%s%s_%s.%s", ownerPrefix(prefix, userID), s.now().Format("20060102_150405"), fragment, ext)
}

// ownerPrefix is the start of every file name uploaded by userID.
func ownerPrefix(prefix string, userID int64) string {
	return prefix + "_" + strconv.FormatInt(userID, 10) + "_"
}

func imageExtension(filename string) (string, error) {
	i := strings.LastIndex(filename, ".")
	if i < 0 {
		return "", domain.NewValidationError("Only jpg, jpeg, png and gif files are allowed")
	}
	ext := strings.ToLower(filename[i+1:])
	if !allowedImageExtensions[ext] {
		return "", domain.NewValidationError("Only jpg, jpeg, png and gif files are allowed")
	}
	return ext, nil
}
