package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"userkeeper/internal/auth"
	"userkeeper/internal/cache"
	apperrors "userkeeper/internal/errors"
	"userkeeper/internal/model"
	"userkeeper/internal/repository"
)

const defaultUserCacheTTL = 5 * time.Minute

const (
	// maxPasswordBytes is bcrypt's input limit, counted in bytes.
	maxPasswordBytes = 72
	// maxFieldLength matches the size:255 columns, counted in characters.
	maxFieldLength = 255
)

const (
	msgPasswordMismatch = "Passwords do not match"
	msgUserExists       = "User already exists"
	msgUserUpdated      = "User updated successfully"
	msgUserDeleted      = "User deleted successfully"
	msgPasswordTooLong  = "Password must be at most 72 bytes"
)

// CreateUserInput is the payload for creating one user.
type CreateUserInput struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	Password       string `json:"password"`
	PasswordSecond string `json:"password_second"`
	Cellphone      string `json:"cellphone"`
}

// UpdateUserInput is a partial update. A nil field keeps the stored value,
// and so does an empty Password.
type UpdateUserInput struct {
	Name      *string `json:"name" validate:"omitempty,max=255"`
	Password  *string `json:"password"`
	Cellphone *string `json:"cellphone" validate:"omitempty,max=255"`
}

// UserQuery holds the optional filters accepted by FindUsers.
type UserQuery struct {
	// Eliminated selects status = (Eliminated == "false") when set.
	Eliminated     *string
	Name           string
	LoggedInBefore *time.Time
	LoggedInAfter  *time.Time
}

// UserService exposes user account operations. Every method answers with
// a Response envelope; a non-nil error means the store or hasher failed.
type UserService interface {
	CreateUser(ctx context.Context, in CreateUserInput) (model.Response, error)
	GetUserByID(ctx context.Context, id uint) (model.Response, error)
	UpdateUser(ctx context.Context, id uint, in UpdateUserInput) (model.Response, error)
	DeleteUser(ctx context.Context, id uint) (model.Response, error)
	GetAllUsers(ctx context.Context) (model.Response, error)
	FindUsers(ctx context.Context, q UserQuery) (model.Response, error)
	BulkCreateUsers(ctx context.Context, users []CreateUserInput) (model.Response, error)
}

// Option customises a userService.
type Option func(*userService)

// WithCacheTTL sets how long GetUserByID results stay cached.
func WithCacheTTL(ttl time.Duration) Option {
	return func(s *userService) {
		if ttl > 0 {
			s.cacheTTL = ttl
		}
	}
}

type userService struct {
	repo     repository.UserRepository
	hasher   auth.PasswordHasher
	cache    *cache.Client
	logger   *zap.Logger
	cacheTTL time.Duration
}

// NewUserService builds a UserService. cache and logger may be nil.
func NewUserService(repo repository.UserRepository, hasher auth.PasswordHasher, cache *cache.Client, logger *zap.Logger, opts ...Option) UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &userService{
		repo:     repo,
		hasher:   hasher,
		cache:    cache,
		logger:   logger,
		cacheTTL: defaultUserCacheTTL,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *userService) cacheKey(id uint) string {
	return fmt.Sprintf("user:%d", id)
}

func ok(message any) model.Response {
	return model.Response{Code: http.StatusOK, Message: message}
}

func badRequest(message string) model.Response {
	return model.Response{Code: http.StatusBadRequest, Message: message}
}

func activeByID(id uint) repository.Filter {
	return repository.Filter{
		"id":     repository.Eq(id),
		"status": repository.Eq(true),
	}
}

// checkLengths rejects values bcrypt or the users columns cannot hold.
func checkLengths(in CreateUserInput) error {
	if len(in.Password) > maxPasswordBytes {
		return apperrors.ErrPasswordTooLong
	}
	for _, f := range []struct{ name, value string }{
		{"name", in.Name},
		{"email", in.Email},
		{"cellphone", in.Cellphone},
	} {
		if utf8.RuneCountInString(f.value) > maxFieldLength {
			return fmt.Errorf("%w: %s exceeds %d characters", apperrors.ErrFieldTooLong, f.name, maxFieldLength)
		}
	}
	return nil
}

// create runs the shared checks and inserts one active user.
func (s *userService) create(ctx context.Context, in CreateUserInput) (*model.User, error) {
	if in.Password != in.PasswordSecond {
		return nil, apperrors.ErrPasswordMismatch
	}
	if err := checkLengths(in); err != nil {
		return nil, err
	}

	// Uniqueness is checked against every row, soft-deleted ones included.
	_, err := s.repo.FindOne(ctx, repository.Filter{"email": repository.Eq(in.Email)})
	if err == nil {
		return nil, apperrors.ErrUserAlreadyExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("check user existence: %w", err)
	}

	hashed, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Name:      in.Name,
		Email:     in.Email,
		Password:  hashed,
		Cellphone: in.Cellphone,
		Status:    true,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

func (s *userService) CreateUser(ctx context.Context, in CreateUserInput) (model.Response, error) {
	user, err := s.create(ctx, in)
	switch {
	case errors.Is(err, apperrors.ErrPasswordMismatch):
		return badRequest(msgPasswordMismatch), nil
	case errors.Is(err, apperrors.ErrUserAlreadyExists):
		return badRequest(msgUserExists), nil
	case errors.Is(err, apperrors.ErrPasswordTooLong):
		return badRequest(msgPasswordTooLong), nil
	case errors.Is(err, apperrors.ErrFieldTooLong):
		return badRequest(err.Error()), nil
	case err != nil:
		return model.Response{}, err
	}

	s.logger.Info("user created", zap.Uint("id", user.ID))
	return ok(fmt.Sprintf("User created successfully with ID: %d", user.ID)), nil
}

func (s *userService) GetUserByID(ctx context.Context, id uint) (model.Response, error) {
	var cached model.User
	if s.cache.GetJSON(ctx, s.cacheKey(id), &cached) {
		return ok(&cached), nil
	}

	user, err := s.repo.FindOne(ctx, activeByID(id))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ok(nil), nil
	}
	if err != nil {
		return model.Response{}, fmt.Errorf("find user %d: %w", id, err)
	}

	s.cache.SetJSON(ctx, s.cacheKey(id), user, s.cacheTTL)
	return ok(user), nil
}

// UpdateUser merges the patch into the active row under a row lock, so
// concurrent updates of the same id serialize instead of losing writes.
func (s *userService) UpdateUser(ctx context.Context, id uint, in UpdateUserInput) (model.Response, error) {
	var hashed string
	if in.Password != nil && len(*in.Password) > maxPasswordBytes {
		return badRequest(msgPasswordTooLong), nil
	}
	if in.Password != nil && *in.Password != "" {
		var err error
		if hashed, err = s.hasher.Hash(*in.Password); err != nil {
			return model.Response{}, fmt.Errorf("hash password: %w", err)
		}
	}

	err := s.repo.WithTransaction(ctx, func(ctx context.Context, repo repository.UserRepository) error {
		current, err := repo.FindOneForUpdate(ctx, activeByID(id))
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("lock user %d: %w", id, err)
		}

		fields := repository.Fields{
			"name":      current.Name,
			"password":  current.Password,
			"cellphone": current.Cellphone,
		}
		if in.Name != nil {
			fields["name"] = *in.Name
		}
		if hashed != "" {
			fields["password"] = hashed
		}
		if in.Cellphone != nil {
			fields["cellphone"] = *in.Cellphone
		}

		if _, err := repo.Update(ctx, fields, repository.Filter{"id": repository.Eq(id)}); err != nil {
			return fmt.Errorf("update user %d: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return model.Response{}, err
	}

	s.cache.Delete(ctx, s.cacheKey(id))
	return ok(msgUserUpdated), nil
}

func (s *userService) DeleteUser(ctx context.Context, id uint) (model.Response, error) {
	rows, err := s.repo.Update(ctx, repository.Fields{"status": false}, repository.Filter{"id": repository.Eq(id)})
	if err != nil {
		return model.Response{}, fmt.Errorf("delete user %d: %w", id, err)
	}

	s.cache.Delete(ctx, s.cacheKey(id))
	s.logger.Info("user soft-deleted", zap.Uint("id", id), zap.Int64("rows", rows))
	return ok(msgUserDeleted), nil
}

func (s *userService) GetAllUsers(ctx context.Context) (model.Response, error) {
	users, err := s.repo.FindAll(ctx, repository.Filter{"status": repository.Eq(true)})
	if err != nil {
		return model.Response{}, fmt.Errorf("list users: %w", err)
	}
	return ok(nonNil(users)), nil
}

// FindUsers filters on the query fields that are set. lastLogin takes a
// single bound: when both LoggedInBefore and LoggedInAfter are given the
// after bound replaces the before bound.
func (s *userService) FindUsers(ctx context.Context, q UserQuery) (model.Response, error) {
	filter := repository.Filter{}

	if q.Eliminated != nil {
		filter["status"] = repository.Eq(*q.Eliminated == "false")
	}
	if q.Name != "" {
		filter["name"] = repository.Contains(q.Name)
	}
	if q.LoggedInBefore != nil {
		filter["lastLogin"] = repository.Lt(*q.LoggedInBefore)
	}
	if q.LoggedInAfter != nil {
		filter["lastLogin"] = repository.Gt(*q.LoggedInAfter)
	}

	users, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return model.Response{}, fmt.Errorf("find users: %w", err)
	}
	return ok(nonNil(users)), nil
}

// BulkCreateUsers creates users one at a time. Rows failing the password,
// length or uniqueness checks are counted and skipped; a store fault stops the batch.
func (s *userService) BulkCreateUsers(ctx context.Context, users []CreateUserInput) (model.Response, error) {
	var created, failed int
	for i, in := range users {
		_, err := s.create(ctx, in)
		switch {
		case errors.Is(err, apperrors.ErrPasswordMismatch),
			errors.Is(err, apperrors.ErrPasswordTooLong),
			errors.Is(err, apperrors.ErrFieldTooLong),
			errors.Is(err, apperrors.ErrUserAlreadyExists):
			failed++
			s.logger.Debug("bulk row rejected", zap.Int("row", i), zap.Error(err))
			continue
		case err != nil:
			s.logger.Error("bulk create aborted",
				zap.Int("row", i), zap.Int("created", created), zap.Int("failed", failed), zap.Error(err))
			return model.Response{}, fmt.Errorf("bulk row %d: %w", i, err)
		}
		created++
	}

	s.logger.Info("bulk create finished", zap.Int("created", created), zap.Int("failed", failed))
	return ok(fmt.Sprintf("Successfully created %d users, failed to create %d users", created, failed)), nil
}

func nonNil(users []model.User) []model.User {
	if users == nil {
		return []model.User{}
	}
	return users
}
