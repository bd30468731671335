package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	"userkeeper/internal/model"
	"userkeeper/internal/repository"
)

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindOne(ctx context.Context, filter repository.Filter) (*model.User, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindAll(ctx context.Context, filter repository.Filter) ([]model.User, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.User), args.Error(1)
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Update(ctx context.Context, fields repository.Fields, filter repository.Filter) (int64, error) {
	args := m.Called(ctx, fields, filter)
	return int64(args.Int(0)), args.Error(1)
}

func (m *MockUserRepository) FindOneForUpdate(ctx context.Context, filter repository.Filter) (*model.User, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

// WithTransaction runs fn against the mock itself unless an error is configured.
func (m *MockUserRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context, repo repository.UserRepository) error) error {
	args := m.Called(ctx)
	if err := args.Error(0); err != nil {
		return err
	}
	return fn(ctx, m)
}

// MockHasher is a mock implementation of auth.PasswordHasher.
type MockHasher struct {
	mock.Mock
}

func (m *MockHasher) Hash(password string) (string, error) {
	args := m.Called(password)
	return args.String(0), args.Error(1)
}

func (m *MockHasher) Compare(hashed, plain string) error {
	args := m.Called(hashed, plain)
	return args.Error(0)
}

// memRepository is an in-memory UserRepository that evaluates filters the
// way the SQL store does. Like is case-insensitive, as with MySQL's default collation.
type memRepository struct {
	mu     sync.Mutex
	nextID uint
	rows   map[uint]*model.User
}

func newMemRepository() *memRepository {
	return &memRepository{rows: map[uint]*model.User{}}
}

func (r *memRepository) seed(u model.User) uint {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	u.ID = r.nextID
	r.rows[u.ID] = &u
	return u.ID
}

func (r *memRepository) get(id uint) (model.User, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.rows[id]
	if !ok {
		return model.User{}, false
	}
	return *u, true
}

func (r *memRepository) FindOne(_ context.Context, filter repository.Filter) (*model.User, error) {
	users, err := r.match(filter)
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &users[0], nil
}

func (r *memRepository) FindAll(_ context.Context, filter repository.Filter) ([]model.User, error) {
	return r.match(filter)
}

func (r *memRepository) Create(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	user.ID = r.nextID
	cp := *user
	r.rows[user.ID] = &cp
	return nil
}

func (r *memRepository) Update(_ context.Context, fields repository.Fields, filter repository.Filter) (int64, error) {
	if len(filter) == 0 {
		return 0, gorm.ErrMissingWhereClause
	}
	matched, err := r.match(filter)
	if err != nil {
		return 0, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range matched {
		row := r.rows[u.ID]
		for field, v := range fields {
			switch field {
			case "name":
				row.Name = v.(string)
			case "password":
				row.Password = v.(string)
			case "cellphone":
				row.Cellphone = v.(string)
			case "status":
				row.Status = v.(bool)
			default:
				return 0, repository.ErrUnknownField
			}
		}
	}
	return int64(len(matched)), nil
}

func (r *memRepository) FindOneForUpdate(ctx context.Context, filter repository.Filter) (*model.User, error) {
	return r.FindOne(ctx, filter)
}

func (r *memRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context, repo repository.UserRepository) error) error {
	return fn(ctx, r)
}

func (r *memRepository) match(filter repository.Filter) ([]model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := []model.User{}
	for _, u := range r.rows {
		keep := true
		for field, cond := range filter {
			ok, err := matches(*u, field, cond)
			if err != nil {
				return nil, err
			}
			keep = keep && ok
		}
		if keep {
			out = append(out, *u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func matches(u model.User, field string, c repository.Condition) (bool, error) {
	switch field {
	case "id":
		return c.Op == repository.Equals && u.ID == c.Value.(uint), nil
	case "status":
		return c.Op == repository.Equals && u.Status == c.Value.(bool), nil
	case "email":
		return c.Op == repository.Equals && u.Email == c.Value.(string), nil
	case "name":
		if c.Op != repository.Like {
			return u.Name == c.Value.(string), nil
		}
		needle := strings.Trim(c.Value.(string), "%")
		return strings.Contains(strings.ToLower(u.Name), strings.ToLower(needle)), nil
	case "lastLogin":
		if u.LastLogin == nil {
			return false, nil
		}
		bound := c.Value.(time.Time)
		switch c.Op {
		case repository.LessThan:
			return u.LastLogin.Before(bound), nil
		case repository.GreaterThan:
			return u.LastLogin.After(bound), nil
		}
		return u.LastLogin.Equal(bound), nil
	}
	return false, errors.New("memRepository: unsupported field " + field)
}
