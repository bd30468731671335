package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"userkeeper/internal/model"
)

// UserRepository defines user persistence operations.
type UserRepository interface {
	FindOne(ctx context.Context, filter Filter) (*model.User, error)
	FindAll(ctx context.Context, filter Filter) ([]model.User, error)
	Create(ctx context.Context, user *model.User) error
	Update(ctx context.Context, fields Fields, filter Filter) (int64, error)
	// Transaction methods
	FindOneForUpdate(ctx context.Context, filter Filter) (*model.User, error)
	WithTransaction(ctx context.Context, fn func(ctx context.Context, repo UserRepository) error) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository builds a GORM-backed repository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) query(ctx context.Context, filter Filter) (*gorm.DB, error) {
	return applyFilter(r.db.WithContext(ctx).Model(&model.User{}), filter)
}

// FindOne returns the first user matching filter, or gorm.ErrRecordNotFound.
func (r *userRepository) FindOne(ctx context.Context, filter Filter) (*model.User, error) {
	q, err := r.query(ctx, filter)
	if err != nil {
		return nil, err
	}
	var user model.User
	if err := q.First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindAll returns every user matching filter. An empty filter matches all rows.
func (r *userRepository) FindAll(ctx context.Context, filter Filter) ([]model.User, error) {
	q, err := r.query(ctx, filter)
	if err != nil {
		return nil, err
	}
	users := []model.User{}
	if err := q.Order("id").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// Create inserts user and fills in its ID.
func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// Update writes fields to every row matching filter and reports how many rows changed.
// An empty filter is refused by GORM with gorm.ErrMissingWhereClause.
func (r *userRepository) Update(ctx context.Context, fields Fields, filter Filter) (int64, error) {
	values, err := toColumns(fields)
	if err != nil {
		return 0, err
	}
	q, err := r.query(ctx, filter)
	if err != nil {
		return 0, err
	}
	res := q.Updates(values)
	return res.RowsAffected, res.Error
}

// FindOneForUpdate finds a user with a row-level lock. Only meaningful inside WithTransaction.
func (r *userRepository) FindOneForUpdate(ctx context.Context, filter Filter) (*model.User, error) {
	q, err := r.query(ctx, filter)
	if err != nil {
		return nil, err
	}
	var user model.User
	if err := q.Clauses(clause.Locking{Strength: "UPDATE"}).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// WithTransaction executes fn within a database transaction.
func (r *userRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context, repo UserRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := &userRepository{db: tx}
		return fn(ctx, txRepo)
	})
}
