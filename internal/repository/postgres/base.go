package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	appErr "github.com/angryss/idp-engine/pkg/errors"
)

// base provides the shared CRUD implementation over Gorm. Entity repositories
// embed it and add their lookup queries.
type base[T any] struct {
	db *gorm.DB
}

func newBase[T any](db *gorm.DB) base[T] {
	return base[T]{db: db}
}

func (r base[T]) Create(ctx context.Context, obj *T) error {
	if err := r.db.WithContext(ctx).Create(obj).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return appErr.Wrap(err, appErr.CodeAlreadyExists, "entity already exists")
		}
		return appErr.Wrap(err, appErr.CodeInternal, "create entity failed")
	}
	return nil
}

func (r base[T]) GetByID(ctx context.Context, id uuid.UUID) (*T, error) {
	var out T
	if err := r.db.WithContext(ctx).First(&out, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, appErr.New(appErr.CodeNotFound, "entity not found")
		}
		return nil, appErr.Wrap(err, appErr.CodeInternal, "get entity failed")
	}
	return &out, nil
}

func (r base[T]) Update(ctx context.Context, obj *T) error {
	if err := r.db.WithContext(ctx).Save(obj).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return appErr.Wrap(err, appErr.CodeAlreadyExists, "entity already exists")
		}
		return appErr.Wrap(err, appErr.CodeInternal, "update entity failed")
	}
	return nil
}

func (r base[T]) Delete(ctx context.Context, id uuid.UUID) error {
	var t T
	res := r.db.WithContext(ctx).Delete(&t, "id = ?", id)
	if res.Error != nil {
		return appErr.Wrap(res.Error, appErr.CodeInternal, "delete entity failed")
	}
	if res.RowsAffected == 0 {
		return appErr.New(appErr.CodeNotFound, "entity not found")
	}
	return nil
}

func (r base[T]) List(ctx context.Context) ([]T, error) {
	var out []T
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "list entities failed")
	}
	return out, nil
}

func (r base[T]) Count(ctx context.Context) (int64, error) {
	var t T
	var n int64
	if err := r.db.WithContext(ctx).Model(&t).Count(&n).Error; err != nil {
		return 0, appErr.Wrap(err, appErr.CodeInternal, "count entities failed")
	}
	return n, nil
}

func (r base[T]) countEnabled(ctx context.Context) (int64, error) {
	var t T
	var n int64
	if err := r.db.WithContext(ctx).Model(&t).Where("enabled = true").Count(&n).Error; err != nil {
		return 0, appErr.Wrap(err, appErr.CodeInternal, "count enabled entities failed")
	}
	return n, nil
}

// getBy fetches one row by an arbitrary condition, mapping absence to not_found.
func getBy[T any](ctx context.Context, db *gorm.DB, query string, args ...any) (*T, error) {
	var out T
	if err := db.WithContext(ctx).First(&out, append([]any{query}, args...)...).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, appErr.New(appErr.CodeNotFound, "entity not found")
		}
		return nil, appErr.Wrap(err, appErr.CodeInternal, "get entity failed")
	}
	return &out, nil
}

func listBy[T any](ctx context.Context, db *gorm.DB, query string, args ...any) ([]T, error) {
	var out []T
	if err := db.WithContext(ctx).Where(query, args...).Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "list entities failed")
	}
	return out, nil
}
