package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/d60-Lab/ibp/internal/model"
)

type CommentRepository interface {
	Create(ctx context.Context, c *model.Comment) error
	GetByAutoID(ctx context.Context, autoID uint) (*model.Comment, error)
	Update(ctx context.Context, c *model.Comment) error
	Delete(ctx context.Context, autoID uint) error
}

type commentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) CommentRepository { return &commentRepository{db: db} }

func (r *commentRepository) Create(ctx context.Context, c *model.Comment) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(c).Error
}

func (r *commentRepository) GetByAutoID(ctx context.Context, autoID uint) (*model.Comment, error) {
	var c model.Comment
	if err := r.db.WithContext(ctx).First(&c, "autoid = ?", autoID).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *commentRepository) Update(ctx context.Context, c *model.Comment) error {
	return r.db.WithContext(ctx).Model(c).
		Updates(map[string]interface{}{"author": c.Author, "body": c.Body}).Error
}

func (r *commentRepository) Delete(ctx context.Context, autoID uint) error {
	return deleteByAutoID(r.db.WithContext(ctx), &model.Comment{}, autoID)
}
