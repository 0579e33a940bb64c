package service

import (
	"context"
	"strings"
	"time"

	"github.com/d60-Lab/ibp/internal/model"
	"github.com/d60-Lab/ibp/internal/repository"
	"github.com/d60-Lab/ibp/internal/schema"
)

type CommentService interface {
	Create(ctx context.Context, inmateAutoID uint, fields schema.CommentFields) (*model.Comment, error)
	Get(ctx context.Context, autoID uint) (*model.Comment, error)
	Update(ctx context.Context, autoID uint, fields schema.CommentFields) (*model.Comment, error)
	Delete(ctx context.Context, autoID uint) error
}

type commentService struct {
	comments repository.CommentRepository
	inmates  repository.InmateRepository
	now      func() time.Time
}

func NewCommentService(comments repository.CommentRepository, inmates repository.InmateRepository) CommentService {
	return &commentService{comments: comments, inmates: inmates, now: time.Now}
}

func validComment(f schema.CommentFields) bool {
	return strings.TrimSpace(f.Author) != "" && strings.TrimSpace(f.Body) != ""
}

func (s *commentService) Create(ctx context.Context, inmateAutoID uint, fields schema.CommentFields) (*model.Comment, error) {
	if !validComment(fields) {
		return nil, ErrInvalidComment
	}
	if _, err := s.inmates.GetByAutoID(ctx, inmateAutoID); err != nil {
		return nil, notFound(err)
	}
	c := &model.Comment{
		InmateAutoID: inmateAutoID,
		Datetime:     s.now().UTC(),
		Author:       fields.Author,
		Body:         fields.Body,
	}
	if err := s.comments.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *commentService) Get(ctx context.Context, autoID uint) (*model.Comment, error) {
	c, err := s.comments.GetByAutoID(ctx, autoID)
	if err != nil {
		return nil, notFound(err)
	}
	return c, nil
}

func (s *commentService) Update(ctx context.Context, autoID uint, fields schema.CommentFields) (*model.Comment, error) {
	if !validComment(fields) {
		return nil, ErrInvalidComment
	}
	c, err := s.Get(ctx, autoID)
	if err != nil {
		return nil, err
	}
	c.Author, c.Body = fields.Author, fields.Body
	if err := s.comments.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *commentService) Delete(ctx context.Context, autoID uint) error {
	return notFound(s.comments.Delete(ctx, autoID))
}
