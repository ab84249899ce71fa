package services

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/scamwall/scamwall-backend/internal/dto"
	"github.com/scamwall/scamwall-backend/internal/models"
)

var ErrArticleNotFound = errors.New("article not found")

// ArticleService handles awareness articles. Listing only surfaces
// published articles; edits are restricted to the author.
type ArticleService struct {
	db *gorm.DB
}

func NewArticleService(db *gorm.DB) *ArticleService {
	return &ArticleService{db: db}
}

func (s *ArticleService) ListPublished(page, limit int) ([]models.Article, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 || limit > 50 {
		limit = 20
	}

	var total int64
	query := s.db.Model(&models.Article{}).Where("published = ?", true)
	query.Count(&total)

	var articles []models.Article
	err := query.Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&articles).Error
	return articles, total, err
}

func (s *ArticleService) Get(id uuid.UUID) (*models.Article, error) {
	var article models.Article
	if err := s.db.Where("id = ? AND published = ?", id, true).First(&article).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrArticleNotFound
		}
		return nil, err
	}
	return &article, nil
}

func (s *ArticleService) Create(authorID uuid.UUID, req *dto.CreateArticleRequest) (*models.Article, error) {
	if req.Title == "" || req.Content == "" {
		return nil, errors.New("title and content are required")
	}

	article := &models.Article{
		ID:        uuid.New(),
		AuthorID:  authorID,
		Title:     req.Title,
		Content:   req.Content,
		Published: req.Published,
	}
	if err := s.db.Create(article).Error; err != nil {
		return nil, err
	}
	return article, nil
}

func (s *ArticleService) Update(authorID, articleID uuid.UUID, req *dto.UpdateArticleRequest) (*models.Article, error) {
	article, err := s.owned(authorID, articleID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Title != nil && *req.Title != "" {
		updates["title"] = *req.Title
	}
	if req.Content != nil && *req.Content != "" {
		updates["content"] = *req.Content
	}
	if req.Published != nil {
		updates["published"] = *req.Published
	}

	if len(updates) > 0 {
		if err := s.db.Model(article).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return article, nil
}

func (s *ArticleService) Delete(authorID, articleID uuid.UUID) error {
	article, err := s.owned(authorID, articleID)
	if err != nil {
		return err
	}
	return s.db.Delete(article).Error
}

func (s *ArticleService) owned(authorID, articleID uuid.UUID) (*models.Article, error) {
	var article models.Article
	err := s.db.Where("id = ? AND author_id = ?", articleID, authorID).First(&article).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrArticleNotFound
	}
	if err != nil {
		return nil, err
	}
	return &article, nil
}
