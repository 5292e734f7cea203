package repository

import (
	"context"
	"errors"

	"github.com/relinkd/relink/internal/app/model"
	"gorm.io/gorm"
)

var (
	// ErrLinkNotFound signals that no link exists for the requested code or alias.
	ErrLinkNotFound = errors.New("link not found")
)

// LinkRepository is the read-side data access contract for the resolver.
// Write operations live in the dashboard API service, not here.
type LinkRepository interface {
	GetByCode(ctx context.Context, code string) (*model.Link, error)
	ListCodes(ctx context.Context) ([]string, error)
}

type linkRepository struct {
	db *gorm.DB
}

// NewLinkRepository returns a GORM-backed LinkRepository.
func NewLinkRepository(db *gorm.DB) LinkRepository {
	return &linkRepository{db: db}
}

// GetByCode performs a single point lookup matching either the generated
// short code or a custom alias. At most one record resolves per request.
func (r *linkRepository) GetByCode(ctx context.Context, code string) (*model.Link, error) {
	var link model.Link
	if err := r.db.WithContext(ctx).
		Where("code = ? OR alias = ?", code, code).
		First(&link).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLinkNotFound
		}
		return nil, err
	}
	return &link, nil
}

// ListCodes returns every short code and non-empty alias. It seeds the
// negative-lookup filter at startup and on refresh.
func (r *linkRepository) ListCodes(ctx context.Context) ([]string, error) {
	var codes []string
	if err := r.db.WithContext(ctx).
		Model(&model.Link{}).
		Pluck("code", &codes).Error; err != nil {
		return nil, err
	}

	var aliases []string
	if err := r.db.WithContext(ctx).
		Model(&model.Link{}).
		Where("alias <> ''").
		Pluck("alias", &aliases).Error; err != nil {
		return nil, err
	}

	return append(codes, aliases...), nil
}
