package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sweetshop/sweetshop-api/internal/core/domain"
	"github.com/sweetshop/sweetshop-api/internal/core/ports"
)

// SweetRepository stores sweets in a relational database. Updates hold a row
// lock (SELECT ... FOR UPDATE) for the duration of the read-modify-write.
type SweetRepository struct {
	db *gorm.DB
}

var _ ports.SweetRepository = (*SweetRepository)(nil)

func NewSweetRepository(db *gorm.DB) *SweetRepository {
	return &SweetRepository{db: db}
}

func (r *SweetRepository) Create(ctx context.Context, s *domain.Sweet) (*domain.Sweet, error) {
	m := newSweetModel(s)
	m.ID = uuid.NewString()

	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return nil, fmt.Errorf("insert sweet: %w", err)
	}
	return m.toDomain(), nil
}

func (r *SweetRepository) FindByID(ctx context.Context, id string) (*domain.Sweet, error) {
	var m sweetModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return m.toDomain(), nil
}

func (r *SweetRepository) Find(ctx context.Context, filter ports.SweetFilter, page ports.Page) ([]*domain.Sweet, error) {
	q := applySweetFilter(r.db.WithContext(ctx).Model(&sweetModel{}), filter).
		Order("created_at ASC").
		Order("id ASC").
		Offset(page.Skip)
	if page.Limit > 0 {
		q = q.Limit(page.Limit)
	}

	var rows []sweetModel
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("find sweets: %w", err)
	}

	out := make([]*domain.Sweet, 0, len(rows))
	for _, m := range rows {
		out = append(out, m.toDomain())
	}
	return out, nil
}

// Update runs mutate inside a transaction holding the row lock, so concurrent
// updates of the same sweet are applied one after the other.
func (r *SweetRepository) Update(ctx context.Context, id string, mutate ports.MutateFunc) (*domain.Sweet, error) {
	var updated *domain.Sweet

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m sweetModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", id).
			First(&m).Error; err != nil {
			return translateNotFound(err)
		}

		sweet := m.toDomain()
		if err := mutate(sweet); err != nil {
			return err
		}

		next := newSweetModel(sweet)
		if err := tx.Save(&next).Error; err != nil {
			return fmt.Errorf("save sweet: %w", err)
		}
		updated = sweet
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *SweetRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&sweetModel{})
	if res.Error != nil {
		return fmt.Errorf("delete sweet: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrSweetNotFound
	}
	return nil
}

func (r *SweetRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&sweetModel{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count sweets: %w", err)
	}
	return n, nil
}

// applySweetFilter adds one parameterized condition per set field.
func applySweetFilter(q *gorm.DB, f ports.SweetFilter) *gorm.DB {
	if f.Name != nil {
		q = q.Where("LOWER(name) LIKE ?", "%"+escapeLike(strings.ToLower(*f.Name))+"%")
	}
	if f.Category != nil {
		q = q.Where("category = ?", *f.Category)
	}
	if f.MinPrice != nil {
		q = q.Where("price >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		q = q.Where("price <= ?", *f.MaxPrice)
	}
	return q
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes LIKE wildcards in user input match literally. Both
// PostgreSQL and MySQL use backslash as the default escape character.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func translateNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrSweetNotFound
	}
	return fmt.Errorf("find sweet: %w", err)
}
