package tags

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository reads and writes both tag vocabularies and their product links.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to tx.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// FindByName matches the name exactly.
func (r *Repository) FindByName(ctx context.Context, kind Kind, name string) (*Tag, error) {
	if err := mustKind(kind); err != nil {
		return nil, err
	}
	var tag Tag
	err := r.db.WithContext(ctx).
		Table(kind.table()).
		Select("id, name").
		Where("name = ?", name).
		Take(&tag).Error
	if err != nil {
		return nil, err
	}
	return &tag, nil
}

// Create inserts a new tag. A duplicate name surfaces as a unique violation.
func (r *Repository) Create(ctx context.Context, kind Kind, name string) (*Tag, error) {
	if err := mustKind(kind); err != nil {
		return nil, err
	}
	model, id := kind.newModel(name)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return nil, err
	}
	return &Tag{ID: id(), Name: name}, nil
}

// List returns tags ordered by name, optionally filtered by a case-insensitive substring.
func (r *Repository) List(ctx context.Context, kind Kind, search string) ([]Tag, error) {
	if err := mustKind(kind); err != nil {
		return nil, err
	}
	q := r.db.WithContext(ctx).Table(kind.table()).Select("id, name")
	if search = strings.TrimSpace(search); search != "" {
		q = q.Where(`LOWER(name) LIKE ? ESCAPE '\'`, "%"+strings.ToLower(escapeLike(search))+"%")
	}
	out := []Tag{}
	if err := q.Order("name ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

type productTagRow struct {
	ProductID uuid.UUID
	ID        uuid.UUID
	Name      string
}

// ForProducts loads the tags linked to each product, ordered by name.
func (r *Repository) ForProducts(ctx context.Context, kind Kind, productIDs []uuid.UUID) (map[uuid.UUID][]Tag, error) {
	if err := mustKind(kind); err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID][]Tag, len(productIDs))
	if len(productIDs) == 0 {
		return out, nil
	}
	var rows []productTagRow
	err := r.db.WithContext(ctx).
		Table(kind.joinTable()+" AS j").
		Select("j.product_id AS product_id, t.id AS id, t.name AS name").
		Joins(fmt.Sprintf("JOIN %s t ON t.id = j.%s", kind.table(), kind.joinColumn())).
		Where("j.product_id IN ?", productIDs).
		Order("t.name ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.ProductID] = append(out[row.ProductID], Tag{ID: row.ID, Name: row.Name})
	}
	return out, nil
}

// ReplaceForProduct deletes every link of kind for the product, then links tagIDs.
// Repeated ids are linked once.
func (r *Repository) ReplaceForProduct(ctx context.Context, kind Kind, productID uuid.UUID, tagIDs []uuid.UUID) error {
	if err := r.DeleteForProduct(ctx, kind, productID); err != nil {
		return err
	}
	seen := make(map[uuid.UUID]struct{}, len(tagIDs))
	for _, id := range tagIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if err := r.db.WithContext(ctx).Create(kind.joinRow(productID, id)).Error; err != nil {
			return fmt.Errorf("link %s %s: %w", kind.label(), id, err)
		}
	}
	return nil
}

// DeleteForProduct removes every link of kind for the product.
func (r *Repository) DeleteForProduct(ctx context.Context, kind Kind, productID uuid.UUID) error {
	if err := mustKind(kind); err != nil {
		return err
	}
	return r.db.WithContext(ctx).
		Exec(fmt.Sprintf("DELETE FROM %s WHERE product_id = ?", kind.joinTable()), productID).Error
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
