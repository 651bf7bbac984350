package promotions

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ilumina/storefront-backend/pkg/db"
	"github.com/ilumina/storefront-backend/pkg/db/models"
	pkgerrors "github.com/ilumina/storefront-backend/pkg/errors"
)

// Service manages promotions for the back office and the storefront.
type Service interface {
	List(ctx context.Context) ([]PromotionDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*PromotionDTO, error)
	Create(ctx context.Context, req PromotionRequest) (*PromotionDTO, error)
	Update(ctx context.Context, id uuid.UUID, req PromotionRequest) (*PromotionDTO, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) (*PromotionDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ListPublic(ctx context.Context) ([]PromotionDTO, error)
	GetPublic(ctx context.Context, id uuid.UUID) (*PromotionDTO, error)
}

type service struct {
	repo     *Repository
	dbClient *db.Client
}

func NewService(repo *Repository, dbClient *db.Client) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("promotion repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	return &service{repo: repo, dbClient: dbClient}, nil
}

func (s *service) List(ctx context.Context) ([]PromotionDTO, error) {
	return s.list(ctx, false)
}

func (s *service) ListPublic(ctx context.Context) ([]PromotionDTO, error) {
	return s.list(ctx, true)
}

func (s *service) list(ctx context.Context, activeOnly bool) ([]PromotionDTO, error) {
	rows, err := s.repo.List(ctx, activeOnly)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list promotions")
	}
	out := make([]PromotionDTO, len(rows))
	for i := range rows {
		out[i] = newPromotionDTO(&rows[i], nil)
	}
	return out, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*PromotionDTO, error) {
	return s.detail(ctx, id, false)
}

func (s *service) GetPublic(ctx context.Context, id uuid.UUID) (*PromotionDTO, error) {
	return s.detail(ctx, id, true)
}

func (s *service) detail(ctx context.Context, id uuid.UUID, public bool) (*PromotionDTO, error) {
	p, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if public && !p.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "promotion not found")
	}
	entries, err := s.repo.Products(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load promotion products")
	}
	products := make([]PromotionProductDTO, len(entries))
	for i, e := range entries {
		products[i] = PromotionProductDTO{
			ProductID:           e.ProductID,
			QuantityInPromotion: e.QuantityInPromotion,
			Title:               e.Title,
			Price:               e.Price,
			PhotoURL:            e.PhotoURL,
		}
		if !public {
			cost := e.CostPrice
			products[i].CostPrice = &cost
		}
	}
	dto := newPromotionDTO(p, products)
	return &dto, nil
}

func (s *service) Create(ctx context.Context, req PromotionRequest) (*PromotionDTO, error) {
	p := &models.Promotion{IsActive: true}
	rows, err := s.apply(ctx, p, req)
	if err != nil {
		return nil, err
	}
	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.Create(ctx, p); err != nil {
			return err
		}
		return repo.ReplaceProducts(ctx, p.ID, withPromotion(rows, p.ID))
	}); err != nil {
		return nil, writeError(err, "create promotion")
	}
	return s.Get(ctx, p.ID)
}

func (s *service) Update(ctx context.Context, id uuid.UUID, req PromotionRequest) (*PromotionDTO, error) {
	p, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	rows, err := s.apply(ctx, p, req)
	if err != nil {
		return nil, err
	}
	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.Save(ctx, p); err != nil {
			return err
		}
		return repo.ReplaceProducts(ctx, p.ID, withPromotion(rows, p.ID))
	}); err != nil {
		return nil, writeError(err, "update promotion")
	}
	return s.Get(ctx, p.ID)
}

func (s *service) SetActive(ctx context.Context, id uuid.UUID, active bool) (*PromotionDTO, error) {
	if err := s.repo.SetActive(ctx, id, active); err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "promotion not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update promotion status")
	}
	return s.Get(ctx, id)
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).Delete(ctx, id)
	})
	if err != nil {
		if db.IsNotFound(err) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "promotion not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete promotion")
	}
	return nil
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.Promotion, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "promotion not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load promotion")
	}
	return p, nil
}

// apply validates req and copies it onto p, returning the product rows to link.
func (s *service) apply(ctx context.Context, p *models.Promotion, req PromotionRequest) ([]models.PromotionProduct, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title is required")
	}
	if (req.DiscountPercentage == nil) == (req.DiscountAmount == nil) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "exactly one of discount_percentage or discount_amount is required")
	}
	if req.DiscountPercentage != nil && (!req.DiscountPercentage.IsPositive() || req.DiscountPercentage.GreaterThan(hundred)) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "discount_percentage must be greater than 0 and at most 100")
	}
	if req.DiscountAmount != nil && !req.DiscountAmount.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "discount_amount must be greater than 0")
	}

	start, err := parseDate(req.StartDate)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "start_date must be YYYY-MM-DD")
	}
	end, err := parseDate(req.EndDate)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "end_date must be YYYY-MM-DD")
	}
	if start != nil && end != nil && start.After(*end) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "start_date must not be after end_date")
	}

	rows, err := s.productRows(ctx, req.Products)
	if err != nil {
		return nil, err
	}

	p.Title = title
	p.Description = trimmedOrNil(req.Description)
	p.DiscountPercentage = ptrToNull(req.DiscountPercentage)
	p.DiscountAmount = ptrToNull(req.DiscountAmount)
	p.StartDate = start
	p.EndDate = end
	p.PhotoURL = trimmedOrNil(req.PhotoURL)
	if req.IsActive != nil {
		p.IsActive = *req.IsActive
	}
	return rows, nil
}

func (s *service) productRows(ctx context.Context, items []PromotionProductRequest) ([]models.PromotionProduct, error) {
	rows := make([]models.PromotionProduct, 0, len(items))
	ids := make([]uuid.UUID, 0, len(items))
	seen := make(map[uuid.UUID]struct{}, len(items))
	for i, item := range items {
		if _, dup := seen[item.ProductID]; dup {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "duplicate product in promotion").
				WithDetails(map[string]any{"field": fmt.Sprintf("products[%d].product_id", i)})
		}
		seen[item.ProductID] = struct{}{}
		qty := item.QuantityInPromotion
		if qty <= 0 {
			qty = 1
		}
		rows = append(rows, models.PromotionProduct{ProductID: item.ProductID, QuantityInPromotion: qty})
		ids = append(ids, item.ProductID)
	}
	existing, err := s.repo.ExistingProductIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check promotion products")
	}
	for i, id := range ids {
		if _, ok := existing[id]; !ok {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "product not found").
				WithDetails(map[string]any{"field": fmt.Sprintf("products[%d].product_id", i), "product_id": id})
		}
	}
	return rows, nil
}

func withPromotion(rows []models.PromotionProduct, id uuid.UUID) []models.PromotionProduct {
	for i := range rows {
		rows[i].PromotionID = id
	}
	return rows
}

func writeError(err error, op string) error {
	if db.IsForeignKeyViolation(err) {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "promotion references an unknown product")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, op)
}
