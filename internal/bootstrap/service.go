// Package bootstrap prepares a fresh database for first use: the initial
// admin account and the default catalog vocabulary.
package bootstrap

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/multierr"

	"github.com/ilumina/storefront-backend/internal/categories"
	"github.com/ilumina/storefront-backend/internal/tags"
	"github.com/ilumina/storefront-backend/internal/users"
	"github.com/ilumina/storefront-backend/pkg/config"
	"github.com/ilumina/storefront-backend/pkg/db"
	"github.com/ilumina/storefront-backend/pkg/db/models"
	"github.com/ilumina/storefront-backend/pkg/enums"
	"github.com/ilumina/storefront-backend/pkg/logger"
	"github.com/ilumina/storefront-backend/pkg/security"
)

type Params struct {
	Users      *users.Repository
	Categories *categories.Repository
	Tags       tags.Service
	Password   config.PasswordConfig
	Admin      config.BootstrapConfig
	SeedData   bool
	Logger     *logger.Logger
}

type Seeder struct {
	users      *users.Repository
	categories *categories.Repository
	tags       tags.Service
	password   config.PasswordConfig
	admin      config.BootstrapConfig
	seedData   bool
	logg       *logger.Logger
}

func NewSeeder(p Params) (*Seeder, error) {
	if p.Users == nil {
		return nil, fmt.Errorf("users repository required")
	}
	if p.Categories == nil {
		return nil, fmt.Errorf("categories repository required")
	}
	if p.Tags == nil {
		return nil, fmt.Errorf("tag service required")
	}
	if p.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Seeder{
		users:      p.Users,
		categories: p.Categories,
		tags:       p.Tags,
		password:   p.Password,
		admin:      p.Admin,
		seedData:   p.SeedData,
		logg:       p.Logger,
	}, nil
}

// Run is safe to call on every start. The admin account is only created when
// no user exists; catalog rows are only inserted when missing.
func (s *Seeder) Run(ctx context.Context) error {
	var errs error
	if err := s.ensureAdmin(ctx); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("seed admin: %w", err))
	}
	if !s.seedData {
		return errs
	}
	if err := s.seedCategories(ctx); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("seed categories: %w", err))
	}
	for _, kind := range []tags.Kind{tags.KindIngredient, tags.KindDietaryRestriction} {
		if _, err := s.tags.Resolve(ctx, kind, defaultTags[kind]); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("seed %s: %w", kind, err))
		}
	}
	return errs
}

func (s *Seeder) ensureAdmin(ctx context.Context) error {
	count, err := s.users.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	username := strings.TrimSpace(s.admin.AdminUsername)
	if username == "" {
		username = "admin"
	}
	password := s.admin.AdminPassword
	generated := password == ""
	if generated {
		if password, err = security.GenerateTempPassword(tempPasswordLength); err != nil {
			return err
		}
	}
	hash, err := security.HashPassword(password, s.password)
	if err != nil {
		return err
	}
	user, err := s.users.Create(ctx, users.CreateUserDTO{
		Username:     username,
		PasswordHash: hash,
		Role:         enums.UserRoleAdmin,
	})
	if err != nil {
		return err
	}

	fields := map[string]any{"user_id": user.ID.String(), "username": username}
	if generated {
		fields["temp_password"] = password
	}
	s.logg.Warn(s.logg.WithFields(ctx, fields), "bootstrap admin account created")
	return nil
}

func (s *Seeder) seedCategories(ctx context.Context) error {
	var errs error
	for _, seed := range defaultCategories {
		category, err := s.categories.FindCategoryByName(ctx, seed.Name)
		if db.IsNotFound(err) {
			category = &models.Category{Name: seed.Name, OrderIndex: seed.OrderIndex}
			err = s.categories.CreateCategory(ctx, category)
		}
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", seed.Name, err))
			continue
		}
		for i, name := range seed.Subcategories {
			_, err := s.categories.FindSubcategoryByName(ctx, category.ID, name)
			if db.IsNotFound(err) {
				err = s.categories.CreateSubcategory(ctx, &models.Subcategory{
					CategoryID: category.ID,
					Name:       name,
					OrderIndex: i + 1,
				})
			}
			if err != nil {
				errs = multierr.Append(errs, fmt.Errorf("%s/%s: %w", seed.Name, name, err))
			}
		}
	}
	return errs
}
