package tags

import (
	"context"
	"fmt"
	"strings"

	"github.com/ilumina/storefront-backend/pkg/db"
	pkgerrors "github.com/ilumina/storefront-backend/pkg/errors"
)

// Service resolves free-text tag names into shared vocabulary rows.
type Service interface {
	List(ctx context.Context, kind Kind, search string) ([]Tag, error)
	// Create returns the existing row when the name is taken; created reports which case applied.
	Create(ctx context.Context, kind Kind, name string) (tag Tag, created bool, err error)
	GetOrCreate(ctx context.Context, kind Kind, name string) (Tag, error)
	// Resolve maps names to tags, one output per input in the same order.
	Resolve(ctx context.Context, kind Kind, names []string) ([]Tag, error)
}

type service struct {
	repo *Repository
}

func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("tag repository is required")
	}
	return &service{repo: repo}, nil
}

func (s *service) List(ctx context.Context, kind Kind, search string) ([]Tag, error) {
	if err := validKind(kind); err != nil {
		return nil, err
	}
	rows, err := s.repo.List(ctx, kind, search)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list "+kind.label()+" tags")
	}
	return rows, nil
}

func (s *service) Create(ctx context.Context, kind Kind, name string) (Tag, bool, error) {
	if err := validKind(kind); err != nil {
		return Tag{}, false, err
	}
	name, err := normalizeName(name)
	if err != nil {
		return Tag{}, false, err
	}
	existing, err := s.repo.FindByName(ctx, kind, name)
	if err == nil {
		return *existing, false, nil
	}
	if !db.IsNotFound(err) {
		return Tag{}, false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup "+kind.label())
	}
	tag, created, err := s.insertOrRefetch(ctx, kind, name)
	if err != nil {
		return Tag{}, false, err
	}
	return tag, created, nil
}

func (s *service) GetOrCreate(ctx context.Context, kind Kind, name string) (Tag, error) {
	tag, _, err := s.Create(ctx, kind, name)
	return tag, err
}

func (s *service) Resolve(ctx context.Context, kind Kind, names []string) ([]Tag, error) {
	if err := validKind(kind); err != nil {
		return nil, err
	}
	out := make([]Tag, 0, len(names))
	resolved := make(map[string]Tag, len(names))
	for i, raw := range names {
		name, err := normalizeName(raw)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "tag names must not be empty").
				WithDetails(map[string]any{"field": fmt.Sprintf("%ss[%d]", kind, i)})
		}
		if tag, ok := resolved[name]; ok {
			out = append(out, tag)
			continue
		}
		tag, err := s.GetOrCreate(ctx, kind, name)
		if err != nil {
			return nil, err
		}
		resolved[name] = tag
		out = append(out, tag)
	}
	return out, nil
}

// insertOrRefetch treats a unique violation as a concurrent creator winning the race.
func (s *service) insertOrRefetch(ctx context.Context, kind Kind, name string) (Tag, bool, error) {
	tag, err := s.repo.Create(ctx, kind, name)
	if err == nil {
		return *tag, true, nil
	}
	if !db.IsUniqueViolation(err, "") {
		return Tag{}, false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create "+kind.label())
	}
	existing, ferr := s.repo.FindByName(ctx, kind, name)
	if ferr != nil {
		return Tag{}, false, pkgerrors.Wrap(pkgerrors.CodeDependency, ferr, "refetch "+kind.label())
	}
	return *existing, false, nil
}

func normalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	return name, nil
}

func validKind(kind Kind) error {
	if !kind.IsValid() {
		return pkgerrors.Newf(pkgerrors.CodeValidation, "unknown tag kind %q", kind)
	}
	return nil
}
