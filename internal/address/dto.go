package address

import (
	"strings"

	"github.com/ilumina/storefront-backend/pkg/db/models"
)

// AddressRequest is the body of create and update. Update replaces every field.
type AddressRequest struct {
	Street       string  `json:"street" validate:"required,max=255"`
	Number       *string `json:"number" validate:"omitempty,max=32"`
	Complement   *string `json:"complement" validate:"omitempty,max=255"`
	Neighborhood *string `json:"neighborhood" validate:"omitempty,max=255"`
	City         string  `json:"city" validate:"required,max=255"`
	State        string  `json:"state" validate:"required,max=64"`
	ZipCode      string  `json:"zip_code" validate:"required,max=16"`
	IsDefault    bool    `json:"is_default"`
}

func (r AddressRequest) apply(a *models.Address) {
	a.Street = strings.TrimSpace(r.Street)
	a.Number = trimmedOrNil(r.Number)
	a.Complement = trimmedOrNil(r.Complement)
	a.Neighborhood = trimmedOrNil(r.Neighborhood)
	a.City = strings.TrimSpace(r.City)
	a.State = strings.TrimSpace(r.State)
	a.ZipCode = strings.TrimSpace(r.ZipCode)
	a.IsDefault = r.IsDefault
}

func trimmedOrNil(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	if t == "" {
		return nil
	}
	return &t
}
