package paymentmethods

import (
	"strings"

	"github.com/ilumina/storefront-backend/pkg/db/models"
)

// CreateRequest registers a tokenized payment reference. Raw card numbers are
// never accepted; only the brand, type and last four digits are kept for display.
type CreateRequest struct {
	MethodType     string  `json:"method_type" validate:"required,max=32"`
	CardType       *string `json:"card_type" validate:"omitempty,max=32"`
	CardBrand      *string `json:"card_brand" validate:"omitempty,max=32"`
	LastFourDigits *string `json:"last_four_digits" validate:"omitempty,len=4,numeric"`
	TokenizedData  *string `json:"tokenized_data" validate:"omitempty,max=2048"`
	IsDefault      bool    `json:"is_default"`
}

func (r CreateRequest) toModel() *models.PaymentMethod {
	return &models.PaymentMethod{
		MethodType:     strings.TrimSpace(r.MethodType),
		CardType:       trimmedOrNil(r.CardType),
		CardBrand:      trimmedOrNil(r.CardBrand),
		LastFourDigits: trimmedOrNil(r.LastFourDigits),
		TokenizedData:  r.TokenizedData,
		IsDefault:      r.IsDefault,
	}
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
