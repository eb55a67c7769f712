package tax

import (
	"encoding/json"
	"net/http"
	"strings"

	validator "github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/maplehq/backend-maple/internal/common"
	"github.com/maplehq/backend-maple/internal/obs"
)

// Handler wires the tax service to HTTP.
type Handler struct {
	Svc      *Service
	Validate *validator.Validate
}

// CartRequest is the POST /tax/cart payload.
type CartRequest struct {
	Items             []CartRequestItem `json:"items" validate:"required,min=1,dive"`
	DiscountAmount    decimal.Decimal   `json:"discountAmount"`
	LoyaltyRedemption decimal.Decimal   `json:"loyaltyRedemption"`
	Subtotal          *decimal.Decimal  `json:"subtotal"`
	TenderType        string            `json:"tenderType" validate:"omitempty,oneof=cash card"`
}

// CartRequestItem is one line of the quote payload.
type CartRequestItem struct {
	Subtotal        decimal.Decimal `json:"subtotal"`
	CategoryID      string          `json:"categoryId" validate:"omitempty,uuid"`
	OverrideRuleIDs []string        `json:"overrideTaxRuleIds" validate:"omitempty,dive,uuid"`
}

// QuoteCart computes cart tax totals, breakdowns and the settlement total.
func (h *Handler) QuoteCart(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "tax service not configured", nil)
		return
	}
	var payload CartRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid JSON payload", nil)
		return
	}
	if h.Validate != nil {
		if err := h.Validate.Struct(payload); err != nil {
			common.JSONError(w, http.StatusUnprocessableEntity, "VALIDATION", "invalid cart payload", err.Error())
			return
		}
	}
	in, err := payload.toInput()
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
		return
	}
	quote, err := h.Svc.QuoteCart(r.Context(), in, TenderType(strings.TrimSpace(payload.TenderType)))
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "unable to compute cart tax", nil)
		return
	}
	obs.ObserveTaxQuote(len(in.Items), quote.TotalTax.InexactFloat64())
	common.JSON(w, http.StatusOK, map[string]any{"data": quote})
}

func (p CartRequest) toInput() (CartInput, error) {
	in := CartInput{
		DiscountAmount:    p.DiscountAmount,
		LoyaltyRedemption: p.LoyaltyRedemption,
		Subtotal:          p.Subtotal,
		Items:             make([]LineItem, 0, len(p.Items)),
	}
	for _, item := range p.Items {
		line := LineItem{Subtotal: item.Subtotal}
		if trimmed := strings.TrimSpace(item.CategoryID); trimmed != "" {
			id, err := uuid.Parse(trimmed)
			if err != nil {
				return CartInput{}, err
			}
			line.CategoryID = id
		}
		for _, raw := range item.OverrideRuleIDs {
			id, err := uuid.Parse(strings.TrimSpace(raw))
			if err != nil {
				return CartInput{}, err
			}
			line.OverrideRuleIDs = append(line.OverrideRuleIDs, id)
		}
		in.Items = append(in.Items, line)
	}
	return in, nil
}
