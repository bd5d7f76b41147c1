package api

import (
	"net/http"

	"github.com/shopspring/decimal"

	"goldrefinery/m/domain"
	"goldrefinery/m/internal/checkout"
	"goldrefinery/m/internal/policy"
	"goldrefinery/m/internal/store"
)

type productRequest struct {
	CompanyID   *int64           `json:"company_id"`
	Name        *string          `json:"name" validate:"omitempty,min=1,max=255"`
	NameAr      *string          `json:"name_ar" validate:"omitempty,max=255"`
	SKU         *string          `json:"sku" validate:"omitempty,min=1,max=100"`
	Price       *decimal.Decimal `json:"price"`
	Stock       *int64           `json:"stock" validate:"omitempty,min=0"`
	Unit        *string          `json:"unit" validate:"omitempty,max=50"`
	Description *string          `json:"description"`
	IsActive    *bool            `json:"is_active"`
}

func (req productRequest) apply(p *domain.Product) error {
	if req.Price != nil && req.Price.IsNegative() {
		return &checkout.ValidationError{Fields: map[string]string{"price": "must not be negative"}}
	}
	if req.Stock != nil && *req.Stock < 0 {
		return &checkout.ValidationError{Fields: map[string]string{"stock": "must not be negative"}}
	}
	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.NameAr != nil {
		p.NameAr = nullIfEmpty(*req.NameAr)
	}
	if req.SKU != nil {
		p.SKU = *req.SKU
	}
	if req.Price != nil {
		p.Price = req.Price.Round(2)
	}
	if req.Stock != nil {
		p.Stock = *req.Stock
	}
	if req.Unit != nil {
		p.Unit = *req.Unit
	}
	if req.Description != nil {
		p.Description = nullIfEmpty(*req.Description)
	}
	if req.IsActive != nil {
		p.IsActive = *req.IsActive
	}
	return nil
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	s := subject(r)
	if err := policy.Authorize(s, policy.ViewProducts, nil); err != nil {
		h.fail(w, r, err)
		return
	}
	products, err := store.ListProducts(r.Context(), h.db, store.ProductFilter{
		CompanyID:  listScope(r, s),
		ActiveOnly: true,
		Query:      r.URL.Query().Get("q"),
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, products)
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	s := subject(r)
	var req productRequest
	if !h.bind(w, r, &req) {
		return
	}
	if req.Name == nil || req.SKU == nil || req.Price == nil {
		respondError(w, http.StatusUnprocessableEntity, "name, sku and price are required")
		return
	}
	companyID, err := targetCompany(s, req.CompanyID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := policy.Authorize(s, policy.ManageProducts, &companyID); err != nil {
		h.fail(w, r, err)
		return
	}
	product := domain.Product{CompanyID: companyID, Unit: "piece", IsActive: true}
	if err := req.apply(&product); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := store.CreateProduct(r.Context(), h.db, &product); err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, product)
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	s := subject(r)
	if err := policy.Authorize(s, policy.ManageProducts, nil); err != nil {
		h.fail(w, r, err)
		return
	}
	id, err := idParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid id")
		return
	}
	var req productRequest
	if !h.bind(w, r, &req) {
		return
	}
	product, err := store.GetProduct(r.Context(), h.db, policy.Scope(s), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := req.apply(product); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := store.UpdateProduct(r.Context(), h.db, product); err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, product)
}
