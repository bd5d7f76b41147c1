package api

import (
	"net/http"

	"goldrefinery/m/domain"
	"goldrefinery/m/internal/policy"
	"goldrefinery/m/internal/store"
)

type companyRequest struct {
	Name      *string `json:"name" validate:"omitempty,min=1,max=255"`
	NameAr    *string `json:"name_ar" validate:"omitempty,max=255"`
	Email     *string `json:"email" validate:"omitempty,email"`
	Phone     *string `json:"phone" validate:"omitempty,max=20"`
	Address   *string `json:"address"`
	AddressAr *string `json:"address_ar"`
	IsActive  *bool   `json:"is_active"`
}

func (req companyRequest) apply(c *domain.Company) {
	if req.Name != nil {
		c.Name = *req.Name
	}
	if req.NameAr != nil {
		c.NameAr = nullIfEmpty(*req.NameAr)
	}
	if req.Email != nil {
		c.Email = *req.Email
	}
	if req.Phone != nil {
		c.Phone = nullIfEmpty(*req.Phone)
	}
	if req.Address != nil {
		c.Address = nullIfEmpty(*req.Address)
	}
	if req.AddressAr != nil {
		c.AddressAr = nullIfEmpty(*req.AddressAr)
	}
	if req.IsActive != nil {
		c.IsActive = *req.IsActive
	}
}

func (h *Handler) listCompanies(w http.ResponseWriter, r *http.Request) {
	if err := policy.Authorize(subject(r), policy.ManageCompanies, nil); err != nil {
		h.fail(w, r, err)
		return
	}
	page := pageParams(r, 15)
	companies, total, err := store.ListCompanies(r.Context(), h.db, page)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondPage(w, companies, total, page)
}

func (h *Handler) getCompany(w http.ResponseWriter, r *http.Request) {
	if err := policy.Authorize(subject(r), policy.ManageCompanies, nil); err != nil {
		h.fail(w, r, err)
		return
	}
	id, err := idParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid id")
		return
	}
	company, err := store.GetCompany(r.Context(), h.db, id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, company)
}

func (h *Handler) createCompany(w http.ResponseWriter, r *http.Request) {
	if err := policy.Authorize(subject(r), policy.ManageCompanies, nil); err != nil {
		h.fail(w, r, err)
		return
	}
	var req companyRequest
	if !h.bind(w, r, &req) {
		return
	}
	if req.Name == nil || req.Email == nil {
		respondError(w, http.StatusUnprocessableEntity, "name and email are required")
		return
	}
	company := domain.Company{IsActive: true}
	req.apply(&company)
	if err := store.CreateCompany(r.Context(), h.db, &company); err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, company)
}

func (h *Handler) updateCompany(w http.ResponseWriter, r *http.Request) {
	if err := policy.Authorize(subject(r), policy.ManageCompanies, nil); err != nil {
		h.fail(w, r, err)
		return
	}
	id, err := idParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid id")
		return
	}
	var req companyRequest
	if !h.bind(w, r, &req) {
		return
	}
	company, err := store.GetCompany(r.Context(), h.db, id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	req.apply(company)
	if err := store.UpdateCompany(r.Context(), h.db, company); err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, company)
}

func (h *Handler) deleteCompany(w http.ResponseWriter, r *http.Request) {
	if err := policy.Authorize(subject(r), policy.ManageCompanies, nil); err != nil {
		h.fail(w, r, err)
		return
	}
	id, err := idParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid id")
		return
	}
	if err := store.DeleteCompany(r.Context(), h.db, id); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
