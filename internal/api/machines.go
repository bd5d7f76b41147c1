package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/shopspring/decimal"

	"goldrefinery/m/domain"
	"goldrefinery/m/internal/checkout"
	"goldrefinery/m/internal/policy"
	"goldrefinery/m/internal/store"
)

type categoryRequest struct {
	CompanyID *int64  `json:"company_id"`
	Name      *string `json:"name" validate:"omitempty,min=1,max=255"`
	NameAr    *string `json:"name_ar" validate:"omitempty,max=255"`
	IsActive  *bool   `json:"is_active"`
}

func (h *Handler) listMachineCategories(w http.ResponseWriter, r *http.Request) {
	s := subject(r)
	if err := policy.Authorize(s, policy.ManageMachines, nil); err != nil {
		h.fail(w, r, err)
		return
	}
	categories, err := store.ListMachineCategories(r.Context(), h.db, listScope(r, s))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, categories)
}

func (h *Handler) createMachineCategory(w http.ResponseWriter, r *http.Request) {
	s := subject(r)
	var req categoryRequest
	if !h.bind(w, r, &req) {
		return
	}
	if req.Name == nil {
		respondError(w, http.StatusUnprocessableEntity, "name is required")
		return
	}
	companyID, err := targetCompany(s, req.CompanyID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := policy.Authorize(s, policy.ManageMachines, &companyID); err != nil {
		h.fail(w, r, err)
		return
	}
	category := domain.MachineCategory{CompanyID: companyID, Name: *req.Name, IsActive: true}
	if req.NameAr != nil {
		category.NameAr = nullIfEmpty(*req.NameAr)
	}
	if req.IsActive != nil {
		category.IsActive = *req.IsActive
	}
	if err := store.CreateMachineCategory(r.Context(), h.db, &category); err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, category)
}

func (h *Handler) updateMachineCategory(w http.ResponseWriter, r *http.Request) {
	s := subject(r)
	if err := policy.Authorize(s, policy.ManageMachines, nil); err != nil {
		h.fail(w, r, err)
		return
	}
	id, err := idParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid id")
		return
	}
	var req categoryRequest
	if !h.bind(w, r, &req) {
		return
	}
	category, err := store.GetMachineCategory(r.Context(), h.db, policy.Scope(s), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if req.Name != nil {
		category.Name = *req.Name
	}
	if req.NameAr != nil {
		category.NameAr = nullIfEmpty(*req.NameAr)
	}
	if req.IsActive != nil {
		category.IsActive = *req.IsActive
	}
	if err := store.UpdateMachineCategory(r.Context(), h.db, category); err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, category)
}

func (h *Handler) deleteMachineCategory(w http.ResponseWriter, r *http.Request) {
	s := subject(r)
	if err := policy.Authorize(s, policy.ManageMachines, nil); err != nil {
		h.fail(w, r, err)
		return
	}
	id, err := idParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid id")
		return
	}
	if err := store.DeleteMachineCategory(r.Context(), h.db, policy.Scope(s), id); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type machineRequest struct {
	CompanyID    *int64                `json:"company_id"`
	CategoryID   *int64                `json:"category_id"`
	Name         *string               `json:"name" validate:"omitempty,min=1,max=255"`
	NameAr       *string               `json:"name_ar" validate:"omitempty,max=255"`
	SerialNumber *string               `json:"serial_number" validate:"omitempty,min=1,max=255"`
	Type         *domain.MachineType   `json:"type" validate:"omitempty,oneof=refining melting casting other"`
	Status       *domain.MachineStatus `json:"status" validate:"omitempty,oneof=active maintenance inactive"`
	CostPerUnit  *decimal.Decimal      `json:"cost_per_unit"`
	Unit         *string               `json:"unit" validate:"omitempty,max=50"`
	Description  *string               `json:"description"`
}

func (req machineRequest) apply(m *domain.Machine) error {
	if req.CostPerUnit != nil && req.CostPerUnit.IsNegative() {
		return &checkout.ValidationError{Fields: map[string]string{"cost_per_unit": "must not be negative"}}
	}
	if req.CategoryID != nil {
		m.CategoryID = req.CategoryID
		if *req.CategoryID == 0 {
			m.CategoryID = nil
		}
	}
	if req.Name != nil {
		m.Name = *req.Name
	}
	if req.NameAr != nil {
		m.NameAr = nullIfEmpty(*req.NameAr)
	}
	if req.SerialNumber != nil {
		m.SerialNumber = *req.SerialNumber
	}
	if req.Type != nil {
		m.Type = *req.Type
	}
	if req.Status != nil {
		m.Status = *req.Status
	}
	if req.CostPerUnit != nil {
		m.CostPerUnit = req.CostPerUnit.Round(2)
	}
	if req.Unit != nil {
		m.Unit = *req.Unit
	}
	if req.Description != nil {
		m.Description = nullIfEmpty(*req.Description)
	}
	return nil
}

// checkCategory rejects a category from another company.
func (h *Handler) checkCategory(ctx context.Context, m *domain.Machine) error {
	if m.CategoryID == nil {
		return nil
	}
	_, err := store.GetMachineCategory(ctx, h.db, &m.CompanyID, *m.CategoryID)
	if errors.Is(err, store.ErrNotFound) {
		return &checkout.ValidationError{Fields: map[string]string{"category_id": "does not exist"}}
	}
	return err
}

func (h *Handler) listMachines(w http.ResponseWriter, r *http.Request) {
	s := subject(r)
	if err := policy.Authorize(s, policy.ManageMachines, nil); err != nil {
		h.fail(w, r, err)
		return
	}
	page := pageParams(r, 15)
	machines, total, err := store.ListMachines(r.Context(), h.db, listScope(r, s), page)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondPage(w, machines, total, page)
}

func (h *Handler) getMachine(w http.ResponseWriter, r *http.Request) {
	s := subject(r)
	if err := policy.Authorize(s, policy.ManageMachines, nil); err != nil {
		h.fail(w, r, err)
		return
	}
	id, err := idParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid id")
		return
	}
	machine, err := store.GetMachine(r.Context(), h.db, policy.Scope(s), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, machine)
}

func (h *Handler) createMachine(w http.ResponseWriter, r *http.Request) {
	s := subject(r)
	var req machineRequest
	if !h.bind(w, r, &req) {
		return
	}
	if req.Name == nil || req.SerialNumber == nil || req.CostPerUnit == nil {
		respondError(w, http.StatusUnprocessableEntity, "name, serial_number and cost_per_unit are required")
		return
	}
	companyID, err := targetCompany(s, req.CompanyID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := policy.Authorize(s, policy.ManageMachines, &companyID); err != nil {
		h.fail(w, r, err)
		return
	}
	machine := domain.Machine{
		CompanyID: companyID,
		Type:      domain.MachineRefining,
		Status:    domain.MachineActive,
		Unit:      "hour",
	}
	if err := req.apply(&machine); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.checkCategory(r.Context(), &machine); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := store.CreateMachine(r.Context(), h.db, &machine); err != nil {
		h.fail(w, r, err)
		return
	}
	h.respondMachine(w, r, http.StatusCreated, machine.ID)
}

func (h *Handler) updateMachine(w http.ResponseWriter, r *http.Request) {
	s := subject(r)
	if err := policy.Authorize(s, policy.ManageMachines, nil); err != nil {
		h.fail(w, r, err)
		return
	}
	id, err := idParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid id")
		return
	}
	var req machineRequest
	if !h.bind(w, r, &req) {
		return
	}
	machine, err := store.GetMachine(r.Context(), h.db, policy.Scope(s), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := req.apply(machine); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.checkCategory(r.Context(), machine); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := store.UpdateMachine(r.Context(), h.db, machine); err != nil {
		h.fail(w, r, err)
		return
	}
	h.respondMachine(w, r, http.StatusOK, machine.ID)
}

// respondMachine reloads the machine so the category name is current.
func (h *Handler) respondMachine(w http.ResponseWriter, r *http.Request, status int, id int64) {
	machine, err := store.GetMachine(r.Context(), h.db, nil, id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, status, machine)
}

func (h *Handler) deleteMachine(w http.ResponseWriter, r *http.Request) {
	s := subject(r)
	if err := policy.Authorize(s, policy.ManageMachines, nil); err != nil {
		h.fail(w, r, err)
		return
	}
	id, err := idParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid id")
		return
	}
	if err := store.DeleteMachine(r.Context(), h.db, policy.Scope(s), id); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
