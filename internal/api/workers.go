package api

import (
	"net/http"

	"goldrefinery/m/domain"
	"goldrefinery/m/internal/policy"
	"goldrefinery/m/internal/store"
)

type workerRequest struct {
	CompanyID *int64  `json:"company_id"`
	Name      *string `json:"name" validate:"omitempty,min=1,max=255"`
	NameAr    *string `json:"name_ar" validate:"omitempty,max=255"`
	Phone     *string `json:"phone" validate:"omitempty,max=20"`
	IDNumber  *string `json:"id_number" validate:"omitempty,max=50"`
	IsActive  *bool   `json:"is_active"`
}

func (req workerRequest) apply(wk *domain.Worker) {
	if req.Name != nil {
		wk.Name = *req.Name
	}
	if req.NameAr != nil {
		wk.NameAr = nullIfEmpty(*req.NameAr)
	}
	if req.Phone != nil {
		wk.Phone = nullIfEmpty(*req.Phone)
	}
	if req.IDNumber != nil {
		wk.IDNumber = nullIfEmpty(*req.IDNumber)
	}
	if req.IsActive != nil {
		wk.IsActive = *req.IsActive
	}
}

func (h *Handler) listWorkers(w http.ResponseWriter, r *http.Request) {
	s := subject(r)
	if err := policy.Authorize(s, policy.ManageWorkers, nil); err != nil {
		h.fail(w, r, err)
		return
	}
	page := pageParams(r, 15)
	workers, total, err := store.ListWorkers(r.Context(), h.db, listScope(r, s), page)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondPage(w, workers, total, page)
}

func (h *Handler) getWorker(w http.ResponseWriter, r *http.Request) {
	s := subject(r)
	if err := policy.Authorize(s, policy.ManageWorkers, nil); err != nil {
		h.fail(w, r, err)
		return
	}
	id, err := idParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid id")
		return
	}
	worker, err := store.GetWorker(r.Context(), h.db, policy.Scope(s), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, worker)
}

func (h *Handler) createWorker(w http.ResponseWriter, r *http.Request) {
	s := subject(r)
	var req workerRequest
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
	if err := policy.Authorize(s, policy.ManageWorkers, &companyID); err != nil {
		h.fail(w, r, err)
		return
	}
	worker := domain.Worker{CompanyID: companyID, IsActive: true}
	req.apply(&worker)
	if err := store.CreateWorker(r.Context(), h.db, &worker); err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, worker)
}

func (h *Handler) updateWorker(w http.ResponseWriter, r *http.Request) {
	s := subject(r)
	if err := policy.Authorize(s, policy.ManageWorkers, nil); err != nil {
		h.fail(w, r, err)
		return
	}
	id, err := idParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid id")
		return
	}
	var req workerRequest
	if !h.bind(w, r, &req) {
		return
	}
	worker, err := store.GetWorker(r.Context(), h.db, policy.Scope(s), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	req.apply(worker)
	if err := store.UpdateWorker(r.Context(), h.db, worker); err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, worker)
}

func (h *Handler) deleteWorker(w http.ResponseWriter, r *http.Request) {
	s := subject(r)
	if err := policy.Authorize(s, policy.ManageWorkers, nil); err != nil {
		h.fail(w, r, err)
		return
	}
	id, err := idParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid id")
		return
	}
	if err := store.DeleteWorker(r.Context(), h.db, policy.Scope(s), id); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
