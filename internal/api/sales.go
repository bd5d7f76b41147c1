package api

import (
	"net/http"

	"goldrefinery/m/internal/checkout"
)

func (h *Handler) createSale(w http.ResponseWriter, r *http.Request) {
	var req checkout.Request
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	sale, err := h.checkout.Checkout(r.Context(), subject(r), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, sale)
}

func (h *Handler) quoteSale(w http.ResponseWriter, r *http.Request) {
	var req checkout.QuoteRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	quote, err := h.checkout.Quote(r.Context(), subject(r), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, quote)
}

func (h *Handler) listSales(w http.ResponseWriter, r *http.Request) {
	page := pageParams(r, 20)
	sales, total, err := h.checkout.ListSales(r.Context(), subject(r), page)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondPage(w, sales, total, page)
}

func (h *Handler) getSale(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid id")
		return
	}
	sale, err := h.checkout.GetSale(r.Context(), subject(r), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, sale)
}
