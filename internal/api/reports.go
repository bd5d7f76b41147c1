package api

import (
	"net/http"
	"time"

	"goldrefinery/m/internal/policy"
	"goldrefinery/m/internal/store"
)

const dateLayout = "2006-01-02"

func (h *Handler) dailySales(w http.ResponseWriter, r *http.Request) {
	now := time.Now().In(h.loc)
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, h.loc)
	h.summarize(w, r, from, from.AddDate(0, 0, 1))
}

func (h *Handler) monthlySales(w http.ResponseWriter, r *http.Request) {
	now := time.Now().In(h.loc)
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, h.loc)
	h.summarize(w, r, from, from.AddDate(0, 1, 0))
}

// salesReport summarizes ?from=YYYY-MM-DD&to=YYYY-MM-DD, both days inclusive.
func (h *Handler) salesReport(w http.ResponseWriter, r *http.Request) {
	from, err := time.ParseInLocation(dateLayout, r.URL.Query().Get("from"), h.loc)
	if err != nil {
		respondError(w, http.StatusBadRequest, "from must be a date (YYYY-MM-DD)")
		return
	}
	to, err := time.ParseInLocation(dateLayout, r.URL.Query().Get("to"), h.loc)
	if err != nil {
		respondError(w, http.StatusBadRequest, "to must be a date (YYYY-MM-DD)")
		return
	}
	if to.Before(from) {
		respondError(w, http.StatusBadRequest, "to must not be before from")
		return
	}
	h.summarize(w, r, from, to.AddDate(0, 0, 1))
}

func (h *Handler) summarize(w http.ResponseWriter, r *http.Request, from, to time.Time) {
	s := subject(r)
	if err := policy.Authorize(s, policy.ViewReports, nil); err != nil {
		h.fail(w, r, err)
		return
	}
	summary, err := store.SummarizeSales(r.Context(), h.db, listScope(r, s), from, to)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, summary)
}
