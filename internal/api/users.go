package api

import (
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"goldrefinery/m/domain"
	"goldrefinery/m/internal/policy"
	"goldrefinery/m/internal/store"
)

type userRequest struct {
	CompanyID *int64       `json:"company_id"`
	Name      *string      `json:"name" validate:"omitempty,min=1,max=255"`
	Email     *string      `json:"email" validate:"omitempty,email"`
	Password  *string      `json:"password" validate:"omitempty,min=8"`
	Role      *domain.Role `json:"role" validate:"omitempty,oneof=admin company_manager salesman"`
	Phone     *string      `json:"phone" validate:"omitempty,max=20"`
	Locale    *string      `json:"locale" validate:"omitempty,oneof=en ar"`
	IsActive  *bool        `json:"is_active"`
}

func (req userRequest) apply(u *domain.User) error {
	if req.Name != nil {
		u.Name = *req.Name
	}
	if req.Email != nil {
		u.Email = *req.Email
	}
	if req.Role != nil {
		u.Role = *req.Role
	}
	if req.Phone != nil {
		u.Phone = nullIfEmpty(*req.Phone)
	}
	if req.Locale != nil {
		u.Locale = *req.Locale
	}
	if req.IsActive != nil {
		u.IsActive = *req.IsActive
	}
	if req.Password != nil {
		hashed, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		u.Password = string(hashed)
	}
	return nil
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	s := subject(r)
	if err := policy.Authorize(s, policy.ManageUsers, nil); err != nil {
		h.fail(w, r, err)
		return
	}
	page := pageParams(r, 15)
	users, total, err := store.ListUsers(r.Context(), h.db, listScope(r, s), page)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondPage(w, users, total, page)
}

func (h *Handler) getUser(w http.ResponseWriter, r *http.Request) {
	s := subject(r)
	if err := policy.Authorize(s, policy.ManageUsers, nil); err != nil {
		h.fail(w, r, err)
		return
	}
	id, err := idParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid id")
		return
	}
	user, err := store.GetUser(r.Context(), h.db, policy.Scope(s), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

func (h *Handler) createUser(w http.ResponseWriter, r *http.Request) {
	s := subject(r)
	var req userRequest
	if !h.bind(w, r, &req) {
		return
	}
	if req.Name == nil || req.Email == nil || req.Password == nil || req.Role == nil {
		respondError(w, http.StatusUnprocessableEntity, "name, email, password and role are required")
		return
	}
	if !policy.CanAssignRole(s, *req.Role) {
		h.fail(w, r, policy.ErrForbidden)
		return
	}

	user := domain.User{Locale: "en", IsActive: true}
	if *req.Role != domain.RoleAdmin {
		companyID, err := targetCompany(s, req.CompanyID)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		user.CompanyID = &companyID
	}
	if err := policy.Authorize(s, policy.ManageUsers, user.CompanyID); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := req.apply(&user); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := store.CreateUser(r.Context(), h.db, &user); err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, user)
}

func (h *Handler) updateUser(w http.ResponseWriter, r *http.Request) {
	s := subject(r)
	if err := policy.Authorize(s, policy.ManageUsers, nil); err != nil {
		h.fail(w, r, err)
		return
	}
	id, err := idParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid id")
		return
	}
	var req userRequest
	if !h.bind(w, r, &req) {
		return
	}
	if req.Role != nil && !policy.CanAssignRole(s, *req.Role) {
		h.fail(w, r, policy.ErrForbidden)
		return
	}
	user, err := store.GetUser(r.Context(), h.db, policy.Scope(s), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := req.apply(user); err != nil {
		h.fail(w, r, err)
		return
	}
	if user.Role != domain.RoleAdmin && user.CompanyID == nil {
		respondError(w, http.StatusUnprocessableEntity, "company staff need a company")
		return
	}
	if err := store.UpdateUser(r.Context(), h.db, user); err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

func (h *Handler) deleteUser(w http.ResponseWriter, r *http.Request) {
	s := subject(r)
	if err := policy.Authorize(s, policy.ManageUsers, nil); err != nil {
		h.fail(w, r, err)
		return
	}
	id, err := idParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid id")
		return
	}
	if id == s.UserID {
		respondError(w, http.StatusUnprocessableEntity, "you cannot delete your own account")
		return
	}
	if err := store.DeleteUser(r.Context(), h.db, policy.Scope(s), id); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
