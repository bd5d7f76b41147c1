package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"goldrefinery/m/domain"
	"goldrefinery/m/internal/policy"
	"goldrefinery/m/internal/store"
)

type ctxKey string

const ctxSubject ctxKey = "subject"

type authClaims struct {
	UserID    int64       `json:"user_id"`
	Role      domain.Role `json:"role"`
	CompanyID *int64      `json:"company_id,omitempty"`
	jwt.RegisteredClaims
}

func (h *Handler) generateToken(u *domain.User) (string, error) {
	claims := authClaims{
		UserID:    u.ID,
		Role:      u.Role,
		CompanyID: u.CompanyID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.secret))
}

func (h *Handler) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" || !strings.HasPrefix(strings.ToLower(header), "bearer ") {
			respondError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		tokenString := strings.TrimSpace(header[len("Bearer "):])
		token, err := jwt.ParseWithClaims(tokenString, &authClaims{}, func(token *jwt.Token) (any, error) {
			if token.Method != jwt.SigningMethodHS256 {
				return nil, errors.New("unexpected signing method")
			}
			return []byte(h.secret), nil
		})
		if err != nil || !token.Valid {
			respondError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		claims, ok := token.Claims.(*authClaims)
		if !ok || !claims.Role.Valid() {
			respondError(w, http.StatusUnauthorized, "invalid token claims")
			return
		}
		// Role, company and active flag are read from the stored user.
		user, err := store.GetUser(r.Context(), h.db, nil, claims.UserID)
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		if err != nil {
			h.fail(w, r, err)
			return
		}
		if !user.IsActive {
			respondError(w, http.StatusUnauthorized, "account is disabled")
			return
		}
		s := policy.Subject{UserID: user.ID, Role: user.Role, CompanyID: user.CompanyID}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxSubject, s)))
	})
}

func subject(r *http.Request) policy.Subject {
	s, _ := r.Context().Value(ctxSubject).(policy.Subject)
	return s
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type authResponse struct {
	Token   string          `json:"token"`
	User    domain.User     `json:"user"`
	Company *domain.Company `json:"company,omitempty"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !h.bind(w, r, &req) {
		return
	}

	user, err := store.GetUserByEmail(r.Context(), h.db, req.Email)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		h.fail(w, r, err)
		return
	}
	if err != nil || bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		respondError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if !user.IsActive {
		respondError(w, http.StatusForbidden, "account is disabled")
		return
	}

	token, err := h.generateToken(user)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to generate token")
		return
	}
	company, err := h.userCompany(r, user)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, authResponse{Token: token, User: *user, Company: company})
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	user, err := store.GetUser(r.Context(), h.db, nil, subject(r).UserID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	company, err := h.userCompany(r, user)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"user": user, "company": company})
}

func (h *Handler) userCompany(r *http.Request, u *domain.User) (*domain.Company, error) {
	if u.CompanyID == nil {
		return nil, nil
	}
	return store.GetCompany(r.Context(), h.db, *u.CompanyID)
}

func (h *Handler) resetPassword(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		CurrentPassword string `json:"current_password" validate:"required"`
		NewPassword     string `json:"new_password" validate:"required,min=8"`
	}
	if !h.bind(w, r, &payload) {
		return
	}
	user, err := store.GetUser(r.Context(), h.db, nil, subject(r).UserID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(payload.CurrentPassword)) != nil {
		respondError(w, http.StatusUnauthorized, "current password is incorrect")
		return
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(payload.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to secure password")
		return
	}
	user.Password = string(hashed)
	if err := store.UpdateUser(r.Context(), h.db, user); err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "password updated"})
}
