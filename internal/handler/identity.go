package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/mmeshcher/bakeshop-system/internal/auth"
	"github.com/mmeshcher/bakeshop-system/internal/model"
	"github.com/mmeshcher/bakeshop-system/internal/repository"
	"github.com/mmeshcher/bakeshop-system/internal/service"
	"github.com/mmeshcher/bakeshop-system/internal/validation"
)

type loginRequest struct {
	Role     string `json:"role"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login аутентифицирует учётную запись в разделе, соответствующем заявленной
// роли, и для покупателей сливает корзину посетителя в корзину покупателя
// перед ответом. Токен посетителя берётся из cookie до того, как вход изменит
// состояние сессии. Любая неудача входа отвечает одинаково — редиректом на
// /login без установки cookie.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeLogin(r)
	if !ok || req.Username == "" || req.Password == "" {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	// Токен посетителя фиксируется до аутентификации.
	visitorToken, _ := auth.VisitorTokenFromContext(r.Context())

	kind := model.PrincipalKind(req.Role)
	principal, err := h.service.Authenticate(r.Context(), kind, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
		h.logger.Error("login error", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	if principal.Kind == model.KindCustomer {
		if err := h.service.MergeVisitorCart(r.Context(), visitorToken, principal.ID); err != nil {
			h.logger.Error("merge visitor cart error", zap.Error(err), zap.String("customerID", principal.ID))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
	}

	if err := h.sessions.SetSessionCookie(w, principal); err != nil {
		h.logger.Error("set session cookie error", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	if principal.Kind == model.KindOwner {
		http.Redirect(w, r, "/user/owner-dashboard", http.StatusFound)
		return
	}
	http.Redirect(w, r, "/user/customer-dashboard", http.StatusFound)
}

// decodeLogin принимает учётные данные как JSON-телом, так и обычной формой.
func decodeLogin(r *http.Request) (loginRequest, bool) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return loginRequest{}, false
		}
		return req, true
	}

	if err := r.ParseForm(); err != nil {
		return loginRequest{}, false
	}
	return loginRequest{
		Role:     r.PostFormValue("role"),
		Username: r.PostFormValue("username"),
		Password: r.PostFormValue("password"),
	}, true
}

type registerRequest struct {
	Username  string   `json:"username"`
	Email     string   `json:"email"`
	Password  string   `json:"password"`
	Street    string   `json:"street"`
	City      string   `json:"city"`
	State     string   `json:"state"`
	ZipCode   string   `json:"zipCode"`
	Sweetness string   `json:"sweetness"`
	Flavors   string   `json:"flavors"`
	Types     []string `json:"types"`
	Allergies []string `json:"allergies"`
}

type customerResponse struct {
	ID          string            `json:"id"`
	Username    string            `json:"username"`
	Email       string            `json:"email"`
	Address     model.Address     `json:"address"`
	Preferences model.Preferences `json:"preferences"`
}

// Register регистрирует нового покупателя и сразу открывает ему сессию.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	fieldErrs := validation.ValidateRegistration(validation.RegistrationInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		ZipCode:  req.ZipCode,
	})
	if len(fieldErrs) > 0 {
		writeJSON(w, http.StatusBadRequest, map[string]any{"errors": fieldErrs})
		return
	}

	customer, err := h.service.RegisterCustomer(r.Context(), service.RegisterCustomerInput{
		Username: strings.TrimSpace(req.Username),
		Email:    req.Email,
		Password: req.Password,
		Address: model.Address{
			Street:  req.Street,
			City:    req.City,
			State:   req.State,
			ZipCode: req.ZipCode,
		},
		Preferences: model.Preferences{
			Sweetness: req.Sweetness,
			Flavors:   req.Flavors,
			Types:     req.Types,
			Allergies: req.Allergies,
		},
	})
	if err != nil {
		if errors.Is(err, repository.ErrUserExists) {
			http.Error(w, http.StatusText(http.StatusConflict), http.StatusConflict)
			return
		}
		h.logger.Error("register customer error", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	if err := h.sessions.SetSessionCookie(w, customer.Principal()); err != nil {
		h.logger.Error("set session cookie error", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, customerResponse{
		ID:          customer.ID,
		Username:    customer.Username,
		Email:       customer.Email,
		Address:     customer.Address,
		Preferences: customer.Preferences,
	})
}

// Logout завершает сессию и возвращает на главную.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.ClearSessionCookie(w)
	http.Redirect(w, r, "/", http.StatusFound)
}

// CustomerDashboard возвращает профиль текущего покупателя.
func (h *Handler) CustomerDashboard(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.PrincipalFromContext(r.Context())

	customer, err := h.service.GetCustomer(r.Context(), principal.ID)
	if err != nil {
		h.logger.Error("get customer error", zap.Error(err), zap.String("customerID", principal.ID))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, customerResponse{
		ID:          customer.ID,
		Username:    customer.Username,
		Email:       customer.Email,
		Address:     customer.Address,
		Preferences: customer.Preferences,
	})
}

// OwnerDashboard возвращает профиль текущего владельца.
func (h *Handler) OwnerDashboard(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.PrincipalFromContext(r.Context())

	owner, err := h.service.GetOwner(r.Context(), principal.ID)
	if err != nil {
		h.logger.Error("get owner error", zap.Error(err), zap.String("ownerID", principal.ID))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"id":       owner.ID,
		"username": owner.Username,
		"email":    owner.Email,
		"fullName": owner.FullName,
	})
}

type addressRequest struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zipCode"`
}

// UpdateAddress обновляет почтовый адрес текущего покупателя.
func (h *Handler) UpdateAddress(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.PrincipalFromContext(r.Context())

	var req addressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	if !validation.ValidZipCode(req.ZipCode) {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"errors": map[string]string{"zipCode": "zip code is invalid"},
		})
		return
	}

	err := h.service.UpdateCustomerAddress(r.Context(), principal.ID, model.Address{
		Street:  req.Street,
		City:    req.City,
		State:   req.State,
		ZipCode: req.ZipCode,
	})
	if err != nil {
		h.logger.Error("update address error", zap.Error(err), zap.String("customerID", principal.ID))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
