package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/mmeshcher/bakeshop-system/internal/auth"
	"github.com/mmeshcher/bakeshop-system/internal/model"
	"github.com/mmeshcher/bakeshop-system/internal/repository"
	"github.com/mmeshcher/bakeshop-system/internal/service"
	"github.com/mmeshcher/bakeshop-system/internal/validation"
)

type orderLineResponse struct {
	ProductID string  `json:"productId"`
	Quantity  int32   `json:"quantity"`
	Price     float64 `json:"price"`
}

type orderResponse struct {
	ID         string              `json:"id"`
	Items      []orderLineResponse `json:"items"`
	TotalPrice float64             `json:"totalPrice"`
	Status     string              `json:"status"`
	CreatedAt  string              `json:"createdAt"`
}

func toOrderResponse(o *model.Order) orderResponse {
	resp := orderResponse{
		ID:         o.ID,
		Items:      make([]orderLineResponse, 0, len(o.Lines)),
		TotalPrice: centsToPrice(o.TotalCents),
		Status:     string(o.Status),
		CreatedAt:  o.CreatedAt.Format(time.RFC3339),
	}
	for _, l := range o.Lines {
		resp.Items = append(resp.Items, orderLineResponse{
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			Price:     centsToPrice(l.UnitPriceCents),
		})
	}
	return resp
}

// SubmitOrder оформляет заказ из корзины текущего покупателя.
func (h *Handler) SubmitOrder(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.PrincipalFromContext(r.Context())

	order, err := h.service.SubmitOrder(r.Context(), principal.ID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCartEmpty):
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": "your cart is empty"})
		case errors.Is(err, repository.ErrCartConflict):
			http.Error(w, http.StatusText(http.StatusConflict), http.StatusConflict)
		default:
			h.logger.Error("submit order error", zap.Error(err), zap.String("customerID", principal.ID))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"order": toOrderResponse(order)})
}

// GetOrders возвращает заказы текущего покупателя, новые первыми.
func (h *Handler) GetOrders(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.PrincipalFromContext(r.Context())

	orders, err := h.service.OrdersByCustomer(r.Context(), principal.ID)
	if err != nil {
		h.logger.Error("get orders error", zap.Error(err), zap.String("customerID", principal.ID))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	resp := make([]orderResponse, 0, len(orders))
	for i := range orders {
		resp = append(resp, toOrderResponse(&orders[i]))
	}

	writeJSON(w, http.StatusOK, map[string]any{"orders": resp})
}

type issueRequest struct {
	OrderID     string `json:"orderId"`
	Description string `json:"description"`
}

// SubmitIssue создаёт обращение по заказу текущего покупателя.
func (h *Handler) SubmitIssue(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.PrincipalFromContext(r.Context())

	var req issueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.OrderID == "" || req.Description == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "order id and description are required"})
		return
	}

	issue, err := h.service.SubmitIssue(r.Context(), principal.ID, req.OrderID, req.Description)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrOrderNotFound):
			http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
		case errors.Is(err, service.ErrOrderOwnership):
			http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
		default:
			h.logger.Error("submit issue error", zap.Error(err), zap.String("orderID", req.OrderID))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"issue": map[string]string{
		"id":          issue.ID,
		"orderId":     issue.OrderID,
		"description": issue.Description,
		"status":      string(issue.Status),
	}})
}

type feedbackRequest struct {
	Content string `json:"content"`
}

// SubmitFeedback сохраняет отзыв; разрешён и анонимным посетителям.
func (h *Handler) SubmitFeedback(w http.ResponseWriter, r *http.Request) {
	var req feedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	if !validation.ValidFeedback(req.Content) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "feedback content must be at least 5 characters long"})
		return
	}

	var customerID *string
	if principal, ok := auth.PrincipalFromContext(r.Context()); ok && principal.Kind == model.KindCustomer {
		customerID = &principal.ID
	}

	fb, err := h.service.SubmitFeedback(r.Context(), customerID, req.Content)
	if err != nil {
		h.logger.Error("submit feedback error", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"feedback": map[string]string{
		"id":      fb.ID,
		"content": fb.Content,
	}})
}
