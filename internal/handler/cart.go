package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/mmeshcher/bakeshop-system/internal/model"
	"github.com/mmeshcher/bakeshop-system/internal/repository"
)

// noticeShownCookie отмечает, что уведомление об удалённых позициях уже показано.
const noticeShownCookie = "cart_notice_shown"

type addToCartRequest struct {
	ProductID string `json:"productId"`
	Quantity  int32  `json:"quantity"`
}

type cartLineResponse struct {
	ID        string `json:"id"`
	ProductID string `json:"productId"`
	Quantity  int32  `json:"quantity"`
}

type cartResponse struct {
	ID    string             `json:"id"`
	Lines []cartLineResponse `json:"lines"`
}

func toCartResponse(cart *model.Cart) cartResponse {
	resp := cartResponse{ID: cart.ID, Lines: make([]cartLineResponse, 0, len(cart.Lines))}
	for _, l := range cart.Lines {
		resp.Lines = append(resp.Lines, cartLineResponse{ID: l.ID, ProductID: l.ProductID, Quantity: l.Quantity})
	}
	return resp
}

// AddToCart добавляет товар в корзину текущего покупателя или посетителя.
func (h *Handler) AddToCart(w http.ResponseWriter, r *http.Request) {
	owner, err := cartOwner(r)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
		return
	}

	var req addToCartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ProductID == "" {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	cart, err := h.service.AddToCart(r.Context(), owner, req.ProductID, req.Quantity)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrProductNotFound):
			http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
		case errors.Is(err, repository.ErrInvalidQuantity):
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		case errors.Is(err, repository.ErrCartConflict):
			http.Error(w, http.StatusText(http.StatusConflict), http.StatusConflict)
		default:
			h.logger.Error("add to cart error", zap.Error(err), zap.String("productID", req.ProductID))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "cart": toCartResponse(cart)})
}

// RemoveCartLine удаляет позицию корзины по идентификатору.
func (h *Handler) RemoveCartLine(w http.ResponseWriter, r *http.Request) {
	owner, err := cartOwner(r)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
		return
	}

	lineID := chi.URLParam(r, "lineID")

	if err := h.service.RemoveCartLine(r.Context(), owner, lineID); err != nil {
		switch {
		case errors.Is(err, repository.ErrLineNotFound), errors.Is(err, repository.ErrCartNotFound):
			http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
		default:
			h.logger.Error("remove cart line error", zap.Error(err), zap.String("lineID", lineID))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

type cartViewLineResponse struct {
	ID        string  `json:"id"`
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int32   `json:"quantity"`
}

type cartViewResponse struct {
	Items        []cartViewLineResponse `json:"items"`
	ItemsRemoved bool                   `json:"itemsRemoved"`
}

// GetCart возвращает корзину, разрешённую против каталога. Позиции с
// удалёнными товарами вычищаются, а уведомление об этом показывается
// один раз за сессию.
func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	owner, err := cartOwner(r)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
		return
	}

	view, err := h.service.GetCartView(r.Context(), owner)
	if err != nil {
		h.logger.Error("get cart error", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	resp := cartViewResponse{Items: make([]cartViewLineResponse, 0, len(view.Lines))}
	for _, l := range view.Lines {
		resp.Items = append(resp.Items, cartViewLineResponse{
			ID:        l.LineID,
			ProductID: l.ProductID,
			Name:      l.Name,
			Price:     centsToPrice(l.PriceCents),
			Quantity:  l.Quantity,
		})
	}

	if view.ItemsRemoved {
		if _, err := r.Cookie(noticeShownCookie); err != nil {
			resp.ItemsRemoved = true
			http.SetCookie(w, &http.Cookie{
				Name:     noticeShownCookie,
				Value:    "1",
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}
	}

	writeJSON(w, http.StatusOK, resp)
}
