package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	custommiddleware "github.com/mmeshcher/bakeshop-system/internal/middleware"
	"github.com/mmeshcher/bakeshop-system/internal/model"
)

// SetupRouter настраивает HTTP-маршруты и middleware пекарни.
func (h *Handler) SetupRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Use(custommiddleware.GzipMiddleware)
	r.Use(custommiddleware.Logger(h.logger))
	r.Use(custommiddleware.Instrument)

	r.Handle("/metrics", custommiddleware.MetricsHandler())

	r.Group(func(r chi.Router) {
		r.Use(h.sessions.Resolve)
		r.Use(h.visitors.Ensure)

		r.Group(func(r chi.Router) {
			r.Use(custommiddleware.RateLimit(10, 5))
			r.Post("/login", h.Login)
			r.Post("/register", h.Register)
		})
		r.Get("/logout", h.Logout)

		r.Get("/products", h.ListProducts)
		r.Get("/products/{slug}", h.GetProduct)

		r.Post("/cart/add", h.AddToCart)
		r.Delete("/cart/item/{lineID}", h.RemoveCartLine)
		r.Get("/cart", h.GetCart)

		r.Post("/feedback", h.SubmitFeedback)

		r.Group(func(r chi.Router) {
			r.Use(custommiddleware.RequireRole(model.KindCustomer))

			r.Post("/orders/submit", h.SubmitOrder)
			r.Get("/orders/mine", h.GetOrders)
			r.Post("/issues", h.SubmitIssue)
			r.Put("/profile/address", h.UpdateAddress)
			r.Get("/user/customer-dashboard", h.CustomerDashboard)
		})

		r.Group(func(r chi.Router) {
			r.Use(custommiddleware.RequireRole(model.KindOwner))

			r.Post("/products", h.AddProduct)
			r.Put("/products/{slug}", h.UpdateProduct)
			r.Delete("/products/{slug}", h.DeleteProduct)
			r.Get("/user/owner-dashboard", h.OwnerDashboard)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
	})

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	})

	return r
}
