package v1

import (
	"net/http"

	"rokomferi-storefront/internal/delivery/http/middleware"
	"rokomferi-storefront/internal/domain"
	"rokomferi-storefront/internal/usecase"
	"rokomferi-storefront/pkg/utils"
)

type CartHandler struct {
	cartUC *usecase.CartUsecase
}

func NewCartHandler(cartUC *usecase.CartUsecase) *CartHandler {
	return &CartHandler{cartUC: cartUC}
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	lines, err := h.cartUC.GetMyCart(r.Context(), user.ID)
	writeLines(w, r, lines, err)
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	var req domain.CartItemRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request")
		return
	}

	lines, err := h.cartUC.AddToCart(r.Context(), user.ID, req)
	writeLines(w, r, lines, err)
}

func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	var req domain.CartItemRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request")
		return
	}

	lines, err := h.cartUC.UpdateCartItemQuantity(r.Context(), user.ID, req)
	writeLines(w, r, lines, err)
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	var key domain.LineKey
	if err := utils.DecodeJSON(r, &key); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request")
		return
	}

	lines, err := h.cartUC.RemoveFromCart(r.Context(), user.ID, key)
	writeLines(w, r, lines, err)
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	lines, err := h.cartUC.ClearCart(r.Context(), user.ID)
	writeLines(w, r, lines, err)
}

func writeLines(w http.ResponseWriter, r *http.Request, lines []domain.CartLine, err error) {
	if err != nil {
		writeUsecaseError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, domain.ListResponse[domain.CartLine]{Data: lines})
}
