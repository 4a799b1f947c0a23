package v1

import (
	"net/http"

	"rokomferi-storefront/internal/delivery/http/middleware"
	"rokomferi-storefront/internal/domain"
	"rokomferi-storefront/internal/usecase"
	"rokomferi-storefront/pkg/utils"
)

type WishlistHandler struct {
	usecase *usecase.WishlistUsecase
}

func NewWishlistHandler(usecase *usecase.WishlistUsecase) *WishlistHandler {
	return &WishlistHandler{usecase: usecase}
}

func (h *WishlistHandler) GetMyWishlist(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	entries, err := h.usecase.GetMyWishlist(r.Context(), user.ID)
	if err != nil {
		writeUsecaseError(w, r, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, domain.ListResponse[domain.WishlistEntry]{Data: entries})
}

// CheckWishlist reports whether one product is saved, without sending the
// whole list.
func (h *WishlistHandler) CheckWishlist(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	productID := domain.ProductID(r.PathValue("productId"))

	in, err := h.usecase.IsInWishlist(r.Context(), user.ID, productID)
	if err != nil {
		writeUsecaseError(w, r, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, domain.WishlistStatus{ProductID: productID, InWishlist: in})
}

func (h *WishlistHandler) AddToWishlist(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req domain.WishlistRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := h.usecase.AddToWishlist(r.Context(), user.ID, req.ProductID); err != nil {
		writeUsecaseError(w, r, err)
		return
	}

	utils.WriteMessage(w, http.StatusOK, "Added to wishlist")
}

func (h *WishlistHandler) RemoveFromWishlist(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	productID := domain.ProductID(r.PathValue("productId"))

	if err := h.usecase.RemoveFromWishlist(r.Context(), user.ID, productID); err != nil {
		writeUsecaseError(w, r, err)
		return
	}

	utils.WriteMessage(w, http.StatusOK, "Removed from wishlist")
}
