package v1

import (
	"net/http"

	"rokomferi-storefront/internal/delivery/http/middleware"
	"rokomferi-storefront/internal/domain"
	"rokomferi-storefront/internal/usecase"
	"rokomferi-storefront/pkg/logger"
	"rokomferi-storefront/pkg/utils"
)

type AuthHandler struct {
	authUC *usecase.AuthUsecase
}

func NewAuthHandler(authUC *usecase.AuthUsecase) *AuthHandler {
	return &AuthHandler{authUC: authUC}
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp, err := h.authUC.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeUsecaseError(w, r, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, resp)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userCtx, ok := middleware.UserFromContext(r.Context())
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	user, err := h.authUC.GetUserByID(r.Context(), userCtx.ID)
	if err != nil {
		writeUsecaseError(w, r, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, domain.MeResponse{User: user})
}

// Logout revokes the presented token. It succeeds even without one, so
// clients can always clear their state.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if token := utils.BearerToken(r); token != "" {
		h.authUC.Logout(r.Context(), token)
	} else {
		logger.WithContext(r.Context()).Debug().Msg("Logout without token")
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "accessToken",
		MaxAge:   -1,
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
	})
	utils.WriteMessage(w, http.StatusOK, "Logged out")
}
