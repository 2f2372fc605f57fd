package web

import (
	"net/http"

	"heartlink/internal/domain"
	"heartlink/internal/usecase"
)

// RequireChatAccess gates chat routes behind a paid entitlement. The check
// reads the user row on every request so an expired window locks the user out
// immediately, even before the expiry worker reconciles the flag column.
func RequireChatAccess(paymentUC usecase.PaymentUseCase) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := userIDFrom(r.Context())
			if userID == "" {
				writeError(w, domain.ErrUnauthorized)
				return
			}
			st, err := paymentUC.ChatAccess(r.Context(), userID)
			if err != nil {
				writeError(w, err)
				return
			}
			if !st.HasAccess {
				writeError(w, domain.ErrPaymentRequired)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
