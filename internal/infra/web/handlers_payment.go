package web

import (
	"net/http"
	"strconv"
	"time"

	"heartlink/internal/domain/model"
	"heartlink/internal/infra/redis"
)

type paymentInitializeRequest struct {
	Amount   int64  `json:"amount"` // minor currency units
	PlanType string `json:"planType"`
}

type paymentInitializeResponse struct {
	Success    bool   `json:"success"`
	PaymentURL string `json:"payment_url"`
	Reference  string `json:"reference"`
	Amount     int64  `json:"amount"`
}

func (s *Server) handlePaymentInitialize(w http.ResponseWriter, r *http.Request) {
	userID := userIDFrom(r.Context())
	var req paymentInitializeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	if !s.allow(r, redis.PaymentInitKey(userID), payInitRateLimit) {
		writeJSON(w, http.StatusTooManyRequests, errorBody{Error: "too many payment attempts"})
		return
	}

	txn, payURL, err := s.paymentUC.InitializeChatAccess(r.Context(), userID, req.Amount, model.PlanType(req.PlanType))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, paymentInitializeResponse{
		Success:    true,
		PaymentURL: payURL,
		Reference:  txn.Reference,
		Amount:     txn.Amount,
	})
}

type paymentVerifyRequest struct {
	Reference string `json:"reference"`
}

func (s *Server) handlePaymentVerify(w http.ResponseWriter, r *http.Request) {
	var req paymentVerifyRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	paid, err := s.paymentUC.VerifyByReference(r.Context(), req.Reference)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "paid": paid})
}

type chatAccessResponse struct {
	HasAccess        bool       `json:"hasAccess"`
	PaymentDate      *time.Time `json:"paymentDate,omitempty"`
	AccessExpiryDate *time.Time `json:"accessExpiryDate,omitempty"`
}

func (s *Server) handleChatAccess(w http.ResponseWriter, r *http.Request) {
	st, err := s.paymentUC.ChatAccess(r.Context(), userIDFrom(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, chatAccessResponse{
		HasAccess:        st.HasAccess,
		PaymentDate:      st.PaymentDate,
		AccessExpiryDate: st.AccessExpiryDate,
	})
}

type orderCreateRequest struct {
	ID       string                 `json:"id"`
	Amount   int64                  `json:"amount"`
	Metadata map[string]interface{} `json:"metadata"`
}

type orderView struct {
	ID        string    `json:"id"`
	Amount    int64     `json:"amount"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

func (s *Server) handleOrderCreate(w http.ResponseWriter, r *http.Request) {
	var req orderCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	o, err := s.orderUC.Create(r.Context(), userIDFrom(r.Context()), req.Amount, req.ID, req.Metadata)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, orderView{ID: o.ID, Amount: o.Amount, Status: string(o.Status), CreatedAt: o.CreatedAt})
}

func (s *Server) handleOrderList(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	orders, err := s.orderUC.ListByUser(r.Context(), userIDFrom(r.Context()), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]orderView, 0, len(orders))
	for _, o := range orders {
		out = append(out, orderView{ID: o.ID, Amount: o.Amount, Status: string(o.Status), CreatedAt: o.CreatedAt})
	}
	writeJSON(w, http.StatusOK, out)
}
