package web

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"heartlink/internal/infra/payment"
	"heartlink/internal/usecase"
)

const maxWebhookBody = 1 << 20

// webhookEvent mirrors the gateway's delivery envelope. Only the fields the
// reconciliation needs are decoded.
type webhookEvent struct {
	Event string `json:"event"`
	Data  struct {
		ID               json.Number `json:"id"`
		Reference        string      `json:"reference"`
		Amount           int64       `json:"amount"`
		Channel          string      `json:"channel"`
		PaidAt           string      `json:"paid_at"`
		SubscriptionCode string      `json:"subscription_code"`
		NextPaymentDate  string      `json:"next_payment_date"`
		Subscription     struct {
			SubscriptionCode string `json:"subscription_code"`
			NextPaymentDate  string `json:"next_payment_date"`
		} `json:"subscription"`
	} `json:"data"`
}

// handleWebhook authenticates and applies a gateway delivery.
//
// Response contract: 401 only for a bad signature, 500 for a local processing
// or configuration failure (both make the gateway redeliver), 200 for
// everything else including unknown references and replays.
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "failed to read body"})
		return
	}

	if s.verifier == nil {
		// Refusing beats processing forged events; the gateway keeps retrying
		// until the secret is configured.
		s.log.Error().Msg("webhook secret not configured, refusing delivery")
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "webhook verification unavailable"})
		return
	}
	signature := r.Header.Get(payment.SignatureHeader)
	if !s.dev && !s.verifier.VerifySignature(body, signature) {
		s.log.Warn().Msg("webhook signature mismatch")
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: "invalid signature"})
		return
	}

	var ev webhookEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		// Authenticated but malformed; acknowledge so the gateway stops
		// redelivering a payload we will never parse.
		s.log.Warn().Err(err).Msg("webhook payload unparseable")
		writeJSON(w, http.StatusOK, map[string]string{"status": "ignored"})
		return
	}

	outcome, err := s.dispatchWebhook(r, &ev)
	if err != nil {
		s.log.Error().Err(err).Str("event", ev.Event).Msg("webhook processing failed")
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "processing failed"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": string(outcome)})
}

func (s *Server) dispatchWebhook(r *http.Request, ev *webhookEvent) (usecase.WebhookOutcome, error) {
	switch ev.Event {
	case "charge.success":
		paidAt := parseGatewayTime(ev.Data.PaidAt)
		return s.webhookUC.HandleChargeSuccess(r.Context(), ev.Data.Reference, ev.Data.ID.String(), ev.Data.Channel, paidAt)
	default:
		code := ev.Data.SubscriptionCode
		if code == "" {
			code = ev.Data.Subscription.SubscriptionCode
		}
		next := ev.Data.NextPaymentDate
		if next == "" {
			next = ev.Data.Subscription.NextPaymentDate
		}
		var periodEnd *time.Time
		if t := parseGatewayTime(next); !t.IsZero() {
			periodEnd = &t
		}
		return s.webhookUC.HandleSubscriptionEvent(r.Context(), ev.Event, code, periodEnd)
	}
}

// parseGatewayTime accepts the timestamp shapes the gateway emits; a zero
// time means the caller should substitute now.
func parseGatewayTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05.000Z", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	// Some events carry a unix timestamp.
	if n, err := strconv.ParseInt(s, 10, 64); err == nil && n > 0 {
		return time.Unix(n, 0)
	}
	return time.Time{}
}
