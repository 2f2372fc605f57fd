package web

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"heartlink/internal/domain/model"
)

func (s *Server) handleDiscover(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 || limit > 50 {
		limit = 20
	}
	users, err := s.matchUC.Discover(r.Context(), userIDFrom(r.Context()), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]userView, 0, len(users))
	for _, u := range users {
		out = append(out, viewUser(u))
	}
	writeJSON(w, http.StatusOK, out)
}

type swipeRequest struct {
	TargetID  string `json:"targetId"`
	Direction string `json:"direction"` // like | pass
}

func (s *Server) handleSwipe(w http.ResponseWriter, r *http.Request) {
	var req swipeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	res, err := s.matchUC.Swipe(r.Context(), userIDFrom(r.Context()), req.TargetID, model.SwipeDirection(req.Direction))
	if err != nil {
		writeError(w, err)
		return
	}
	resp := map[string]any{"matched": res.Matched}
	if res.Match != nil {
		resp["matchId"] = res.Match.ID
	}
	writeJSON(w, http.StatusOK, resp)
}

type matchView struct {
	ID        string    `json:"id"`
	PeerID    string    `json:"peer_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (s *Server) handleMatchList(w http.ResponseWriter, r *http.Request) {
	userID := userIDFrom(r.Context())
	matches, err := s.matchUC.ListMatches(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]matchView, 0, len(matches))
	for _, m := range matches {
		out = append(out, matchView{ID: m.ID, PeerID: m.Peer(userID), CreatedAt: m.CreatedAt})
	}
	writeJSON(w, http.StatusOK, out)
}

type messageView struct {
	ID        string     `json:"id"`
	SenderID  string     `json:"sender_id"`
	Body      string     `json:"body"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

func (s *Server) handleMessageList(w http.ResponseWriter, r *http.Request) {
	matchID := chi.URLParam(r, "id")
	before := r.URL.Query().Get("before")
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	msgs, err := s.chatUC.ListMessages(r.Context(), matchID, userIDFrom(r.Context()), before, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]messageView, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, messageView{ID: m.ID, SenderID: m.SenderID, Body: m.Body, ReadAt: m.ReadAt, CreatedAt: m.CreatedAt})
	}
	writeJSON(w, http.StatusOK, out)
}

type messageSendRequest struct {
	Body string `json:"body"`
}

func (s *Server) handleMessageSend(w http.ResponseWriter, r *http.Request) {
	var req messageSendRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	m, err := s.chatUC.SendMessage(r.Context(), chi.URLParam(r, "id"), userIDFrom(r.Context()), req.Body)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, messageView{ID: m.ID, SenderID: m.SenderID, Body: m.Body, CreatedAt: m.CreatedAt})
}

type notificationView struct {
	ID        string     `json:"id"`
	Kind      string     `json:"kind"`
	Body      string     `json:"body"`
	RefID     string     `json:"ref_id,omitempty"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

func (s *Server) handleNotificationList(w http.ResponseWriter, r *http.Request) {
	unreadOnly := r.URL.Query().Get("unread") == "true"
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	notes, err := s.notifUC.List(r.Context(), userIDFrom(r.Context()), unreadOnly, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]notificationView, 0, len(notes))
	for _, n := range notes {
		out = append(out, notificationView{
			ID: n.ID, Kind: string(n.Kind), Body: n.Body, RefID: n.RefID, ReadAt: n.ReadAt, CreatedAt: n.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleNotificationRead(w http.ResponseWriter, r *http.Request) {
	err := s.notifUC.MarkRead(r.Context(), chi.URLParam(r, "id"), userIDFrom(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
