package web

import (
	"net/http"
	"time"

	"heartlink/internal/domain/model"
	"heartlink/internal/infra/redis"
	"heartlink/internal/usecase"
)

const (
	rateWindow       = time.Minute
	loginRateLimit   = 10
	payInitRateLimit = 5
)

type registerRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	Name      string `json:"name"`
	Birthdate string `json:"birthdate"` // YYYY-MM-DD
	Gender    string `json:"gender"`
	Bio       string `json:"bio"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userView struct {
	ID     string `json:"id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	Age    int    `json:"age"`
	Gender string `json:"gender"`
	Bio    string `json:"bio"`
}

func viewUser(u *model.User) userView {
	return userView{
		ID:     u.ID,
		Email:  u.Email,
		Name:   u.Name,
		Age:    u.Age(time.Now()),
		Gender: string(u.Gender),
		Bio:    u.Bio,
	}
}

type authResponse struct {
	User  userView  `json:"user"`
	Token TokenPair `json:"token"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	birthdate, err := time.Parse("2006-01-02", req.Birthdate)
	if err != nil {
		writeBadRequest(w, "birthdate must be YYYY-MM-DD")
		return
	}

	u, err := s.authUC.Register(r.Context(), usecase.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		Name:      req.Name,
		Birthdate: birthdate,
		Gender:    model.Gender(req.Gender),
		Bio:       req.Bio,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	pair, err := s.auth.Mint(u.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, authResponse{User: viewUser(u), Token: pair})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	if !s.allow(r, redis.LoginKey(req.Email), loginRateLimit) {
		writeJSON(w, http.StatusTooManyRequests, errorBody{Error: "too many login attempts"})
		return
	}

	u, err := s.authUC.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	pair, err := s.auth.Mint(u.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, authResponse{User: viewUser(u), Token: pair})
}
