package fake

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/nikolayk812/storefront/internal/commerce"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLen = 6

func (s *Server) signUp(w http.ResponseWriter, r *http.Request) {
	var req commerce.SignUpDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	var msgs []string
	if req.FirstName == "" {
		msgs = append(msgs, "firstName should not be empty")
	}
	if req.LastName == "" {
		msgs = append(msgs, "lastName should not be empty")
	}
	if !strings.Contains(req.Email, "@") {
		msgs = append(msgs, "email must be an email")
	}
	if len(req.Password) < minPasswordLen {
		msgs = append(msgs, "password must be longer than or equal to 6 characters")
	}
	if len(msgs) > 0 {
		writeError(w, http.StatusBadRequest, msgs...)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.MinCost)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not hash password")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	email := strings.ToLower(req.Email)
	if _, exists := s.accounts[email]; exists {
		writeError(w, http.StatusConflict, "email already registered")
		return
	}

	acc := &account{
		customer: commerce.CustomerDTO{
			ID:        uuid.NewString(),
			Email:     req.Email,
			FirstName: req.FirstName,
			LastName:  req.LastName,
			Phone:     req.Phone,
		},
		hash: hash,
	}
	s.accounts[email] = acc

	s.startSession(w, acc, http.StatusCreated)
}

func (s *Server) signIn(w http.ResponseWriter, r *http.Request) {
	var req commerce.SignInDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.accounts[strings.ToLower(req.Email)]
	if !ok || bcrypt.CompareHashAndPassword(acc.hash, []byte(req.Password)) != nil {
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	s.startSession(w, acc, http.StatusOK)
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if token := requestToken(r); token != "" {
		delete(s.sessions, token)
	}

	http.SetCookie(w, &http.Cookie{Name: SessionCookie, Value: "", Path: "/", MaxAge: -1, HttpOnly: true})
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) current(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.sessionAccount(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	writeJSON(w, http.StatusOK, acc.customer)
}

func (s *Server) updateProfile(w http.ResponseWriter, r *http.Request) {
	var req commerce.ProfileUpdateDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.sessionAccount(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	if acc.customer.ID != mux.Vars(r)["id"] {
		writeError(w, http.StatusForbidden, "cannot update another customer")
		return
	}

	if req.Email != "" && !strings.EqualFold(req.Email, acc.customer.Email) {
		email := strings.ToLower(req.Email)
		if _, taken := s.accounts[email]; taken {
			writeError(w, http.StatusConflict, "email already registered")
			return
		}
		delete(s.accounts, strings.ToLower(acc.customer.Email))
		acc.customer.Email = req.Email
		s.accounts[email] = acc
	}
	if req.FirstName != "" {
		acc.customer.FirstName = req.FirstName
	}
	if req.LastName != "" {
		acc.customer.LastName = req.LastName
	}
	if req.Phone != "" {
		acc.customer.Phone = req.Phone
	}

	writeJSON(w, http.StatusOK, acc.customer)
}

// startSession issues a token both in the body and as a cookie. Caller holds s.mu.
func (s *Server) startSession(w http.ResponseWriter, acc *account, status int) {
	token := uuid.NewString()
	s.sessions[token] = acc.customer.ID

	http.SetCookie(w, &http.Cookie{Name: SessionCookie, Value: token, Path: "/", HttpOnly: true})
	writeJSON(w, status, commerce.AuthResponseDTO{AccessToken: token, User: acc.customer})
}

// sessionCustomer resolves the caller's customer ID. Caller holds s.mu.
func (s *Server) sessionCustomer(r *http.Request) (string, bool) {
	token := requestToken(r)
	if token == "" {
		return "", false
	}

	id, ok := s.sessions[token]
	return id, ok
}

// sessionAccount is sessionCustomer plus the account lookup. Caller holds s.mu.
func (s *Server) sessionAccount(r *http.Request) (*account, bool) {
	id, ok := s.sessionCustomer(r)
	if !ok {
		return nil, false
	}

	for _, acc := range s.accounts {
		if acc.customer.ID == id {
			return acc, true
		}
	}

	return nil, false
}

// requestToken prefers the bearer token and falls back to the session cookie.
func requestToken(r *http.Request) string {
	if token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok && token != "" {
		return token
	}

	if cookie, err := r.Cookie(SessionCookie); err == nil {
		return cookie.Value
	}

	return ""
}
