package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	appMiddleware "github.com/sahyog-labs/disha/internal/api/middlewares"
	"github.com/sahyog-labs/disha/internal/config"
	"github.com/sahyog-labs/disha/internal/core"
	"github.com/sahyog-labs/disha/internal/models"
)

const tokenValidity = 7 * 24 * time.Hour

type AuthHandler struct {
	dbclient core.DbClient
	cfg      *config.Config
}

func NewAuthHandler(dbclient core.DbClient, cfg *config.Config) *AuthHandler {
	return &AuthHandler{dbclient: dbclient, cfg: cfg}
}

type registerRequest struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	Password       string `json:"password"`
	ClassCompleted string `json:"classCompleted"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authUser struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondErr(w, http.StatusBadRequest, "Invalid body")
		return
	}
	if req.Email == "" || req.Password == "" {
		respondErr(w, http.StatusBadRequest, "Email and password required")
		return
	}

	existing, err := h.dbclient.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		respondServerErr(w, "auth.register", err)
		return
	}
	if existing != nil {
		respondErr(w, http.StatusBadRequest, "Email already in use")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), h.cfg.BcryptCost)
	if err != nil {
		respondServerErr(w, "auth.register", err)
		return
	}

	classCompleted := req.ClassCompleted
	if classCompleted == "" {
		classCompleted = "12"
	}
	user := &models.User{
		ID:             uuid.NewString(),
		Name:           req.Name,
		Email:          req.Email,
		PasswordHash:   string(hash),
		Role:           "student",
		ClassCompleted: classCompleted,
		CreatedAt:      time.Now().UTC(),
		UpdatedAt:      time.Now().UTC(),
	}
	if err := h.dbclient.CreateUser(r.Context(), user); err != nil {
		respondServerErr(w, "auth.register", err)
		return
	}

	token, err := h.generateJWT(user.ID, user.Role)
	if err != nil {
		respondServerErr(w, "auth.register", err)
		return
	}
	respondOK(w, map[string]any{
		"user":  authUser{ID: user.ID, Name: user.Name, Email: user.Email},
		"token": token,
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondErr(w, http.StatusBadRequest, "Invalid body")
		return
	}
	if req.Email == "" || req.Password == "" {
		respondErr(w, http.StatusBadRequest, "Provide email & password")
		return
	}

	user, err := h.dbclient.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		respondServerErr(w, "auth.login", err)
		return
	}
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		respondErr(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, err := h.generateJWT(user.ID, user.Role)
	if err != nil {
		respondServerErr(w, "auth.login", err)
		return
	}
	respondOK(w, map[string]any{
		"user":  authUser{ID: user.ID, Name: user.Name, Email: user.Email},
		"token": token,
	})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := appMiddleware.UserID(r.Context())
	if !ok {
		respondErr(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	user, err := h.dbclient.GetUserByID(r.Context(), userID)
	if err != nil {
		respondServerErr(w, "auth.me", err)
		return
	}
	if user == nil {
		respondErr(w, http.StatusNotFound, "User not found")
		return
	}
	respondOK(w, user)
}

// generateJWT creates a signed bearer token carrying the user id and role.
func (h *AuthHandler) generateJWT(userID, role string) (string, error) {
	claims := jwt.MapClaims{
		"id":   userID,
		"role": role,
		"exp":  time.Now().Add(tokenValidity).Unix(),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString([]byte(h.cfg.JWTSecret))
}
