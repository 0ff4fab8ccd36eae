package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	appMiddleware "github.com/sahyog-labs/disha/internal/api/middlewares"
	"github.com/sahyog-labs/disha/internal/models"
	"github.com/sahyog-labs/disha/internal/services"
)

type AssistantHandler struct {
	assistant *services.AssistantService
}

func NewAssistantHandler(assistant *services.AssistantService) *AssistantHandler {
	return &AssistantHandler{assistant: assistant}
}

type chatRequest struct {
	Message string `json:"message"`
}

func (h *AssistantHandler) Chat(w http.ResponseWriter, r *http.Request) {
	userID, ok := appMiddleware.UserID(r.Context())
	if !ok {
		respondErr(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondErr(w, http.StatusBadRequest, "Invalid body")
		return
	}
	message := strings.TrimSpace(req.Message)
	if message == "" {
		respondErr(w, http.StatusBadRequest, "message required")
		return
	}
	if len(message) > services.MessageCharLimit {
		respondErr(w, http.StatusBadRequest, "message too long")
		return
	}

	reply, err := h.assistant.SendMessage(r.Context(), userID, message)
	if err != nil {
		if errors.Is(err, services.ErrEmptyMessage) {
			respondErr(w, http.StatusBadRequest, "message required")
			return
		}
		respondServerErr(w, "assistant.chat", err)
		return
	}
	respondOK(w, map[string]string{"reply": reply})
}

func (h *AssistantHandler) History(w http.ResponseWriter, r *http.Request) {
	userID, ok := appMiddleware.UserID(r.Context())
	if !ok {
		respondErr(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	msgs, err := h.assistant.History(r.Context(), userID)
	if err != nil {
		respondServerErr(w, "assistant.history", err)
		return
	}
	if msgs == nil {
		msgs = []models.ChatMessage{}
	}
	respondOK(w, msgs)
}
