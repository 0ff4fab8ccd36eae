package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sahyog-labs/disha/internal/models"
	"github.com/sahyog-labs/disha/internal/services"
)

func TestAssistantChat(t *testing.T) {
	var logged []models.ChatMessage
	db := &fakeDB{
		OnAddChatMessage: func(_ context.Context, msg *models.ChatMessage) error {
			logged = append(logged, *msg)
			return nil
		},
	}
	llm := &fakeLLM{responses: []string{"Focus on JEE preparation."}}
	h := NewAssistantHandler(services.NewAssistantService(db, llm))

	req := authedRequest(httptest.NewRequest(http.MethodPost, "/api/assistant/chat", jsonBody(t, map[string]string{
		"message": "What should I study?",
	})), "u1")
	rec := doRequest(h.Chat, req)

	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.JSONEq(t, `{"reply":"Focus on JEE preparation."}`, string(env.Data))

	require.Len(t, logged, 2)
	assert.Equal(t, "user", logged[0].Role)
	assert.Equal(t, "assistant", logged[1].Role)
}

func TestAssistantChatValidation(t *testing.T) {
	h := NewAssistantHandler(services.NewAssistantService(&fakeDB{}, &fakeLLM{}))

	t.Run("empty message", func(t *testing.T) {
		req := authedRequest(httptest.NewRequest(http.MethodPost, "/api/assistant/chat", jsonBody(t, map[string]string{
			"message": "   ",
		})), "u1")
		rec := doRequest(h.Chat, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "message required", decodeEnvelope(t, rec).Msg)
	})

	t.Run("too long", func(t *testing.T) {
		req := authedRequest(httptest.NewRequest(http.MethodPost, "/api/assistant/chat", jsonBody(t, map[string]string{
			"message": strings.Repeat("x", services.MessageCharLimit+1),
		})), "u1")
		rec := doRequest(h.Chat, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "message too long", decodeEnvelope(t, rec).Msg)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/assistant/chat", jsonBody(t, map[string]string{
			"message": "hello",
		}))
		rec := doRequest(h.Chat, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestAssistantHistory(t *testing.T) {
	db := &fakeDB{
		OnListChatMessages: func(_ context.Context, userID string) ([]models.ChatMessage, error) {
			if userID != "u1" {
				return nil, nil
			}
			return []models.ChatMessage{
				{ID: "m1", UserID: "u1", Role: "user", Text: "hi", CreatedAt: time.Now()},
			}, nil
		},
	}
	h := NewAssistantHandler(services.NewAssistantService(db, &fakeLLM{}))

	req := authedRequest(httptest.NewRequest(http.MethodGet, "/api/assistant/history", nil), "u1")
	rec := doRequest(h.History, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(decodeEnvelope(t, rec).Data), `"hi"`)
}

func TestAssistantHistoryEmptyIsArray(t *testing.T) {
	h := NewAssistantHandler(services.NewAssistantService(&fakeDB{}, &fakeLLM{}))

	req := authedRequest(httptest.NewRequest(http.MethodGet, "/api/assistant/history", nil), "u1")
	rec := doRequest(h.History, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", string(decodeEnvelope(t, rec).Data))
}
