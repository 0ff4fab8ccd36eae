package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/sahyog-labs/disha/internal/core"
	"github.com/sahyog-labs/disha/internal/models"
)

const (
	// historyLimit bounds how many past turns go into the prompt.
	historyLimit = 12
	// historyCharLimit truncates each historical message body in the prompt.
	// The persisted record is never modified.
	historyCharLimit = 1000
	// MessageCharLimit caps a single incoming user message.
	MessageCharLimit = 5000

	assistantApology = "Sorry, I'm facing issues contacting the AI assistant right now. Please try again later."

	assistantSystemPrompt = `
You are a friendly, helpful Indian career & scholarship assistant for students.
Be concise and practical. Use available profile to personalize answers.
`
)

// ErrEmptyMessage rejects blank chat submissions.
var ErrEmptyMessage = errors.New("empty message")

// redactedProfile is the only profile data the assistant prompt ever sees.
type redactedProfile struct {
	Name            string          `json:"name"`
	ClassCompleted  string          `json:"classCompleted,omitempty"`
	Stream          string          `json:"stream,omitempty"`
	Subjects        []string        `json:"subjects"`
	Interests       []string        `json:"interests"`
	Skills          []string        `json:"skills"`
	FutureGoal      string          `json:"futureGoal"`
	Location        models.Location `json:"location"`
	ExamPreferences []string        `json:"examPreferences"`
}

type convoEntry struct {
	Role      string `json:"role"`
	Text      string `json:"text"`
	CreatedAt string `json:"createdAt"`
}

// AssistantService runs the chat flow: assemble bounded context, persist the
// user turn, call the model, persist the reply.
type AssistantService struct {
	db  core.DbClient
	llm core.LLMProvider
}

func NewAssistantService(db core.DbClient, llm core.LLMProvider) *AssistantService {
	return &AssistantService{db: db, llm: llm}
}

// SendMessage records the user's message, asks the model, records the reply
// and returns it. A model failure still leaves both turns in the log; the
// assistant turn then carries the apology text.
func (s *AssistantService) SendMessage(ctx context.Context, userID, message string) (string, error) {
	if userID == "" {
		return "", errors.New("missing userId")
	}
	message = truncate(message, MessageCharLimit)
	if message == "" {
		return "", ErrEmptyMessage
	}

	profile := s.loadProfile(ctx, userID)
	convo := s.loadConversation(ctx, userID)
	prompt := buildAssistantPrompt(profile, convo, message)

	userMsg := &models.ChatMessage{
		ID:        uuid.NewString(),
		UserID:    userID,
		Role:      "user",
		Text:      message,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.db.AddChatMessage(ctx, userMsg); err != nil {
		log.Printf("assistant: failed to save user message: %v", err)
	}

	reply, err := s.llm.Generate(ctx, assistantSystemPrompt, prompt, core.GenOptions{})
	if err != nil || reply == "" {
		if err != nil {
			log.Printf("assistant: LLM error: %v", err)
		}
		reply = assistantApology
	}

	assistantMsg := &models.ChatMessage{
		ID:        uuid.NewString(),
		UserID:    userID,
		Role:      "assistant",
		Text:      reply,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.db.AddChatMessage(ctx, assistantMsg); err != nil {
		log.Printf("assistant: failed to save assistant reply: %v", err)
	}

	return reply, nil
}

// History returns the full conversation in chronological order.
func (s *AssistantService) History(ctx context.Context, userID string) ([]models.ChatMessage, error) {
	return s.db.ListChatMessages(ctx, userID)
}

// loadProfile fetches user and onboarding in parallel. Both reads are
// best-effort; the assistant still answers with a bare profile.
func (s *AssistantService) loadProfile(ctx context.Context, userID string) redactedProfile {
	var (
		user *models.User
		ob   *models.Onboarding
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		u, err := s.db.GetUserByID(gctx, userID)
		if err != nil {
			log.Printf("assistant: user read error: %v", err)
			return nil
		}
		user = u
		return nil
	})
	g.Go(func() error {
		o, err := s.db.GetOnboardingByUser(gctx, userID)
		if err != nil {
			log.Printf("assistant: onboarding read error: %v", err)
			return nil
		}
		ob = o
		return nil
	})
	_ = g.Wait()

	profile := redactedProfile{Name: "Student"}
	if user != nil && user.Name != "" {
		profile.Name = user.Name
	}
	if ob != nil {
		profile.ClassCompleted = ob.ClassCompleted
		profile.Stream = ob.Stream
		profile.Subjects = ob.Subjects
		profile.Interests = ob.Interests
		profile.Skills = ob.Skills
		profile.FutureGoal = ob.FutureGoal
		profile.Location = ob.Location
		profile.ExamPreferences = ob.ExamPreferences
	}
	return profile
}

// loadConversation returns the most recent turns in chronological order,
// bodies truncated for the prompt.
func (s *AssistantService) loadConversation(ctx context.Context, userID string) []convoEntry {
	history, err := s.db.RecentChatMessages(ctx, userID, historyLimit)
	if err != nil {
		log.Printf("assistant: history read error: %v", err)
		return nil
	}
	// newest-first from storage; reverse for the prompt
	out := make([]convoEntry, 0, len(history))
	for i := len(history) - 1; i >= 0; i-- {
		m := history[i]
		out = append(out, convoEntry{
			Role:      m.Role,
			Text:      truncateWithEllipsis(m.Text, historyCharLimit),
			CreatedAt: m.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return out
}

func buildAssistantPrompt(profile redactedProfile, convo []convoEntry, question string) string {
	profileJSON, _ := json.MarshalIndent(profile, "", "  ")
	convoJSON, _ := json.MarshalIndent(convo, "", "  ")
	return fmt.Sprintf(`PROFILE:
%s

RECENT CONVERSATION:
%s

USER QUESTION:
%s

Answer succinctly, provide next concrete steps, and give 1-3 recommendations.`,
		profileJSON, convoJSON, question)
}

func truncate(s string, limit int) string {
	s = strings.TrimSpace(s)
	if len(s) > limit {
		return s[:limit]
	}
	return s
}

func truncateWithEllipsis(s string, limit int) string {
	if len(s) > limit {
		return s[:limit] + "..."
	}
	return s
}
