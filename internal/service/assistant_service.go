package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/parnurzeal/gorequest"
	"github.com/prepworks/prepworks-backend/internal/config"
	"github.com/prepworks/prepworks-backend/internal/model"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Assistant errors.
var (
	ErrAssistantBusy        = errors.New("a request is already in flight, wait for it to finish")
	ErrAssistantUnavailable = errors.New("assistant is unavailable")
)

// inflightTTL bounds how long a stuck request can block the next one.
const inflightTTL = 30 * time.Second

// AssistantService proxies study questions to the generative-language API.
// One request per student (chat) or per attempt+question (explanations) may
// be in flight at a time; the guard lives in Redis so it holds across
// server instances.
type AssistantService struct {
	cfg *config.Config
	rdb *redis.Client
	log zerolog.Logger
}

// NewAssistantService creates a new AssistantService.
func NewAssistantService(cfg *config.Config, rdb *redis.Client, log zerolog.Logger) *AssistantService {
	return &AssistantService{
		cfg: cfg,
		rdb: rdb,
		log: log.With().Str("component", "assistant_service").Logger(),
	}
}

// ChatRequest is the payload for a free-form study question.
type ChatRequest struct {
	Message string `json:"message" binding:"required,min=2,max=2000"`
}

// Chat answers a free-form study question.
func (s *AssistantService) Chat(ctx context.Context, studentID int, req ChatRequest) (string, error) {
	key := config.CacheKey.ChatInflightKey(studentID)
	if err := s.acquire(ctx, key); err != nil {
		return "", err
	}
	defer s.release(key)

	prompt := "You are a study assistant for Nigerian and international exam preparation " +
		"(JAMB, WAEC, IGCSE). Answer the student's question concisely and accurately.\n\n" +
		"Student: " + req.Message
	return s.generate(prompt)
}

// ExplainSolution produces a worked explanation for one question of a live
// attempt. Available in review, so the correct answer is included in the
// prompt.
func (s *AssistantService) ExplainSolution(ctx context.Context, attemptID uuid.UUID, q model.Question, studentAnswer string) (string, error) {
	key := config.CacheKey.AssistantInflightKey(attemptID.String(), q.ID)
	if err := s.acquire(ctx, key); err != nil {
		return "", err
	}
	defer s.release(key)

	var b strings.Builder
	b.WriteString("Explain the solution to this ")
	b.WriteString(q.Subject)
	b.WriteString(" exam question step by step.\n\nQuestion: ")
	b.WriteString(q.Prompt)
	for _, opt := range q.Options {
		fmt.Fprintf(&b, "\n%s) %s", opt.Letter, opt.Text)
	}
	if q.CorrectLetter != "" {
		b.WriteString("\n\nCorrect answer: ")
		b.WriteString(q.CorrectLetter)
	}
	if studentAnswer != "" {
		b.WriteString("\nThe student answered: ")
		b.WriteString(studentAnswer)
		b.WriteString("\nIf they were wrong, point out the likely misconception.")
	}
	return s.generate(b.String())
}

func (s *AssistantService) acquire(ctx context.Context, key string) error {
	ok, err := s.rdb.SetNX(ctx, key, "1", inflightTTL).Result()
	if err != nil {
		return fmt.Errorf("acquire inflight guard: %w", err)
	}
	if !ok {
		return ErrAssistantBusy
	}
	return nil
}

func (s *AssistantService) release(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.rdb.Del(ctx, key)
}

// Wire shapes of the generative-language generateContent API.
type generatePart struct {
	Text string `json:"text"`
}

type generateContent struct {
	Parts []generatePart `json:"parts"`
}

type generateRequest struct {
	Contents []generateContent `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content generateContent `json:"content"`
	} `json:"candidates"`
}

func (s *AssistantService) generate(prompt string) (string, error) {
	if s.cfg.AssistantKey == "" {
		return "", ErrAssistantUnavailable
	}

	payload := generateRequest{
		Contents: []generateContent{{Parts: []generatePart{{Text: prompt}}}},
	}

	resp, body, errs := gorequest.New().
		Post(s.cfg.AssistantURL).
		Timeout(s.cfg.AssistantTimeout).
		Set("Content-Type", "application/json").
		Query("key=" + s.cfg.AssistantKey).
		Send(payload).
		End()
	if len(errs) > 0 {
		s.log.Error().Errs("errors", errs).Msg("Assistant request failed")
		return "", ErrAssistantUnavailable
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		s.log.Error().Int("status", resp.StatusCode).Str("body", body).Msg("Assistant returned non-2xx")
		return "", ErrAssistantUnavailable
	}

	var parsed generateResponse
	if err := json.Unmarshal([]byte(body), &parsed); err != nil {
		return "", fmt.Errorf("decode assistant response: %w", err)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", ErrAssistantUnavailable
	}
	return parsed.Candidates[0].Content.Parts[0].Text, nil
}
