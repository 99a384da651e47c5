// services/chat.go
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"vampyr-backend/models"

	"gorm.io/gorm"
)

var ErrChatUnavailable = errors.New("chat service unavailable")

// How much conversation history rides along with each question.
const chatHistoryWindow = 10

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// RAGClient calls the retrieval-augmented chat service (the Python sidecar).
type RAGClient struct {
	BaseURL string
	Client  *http.Client
}

func NewRAGClient(baseURL string) *RAGClient {
	return &RAGClient{
		BaseURL: baseURL,
		Client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Ask posts a message plus conversation history to the RAG service and
// returns the assistant's answer.
func (c *RAGClient) Ask(ctx context.Context, message string, history []ChatMessage) (string, error) {
	payload, err := json.Marshal(map[string]interface{}{
		"message": message,
		"history": history,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.BaseURL+"/chat", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.Client.Do(req)
	if err != nil {
		// Connection refused, DNS failure, timeout — the caller gets a retryable 503.
		return "", ErrChatUnavailable
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("chat service returned status %d: %s", resp.StatusCode, string(body))
	}

	var out struct {
		Answer string `json:"answer"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to decode chat response: %w", err)
	}
	return out.Answer, nil
}

// Health pings the RAG service root. Used by the availability prober.
func (c *RAGClient) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, "GET", c.BaseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.Client.Do(req)
	if err != nil {
		return ErrChatUnavailable
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("chat service health returned status %d", resp.StatusCode)
	}
	return nil
}

type ChatService struct {
	DB  *gorm.DB
	RAG *RAGClient
}

func NewChatService(db *gorm.DB, rag *RAGClient) *ChatService {
	return &ChatService{DB: db, RAG: rag}
}

// SendMessage proxies a user message to the RAG service and persists both
// sides of the exchange on the conversation.
func (s *ChatService) SendMessage(ctx context.Context, userID, conversationID, message string) (*models.Message, *models.Message, error) {
	var conv models.Conversation
	err := s.DB.Where("id = ? AND user_id = ?", conversationID, userID).
		First(&conv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrConversationNotFound
		}
		return nil, nil, err
	}

	// Last messages, oldest first, as context for the model.
	var recent []models.Message
	if err := s.DB.Where("conversation_id = ?", conversationID).
		Order("created_at DESC, id DESC").
		Limit(chatHistoryWindow).
		Find(&recent).Error; err != nil {
		return nil, nil, err
	}
	history := make([]ChatMessage, len(recent))
	for i, m := range recent {
		history[len(recent)-1-i] = ChatMessage{Role: m.Role, Content: m.Content}
	}

	answer, err := s.RAG.Ask(ctx, message, history)
	if err != nil {
		return nil, nil, err
	}

	userMsg := models.Message{ConversationID: conversationID, Role: models.RoleUser, Content: message}
	assistantMsg := models.Message{ConversationID: conversationID, Role: models.RoleAssistant, Content: answer}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&userMsg).Error; err != nil {
			return err
		}
		if err := tx.Create(&assistantMsg).Error; err != nil {
			return err
		}
		return tx.Model(&conv).Update("updated_at", time.Now()).Error
	})
	if err != nil {
		return nil, nil, err
	}
	return &userMsg, &assistantMsg, nil
}
