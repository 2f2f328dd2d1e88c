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

	"github.com/carlosvillalobossalas/mejengas-backend/internal/config"
	"github.com/carlosvillalobossalas/mejengas-backend/internal/models"
	"github.com/carlosvillalobossalas/mejengas-backend/pkg/logger"
	"gorm.io/gorm"
)

var pushHTTPClient = &http.Client{Timeout: 10 * time.Second}

// pushAdapter sends one notification to a batch of device tokens. Each
// adapter handles the payload format of its provider.
type pushAdapter interface {
	Send(cfg *config.PushConfig, tokens []string, task *PushTask) error
}

// getPushAdapter returns the adapter for the configured provider
func getPushAdapter(provider string) pushAdapter {
	switch provider {
	case "expo":
		return &expoAdapter{}
	case "fcm":
		return &fcmAdapter{}
	default:
		return &noopAdapter{}
	}
}

type PushService struct {
	db  *gorm.DB
	cfg *config.PushConfig
}

func NewPushService(db *gorm.DB, cfg *config.PushConfig) *PushService {
	return &PushService{db: db, cfg: cfg}
}

type RegisterDeviceRequest struct {
	Token    string `json:"token" binding:"required,max=255"`
	Platform string `json:"platform" binding:"omitempty,oneof=ios android"`
	Provider string `json:"provider" binding:"omitempty,oneof=expo fcm"`
}

// RegisterDevice stores or refreshes a device token. A token that already
// exists moves to the calling user; one physical device belongs to one
// account at a time.
func (s *PushService) RegisterDevice(userID uint, req *RegisterDeviceRequest) (*models.DeviceToken, error) {
	provider := req.Provider
	if provider == "" {
		provider = "expo"
	}

	now := time.Now()

	var token models.DeviceToken
	err := s.db.Where("token = ?", req.Token).First(&token).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		token = models.DeviceToken{
			UserID:     userID,
			Token:      req.Token,
			Platform:   req.Platform,
			Provider:   provider,
			LastSeenAt: now,
		}
		if err := s.db.Create(&token).Error; err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	default:
		updates := map[string]interface{}{
			"user_id":      userID,
			"provider":     provider,
			"last_seen_at": now,
		}
		if req.Platform != "" {
			updates["platform"] = req.Platform
		}
		if err := s.db.Model(&token).Updates(updates).Error; err != nil {
			return nil, err
		}
	}

	return &token, nil
}

// UnregisterDevice drops a token. Called on sign-out.
func (s *PushService) UnregisterDevice(userID uint, token string) error {
	return s.db.Where("user_id = ? AND token = ?", userID, token).
		Delete(&models.DeviceToken{}).Error
}

// NotifyUser queues one push notification for every device of a user.
func (s *PushService) NotifyUser(userID uint, title, body string, data map[string]string) {
	queue := GetTaskQueue()
	if queue == nil {
		return
	}
	if err := queue.Enqueue(&PushTask{UserID: userID, Title: title, Body: body, Data: data}); err != nil {
		logger.Warn().Err(err).Uint("user_id", userID).Msg("push enqueue failed")
	}
}

// NotifyGroup queues the notification for every linked member of a group,
// optionally skipping the actor who triggered it.
func (s *PushService) NotifyGroup(groupID uint, skipUserID uint, title, body string, data map[string]string) {
	var members []models.GroupMember
	if err := s.db.Where("group_id = ? AND user_id IS NOT NULL", groupID).Find(&members).Error; err != nil {
		logger.Warn().Err(err).Uint("group_id", groupID).Msg("push roster lookup failed")
		return
	}

	for _, m := range members {
		if m.UserID == nil || *m.UserID == skipUserID {
			continue
		}
		s.NotifyUser(*m.UserID, title, body, data)
	}
}

// Deliver is the queue processor: it resolves the user's device tokens and
// hands them to the provider adapter. A user with no registered devices is
// not an error.
func (s *PushService) Deliver(ctx context.Context, task *PushTask) error {
	var tokens []models.DeviceToken
	if err := s.db.Where("user_id = ?", task.UserID).Find(&tokens).Error; err != nil {
		return err
	}
	if len(tokens) == 0 {
		return nil
	}

	byProvider := make(map[string][]string)
	for _, t := range tokens {
		provider := t.Provider
		if provider == "" {
			provider = s.cfg.Provider
		}
		byProvider[provider] = append(byProvider[provider], t.Token)
	}

	var firstErr error
	for provider, providerTokens := range byProvider {
		adapter := getPushAdapter(provider)
		if err := adapter.Send(s.cfg, providerTokens, task); err != nil {
			logger.Error().Err(err).Str("provider", provider).Uint("user_id", task.UserID).Msg("push delivery failed")
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// --- Helper shared by adapters ---

func postPushJSON(endpoint, apiKey string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequest("POST", endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}

	resp, err := pushHTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	logger.Infof("[Push] Response: %d - %s", resp.StatusCode, string(respBody))

	if resp.StatusCode >= 400 {
		return fmt.Errorf("push endpoint returned status %d: %s", resp.StatusCode, string(respBody))
	}

	return nil
}

// --- Expo ---

type expoAdapter struct{}

type expoPushMessage struct {
	To    []string          `json:"to"`
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data,omitempty"`
	Sound string            `json:"sound"`
}

func (a *expoAdapter) Send(cfg *config.PushConfig, tokens []string, task *PushTask) error {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = "https://exp.host/--/api/v2/push/send"
	}

	// Expo caps one request at 100 messages
	for start := 0; start < len(tokens); start += 100 {
		end := start + 100
		if end > len(tokens) {
			end = len(tokens)
		}
		msg := expoPushMessage{
			To:    tokens[start:end],
			Title: task.Title,
			Body:  task.Body,
			Data:  task.Data,
			Sound: "default",
		}
		if err := postPushJSON(endpoint, cfg.APIKey, msg); err != nil {
			return err
		}
	}
	return nil
}

// --- FCM ---

type fcmAdapter struct{}

type fcmPushMessage struct {
	RegistrationIDs []string          `json:"registration_ids"`
	Notification    fcmNotification   `json:"notification"`
	Data            map[string]string `json:"data,omitempty"`
}

type fcmNotification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

func (a *fcmAdapter) Send(cfg *config.PushConfig, tokens []string, task *PushTask) error {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = "https://fcm.googleapis.com/fcm/send"
	}

	msg := fcmPushMessage{
		RegistrationIDs: tokens,
		Notification:    fcmNotification{Title: task.Title, Body: task.Body},
		Data:            task.Data,
	}
	return postPushJSON(endpoint, cfg.APIKey, msg)
}

// --- Disabled ---

type noopAdapter struct{}

func (a *noopAdapter) Send(cfg *config.PushConfig, tokens []string, task *PushTask) error {
	logger.Debug().Int("tokens", len(tokens)).Msg("push disabled, dropping notification")
	return nil
}
