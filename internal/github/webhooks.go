package github

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github-topic-bot/internal/models"

	"github.com/PaulSonOfLars/gotgbot/v2"
	"github.com/google/go-github/v80/github"
)

// MappingStore resolves a repository to its forum topic.
type MappingStore interface {
	FindByRepo(ctx context.Context, repoFullName string) (*models.RepoTopicMapping, error)
}

// Notifier delivers a rendered notification into a forum topic.
type Notifier interface {
	Notify(topicID int64, text string, keyboard *gotgbot.InlineKeyboardMarkup) error
}

type WebhookServer struct {
	Secret   string
	Store    MappingStore
	Notifier Notifier
	Log      *slog.Logger
}

func NewWebhookServer(secret string, store MappingStore, notifier Notifier, log *slog.Logger) *WebhookServer {
	return &WebhookServer{
		Secret:   secret,
		Store:    store,
		Notifier: notifier,
		Log:      log,
	}
}

// Handler serves POST /api/github/webhook.
func (s *WebhookServer) Handler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if eventType := github.WebHookType(r); eventType != "push" {
		s.Log.Debug("ignoring non-push event", "event", eventType)
		_, _ = w.Write([]byte("Event ignored"))
		return
	}

	payload, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read body", http.StatusBadRequest)
		return
	}

	if !VerifySignature(payload, r.Header.Get(github.SHA256SignatureHeader), s.Secret) {
		s.Log.Warn("webhook signature rejected")
		http.Error(w, "Invalid signature", http.StatusForbidden)
		return
	}

	var event github.PushEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		s.Log.Error("webhook parsing failed", "err", err)
		http.Error(w, "Parse error", http.StatusInternalServerError)
		return
	}

	branch := strings.TrimPrefix(event.GetRef(), "refs/heads/")
	if branch != event.GetRepo().GetDefaultBranch() {
		s.Log.Debug("ignoring push to non-default branch", "branch", branch)
		_, _ = w.Write([]byte("Non-default branch ignored"))
		return
	}

	repoFullName := event.GetRepo().GetFullName()
	mapping, err := s.Store.FindByRepo(r.Context(), repoFullName)
	if err != nil {
		s.Log.Error("mapping lookup failed", "repo", repoFullName, "err", err)
		http.Error(w, "Storage error", http.StatusInternalServerError)
		return
	}
	if mapping == nil {
		s.Log.Warn("no topic mapping for repo", "repo", repoFullName)
		_, _ = w.Write([]byte("No topic mapping"))
		return
	}

	text := FormatPushEvent(&event)
	if err := s.Notifier.Notify(mapping.TopicID, text, nil); err != nil {
		s.Log.Error("failed to send notification", "repo", repoFullName, "topic", mapping.TopicID, "err", err)
		_, _ = w.Write([]byte("Notification failed"))
		return
	}

	s.Log.Info("push event processed", "repo", repoFullName, "topic", mapping.TopicID)
	_, _ = w.Write([]byte("Notification sent"))
}
