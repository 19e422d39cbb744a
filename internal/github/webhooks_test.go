package github

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github-topic-bot/internal/models"

	"github.com/PaulSonOfLars/gotgbot/v2"
)

const testSecret = "s3cr3t"

type fakeStore struct {
	mappings map[string]int64
	err      error
}

func (s *fakeStore) FindByRepo(ctx context.Context, repoFullName string) (*models.RepoTopicMapping, error) {
	if s.err != nil {
		return nil, s.err
	}
	topicID, ok := s.mappings[repoFullName]
	if !ok {
		return nil, nil
	}
	return &models.RepoTopicMapping{RepoFullName: repoFullName, TopicID: topicID}, nil
}

type sentMessage struct {
	topicID int64
	text    string
}

type fakeNotifier struct {
	sent []sentMessage
	err  error
}

func (n *fakeNotifier) Notify(topicID int64, text string, keyboard *gotgbot.InlineKeyboardMarkup) error {
	n.sent = append(n.sent, sentMessage{topicID: topicID, text: text})
	return n.err
}

const pushPayload = `{
	"ref": "refs/heads/main",
	"compare": "https://github.com/acme/widgets/compare/abc...def",
	"commits": [{"id": "abcdef1234", "message": "fix bug"}],
	"repository": {
		"name": "widgets",
		"full_name": "acme/widgets",
		"html_url": "https://github.com/acme/widgets",
		"default_branch": "main"
	},
	"pusher": {"name": "octocat"}
}`

func newServer(store *fakeStore, notifier *fakeNotifier) *WebhookServer {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewWebhookServer(testSecret, store, notifier, log)
}

func doRequest(t *testing.T, s *WebhookServer, event, payload, signature string) *httptest.ResponseRecorder {
	t.Helper()

	r := httptest.NewRequest(http.MethodPost, "/api/github/webhook", bytes.NewReader([]byte(payload)))
	r.Header.Set("X-GitHub-Event", event)
	if signature != "" {
		r.Header.Set("X-Hub-Signature-256", signature)
	}

	w := httptest.NewRecorder()
	s.Handler(w, r)
	return w
}

func TestHandlerIgnoresNonPushEvents(t *testing.T) {
	notifier := &fakeNotifier{}
	s := newServer(&fakeStore{}, notifier)

	w := doRequest(t, s, "ping", pushPayload, "")

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Event ignored") {
		t.Errorf("body = %q", w.Body.String())
	}
	if len(notifier.sent) != 0 {
		t.Error("notifier called for non-push event")
	}
}

func TestHandlerRejectsBadSignature(t *testing.T) {
	notifier := &fakeNotifier{}
	s := newServer(&fakeStore{}, notifier)

	w := doRequest(t, s, "push", pushPayload, sign("wrong-secret", []byte(pushPayload)))

	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", w.Code)
	}
	if len(notifier.sent) != 0 {
		t.Error("notifier called despite bad signature")
	}
}

func TestHandlerRejectsMissingSignature(t *testing.T) {
	s := newServer(&fakeStore{}, &fakeNotifier{})

	w := doRequest(t, s, "push", pushPayload, "")

	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", w.Code)
	}
}

func TestHandlerIgnoresNonDefaultBranch(t *testing.T) {
	payload := strings.Replace(pushPayload, `"refs/heads/main"`, `"refs/heads/feature"`, 1)
	notifier := &fakeNotifier{}
	s := newServer(&fakeStore{mappings: map[string]int64{"acme/widgets": 55}}, notifier)

	w := doRequest(t, s, "push", payload, sign(testSecret, []byte(payload)))

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Non-default branch ignored") {
		t.Errorf("body = %q", w.Body.String())
	}
	if len(notifier.sent) != 0 {
		t.Error("notifier called for non-default branch push")
	}
}

func TestHandlerSendsToMappedTopic(t *testing.T) {
	notifier := &fakeNotifier{}
	s := newServer(&fakeStore{mappings: map[string]int64{"acme/widgets": 55}}, notifier)

	w := doRequest(t, s, "push", pushPayload, sign(testSecret, []byte(pushPayload)))

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
	if len(notifier.sent) != 1 {
		t.Fatalf("notifier calls = %d, want 1", len(notifier.sent))
	}
	if notifier.sent[0].topicID != 55 {
		t.Errorf("topic = %d, want 55", notifier.sent[0].topicID)
	}
	if !strings.Contains(notifier.sent[0].text, "acme/widgets") {
		t.Errorf("message text = %q", notifier.sent[0].text)
	}
}

func TestHandlerUnmappedRepo(t *testing.T) {
	notifier := &fakeNotifier{}
	s := newServer(&fakeStore{}, notifier)

	w := doRequest(t, s, "push", pushPayload, sign(testSecret, []byte(pushPayload)))

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), "No topic mapping") {
		t.Errorf("body = %q", w.Body.String())
	}
	if len(notifier.sent) != 0 {
		t.Error("notifier called for unmapped repo")
	}
}

func TestHandlerMethodNotAllowed(t *testing.T) {
	s := newServer(&fakeStore{}, &fakeNotifier{})

	r := httptest.NewRequest(http.MethodGet, "/api/github/webhook", nil)
	w := httptest.NewRecorder()
	s.Handler(w, r)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", w.Code)
	}
}
