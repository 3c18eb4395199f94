package mailer

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"selfcheck/logging"
)

func TestSendGridMailer_SendWelcome(t *testing.T) {
	var (
		gotPath string
		gotAuth string
		gotBody map[string]any
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		b, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(b, &gotBody)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	m := NewSendGridMailer("SG.test", "Selfcheck", "noreply@selfcheck.test").WithHost(srv.URL)
	require.NoError(t, m.SendWelcome(context.Background(), "a@x.com", "alice"))

	assert.Equal(t, "/v3/mail/send", gotPath)
	assert.Equal(t, "Bearer SG.test", gotAuth)
	assert.Equal(t, "Welcome to Selfcheck", gotBody["subject"])
}

func TestSendGridMailer_EscapesUsernameInHTML(t *testing.T) {
	var gotBody struct {
		Content []struct {
			Type  string `json:"type"`
			Value string `json:"value"`
		} `json:"content"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(b, &gotBody)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	m := NewSendGridMailer("SG.test", "Selfcheck", "noreply@selfcheck.test").WithHost(srv.URL)
	username := `<a href="https://evil.example">claim prize</a>`
	require.NoError(t, m.SendWelcome(context.Background(), "victim@x.com", username))

	var html string
	for _, c := range gotBody.Content {
		if c.Type == "text/html" {
			html = c.Value
		}
	}
	require.NotEmpty(t, html)
	assert.NotContains(t, html, "<a href")
	assert.Contains(t, html, "&lt;a href=&#34;https://evil.example&#34;&gt;claim prize&lt;/a&gt;")
}

func TestSendGridMailer_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"errors":[{"message":"bad key"}]}`))
	}))
	defer srv.Close()

	m := NewSendGridMailer("SG.bad", "Selfcheck", "noreply@selfcheck.test").WithHost(srv.URL)
	err := m.SendWelcome(context.Background(), "a@x.com", "alice")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestLogMailer_NeverFails(t *testing.T) {
	m := NewLogMailer(logging.Discard())
	assert.NoError(t, m.SendWelcome(context.Background(), "a@x.com", "alice"))
}
