package notifier

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-telegram/bot"
	"github.com/stretchr/testify/require"
)

func TestNewTelegramRequiresCredentials(t *testing.T) {
	_, err := NewTelegram("", "42")
	require.Error(t, err)

	_, err = NewTelegram("token", "")
	require.Error(t, err)
}

func TestTelegramSend(t *testing.T) {
	var gotPath, gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		gotBody = string(body)

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"ok": true, "result": {"message_id": 1}}`)
	}))
	defer server.Close()

	n, err := NewTelegram("test-token", "42", bot.WithServerURL(server.URL))
	require.NoError(t, err)

	err = n.Send(context.Background(), "⚡ *VOLUME SPIKE ALERT* ⚡")
	require.NoError(t, err)
	require.True(t, strings.HasSuffix(gotPath, "/sendMessage"), "got path %s", gotPath)
	require.Contains(t, gotBody, "VOLUME SPIKE ALERT")
	require.Contains(t, gotBody, `"42"`)
	require.Contains(t, gotBody, "Markdown")
}

func TestTelegramSendFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"ok": false, "error_code": 401, "description": "Unauthorized"}`)
	}))
	defer server.Close()

	n, err := NewTelegram("bad-token", "42", bot.WithServerURL(server.URL))
	require.NoError(t, err)

	err = n.Send(context.Background(), "message")
	require.Error(t, err)
}
