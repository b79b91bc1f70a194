package notify

import (
	"context"
	"testing"

	"pc-inventory/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewDisabledReturnsLogNotifier(t *testing.T) {
	n, err := New(config.NotificationConfig{Enabled: false}, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &LogNotifier{}, n)
}

func TestNewEnabledReturnsEmailNotifier(t *testing.T) {
	n, err := New(config.NotificationConfig{
		Enabled: true,
		From:    "inventory@example.com",
		To:      []string{"it@example.com"},
		SMTP:    config.SMTPConfig{Host: "smtp.example.com", Port: 587, Username: "inventory", Password: "x", TLS: true},
	}, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &EmailNotifier{}, n)
}

func TestLogNotifierWritesMessage(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	n := NewLogNotifier(zap.New(core))

	require.NoError(t, n.Notify(context.Background(), Message{Subject: "Change record created", Body: "ID: 1"}))

	entries := logs.FilterMessage("notification").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "Change record created", entries[0].ContextMap()["subject"])
	assert.Equal(t, "ID: 1", entries[0].ContextMap()["body"])
}

func TestEmailNotifierRejectsBadSender(t *testing.T) {
	n, err := NewEmailNotifier(config.NotificationConfig{
		From: "not an address",
		To:   []string{"it@example.com"},
		SMTP: config.SMTPConfig{Host: "smtp.example.com", Port: 25},
	}, zap.NewNop())
	require.NoError(t, err)

	err = n.Notify(context.Background(), Message{Subject: "s", Body: "b"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to set From address")
}
