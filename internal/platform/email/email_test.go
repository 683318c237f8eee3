package email

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crewshift/internal/platform/config"
)

func TestBuildMessage(t *testing.T) {
	msg, err := buildMessage("no-reply@example.com", " worker@example.com ", "Your shift was approved", "Hi Wendy")
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = msg.WriteTo(&buf)
	require.NoError(t, err)
	raw := buf.String()
	assert.Contains(t, raw, "worker@example.com")
	assert.Contains(t, raw, "Subject: Your shift was approved")
	assert.Contains(t, raw, "Hi Wendy")
}

func TestBuildMessageRejectsBadRecipient(t *testing.T) {
	_, err := buildMessage("no-reply@example.com", "not an address", "s", "b")
	assert.Error(t, err)
}

func TestNewDoesNotDial(t *testing.T) {
	var cfg config.Config
	cfg.SMTP.Host = "smtp.example.com"
	cfg.SMTP.Port = 2525
	cfg.SMTP.From = "no-reply@example.com"

	m, err := New(cfg)
	require.NoError(t, err)
	assert.Equal(t, "no-reply@example.com", m.from)
}
