package mailer

import (
	"testing"

	"github.com/Skotchmaster/storefront/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestResetLink(t *testing.T) {
	assert.Equal(t, "http://shop.test/reset?resetToken=abc", ResetLink("http://shop.test", "abc"))
}

func TestResetEmail(t *testing.T) {
	body := ResetEmail("http://shop.test", "abc")
	assert.Contains(t, body, `href="http://shop.test/reset?resetToken=abc"`)
	assert.Contains(t, body, "Hello There!")
}

func TestNewSMTP_RequiresHost(t *testing.T) {
	_, err := NewSMTP(config.MailConfig{})
	assert.Error(t, err)

	m, err := NewSMTP(config.MailConfig{Host: "smtp.test", Port: 2525, From: "shop@test"})
	assert.NoError(t, err)
	assert.NotNil(t, m)
}
