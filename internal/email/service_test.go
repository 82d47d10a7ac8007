package email

import (
	"context"
	"errors"
	"net/smtp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redmonkez12/go-blog-auth/internal/config"
)

type sentMail struct {
	addr string
	from string
	to   []string
	msg  string
}

func newTestService(sendErr error) (*Service, *[]sentMail) {
	var sent []sentMail
	svc := NewService(config.EmailConfig{
		SMTPHost:    "smtp.example.com",
		SMTPPort:    "587",
		SMTPUser:    "noreply@example.com",
		FrontendURL: "https://blog.example.com",
	})
	svc.send = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		sent = append(sent, sentMail{addr: addr, from: from, to: to, msg: string(msg)})
		return sendErr
	}
	return svc, &sent
}

func TestService_SendSignUpPin(t *testing.T) {
	svc, sent := newTestService(nil)

	require.NoError(t, svc.SendSignUpPin(context.Background(), "park@email.com", "park", "012345"))

	require.Len(t, *sent, 1)
	mail := (*sent)[0]
	assert.Equal(t, "smtp.example.com:587", mail.addr)
	assert.Equal(t, "noreply@example.com", mail.from)
	assert.Equal(t, []string{"park@email.com"}, mail.to)
	assert.Contains(t, mail.msg, "Subject: Your sign-up pin")
	assert.Contains(t, mail.msg, "012345")
	assert.Contains(t, mail.msg, "Welcome, park!")
}

func TestService_SendTemporaryPassword(t *testing.T) {
	svc, sent := newTestService(nil)

	require.NoError(t, svc.SendTemporaryPassword(context.Background(), "park@email.com", "rst1", "tmpPW"))

	require.Len(t, *sent, 1)
	msg := (*sent)[0].msg
	assert.Contains(t, msg, "rst1")
	assert.Contains(t, msg, "tmpPW")
	assert.Contains(t, msg, "https://blog.example.com/reset-password?token_id=rst1")
}

func TestService_EscapesUserInput(t *testing.T) {
	svc, sent := newTestService(nil)

	require.NoError(t, svc.SendSignUpPin(context.Background(), "park@email.com", "<script>", "012345"))
	assert.NotContains(t, (*sent)[0].msg, "<script>")
}

func TestService_DeliveryFailure(t *testing.T) {
	svc, _ := newTestService(errors.New("connection refused"))

	err := svc.SendSignUpPin(context.Background(), "park@email.com", "park", "012345")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestService_RequiresHost(t *testing.T) {
	svc := NewService(config.EmailConfig{})

	err := svc.SendTemporaryPassword(context.Background(), "park@email.com", "rst1", "tmpPW")
	assert.Error(t, err)
}
