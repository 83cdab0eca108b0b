package mailservice

import (
	"bytes"
	"context"
	"sync"
	"time"

	"github.com/go-mail/mail/v2"

	"github.com/sushihentaime/inkpost/internal/common"
)

const (
	welcomeTemplate = "welcome_email.tmpl"
	maxRetries      = 5
	baseDelay       = 500 * time.Millisecond
)

type MailService struct {
	mb     common.MessageConsumer
	m      Mailer
	logger MailLogger
	ctx    context.Context
	cancel context.CancelFunc
	// sleep waits between delivery attempts. It returns false when the service is closed.
	sleep func(ctx context.Context, d time.Duration) bool
}

type MailLogger interface {
	Error(msg string, args ...any)
	Info(msg string, args ...any)
}

type Mail struct {
	mu     sync.Mutex
	dialer Dialer
	parser TemplateParser
	sender string
}

type Mailer interface {
	send(recipient string, data any, templateFile string) error
}

type Template struct{}

type Dialer interface {
	DialAndSend(m ...*mail.Message) error
}

type TemplateParser interface {
	ParseTemplate(name string, data any) (*bytes.Buffer, *bytes.Buffer, *bytes.Buffer, error)
}

// welcomeData is rendered into the welcome email template.
type welcomeData struct {
	FirstName string
}
