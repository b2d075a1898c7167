package emailsvc

import (
	"net/mail"
	"strings"
	"testing"

	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planitkids/fritids/core"
	"github.com/planitkids/fritids/testutil"
)

var parent = mail.Address{Name: "Pia", Address: "pia@hem.se"}

func Test_consoleServiceMock_SendMessages(t *testing.T) {
	conf := testutil.Config()
	svc := NewConsoleServiceMock(conf, testutil.Logger(conf))
	ResetSentMessages()

	svc.SendMessages(
		&core.EmailMessage{To: []mail.Address{parent}, Subject: "Alva has been picked up", BodyStr: "Alva: picked up"},
		&core.EmailMessage{Subject: "nobody"},                      // no recipient
		&core.EmailMessage{To: []mail.Address{parent}, Subject: "empty"}, // no content
	)

	require.Len(t, SentMessages, 1)
	msg, ok := LastSentMessage()
	require.True(t, ok)
	assert.Equal(t, "Alva has been picked up", msg.Subject)
	assert.Equal(t, "Alva: picked up", msg.TextContent)

	ResetSentMessages()
	_, ok = LastSentMessage()
	assert.False(t, ok)
}

func Test_consoleService_compose(t *testing.T) {
	conf := testutil.Config()
	svc := consoleService{defaultFromEmail: conf.DefaultFromEmail, subjPrefix: "[PlanIt Kids] "}

	body, err := svc.compose(core.EmailMessage{
		To:          []mail.Address{parent},
		Subject:     "Alva has arrived",
		TextContent: "Alva: arrived",
		HTMLContent: "<p>Alva: arrived</p>",
	})
	require.NoError(t, err)
	assert.Contains(t, body, "Subject: [PlanIt Kids] Alva has arrived\r\n")
	assert.Contains(t, body, `To: "Pia" <pia@hem.se>`)
	assert.NotContains(t, body, "CC:")
	assert.Contains(t, body, "Content-Type: text/plain")
	assert.Contains(t, body, "<p>Alva: arrived</p>")
	assert.True(t, strings.Contains(body, "multipart/alternative; boundary="))
}

func Test_sendgridService_build(t *testing.T) {
	conf := testutil.Config()
	svc := NewSendgridService(conf, testutil.Logger(conf)).(*sendgridService)

	m := svc.build(core.EmailMessage{
		To:           []mail.Address{parent},
		Subject:      "Alva has departed",
		TemplateName: "bus_status",
		TextContent:  "Alva: departed",
	})

	require.Len(t, m.Personalizations, 1)
	assert.Equal(t, "[PlanIt Kids] Alva has departed", m.Personalizations[0].Subject)
	assert.Equal(t, []*sgmail.Email{sgmail.NewEmail("Pia", "pia@hem.se")}, m.Personalizations[0].To)
	assert.Equal(t, []string{"bus_status"}, m.Categories)
	require.Len(t, m.Content, 1)
	assert.Equal(t, "text/plain", m.Content[0].Type)
	if assert.NotNil(t, m.MailSettings) && assert.NotNil(t, m.MailSettings.SandboxMode) {
		assert.True(t, *m.MailSettings.SandboxMode.Enable)
	}
}
