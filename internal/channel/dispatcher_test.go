package channel

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/educonnect/reengage-engine/internal/models"
)

func TestEmailAdapter_MissingSettingsFailsWithoutSending(t *testing.T) {
	repo := &mockOrgRepo{smtp: map[int64]*models.OrgSMTPSettings{}}
	adapter := NewEmailAdapter(repo, "Assunto")

	sendCalls := 0
	adapter.sendMail = func(settings *models.OrgSMTPSettings, to, subject, htmlBody string) error {
		sendCalls++
		return nil
	}

	outcome := adapter.Send(context.Background(), testLead(), "Olá")

	if outcome.Success {
		t.Error("outcome should fail without SMTP settings")
	}
	if !strings.Contains(outcome.Error, "smtp settings") {
		t.Errorf("error = %q, want settings detail", outcome.Error)
	}
	if sendCalls != 0 {
		t.Errorf("send calls = %d, want 0", sendCalls)
	}
}

func TestEmailAdapter_IncompleteSettingsFail(t *testing.T) {
	repo := &mockOrgRepo{smtp: map[int64]*models.OrgSMTPSettings{
		5: {OrgID: 5, Host: "smtp.example.com", Port: 587}, // no credentials
	}}
	adapter := NewEmailAdapter(repo, "Assunto")
	adapter.sendMail = func(settings *models.OrgSMTPSettings, to, subject, htmlBody string) error {
		t.Fatal("sendMail must not be called with incomplete settings")
		return nil
	}

	if outcome := adapter.Send(context.Background(), testLead(), "Olá"); outcome.Success {
		t.Error("incomplete settings must fail the attempt")
	}
}

func TestEmailAdapter_SendSuccess(t *testing.T) {
	repo := &mockOrgRepo{smtp: map[int64]*models.OrgSMTPSettings{
		5: {
			OrgID:       5,
			Host:        "smtp.example.com",
			Port:        587,
			Username:    "mailer",
			Password:    "s3cret",
			FromAddress: "contato@edu.example.com",
		},
	}}
	adapter := NewEmailAdapter(repo, "Temos novidades")

	var gotTo, gotSubject, gotBody string
	adapter.sendMail = func(settings *models.OrgSMTPSettings, to, subject, htmlBody string) error {
		gotTo, gotSubject, gotBody = to, subject, htmlBody
		return nil
	}

	outcome := adapter.Send(context.Background(), testLead(), "Olá Maria\nAté logo")

	if !outcome.Success {
		t.Fatalf("outcome failed: %s", outcome.Error)
	}
	if gotTo != "maria@example.com" {
		t.Errorf("to = %q, want maria@example.com", gotTo)
	}
	if gotSubject != "Temos novidades" {
		t.Errorf("subject = %q", gotSubject)
	}
	if !strings.Contains(gotBody, "Olá Maria<br>Até logo") {
		t.Errorf("body = %q, want HTML with <br> line breaks", gotBody)
	}
}

func TestEmailAdapter_TransportErrorBecomesFailure(t *testing.T) {
	repo := &mockOrgRepo{smtp: map[int64]*models.OrgSMTPSettings{
		5: {
			OrgID:       5,
			Host:        "smtp.example.com",
			Port:        587,
			Username:    "mailer",
			Password:    "s3cret",
			FromAddress: "contato@edu.example.com",
		},
	}}
	adapter := NewEmailAdapter(repo, "Assunto")
	adapter.sendMail = func(settings *models.OrgSMTPSettings, to, subject, htmlBody string) error {
		return errors.New("connection refused")
	}

	outcome := adapter.Send(context.Background(), testLead(), "Olá")

	if outcome.Success {
		t.Fatal("transport errors must fail the attempt")
	}
	if !strings.Contains(outcome.Error, "connection refused") {
		t.Errorf("error = %q, want transport detail", outcome.Error)
	}
}

func TestEmailAdapter_MissingLeadEmail(t *testing.T) {
	adapter := NewEmailAdapter(&mockOrgRepo{}, "Assunto")
	lead := testLead()
	lead.Email = ""

	if outcome := adapter.Send(context.Background(), lead, "Olá"); outcome.Success {
		t.Error("outcome should fail without an email address")
	}
}

func TestSMSAdapter_AlwaysSucceeds(t *testing.T) {
	adapter := NewSMSAdapter(testLogger())

	outcome := adapter.Send(context.Background(), testLead(), "Olá")

	if !outcome.Success {
		t.Errorf("sms stub must succeed, got %s", outcome.Error)
	}
	if outcome.Channel != models.ChannelSMS {
		t.Errorf("channel = %s, want sms", outcome.Channel)
	}
}

func TestDispatcher_RoutesByChannel(t *testing.T) {
	repo := &mockOrgRepo{smtp: map[int64]*models.OrgSMTPSettings{}}
	email := NewEmailAdapter(repo, "Assunto")
	sms := NewSMSAdapter(testLogger())
	chat := NewChatAdapter(ChatConfig{CountryCode: "55"}, repo, nil, testLogger())
	d := NewDispatcher(chat, email, sms, testLogger())

	if out := d.Send(context.Background(), models.ChannelSMS, testLead(), "Oi"); !out.Success {
		t.Error("sms route should succeed via the stub")
	}
	if out := d.Send(context.Background(), models.ChannelEmail, testLead(), "Oi"); out.Success {
		t.Error("email route should fail without settings")
	}
	if out := d.Send(context.Background(), models.ChannelChat, testLead(), "Oi"); out.Success {
		t.Error("chat route should fail without gateway configuration")
	}
}

func TestDispatcher_UnsupportedChannel(t *testing.T) {
	d := NewDispatcher(nil, nil, NewSMSAdapter(testLogger()), testLogger())

	outcome := d.Send(context.Background(), models.Channel("fax"), testLead(), "Oi")

	if outcome.Success {
		t.Fatal("unsupported channel must fail")
	}
	if !strings.Contains(outcome.Error, "unsupported channel") {
		t.Errorf("error = %q", outcome.Error)
	}
}
