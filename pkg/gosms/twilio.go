package gosms

import (
	"fmt"
	"time"

	"github.com/twilio/twilio-go"
	api "github.com/twilio/twilio-go/rest/api/v2010"
)

type TwilioSender struct {
	FromNumber string            `yaml:"fromNumber"`
	Username   string            `yaml:"username"`
	Password   string            `yaml:"password"`
	Timeout    time.Duration     `yaml:"timeout"`
	Headers    map[string]string `yaml:"headers,omitempty"`
	Client     *twilio.RestClient
}

func NewTwilioSender(accountSid, authToken, fromNumber string) *TwilioSender {
	client := twilio.NewRestClientWithParams(
		twilio.ClientParams{
			Username: accountSid,
			Password: authToken,
		})

	return &TwilioSender{
		FromNumber: fromNumber,
		Client:     client,
		Timeout:    10 * time.Second,
	}
}

func (t *TwilioSender) Send(s SMS) error {
	if t.Client == nil {
		t.Client = twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: t.Username,
			Password: t.Password,
		})
	}

	to, err := NormalizeSMS(s.To)
	if err != nil {
		return fmt.Errorf("invalid destination number: %w", err)
	}

	params := &api.CreateMessageParams{}
	params.SetBody(s.Text)
	params.SetFrom(t.FromNumber)
	params.SetTo(to)

	resp, err := t.Client.Api.CreateMessage(params)
	if err != nil {
		return err
	}
	if resp.ErrorMessage != nil {
		return fmt.Errorf("twilio rejected message: %s", *resp.ErrorMessage)
	}
	return nil
}
