package config

import (
	"fmt"
	"os"

	"github.com/brodiemcgee/thegloryapp-sub002/pkg/gomailer"
	"github.com/brodiemcgee/thegloryapp-sub002/pkg/gopush"
	"github.com/brodiemcgee/thegloryapp-sub002/pkg/gosms"
	"gopkg.in/yaml.v3"
)

type Config struct {
	SMS   SMSConfig   `yaml:"sms"`
	Email EmailConfig `yaml:"email"`
	Push  PushConfig  `yaml:"push"`
}

type SMSConfig struct {
	Provider string              `yaml:"provider"`
	Twilio   *gosms.TwilioSender `yaml:"twilio,omitempty"`
}

type EmailConfig struct {
	Provider string                   `yaml:"provider"`
	SMTP     *gomailer.SMTPMailer     `yaml:"smtp,omitempty"`
	SendGrid *gomailer.SendGridMailer `yaml:"sendgrid,omitempty"`
}

type PushConfig struct {
	Gateway *gopush.GatewayClient `yaml:"gateway,omitempty"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func BuildSender(cfg *Config) (gosms.Sender, error) {
	switch cfg.SMS.Provider {
	case "twilio":
		if cfg.SMS.Twilio == nil {
			return nil, fmt.Errorf("missing twilio config for sms provider")
		}
		return gosms.NewTwilioSender(
			cfg.SMS.Twilio.Username,
			cfg.SMS.Twilio.Password,
			cfg.SMS.Twilio.FromNumber,
		), nil
	default:
		return nil, fmt.Errorf("unsupported sms provider: %s", cfg.SMS.Provider)
	}
}

func BuildMailer(cfg *Config) (gomailer.Mailer, error) {
	switch cfg.Email.Provider {
	case "smtp":
		if cfg.Email.SMTP == nil {
			return nil, fmt.Errorf("missing smtp config for email provider")
		}
		return cfg.Email.SMTP, nil
	case "sendgrid":
		if cfg.Email.SendGrid == nil {
			return nil, fmt.Errorf("missing sendgrid config for email provider")
		}
		return gomailer.NewSendGridMailer(
			cfg.Email.SendGrid.APIKey,
			cfg.Email.SendGrid.FromName,
			cfg.Email.SendGrid.FromMail,
		), nil
	case "":
		// summary email is optional
		return nil, nil
	default:
		return nil, fmt.Errorf("unsupported email provider: %s", cfg.Email.Provider)
	}
}

// FromAddress is the sender address for reporter-facing summary emails.
func FromAddress(cfg *Config) string {
	switch cfg.Email.Provider {
	case "sendgrid":
		if cfg.Email.SendGrid != nil {
			return cfg.Email.SendGrid.FromMail
		}
	case "smtp":
		if cfg.Email.SMTP != nil {
			return cfg.Email.SMTP.Username
		}
	}
	return ""
}

func BuildGateway(cfg *Config) (*gopush.GatewayClient, error) {
	if cfg.Push.Gateway == nil {
		return nil, fmt.Errorf("missing push gateway config")
	}
	return gopush.NewGatewayClient(cfg.Push.Gateway.BaseURL, cfg.Push.Gateway.APIKey), nil
}
