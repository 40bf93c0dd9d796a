package gomailer

type Mailer interface {
	Send(Email) error
}

type Email struct {
	From           string
	To             []string
	Subject        string
	Text           string
	HTML           string
	IdempotencyKey string
	Headers        map[string]string
}

type EmailOption func(*Email)

func NewEmail(from string, to []string, opts ...EmailOption) Email {
	e := Email{
		From: from,
		To:   to,
	}
	for _, opt := range opts {
		opt(&e)
	}
	return e
}

func WithSubject(sub string) EmailOption {
	return func(e *Email) {
		e.Subject = sub
	}
}

func WithText(text string) EmailOption {
	return func(e *Email) {
		e.Text = text
	}
}

func WithHTML(html string) EmailOption {
	return func(e *Email) {
		e.HTML = html
	}
}

func Header(key, value string) EmailOption {
	return func(e *Email) {
		if e.Headers == nil {
			e.Headers = make(map[string]string)
		}
		e.Headers[key] = value
	}
}
