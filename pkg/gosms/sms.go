package gosms

type Sender interface {
	Send(SMS) error
}

type SMS struct {
	To   string `json:"to"`
	Text string `json:"text,omitempty"`
}

func NewSMS(to string, text string) SMS {
	return SMS{
		To:   to,
		Text: text,
	}
}
