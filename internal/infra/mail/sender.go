package mail

import (
	"bytes"
	"encoding/json"
	"fmt"
	"text/template"

	"gopkg.in/gomail.v2"
)

const followupSubject = "Your GamerTech Trade-In Quote – Next Steps"

const followupBody = `Hi {{.Name}},

Thanks for submitting your trade-in through our website.

We’ve reviewed the details for the following:
{{.Parts}}

Your cash offer is: ${{.Cash}}
and your store credit offer is: ${{.Credit}}

I just wanted to follow up to see whether you were looking to trade your system/component in toward a new PC or if you were interested in a cash payout. Depending on your preference, we may be able to re-evaluate your trade-in and see if we can offer more than the instant quote provided online.

If this sounds like it would interest you, or if you have any questions, feel free to reply to this email or contact us directly at 905-247-7085. We’re happy to help.

Looking forward to hearing from you.

Best regards,
Aaron
GamerTech Team
`

var followupTmpl = template.Must(template.New("followup").Parse(followupBody))

func NewEmailSender(host string, port int, user, password, from string) *EmailSender {
	return &EmailSender{
		Host:     host,
		Port:     port,
		User:     user,
		Password: password,
		From:     from,
	}
}

// SendFollowup renders and delivers the one-time nudge email. One attempt;
// the caller records failures and the lead stays eligible for the next run.
func (s *EmailSender) SendFollowup(to, name string, selections json.RawMessage, cash, credit int) error {
	if name == "" {
		name = "there"
	}

	data := FollowupEmailData{
		Name:   name,
		Parts:  FormatSelections(selections),
		Cash:   cash,
		Credit: credit,
	}

	var body bytes.Buffer
	if err := followupTmpl.Execute(&body, data); err != nil {
		return fmt.Errorf("follow-up template failed: %w", err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", followupSubject)
	m.SetBody("text/plain", body.String())

	d := gomail.NewDialer(s.Host, s.Port, s.User, s.Password)

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("smtp send failed: %w", err)
	}

	return nil
}
