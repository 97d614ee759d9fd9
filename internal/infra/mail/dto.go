package mail

type FollowupEmailData struct {
	Name   string
	Parts  string
	Cash   int
	Credit int
}

type EmailSender struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}
