package models

// EmailMessage is the unit of work published to the email queue and
// consumed by the sender worker.
type EmailMessage struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}
