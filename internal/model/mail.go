package model

import (
	"strconv"
	"time"
)

// MailID identifies a mail message. Ids are global across all mailboxes.
type MailID int

// MailDateLayout is the timestamp layout shown in mailbox listings
const MailDateLayout = "2006-01-02 15:04"

// Mail is one stored message. Mail is append-only per recipient and removed
// only by an explicit delete.
type Mail struct {
	ID        MailID
	Sender    string
	Recipient string
	Subject   string
	Body      string
	SentAt    time.Time
	Read      bool
}

// Header formats the one-line mailbox listing entry
func (m Mail) Header() string {
	header := strconv.Itoa(int(m.ID)) + ". "
	if !m.Read {
		header += "[NEW] "
	}
	return header + "From: " + m.Sender + ", Title: " + m.Subject + ", Date: " + m.SentAt.Local().Format(MailDateLayout)
}
