package session

import (
	"context"
	"strconv"
	"strings"

	"github.com/mcoot/gomoku-server/internal/model"
)

func (s *Session) handleListMail(_ context.Context, r request) Reply {
	box := s.manager.mail.List(r.who.Name)
	if len(box) == 0 {
		return text(msgMailboxEmpty)
	}
	var sb strings.Builder
	sb.WriteString("Mail messages:\n")
	for _, m := range box {
		sb.WriteString(m.Header())
		sb.WriteByte('\n')
	}
	return text(sb.String())
}

func (s *Session) handleReadMail(_ context.Context, r request) Reply {
	id, err := strconv.Atoi(r.args[0])
	if err != nil {
		return text(msgInvalidMailID)
	}
	m, err := s.manager.mail.Read(r.who.Name, model.MailID(id))
	if err != nil {
		return text(msgMailNotFound)
	}
	return text("From: " + m.Sender + "\nTitle: " + m.Subject + "\n---\n" + m.Body + "\n---\n")
}

func (s *Session) handleDeleteMail(_ context.Context, r request) Reply {
	id, err := strconv.Atoi(r.args[0])
	if err != nil {
		return text(msgInvalidMailID)
	}
	if err := s.manager.mail.Delete(r.who.Name, model.MailID(id)); err != nil {
		return text(msgMailNotFound)
	}
	return text(msgMailDeleted)
}

// handleMail starts a draft. The body arrives on the following lines and is
// collected by composeLine.
func (s *Session) handleMail(_ context.Context, r request) Reply {
	recipient := r.args[0]
	if !s.manager.accounts.Exists(recipient) {
		return text(userNotFound(recipient))
	}
	s.draft = &draft{
		recipient: recipient,
		subject:   strings.TrimLeft(strings.TrimPrefix(r.rest, recipient), " \t"),
		touched:   s.manager.clock.Now(),
	}
	return text(msgMailPrompt)
}

// composeLine consumes one body line of the current draft. Body lines get no
// reply; the terminating "." sends the mail.
func (s *Session) composeLine(line string) Reply {
	d := s.draft
	line = strings.TrimRight(line, "\r\n")
	if line != msgMailBodyTerminus {
		d.lines = append(d.lines, line)
		d.touched = s.manager.clock.Now()
		return Reply{}
	}
	s.draft = nil

	p, ok := s.manager.accounts.Identity(s.conn)
	if !ok || p.Guest {
		return text(msgLoginRequired)
	}

	var body strings.Builder
	for _, l := range d.lines {
		body.WriteString(l)
		body.WriteByte('\n')
	}
	s.manager.mail.Send(p.Name, d.recipient, d.subject, body.String())

	if conn, ok := s.manager.accounts.ConnOf(d.recipient); ok {
		s.manager.notifier.Send(conn, "You have received a new mail from "+p.Name)
	}
	return text("Mail sent to " + d.recipient)
}
