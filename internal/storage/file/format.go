package file

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/mcoot/gomoku-server/internal/model"
)

// Record markers for the flat key=value format
const (
	userBegin    = "USER_BEGIN"
	userEnd      = "USER_END"
	blockedBegin = "blocked_begin"
	blockedEnd   = "blocked_end"

	messageBegin = "MESSAGE_BEGIN"
	messageEnd   = "MESSAGE_END"
	contentBegin = "content_begin"
	contentEnd   = "content_end"
)

// encodeAccounts writes accounts as USER_BEGIN ... USER_END records
func encodeAccounts(w io.Writer, accounts []model.Account) error {
	bw := bufio.NewWriter(w)
	for _, a := range accounts {
		fmt.Fprintln(bw, userBegin)
		fmt.Fprintf(bw, "username=%s\n", a.Name)
		fmt.Fprintf(bw, "password=%s\n", a.Password)
		fmt.Fprintf(bw, "info=%s\n", a.Info)
		fmt.Fprintf(bw, "wins=%d\n", a.Wins)
		fmt.Fprintf(bw, "losses=%d\n", a.Losses)
		fmt.Fprintf(bw, "rating=%d\n", a.Rating)
		fmt.Fprintf(bw, "quiet=%s\n", boolFlag(a.Quiet))
		fmt.Fprintln(bw, blockedBegin)
		for _, name := range a.BlockedNames() {
			if isAccountMarker(name) {
				return fmt.Errorf("account %s: blocked name %q is a record marker", a.Name, name)
			}
			fmt.Fprintln(bw, name)
		}
		fmt.Fprintln(bw, blockedEnd)
		fmt.Fprintln(bw, userEnd)
	}
	return bw.Flush()
}

// isAccountMarker reports whether a bare line would be read as structure
// inside an account record
func isAccountMarker(line string) bool {
	switch line {
	case userBegin, userEnd, blockedBegin, blockedEnd:
		return true
	}
	return false
}

// decodeAccounts parses USER_BEGIN ... USER_END records. Unknown keys are
// ignored; a record without a username is dropped.
func decodeAccounts(r io.Reader) ([]model.Account, error) {
	var (
		accounts  []model.Account
		current   *model.Account
		inBlocked bool
	)

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")

		switch {
		case line == userBegin:
			current = model.NewAccount("", "")
			inBlocked = false
		case current == nil:
			// Stray lines outside a record
		case line == userEnd:
			if current.Name != "" {
				accounts = append(accounts, current.Clone())
			}
			current = nil
		case line == blockedBegin:
			inBlocked = true
		case line == blockedEnd:
			inBlocked = false
		case inBlocked:
			if line != "" {
				current.Blocked[line] = true
			}
		default:
			key, value, ok := strings.Cut(line, "=")
			if !ok {
				continue
			}
			if err := setAccountField(current, key, value); err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return accounts, nil
}

func setAccountField(a *model.Account, key, value string) error {
	var err error
	switch key {
	case "username":
		a.Name = value
	case "password":
		a.Password = value
	case "info":
		a.Info = value
	case "wins":
		a.Wins, err = strconv.Atoi(value)
	case "losses":
		a.Losses, err = strconv.Atoi(value)
	case "rating":
		// Older files wrote the rating as a float
		var f float64
		f, err = strconv.ParseFloat(value, 64)
		a.Rating = int(f)
	case "quiet":
		a.Quiet = value == "1"
	}
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return nil
}

// encodeMail writes mail as MESSAGE_BEGIN ... MESSAGE_END records
func encodeMail(w io.Writer, mail []model.Mail) error {
	bw := bufio.NewWriter(w)
	for _, m := range mail {
		fmt.Fprintln(bw, messageBegin)
		fmt.Fprintf(bw, "id=%d\n", m.ID)
		fmt.Fprintf(bw, "sender=%s\n", m.Sender)
		fmt.Fprintf(bw, "recipient=%s\n", m.Recipient)
		fmt.Fprintf(bw, "title=%s\n", m.Subject)
		fmt.Fprintf(bw, "timestamp=%d\n", m.SentAt.Unix())
		fmt.Fprintf(bw, "read=%s\n", boolFlag(m.Read))
		fmt.Fprintln(bw, contentBegin)
		for _, line := range bodyLines(m.Body) {
			fmt.Fprintln(bw, escapeBodyLine(line))
		}
		fmt.Fprintln(bw, contentEnd)
		fmt.Fprintln(bw, messageEnd)
	}
	return bw.Flush()
}

// decodeMail parses MESSAGE_BEGIN ... MESSAGE_END records. Every body line
// is restored with a trailing newline.
func decodeMail(r io.Reader) ([]model.Mail, error) {
	var (
		mail      []model.Mail
		current   *model.Mail
		inContent bool
		body      strings.Builder
	)

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")

		switch {
		case inContent:
			if line == contentEnd {
				current.Body = body.String()
				inContent = false
				continue
			}
			body.WriteString(unescapeBodyLine(line))
			body.WriteByte('\n')
		case line == messageBegin:
			current = &model.Mail{}
			body.Reset()
		case current == nil:
			// Stray lines outside a record
		case line == messageEnd:
			if current.ID > 0 {
				mail = append(mail, *current)
			}
			current = nil
		case line == contentBegin:
			inContent = true
			body.Reset()
		default:
			key, value, ok := strings.Cut(line, "=")
			if !ok {
				continue
			}
			if err := setMailField(current, key, value); err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return mail, nil
}

func setMailField(m *model.Mail, key, value string) error {
	switch key {
	case "id":
		id, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid id %q: %w", value, err)
		}
		m.ID = model.MailID(id)
	case "sender":
		m.Sender = value
	case "recipient":
		m.Recipient = value
	case "title":
		m.Subject = value
	case "timestamp":
		sec, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid timestamp %q: %w", value, err)
		}
		m.SentAt = time.Unix(sec, 0)
	case "read":
		m.Read = value == "1"
	}
	return nil
}

func bodyLines(body string) []string {
	if body == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(body, "\n"), "\n")
}

// A body line that would read as the end marker is prefixed with a backslash,
// and so is any line already starting with one.
func escapeBodyLine(line string) string {
	if line == contentEnd || strings.HasPrefix(line, `\`) {
		return `\` + line
	}
	return line
}

func unescapeBodyLine(line string) string {
	return strings.TrimPrefix(line, `\`)
}

func boolFlag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
