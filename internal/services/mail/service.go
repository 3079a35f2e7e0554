package mail

import (
	"log/slog"
	"sort"
	"sync"

	"github.com/mcoot/gomoku-server/internal/dependencies/clock"
	"github.com/mcoot/gomoku-server/internal/model"
)

// Service stores mailboxes. Ids are global and increase monotonically from 1.
type Service struct {
	mu     sync.Mutex
	boxes  map[string][]*model.Mail
	nextID model.MailID
	clock  clock.Clock
	logger *slog.Logger
}

// New creates an empty mail service
func New(clk clock.Clock, logger *slog.Logger) *Service {
	return &Service{
		boxes:  make(map[string][]*model.Mail),
		nextID: 1,
		clock:  clk,
		logger: logger.With(slog.String("component", "mail")),
	}
}

// Load replaces every mailbox. The next id continues after the highest loaded id.
func (s *Service) Load(messages []model.Mail) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.boxes = make(map[string][]*model.Mail)
	s.nextID = 1
	sorted := append([]model.Mail(nil), messages...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })
	for i := range sorted {
		m := sorted[i]
		s.boxes[m.Recipient] = append(s.boxes[m.Recipient], &m)
		if m.ID >= s.nextID {
			s.nextID = m.ID + 1
		}
	}
}

// All returns every stored message ordered by id
func (s *Service) All() []model.Mail {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result []model.Mail
	for _, box := range s.boxes {
		for _, m := range box {
			result = append(result, *m)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

// Send appends a new unread message to recipient's mailbox
func (s *Service) Send(sender, recipient, subject, body string) model.Mail {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := &model.Mail{
		ID:        s.nextID,
		Sender:    sender,
		Recipient: recipient,
		Subject:   subject,
		Body:      body,
		SentAt:    s.clock.Now(),
	}
	s.nextID++
	s.boxes[recipient] = append(s.boxes[recipient], m)

	s.logger.Info("mail sent",
		slog.Int("mail_id", int(m.ID)),
		slog.String("user", sender),
		slog.String("recipient", recipient),
	)
	return *m
}

// List returns recipient's mailbox in arrival order
func (s *Service) List(recipient string) []model.Mail {
	s.mu.Lock()
	defer s.mu.Unlock()

	box := s.boxes[recipient]
	result := make([]model.Mail, 0, len(box))
	for _, m := range box {
		result = append(result, *m)
	}
	return result
}

// Unread counts recipient's unread messages
func (s *Service) Unread(recipient string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, m := range s.boxes[recipient] {
		if !m.Read {
			n++
		}
	}
	return n
}

// Read returns a message from recipient's mailbox and marks it read
func (s *Service) Read(recipient string, id model.MailID) (model.Mail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, m := range s.boxes[recipient] {
		if m.ID == id {
			m.Read = true
			return *m, nil
		}
	}
	return model.Mail{}, model.ErrMailNotFound
}

// Delete removes a message from recipient's mailbox
func (s *Service) Delete(recipient string, id model.MailID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	box := s.boxes[recipient]
	for i, m := range box {
		if m.ID == id {
			s.boxes[recipient] = append(box[:i], box[i+1:]...)
			return nil
		}
	}
	return model.ErrMailNotFound
}
