package handler

import (
	"net/http"

	"github.com/mcoot/gomoku-server/internal/api/request"
	"github.com/mcoot/gomoku-server/internal/api/response"
	"github.com/mcoot/gomoku-server/internal/services/account"
)

// MailCounter reports how many unread messages a user has waiting
type MailCounter interface {
	Unread(recipient string) int
}

// AccountHandler handles account and presence endpoints
type AccountHandler struct {
	accounts *account.Directory
	mail     MailCounter
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(accounts *account.Directory, mail MailCounter) *AccountHandler {
	return &AccountHandler{
		accounts: accounts,
		mail:     mail,
	}
}

// Who handles GET /api/v1/who
func (h *AccountHandler) Who(w http.ResponseWriter, _ *http.Request) {
	response.OK(w, response.WhoFromModel(h.accounts.Roster()))
}

// Get handles GET /api/v1/accounts/{name}
func (h *AccountHandler) Get(w http.ResponseWriter, r *http.Request) {
	a, err := h.accounts.Lookup(request.Name(r))
	if err != nil {
		writeError(w, err)
		return
	}
	resp := response.AccountFromModel(a)
	if h.mail != nil {
		resp.UnreadMail = h.mail.Unread(a.Name)
	}
	response.OK(w, resp)
}
