package session

import "context"

type handlerFunc func(s *Session, ctx context.Context, r request) Reply

// command describes one verb. Checks run in order: authentication, argument
// count, guest refusal; only then is run called.
type command struct {
	run          handlerFunc
	auth         bool
	minArgs      int
	usage        string
	guestRefusal string
}

// commands maps each lower-cased verb to its handler. Move tokens are
// recognized before this table is consulted.
var commands = map[string]command{
	// Always available
	"login":    {run: (*Session).handleLogin, minArgs: 2, usage: usageLogin},
	"guest":    {run: (*Session).handleGuest},
	"register": {run: (*Session).handleRegister, minArgs: 2, usage: usageRegister},
	"help":     {run: (*Session).handleHelp},
	"?":        {run: (*Session).handleHelp},
	"exit":     {run: (*Session).handleExit},
	"quit":     {run: (*Session).handleExit},

	// Games
	"who":       {run: (*Session).handleWho, auth: true},
	"game":      {run: (*Session).handleGame, auth: true},
	"match":     {run: (*Session).handleMatch, auth: true, minArgs: 2, usage: usageMatch},
	"resign":    {run: (*Session).handleResign, auth: true},
	"refresh":   {run: (*Session).handleRefresh, auth: true},
	"observe":   {run: (*Session).handleObserve, auth: true, minArgs: 1, usage: usageObserve},
	"unobserve": {run: (*Session).handleUnobserve, auth: true},

	// Chat
	"shout":    {run: (*Session).handleShout, auth: true, minArgs: 1, usage: usageShout, guestRefusal: msgGuestCannotShout},
	"tell":     {run: (*Session).handleTell, auth: true, minArgs: 2, usage: usageTell, guestRefusal: msgGuestCannotTell},
	"kibitz":   {run: (*Session).handleKibitz, auth: true, minArgs: 1, usage: usageKibitz},
	"'":        {run: (*Session).handleKibitz, auth: true, minArgs: 1, usage: usageKibitz},
	"quiet":    {run: (*Session).handleQuiet, auth: true},
	"nonquiet": {run: (*Session).handleNonQuiet, auth: true},
	"block":    {run: (*Session).handleBlock, auth: true, minArgs: 1, usage: usageBlock, guestRefusal: msgGuestCannotBlock},
	"unblock":  {run: (*Session).handleUnblock, auth: true, minArgs: 1, usage: usageUnblock, guestRefusal: msgGuestCannotUnblk},

	// Mail
	"listmail":   {run: (*Session).handleListMail, auth: true, guestRefusal: msgGuestCannotMail},
	"readmail":   {run: (*Session).handleReadMail, auth: true, minArgs: 1, usage: usageReadMail, guestRefusal: msgGuestCannotMail},
	"deletemail": {run: (*Session).handleDeleteMail, auth: true, minArgs: 1, usage: usageDeleteMail, guestRefusal: msgGuestCannotMail},
	"mail":       {run: (*Session).handleMail, auth: true, minArgs: 2, usage: usageMail, guestRefusal: msgGuestCannotMail},

	// Profile
	"stats":  {run: (*Session).handleStats, auth: true},
	"info":   {run: (*Session).handleInfo, auth: true, minArgs: 1, usage: usageInfo, guestRefusal: msgGuestCannotInfo},
	"passwd": {run: (*Session).handlePasswd, auth: true, minArgs: 1, usage: usagePasswd, guestRefusal: msgGuestCannotPasswd},
}
