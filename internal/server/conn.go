package server

import (
	"bufio"
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"runtime/debug"
	"strings"
	"time"

	"github.com/mcoot/gomoku-server/internal/session"
)

// maxLineLength bounds one input line; longer lines are discarded
const maxLineLength = 4096

const msgServerFull = "Server is full. Please try again later."

// handleConn runs one connection from accept to teardown
func (s *Server) handleConn(ctx context.Context, nc net.Conn) {
	defer s.wg.Done()

	id := s.ids.NewConnID()
	logger := s.logger.With(
		slog.String("conn_id", string(id)),
		slog.String("remote_addr", nc.RemoteAddr().String()),
	)

	if s.config.MaxConnections > 0 && s.hub.Count() >= s.config.MaxConnections {
		logger.Warn("connection refused - server full", slog.Int("max_connections", s.config.MaxConnections))
		_ = nc.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
		_, _ = io.WriteString(nc, msgServerFull+lineEnding)
		_ = nc.Close()
		return
	}

	c := s.hub.Register(id, nc)
	sess := s.manager.NewSession(id)
	logger.Info("connection accepted")

	writerDone := make(chan struct{})
	go s.writeLoop(c, writerDone, logger)

	defer func() {
		if r := recover(); r != nil {
			logger.Error("panic in connection handler",
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())))
		}
		sess.Disconnect(context.WithoutCancel(ctx))
		s.hub.Unregister(id)
		<-writerDone
		_ = nc.Close()
		logger.Info("connection closed")
	}()

	if !s.reply(c, session.Welcome()) {
		return
	}
	s.readLoop(ctx, c, sess, logger)
}

// readLoop feeds complete input lines to the session until the connection
// closes, the session asks to close, or ctx is cancelled. The read deadline
// wakes it periodically so idle sessions can expire their mail drafts.
func (s *Server) readLoop(ctx context.Context, c *client, sess *session.Session, logger *slog.Logger) {
	reader := bufio.NewReader(c.netConn)
	var pending strings.Builder
	discarding := false

	for {
		if ctx.Err() != nil {
			return
		}

		_ = c.netConn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))
		chunk, err := reader.ReadString('\n')
		if !discarding {
			pending.WriteString(chunk)
		}
		if pending.Len() > maxLineLength {
			logger.Warn("input line too long - discarding", slog.Int("length", pending.Len()))
			pending.Reset()
			discarding = true
		}

		if err != nil {
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				if reply := sess.Tick(); reply.Text != "" {
					if !s.reply(c, reply.Text) {
						return
					}
				}
				continue
			}
			if !errors.Is(err, io.EOF) && !errors.Is(err, net.ErrClosed) {
				logger.Debug("read failed", slog.String("error", err.Error()))
			}
			return
		}

		// A complete line ends any discard in progress
		if discarding {
			discarding = false
			continue
		}

		line := sanitize(pending.String())
		pending.Reset()

		reply := sess.Handle(ctx, line)
		if reply.Text != "" && !s.reply(c, reply.Text) {
			return
		}
		if reply.Close {
			return
		}
	}
}

// reply queues a direct response for c. Unlike hub.Send it waits for buffer
// space, up to the write timeout, then gives the connection up as dead.
func (s *Server) reply(c *client, msg string) bool {
	timer := time.NewTimer(s.config.WriteTimeout)
	defer timer.Stop()

	select {
	case c.send <- msg:
		return true
	case <-timer.C:
		s.logger.Warn("reply timed out - closing connection", slog.String("conn_id", string(c.conn)))
		c.markDead()
		return false
	}
}

// writeLoop writes queued messages until the send channel is closed
func (s *Server) writeLoop(c *client, done chan<- struct{}, logger *slog.Logger) {
	defer close(done)

	for msg := range c.send {
		if c.dead.Load() {
			continue
		}
		_ = c.netConn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
		if _, err := io.WriteString(c.netConn, msg+lineEnding); err != nil {
			logger.Debug("write failed", slog.String("error", err.Error()))
			c.markDead()
		}
	}
}

const lineEnding = "\r\n"

// sanitize drops every byte outside printable ASCII, which also removes the
// line terminator
func sanitize(line string) string {
	var sb strings.Builder
	sb.Grow(len(line))
	for i := 0; i < len(line); i++ {
		if b := line[i]; b >= 32 && b <= 126 {
			sb.WriteByte(b)
		}
	}
	return sb.String()
}
