package controller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go-coordinator/core/constants"
	"go-coordinator/core/logger"
	"go-coordinator/core/metrics"
	"go-coordinator/core/middleware"
	"go-coordinator/core/utils"
	"go-coordinator/modules/checkin/broadcast"
	"go-coordinator/modules/checkin/dto"
	"go-coordinator/modules/checkin/service"
	"go-coordinator/modules/checkin/stomp"

	"github.com/gorilla/websocket"
)

const (
	maxFrameSize  = 64 << 10
	outboundQueue = 32
	serverName    = "coordinator/1.0"
)

const (
	errMsgForbidden   = "forbidden"
	errMsgBadRequest  = "bad request"
	errMsgServerError = "server error"
)

type outbound struct {
	data []byte
	// last closes the connection after data is written.
	last bool
}

// session is one websocket connection. The read loop owns protocol state;
// writeLoop is the only writer on conn.
type session struct {
	id      string
	ip      string
	conn    *websocket.Conn
	service service.CheckinServiceInterface
	hub     *broadcast.Hub
	opts    Options

	ctx        context.Context
	cancel     context.CancelFunc
	out        chan outbound
	writerDone chan struct{}
	forwarders sync.WaitGroup

	connected bool
	subs      map[string]*broadcast.Subscription
	messageID atomic.Uint64
}

func newSession(parent context.Context, conn *websocket.Conn, svc service.CheckinServiceInterface, hub *broadcast.Hub, opts Options, ip string) *session {
	if opts.PingInterval <= 0 {
		opts.PingInterval = constants.DefaultPingInterval
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = constants.DefaultWriteTimeout
	}

	ctx, cancel := context.WithCancel(parent)
	return &session{
		id:         utils.GenerateID(),
		ip:         ip,
		conn:       conn,
		service:    svc,
		hub:        hub,
		opts:       opts,
		ctx:        ctx,
		cancel:     cancel,
		out:        make(chan outbound, outboundQueue),
		writerDone: make(chan struct{}),
		subs:       make(map[string]*broadcast.Subscription),
	}
}

func (s *session) run() {
	metrics.ActiveSessions.Inc()
	logger.Info("CheckinSocket:Session:Open", "session", s.id, "ip", s.ip)

	go s.writeLoop()
	defer s.teardown()

	s.readLoop()
}

// teardown releases every subscription the session holds, whatever ended it.
func (s *session) teardown() {
	s.cancel()
	for id, sub := range s.subs {
		s.hub.Unsubscribe(sub)
		delete(s.subs, id)
	}
	s.forwarders.Wait()
	<-s.writerDone
	_ = s.conn.Close()

	metrics.ActiveSessions.Dec()
	logger.Info("CheckinSocket:Session:Closed", "session", s.id, "ip", s.ip)
}

func (s *session) readDeadline() time.Time {
	return time.Now().Add(2 * s.opts.PingInterval)
}

func (s *session) readLoop() {
	s.conn.SetReadLimit(maxFrameSize)
	_ = s.conn.SetReadDeadline(s.readDeadline())
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(s.readDeadline())
	})

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Debug("CheckinSocket:Read:Error", "session", s.id, "error", err)
			}
			return
		}
		_ = s.conn.SetReadDeadline(s.readDeadline())

		frame, err := stomp.Parse(data)
		if err != nil {
			s.fatal(nil, "malformed frame")
			return
		}
		if frame == nil {
			continue
		}
		if !s.handle(frame) {
			return
		}
	}
}

// handle processes one client frame and reports whether the session stays
// open.
func (s *session) handle(f *stomp.Frame) bool {
	if !s.connected && f.Command != stomp.CommandConnect && f.Command != stomp.CommandStomp {
		s.fatal(f, "not connected")
		return false
	}

	switch f.Command {
	case stomp.CommandConnect, stomp.CommandStomp:
		return s.onConnect(f)
	case stomp.CommandSubscribe:
		s.onSubscribe(f)
	case stomp.CommandUnsubscribe:
		s.onUnsubscribe(f)
	case stomp.CommandSend:
		s.onSend(f)
	case stomp.CommandDisconnect:
		s.onDisconnect(f)
		return false
	default:
		s.sendError(f, "unsupported command "+f.Command)
	}
	return true
}

func (s *session) onConnect(f *stomp.Frame) bool {
	if s.connected {
		s.fatal(f, "already connected")
		return false
	}

	version, ok := negotiateVersion(f.Header.Get(stomp.HeaderAcceptVersion))
	if !ok {
		errFrame := stomp.New(stomp.CommandError,
			stomp.HeaderVersion, "1.2",
			stomp.HeaderMessage, "supported protocol versions are 1.0 1.1 1.2",
		)
		s.send(errFrame, true)
		return false
	}

	s.connected = true
	s.send(stomp.New(stomp.CommandConnected,
		stomp.HeaderVersion, version,
		stomp.HeaderHeartBeat, "0,0",
		stomp.HeaderServer, serverName,
		stomp.HeaderSession, s.id,
	), false)
	return true
}

func negotiateVersion(accept string) (string, bool) {
	if strings.TrimSpace(accept) == "" {
		return "1.0", true
	}
	best := ""
	for _, v := range strings.Split(accept, ",") {
		switch v = strings.TrimSpace(v); v {
		case "1.0", "1.1", "1.2":
			if v > best {
				best = v
			}
		}
	}
	return best, best != ""
}

func (s *session) onSubscribe(f *stomp.Frame) {
	id := f.Header.Get(stomp.HeaderID)
	destination := f.Header.Get(stomp.HeaderDestination)
	switch {
	case id == "":
		s.sendError(f, "missing subscription id")
		return
	case destination != constants.TopicCheckins:
		s.sendError(f, "unknown destination")
		return
	case s.subs[id] != nil:
		s.sendError(f, "duplicate subscription id")
		return
	}

	sub, err := s.hub.Subscribe(destination)
	if err != nil {
		s.sendError(f, errMsgServerError)
		return
	}
	s.subs[id] = sub

	s.forwarders.Add(1)
	go s.forward(id, sub)

	logger.Debug("CheckinSocket:Subscribe", "session", s.id, "subscription", id)
	s.receipt(f)
}

func (s *session) onUnsubscribe(f *stomp.Frame) {
	id := f.Header.Get(stomp.HeaderID)
	sub := s.subs[id]
	if sub == nil {
		s.sendError(f, "unknown subscription id")
		return
	}
	s.hub.Unsubscribe(sub)
	delete(s.subs, id)
	s.receipt(f)
}

func (s *session) onSend(f *stomp.Frame) {
	if f.Header.Get(stomp.HeaderDestination) != constants.DestinationUpdate {
		s.sendError(f, errMsgBadRequest)
		return
	}

	var msg dto.CheckinUpdateMessage
	if err := json.Unmarshal(f.Body, &msg); err != nil {
		logger.Debug("CheckinSocket:Send:Decode:Error", "session", s.id, "error", err)
		s.sendError(f, errMsgBadRequest)
		return
	}

	origin := middleware.AuditInfo{IP: s.ip, Path: constants.DestinationUpdate, Method: stomp.CommandSend}
	_, err := s.service.Publish(s.ctx, f.Header.Get(constants.HeaderAuthToken), msg, origin)
	switch {
	case err == nil:
		s.receipt(f)
	case errors.Is(err, service.ErrForbidden):
		s.sendError(f, errMsgForbidden)
	case errors.Is(err, service.ErrBadRequest):
		s.sendError(f, errMsgBadRequest)
	default:
		s.sendError(f, errMsgServerError)
	}
}

func (s *session) onDisconnect(f *stomp.Frame) {
	if receipt := f.Header.Get(stomp.HeaderReceipt); receipt != "" {
		s.send(stomp.New(stomp.CommandReceipt, stomp.HeaderReceiptID, receipt), true)
		return
	}
	s.send(nil, true)
}

// forward copies hub payloads for one subscription into MESSAGE frames.
func (s *session) forward(id string, sub *broadcast.Subscription) {
	defer s.forwarders.Done()

	for payload := range sub.C() {
		frame := stomp.New(stomp.CommandMessage,
			stomp.HeaderSubscription, id,
			stomp.HeaderMessageID, fmt.Sprintf("%s-%d", s.id, s.messageID.Add(1)),
			stomp.HeaderDestination, sub.Topic(),
			stomp.HeaderContentType, "application/json",
		)
		frame.Body = payload

		select {
		case s.out <- outbound{data: stomp.Marshal(frame)}:
		case <-s.ctx.Done():
			return
		}
	}
}

func (s *session) receipt(f *stomp.Frame) {
	if receipt := f.Header.Get(stomp.HeaderReceipt); receipt != "" {
		s.send(stomp.New(stomp.CommandReceipt, stomp.HeaderReceiptID, receipt), false)
	}
}

// sendError answers a rejected frame without closing the session.
func (s *session) sendError(f *stomp.Frame, message string) {
	s.send(errorFrame(f, message), false)
}

// fatal sends an ERROR frame and closes the session, as STOMP requires after
// a protocol violation.
func (s *session) fatal(f *stomp.Frame, message string) {
	logger.Debug("CheckinSocket:ProtocolError", "session", s.id, "message", message)
	s.send(errorFrame(f, message), true)
}

func errorFrame(f *stomp.Frame, message string) *stomp.Frame {
	errFrame := stomp.New(stomp.CommandError,
		stomp.HeaderMessage, message,
		stomp.HeaderContentType, "text/plain",
	)
	if f != nil {
		if receipt := f.Header.Get(stomp.HeaderReceipt); receipt != "" {
			errFrame.Header.Set(stomp.HeaderReceiptID, receipt)
		}
	}
	errFrame.Body = []byte(message)
	return errFrame
}

// send queues a frame for the writer. When last is set it also waits until
// the writer has flushed it and closed the connection.
func (s *session) send(f *stomp.Frame, last bool) {
	item := outbound{last: last}
	if f != nil {
		item.data = stomp.Marshal(f)
	}

	select {
	case s.out <- item:
	case <-s.writerDone:
		return
	case <-s.ctx.Done():
		return
	}
	if last {
		select {
		case <-s.writerDone:
		case <-time.After(s.opts.WriteTimeout):
		}
	}
}

func (s *session) writeLoop() {
	defer close(s.writerDone)

	ticker := time.NewTicker(s.opts.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case item := <-s.out:
			if item.data != nil {
				if err := s.write(websocket.TextMessage, item.data); err != nil {
					s.abort(err)
					return
				}
			}
			if item.last {
				s.closeGracefully(websocket.CloseNormalClosure, "")
				return
			}
		case <-ticker.C:
			if err := s.write(websocket.PingMessage, nil); err != nil {
				s.abort(err)
				return
			}
		case <-s.ctx.Done():
			s.closeGracefully(websocket.CloseGoingAway, "server shutting down")
			return
		}
	}
}

func (s *session) write(messageType int, data []byte) error {
	_ = s.conn.SetWriteDeadline(time.Now().Add(s.opts.WriteTimeout))
	return s.conn.WriteMessage(messageType, data)
}

func (s *session) closeGracefully(code int, text string) {
	_ = s.write(websocket.CloseMessage, websocket.FormatCloseMessage(code, text))
	s.cancel()
	_ = s.conn.Close()
}

// abort ends the session after a write failure. Closing conn unblocks the
// read loop.
func (s *session) abort(err error) {
	logger.Debug("CheckinSocket:Write:Error", "session", s.id, "error", err)
	s.cancel()
	_ = s.conn.Close()
}
