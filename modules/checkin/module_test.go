package checkin

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go-coordinator/core/constants"
	"go-coordinator/core/middleware"
	"go-coordinator/core/token/tokentest"
	"go-coordinator/modules/checkin/controller"
	"go-coordinator/modules/checkin/dto"
	"go-coordinator/modules/checkin/entity"
	"go-coordinator/modules/checkin/repository"
	"go-coordinator/modules/checkin/stomp"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

type testServer struct {
	srv      *httptest.Server
	fx       *tokentest.Fixture
	registry *repository.MemoryRegistry
	module   *Module
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	fx := tokentest.NewFixture(t, time.Unix(1_700_000_000, 0))

	reg := repository.NewMemoryRegistry()
	_ = reg.CreateEvent(1)
	_, _ = reg.AddParticipant(1, "p@x.io")
	_, _ = reg.AddParticipant(1, "q@x.io")

	e := echo.New()
	m, err := Init(e, middleware.NewMiddleware(fx.Authenticator), Deps{
		Auth:             fx.Authenticator,
		Registry:         reg,
		SubscriberBuffer: 8,
		Options:          controller.Options{PingInterval: 5 * time.Second, WriteTimeout: time.Second},
	})
	if err != nil {
		t.Fatal(err)
	}

	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)
	t.Cleanup(m.Shutdown)
	return &testServer{srv: srv, fx: fx, registry: reg, module: m}
}

type stompClient struct {
	t    *testing.T
	conn *websocket.Conn
}

func (ts *testServer) dial(t *testing.T) *stompClient {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.srv.URL, "http") + constants.CheckinWebsocketURI
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return &stompClient{t: t, conn: conn}
}

// connect dials and completes the CONNECT handshake.
func (ts *testServer) connect(t *testing.T) *stompClient {
	t.Helper()
	c := ts.dial(t)
	c.send(stomp.New(stomp.CommandConnect, stomp.HeaderAcceptVersion, "1.1,1.2", "host", "/"))
	if f := c.read(); f.Command != stomp.CommandConnected || f.Header.Get(stomp.HeaderVersion) != "1.2" {
		t.Fatalf("handshake got %s %+v", f.Command, f.Header)
	}
	return c
}

func (c *stompClient) send(f *stomp.Frame) {
	c.t.Helper()
	if err := c.conn.WriteMessage(websocket.TextMessage, stomp.Marshal(f)); err != nil {
		c.t.Fatalf("write: %v", err)
	}
}

func (c *stompClient) read() *stomp.Frame {
	c.t.Helper()
	_ = c.conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := c.conn.ReadMessage()
	if err != nil {
		c.t.Fatalf("read: %v", err)
	}
	f, err := stomp.Parse(data)
	if err != nil || f == nil {
		c.t.Fatalf("parse %q: %v", data, err)
	}
	return f
}

func (c *stompClient) expect(command string) *stomp.Frame {
	c.t.Helper()
	f := c.read()
	if f.Command != command {
		c.t.Fatalf("got %s (%s), want %s", f.Command, f.Header.Get(stomp.HeaderMessage), command)
	}
	return f
}

func (c *stompClient) subscribe(id, receipt string) {
	c.t.Helper()
	c.send(stomp.New(stomp.CommandSubscribe,
		stomp.HeaderID, id,
		stomp.HeaderDestination, constants.TopicCheckins,
		stomp.HeaderReceipt, receipt,
	))
	if got := c.expect(stomp.CommandReceipt).Header.Get(stomp.HeaderReceiptID); got != receipt {
		c.t.Fatalf("receipt-id = %q, want %q", got, receipt)
	}
}

func update(tok, receipt string, msg dto.CheckinUpdateMessage) *stomp.Frame {
	f := stomp.New(stomp.CommandSend,
		stomp.HeaderDestination, constants.DestinationUpdate,
		stomp.HeaderContentType, "application/json",
		stomp.HeaderReceipt, receipt,
	)
	if tok != "" {
		f.Header.Set(constants.HeaderAuthToken, tok)
	}
	f.Body, _ = json.Marshal(msg)
	return f
}

func (ts *testServer) status(t *testing.T, email string) entity.CheckinStatus {
	t.Helper()
	items, err := ts.registry.Get(context.Background(), 1)
	if err != nil {
		t.Fatal(err)
	}
	for _, item := range items {
		if item.Email == email {
			return item.Status
		}
	}
	t.Fatalf("%s not registered", email)
	return ""
}

func TestCheckinSocket_UpdateReachesSubscriber(t *testing.T) {
	ts := newTestServer(t)
	listener := ts.connect(t)
	listener.subscribe("sub-0", "r1")

	sender := ts.connect(t)
	tok := ts.fx.Token(t, "admin", 30*time.Minute)
	sender.send(update(tok, "r2", dto.CheckinUpdateMessage{EventID: 1, Email: "p@x.io", Status: "checked_in"}))
	sender.expect(stomp.CommandReceipt)

	msg := listener.expect(stomp.CommandMessage)
	if msg.Header.Get(stomp.HeaderSubscription) != "sub-0" || msg.Header.Get(stomp.HeaderDestination) != constants.TopicCheckins {
		t.Fatalf("headers = %+v", msg.Header)
	}
	if msg.Header.Get(stomp.HeaderMessageID) == "" {
		t.Fatal("missing message-id")
	}
	var got dto.CheckinUpdateMessage
	if err := json.Unmarshal(msg.Body, &got); err != nil {
		t.Fatal(err)
	}
	if got != (dto.CheckinUpdateMessage{EventID: 1, Email: "p@x.io", Status: "CHECKED_IN"}) {
		t.Fatalf("payload = %+v", got)
	}
	if ts.status(t, "p@x.io") != entity.StatusCheckedIn {
		t.Fatal("registry not updated")
	}
}

func TestCheckinSocket_ForbiddenSendIsNotBroadcast(t *testing.T) {
	ts := newTestServer(t)
	listener := ts.connect(t)
	listener.subscribe("sub-0", "r1")

	sender := ts.connect(t)
	sender.send(update("not-a-token", "r2", dto.CheckinUpdateMessage{EventID: 1, Email: "p@x.io", Status: "CHECKED_IN"}))
	errFrame := sender.expect(stomp.CommandError)
	if errFrame.Header.Get(stomp.HeaderMessage) != "forbidden" || errFrame.Header.Get(stomp.HeaderReceiptID) != "r2" {
		t.Fatalf("error frame = %+v", errFrame.Header)
	}
	if ts.status(t, "p@x.io") != entity.StatusUnknown {
		t.Fatal("registry mutated by forbidden update")
	}

	// The session survives the rejection; the first broadcast the listener
	// sees is the valid one.
	tok := ts.fx.Token(t, "admin", 30*time.Minute)
	sender.send(update(tok, "r3", dto.CheckinUpdateMessage{EventID: 1, Email: "q@x.io", Status: "DECLINED"}))
	sender.expect(stomp.CommandReceipt)

	var got dto.CheckinUpdateMessage
	_ = json.Unmarshal(listener.expect(stomp.CommandMessage).Body, &got)
	if got.Email != "q@x.io" || got.Status != "DECLINED" {
		t.Fatalf("first broadcast = %+v", got)
	}
}

func TestCheckinSocket_BadRequests(t *testing.T) {
	ts := newTestServer(t)
	sender := ts.connect(t)
	tok := ts.fx.Token(t, "admin", 30*time.Minute)

	cases := []*stomp.Frame{
		update(tok, "unknown-event", dto.CheckinUpdateMessage{EventID: 9, Email: "p@x.io", Status: "CHECKED_IN"}),
		update(tok, "unknown-participant", dto.CheckinUpdateMessage{EventID: 1, Email: "z@x.io", Status: "CHECKED_IN"}),
		update(tok, "bad-status", dto.CheckinUpdateMessage{EventID: 1, Email: "p@x.io", Status: "LATE"}),
	}
	wrongDestination := update(tok, "wrong-destination", dto.CheckinUpdateMessage{EventID: 1, Email: "p@x.io", Status: "CHECKED_IN"})
	wrongDestination.Header.Set(stomp.HeaderDestination, "/elsewhere")
	badJSON := update(tok, "bad-json", dto.CheckinUpdateMessage{})
	badJSON.Body = []byte("{")
	cases = append(cases, wrongDestination, badJSON)

	for _, f := range cases {
		sender.send(f)
		errFrame := sender.expect(stomp.CommandError)
		if errFrame.Header.Get(stomp.HeaderMessage) != "bad request" {
			t.Fatalf("%s: message = %q", f.Header.Get(stomp.HeaderReceipt), errFrame.Header.Get(stomp.HeaderMessage))
		}
	}
	if ts.status(t, "p@x.io") != entity.StatusUnknown {
		t.Fatal("registry mutated by rejected updates")
	}
}

func TestCheckinSocket_Unsubscribe(t *testing.T) {
	ts := newTestServer(t)
	listener := ts.connect(t)
	listener.subscribe("sub-0", "r1")
	listener.subscribe("sub-1", "r2")
	if n := ts.module.Hub.Subscribers(constants.TopicCheckins); n != 2 {
		t.Fatalf("subscribers = %d, want 2", n)
	}

	listener.send(stomp.New(stomp.CommandUnsubscribe, stomp.HeaderID, "sub-0", stomp.HeaderReceipt, "r3"))
	listener.expect(stomp.CommandReceipt)
	if n := ts.module.Hub.Subscribers(constants.TopicCheckins); n != 1 {
		t.Fatalf("subscribers = %d, want 1", n)
	}

	sender := ts.connect(t)
	tok := ts.fx.Token(t, "admin", 30*time.Minute)
	for i, status := range []string{"CHECKED_IN", "DECLINED"} {
		sender.send(update(tok, "s"+status, dto.CheckinUpdateMessage{EventID: 1, Email: "p@x.io", Status: status}))
		sender.expect(stomp.CommandReceipt)

		msg := listener.expect(stomp.CommandMessage)
		if msg.Header.Get(stomp.HeaderSubscription) != "sub-1" {
			t.Fatalf("message %d for %q, want sub-1", i, msg.Header.Get(stomp.HeaderSubscription))
		}
	}
}

func TestCheckinSocket_SubscribeRules(t *testing.T) {
	ts := newTestServer(t)
	c := ts.connect(t)

	c.send(stomp.New(stomp.CommandSubscribe, stomp.HeaderID, "x", stomp.HeaderDestination, "/topic/other"))
	if got := c.expect(stomp.CommandError).Header.Get(stomp.HeaderMessage); got != "unknown destination" {
		t.Fatalf("message = %q", got)
	}

	c.subscribe("x", "r1")
	c.send(stomp.New(stomp.CommandSubscribe, stomp.HeaderID, "x", stomp.HeaderDestination, constants.TopicCheckins))
	c.expect(stomp.CommandError)

	c.send(stomp.New(stomp.CommandUnsubscribe, stomp.HeaderID, "nope"))
	c.expect(stomp.CommandError)
}

func TestCheckinSocket_DisconnectReleasesSubscriptions(t *testing.T) {
	ts := newTestServer(t)
	c := ts.connect(t)
	c.subscribe("sub-0", "r1")

	c.send(stomp.New(stomp.CommandDisconnect, stomp.HeaderReceipt, "77"))
	if got := c.expect(stomp.CommandReceipt).Header.Get(stomp.HeaderReceiptID); got != "77" {
		t.Fatalf("receipt-id = %q", got)
	}

	_ = c.conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := c.conn.ReadMessage(); err == nil {
		t.Fatal("connection still open after DISCONNECT")
	}
	waitForSubscribers(t, ts, 0)
}

func TestCheckinSocket_DroppedConnectionReleasesSubscriptions(t *testing.T) {
	ts := newTestServer(t)
	c := ts.connect(t)
	c.subscribe("sub-0", "r1")
	c.subscribe("sub-1", "r2")

	_ = c.conn.Close()
	waitForSubscribers(t, ts, 0)
}

func TestCheckinSocket_FrameBeforeConnect(t *testing.T) {
	ts := newTestServer(t)
	c := ts.dial(t)

	c.send(stomp.New(stomp.CommandSubscribe, stomp.HeaderID, "x", stomp.HeaderDestination, constants.TopicCheckins))
	c.expect(stomp.CommandError)

	_ = c.conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := c.conn.ReadMessage(); err == nil {
		t.Fatal("connection still open after protocol error")
	}
}

func TestCheckinSocket_UnsupportedVersion(t *testing.T) {
	ts := newTestServer(t)
	c := ts.dial(t)

	c.send(stomp.New(stomp.CommandConnect, stomp.HeaderAcceptVersion, "2.0"))
	c.expect(stomp.CommandError)
}

func waitForSubscribers(t *testing.T, ts *testServer, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if ts.module.Hub.Subscribers(constants.TopicCheckins) == want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("subscribers = %d, want %d", ts.module.Hub.Subscribers(constants.TopicCheckins), want)
}

func TestGetCheckins(t *testing.T) {
	ts := newTestServer(t)
	tok := ts.fx.Token(t, "admin", 30*time.Minute)

	get := func(path, token string) *http.Response {
		t.Helper()
		req, _ := http.NewRequest(http.MethodGet, ts.srv.URL+path, nil)
		if token != "" {
			req.Header.Set(constants.HeaderAuthToken, token)
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatal(err)
		}
		t.Cleanup(func() { _ = resp.Body.Close() })
		return resp
	}

	resp := get("/checkin/1", tok)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var items []dto.CheckinResponse
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		t.Fatal(err)
	}
	if len(items) != 2 || items[0] != (dto.CheckinResponse{EventID: 1, Email: "p@x.io", Status: "UNKNOWN"}) {
		t.Fatalf("items = %+v", items)
	}

	for _, tt := range []struct {
		path, token string
		want        int
	}{
		{"/checkin/1", "", http.StatusForbidden},
		{"/checkin/1", "garbage", http.StatusForbidden},
		{"/checkin/abc", tok, http.StatusBadRequest},
		{"/checkin/99", tok, http.StatusBadRequest},
	} {
		if got := get(tt.path, tt.token).StatusCode; got != tt.want {
			t.Errorf("GET %s (token=%t) = %d, want %d", tt.path, tt.token != "", got, tt.want)
		}
	}
}
