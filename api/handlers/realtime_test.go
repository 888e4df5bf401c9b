package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/sports-hub/sports-hub-api/api/handlers"
	"github.com/sports-hub/sports-hub-api/databases/mocks"
	"github.com/sports-hub/sports-hub-api/models"
)

func dialWebSocket(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	assert.NoError(t, err)
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) map[string]interface{} {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var frame map[string]interface{}
	assert.NoError(t, conn.ReadJSON(&frame))
	return frame
}

func TestNotificationHub_RegisterAndDeliver(t *testing.T) {
	rt := handlers.Realtime{NotificationHub: handlers.NewNotificationHub()}
	server := httptest.NewServer(http.HandlerFunc(rt.NotificationsWebSocketHandler))
	defer server.Close()

	conn := dialWebSocket(t, server)
	defer conn.Close()

	assert.NoError(t, conn.WriteJSON(map[string]string{
		"type":      "register",
		"userEmail": "jane@college.edu",
	}))

	// registration is processed asynchronously by the read loop
	delivered := false
	for i := 0; i < 20; i++ {
		if rt.NotificationHub.Send("jane@college.edu", models.Notification{Title: "Hello"}) {
			delivered = true
			break
		}
		time.Sleep(25 * time.Millisecond)
	}
	assert.True(t, delivered)

	frame := readFrame(t, conn)
	assert.Equal(t, "notification", frame["type"])
	notification := frame["notification"].(map[string]interface{})
	assert.Equal(t, "Hello", notification["title"])
}

func TestNotificationHub_SendToUnknownEmail(t *testing.T) {
	hub := handlers.NewNotificationHub()
	assert.False(t, hub.Send("nobody@college.edu", models.Notification{Title: "Hello"}))
}

func TestNotificationHub_LastRegistrationWins(t *testing.T) {
	rt := handlers.Realtime{NotificationHub: handlers.NewNotificationHub()}
	server := httptest.NewServer(http.HandlerFunc(rt.NotificationsWebSocketHandler))
	defer server.Close()

	first := dialWebSocket(t, server)
	defer first.Close()
	second := dialWebSocket(t, server)
	defer second.Close()

	register := map[string]string{"type": "register", "userEmail": "jane@college.edu"}
	assert.NoError(t, first.WriteJSON(register))
	time.Sleep(100 * time.Millisecond)
	assert.NoError(t, second.WriteJSON(register))
	time.Sleep(100 * time.Millisecond)

	assert.True(t, rt.NotificationHub.Send("jane@college.edu", models.Notification{Title: "Hello"}))

	frame := readFrame(t, second)
	assert.Equal(t, "notification", frame["type"])

	// the first connection was replaced and must stay silent
	first.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	var stale map[string]interface{}
	assert.Error(t, first.ReadJSON(&stale))
}

func TestChatHub_BroadcastReachesSameTeamOnly(t *testing.T) {
	mdb := &mocks.ChatMessageDatabase{}
	mdb.On("InsertOne", mock.Anything, mock.MatchedBy(func(message models.ChatMessage) bool {
		return message.TeamName == "Smash Masters" && message.Text == "Practice at 6"
	})).Return(&mocks.InsertOneResultHelper{}, nil)

	rt := handlers.Realtime{ChatHub: handlers.NewChatHub(), MDB: mdb}
	server := httptest.NewServer(http.HandlerFunc(rt.ChatWebSocketHandler))
	defer server.Close()

	sender := dialWebSocket(t, server)
	defer sender.Close()
	teammate := dialWebSocket(t, server)
	defer teammate.Close()
	outsider := dialWebSocket(t, server)
	defer outsider.Close()

	assert.NoError(t, sender.WriteJSON(map[string]string{"type": "join", "teamName": "Smash Masters"}))
	assert.NoError(t, teammate.WriteJSON(map[string]string{"type": "join", "teamName": "Smash Masters"}))
	assert.NoError(t, outsider.WriteJSON(map[string]string{"type": "join", "teamName": "Thunder FC"}))
	time.Sleep(100 * time.Millisecond)

	assert.NoError(t, sender.WriteJSON(map[string]string{
		"type":   "message",
		"sender": "Jane Doe",
		"text":   "Practice at 6",
	}))

	for _, conn := range []*websocket.Conn{sender, teammate} {
		frame := readFrame(t, conn)
		assert.Equal(t, "message", frame["type"])
		assert.Equal(t, "Jane Doe", frame["sender"])
		assert.Equal(t, "Practice at 6", frame["text"])
	}

	outsider.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	var leaked map[string]interface{}
	assert.Error(t, outsider.ReadJSON(&leaked))

	mdb.AssertExpectations(t)
}

func TestChatHub_MessageBeforeJoinIsDropped(t *testing.T) {
	mdb := &mocks.ChatMessageDatabase{}

	rt := handlers.Realtime{ChatHub: handlers.NewChatHub(), MDB: mdb}
	server := httptest.NewServer(http.HandlerFunc(rt.ChatWebSocketHandler))
	defer server.Close()

	conn := dialWebSocket(t, server)
	defer conn.Close()

	assert.NoError(t, conn.WriteJSON(map[string]string{
		"type":   "message",
		"sender": "Jane Doe",
		"text":   "anyone here?",
	}))
	time.Sleep(100 * time.Millisecond)

	mdb.AssertNotCalled(t, "InsertOne", mock.Anything, mock.Anything)
}

func TestChatHub_MessageNotBroadcastWhenPersistenceFails(t *testing.T) {
	mdb := &mocks.ChatMessageDatabase{}
	mdb.On("InsertOne", mock.Anything, mock.Anything).Return(nil, assert.AnError)

	rt := handlers.Realtime{ChatHub: handlers.NewChatHub(), MDB: mdb}
	server := httptest.NewServer(http.HandlerFunc(rt.ChatWebSocketHandler))
	defer server.Close()

	conn := dialWebSocket(t, server)
	defer conn.Close()

	assert.NoError(t, conn.WriteJSON(map[string]string{"type": "join", "teamName": "Smash Masters"}))
	time.Sleep(100 * time.Millisecond)
	assert.NoError(t, conn.WriteJSON(map[string]string{
		"type":   "message",
		"sender": "Jane Doe",
		"text":   "lost message",
	}))

	conn.SetReadDeadline(time.Now().Add(300 * time.Millisecond))
	var frame map[string]interface{}
	assert.Error(t, conn.ReadJSON(&frame))
}
