package chat

import (
	"encoding/json"
	"fmt"

	"github.com/circle-space/core/internal/modules/gateway"
	socketio "github.com/zishang520/socket.io/v2/socket"
	"go.uber.org/zap"
)

// Socket events.
const (
	eventSayHi            = "say_hi"
	eventSendMessage      = "send_message"
	eventJoinRoom         = "join_room"
	eventSendGroupMessage = "send_group_message"
	eventSuccessMessage   = "successMessage"
	eventNewMessage       = "newMessage"
	eventJoinedRoom       = "joined_room"
	eventCustomError      = "custom_error"
)

type accountEmitter interface {
	EmitToAccount(accountID, event string, payload interface{})
}

// Sockets binds the chat event handlers onto authenticated gateway
// connections. Every handler failure goes back as custom_error to the
// originating socket only; nothing leaks to other clients.
type Sockets struct {
	svc     *Service
	emitter accountEmitter
	logger  *zap.Logger
}

func NewSockets(svc *Service, emitter accountEmitter, logger *zap.Logger) *Sockets {
	return &Sockets{svc: svc, emitter: emitter, logger: logger}
}

// Attach is the gateway connect hook.
func (s *Sockets) Attach(conn *gateway.Conn) {
	client := conn.Socket
	account := conn.Account

	_ = client.On(eventSayHi, func(_ ...any) {
		_ = client.Emit(eventSayHi, fmt.Sprintf("hi %s, welcome back", account.FullName()))
	})

	_ = client.On(eventSendMessage, func(args ...any) {
		var payload privateMessagePayload
		if !decodePayload(args, &payload) {
			s.fail(client, errEmptyMessage)
			return
		}
		msg, chat, err := s.svc.SendPrivateMessage(account, payload.SendTo, payload.Content)
		if err != nil {
			s.fail(client, err)
			return
		}
		s.emitter.EmitToAccount(account.ID, eventSuccessMessage, msg)
		s.emitter.EmitToAccount(payload.SendTo, eventNewMessage, map[string]interface{}{
			"chatId":  chat.ID,
			"message": msg,
		})
	})

	_ = client.On(eventJoinRoom, func(args ...any) {
		var payload joinRoomPayload
		if !decodePayload(args, &payload) {
			s.fail(client, errChatNotFound)
			return
		}
		if _, err := s.svc.CanJoin(account, payload.RoomID); err != nil {
			s.fail(client, err)
			return
		}
		client.Join(socketio.Room(payload.RoomID))
		_ = client.Emit(eventJoinedRoom, map[string]interface{}{"roomId": payload.RoomID})
	})

	_ = client.On(eventSendGroupMessage, func(args ...any) {
		var payload groupMessagePayload
		if !decodePayload(args, &payload) {
			s.fail(client, errEmptyMessage)
			return
		}
		msg, chat, err := s.svc.SendGroupMessage(account, payload.RoomID, payload.Content)
		if err != nil {
			s.fail(client, err)
			return
		}
		s.emitter.EmitToAccount(account.ID, eventSuccessMessage, msg)
		_ = client.To(socketio.Room(chat.RoomID)).Emit(eventNewMessage, map[string]interface{}{
			"roomId":  chat.RoomID,
			"message": msg,
		})
	})
}

func (s *Sockets) fail(client *socketio.Socket, err error) {
	_ = client.Emit(eventCustomError, map[string]interface{}{"message": err.Error()})
}

// decodePayload normalizes whatever shape the client sent the event
// argument in onto the target struct.
func decodePayload(args []any, v interface{}) bool {
	if len(args) == 0 || args[0] == nil {
		return false
	}
	switch raw := args[0].(type) {
	case string:
		return json.Unmarshal([]byte(raw), v) == nil
	case []byte:
		return json.Unmarshal(raw, v) == nil
	default:
		data, err := json.Marshal(raw)
		if err != nil {
			return false
		}
		return json.Unmarshal(data, v) == nil
	}
}
