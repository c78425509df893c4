package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/circle-space/core/internal/models"
	pkgredis "github.com/circle-space/core/internal/pkg/redis"
	"github.com/circle-space/core/internal/pkg/token"
	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
	socketio "github.com/zishang520/socket.io/v2/socket"
	"go.uber.org/zap"
)

const (
	eventAuthError   = "auth_error"
	eventOfflineUser = "offline_user"

	redisChanEvents = "cs:gateway:events"

	redisKeyMaxOnlineCount      = "cs:max_online_count"
	redisKeyMaxOnlineCountTotal = "cs:max_online_count:total"
)

// Message is the envelope used by hub broadcasts and Redis fan-out.
// Origin carries the publishing instance id so an instance skips its own
// messages coming back off the channel.
type Message struct {
	Event   string      `json:"event"`
	Payload interface{} `json:"payload"`
	Origin  string      `json:"origin,omitempty"`
}

// Conn is one authenticated socket.
type Conn struct {
	Socket  *socketio.Socket
	Account *models.AccountModel
}

func (c *Conn) ID() string { return string(c.Socket.Id()) }

// ConnectHook lets other modules attach event handlers to each
// authenticated connection.
type ConnectHook func(conn *Conn)

// Hub owns the socket.io server. Every connection must present a valid
// access token in its handshake before any event handler is attached.
type Hub struct {
	sio      *socketio.Server
	presence *Presence
	sigs     *token.Signatures
	store    token.Store
	rc       *pkgredis.Client
	logger   *zap.Logger

	instanceID string
	broadcast  chan Message

	mu      sync.RWMutex
	sockets map[string]*socketio.Socket

	hooks []ConnectHook
}

func NewHub(sigs *token.Signatures, store token.Store, presence *Presence, rc *pkgredis.Client, logger *zap.Logger) *Hub {
	h := &Hub{
		sio:        socketio.NewServer(nil, nil),
		presence:   presence,
		sigs:       sigs,
		store:      store,
		rc:         rc,
		logger:     logger,
		instanceID: uuid.NewString(),
		broadcast:  make(chan Message, 256),
		sockets:    make(map[string]*socketio.Socket),
	}
	h.registerNamespace()
	return h
}

// OnConnect registers a hook run for every authenticated connection.
// Must be called during wiring, before the hub starts serving.
func (h *Hub) OnConnect(hook ConnectHook) {
	h.hooks = append(h.hooks, hook)
}

// Handler returns the socket.io HTTP handler mounted at /socket.io.
func (h *Hub) Handler() http.Handler {
	return h.sio.ServeHandler(nil)
}

// Run pumps broadcasts and the Redis subscriber until ctx ends.
func (h *Hub) Run(ctx context.Context) {
	go h.subscribeRedis(ctx)

	for {
		select {
		case <-ctx.Done():
			h.sio.Close(nil)
			return

		case msg := <-h.broadcast:
			h.deliver(msg)
			msg.Origin = h.instanceID
			data, err := json.Marshal(msg)
			if err != nil {
				continue
			}
			if err := h.rc.Publish(ctx, redisChanEvents, string(data)); err != nil {
				h.logger.Warn("gateway publish failed", zap.Error(err))
			}
		}
	}
}

func (h *Hub) registerNamespace() {
	ns := h.sio.Of("/", nil)
	_ = ns.On("connection", func(args ...any) {
		client, ok := args[0].(*socketio.Socket)
		if !ok {
			return
		}

		decoded, err := h.sigs.Decode(h.store, extractAuthorization(client), token.TypeAccess)
		if err != nil {
			// The reason stays server-side, same as the HTTP middleware.
			_ = client.Emit(eventAuthError, map[string]interface{}{"message": "invalid credentials"})
			client.Disconnect(true)
			return
		}

		conn := &Conn{Socket: client, Account: decoded.Account}
		sid := conn.ID()

		h.mu.Lock()
		h.sockets[sid] = client
		h.mu.Unlock()
		h.presence.Register(decoded.Account.ID, sid)
		h.recordOnlinePeak()

		for _, hook := range h.hooks {
			hook(conn)
		}

		_ = client.On("disconnect", func(_ ...any) {
			h.mu.Lock()
			delete(h.sockets, sid)
			h.mu.Unlock()
			if h.presence.Deregister(conn.Account.ID, sid) {
				h.Broadcast(eventOfflineUser, map[string]interface{}{"userId": conn.Account.ID})
			}
		})
	})
}

// Broadcast queues an event for every connected client, on this instance
// and its peers.
func (h *Hub) Broadcast(event string, payload interface{}) {
	h.broadcast <- Message{Event: event, Payload: payload}
}

// EmitToAccount sends an event to every live connection of the account
// on this instance.
func (h *Hub) EmitToAccount(accountID, event string, payload interface{}) {
	for _, sid := range h.presence.ConnectionsOf(accountID) {
		h.mu.RLock()
		client := h.sockets[sid]
		h.mu.RUnlock()
		if client == nil {
			continue
		}
		if err := client.Emit(event, payload); err != nil {
			h.logger.Warn("gateway emit failed",
				zap.String("event", event), zap.String("sid", sid), zap.Error(err))
		}
	}
}

func (h *Hub) deliver(msg Message) {
	h.sio.Of("/", nil).Emit(msg.Event, msg.Payload)
}

// subscribeRedis replays broadcasts published by other instances.
func (h *Hub) subscribeRedis(ctx context.Context) {
	pubsub := h.rc.Subscribe(ctx, redisChanEvents)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return

		case redisMsg, ok := <-ch:
			if !ok {
				return
			}
			var msg Message
			if err := json.Unmarshal([]byte(redisMsg.Payload), &msg); err != nil {
				continue
			}
			if msg.Origin == h.instanceID {
				continue
			}
			h.deliver(msg)
		}
	}
}

// recordOnlinePeak keeps per-day peak and cumulative connection counters.
func (h *Hub) recordOnlinePeak() {
	online := h.presence.Count()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	dateKey := shortDateKey(time.Now())

	maxOnline := 0
	current, err := h.rc.Raw().HGet(ctx, redisKeyMaxOnlineCount, dateKey).Result()
	switch {
	case err == nil:
		if parsed, parseErr := strconv.Atoi(strings.TrimSpace(current)); parseErr == nil {
			maxOnline = parsed
		}
	case err == redis.Nil:
		// no-op
	default:
		h.logger.Warn("gateway get max online failed", zap.Error(err))
	}

	if online > maxOnline {
		if err := h.rc.Raw().HSet(ctx, redisKeyMaxOnlineCount, dateKey, online).Err(); err != nil {
			h.logger.Warn("gateway set max online failed", zap.Error(err))
		}
	}
	if err := h.rc.Raw().HIncrBy(ctx, redisKeyMaxOnlineCountTotal, dateKey, 1).Err(); err != nil {
		h.logger.Warn("gateway incr online total failed", zap.Error(err))
	}
}

func shortDateKey(t time.Time) string {
	return t.Format("1-2-06")
}

func extractAuthorization(client *socketio.Socket) string {
	handshake := client.Handshake()
	if handshake == nil {
		return ""
	}
	if v := firstValueFromMultiMap(handshake.Headers, "authorization"); v != "" {
		return v
	}
	return firstValueFromMultiMap(handshake.Query, "authorization")
}

func firstValueFromMultiMap(values map[string][]string, key string) string {
	if len(values) == 0 {
		return ""
	}
	for k, list := range values {
		if !strings.EqualFold(strings.TrimSpace(k), key) || len(list) == 0 {
			continue
		}
		v := strings.TrimSpace(list[0])
		if v != "" {
			return v
		}
	}
	return ""
}
