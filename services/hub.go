package services

import (
	"encoding/json"
	"errors"
	"sync"

	"imposter/models"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Hub is the session gateway: it owns every websocket connection,
// decodes inbound action messages, dispatches them to the game
// service, and fans resulting state back out. It implements
// RoomNotifier, so every broadcast is enqueued while the room lock is
// still held and connections observe states in commit order.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex

	game   *GameService
	logger *zap.Logger
}

// Client is one websocket connection. roomCode and playerID are set
// once the connection binds to a room via create/join/reconnect and
// are guarded by the hub's mutex.
type Client struct {
	hub      *Hub
	id       string
	socket   *websocket.Conn
	send     chan []byte
	limiter  *rate.Limiter
	roomCode string
	playerID string
}

// Message is the wire envelope in both directions.
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type outMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

type createRoomPayload struct {
	PlayerName string `json:"playerName"`
}

type joinRoomPayload struct {
	RoomCode   string `json:"roomCode"`
	PlayerName string `json:"playerName"`
}

type reconnectPayload struct {
	RoomCode string `json:"roomCode"`
	PlayerID string `json:"playerId"`
}

type castVotePayload struct {
	TargetID string `json:"targetId"`
}

type kickPlayerPayload struct {
	PlayerID string `json:"playerId"`
}

func NewHub(game *GameService, logger *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		game:       game,
		logger:     logger,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			h.logger.Debug("client registered", zap.String("client", client.id))

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			h.logger.Debug("client unregistered", zap.String("client", client.id))
		}
	}
}

// RegisterClient wraps an upgraded connection and starts its pumps.
// The connection stays unbound until its first successful create, join
// or reconnect action.
func (h *Hub) RegisterClient(conn *websocket.Conn) *Client {
	client := &Client{
		hub:     h,
		id:      uuid.NewString(),
		socket:  conn,
		send:    make(chan []byte, 64),
		limiter: rate.NewLimiter(10, 20),
	}

	h.register <- client

	go client.writePump()
	go client.readPump()

	return client
}

// RoomUpdated implements RoomNotifier. Called with the room lock held;
// each bound member gets their own projection. A member whose send
// buffer is full is skipped, never waited on.
func (h *Hub) RoomUpdated(room *models.Room) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients {
		if client.roomCode != room.Code {
			continue
		}
		view := models.NewRoomView(room, client.playerID)
		client.enqueue(outMessage{Type: "room-updated", Payload: view})
	}
}

// RoomEnded implements RoomNotifier: notify every member, then unbind
// them so a dead room stops producing traffic.
func (h *Hub) RoomEnded(room *models.Room, reason string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		if client.roomCode != room.Code {
			continue
		}
		client.enqueue(outMessage{
			Type:    "room-ended",
			Payload: map[string]string{"message": reason},
		})
		client.roomCode = ""
		client.playerID = ""
	}
}

// PlayerKicked implements RoomNotifier: a targeted notice to the one
// removed player, who is then unbound.
func (h *Hub) PlayerKicked(room *models.Room, player *models.Player) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		if client.roomCode != room.Code || client.playerID != player.ID {
			continue
		}
		client.enqueue(outMessage{Type: "kicked"})
		client.roomCode = ""
		client.playerID = ""
	}
}

func (h *Hub) bind(c *Client, roomCode, playerID string) {
	h.mu.Lock()
	c.roomCode = roomCode
	c.playerID = playerID
	h.mu.Unlock()
}

func (h *Hub) binding(c *Client) (string, string) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return c.roomCode, c.playerID
}

func (c *Client) enqueue(msg outMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		c.hub.logger.Error("marshal outbound message", zap.Error(err))
		return
	}
	select {
	case c.send <- data:
	default:
		// Client cannot keep up; drop rather than stall the room.
	}
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.socket.Close()
	}()

	for {
		_, data, err := c.socket.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Debug("websocket read error", zap.Error(err))
			}
			break
		}

		if !c.limiter.Allow() {
			continue
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			c.sendError(errors.New("malformed message"))
			continue
		}

		c.handleMessage(msg)
	}
}

func (c *Client) writePump() {
	defer c.socket.Close()

	for message := range c.send {
		w, err := c.socket.NextWriter(websocket.TextMessage)
		if err != nil {
			return
		}
		w.Write(message)
		if err := w.Close(); err != nil {
			return
		}
	}
	c.socket.WriteMessage(websocket.CloseMessage, []byte{})
}

// handleMessage dispatches one inbound action. Unknown or malformed
// actions answer this connection only; they never touch room state.
func (c *Client) handleMessage(msg Message) {
	game := c.hub.game

	switch msg.Type {
	case "ping":
		c.enqueue(outMessage{Type: "pong"})

	case "create-room":
		var p createRoomPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil || p.PlayerName == "" {
			c.sendError(errors.New("player name required"))
			return
		}
		room, player, err := game.CreateRoom(p.PlayerName)
		if err != nil {
			c.sendError(err)
			return
		}
		c.hub.bind(c, room.Code, player.ID)
		c.sendRoomAndPlayer("room-created", room, player)

	case "join-room":
		var p joinRoomPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil || p.PlayerName == "" {
			c.sendError(errors.New("room code and player name required"))
			return
		}
		room, player, err := game.JoinRoom(p.RoomCode, p.PlayerName)
		if err != nil {
			c.sendError(err)
			return
		}
		c.hub.bind(c, room.Code, player.ID)
		c.sendRoomAndPlayer("room-joined", room, player)

	case "reconnect":
		var p reconnectPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			c.sendError(errors.New("room code and player id required"))
			return
		}
		room, player, err := game.Reconnect(p.RoomCode, p.PlayerID)
		if err != nil {
			c.enqueue(outMessage{Type: "reconnect-failed"})
			return
		}
		c.hub.bind(c, room.Code, player.ID)
		c.sendRoomAndPlayer("reconnected", room, player)

	case "get-room":
		roomCode, playerID := c.hub.binding(c)
		room, player, err := game.Reconnect(roomCode, playerID)
		if err != nil {
			c.sendError(err)
			return
		}
		c.sendRoomAndPlayer("room-state", room, player)

	case "start-game":
		c.dispatch(func(roomCode, playerID string) error {
			_, err := game.StartRound(roomCode, playerID)
			return err
		})

	case "confirm-role":
		c.dispatch(func(roomCode, playerID string) error {
			_, err := game.ConfirmRole(roomCode, playerID)
			return err
		})

	case "start-discussion":
		c.dispatch(func(roomCode, playerID string) error {
			_, err := game.StartDiscussion(roomCode, playerID)
			return err
		})

	case "finish-turn":
		c.dispatch(func(roomCode, playerID string) error {
			_, err := game.FinishTurn(roomCode, playerID)
			return err
		})

	case "cast-vote":
		var p castVotePayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			c.sendError(errors.New("vote target required"))
			return
		}
		c.dispatch(func(roomCode, playerID string) error {
			_, err := game.CastVote(roomCode, playerID, p.TargetID)
			return err
		})

	case "next-phase":
		c.dispatch(func(roomCode, playerID string) error {
			_, err := game.AdvancePhase(roomCode, playerID)
			return err
		})

	case "kick-player":
		var p kickPlayerPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			c.sendError(errors.New("player id required"))
			return
		}
		c.dispatch(func(roomCode, playerID string) error {
			_, err := game.KickPlayer(roomCode, playerID, p.PlayerID)
			return err
		})

	case "end-game":
		c.dispatch(func(roomCode, playerID string) error {
			return game.EndGame(roomCode, playerID)
		})

	default:
		c.hub.logger.Debug("unknown message type",
			zap.String("type", msg.Type),
			zap.String("client", c.id),
		)
		c.sendError(errors.New("unknown action"))
	}
}

// dispatch runs an in-room action with the connection's binding.
// Resulting state reaches members through the notifier path; only
// failures come back on this connection.
func (c *Client) dispatch(fn func(roomCode, playerID string) error) {
	roomCode, playerID := c.hub.binding(c)
	if roomCode == "" || playerID == "" {
		c.sendError(models.ErrRoomNotFound)
		return
	}
	if err := fn(roomCode, playerID); err != nil {
		c.sendError(err)
	}
}

func (c *Client) sendRoomAndPlayer(msgType string, room *models.Room, player *models.Player) {
	room.RLock()
	view := models.NewRoomView(room, player.ID)
	room.RUnlock()

	c.enqueue(outMessage{
		Type: msgType,
		Payload: map[string]any{
			"roomCode": view.Code,
			"room":     view,
			"playerId": player.ID,
		},
	})
}

func (c *Client) sendError(err error) {
	c.enqueue(outMessage{
		Type: "error",
		Payload: map[string]string{
			"code":    errorCode(err),
			"message": err.Error(),
		},
	})
}

func errorCode(err error) string {
	switch {
	case errors.Is(err, models.ErrRoomNotFound), errors.Is(err, models.ErrPlayerNotFound):
		return "NOT_FOUND"
	case errors.Is(err, models.ErrUnauthorized):
		return "UNAUTHORIZED"
	case errors.Is(err, models.ErrRoomFull):
		return "FULL"
	case errors.Is(err, models.ErrNameTaken):
		return "NAME_CONFLICT"
	case errors.Is(err, models.ErrInvalidPhase), errors.Is(err, models.ErrSelfVote):
		return "INVALID_TRANSITION"
	case errors.Is(err, models.ErrNotEnoughPlayers):
		return "NOT_ENOUGH_PLAYERS"
	default:
		return "ERROR"
	}
}
