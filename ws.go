package main

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Client is one websocket connection. The connection id is ephemeral:
// a new one is assigned on every connect, and seats are reclaimed by
// name via rejoin-room.
type Client struct {
	conn   *websocket.Conn
	send   chan serverMessage
	id     string
	scheme string
	host   string
}

func newConnectionID() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		log.Println("rand.Read error:", err)
		return ""
	}
	return hex.EncodeToString(buf)
}

// requestScheme derives the external scheme, respecting TLS and
// X-Forwarded-Proto.
func requestScheme(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	return scheme
}

func serveWS(cfg *Config, reg *Registry, tracker *Tracker) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		connID := newConnectionID()
		if connID == "" {
			http.Error(w, "unable to assign connection id", http.StatusInternalServerError)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Println("upgrade error:", err)
			return
		}

		client := &Client{
			conn:   conn,
			send:   make(chan serverMessage, 8),
			id:     connID,
			scheme: requestScheme(r),
			host:   r.Host,
		}

		client.send <- serverMessage{Event: "connected", Data: connectedData{ConnectionID: connID}}

		go client.writePump()
		client.readPump(cfg, reg, tracker)
	}
}

func (c *Client) readPump(cfg *Config, reg *Registry, tracker *Tracker) {
	defer func() {
		tracker.handleDisconnect(c.id)
		reg.unsubscribeAll(c)
		_ = c.conn.Close()
		// No subscriber set references this client anymore, so nothing
		// can send here.
		close(c.send)
	}()

	for {
		var msg clientMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			return
		}

		c.dispatch(cfg, reg, tracker, msg)
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()

	for msg := range c.send {
		if err := c.conn.WriteJSON(msg); err != nil {
			return
		}
	}
}

// reply sends a point-to-point message to this client only. Mutation
// failures are never broadcast.
func (c *Client) reply(event string, data any) {
	select {
	case c.send <- serverMessage{Event: event, Data: data}:
	default:
	}
}

func (c *Client) dispatch(cfg *Config, reg *Registry, tracker *Tracker, msg clientMessage) {
	switch msg.Event {
	case "create-room":
		var data createRoomData
		if err := json.Unmarshal(msg.Data, &data); err != nil || data.HostName == "" {
			c.reply("create-error", errorData{Message: "invalid create-room payload"})
			return
		}

		room := reg.createRoom(c.id, data.HostName)
		room.subscribe(c)

		room.mu.Lock()
		snap := room.snapshotLocked()
		room.mu.Unlock()

		c.reply("room-created", roomCreatedData{
			RoomCode: room.ID,
			ShareURL: shareURL(cfg, c.scheme, c.host, room.ID),
			Room:     snap,
		})

	case "join-room":
		var data joinRoomData
		if err := json.Unmarshal(msg.Data, &data); err != nil || data.RoomCode == "" || data.PlayerName == "" {
			c.reply("join-error", errorData{Message: "invalid join-room payload"})
			return
		}

		room, ok := reg.getRoom(data.RoomCode)
		if !ok {
			c.reply("join-error", errorData{Message: "Room not found"})
			return
		}

		// Subscribe before the join broadcast so the joining client
		// receives its own player-joined event, like everyone else.
		room.subscribe(c)

		if _, _, err := tracker.joinRoom(data.RoomCode, c.id, data.PlayerName); err != nil {
			room.unsubscribe(c)
			c.reply("join-error", errorData{Message: err.Error()})
			return
		}

	case "rejoin-room":
		var data joinRoomData
		if err := json.Unmarshal(msg.Data, &data); err != nil || data.RoomCode == "" {
			c.reply("rejoin-error", errorData{Message: "invalid rejoin-room payload"})
			return
		}

		room, ok := reg.getRoom(data.RoomCode)
		if !ok {
			c.reply("rejoin-error", errorData{Message: "Room not found"})
			return
		}

		room.subscribe(c)

		if _, err := tracker.rejoinRoom(data.RoomCode, c.id, data.PlayerName); err != nil {
			room.unsubscribe(c)
			c.reply("rejoin-error", errorData{Message: err.Error()})
			return
		}

		c.reply("rejoin-success", struct{}{})

	case "get-room-info":
		var data roomInfoData
		if err := json.Unmarshal(msg.Data, &data); err != nil || data.RoomCode == "" {
			c.reply("room-not-found", struct{}{})
			return
		}

		room, ok := reg.getRoom(data.RoomCode)
		if !ok {
			c.reply("room-not-found", struct{}{})
			return
		}

		room.mu.Lock()
		snap := room.snapshotLocked()
		room.mu.Unlock()

		c.reply("room-info", roomData{Room: snap})

	case "start-game":
		var data startGameData
		if err := json.Unmarshal(msg.Data, &data); err != nil || data.RoomCode == "" {
			c.reply("action-error", errorData{Message: "invalid start-game payload"})
			return
		}

		room, ok := reg.getRoom(data.RoomCode)
		if !ok {
			c.reply("action-error", errorData{Message: "Room not found"})
			return
		}

		room.mu.Lock()
		applied, err := applyActionLocked(cfg, room, c.id, actionStartGame, actionPayload{Charades: data.Charades})
		if applied {
			logf(cfg, "GAMES: Started game in %s with %d cards", room.ID, len(data.Charades))
			room.broadcastLocked("game-started", roomData{Room: room.snapshotLocked()})
		}
		room.mu.Unlock()

		if err != nil {
			c.reply("action-error", errorData{Message: err.Error()})
		}

	case "game-action":
		var data gameActionData
		if err := json.Unmarshal(msg.Data, &data); err != nil || data.RoomCode == "" {
			c.reply("action-error", errorData{Message: "invalid game-action payload"})
			return
		}

		room, ok := reg.getRoom(data.RoomCode)
		if !ok {
			c.reply("action-error", errorData{Message: "Room not found"})
			return
		}

		room.mu.Lock()
		applied, err := applyActionLocked(cfg, room, c.id, data.Action, data.Payload)
		if applied {
			room.broadcastLocked("game-state-updated", roomData{Room: room.snapshotLocked()})
		}
		room.mu.Unlock()

		if err != nil {
			c.reply("action-error", errorData{Message: err.Error()})
		}

	case "leave-room":
		var data roomInfoData
		if err := json.Unmarshal(msg.Data, &data); err != nil || data.RoomCode == "" {
			return
		}

		if room, ok := reg.getRoom(data.RoomCode); ok {
			room.unsubscribe(c)
		}
		tracker.leaveRoom(data.RoomCode, c.id)

	default:
		// ignore unknown types
	}
}
