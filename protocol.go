package main

import (
	"encoding/json"
)

// Wire framing: every websocket message is an event name plus a JSON
// payload. Event names and payload fields match what the web client
// expects.
type clientMessage struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type serverMessage struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

// Client → server payloads

type createRoomData struct {
	HostName string `json:"hostName"`
}

type joinRoomData struct {
	RoomCode   string `json:"roomCode"`
	PlayerName string `json:"playerName"`
}

type roomInfoData struct {
	RoomCode string `json:"roomCode"`
}

type startGameData struct {
	RoomCode string `json:"roomCode"`
	Charades []Card `json:"charades"`
}

type gameActionData struct {
	RoomCode string        `json:"roomCode"`
	Action   string        `json:"action"`
	Payload  actionPayload `json:"payload,omitempty"`
}

type actionPayload struct {
	Timer       int    `json:"timer,omitempty"`
	TimerActive bool   `json:"timerActive,omitempty"`
	Charades    []Card `json:"charades,omitempty"`
}

// Server → client payloads

type connectedData struct {
	ConnectionID string `json:"connectionId"`
}

type roomCreatedData struct {
	RoomCode string `json:"roomCode"`
	ShareURL string `json:"shareUrl"`
	Room     Room   `json:"room"`
}

type playerJoinedData struct {
	Room      Room   `json:"room"`
	NewPlayer Player `json:"newPlayer"`
}

type roomData struct {
	Room Room `json:"room"`
}

type errorData struct {
	Message string `json:"message"`
}
