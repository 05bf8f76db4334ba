package main

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
)

// Minimal built-in client for quick testing; the real frontend is a
// separate app that speaks the same protocol.
const indexHTML = `<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>AI Charades</title>
<style>
  body { font-family: system-ui, -apple-system, BlinkMacSystemFont, "Segoe UI", sans-serif; margin: 2rem; }
  h1 { margin-bottom: 0.5rem; }
  #status { margin-bottom: 1rem; font-size: 0.9rem; }
  #players { padding: 0; list-style: none; }
  #players li { padding: 0.25rem 0; border-bottom: 1px solid #ddd; }
  button { margin-right: 0.5rem; }
</style>
</head>
<body>
<h1>AI Charades</h1>
<div id="status">Connecting…</div>
<div id="controls">
  <button id="create">Create room</button>
  <button id="join">Join room</button>
</div>
<div id="room" hidden>
  <h2 id="code"></h2>
  <ul id="players"></ul>
  <div id="card"></div>
  <button id="correct">Correct</button>
  <button id="pass">Pass</button>
  <button id="next">Next player</button>
</div>

<script>
(function() {
  const statusEl = document.getElementById('status');
  const roomEl = document.getElementById('room');
  const codeEl = document.getElementById('code');
  const playersEl = document.getElementById('players');
  const cardEl = document.getElementById('card');

  let roomCode = '';
  let myName = '';

  const proto = (location.protocol === 'https:') ? 'wss://' : 'ws://';
  const ws = new WebSocket(proto + location.host + '/ws');

  function send(event, data) {
    ws.send(JSON.stringify({ event: event, data: data }));
  }

  function render(room) {
    roomEl.hidden = false;
    codeEl.textContent = 'Room ' + room.id;
    playersEl.innerHTML = '';
    room.players.forEach(function(p, i) {
      const li = document.createElement('li');
      li.textContent = p.name + ': ' + p.score +
        (p.isHost ? ' (host)' : '') +
        (i === room.gameState.currentPlayerIdx && room.gameState.isStarted ? ' ← acting' : '');
      playersEl.appendChild(li);
    });
    const gs = room.gameState;
    if (gs.isStarted && gs.charades.length > 0) {
      cardEl.textContent = 'Card: ' + gs.charades[gs.currentCardIdx].text + ' (' + gs.timer + 's)';
    } else {
      cardEl.textContent = '';
    }
  }

  ws.onopen = function() { statusEl.textContent = 'Connected.'; };
  ws.onclose = function() { statusEl.textContent = 'Disconnected.'; };

  ws.onmessage = function(ev) {
    const msg = JSON.parse(ev.data);
    switch (msg.event) {
      case 'room-created':
        roomCode = msg.data.roomCode;
        statusEl.textContent = 'Share: ' + msg.data.shareUrl;
        render(msg.data.room);
        break;
      case 'player-joined':
      case 'player-rejoined':
      case 'player-left':
      case 'game-started':
      case 'game-state-updated':
        if (msg.data.room) { roomCode = msg.data.room.id; render(msg.data.room); }
        break;
      case 'room-closed':
        roomEl.hidden = true;
        statusEl.textContent = msg.data.message;
        break;
      case 'join-error':
      case 'rejoin-error':
      case 'action-error':
        statusEl.textContent = msg.data.message;
        break;
    }
  };

  document.getElementById('create').onclick = function() {
    myName = prompt('Your name:') || '';
    if (myName) { send('create-room', { hostName: myName }); }
  };
  document.getElementById('join').onclick = function() {
    const code = (prompt('Room code:') || '').toUpperCase();
    myName = prompt('Your name:') || '';
    if (code && myName) { send('join-room', { roomCode: code, playerName: myName }); }
  };
  document.getElementById('correct').onclick = function() {
    send('game-action', { roomCode: roomCode, action: 'correct' });
  };
  document.getElementById('pass').onclick = function() {
    send('game-action', { roomCode: roomCode, action: 'pass' });
  };
  document.getElementById('next').onclick = function() {
    send('game-action', { roomCode: roomCode, action: 'next-player' });
  };
})();
</script>
</body>
</html>
`

func serveHomePage(cfg *Config) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		securityHeaders(cfg, w)

		_, _ = w.Write([]byte(indexHTML))
	}
}
