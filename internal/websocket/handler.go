package websocket

import (
	"github.com/gofiber/websocket/v2"
)

// ServeWs attaches an upgraded websocket connection to the hub as a watcher
// of the given session.
func ServeWs(hub *Hub, c *websocket.Conn, sessionID string) {
	client := &Client{Hub: hub, Conn: c, SessionID: sessionID, Send: make(chan []byte, 256)}
	client.Hub.register <- client

	go client.writePump()
	client.readPump() // Run readPump in current goroutine (handler)
}
