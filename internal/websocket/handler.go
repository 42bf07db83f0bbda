package websocket

import (
	"github.com/gofiber/websocket/v2"
)

// ServeWs attaches conn to tabID and blocks until the socket closes. The
// initial frames are written before any hub traffic.
func ServeWs(hub *Hub, c *websocket.Conn, tabID string, initial ...[]byte) {
	client := &Client{Hub: hub, Conn: c, TabID: tabID, Send: make(chan []byte, sendBuffer)}
	for _, frame := range initial {
		if frame != nil && len(client.Send) < sendBuffer {
			client.Send <- frame
		}
	}
	if !hub.join(client) {
		c.Close()
		return
	}

	go client.writePump()
	client.readPump()
}
