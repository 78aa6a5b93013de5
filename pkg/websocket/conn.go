// Package websocket streams receiver events to websocket clients.
package websocket

import "golang.org/x/net/websocket"

// Conn exchanges whole binary packets over a websocket.
type Conn websocket.Conn

// New wraps websocket.Conn.
func New(conn *websocket.Conn) *Conn {
	return (*Conn)(conn)
}

// Dial connects to a packet stream, e.g. ws://host:8080/packets.
func Dial(url string) (*Conn, error) {
	conn, err := websocket.Dial(url, "", "http://localhost/")
	if err != nil {
		return nil, err
	}
	return New(conn), nil
}

// ReadPacket reads one packet.
func (c *Conn) ReadPacket() (pkt []byte, err error) {
	err = websocket.Message.Receive((*websocket.Conn)(c), &pkt)
	return
}

// WritePacket writes one packet.
func (c *Conn) WritePacket(pkt []byte) error {
	return websocket.Message.Send((*websocket.Conn)(c), pkt)
}

// Close implements io.Closer.
func (c *Conn) Close() error {
	return (*websocket.Conn)(c).Close()
}
