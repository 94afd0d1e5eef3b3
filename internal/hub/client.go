package hub

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/gorilla/websocket"
	"github.com/shenikar/disaster_alert_system/internal/models"
	"github.com/sirupsen/logrus"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1024
)

// Команды клиента
const (
	CommandSubscribe   = "subscribeToArea"
	CommandUnsubscribe = "unsubscribe"
)

// command - входящее сообщение клиента
type command struct {
	Type     string   `json:"type"`
	Lat      *float64 `json:"lat"`
	Lng      *float64 `json:"lng"`
	RadiusKm *float64 `json:"radiusKm"`
}

// client связывает websocket-соединение с записью в хабе
type client struct {
	hub    *Hub
	conn   *websocket.Conn
	c      *Connection
	logger *logrus.Entry
}

// ServeConn регистрирует соединение в хабе и обслуживает его до отключения
func (h *Hub) ServeConn(conn *websocket.Conn) {
	c := h.Register()
	cl := &client{
		hub:    h,
		conn:   conn,
		c:      c,
		logger: h.logger.WithField("connection_id", c.ID),
	}

	go cl.writePump()
	cl.readPump()
}

// readPump читает команды клиента; при выходе соединение снимается с учета
func (cl *client) readPump() {
	defer func() {
		cl.hub.Unregister(cl.c.ID)
		_ = cl.conn.Close()
	}()

	cl.conn.SetReadLimit(maxMessageSize)
	_ = cl.conn.SetReadDeadline(time.Now().Add(pongWait))
	cl.conn.SetPongHandler(func(string) error {
		return cl.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := cl.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				cl.logger.WithError(err).Warn("Websocket read error")
			}
			return
		}
		cl.handle(raw)
	}
}

func (cl *client) handle(raw []byte) {
	var cmd command
	if err := json.Unmarshal(raw, &cmd); err != nil {
		cl.reply(errorMessage("malformed command"))
		return
	}

	switch cmd.Type {
	case CommandSubscribe:
		if cmd.Lat == nil || cmd.Lng == nil || cmd.RadiusKm == nil {
			cl.reply(errorMessage("lat, lng and radiusKm are required"))
			return
		}
		sub := models.AreaSubscription{Latitude: *cmd.Lat, Longitude: *cmd.Lng, RadiusKm: *cmd.RadiusKm}
		if err := cl.hub.Subscribe(cl.c.ID, sub); err != nil {
			msg := "subscription failed"
			if errors.Is(err, ErrInvalidSubscription) {
				msg = "invalid coordinate or radius"
			}
			cl.reply(errorMessage(msg))
			return
		}
		cl.reply(Message{Event: EventSubscribed, Data: sub})
	case CommandUnsubscribe:
		if err := cl.hub.Unsubscribe(cl.c.ID); err != nil {
			cl.logger.WithError(err).Warn("Unsubscribe failed")
			return
		}
		cl.reply(Message{Event: EventUnsubscribed})
	default:
		cl.reply(errorMessage("unknown command " + cmd.Type))
	}
}

func (cl *client) reply(msg Message) {
	if err := cl.hub.Send(cl.c.ID, msg); err != nil {
		cl.logger.WithError(err).Warn("Failed to queue reply")
	}
}

// writePump передает сообщения из очереди соединения в websocket и шлет ping
func (cl *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = cl.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-cl.c.Send():
			_ = cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = cl.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := cl.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				cl.logger.WithError(err).Warn("Websocket write failed")
				return
			}
		case <-ticker.C:
			_ = cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := cl.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func errorMessage(text string) Message {
	return Message{Event: EventError, Data: map[string]string{"message": text}}
}
