package hub

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/shenikar/disaster_alert_system/internal/metrics"
	"github.com/shenikar/disaster_alert_system/internal/models"
	"github.com/shenikar/disaster_alert_system/pkg/geo"
	"github.com/sirupsen/logrus"
)

// События, отправляемые клиентам
const (
	EventNewReport     = "newReport"
	EventReportUpdated = "reportUpdated"
	EventSubscribed    = "subscribed"
	EventUnsubscribed  = "unsubscribed"
	EventError         = "error"
)

var (
	// ErrInvalidSubscription - некорректный центр или радиус подписки
	ErrInvalidSubscription = errors.New("invalid area subscription")

	errConnectionClosed = errors.New("connection closed")
	errBufferFull       = errors.New("send buffer full")
)

// Message - конверт сообщения для клиента
type Message struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

// Stats - состояние хаба для health-эндпоинта
type Stats struct {
	Connections       int   `json:"connections"`
	Subscriptions     int   `json:"subscriptions"`
	EventsBroadcast   int64 `json:"events_broadcast"`
	Deliveries        int64 `json:"deliveries"`
	DeliveriesDropped int64 `json:"deliveries_dropped"`
}

// Connection - очередь исходящих сообщений одного живого соединения
type Connection struct {
	ID string

	mu     sync.Mutex
	send   chan []byte
	closed bool
}

// Send возвращает канал исходящих сообщений; канал закрывается при отключении
func (c *Connection) Send() <-chan []byte {
	return c.send
}

// trySend кладет сообщение в буфер без блокировки
func (c *Connection) trySend(msg []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return errConnectionClosed
	}
	select {
	case c.send <- msg:
		return nil
	default:
		return errBufferFull
	}
}

func (c *Connection) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// Hub хранит подписки соединений и рассылает события тем, чья область содержит точку события
type Hub struct {
	mu            sync.RWMutex
	conns         map[string]*Connection
	subscriptions map[string]models.AreaSubscription

	bufferSize int
	logger     *logrus.Logger
	metrics    *metrics.Metrics

	eventsBroadcast   atomic.Int64
	deliveries        atomic.Int64
	deliveriesDropped atomic.Int64
}

// NewHub создает хаб с буфером bufferSize сообщений на соединение
func NewHub(bufferSize int, logger *logrus.Logger, m *metrics.Metrics) *Hub {
	if bufferSize < 1 {
		bufferSize = 1
	}
	return &Hub{
		conns:         make(map[string]*Connection),
		subscriptions: make(map[string]models.AreaSubscription),
		bufferSize:    bufferSize,
		logger:        logger,
		metrics:       m,
	}
}

// Register регистрирует новое соединение без подписки
func (h *Hub) Register() *Connection {
	c := &Connection{
		ID:   uuid.NewString(),
		send: make(chan []byte, h.bufferSize),
	}

	h.mu.Lock()
	h.conns[c.ID] = c
	h.updateGauges()
	h.mu.Unlock()

	h.logger.WithField("connection_id", c.ID).Info("Live connection registered")
	return c
}

// Unregister удаляет соединение и его подписку и закрывает канал отправки
func (h *Hub) Unregister(id string) {
	h.mu.Lock()
	c, ok := h.conns[id]
	if ok {
		delete(h.conns, id)
		delete(h.subscriptions, id)
		h.updateGauges()
	}
	h.mu.Unlock()

	if ok {
		c.close()
		h.logger.WithField("connection_id", id).Info("Live connection unregistered")
	}
}

// Subscribe задает область интереса соединения, заменяя предыдущую
func (h *Hub) Subscribe(id string, sub models.AreaSubscription) error {
	if !geo.ValidCoordinate(sub.Latitude, sub.Longitude) || !(sub.RadiusKm > 0) {
		return fmt.Errorf("hub: %w: lat=%v lng=%v radiusKm=%v", ErrInvalidSubscription, sub.Latitude, sub.Longitude, sub.RadiusKm)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.conns[id]; !ok {
		return fmt.Errorf("hub: subscribe %s: %w", id, models.ErrUnknownConnection)
	}
	h.subscriptions[id] = sub
	h.updateGauges()

	h.logger.WithFields(logrus.Fields{
		"connection_id": id,
		"lat":           sub.Latitude,
		"lng":           sub.Longitude,
		"radius_km":     sub.RadiusKm,
	}).Debug("Area subscription set")
	return nil
}

// Unsubscribe снимает подписку соединения
func (h *Hub) Unsubscribe(id string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.conns[id]; !ok {
		return fmt.Errorf("hub: unsubscribe %s: %w", id, models.ErrUnknownConnection)
	}
	delete(h.subscriptions, id)
	h.updateGauges()
	return nil
}

// Subscription возвращает текущую подписку соединения
func (h *Hub) Subscription(id string) (models.AreaSubscription, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	sub, ok := h.subscriptions[id]
	return sub, ok
}

// Broadcast рассылает событие о сообщении и возвращает число соединений, получивших его.
// Сообщение без координаты получают все соединения
func (h *Hub) Broadcast(event string, report *models.IncidentReport) int {
	log := h.logger.WithFields(logrus.Fields{"component": "hub", "event": event})
	if report == nil {
		log.Warn("Broadcast called without report")
		return 0
	}

	payload, err := json.Marshal(Message{Event: event, Data: report})
	if err != nil {
		log.WithError(err).Error("Failed to marshal broadcast event")
		return 0
	}

	h.eventsBroadcast.Add(1)
	h.metrics.HubEventsBroadcast.WithLabelValues(event).Inc()

	// trySend не блокирует, поэтому рассылка идет под RLock
	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	if report.Location == nil {
		for id, c := range h.conns {
			if h.deliver(log, id, c, payload) {
				delivered++
			}
		}
		log.WithField("delivered", delivered).Warn("Report without coordinate broadcast to every connection")
		return delivered
	}

	lat, lng := report.Location.Latitude, report.Location.Longitude
	for id, sub := range h.subscriptions {
		if !geo.WithinRadius(sub.Latitude, sub.Longitude, sub.RadiusKm, lat, lng) {
			continue
		}
		c, ok := h.conns[id]
		if !ok {
			continue
		}
		if h.deliver(log, id, c, payload) {
			delivered++
		}
	}

	log.WithFields(logrus.Fields{
		"report_id": report.ID,
		"delivered": delivered,
	}).Debug("Event broadcast")
	return delivered
}

// Send отправляет служебное сообщение одному соединению
func (h *Hub) Send(id string, msg Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("hub: marshal message: %w", err)
	}
	h.mu.RLock()
	c, ok := h.conns[id]
	h.mu.RUnlock()
	if !ok {
		return fmt.Errorf("hub: send %s: %w", id, models.ErrUnknownConnection)
	}
	if err := c.trySend(payload); err != nil {
		return fmt.Errorf("hub: send %s: %w", id, err)
	}
	return nil
}

// deliver изолирует ошибку одного соединения от остальной рассылки
func (h *Hub) deliver(log *logrus.Entry, id string, c *Connection, payload []byte) bool {
	if err := c.trySend(payload); err != nil {
		h.deliveriesDropped.Add(1)
		h.metrics.HubDeliveriesDropped.Inc()
		log.WithError(err).WithField("connection_id", id).Warn("Dropped event for connection")
		return false
	}
	h.deliveries.Add(1)
	h.metrics.HubDeliveries.Inc()
	return true
}

// Stats возвращает текущее состояние хаба
func (h *Hub) Stats() Stats {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return Stats{
		Connections:       len(h.conns),
		Subscriptions:     len(h.subscriptions),
		EventsBroadcast:   h.eventsBroadcast.Load(),
		Deliveries:        h.deliveries.Load(),
		DeliveriesDropped: h.deliveriesDropped.Load(),
	}
}

// Close отключает все соединения
func (h *Hub) Close() {
	h.mu.Lock()
	conns := h.conns
	h.conns = make(map[string]*Connection)
	h.subscriptions = make(map[string]models.AreaSubscription)
	h.updateGauges()
	h.mu.Unlock()

	for _, c := range conns {
		c.close()
	}
}

// updateGauges вызывается под h.mu
func (h *Hub) updateGauges() {
	h.metrics.HubConnections.Set(float64(len(h.conns)))
	h.metrics.HubSubscriptions.Set(float64(len(h.subscriptions)))
}
