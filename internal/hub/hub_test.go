package hub

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/shenikar/disaster_alert_system/internal/metrics"
	"github.com/shenikar/disaster_alert_system/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHub(t *testing.T, buffer int) (*Hub, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&buf)
	logger.SetLevel(logrus.DebugLevel)
	return NewHub(buffer, logger, metrics.NewMetricsForTesting()), &buf
}

func reportAt(lat, lng float64) *models.IncidentReport {
	return &models.IncidentReport{
		ID:           uuid.New(),
		IncidentType: models.IncidentFlood,
		Location:     &models.Location{Latitude: lat, Longitude: lng},
	}
}

func drain(c *Connection) []Message {
	var out []Message
	for {
		select {
		case raw, ok := <-c.Send():
			if !ok {
				return out
			}
			var m Message
			if err := json.Unmarshal(raw, &m); err == nil {
				out = append(out, m)
			}
		default:
			return out
		}
	}
}

func TestBroadcast_DeliversOnlyInsideRadius(t *testing.T) {
	// Подготовка
	h, _ := newTestHub(t, 8)
	c := h.Register()
	require.NoError(t, h.Subscribe(c.ID, models.AreaSubscription{Latitude: 0, Longitude: 0, RadiusKm: 10}))

	// Действие: ~5.6 км и ~55.6 км от центра
	near := h.Broadcast(EventNewReport, reportAt(0, 0.05))
	far := h.Broadcast(EventNewReport, reportAt(0, 0.5))

	// Проверки
	assert.Equal(t, 1, near)
	assert.Equal(t, 0, far)
	msgs := drain(c)
	require.Len(t, msgs, 1)
	assert.Equal(t, EventNewReport, msgs[0].Event)
}

func TestBroadcast_ReportWithoutLocationReachesEveryone(t *testing.T) {
	h, logs := newTestHub(t, 8)
	subscribed := h.Register()
	require.NoError(t, h.Subscribe(subscribed.ID, models.AreaSubscription{Latitude: 10, Longitude: 10, RadiusKm: 1}))
	bare := h.Register()

	n := h.Broadcast(EventNewReport, &models.IncidentReport{ID: uuid.New()})

	assert.Equal(t, 2, n)
	assert.Len(t, drain(subscribed), 1)
	assert.Len(t, drain(bare), 1)
	assert.Contains(t, logs.String(), "without coordinate")
}

func TestBroadcast_UnsubscribedConnectionGetsNothing(t *testing.T) {
	h, _ := newTestHub(t, 8)
	c := h.Register()
	require.NoError(t, h.Subscribe(c.ID, models.AreaSubscription{Latitude: 0, Longitude: 0, RadiusKm: 50}))
	require.NoError(t, h.Unsubscribe(c.ID))

	n := h.Broadcast(EventNewReport, reportAt(0, 0))

	assert.Equal(t, 0, n)
	assert.Empty(t, drain(c))
	_, ok := h.Subscription(c.ID)
	assert.False(t, ok)
}

func TestSubscribe_ReplacesPreviousArea(t *testing.T) {
	h, _ := newTestHub(t, 8)
	c := h.Register()
	require.NoError(t, h.Subscribe(c.ID, models.AreaSubscription{Latitude: 0, Longitude: 0, RadiusKm: 10}))
	require.NoError(t, h.Subscribe(c.ID, models.AreaSubscription{Latitude: 50, Longitude: 50, RadiusKm: 10}))

	assert.Equal(t, 0, h.Broadcast(EventNewReport, reportAt(0, 0)))
	assert.Equal(t, 1, h.Broadcast(EventNewReport, reportAt(50, 50)))
	assert.Equal(t, 1, h.Stats().Subscriptions)
}

func TestSubscribe_Validation(t *testing.T) {
	h, _ := newTestHub(t, 8)
	c := h.Register()

	tests := []struct {
		name string
		sub  models.AreaSubscription
	}{
		{"zero radius", models.AreaSubscription{Latitude: 0, Longitude: 0, RadiusKm: 0}},
		{"negative radius", models.AreaSubscription{Latitude: 0, Longitude: 0, RadiusKm: -1}},
		{"bad latitude", models.AreaSubscription{Latitude: 91, Longitude: 0, RadiusKm: 5}},
		{"bad longitude", models.AreaSubscription{Latitude: 0, Longitude: 181, RadiusKm: 5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, h.Subscribe(c.ID, tt.sub), ErrInvalidSubscription)
		})
	}

	err := h.Subscribe("missing", models.AreaSubscription{Latitude: 0, Longitude: 0, RadiusKm: 5})
	assert.ErrorIs(t, err, models.ErrUnknownConnection)
	assert.ErrorIs(t, h.Unsubscribe("missing"), models.ErrUnknownConnection)
}

func TestUnregister_StopsDeliveryAndClosesChannel(t *testing.T) {
	h, _ := newTestHub(t, 8)
	c := h.Register()
	require.NoError(t, h.Subscribe(c.ID, models.AreaSubscription{Latitude: 0, Longitude: 0, RadiusKm: 10}))

	h.Unregister(c.ID)
	h.Unregister(c.ID)

	assert.Equal(t, 0, h.Broadcast(EventNewReport, reportAt(0, 0)))
	_, open := <-c.Send()
	assert.False(t, open)
	assert.Equal(t, Stats{EventsBroadcast: 1}, h.Stats())
}

func TestBroadcast_FullBufferDropsWithoutBlocking(t *testing.T) {
	// Подготовка: буфер на одно сообщение
	h, logs := newTestHub(t, 1)
	slow := h.Register()
	fast := h.Register()
	area := models.AreaSubscription{Latitude: 0, Longitude: 0, RadiusKm: 10}
	require.NoError(t, h.Subscribe(slow.ID, area))
	require.NoError(t, h.Subscribe(fast.ID, area))

	// Действие
	first := h.Broadcast(EventNewReport, reportAt(0, 0))
	drain(fast)
	second := h.Broadcast(EventReportUpdated, reportAt(0, 0))

	// Проверки
	assert.Equal(t, 2, first)
	assert.Equal(t, 1, second)
	stats := h.Stats()
	assert.Equal(t, int64(3), stats.Deliveries)
	assert.Equal(t, int64(1), stats.DeliveriesDropped)
	assert.Equal(t, 2, stats.Connections)
	assert.Contains(t, logs.String(), "Dropped event for connection")

	msgs := drain(fast)
	require.Len(t, msgs, 1)
	assert.Equal(t, EventReportUpdated, msgs[0].Event)
}

func TestSend_UnknownConnection(t *testing.T) {
	h, _ := newTestHub(t, 1)

	err := h.Send("missing", Message{Event: EventSubscribed})

	assert.ErrorIs(t, err, models.ErrUnknownConnection)
}

func TestClose_DisconnectsAll(t *testing.T) {
	h, _ := newTestHub(t, 4)
	a := h.Register()
	b := h.Register()

	h.Close()

	_, openA := <-a.Send()
	_, openB := <-b.Send()
	assert.False(t, openA)
	assert.False(t, openB)
	assert.Equal(t, 0, h.Stats().Connections)
}
