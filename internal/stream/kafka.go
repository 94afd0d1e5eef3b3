package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/shenikar/disaster_alert_system/internal/models"
	"github.com/sirupsen/logrus"
)

const (
	// publishTimeout ограничивает публикацию, вызываемую из обработки запроса
	publishTimeout = 2 * time.Second
	maxAttempts    = 3
)

// messageWriter - часть kafkago.Writer, нужная для публикации
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// ReportMessage - значение сообщения в топике
type ReportMessage struct {
	Event     string                 `json:"event"`
	Report    *models.IncidentReport `json:"report"`
	EmittedAt time.Time              `json:"emitted_at"`
}

// Writer публикует события жизненного цикла сообщений в Kafka
type Writer struct {
	writer  messageWriter
	timeout time.Duration
	logger  *logrus.Logger
}

// NewWriter создает продюсер для топика событий
func NewWriter(brokers []string, topic string, logger *logrus.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
		BatchTimeout: 10 * time.Millisecond,
		MaxAttempts:  maxAttempts,
		WriteTimeout: publishTimeout,
	}
	return &Writer{writer: w, timeout: publishTimeout, logger: logger}
}

// PublishReport отправляет событие; ключ - id сообщения, чтобы события одного сообщения шли в одну партицию
func (w *Writer) PublishReport(ctx context.Context, event string, report *models.IncidentReport) error {
	msg, err := serializeToMessage(event, report, time.Now().UTC())
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()
	if err := w.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("stream: write %s for report %s: %w", event, report.ID, err)
	}
	w.logger.WithFields(logrus.Fields{
		"component": "stream",
		"event":     event,
		"report_id": report.ID,
	}).Debug("Report event published")
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

func serializeToMessage(event string, report *models.IncidentReport, emittedAt time.Time) (kafkago.Message, error) {
	data, err := json.Marshal(ReportMessage{Event: event, Report: report, EmittedAt: emittedAt})
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("stream: serialize report event: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(report.ID.String()),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "event_type", Value: []byte(event)},
			{Key: "priority", Value: []byte(report.Priority)},
			{Key: "emitted_at", Value: []byte(emittedAt.Format(time.RFC3339))},
		},
	}, nil
}
