package notify

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/inventar-app/inventar-core/internal/infrastructure/mqtt"
)

// MQTTPublisher is the subset of *mqtt.Client used by MQTTSink.
type MQTTPublisher interface {
	PublishContext(ctx context.Context, topic string, payload []byte, qos byte, retained bool) error
	DefaultQoS() byte
}

// MQTTSink publishes envelopes to inventar/events/<event path>.
type MQTTSink struct {
	client MQTTPublisher
}

// NewMQTTSink creates a sink over an MQTT client.
func NewMQTTSink(client MQTTPublisher) *MQTTSink {
	return &MQTTSink{client: client}
}

// Name implements Sink.
func (s *MQTTSink) Name() string { return "mqtt" }

// Deliver implements Sink.
func (s *MQTTSink) Deliver(ctx context.Context, env Envelope) error {
	body, err := env.JSON()
	if err != nil {
		return err
	}
	return s.client.PublishContext(ctx, mqtt.Topics{}.Event(env.Event), body, s.client.DefaultQoS(), false)
}

// RedisPublisher is the subset of *redis.Client used by RedisSink.
type RedisPublisher interface {
	Channel(event string) string
	Publish(ctx context.Context, channel string, payload []byte) (int64, error)
}

// RedisSink publishes envelopes on a Redis pub/sub channel per event.
type RedisSink struct {
	client RedisPublisher
}

// NewRedisSink creates a sink over a Redis client.
func NewRedisSink(client RedisPublisher) *RedisSink {
	return &RedisSink{client: client}
}

// Name implements Sink.
func (s *RedisSink) Name() string { return "redis" }

// Deliver implements Sink. Zero receivers is not an error.
func (s *RedisSink) Deliver(ctx context.Context, env Envelope) error {
	body, err := env.JSON()
	if err != nil {
		return err
	}
	_, err = s.client.Publish(ctx, s.client.Channel(env.Event), body)
	return err
}

// EventWriter is the subset of *influxdb.Client used by InfluxSink.
type EventWriter interface {
	WriteEvent(event string, tags map[string]string, fields map[string]any, ts time.Time)
	IsConnected() bool
}

// tagKeys are payload keys written as InfluxDB tags; everything else
// becomes a field.
var tagKeys = map[string]bool{
	"device_id":    true,
	"personnel_no": true,
	"event_id":     true,
}

// InfluxSink records each event as one point in the events measurement.
type InfluxSink struct {
	writer EventWriter
}

// NewInfluxSink creates a sink over an InfluxDB client.
func NewInfluxSink(writer EventWriter) *InfluxSink {
	return &InfluxSink{writer: writer}
}

// Name implements Sink.
func (s *InfluxSink) Name() string { return "influxdb" }

// Deliver implements Sink. The write is queued on the client's
// non-blocking write API.
func (s *InfluxSink) Deliver(ctx context.Context, env Envelope) error {
	if !s.writer.IsConnected() {
		return ErrSinkUnavailable
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	tags, fields, err := flatten(env)
	if err != nil {
		return err
	}
	s.writer.WriteEvent(env.Event, tags, fields, env.OccurredAt)
	return nil
}

// number matches the decoder's number type when UseNumber is set.
type number interface {
	Int64() (int64, error)
	Float64() (float64, error)
}

// flatten splits an envelope's payload into InfluxDB tags and fields.
// Null values are skipped and nested values are stored as JSON strings.
func flatten(env Envelope) (map[string]string, map[string]any, error) {
	raw, err := json.Marshal(env.Payload)
	if err != nil {
		return nil, nil, fmt.Errorf("encoding payload: %w", err)
	}

	var values map[string]any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&values); err != nil {
		return nil, nil, fmt.Errorf("payload is not an object: %w", err)
	}

	tags := map[string]string{"event_id": env.ID}
	fields := make(map[string]any, len(values))
	for k, v := range values {
		if v == nil {
			continue
		}
		if tagKeys[k] {
			tags[k] = fmt.Sprint(v)
			continue
		}
		switch x := v.(type) {
		case number:
			if n, err := x.Int64(); err == nil {
				fields[k] = n
			} else if f, err := x.Float64(); err == nil {
				fields[k] = f
			}
		case string, bool:
			fields[k] = x
		default:
			nested, err := json.Marshal(x)
			if err != nil {
				return nil, nil, fmt.Errorf("encoding field %s: %w", k, err)
			}
			fields[k] = string(nested)
		}
	}
	return tags, fields, nil
}
