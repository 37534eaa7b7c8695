package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/inventar-app/inventar-core/internal/inventory"
)

type fakeMQTT struct {
	topic   string
	payload []byte
	qos     byte
	err     error
}

func (f *fakeMQTT) PublishContext(_ context.Context, topic string, payload []byte, qos byte, _ bool) error {
	f.topic, f.payload, f.qos = topic, payload, qos
	return f.err
}

func (f *fakeMQTT) DefaultQoS() byte { return 1 }

type fakeRedis struct {
	channel string
	payload []byte
}

func (f *fakeRedis) Channel(event string) string { return "inventar:" + event }

func (f *fakeRedis) Publish(_ context.Context, channel string, payload []byte) (int64, error) {
	f.channel, f.payload = channel, payload
	return 0, nil
}

type fakeInflux struct {
	connected bool
	event     string
	tags      map[string]string
	fields    map[string]any
	ts        time.Time
}

func (f *fakeInflux) WriteEvent(event string, tags map[string]string, fields map[string]any, ts time.Time) {
	f.event, f.tags, f.fields, f.ts = event, tags, fields, ts
}

func (f *fakeInflux) IsConnected() bool { return f.connected }

var issuedAt = time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)

func issuedEnvelope(t *testing.T) Envelope {
	t.Helper()
	env, err := NewEnvelope(inventory.TopicAssignmentIssued, inventory.IssuedEvent{
		AssignmentID: 12,
		DeviceID:     4,
		PersonnelNo:  7,
		AssignedFrom: issuedAt,
	}, issuedAt)
	if err != nil {
		t.Fatalf("NewEnvelope() error = %v", err)
	}
	return env
}

func TestEnvelope_JSON(t *testing.T) {
	env := issuedEnvelope(t)
	raw, err := env.JSON()
	if err != nil {
		t.Fatalf("JSON() error = %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, key := range []string{"event_id", "event", "occurred_at", "payload"} {
		if _, ok := decoded[key]; !ok {
			t.Errorf("envelope missing %q: %s", key, raw)
		}
	}
	if decoded["event"] != "assignment.issued" {
		t.Errorf("event = %v", decoded["event"])
	}
	payload, _ := decoded["payload"].(map[string]any)
	if payload["personnel_no"] != float64(7) {
		t.Errorf("payload.personnel_no = %v", payload["personnel_no"])
	}
}

func TestMQTTSink_Deliver(t *testing.T) {
	client := &fakeMQTT{}
	sink := NewMQTTSink(client)
	env := issuedEnvelope(t)

	if err := sink.Deliver(context.Background(), env); err != nil {
		t.Fatalf("Deliver() error = %v", err)
	}
	if client.topic != "inventar/events/assignment/issued" {
		t.Errorf("topic = %q", client.topic)
	}
	if client.qos != 1 {
		t.Errorf("qos = %d, want client default", client.qos)
	}
	want, _ := env.JSON()
	if string(client.payload) != string(want) {
		t.Errorf("payload = %s, want %s", client.payload, want)
	}

	client.err = errors.New("not connected")
	if err := sink.Deliver(context.Background(), env); err == nil {
		t.Error("Deliver() should surface the client error")
	}
}

func TestRedisSink_Deliver(t *testing.T) {
	client := &fakeRedis{}
	sink := NewRedisSink(client)

	if err := sink.Deliver(context.Background(), issuedEnvelope(t)); err != nil {
		t.Fatalf("Deliver() error = %v", err)
	}
	if client.channel != "inventar:assignment.issued" {
		t.Errorf("channel = %q", client.channel)
	}
	if len(client.payload) == 0 {
		t.Error("empty payload")
	}
}

func TestInfluxSink_Deliver(t *testing.T) {
	writer := &fakeInflux{connected: true}
	sink := NewInfluxSink(writer)
	env := issuedEnvelope(t)

	if err := sink.Deliver(context.Background(), env); err != nil {
		t.Fatalf("Deliver() error = %v", err)
	}
	if writer.event != inventory.TopicAssignmentIssued {
		t.Errorf("event = %q", writer.event)
	}
	if !writer.ts.Equal(issuedAt) {
		t.Errorf("ts = %v, want %v", writer.ts, issuedAt)
	}

	wantTags := map[string]string{"device_id": "4", "personnel_no": "7", "event_id": env.ID}
	for k, v := range wantTags {
		if writer.tags[k] != v {
			t.Errorf("tag %s = %q, want %q", k, writer.tags[k], v)
		}
	}
	if writer.fields["assignment_id"] != int64(12) {
		t.Errorf("field assignment_id = %#v, want int64(12)", writer.fields["assignment_id"])
	}
	if _, ok := writer.fields["assigned_from"].(string); !ok {
		t.Errorf("field assigned_from = %#v, want string", writer.fields["assigned_from"])
	}
}

func TestInfluxSink_SkipsNullFields(t *testing.T) {
	writer := &fakeInflux{connected: true}
	env, err := NewEnvelope(inventory.TopicAssignmentReturned, inventory.ReturnedEvent{
		AssignmentID: 1,
		DeviceID:     2,
		AssignedTo:   issuedAt,
	}, issuedAt)
	if err != nil {
		t.Fatal(err)
	}

	if err := NewInfluxSink(writer).Deliver(context.Background(), env); err != nil {
		t.Fatalf("Deliver() error = %v", err)
	}
	if _, ok := writer.fields["damage_notes"]; ok {
		t.Error("null damage_notes should not be written")
	}
}

func TestInfluxSink_Disconnected(t *testing.T) {
	sink := NewInfluxSink(&fakeInflux{connected: false})
	if err := sink.Deliver(context.Background(), issuedEnvelope(t)); !errors.Is(err, ErrSinkUnavailable) {
		t.Errorf("Deliver() error = %v, want ErrSinkUnavailable", err)
	}
}

func TestInfluxSink_NonObjectPayload(t *testing.T) {
	env, err := NewEnvelope("odd.event", []int{1, 2}, issuedAt)
	if err != nil {
		t.Fatal(err)
	}
	if err := NewInfluxSink(&fakeInflux{connected: true}).Deliver(context.Background(), env); err == nil {
		t.Error("Deliver() should reject a non-object payload")
	}
}
