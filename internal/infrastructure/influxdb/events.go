package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// EventMeasurement is the measurement holding inventory event points.
const EventMeasurement = "inventory_events"

// NewEventPoint builds one inventory event point.
//
// The event name and any low-cardinality identifiers (device_id,
// personnel_no) are tags; everything else is a field. A point needs at
// least one field, so "count"=1 is always set and lets Flux sum events.
func NewEventPoint(event string, tags map[string]string, fields map[string]any, ts time.Time) *write.Point {
	allTags := make(map[string]string, len(tags)+1)
	for k, v := range tags {
		allTags[k] = v
	}
	allTags["event"] = event

	allFields := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		allFields[k] = v
	}
	allFields["count"] = 1

	return write.NewPoint(EventMeasurement, allTags, allFields, ts)
}

// WriteEvent queues one inventory event. Events written after Close are
// dropped.
func (c *Client) WriteEvent(event string, tags map[string]string, fields map[string]any, ts time.Time) {
	if !c.IsConnected() {
		return
	}
	c.writeAPI.WritePoint(NewEventPoint(event, tags, fields, ts))
}
