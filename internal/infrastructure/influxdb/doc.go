// Package influxdb records inventory events in InfluxDB v2.
//
// Each issue, return and registration becomes one point in the
// inventory_events measurement, tagged by event name and device, so
// utilisation over time can be charted without querying the relational
// store. Writes are batched and non-blocking; async failures surface
// through SetOnError.
//
// Usage:
//
//	client, err := influxdb.Connect(ctx, cfg.InfluxDB)
//	if errors.Is(err, influxdb.ErrDisabled) {
//	    // not configured
//	}
//	defer client.Close()
//
//	client.WriteEvent("assignment.returned", tags, fields, time.Now())
package influxdb
