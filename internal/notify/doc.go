// Package notify delivers inventory events to message sinks.
//
// A Dispatcher implements inventory.Publisher. Every committed change is
// wrapped in an Envelope (event id, event name, occurrence time, payload)
// and handed to each registered Sink on its own goroutine with a bounded
// deadline. Delivery is best-effort: failures are logged as
// ErrNotificationDeliveryFailed and counted, and never reach the caller.
//
// Sinks:
//
//   - MQTTSink publishes to inventar/events/<event path>
//   - RedisSink publishes on <prefix>:<event>
//   - InfluxSink writes one point per event to inventory_events
//   - the API WebSocket hub forwards envelopes to subscribed clients
//
// Usage:
//
//	d := notify.NewDispatcher(logger, cfg.GetNotifyTimeout(),
//	    notify.NewMQTTSink(mqttClient),
//	)
//	defer d.Close(ctx)
//	manager := inventory.NewManager(repo, d, nil, logger)
package notify
