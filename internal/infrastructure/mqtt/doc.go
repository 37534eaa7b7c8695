// Package mqtt provides MQTT connectivity for Inventar Core.
//
// Inventar publishes domain events (device registered, assignment issued,
// assignment returned) to the broker so other systems can react without
// polling the API. The package manages:
//   - Connection to the broker with auto-reconnect
//   - Publishing bounded by a context deadline
//   - Last Will and Testament (LWT) on inventar/system/status
//
// # Topics
//
//	inventar/events/device/registered
//	inventar/events/assignment/issued
//	inventar/events/assignment/returned
//	inventar/system/status            (retained)
//
// # Usage
//
//	client, err := mqtt.Connect(ctx, cfg.MQTT)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	topic := mqtt.Topics{}.Event("assignment.issued")
//	err = client.PublishContext(ctx, topic, payload, client.DefaultQoS(), false)
package mqtt
