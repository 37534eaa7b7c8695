// Package redis publishes inventory events on Redis pub/sub channels.
//
// Channels are named "{prefix}:{event}", e.g. "inventar:assignment.issued".
// Delivery is fire-and-forget: Redis does not buffer messages for
// subscribers that are not connected.
package redis
