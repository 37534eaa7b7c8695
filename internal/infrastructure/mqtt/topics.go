package mqtt

import (
	"fmt"
	"strings"
)

// Topic prefixes for Inventar MQTT topics.
const (
	// TopicPrefix is the root of every Inventar topic.
	TopicPrefix = "inventar"

	// TopicPrefixEvents is the base for domain event topics.
	TopicPrefixEvents = TopicPrefix + "/events"

	// TopicPrefixSystem is the base for system topics.
	TopicPrefixSystem = TopicPrefix + "/system"
)

// Topics provides builders for Inventar MQTT topics.
//
//	topic := mqtt.Topics{}.Event("assignment.issued")
//	// Returns: "inventar/events/assignment/issued"
type Topics struct{}

// Event returns the topic for a domain event. Dots in the event name
// become topic levels.
//
// Example: inventar/events/device/registered
func (Topics) Event(name string) string {
	return fmt.Sprintf("%s/%s", TopicPrefixEvents, strings.ReplaceAll(name, ".", "/"))
}

// SystemStatus returns the retained system status topic.
//
// Example: inventar/system/status
func (Topics) SystemStatus() string {
	return TopicPrefixSystem + "/status"
}

// AllEvents returns a pattern matching every domain event.
//
// Pattern: inventar/events/#
func (Topics) AllEvents() string {
	return TopicPrefixEvents + "/#"
}
