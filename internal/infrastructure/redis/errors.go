package redis

import "errors"

var (
	// ErrDisabled indicates Redis integration is disabled in config.
	ErrDisabled = errors.New("redis: disabled in configuration")

	// ErrConnectionFailed indicates the initial PING failed.
	ErrConnectionFailed = errors.New("redis: connection failed")

	// ErrPublishFailed indicates a PUBLISH command failed.
	ErrPublishFailed = errors.New("redis: publish failed")
)
