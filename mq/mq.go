package mq

import "context"

// MessageQueue is the outbound seam to the notification pipeline. The server
// only publishes; consumers (push delivery) live outside this process.
type MessageQueue interface {
	Send(ctx context.Context, body string) error
}
