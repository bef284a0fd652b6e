package ports

import "context"

// Message is a rendered notification ready for delivery
type Message struct {
	UserID  uint
	Subject string
	Body    string
}

// Sender delivers rendered notifications. The default implementation
// writes to the log; a mail or push gateway can be swapped in.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}
