package chat

import "time"

// replyDoneMsg is sent when a submitted message has been answered or failed.
type replyDoneMsg struct {
	Err error
}

// spinnerTickMsg animates the typing indicator while a reply streams.
type spinnerTickMsg time.Time
