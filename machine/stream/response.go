package stream

import "strings"

// Response is the decoded meaning of a line read from the controller.
type Response byte

const (
	// Unrecognized lines are diagnostics and never acknowledge a command.
	Unrecognized Response = iota

	// Ack means the controller accepted the command.
	Ack

	// Nack means the controller rejected the command.
	Nack
)

func (r Response) String() string {
	switch r {
	case Ack:
		return "Ack"
	case Nack:
		return "Nack"
	}
	return "Unrecognized"
}

// Decode classifies a response line.
func Decode(line string) Response {
	switch {
	case strings.HasPrefix(line, "ok"):
		return Ack
	case strings.HasPrefix(line, "error"):
		return Nack
	}
	return Unrecognized
}
