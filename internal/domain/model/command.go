package model

// Command is a recognised inbound chat command.
type Command int

const (
	CommandUnknown Command = iota
	CommandFetch
)

func (c Command) String() string {
	switch c {
	case CommandFetch:
		return "fetch"
	default:
		return "unknown"
	}
}

// InboundText is a text message received through the webhook.
type InboundText struct {
	Text       string
	ReplyToken string
	SourceID   string
}
