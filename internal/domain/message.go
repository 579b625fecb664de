package domain

// ActionDownloadClip is the only action the relay understands
const ActionDownloadClip = "downloadClip"

// Message is sent from the page observer to the relay
type Message struct {
	Action   string          `json:"action"`
	ClipInfo *ClipDescriptor `json:"clipInfo,omitempty"`
}

// NewDownloadClipMessage wraps a clip descriptor in a download message
func NewDownloadClipMessage(clip *ClipDescriptor) Message {
	return Message{
		Action:   ActionDownloadClip,
		ClipInfo: clip,
	}
}

// Reply is the relay's answer to a Message. The file path is not part of it.
type Reply struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// ReplyOK builds a successful reply
func ReplyOK() Reply {
	return Reply{Success: true}
}

// ReplyError builds a failed reply carrying the error text
func ReplyError(err error) Reply {
	return Reply{Success: false, Error: err.Error()}
}
