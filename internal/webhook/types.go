package webhook

import "github.com/bloombot/bloom/internal/router"

// Envelope is the webhook delivery body: entry → changes → value →
// messages. Only structural presence is validated here; malformed but
// structurally valid payloads pass through and fail later.
type Envelope struct {
	Entry []Entry `json:"entry"`
}

// Entry is one webhook entry
type Entry struct {
	Changes []Change `json:"changes"`
}

// Change is one change notification inside an entry
type Change struct {
	Value ChangeValue `json:"value"`
}

// ChangeValue carries the delivered messages
type ChangeValue struct {
	Messages []InboundMessage `json:"messages"`
}

// InboundMessage is the platform's raw message shape
type InboundMessage struct {
	ID    string        `json:"id"`
	From  string        `json:"from"`
	Type  string        `json:"type"`
	Text  *TextContent  `json:"text,omitempty"`
	Image *MediaContent `json:"image,omitempty"`
	Audio *MediaContent `json:"audio,omitempty"`
}

// TextContent is the body of a text message
type TextContent struct {
	Body string `json:"body"`
}

// MediaContent references platform-held media
type MediaContent struct {
	ID      string `json:"id"`
	Caption string `json:"caption,omitempty"`
}

// firstMessage extracts the first message of the first change of the
// first entry, the only message a delivery processes.
func (e *Envelope) firstMessage() (InboundMessage, bool) {
	if len(e.Entry) == 0 || len(e.Entry[0].Changes) == 0 || len(e.Entry[0].Changes[0].Value.Messages) == 0 {
		return InboundMessage{}, false
	}
	return e.Entry[0].Changes[0].Value.Messages[0], true
}

// normalize converts a raw platform message to the router's shape
func normalize(msg InboundMessage) router.Message {
	normalized := router.Message{
		ID:   msg.ID,
		From: msg.From,
		Type: router.TypeUnknown,
	}

	switch msg.Type {
	case "text":
		normalized.Type = router.TypeText
		if msg.Text != nil {
			normalized.Text = msg.Text.Body
		}
	case "image":
		normalized.Type = router.TypeImage
		if msg.Image != nil {
			normalized.MediaID = msg.Image.ID
			normalized.Caption = msg.Image.Caption
		}
	case "audio":
		normalized.Type = router.TypeAudio
		if msg.Audio != nil {
			normalized.MediaID = msg.Audio.ID
		}
	}

	return normalized
}
