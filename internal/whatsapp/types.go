// Package whatsapp talks to the WhatsApp Cloud API: outbound message
// dispatch and media retrieval. Every outbound-facing operation returns
// a DeliveryResult instead of raising past the component boundary.
package whatsapp

// Status is the outcome of an outbound-facing operation
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// DeliveryResult reports the outcome of an outbound-facing operation.
// Detail carries a payload on success (stored path or public URL) and a
// fixed human-readable string on error; structured error codes are
// deliberately not preserved.
type DeliveryResult struct {
	Status Status
	Detail string
}

// OK reports whether the result is a success
func (r DeliveryResult) OK() bool {
	return r.Status == StatusSuccess
}

// Succeeded builds a success result
func Succeeded(detail string) DeliveryResult {
	return DeliveryResult{Status: StatusSuccess, Detail: detail}
}

// Failed builds an error result
func Failed(detail string) DeliveryResult {
	return DeliveryResult{Status: StatusError, Detail: detail}
}

// MediaKind classifies fetched media
type MediaKind string

const (
	KindAudio MediaKind = "audio"
	KindImage MediaKind = "image"
)

// Fixed error details surfaced through DeliveryResult
const (
	ErrDetailSend  = "error posting to WhatsApp Cloud API"
	ErrDetailMedia = "error fetching media"
)
