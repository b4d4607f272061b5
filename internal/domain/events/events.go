package events

import "context"

// Topic names for the notification bus.
const (
	TopicDocumentProcessed  = "document-processed"
	TopicTestCasesGenerated = "test-case-generated"
)

// Publisher port (interface untuk notification bus)
type Publisher interface {
	Publish(ctx context.Context, topic string, payload any) error
}
