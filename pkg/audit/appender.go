package audit

import "context"

// Appender - приемник audit записей
type Appender interface {
	// Append записывает entry
	Append(ctx context.Context, entry *Entry) error

	// Close закрывает appender
	Close() error
}
