// internal/logger/interface.go

package logger

// Sink defines the interface for all log destination implementations.
// Each sink type (rotating file, console, syslog, gelf, etc.) implements this interface.
type Sink interface {
	// Log processes and sends a single record.
	// Implementations must not modify rec; it is shared by every sink of a logger.
	Log(rec *Record) error

	// Close handles any necessary cleanup, like flushing buffers or closing connections.
	// It should be called during application shutdown.
	Close() error

	// Name returns the name of the sink instance.
	Name() string
}
