// internal/logger/gelf_logger.go

package logger

import (
	"fmt"
	"os"

	"github.com/orgoj/anglerfish/internal/config"
	"gopkg.in/Graylog2/go-gelf.v2/gelf"
)

// Variables for factories to allow mocking in tests
var gelfUDPWriterFactory = func(addr string) (gelf.Writer, error) {
	w, err := gelf.NewUDPWriter(addr)
	if err != nil {
		return nil, err
	}
	return w, nil
}
var gelfTCPWriterFactory = func(addr string) (gelf.Writer, error) {
	w, err := gelf.NewTCPWriter(addr)
	if err != nil {
		return nil, err
	}
	return w, nil
}

// Function to set compression, can be mocked in tests
var setUDPCompression = func(writer gelf.Writer, compType gelf.CompressType) {
	if udp, ok := writer.(*gelf.UDPWriter); ok {
		udp.CompressionType = compType
	}
}

// maxShortMessage is the length of the GELF short_message; the full text goes to full_message.
const maxShortMessage = 250

// GelfSink forwards records to a Graylog server
type GelfSink struct {
	name     string
	writer   gelf.Writer
	hostName string
	minLevel Level
}

// NewGelfSink creates a new GELF sink
func NewGelfSink(cfg config.LogDestination) (*GelfSink, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("host is required for GELF logger")
	}
	if cfg.Port <= 0 {
		return nil, fmt.Errorf("valid port is required for GELF logger")
	}
	minLevel, err := destinationLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("destination '%s': %w", cfg.Name, err)
	}

	hostName, err := os.Hostname()
	if err != nil {
		hostName = "unknown"
		fmt.Printf("[WARN] Failed to get hostname: %v, using '%s'\n", err, hostName)
	}

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	var writer gelf.Writer
	if cfg.Protocol == "tcp" {
		writer, err = gelfTCPWriterFactory(addr)
		if err != nil {
			return nil, fmt.Errorf("failed to create GELF TCP writer: %w", err)
		}
	} else {
		// Default to UDP
		writer, err = gelfUDPWriterFactory(addr)
		if err != nil {
			return nil, fmt.Errorf("failed to create GELF UDP writer: %w", err)
		}

		switch cfg.CompressionType {
		case "gzip":
			setUDPCompression(writer, gelf.CompressGzip)
		case "zlib":
			setUDPCompression(writer, gelf.CompressZlib)
		default:
			setUDPCompression(writer, gelf.CompressNone)
		}
	}

	return &GelfSink{
		name:     cfg.Name,
		writer:   writer,
		hostName: hostName,
		minLevel: minLevel,
	}, nil
}

// Log sends a record to the Graylog server
func (g *GelfSink) Log(rec *Record) error {
	if rec.Level < g.minLevel {
		return nil
	}
	return g.writer.WriteMessage(g.message(rec))
}

func (g *GelfSink) message(rec *Record) *gelf.Message {
	msg := &gelf.Message{
		Version:  "1.1",
		Host:     g.hostName,
		Short:    truncateString(rec.Message, maxShortMessage),
		TimeUnix: float64(rec.Time.UnixNano()) / 1e9,
		Level:    gelfLevel(rec.Level),
		Facility: rec.LoggerName,
		Extra:    make(map[string]interface{}),
	}
	if len(rec.Message) > maxShortMessage {
		msg.Full = rec.Message
	}

	for k, v := range rec.Fields() {
		// Skip fields that are already set as standard GELF fields
		if k == "msg" || k == "time" || k == "level" {
			continue
		}
		// GELF doesn't support complex data types
		switch v := v.(type) {
		case string, int, uint64:
			msg.Extra["_"+k] = v
		default:
			msg.Extra["_"+k] = fmt.Sprintf("%v", v)
		}
	}
	return msg
}

// gelfLevel maps a severity onto the syslog scale GELF uses (0 = emergency, 7 = debug).
func gelfLevel(level Level) int32 {
	switch {
	case level >= CRITICAL:
		return 2
	case level >= ERROR:
		return 3
	case level >= WARN:
		return 4
	case level >= INFO:
		return 6
	default:
		return 7
	}
}

// Close closes the GELF writer
func (g *GelfSink) Close() error {
	return g.writer.Close()
}

// Name returns the name of the sink
func (g *GelfSink) Name() string {
	return g.name
}

var _ Sink = (*GelfSink)(nil)
