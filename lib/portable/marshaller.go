package portable

import (
	"fmt"
	"github.com/VictoriaMetrics/metrics"
	"github.com/lni/dragonboat/v4/logger"
	"io"
	"strings"
	"time"
)

var Logger = logger.GetLogger("portable")

// --------------------------------------------------------------------------
// Configuration
// --------------------------------------------------------------------------

const (
	DefaultInitialBufferSize = 4 * 1024
)

// Config holds the settings of a Marshaller
type Config struct {
	// InitialBufferSize is the initial capacity of pooled streams (in bytes)
	InitialBufferSize int
	// MaxMessageSize limits the size of one encoded message (in bytes, 0 = unbounded)
	MaxMessageSize int
}

// String returns a formatted string representation of the configuration
func (c Config) String() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("  %-22s: %d bytes\n", "Initial Buffer Size", c.InitialBufferSize))
	if c.MaxMessageSize > 0 {
		sb.WriteString(fmt.Sprintf("  %-22s: %d bytes\n", "Max Message Size", c.MaxMessageSize))
	} else {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", "Max Message Size", "unbounded"))
	}
	return sb.String()
}

// --------------------------------------------------------------------------
// Metrics
// --------------------------------------------------------------------------

// encodeStats are the metrics of one Marshaller
type encodeStats struct {
	set      *metrics.Set
	encodes  *metrics.Counter
	failures *metrics.Counter
	bytes    *metrics.Counter
	records  *metrics.Counter
	backRefs *metrics.Counter
	sizes    *metrics.Histogram
	duration *metrics.Histogram
}

func newEncodeStats() *encodeStats {
	set := metrics.NewSet()
	return &encodeStats{
		set:      set,
		encodes:  set.NewCounter("portable_encodes_total"),
		failures: set.NewCounter("portable_encode_failures_total"),
		bytes:    set.NewCounter("portable_encoded_bytes_total"),
		records:  set.NewCounter("portable_records_total"),
		backRefs: set.NewCounter("portable_back_references_total"),
		sizes:    set.NewHistogram("portable_message_size_bytes"),
		duration: set.NewHistogram("portable_encode_duration_seconds"),
	}
}

// Stats is a snapshot of the counters of a Marshaller
type Stats struct {
	Encodes        uint64
	Failures       uint64
	Bytes          uint64
	Records        uint64
	BackReferences uint64
}

// --------------------------------------------------------------------------
// Marshaller
// --------------------------------------------------------------------------

// Marshaller encodes object graphs into the portable format. Every call uses
// its own write context, so a Marshaller is safe for concurrent use.
//
// Usage:
//
//	registry := portable.NewTypeRegistry(nil)
//	registry.MustRegister(&Node{}, portable.TypeConfig{Serializer: nodeSerializer})
//
//	m := portable.NewMarshaller(registry, portable.Config{})
//	data, err := m.Marshal(root)
type Marshaller struct {
	registry *TypeRegistry
	config   Config
	pool     *streamPool
	stats    *encodeStats
}

// NewMarshaller creates a new marshaller for the types of the given registry
func NewMarshaller(registry *TypeRegistry, config Config) *Marshaller {
	if config.InitialBufferSize <= 0 {
		config.InitialBufferSize = DefaultInitialBufferSize
	}
	return &Marshaller{
		registry: registry,
		config:   config,
		pool:     newStreamPool(config.InitialBufferSize, config.MaxMessageSize),
		stats:    newEncodeStats(),
	}
}

// Marshal encodes obj and returns a copy of the encoded bytes.
// On error no data is returned, a partially written stream is never exposed.
func (m *Marshaller) Marshal(obj interface{}) ([]byte, error) {
	s := m.pool.get()
	defer m.pool.put(s)

	if err := m.encode(s, obj); err != nil {
		return nil, err
	}

	out := make([]byte, s.Len())
	copy(out, s.Bytes())
	return out, nil
}

// MarshalTo encodes obj completely in memory and then writes it as one frame
// to w (see WriteFrame). Nothing is written to w if the encoding fails.
// It returns the number of bytes written to w.
func (m *Marshaller) MarshalTo(w io.Writer, obj interface{}) (int, error) {
	s := m.pool.get()
	defer m.pool.put(s)

	if err := m.encode(s, obj); err != nil {
		return 0, err
	}
	return WriteFrame(w, s.Bytes())
}

// EncodeTo encodes obj at the current position of a caller owned stream.
// On error the stream is truncated back to the position where obj started.
func (m *Marshaller) EncodeTo(s *Stream, obj interface{}) error {
	return m.encode(s, obj)
}

// Registry returns the type registry of the marshaller
func (m *Marshaller) Registry() *TypeRegistry {
	return m.registry
}

// Stats returns a snapshot of the marshaller counters
func (m *Marshaller) Stats() Stats {
	return Stats{
		Encodes:        m.stats.encodes.Get(),
		Failures:       m.stats.failures.Get(),
		Bytes:          m.stats.bytes.Get(),
		Records:        m.stats.records.Get(),
		BackReferences: m.stats.backRefs.Get(),
	}
}

// WriteMetrics writes the marshaller metrics in Prometheus text format to w
func (m *Marshaller) WriteMetrics(w io.Writer) {
	m.stats.set.WritePrometheus(w)
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// encode runs one encode operation with a fresh write context
func (m *Marshaller) encode(s *Stream, obj interface{}) error {
	start := time.Now()
	startPos := s.Position()

	ctx := newWriteContext(m.registry, s)

	if err := ctx.Write(obj); err != nil {
		m.stats.failures.Inc()
		Logger.Warningf("encode of %T failed: %v", obj, err)
		return err
	}

	size := s.Position() - startPos
	m.stats.encodes.Inc()
	m.stats.bytes.Add(size)
	m.stats.records.Add(ctx.records)
	m.stats.backRefs.Add(ctx.backRefs)
	m.stats.sizes.Update(float64(size))
	m.stats.duration.UpdateDuration(start)

	Logger.Debugf("encoded %T: %d bytes, %d records, %d back-references, depth %d took %s",
		obj, size, ctx.records, ctx.backRefs, ctx.maxDepth, time.Since(start))

	return nil
}
