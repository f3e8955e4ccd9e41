package qos

// CongestionControl selects how a message behaves under network backpressure.
type CongestionControl uint8

const (
	// CongestionControlDrop allows the engine to drop the message when
	// congested. This is the default for data traffic.
	CongestionControlDrop CongestionControl = 0

	// CongestionControlBlock makes the sender block until the engine can
	// accept the message.
	CongestionControlBlock CongestionControl = 1
)

// String returns the congestion control mode name.
func (c CongestionControl) String() string {
	switch c {
	case CongestionControlDrop:
		return "DROP"
	case CongestionControlBlock:
		return "BLOCK"
	default:
		return "UNKNOWN"
	}
}

// IsValid reports whether c is a defined congestion control mode.
func (c CongestionControl) IsValid() bool {
	return c == CongestionControlDrop || c == CongestionControlBlock
}

// Priority ranks outgoing messages. Lower numeric values are more urgent.
type Priority uint8

const (
	// PriorityRealTime is the most urgent priority.
	PriorityRealTime Priority = 1

	// PriorityInteractiveHigh is for latency-sensitive interactive traffic.
	PriorityInteractiveHigh Priority = 2

	// PriorityInteractiveLow is for less urgent interactive traffic.
	PriorityInteractiveLow Priority = 3

	// PriorityDataHigh is for important data traffic.
	PriorityDataHigh Priority = 4

	// PriorityData is the default priority for data traffic.
	PriorityData Priority = 5

	// PriorityDataLow is for deprioritized data traffic.
	PriorityDataLow Priority = 6

	// PriorityBackground is the least urgent priority.
	PriorityBackground Priority = 7
)

// String returns the priority name.
func (p Priority) String() string {
	switch p {
	case PriorityRealTime:
		return "REAL_TIME"
	case PriorityInteractiveHigh:
		return "INTERACTIVE_HIGH"
	case PriorityInteractiveLow:
		return "INTERACTIVE_LOW"
	case PriorityDataHigh:
		return "DATA_HIGH"
	case PriorityData:
		return "DATA"
	case PriorityDataLow:
		return "DATA_LOW"
	case PriorityBackground:
		return "BACKGROUND"
	default:
		return "UNKNOWN"
	}
}

// IsValid reports whether p is a defined priority.
func (p Priority) IsValid() bool {
	return p >= PriorityRealTime && p <= PriorityBackground
}

// QoS describes the quality of service attached to outgoing data:
// congestion control mode, priority, and the express flag (bypass
// batching for minimal latency).
//
// QoS values are immutable once built and safe to share across goroutines.
type QoS struct {
	congestion CongestionControl
	priority   Priority
	express    bool
}

// Default returns the default QoS: drop on congestion, data priority,
// express disabled.
func Default() QoS {
	return QoS{
		congestion: CongestionControlDrop,
		priority:   PriorityData,
	}
}

// CongestionControl returns the congestion control mode.
func (q QoS) CongestionControl() CongestionControl {
	return q.congestion
}

// Priority returns the priority.
func (q QoS) Priority() Priority {
	return q.priority
}

// Express reports whether express delivery is requested.
func (q QoS) Express() bool {
	return q.express
}

// Equal reports whether two QoS values are identical.
func (q QoS) Equal(other QoS) bool {
	return q == other
}

// Builder assembles a QoS value through chainable setters.
// The zero Builder starts from Default().
type Builder struct {
	qos QoS
	set bool
}

// NewBuilder returns a Builder seeded with the default QoS.
func NewBuilder() *Builder {
	return &Builder{qos: Default(), set: true}
}

// CongestionControl sets the congestion control mode.
func (b *Builder) CongestionControl(c CongestionControl) *Builder {
	b.init()
	b.qos.congestion = c
	return b
}

// Priority sets the priority.
func (b *Builder) Priority(p Priority) *Builder {
	b.init()
	b.qos.priority = p
	return b
}

// Express sets the express flag.
func (b *Builder) Express(express bool) *Builder {
	b.init()
	b.qos.express = express
	return b
}

// Build returns the immutable QoS value.
func (b *Builder) Build() QoS {
	b.init()
	return b.qos
}

func (b *Builder) init() {
	if !b.set {
		b.qos = Default()
		b.set = true
	}
}
