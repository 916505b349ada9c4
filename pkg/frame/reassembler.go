package frame

import (
	"github.com/Krajiyah/gtlink/pkg/util"
	"go.uber.org/zap"
)

// DropReason tells why the reassembler threw buffered bytes away
type DropReason int

const (
	// CRCMismatch means a complete frame failed its checksum
	CRCMismatch DropReason = iota
	// UnsyncedData means bytes arrived before a frame start marker
	UnsyncedData
	// InvalidEscape means the control byte was followed by an undefined byte
	InvalidEscape
)

func (r DropReason) String() string {
	return []string{"CRCMismatch", "UnsyncedData", "InvalidEscape"}[r]
}

// Stats counts what the reassembler has seen since it was created
type Stats struct {
	Frames         int
	CRCMismatches  int
	Unsynced       int
	InvalidEscapes int
}

// Reassembler turns arbitrarily split transport deliveries back into frame
// bodies (opcode, sequence, payload). It keeps its state between calls to
// Receive, so a frame may span any number of deliveries and one delivery may
// carry several frames.
type Reassembler struct {
	buf      []byte
	escaped  bool
	handler  func([]byte)
	onDrop   func(DropReason, []byte)
	logger   *zap.Logger
	dumpPDUs bool
	stats    Stats
}

// ReassemblerOption configures a Reassembler
type ReassemblerOption func(*Reassembler)

// WithLogger sets the logger drops and PDU dumps are written to
func WithLogger(logger *zap.Logger) ReassemblerOption {
	return func(r *Reassembler) { r.logger = logger }
}

// WithDropHandler registers a callback invoked for every discarded buffer
func WithDropHandler(fn func(DropReason, []byte)) ReassemblerOption {
	return func(r *Reassembler) { r.onDrop = fn }
}

// WithPDUDump logs every received frame at debug level
func WithPDUDump(enabled bool) ReassemblerOption {
	return func(r *Reassembler) { r.dumpPDUs = enabled }
}

// NewReassembler returns a reassembler passing each valid frame body to handler
func NewReassembler(handler func([]byte), opts ...ReassemblerOption) *Reassembler {
	r := &Reassembler{handler: handler, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Receive consumes one transport delivery
func (r *Reassembler) Receive(raw []byte) {
	for _, b := range raw {
		r.receiveByte(b)
	}
}

// Stats returns the counters accumulated so far
func (r *Reassembler) Stats() Stats { return r.stats }

// Reset drops any partial frame and returns to the normal state
func (r *Reassembler) Reset() {
	r.buf = nil
	r.escaped = false
}

func (r *Reassembler) receiveByte(b byte) {
	if !r.escaped {
		if b == util.Control {
			r.escaped = true
			return
		}
		r.buf = append(r.buf, b)
		return
	}
	r.escaped = false
	switch b {
	case util.Control:
		r.buf = append(r.buf, util.Control)
	case util.STX:
		if len(r.buf) > 0 {
			r.stats.Unsynced++
			r.logger.Warn("previous unsynced data was lost", zap.Binary("data", r.buf))
			r.drop(UnsyncedData)
		}
	case util.ETX:
		r.endFrame()
	default:
		r.stats.InvalidEscapes++
		r.logger.Warn("invalid escape, resynchronizing",
			zap.Uint8("byte", b), zap.Binary("data", r.buf))
		r.drop(InvalidEscape)
	}
}

func (r *Reassembler) endFrame() {
	body, err := verify(r.buf)
	if err != nil {
		r.stats.CRCMismatches++
		r.logger.Error("dropping frame", zap.Error(err), zap.Binary("data", r.buf))
		r.drop(CRCMismatch)
		return
	}
	r.buf = nil
	r.stats.Frames++
	if r.dumpPDUs {
		r.logger.Debug("rx pdu", zap.Binary("pdu", body))
	}
	if r.handler != nil {
		r.handler(body)
	}
}

func (r *Reassembler) drop(reason DropReason) {
	dropped := r.buf
	r.buf = nil
	if r.onDrop != nil {
		r.onDrop(reason, dropped)
	}
}
