package session

import (
	"time"

	"github.com/Krajiyah/gtlink/pkg/frame"
	"github.com/Krajiyah/gtlink/pkg/util"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var (
	// ErrTimeout is the cause of an Execute that saw no response before its deadline
	ErrTimeout = errors.New("no response before deadline")
	// ErrTransmit is the cause of an Execute whose frame could not be written
	ErrTransmit = errors.New("transmit failed")
)

// Transport is what a session needs from the link below it
type Transport interface {
	// WriteData writes one chunk to the device tx characteristic
	WriteData([]byte) error
	// Pump delivers queued notifications for at most the given duration
	Pump(time.Duration) (bool, error)
}

// Result is a normalized device response
type Result struct {
	Code    byte
	Payload []byte
}

// OK reports whether the device accepted the command
func (r Result) OK() bool { return r.Code == util.ResultOK }

type pendingRequest struct {
	sequence byte
	deadline time.Time
}

// Session issues one command at a time and correlates responses by sequence
// number. It is not safe for concurrent use: Deliver must only be called from
// within the Transport's Pump.
type Session struct {
	transport    Transport
	seq          byte
	pending      *pendingRequest
	slots        [256][]byte
	filled       [256]bool
	timeout      time.Duration
	pollInterval time.Duration
	maxChunk     int
	now          func() time.Time
	logger       *zap.Logger
	dumpCommands bool
	dumpPDUs     bool
}

// Option configures a Session
type Option func(*Session)

// WithTimeout sets the default response deadline
func WithTimeout(d time.Duration) Option { return func(s *Session) { s.timeout = d } }

// WithPollInterval caps a single notification pump
func WithPollInterval(d time.Duration) Option { return func(s *Session) { s.pollInterval = d } }

// WithChunkSize sets the largest write handed to the transport
func WithChunkSize(n int) Option { return func(s *Session) { s.maxChunk = n } }

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option { return func(s *Session) { s.now = now } }

// WithLogger sets the session logger
func WithLogger(logger *zap.Logger) Option { return func(s *Session) { s.logger = logger } }

// WithCommandDump logs each command and its result at debug level
func WithCommandDump(enabled bool) Option { return func(s *Session) { s.dumpCommands = enabled } }

// WithPDUDump logs each encoded outbound frame at debug level
func WithPDUDump(enabled bool) Option { return func(s *Session) { s.dumpPDUs = enabled } }

// New returns a session writing and pumping through transport
func New(transport Transport, opts ...Option) *Session {
	s := &Session{
		transport:    transport,
		timeout:      util.DefaultTimeout,
		pollInterval: util.DefaultPollInterval,
		maxChunk:     util.MaxChunkSize,
		now:          time.Now,
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NextSequence returns the sequence number following seq. It never returns
// 0 or the control byte.
func NextSequence(seq byte) byte {
	seq++
	if seq == 0 {
		seq = 1
	}
	if seq == util.Control {
		seq++
	}
	return seq
}

// Sequence returns the last sequence number issued
func (s *Session) Sequence() byte { return s.seq }

// Pending reports whether a response for seq is waiting to be collected
func (s *Session) Pending(seq byte) bool { return s.filled[seq] }

// Execute sends opcode and payload and waits for the correlated response
// using the session's default timeout.
func (s *Session) Execute(opcode byte, payload []byte) (Result, error) {
	return s.ExecuteWithTimeout(opcode, payload, s.timeout)
}

// ExecuteWithTimeout is Execute with an explicit deadline.
// Failures have ErrTransmit or ErrTimeout as their cause; a pump error is
// returned wrapped as is.
func (s *Session) ExecuteWithTimeout(opcode byte, payload []byte, timeout time.Duration) (Result, error) {
	s.seq = NextSequence(s.seq)
	seq := s.seq
	s.clear(seq)
	s.pending = &pendingRequest{sequence: seq, deadline: s.now().Add(timeout)}
	defer func() { s.pending = nil }()

	if s.dumpCommands {
		s.logger.Debug("cmd", zap.Uint8("opcode", opcode), zap.Uint8("seq", seq), zap.Binary("data", payload))
	}
	encoded := frame.Encode(opcode, seq, payload)
	if s.dumpPDUs {
		s.logger.Debug("tx pdu", zap.Binary("pdu", encoded))
	}
	if err := frame.WriteChunks(encoded, s.maxChunk, s.transport.WriteData); err != nil {
		s.logger.Warn("xmit data failed", zap.Uint8("seq", seq), zap.Error(err))
		return Result{}, errors.Wrapf(ErrTransmit, "seq 0x%02x: %s", seq, err)
	}
	return s.await(opcode, seq)
}

func (s *Session) await(opcode, seq byte) (Result, error) {
	for {
		if body, ok := s.take(seq); ok {
			res := normalize(opcode, body)
			if s.dumpCommands {
				s.logger.Debug("res", zap.Uint8("code", res.Code), zap.Binary("data", res.Payload))
			}
			return res, nil
		}
		remaining := s.pending.deadline.Sub(s.now())
		if remaining <= 0 {
			s.clear(seq)
			return Result{}, errors.Wrapf(ErrTimeout, "opcode 0x%02x seq 0x%02x", opcode, seq)
		}
		wait := s.pollInterval
		if remaining < wait {
			wait = remaining
		}
		if _, err := s.transport.Pump(wait); err != nil {
			s.clear(seq)
			return Result{}, errors.Wrap(err, "notification pump failed")
		}
	}
}

// Deliver files a reassembled frame body (opcode, sequence, payload) for the
// request waiting on its sequence. Bodies nobody waits for are dropped.
func (s *Session) Deliver(body []byte) {
	if len(body) < 2 {
		s.logger.Warn("response too short to correlate", zap.Binary("data", body))
		return
	}
	seq := body[1]
	if s.pending == nil || s.pending.sequence != seq {
		s.logger.Debug("dropping uncorrelated response", zap.Uint8("seq", seq))
		return
	}
	s.slots[seq] = body
	s.filled[seq] = true
}

func (s *Session) take(seq byte) ([]byte, bool) {
	if !s.filled[seq] {
		return nil, false
	}
	body := s.slots[seq]
	s.clear(seq)
	return body, true
}

func (s *Session) clear(seq byte) {
	s.slots[seq] = nil
	s.filled[seq] = false
}

// normalize turns a raw response into an opcode independent result. The
// first byte carries the result code XOR the request opcode and the second
// echoes the sequence.
func normalize(opcode byte, body []byte) Result {
	payload := make([]byte, len(body)-2)
	copy(payload, body[2:])
	return Result{Code: body[0] ^ opcode, Payload: payload}
}
