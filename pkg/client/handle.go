// Package client implements the client handle: the daemon connection, the
// pending-interest table with half-life-decay aging, the interest-filter
// table, inbound message dispatch, and the single-goroutine run loop.
package client

import (
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ProjectCCNx/ccnx-sub003/pkg/ccnb"
	"github.com/ProjectCCNx/ccnx-sub003/pkg/ccnerr"
	"github.com/ProjectCCNx/ccnx-sub003/pkg/ccnlog"
	"github.com/ProjectCCNx/ccnx-sub003/pkg/face"
	"github.com/ProjectCCNx/ccnx-sub003/pkg/name"
)

// UpcallKind and UpcallResult are re-exported from pkg/ccnerr so callers
// implementing Handler don't need a second import.
type (
	UpcallKind   = ccnerr.UpcallKind
	UpcallResult = ccnerr.UpcallResult
)

// HalfLife is the default pending-interest aging period.
const HalfLife = 4 * time.Second

// inputReserve is the minimum space reserved at the inbound buffer's tail
// before each read.
const inputReserve = 8800

// Handler receives upcalls for a registered interest or filter. Implementations must not retain info beyond
// the call - its byte slices alias the handle's inbound buffer.
type Handler interface {
	Upcall(h *Handle, kind UpcallKind, info *UpcallInfo) UpcallResult
}

// HandlerFunc adapts a plain function to the Handler interface.
type HandlerFunc func(h *Handle, kind UpcallKind, info *UpcallInfo) UpcallResult

func (f HandlerFunc) Upcall(h *Handle, kind UpcallKind, info *UpcallInfo) UpcallResult {
	return f(h, kind, info)
}

// Handle is process-scoped client state: one connection to the daemon,
// its output queue, its inbound buffer and decoder, the pending-interest
// and interest-filter tables, and error/debug state.
type Handle struct {
	face *face.Face

	out       *ccnb.Charbuf
	outCursor int // bytes of out already sent; the unsent tail is out.Bytes()[outCursor:]

	in     *ccnb.Charbuf
	dec    ccnb.Decoder
	scratch *ccnb.IndexBuf

	pit     map[string]*pitEntry
	filters map[string]*filterEntry

	runTimeoutRemaining time.Duration
	disconnected        bool

	debug bool
	log   *ccnlog.Logger

	halfLife time.Duration

	metrics *metrics
}

// Option configures a Handle at Open time.
type Option func(*Handle)

// WithHalfLife overrides the pending-interest aging period (HalfLife by
// default).
func WithHalfLife(d time.Duration) Option {
	return func(h *Handle) { h.halfLife = d }
}

// WithDebug enables verbose per-message logging from Open, equivalent to
// calling SetDebug(true) afterward.
func WithDebug(on bool) Option {
	return func(h *Handle) { h.debug = on }
}

// Open connects to the daemon at path (face.SocketPath() if empty) and
// returns a ready-to-use Handle.
func Open(path string, opts ...Option) (*Handle, error) {
	f, err := face.Connect(path)
	if err != nil {
		return nil, err
	}
	h := &Handle{
		face:     f,
		out:      ccnb.NewCharbuf(4096),
		in:       ccnb.NewCharbuf(inputReserve),
		scratch:  ccnb.NewIndexBuf(),
		pit:      make(map[string]*pitEntry),
		filters:  make(map[string]*filterEntry),
		log:      ccnlog.Default(),
		halfLife: HalfLife,
		metrics:  newMetrics(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// SetDebug toggles verbose per-message logging.
func (h *Handle) SetDebug(on bool) { h.debug = on }

// Close disconnects the handle. Pending interests and filters are left in
// the tables.
func (h *Handle) Close() error {
	if h.disconnected {
		return nil
	}
	h.disconnected = true
	return h.face.Close()
}

// keyOf returns the PIT/filter table key for a name prefix: the wire
// encoding of just its Component elements, excluding the outer Name
// element's own open/close framing.
func keyOf(prefix name.Name) string {
	buf := ccnb.NewCharbuf(64)
	for _, c := range prefix.Components {
		ccnb.AppendTaggedBlob(buf, ccnb.DTagComponent, c)
	}
	return string(buf.Bytes())
}

// newNonce generates a fresh Interest Nonce, using
// google/uuid as a convenient high-quality random source.
func newNonce() []byte {
	u := uuid.New()
	return u[:]
}

// RegisterMetrics exposes this handle's counters to reg, for applications
// wanting to serve them.
func (h *Handle) RegisterMetrics(reg prometheus.Registerer) error {
	return h.metrics.register(reg)
}
