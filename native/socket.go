// File: native/socket.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Socket core: open/close, listen/dial endpoints, and blocking message
// transfer over in-process pipes. Each socket owns one mutex; no operation
// holds more than one socket lock at a time (send acquires its own lock to
// read state, releases it, then acquires the peer's lock to enqueue).

package native

import (
	"sync"
	"sync/atomic"

	"github.com/eapache/queue"
	"go.uber.org/zap"

	"github.com/momentics/hioload-sp/core/platform"
)

// Socket is a native socket handle.
type Socket uint32

// SP protocol numbers: family*16 + variant.
const (
	ProtoPair       uint16 = 1 * 16
	ProtoPub        uint16 = 2 * 16
	ProtoSub        uint16 = 2*16 + 1
	ProtoReq        uint16 = 3 * 16
	ProtoRep        uint16 = 3*16 + 1
	ProtoPush       uint16 = 5 * 16
	ProtoPull       uint16 = 5*16 + 1
	ProtoSurveyor   uint16 = 6*16 + 2
	ProtoRespondent uint16 = 6*16 + 3
)

// Endpoint is a native endpoint handle, created by Listen or Dial.
type Endpoint uint32

// Transfer and endpoint flags.
const (
	FlagNonblock = 1 << 0
	FlagSynch    = 1 << 1
)

// Config holds parameters immutable per core.
type Config struct {
	QueueDepth int         // Capacity of per-socket receive queues
	Logger     *zap.Logger // Lifecycle logger; nil means no logging
}

// DefaultConfig returns default configuration values.
func DefaultConfig() *Config {
	return &Config{
		QueueDepth: 128,
		Logger:     zap.NewNop(),
	}
}

// Core is the native layer entry point. All handle-based operations of the
// socket/message API hang off a Core.
type Core struct {
	cfg       *Config
	log       *zap.Logger
	sockets   handleTable[*socket]
	endpoints handleTable[*endpoint]
	inproc    *inprocRegistry
	stats     *statsRegistry
}

// NewCore creates a core with the given configuration.
func NewCore(cfg *Config) *Core {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Core{
		cfg:    cfg,
		log:    log,
		inproc: newInprocRegistry(),
		stats:  newStatsRegistry(),
	}
}

// Stats returns a snapshot of core activity counters.
func (c *Core) Stats() map[string]int64 {
	return c.stats.snapshot()
}

type socket struct {
	id    Socket
	proto uint16

	mtx      platform.Mutex
	cv       *platform.Cond
	recvq    *queue.Queue // of *Msg
	pipes    []*pipe
	nextPipe int
	eps      []Endpoint
	closed   bool
	opts     options
}

const (
	epListen = iota
	epDial
)

type endpoint struct {
	id   Endpoint
	sock *socket
	kind int
	name string

	mu     sync.Mutex
	pipes  []*pipe
	closed bool
}

// pipe joins two sockets. Messages sent on one end are enqueued on the
// other end's receive queue; ownership transfers with the message.
type pipe struct {
	ends   [2]*socket
	closed atomic.Bool
}

func (p *pipe) peer(s *socket) *socket {
	if p.ends[0] == s {
		return p.ends[1]
	}
	return p.ends[0]
}

// Open creates a socket for the given protocol number.
func (c *Core) Open(proto uint16) (Socket, error) {
	s := &socket{
		proto: proto,
		recvq: queue.New(),
		opts:  defaultOptions(),
	}
	s.cv = platform.NewCond(&s.mtx)
	h := c.sockets.insert(s)
	if h == 0 {
		return 0, ENomem
	}
	s.id = Socket(h)
	c.stats.add("sockets.open", 1)
	c.log.Debug("socket opened",
		zap.Uint32("socket", h),
		zap.Uint16("proto", proto))
	return s.id, nil
}

// Close tears down a socket: pending blocked calls fail EClosed, queued
// messages are freed, and all of its endpoints are closed.
func (c *Core) Close(h Socket) error {
	s, ok := c.sockets.remove(uint32(h))
	if !ok {
		return EClosed
	}

	s.mtx.Lock()
	s.closed = true
	pipes := append([]*pipe(nil), s.pipes...)
	eps := append([]Endpoint(nil), s.eps...)
	s.pipes = nil
	for s.recvq.Length() > 0 {
		s.recvq.Remove().(*Msg).Free()
	}
	s.cv.Wake()
	s.mtx.Unlock()

	for _, p := range pipes {
		c.closePipe(p)
	}
	for _, eh := range eps {
		if ep, ok := c.endpoints.remove(uint32(eh)); ok {
			c.teardownEndpoint(ep)
		}
	}
	c.stats.add("sockets.closed", 1)
	c.log.Debug("socket closed", zap.Uint32("socket", uint32(h)))
	return nil
}

// Listen claims addr for the socket and returns a listening endpoint.
func (c *Core) Listen(h Socket, addr string, flags int) (Endpoint, error) {
	if flags&^FlagSynch != 0 {
		return 0, EInval
	}
	s, ok := c.sockets.get(uint32(h))
	if !ok {
		return 0, EClosed
	}
	name, err := parseAddr(addr)
	if err != nil {
		return 0, err
	}
	ep := &endpoint{sock: s, kind: epListen, name: name}
	eh := c.endpoints.insert(ep)
	if eh == 0 {
		return 0, ENomem
	}
	ep.id = Endpoint(eh)
	if err := c.inproc.register(name, ep); err != nil {
		c.endpoints.remove(eh)
		return 0, err
	}

	s.mtx.Lock()
	if s.closed {
		s.mtx.Unlock()
		c.inproc.unregister(name, ep)
		c.endpoints.remove(eh)
		return 0, EClosed
	}
	s.eps = append(s.eps, ep.id)
	s.mtx.Unlock()

	c.stats.add("endpoints.open", 1)
	c.log.Debug("listening", zap.Uint32("socket", uint32(h)), zap.String("addr", addr))
	return ep.id, nil
}

// Dial connects the socket to a listener at addr and returns the dialing
// endpoint. With no listener present the dial fails EConnRefused.
func (c *Core) Dial(h Socket, addr string, flags int) (Endpoint, error) {
	if flags&^FlagSynch != 0 {
		return 0, EInval
	}
	s, ok := c.sockets.get(uint32(h))
	if !ok {
		return 0, EClosed
	}
	name, err := parseAddr(addr)
	if err != nil {
		return 0, err
	}
	lep, ok := c.inproc.resolve(name)
	if !ok {
		return 0, EConnRefused
	}

	p := &pipe{ends: [2]*socket{s, lep.sock}}
	ep := &endpoint{sock: s, kind: epDial, name: name, pipes: []*pipe{p}}
	eh := c.endpoints.insert(ep)
	if eh == 0 {
		return 0, ENomem
	}
	ep.id = Endpoint(eh)

	if err := attachPipe(s, p); err != nil {
		c.endpoints.remove(eh)
		return 0, err
	}
	if err := attachPipe(lep.sock, p); err != nil {
		c.closePipe(p)
		c.endpoints.remove(eh)
		return 0, err
	}
	lep.mu.Lock()
	if lep.closed {
		lep.mu.Unlock()
		c.closePipe(p)
		c.endpoints.remove(eh)
		return 0, EConnRefused
	}
	lep.pipes = append(lep.pipes, p)
	lep.mu.Unlock()

	s.mtx.Lock()
	s.eps = append(s.eps, ep.id)
	s.mtx.Unlock()

	c.stats.add("endpoints.open", 1)
	c.log.Debug("dialed", zap.Uint32("socket", uint32(h)), zap.String("addr", addr))
	return ep.id, nil
}

func attachPipe(s *socket, p *pipe) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	if s.closed {
		return EClosed
	}
	s.pipes = append(s.pipes, p)
	s.cv.Wake()
	return nil
}

// EndpointClose shuts down one listen or dial attempt. Stale or reused
// endpoint handles fail EClosed instead of affecting the new occupant.
func (c *Core) EndpointClose(h Endpoint) error {
	ep, ok := c.endpoints.remove(uint32(h))
	if !ok {
		return EClosed
	}
	c.teardownEndpoint(ep)

	s := ep.sock
	s.mtx.Lock()
	for i, id := range s.eps {
		if id == ep.id {
			s.eps = append(s.eps[:i], s.eps[i+1:]...)
			break
		}
	}
	s.mtx.Unlock()

	c.stats.add("endpoints.closed", 1)
	c.log.Debug("endpoint closed", zap.Uint32("endpoint", uint32(h)))
	return nil
}

func (c *Core) teardownEndpoint(ep *endpoint) {
	ep.mu.Lock()
	ep.closed = true
	pipes := ep.pipes
	ep.pipes = nil
	ep.mu.Unlock()

	if ep.kind == epListen {
		c.inproc.unregister(ep.name, ep)
	}
	for _, p := range pipes {
		c.closePipe(p)
	}
}

func (c *Core) closePipe(p *pipe) {
	if !p.closed.CompareAndSwap(false, true) {
		return
	}
	for _, s := range p.ends {
		s.mtx.Lock()
		for i, q := range s.pipes {
			if q == p {
				s.pipes = append(s.pipes[:i], s.pipes[i+1:]...)
				break
			}
		}
		s.cv.Wake()
		s.mtx.Unlock()
	}
}

// SetOption sets a socket option from its wire encoding.
func (c *Core) SetOption(h Socket, opt Option, val []byte) error {
	s, ok := c.sockets.get(uint32(h))
	if !ok {
		return EClosed
	}
	s.mtx.Lock()
	defer s.mtx.Unlock()
	if s.closed {
		return EClosed
	}
	return s.opts.set(opt, val)
}

// OptionInt64 reads back a numeric option value. Used by diagnostics and
// tests; durations come back in microseconds.
func (c *Core) OptionInt64(h Socket, opt Option) (int64, error) {
	s, ok := c.sockets.get(uint32(h))
	if !ok {
		return 0, EClosed
	}
	s.mtx.Lock()
	defer s.mtx.Unlock()
	return s.opts.int64Value(opt)
}

// OptionBool reads back the raw-mode flag.
func (c *Core) OptionBool(h Socket, opt Option) (bool, error) {
	s, ok := c.sockets.get(uint32(h))
	if !ok {
		return false, EClosed
	}
	if opt != OptRaw {
		return false, ENotSup
	}
	s.mtx.Lock()
	defer s.mtx.Unlock()
	return s.opts.raw, nil
}

// deadlineFor converts a relative timeout in microseconds to an absolute
// platform deadline. Negative timeouts mean no deadline.
func deadlineFor(timeo int64) (int64, bool) {
	if timeo < 0 {
		return 0, false
	}
	return platform.Now() + timeo, true
}

// SendMsg transfers ownership of m on success. On failure the caller keeps
// ownership and may retry or free the message.
func (c *Core) SendMsg(h Socket, m *Msg, flags int) error {
	if flags&^FlagNonblock != 0 {
		return EInval
	}
	s, ok := c.sockets.get(uint32(h))
	if !ok {
		return EClosed
	}

	s.mtx.Lock()
	if s.closed {
		s.mtx.Unlock()
		return EClosed
	}
	timeo := s.opts.sndTimeo
	s.mtx.Unlock()
	deadline, hasDeadline := deadlineFor(timeo)

	for {
		s.mtx.Lock()
		if s.closed {
			s.mtx.Unlock()
			return EClosed
		}
		if len(s.pipes) == 0 {
			if flags&FlagNonblock != 0 {
				s.mtx.Unlock()
				return EAgain
			}
			if hasDeadline {
				if s.cv.WaitUntil(deadline) {
					s.mtx.Unlock()
					return ETimedout
				}
			} else {
				s.cv.Wait()
			}
			s.mtx.Unlock()
			continue
		}
		p := s.pipes[s.nextPipe%len(s.pipes)]
		s.nextPipe++
		s.mtx.Unlock()

		peer := p.peer(s)
		peer.mtx.Lock()
		if peer.closed || p.closed.Load() {
			peer.mtx.Unlock()
			continue
		}
		if peer.opts.rcvMaxSize > 0 && int64(m.Len()) > peer.opts.rcvMaxSize {
			peer.mtx.Unlock()
			return EMsgSize
		}
		if peer.proto == ProtoSub && !peer.opts.matches(m.Body()) {
			// Subscriber is not interested; the publish still succeeds.
			peer.mtx.Unlock()
			m.Free()
			c.stats.add("msgs.filtered", 1)
			return nil
		}
		if peer.recvq.Length() >= c.cfg.QueueDepth {
			if flags&FlagNonblock != 0 {
				peer.mtx.Unlock()
				return EAgain
			}
			if hasDeadline {
				if peer.cv.WaitUntil(deadline) {
					peer.mtx.Unlock()
					return ETimedout
				}
			} else {
				peer.cv.Wait()
			}
			peer.mtx.Unlock()
			continue
		}
		peer.recvq.Add(m)
		peer.cv.Wake()
		peer.mtx.Unlock()
		c.stats.add("msgs.sent", 1)
		return nil
	}
}

// RecvMsg returns the next message, transferring ownership to the caller.
func (c *Core) RecvMsg(h Socket, flags int) (*Msg, error) {
	if flags&^FlagNonblock != 0 {
		return nil, EInval
	}
	s, ok := c.sockets.get(uint32(h))
	if !ok {
		return nil, EClosed
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()
	if s.closed {
		return nil, EClosed
	}
	deadline, hasDeadline := deadlineFor(s.opts.rcvTimeo)
	for {
		if s.closed {
			return nil, EClosed
		}
		if s.recvq.Length() > 0 {
			m := s.recvq.Remove().(*Msg)
			// Room opened up; release senders blocked on a full queue.
			s.cv.Wake()
			c.stats.add("msgs.received", 1)
			return m, nil
		}
		if flags&FlagNonblock != 0 {
			return nil, EAgain
		}
		if hasDeadline {
			if s.cv.WaitUntil(deadline) {
				return nil, ETimedout
			}
		} else {
			s.cv.Wait()
		}
	}
}

// Send is the buffer form of SendMsg: the payload is copied into a fresh
// message.
func (c *Core) Send(h Socket, buf []byte, flags int) error {
	m, err := AllocMsg(len(buf))
	if err != nil {
		return err
	}
	copy(m.Body(), buf)
	if err := c.SendMsg(h, m, flags); err != nil {
		m.Free()
		return err
	}
	return nil
}

// Recv is the buffer form of RecvMsg: the body is copied into buf, truncating
// silently, and the original body length is returned so callers can detect
// truncation.
func (c *Core) Recv(h Socket, buf []byte, flags int) (int, error) {
	m, err := c.RecvMsg(h, flags)
	if err != nil {
		return 0, err
	}
	n := m.Len()
	copy(buf, m.Body())
	m.Free()
	return n, nil
}
