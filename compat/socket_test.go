package compat_test

import (
	"encoding/binary"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/momentics/hioload-sp/compat"
	"github.com/momentics/hioload-sp/native"
)

var addrSeq atomic.Int64

func testAddr() string {
	return fmt.Sprintf("inproc://compat-test-%d", addrSeq.Add(1))
}

// pair opens two connected legacy sockets over one inproc address.
func pair(t *testing.T, sh *compat.Shim) (int, int) {
	t.Helper()
	addr := testAddr()
	a, err := sh.Socket(compat.AFSP, compat.ProtoPair)
	require.NoError(t, err)
	b, err := sh.Socket(compat.AFSP, compat.ProtoPair)
	require.NoError(t, err)
	_, err = sh.Bind(a, addr)
	require.NoError(t, err)
	_, err = sh.Connect(b, addr)
	require.NoError(t, err)
	t.Cleanup(func() {
		sh.Close(a)
		sh.Close(b)
	})
	return a, b
}

func TestSocketBadDomain(t *testing.T) {
	sh := compat.New(native.NewCore(nil))
	_, err := sh.Socket(42, compat.ProtoPair)
	require.ErrorIs(t, err, compat.EAFNOSUPPORT)
}

func TestSocketBadProtocol(t *testing.T) {
	sh := compat.New(native.NewCore(nil))
	_, err := sh.Socket(compat.AFSP, 12345)
	require.ErrorIs(t, err, compat.EINVAL)
}

func TestSocketRawDomainSetsRawOption(t *testing.T) {
	core := native.NewCore(nil)
	sh := compat.New(core)
	s, err := sh.Socket(compat.AFSPRaw, compat.ProtoPair)
	require.NoError(t, err)
	defer sh.Close(s)

	raw, err := core.OptionBool(native.Socket(s), native.OptRaw)
	require.NoError(t, err)
	require.True(t, raw)
}

func TestCloseUnknownSocket(t *testing.T) {
	sh := compat.New(native.NewCore(nil))
	require.ErrorIs(t, sh.Close(12345), compat.EBADF)
}

func TestBindConnectShutdown(t *testing.T) {
	sh := compat.New(native.NewCore(nil))
	addr := testAddr()

	a, err := sh.Socket(compat.AFSP, compat.ProtoPair)
	require.NoError(t, err)
	defer sh.Close(a)
	b, err := sh.Socket(compat.AFSP, compat.ProtoPair)
	require.NoError(t, err)
	defer sh.Close(b)

	lep, err := sh.Bind(a, addr)
	require.NoError(t, err)
	dep, err := sh.Connect(b, addr)
	require.NoError(t, err)

	require.NoError(t, sh.Shutdown(b, dep))
	require.NoError(t, sh.Shutdown(a, lep))
}

func TestShutdownStaleEndpoint(t *testing.T) {
	sh := compat.New(native.NewCore(nil))
	addr := testAddr()

	a, err := sh.Socket(compat.AFSP, compat.ProtoPair)
	require.NoError(t, err)
	defer sh.Close(a)

	ep, err := sh.Bind(a, addr)
	require.NoError(t, err)
	require.NoError(t, sh.Shutdown(a, ep))
	// The endpoint handle is generation-tagged; a second shutdown of the
	// stale handle must miss, never tear down a reused slot.
	require.ErrorIs(t, sh.Shutdown(a, ep), compat.EBADF)
}

func TestBindAddressErrors(t *testing.T) {
	sh := compat.New(native.NewCore(nil))
	s, err := sh.Socket(compat.AFSP, compat.ProtoPair)
	require.NoError(t, err)
	defer sh.Close(s)

	_, err = sh.Bind(s, "garbage")
	require.ErrorIs(t, err, compat.EADDRNOTAVAIL)
	_, err = sh.Bind(s, "tcp://127.0.0.1:5555")
	require.ErrorIs(t, err, compat.ENOTSUP)
}

func TestBindAddressInUse(t *testing.T) {
	sh := compat.New(native.NewCore(nil))
	addr := testAddr()
	a, _ := sh.Socket(compat.AFSP, compat.ProtoPair)
	b, _ := sh.Socket(compat.AFSP, compat.ProtoPair)
	defer sh.Close(a)
	defer sh.Close(b)

	_, err := sh.Bind(a, addr)
	require.NoError(t, err)
	_, err = sh.Bind(b, addr)
	require.ErrorIs(t, err, compat.EADDRINUSE)
}

func TestConnectRefusedWithoutListener(t *testing.T) {
	sh := compat.New(native.NewCore(nil))
	s, _ := sh.Socket(compat.AFSP, compat.ProtoPair)
	defer sh.Close(s)

	_, err := sh.Connect(s, testAddr())
	require.ErrorIs(t, err, compat.ECONNREFUSED)
}

func TestSendRecvRoundTrip(t *testing.T) {
	sh := compat.New(native.NewCore(nil))
	a, b := pair(t, sh)

	payload := []byte("hello from the legacy side")
	n, err := sh.Send(b, payload, 0)
	require.NoError(t, err)
	require.Equal(t, len(payload), n)

	buf := make([]byte, 128)
	n, err = sh.Recv(a, buf, 0)
	require.NoError(t, err)
	require.Equal(t, payload, buf[:n])
}

func TestRecvTruncationReportsOriginalLength(t *testing.T) {
	sh := compat.New(native.NewCore(nil))
	a, b := pair(t, sh)

	_, err := sh.Send(b, []byte("0123456789"), 0)
	require.NoError(t, err)

	buf := make([]byte, 6)
	n, err := sh.Recv(a, buf, 0)
	require.NoError(t, err)
	require.Equal(t, 10, n)
	require.Equal(t, []byte("012345"), buf)
}

func TestRecvDontWait(t *testing.T) {
	sh := compat.New(native.NewCore(nil))
	a, _ := pair(t, sh)

	buf := make([]byte, 16)
	_, err := sh.Recv(a, buf, compat.DontWait)
	require.ErrorIs(t, err, compat.EAGAIN)
}

func TestRecvTimeout(t *testing.T) {
	sh := compat.New(native.NewCore(nil))
	a, _ := pair(t, sh)

	val := make([]byte, 4)
	binary.LittleEndian.PutUint32(val, 20) // 20ms
	require.NoError(t, sh.SetSockopt(a, compat.SolSocket, compat.OptRcvTimeo, val))

	buf := make([]byte, 16)
	_, err := sh.Recv(a, buf, 0)
	require.ErrorIs(t, err, compat.ETIMEDOUT)
}

func TestSendInvalidFlags(t *testing.T) {
	sh := compat.New(native.NewCore(nil))
	a, _ := pair(t, sh)

	_, err := sh.Send(a, []byte("x"), 0xbeef)
	require.ErrorIs(t, err, compat.EINVAL)
	_, err = sh.Recv(a, make([]byte, 1), 0xbeef)
	require.ErrorIs(t, err, compat.EINVAL)
}

func TestSendEnvelopeZeroCopy(t *testing.T) {
	sh := compat.New(native.NewCore(nil))
	a, b := pair(t, sh)

	env, err := compat.Alloc(5)
	require.NoError(t, err)
	copy(env.Bytes(), "world")

	n, err := sh.SendEnvelope(b, env, 0)
	require.NoError(t, err)
	require.Equal(t, 5, n)
	// Ownership moved with the send.
	require.Nil(t, env.Bytes())

	got, err := sh.RecvEnvelope(a, 0)
	require.NoError(t, err)
	require.Equal(t, []byte("world"), got.Bytes())
	require.NoError(t, got.Free())
}

func TestSendEnvelopeFailureKeepsOwnership(t *testing.T) {
	sh := compat.New(native.NewCore(nil))
	s, err := sh.Socket(compat.AFSP, compat.ProtoPair)
	require.NoError(t, err)
	defer sh.Close(s)

	env, err := compat.Alloc(3)
	require.NoError(t, err)
	copy(env.Bytes(), "abc")

	// No peer attached: a non-blocking send must fail and hand the
	// envelope back intact.
	_, err = sh.SendEnvelope(s, env, compat.DontWait)
	require.ErrorIs(t, err, compat.EAGAIN)
	require.Equal(t, []byte("abc"), env.Bytes())
	require.NoError(t, env.Free())
}

func TestSocketStats(t *testing.T) {
	core := native.NewCore(nil)
	sh := compat.New(core)
	a, b := pair(t, sh)

	_, err := sh.Send(b, []byte("ping"), 0)
	require.NoError(t, err)
	_, err = sh.Recv(a, make([]byte, 8), 0)
	require.NoError(t, err)

	stats := core.Stats()
	require.GreaterOrEqual(t, stats["sockets.open"], int64(2))
	require.GreaterOrEqual(t, stats["msgs.sent"], int64(1))
	require.GreaterOrEqual(t, stats["msgs.received"], int64(1))
}
