package compat_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/momentics/hioload-sp/compat"
	"github.com/momentics/hioload-sp/native"
)

func TestSendmsgGathersInOrder(t *testing.T) {
	sh := compat.New(native.NewCore(nil))
	a, b := pair(t, sh)

	mh := &compat.Msghdr{Iov: []compat.Iovec{
		{Data: []byte("abc")},
		{Data: []byte("de")},
		{Data: []byte("f")},
	}}
	n, err := sh.Sendmsg(b, mh, 0)
	require.NoError(t, err)
	require.Equal(t, 6, n)

	buf := make([]byte, 16)
	n, err = sh.Recv(a, buf, 0)
	require.NoError(t, err)
	require.Equal(t, []byte("abcdef"), buf[:n])
}

func TestRecvmsgScattersAcrossBuffers(t *testing.T) {
	sh := compat.New(native.NewCore(nil))
	a, b := pair(t, sh)

	_, err := sh.Send(b, []byte("0123456789"), 0)
	require.NoError(t, err)

	first := make([]byte, 4)
	second := make([]byte, 2)
	mh := &compat.Msghdr{Iov: []compat.Iovec{
		{Data: first},
		{Data: second},
	}}
	n, err := sh.Recvmsg(a, mh, 0)
	require.NoError(t, err)
	// Excess is dropped silently; the reported length is the original
	// message length so the caller can detect truncation.
	require.Equal(t, 10, n)
	require.Equal(t, []byte("0123"), first)
	require.Equal(t, []byte("45"), second)
}

func TestSendmsgAdoptsSoleEnvelope(t *testing.T) {
	sh := compat.New(native.NewCore(nil))
	a, b := pair(t, sh)

	env, err := compat.Alloc(4)
	require.NoError(t, err)
	copy(env.Bytes(), "ping")

	mh := &compat.Msghdr{Iov: []compat.Iovec{{Env: env}}}
	n, err := sh.Sendmsg(b, mh, 0)
	require.NoError(t, err)
	require.Equal(t, 4, n)
	require.Nil(t, env.Bytes())

	buf := make([]byte, 8)
	n, err = sh.Recv(a, buf, 0)
	require.NoError(t, err)
	require.Equal(t, []byte("ping"), buf[:n])
}

func TestSendmsgAdoptFailureReturnsOwnership(t *testing.T) {
	sh := compat.New(native.NewCore(nil))
	s, err := sh.Socket(compat.AFSP, compat.ProtoPair)
	require.NoError(t, err)
	defer sh.Close(s)

	env, err := compat.Alloc(4)
	require.NoError(t, err)
	copy(env.Bytes(), "ping")

	mh := &compat.Msghdr{Iov: []compat.Iovec{{Env: env}}}
	_, err = sh.Sendmsg(s, mh, compat.DontWait)
	require.ErrorIs(t, err, compat.EAGAIN)
	require.Equal(t, []byte("ping"), env.Bytes())
	require.NoError(t, env.Free())
}

func TestSendmsgEnvelopeAmongMultipleBuffers(t *testing.T) {
	sh := compat.New(native.NewCore(nil))
	_, b := pair(t, sh)

	env, err := compat.Alloc(4)
	require.NoError(t, err)
	defer env.Free()

	mh := &compat.Msghdr{Iov: []compat.Iovec{
		{Data: []byte("x")},
		{Env: env},
	}}
	_, err = sh.Sendmsg(b, mh, 0)
	require.ErrorIs(t, err, compat.EINVAL)
	// The envelope was not consumed by the failed call.
	require.NotNil(t, env.Bytes())
}

func TestSendmsgNilDescriptor(t *testing.T) {
	sh := compat.New(native.NewCore(nil))
	_, b := pair(t, sh)

	_, err := sh.Sendmsg(b, nil, 0)
	require.ErrorIs(t, err, compat.EINVAL)
	_, err = sh.Recvmsg(b, nil, 0)
	require.ErrorIs(t, err, compat.EINVAL)
}

func TestRecvmsgDynamicEnvelope(t *testing.T) {
	sh := compat.New(native.NewCore(nil))
	a, b := pair(t, sh)

	_, err := sh.Send(b, []byte("payload"), 0)
	require.NoError(t, err)

	mh := &compat.Msghdr{Iov: []compat.Iovec{{Dynamic: true}}}
	n, err := sh.Recvmsg(a, mh, 0)
	require.NoError(t, err)
	require.Equal(t, 7, n)
	require.NotNil(t, mh.Iov[0].Env)
	require.Equal(t, []byte("payload"), mh.Iov[0].Env.Bytes())
	require.NoError(t, mh.Iov[0].Env.Free())
}

func TestRecvmsgDynamicMixedWithFixedFails(t *testing.T) {
	sh := compat.New(native.NewCore(nil))
	a, b := pair(t, sh)

	_, err := sh.Send(b, []byte("xy"), 0)
	require.NoError(t, err)

	mh := &compat.Msghdr{Iov: []compat.Iovec{
		{Data: make([]byte, 1)},
		{Dynamic: true},
	}}
	_, err = sh.Recvmsg(a, mh, 0)
	require.ErrorIs(t, err, compat.EINVAL)
}

func TestControlRoundTrip(t *testing.T) {
	sh := compat.New(native.NewCore(nil))
	a, b := pair(t, sh)

	mh := &compat.Msghdr{
		Iov:     []compat.Iovec{{Data: []byte("body")}},
		Control: &compat.Control{Data: []byte{0x01, 0x02, 0x03}},
	}
	n, err := sh.Sendmsg(b, mh, 0)
	require.NoError(t, err)
	require.Equal(t, 4, n)

	ctrl := &compat.Control{Data: make([]byte, 64)}
	rmh := &compat.Msghdr{
		Iov:     []compat.Iovec{{Data: make([]byte, 8)}},
		Control: ctrl,
	}
	_, err = sh.Recvmsg(a, rmh, 0)
	require.NoError(t, err)

	level, typ, data, ok := compat.ParseCmsg(ctrl.Data)
	require.True(t, ok)
	require.Equal(t, compat.ProtoSP, level)
	require.Equal(t, compat.SPHdr, typ)
	require.Equal(t, []byte{0x01, 0x02, 0x03}, data)
}

func TestControlBufferTooSmallZeroFilled(t *testing.T) {
	sh := compat.New(native.NewCore(nil))
	a, b := pair(t, sh)

	mh := &compat.Msghdr{
		Iov:     []compat.Iovec{{Data: []byte("b")}},
		Control: &compat.Control{Data: []byte{1, 2, 3}},
	}
	_, err := sh.Sendmsg(b, mh, 0)
	require.NoError(t, err)

	small := &compat.Control{Data: []byte{0xFF, 0xFF, 0xFF, 0xFF}}
	rmh := &compat.Msghdr{
		Iov:     []compat.Iovec{{Data: make([]byte, 4)}},
		Control: small,
	}
	_, err = sh.Recvmsg(a, rmh, 0)
	require.NoError(t, err)
	require.Equal(t, []byte{0, 0, 0, 0}, small.Data)
}

func TestControlDynamicEnvelope(t *testing.T) {
	sh := compat.New(native.NewCore(nil))
	a, b := pair(t, sh)

	mh := &compat.Msghdr{
		Iov:     []compat.Iovec{{Data: []byte("b")}},
		Control: &compat.Control{Data: []byte{9, 8, 7, 6}},
	}
	_, err := sh.Sendmsg(b, mh, 0)
	require.NoError(t, err)

	ctrl := &compat.Control{Dynamic: true}
	rmh := &compat.Msghdr{
		Iov:     []compat.Iovec{{Data: make([]byte, 4)}},
		Control: ctrl,
	}
	_, err = sh.Recvmsg(a, rmh, 0)
	require.NoError(t, err)
	require.NotNil(t, ctrl.Env)
	require.Equal(t, compat.CmsgSpace(4), ctrl.Env.Len())

	level, typ, data, ok := compat.ParseCmsg(ctrl.Env.Bytes())
	require.True(t, ok)
	require.Equal(t, compat.ProtoSP, level)
	require.Equal(t, compat.SPHdr, typ)
	require.Equal(t, []byte{9, 8, 7, 6}, data)
	require.NoError(t, ctrl.Env.Free())
}

func TestControlEnvelopeFreedOnlyAfterSuccess(t *testing.T) {
	sh := compat.New(native.NewCore(nil))

	// Unconnected socket: send fails, control envelope must survive.
	s, err := sh.Socket(compat.AFSP, compat.ProtoPair)
	require.NoError(t, err)
	defer sh.Close(s)

	cenv, err := compat.Alloc(3)
	require.NoError(t, err)
	copy(cenv.Bytes(), []byte{1, 2, 3})

	mh := &compat.Msghdr{
		Iov:     []compat.Iovec{{Data: []byte("b")}},
		Control: &compat.Control{Env: cenv},
	}
	_, err = sh.Sendmsg(s, mh, compat.DontWait)
	require.ErrorIs(t, err, compat.EAGAIN)
	require.Equal(t, []byte{1, 2, 3}, cenv.Bytes())

	// Connected: success consumes the control envelope.
	a, b := pair(t, sh)
	_, err = sh.Sendmsg(b, mh, 0)
	require.NoError(t, err)
	require.Nil(t, cenv.Bytes())

	ctrl := &compat.Control{Data: make([]byte, 64)}
	rmh := &compat.Msghdr{
		Iov:     []compat.Iovec{{Data: make([]byte, 4)}},
		Control: ctrl,
	}
	_, err = sh.Recvmsg(a, rmh, 0)
	require.NoError(t, err)
	_, _, data, ok := compat.ParseCmsg(ctrl.Data)
	require.True(t, ok)
	require.Equal(t, []byte{1, 2, 3}, data)
}

func TestSendmsgEmptyGather(t *testing.T) {
	sh := compat.New(native.NewCore(nil))
	a, b := pair(t, sh)

	n, err := sh.Sendmsg(b, &compat.Msghdr{}, 0)
	require.NoError(t, err)
	require.Zero(t, n)

	got, err := sh.Recv(a, make([]byte, 4), 0)
	require.NoError(t, err)
	require.Zero(t, got)
}

func BenchmarkEnvelopeRoundTrip(b *testing.B) {
	sh := compat.New(native.NewCore(nil))
	x, err := sh.Socket(compat.AFSP, compat.ProtoPair)
	if err != nil {
		b.Fatal(err)
	}
	y, err := sh.Socket(compat.AFSP, compat.ProtoPair)
	if err != nil {
		b.Fatal(err)
	}
	addr := testAddr()
	if _, err := sh.Bind(x, addr); err != nil {
		b.Fatal(err)
	}
	if _, err := sh.Connect(y, addr); err != nil {
		b.Fatal(err)
	}
	defer sh.Close(x)
	defer sh.Close(y)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		env, _ := compat.Alloc(64)
		if _, err := sh.SendEnvelope(y, env, 0); err != nil {
			b.Fatal(err)
		}
		got, err := sh.RecvEnvelope(x, 0)
		if err != nil {
			b.Fatal(err)
		}
		got.Free()
	}
}
