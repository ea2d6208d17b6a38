package recycler

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/valyala/bytebufferpool"
)

type myStruct struct {
	// every pooled struct embeds Releasable; it is initialized by the
	// factory from the Handle it is given.
	Releasable

	bb   *bytebufferpool.ByteBuffer
	fld1 int
}

func (ms *myStruct) Init() {
	ms.bb = bytebufferpool.Get()
}

func (ms *myStruct) Cleanup() {
	bytebufferpool.Put(ms.bb)
	ms.bb = nil
}

func newMyStructPool(t *testing.T) *Pool[*myStruct] {
	t.Helper()
	p, err := New(func(h *Handle[*myStruct]) *myStruct {
		return &myStruct{Releasable: h}
	})
	require.NoError(t, err)
	t.Cleanup(p.Close)
	return p
}

func TestBasicUsage(t *testing.T) {
	p := newMyStructPool(t)

	before := ObjectsInUse()
	v := p.Acquire()
	require.NotNil(t, v.bb)
	require.Equal(t, before+1, ObjectsInUse())

	require.NoError(t, v.Recycle())
	require.Equal(t, before, ObjectsInUse())
}

func TestDoubleRecycleIsAnError(t *testing.T) {
	p := newMyStructPool(t)

	v := p.Acquire()
	require.NoError(t, v.Recycle())
	require.ErrorIs(t, v.Recycle(), ErrDoubleRecycle)
}

func TestAcquireReusesRecycledValue(t *testing.T) {
	p := newMyStructPool(t)

	v1 := p.Acquire()
	require.NoError(t, v1.Recycle())
	require.Nil(t, v1.bb, "Cleanup must run on recycle")

	v2 := p.Acquire()
	require.Same(t, v1, v2)
	require.NotNil(t, v2.bb, "Init must run again on the next acquire")
}

func TestZeroCapacityIsANoopPool(t *testing.T) {
	p := newMyStructPool(t)
	p.cfg.MaxCapacityPerThread = 0

	v1 := p.Acquire()
	require.NoError(t, v1.Recycle())
	v2 := p.Acquire()
	require.NotSame(t, v1, v2, "a zero-capacity pool must never reuse a value")
}

func TestPoolRecycleForwardsToValue(t *testing.T) {
	p := newMyStructPool(t)

	v := p.Acquire()
	require.NoError(t, p.Recycle(v))
}

type plainStruct struct{ n int }

func TestPoolRecycleRejectsForeignValue(t *testing.T) {
	p, err := New(func(h *Handle[*plainStruct]) *plainStruct { return &plainStruct{} })
	require.NoError(t, err)
	defer p.Close()

	require.ErrorIs(t, p.Recycle(&plainStruct{n: 1}), ErrNotReleasable)
}
