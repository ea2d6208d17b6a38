package recycler

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/valyala/bytebufferpool"
)

type owner struct {
	Releasable
	nested *nested
	bb     *bytebufferpool.ByteBuffer
}

type nested struct {
	Releasable
	internal *internal
	bb       *bytebufferpool.ByteBuffer
}

type internal struct {
	Releasable
}

func (n *nested) Init() {
	n.internal = poolInternal.AcquireOwned(n)
	n.bb = bytebufferpool.Get()
}

func (n *nested) Cleanup() {
	bytebufferpool.Put(n.bb)
	n.bb = nil
}

func (o *owner) Init() {
	// owner.nested must not outlive owner, so it is borrowed via
	// AcquireOwned and released automatically when owner is.
	o.nested = poolNested.AcquireOwned(o)
	o.bb = bytebufferpool.Get()
}

func (o *owner) Cleanup() {
	bytebufferpool.Put(o.bb)
	o.bb = nil
}

var (
	poolOwner    *Pool[*owner]
	poolNested   *Pool[*nested]
	poolInternal *Pool[*internal]
)

func init() {
	var err error
	poolOwner, err = New(func(h *Handle[*owner]) *owner { return &owner{Releasable: h} })
	if err != nil {
		panic(err)
	}
	poolNested, err = New(func(h *Handle[*nested]) *nested { return &nested{Releasable: h} })
	if err != nil {
		panic(err)
	}
	poolInternal, err = New(func(h *Handle[*internal]) *internal { return &internal{Releasable: h} })
	if err != nil {
		panic(err)
	}
}

func TestAcquireOwnedChainReleasesTransitively(t *testing.T) {
	before := ObjectsInUse()

	root := poolOwner.Acquire()
	require.Equal(t, before+3, ObjectsInUse())
	require.NotNil(t, root.bb)
	require.NotNil(t, root.nested.bb)
	require.NotNil(t, root.nested.internal)

	// Recycling the owned value directly is a user error: its lifetime is
	// controlled by root, not by whoever happens to hold the value.
	require.PanicsWithValue(t, ErrOwnedHandle, func() { root.nested.Recycle() })

	require.NoError(t, root.Recycle())
	// root, root.nested, and root.nested.internal are all back in their
	// pools now; none of them may be touched again.
	require.Equal(t, before, ObjectsInUse())
}
