package recycler

import (
	"log"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/valyala/bytebufferpool"
	"golang.org/x/exp/slices"
)

// pooledWrong shows the failure mode this package exists to avoid: a plain
// sync.Pool has no way to reject a double Put, so two unrelated borrowers
// can end up holding the same pointer.
type pooledWrong struct {
	b *bytebufferpool.ByteBuffer
}

var wrongPool = sync.Pool{New: func() interface{} { return &pooledWrong{} }}

func getPooledWrong() *pooledWrong {
	res := wrongPool.Get().(*pooledWrong)
	res.b = bytebufferpool.Get()
	return res
}

func putPooledWrong(p *pooledWrong) {
	bytebufferpool.Put(p.b)
	wrongPool.Put(p)
}

func TestSyncPoolDoubleReleaseAliases(t *testing.T) {
	log.Println(os.Args)
	if slices.Contains(os.Args, "-race") {
		t.Skip("aliasing does not reliably reproduce under -race")
	}

	wrong := getPooledWrong()
	putPooledWrong(wrong)
	putPooledWrong(wrong)

	new1 := getPooledWrong()
	new2 := getPooledWrong()
	require.True(t, new1 == new2, "double Put should have aliased the same pointer twice")
}

// TestRecyclerDoubleRecycleDoesNotAlias is the same scenario against this
// package's own pool: the second Recycle is rejected outright, so the two
// subsequent acquires can never alias.
func TestRecyclerDoubleRecycleDoesNotAlias(t *testing.T) {
	p := newMyStructPool(t)

	right := p.Acquire()
	require.NoError(t, right.Recycle())
	require.Error(t, right.Recycle())

	new1 := p.Acquire()
	new2 := p.Acquire()
	require.False(t, new1 == new2)
	require.NoError(t, new1.Recycle())
	require.NoError(t, new2.Recycle())
}
