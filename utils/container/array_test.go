package container

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	IncrementalItemBase
	id int
}

func ids(a *IncrementalArray[*item]) []int {
	out := make([]int, 0, a.Len())
	for _, x := range a.Data() {
		out = append(out, x.id)
	}
	return out
}

func checkIndex(t *testing.T, a *IncrementalArray[*item]) {
	t.Helper()
	for i, x := range a.Data() {
		require.Equal(t, i, x.Index(), "item %d", x.id)
	}
}

func TestIncrementalArrayDeferred(t *testing.T) {
	a := NewIncrementalArray[*item]()
	a.Add(&item{id: 1})
	a.Add(&item{id: 2})
	assert.Equal(t, 0, a.Len())
	add, remove := a.Pending()
	assert.Equal(t, 2, add)
	assert.Equal(t, 0, remove)

	a.Prepare()
	assert.Equal(t, []int{1, 2}, ids(a))
	checkIndex(t, a)
	add, remove = a.Pending()
	assert.Zero(t, add)
	assert.Zero(t, remove)
}

func TestIncrementalArrayReplace(t *testing.T) {
	a := NewIncrementalArray[*item]()
	items := make([]*item, 5)
	for i := range items {
		items[i] = &item{id: i}
		a.Add(items[i])
	}
	a.Prepare()

	// 增 >= 删：新元素填入空位
	a.Remove(items[1])
	a.Add(&item{id: 10})
	a.Add(&item{id: 11})
	a.Prepare()
	assert.Equal(t, []int{0, 10, 2, 3, 4, 11}, ids(a))
	checkIndex(t, a)
}

func TestIncrementalArrayShrink(t *testing.T) {
	a := NewIncrementalArray[*item]()
	items := make([]*item, 6)
	for i := range items {
		items[i] = &item{id: i}
		a.Add(items[i])
	}
	a.Prepare()

	// 删 > 增：尾部元素搬移填补
	a.Remove(items[0])
	a.Remove(items[2])
	a.Remove(items[3])
	a.Add(&item{id: 20})
	a.Prepare()
	assert.ElementsMatch(t, []int{20, 1, 4, 5}, ids(a))
	assert.Equal(t, 4, a.Len())
	checkIndex(t, a)
}

func TestIncrementalArrayRemoveTail(t *testing.T) {
	a := NewIncrementalArray[*item]()
	items := make([]*item, 4)
	for i := range items {
		items[i] = &item{id: i}
		a.Add(items[i])
	}
	a.Prepare()

	a.Remove(items[3])
	a.Remove(items[2])
	a.Prepare()
	assert.Equal(t, []int{0, 1}, ids(a))
	checkIndex(t, a)

	a.Remove(items[0])
	a.Remove(items[1])
	a.Prepare()
	assert.Zero(t, a.Len())
}
