package container

import "sync"

// IIncrementalItem 支持增量更新的元素接口
// 说明：元素自己记录在数组中的下标，删除时据此O(1)定位
type IIncrementalItem interface {
	Index() int
	SetIndex(index int)
}

// IncrementalItemBase 增量元素基类，嵌入后即实现IIncrementalItem
type IncrementalItemBase struct {
	index int
}

func (b *IncrementalItemBase) Index() int {
	return b.index
}

func (b *IncrementalItemBase) SetIndex(index int) {
	b.index = index
}

// IncrementalArray 增量数组
// 功能：Add/Remove只登记，Prepare时统一生效，保证一步之内读到的集合不变
// 说明：删除通过用新增元素或尾部元素填补空位完成，不保持元素顺序
type IncrementalArray[T IIncrementalItem] struct {
	data   []T
	add    []T
	remove []T

	addMtx    sync.Mutex
	removeMtx sync.Mutex
}

// NewIncrementalArray 创建增量数组
func NewIncrementalArray[T IIncrementalItem]() *IncrementalArray[T] {
	return &IncrementalArray[T]{
		data:   make([]T, 0),
		add:    make([]T, 0),
		remove: make([]T, 0),
	}
}

// Len 已生效的元素数量
func (a *IncrementalArray[T]) Len() int {
	return len(a.data)
}

// Data 已生效的元素，调用方不得修改切片本身
func (a *IncrementalArray[T]) Data() []T {
	return a.data
}

// Pending 尚未生效的新增与删除数量
func (a *IncrementalArray[T]) Pending() (add int, remove int) {
	return len(a.add), len(a.remove)
}

// Add 增加元素（等到Prepare时才会真正增加），可并发调用
func (a *IncrementalArray[T]) Add(value T) {
	a.addMtx.Lock()
	defer a.addMtx.Unlock()
	a.add = append(a.add, value)
}

// Remove 删除元素（等到Prepare时才会真正删除），可并发调用，同一元素只能登记一次
func (a *IncrementalArray[T]) Remove(value T) {
	a.removeMtx.Lock()
	defer a.removeMtx.Unlock()
	a.remove = append(a.remove, value)
}

// Prepare 执行增量操作
// 算法说明：
// 1. 增 >= 删：新增元素依次填入被删除元素的位置，剩余新增元素追加到末尾
// 2. 删 > 增：新增元素先填入部分空位，其余空位由数组末尾的元素搬移填补，最后截断
// 3. 所有被移动的元素都会更新下标，最后清空待处理列表
func (a *IncrementalArray[T]) Prepare() {
	if len(a.add) >= len(a.remove) {
		for i, x := range a.remove {
			ind := x.Index()
			a.data[ind] = a.add[i]
			a.data[ind].SetIndex(ind)
		}
		l1 := len(a.remove)
		for i, x := range a.add[l1:] {
			x.SetIndex(len(a.data) + i)
		}
		a.data = append(a.data, a.add[l1:]...)
	} else {
		for i, x := range a.add {
			ind := a.remove[i].Index()
			a.data[ind] = x
			a.data[ind].SetIndex(ind)
		}
		l1 := len(a.add)
		l2 := len(a.remove) - l1
		l3 := len(a.data) - l2
		for i := 0; i < l2; i++ {
			// 从后面拿一项填过来
			ind := a.remove[l1+i].Index()
			a.data[ind] = a.data[l3+i]
			a.data[ind].SetIndex(ind)
		}
		clear(a.data[l3:])
		a.data = a.data[:l3]
	}
	a.add = a.add[:0]
	a.remove = a.remove[:0]
}
