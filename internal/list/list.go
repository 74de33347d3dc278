// Package list implements a circular doubly-linked list, the same shape as
// the intrusive list used throughout the session/window/pane registries.
//
// Go has no portable container_of, so instead of embedding a bare link
// struct in every record (the C idiom) each node owns its payload directly:
// List[T] is a list of *Element[T], and the payload is reached through
// Element.Value. Insert-after, insert-before, unlink, empty-test, count and
// safe iteration all behave exactly like the original: Remove nils out the
// removed element's own next/prev so a double-remove is a visible no-op
// rather than silent corruption.
package list

// Element is one node of a List. The zero value is not usable; obtain one
// from List.PushFront/PushBack/InsertAfter/InsertBefore.
type Element[T any] struct {
	next, prev *Element[T]
	list       *List[T]
	Value      T
}

// Next returns the next element, or nil if e is the last element.
func (e *Element[T]) Next() *Element[T] {
	if n := e.next; e.list != nil && n != &e.list.root {
		return n
	}
	return nil
}

// Prev returns the previous element, or nil if e is the first element.
func (e *Element[T]) Prev() *Element[T] {
	if p := e.prev; e.list != nil && p != &e.list.root {
		return p
	}
	return nil
}

// List is a circular doubly-linked list of Elements. The zero value is an
// empty list ready to use.
type List[T any] struct {
	root Element[T]
	len  int
}

func (l *List[T]) init() *List[T] {
	l.root.next = &l.root
	l.root.prev = &l.root
	l.len = 0
	return l
}

// New returns an initialized empty list.
func New[T any]() *List[T] { return new(List[T]).init() }

func (l *List[T]) lazyInit() {
	if l.root.next == nil {
		l.init()
	}
}

// Len returns the number of elements in the list.
func (l *List[T]) Len() int { return l.len }

// Empty reports whether the list has no elements.
func (l *List[T]) Empty() bool { return l.Len() == 0 }

// Front returns the first element, or nil if the list is empty.
func (l *List[T]) Front() *Element[T] {
	if l.Empty() {
		return nil
	}
	return l.root.next
}

// Back returns the last element, or nil if the list is empty.
func (l *List[T]) Back() *Element[T] {
	if l.Empty() {
		return nil
	}
	return l.root.prev
}

func (l *List[T]) insert(e, at *Element[T]) *Element[T] {
	e.prev = at
	e.next = at.next
	e.prev.next = e
	e.next.prev = e
	e.list = l
	l.len++
	return e
}

func (l *List[T]) insertValue(v T, at *Element[T]) *Element[T] {
	return l.insert(&Element[T]{Value: v}, at)
}

// InsertAfter adds v immediately after mark, which must belong to l, and
// returns the new element. If mark is nil, v is added at the front.
func (l *List[T]) InsertAfter(v T, mark *Element[T]) *Element[T] {
	l.lazyInit()
	if mark == nil {
		return l.insertValue(v, &l.root)
	}
	return l.insertValue(v, mark)
}

// InsertBefore adds v immediately before mark, which must belong to l, and
// returns the new element. If mark is nil, v is added at the back.
func (l *List[T]) InsertBefore(v T, mark *Element[T]) *Element[T] {
	l.lazyInit()
	if mark == nil {
		return l.insertValue(v, l.root.prev)
	}
	return l.insertValue(v, mark.prev)
}

// PushFront inserts v at the front of the list.
func (l *List[T]) PushFront(v T) *Element[T] {
	l.lazyInit()
	return l.insertValue(v, &l.root)
}

// PushBack inserts v at the back of the list (list_add_tail).
func (l *List[T]) PushBack(v T) *Element[T] {
	l.lazyInit()
	return l.insertValue(v, l.root.prev)
}

// Remove unlinks e from the list. Calling Remove twice on the same element
// is a safe no-op the second time: e.next/e.prev are cleared on first
// removal, so the element no longer belongs to any list.
func (l *List[T]) Remove(e *Element[T]) {
	if e.list != l {
		return
	}
	e.prev.next = e.next
	e.next.prev = e.prev
	e.next = nil
	e.prev = nil
	e.list = nil
	l.len--
}

// Each calls fn for every element from front to back. fn may not remove
// elements; use EachSafe for that.
func (l *List[T]) Each(fn func(*Element[T])) {
	for e := l.Front(); e != nil; e = e.Next() {
		fn(e)
	}
}

// EachSafe calls fn for every element from front to back, prefetching the
// successor before fn runs so fn may remove the current element from l.
func (l *List[T]) EachSafe(fn func(*Element[T])) {
	e := l.Front()
	for e != nil {
		next := e.Next()
		fn(e)
		e = next
	}
}

// Values returns a snapshot slice of every element's Value, front to back.
func (l *List[T]) Values() []T {
	out := make([]T, 0, l.Len())
	l.Each(func(e *Element[T]) { out = append(out, e.Value) })
	return out
}
