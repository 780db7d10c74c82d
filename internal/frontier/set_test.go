package frontier_test

import (
	"testing"

	"github.com/rohmanhakim/a11y-crawler/internal/frontier"
	"github.com/stretchr/testify/assert"
)

func TestOrderedSet_AddReportsNewMembers(t *testing.T) {
	set := frontier.NewOrderedSet[string]()
	assert.Equal(t, 0, set.Len())

	assert.True(t, set.Add("https://example.test/b"))
	assert.True(t, set.Add("https://example.test/a"))
	assert.False(t, set.Add("https://example.test/b"))
	assert.True(t, set.Add("https://example.test/A"))

	assert.Equal(t, 3, set.Len())
	assert.True(t, set.Contains("https://example.test/a"))
	assert.False(t, set.Contains("https://example.test/c"))
	assert.Equal(t, []string{
		"https://example.test/b",
		"https://example.test/a",
		"https://example.test/A",
	}, set.Items())
}

func TestOrderedSet_ItemsIsACopy(t *testing.T) {
	set := frontier.NewOrderedSet[int]()
	set.Add(1)
	items := set.Items()
	items[0] = 99
	assert.Equal(t, []int{1}, set.Items())
}

func TestQueue_Order(t *testing.T) {
	queue := frontier.NewQueue[int]()

	_, ok := queue.Pop()
	assert.False(t, ok, "empty queue must report false")

	queue.Push(1)
	queue.Push(2)
	queue.Push(3)
	assert.Equal(t, 3, queue.Len())

	for _, want := range []int{1, 2, 3} {
		got, ok := queue.Pop()
		assert.True(t, ok)
		assert.Equal(t, want, got)
	}
	assert.Equal(t, 0, queue.Len())

	_, ok = queue.Pop()
	assert.False(t, ok)
}

func TestQueue_InterleavedPushPopKeepsOrder(t *testing.T) {
	queue := frontier.NewQueue[int]()
	next, want := 0, 0

	// enough traffic to cross the compaction point several times
	for round := 0; round < 50; round++ {
		for i := 0; i < 5; i++ {
			queue.Push(next)
			next++
		}
		for i := 0; i < 3; i++ {
			got, ok := queue.Pop()
			assert.True(t, ok)
			assert.Equal(t, want, got)
			want++
		}
	}
	assert.Equal(t, next-want, queue.Len())

	for queue.Len() > 0 {
		got, _ := queue.Pop()
		assert.Equal(t, want, got)
		want++
	}
	assert.Equal(t, next, want)
}
