package pool

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPool_GetPut(t *testing.T) {
	resets := 0
	p := New(
		func() *[]int { s := make([]int, 0, 4); return &s },
		func(s *[]int) { resets++; *s = (*s)[:0] },
	)

	s := p.Get()
	*s = append(*s, 1, 2, 3)
	_, inUse := p.Stats()
	assert.Equal(t, int64(1), inUse)

	p.Put(s)
	allocated, inUse := p.Stats()
	assert.Equal(t, int64(1), allocated)
	assert.Equal(t, int64(0), inUse)
	assert.Equal(t, 1, resets)
	assert.Empty(t, *s)
}

func TestRunes_ResetsBuffers(t *testing.T) {
	buf := Runes.Get()
	*buf = append(*buf, []rune("hello")...)
	Runes.Put(buf)
	assert.Empty(t, *buf)

	big := Runes.Get()
	*big = make([]rune, 0, maxRuneBuffer+1)
	Runes.Put(big)
	assert.Equal(t, 256, cap(*big))
}

func TestRunes_Concurrent(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				buf := Runes.Get()
				*buf = append(*buf, 'x')
				Runes.Put(buf)
			}
		}()
	}
	wg.Wait()
}
