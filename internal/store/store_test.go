// internal/store/store_test.go
package store_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/browsyhq/browsy-core/api/schemas"
	"github.com/browsyhq/browsy-core/internal/store"
)

func snapshot(title string) *schemas.SpatialDOM {
	d := &schemas.SpatialDOM{Title: title, VP: [2]float64{1280, 720}}
	d.RebuildIndex()
	return d
}

func TestPutGet(t *testing.T) {
	s := store.New(nil)
	session := s.NewSession()

	prev := s.Put(session, snapshot("first"))
	assert.Nil(t, prev)

	got, err := s.Get(session)
	require.NoError(t, err)
	assert.Equal(t, "first", got.Title)
}

func TestPutReturnsPrevious(t *testing.T) {
	s := store.New(nil)
	session := s.NewSession()

	s.Put(session, snapshot("first"))
	prev := s.Put(session, snapshot("second"))
	require.NotNil(t, prev)
	assert.Equal(t, "first", prev.Title)

	got, err := s.Get(session)
	require.NoError(t, err)
	assert.Equal(t, "second", got.Title)
}

func TestGetUnknownSession(t *testing.T) {
	s := store.New(nil)
	_, err := s.Get("nope")
	assert.Error(t, err)
}

func TestDelete(t *testing.T) {
	s := store.New(nil)
	session := s.NewSession()
	s.Put(session, snapshot("x"))

	s.Delete(session)
	_, err := s.Get(session)
	assert.Error(t, err)
	assert.Zero(t, s.Len())

	// Deleting twice is harmless.
	s.Delete(session)
}

func TestSessionsAreIsolated(t *testing.T) {
	s := store.New(nil)
	a := s.NewSession()
	b := s.NewSession()
	require.NotEqual(t, a, b)

	s.Put(a, snapshot("for a"))
	s.Put(b, snapshot("for b"))
	assert.Equal(t, 2, s.Len())

	got, err := s.Get(a)
	require.NoError(t, err)
	assert.Equal(t, "for a", got.Title)
}

func TestConcurrentAccess(t *testing.T) {
	s := store.New(nil)
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			session := s.NewSession()
			s.Put(session, snapshot(fmt.Sprintf("snap %d", n)))
			_, err := s.Get(session)
			assert.NoError(t, err)
			s.Delete(session)
		}(i)
	}
	wg.Wait()
	assert.Zero(t, s.Len())
}
