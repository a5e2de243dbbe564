package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type recordingSink struct {
	announced []string
	boards    []string
}

func (s *recordingSink) Announce(text string)    { s.announced = append(s.announced, text) }
func (s *recordingSink) Leaderboard(text string) { s.boards = append(s.boards, text) }

func TestMultiFansOut(t *testing.T) {
	a := &recordingSink{}
	b := &recordingSink{}
	m := NewMulti(a, b)

	m.Announce("off they go")
	m.Leaderboard("standings")

	assert.Equal(t, []string{"off they go"}, a.announced)
	assert.Equal(t, []string{"off they go"}, b.announced)
	assert.Equal(t, []string{"standings"}, a.boards)
	assert.Equal(t, []string{"standings"}, b.boards)
}

func TestMultiSkipsNilSinks(t *testing.T) {
	a := &recordingSink{}
	m := NewMulti(nil, a, nil)

	m.Announce("hello")
	assert.Equal(t, []string{"hello"}, a.announced)
}
