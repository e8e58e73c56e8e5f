package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, SplitList(" a, ,b ,"))
	assert.Equal(t, []string{"http://localhost:5173"}, SplitList("http://localhost:5173"))
	assert.Nil(t, SplitList(""))
}

func TestOrDiscard(t *testing.T) {
	l := NewLogger("debug")
	assert.Same(t, l, OrDiscard(l))
	assert.NotNil(t, OrDiscard(nil))
}
