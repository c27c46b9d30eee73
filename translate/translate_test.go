package translate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFrom(t *testing.T) {
	assert := assert.New(t)

	assert.NoError(Use(FALLBACK))
	assert.Equal("line 5 stack empty", From("line %d %v", 5, "stack empty"))
	assert.Equal("bad opcode 0x5121", From("bad opcode 0x%04x", uint16(0x5121)))
}

func TestUse_Invalid(t *testing.T) {
	assert := assert.New(t)

	assert.NoError(Use(FALLBACK))
	assert.Error(Use("not a language tag!"))
	assert.Equal("ok", From("ok"))
}
