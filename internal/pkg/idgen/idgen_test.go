package idgen_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/KirkDiggler/bestiary/internal/pkg/idgen"
)

func TestSequentialGenerator(t *testing.T) {
	gen := idgen.NewSequential("nav")
	assert.Equal(t, "nav_1", gen.Generate())
	assert.Equal(t, "nav_2", gen.Generate())

	assert.Equal(t, "1", idgen.NewSequential("").Generate())
}

func TestUUIDGenerator(t *testing.T) {
	gen := idgen.NewUUID("nav")
	first := gen.Generate()
	second := gen.Generate()

	assert.True(t, strings.HasPrefix(first, "nav_"))
	assert.Len(t, first, len("nav_")+36)
	assert.NotEqual(t, first, second)
}
