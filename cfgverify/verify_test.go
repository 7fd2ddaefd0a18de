package cfgverify

import (
	"testing"

	"github.com/abcd-project/abcd/cfgbuild"
	"github.com/abcd-project/abcd/decode"
	"github.com/stretchr/testify/assert"
)

func TestVerifyWellFormedCFG(t *testing.T) {
	res := decode.Decode([]byte{0x09, 0x04, 7, 0, 0, 0, 0x90})
	g := cfgbuild.Build(res.Instructions, nil)
	assert.NoError(t, Verify(g))
}

func TestVerifyCatchesInvalidSuccessor(t *testing.T) {
	res := decode.Decode([]byte{0x90})
	g := cfgbuild.Build(res.Instructions, nil)
	g.Blocks[0].Succs = append(g.Blocks[0].Succs, 7)

	err := Verify(g)
	assert.Error(t, err)
	var invalid InvalidSuccessorError
	assert.ErrorAs(t, err, &invalid)
}
