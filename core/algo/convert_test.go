package algo

import (
	"testing"

	"github.com/huangsam/drawbias/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDigitHelpers(t *testing.T) {
	assert.Equal(t, 21, Mirror(12))
	assert.Equal(t, 70, Mirror(7))
	assert.Equal(t, 0, Mirror(0))
	assert.Equal(t, 9, DigitSum(45))
	assert.Equal(t, 18, DigitSum(99))
	assert.Equal(t, 0, Complement(0))
	assert.Equal(t, 75, Complement(25))
}

func TestConversionMapIsInvolution(t *testing.T) {
	for d := range 10 {
		assert.Equal(t, d, ConvertDigit(ConvertDigit(d)), "digit %d", d)
		assert.NotEqual(t, d, ConvertDigit(d), "digit %d", d)
	}
}

func TestConversions(t *testing.T) {
	assert.Equal(t, 52, ConvertBothDigits(25))
	assert.Equal(t, 10, ConvertBothDigits(1))
	assert.ElementsMatch(t, []int{55, 22}, SimpleConversions(25))
	// 25 -> both 52, mirror 25, simple 55/22 mirrored stay 55/22.
	assert.ElementsMatch(t, []int{52, 25, 55, 22}, CompositeConversions(25))
	assert.ElementsMatch(t, []int{10, 1, 11, 0}, CompositeConversions(1))
}

func TestApply(t *testing.T) {
	tests := []struct {
		op     schema.Operation
		n      int
		params map[string]int
		want   []int
	}{
		{schema.MirrorOp, 12, nil, []int{21}},
		{schema.DigitSumOp, 38, nil, []int{11}},
		{schema.AddOp, 98, map[string]int{"k": 5}, []int{3}},
		{schema.SubOp, 2, map[string]int{"k": 5}, []int{97}},
		{schema.NeighborOp, 0, nil, []int{1, 99}},
		{schema.DigitMapOp, 25, nil, []int{52, 25, 55, 22}},
	}
	for _, tt := range tests {
		t.Run(string(tt.op), func(t *testing.T) {
			got, err := Apply(tt.op, tt.n, tt.params)
			require.NoError(t, err)
			assert.ElementsMatch(t, tt.want, got)
		})
	}

	_, err := Apply("rotate", 1, nil)
	assert.Error(t, err)
}
