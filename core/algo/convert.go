package algo

import (
	"fmt"
	"slices"

	"github.com/huangsam/drawbias/schema"
)

// ConversionNote describes the digit substitution map.
const ConversionNote = "Mapa E: 0↔1, 2↔5, 3↔8, 4↔7, 6↔9"

// conversionMap is the digit substitution map. Every digit has a partner.
var conversionMap = [10]int{1, 0, 5, 8, 7, 2, 9, 4, 3, 6}

// ConvertDigit returns the partner of a single digit.
func ConvertDigit(d int) int {
	return conversionMap[d%10]
}

// Mirror swaps the two digits of a number: 12 -> 21, 7 -> 70.
func Mirror(n int) int {
	n = wrap(n)
	return (n%10)*10 + n/10
}

// DigitSum adds the two digits of a number.
func DigitSum(n int) int {
	n = wrap(n)
	return n/10 + n%10
}

// Complement returns (100 - n) mod 100.
func Complement(n int) int {
	return (100 - wrap(n)) % 100
}

// ConvertBothDigits maps both digits through the conversion map.
func ConvertBothDigits(n int) int {
	n = wrap(n)
	return ConvertDigit(n/10)*10 + ConvertDigit(n%10)
}

// SimpleConversions changes one digit at a time.
func SimpleConversions(n int) []int {
	n = wrap(n)
	tens, units := n/10, n%10
	var out []int
	out = appendUnique(out, ConvertDigit(tens)*10+units)
	out = appendUnique(out, tens*10+ConvertDigit(units))
	return out
}

// CompositeConversions returns the both-digit conversion, its mirror and the
// mirrors of every simple conversion.
func CompositeConversions(n int) []int {
	both := ConvertBothDigits(n)
	out := []int{both}
	out = appendUnique(out, Mirror(both))
	for _, s := range SimpleConversions(n) {
		out = appendUnique(out, Mirror(s))
	}
	return out
}

// Apply returns every output of a built-in operation for input n.
// Params "k" is the step for add, sub and neighbor and defaults to 1.
func Apply(op schema.Operation, n int, params map[string]int) ([]int, error) {
	k := 1
	if v, ok := params["k"]; ok {
		k = v
	}
	n = wrap(n)
	switch op {
	case schema.MirrorOp:
		return []int{Mirror(n)}, nil
	case schema.DigitSumOp:
		return []int{DigitSum(n)}, nil
	case schema.AddOp:
		return []int{wrap(n + k)}, nil
	case schema.SubOp:
		return []int{wrap(n - k)}, nil
	case schema.NeighborOp:
		return appendUnique([]int{wrap(n + k)}, wrap(n-k)), nil
	case schema.DigitMapOp:
		return CompositeConversions(n), nil
	default:
		return nil, fmt.Errorf("unknown operation %q", op)
	}
}

// wrap folds any integer into [0, 99].
func wrap(n int) int {
	return ((n % 100) + 100) % 100
}

func appendUnique(out []int, v int) []int {
	if slices.Contains(out, v) {
		return out
	}
	return append(out, v)
}
