package hwe

import (
	"math/big"

	"github.com/BenLubar/memoize"
)

var memoizedHetProb = memoize.Memoize(hetProbBig).(func(int64, int64, int64) float64)

// hetProb is the probability of observing exactly ab heterozygotes among
// aa+ab+bb individuals carrying ab+2*bb minor alleles, under random mating.
func hetProb(aa, ab, bb int64) float64 {
	return memoizedHetProb(aa, ab, bb)
}

// hetProbBig evaluates 2^ab * nA! * na! / ((2N)!/N! * aa! * ab! * bb!)
// exactly with big integers; the counts stay small enough in practice for
// this to be cheap, and memoization covers the repeated tail walks.
func hetProbBig(aa, ab, bb int64) float64 {
	nA := aa*2 + ab
	na := bb*2 + ab
	n := aa + ab + bb

	var num big.Int
	num.Exp(big.NewInt(2), big.NewInt(ab), nil)
	num.Mul(&num, rangeFactorial(1, nA))
	num.Mul(&num, rangeFactorial(1, na))

	var denom big.Int
	denom.Add(&denom, rangeFactorial(n+1, 2*n))
	denom.Mul(&denom, rangeFactorial(1, aa))
	denom.Mul(&denom, rangeFactorial(1, ab))
	denom.Mul(&denom, rangeFactorial(1, bb))

	var ratNum, ratDenom big.Rat
	ratNum.SetInt(&num)
	ratDenom.SetInt(&denom)
	p, _ := new(big.Rat).Quo(&ratNum, &ratDenom).Float64()

	return p
}

var rangeFactorial = memoize.Memoize(func(a, b int64) *big.Int {
	return big.NewInt(1).MulRange(a, b)
}).(func(int64, int64) *big.Int)
