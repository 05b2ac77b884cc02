package raffle

import (
	"math/big"

	"github.com/DrDelphi/EgldRaffle/data"
)

const (
	feePercent    = 10
	payoutPercent = 90
)

var hundred = big.NewInt(100)

// entryFee is the administrative skim taken from the value actually received
func entryFee(value *big.Int) *big.Int {
	fee := new(big.Int).Mul(value, big.NewInt(feePercent))
	return fee.Quo(fee, hundred)
}

// poolValue is the nominal pool of a round: entrance fee times entrants
func poolValue(entranceFee *big.Int, entrants uint64) *big.Int {
	return new(big.Int).Mul(entranceFee, new(big.Int).SetUint64(entrants))
}

func payoutOf(pool *big.Int) *big.Int {
	p := new(big.Int).Mul(pool, big.NewInt(payoutPercent))
	return p.Quo(p, hundred)
}

// refundOf is what a participant with count entries gets back from a failed round
func refundOf(entranceFee *big.Int, count uint64) *big.Int {
	return payoutOf(poolValue(entranceFee, count))
}

// winnerIndex selects an entrant with words[0] mod entrants. The modulo bias
// for entrant counts that do not divide the word domain is accepted.
func winnerIndex(word *big.Int, entrants uint64) uint64 {
	idx := new(big.Int).Mod(word, new(big.Int).SetUint64(entrants))
	return idx.Uint64()
}

// withdrawable is the fee balance minus the gas reserve
func withdrawable(ledger *data.Ledger) *big.Int {
	fees := new(big.Int).Sub(copyInt(ledger.FeeBalance), copyInt(ledger.GasReserve))
	if fees.Sign() < 0 {
		return big.NewInt(0)
	}

	return fees
}

func add(v *big.Int, delta *big.Int) *big.Int {
	return new(big.Int).Add(copyInt(v), delta)
}

func sub(v *big.Int, delta *big.Int) *big.Int {
	return new(big.Int).Sub(copyInt(v), delta)
}

func copyInt(v *big.Int) *big.Int {
	if v == nil {
		return big.NewInt(0)
	}

	return new(big.Int).Set(v)
}
