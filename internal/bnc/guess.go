package bnc

// NextGuess builds a guess from the pool one position at a time, left to right.
// At each position it takes the digit most candidates share there (the lowest
// digit on ties), then keeps only the candidates with that digit before moving
// on. Since every step keeps at least one candidate, the result is always a
// member of the pool.
//
// certain is true when the pool has a single member, which is then returned
// as is. NextGuess panics on an empty pool; Filter never produces one.
func NextGuess(pool Pool) (guess Code, certain bool) {
	switch len(pool.codes) {
	case 0:
		panic("bnc: NextGuess on an empty pool")
	case 1:
		return pool.codes[0], true
	}

	active := append([]Code(nil), pool.codes...)
	for pos := 0; pos < CodeLength; pos++ {
		var freq [NumDigits]int
		for _, c := range active {
			freq[c.Digit(pos)]++
		}

		best, bestFreq := 0, 0
		for d := 0; d < NumDigits; d++ {
			if freq[d] > bestFreq {
				best, bestFreq = d, freq[d]
			}
		}
		guess = guess<<laneBits | Code(best)

		// narrow in place; active is our own copy
		n := 0
		for _, c := range active {
			if c.Digit(pos) == best {
				active[n] = c
				n++
			}
		}
		active = active[:n]
	}
	return guess, false
}
