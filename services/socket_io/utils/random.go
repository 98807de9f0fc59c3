package socketio_utils

import (
	"crypto/rand"
	"math/big"
)

// RollDice produces n fair dice values from the CSPRNG. Game outcomes must
// never come from a seedable generator.
func RollDice(n int) ([]int, error) {
	out := make([]int, n)
	for i := range out {
		v, err := rand.Int(rand.Reader, big.NewInt(6))
		if err != nil {
			return nil, err
		}
		out[i] = int(v.Int64()) + 1
	}
	return out, nil
}

// SpinWheel picks a winning roulette number in [0, 36] from the CSPRNG.
func SpinWheel() (int, error) {
	v, err := rand.Int(rand.Reader, big.NewInt(37))
	if err != nil {
		return 0, err
	}
	return int(v.Int64()), nil
}
