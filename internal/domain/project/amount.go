package project

import (
	"encoding/json"
	"fmt"
	"math/big"
	"math/bits"
	"strconv"
)

// Amount is a signed 128-bit integer in two's complement (hi carries the sign).
type Amount struct {
	hi int64
	lo uint64
}

var (
	minAmount = new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 127))
	maxAmount = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 127), big.NewInt(1))
	two128    = new(big.Int).Lsh(big.NewInt(1), 128)
	mask64    = new(big.Int).SetUint64(^uint64(0))
)

// NewAmount widens an int64 to an Amount.
func NewAmount(v int64) Amount {
	var hi int64
	if v < 0 {
		hi = -1
	}
	return Amount{hi: hi, lo: uint64(v)}
}

// ParseAmount parses a base-10 integer that must fit in 128 signed bits.
func ParseAmount(s string) (Amount, error) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return Amount{}, fmt.Errorf("invalid amount %q", s)
	}
	return amountFromBig(v)
}

func amountFromBig(v *big.Int) (Amount, error) {
	if v.Cmp(minAmount) < 0 || v.Cmp(maxAmount) > 0 {
		return Amount{}, fmt.Errorf("amount %s out of 128-bit range", v.String())
	}
	t := new(big.Int).Set(v)
	if t.Sign() < 0 {
		t.Add(t, two128)
	}
	lo := new(big.Int).And(t, mask64).Uint64()
	hi := new(big.Int).Rsh(t, 64).Uint64()
	return Amount{hi: int64(hi), lo: lo}, nil
}

// Big returns the value as a big.Int.
func (a Amount) Big() *big.Int {
	v := big.NewInt(a.hi)
	v.Lsh(v, 64)
	return v.Add(v, new(big.Int).SetUint64(a.lo))
}

// Sign returns -1, 0 or +1.
func (a Amount) Sign() int {
	switch {
	case a.hi < 0:
		return -1
	case a.hi == 0 && a.lo == 0:
		return 0
	default:
		return 1
	}
}

// IsZero reports whether the amount is 0.
func (a Amount) IsZero() bool {
	return a.Sign() == 0
}

// Cmp compares a and b and returns -1, 0 or +1.
func (a Amount) Cmp(b Amount) int {
	if a.hi != b.hi {
		if a.hi < b.hi {
			return -1
		}
		return 1
	}
	if a.lo != b.lo {
		if a.lo < b.lo {
			return -1
		}
		return 1
	}
	return 0
}

// Add returns a+b and false if the sum overflows 128 signed bits.
func (a Amount) Add(b Amount) (Amount, bool) {
	lo, carry := bits.Add64(a.lo, b.lo, 0)
	hiU, _ := bits.Add64(uint64(a.hi), uint64(b.hi), carry)
	hi := int64(hiU)
	if (a.hi < 0) == (b.hi < 0) && (hi < 0) != (a.hi < 0) {
		return Amount{}, false
	}
	return Amount{hi: hi, lo: lo}, true
}

func (a Amount) String() string {
	if a.hi == 0 {
		return strconv.FormatUint(a.lo, 10)
	}
	if a.hi == -1 && a.lo >= 1<<63 {
		return strconv.FormatInt(int64(a.lo), 10)
	}
	return a.Big().String()
}

// MarshalJSON encodes the amount as a decimal string so JSON number precision never applies.
func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

// UnmarshalJSON accepts a decimal string or a bare JSON integer.
func (a *Amount) UnmarshalJSON(data []byte) error {
	var s string
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
	} else {
		s = string(data)
	}
	v, err := ParseAmount(s)
	if err != nil {
		return err
	}
	*a = v
	return nil
}
