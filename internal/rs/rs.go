package rs

import "fmt"

// ErrUncorrectable is returned when the error+erasure locator polynomial
// cannot be resolved (den==0 in Forney's algorithm), i.e. there are more
// errors than the code can correct for the given erasure count.
var ErrUncorrectable = fmt.Errorf("rs: block is uncorrectable")

// Encode computes the NumRoots parity octets for a K-octet (or shorter,
// for a final shortened block — the caller pads with leading zeros
// conceptually by passing fewer data octets) message.
func Encode(data []byte) []byte {
	var bb [NumRoots]int
	for _, d := range data {
		feedback := indexOf[int(d)^bb[0]]
		if feedback != a0 {
			for j := 1; j < NumRoots; j++ {
				bb[j] ^= alphaTo[modnn(feedback+genPoly[NumRoots-j])]
			}
		}
		copy(bb[0:NumRoots-1], bb[1:NumRoots])
		if feedback != a0 {
			bb[NumRoots-1] = alphaTo[modnn(feedback+genPoly[0])]
		} else {
			bb[NumRoots-1] = 0
		}
	}
	out := make([]byte, NumRoots)
	for i, v := range bb {
		out[i] = byte(v)
	}
	return out
}

// Decode performs errors-and-erasures decoding of a full N=255 octet
// block in place, given the 0-indexed (transmission-order) positions of
// known erasures. It returns the number of symbols corrected, or
// ErrUncorrectable.
func Decode(data []byte, erasPos []int) (int, error) {
	if len(data) != N {
		return 0, fmt.Errorf("rs: decode: block must be %d octets, got %d", N, len(data))
	}
	noEras := len(erasPos)

	var s [NumRoots]int
	for i := range s {
		s[i] = int(data[0])
	}
	for j := 1; j < N; j++ {
		for i := 0; i < NumRoots; i++ {
			if s[i] == 0 {
				s[i] = int(data[j])
			} else {
				s[i] = int(data[j]) ^ alphaTo[modnn(indexOf[s[i]]+(fcr+i)*prim)]
			}
		}
	}

	synError := 0
	for i := 0; i < NumRoots; i++ {
		synError |= s[i]
		s[i] = indexOf[s[i]]
	}
	if synError == 0 {
		return 0, nil
	}

	var lambda [NumRoots + 1]int
	lambda[0] = 1

	if noEras > 0 {
		lambda[1] = alphaTo[modnn(prim*(N-1-erasPos[0]))]
		for i := 1; i < noEras; i++ {
			u := modnn(prim * (N - 1 - erasPos[i]))
			for j := i + 1; j > 0; j-- {
				tmp := indexOf[lambda[j-1]]
				if tmp != a0 {
					lambda[j] ^= alphaTo[modnn(u+tmp)]
				}
			}
		}
	}

	var b [NumRoots + 1]int
	for i := range b {
		b[i] = indexOf[lambda[i]]
	}

	r := noEras
	el := noEras
	for {
		r++
		if r > NumRoots {
			break
		}
		discrR := 0
		for i := 0; i < r; i++ {
			if lambda[i] != 0 && s[r-i-1] != a0 {
				discrR ^= alphaTo[modnn(indexOf[lambda[i]]+s[r-i-1])]
			}
		}
		discrR = indexOf[discrR]
		if discrR == a0 {
			copy(b[1:], b[:NumRoots])
			b[0] = a0
			continue
		}
		var t [NumRoots + 1]int
		t[0] = lambda[0]
		for i := 0; i < NumRoots; i++ {
			if b[i] != a0 {
				t[i+1] = lambda[i+1] ^ alphaTo[modnn(discrR+b[i])]
			} else {
				t[i+1] = lambda[i+1]
			}
		}
		if 2*el <= r+noEras-1 {
			el = r + noEras - el
			for i := 0; i <= NumRoots; i++ {
				if lambda[i] == 0 {
					b[i] = a0
				} else {
					b[i] = modnn(indexOf[lambda[i]] - discrR + nn)
				}
			}
		} else {
			copy(b[1:], b[:NumRoots])
			b[0] = a0
		}
		lambda = t
	}

	degLambda := 0
	for i := 0; i <= NumRoots; i++ {
		lambda[i] = indexOf[lambda[i]]
		if lambda[i] != a0 {
			degLambda = i
		}
	}

	var reg [NumRoots + 1]int
	copy(reg[1:], lambda[1:NumRoots+1])

	var root, loc [NumRoots]int
	count := 0
	for i, k := 1, iprim-1; i <= nn; i, k = i+1, modnn(k+iprim) {
		q := 1
		for j := degLambda; j > 0; j-- {
			if reg[j] != a0 {
				reg[j] = modnn(reg[j] + j)
				q ^= alphaTo[reg[j]]
			}
		}
		if q != 0 {
			continue
		}
		if count < NumRoots {
			root[count] = i
			loc[count] = k
			count++
		}
	}

	if count != degLambda {
		// Uncorrectable: deg(lambda) != number of roots found.
		return 0, ErrUncorrectable
	}

	degOmega := degLambda - 1
	var omega [NumRoots + 1]int
	for i := 0; i <= degOmega; i++ {
		tmp := 0
		for j := i; j >= 0; j-- {
			if s[i-j] != a0 && lambda[j] != a0 {
				tmp ^= alphaTo[modnn(s[i-j]+lambda[j])]
			}
		}
		omega[i] = indexOf[tmp]
	}

	for j := count - 1; j >= 0; j-- {
		num1 := 0
		for i := degOmega; i >= 0; i-- {
			if omega[i] != a0 {
				num1 ^= alphaTo[modnn(omega[i]+i*root[j])]
			}
		}
		num2 := alphaTo[modnn(root[j]*(fcr-1)+nn)]
		den := 0
		limit := degLambda
		if NumRoots-1 < limit {
			limit = NumRoots - 1
		}
		limit &^= 1
		for i := limit; i >= 0; i -= 2 {
			if lambda[i+1] != a0 {
				den ^= alphaTo[modnn(lambda[i+1]+i*root[j])]
			}
		}
		if den == 0 {
			return 0, ErrUncorrectable
		}
		if num1 != 0 {
			data[loc[j]] ^= byte(alphaTo[modnn(indexOf[num1]+indexOf[num2]+nn-indexOf[den])])
		}
	}
	return count, nil
}

// FECOctetCount returns the number of RS parity octets carried for a tail
// block of the given data length, per spec.md §4.G: 0 for <3 octets, 2 for
// 3..30, 4 for 31..67, 6 (a full block's worth) for >=68.
func FECOctetCount(tailLen int) int {
	switch {
	case tailLen < 3:
		return 0
	case tailLen <= 30:
		return 2
	case tailLen <= 67:
		return 4
	default:
		return NumRoots
	}
}

// Verify runs errors-and-erasures decoding on a full 255-octet block where
// only fecOctets of the NumRoots parity octets are actually present (the
// rest of the trailing positions are erasures, per spec.md §4.B). It
// returns the number of symbols corrected, or a negative-equivalent error
// when uncorrectable.
func Verify(buf *[N]byte, fecOctets int) (int, error) {
	if fecOctets >= NumRoots {
		return Decode(buf[:], nil)
	}
	nEras := NumRoots - fecOctets
	eras := make([]int, nEras)
	for i := 0; i < nEras; i++ {
		eras[i] = N - nEras + i
	}
	return Decode(buf[:], eras)
}
