// Package rs implements the RS(255,249) Reed-Solomon codec over GF(256)
// used as the VDL2 burst FEC layer, per spec.md §4.B: primitive polynomial
// 0x187, first consecutive root (fcr) 120, root-gap (prim) 1, generator
// root stride 1, six parity octets for a full block.
//
// The field tables and the encode/decode routines follow the classic
// errors-and-erasures Berlekamp-Massey decoder (the same algorithm the
// reference implementation's libfec dependency provides, per
// original_source/rs.c's init_rs_char(8, 0x187, 120, 1, 6, 0) call).
package rs

const (
	mm       = 8               // symbol size in bits
	nn       = 255              // 2^mm - 1
	primPoly = 0x187
	fcr      = 120 // first consecutive root
	prim     = 1   // root stride (generator step between consecutive roots)
	// A0 is the index-form representation of the zero element.
	a0 = nn

	// N, K describe the full (non-shortened) code; a given burst's block
	// may be shortened (fewer than K data octets), per spec.md §4.G.
	N        = 255
	K        = 249
	NumRoots = N - K // 6 parity octets per full block
)

var (
	alphaTo [nn + 1]int // index -> field element
	indexOf [nn + 1]int // field element -> index (log); indexOf[0] = a0
	iprim   int         // multiplicative inverse of prim mod nn
	genPoly [NumRoots + 1]int
)

func modnn(x int) int {
	for x >= nn {
		x -= nn
		x = (x >> mm) + (x & nn)
	}
	return x
}

func init() {
	// Build alpha_to/index_of exactly as init_rs_char does for a
	// primitive polynomial given in its natural (non-reversed) form.
	sr := 1
	for i := 0; i < nn; i++ {
		alphaTo[i] = sr
		indexOf[sr] = i
		sr <<= 1
		if sr&(1<<mm) != 0 {
			sr ^= primPoly
		}
		sr &= nn
	}
	indexOf[0] = a0
	alphaTo[nn] = 0

	// Multiplicative inverse of prim (mod nn) by brute force; nn=255 and
	// prim is always tiny so this is instant.
	for i := 1; i < nn; i++ {
		if (prim*i)%nn == 1 {
			iprim = i
			break
		}
	}

	buildGenPoly()
}

func buildGenPoly() {
	var g [NumRoots + 1]int
	g[0] = 1
	root := fcr * prim
	for i := 0; i < NumRoots; i++ {
		g[i+1] = 1
		for j := i; j > 0; j-- {
			if g[j] != 0 {
				g[j] = g[j-1] ^ alphaTo[modnn(indexOf[g[j]]+root)]
			} else {
				g[j] = g[j-1]
			}
		}
		g[0] = alphaTo[modnn(indexOf[g[0]]+root)]
		root += prim
	}
	// Store in index (log) form, as the encoder consumes it that way.
	for i := 0; i <= NumRoots; i++ {
		genPoly[i] = indexOf[g[i]]
	}
}
