// Package difficulty implements the compact-target codec (spec.md
// §4.1) and the DAA window/retarget algorithm (spec.md §4.4, C4). All
// arithmetic is integer-only 256-bit, via github.com/holiman/uint256;
// no float64 appears anywhere in the retarget path, per spec.md §4.4's
// "integer-only fixed-point" requirement.
package difficulty

import (
	"github.com/ghostdag-network/consensus/domain/consensus/model/externalapi"
	"github.com/ghostdag-network/consensus/domain/consensus/ruleerrors"
	"github.com/ghostdag-network/consensus/domain/consensus/utils/consensushashing"
	"github.com/holiman/uint256"
)

// maxTarget is 2^256 - 1, the largest representable (easiest) target.
var maxTarget = new(uint256.Int).Sub(
	new(uint256.Int).Lsh(uint256.NewInt(1), 256),
	uint256.NewInt(1),
)

// CompactToTarget decodes a Bitcoin-compatible compact ("bits") encoding
// into a 256-bit target. It rejects a target that overflows the 256-bit
// space with ErrInvalidBitsField, but does NOT reject a zero target;
// callers that must reject zero difficulty (spec.md §4.1) do so
// explicitly via IsZero on the result.
func CompactToTarget(bits uint32) (*uint256.Int, error) {
	mantissa := bits & 0x007fffff
	exponent := bits >> 24

	var target *uint256.Int
	if exponent <= 3 {
		target = uint256.NewInt(uint64(mantissa))
		target = new(uint256.Int).Rsh(target, uint(8*(3-exponent)))
	} else {
		target = uint256.NewInt(uint64(mantissa))
		shift := uint(8 * (exponent - 3))
		if shift > 256 {
			return nil, ruleerrors.New(ruleerrors.ErrInvalidBitsField, "bits 0x%08x decodes to an out-of-range exponent", bits)
		}
		if mantissa != 0 && uint(uint256.NewInt(uint64(mantissa)).BitLen())+shift > 256 {
			return nil, ruleerrors.New(ruleerrors.ErrInvalidBitsField, "bits 0x%08x decodes to a target overflowing 256 bits", bits)
		}
		target = new(uint256.Int).Lsh(target, shift)
	}

	// bits 0x00800000 sets the sign bit in Bitcoin's encoding; consensus
	// has no notion of a negative target, so treat it as malformed.
	if bits&0x00800000 != 0 {
		return nil, ruleerrors.New(ruleerrors.ErrInvalidBitsField, "bits 0x%08x has the sign bit set", bits)
	}

	if target.Gt(maxTarget) {
		return nil, ruleerrors.New(ruleerrors.ErrInvalidBitsField, "bits 0x%08x decodes to a target overflowing 256 bits", bits)
	}

	return target, nil
}

// TargetToCompact encodes a 256-bit target into Bitcoin-compatible
// compact form, rounding toward a STRICTER (smaller) target when the
// mantissa doesn't fit exactly: spec.md §4.4 forbids rounding down
// toward easier difficulty, since the pow_hash < target comparison must
// stay bit-exact with the encoded value.
func TargetToCompact(target *uint256.Int) uint32 {
	if target.IsZero() {
		return 0
	}

	bitLen := target.BitLen()
	exponent := uint((bitLen + 7) / 8)

	var mantissa uint32
	if exponent <= 3 {
		shifted := new(uint256.Int).Lsh(target, uint(8*(3-exponent)))
		mantissa = uint32(shifted.Uint64())
	} else {
		// Bits below the mantissa's precision are truncated, which keeps
		// the encoded target <= the true target (never easier than
		// intended).
		shift := uint(8 * (exponent - 3))
		shifted := new(uint256.Int).Rsh(target, shift)
		mantissa = uint32(shifted.Uint64())
	}

	if mantissa&0x00800000 != 0 {
		mantissa >>= 8
		exponent++
	}

	return uint32(exponent)<<24 | mantissa
}

// ScaleTargetByRatio returns target * numerator / denominator as a
// 256-bit integer, computed via a 512-bit intermediate so the
// multiplication can't silently wrap before the division reduces it
// back down (spec.md §4.4's "integer-only fixed-point" retarget step).
// Fails with ErrTargetOverflow if the scaled result would exceed the
// 256-bit target space.
func ScaleTargetByRatio(target *uint256.Int, numerator, denominator uint64) (*uint256.Int, error) {
	result, overflow := new(uint256.Int).MulDivOverflow(target, uint256.NewInt(numerator), uint256.NewInt(denominator))
	if overflow {
		return nil, ruleerrors.New(ruleerrors.ErrTargetOverflow, "retarget scaled target past the 256-bit target space")
	}
	if result.Gt(maxTarget) {
		return nil, ruleerrors.New(ruleerrors.ErrTargetOverflow, "retarget scaled target past the 256-bit target space")
	}
	return result, nil
}

// CheckProofOfWork implements C5's target range and pow_hash < target
// check (spec.md §4.5), shared by blockValidator's in-DAG validation
// and Consensus.VerifyProofOfWork's standalone attestation path so the
// two never drift. skipPoW bypasses only the hash comparison, never the
// target-range check; the network gate that permits skipPoW at all
// lives in the caller that threads it through (spec.md §9, devnet only).
func CheckProofOfWork(header *externalapi.DomainBlockHeader, powMax uint32, skipPoW bool) error {
	target, err := CompactToTarget(header.Bits)
	if err != nil {
		return err
	}
	if target.IsZero() {
		return ruleerrors.New(ruleerrors.ErrZeroDifficulty, "block bits decode to a zero target")
	}

	powMaxTarget, err := CompactToTarget(powMax)
	if err != nil {
		return err
	}
	if target.Gt(powMaxTarget) {
		return ruleerrors.New(ruleerrors.ErrInvalidBitsField, "block target exceeds this network's PoW limit")
	}

	if skipPoW {
		return nil
	}

	powHash, err := consensushashing.PoWHash(header)
	if err != nil {
		return err
	}
	if !hashLessThanTarget(powHash, target) {
		return ruleerrors.New(ruleerrors.ErrInvalidPoW, "pow_hash is not less than the required target")
	}
	return nil
}

// hashLessThanTarget compares a hash as a big-endian 256-bit integer
// against target, the same comparison blockValidator.checkProofOfWork
// and CheckProofOfWork both rely on.
func hashLessThanTarget(hash *externalapi.DomainHash, target *uint256.Int) bool {
	hashInt := new(uint256.Int).SetBytes(hash[:])
	return hashInt.Lt(target)
}

// WorkFromTarget computes the cumulative-work contribution of a block
// whose PoW target is target: work = floor((2^256-1)/(target+1)) + 1.
// The +1 on both the divisor and the result keeps a maximal target
// (easiest difficulty) contributing the minimum nonzero work without
// overflowing on target = 2^256-1 (spec.md §4.1).
func WorkFromTarget(target *uint256.Int) *uint256.Int {
	denominator := new(uint256.Int).AddUint64(target, 1)
	if denominator.IsZero() {
		// target == 2^256-1: denominator wrapped to 0, so treat it as
		// the largest possible divisor instead of dividing by zero.
		return uint256.NewInt(1)
	}
	quotient := new(uint256.Int).Div(maxTarget, denominator)
	return quotient.AddUint64(quotient, 1)
}
