package core

// addCarry synthesizes the carry-out of a 16-bit addition using the
// trick described in spec §9 ("The carry bit"): the Gigatron native ISA
// has no carry flag, so 16-bit arithmetic derives it from the sign bits
// of the operands and the result.
//
//	carry = (hi(a) & hi(b)) | ((hi(a) ^ hi(b)) & ~hi(a+b))
func addCarry(a, b uint16) bool {
	sum := a + b
	hiA := a>>15 != 0
	hiB := b>>15 != 0
	hiSum := sum>>15 != 0
	return (hiA && hiB) || ((hiA != hiB) && !hiSum)
}

// subBorrow returns true if a-b borrows (a < b unsigned).
func subBorrow(a, b uint16) bool {
	return a < b
}
