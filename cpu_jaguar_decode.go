// cpu_jaguar_decode.go - Instruction fields and multi-word decode

package main

// Instruction field helpers. Bits 15-10 select the operation, bits 9-5 hold
// the source register or quick immediate and bits 4-0 the destination.
func opIndex(op uint16) int { return int(op >> 10) }
func opSrc(op uint16) int   { return int(op>>5) & 31 }
func opDst(op uint16) int   { return int(op) & 31 }

const (
	opResmacIndex = 19
	opImacnIndex  = 20
)

// macTerm is one IMACN word of a multiply/accumulate chain.
type macTerm struct {
	src uint8
	dst uint8
}

// macChain is the decoded tail of an IMULTN instruction.
type macChain struct {
	terms     []macTerm
	resmac    bool
	resmacReg uint8
	words     int // extension words consumed, terminator included
}

// decodeImmediate32 reads the two extension words of MOVEI. The low half of
// the immediate comes first.
func (c *JaguarCPU) decodeImmediate32(pc uint32) (value uint32, words int) {
	lo := c.mem.Fetch16(pc)
	hi := c.mem.Fetch16(pc + 2)
	return uint32(lo) | uint32(hi)<<16, 2
}

// decodeMACChain collects the IMACN words following an IMULTN at pc and an
// optional RESMAC terminator. Any other opcode ends the chain and is left
// for the dispatcher.
func (c *JaguarCPU) decodeMACChain(pc uint32) macChain {
	chain := macChain{terms: c.macBuf[:0]}
	op := c.mem.Fetch16(pc)
	for opIndex(op) == opImacnIndex {
		chain.terms = append(chain.terms, macTerm{src: uint8(opSrc(op)), dst: uint8(opDst(op))})
		chain.words++
		pc += 2
		op = c.mem.Fetch16(pc)
	}
	if opIndex(op) == opResmacIndex {
		chain.resmac = true
		chain.resmacReg = uint8(opDst(op))
		chain.words++
	}
	c.macBuf = chain.terms
	return chain
}

// jrOffset decodes the signed 5-bit word displacement of JR in bytes.
func jrOffset(op uint16) int32 {
	return int32(int8((op>>2)&0xF8)) >> 2
}

// quickSigned decodes the signed 5-bit immediate of CMPQ.
func quickSigned(op uint16) uint32 {
	return uint32(int32(int8(op>>2)) >> 3)
}
