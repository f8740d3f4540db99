package vm

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// CallContext carries the read-only inputs to a single call: who is calling
// whom, with what value and calldata. It plays the role the teacher's
// Contract/TxContext pair plays in a full client, trimmed to what a
// non-recursive call actually reads.
type CallContext struct {
	Address  common.Address
	Caller   common.Address
	Origin   common.Address
	Value    uint256.Int
	CallData []byte
	GasPrice uint256.Int
}

// BlockContext carries the read-only block metadata exposed to COINBASE,
// TIMESTAMP, NUMBER, DIFFICULTY, GASLIMIT and CHAINID. Every field here is
// informational only: nothing in the interpreter consults world state to
// produce it. BLOCKHASH needs a header database to answer honestly, so it
// is one of the opcodes this core reports as UnsupportedOpcode rather than
// modeling with a stub callback.
type BlockContext struct {
	Coinbase   common.Address
	Timestamp  uint64
	Number     uint64
	Difficulty uint32
	GasLimit   uint64
	ChainID    uint64
}
