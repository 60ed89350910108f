package dagconfig

import (
	"github.com/ghostdag-network/consensus/domain/consensus/model/externalapi"
	"github.com/holiman/uint256"
)

var genesisHash = externalapi.DomainHash{
	0x2a, 0xf7, 0x9a, 0xfb, 0x2c, 0xf7, 0xde, 0xe0,
	0xdf, 0xb3, 0x52, 0x4d, 0xbb, 0x3a, 0x83, 0x57,
	0xa6, 0xd2, 0x3e, 0x63, 0x51, 0x48, 0xb1, 0xf8,
	0xe7, 0x8b, 0xc7, 0x30, 0xed, 0x24, 0xe5, 0x80,
}

var genesisMerkleRoot = externalapi.DomainHash{}

// genesisBlock is Mainnet's first block: no parents, zero blue score
// and blue work, the easiest PoW target this network ever carries.
var genesisBlock = externalapi.DomainBlock{
	Header: &externalapi.DomainBlockHeader{
		Version:              1,
		ParentsByLevel:       [][]*externalapi.DomainHash{{}},
		HashMerkleRoot:       genesisMerkleRoot,
		AcceptedIDMerkleRoot: externalapi.DomainHash{},
		UTXOCommitment:       externalapi.DomainHash{},
		TimeInMilliseconds:   1700000000000,
		Bits:                 0x1e7fffff,
		Nonce:                0,
		BlueScore:            0,
		BlueWork:             new(uint256.Int),
		DAAScore:             0,
		PruningPoint:         genesisHash,
	},
	Transactions: nil,
}

var testnetGenesisHash = externalapi.DomainHash{
	0x4b, 0xb3, 0x5f, 0x91, 0x0c, 0x3e, 0x2a, 0x77,
	0x1d, 0x8e, 0x60, 0x2b, 0x55, 0xcf, 0x19, 0x4a,
	0x7d, 0x3b, 0x0e, 0xf8, 0x1c, 0x9a, 0x64, 0x02,
	0x5e, 0xd1, 0x44, 0x83, 0x9f, 0x72, 0xb6, 0x0d,
}

var testnetGenesisBlock = externalapi.DomainBlock{
	Header: &externalapi.DomainBlockHeader{
		Version:              1,
		ParentsByLevel:       [][]*externalapi.DomainHash{{}},
		HashMerkleRoot:       externalapi.DomainHash{},
		AcceptedIDMerkleRoot: externalapi.DomainHash{},
		UTXOCommitment:       externalapi.DomainHash{},
		TimeInMilliseconds:   1700000000000,
		Bits:                 0x1f00ffff,
		Nonce:                0,
		BlueScore:            0,
		BlueWork:             new(uint256.Int),
		DAAScore:             0,
		PruningPoint:         testnetGenesisHash,
	},
	Transactions: nil,
}

var devnetGenesisHash = externalapi.DomainHash{
	0x7c, 0x1a, 0x44, 0x0e, 0x3d, 0x9b, 0x52, 0x68,
	0xf0, 0x3c, 0xa1, 0x5d, 0x8e, 0x26, 0x91, 0x0b,
	0xd4, 0x7f, 0x3a, 0x55, 0x60, 0xc9, 0x1e, 0x84,
	0x2b, 0x06, 0x9d, 0xf1, 0x3c, 0x58, 0xa0, 0x77,
}

var devnetGenesisBlock = externalapi.DomainBlock{
	Header: &externalapi.DomainBlockHeader{
		Version:              1,
		ParentsByLevel:       [][]*externalapi.DomainHash{{}},
		HashMerkleRoot:       externalapi.DomainHash{},
		AcceptedIDMerkleRoot: externalapi.DomainHash{},
		UTXOCommitment:       externalapi.DomainHash{},
		TimeInMilliseconds:   1700000000000,
		Bits:                 0x207fffff,
		Nonce:                0,
		BlueScore:            0,
		BlueWork:             new(uint256.Int),
		DAAScore:             0,
		PruningPoint:         devnetGenesisHash,
	},
	Transactions: nil,
}
