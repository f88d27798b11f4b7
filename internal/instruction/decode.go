package instruction

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/near/borsh-go"

	"solana-token-forge/internal/domain"
)

// ErrInvalidInstructionData is returned when a payload cannot be decoded.
var ErrInvalidInstructionData = errors.New("invalid instruction data")

// System program instruction indexes (little-endian u32 prefix).
const (
	SystemCreateAccount uint32 = 0
	SystemTransfer      uint32 = 2
)

// Asset-ledger program instruction tags (single byte prefix).
const (
	TokenInitializeMint    uint8 = 0
	TokenInitializeAccount uint8 = 1
	TokenSetAuthority      uint8 = 6
	TokenMintTo            uint8 = 7
)

// Authority types of TokenSetAuthority.
const (
	AuthorityMintTokens    uint8 = 0
	AuthorityFreezeAccount uint8 = 1
)

// Metadata registry instruction tags.
const (
	MetadataUpdateV2 uint8 = 15
	MetadataCreateV3 uint8 = 33
)

// SystemInstruction is a decoded system program payload.
type SystemInstruction struct {
	Kind     uint32
	Lamports uint64
	Space    uint64
	Owner    domain.Address
}

// DecodeSystem decodes a transfer or create-account payload.
func DecodeSystem(data []byte) (SystemInstruction, error) {
	if len(data) < 4 {
		return SystemInstruction{}, fmt.Errorf("%w: system payload of %d bytes", ErrInvalidInstructionData, len(data))
	}
	in := SystemInstruction{Kind: binary.LittleEndian.Uint32(data)}
	body := data[4:]

	switch in.Kind {
	case SystemTransfer:
		if len(body) < 8 {
			return in, fmt.Errorf("%w: short transfer", ErrInvalidInstructionData)
		}
		in.Lamports = binary.LittleEndian.Uint64(body)
	case SystemCreateAccount:
		if len(body) < 8+8+domain.AddressLength {
			return in, fmt.Errorf("%w: short create account", ErrInvalidInstructionData)
		}
		in.Lamports = binary.LittleEndian.Uint64(body)
		in.Space = binary.LittleEndian.Uint64(body[8:])
		copy(in.Owner[:], body[16:48])
	default:
		return in, fmt.Errorf("%w: unsupported system instruction %d", ErrInvalidInstructionData, in.Kind)
	}
	return in, nil
}

// TokenInstruction is a decoded asset-ledger payload.
type TokenInstruction struct {
	Kind            uint8
	Decimals        uint8
	MintAuthority   domain.Address
	FreezeAuthority *domain.Address
	AuthorityType   uint8
	NewAuthority    *domain.Address
	Amount          uint64
}

// DecodeToken decodes the asset-ledger instructions issuance emits.
func DecodeToken(data []byte) (TokenInstruction, error) {
	if len(data) < 1 {
		return TokenInstruction{}, fmt.Errorf("%w: empty token payload", ErrInvalidInstructionData)
	}
	in := TokenInstruction{Kind: data[0]}
	body := data[1:]

	switch in.Kind {
	case TokenInitializeMint:
		if len(body) < 1+domain.AddressLength {
			return in, fmt.Errorf("%w: short initialize mint", ErrInvalidInstructionData)
		}
		in.Decimals = body[0]
		copy(in.MintAuthority[:], body[1:33])
		freeze, err := decodeOptionalKey(body[33:])
		if err != nil {
			return in, err
		}
		in.FreezeAuthority = freeze
	case TokenInitializeAccount:
	case TokenSetAuthority:
		if len(body) < 1 {
			return in, fmt.Errorf("%w: short set authority", ErrInvalidInstructionData)
		}
		in.AuthorityType = body[0]
		newAuth, err := decodeOptionalKey(body[1:])
		if err != nil {
			return in, err
		}
		in.NewAuthority = newAuth
	case TokenMintTo:
		if len(body) < 8 {
			return in, fmt.Errorf("%w: short mint to", ErrInvalidInstructionData)
		}
		in.Amount = binary.LittleEndian.Uint64(body)
	default:
		return in, fmt.Errorf("%w: unsupported token instruction %d", ErrInvalidInstructionData, in.Kind)
	}
	return in, nil
}

// decodeOptionalKey reads a one-byte option tag followed by a key when set.
// Bytes after a None tag are ignored.
func decodeOptionalKey(b []byte) (*domain.Address, error) {
	if len(b) == 0 || b[0] == 0 {
		return nil, nil
	}
	if len(b) < 1+domain.AddressLength {
		return nil, fmt.Errorf("%w: truncated optional key", ErrInvalidInstructionData)
	}
	var a domain.Address
	copy(a[:], b[1:33])
	return &a, nil
}

type metadataCreator struct {
	Address  [32]byte
	Verified bool
	Share    uint8
}

type metadataCollection struct {
	Verified bool
	Key      [32]byte
}

type metadataUses struct {
	UseMethod uint8
	Remaining uint64
	Total     uint64
}

type metadataCollectionDetails struct {
	Variant uint8
	Size    uint64
}

type metadataDataV2 struct {
	Name                 string
	Symbol               string
	Uri                  string
	SellerFeeBasisPoints uint16
	Creators             *[]metadataCreator
	Collection           *metadataCollection
	Uses                 *metadataUses
}

type createMetadataV3 struct {
	Instruction       uint8
	Data              metadataDataV2
	IsMutable         bool
	CollectionDetails *metadataCollectionDetails
}

type updateMetadataV2 struct {
	Instruction         uint8
	Data                *metadataDataV2
	NewUpdateAuthority  *[32]byte
	PrimarySaleHappened *bool
	IsMutable           *bool
}

// MetadataInstruction is a decoded metadata registry payload.
type MetadataInstruction struct {
	Kind               uint8
	Name               string
	Symbol             string
	URI                string
	IsMutable          bool
	DataChanged        bool // update carries new descriptive data
	NewUpdateAuthority *domain.Address
	NewIsMutable       *bool
}

// DecodeMetadata decodes create and update payloads of the metadata registry.
func DecodeMetadata(data []byte) (MetadataInstruction, error) {
	if len(data) < 1 {
		return MetadataInstruction{}, fmt.Errorf("%w: empty metadata payload", ErrInvalidInstructionData)
	}

	switch data[0] {
	case MetadataCreateV3:
		var raw createMetadataV3
		if err := borsh.Deserialize(&raw, data); err != nil {
			return MetadataInstruction{}, fmt.Errorf("%w: create metadata: %v", ErrInvalidInstructionData, err)
		}
		return MetadataInstruction{
			Kind:      raw.Instruction,
			Name:      raw.Data.Name,
			Symbol:    raw.Data.Symbol,
			URI:       raw.Data.Uri,
			IsMutable: raw.IsMutable,
		}, nil
	case MetadataUpdateV2:
		var raw updateMetadataV2
		if err := borsh.Deserialize(&raw, data); err != nil {
			return MetadataInstruction{}, fmt.Errorf("%w: update metadata: %v", ErrInvalidInstructionData, err)
		}
		out := MetadataInstruction{
			Kind:         raw.Instruction,
			DataChanged:  raw.Data != nil,
			NewIsMutable: raw.IsMutable,
		}
		if raw.Data != nil {
			out.Name, out.Symbol, out.URI = raw.Data.Name, raw.Data.Symbol, raw.Data.Uri
		}
		if raw.NewUpdateAuthority != nil {
			a := domain.Address(*raw.NewUpdateAuthority)
			out.NewUpdateAuthority = &a
		}
		return out, nil
	default:
		return MetadataInstruction{}, fmt.Errorf("%w: unsupported metadata instruction %d", ErrInvalidInstructionData, data[0])
	}
}
