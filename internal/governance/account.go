package governance

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/near/borsh-go"

	"solana-token-forge/internal/domain"
	"solana-token-forge/internal/solana"
)

// accountDiscriminator prefixes the on-chain disclosure account.
var accountDiscriminator = func() [8]byte {
	sum := sha256.Sum256([]byte("account:ProgramSecurity"))
	var d [8]byte
	copy(d[:], sum[:8])
	return d
}()

// AccountSpace is the allocated size of the on-chain account.
const AccountSpace = 8 + 4 + 32 + 4 + MaxContentBytes + 8

type securityAccount struct {
	Version     uint32
	Admin       [32]byte
	SecurityTxt string
	LastUpdated int64
}

// EncodeAccount serializes rec in the on-chain account layout:
// discriminator, version u32, admin, content string, last update i64.
func EncodeAccount(rec *domain.DisclosureRecord) ([]byte, error) {
	body, err := borsh.Serialize(securityAccount{
		Version:     rec.Version,
		Admin:       rec.Admin,
		SecurityTxt: rec.Content,
		LastUpdated: rec.UpdatedAt.Unix(),
	})
	if err != nil {
		return nil, fmt.Errorf("encode disclosure account: %w", err)
	}
	return append(accountDiscriminator[:], body...), nil
}

// DecodeAccount parses account data read from address. Zero padding after the
// record is ignored. An account without an admin is not initialized.
func DecodeAccount(address domain.Address, data []byte) (*domain.DisclosureRecord, error) {
	if len(data) < len(accountDiscriminator) || !bytes.Equal(data[:8], accountDiscriminator[:]) {
		return nil, fmt.Errorf("%w: discriminator mismatch", ErrInvalidAccountData)
	}

	var acct securityAccount
	if err := borsh.Deserialize(&acct, data[8:]); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAccountData, err)
	}

	admin := domain.Address(acct.Admin)
	if admin.IsZero() {
		return nil, ErrNotInitialized
	}
	return &domain.DisclosureRecord{
		Address:   address,
		Admin:     admin,
		Content:   acct.SecurityTxt,
		Version:   acct.Version,
		UpdatedAt: time.Unix(acct.LastUpdated, 0).UTC(),
	}, nil
}

// AccountFetcher reads raw accounts from a cluster.
type AccountFetcher interface {
	GetAccountInfo(ctx context.Context, pubkey string) (*solana.AccountInfo, error)
}

// FetchAccount reads and decodes the on-chain record at address.
func FetchAccount(ctx context.Context, rpc AccountFetcher, address domain.Address) (*domain.DisclosureRecord, error) {
	info, err := rpc.GetAccountInfo(ctx, address.String())
	if err != nil {
		return nil, fmt.Errorf("get account info: %w", err)
	}
	if info == nil {
		return nil, ErrNotInitialized
	}
	data, err := base64.StdEncoding.DecodeString(info.Data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAccountData, err)
	}
	return DecodeAccount(address, data)
}
