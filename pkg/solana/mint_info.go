package solana

import (
	"context"
	"encoding/binary"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// splMintSize is the packed size of an SPL mint account.
const splMintSize = 82

// MintInfo is the subset of the on-chain mint state the service cares about.
type MintInfo struct {
	Mint        string `json:"mint"`
	Supply      uint64 `json:"supply"`
	Decimals    uint8  `json:"decimals"`
	Initialized bool   `json:"initialized"`
}

// FetchMintInfo reads the mint account and decodes supply, decimals and the
// initialized flag from the packed SPL layout.
func FetchMintInfo(client *rpc.Client, mint string) (*MintInfo, error) {
	pubkey, err := solana.PublicKeyFromBase58(mint)
	if err != nil {
		return nil, fmt.Errorf("invalid mint: %w", err)
	}

	resp, err := client.GetAccountInfo(context.Background(), pubkey)
	if err != nil {
		return nil, fmt.Errorf("get mint account: %w", err)
	}
	if resp == nil || resp.Value == nil {
		return nil, fmt.Errorf("mint account %s not found", mint)
	}

	data := resp.Value.Data.GetBinary()
	if len(data) < splMintSize {
		return nil, fmt.Errorf("mint account %s has unexpected size %d", mint, len(data))
	}

	// Packed SPL mint layout: COption<Pubkey> authority (36), supply u64,
	// decimals u8, is_initialized u8.
	return &MintInfo{
		Mint:        mint,
		Supply:      binary.LittleEndian.Uint64(data[36:44]),
		Decimals:    data[44],
		Initialized: data[45] == 1,
	}, nil
}
