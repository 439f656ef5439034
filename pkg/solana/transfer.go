package solana

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	associatedtokenaccount "github.com/gagliardetto/solana-go/programs/associated-token-account"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/programs/token"
	"github.com/gagliardetto/solana-go/rpc"
	log "github.com/sirupsen/logrus"
)

// GetAssociatedTokenAddress derives the ATA for (mint, owner).
func GetAssociatedTokenAddress(mint, owner solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := solana.FindAssociatedTokenAddress(owner, mint)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("derive ATA: %w", err)
	}
	return addr, nil
}

// signWith returns a signer callback for a single private key.
func signWith(priv solana.PrivateKey) func(key solana.PublicKey) *solana.PrivateKey {
	return func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(priv.PublicKey()) {
			return &priv
		}
		return nil
	}
}

// sendInstructions builds, signs and submits a transaction paid and signed
// by payer.
func sendInstructions(client *rpc.Client, payer solana.PrivateKey, instrs []solana.Instruction) (solana.Signature, error) {
	ctx := context.Background()

	bh, err := client.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("get blockhash: %w", err)
	}

	tx, err := solana.NewTransaction(instrs, bh.Value.Blockhash, solana.TransactionPayer(payer.PublicKey()))
	if err != nil {
		return solana.Signature{}, fmt.Errorf("build transaction: %w", err)
	}

	if _, err := tx.Sign(signWith(payer)); err != nil {
		return solana.Signature{}, fmt.Errorf("sign transaction: %w", err)
	}

	sig, err := client.SendTransaction(ctx, tx)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("send transaction: %w", err)
	}
	return sig, nil
}

// TransferSOL sends lamports from the custody key to target.
func TransferSOL(client *rpc.Client, from solana.PrivateKey, to solana.PublicKey, lamports uint64) (solana.Signature, error) {
	ix := system.NewTransferInstruction(lamports, from.PublicKey(), to).Build()

	sig, err := sendInstructions(client, from, []solana.Instruction{ix})
	if err != nil {
		return solana.Signature{}, err
	}
	log.Infof("SOL transfer sent: %s -> %s, %d lamports, sig %s",
		from.PublicKey(), to, lamports, sig)
	return sig, nil
}

// TransferSPLToken sends amount token units of mint from the custody key's
// ATA to the target owner's ATA, creating the target ATA when missing
// (custody pays the rent).
func TransferSPLToken(client *rpc.Client, from solana.PrivateKey, toOwner, mint solana.PublicKey, amount uint64) (solana.Signature, error) {
	ctx := context.Background()

	sourceATA, err := GetAssociatedTokenAddress(mint, from.PublicKey())
	if err != nil {
		return solana.Signature{}, err
	}
	targetATA, err := GetAssociatedTokenAddress(mint, toOwner)
	if err != nil {
		return solana.Signature{}, err
	}

	var instrs []solana.Instruction
	targetInfo, _ := client.GetAccountInfo(ctx, targetATA)
	if targetInfo == nil || targetInfo.Value == nil {
		instrs = append(instrs,
			associatedtokenaccount.NewCreateInstruction(from.PublicKey(), toOwner, mint).Build())
	}

	instrs = append(instrs,
		token.NewTransferInstruction(amount, sourceATA, targetATA, from.PublicKey(), nil).Build())

	sig, err := sendInstructions(client, from, instrs)
	if err != nil {
		return solana.Signature{}, err
	}
	log.Infof("token transfer sent: mint %s, %s -> %s, amount %d, sig %s",
		mint, from.PublicKey(), toOwner, amount, sig)
	return sig, nil
}
