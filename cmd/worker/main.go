package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/joho/godotenv"
	logrus "github.com/sirupsen/logrus"

	"presalecontrol/internal/handlers/business"
	"presalecontrol/internal/models"
	"presalecontrol/pkg/config"
	pcsolana "presalecontrol/pkg/solana"
)

// settle executes the on-chain leg of one claim or withdrawal record. The
// ledger row was already committed by the API; settlement only mirrors it on
// chain and records the signature. Already-settled records are skipped so a
// redelivered message cannot transfer twice.
func settle(client *rpc.Client, custody solana.PrivateKey, msg business.SettlementMessage) error {
	var record models.FundTransferRecord
	if err := config.DB.First(&record, msg.RecordID).Error; err != nil {
		return fmt.Errorf("load transfer record %d: %w", msg.RecordID, err)
	}
	if record.Settled {
		logrus.Infof("record %d already settled, skipping", record.ID)
		return nil
	}

	target, err := solana.PublicKeyFromBase58(record.ToAddress)
	if err != nil {
		return fmt.Errorf("invalid target address %s: %w", record.ToAddress, err)
	}

	var sig solana.Signature
	if record.Mint == business.NativeMint {
		sig, err = pcsolana.TransferSOL(client, custody, target, record.Amount)
	} else {
		var mint solana.PublicKey
		mint, err = solana.PublicKeyFromBase58(record.Mint)
		if err != nil {
			return fmt.Errorf("invalid mint %s: %w", record.Mint, err)
		}
		sig, err = pcsolana.TransferSPLToken(client, custody, target, mint, record.Amount)
	}
	if err != nil {
		return fmt.Errorf("on-chain transfer for record %d: %w", record.ID, err)
	}

	return config.DB.Model(&record).Updates(map[string]interface{}{
		"settled":   true,
		"signature": sig.String(),
	}).Error
}

func main() {
	// Initialize logger
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetLevel(logrus.InfoLevel)

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using process environment")
	}

	// Initialize database
	config.InitDB()

	// Initialize RabbitMQ
	config.InitRabbitMQ()
	defer config.RabbitMQ.Close()

	rpcEndpoint := os.Getenv("DEFAULT_SOLANA_RPC")
	if rpcEndpoint == "" {
		logrus.Fatal("DEFAULT_SOLANA_RPC environment variable is not set")
	}
	client := rpc.New(rpcEndpoint)

	// Load the custodial presale keypair for signing settlements
	keystorePath := os.Getenv("PRESALE_KEYSTORE")
	if keystorePath == "" {
		keystorePath = "keystore/presale.json"
	}
	ks := pcsolana.NewKeyStore(keystorePath, os.Getenv("PRESALE_KEYSTORE_PASSWORD"))
	account, err := ks.Load()
	if err != nil {
		logrus.Fatal("Failed to load custodial keystore: ", err)
	}
	custody := solana.PrivateKey(account.PrivateKey)

	msgConsumer, err := config.NewConsumer(business.SettlementQueue)
	if err != nil {
		logrus.Fatal("Failed to create consumer: ", err)
	}
	defer msgConsumer.Close()

	logrus.Infof("Settlement worker started, custody %s, waiting for messages...", custody.PublicKey())

	err = msgConsumer.Consume(func(msg []byte) error {
		var settlement business.SettlementMessage
		if err := json.Unmarshal(msg, &settlement); err != nil {
			logrus.Errorf("Failed to unmarshal message: %v", err)
			return err
		}

		logrus.WithFields(logrus.Fields{
			"record_id": settlement.RecordID,
			"kind":      settlement.Kind,
		}).Info("Received settlement request")

		if err := settle(client, custody, settlement); err != nil {
			logrus.Errorf("Settlement failed: %v", err)
			return err
		}
		return nil
	})
	if err != nil {
		logrus.Fatal("Consumer failed: ", err)
	}
}
