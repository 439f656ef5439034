package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"

	"presalecontrol/internal/handlers"
	"presalecontrol/internal/routes"
	"presalecontrol/pkg/config"
	pcsolana "presalecontrol/pkg/solana"
)

func main() {
	// Load .env if present
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using process environment")
	}

	// Initialize database
	config.InitDB()

	// Initialize RabbitMQ (optional, settlement runs without it in dev)
	if os.Getenv("RABBITMQ_HOST") != "" {
		config.InitRabbitMQ()
		defer func() {
			if config.RabbitMQ != nil {
				config.RabbitMQ.Close()
			}
		}()
		log.Println("RabbitMQ initialized successfully")
	} else {
		log.Println("RabbitMQ not configured, skipping initialization")
	}

	// Load or create the custodial presale keypair
	keystorePath := os.Getenv("PRESALE_KEYSTORE")
	if keystorePath == "" {
		keystorePath = "keystore/presale.json"
	}
	ks := pcsolana.NewKeyStore(keystorePath, os.Getenv("PRESALE_KEYSTORE_PASSWORD"))
	custody, err := ks.LoadOrCreate()
	if err != nil {
		log.Fatal("Failed to load custodial keystore:", err)
	}
	handlers.CustodyAddress = custody.PublicKey.ToBase58()
	log.Printf("Presale custody account: %s", handlers.CustodyAddress)

	// Set up router
	r := routes.SetupRouter()

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	if err := r.Run(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
