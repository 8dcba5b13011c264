package main

import (
	"log"

	"github.com/joho/godotenv"

	"github.com/SiperumID/Siperum-Backend/internal/access"
	"github.com/SiperumID/Siperum-Backend/internal/db"
	"github.com/SiperumID/Siperum-Backend/internal/seeds"
)

func main() {
	_ = godotenv.Load(".env.local")
	db.Connect()
	access.Init()

	if err := seeds.SeedAll(); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
	log.Println("Seeding complete")
}
