package auth

import (
	"log"

	"github.com/SiperumID/Siperum-Backend/internal/db"
)

func Init() {
	if err := db.DB.AutoMigrate(&Session{}); err != nil {
		log.Fatal("Failed to auto-migrate session table: ", err)
	}
}
