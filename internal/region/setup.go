package region

import (
	"log"

	"github.com/SiperumID/Siperum-Backend/internal/db"
)

func Init() {
	if err := db.DB.AutoMigrate(&Province{}, &Regency{}, &District{}, &Village{}); err != nil {
		log.Fatal("Failed to auto-migrate region tables: ", err)
	}
}
