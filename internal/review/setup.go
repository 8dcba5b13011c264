package review

import (
	"log"

	"github.com/SiperumID/Siperum-Backend/internal/db"
)

func Init() {
	if err := db.DB.AutoMigrate(&Submission{}, &FacilitySurvey{}, &HousingDevelopment{}, &AuditLog{}); err != nil {
		log.Fatal("Failed to auto-migrate review tables: ", err)
	}
}
