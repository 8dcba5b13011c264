package access

import (
	"log"

	"github.com/SiperumID/Siperum-Backend/internal/db"
)

func Init() {
	if err := db.DB.AutoMigrate(&User{}, &Role{}, &Permission{}, &UserRole{}, &RolePermission{}); err != nil {
		log.Fatal("Failed to auto-migrate access tables: ", err)
	}
}
