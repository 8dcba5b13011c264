package spatial

import (
	"log"

	"github.com/SiperumID/Siperum-Backend/internal/db"
)

func Init() {
	if err := db.DB.Exec(`CREATE EXTENSION IF NOT EXISTS postgis`).Error; err != nil {
		log.Fatal("Failed to enable postgis extension: ", err)
	}

	if err := db.DB.AutoMigrate(&SpatialFeature{}); err != nil {
		log.Fatal("Failed to auto-migrate spatial tables: ", err)
	}

	// Geometry column and GiST index are managed outside AutoMigrate.
	if err := db.DB.Exec(`
		CREATE INDEX IF NOT EXISTS spatial_layers_geom_idx
		ON spatial_layers USING GIST (geom)
	`).Error; err != nil {
		log.Fatal("Failed to create spatial index: ", err)
	}
}
