package db

import (
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"meetbase/internal/models"
)

func Init(dsn string) (*gorm.DB, error) {
	conn, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	if err := conn.AutoMigrate(&models.User{}, &models.Meeting{}, &models.Participant{}); err != nil {
		return nil, err
	}
	return conn, nil
}
