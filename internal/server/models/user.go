// Package models defines server-side data models persisted in the database.
package models

import (
	"time"

	"github.com/dmitrijs2005/classroom/internal/common"
)

type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash []byte
	Role         common.Role
	CreatedAt    time.Time
}
