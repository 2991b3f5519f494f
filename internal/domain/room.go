package domain

import "time"

type RoomType string

const (
	RoomSuiteSingle RoomType = "SUITE_SINGLE"
	RoomSuiteDouble RoomType = "SUITE_DOUBLE"
	RoomVillaPetit  RoomType = "VILLA_PETIT"
	RoomVillaGrande RoomType = "VILLA_GRANDE"
)

func (t RoomType) Valid() bool {
	switch t {
	case RoomSuiteSingle, RoomSuiteDouble, RoomVillaPetit, RoomVillaGrande:
		return true
	}
	return false
}

type RoomStatus string

const (
	RoomAvailable   RoomStatus = "AVAILABLE"
	RoomOccupied    RoomStatus = "OCCUPIED"
	RoomCleaning    RoomStatus = "CLEANING"
	RoomMaintenance RoomStatus = "MAINTENANCE"
	RoomClosed      RoomStatus = "CLOSED"
)

func (s RoomStatus) Valid() bool {
	switch s {
	case RoomAvailable, RoomOccupied, RoomCleaning, RoomMaintenance, RoomClosed:
		return true
	}
	return false
}

// Bookable reports whether new reservations may be taken for the room.
func (s RoomStatus) Bookable() bool {
	return s != RoomClosed && s != RoomMaintenance
}

type Room struct {
	ID          int64      `json:"id" gorm:"primaryKey"`
	Number      string     `json:"number" gorm:"uniqueIndex;size:16;not null"`
	Type        RoomType   `json:"type" gorm:"type:varchar(32);not null;index"`
	Price       float64    `json:"price" gorm:"not null"`
	Capacity    int        `json:"capacity" gorm:"not null"`
	Floor       int        `json:"floor"`
	Status      RoomStatus `json:"status" gorm:"type:varchar(16);not null;default:'AVAILABLE';index"`
	Description string     `json:"description,omitempty" gorm:"type:text"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
