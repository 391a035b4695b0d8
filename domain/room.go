package domain

// RoomID identifies one shelter's discussion room.
type RoomID int
