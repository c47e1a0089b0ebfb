package db

import "time"

type User struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	TotalPoints int64     `json:"totalPoints"`
	Rank        int       `json:"rank"`
	CreatedAt   time.Time `json:"createdAt"`
}

type PointsHistory struct {
	ID        int       `json:"id"`
	UserID    int       `json:"userId"`
	Points    int       `json:"points"`
	Timestamp time.Time `json:"timestamp"`
}
