package db

// DBService interface defines the methods we need from the database
type DBService interface {
	GetAllUsers() ([]User, error)
	GetUserByID(id int) (User, error)
	CreateUser(name string) (User, error)
	RecordClaim(userID int, points int) (PointsHistory, int64, error)
	UpdateUserRanks(users []User) error
	GetPointsHistory(userID int) ([]PointsHistory, error)
	Close() error
}
