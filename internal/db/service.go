package db

import (
	"database/sql"
	"fmt"
	"os"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/lib/pq"

	"github.com/pointdrop/leaderboard/internal/errors"
	"github.com/pointdrop/leaderboard/pkg/logger"
)

// DBServiceImpl implements the DBService interface
type DBServiceImpl struct {
	db *sql.DB
}

type DBOperations interface {
	Open(driverName, dataSourceName string) (*sql.DB, error)
	RunMigrations(db *sql.DB) error
}

// DefaultDBOperations opens a real connection and applies the migrations directory
type DefaultDBOperations struct{}

func (DefaultDBOperations) Open(driverName, dataSourceName string) (*sql.DB, error) {
	return sql.Open(driverName, dataSourceName)
}

func (DefaultDBOperations) RunMigrations(db *sql.DB) error {
	return RunMigrations(db)
}

// NewDBService creates and returns a new DBService
func NewDBService(ops DBOperations) (DBService, error) {
	host := os.Getenv("DB_HOST")
	port := os.Getenv("DB_PORT")
	user := os.Getenv("DB_USER")
	password := os.Getenv("DB_PASSWORD")
	dbname := os.Getenv("DB_NAME")

	connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	db, err := ops.Open("postgres", connStr)
	if err != nil {
		return nil, &errors.DatabaseError{Operation: "open connection", Err: err}
	}

	if err := db.Ping(); err != nil {
		return nil, &errors.DatabaseError{Operation: "ping database", Err: err}
	}

	if err := ops.RunMigrations(db); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &DBServiceImpl{db: db}, nil
}

// GetAllUsers retrieves every user, ordered by total points descending.
// Equal totals come back in creation order (ascending id), which is the
// tie-break the ranking pass relies on.
func (s *DBServiceImpl) GetAllUsers() ([]User, error) {
	rows, err := s.db.Query(`
		SELECT id, name, total_points, rank, created_at
		FROM users
		ORDER BY total_points DESC, id ASC`)
	if err != nil {
		return nil, &errors.DatabaseError{Operation: "query users", Err: err}
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Name, &u.TotalPoints, &u.Rank, &u.CreatedAt); err != nil {
			return nil, &errors.DatabaseError{Operation: "scan user row", Err: err}
		}
		users = append(users, u)
	}

	if err := rows.Err(); err != nil {
		return nil, &errors.DatabaseError{Operation: "iterate user rows", Err: err}
	}

	return users, nil
}

// GetUserByID retrieves a single user by id
func (s *DBServiceImpl) GetUserByID(id int) (User, error) {
	var u User
	err := s.db.QueryRow(`
		SELECT id, name, total_points, rank, created_at
		FROM users
		WHERE id = $1`, id).Scan(&u.ID, &u.Name, &u.TotalPoints, &u.Rank, &u.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return User{}, &errors.NotFoundError{Resource: "user", Identifier: fmt.Sprintf("%d", id)}
		}
		return User{}, &errors.DatabaseError{Operation: "get user by id", Err: err}
	}
	return u, nil
}

// CreateUser creates a new user with zero points and no rank assigned yet
func (s *DBServiceImpl) CreateUser(name string) (User, error) {
	var u User
	err := s.db.QueryRow(`
		INSERT INTO users (name)
		VALUES ($1)
		RETURNING id, name, total_points, rank, created_at`, name).
		Scan(&u.ID, &u.Name, &u.TotalPoints, &u.Rank, &u.CreatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return User{}, &errors.ConflictError{Resource: "user", Value: name}
		}
		return User{}, &errors.DatabaseError{Operation: "create user", Err: err}
	}
	return u, nil
}

// RecordClaim appends a points history entry and increments the user's total
// in a single transaction. The increment is an atomic add so concurrent claims
// never lose points. Returns the new history entry and the updated total.
func (s *DBServiceImpl) RecordClaim(userID int, points int) (PointsHistory, int64, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return PointsHistory{}, 0, &errors.DatabaseError{Operation: "begin claim transaction", Err: err}
	}
	defer tx.Rollback()

	var entry PointsHistory
	err = tx.QueryRow(`
		INSERT INTO points_history (user_id, points)
		VALUES ($1, $2)
		RETURNING id, user_id, points, timestamp`, userID, points).
		Scan(&entry.ID, &entry.UserID, &entry.Points, &entry.Timestamp)
	if err != nil {
		return PointsHistory{}, 0, &errors.DatabaseError{Operation: "insert points history", Err: err}
	}

	var newTotal int64
	err = tx.QueryRow(`
		UPDATE users
		SET total_points = total_points + $1
		WHERE id = $2
		RETURNING total_points`, points, userID).Scan(&newTotal)
	if err != nil {
		return PointsHistory{}, 0, &errors.DatabaseError{Operation: "update user total points", Err: err}
	}

	if err := tx.Commit(); err != nil {
		return PointsHistory{}, 0, &errors.DatabaseError{Operation: "commit claim transaction", Err: err}
	}

	return entry, newTotal, nil
}

// UpdateUserRanks persists the rank of every user in one transaction
func (s *DBServiceImpl) UpdateUserRanks(users []User) error {
	tx, err := s.db.Begin()
	if err != nil {
		return &errors.DatabaseError{Operation: "begin rank update", Err: err}
	}
	defer tx.Rollback()

	for _, u := range users {
		if _, err := tx.Exec(`UPDATE users SET rank = $1 WHERE id = $2`, u.Rank, u.ID); err != nil {
			return &errors.DatabaseError{Operation: "update user rank", Err: err}
		}
	}

	return tx.Commit()
}

// GetPointsHistory retrieves the points history for a user, newest first
func (s *DBServiceImpl) GetPointsHistory(userID int) ([]PointsHistory, error) {
	rows, err := s.db.Query(`
		SELECT id, user_id, points, timestamp
		FROM points_history
		WHERE user_id = $1
		ORDER BY timestamp DESC, id DESC`, userID)
	if err != nil {
		return nil, &errors.DatabaseError{Operation: "query points history", Err: err}
	}
	defer rows.Close()

	var history []PointsHistory
	for rows.Next() {
		var ph PointsHistory
		if err := rows.Scan(&ph.ID, &ph.UserID, &ph.Points, &ph.Timestamp); err != nil {
			return nil, &errors.DatabaseError{Operation: "scan points history row", Err: err}
		}
		history = append(history, ph)
	}

	if err := rows.Err(); err != nil {
		return nil, &errors.DatabaseError{Operation: "iterate points history rows", Err: err}
	}

	return history, nil
}

func (s *DBServiceImpl) Close() error {
	return s.db.Close()
}

// RunMigrations runs the database migrations
func RunMigrations(db *sql.DB) error {
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return &errors.DatabaseError{Operation: "could not create the postgres driver", Err: err}
	}

	m, err := migrate.NewWithDatabaseInstance(
		"file://migrations",
		"postgres", driver)
	if err != nil {
		return &errors.DatabaseError{Operation: "could not create migrate instance", Err: err}
	}

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		return &errors.DatabaseError{Operation: "an error occurred while syncing the database", Err: err}
	}

	logger.Info("Database migrations completed successfully")
	return nil
}
