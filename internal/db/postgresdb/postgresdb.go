// Package postgresdb provides a PostgreSQL-based implementation of the storage
// interface for persisting users, links and visit logs.
// It supports transactional operations, which the account deletion cascade
// relies on to avoid orphaned link and visit-log records.
package postgresdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pressly/goose/v3"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/sgorbunov/shrtaccounts/internal/models"
	"github.com/sgorbunov/shrtaccounts/internal/user"
)

// PostgresDB is a PostgreSQL-backed implementation of the accounts storage.
// It handles all persistence operations via a PostgreSQL database connection.
type PostgresDB struct {
	database          *sql.DB
	connectionTimeout time.Duration
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type executor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

type initOptions struct {
	DBPreReset bool
}

// InitOption defines a functional option for configuring database initialization.
type InitOption func(*initOptions)

// WithDBPreReset enables or disables resetting the database schema before migration.
// It can be used for test setups or development purposes.
func WithDBPreReset(value bool) InitOption {
	return func(options *initOptions) {
		options.DBPreReset = value
	}
}

// New establishes a connection to the PostgreSQL database,
// runs schema migrations, and returns a configured PostgresDB instance.
func New(
	ctx context.Context,
	databaseDSN string,
	connectionTimeout time.Duration,
	migrationsDir string,
	optionsProto ...InitOption,
) (*PostgresDB, error) {
	options := &initOptions{
		DBPreReset: false,
	}
	for _, protoOption := range optionsProto {
		protoOption(options)
	}

	database, err := sql.Open("pgx", databaseDSN)
	if err != nil {
		return nil, err
	}

	result := &PostgresDB{
		database:          database,
		connectionTimeout: connectionTimeout,
	}

	if options.DBPreReset {
		if err := result.resetDB(ctx); err != nil {
			return nil, fmt.Errorf("error while `result.resetDB()` calling: %w", err)
		}
	}

	if err := goose.SetDialect("postgres"); err != nil {
		return nil, fmt.Errorf("error while `goose.SetDialect()` calling: %w", err)
	}

	if err := goose.Up(result.database, migrationsDir); err != nil {
		return nil, fmt.Errorf("error while `goose.Up()` calling: %w", err)
	}

	return result, nil
}

func (db *PostgresDB) queryerFor(transaction *sql.Tx) queryer {
	if transaction == nil {
		return db.database
	}

	return transaction
}

func (db *PostgresDB) executorFor(transaction *sql.Tx) executor {
	if transaction == nil {
		return db.database
	}

	return transaction
}

// CreateUser inserts a new user record into the database.
// Returns the created user ID or an error if insertion fails.
func (db *PostgresDB) CreateUser(ctx context.Context, usr *user.User, transaction *sql.Tx) (string, error) {
	row := db.queryerFor(transaction).QueryRowContext(
		ctx,
		`
			INSERT INTO users (id, name, email, password_hash, mobile_no)
				VALUES ($1, $2, $3, $4, $5)
				RETURNING id
		`,
		usr.ID,
		usr.Name,
		usr.Email,
		usr.PasswordHash,
		usr.MobileNo,
	)
	var userIDFromDB string
	if err := row.Scan(&userIDFromDB); err != nil {
		return "", err
	}

	return userIDFromDB, nil
}

// GetUserByID fetches a user by their UUID from the database.
// The boolean result reports whether the user exists.
func (db *PostgresDB) GetUserByID(ctx context.Context, userID string, transaction *sql.Tx) (*user.User, bool, error) {
	row := db.queryerFor(transaction).QueryRowContext(
		ctx,
		`SELECT id, name, email, password_hash, mobile_no FROM users WHERE id = $1`,
		userID,
	)

	return scanUser(row)
}

// GetUserByEmail fetches a user by email. Emails are matched case-sensitively
// as stored.
func (db *PostgresDB) GetUserByEmail(ctx context.Context, email string, transaction *sql.Tx) (*user.User, bool, error) {
	row := db.queryerFor(transaction).QueryRowContext(
		ctx,
		`SELECT id, name, email, password_hash, mobile_no FROM users WHERE email = $1`,
		email,
	)

	return scanUser(row)
}

// UpdateUser overwrites the name, email and mobile number of the given user.
// The identifier and the password hash columns are left untouched.
func (db *PostgresDB) UpdateUser(ctx context.Context, usr *user.User, transaction *sql.Tx) error {
	_, err := db.executorFor(transaction).ExecContext(
		ctx,
		`UPDATE users SET name = $1, email = $2, mobile_no = $3 WHERE id = $4`,
		usr.Name,
		usr.Email,
		usr.MobileNo,
		usr.ID,
	)

	return err
}

// DeleteUser removes the user row and reports whether a row was removed.
// The delete-then-check ordering lets absence serve as the failure signal.
func (db *PostgresDB) DeleteUser(ctx context.Context, userID string, transaction *sql.Tx) (bool, error) {
	row := db.queryerFor(transaction).QueryRowContext(
		ctx,
		`DELETE FROM users WHERE id = $1 RETURNING id`,
		userID,
	)
	var deletedID string
	if err := row.Scan(&deletedID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}

	return true, nil
}

// InsertLink creates a new shortened link record owned by a user.
func (db *PostgresDB) InsertLink(ctx context.Context, link *models.Link, transaction *sql.Tx) error {
	_, err := db.executorFor(transaction).ExecContext(
		ctx,
		`INSERT INTO links (user_id, short_link, full_link) VALUES ($1, $2, $3)`,
		link.UserID,
		link.ShortLink,
		link.FullLink,
	)

	return err
}

// GetUserShortLinks returns the short codes of all links owned by the user.
func (db *PostgresDB) GetUserShortLinks(ctx context.Context, userID string, transaction *sql.Tx) ([]string, error) {
	rows, err := db.queryerFor(transaction).QueryContext(
		ctx,
		`SELECT short_link FROM links WHERE user_id = $1`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []string{}
	for rows.Next() {
		var shortLink string
		if err := rows.Scan(&shortLink); err != nil {
			return nil, err
		}

		result = append(result, shortLink)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

// DeleteUserLinks removes all links owned by the user.
func (db *PostgresDB) DeleteUserLinks(ctx context.Context, userID string, transaction *sql.Tx) error {
	_, err := db.executorFor(transaction).ExecContext(
		ctx,
		`DELETE FROM links WHERE user_id = $1`,
		userID,
	)

	return err
}

// InsertVisitLog records a click on a short link.
func (db *PostgresDB) InsertVisitLog(ctx context.Context, visit *models.VisitLog, transaction *sql.Tx) error {
	_, err := db.executorFor(transaction).ExecContext(
		ctx,
		`INSERT INTO visit_logs (short_link, device_type, visited_at) VALUES ($1, $2, $3)`,
		visit.ShortLink,
		visit.DeviceType,
		visit.VisitedAt,
	)

	return err
}

// DeleteVisitLogsByShortLinks removes all visit logs whose short code is in
// the given set. The set must be captured before the owning links are gone.
func (db *PostgresDB) DeleteVisitLogsByShortLinks(
	ctx context.Context,
	shortLinks []string,
	transaction *sql.Tx,
) error {
	shortLinksLen := len(shortLinks)
	if shortLinksLen == 0 {
		return nil
	}
	placeholdersSlice := make([]string, shortLinksLen)
	for i := range shortLinks {
		placeholdersSlice[i] = fmt.Sprintf("$%d", i+1)
	}
	placeholders := strings.Join(placeholdersSlice, ",")

	_, err := db.executorFor(transaction).ExecContext(
		ctx,
		fmt.Sprintf(
			`DELETE FROM visit_logs WHERE short_link IN (%s)`,
			placeholders,
		),
		func(strSlice []string) []interface{} {
			result := make([]interface{}, len(strSlice))
			for i, v := range strSlice {
				result[i] = v
			}

			return result
		}(shortLinks)...,
	)

	return err
}

// GetUserClickStats aggregates click analytics over the visit logs of the
// user's links: total clicks, clicks per day, and clicks per device category.
func (db *PostgresDB) GetUserClickStats(ctx context.Context, userID string) (models.ClickStats, error) {
	result := models.ClickStats{
		DateWiseClicks:   map[string]int64{},
		DeviceTypeClicks: map[string]int64{},
	}

	row := db.database.QueryRowContext(
		ctx,
		`
			SELECT COUNT(*)
				FROM visit_logs
					JOIN links ON links.short_link = visit_logs.short_link
				WHERE links.user_id = $1
		`,
		userID,
	)
	if err := row.Scan(&result.TotalClicks); err != nil {
		return models.ClickStats{}, err
	}

	if err := db.fillGroupedClicks(
		ctx,
		`
			SELECT to_char(visit_logs.visited_at, 'YYYY-MM-DD'), COUNT(*)
				FROM visit_logs
					JOIN links ON links.short_link = visit_logs.short_link
				WHERE links.user_id = $1
				GROUP BY 1
		`,
		userID,
		result.DateWiseClicks,
	); err != nil {
		return models.ClickStats{}, err
	}

	if err := db.fillGroupedClicks(
		ctx,
		`
			SELECT visit_logs.device_type, COUNT(*)
				FROM visit_logs
					JOIN links ON links.short_link = visit_logs.short_link
				WHERE links.user_id = $1
				GROUP BY 1
		`,
		userID,
		result.DeviceTypeClicks,
	); err != nil {
		return models.ClickStats{}, err
	}

	return result, nil
}

// GetNumberOfUsers returns the total count of registered users.
func (db *PostgresDB) GetNumberOfUsers(ctx context.Context) (int64, error) {
	return db.countRows(ctx, `SELECT COUNT(*) FROM users`)
}

// GetNumberOfLinks returns the total count of stored links.
func (db *PostgresDB) GetNumberOfLinks(ctx context.Context) (int64, error) {
	return db.countRows(ctx, `SELECT COUNT(*) FROM links`)
}

// CommitTransaction commits the given SQL transaction.
func (db *PostgresDB) CommitTransaction(transaction *sql.Tx) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic occurred while committing transaction: %v", r)
		}
	}()

	return transaction.Commit()
}

// RollbackTransaction rolls back the given SQL transaction.
func (db *PostgresDB) RollbackTransaction(transaction *sql.Tx) error {
	return transaction.Rollback()
}

// BeginTransaction starts a new SQL transaction and returns it.
// The caller is responsible for committing or rolling it back.
func (db *PostgresDB) BeginTransaction() (*sql.Tx, error) {
	return db.database.Begin()
}

// Ping verifies connectivity with the PostgreSQL database within the configured timeout.
func (db *PostgresDB) Ping(ctx context.Context) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, db.connectionTimeout)
	defer cancel()

	return db.database.PingContext(ctxWithTimeout)
}

// Close closes the database connection and releases any associated resources.
func (db *PostgresDB) Close() error {
	return db.database.Close()
}

func (db *PostgresDB) fillGroupedClicks(
	ctx context.Context,
	query string,
	userID string,
	target map[string]int64,
) error {
	rows, err := db.database.QueryContext(ctx, query, userID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		var count int64
		if err := rows.Scan(&key, &count); err != nil {
			return err
		}

		target[key] = count
	}

	return rows.Err()
}

func (db *PostgresDB) countRows(ctx context.Context, query string) (int64, error) {
	row := db.database.QueryRowContext(ctx, query)
	var count int64
	if err := row.Scan(&count); err != nil {
		return 0, err
	}

	return count, nil
}

func scanUser(row *sql.Row) (*user.User, bool, error) {
	usr := &user.User{}
	err := row.Scan(&usr.ID, &usr.Name, &usr.Email, &usr.PasswordHash, &usr.MobileNo)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}

	return usr, true, nil
}

func (db *PostgresDB) resetDB(ctx context.Context) error {
	_, err := db.database.ExecContext(
		ctx,
		`
			DO $$
			DECLARE
				r RECORD;
			BEGIN
				FOR r IN (SELECT tablename FROM pg_tables WHERE schemaname = 'public') LOOP
					EXECUTE 'DROP TABLE IF EXISTS ' || quote_ident(r.tablename) || ' CASCADE';
				END LOOP;
			END $$;
		`,
	)
	if err != nil {
		return fmt.Errorf("error while `db.database.ExecContext()` calling: %w", err)
	}
	return nil
}
