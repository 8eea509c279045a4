// Package jsondb implements the storage contract on top of a JSON file.
// The whole dataset is kept in memory and flushed to disk on Close.
// Transactions are no-ops: every operation is applied immediately.
package jsondb

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/google/uuid"

	"github.com/sgorbunov/shrtaccounts/internal/models"
	"github.com/sgorbunov/shrtaccounts/internal/user"
)

type JSONDB struct {
	mu       sync.RWMutex
	fileName string
	Cache    CacheStruct
}

type CacheStruct struct {
	Users     map[string]user.User
	EmailToID map[string]string
	Links     []models.Link
	VisitLogs []models.VisitLog
}

func newCache() CacheStruct {
	return CacheStruct{
		Users:     map[string]user.User{},
		EmailToID: map[string]string{},
		Links:     []models.Link{},
		VisitLogs: []models.VisitLog{},
	}
}

func initDBFile(fileName string) error {
	dbFile, err := os.OpenFile(fileName, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	emptyCache, err := json.MarshalIndent(newCache(), "", "\t")
	if err != nil {
		return err
	}
	if _, err := dbFile.Write(emptyCache); err != nil {
		return err
	}
	return dbFile.Close()
}

func writeToJSONFile(fileName string, cache interface{}) error {
	jsonData, err := json.MarshalIndent(cache, "", "\t")
	if err != nil {
		return fmt.Errorf("error marshaling JSON: %s", err)
	}

	file, err2 := os.OpenFile(fileName, os.O_WRONLY|os.O_TRUNC|os.O_CREATE, 0644)
	if err2 != nil {
		return fmt.Errorf("error opening file: %s", err2)
	}
	defer file.Close()

	_, err = file.Write(jsonData)
	if err != nil {
		return fmt.Errorf("error writing to file: %s", err)
	}

	return nil
}

func parseJSONFile(fileName string, cacheMap *CacheStruct) error {
	file, err := os.Open(fileName)
	if err != nil {
		return err
	}
	defer file.Close()

	decoder := json.NewDecoder(file)
	err = decoder.Decode(cacheMap)
	if err != nil {
		return err
	}

	return nil
}

// New opens (or creates) the JSON database file and loads it into memory.
func New(fileName string) (*JSONDB, error) {
	db := JSONDB{
		fileName: fileName,
		Cache:    newCache(),
	}

	err := parseJSONFile(db.fileName, &db.Cache)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
		err := initDBFile(fileName)
		if err != nil {
			return nil, err
		}
		err = parseJSONFile(db.fileName, &db.Cache)
		if err != nil {
			return nil, err
		}
	}

	return &db, nil
}

// NewInMemory returns a JSONDB that is never flushed to disk.
// It backs the memory storage and tests.
func NewInMemory() *JSONDB {
	return &JSONDB{
		fileName: "",
		Cache:    newCache(),
	}
}

func (db *JSONDB) CreateUser(ctx context.Context, usr *user.User, transaction *sql.Tx) (string, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if usr.ID == "" {
		usr.ID = uuid.New().String()
	}

	db.Cache.Users[usr.ID] = *usr
	db.Cache.EmailToID[usr.Email] = usr.ID

	return usr.ID, nil
}

func (db *JSONDB) GetUserByID(ctx context.Context, userID string, transaction *sql.Tx) (*user.User, bool, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return db.getUser(userID)
}

func (db *JSONDB) GetUserByEmail(ctx context.Context, email string, transaction *sql.Tx) (*user.User, bool, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	userID, found := db.Cache.EmailToID[email]
	if !found {
		return nil, false, nil
	}

	return db.getUser(userID)
}

// getUser is the lookup shared by the user getters. Callers hold db.mu.
func (db *JSONDB) getUser(userID string) (*user.User, bool, error) {
	usr, found := db.Cache.Users[userID]
	if !found {
		return nil, false, nil
	}

	return &usr, true, nil
}

func (db *JSONDB) UpdateUser(ctx context.Context, usr *user.User, transaction *sql.Tx) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	stored, found := db.Cache.Users[usr.ID]
	if !found {
		return nil
	}

	delete(db.Cache.EmailToID, stored.Email)

	stored.Name = usr.Name
	stored.Email = usr.Email
	stored.MobileNo = usr.MobileNo

	db.Cache.Users[stored.ID] = stored
	db.Cache.EmailToID[stored.Email] = stored.ID

	return nil
}

func (db *JSONDB) DeleteUser(ctx context.Context, userID string, transaction *sql.Tx) (bool, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	usr, found := db.Cache.Users[userID]
	if !found {
		return false, nil
	}

	delete(db.Cache.Users, userID)
	delete(db.Cache.EmailToID, usr.Email)

	return true, nil
}

func (db *JSONDB) InsertLink(ctx context.Context, link *models.Link, transaction *sql.Tx) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if link.ID == "" {
		link.ID = uuid.New().String()
	}

	db.Cache.Links = append(db.Cache.Links, *link)

	return nil
}

func (db *JSONDB) GetUserShortLinks(ctx context.Context, userID string, transaction *sql.Tx) ([]string, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	result := []string{}
	for _, link := range db.Cache.Links {
		if link.UserID == userID {
			result = append(result, link.ShortLink)
		}
	}

	return result, nil
}

func (db *JSONDB) DeleteUserLinks(ctx context.Context, userID string, transaction *sql.Tx) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	remaining := []models.Link{}
	for _, link := range db.Cache.Links {
		if link.UserID != userID {
			remaining = append(remaining, link)
		}
	}

	db.Cache.Links = remaining

	return nil
}

func (db *JSONDB) InsertVisitLog(ctx context.Context, visit *models.VisitLog, transaction *sql.Tx) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if visit.ID == "" {
		visit.ID = uuid.New().String()
	}

	db.Cache.VisitLogs = append(db.Cache.VisitLogs, *visit)

	return nil
}

func (db *JSONDB) DeleteVisitLogsByShortLinks(
	ctx context.Context,
	shortLinks []string,
	transaction *sql.Tx,
) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	doomed := map[string]bool{}
	for _, shortLink := range shortLinks {
		doomed[shortLink] = true
	}

	remaining := []models.VisitLog{}
	for _, visit := range db.Cache.VisitLogs {
		if !doomed[visit.ShortLink] {
			remaining = append(remaining, visit)
		}
	}

	db.Cache.VisitLogs = remaining

	return nil
}

func (db *JSONDB) GetUserClickStats(ctx context.Context, userID string) (models.ClickStats, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	owned := map[string]bool{}
	for _, link := range db.Cache.Links {
		if link.UserID == userID {
			owned[link.ShortLink] = true
		}
	}

	result := models.ClickStats{
		DateWiseClicks:   map[string]int64{},
		DeviceTypeClicks: map[string]int64{},
	}
	for _, visit := range db.Cache.VisitLogs {
		if !owned[visit.ShortLink] {
			continue
		}

		result.TotalClicks++
		result.DateWiseClicks[visit.VisitedAt.Format("2006-01-02")]++
		result.DeviceTypeClicks[visit.DeviceType]++
	}

	return result, nil
}

func (db *JSONDB) GetNumberOfUsers(ctx context.Context) (int64, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return int64(len(db.Cache.Users)), nil
}

func (db *JSONDB) GetNumberOfLinks(ctx context.Context) (int64, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return int64(len(db.Cache.Links)), nil
}

func (db *JSONDB) BeginTransaction() (*sql.Tx, error) {
	return nil, nil
}

func (db *JSONDB) CommitTransaction(transaction *sql.Tx) error {
	return nil
}

func (db *JSONDB) RollbackTransaction(transaction *sql.Tx) error {
	return nil
}

func (db *JSONDB) Ping(ctx context.Context) error {
	return nil
}

func (db *JSONDB) Close() error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if db.fileName == "" {
		return nil
	}

	return writeToJSONFile(db.fileName, db.Cache)
}
