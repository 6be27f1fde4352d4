package services

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"devlens/internal/common"
	"devlens/internal/interfaces"

	bolt "go.etcd.io/bbolt"
)

const (
	issuesBucket   = "issues"
	metadataBucket = "metadata"
	fetchOrderKey  = "fetch_order"
	lastFetchKey   = "last_fetch"
)

// storage persists the latest successful issue snapshot in bbolt so the
// dashboard has data between refreshes. Saving replaces the previous
// snapshot wholesale; a failed fetch never reaches this layer, so the
// prior snapshot survives it.
type storage struct {
	db     *bolt.DB
	config *common.StorageConfig
}

func NewStorage(config *common.StorageConfig) (interfaces.Storage, error) {
	dbDir := filepath.Dir(config.DatabasePath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := bolt.Open(config.DatabasePath, 0600, &bolt.Options{
		Timeout: 1 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(issuesBucket)); err != nil {
			return err
		}
		if _, err := tx.CreateBucketIfNotExists([]byte(metadataBucket)); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create buckets: %w", err)
	}

	return &storage{
		db:     db,
		config: config,
	}, nil
}

func (s *storage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveIssues replaces the cached snapshot with the given records,
// preserving their order and recording the fetch time.
func (s *storage) SaveIssues(issues []*interfaces.IssueRecord) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket([]byte(issuesBucket)); err != nil {
			return fmt.Errorf("failed to clear issue bucket: %w", err)
		}
		bucket, err := tx.CreateBucket([]byte(issuesBucket))
		if err != nil {
			return fmt.Errorf("failed to recreate issue bucket: %w", err)
		}

		order := make([]string, 0, len(issues))
		for _, issue := range issues {
			data, err := json.Marshal(issue)
			if err != nil {
				return fmt.Errorf("failed to marshal issue %s: %w", issue.Key, err)
			}
			if err := bucket.Put([]byte(issue.Key), data); err != nil {
				return fmt.Errorf("failed to save issue %s: %w", issue.Key, err)
			}
			order = append(order, issue.Key)
		}

		metaBucket := tx.Bucket([]byte(metadataBucket))

		orderData, err := json.Marshal(order)
		if err != nil {
			return fmt.Errorf("failed to marshal fetch order: %w", err)
		}
		if err := metaBucket.Put([]byte(fetchOrderKey), orderData); err != nil {
			return err
		}

		lastFetchData, _ := time.Now().MarshalBinary()
		return metaBucket.Put([]byte(lastFetchKey), lastFetchData)
	})
}

// LoadIssues returns the cached snapshot in its fetch order.
func (s *storage) LoadIssues() ([]*interfaces.IssueRecord, error) {
	var issues []*interfaces.IssueRecord

	err := s.db.View(func(tx *bolt.Tx) error {
		metaBucket := tx.Bucket([]byte(metadataBucket))
		orderData := metaBucket.Get([]byte(fetchOrderKey))
		if orderData == nil {
			return nil
		}

		var order []string
		if err := json.Unmarshal(orderData, &order); err != nil {
			return fmt.Errorf("failed to unmarshal fetch order: %w", err)
		}

		bucket := tx.Bucket([]byte(issuesBucket))
		for _, key := range order {
			data := bucket.Get([]byte(key))
			if data == nil {
				continue
			}
			var issue interfaces.IssueRecord
			if err := json.Unmarshal(data, &issue); err != nil {
				continue
			}
			issues = append(issues, &issue)
		}
		return nil
	})

	return issues, err
}

func (s *storage) ClearIssues() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket([]byte(issuesBucket)); err != nil {
			return err
		}
		if _, err := tx.CreateBucket([]byte(issuesBucket)); err != nil {
			return err
		}

		metaBucket := tx.Bucket([]byte(metadataBucket))
		return metaBucket.Delete([]byte(fetchOrderKey))
	})
}

// LastFetch returns the time of the most recent saved snapshot, or the
// zero time when nothing has been fetched yet.
func (s *storage) LastFetch() (time.Time, error) {
	var lastFetch time.Time

	err := s.db.View(func(tx *bolt.Tx) error {
		metaBucket := tx.Bucket([]byte(metadataBucket))
		data := metaBucket.Get([]byte(lastFetchKey))
		if data == nil {
			return nil
		}
		return lastFetch.UnmarshalBinary(data)
	})

	return lastFetch, err
}
