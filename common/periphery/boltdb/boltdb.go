package boltdb

import (
	"errors"
	"time"

	"go.etcd.io/bbolt"
)

type BoltDatabaseConfig struct {
	Path string
}

type BoltDatabase struct {
	db *bbolt.DB
}

func (d *BoltDatabase) GetDB() (*bbolt.DB, error) {
	if d.db == nil {
		return nil, errors.New("bolt database uninitialized")
	}

	return d.db, nil
}

func New(config BoltDatabaseConfig) (*BoltDatabase, error) {
	// The timeout bounds the wait on the file lock when another process
	// still holds the snapshot file.
	db, err := bbolt.Open(config.Path, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}

	return &BoltDatabase{
		db: db,
	}, nil
}

func (d *BoltDatabase) Close() error {
	if d.db == nil {
		return nil
	}

	return d.db.Close()
}
