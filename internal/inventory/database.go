package inventory

import (
	"encoding/json"
	"fmt"
	"time"

	"go.etcd.io/bbolt"
)

const (
	unitsBucketName    = "units"
	productsBucketName = "products"
	settingsBucketName = "settings"

	settingsKey = "default"
)

// DB defines the interface for database operations
type DB interface {
	// SaveUnit saves a unit to the database
	SaveUnit(unit *Unit) error

	// GetUnit retrieves a unit by ID
	GetUnit(id string) (*Unit, error)

	// ListUnits returns all units
	ListUnits() ([]*Unit, error)

	// DeleteUnit removes a unit from the database
	DeleteUnit(id string) error

	// SaveProduct upserts a product summary keyed by its product ID
	SaveProduct(summary *ProductSummary) error

	// ListProducts returns all product summaries
	ListProducts() ([]*ProductSummary, error)

	// GetSettings returns the stored settings, or ErrNotFound if none were saved
	GetSettings() (*Settings, error)

	// SaveSettings stores the settings
	SaveSettings(settings *Settings) error

	// Close closes the database connection
	Close() error
}

// BoltDB implements the DB interface using BoltDB
type BoltDB struct {
	db *bbolt.DB
}

// NewBoltDB creates a new BoltDB instance
func NewBoltDB(path string) (*BoltDB, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening boltdb: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range []string{unitsBucketName, productsBucketName, settingsBucketName} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating buckets: %w", err)
	}

	return &BoltDB{db: db}, nil
}

func (b *BoltDB) put(bucketName, key string, v any) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("marshaling %s: %w", bucketName, err)
		}
		return tx.Bucket([]byte(bucketName)).Put([]byte(key), data)
	})
}

func (b *BoltDB) get(bucketName, key string, v any) error {
	return b.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket([]byte(bucketName)).Get([]byte(key))
		if data == nil {
			return fmt.Errorf("%s %q: %w", bucketName, key, ErrNotFound)
		}
		return json.Unmarshal(data, v)
	})
}

// SaveUnit saves a unit to the database
func (b *BoltDB) SaveUnit(unit *Unit) error {
	return b.put(unitsBucketName, unit.ID, unit)
}

// GetUnit retrieves a unit by ID
func (b *BoltDB) GetUnit(id string) (*Unit, error) {
	var unit Unit
	if err := b.get(unitsBucketName, id, &unit); err != nil {
		return nil, err
	}
	return &unit, nil
}

// ListUnits returns all units
func (b *BoltDB) ListUnits() ([]*Unit, error) {
	units := make([]*Unit, 0)
	err := b.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(unitsBucketName)).ForEach(func(k, v []byte) error {
			var unit Unit
			if err := json.Unmarshal(v, &unit); err != nil {
				return fmt.Errorf("unmarshaling unit: %w", err)
			}
			units = append(units, &unit)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return units, nil
}

// DeleteUnit removes a unit from the database
func (b *BoltDB) DeleteUnit(id string) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(unitsBucketName)).Delete([]byte(id))
	})
}

// SaveProduct upserts a product summary
func (b *BoltDB) SaveProduct(summary *ProductSummary) error {
	return b.put(productsBucketName, summary.ProductID, summary)
}

// ListProducts returns all product summaries ordered by product ID
func (b *BoltDB) ListProducts() ([]*ProductSummary, error) {
	products := make([]*ProductSummary, 0)
	err := b.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(productsBucketName)).ForEach(func(k, v []byte) error {
			var summary ProductSummary
			if err := json.Unmarshal(v, &summary); err != nil {
				return fmt.Errorf("unmarshaling product: %w", err)
			}
			products = append(products, &summary)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return products, nil
}

// GetSettings returns the stored settings
func (b *BoltDB) GetSettings() (*Settings, error) {
	var settings Settings
	if err := b.get(settingsBucketName, settingsKey, &settings); err != nil {
		return nil, err
	}
	return &settings, nil
}

// SaveSettings stores the settings
func (b *BoltDB) SaveSettings(settings *Settings) error {
	return b.put(settingsBucketName, settingsKey, settings)
}

// Close closes the database connection
func (b *BoltDB) Close() error {
	return b.db.Close()
}
