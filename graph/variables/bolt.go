package variables

import (
	"context"
	"os"
	"path/filepath"

	"github.com/boltdb/bolt"
	"github.com/cayleygraph/quad"
	"github.com/cayleygraph/quad/pquads"
	"github.com/pkg/errors"

	"github.com/cayleygraph/traverse/clog"
)

var _ Variables = (*Bolt)(nil)

var bucketVariables = []byte("variables")

// Bolt is a variables store persisted in a Bolt database file.
// Values are serialized as protobuf-encoded quad values.
type Bolt struct {
	db       *bolt.DB
	features Features
}

// OpenBolt opens or creates a Bolt file at a given path.
func OpenBolt(path string) (*Bolt, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, err
		}
	}
	db, err := bolt.Open(path, 0600, nil)
	if err != nil {
		clog.Errorf("couldn't open variables database: %v", err)
		return nil, errors.Wrapf(err, "variables: open %q", path)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketVariables)
		return err
	})
	if err != nil {
		db.Close()
		return nil, errors.Wrap(err, "variables: create bucket")
	}
	return &Bolt{db: db, features: DefaultFeatures}, nil
}

func (s *Bolt) Keys(ctx context.Context) ([]string, error) {
	var keys []string
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketVariables).ForEach(func(k, _ []byte) error {
			keys = append(keys, string(k))
			return nil
		})
	})
	if err != nil {
		return nil, errors.Wrap(err, "variables: list keys")
	}
	// bolt iterates in byte order, so the result is already sorted
	return visibleKeys(keys), nil
}

func (s *Bolt) Get(ctx context.Context, key string) (quad.Value, bool, error) {
	var v quad.Value
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketVariables).Get([]byte(key))
		if data == nil {
			return nil
		}
		var err error
		v, err = pquads.UnmarshalValue(data)
		return err
	})
	if err != nil {
		return nil, false, errors.Wrapf(err, "variables: get %q", key)
	}
	return v, v != nil, nil
}

func (s *Bolt) Set(ctx context.Context, key string, value interface{}) error {
	qv, err := s.features.Validate(key, value)
	if err != nil {
		return err
	}
	data, err := pquads.MarshalValue(qv)
	if err != nil {
		return errors.Wrapf(err, "variables: encode %q", key)
	}
	err = s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketVariables).Put([]byte(key), data)
	})
	return errors.Wrapf(err, "variables: set %q", key)
}

func (s *Bolt) Remove(ctx context.Context, key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketVariables).Delete([]byte(key))
	})
	return errors.Wrapf(err, "variables: remove %q", key)
}

// Close releases the database file.
func (s *Bolt) Close() error {
	return s.db.Close()
}
