package v3poolsrepo

import (
	"strconv"

	"go.etcd.io/bbolt"

	"github.com/alexkalak/go_univ3_quoting/common/models"
	"github.com/alexkalak/go_univ3_quoting/common/periphery/boltdb"
)

// V3PoolSnapshotRepo persists pool snapshots to a local bolt file, so a
// restart can serve quotes before redis and pg are warm. The bucket layout
// mirrors the redis hash: one bucket per chain, pools keyed by
// identificator, the block number under the same reserved key.
type V3PoolSnapshotRepo interface {
	SavePools(chainID uint, pools []models.UniswapV3Pool) error
	LoadPools(chainID uint) ([]models.UniswapV3Pool, error)

	SetBlockNumber(chainID uint, blockNumber uint64) error
	GetBlockNumber(chainID uint) (uint64, error)

	Close() error
}

type V3PoolSnapshotRepoConfig struct {
	Path string
}

type v3poolSnapshotRepo struct {
	boltDB *boltdb.BoltDatabase
}

func NewSnapshotRepo(config V3PoolSnapshotRepoConfig) (V3PoolSnapshotRepo, error) {
	boltDatabase, err := boltdb.New(boltdb.BoltDatabaseConfig{
		Path: config.Path,
	})
	if err != nil {
		return nil, err
	}

	return &v3poolSnapshotRepo{
		boltDB: boltDatabase,
	}, nil
}

func (r *v3poolSnapshotRepo) SavePools(chainID uint, pools []models.UniswapV3Pool) error {
	db, err := r.boltDB.GetDB()
	if err != nil {
		return err
	}

	return db.Update(func(tx *bbolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists([]byte(getPoolsHashByChainID(chainID)))
		if err != nil {
			return err
		}

		for _, pool := range pools {
			poolJSON, err := pool.GetJSON()
			if err != nil {
				return err
			}

			err = bucket.Put([]byte(pool.GetIdentificator().String()), poolJSON)
			if err != nil {
				return err
			}
		}

		return nil
	})
}

func (r *v3poolSnapshotRepo) LoadPools(chainID uint) ([]models.UniswapV3Pool, error) {
	db, err := r.boltDB.GetDB()
	if err != nil {
		return nil, err
	}

	pools := []models.UniswapV3Pool{}
	err = db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(getPoolsHashByChainID(chainID)))
		if bucket == nil {
			return nil
		}

		return bucket.ForEach(func(_, value []byte) error {
			pool := models.UniswapV3Pool{}
			if err := pool.FillFromJSON(value); err != nil {
				return nil
			}

			pools = append(pools, pool)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	return pools, nil
}

func (r *v3poolSnapshotRepo) SetBlockNumber(chainID uint, blockNumber uint64) error {
	db, err := r.boltDB.GetDB()
	if err != nil {
		return err
	}

	return db.Update(func(tx *bbolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists([]byte(getPoolsHashByChainID(chainID)))
		if err != nil {
			return err
		}

		return bucket.Put([]byte(BLOCK_NUMBER_KEY), []byte(strconv.FormatUint(blockNumber, 10)))
	})
}

// GetBlockNumber returns 0 when the snapshot file has nothing for the chain.
func (r *v3poolSnapshotRepo) GetBlockNumber(chainID uint) (uint64, error) {
	db, err := r.boltDB.GetDB()
	if err != nil {
		return 0, err
	}

	blockNumber := uint64(0)
	err = db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(getPoolsHashByChainID(chainID)))
		if bucket == nil {
			return nil
		}

		raw := bucket.Get([]byte(BLOCK_NUMBER_KEY))
		if raw == nil {
			return nil
		}

		parsed, err := strconv.ParseUint(string(raw), 10, 64)
		if err != nil {
			return err
		}

		blockNumber = parsed
		return nil
	})
	if err != nil {
		return 0, err
	}

	return blockNumber, nil
}

func (r *v3poolSnapshotRepo) Close() error {
	return r.boltDB.Close()
}
