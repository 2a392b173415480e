package v3poolsrepo

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"github.com/alexkalak/go_univ3_quoting/common/models"
	"github.com/alexkalak/go_univ3_quoting/common/periphery/pgdatabase"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

type V3PoolDBRepo interface {
	GetPools(chainID uint) ([]models.UniswapV3Pool, error)
	GetNonDustyPools(chainID uint) ([]models.UniswapV3Pool, error)
	GetPoolByIdentificator(poolIdentificator models.V3PoolIdentificator) (models.UniswapV3Pool, error)

	UpsertPools(pools []models.UniswapV3Pool) error
	UpdatePoolStates(pools []models.UniswapV3Pool) error
	UpdatePoolsIsDusty(pools []models.UniswapV3Pool) error
}

type V3PoolDBRepoDependencies struct {
	Database *pgdatabase.PgDatabase
}

func (d *V3PoolDBRepoDependencies) validate() error {
	if d.Database == nil {
		return errors.New("v3 pool db repo database dependency cannot be nil")
	}

	return nil
}

type v3poolDBRepo struct {
	pgDatabase *pgdatabase.PgDatabase
}

func NewDBRepo(dependencies V3PoolDBRepoDependencies) (V3PoolDBRepo, error) {
	if err := dependencies.validate(); err != nil {
		return nil, err
	}

	return &v3poolDBRepo{
		pgDatabase: dependencies.Database,
	}, nil
}

func poolColumns() []string {
	return []string{
		models.UNISWAP_V3_POOL_ADDRESS,
		models.UNISWAP_V3_POOL_CHAINID,
		models.UNISWAP_V3_POOL_TOKEN0,
		models.UNISWAP_V3_POOL_TOKEN1,
		models.UNISWAP_V3_POOL_SQRTPRICEX96,
		models.UNISWAP_V3_POOL_LIQUIDITY,

		models.UNISWAP_V3_POOL_TICK,
		models.UNISWAP_V3_POOL_TICK_SPACING,
		models.UNISWAP_V3_POOL_TICK_LOWER,
		models.UNISWAP_V3_POOL_TICK_UPPER,
		models.UNISWAP_V3_POOL_TICKS,

		models.UNISWAP_V3_POOL_FEE_TIER,
		models.UNISWAP_V3_POOL_IS_DUSTY,
		models.UNISWAP_V3_POOL_BLOCK_NUMBER,
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanPool reads one row in poolColumns order. The numeric columns are text
// in pg and parse strictly; a row this repo wrote always parses back.
func scanPool(row rowScanner) (models.UniswapV3Pool, error) {
	var pool models.UniswapV3Pool

	sqrtPriceX96Str := ""
	liquidityStr := ""

	err := row.Scan(
		&pool.Address,
		&pool.ChainID,
		&pool.Token0,
		&pool.Token1,
		&sqrtPriceX96Str,
		&liquidityStr,
		&pool.Tick,
		&pool.TickSpacing,
		&pool.TickLower,
		&pool.TickUpper,
		&pool.TicksJSON,
		&pool.FeeTier,
		&pool.IsDusty,
		&pool.BlockNumber,
	)
	if err != nil {
		return models.UniswapV3Pool{}, err
	}

	sqrtPriceX96, ok := new(big.Int).SetString(sqrtPriceX96Str, 10)
	if !ok {
		return models.UniswapV3Pool{}, fmt.Errorf("%w: %s=%q", models.ErrMalformedAmount, models.UNISWAP_V3_POOL_SQRTPRICEX96, sqrtPriceX96Str)
	}

	liquidity, ok := new(big.Int).SetString(liquidityStr, 10)
	if !ok {
		return models.UniswapV3Pool{}, fmt.Errorf("%w: %s=%q", models.ErrMalformedAmount, models.UNISWAP_V3_POOL_LIQUIDITY, liquidityStr)
	}

	pool.SqrtPriceX96 = sqrtPriceX96
	pool.Liquidity = liquidity

	return pool, nil
}

func (r *v3poolDBRepo) GetPools(chainID uint) ([]models.UniswapV3Pool, error) {
	return r.selectPools(sq.Eq{models.UNISWAP_V3_POOL_CHAINID: chainID})
}

func (r *v3poolDBRepo) GetNonDustyPools(chainID uint) ([]models.UniswapV3Pool, error) {
	return r.selectPools(sq.Eq{
		models.UNISWAP_V3_POOL_CHAINID:  chainID,
		models.UNISWAP_V3_POOL_IS_DUSTY: false,
	})
}

func (r *v3poolDBRepo) selectPools(where sq.Eq) ([]models.UniswapV3Pool, error) {
	db, err := r.pgDatabase.GetDB()
	if err != nil {
		return nil, err
	}

	query := psql.
		Select(poolColumns()...).
		From(models.UNISWAP_V3_POOL_TABLE).
		Where(where).
		OrderBy(models.UNISWAP_V3_POOL_ADDRESS)

	rows, err := query.
		RunWith(db).
		Query()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	pools := []models.UniswapV3Pool{}
	for rows.Next() {
		pool, err := scanPool(rows)
		if err != nil {
			return nil, err
		}

		pools = append(pools, pool)
	}

	return pools, rows.Err()
}

func (r *v3poolDBRepo) GetPoolByIdentificator(poolIdentificator models.V3PoolIdentificator) (models.UniswapV3Pool, error) {
	db, err := r.pgDatabase.GetDB()
	if err != nil {
		return models.UniswapV3Pool{}, err
	}

	query := psql.
		Select(poolColumns()...).
		From(models.UNISWAP_V3_POOL_TABLE).
		Where(sq.Eq{
			models.UNISWAP_V3_POOL_ADDRESS: poolIdentificator.Address,
			models.UNISWAP_V3_POOL_CHAINID: poolIdentificator.ChainID,
		})

	return scanPool(query.RunWith(db).QueryRow())
}

func (r *v3poolDBRepo) UpsertPools(pools []models.UniswapV3Pool) error {
	if len(pools) == 0 {
		return nil
	}

	db, err := r.pgDatabase.GetDB()
	if err != nil {
		return err
	}
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	setClauses := []string{}
	for _, col := range poolColumns() {
		if col == models.UNISWAP_V3_POOL_ADDRESS || col == models.UNISWAP_V3_POOL_CHAINID {
			continue
		}
		setClauses = append(setClauses, fmt.Sprintf("%s = EXCLUDED.%s", col, col))
	}

	conflictSuffix := fmt.Sprintf("ON CONFLICT (%s, %s) DO UPDATE SET %s",
		models.UNISWAP_V3_POOL_ADDRESS,
		models.UNISWAP_V3_POOL_CHAINID,
		strings.Join(setClauses, ", "),
	)

	for _, pool := range pools {
		query := psql.
			Insert(models.UNISWAP_V3_POOL_TABLE).
			Columns(poolColumns()...).
			Values(
				pool.Address,
				pool.ChainID,
				pool.Token0,
				pool.Token1,
				pool.SqrtPriceX96.String(),
				pool.Liquidity.String(),
				pool.Tick,
				pool.TickSpacing,
				pool.TickLower,
				pool.TickUpper,
				pool.TicksJSON,
				pool.FeeTier,
				pool.IsDusty,
				pool.BlockNumber,
			).
			Suffix(conflictSuffix)

		if _, err := query.RunWith(tx).Exec(); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// UpdatePoolStates writes back the mutable half of the snapshot after a
// block of events has been applied.
func (r *v3poolDBRepo) UpdatePoolStates(pools []models.UniswapV3Pool) error {
	if len(pools) == 0 {
		return nil
	}

	db, err := r.pgDatabase.GetDB()
	if err != nil {
		return err
	}
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, pool := range pools {
		queryMap := map[string]any{
			models.UNISWAP_V3_POOL_SQRTPRICEX96: pool.SqrtPriceX96.String(),
			models.UNISWAP_V3_POOL_LIQUIDITY:    pool.Liquidity.String(),
			models.UNISWAP_V3_POOL_TICK:         pool.Tick,
			models.UNISWAP_V3_POOL_TICK_LOWER:   pool.TickLower,
			models.UNISWAP_V3_POOL_TICK_UPPER:   pool.TickUpper,
			models.UNISWAP_V3_POOL_TICKS:        pool.TicksJSON,
			models.UNISWAP_V3_POOL_BLOCK_NUMBER: pool.BlockNumber,
		}

		query := psql.
			Update(models.UNISWAP_V3_POOL_TABLE).
			SetMap(queryMap).
			Where(sq.Eq{models.UNISWAP_V3_POOL_ADDRESS: pool.Address, models.UNISWAP_V3_POOL_CHAINID: pool.ChainID})

		if _, err := query.RunWith(tx).Exec(); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *v3poolDBRepo) UpdatePoolsIsDusty(pools []models.UniswapV3Pool) error {
	if len(pools) == 0 {
		return nil
	}

	db, err := r.pgDatabase.GetDB()
	if err != nil {
		return err
	}
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, pool := range pools {
		query := psql.
			Update(models.UNISWAP_V3_POOL_TABLE).
			SetMap(map[string]any{models.UNISWAP_V3_POOL_IS_DUSTY: pool.IsDusty}).
			Where(sq.Eq{models.UNISWAP_V3_POOL_ADDRESS: pool.Address, models.UNISWAP_V3_POOL_CHAINID: pool.ChainID})

		if _, err := query.RunWith(tx).Exec(); err != nil {
			return err
		}
	}

	return tx.Commit()
}
