package quoterepo

import (
	"errors"
	"fmt"
	"math/big"

	sq "github.com/Masterminds/squirrel"

	"github.com/alexkalak/go_univ3_quoting/common/models"
	"github.com/alexkalak/go_univ3_quoting/common/periphery/pgdatabase"
	"github.com/alexkalak/go_univ3_quoting/common/repo/quoterepo/quoterepoerrors"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

type V3QuoteRepo interface {
	CreateQuote(quote *models.QuoteResult) error
	GetRecentQuotes(chainID uint, limit uint64) ([]models.QuoteResult, error)
}

type V3QuoteRepoDependencies struct {
	Database *pgdatabase.PgDatabase
}

func (d *V3QuoteRepoDependencies) validate() error {
	if d.Database == nil {
		return errors.New("quote repo database dependency cannot be nil")
	}

	return nil
}

type v3quoteRepo struct {
	pgDatabase *pgdatabase.PgDatabase
}

func NewDBRepo(dependencies V3QuoteRepoDependencies) (V3QuoteRepo, error) {
	if err := dependencies.validate(); err != nil {
		return nil, err
	}

	return &v3quoteRepo{
		pgDatabase: dependencies.Database,
	}, nil
}

func (r *v3quoteRepo) CreateQuote(quote *models.QuoteResult) error {
	db, err := r.pgDatabase.GetDB()
	if err != nil {
		return err
	}

	query := psql.
		Insert(models.V3_QUOTE_TABLE).
		Columns(
			models.V3_QUOTE_CHAIN_ID,
			models.V3_QUOTE_TRADE_TYPE,
			models.V3_QUOTE_TOKEN_IN,
			models.V3_QUOTE_TOKEN_OUT,
			models.V3_QUOTE_AMOUNT_IN,
			models.V3_QUOTE_AMOUNT_OUT,
			models.V3_QUOTE_ROUTE_PATH,
			models.V3_QUOTE_POOL_COUNT,
			models.V3_QUOTE_BLOCK_NUMBER,
			models.V3_QUOTE_CREATED_AT,
		).Values(
		quote.ChainID,
		quote.TradeType,
		quote.TokenIn,
		quote.TokenOut,
		quote.AmountIn.String(),
		quote.AmountOut.String(),
		quote.RoutePath,
		quote.PoolCount,
		quote.BlockNumber,
		quote.CreatedAt,
	)

	_, err = query.RunWith(db).Exec()
	if err != nil {
		fmt.Println("unable to persist quote:", err)
		return quoterepoerrors.ErrUnableToCreateQuote
	}

	return nil
}

func (r *v3quoteRepo) GetRecentQuotes(chainID uint, limit uint64) ([]models.QuoteResult, error) {
	db, err := r.pgDatabase.GetDB()
	if err != nil {
		return nil, err
	}

	query := psql.
		Select(
			models.V3_QUOTE_ID,
			models.V3_QUOTE_CHAIN_ID,
			models.V3_QUOTE_TRADE_TYPE,
			models.V3_QUOTE_TOKEN_IN,
			models.V3_QUOTE_TOKEN_OUT,
			models.V3_QUOTE_AMOUNT_IN,
			models.V3_QUOTE_AMOUNT_OUT,
			models.V3_QUOTE_ROUTE_PATH,
			models.V3_QUOTE_POOL_COUNT,
			models.V3_QUOTE_BLOCK_NUMBER,
			models.V3_QUOTE_CREATED_AT,
		).
		From(models.V3_QUOTE_TABLE).
		Where(sq.Eq{models.V3_QUOTE_CHAIN_ID: chainID}).
		OrderBy(models.V3_QUOTE_ID + " DESC").
		Limit(limit)

	rows, err := query.
		RunWith(db).
		Query()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	quotes := []models.QuoteResult{}
	for rows.Next() {
		var quote models.QuoteResult

		amountInStr := ""
		amountOutStr := ""

		err := rows.Scan(
			&quote.ID,
			&quote.ChainID,
			&quote.TradeType,
			&quote.TokenIn,
			&quote.TokenOut,
			&amountInStr,
			&amountOutStr,
			&quote.RoutePath,
			&quote.PoolCount,
			&quote.BlockNumber,
			&quote.CreatedAt,
		)
		if err != nil {
			return nil, err
		}

		amountIn, ok := new(big.Int).SetString(amountInStr, 10)
		if !ok {
			return nil, fmt.Errorf("%w: %s=%q", models.ErrMalformedAmount, models.V3_QUOTE_AMOUNT_IN, amountInStr)
		}

		amountOut, ok := new(big.Int).SetString(amountOutStr, 10)
		if !ok {
			return nil, fmt.Errorf("%w: %s=%q", models.ErrMalformedAmount, models.V3_QUOTE_AMOUNT_OUT, amountOutStr)
		}

		quote.AmountIn = amountIn
		quote.AmountOut = amountOut

		quotes = append(quotes, quote)
	}

	return quotes, rows.Err()
}
