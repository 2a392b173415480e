package tokenrepo

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

type TokenRepo interface {
	GetTokens() ([]*models.Token, error)
	GetTokensByChainID(chainID uint) ([]*models.Token, error)
	GetTokenByIdentificator(identificator models.TokenIdentificator) (*models.Token, error)
	GetTokensByAddressesAndChainID(addresses []string, chainID uint) ([]*models.Token, error)

	UpsertTokens(tokens []*models.Token) error
}

type TokenRepoDependencies struct {
	Database *pgdatabase.PgDatabase
}

func (d *TokenRepoDependencies) validate() error {
	if d.Database == nil {
		return errors.New("token repo database dependency cannot be nil")
	}

	return nil
}

type tokenRepo struct {
	pgDatabase *pgdatabase.PgDatabase
}

func NewDBRepo(dependencies TokenRepoDependencies) (TokenRepo, error) {
	if err := dependencies.validate(); err != nil {
		return nil, err
	}

	return &tokenRepo{
		pgDatabase: dependencies.Database,
	}, nil
}

func tokenColumns() []string {
	return []string{
		models.TOKEN_NAME,
		models.TOKEN_SYMBOL,
		models.TOKEN_ADDRESS,
		models.TOKEN_CHAINID,
		models.TOKEN_LOGOURI,
		models.TOKEN_DECIMALS,
		models.TOKEN_USD_PRICE,
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanToken(row rowScanner) (*models.Token, error) {
	var token models.Token

	usdPriceStr := ""
	err := row.Scan(&token.Name, &token.Symbol, &token.Address, &token.ChainID, &token.LogoURI, &token.Decimals, &usdPriceStr)
	if err != nil {
		return nil, err
	}

	// Tokens the price feed has not reached yet carry an empty price.
	if usdPriceStr == "" {
		usdPriceStr = "0"
	}

	usdPrice := new(big.Float)
	_, ok := usdPrice.SetString(usdPriceStr)
	if !ok {
		fmt.Println("unable to parse usd price:", usdPriceStr)
		return nil, errors.New("unable to parse usd price of token")
	}

	token.USDPrice = usdPrice
	return &token, nil
}

func (r *tokenRepo) GetTokens() ([]*models.Token, error) {
	return r.selectTokens(nil)
}

func (r *tokenRepo) GetTokensByChainID(chainID uint) ([]*models.Token, error) {
	return r.selectTokens(sq.Eq{models.TOKEN_CHAINID: chainID})
}

func (r *tokenRepo) GetTokensByAddressesAndChainID(addresses []string, chainID uint) ([]*models.Token, error) {
	return r.selectTokens(sq.Eq{models.TOKEN_ADDRESS: addresses, models.TOKEN_CHAINID: chainID})
}

func (r *tokenRepo) selectTokens(where sq.Eq) ([]*models.Token, error) {
	db, err := r.pgDatabase.GetDB()
	if err != nil {
		return nil, err
	}

	query := psql.
		Select(tokenColumns()...).
		From(models.TOKENS_TABLE)
	if where != nil {
		query = query.Where(where)
	}

	rows, err := query.
		RunWith(db).
		Query()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tokens := []*models.Token{}
	for rows.Next() {
		token, err := scanToken(rows)
		if err != nil {
			return nil, err
		}

		tokens = append(tokens, token)
	}

	return tokens, rows.Err()
}

func (r *tokenRepo) GetTokenByIdentificator(identificator models.TokenIdentificator) (*models.Token, error) {
	db, err := r.pgDatabase.GetDB()
	if err != nil {
		return nil, err
	}

	query := psql.
		Select(tokenColumns()...).
		From(models.TOKENS_TABLE).
		Where(sq.Eq{models.TOKEN_ADDRESS: identificator.Address, models.TOKEN_CHAINID: identificator.ChainID})

	return scanToken(query.RunWith(db).QueryRow())
}

func (r *tokenRepo) UpsertTokens(tokens []*models.Token) error {
	if len(tokens) == 0 {
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
	for _, col := range tokenColumns() {
		if col == models.TOKEN_ADDRESS || col == models.TOKEN_CHAINID {
			continue
		}
		setClauses = append(setClauses, fmt.Sprintf("%s = EXCLUDED.%s", col, col))
	}

	conflictSuffix := fmt.Sprintf("ON CONFLICT (%s, %s) DO UPDATE SET %s",
		models.TOKEN_ADDRESS,
		models.TOKEN_CHAINID,
		strings.Join(setClauses, ", "),
	)

	for _, token := range tokens {
		usdPrice := "0"
		if token.USDPrice != nil {
			usdPrice = token.USDPrice.Text('f', -1)
		}

		query := psql.
			Insert(models.TOKENS_TABLE).
			Columns(tokenColumns()...).
			Values(
				token.Name,
				token.Symbol,
				token.Address,
				token.ChainID,
				token.LogoURI,
				token.Decimals,
				usdPrice,
			).
			Suffix(conflictSuffix)

		if _, err := query.RunWith(tx).Exec(); err != nil {
			return err
		}
	}

	return tx.Commit()
}
