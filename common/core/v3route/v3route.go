package v3route

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/alexkalak/go_univ3_quoting/common/core/coreerrors/routeerrors"
	"github.com/alexkalak/go_univ3_quoting/common/core/v3pool"
	"github.com/alexkalak/go_univ3_quoting/common/models"
)

// Route is an ordered chain of pools leading from an input token to an
// output token. TokenPath holds every token along the way, starting with the
// input and ending with the output, one entry per pool boundary.
type Route struct {
	Pools     []*v3pool.Pool
	TokenPath []*models.Token
	Input     *models.Token
	Output    *models.Token
	ChainID   uint
}

// NewRoute derives the token path by walking the pools from the input token,
// where each pool swaps the running token for its other side. Every pool
// must be on one chain and consecutive pools must share the running token.
func NewRoute(pools []*v3pool.Pool, input, output *models.Token) (*Route, error) {
	if len(pools) == 0 {
		return nil, routeerrors.ErrEmptyRoute
	}

	chainID := pools[0].ChainID
	for _, pool := range pools {
		if pool.ChainID != chainID {
			return nil, routeerrors.ErrChainIDMismatch
		}
	}

	tokenPath := make([]*models.Token, 0, len(pools)+1)
	tokenPath = append(tokenPath, input)
	for i, pool := range pools {
		current := tokenPath[i]
		if !pool.InvolvesToken(current) {
			if i == 0 {
				return nil, routeerrors.ErrInputTokenMismatch
			}
			return nil, routeerrors.ErrPathNotChained
		}
		next := pool.Token0
		if current.Equal(pool.Token0) {
			next = pool.Token1
		}
		tokenPath = append(tokenPath, next)
	}

	if !tokenPath[len(tokenPath)-1].Equal(output) {
		return nil, routeerrors.ErrOutputTokenMismatch
	}

	return &Route{
		Pools:     append([]*v3pool.Pool(nil), pools...),
		TokenPath: tokenPath,
		Input:     input,
		Output:    output,
		ChainID:   chainID,
	}, nil
}

// EncodeToPath serializes the route the way the periphery router consumes
// swap paths: packed 20 byte token addresses alternating with 3 byte
// big-endian fees. Exact output paths run from the output token back to the
// input.
func (r *Route) EncodeToPath(exactOutput bool) []byte {
	elements := make([][]byte, 0, 2*len(r.Pools)+1)
	elements = append(elements, common.HexToAddress(r.TokenPath[0].Address).Bytes())
	for i, pool := range r.Pools {
		elements = append(elements, feeBytes(pool.Fee))
		elements = append(elements, common.HexToAddress(r.TokenPath[i+1].Address).Bytes())
	}

	if exactOutput {
		for left, right := 0, len(elements)-1; left < right; left, right = left+1, right-1 {
			elements[left], elements[right] = elements[right], elements[left]
		}
	}

	path := make([]byte, 0, 23*len(r.Pools)+20)
	for _, element := range elements {
		path = append(path, element...)
	}
	return path
}

func feeBytes(fee int) []byte {
	return []byte{byte(fee >> 16), byte(fee >> 8), byte(fee)}
}
