package snapshotter

import (
	"context"
	"fmt"

	"github.com/alexkalak/go_univ3_quoting/common/models"
)

const tokensUpsertChunkSize = 2000

func (s *snapshotter) MergeTokens(ctx context.Context, chainID uint) error {
	tokens, err := s.subgraphClient.GetTokens(ctx, chainID)
	if err != nil {
		return err
	}

	seen := map[string]any{}
	deduped := make([]*models.Token, 0, len(tokens))
	for i := range tokens {
		if _, ok := seen[tokens[i].Address]; ok {
			fmt.Println("found duplicate token", tokens[i].Address)
			continue
		}
		seen[tokens[i].Address] = new(any)
		deduped = append(deduped, &tokens[i])
	}

	for i := 0; i < len(deduped); i += tokensUpsertChunkSize {
		end := min(i+tokensUpsertChunkSize, len(deduped))

		if err := s.tokenRepo.UpsertTokens(deduped[i:end]); err != nil {
			return err
		}
		fmt.Println("Tokens upserted", end)
	}

	return nil
}
