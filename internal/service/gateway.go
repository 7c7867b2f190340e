package service

import (
	"context"
	"errors"
	"iter"

	"gizmo/internal/api"
	"gizmo/internal/domain"
)

// ReplayGateway is the replay search service. Sequences are lazy, finite and not
// restartable; an empty sequence is a normal "no results" outcome.
type ReplayGateway interface {
	SearchReplays(ctx context.Context, q domain.ReplayQuery) iter.Seq2[domain.Replay, error]
}

type VanityResolver interface {
	ResolveVanity(ctx context.Context, vanity string) (string, bool)
}

type SteamProfiles interface {
	Profile(ctx context.Context, steamID string) (*api.SteamProfile, error)
}

// firstReplay pulls at most one usable replay out of a search. Malformed records
// are skipped; any other error aborts.
func firstReplay(ctx context.Context, gw ReplayGateway, q domain.ReplayQuery) (domain.Replay, bool, error) {
	for replay, err := range gw.SearchReplays(ctx, q) {
		if err != nil {
			if isMalformed(err) {
				continue
			}
			return domain.Replay{}, false, err
		}
		return replay, true, nil
	}
	return domain.Replay{}, false, nil
}

func isMalformed(err error) bool {
	return errors.Is(err, domain.ErrMalformedRecord)
}
