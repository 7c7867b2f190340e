package service

import (
	"context"
	"fmt"

	"gizmo/internal/config"
	"gizmo/internal/domain"

	"github.com/rs/zerolog"
)

type Resolution struct {
	Target  Target            `json:"-"`
	Account domain.AccountRef `json:"account"`
	Stage   string            `json:"stage"`
}

// stage tries one way of turning a target into an account. ok=false with a nil
// error means "no match here, keep going"; an error aborts resolution.
type stage struct {
	name string
	run  func(ctx context.Context, t Target) (domain.AccountRef, bool, error)
}

// platformRule decides which roster slots count as the target when matching by name.
type platformRule int

const (
	anyPlatform platformRule = iota
	hintOrAny
	exactPlatform
)

func (r platformRule) accepts(hint, actual domain.Platform) bool {
	switch r {
	case hintOrAny:
		return actual == hint || hint == domain.PlatformAny
	case exactPlatform:
		return actual == hint
	default:
		return true
	}
}

type Resolver struct {
	replays ReplayGateway
	vanity  VanityResolver
	referee string
	logger  zerolog.Logger
	stages  []stage
}

func NewResolver(replays ReplayGateway, vanity VanityResolver, cfg *config.Config, logger zerolog.Logger) *Resolver {
	r := &Resolver{
		replays: replays,
		vanity:  vanity,
		referee: cfg.RefereeUploaderID,
		logger:  logger,
	}
	r.stages = []stage{
		{name: "exact-id", run: r.exactID},
		{name: "referee-pro-name", run: r.refereeProName},
		{name: "steam-vanity", run: r.declaredSteamVanity},
		{name: "id-any-platform", run: r.idAnyPlatform},
		{name: "pro-name", run: r.proName},
		{name: "name-on-platform", run: r.nameOnPlatform},
		{name: "steam-vanity-fallback", run: r.steamVanityFallback},
		{name: "name-anywhere", run: r.nameAnywhere},
	}
	return r
}

// Resolve runs the cascade over raw input, cheapest and most specific lookups first.
func (r *Resolver) Resolve(ctx context.Context, raw string) (*Resolution, error) {
	t, err := ParseTarget(raw)
	if err != nil {
		return nil, err
	}

	log := r.logger.With().Str("target", t.Raw).Str("platform_hint", string(t.Platform)).Str("kind", t.Kind.String()).Logger()

	for _, s := range r.stages {
		account, ok, err := s.run(ctx, t)
		if err != nil {
			log.Error().Err(err).Str("stage", s.name).Msg("resolution stage failed")
			return nil, fmt.Errorf("resolve %q at %s: %w", t.Raw, s.name, err)
		}
		if !ok {
			log.Debug().Str("stage", s.name).Msg("no match")
			continue
		}
		if !account.Platform.Concrete() {
			log.Warn().Str("stage", s.name).Str("account", account.String()).Msg("discarding match without a concrete platform")
			continue
		}

		log.Info().Str("stage", s.name).Str("account", account.String()).Msg("target resolved")
		return &Resolution{Target: t, Account: account, Stage: s.name}, nil
	}

	log.Info().Msg("target not found")
	return nil, fmt.Errorf("%q: %w", t.Raw, domain.ErrNotFound)
}

func (r *Resolver) exactID(ctx context.Context, t Target) (domain.AccountRef, bool, error) {
	if !t.Platform.Concrete() {
		return domain.AccountRef{}, false, nil
	}
	return r.lookupID(ctx, domain.AccountRef{Platform: t.Platform, ID: t.Identifier})
}

func (r *Resolver) refereeProName(ctx context.Context, t Target) (domain.AccountRef, bool, error) {
	return r.lookupName(ctx, t, domain.ReplayQuery{Uploader: r.referee, ProOnly: true}, hintOrAny)
}

func (r *Resolver) declaredSteamVanity(ctx context.Context, t Target) (domain.AccountRef, bool, error) {
	if t.Platform != domain.PlatformSteam {
		return domain.AccountRef{}, false, nil
	}
	id, ok := r.vanity.ResolveVanity(ctx, t.Identifier)
	if !ok {
		return domain.AccountRef{}, false, nil
	}
	return domain.AccountRef{Platform: domain.PlatformSteam, ID: id}, true, nil
}

// idAnyPlatform retries the identifier as an id on every platform. PS4 ids are
// numeric and collide with other platforms too often to be trusted here.
func (r *Resolver) idAnyPlatform(ctx context.Context, t Target) (domain.AccountRef, bool, error) {
	if t.Platform != domain.PlatformAny {
		return domain.AccountRef{}, false, nil
	}
	for _, platform := range domain.KnownPlatforms {
		if platform == domain.PlatformPS4 {
			continue
		}
		account, ok, err := r.lookupID(ctx, domain.AccountRef{Platform: platform, ID: t.Identifier})
		if err != nil || ok {
			return account, ok, err
		}
	}
	return domain.AccountRef{}, false, nil
}

func (r *Resolver) proName(ctx context.Context, t Target) (domain.AccountRef, bool, error) {
	return r.lookupName(ctx, t, domain.ReplayQuery{ProOnly: true}, hintOrAny)
}

func (r *Resolver) nameOnPlatform(ctx context.Context, t Target) (domain.AccountRef, bool, error) {
	if t.Platform == domain.PlatformAny {
		return domain.AccountRef{}, false, nil
	}
	return r.lookupName(ctx, t, domain.ReplayQuery{}, exactPlatform)
}

// steamVanityFallback treats any identifier as a possible vanity name. The
// resolved id must also appear in at least one replay.
func (r *Resolver) steamVanityFallback(ctx context.Context, t Target) (domain.AccountRef, bool, error) {
	id, ok := r.vanity.ResolveVanity(ctx, t.Identifier)
	if !ok {
		return domain.AccountRef{}, false, nil
	}
	return r.lookupID(ctx, domain.AccountRef{Platform: domain.PlatformSteam, ID: id})
}

func (r *Resolver) nameAnywhere(ctx context.Context, t Target) (domain.AccountRef, bool, error) {
	return r.lookupName(ctx, t, domain.ReplayQuery{}, anyPlatform)
}

func (r *Resolver) lookupID(ctx context.Context, account domain.AccountRef) (domain.AccountRef, bool, error) {
	_, found, err := firstReplay(ctx, r.replays, domain.ReplayQuery{
		PlayerID: account.String(),
		SortBy:   domain.SortMostRecent,
		Limit:    1,
	})
	if err != nil || !found {
		return domain.AccountRef{}, false, err
	}
	return account, true, nil
}

// lookupName searches by exact (quoted) name and picks the matching slot out of the
// newest hit, blue roster first.
func (r *Resolver) lookupName(ctx context.Context, t Target, q domain.ReplayQuery, rule platformRule) (domain.AccountRef, bool, error) {
	q.PlayerName = `"` + t.Identifier + `"`
	q.SortBy = domain.SortMostRecent
	q.Limit = 1

	replay, found, err := firstReplay(ctx, r.replays, q)
	if err != nil || !found {
		return domain.AccountRef{}, false, err
	}

	slot, _, ok := replay.FindSlot(func(s domain.Slot) bool {
		return s.Name == t.Identifier && rule.accepts(t.Platform, s.Account.Platform)
	})
	if !ok {
		r.logger.Debug().Str("replay_id", replay.ID).Str("name", t.Identifier).Msg("name search hit has no matching slot")
		return domain.AccountRef{}, false, nil
	}
	return slot.Account, true, nil
}
