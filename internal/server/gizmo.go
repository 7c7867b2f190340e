package server

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"gizmo/internal/constants"
	"gizmo/internal/domain"
	"gizmo/internal/service"

	"connectrpc.com/connect"
	"github.com/rs/zerolog"
)

const (
	GizmoPath = "/gizmo.v1.Gizmo/"

	LookupProcedure         = GizmoPath + "Lookup"
	DeepProcedure           = GizmoPath + "Deep"
	RecentSearchesProcedure = GizmoPath + "RecentSearches"
)

type SearchRequest struct {
	Target string `json:"target"`
}

type RecentSearchesRequest struct {
	Limit int `json:"limit"`
}

type RecentSearchesResponse struct {
	Searches []domain.SearchRecord `json:"searches"`
}

type GizmoServer struct {
	search *service.SearchService
	logger zerolog.Logger
}

func NewGizmoServer(search *service.SearchService, logger zerolog.Logger) *GizmoServer {
	return &GizmoServer{search: search, logger: logger}
}

// Handler mounts every procedure under GizmoPath.
func (s *GizmoServer) Handler(opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(jsonCodec{})}, opts...)

	lookup := connect.NewUnaryHandler(LookupProcedure, s.Lookup, opts...)
	deep := connect.NewUnaryHandler(DeepProcedure, s.Deep, opts...)
	recent := connect.NewUnaryHandler(RecentSearchesProcedure, s.RecentSearches, opts...)

	return GizmoPath, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case LookupProcedure:
			lookup.ServeHTTP(w, r)
		case DeepProcedure:
			deep.ServeHTTP(w, r)
		case RecentSearchesProcedure:
			recent.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}

func (s *GizmoServer) Lookup(ctx context.Context, req *connect.Request[SearchRequest]) (*connect.Response[service.LookupResult], error) {
	target, err := validTarget(req.Msg.Target)
	if err != nil {
		return nil, err
	}

	result, err := s.search.Lookup(ctx, target)
	if err != nil {
		return nil, s.toConnectError(ctx, err)
	}
	return connect.NewResponse(result), nil
}

func (s *GizmoServer) Deep(ctx context.Context, req *connect.Request[SearchRequest]) (*connect.Response[service.DeepResult], error) {
	target, err := validTarget(req.Msg.Target)
	if err != nil {
		return nil, err
	}

	result, err := s.search.Deep(ctx, target)
	if err != nil {
		return nil, s.toConnectError(ctx, err)
	}
	return connect.NewResponse(result), nil
}

func (s *GizmoServer) RecentSearches(ctx context.Context, req *connect.Request[RecentSearchesRequest]) (*connect.Response[RecentSearchesResponse], error) {
	records, err := s.search.RecentSearches(ctx, req.Msg.Limit)
	if err != nil {
		return nil, s.toConnectError(ctx, err)
	}
	return connect.NewResponse(&RecentSearchesResponse{Searches: records}), nil
}

func validTarget(raw string) (string, error) {
	target := strings.TrimSpace(raw)
	if target == "" {
		return "", connect.NewError(connect.CodeInvalidArgument, errors.New("target is required"))
	}
	if len(target) > constants.MaxTargetInput {
		return "", connect.NewError(connect.CodeInvalidArgument, errors.New("target is too long"))
	}
	return target, nil
}

func (s *GizmoServer) toConnectError(ctx context.Context, err error) error {
	log := zerolog.Ctx(ctx)
	switch {
	case domain.IsNotFound(err):
		log.Info().Err(err).Msg("player not found")
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		log.Error().Err(err).Msg("upstream unavailable")
		return connect.NewError(connect.CodeUnavailable, err)
	case errors.Is(err, context.DeadlineExceeded):
		return connect.NewError(connect.CodeDeadlineExceeded, err)
	default:
		s.logger.Error().Err(err).Msg("request failed")
		return connect.NewError(connect.CodeInternal, err)
	}
}
