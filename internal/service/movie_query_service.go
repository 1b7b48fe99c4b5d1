package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/prn-tf/kurosawa-movies/internal/domain"
	"github.com/prn-tf/kurosawa-movies/internal/repository"
)

// MovieQueryService serves catalog reads: single-movie lookups and the
// paginated list and search views.
type MovieQueryService struct {
	movies   repository.MovieRepository
	cache    repository.Cache
	pageSize int
	cacheTTL time.Duration
	logger   zerolog.Logger
}

// NewMovieQueryService creates a new MovieQueryService. The cache may be
// nil, in which case every Get goes to the repository.
func NewMovieQueryService(movies repository.MovieRepository, cache repository.Cache, pageSize int, cacheTTL time.Duration, logger zerolog.Logger) *MovieQueryService {
	return &MovieQueryService{
		movies:   movies,
		cache:    cache,
		pageSize: pageSize,
		cacheTTL: cacheTTL,
		logger:   logger.With().Str("service", "movie_query").Logger(),
	}
}

// Get returns the movie with the given id, reading through the cache.
func (s *MovieQueryService) Get(ctx context.Context, id int64) (*domain.Movie, error) {
	if movie, ok := s.fromCache(ctx, id); ok {
		return movie, nil
	}

	movie, err := s.movies.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrMovieNotFound) {
			return nil, domain.ErrMovieNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	s.toCache(ctx, movie)
	return movie, nil
}

// Sort keys accepted by the list and search views.
const (
	SortKeyName         = "name"
	SortKeyDirectorName = "director_name"
	SortKeyIMDBScore    = "imdb_score"
)

// Search types accepted by the search view.
const (
	SearchTypeName     = "name"
	SearchTypeDirector = "director"
	SearchTypeGenre    = "genre"
)

// ListInput holds the query parameters of the list view.
type ListInput struct {
	Sort     string
	Criteria string
	Page     int
}

// SearchInput holds the query parameters of the search view. Type is only
// consulted when Keyword is non-empty.
type SearchInput struct {
	Keyword  string
	Type     string
	Sort     string
	Criteria string
	Page     int
}

// MoviePage is one page of catalog results.
type MoviePage struct {
	Movies   []*domain.Movie
	Total    int64
	Page     int
	PageSize int
}

// List returns one page of the catalog, optionally sorted. Unknown sort
// keys fall back to the insertion order.
func (s *MovieQueryService) List(ctx context.Context, input ListInput) (*MoviePage, error) {
	query := repository.MovieQuery{}
	query.Sort, query.Descending = parseSort(input.Sort, input.Criteria)
	return s.run(ctx, query, input.Page)
}

// Search returns one page of movies matching the keyword under the given
// search type. A keyword without a recognized type is rejected; without a
// keyword the search degenerates to List.
func (s *MovieQueryService) Search(ctx context.Context, input SearchInput) (*MoviePage, error) {
	query := repository.MovieQuery{}
	query.Sort, query.Descending = parseSort(input.Sort, input.Criteria)

	if input.Keyword != "" {
		filter, ok := parseSearchType(input.Type)
		if !ok {
			verr := NewValidationError()
			verr.Add("type", "type must be one of name, director, genre")
			return nil, verr
		}
		query.Keyword = input.Keyword
		query.Filter = filter
	}
	return s.run(ctx, query, input.Page)
}

func (s *MovieQueryService) run(ctx context.Context, query repository.MovieQuery, page int) (*MoviePage, error) {
	if page < 1 {
		page = 1
	}
	query.Offset = (page - 1) * s.pageSize
	query.Limit = s.pageSize

	list, err := s.movies.List(ctx, query)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list movies")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	return &MoviePage{
		Movies:   list.Movies,
		Total:    list.Total,
		Page:     page,
		PageSize: s.pageSize,
	}, nil
}

func (s *MovieQueryService) fromCache(ctx context.Context, id int64) (*domain.Movie, bool) {
	if s.cache == nil {
		return nil, false
	}
	data, err := s.cache.Get(ctx, movieCacheKey(id))
	if err != nil {
		if !errors.Is(err, repository.ErrCacheMiss) {
			s.logger.Warn().Err(err).Int64("movie_id", id).Msg("movie cache read failed")
		}
		return nil, false
	}
	var movie domain.Movie
	if err := json.Unmarshal(data, &movie); err != nil {
		s.logger.Warn().Err(err).Int64("movie_id", id).Msg("movie cache entry corrupt")
		return nil, false
	}
	return &movie, true
}

func (s *MovieQueryService) toCache(ctx context.Context, movie *domain.Movie) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(movie)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, movieCacheKey(movie.ID), data, s.cacheTTL); err != nil {
		s.logger.Warn().Err(err).Int64("movie_id", movie.ID).Msg("movie cache write failed")
	}
}

func parseSort(sort, criteria string) (repository.MovieSort, bool) {
	descending := criteria == "desc"
	switch sort {
	case SortKeyName:
		return repository.SortName, descending
	case SortKeyDirectorName:
		return repository.SortDirectorName, descending
	case SortKeyIMDBScore:
		return repository.SortIMDBScore, descending
	default:
		return repository.SortNone, false
	}
}

func parseSearchType(searchType string) (repository.MovieFilter, bool) {
	switch searchType {
	case SearchTypeName:
		return repository.FilterName, true
	case SearchTypeDirector:
		return repository.FilterDirector, true
	case SearchTypeGenre:
		return repository.FilterGenre, true
	default:
		return repository.FilterNone, false
	}
}
