package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/prn-tf/kurosawa-movies/internal/domain"
	"github.com/prn-tf/kurosawa-movies/internal/repository"
)

// CatalogService manages the movie catalog. All mutations require the staff
// role.
type CatalogService struct {
	movies repository.MovieRepository
	cache  repository.Cache
	logger zerolog.Logger
}

// NewCatalogService creates a new CatalogService. The cache may be nil, in
// which case invalidation is skipped.
func NewCatalogService(movies repository.MovieRepository, cache repository.Cache, logger zerolog.Logger) *CatalogService {
	return &CatalogService{
		movies: movies,
		cache:  cache,
		logger: logger.With().Str("service", "catalog").Logger(),
	}
}

// MovieInput holds the fields of a movie write. Updates replace the stored
// movie wholesale, so all fields are required for both create and update.
type MovieInput struct {
	Name       string
	Director   string
	IMDBScore  *float64
	Popularity *float64
	Genres     []string
}

// Create adds a movie to the catalog. The duplicate-name check runs before
// any director or genre rows are created, so a rejected duplicate leaves no
// side effects behind.
func (s *CatalogService) Create(ctx context.Context, principal *domain.User, input MovieInput) (*domain.Movie, error) {
	if !IsAdmin(principal) {
		return nil, ErrPermissionDenied
	}
	if verr := validateMovieInput(input); !verr.Empty() {
		return nil, verr
	}

	exists, err := s.movies.ExistsByName(ctx, input.Name)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to check movie uniqueness")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	if exists {
		return nil, domain.ErrMovieAlreadyExists
	}

	director, err := s.movies.GetOrCreateDirector(ctx, input.Director)
	if err != nil {
		s.logger.Error().Err(err).Str("director", input.Director).Msg("failed to resolve director")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	movie := domain.NewMovie(input.Name, *input.IMDBScore, *input.Popularity, director.ID)
	if err := s.movies.Create(ctx, movie); err != nil {
		if errors.Is(err, domain.ErrMovieAlreadyExists) {
			// Lost a race with a concurrent create.
			return nil, domain.ErrMovieAlreadyExists
		}
		s.logger.Error().Err(err).Str("name", input.Name).Msg("failed to create movie")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	genres, err := s.attachGenres(ctx, movie.ID, input.Genres)
	if err != nil {
		return nil, err
	}

	movie.Director = director.Name
	movie.Genres = genres

	s.logger.Info().Int64("movie_id", movie.ID).Str("name", movie.Name).Msg("movie created")
	return movie, nil
}

// Update replaces the movie identified by id with the given fields. The
// genre set is replaced wholesale; genre rows themselves are never deleted,
// only the associations.
func (s *CatalogService) Update(ctx context.Context, principal *domain.User, id int64, input MovieInput) (*domain.Movie, error) {
	if !IsAdmin(principal) {
		return nil, ErrPermissionDenied
	}
	if verr := validateMovieInput(input); !verr.Empty() {
		return nil, verr
	}

	movie, err := s.movies.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrMovieNotFound) {
			return nil, domain.ErrMovieNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	if input.Name != movie.Name {
		exists, err := s.movies.ExistsByName(ctx, input.Name)
		if err != nil {
			s.logger.Error().Err(err).Msg("failed to check movie uniqueness")
			return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
		}
		if exists {
			return nil, domain.ErrMovieAlreadyExists
		}
	}

	director, err := s.movies.GetOrCreateDirector(ctx, input.Director)
	if err != nil {
		s.logger.Error().Err(err).Str("director", input.Director).Msg("failed to resolve director")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	movie.Name = input.Name
	movie.DirectorID = director.ID
	movie.IMDBScore = *input.IMDBScore
	movie.Popularity = *input.Popularity

	if err := s.movies.Update(ctx, movie); err != nil {
		if errors.Is(err, domain.ErrMovieAlreadyExists) {
			return nil, domain.ErrMovieAlreadyExists
		}
		s.logger.Error().Err(err).Int64("movie_id", id).Msg("failed to update movie")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	if err := s.movies.ClearGenres(ctx, movie.ID); err != nil {
		s.logger.Error().Err(err).Int64("movie_id", id).Msg("failed to clear genres")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	genres, err := s.attachGenres(ctx, movie.ID, input.Genres)
	if err != nil {
		return nil, err
	}

	movie.Director = director.Name
	movie.Genres = genres

	s.invalidate(ctx, movie.ID)
	s.logger.Info().Int64("movie_id", movie.ID).Msg("movie updated")
	return movie, nil
}

// Delete removes the movie identified by id. Its genre associations go with
// it through the foreign key cascade.
func (s *CatalogService) Delete(ctx context.Context, principal *domain.User, id int64) error {
	if !IsAdmin(principal) {
		return ErrPermissionDenied
	}

	if err := s.movies.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrMovieNotFound) {
			return domain.ErrMovieNotFound
		}
		s.logger.Error().Err(err).Int64("movie_id", id).Msg("failed to delete movie")
		return fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	s.invalidate(ctx, id)
	s.logger.Info().Int64("movie_id", id).Msg("movie deleted")
	return nil
}

func (s *CatalogService) attachGenres(ctx context.Context, movieID int64, names []string) ([]string, error) {
	attached := make([]string, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}

		genre, err := s.movies.GetOrCreateGenre(ctx, name)
		if err != nil {
			s.logger.Error().Err(err).Str("genre", name).Msg("failed to resolve genre")
			return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
		}
		if err := s.movies.AttachGenre(ctx, movieID, genre.ID); err != nil {
			s.logger.Error().Err(err).Str("genre", name).Msg("failed to attach genre")
			return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
		}
		attached = append(attached, genre.Name)
	}
	return attached, nil
}

func (s *CatalogService) invalidate(ctx context.Context, movieID int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, movieCacheKey(movieID)); err != nil && !errors.Is(err, repository.ErrCacheMiss) {
		s.logger.Warn().Err(err).Int64("movie_id", movieID).Msg("failed to invalidate movie cache")
	}
}

func movieCacheKey(id int64) string {
	return fmt.Sprintf("movie:%d", id)
}

func validateMovieInput(input MovieInput) *ValidationError {
	verr := NewValidationError()
	if input.Name == "" {
		verr.Add("name", "this field may not be blank")
	}
	if input.Director == "" {
		verr.Add("director", "this field may not be blank")
	}
	if input.IMDBScore == nil {
		verr.Add("imdb_score", "this field is required")
	} else if *input.IMDBScore < domain.IMDBScoreMin || *input.IMDBScore > domain.IMDBScoreMax {
		verr.Add("imdb_score", fmt.Sprintf("ensure this value is between %g and %g", domain.IMDBScoreMin, domain.IMDBScoreMax))
	}
	if input.Popularity == nil {
		verr.Add("popularity", "this field is required")
	} else if *input.Popularity < domain.PopularityMin || *input.Popularity > domain.PopularityMax {
		verr.Add("popularity", fmt.Sprintf("ensure this value is between %g and %g", domain.PopularityMin, domain.PopularityMax))
	}
	if len(input.Genres) == 0 {
		verr.Add("genre", "this list may not be empty")
	}
	for _, name := range input.Genres {
		if name == "" {
			verr.Add("genre", "genre names may not be blank")
			break
		}
	}
	return verr
}
