package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/prn-tf/kurosawa-movies/internal/domain"
)

func floatPtr(f float64) *float64 { return &f }

func validMovieInput() MovieInput {
	return MovieInput{
		Name:       "Seven Samurai",
		Director:   "Akira Kurosawa",
		IMDBScore:  floatPtr(8.7),
		Popularity: floatPtr(87),
		Genres:     []string{"Adventure", "Drama"},
	}
}

func TestCatalogService_Create(t *testing.T) {
	admin := newTestUser(1, "admin", true)

	tests := []struct {
		name       string
		principal  *domain.User
		input      func() MovieInput
		wantErr    error
		wantFields []string
	}{
		{
			name:      "success",
			principal: admin,
			input:     validMovieInput,
		},
		{
			name:      "nil principal denied",
			principal: nil,
			input:     validMovieInput,
			wantErr:   ErrPermissionDenied,
		},
		{
			name:      "non-staff denied",
			principal: newTestUser(2, "user", false),
			input:     validMovieInput,
			wantErr:   ErrPermissionDenied,
		},
		{
			name:      "blank name",
			principal: admin,
			input: func() MovieInput {
				in := validMovieInput()
				in.Name = ""
				return in
			},
			wantFields: []string{"name"},
		},
		{
			name:      "score out of range",
			principal: admin,
			input: func() MovieInput {
				in := validMovieInput()
				in.IMDBScore = floatPtr(10.5)
				return in
			},
			wantFields: []string{"imdb_score"},
		},
		{
			name:      "popularity out of range",
			principal: admin,
			input: func() MovieInput {
				in := validMovieInput()
				in.Popularity = floatPtr(-1)
				return in
			},
			wantFields: []string{"popularity"},
		},
		{
			name:      "missing score and popularity",
			principal: admin,
			input: func() MovieInput {
				in := validMovieInput()
				in.IMDBScore = nil
				in.Popularity = nil
				return in
			},
			wantFields: []string{"imdb_score", "popularity"},
		},
		{
			name:      "empty genre list",
			principal: admin,
			input: func() MovieInput {
				in := validMovieInput()
				in.Genres = nil
				return in
			},
			wantFields: []string{"genre"},
		},
		{
			name:      "blank genre name",
			principal: admin,
			input: func() MovieInput {
				in := validMovieInput()
				in.Genres = []string{"Drama", ""}
				return in
			},
			wantFields: []string{"genre"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := NewMockMovieRepository()
			svc := NewCatalogService(repo, nil, zerolog.Nop())

			movie, err := svc.Create(context.Background(), tt.principal, tt.input())

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			if len(tt.wantFields) > 0 {
				verr, ok := AsValidationError(err)
				require.True(t, ok, "expected validation error, got %v", err)
				for _, field := range tt.wantFields {
					require.Contains(t, verr.Fields, field)
				}
				return
			}

			require.NoError(t, err)
			require.NotZero(t, movie.ID)
			require.Equal(t, "Akira Kurosawa", movie.Director)
			require.ElementsMatch(t, []string{"Adventure", "Drama"}, movie.Genres)
			require.Len(t, repo.associations[movie.ID], 2)
		})
	}
}

func TestCatalogService_Create_DuplicateBeforeSideEffects(t *testing.T) {
	admin := newTestUser(1, "admin", true)
	repo := NewMockMovieRepository()
	svc := NewCatalogService(repo, nil, zerolog.Nop())

	_, err := svc.Create(context.Background(), admin, validMovieInput())
	require.NoError(t, err)

	// Same name with a brand-new director: the duplicate must be rejected
	// without creating the director or any genre rows.
	in := validMovieInput()
	in.Director = "Juzo Itami"
	in.Genres = []string{"Comedy"}

	_, err = svc.Create(context.Background(), admin, in)
	require.ErrorIs(t, err, domain.ErrMovieAlreadyExists)
	require.NotContains(t, repo.directors, "Juzo Itami")
	require.NotContains(t, repo.genres, "Comedy")
}

func TestCatalogService_Create_DuplicateGenresCollapse(t *testing.T) {
	admin := newTestUser(1, "admin", true)
	repo := NewMockMovieRepository()
	svc := NewCatalogService(repo, nil, zerolog.Nop())

	in := validMovieInput()
	in.Genres = []string{"Drama", "Drama", "Adventure"}

	movie, err := svc.Create(context.Background(), admin, in)
	require.NoError(t, err)
	require.Equal(t, []string{"Drama", "Adventure"}, movie.Genres)
	require.Len(t, repo.associations[movie.ID], 2)
	require.Len(t, repo.genres, 2)
}

func TestCatalogService_Create_SharedDirector(t *testing.T) {
	admin := newTestUser(1, "admin", true)
	repo := NewMockMovieRepository()
	svc := NewCatalogService(repo, nil, zerolog.Nop())

	first, err := svc.Create(context.Background(), admin, validMovieInput())
	require.NoError(t, err)

	in := validMovieInput()
	in.Name = "Rashomon"
	second, err := svc.Create(context.Background(), admin, in)
	require.NoError(t, err)

	require.Equal(t, first.DirectorID, second.DirectorID, "same director name must reconcile to one row")
	require.Len(t, repo.directors, 1)
}

func TestCatalogService_Update(t *testing.T) {
	admin := newTestUser(1, "admin", true)
	repo := NewMockMovieRepository()
	cache := NewMockCache()
	svc := NewCatalogService(repo, cache, zerolog.Nop())

	movie, err := svc.Create(context.Background(), admin, validMovieInput())
	require.NoError(t, err)
	cache.entries[movieCacheKey(movie.ID)] = []byte(`{}`)

	in := MovieInput{
		Name:       "Seven Samurai (Restored)",
		Director:   "Akira Kurosawa",
		IMDBScore:  floatPtr(9.0),
		Popularity: floatPtr(90),
		Genres:     []string{"Action"},
	}
	updated, err := svc.Update(context.Background(), admin, movie.ID, in)
	require.NoError(t, err)

	require.Equal(t, "Seven Samurai (Restored)", updated.Name)
	require.Equal(t, 9.0, updated.IMDBScore)
	require.Equal(t, []string{"Action"}, updated.Genres)

	// The genre set is replaced, but the old genre rows survive for other
	// movies.
	require.Len(t, repo.associations[movie.ID], 1)
	require.Contains(t, repo.genres, "Drama")
	require.Contains(t, repo.genres, "Adventure")

	// The cached detail is invalidated.
	require.NotContains(t, cache.entries, movieCacheKey(movie.ID))
}

func TestCatalogService_Update_Errors(t *testing.T) {
	admin := newTestUser(1, "admin", true)
	repo := NewMockMovieRepository()
	svc := NewCatalogService(repo, nil, zerolog.Nop())

	movie, err := svc.Create(context.Background(), admin, validMovieInput())
	require.NoError(t, err)

	in := validMovieInput()
	in.Name = "Rashomon"
	_, err = svc.Create(context.Background(), admin, in)
	require.NoError(t, err)

	t.Run("non-staff denied", func(t *testing.T) {
		_, err := svc.Update(context.Background(), newTestUser(2, "user", false), movie.ID, validMovieInput())
		require.ErrorIs(t, err, ErrPermissionDenied)
	})

	t.Run("missing movie", func(t *testing.T) {
		_, err := svc.Update(context.Background(), admin, 999, validMovieInput())
		require.ErrorIs(t, err, domain.ErrMovieNotFound)
	})

	t.Run("rename onto existing movie", func(t *testing.T) {
		in := validMovieInput()
		in.Name = "Rashomon"
		_, err := svc.Update(context.Background(), admin, movie.ID, in)
		require.ErrorIs(t, err, domain.ErrMovieAlreadyExists)
	})
}

func TestCatalogService_Delete(t *testing.T) {
	admin := newTestUser(1, "admin", true)
	repo := NewMockMovieRepository()
	cache := NewMockCache()
	svc := NewCatalogService(repo, cache, zerolog.Nop())

	movie, err := svc.Create(context.Background(), admin, validMovieInput())
	require.NoError(t, err)
	cache.entries[movieCacheKey(movie.ID)] = []byte(`{}`)

	t.Run("non-staff denied", func(t *testing.T) {
		err := svc.Delete(context.Background(), newTestUser(2, "user", false), movie.ID)
		require.ErrorIs(t, err, ErrPermissionDenied)
	})

	t.Run("success releases associations, keeps genres", func(t *testing.T) {
		require.NoError(t, svc.Delete(context.Background(), admin, movie.ID))
		require.NotContains(t, repo.movies, movie.ID)
		require.NotContains(t, repo.associations, movie.ID)
		require.Contains(t, repo.genres, "Drama")
		require.Contains(t, repo.directors, "Akira Kurosawa")
		require.NotContains(t, cache.entries, movieCacheKey(movie.ID))
	})

	t.Run("missing movie", func(t *testing.T) {
		err := svc.Delete(context.Background(), admin, movie.ID)
		require.ErrorIs(t, err, domain.ErrMovieNotFound)
	})
}
