// Package repository defines data access interfaces for Kurosawa Movies.
// These interfaces abstract database operations, allowing for different
// implementations (SQLite, PostgreSQL, in-memory for testing) while keeping
// the service layer clean.
package repository

import (
	"context"

	"github.com/prn-tf/kurosawa-movies/internal/domain"
)

// =============================================================================
// User Repository
// =============================================================================

// UserRepository defines the interface for user data access.
type UserRepository interface {
	// Create creates a new user. A unique violation on username or email
	// is reported as domain.ErrUserAlreadyExists.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by ID.
	GetByID(ctx context.Context, id int64) (*domain.User, error)

	// GetByUsername retrieves a user by username.
	GetByUsername(ctx context.Context, username string) (*domain.User, error)

	// Update updates an existing user.
	Update(ctx context.Context, user *domain.User) error

	// Delete deletes a user by ID. The user's token goes with it
	// (foreign key cascade).
	Delete(ctx context.Context, id int64) error

	// ExistsByUsername checks if a user with the given username exists.
	ExistsByUsername(ctx context.Context, username string) (bool, error)

	// ExistsByEmail checks if a user with the given email exists.
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// List returns all users ordered by id.
	List(ctx context.Context) ([]*domain.User, error)
}

// =============================================================================
// Token Repository
// =============================================================================

// TokenRepository defines the interface for auth token data access.
// The underlying table enforces one token per user.
type TokenRepository interface {
	// Create creates a new token. A unique violation on the user ID is
	// reported as domain.ErrTokenAlreadyExists so callers can re-fetch
	// the token that won a concurrent login race.
	Create(ctx context.Context, token *domain.AuthToken) error

	// GetByKey retrieves a token by its opaque key.
	GetByKey(ctx context.Context, key string) (*domain.AuthToken, error)

	// GetByUserID retrieves the token owned by a user, if any.
	GetByUserID(ctx context.Context, userID int64) (*domain.AuthToken, error)

	// DeleteByKey deletes a token by its key. Returns domain.ErrTokenNotFound
	// when no such token exists.
	DeleteByKey(ctx context.Context, key string) error
}

// =============================================================================
// Movie Repository
// =============================================================================

// MovieFilter selects which field a keyword search matches against.
type MovieFilter string

// Accepted search filters.
const (
	FilterNone     MovieFilter = ""
	FilterName     MovieFilter = "name"
	FilterDirector MovieFilter = "director"
	FilterGenre    MovieFilter = "genre"
)

// MovieSort selects the column a listing is ordered by.
type MovieSort string

// Accepted sort keys. SortNone leaves the collection in store order.
const (
	SortNone         MovieSort = ""
	SortName         MovieSort = "name"
	SortDirectorName MovieSort = "director_name"
	SortIMDBScore    MovieSort = "imdb_score"
)

// MovieQuery describes a list or search request: an optional keyword filter,
// an optional sort, and an offset/limit window. The keyword is matched as a
// case-insensitive substring of the field named by Filter.
type MovieQuery struct {
	// Keyword is the search term. Empty means no filtering.
	Keyword string

	// Filter names the field the keyword matches against.
	Filter MovieFilter

	// Sort names the ordering column.
	Sort MovieSort

	// Descending reverses the sort order.
	Descending bool

	// Offset is the number of records to skip.
	Offset int

	// Limit is the maximum number of records to return.
	Limit int
}

// MovieList is a window of movies plus the total size of the filtered set.
type MovieList struct {
	// Movies is the requested page, with director and genre names resolved.
	Movies []*domain.Movie

	// Total is the number of movies matching the filter, ignoring the window.
	Total int64
}

// MovieRepository defines the interface for movie catalog data access,
// including the lookup-or-create operations for directors and genres.
type MovieRepository interface {
	// Create creates a new movie bound to an already-resolved director.
	// A unique violation on the name is reported as domain.ErrMovieAlreadyExists.
	Create(ctx context.Context, movie *domain.Movie) error

	// GetByID retrieves a movie with its director and genre names resolved.
	GetByID(ctx context.Context, id int64) (*domain.Movie, error)

	// ExistsByName checks if a movie with the given name exists
	// (case-sensitive exact match).
	ExistsByName(ctx context.Context, name string) (bool, error)

	// Update overwrites a movie's name, scores, and director reference.
	Update(ctx context.Context, movie *domain.Movie) error

	// Delete deletes a movie. Its genre association rows go with it
	// (foreign key cascade); director and genre rows are left intact.
	Delete(ctx context.Context, id int64) error

	// List returns the page of movies described by the query plus the
	// total count of the filtered set.
	List(ctx context.Context, q MovieQuery) (*MovieList, error)

	// GetOrCreateDirector resolves a director by exact name, inserting the
	// row if absent. Concurrent calls for the same new name yield the same
	// row: an insert that loses the race re-fetches the winner.
	GetOrCreateDirector(ctx context.Context, name string) (*domain.Director, error)

	// GetOrCreateGenre resolves a genre by exact name with the same
	// insert-or-refetch semantics as GetOrCreateDirector.
	GetOrCreateGenre(ctx context.Context, name string) (*domain.Genre, error)

	// AttachGenre links a genre to a movie. Attaching an already-linked
	// genre is a no-op, so duplicate names in one request collapse to a
	// single association row.
	AttachGenre(ctx context.Context, movieID, genreID int64) error

	// ClearGenres removes all of a movie's genre association rows. Only
	// the links are deleted, never the genre rows themselves.
	ClearGenres(ctx context.Context, movieID int64) error
}
