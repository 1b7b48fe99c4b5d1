package sqlite

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/prn-tf/kurosawa-movies/internal/domain"
	"github.com/prn-tf/kurosawa-movies/internal/repository"
)

// movieRepository implements repository.MovieRepository for SQLite.
type movieRepository struct {
	db *DB
}

// NewMovieRepository creates a new SQLite movie repository.
func NewMovieRepository(db *DB) repository.MovieRepository {
	return &movieRepository{db: db}
}

// Create creates a new movie bound to an already-resolved director.
func (r *movieRepository) Create(ctx context.Context, movie *domain.Movie) error {
	query := `
		INSERT INTO movies (name, imdb_score, popularity, director_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		movie.Name,
		movie.IMDBScore,
		movie.Popularity,
		movie.DirectorID,
		movie.CreatedAt.Format(time.RFC3339),
		movie.UpdatedAt.Format(time.RFC3339),
	)

	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %q", domain.ErrMovieAlreadyExists, movie.Name)
		}
		return fmt.Errorf("failed to create movie: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert ID: %w", err)
	}
	movie.ID = id

	return nil
}

// GetByID retrieves a movie with its director and genre names resolved.
func (r *movieRepository) GetByID(ctx context.Context, id int64) (*domain.Movie, error) {
	query := `
		SELECT m.id, m.name, m.imdb_score, m.popularity, m.director_id, d.name,
			m.created_at, m.updated_at
		FROM movies m
		JOIN directors d ON d.id = m.director_id
		WHERE m.id = ?
	`

	movie := &domain.Movie{}
	var createdAt, updatedAt string

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&movie.ID,
		&movie.Name,
		&movie.IMDBScore,
		&movie.Popularity,
		&movie.DirectorID,
		&movie.Director,
		&createdAt,
		&updatedAt,
	)

	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrMovieNotFound
		}
		return nil, fmt.Errorf("failed to get movie by ID: %w", err)
	}

	movie.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	movie.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)

	genres, err := r.genresFor(ctx, []int64{movie.ID})
	if err != nil {
		return nil, err
	}
	movie.Genres = genres[movie.ID]

	return movie, nil
}

// ExistsByName checks if a movie with the given name exists (case-sensitive).
func (r *movieRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM movies WHERE name = ?`, name).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check movie existence: %w", err)
	}
	return count > 0, nil
}

// Update overwrites a movie's name, scores, and director reference.
func (r *movieRepository) Update(ctx context.Context, movie *domain.Movie) error {
	movie.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE movies
		SET name = ?, imdb_score = ?, popularity = ?, director_id = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		movie.Name,
		movie.IMDBScore,
		movie.Popularity,
		movie.DirectorID,
		movie.UpdatedAt.Format(time.RFC3339),
		movie.ID,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %q", domain.ErrMovieAlreadyExists, movie.Name)
		}
		return fmt.Errorf("failed to update movie: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return domain.ErrMovieNotFound
	}

	return nil
}

// Delete deletes a movie. Its movie_genres rows cascade; director and
// genre rows stay.
func (r *movieRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM movies WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete movie: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return domain.ErrMovieNotFound
	}

	return nil
}

// sortColumns maps sort keys to SQL columns. Only whitelisted keys are
// ever interpolated into a query.
var sortColumns = map[repository.MovieSort]string{
	repository.SortName:         "m.name",
	repository.SortDirectorName: "d.name",
	repository.SortIMDBScore:    "m.imdb_score",
}

// List returns the page of movies described by the query plus the total
// count of the filtered set.
func (r *movieRepository) List(ctx context.Context, q repository.MovieQuery) (*repository.MovieList, error) {
	where, args := buildFilter(q)

	countQuery := `
		SELECT COUNT(*)
		FROM movies m
		JOIN directors d ON d.id = m.director_id
	` + where

	var total int64
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count movies: %w", err)
	}

	orderBy := "m.id"
	if col, ok := sortColumns[q.Sort]; ok {
		orderBy = col
	}
	direction := "ASC"
	if q.Descending {
		direction = "DESC"
	}

	dataQuery := `
		SELECT m.id, m.name, m.imdb_score, m.popularity, m.director_id, d.name,
			m.created_at, m.updated_at
		FROM movies m
		JOIN directors d ON d.id = m.director_id
	` + where + fmt.Sprintf(" ORDER BY %s %s LIMIT ? OFFSET ?", orderBy, direction)

	dataArgs := append(append([]interface{}{}, args...), q.Limit, q.Offset)

	rows, err := r.db.QueryContext(ctx, dataQuery, dataArgs...)
	if err != nil {
		return nil, fmt.Errorf("failed to list movies: %w", err)
	}
	defer rows.Close()

	var movies []*domain.Movie
	var ids []int64
	for rows.Next() {
		movie := &domain.Movie{}
		var createdAt, updatedAt string

		err := rows.Scan(
			&movie.ID,
			&movie.Name,
			&movie.IMDBScore,
			&movie.Popularity,
			&movie.DirectorID,
			&movie.Director,
			&createdAt,
			&updatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan movie: %w", err)
		}

		movie.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		movie.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)

		movies = append(movies, movie)
		ids = append(ids, movie.ID)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating movies: %w", err)
	}

	genres, err := r.genresFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, movie := range movies {
		movie.Genres = genres[movie.ID]
	}

	return &repository.MovieList{
		Movies: movies,
		Total:  total,
	}, nil
}

// buildFilter translates a keyword filter into a WHERE clause.
// Matching is a case-insensitive substring match on the selected field.
func buildFilter(q repository.MovieQuery) (string, []interface{}) {
	if q.Keyword == "" {
		return "", nil
	}

	pattern := "%" + strings.ToLower(q.Keyword) + "%"

	switch q.Filter {
	case repository.FilterName:
		return " WHERE LOWER(m.name) LIKE ?", []interface{}{pattern}
	case repository.FilterDirector:
		return " WHERE LOWER(d.name) LIKE ?", []interface{}{pattern}
	case repository.FilterGenre:
		clause := ` WHERE EXISTS (
			SELECT 1 FROM movie_genres mg
			JOIN genres g ON g.id = mg.genre_id
			WHERE mg.movie_id = m.id AND LOWER(g.name) LIKE ?
		)`
		return clause, []interface{}{pattern}
	default:
		return "", nil
	}
}

// genresFor loads genre names for a set of movie IDs in one query.
func (r *movieRepository) genresFor(ctx context.Context, movieIDs []int64) (map[int64][]string, error) {
	result := make(map[int64][]string, len(movieIDs))
	if len(movieIDs) == 0 {
		return result, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(movieIDs)), ",")
	query := fmt.Sprintf(`
		SELECT mg.movie_id, g.name
		FROM movie_genres mg
		JOIN genres g ON g.id = mg.genre_id
		WHERE mg.movie_id IN (%s)
		ORDER BY g.name
	`, placeholders)

	args := make([]interface{}, len(movieIDs))
	for i, id := range movieIDs {
		args[i] = id
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to load movie genres: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var movieID int64
		var name string
		if err := rows.Scan(&movieID, &name); err != nil {
			return nil, fmt.Errorf("failed to scan movie genre: %w", err)
		}
		result[movieID] = append(result[movieID], name)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating movie genres: %w", err)
	}

	return result, nil
}

// GetOrCreateDirector resolves a director by exact name, inserting if absent.
// INSERT OR IGNORE makes a concurrent create of the same name harmless:
// whichever insert loses simply selects the row the winner created.
func (r *movieRepository) GetOrCreateDirector(ctx context.Context, name string) (*domain.Director, error) {
	if _, err := r.db.ExecContext(ctx, `INSERT OR IGNORE INTO directors (name) VALUES (?)`, name); err != nil {
		return nil, fmt.Errorf("failed to insert director: %w", err)
	}

	director := &domain.Director{}
	err := r.db.QueryRowContext(ctx, `SELECT id, name FROM directors WHERE name = ?`, name).
		Scan(&director.ID, &director.Name)
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrDirectorNotFound
		}
		return nil, fmt.Errorf("failed to get director: %w", err)
	}

	return director, nil
}

// GetOrCreateGenre resolves a genre by exact name, inserting if absent.
func (r *movieRepository) GetOrCreateGenre(ctx context.Context, name string) (*domain.Genre, error) {
	if _, err := r.db.ExecContext(ctx, `INSERT OR IGNORE INTO genres (name) VALUES (?)`, name); err != nil {
		return nil, fmt.Errorf("failed to insert genre: %w", err)
	}

	genre := &domain.Genre{}
	err := r.db.QueryRowContext(ctx, `SELECT id, name FROM genres WHERE name = ?`, name).
		Scan(&genre.ID, &genre.Name)
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrGenreNotFound
		}
		return nil, fmt.Errorf("failed to get genre: %w", err)
	}

	return genre, nil
}

// AttachGenre links a genre to a movie. Re-attaching is a no-op, so
// duplicate genre names in one request collapse to a single row.
func (r *movieRepository) AttachGenre(ctx context.Context, movieID, genreID int64) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO movie_genres (movie_id, genre_id) VALUES (?, ?)`,
		movieID, genreID)
	if err != nil {
		// The movie was deleted out from under a concurrent update.
		if isForeignKeyViolation(err) {
			return domain.ErrMovieNotFound
		}
		return fmt.Errorf("failed to attach genre: %w", err)
	}
	return nil
}

// ClearGenres removes a movie's association rows only. The genre rows
// themselves must survive: they may be shared with other movies.
func (r *movieRepository) ClearGenres(ctx context.Context, movieID int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM movie_genres WHERE movie_id = ?`, movieID)
	if err != nil {
		return fmt.Errorf("failed to clear movie genres: %w", err)
	}
	return nil
}

// Ensure movieRepository implements repository.MovieRepository.
var _ repository.MovieRepository = (*movieRepository)(nil)
