// Package domain contains the core business entities for Kurosawa Movies.
package domain

import (
	"time"
)

// Score and popularity bounds enforced on every movie write.
const (
	// IMDBScoreMin is the lowest accepted IMDB score.
	IMDBScoreMin = 0.0

	// IMDBScoreMax is the highest accepted IMDB score.
	IMDBScoreMax = 10.0

	// PopularityMin is the lowest accepted popularity value.
	PopularityMin = 0.0

	// PopularityMax is the highest accepted popularity value.
	PopularityMax = 100.0
)

// Director represents a movie director. Directors are created implicitly
// the first time a movie references their name and are never deleted,
// even when the last movie referencing them is removed.
type Director struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Genre represents a movie genre, shared by many movies through
// association rows. Like directors, genres are created implicitly on
// first reference and never deleted by this system.
type Genre struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Movie is a catalog entry. A movie has exactly one director and one or
// more genres. Movie names are unique; creation of a second movie with
// the same name is rejected.
type Movie struct {
	// ID is the unique identifier for the movie (auto-generated).
	ID int64 `json:"id"`

	// Name is the unique movie title (case-sensitive exact match).
	Name string `json:"name"`

	// IMDBScore is the rating, bounded [0.0, 10.0].
	IMDBScore float64 `json:"imdb_score"`

	// Popularity is the popularity score, bounded [0.0, 100.0].
	Popularity float64 `json:"popularity"`

	// DirectorID references the movie's director row.
	DirectorID int64 `json:"-"`

	// Director is the resolved director name, filled in by reads.
	Director string `json:"director"`

	// Genres holds the resolved genre names, filled in by reads.
	Genres []string `json:"genre"`

	// CreatedAt is the timestamp when the movie was created.
	CreatedAt time.Time `json:"-"`

	// UpdatedAt is the timestamp when the movie was last updated.
	UpdatedAt time.Time `json:"-"`
}

// NewMovie creates a movie bound to an already-resolved director.
func NewMovie(name string, imdbScore, popularity float64, directorID int64) *Movie {
	now := time.Now().UTC()
	return &Movie{
		Name:       name,
		IMDBScore:  imdbScore,
		Popularity: popularity,
		DirectorID: directorID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}
