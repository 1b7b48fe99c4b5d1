package handler

import (
	"context"
	"strings"
	"time"

	"github.com/prn-tf/kurosawa-movies/internal/domain"
	"github.com/prn-tf/kurosawa-movies/internal/repository"
)

// In-memory repositories backing the handler tests. They mirror the store
// contracts: unique names reported as conflicts, missing rows as not-found.

type fakeUserRepo struct {
	users  map[int64]*domain.User
	nextID int64
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[int64]*domain.User), nextID: 1}
}

func (f *fakeUserRepo) add(user *domain.User) *domain.User {
	if user.ID == 0 {
		user.ID = f.nextID
	}
	if user.ID >= f.nextID {
		f.nextID = user.ID + 1
	}
	f.users[user.ID] = user
	return user
}

func (f *fakeUserRepo) Create(ctx context.Context, user *domain.User) error {
	for _, u := range f.users {
		if u.Username == user.Username || u.Email == user.Email {
			return domain.ErrUserAlreadyExists
		}
	}
	user.ID = f.nextID
	f.nextID++
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, domain.ErrUserNotFound
}

func (f *fakeUserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	for _, u := range f.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (f *fakeUserRepo) Update(ctx context.Context, user *domain.User) error {
	if _, ok := f.users[user.ID]; !ok {
		return domain.ErrUserNotFound
	}
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := f.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(f.users, id)
	return nil
}

func (f *fakeUserRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	for _, u := range f.users {
		if u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	for _, u := range f.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUserRepo) List(ctx context.Context) ([]*domain.User, error) {
	var users []*domain.User
	for _, u := range f.users {
		users = append(users, u)
	}
	return users, nil
}

var _ repository.UserRepository = (*fakeUserRepo)(nil)

type fakeTokenRepo struct {
	tokens map[string]*domain.AuthToken
}

func newFakeTokenRepo() *fakeTokenRepo {
	return &fakeTokenRepo{tokens: make(map[string]*domain.AuthToken)}
}

func (f *fakeTokenRepo) Create(ctx context.Context, token *domain.AuthToken) error {
	for _, t := range f.tokens {
		if t.UserID == token.UserID {
			return domain.ErrTokenAlreadyExists
		}
	}
	f.tokens[token.Key] = token
	return nil
}

func (f *fakeTokenRepo) GetByKey(ctx context.Context, key string) (*domain.AuthToken, error) {
	if t, ok := f.tokens[key]; ok {
		return t, nil
	}
	return nil, domain.ErrTokenNotFound
}

func (f *fakeTokenRepo) GetByUserID(ctx context.Context, userID int64) (*domain.AuthToken, error) {
	for _, t := range f.tokens {
		if t.UserID == userID {
			return t, nil
		}
	}
	return nil, domain.ErrTokenNotFound
}

func (f *fakeTokenRepo) DeleteByKey(ctx context.Context, key string) error {
	if _, ok := f.tokens[key]; !ok {
		return domain.ErrTokenNotFound
	}
	delete(f.tokens, key)
	return nil
}

var _ repository.TokenRepository = (*fakeTokenRepo)(nil)

type fakeMovieRepo struct {
	movies       map[int64]*domain.Movie
	directors    map[string]*domain.Director
	genres       map[string]*domain.Genre
	associations map[int64]map[int64]string // movieID -> genreID -> name
	nextID       int64
}

func newFakeMovieRepo() *fakeMovieRepo {
	return &fakeMovieRepo{
		movies:       make(map[int64]*domain.Movie),
		directors:    make(map[string]*domain.Director),
		genres:       make(map[string]*domain.Genre),
		associations: make(map[int64]map[int64]string),
		nextID:       1,
	}
}

func (f *fakeMovieRepo) id() int64 {
	id := f.nextID
	f.nextID++
	return id
}

func (f *fakeMovieRepo) Create(ctx context.Context, movie *domain.Movie) error {
	for _, m := range f.movies {
		if m.Name == movie.Name {
			return domain.ErrMovieAlreadyExists
		}
	}
	movie.ID = f.id()
	f.movies[movie.ID] = movie
	return nil
}

func (f *fakeMovieRepo) GetByID(ctx context.Context, id int64) (*domain.Movie, error) {
	m, ok := f.movies[id]
	if !ok {
		return nil, domain.ErrMovieNotFound
	}
	return f.hydrate(m), nil
}

// hydrate fills the resolved director and genre names the way the SQL
// repositories do on read.
func (f *fakeMovieRepo) hydrate(m *domain.Movie) *domain.Movie {
	out := *m
	for _, d := range f.directors {
		if d.ID == m.DirectorID {
			out.Director = d.Name
		}
	}
	out.Genres = nil
	for _, name := range f.associations[m.ID] {
		out.Genres = append(out.Genres, name)
	}
	return &out
}

func (f *fakeMovieRepo) ExistsByName(ctx context.Context, name string) (bool, error) {
	for _, m := range f.movies {
		if m.Name == name {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeMovieRepo) Update(ctx context.Context, movie *domain.Movie) error {
	if _, ok := f.movies[movie.ID]; !ok {
		return domain.ErrMovieNotFound
	}
	for _, m := range f.movies {
		if m.ID != movie.ID && m.Name == movie.Name {
			return domain.ErrMovieAlreadyExists
		}
	}
	f.movies[movie.ID] = movie
	return nil
}

func (f *fakeMovieRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := f.movies[id]; !ok {
		return domain.ErrMovieNotFound
	}
	delete(f.movies, id)
	delete(f.associations, id)
	return nil
}

func (f *fakeMovieRepo) List(ctx context.Context, q repository.MovieQuery) (*repository.MovieList, error) {
	var all []*domain.Movie
	for _, m := range f.movies {
		all = append(all, f.hydrate(m))
	}

	var filtered []*domain.Movie
	for _, m := range all {
		if matches(m, q) {
			filtered = append(filtered, m)
		}
	}

	total := int64(len(filtered))
	if q.Offset >= len(filtered) {
		return &repository.MovieList{Total: total}, nil
	}
	end := q.Offset + q.Limit
	if end > len(filtered) {
		end = len(filtered)
	}
	return &repository.MovieList{Movies: filtered[q.Offset:end], Total: total}, nil
}

func matches(m *domain.Movie, q repository.MovieQuery) bool {
	if q.Keyword == "" {
		return true
	}
	switch q.Filter {
	case repository.FilterName:
		return containsFold(m.Name, q.Keyword)
	case repository.FilterDirector:
		return containsFold(m.Director, q.Keyword)
	case repository.FilterGenre:
		for _, g := range m.Genres {
			if containsFold(g, q.Keyword) {
				return true
			}
		}
		return false
	default:
		return true
	}
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func (f *fakeMovieRepo) GetOrCreateDirector(ctx context.Context, name string) (*domain.Director, error) {
	if d, ok := f.directors[name]; ok {
		return d, nil
	}
	d := &domain.Director{ID: f.id(), Name: name}
	f.directors[name] = d
	return d, nil
}

func (f *fakeMovieRepo) GetOrCreateGenre(ctx context.Context, name string) (*domain.Genre, error) {
	if g, ok := f.genres[name]; ok {
		return g, nil
	}
	g := &domain.Genre{ID: f.id(), Name: name}
	f.genres[name] = g
	return g, nil
}

func (f *fakeMovieRepo) AttachGenre(ctx context.Context, movieID, genreID int64) error {
	if f.associations[movieID] == nil {
		f.associations[movieID] = make(map[int64]string)
	}
	for _, g := range f.genres {
		if g.ID == genreID {
			f.associations[movieID][genreID] = g.Name
		}
	}
	return nil
}

func (f *fakeMovieRepo) ClearGenres(ctx context.Context, movieID int64) error {
	delete(f.associations, movieID)
	return nil
}

var _ repository.MovieRepository = (*fakeMovieRepo)(nil)

type fakeCache struct {
	entries map[string][]byte
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string][]byte)}
}

func (f *fakeCache) Get(ctx context.Context, key string) ([]byte, error) {
	if v, ok := f.entries[key]; ok {
		return v, nil
	}
	return nil, repository.ErrCacheMiss
}

func (f *fakeCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	f.entries[key] = value
	return nil
}

func (f *fakeCache) Delete(ctx context.Context, key string) error {
	delete(f.entries, key)
	return nil
}

var _ repository.Cache = (*fakeCache)(nil)
