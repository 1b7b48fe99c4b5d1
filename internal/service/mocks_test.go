package service

import (
	"context"
	"time"

	"github.com/prn-tf/kurosawa-movies/internal/domain"
	"github.com/prn-tf/kurosawa-movies/internal/repository"
)

// =============================================================================
// Mock User Repository
// =============================================================================

type MockUserRepository struct {
	users     map[int64]*domain.User
	nextID    int64
	createErr error
	getErr    error
	updateErr error
	deleteErr error

	// raceWinner, when set, is inserted during Create to simulate a
	// concurrent signup winning the unique constraint race.
	raceWinner *domain.User
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		users:  make(map[int64]*domain.User),
		nextID: 1,
	}
}

func (m *MockUserRepository) Add(user *domain.User) *domain.User {
	if user.ID == 0 {
		user.ID = m.nextID
	}
	if user.ID >= m.nextID {
		m.nextID = user.ID + 1
	}
	m.users[user.ID] = user
	return user
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	if m.createErr != nil {
		return m.createErr
	}
	if m.raceWinner != nil {
		m.Add(m.raceWinner)
		m.raceWinner = nil
		return domain.ErrUserAlreadyExists
	}
	for _, u := range m.users {
		if u.Username == user.Username || u.Email == user.Email {
			return domain.ErrUserAlreadyExists
		}
	}
	user.ID = m.nextID
	m.nextID++
	m.users[user.ID] = user
	return nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, domain.ErrUserNotFound
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (m *MockUserRepository) Update(ctx context.Context, user *domain.User) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	if _, ok := m.users[user.ID]; !ok {
		return domain.ErrUserNotFound
	}
	for _, u := range m.users {
		if u.ID != user.ID && (u.Username == user.Username || u.Email == user.Email) {
			return domain.ErrUserAlreadyExists
		}
	}
	m.users[user.ID] = user
	return nil
}

func (m *MockUserRepository) Delete(ctx context.Context, id int64) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	if _, ok := m.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(m.users, id)
	return nil
}

func (m *MockUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	for _, u := range m.users {
		if u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	for _, u := range m.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockUserRepository) List(ctx context.Context) ([]*domain.User, error) {
	var users []*domain.User
	for _, u := range m.users {
		users = append(users, u)
	}
	return users, nil
}

var _ repository.UserRepository = (*MockUserRepository)(nil)

// =============================================================================
// Mock Token Repository
// =============================================================================

type MockTokenRepository struct {
	tokens    map[string]*domain.AuthToken // key -> token
	createErr error
	deleteErr error

	// raceWinner, when set, simulates a concurrent login winning the
	// insert: Create stores this token and reports a conflict.
	raceWinner *domain.AuthToken
}

func NewMockTokenRepository() *MockTokenRepository {
	return &MockTokenRepository{tokens: make(map[string]*domain.AuthToken)}
}

func (m *MockTokenRepository) Create(ctx context.Context, token *domain.AuthToken) error {
	if m.raceWinner != nil {
		m.tokens[m.raceWinner.Key] = m.raceWinner
		m.raceWinner = nil
		return domain.ErrTokenAlreadyExists
	}
	if m.createErr != nil {
		return m.createErr
	}
	for _, t := range m.tokens {
		if t.UserID == token.UserID {
			return domain.ErrTokenAlreadyExists
		}
	}
	m.tokens[token.Key] = token
	return nil
}

func (m *MockTokenRepository) GetByKey(ctx context.Context, key string) (*domain.AuthToken, error) {
	if t, ok := m.tokens[key]; ok {
		return t, nil
	}
	return nil, domain.ErrTokenNotFound
}

func (m *MockTokenRepository) GetByUserID(ctx context.Context, userID int64) (*domain.AuthToken, error) {
	for _, t := range m.tokens {
		if t.UserID == userID {
			return t, nil
		}
	}
	return nil, domain.ErrTokenNotFound
}

func (m *MockTokenRepository) DeleteByKey(ctx context.Context, key string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	if _, ok := m.tokens[key]; !ok {
		return domain.ErrTokenNotFound
	}
	delete(m.tokens, key)
	return nil
}

var _ repository.TokenRepository = (*MockTokenRepository)(nil)

// =============================================================================
// Mock Movie Repository
// =============================================================================

type MockMovieRepository struct {
	movies       map[int64]*domain.Movie
	directors    map[string]*domain.Director
	genres       map[string]*domain.Genre
	associations map[int64]map[int64]bool // movieID -> genreID set
	nextID       int64

	lastQuery  repository.MovieQuery
	listResult *repository.MovieList
	listErr    error
}

func NewMockMovieRepository() *MockMovieRepository {
	return &MockMovieRepository{
		movies:       make(map[int64]*domain.Movie),
		directors:    make(map[string]*domain.Director),
		genres:       make(map[string]*domain.Genre),
		associations: make(map[int64]map[int64]bool),
		nextID:       1,
		listResult:   &repository.MovieList{},
	}
}

func (m *MockMovieRepository) id() int64 {
	id := m.nextID
	m.nextID++
	return id
}

func (m *MockMovieRepository) Create(ctx context.Context, movie *domain.Movie) error {
	for _, mv := range m.movies {
		if mv.Name == movie.Name {
			return domain.ErrMovieAlreadyExists
		}
	}
	movie.ID = m.id()
	m.movies[movie.ID] = movie
	return nil
}

func (m *MockMovieRepository) GetByID(ctx context.Context, id int64) (*domain.Movie, error) {
	if mv, ok := m.movies[id]; ok {
		return mv, nil
	}
	return nil, domain.ErrMovieNotFound
}

func (m *MockMovieRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	for _, mv := range m.movies {
		if mv.Name == name {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockMovieRepository) Update(ctx context.Context, movie *domain.Movie) error {
	if _, ok := m.movies[movie.ID]; !ok {
		return domain.ErrMovieNotFound
	}
	for _, mv := range m.movies {
		if mv.ID != movie.ID && mv.Name == movie.Name {
			return domain.ErrMovieAlreadyExists
		}
	}
	m.movies[movie.ID] = movie
	return nil
}

func (m *MockMovieRepository) Delete(ctx context.Context, id int64) error {
	if _, ok := m.movies[id]; !ok {
		return domain.ErrMovieNotFound
	}
	delete(m.movies, id)
	delete(m.associations, id)
	return nil
}

func (m *MockMovieRepository) List(ctx context.Context, q repository.MovieQuery) (*repository.MovieList, error) {
	m.lastQuery = q
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.listResult, nil
}

func (m *MockMovieRepository) GetOrCreateDirector(ctx context.Context, name string) (*domain.Director, error) {
	if d, ok := m.directors[name]; ok {
		return d, nil
	}
	d := &domain.Director{ID: m.id(), Name: name}
	m.directors[name] = d
	return d, nil
}

func (m *MockMovieRepository) GetOrCreateGenre(ctx context.Context, name string) (*domain.Genre, error) {
	if g, ok := m.genres[name]; ok {
		return g, nil
	}
	g := &domain.Genre{ID: m.id(), Name: name}
	m.genres[name] = g
	return g, nil
}

func (m *MockMovieRepository) AttachGenre(ctx context.Context, movieID, genreID int64) error {
	if m.associations[movieID] == nil {
		m.associations[movieID] = make(map[int64]bool)
	}
	m.associations[movieID][genreID] = true
	return nil
}

func (m *MockMovieRepository) ClearGenres(ctx context.Context, movieID int64) error {
	delete(m.associations, movieID)
	return nil
}

var _ repository.MovieRepository = (*MockMovieRepository)(nil)

// =============================================================================
// Mock Cache
// =============================================================================

type MockCache struct {
	entries map[string][]byte
	getErr  error
	setErr  error
}

func NewMockCache() *MockCache {
	return &MockCache{entries: make(map[string][]byte)}
}

func (m *MockCache) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	if v, ok := m.entries[key]; ok {
		return v, nil
	}
	return nil, repository.ErrCacheMiss
}

func (m *MockCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.entries[key] = value
	return nil
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	delete(m.entries, key)
	return nil
}

var _ repository.Cache = (*MockCache)(nil)
