package server

import "sync"

// GameStore is the durable home of every Game aggregate. Create must be
// atomic on the code, Update must be a conditional write on the version
// field, and Get must never return stale data relative to the last
// successful Update.
type GameStore interface {
	Create(game *Game) error
	Update(game *Game, expectedVersion int64) error
	Get(code string) (*Game, error)
}

// memoryStore keeps games in a mutex-guarded map. It backs tests and
// DB-less runs; dbStore is the Postgres implementation.
type memoryStore struct {
	mu    sync.Mutex
	games map[string]*Game
}

func newMemoryStore() *memoryStore {
	return &memoryStore{games: make(map[string]*Game)}
}

func (s *memoryStore) Create(game *Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.games[game.Code]; ok {
		return ErrGameExists
	}
	s.games[game.Code] = cloneGame(game)
	return nil
}

func (s *memoryStore) Update(game *Game, expectedVersion int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.games[game.Code]
	if !ok {
		return ErrGameNotFound
	}
	if current.Version != expectedVersion {
		return ErrVersionConflict
	}
	s.games[game.Code] = cloneGame(game)
	return nil
}

func (s *memoryStore) Get(code string) (*Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	game, ok := s.games[code]
	if !ok {
		return nil, ErrGameNotFound
	}
	return cloneGame(game), nil
}
