package server

import (
	"errors"
	"log"
)

// mutate runs one read-compute-conditional-write cycle against the store,
// retrying the whole cycle (domain recomputation included) on version
// conflicts. There is no lock and no backoff; per-game contention is a
// handful of players at most. Exhausting the bound is surfaced as an
// unexpected error, never dropped.
func (s *Server) mutate(code string, apply func(game *Game) ([]delivery, error)) (*Game, []delivery, error) {
	for attempt := 0; attempt < s.cfg.UpdateRetries; attempt++ {
		current, err := s.store.Get(code)
		if err != nil {
			if errors.Is(err, ErrGameNotFound) {
				return nil, nil, notFoundError("game_not_found", "game not found")
			}
			log.Printf("store read failed game_code=%s error=%v", code, err)
			return nil, nil, unexpectedError()
		}

		next := cloneGame(current)
		deliveries, err := apply(next)
		if err != nil {
			return nil, nil, err
		}

		next.Version = current.Version + 1
		if err := s.store.Update(next, current.Version); err != nil {
			if errors.Is(err, ErrVersionConflict) {
				continue
			}
			if errors.Is(err, ErrGameNotFound) {
				return nil, nil, notFoundError("game_not_found", "game not found")
			}
			log.Printf("store write failed game_code=%s error=%v", code, err)
			return nil, nil, unexpectedError()
		}
		return next, deliveries, nil
	}
	log.Printf("update retries exhausted game_code=%s retries=%d", code, s.cfg.UpdateRetries)
	return nil, nil, unexpectedError()
}

// createGame generates a fresh code and inserts the new aggregate, drawing a
// new code on each collision up to the create bound.
func (s *Server) createGame(mayorNickname string) (*Game, error) {
	nickname, err := validateNickname(mayorNickname)
	if err != nil {
		return nil, err
	}
	for attempt := 0; attempt < s.cfg.CreateRetries; attempt++ {
		game := newGame(nickname)
		if err := s.store.Create(game); err != nil {
			if errors.Is(err, ErrGameExists) {
				continue
			}
			log.Printf("store create failed game_code=%s error=%v", game.Code, err)
			return nil, unexpectedError()
		}
		return game, nil
	}
	log.Printf("create retries exhausted retries=%d", s.cfg.CreateRetries)
	return nil, unexpectedError()
}
