package server

import (
	"testing"

	"werewolf/internal/config"
)

// flakyStore fails a scripted number of writes before delegating, to
// drive the retry loop deterministically.
type flakyStore struct {
	inner         GameStore
	updateErrs    []error
	createErrs    []error
	updateAttempt int
	createAttempt int
}

func (s *flakyStore) Create(game *Game) error {
	s.createAttempt++
	if len(s.createErrs) > 0 {
		err := s.createErrs[0]
		s.createErrs = s.createErrs[1:]
		if err != nil {
			return err
		}
	}
	return s.inner.Create(game)
}

func (s *flakyStore) Update(game *Game, expectedVersion int64) error {
	s.updateAttempt++
	if len(s.updateErrs) > 0 {
		err := s.updateErrs[0]
		s.updateErrs = s.updateErrs[1:]
		if err != nil {
			return err
		}
	}
	return s.inner.Update(game, expectedVersion)
}

func (s *flakyStore) Get(code string) (*Game, error) {
	return s.inner.Get(code)
}

func TestMutateRetriesOnVersionConflict(t *testing.T) {
	srv := New(nil, config.Default())
	flaky := &flakyStore{inner: srv.store, updateErrs: []error{ErrVersionConflict, ErrVersionConflict}}
	srv.store = flaky

	game, err := srv.createGame("Mayor Smith")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	result, _, err := srv.mutate(game.Code, func(g *Game) ([]delivery, error) {
		return joinGame(g, "Alice Jones", "")
	})
	if err != nil {
		t.Fatalf("mutate: %v", err)
	}
	if flaky.updateAttempt != 3 {
		t.Fatalf("expected 3 update attempts, got %d", flaky.updateAttempt)
	}
	if result.Version != 1 {
		t.Fatalf("expected one committed write, got version %d", result.Version)
	}
	if len(result.Pending) != 1 {
		t.Fatalf("expected the recomputed join to commit")
	}
}

func TestMutateExhaustsRetries(t *testing.T) {
	cfg := config.Default()
	cfg.UpdateRetries = 3
	srv := New(nil, cfg)
	errs := []error{ErrVersionConflict, ErrVersionConflict, ErrVersionConflict}
	flaky := &flakyStore{inner: srv.store, updateErrs: errs}
	srv.store = flaky

	game, err := srv.createGame("Mayor Smith")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	_, _, err = srv.mutate(game.Code, func(g *Game) ([]delivery, error) {
		return joinGame(g, "Alice Jones", "")
	})
	if derr := asDomainError(err); derr == nil || derr.Kind != kindUnexpected {
		t.Fatalf("expected unexpected error after exhausting retries, got %v", err)
	}
	if flaky.updateAttempt != 3 {
		t.Fatalf("expected exactly 3 update attempts, got %d", flaky.updateAttempt)
	}
}

func TestMutateUnknownGame(t *testing.T) {
	srv := New(nil, config.Default())
	_, _, err := srv.mutate("ZZZZ", func(g *Game) ([]delivery, error) {
		return nil, nil
	})
	assertErrorCode(t, err, "game_not_found")
}

func TestMutateDomainErrorStopsRetrying(t *testing.T) {
	srv := New(nil, config.Default())
	flaky := &flakyStore{inner: srv.store}
	srv.store = flaky

	game, err := srv.createGame("Mayor Smith")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	game.Active = true
	if err := srv.store.Update(withVersion(game, 1), 0); err != nil {
		t.Fatalf("seed update: %v", err)
	}
	flaky.updateAttempt = 0

	_, _, err = srv.mutate(game.Code, func(g *Game) ([]delivery, error) {
		return joinGame(g, "Alice Jones", "")
	})
	assertErrorCode(t, err, "game_started")
	if flaky.updateAttempt != 0 {
		t.Fatalf("expected no write after a domain rejection, got %d", flaky.updateAttempt)
	}
}

// racingStore commits a competing join right before the caller's first
// write, so the caller's expected version goes stale mid-cycle.
type racingStore struct {
	inner GameStore
	raced bool
}

func (s *racingStore) Create(game *Game) error {
	return s.inner.Create(game)
}

func (s *racingStore) Update(game *Game, expectedVersion int64) error {
	if !s.raced {
		s.raced = true
		current, err := s.inner.Get(game.Code)
		if err != nil {
			return err
		}
		competing := cloneGame(current)
		if _, err := joinGame(competing, "Bobby Tables", ""); err != nil {
			return err
		}
		competing.Version = current.Version + 1
		if err := s.inner.Update(competing, current.Version); err != nil {
			return err
		}
	}
	return s.inner.Update(game, expectedVersion)
}

func (s *racingStore) Get(code string) (*Game, error) {
	return s.inner.Get(code)
}

func TestRacingJoinsBothCommit(t *testing.T) {
	srv := New(nil, config.Default())
	srv.store = &racingStore{inner: srv.store}

	game, err := srv.createGame("Mayor Smith")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	result, _, err := srv.mutate(game.Code, func(g *Game) ([]delivery, error) {
		return joinGame(g, "Alice Jones", "")
	})
	if err != nil {
		t.Fatalf("mutate: %v", err)
	}
	if result.Version != 2 {
		t.Fatalf("expected two committed writes, got version %d", result.Version)
	}
	if len(result.Pending) != 2 {
		t.Fatalf("expected both joins in the queue, got %d", len(result.Pending))
	}
	names := map[string]bool{}
	for _, p := range result.Pending {
		names[p.Nickname] = true
	}
	if !names["Alice Jones"] || !names["Bobby Tables"] {
		t.Fatalf("expected both joiners present, got %v", names)
	}
}

func withVersion(game *Game, version int64) *Game {
	clone := cloneGame(game)
	clone.Version = version
	return clone
}

func TestCreateRetriesOnCodeCollision(t *testing.T) {
	srv := New(nil, config.Default())
	flaky := &flakyStore{inner: srv.store, createErrs: []error{ErrGameExists}}
	srv.store = flaky

	game, err := srv.createGame("Mayor Smith")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if flaky.createAttempt != 2 {
		t.Fatalf("expected 2 create attempts, got %d", flaky.createAttempt)
	}
	if game.Code == "" {
		t.Fatalf("expected a committed game")
	}
}

func TestCreateExhaustsRetries(t *testing.T) {
	cfg := config.Default()
	cfg.CreateRetries = 3
	srv := New(nil, cfg)
	flaky := &flakyStore{inner: srv.store, createErrs: []error{ErrGameExists, ErrGameExists, ErrGameExists}}
	srv.store = flaky

	_, err := srv.createGame("Mayor Smith")
	if derr := asDomainError(err); derr == nil || derr.Kind != kindUnexpected {
		t.Fatalf("expected unexpected error after exhausting create retries, got %v", err)
	}
	if flaky.createAttempt != 3 {
		t.Fatalf("expected exactly 3 create attempts, got %d", flaky.createAttempt)
	}
}
