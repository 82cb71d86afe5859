package server

import (
	"encoding/json"
	"errors"
	"log"

	"werewolf/internal/db"

	"github.com/jackc/pgconn"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// dbStore persists each aggregate as one row: the serialized game in a jsonb
// state column plus a version column gating conditional writes. Stage, active
// and winner are denormalized for inspection only; the state blob is the
// source of truth.
type dbStore struct {
	conn *gorm.DB
}

func newDBStore(conn *gorm.DB) *dbStore {
	return &dbStore{conn: conn}
}

func (s *dbStore) Create(game *Game) error {
	state, err := json.Marshal(game)
	if err != nil {
		return err
	}
	record := db.Game{
		Code:    game.Code,
		Stage:   game.Stage,
		Active:  game.Active,
		Winner:  game.Winner,
		Version: game.Version,
		State:   datatypes.JSON(state),
	}
	if err := s.conn.Create(&record).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrGameExists
		}
		return err
	}
	return nil
}

func (s *dbStore) Update(game *Game, expectedVersion int64) error {
	state, err := json.Marshal(game)
	if err != nil {
		return err
	}
	result := s.conn.Model(&db.Game{}).
		Where("code = ? AND version = ?", game.Code, expectedVersion).
		Updates(map[string]any{
			"stage":   game.Stage,
			"active":  game.Active,
			"winner":  game.Winner,
			"version": game.Version,
			"state":   datatypes.JSON(state),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := s.conn.Model(&db.Game{}).Where("code = ?", game.Code).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrGameNotFound
		}
		return ErrVersionConflict
	}
	return nil
}

func (s *dbStore) Get(code string) (*Game, error) {
	var record db.Game
	if err := s.conn.Where("code = ?", code).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGameNotFound
		}
		return nil, err
	}
	var game Game
	if err := json.Unmarshal(record.State, &game); err != nil {
		return nil, err
	}
	return &game, nil
}

// appendEvent writes one row to the event log. Event persistence sits outside
// the mutation's atomicity boundary: failures are logged and dropped.
func (s *dbStore) appendEvent(code, playerID string, event GameEvent) {
	var record db.Game
	if err := s.conn.Select("id").Where("code = ?", code).First(&record).Error; err != nil {
		log.Printf("event log lookup failed game_code=%s error=%v", code, err)
		return
	}
	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("event log marshal failed game_code=%s error=%v", code, err)
		return
	}
	row := db.Event{
		GameID:   record.ID,
		PlayerID: playerID,
		Type:     event.Type,
		Payload:  datatypes.JSON(payload),
	}
	if err := s.conn.Create(&row).Error; err != nil {
		log.Printf("event log write failed game_code=%s type=%s error=%v", code, event.Type, err)
	}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
