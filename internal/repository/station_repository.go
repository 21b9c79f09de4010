package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/feelmap/feelmap-backend/internal/model"
)

type StationRepository struct {
	db *pgxpool.Pool
}

func NewStationRepository(db *pgxpool.Pool) *StationRepository {
	return &StationRepository{db: db}
}

const stationColumns = `
	s.id, s.station_key, s.name, COALESCE(s.description, ''), s.floor_index,
	s.cam_x, s.cam_y, s.cam_z, s.target_x, s.target_y, s.target_z,
	s.questionnaire_id, COALESCE(q.questionnaire_key, ''), COALESCE(q.name, ''),
	s.is_active`

func scanStation(row pgx.Row, s *model.Station) error {
	return row.Scan(
		&s.ID, &s.Key, &s.Name, &s.Description, &s.FloorIndex,
		&s.Camera.X, &s.Camera.Y, &s.Camera.Z,
		&s.Target.X, &s.Target.Y, &s.Target.Z,
		&s.QuestionnaireID, &s.QuestionnaireKey, &s.QuestionnaireName,
		&s.IsActive)
}

func (r *StationRepository) List(ctx context.Context) ([]model.Station, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+stationColumns+`
		FROM stations s
		LEFT JOIN questionnaires q ON q.id = s.questionnaire_id
		ORDER BY s.name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []model.Station
	for rows.Next() {
		var s model.Station
		if err := scanStation(rows, &s); err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, rows.Err()
}

func (r *StationRepository) GetByID(ctx context.Context, id int) (*model.Station, error) {
	var s model.Station
	err := scanStation(r.db.QueryRow(ctx, `
		SELECT `+stationColumns+`
		FROM stations s
		LEFT JOIN questionnaires q ON q.id = s.questionnaire_id
		WHERE s.id = $1`, id), &s)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *StationRepository) GetByKey(ctx context.Context, key string) (*model.Station, error) {
	var s model.Station
	err := scanStation(r.db.QueryRow(ctx, `
		SELECT `+stationColumns+`
		FROM stations s
		LEFT JOIN questionnaires q ON q.id = s.questionnaire_id
		WHERE s.station_key = $1`, key), &s)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *StationRepository) KeyExists(ctx context.Context, key string, excludeID int) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM stations WHERE station_key = $1 AND id <> $2
		)`, key, excludeID).Scan(&exists)
	return exists, err
}

func (r *StationRepository) Insert(ctx context.Context, s *model.Station) (int, error) {
	var id int
	err := r.db.QueryRow(ctx, `
		INSERT INTO stations
			(station_key, name, description, floor_index,
			 cam_x, cam_y, cam_z, target_x, target_y, target_z,
			 questionnaire_id, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id`,
		s.Key, s.Name, s.Description, s.FloorIndex,
		s.Camera.X, s.Camera.Y, s.Camera.Z,
		s.Target.X, s.Target.Y, s.Target.Z,
		s.QuestionnaireID, s.IsActive).Scan(&id)
	return id, err
}

func (r *StationRepository) Update(ctx context.Context, s *model.Station) error {
	_, err := r.db.Exec(ctx, `
		UPDATE stations
		SET station_key = $1, name = $2, description = $3, floor_index = $4,
		    cam_x = $5, cam_y = $6, cam_z = $7,
		    target_x = $8, target_y = $9, target_z = $10,
		    questionnaire_id = $11, is_active = $12, updated_at = NOW()
		WHERE id = $13`,
		s.Key, s.Name, s.Description, s.FloorIndex,
		s.Camera.X, s.Camera.Y, s.Camera.Z,
		s.Target.X, s.Target.Y, s.Target.Z,
		s.QuestionnaireID, s.IsActive, s.ID)
	return err
}

func (r *StationRepository) Delete(ctx context.Context, id int) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM stations WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
