package gradescale

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type SQLStore struct {
	db     *sql.DB
	driver string // "sqlite" or "postgres"
}

func NewSQLStore(db *sql.DB, driver string) *SQLStore {
	return &SQLStore{db: db, driver: driver}
}

func (s *SQLStore) PutScale(ctx context.Context, rec GradeScale) (GradeScale, error) {
	if !rec.Type.Valid() {
		return GradeScale{}, fmt.Errorf("%w: unknown scale type %q", ErrInvalidArgument, rec.Type)
	}
	if rec.Items == nil {
		rec.Items = Items{}
	}
	ij, err := json.Marshal(rec.Items)
	if err != nil {
		return GradeScale{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return GradeScale{}, err
	}
	defer tx.Rollback()

	if rec.ID == "" {
		rec.ID = uuid.NewString()
	} else {
		var locked bool
		var courseID string
		err := tx.QueryRowContext(ctx, `SELECT is_course_scale, course_id FROM grade_scales WHERE id=$1`, rec.ID).
			Scan(&locked, &courseID)
		switch {
		case errors.Is(err, sql.ErrNoRows):
		case err != nil:
			return GradeScale{}, err
		case locked:
			return GradeScale{}, ErrCourseScaleReadOnly
		case rec.CourseID == "":
			rec.CourseID = courseID
		}
	}

	var maxPts sql.NullFloat64
	if rec.MaxPoints != nil {
		maxPts = sql.NullFloat64{Float64: *rec.MaxPoints, Valid: true}
	}
	now := time.Now().Unix()
	_, err = tx.ExecContext(ctx, `INSERT INTO grade_scales
		(id, course_id, title, type, max_points, is_course_scale, items_json, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		ON CONFLICT (id) DO UPDATE SET
			course_id=EXCLUDED.course_id,
			title=EXCLUDED.title,
			type=EXCLUDED.type,
			max_points=EXCLUDED.max_points,
			is_course_scale=EXCLUDED.is_course_scale,
			items_json=EXCLUDED.items_json,
			updated_at=EXCLUDED.updated_at`,
		rec.ID, rec.CourseID, rec.Title, string(rec.Type), maxPts, rec.IsCourseScale, string(ij), now, now)
	if err != nil {
		return GradeScale{}, err
	}
	if err := tx.Commit(); err != nil {
		return GradeScale{}, err
	}
	return s.GetScale(ctx, rec.ID)
}

func (s *SQLStore) GetScale(ctx context.Context, id string) (GradeScale, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, course_id, title, type, max_points, is_course_scale, items_json
		FROM grade_scales WHERE id=$1`, id)
	rec, err := s.scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return GradeScale{}, ErrNotFound
	}
	return rec, err
}

func (s *SQLStore) ListScales(ctx context.Context, courseID string) ([]GradeScale, error) {
	q := `SELECT id, course_id, title, type, max_points, is_course_scale, items_json FROM grade_scales`
	var args []any
	if courseID != "" {
		q += ` WHERE course_id=$1`
		args = append(args, courseID)
	}
	q += ` ORDER BY created_at, id`
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []GradeScale{}
	for rows.Next() {
		rec, err := s.scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func (s *SQLStore) scan(sc scanner) (GradeScale, error) {
	var rec GradeScale
	var typ, ij string
	var maxPts sql.NullFloat64
	if err := sc.Scan(&rec.ID, &rec.CourseID, &rec.Title, &typ, &maxPts, &rec.IsCourseScale, &ij); err != nil {
		return GradeScale{}, err
	}
	rec.Type = ScaleType(typ)
	if maxPts.Valid {
		rec.MaxPoints = Num(maxPts.Float64)
	}
	if err := json.Unmarshal([]byte(ij), &rec.Items); err != nil {
		return GradeScale{}, fmt.Errorf("grade scale %s items: %w", rec.ID, err)
	}
	// jsonb does not keep key order
	if s.driver == "postgres" {
		rec.Items = ItemsFromMap(rec.Items.Map())
	}
	return rec, nil
}

func (s *SQLStore) SetCourseUseWeights(ctx context.Context, courseID string, useWeights bool) error {
	if courseID == "" {
		return fmt.Errorf("%w: course id required", ErrInvalidArgument)
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO course_settings (course_id, use_weights, updated_at)
		VALUES ($1,$2,$3)
		ON CONFLICT (course_id) DO UPDATE SET use_weights=EXCLUDED.use_weights, updated_at=EXCLUDED.updated_at`,
		courseID, useWeights, time.Now().Unix())
	return err
}

func (s *SQLStore) CourseUsesWeights(ctx context.Context, courseID string) (bool, error) {
	var v bool
	err := s.db.QueryRowContext(ctx, `SELECT use_weights FROM course_settings WHERE course_id=$1`, courseID).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return true, nil
	}
	return v, err
}
