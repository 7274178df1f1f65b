package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jonathan/coursemate/internal/courses"
	"github.com/jonathan/coursemate/internal/types"
)

const (
	selectPrerequisites = `SELECT subject, number, group_label, group_position, position, prereq, updated_at
		FROM course_prerequisites
		WHERE subject = $1 AND number = $2
		ORDER BY group_position, position`

	deletePrerequisites = `DELETE FROM course_prerequisites WHERE subject = $1 AND number = $2`

	insertPrerequisite = `INSERT INTO course_prerequisites
		(subject, number, group_label, group_position, position, prereq)
		VALUES ($1, $2, $3, $4, $5, $6)`

	selectCourses = `SELECT DISTINCT subject, number FROM course_prerequisites ORDER BY subject, number`
)

// Prerequisites returns the grouped prerequisites of course. Unknown courses
// return nil groups and no error.
func (db *DB) Prerequisites(ctx context.Context, course types.CourseCode) (types.PrerequisiteGroups, error) {
	subject, number, ok := courses.Split(course)
	if !ok {
		return nil, nil
	}

	rows, err := db.pool.Query(ctx, selectPrerequisites, subject, number)
	if err != nil {
		return nil, fmt.Errorf("failed to query prerequisites of %s: %w", course, err)
	}
	collected, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (PrerequisiteRow, error) {
		var r PrerequisiteRow
		err := row.Scan(&r.Subject, &r.Number, &r.GroupLabel, &r.GroupPosition, &r.Position, &r.Prereq, &r.UpdatedAt)
		return r, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read prerequisites of %s: %w", course, err)
	}

	return groupsFromRows(collected), nil
}

// UpsertPrerequisites replaces the stored prerequisites of course with
// groups, in one batch inside a transaction.
func (db *DB) UpsertPrerequisites(ctx context.Context, course types.CourseCode, groups types.PrerequisiteGroups) error {
	rows, err := rowsFromGroups(course, groups)
	if err != nil {
		return err
	}

	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	subject, number, _ := courses.Split(course)
	batch := &pgx.Batch{}
	batch.Queue(deletePrerequisites, subject, number).Exec(ignoreTag)
	for _, r := range rows {
		batch.Queue(insertPrerequisite, r.Subject, r.Number, r.GroupLabel, r.GroupPosition, r.Position, r.Prereq).Exec(ignoreTag)
	}

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to store prerequisites of %s: %w", course, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit prerequisites of %s: %w", course, err)
	}
	return nil
}

// Courses lists every course with stored prerequisites.
func (db *DB) Courses(ctx context.Context) ([]types.CourseCode, error) {
	rows, err := db.pool.Query(ctx, selectCourses)
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (types.CourseCode, error) {
		var subject, number string
		if err := row.Scan(&subject, &number); err != nil {
			return "", err
		}
		return types.CourseCode(subject + " " + number), nil
	})
}

func ignoreTag(pgconn.CommandTag) error {
	return nil
}

// rowsFromGroups flattens groups into table rows with stable positions.
// Empty prerequisite codes are dropped.
func rowsFromGroups(course types.CourseCode, groups types.PrerequisiteGroups) ([]PrerequisiteRow, error) {
	subject, number, ok := courses.Split(course)
	if !ok {
		return nil, fmt.Errorf("invalid course code %q", course)
	}

	var rows []PrerequisiteRow
	for gi, group := range groups {
		position := 0
		for _, p := range group.Courses {
			if p.IsZero() {
				continue
			}
			rows = append(rows, PrerequisiteRow{
				Subject:       subject,
				Number:        number,
				GroupLabel:    group.Label,
				GroupPosition: gi,
				Position:      position,
				Prereq:        p.String(),
			})
			position++
		}
	}
	return rows, nil
}

// groupsFromRows rebuilds groups from rows sorted by group then position.
// Groups with no rows cannot be stored and so do not come back.
func groupsFromRows(rows []PrerequisiteRow) types.PrerequisiteGroups {
	var groups types.PrerequisiteGroups
	current := -1
	for _, r := range rows {
		if len(groups) == 0 || r.GroupPosition != current {
			groups = append(groups, types.PrerequisiteGroup{Label: r.GroupLabel})
			current = r.GroupPosition
		}
		last := &groups[len(groups)-1]
		last.Courses = append(last.Courses, types.CourseCode(r.Prereq))
	}
	return groups
}
