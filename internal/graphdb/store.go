package graphdb

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/jonathan/coursemate/internal/types"
)

const (
	ensureConstraintQuery = `CREATE CONSTRAINT course_code IF NOT EXISTS
FOR (c:Course) REQUIRE c.code IS UNIQUE`

	prerequisitesQuery = `MATCH (p:Course)-[r:PREREQUISITE_OF]->(:Course {code: $code})
RETURN r.group AS group, r.groupPosition AS groupPosition, r.position AS position, p.code AS prereq
ORDER BY groupPosition, position`

	savePrerequisitesQuery = `MERGE (c:Course {code: $code})
WITH c
OPTIONAL MATCH (:Course)-[old:PREREQUISITE_OF]->(c)
DELETE old
WITH DISTINCT c
UNWIND $rows AS row
MERGE (p:Course {code: row.prereq})
CREATE (p)-[:PREREQUISITE_OF {group: row.group, groupPosition: row.groupPosition, position: row.position}]->(c)`

	coursesQuery = `MATCH (:Course)-[:PREREQUISITE_OF]->(c:Course)
RETURN DISTINCT c.code AS code
ORDER BY code`
)

// Store reads and writes prerequisite relationships.
type Store struct {
	runner Runner
}

// NewStore returns a Store that runs its queries through runner.
func NewStore(runner Runner) *Store {
	return &Store{runner: runner}
}

// EnsureConstraints creates the uniqueness constraint on Course.code.
func (s *Store) EnsureConstraints(ctx context.Context) error {
	if _, err := s.runner.Run(ctx, ensureConstraintQuery, nil); err != nil {
		return fmt.Errorf("failed to create course constraint: %w", err)
	}
	return nil
}

// Prerequisites returns the grouped prerequisites of course. A course with
// no incoming relationships returns nil groups.
func (s *Store) Prerequisites(ctx context.Context, course types.CourseCode) (types.PrerequisiteGroups, error) {
	result, err := s.runner.Run(ctx, prerequisitesQuery, map[string]any{"code": course.String()})
	if err != nil {
		return nil, fmt.Errorf("failed to query prerequisites of %s: %w", course, err)
	}

	var groups types.PrerequisiteGroups
	current := int64(-1)
	for _, record := range result.Records {
		label, err := get[string](record, "group")
		if err != nil {
			return nil, err
		}
		groupPosition, err := get[int64](record, "groupPosition")
		if err != nil {
			return nil, err
		}
		prereq, err := get[string](record, "prereq")
		if err != nil {
			return nil, err
		}

		if len(groups) == 0 || groupPosition != current {
			groups = append(groups, types.PrerequisiteGroup{Label: label})
			current = groupPosition
		}
		last := &groups[len(groups)-1]
		last.Courses = append(last.Courses, types.CourseCode(prereq))
	}
	return groups, nil
}

// SavePrerequisites replaces the incoming PREREQUISITE_OF relationships of
// course with groups. Empty codes are skipped.
func (s *Store) SavePrerequisites(ctx context.Context, course types.CourseCode, groups types.PrerequisiteGroups) error {
	if course.IsZero() {
		return fmt.Errorf("course code is required")
	}

	rows := make([]map[string]any, 0)
	for gi, group := range groups {
		position := 0
		for _, p := range group.Courses {
			if p.IsZero() {
				continue
			}
			rows = append(rows, map[string]any{
				"group":         group.Label,
				"groupPosition": int64(gi),
				"position":      int64(position),
				"prereq":        p.String(),
			})
			position++
		}
	}

	params := map[string]any{"code": course.String(), "rows": rows}
	if _, err := s.runner.Run(ctx, savePrerequisitesQuery, params); err != nil {
		return fmt.Errorf("failed to save prerequisites of %s: %w", course, err)
	}
	return nil
}

// Courses lists every course that has at least one stored prerequisite.
func (s *Store) Courses(ctx context.Context) ([]types.CourseCode, error) {
	result, err := s.runner.Run(ctx, coursesQuery, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}
	out := make([]types.CourseCode, 0, len(result.Records))
	for _, record := range result.Records {
		code, err := get[string](record, "code")
		if err != nil {
			return nil, err
		}
		out = append(out, types.CourseCode(code))
	}
	return out, nil
}

func get[T any](record *neo4j.Record, key string) (T, error) {
	var zero T
	raw, ok := record.Get(key)
	if !ok {
		return zero, fmt.Errorf("missing %q in neo4j record", key)
	}
	value, ok := raw.(T)
	if !ok {
		return zero, fmt.Errorf("unexpected type %T for %q in neo4j record", raw, key)
	}
	return value, nil
}
