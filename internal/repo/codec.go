package repo

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"planner/internal/domain"
)

// ErrCorruptList reports a list column that is not a JSON array of strings.
var ErrCorruptList = errors.New("corrupt list column")

// ErrInvalidList reports a list that cannot be stored without altering it.
var ErrInvalidList = errors.New("invalid list")

// DecodePolicy selects how list columns that fail to parse are handled.
type DecodePolicy int

const (
	// Lenient decodes NULL, empty and unparseable list columns as an empty list.
	// It keeps one damaged row from hiding the rest of a table, at the cost of
	// masking the damage.
	Lenient DecodePolicy = iota
	// Strict fails the read with ErrCorruptList when a list column cannot be parsed.
	Strict
)

// EncodeList serializes an ordered list of strings as a JSON array. A nil
// list is stored as []. Items must be valid UTF-8.
func EncodeList(items []string) (string, error) {
	if items == nil {
		items = []string{}
	}
	for i, item := range items {
		if !utf8.ValidString(item) {
			return "", fmt.Errorf("%w: item %d is not valid UTF-8", ErrInvalidList, i)
		}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// DecodeList restores a list written by EncodeList. The result is never nil.
func DecodeList(raw sql.NullString, policy DecodePolicy) ([]string, error) {
	if !raw.Valid || strings.TrimSpace(raw.String) == "" {
		return []string{}, nil
	}
	var items []string
	if err := json.Unmarshal([]byte(raw.String), &items); err != nil {
		if policy == Strict {
			return nil, fmt.Errorf("%w: %v", ErrCorruptList, err)
		}
		return []string{}, nil
	}
	if items == nil {
		items = []string{}
	}
	return items, nil
}

func decodeColumn(name string, raw sql.NullString, policy DecodePolicy) ([]string, error) {
	items, err := DecodeList(raw, policy)
	if err != nil {
		return nil, fmt.Errorf("column %s: %w", name, err)
	}
	return items, nil
}

func normalizeList(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}

func nullableStringPtr(v *string) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullableIntPtr(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullableFloatPtr(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func stringPtr(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

func intPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	i := int(v.Int64)
	return &i
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

type scanner interface {
	Scan(dest ...any) error
}

const clientColumns = `id,name,tags,contacts,links,next_step,next_step_due,created_at,updated_at`

func scanClient(row scanner, policy DecodePolicy) (c domain.Client, err error) {
	var tags, contacts, links, nextStep, nextStepDue sql.NullString
	if err := row.Scan(&c.ID, &c.Name, &tags, &contacts, &links, &nextStep, &nextStepDue, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return c, err
	}
	if c.Tags, err = decodeColumn("tags", tags, policy); err != nil {
		return c, err
	}
	if c.Contacts, err = decodeColumn("contacts", contacts, policy); err != nil {
		return c, err
	}
	if c.Links, err = decodeColumn("links", links, policy); err != nil {
		return c, err
	}
	c.NextStep = stringPtr(nextStep)
	c.NextStepDue = stringPtr(nextStepDue)
	return c, nil
}

func clientArgs(c domain.Client) ([]any, error) {
	tags, err := EncodeList(c.Tags)
	if err != nil {
		return nil, err
	}
	contacts, err := EncodeList(c.Contacts)
	if err != nil {
		return nil, err
	}
	links, err := EncodeList(c.Links)
	if err != nil {
		return nil, err
	}
	return []any{c.ID, c.Name, tags, contacts, links, nullableStringPtr(c.NextStep), nullableStringPtr(c.NextStepDue), c.CreatedAt, c.UpdatedAt}, nil
}

const projectColumns = `id,client_id,kind,project_type,status,title,description,tags,next_step,next_step_due,created_at,updated_at`

func scanProject(row scanner, policy DecodePolicy) (p domain.Project, err error) {
	var clientID, projectType, status, description, tags, nextStep, nextStepDue sql.NullString
	if err := row.Scan(&p.ID, &clientID, &p.Kind, &projectType, &status, &p.Title, &description, &tags, &nextStep, &nextStepDue, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return p, err
	}
	if p.Tags, err = decodeColumn("tags", tags, policy); err != nil {
		return p, err
	}
	p.ClientID = stringPtr(clientID)
	p.ProjectType = stringPtr(projectType)
	p.Status = stringPtr(status)
	p.Description = stringPtr(description)
	p.NextStep = stringPtr(nextStep)
	p.NextStepDue = stringPtr(nextStepDue)
	return p, nil
}

func projectArgs(p domain.Project) ([]any, error) {
	tags, err := EncodeList(p.Tags)
	if err != nil {
		return nil, err
	}
	return []any{p.ID, nullableStringPtr(p.ClientID), p.Kind, nullableStringPtr(p.ProjectType), nullableStringPtr(p.Status), p.Title,
		nullableStringPtr(p.Description), tags, nullableStringPtr(p.NextStep), nullableStringPtr(p.NextStepDue), p.CreatedAt, p.UpdatedAt}, nil
}

const taskColumns = `id,project_id,client_id,title,description,status,due,priority,effort,impact,confidence,is_next_step,tags,links,created_at,updated_at,score`

func scanTask(row scanner, policy DecodePolicy) (t domain.Task, err error) {
	var projectID, clientID, description, due, tags, links sql.NullString
	var priority, impact sql.NullInt64
	var effort, confidence, score sql.NullFloat64
	if err := row.Scan(&t.ID, &projectID, &clientID, &t.Title, &description, &t.Status, &due, &priority, &effort, &impact, &confidence,
		&t.IsNextStep, &tags, &links, &t.CreatedAt, &t.UpdatedAt, &score); err != nil {
		return t, err
	}
	if t.Tags, err = decodeColumn("tags", tags, policy); err != nil {
		return t, err
	}
	if t.Links, err = decodeColumn("links", links, policy); err != nil {
		return t, err
	}
	t.ProjectID = stringPtr(projectID)
	t.ClientID = stringPtr(clientID)
	t.Description = stringPtr(description)
	t.Due = stringPtr(due)
	t.Priority = intPtr(priority)
	t.Effort = floatPtr(effort)
	t.Impact = intPtr(impact)
	t.Confidence = floatPtr(confidence)
	t.Score = floatPtr(score)
	return t, nil
}

func taskArgs(t domain.Task) ([]any, error) {
	tags, err := EncodeList(t.Tags)
	if err != nil {
		return nil, err
	}
	links, err := EncodeList(t.Links)
	if err != nil {
		return nil, err
	}
	return []any{t.ID, nullableStringPtr(t.ProjectID), nullableStringPtr(t.ClientID), t.Title, nullableStringPtr(t.Description), t.Status,
		nullableStringPtr(t.Due), nullableIntPtr(t.Priority), nullableFloatPtr(t.Effort), nullableIntPtr(t.Impact), nullableFloatPtr(t.Confidence),
		t.IsNextStep, tags, links, t.CreatedAt, t.UpdatedAt, nullableFloatPtr(t.Score)}, nil
}
