package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"planner/internal/domain"
	"planner/internal/store"
)

// TimeLayout is the stored timestamp form: RFC 3339 in UTC with fixed-width
// microseconds, so text order matches creation order.
const TimeLayout = "2006-01-02T15:04:05.000000Z07:00"

var ErrNotFound = errors.New("not found")

type Repo struct {
	Store  *store.Store
	Now    func() time.Time
	Decode DecodePolicy
}

func (r Repo) timestamp() string {
	now := time.Now
	if r.Now != nil {
		now = r.Now
	}
	return now().UTC().Format(TimeLayout)
}

func (r Repo) queryAll(ctx context.Context, query string, args []any, scan func(scanner) error) error {
	return r.Store.Do(ctx, func(ctx context.Context, conn *sql.Conn) error {
		rows, err := conn.QueryContext(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			if err := scan(rows); err != nil {
				return err
			}
		}
		return rows.Err()
	})
}

func (r Repo) queryOne(ctx context.Context, query string, args []any, scan func(scanner) error) error {
	err := r.Store.Do(ctx, func(ctx context.Context, conn *sql.Conn) error {
		return scan(conn.QueryRowContext(ctx, query, args...))
	})
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func (r Repo) exec(ctx context.Context, query string, args []any) error {
	return r.Store.Do(ctx, func(ctx context.Context, conn *sql.Conn) error {
		_, err := conn.ExecContext(ctx, query, args...)
		return err
	})
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

// CreateClient stores c under a fresh id and creation time, ignoring any id the caller set.
func (r Repo) CreateClient(ctx context.Context, c domain.Client) (domain.Client, error) {
	now := r.timestamp()
	c.ID = uuid.NewString()
	c.CreatedAt, c.UpdatedAt = now, now
	c.Tags = normalizeList(c.Tags)
	c.Contacts = normalizeList(c.Contacts)
	c.Links = normalizeList(c.Links)
	args, err := clientArgs(c)
	if err != nil {
		return domain.Client{}, fmt.Errorf("encode client: %w", err)
	}
	query := `INSERT INTO clients(` + clientColumns + `) VALUES (` + placeholders(len(args)) + `)`
	if err := r.exec(ctx, query, args); err != nil {
		return domain.Client{}, fmt.Errorf("insert client: %w", err)
	}
	return c, nil
}

// ListClients returns every client ordered by name.
func (r Repo) ListClients(ctx context.Context) ([]domain.Client, error) {
	res := []domain.Client{}
	err := r.queryAll(ctx, `SELECT `+clientColumns+` FROM clients ORDER BY name, id`, nil, func(row scanner) error {
		c, err := scanClient(row, r.Decode)
		if err != nil {
			return err
		}
		res = append(res, c)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	return res, nil
}

func (r Repo) GetClient(ctx context.Context, id string) (domain.Client, error) {
	var c domain.Client
	err := r.queryOne(ctx, `SELECT `+clientColumns+` FROM clients WHERE id=?`, []any{id}, func(row scanner) error {
		var err error
		c, err = scanClient(row, r.Decode)
		return err
	})
	if err != nil {
		return domain.Client{}, fmt.Errorf("get client %s: %w", id, err)
	}
	return c, nil
}

// CreateProject stores p under a fresh id and creation time.
func (r Repo) CreateProject(ctx context.Context, p domain.Project) (domain.Project, error) {
	now := r.timestamp()
	p.ID = uuid.NewString()
	p.CreatedAt, p.UpdatedAt = now, now
	p.Tags = normalizeList(p.Tags)
	args, err := projectArgs(p)
	if err != nil {
		return domain.Project{}, fmt.Errorf("encode project: %w", err)
	}
	query := `INSERT INTO projects(` + projectColumns + `) VALUES (` + placeholders(len(args)) + `)`
	if err := r.exec(ctx, query, args); err != nil {
		return domain.Project{}, fmt.Errorf("insert project: %w", err)
	}
	return p, nil
}

type ProjectFilters struct {
	ClientID string
}

// ListProjects returns projects newest first. Zero filters return the whole table.
func (r Repo) ListProjects(ctx context.Context, f ProjectFilters) ([]domain.Project, error) {
	var clauses []string
	var args []any
	if f.ClientID != "" {
		clauses = append(clauses, "client_id=?")
		args = append(args, f.ClientID)
	}
	where := ""
	if len(clauses) > 0 {
		where = "WHERE " + strings.Join(clauses, " AND ")
	}
	query := `SELECT ` + projectColumns + ` FROM projects ` + where + ` ORDER BY created_at DESC, rowid DESC`
	res := []domain.Project{}
	err := r.queryAll(ctx, query, args, func(row scanner) error {
		p, err := scanProject(row, r.Decode)
		if err != nil {
			return err
		}
		res = append(res, p)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return res, nil
}

func (r Repo) GetProject(ctx context.Context, id string) (domain.Project, error) {
	var p domain.Project
	err := r.queryOne(ctx, `SELECT `+projectColumns+` FROM projects WHERE id=?`, []any{id}, func(row scanner) error {
		var err error
		p, err = scanProject(row, r.Decode)
		return err
	})
	if err != nil {
		return domain.Project{}, fmt.Errorf("get project %s: %w", id, err)
	}
	return p, nil
}

// CreateTask stores t under a fresh id and creation time. Score is written as given.
func (r Repo) CreateTask(ctx context.Context, t domain.Task) (domain.Task, error) {
	now := r.timestamp()
	t.ID = uuid.NewString()
	t.CreatedAt, t.UpdatedAt = now, now
	t.Tags = normalizeList(t.Tags)
	t.Links = normalizeList(t.Links)
	args, err := taskArgs(t)
	if err != nil {
		return domain.Task{}, fmt.Errorf("encode task: %w", err)
	}
	query := `INSERT INTO tasks(` + taskColumns + `) VALUES (` + placeholders(len(args)) + `)`
	if err := r.exec(ctx, query, args); err != nil {
		return domain.Task{}, fmt.Errorf("insert task: %w", err)
	}
	return t, nil
}

type TaskFilters struct {
	ProjectID    string
	ClientID     string
	Status       string
	NextStepOnly bool
}

// ListTasks returns tasks newest first. Zero filters return the whole table.
func (r Repo) ListTasks(ctx context.Context, f TaskFilters) ([]domain.Task, error) {
	var clauses []string
	var args []any
	if f.ProjectID != "" {
		clauses = append(clauses, "project_id=?")
		args = append(args, f.ProjectID)
	}
	if f.ClientID != "" {
		clauses = append(clauses, "client_id=?")
		args = append(args, f.ClientID)
	}
	if f.Status != "" {
		clauses = append(clauses, "status=?")
		args = append(args, f.Status)
	}
	if f.NextStepOnly {
		clauses = append(clauses, "is_next_step=1")
	}
	where := ""
	if len(clauses) > 0 {
		where = "WHERE " + strings.Join(clauses, " AND ")
	}
	query := `SELECT ` + taskColumns + ` FROM tasks ` + where + ` ORDER BY created_at DESC, rowid DESC`
	res := []domain.Task{}
	err := r.queryAll(ctx, query, args, func(row scanner) error {
		t, err := scanTask(row, r.Decode)
		if err != nil {
			return err
		}
		res = append(res, t)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return res, nil
}

func (r Repo) GetTask(ctx context.Context, id string) (domain.Task, error) {
	var t domain.Task
	err := r.queryOne(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id=?`, []any{id}, func(row scanner) error {
		var err error
		t, err = scanTask(row, r.Decode)
		return err
	})
	if err != nil {
		return domain.Task{}, fmt.Errorf("get task %s: %w", id, err)
	}
	return t, nil
}
