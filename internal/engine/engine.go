package engine

import (
	"context"
	"errors"
	"strings"

	"planner/internal/config"
	"planner/internal/domain"
	"planner/internal/repo"
)

// Engine is the call surface the hosting shell invokes. It applies config
// defaults and required-field checks, then hands off to the repository.
type Engine struct {
	Repo   repo.Repo
	Config *config.Config
}

func New(r repo.Repo, cfg *config.Config) Engine {
	if cfg == nil {
		cfg = config.Default("")
	}
	return Engine{Repo: r, Config: cfg}
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// GetTasks lists every task, newest first.
func (e Engine) GetTasks(ctx context.Context) ([]domain.Task, error) {
	return e.Repo.ListTasks(ctx, repo.TaskFilters{})
}

// CreateTask persists a task. An empty status takes the configured default.
func (e Engine) CreateTask(ctx context.Context, t domain.Task) (domain.Task, error) {
	if blank(t.Title) {
		return domain.Task{}, errors.New("title is required")
	}
	if blank(t.Status) {
		t.Status = e.Config.Defaults.TaskStatus
	}
	if blank(t.Status) {
		return domain.Task{}, errors.New("status is required")
	}
	return e.Repo.CreateTask(ctx, t)
}

func (e Engine) GetTask(ctx context.Context, id string) (domain.Task, error) {
	return e.Repo.GetTask(ctx, id)
}

// GetClients lists every client ordered by name.
func (e Engine) GetClients(ctx context.Context) ([]domain.Client, error) {
	return e.Repo.ListClients(ctx)
}

func (e Engine) CreateClient(ctx context.Context, c domain.Client) (domain.Client, error) {
	if blank(c.Name) {
		return domain.Client{}, errors.New("name is required")
	}
	return e.Repo.CreateClient(ctx, c)
}

func (e Engine) GetClient(ctx context.Context, id string) (domain.Client, error) {
	return e.Repo.GetClient(ctx, id)
}

// GetProjects lists every project, newest first.
func (e Engine) GetProjects(ctx context.Context) ([]domain.Project, error) {
	return e.Repo.ListProjects(ctx, repo.ProjectFilters{})
}

// CreateProject persists a project. An empty kind takes the configured default.
func (e Engine) CreateProject(ctx context.Context, p domain.Project) (domain.Project, error) {
	if blank(p.Title) {
		return domain.Project{}, errors.New("title is required")
	}
	if blank(p.Kind) {
		p.Kind = e.Config.Defaults.ProjectKind
	}
	if blank(p.Kind) {
		return domain.Project{}, errors.New("kind is required")
	}
	return e.Repo.CreateProject(ctx, p)
}

func (e Engine) GetProject(ctx context.Context, id string) (domain.Project, error) {
	return e.Repo.GetProject(ctx, id)
}

// Search finds clients, projects and tasks whose text contains query.
func (e Engine) Search(ctx context.Context, query string) ([]domain.SearchResult, error) {
	return e.Repo.Search(ctx, query)
}
