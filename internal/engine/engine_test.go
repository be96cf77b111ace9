package engine_test

import (
	"context"
	"testing"
	"time"

	"planner/internal/config"
	"planner/internal/db"
	"planner/internal/domain"
	"planner/internal/engine"
	"planner/internal/repo"
	"planner/internal/store"
)

type testEnv struct {
	Engine engine.Engine
	Ctx    context.Context
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()
	dir := t.TempDir()
	ctx := context.Background()
	s, err := store.Open(ctx, db.Config{DataDir: dir})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	eng := engine.New(repo.Repo{Store: s}, config.Default(dir))
	return testEnv{Engine: eng, Ctx: ctx}
}

func TestCreateTaskRequiresTitle(t *testing.T) {
	env := newTestEnv(t)
	if _, err := env.Engine.CreateTask(env.Ctx, domain.Task{Title: "  ", Status: "Todo"}); err == nil {
		t.Fatalf("expected title error")
	}
	tasks, err := env.Engine.GetTasks(env.Ctx)
	if err != nil {
		t.Fatalf("get tasks: %v", err)
	}
	if len(tasks) != 0 {
		t.Fatalf("rejected task must not be stored, got %d", len(tasks))
	}
}

func TestCreateTaskDefaultsStatus(t *testing.T) {
	env := newTestEnv(t)
	task, err := env.Engine.CreateTask(env.Ctx, domain.Task{Title: "Call back"})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	if task.Status != "Inbox" {
		t.Fatalf("expected default status Inbox, got %q", task.Status)
	}
	kept, err := env.Engine.CreateTask(env.Ctx, domain.Task{Title: "Review", Status: "Blocked"})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	if kept.Status != "Blocked" {
		t.Fatalf("explicit status overwritten: %q", kept.Status)
	}
}

func TestCreateTaskWithoutDefaultStatusFails(t *testing.T) {
	env := newTestEnv(t)
	env.Engine.Config.Defaults.TaskStatus = ""
	if _, err := env.Engine.CreateTask(env.Ctx, domain.Task{Title: "No status"}); err == nil {
		t.Fatalf("expected status error")
	}
}

func TestCreateClientRequiresName(t *testing.T) {
	env := newTestEnv(t)
	if _, err := env.Engine.CreateClient(env.Ctx, domain.Client{}); err == nil {
		t.Fatalf("expected name error")
	}
	c, err := env.Engine.CreateClient(env.Ctx, domain.Client{Name: "Acme"})
	if err != nil {
		t.Fatalf("create client: %v", err)
	}
	got, err := env.Engine.GetClient(env.Ctx, c.ID)
	if err != nil {
		t.Fatalf("get client: %v", err)
	}
	if got.Name != "Acme" {
		t.Fatalf("unexpected client %+v", got)
	}
}

func TestCreateProjectDefaultsKind(t *testing.T) {
	env := newTestEnv(t)
	if _, err := env.Engine.CreateProject(env.Ctx, domain.Project{Kind: "Active"}); err == nil {
		t.Fatalf("expected title error")
	}
	p, err := env.Engine.CreateProject(env.Ctx, domain.Project{Title: "Migration"})
	if err != nil {
		t.Fatalf("create project: %v", err)
	}
	if p.Kind != "Active" {
		t.Fatalf("expected default kind Active, got %q", p.Kind)
	}
	got, err := env.Engine.GetProject(env.Ctx, p.ID)
	if err != nil {
		t.Fatalf("get project: %v", err)
	}
	if got.Kind != "Active" {
		t.Fatalf("stored kind %q", got.Kind)
	}
}

func TestBoundaryListsReflectCreates(t *testing.T) {
	env := newTestEnv(t)
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	env.Engine.Repo.Now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}
	client, err := env.Engine.CreateClient(env.Ctx, domain.Client{Name: "Acme"})
	if err != nil {
		t.Fatal(err)
	}
	project, err := env.Engine.CreateProject(env.Ctx, domain.Project{Title: "Site", ClientID: &client.ID})
	if err != nil {
		t.Fatal(err)
	}
	task, err := env.Engine.CreateTask(env.Ctx, domain.Task{Title: "Draft", ProjectID: &project.ID, ClientID: &client.ID})
	if err != nil {
		t.Fatal(err)
	}
	if got, err := env.Engine.GetTask(env.Ctx, task.ID); err != nil || *got.ProjectID != project.ID {
		t.Fatalf("get task: %+v %v", got, err)
	}

	clients, err := env.Engine.GetClients(env.Ctx)
	if err != nil || len(clients) != 1 {
		t.Fatalf("get clients: %d %v", len(clients), err)
	}
	projects, err := env.Engine.GetProjects(env.Ctx)
	if err != nil || len(projects) != 1 || *projects[0].ClientID != client.ID {
		t.Fatalf("get projects: %+v %v", projects, err)
	}
	tasks, err := env.Engine.GetTasks(env.Ctx)
	if err != nil || len(tasks) != 1 || tasks[0].ID != task.ID {
		t.Fatalf("get tasks: %+v %v", tasks, err)
	}
}

func TestSearchAcrossEntities(t *testing.T) {
	env := newTestEnv(t)
	if _, err := env.Engine.CreateClient(env.Ctx, domain.Client{Name: "Harbor Labs"}); err != nil {
		t.Fatal(err)
	}
	desc := "Rebuild the harbor site"
	if _, err := env.Engine.CreateProject(env.Ctx, domain.Project{Title: "Website", Description: &desc}); err != nil {
		t.Fatal(err)
	}
	if _, err := env.Engine.CreateTask(env.Ctx, domain.Task{Title: "Email HARBOR team"}); err != nil {
		t.Fatal(err)
	}
	if _, err := env.Engine.CreateTask(env.Ctx, domain.Task{Title: "Unrelated"}); err != nil {
		t.Fatal(err)
	}
	results, err := env.Engine.Search(env.Ctx, "harbor")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	var types []string
	for _, r := range results {
		types = append(types, r.Type)
	}
	if len(types) != 3 || types[0] != "client" || types[1] != "project" || types[2] != "task" {
		t.Fatalf("unexpected results %+v", results)
	}
	if results[1].Description == nil || *results[1].Description != desc {
		t.Fatalf("project description not returned: %+v", results[1])
	}
	if results[0].Description != nil {
		t.Fatalf("client result must not carry a description: %+v", results[0])
	}
}
