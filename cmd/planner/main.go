package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"planner/internal/app"
	"planner/internal/config"
	"planner/internal/domain"
	"planner/internal/engine"
	"planner/internal/repo"
)

var logger = zerolog.Nop()

var rootCmd = &cobra.Command{
	Use:   "planner",
	Short: "Personal planner for clients, projects and tasks",
	Long: `planner keeps clients, projects and tasks in a single SQLite file.
- Clients: who the work is for, with tags, contacts, links and a next step.
- Projects: active or planned engagements, optionally tied to a client.
- Tasks: units of work with status, due date, priority/effort/impact/confidence and an optional score.
The database lives in the data directory (--data-dir, PLANNER_DATA_DIR) next to an optional planner.yml.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		l, err := app.NewLogger(os.Stderr, cfg.Log.Level, cfg.Log.Console)
		if err != nil {
			return err
		}
		logger = l
		return nil
	},
}

func main() {
	cobra.OnInitialize(initConfig)
	addPersistentFlags()
	registerCommands()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func initConfig() {
	viper.SetEnvPrefix("PLANNER")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func addPersistentFlags() {
	rootCmd.PersistentFlags().StringP("data-dir", "d", defaultDataDir(), "data directory holding planner.db")
	rootCmd.PersistentFlags().String("config", "", "config file (default <data-dir>/planner.yml)")
	rootCmd.PersistentFlags().Bool("json", false, "output JSON")
	rootCmd.PersistentFlags().String("log-level", "", "log level (trace, debug, info, warn, error, disabled)")
	_ = viper.BindPFlag("data-dir", rootCmd.PersistentFlags().Lookup("data-dir"))
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	_ = viper.BindPFlag("log-level", rootCmd.PersistentFlags().Lookup("log-level"))
}

func registerCommands() {
	rootCmd.AddCommand(initCmd())
	rootCmd.AddCommand(configCmd())
	rootCmd.AddCommand(clientCmd())
	rootCmd.AddCommand(projectCmd())
	rootCmd.AddCommand(taskCmd())
	rootCmd.AddCommand(searchCmd())
}

func defaultDataDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "planner")
	}
	return ".planner"
}

func configPath() string {
	if p := viper.GetString("config"); p != "" {
		return p
	}
	return config.Path(viper.GetString("data-dir"))
}

// loadConfig reads planner.yml if present. Flags and PLANNER_* env vars win over the file.
func loadConfig() (*config.Config, error) {
	dataDir := viper.GetString("data-dir")
	cfg, err := config.LoadOptional(configPath(), dataDir)
	if err != nil {
		return nil, err
	}
	if cfg.Storage.DataDir == "" || viper.IsSet("data-dir") {
		cfg.Storage.DataDir = dataDir
	}
	if lvl := viper.GetString("log-level"); lvl != "" {
		cfg.Log.Level = lvl
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the database and schema if missing",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine, path string) error {
				if viper.GetBool("json") {
					return printJSON(map[string]string{"path": path})
				}
				fmt.Println(path)
				return nil
			})
		},
	}
}

func configCmd() *cobra.Command {
	cfgCmd := &cobra.Command{Use: "config", Short: "Manage planner.yml"}
	var force bool
	initC := &cobra.Command{
		Use:   "init",
		Short: "Write a default planner.yml",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := configPath()
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("config %s already exists; use --force to overwrite", path)
			}
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return err
			}
			if err := os.WriteFile(path, []byte(config.GenerateDefault(viper.GetString("data-dir"))), 0o644); err != nil {
				return err
			}
			fmt.Println(path)
			return nil
		},
	}
	initC.Flags().BoolVar(&force, "force", false, "overwrite an existing config")
	show := &cobra.Command{
		Use:   "show",
		Short: "Print the effective config",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return printJSON(cfg)
		},
	}
	cfgCmd.AddCommand(initC, show)
	return cfgCmd
}

func clientCmd() *cobra.Command {
	c := &cobra.Command{Use: "client", Short: "Manage clients"}
	c.AddCommand(clientCreateCmd(), clientListCmd(), clientShowCmd())
	return c
}

func clientCreateCmd() *cobra.Command {
	var in domain.Client
	var nextStep, nextStepDue string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a client",
		RunE: func(cmd *cobra.Command, args []string) error {
			in.NextStep = optionalFlag(cmd, "next-step", nextStep)
			in.NextStepDue = optionalFlag(cmd, "next-step-due", nextStepDue)
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine, _ string) error {
				c, err := e.CreateClient(ctx, in)
				if err != nil {
					return err
				}
				return printJSON(c)
			})
		},
	}
	cmd.Flags().StringVar(&in.Name, "name", "", "client name")
	cmd.Flags().StringArrayVar(&in.Tags, "tag", []string{}, "tag (repeatable)")
	cmd.Flags().StringArrayVar(&in.Contacts, "contact", []string{}, "contact (repeatable)")
	cmd.Flags().StringArrayVar(&in.Links, "link", []string{}, "link (repeatable)")
	cmd.Flags().StringVar(&nextStep, "next-step", "", "next step")
	cmd.Flags().StringVar(&nextStepDue, "next-step-due", "", "next step due date-time")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func clientListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List clients by name",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine, _ string) error {
				clients, err := e.GetClients(ctx)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(clients)
				}
				tw := newTable(table.Row{"ID", "Name", "Tags", "Next step", "Due"})
				for _, c := range clients {
					tw.AppendRow(table.Row{c.ID, c.Name, strings.Join(c.Tags, ", "), deref(c.NextStep), deref(c.NextStepDue)})
				}
				tw.Render()
				return nil
			})
		},
	}
}

func clientShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a client",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine, _ string) error {
				c, err := e.GetClient(ctx, args[0])
				if err != nil {
					return err
				}
				return printJSON(c)
			})
		},
	}
}

func projectCmd() *cobra.Command {
	p := &cobra.Command{Use: "project", Short: "Manage projects"}
	p.AddCommand(projectCreateCmd(), projectListCmd(), projectShowCmd())
	return p
}

func projectCreateCmd() *cobra.Command {
	var in domain.Project
	var clientID, projectType, status, description, nextStep, nextStepDue string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a project",
		RunE: func(cmd *cobra.Command, args []string) error {
			in.ClientID = optionalFlag(cmd, "client", clientID)
			in.ProjectType = optionalFlag(cmd, "type", projectType)
			in.Status = optionalFlag(cmd, "status", status)
			in.Description = optionalFlag(cmd, "description", description)
			in.NextStep = optionalFlag(cmd, "next-step", nextStep)
			in.NextStepDue = optionalFlag(cmd, "next-step-due", nextStepDue)
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine, _ string) error {
				p, err := e.CreateProject(ctx, in)
				if err != nil {
					return err
				}
				return printJSON(p)
			})
		},
	}
	cmd.Flags().StringVar(&in.Title, "title", "", "title")
	cmd.Flags().StringVar(&in.Kind, "kind", "", "kind, e.g. Active or Planned (default from config)")
	cmd.Flags().StringVar(&projectType, "type", "", "project type")
	cmd.Flags().StringVar(&status, "status", "", "status")
	cmd.Flags().StringVar(&clientID, "client", "", "client id")
	cmd.Flags().StringVar(&description, "description", "", "description")
	cmd.Flags().StringArrayVar(&in.Tags, "tag", []string{}, "tag (repeatable)")
	cmd.Flags().StringVar(&nextStep, "next-step", "", "next step")
	cmd.Flags().StringVar(&nextStepDue, "next-step-due", "", "next step due date-time")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func projectListCmd() *cobra.Command {
	var f repo.ProjectFilters
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List projects, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine, _ string) error {
				projects, err := e.Repo.ListProjects(ctx, f)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(projects)
				}
				tw := newTable(table.Row{"ID", "Title", "Kind", "Status", "Client", "Created"})
				for _, p := range projects {
					tw.AppendRow(table.Row{p.ID, p.Title, p.Kind, deref(p.Status), deref(p.ClientID), p.CreatedAt})
				}
				tw.Render()
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&f.ClientID, "client", "", "client filter")
	return cmd
}

func projectShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine, _ string) error {
				p, err := e.GetProject(ctx, args[0])
				if err != nil {
					return err
				}
				return printJSON(p)
			})
		},
	}
}

func taskCmd() *cobra.Command {
	t := &cobra.Command{Use: "task", Short: "Manage tasks"}
	t.AddCommand(taskCreateCmd(), taskListCmd(), taskShowCmd())
	return t
}

func taskCreateCmd() *cobra.Command {
	var in domain.Task
	var projectID, clientID, description, due string
	var priority, impact int
	var effort, confidence, score float64
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a task",
		RunE: func(cmd *cobra.Command, args []string) error {
			in.ProjectID = optionalFlag(cmd, "project", projectID)
			in.ClientID = optionalFlag(cmd, "client", clientID)
			in.Description = optionalFlag(cmd, "description", description)
			in.Due = optionalFlag(cmd, "due", due)
			if cmd.Flags().Changed("priority") {
				in.Priority = &priority
			}
			if cmd.Flags().Changed("impact") {
				in.Impact = &impact
			}
			if cmd.Flags().Changed("effort") {
				in.Effort = &effort
			}
			if cmd.Flags().Changed("confidence") {
				in.Confidence = &confidence
			}
			if cmd.Flags().Changed("score") {
				in.Score = &score
			}
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine, _ string) error {
				t, err := e.CreateTask(ctx, in)
				if err != nil {
					return err
				}
				return printJSON(t)
			})
		},
	}
	cmd.Flags().StringVar(&in.Title, "title", "", "title")
	cmd.Flags().StringVar(&in.Status, "status", "", "status, e.g. Inbox, Todo, Doing, Blocked, Done (default from config)")
	cmd.Flags().StringVar(&projectID, "project", "", "project id")
	cmd.Flags().StringVar(&clientID, "client", "", "client id")
	cmd.Flags().StringVar(&description, "description", "", "description")
	cmd.Flags().StringVar(&due, "due", "", "due date-time")
	cmd.Flags().IntVar(&priority, "priority", 0, "priority")
	cmd.Flags().Float64Var(&effort, "effort", 0, "effort")
	cmd.Flags().IntVar(&impact, "impact", 0, "impact")
	cmd.Flags().Float64Var(&confidence, "confidence", 0, "confidence")
	cmd.Flags().Float64Var(&score, "score", 0, "externally computed score")
	cmd.Flags().BoolVar(&in.IsNextStep, "next-step", false, "mark as next step")
	cmd.Flags().StringArrayVar(&in.Tags, "tag", []string{}, "tag (repeatable)")
	cmd.Flags().StringArrayVar(&in.Links, "link", []string{}, "link (repeatable)")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func taskListCmd() *cobra.Command {
	var f repo.TaskFilters
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine, _ string) error {
				tasks, err := e.Repo.ListTasks(ctx, f)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(tasks)
				}
				tw := newTable(table.Row{"ID", "Title", "Status", "Due", "Next", "Project"})
				for _, t := range tasks {
					next := ""
					if t.IsNextStep {
						next = "yes"
					}
					tw.AppendRow(table.Row{t.ID, t.Title, t.Status, deref(t.Due), next, deref(t.ProjectID)})
				}
				tw.Render()
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&f.ProjectID, "project", "", "project filter")
	cmd.Flags().StringVar(&f.ClientID, "client", "", "client filter")
	cmd.Flags().StringVar(&f.Status, "status", "", "status filter")
	cmd.Flags().BoolVar(&f.NextStepOnly, "next-step-only", false, "only tasks marked as next step")
	return cmd
}

func taskShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine, _ string) error {
				t, err := e.GetTask(ctx, args[0])
				if err != nil {
					return err
				}
				return printJSON(t)
			})
		},
	}
}

func searchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Search client names and project/task titles and descriptions",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine, _ string) error {
				results, err := e.Search(ctx, strings.Join(args, " "))
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(results)
				}
				tw := newTable(table.Row{"Type", "ID", "Title", "Description"})
				for _, r := range results {
					tw.AppendRow(table.Row{r.Type, r.ID, r.Title, deref(r.Description)})
				}
				tw.Render()
				return nil
			})
		},
	}
}

func withEngine(ctx context.Context, fn func(context.Context, engine.Engine, string) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	e, path, err := app.InitDatabase(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer e.Repo.Store.Close()
	return fn(ctx, e, path)
}

func optionalFlag(cmd *cobra.Command, name, value string) *string {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	return &value
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func newTable(header table.Row) table.Writer {
	tw := table.NewWriter()
	tw.SetOutputMirror(os.Stdout)
	tw.AppendHeader(header)
	return tw
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
