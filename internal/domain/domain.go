package domain

type Client struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Tags        []string `json:"tags"`
	Contacts    []string `json:"contacts"`
	Links       []string `json:"links"`
	NextStep    *string  `json:"next_step,omitempty"`
	NextStepDue *string  `json:"next_step_due,omitempty" format:"date-time"`
	CreatedAt   string   `json:"created_at" format:"date-time"`
	UpdatedAt   string   `json:"updated_at" format:"date-time"`
}

type Project struct {
	ID          string   `json:"id"`
	ClientID    *string  `json:"client_id,omitempty"`
	Kind        string   `json:"kind"`
	ProjectType *string  `json:"project_type,omitempty"`
	Status      *string  `json:"status,omitempty"`
	Title       string   `json:"title"`
	Description *string  `json:"description,omitempty"`
	Tags        []string `json:"tags"`
	NextStep    *string  `json:"next_step,omitempty"`
	NextStepDue *string  `json:"next_step_due,omitempty" format:"date-time"`
	CreatedAt   string   `json:"created_at" format:"date-time"`
	UpdatedAt   string   `json:"updated_at" format:"date-time"`
}

// Task is a unit of work. Score is stored and returned as-is; nothing here computes it.
type Task struct {
	ID          string   `json:"id"`
	ProjectID   *string  `json:"project_id,omitempty"`
	ClientID    *string  `json:"client_id,omitempty"`
	Title       string   `json:"title"`
	Description *string  `json:"description,omitempty"`
	Status      string   `json:"status"`
	Due         *string  `json:"due,omitempty" format:"date-time"`
	Priority    *int     `json:"priority,omitempty"`
	Effort      *float64 `json:"effort,omitempty"`
	Impact      *int     `json:"impact,omitempty"`
	Confidence  *float64 `json:"confidence,omitempty"`
	IsNextStep  bool     `json:"is_next_step"`
	Tags        []string `json:"tags"`
	Links       []string `json:"links"`
	CreatedAt   string   `json:"created_at" format:"date-time"`
	UpdatedAt   string   `json:"updated_at" format:"date-time"`
	Score       *float64 `json:"score,omitempty"`
}

// SearchResult is one match from a text search across clients, projects and tasks.
// Type is "client", "project" or "task".
type SearchResult struct {
	ID          string  `json:"id"`
	Type        string  `json:"type"`
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
}
