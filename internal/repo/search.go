package repo

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"planner/internal/domain"
)

const (
	SearchClient  = "client"
	SearchProject = "project"
	SearchTask    = "task"
)

// LIKE folds ASCII case only; ordering follows each entity's list order.
const searchQuery = `
SELECT id, 'client', name, NULL, 0 AS grp, name AS k1, '' AS k2, rowid AS k3 FROM clients
	WHERE name LIKE ?1 ESCAPE '\'
UNION ALL
SELECT id, 'project', title, description, 1, '', created_at, rowid FROM projects
	WHERE title LIKE ?1 ESCAPE '\' OR description LIKE ?1 ESCAPE '\'
UNION ALL
SELECT id, 'task', title, description, 2, '', created_at, rowid FROM tasks
	WHERE title LIKE ?1 ESCAPE '\' OR description LIKE ?1 ESCAPE '\'
ORDER BY grp, k1, k2 DESC, k3 DESC`

func likePattern(q string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(q) + "%"
}

// Search matches query as a substring of client names and of project and task
// titles or descriptions. Clients come first, then projects, then tasks. A blank
// query matches nothing.
func (r Repo) Search(ctx context.Context, query string) ([]domain.SearchResult, error) {
	res := []domain.SearchResult{}
	query = strings.TrimSpace(query)
	if query == "" {
		return res, nil
	}
	err := r.queryAll(ctx, searchQuery, []any{likePattern(query)}, func(row scanner) error {
		var sr domain.SearchResult
		var description, k1, k2 sql.NullString
		var grp, k3 int64
		if err := row.Scan(&sr.ID, &sr.Type, &sr.Title, &description, &grp, &k1, &k2, &k3); err != nil {
			return err
		}
		sr.Description = stringPtr(description)
		res = append(res, sr)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}
	return res, nil
}
