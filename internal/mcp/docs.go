package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `basing manages cutting and basing projects and reports on the tasks they produce.

- Project: a source folder watched for parts, a destination folder for results, a palate
  configuration and a base height. Names and folders are unique among Active projects.
- Updating a project appends the previous values to its change_log.
- Deleting a project marks it Inactive; get_project still returns it.
- Tasks are read-only here: dashboard_page lists them newest first, dashboard_aggregates counts them.
`

type docResource struct {
	URI         string
	Name        string
	Title       string
	Description string
	Content     string
}

var docResources = []docResource{
	{
		URI:         "basing://docs/projects",
		Name:        "projects",
		Title:       "Project lifecycle",
		Description: "Fields, uniqueness and change log rules for projects",
		Content: `# Projects

| Field | Rule |
|---|---|
| project_name | required, not blank, unique among Active projects |
| source_folder | required, not blank, unique among Active projects |
| destination_folder | required, not blank, unique among Active projects |
| palate_configuration | required, not blank |
| base_height | required, finite, >= 0 |

- create_project returns the new record with an empty change_log.
- update_project snapshots the current values, including the old updated_at, into change_log.
- delete_project sets project_status to Inactive and frees the name and folders.
- list_projects returns Active projects only, offset 0 and limit 10 by default (limit at most 1000).
`,
	},
	{
		URI:         "basing://docs/dashboard",
		Name:        "dashboard",
		Title:       "Dashboard view",
		Description: "How task pages and aggregate counts are computed",
		Content: `# Dashboard

- dashboard_page(page, limit): page is 1-based, limit defaults to 100. Rows are ordered by
  created_at descending then task_id ascending. Deleted tasks never appear.
- count.total_count is the live number of non-deleted tasks.
- dashboard_aggregates counts pending, In Progress, completed and failed tasks, the total of
  non-deleted tasks, and the mean task_duration formatted with three decimals.
`,
	},
}

func registerDocResources(server *sdkmcp.Server) {
	for _, doc := range docResources {
		server.AddResource(&sdkmcp.Resource{
			URI:         doc.URI,
			Name:        doc.Name,
			Title:       doc.Title,
			Description: doc.Description,
			MIMEType:    "text/markdown",
			Size:        int64(len(doc.Content)),
		}, func(_ context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
			uri := doc.URI
			if req != nil && req.Params != nil && req.Params.URI != "" {
				uri = req.Params.URI
			}
			return &sdkmcp.ReadResourceResult{
				Contents: []*sdkmcp.ResourceContents{{
					URI:      uri,
					MIMEType: "text/markdown",
					Text:     doc.Content,
				}},
			}, nil
		})
	}
}
