package tools

import (
	"context"

	"github.com/MuratKus/burbarshop/internal/infrastructure/deployment"
	"github.com/MuratKus/burbarshop/internal/infrastructure/mcp"
)

// DeploymentAPI is the deployment provider the deployment tools call
type DeploymentAPI interface {
	ListDeployments(ctx context.Context, input deployment.ListInput) ([]deployment.Deployment, error)
	GetDeployment(ctx context.Context, id string) (*deployment.Deployment, error)
	CancelDeployment(ctx context.Context, id string) (*deployment.Deployment, error)
	DeleteDeployment(ctx context.Context, id string) (*deployment.DeleteResult, error)
	ListProjects(ctx context.Context, limit int) ([]deployment.Project, error)
}

// DeploymentCleaner runs a cleanup pass
type DeploymentCleaner interface {
	Cleanup(ctx context.Context, input deployment.CleanupInput) (*deployment.CleanupReport, error)
}

const listDeploymentsSchema = `{
  "type": "object",
  "properties": {
    "projectId": {"type": "string", "minLength": 1},
    "limit": {"type": "integer", "minimum": 1, "maximum": 100, "default": 20},
    "target": {"type": "string", "enum": ["production", "preview"]},
    "state": {"type": "string", "enum": ["BUILDING", "ERROR", "INITIALIZING", "QUEUED", "READY", "CANCELED"]}
  },
  "additionalProperties": false
}`

const deploymentIDSchema = `{
  "type": "object",
  "properties": {
    "deploymentId": {"type": "string", "minLength": 1, "description": "Deployment id or url"}
  },
  "required": ["deploymentId"],
  "additionalProperties": false
}`

const listProjectsSchema = `{
  "type": "object",
  "properties": {
    "limit": {"type": "integer", "minimum": 1, "maximum": 100, "default": 20}
  },
  "additionalProperties": false
}`

const cleanupSchema = `{
  "type": "object",
  "properties": {
    "projectId": {"type": "string", "minLength": 1},
    "olderThanDays": {"type": "integer", "minimum": 1, "default": 7},
    "keepCount": {"type": "integer", "minimum": 0, "default": 5},
    "excludeProduction": {"type": "boolean", "default": true},
    "dryRun": {"type": "boolean", "default": false}
  },
  "additionalProperties": false
}`

type listDeploymentsArgs struct {
	ProjectID string `json:"projectId"`
	Limit     int    `json:"limit"`
	Target    string `json:"target"`
	State     string `json:"state"`
}

type deploymentIDArgs struct {
	DeploymentID string `json:"deploymentId"`
}

type listProjectsArgs struct {
	Limit int `json:"limit"`
}

type cleanupArgs struct {
	ProjectID         string `json:"projectId"`
	OlderThanDays     int    `json:"olderThanDays"`
	KeepCount         int    `json:"keepCount"`
	ExcludeProduction bool   `json:"excludeProduction"`
	DryRun            bool   `json:"dryRun"`
}

// DeploymentList is the answer of list_deployments
type DeploymentList struct {
	Count       int                     `json:"count"`
	Deployments []deployment.Deployment `json:"deployments"`
}

// ProjectList is the answer of list_projects
type ProjectList struct {
	Count    int                  `json:"count"`
	Projects []deployment.Project `json:"projects"`
}

// DeploymentTools returns the catalog of the deployment tool server
func DeploymentTools(api DeploymentAPI, cleaner DeploymentCleaner) []mcp.Tool {
	return []mcp.Tool{
		{
			Name:        "list_deployments",
			Description: "List deployments newest first, optionally for one project, target or state.",
			InputSchema: listDeploymentsSchema,
			Handler: mcp.Handle(func(ctx context.Context, in listDeploymentsArgs) (any, error) {
				list, err := api.ListDeployments(ctx, deployment.ListInput{
					ProjectID: in.ProjectID,
					Limit:     in.Limit,
					Target:    in.Target,
					State:     in.State,
				})
				if err != nil {
					return nil, err
				}
				return DeploymentList{Count: len(list), Deployments: list}, nil
			}),
		},
		{
			Name:        "get_deployment",
			Description: "Get one deployment by id or url.",
			InputSchema: deploymentIDSchema,
			Handler: mcp.Handle(func(ctx context.Context, in deploymentIDArgs) (any, error) {
				return api.GetDeployment(ctx, in.DeploymentID)
			}),
		},
		{
			Name:        "cancel_deployment",
			Description: "Cancel a deployment that is still building.",
			InputSchema: deploymentIDSchema,
			Handler: mcp.Handle(func(ctx context.Context, in deploymentIDArgs) (any, error) {
				return api.CancelDeployment(ctx, in.DeploymentID)
			}),
		},
		{
			Name:        "delete_deployment",
			Description: "Delete a deployment. Production deployments are always refused.",
			InputSchema: deploymentIDSchema,
			Handler: mcp.Handle(func(ctx context.Context, in deploymentIDArgs) (any, error) {
				return api.DeleteDeployment(ctx, in.DeploymentID)
			}),
		},
		{
			Name:        "list_projects",
			Description: "List projects of the account or team.",
			InputSchema: listProjectsSchema,
			Handler: mcp.Handle(func(ctx context.Context, in listProjectsArgs) (any, error) {
				projects, err := api.ListProjects(ctx, in.Limit)
				if err != nil {
					return nil, err
				}
				return ProjectList{Count: len(projects), Projects: projects}, nil
			}),
		},
		{
			Name: "cleanup_old_deployments",
			Description: "Delete deployments older than olderThanDays, keeping the newest keepCount. " +
				"Every listing page of the project is scanned. Production deployments are never deleted. " +
				"Use dryRun to preview.",
			InputSchema: cleanupSchema,
			Handler: mcp.Handle(func(ctx context.Context, in cleanupArgs) (any, error) {
				return cleaner.Cleanup(ctx, deployment.CleanupInput{
					ProjectID:         in.ProjectID,
					OlderThanDays:     in.OlderThanDays,
					KeepCount:         in.KeepCount,
					ExcludeProduction: in.ExcludeProduction,
					DryRun:            in.DryRun,
				})
			}),
		},
	}
}
