package deployment

import (
	"errors"
	"fmt"
	"time"
)

// Target values reported by the API
const (
	TargetProduction = "production"
	TargetPreview    = "preview"
)

// ErrProductionProtected is returned when a production deployment would be deleted
var ErrProductionProtected = errors.New("vercel: production deployments cannot be deleted")

// APIError is a non-2xx API response
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("vercel: HTTP %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("vercel: HTTP %d %s: %s", e.StatusCode, e.Code, e.Message)
}

// IsNotFound reports whether err is a 404 API error
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == 404
}

// Deployment is one deployment of a project
type Deployment struct {
	UID          string    `json:"uid"`
	Name         string    `json:"name"`
	URL          string    `json:"url"`
	State        string    `json:"state"`
	Target       string    `json:"target"`
	ProjectID    string    `json:"projectId,omitempty"`
	Creator      string    `json:"creator,omitempty"`
	InspectorURL string    `json:"inspectorUrl,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// IsProduction reports whether the deployment targets production
func (d Deployment) IsProduction() bool {
	return d.Target == TargetProduction
}

// Project is a Vercel project
type Project struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Framework string    `json:"framework,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// DeleteResult is the outcome of a delete call
type DeleteResult struct {
	UID   string `json:"uid"`
	State string `json:"state"`
}

// ListInput filters a deployment listing
type ListInput struct {
	ProjectID string
	Limit     int
	Target    string
	State     string
	// Until resumes a listing at a pagination cursor (unix milliseconds)
	Until int64
}

// DeploymentPage is one page of a listing. Next is zero on the last page.
type DeploymentPage struct {
	Deployments []Deployment
	Next        int64
}

// apiDeployment covers both the list (v6) and detail (v13) response shapes
type apiDeployment struct {
	UID          string  `json:"uid"`
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	URL          string  `json:"url"`
	State        string  `json:"state"`
	ReadyState   string  `json:"readyState"`
	Target       *string `json:"target"`
	ProjectID    string  `json:"projectId"`
	Created      int64   `json:"created"`
	CreatedAt    int64   `json:"createdAt"`
	InspectorURL string  `json:"inspectorUrl"`
	Creator      *struct {
		Username string `json:"username"`
		Email    string `json:"email"`
	} `json:"creator"`
}

func (d apiDeployment) toDeployment() Deployment {
	out := Deployment{
		UID:          d.UID,
		Name:         d.Name,
		URL:          d.URL,
		State:        d.State,
		Target:       TargetPreview,
		ProjectID:    d.ProjectID,
		InspectorURL: d.InspectorURL,
	}
	if out.UID == "" {
		out.UID = d.ID
	}
	if out.State == "" {
		out.State = d.ReadyState
	}
	if d.Target != nil && *d.Target != "" {
		out.Target = *d.Target
	}
	created := d.Created
	if created == 0 {
		created = d.CreatedAt
	}
	out.CreatedAt = time.UnixMilli(created).UTC()
	if d.Creator != nil {
		out.Creator = d.Creator.Username
		if out.Creator == "" {
			out.Creator = d.Creator.Email
		}
	}
	return out
}

type apiProject struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Framework string `json:"framework"`
	CreatedAt int64  `json:"createdAt"`
	UpdatedAt int64  `json:"updatedAt"`
}

func (p apiProject) toProject() Project {
	return Project{
		ID:        p.ID,
		Name:      p.Name,
		Framework: p.Framework,
		CreatedAt: time.UnixMilli(p.CreatedAt).UTC(),
		UpdatedAt: time.UnixMilli(p.UpdatedAt).UTC(),
	}
}
