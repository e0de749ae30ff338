package remote

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/diewo77/sp-admin/internal/models"
)

const idParam = "{id}"

// Endpoint describes the routes of one remote collection. Routes may contain
// an {id} placeholder.
type Endpoint struct {
	// Collection labels logs, metrics and the breaker.
	Collection string
	List       string
	Item       string
	// Create defaults to List when empty.
	Create string
}

// Bind fills the {id} placeholder of the list route, for collections scoped
// to a parent record (work summaries of one user).
func (e Endpoint) Bind(id models.ID) Endpoint {
	e.List = strings.ReplaceAll(e.List, idParam, url.PathEscape(id.String()))
	return e
}

func (e Endpoint) itemPath(id models.ID) (string, error) {
	if e.Item == "" {
		return "", fmt.Errorf("remote: %s has no item route", e.Collection)
	}
	if id == "" {
		return "", fmt.Errorf("remote: %s: empty id", e.Collection)
	}
	return strings.ReplaceAll(e.Item, idParam, url.PathEscape(id.String())), nil
}

func (e Endpoint) createPath() string {
	if e.Create != "" {
		return e.Create
	}
	return e.List
}

// Remote API routes.
var (
	Notifications = Endpoint{
		Collection: "notifications",
		List:       "/notifications/",
		Item:       "/notifications/{id}",
		Create:     "/notifications",
	}
	Workoffs = Endpoint{
		Collection: "workoffs",
		List:       "/workoffs/",
		Item:       "/workoffs/{id}",
		Create:     "/manageworkoffs",
	}
	Providers = Endpoint{
		Collection: "serviceproviders",
		List:       "/users/serviceproviders",
		Item:       "/users/find/{id}",
	}
	ActiveProviders = Endpoint{
		Collection: "activeserviceproviders",
		List:       "/users/activeserviceproviders",
		Item:       "/users/find/{id}",
	}
	WorkSummaries = Endpoint{
		Collection: "worksummaries",
		List:       "/worksummaries/user/{id}",
	}
	Projects = Endpoint{
		Collection: "projects",
		List:       "/projects",
	}
)
