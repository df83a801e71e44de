package diagram

import (
	"time"

	"github.com/ritzau/blueprint/pkg/model"
)

// ExampleProjectName names the built-in example diagram.
const ExampleProjectName = "SaaS Starter"

// Example builds the SaaS Starter diagram: a web app, an API server, a database
// and an auth service.
func Example(createdAt time.Time) *model.Graph {
	g := model.NewGraph(createdAt)

	g.AddNode(model.Node{
		ID: "frontend-1", Category: model.CategoryFrontend, Label: "Web App",
		Position: model.Position{X: 100, Y: 100},
		Meta: model.NodeMeta{
			Description: "React SPA with dashboard, auth flows, and settings pages",
			TechStack:   []string{"React (Vite)", "TypeScript", "Tailwind CSS"},
		},
	})
	g.AddNode(model.Node{
		ID: "backend-1", Category: model.CategoryBackend, Label: "API Server",
		Position: model.Position{X: 300, Y: 100},
		Meta: model.NodeMeta{
			Description: "REST API handling business logic, user management, and data access",
			TechStack:   []string{"FastAPI", "Python"},
		},
	})
	g.AddNode(model.Node{
		ID: "storage-1", Category: model.CategoryStorage, Label: "Database",
		Position: model.Position{X: 300, Y: 300},
		Meta: model.NodeMeta{
			Description: "PostgreSQL database for users, subscriptions, and application data",
			TechStack:   []string{"PostgreSQL", "Supabase"},
		},
	})
	g.AddNode(model.Node{
		ID: "auth-1", Category: model.CategoryAuth, Label: "Auth Service",
		Position: model.Position{X: 100, Y: 300},
		Meta: model.NodeMeta{
			Description: "Authentication and authorization via Supabase Auth",
			TechStack:   []string{"Supabase"},
		},
	})

	g.AddEdge(model.Edge{ID: "e1", Source: "frontend-1", Target: "backend-1", Label: "REST API calls"})
	g.AddEdge(model.Edge{ID: "e2", Source: "frontend-1", Target: "auth-1", Label: "Auth flows (login, signup, logout)"})
	g.AddEdge(model.Edge{ID: "e3", Source: "backend-1", Target: "storage-1", Label: "Database queries"})
	g.AddEdge(model.Edge{ID: "e4", Source: "backend-1", Target: "auth-1", Label: "Token verification"})
	return g
}
