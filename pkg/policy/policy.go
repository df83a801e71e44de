// Package policy holds the static, read-only tables that drive document generation.
// Every table is keyed by model.Category and has an entry for each architecture category.
package policy

import (
	"fmt"
	"slices"

	"github.com/ritzau/blueprint/pkg/model"
)

// Placeholder prefix marking text a downstream agent is expected to fill in.
const Placeholder = "# AI:"

// Constraints groups the per-category engineering constraints.
type Constraints struct {
	Security     []string
	Performance  []string
	Architecture []string
}

// Phase is a slot in the fixed build order.
type Phase struct {
	Number    int
	Name      string
	Rationale string
}

// Label renders the phase heading, e.g. "Phase 2: Storage".
func (p Phase) Label() string {
	return fmt.Sprintf("Phase %d: %s", p.Number, p.Name)
}

// Profile is everything the generators know about one category.
type Profile struct {
	Category             model.Category
	Label                string
	Description          string
	Responsibilities     []string
	AntiResponsibilities []AntiResponsibility
	DefaultTechStack     string
	Constraints          Constraints
	Phase                Phase
	IsStatement          string
}

// Lookup returns the profile for c. A miss means the caller let an unvalidated
// category through; it is reported as model.ErrUnknownCategory.
func Lookup(c model.Category) (Profile, error) {
	p, ok := profiles[c]
	if !ok {
		return Profile{}, fmt.Errorf("policy lookup: %w: %q", model.ErrUnknownCategory, c)
	}
	p.Responsibilities = slices.Clone(p.Responsibilities)
	p.AntiResponsibilities = slices.Clone(p.AntiResponsibilities)
	p.Constraints.Security = slices.Clone(p.Constraints.Security)
	p.Constraints.Performance = slices.Clone(p.Constraints.Performance)
	p.Constraints.Architecture = slices.Clone(p.Constraints.Architecture)
	return p, nil
}

// BuildOrder is the fixed implementation sequence over categories.
var BuildOrder = []model.Category{
	model.CategoryStorage,
	model.CategoryAuth,
	model.CategoryBackend,
	model.CategoryFrontend,
	model.CategoryExternal,
	model.CategoryBackground,
}

// FoundationPhase always opens the build order.
var FoundationPhase = Phase{Number: 1, Name: "Foundation"}

// FoundationItem is the single, unchecked item of the foundation phase.
const FoundationItem = "Project setup, tooling, and dependencies"

// PolishItems close the build order.
var PolishItems = []string{
	"Error handling standardization",
	"Performance optimization",
	"Monitoring and logging",
	"# AI: Add project-specific polish tasks",
}

// CategoryStatement ties a fixed sentence to a category.
type CategoryStatement struct {
	Category  model.Category
	Statement string
}

// AbsenceStatements are the IS NOT sentences, emitted in this order when their
// category has no nodes.
var AbsenceStatements = []CategoryStatement{
	{model.CategoryFrontend, "A user-facing UI (backend/API only)"},
	{model.CategoryBackground, "A background job processing system (synchronous only)"},
	{model.CategoryExternal, "A system with extensive third-party integrations"},
}

// StackPhrases contribute to the System Overview stack summary when their category is present.
var StackPhrases = map[model.Category]string{
	model.CategoryFrontend: "React/Vue/similar frontend",
	model.CategoryBackend:  "Node.js/Python/similar backend",
}

var profiles = map[model.Category]Profile{
	model.CategoryFrontend: {
		Category:    model.CategoryFrontend,
		Label:       "Frontend",
		Description: "UI components, pages, and client-side logic",
		Responsibilities: []string{
			"Render user interface components and pages",
			"Handle user interactions and form submissions",
			"Manage client-side state and routing",
			"Communicate with backend APIs for data",
		},
		AntiResponsibilities: frontendAnti,
		DefaultTechStack:     "React, Vue, or similar modern framework",
		Constraints: Constraints{
			Security: []string{
				"Sanitize all user inputs to prevent XSS attacks",
				"Use HTTPS only for API communications",
				"Implement Content Security Policy headers",
			},
			Performance: []string{
				"Lazy load routes and heavy components",
				"Optimize bundle size with code splitting",
				"Debounce expensive operations like API calls",
			},
			Architecture: []string{
				"Keep components small and single-responsibility",
				"Use composition over inheritance for reusability",
				"Separate presentational and container components",
			},
		},
		Phase:       Phase{Number: 5, Name: "Frontend", Rationale: "UI consuming the backend API"},
		IsStatement: "A user-facing web application with interactive UI",
	},
	model.CategoryBackend: {
		Category:    model.CategoryBackend,
		Label:       "Backend",
		Description: "API endpoints, server logic, and business rules",
		Responsibilities: []string{
			"Validate all incoming request payloads",
			"Enforce authentication and authorization rules",
			"Execute business logic and data transformations",
			"Return consistent, well-structured API responses",
		},
		AntiResponsibilities: backendAnti,
		DefaultTechStack:     "Node.js + Express, FastAPI, or similar",
		Constraints: Constraints{
			Security: []string{
				"Validate ALL inputs with schema validation library",
				"Use parameterized queries to prevent SQL injection",
				"Implement rate limiting on all endpoints",
				"Set secure HTTP headers (helmet.js or equivalent)",
			},
			Performance: []string{
				"Use connection pooling for database access",
				"Implement pagination for list endpoints",
				"Add caching for expensive queries",
				"Set reasonable request timeout limits",
			},
			Architecture: []string{
				"Separate controllers (routing) from services (business logic)",
				"Use dependency injection for testability",
				"Keep request handlers thin, services thick",
				"Structure code by feature/resource, not layer",
			},
		},
		Phase:       Phase{Number: 4, Name: "Backend", Rationale: "Business logic and API endpoints"},
		IsStatement: "An API service handling business logic and data access",
	},
	model.CategoryStorage: {
		Category:    model.CategoryStorage,
		Label:       "Storage",
		Description: "Databases, file storage, and caching layers",
		Responsibilities: []string{
			"Persist all business data with referential integrity",
			"Provide transactional guarantees for operations",
			"Support efficient queries via proper indexing",
			"Maintain data consistency and backup recovery",
		},
		AntiResponsibilities: storageAnti,
		DefaultTechStack:     "PostgreSQL, MySQL, MongoDB, or similar",
		Constraints: Constraints{
			Security: []string{
				"Encrypt sensitive columns at rest",
				"Use minimal privilege database users",
				"Audit log for sensitive data access",
				"Implement row-level security if supported",
			},
			Performance: []string{
				"Create indexes for frequently filtered columns",
				"Use connection pooling",
				"Monitor slow queries and optimize",
				"Implement read replicas if read-heavy",
			},
			Architecture: []string{
				"Normalize to 3NF, denormalize only with measured need",
				"Use UUIDs for primary keys if distributed",
				"All tables have created_at and updated_at timestamps",
				"Soft delete via deleted_at column when needed",
			},
		},
		Phase:       Phase{Number: 2, Name: "Storage", Rationale: "Schema and data models first (everything depends on data)"},
		IsStatement: "A system with persistent data storage",
	},
	model.CategoryAuth: {
		Category:    model.CategoryAuth,
		Label:       "Auth",
		Description: "Authentication, authorization, and user management",
		Responsibilities: []string{
			"Authenticate users via secure credential verification",
			"Generate and validate session tokens or JWTs",
			"Enforce access control and permission checks",
			"Handle password reset and account recovery flows",
		},
		AntiResponsibilities: authAnti,
		DefaultTechStack:     "JWT, OAuth2, or session-based authentication",
		Constraints: Constraints{
			Security: []string{
				"Use bcrypt or argon2 for password hashing",
				"Implement multi-factor authentication for sensitive operations",
				"Set short expiry times for session tokens",
				"Revoke tokens on logout or password change",
				"Rate limit authentication attempts",
			},
			Performance: []string{
				"Cache valid tokens to reduce verification overhead",
				"Use token-based auth to avoid database lookups",
				"Set reasonable token expiry to balance security and UX",
			},
			Architecture: []string{
				"Separate authentication (who are you) from authorization (what can you do)",
				"Use middleware for token validation",
				"Store minimal data in tokens (user ID, role only)",
				"Centralize permission checks in authorization service",
			},
		},
		Phase:       Phase{Number: 3, Name: "Authentication", Rationale: "Auth before protected features"},
		IsStatement: "A system with user authentication and authorization",
	},
	model.CategoryExternal: {
		Category:    model.CategoryExternal,
		Label:       "External",
		Description: "Third-party APIs and external service integrations",
		Responsibilities: []string{
			"Integrate with third-party service APIs",
			"Handle rate limits and retry logic",
			"Transform external data formats to internal schemas",
			"Manage API credentials securely via environment variables",
		},
		AntiResponsibilities: externalAnti,
		DefaultTechStack:     "Official SDK for target service",
		Constraints: Constraints{
			Security: []string{
				"Store API keys in environment variables, never in code",
				"Validate webhook signatures to prevent spoofing",
				"Use OAuth with minimal required scopes",
				"Rotate API keys periodically",
			},
			Performance: []string{
				"Implement circuit breaker pattern for failing services",
				"Cache external API responses when appropriate",
				"Set aggressive timeouts to prevent hanging",
				"Use retry with exponential backoff",
			},
			Architecture: []string{
				"Wrap external APIs in adapter/facade pattern",
				"Transform external data at integration boundary",
				"Design for eventual consistency if service fails",
				"Version external integration interfaces",
			},
		},
		Phase:       Phase{Number: 6, Name: "Integration", Rationale: "Third-party service connections"},
		IsStatement: "A system integrating with external third-party services",
	},
	model.CategoryBackground: {
		Category:    model.CategoryBackground,
		Label:       "Background",
		Description: "Background jobs, cron tasks, and queue workers",
		Responsibilities: []string{
			"Execute scheduled or event-driven background tasks",
			"Process items from job queues reliably",
			"Implement retry logic with exponential backoff",
			"Monitor job failures and send alerts",
		},
		AntiResponsibilities: backgroundAnti,
		DefaultTechStack:     "Redis/Bull, Celery, or similar job queue",
		Constraints: Constraints{
			Security: []string{
				"Validate job payloads before processing",
				"Run jobs with minimal required permissions",
				"Audit log for sensitive background operations",
			},
			Performance: []string{
				"Process jobs in parallel when possible",
				"Set job priorities based on business criticality",
				"Monitor queue depth and scale workers",
				"Implement job timeout to prevent hanging",
			},
			Architecture: []string{
				"Design jobs to be idempotent (safe to retry)",
				"Use persistent queue (Redis, RabbitMQ, etc.)",
				"Store job results for debugging",
				"Separate job definition from job execution",
			},
		},
		Phase:       Phase{Number: 7, Name: "Background Jobs", Rationale: "Asynchronous processing"},
		IsStatement: "A system with asynchronous background processing",
	},
}
