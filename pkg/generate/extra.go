package generate

import (
	"fmt"

	"github.com/ritzau/blueprint/pkg/model"
	"github.com/ritzau/blueprint/pkg/render"
)

// ExtraFields is the category-specific part of a component spec. There is one
// implementation per architecture category.
type ExtraFields interface {
	Category() model.Category
	Record() render.Record
}

// ExtraFieldsFor returns the extra-field schema of c filled with placeholders.
func ExtraFieldsFor(c model.Category) (ExtraFields, error) {
	switch c {
	case model.CategoryFrontend:
		return defaultFrontendFields(), nil
	case model.CategoryBackend:
		return defaultBackendFields(), nil
	case model.CategoryStorage:
		return defaultStorageFields(), nil
	case model.CategoryAuth:
		return defaultAuthFields(), nil
	case model.CategoryExternal:
		return defaultExternalFields(), nil
	case model.CategoryBackground:
		return defaultBackgroundFields(), nil
	}
	return nil, fmt.Errorf("extra fields: %w: %q", model.ErrUnknownCategory, c)
}

type UIPattern struct {
	Name  string
	Usage string
}

type FrontendFields struct {
	RoutingStrategy string
	StateManagement string
	Accessibility   []string
	UIPatterns      []UIPattern
}

func defaultFrontendFields() FrontendFields {
	return FrontendFields{
		RoutingStrategy: "# AI: Describe routing approach (e.g., React Router, file-based)",
		StateManagement: "# AI: Describe state approach (e.g., Context, Zustand, Redux)",
		Accessibility: []string{
			"Use semantic HTML elements",
			"Ensure keyboard navigation support",
			"# AI: Add project-specific a11y requirements",
		},
		UIPatterns: []UIPattern{{
			Name:  "# AI: Add common UI pattern",
			Usage: "# AI: Describe when to use this pattern",
		}},
	}
}

func (FrontendFields) Category() model.Category { return model.CategoryFrontend }

func (f FrontendFields) Record() render.Record {
	patterns := make([]render.Record, len(f.UIPatterns))
	for i, p := range f.UIPatterns {
		patterns[i] = render.Record{{Key: "name", Value: p.Name}, {Key: "usage", Value: p.Usage}}
	}
	return render.Record{
		{Key: "routing_strategy", Value: f.RoutingStrategy},
		{Key: "state_management", Value: f.StateManagement},
		{Key: "accessibility", Value: f.Accessibility},
		{Key: "ui_patterns", Value: patterns},
	}
}

type EndpointPattern struct {
	Pattern string
	Methods []string
	Auth    string
}

type BackendFields struct {
	APIStyle         string
	EndpointPatterns []EndpointPattern
	ErrorHandling    string
}

func defaultBackendFields() BackendFields {
	return BackendFields{
		APIStyle: "# AI: REST|GraphQL|gRPC|tRPC",
		EndpointPatterns: []EndpointPattern{{
			Pattern: "# AI: Add URL pattern (e.g., /api/v1/{resource})",
			Methods: []string{"GET", "POST"},
			Auth:    "required|optional|none",
		}},
		ErrorHandling: "# AI: Document standard error response format.\n" +
			"Example: { error: string, code: string, details?: object }",
	}
}

func (BackendFields) Category() model.Category { return model.CategoryBackend }

func (f BackendFields) Record() render.Record {
	endpoints := make([]render.Record, len(f.EndpointPatterns))
	for i, e := range f.EndpointPatterns {
		endpoints[i] = render.Record{
			{Key: "pattern", Value: e.Pattern},
			{Key: "methods", Value: e.Methods},
			{Key: "auth", Value: e.Auth},
		}
	}
	return render.Record{
		{Key: "api_style", Value: f.APIStyle},
		{Key: "endpoint_patterns", Value: endpoints},
		{Key: "error_handling", Value: f.ErrorHandling},
	}
}

type StorageFields struct {
	SchemaNotes      string
	BackupStrategy   string
	IndexingStrategy string
}

func defaultStorageFields() StorageFields {
	return StorageFields{
		SchemaNotes:      "# AI: Document key entities and relationships.\nExample: users, orders, order_items",
		BackupStrategy:   "# AI: Describe backup approach.\nExample: Daily automated backups with 30-day retention",
		IndexingStrategy: "# AI: Document indexing guidelines.\nExample: Index all foreign keys and frequently filtered columns",
	}
}

func (StorageFields) Category() model.Category { return model.CategoryStorage }

func (f StorageFields) Record() render.Record {
	return render.Record{
		{Key: "schema_notes", Value: f.SchemaNotes},
		{Key: "backup_strategy", Value: f.BackupStrategy},
		{Key: "indexing_strategy", Value: f.IndexingStrategy},
	}
}

type AuthProvider struct {
	Name   string
	Scopes []string
}

type AuthFields struct {
	AuthStrategy  string
	SecurityNotes string
	Providers     []AuthProvider
}

func defaultAuthFields() AuthFields {
	return AuthFields{
		AuthStrategy: "# AI: JWT|Session|OAuth2|API_Key",
		SecurityNotes: "# AI: Document authentication and authorization approach.\n" +
			"Include password policy, session management, token expiry.",
		Providers: []AuthProvider{{
			Name:   "# AI: Add OAuth provider if applicable (Google, GitHub, etc.)",
			Scopes: []string{"# AI: Required scopes"},
		}},
	}
}

func (AuthFields) Category() model.Category { return model.CategoryAuth }

func (f AuthFields) Record() render.Record {
	providers := make([]render.Record, len(f.Providers))
	for i, p := range f.Providers {
		providers[i] = render.Record{{Key: "name", Value: p.Name}, {Key: "scopes", Value: p.Scopes}}
	}
	return render.Record{
		{Key: "auth_strategy", Value: f.AuthStrategy},
		{Key: "security_notes", Value: f.SecurityNotes},
		{Key: "providers", Value: providers},
	}
}

type ServiceDetails struct {
	Provider    string
	APIVersion  string
	Environment string
}

type ExternalFields struct {
	ServiceDetails ServiceDetails
	ErrorHandling  []string
	RateLimits     []string
}

func defaultExternalFields() ExternalFields {
	return ExternalFields{
		ServiceDetails: ServiceDetails{
			Provider:    "# AI: Service name (e.g., Stripe, SendGrid)",
			APIVersion:  "# AI: API version being used",
			Environment: "# AI: Dev/staging/prod configuration notes",
		},
		ErrorHandling: []string{
			"Implement circuit breaker for repeated failures",
			"Log all external API errors with correlation IDs",
			"# AI: Add service-specific error handling",
		},
		RateLimits: []string{"# AI: Document known rate limits and how to handle them"},
	}
}

func (ExternalFields) Category() model.Category { return model.CategoryExternal }

func (f ExternalFields) Record() render.Record {
	return render.Record{
		{Key: "service_details", Value: render.Record{
			{Key: "provider", Value: f.ServiceDetails.Provider},
			{Key: "api_version", Value: f.ServiceDetails.APIVersion},
			{Key: "environment", Value: f.ServiceDetails.Environment},
		}},
		{Key: "error_handling", Value: f.ErrorHandling},
		{Key: "rate_limits", Value: f.RateLimits},
	}
}

type JobDefinition struct {
	Name        string
	Trigger     string
	Frequency   string
	RetryPolicy string
}

type BackgroundFields struct {
	JobQueue string
	Jobs     []JobDefinition
}

func defaultBackgroundFields() BackgroundFields {
	return BackgroundFields{
		JobQueue: "# AI: Queue technology (e.g., Redis + Bull, RabbitMQ, AWS SQS)",
		Jobs: []JobDefinition{{
			Name:        "# AI: Job name",
			Trigger:     "Event-driven|Cron",
			Frequency:   `# AI: Schedule (e.g., "0 2 * * *") or event description`,
			RetryPolicy: `# AI: Retry approach (e.g., "3 retries with exponential backoff")`,
		}},
	}
}

func (BackgroundFields) Category() model.Category { return model.CategoryBackground }

func (f BackgroundFields) Record() render.Record {
	jobs := make([]render.Record, len(f.Jobs))
	for i, j := range f.Jobs {
		jobs[i] = render.Record{
			{Key: "name", Value: j.Name},
			{Key: "trigger", Value: j.Trigger},
			{Key: "frequency", Value: j.Frequency},
			{Key: "retry_policy", Value: j.RetryPolicy},
		}
	}
	return render.Record{
		{Key: "job_queue", Value: f.JobQueue},
		{Key: "jobs", Value: jobs},
	}
}
