package policy

import "fmt"

// AntiResponsibility is a forbidden pattern for a category together with the
// reason it is forbidden and what to do instead.
type AntiResponsibility struct {
	Pattern string `json:"pattern" yaml:"pattern"`
	Reason  string `json:"reason" yaml:"reason"`
	Instead string `json:"instead,omitempty" yaml:"instead,omitempty"`
}

// RenderMode selects how anti-responsibilities appear in a structured record.
type RenderMode string

const (
	// RenderLegacy flattens each rule into one combined pattern and reason string.
	RenderLegacy RenderMode = "legacy"
	// RenderStructured keeps pattern, reason and instead as separate fields.
	RenderStructured RenderMode = "structured"
)

// ParseRenderMode accepts "legacy" or "structured"; empty selects legacy.
func ParseRenderMode(s string) (RenderMode, error) {
	switch RenderMode(s) {
	case "", RenderLegacy:
		return RenderLegacy, nil
	case RenderStructured:
		return RenderStructured, nil
	}
	return "", fmt.Errorf("unknown anti-responsibility render mode %q", s)
}

// Legacy renders the rule as a single line. The reason is always kept.
func (a AntiResponsibility) Legacy() string {
	return a.Pattern + " — " + a.Reason
}

// AntiResponsibilityPlaceholder follows the category rules in every rendering.
const AntiResponsibilityPlaceholder = "# AI: Add component-specific boundaries"

var frontendAnti = []AntiResponsibility{
	{
		Pattern: "NEVER store sensitive data in localStorage or sessionStorage",
		Reason:  "Client storage is accessible to any script on the page, including XSS attacks",
		Instead: "Use httpOnly cookies for tokens, or encrypt sensitive data before storing",
	},
	{
		Pattern: "NEVER trust client-side validation alone",
		Reason:  "Client code can be bypassed or modified by users",
		Instead: "Always re-validate on the server; client validation is for UX only",
	},
	{
		Pattern: "NEVER make direct database connections",
		Reason:  "Exposes credentials and bypasses business logic",
		Instead: "All data flows through backend API endpoints",
	},
	{
		Pattern: "NEVER implement business logic in UI components",
		Reason:  "Makes logic hard to test and leads to duplication",
		Instead: "Keep components presentational; logic lives in services/hooks/backend",
	},
}

var backendAnti = []AntiResponsibility{
	{
		Pattern: "NEVER trust client-provided data without validation",
		Reason:  "Clients can send any data, including malicious payloads",
		Instead: "Validate ALL inputs with schema validation (Zod, Joi, etc.)",
	},
	{
		Pattern: "NEVER expose internal error details to clients",
		Reason:  "Stack traces reveal implementation details useful for attacks",
		Instead: "Log full errors internally; return safe, generic messages to clients",
	},
	{
		Pattern: "NEVER store secrets in code or version control",
		Reason:  "Secrets in code get leaked through repos, logs, error messages",
		Instead: "Use environment variables or secret management services",
	},
	{
		Pattern: "NEVER trust client-provided IDs for authorization",
		Reason:  "Users can manipulate IDs to access others' data",
		Instead: "Always verify ownership/permissions server-side",
	},
}

var storageAnti = []AntiResponsibility{
	{
		Pattern: "NEVER expose direct connections to frontend",
		Reason:  "Bypasses authentication, authorization, and business logic",
		Instead: "All access through backend API layer",
	},
	{
		Pattern: "NEVER store computed values that can be derived",
		Reason:  "Creates data inconsistency when source changes",
		Instead: "Calculate at query time or use materialized views with refresh",
	},
	{
		Pattern: "NEVER use database triggers for business logic",
		Reason:  "Triggers are hard to test, debug, and reason about",
		Instead: "Keep logic in application layer where it's explicit and testable",
	},
	{
		Pattern: "NEVER store large files/blobs in the database",
		Reason:  "Bloats database, slows backups, hurts performance",
		Instead: "Use object storage (S3, GCS) and store URLs/references",
	},
}

var authAnti = []AntiResponsibility{
	{
		Pattern: "NEVER store plain-text passwords",
		Reason:  "Database breaches expose all user credentials",
		Instead: "Use bcrypt, argon2, or scrypt with appropriate cost factors",
	},
	{
		Pattern: "NEVER implement custom cryptography",
		Reason:  "Crypto is extremely hard to get right; subtle bugs are exploitable",
		Instead: "Use battle-tested libraries (e.g., crypto built-ins, jose for JWT)",
	},
	{
		Pattern: "NEVER skip rate limiting on auth endpoints",
		Reason:  "Enables brute force and credential stuffing attacks",
		Instead: "Rate limit by IP and account; implement exponential backoff",
	},
	{
		Pattern: "NEVER log passwords, tokens, or session data",
		Reason:  "Logs are often less protected than production data",
		Instead: "Mask sensitive fields; log only non-sensitive identifiers",
	},
}

var externalAnti = []AntiResponsibility{
	{
		Pattern: "NEVER store API keys in code",
		Reason:  "Keys in code end up in version control and logs",
		Instead: "Use environment variables or secret management",
	},
	{
		Pattern: "NEVER assume external services are always available",
		Reason:  "External services have outages, rate limits, and latency spikes",
		Instead: "Implement timeouts, retries with backoff, and fallback behavior",
	},
	{
		Pattern: "NEVER trust external data without validation",
		Reason:  "External APIs can return unexpected formats or malicious data",
		Instead: "Validate/sanitize all external data before use",
	},
	{
		Pattern: "NEVER ignore rate limits",
		Reason:  "Exceeding limits can get your API access revoked",
		Instead: "Implement request queuing and respect rate limit headers",
	},
}

var backgroundAnti = []AntiResponsibility{
	{
		Pattern: "NEVER assume jobs run exactly once",
		Reason:  "Jobs can be retried on failure, timeout, or system restart",
		Instead: "Design all jobs to be idempotent (safe to run multiple times)",
	},
	{
		Pattern: "NEVER store job state only in memory",
		Reason:  "Memory is lost on restart; jobs will be lost",
		Instead: "Use persistent queue (Redis, PostgreSQL, RabbitMQ)",
	},
	{
		Pattern: "NEVER ignore failed jobs",
		Reason:  "Silent failures hide bugs and data inconsistencies",
		Instead: "Implement dead letter queues and alerting for failures",
	},
	{
		Pattern: "NEVER block request handlers with long-running work",
		Reason:  "Ties up server resources and degrades user experience",
		Instead: "Queue work for background processing; return immediately",
	},
}
