package devenv

// SentryTestConfig points the live-dashboard tests at a running Sentry.
// It is read from <dev_state>/sentry_config.json5.
type SentryTestConfig struct {
	BaseUrl  string `json:"base_url"`
	Username string `json:"username"`
	Password string `json:"password"`
	// a project that exists on the dashboard
	ProjectSlug string `json:"project_slug"`
	ProjectId   string `json:"project_id"`
}

const SentryTestConfigFile = "sentry_config.json5"
