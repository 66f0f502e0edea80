package config

// RedactedConfig returns a shallow copy of cfg with sensitive fields replaced
// by the redaction placeholder "***". Use this when logging or printing the
// active configuration so secrets are never accidentally exposed.
func RedactedConfig(cfg *Config) Config {
	out := *cfg // shallow copy of the top-level struct

	// Exchanges
	if cfg.Exchanges != nil {
		out.Exchanges = make(map[string]ExchangeConfig, len(cfg.Exchanges))
		for name, ex := range cfg.Exchanges {
			redact(&ex.APIKey)
			redact(&ex.APISecret)
			out.Exchanges[name] = ex
		}
	}

	// Postgres
	out.Postgres = cfg.Postgres
	redact(&out.Postgres.DSN)
	redact(&out.Postgres.Password)

	// Redis
	out.Redis = cfg.Redis
	redact(&out.Redis.Password)

	// S3
	out.S3 = cfg.S3
	redact(&out.S3.AccessKey)
	redact(&out.S3.SecretKey)

	// Server
	out.Server = cfg.Server
	redact(&out.Server.APIKey)

	// Notify
	out.Notify = cfg.Notify
	redact(&out.Notify.TelegramToken)
	redact(&out.Notify.DiscordWebhookURL)

	// Assistant
	out.Assistant = cfg.Assistant
	redact(&out.Assistant.APIKey)

	// Copy slices so callers cannot mutate the original through the redacted
	// copy.
	if cfg.Detector.WatchSymbols != nil {
		out.Detector.WatchSymbols = make([]string, len(cfg.Detector.WatchSymbols))
		copy(out.Detector.WatchSymbols, cfg.Detector.WatchSymbols)
	}
	if cfg.Kafka.Brokers != nil {
		out.Kafka.Brokers = make([]string, len(cfg.Kafka.Brokers))
		copy(out.Kafka.Brokers, cfg.Kafka.Brokers)
	}
	if cfg.Notify.Events != nil {
		out.Notify.Events = make([]string, len(cfg.Notify.Events))
		copy(out.Notify.Events, cfg.Notify.Events)
	}
	if cfg.Server.CORSOrigins != nil {
		out.Server.CORSOrigins = make([]string, len(cfg.Server.CORSOrigins))
		copy(out.Server.CORSOrigins, cfg.Server.CORSOrigins)
	}

	return out
}

const redacted = "***"

// redact replaces a non-empty string with the redacted placeholder.
func redact(s *string) {
	if *s != "" {
		*s = redacted
	}
}
