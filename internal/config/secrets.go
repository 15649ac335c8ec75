package config

// RedactedConfig returns a shallow copy of cfg with sensitive fields replaced
// by the redaction placeholder "***". Use this when logging or printing the
// active configuration so secrets are never accidentally exposed.
func RedactedConfig(cfg *Config) Config {
	out := *cfg // shallow copy of the top-level struct

	redact(&out.Feed.BearerToken)

	redact(&out.Wallet.PrivateKey)
	redact(&out.Wallet.KeyPassword)

	redact(&out.Journal.DSN)
	redact(&out.Journal.Password)

	redact(&out.Redis.Password)

	redact(&out.Archive.AccessKey)
	redact(&out.Archive.SecretKey)

	redact(&out.Server.APIKey)

	redact(&out.Notify.TelegramToken)
	redact(&out.Notify.DiscordWebhook)

	// Copy slices and maps so callers cannot mutate the original through the
	// redacted copy.
	if cfg.Engine.DenyTerms != nil {
		out.Engine.DenyTerms = make([]string, len(cfg.Engine.DenyTerms))
		copy(out.Engine.DenyTerms, cfg.Engine.DenyTerms)
	}
	if cfg.Engine.Lexicon != nil {
		out.Engine.Lexicon = make(map[string]float64, len(cfg.Engine.Lexicon))
		for k, v := range cfg.Engine.Lexicon {
			out.Engine.Lexicon[k] = v
		}
	}
	if cfg.Server.CORSOrigins != nil {
		out.Server.CORSOrigins = make([]string, len(cfg.Server.CORSOrigins))
		copy(out.Server.CORSOrigins, cfg.Server.CORSOrigins)
	}
	if cfg.Notify.Events != nil {
		out.Notify.Events = make([]string, len(cfg.Notify.Events))
		copy(out.Notify.Events, cfg.Notify.Events)
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
