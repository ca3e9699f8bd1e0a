// Package config loads and validates gatekeeper configuration from YAML.
//
// # Format
//
// Configuration is a YAML file with environment variable expansion:
// occurrences of ${VAR_NAME} anywhere in the file are replaced with the
// process environment before parsing, so secrets and client IDs stay out of
// the file itself:
//
//	server:
//	  http_addr: ":8000"
//	database:
//	  path: /var/lib/gatekeeper/gatekeeper.db
//	auth:
//	  jwt_secret: ${GATEKEEPER_JWT_SECRET}
//	  jwt_algorithm: HS256
//	  token_ttl: 30m
//	providers:
//	  google:
//	    client_id: ${GOOGLE_CLIENT_ID}
//	  microsoft:
//	    client_id: ${MICROSOFT_CLIENT_ID}
//	    client_secret: ${MICROSOFT_CLIENT_SECRET}
//	    tenant_id: ${MICROSOFT_TENANT_ID}
//	    redirect_uri: ${MICROSOFT_REDIRECT_URI}
//	cors:
//	  allowed_origins: ["http://localhost:3000"]
//	logging:
//	  level: info
//	  format: json
//
// The configuration is parsed once at startup into an immutable Config that
// is passed by reference into each component; nothing reads the environment
// ad hoc at request time.
//
// # Validation
//
// Load fails fast on a missing signing secret, an unsupported signing
// algorithm, a missing database path, or a missing listen address. Durations
// such as token_ttl use Go duration syntax ("30m", "1h").
package config
