// Package config handles configuration loading for recordgate.
//
// # Configuration File
//
// Default locations (in order):
//
//  1. Path from RECORDGATE_CONFIG environment variable
//  2. $XDG_CONFIG_HOME/recordgate/config.yaml
//  3. ~/.config/recordgate/config.yaml
//
// Files ending in .toml are parsed as TOML; anything else as YAML.
//
// # Environment Variable Expansion
//
// Configuration values can reference environment variables:
//
//	auth:
//	  jwt_secret: "${RECORDGATE_JWT_SECRET}"
//
// # Configuration Sections
//
//	server:
//	  http_addr: "0.0.0.0:3010"
//	  grpc_addr: ""              # empty disables the gRPC service
//
//	store:
//	  backend: "json"            # json, sqlite, postgres, redis
//	  path: "/var/lib/recordgate/data.json"
//
//	auth:
//	  jwt_secret: "${RECORDGATE_JWT_SECRET}"   # at least 32 bytes
//
//	query:
//	  response: "all"            # all or first
//
//	updates:
//	  dir: ""                    # serve update artifacts from here
//	  path: "/updates/"
//
//	logging:
//	  level: "info"              # debug, info, warn, error
//	  format: "text"             # text or json
//
//	tailscale:
//	  enabled: false
//	  hostname: "recordgate"
package config
