// Package config resolves forge settings from built-in defaults, the user
// config at ~/.forge/config.yaml, the repository's forge.yaml and FORGE_*
// environment variables, in that order of precedence. The repository file is
// validated against an embedded JSON schema before it is merged.
package config
