// Package validation provides common validation utilities for configuration
// parameters across nexus components.
//
// The helpers return *errors.ValidationError so constructors report
// consistent messages with a remediation hint.
package validation
