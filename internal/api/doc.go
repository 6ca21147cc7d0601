// Package api is the REST client for the investigation backend.
package api

import "github.com/user/tigerwatch/internal/types"

// Compile-time interface compliance check.
var _ types.InvestigationAPI = (*Client)(nil)
