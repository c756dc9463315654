// Package health reports process liveness. The endpoint is a liveness
// probe, not a readiness probe: it answers as long as the process runs
// and deliberately checks no dependencies, so a degraded store or LLM
// never takes the service out of rotation.
package health

import "github.com/querymorph/querymorph/internal/version"

// Report is the liveness response body.
type Report struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// Service answers liveness probes.
type Service struct{}

// New creates a health service.
func New() *Service {
	return &Service{}
}

// Check reports the process as healthy.
func (s *Service) Check() Report {
	return Report{Status: "healthy", Version: version.Version}
}
