// FilePath: api/resources/resources.go
package resources

import (
	"net/http"

	"github.com/agrirobotics/datalake/internal/auth"
	"github.com/agrirobotics/datalake/internal/ingestservice"
)

// Resources holds all HTTP resource handlers
type Resources struct {
	Auth        *AuthHandlers
	Missions    *MissionHandlers
	Images      *ImageHandlers
	HealthCheck func(w http.ResponseWriter, r *http.Request)
}

// NewResources creates a new Resources instance
func NewResources(svc *ingestservice.IngestService, tokens *auth.TokenService, maxUploadSize int64) *Resources {
	return &Resources{
		Auth:     &AuthHandlers{svc: svc, tokens: tokens},
		Missions: &MissionHandlers{svc: svc},
		Images:   &ImageHandlers{svc: svc, maxUploadSize: maxUploadSize},
	}
}

// SetHealthCheck sets the health check handler
func (r *Resources) SetHealthCheck(h func(w http.ResponseWriter, r *http.Request)) {
	r.HealthCheck = h
}
