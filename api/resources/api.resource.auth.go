// FilePath: api/resources/api.resource.auth.go
package resources

import (
	"net/http"
	"reflect"
	"time"

	"github.com/agrirobotics/datalake/internal/auth"
	"github.com/agrirobotics/datalake/internal/errors"
	"github.com/agrirobotics/datalake/internal/ingestservice"
	"github.com/gorilla/schema"
	nuts "github.com/vaudience/go-nuts"
)

// AuthHandlers encapsulates the authentication HTTP handlers
type AuthHandlers struct {
	svc    *ingestservice.IngestService
	tokens *auth.TokenService
}

// formDecoder decodes url-encoded and multipart form fields across all
// handlers. Timestamps arrive as RFC 3339 strings.
var formDecoder = func() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)
	d.RegisterConverter(time.Time{}, func(value string) reflect.Value {
		ts, err := time.Parse(time.RFC3339, value)
		if err != nil {
			return reflect.Value{}
		}
		return reflect.ValueOf(ts)
	})
	return d
}()

type loginForm struct {
	Username string `schema:"username,required"`
	Password string `schema:"password,required"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// @Summary User login
// @Description Authenticate with username and password and receive a bearer token
// @Tags auth
// @Accept x-www-form-urlencoded
// @Produce json
// @Param username formData string true "Username"
// @Param password formData string true "Password"
// @Success 200 {object} tokenResponse
// @Failure 401 {object} errors.APIError
// @Router /token [post]
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)

	if err := r.ParseForm(); err != nil {
		respondWithError(w, errors.NewValidationError("invalid form body", err).WithRequestID(requestID))
		return
	}

	var form loginForm
	if err := formDecoder.Decode(&form, r.PostForm); err != nil {
		respondWithError(w, errors.NewValidationError("username and password are required", err).WithRequestID(requestID))
		return
	}

	user, err := h.svc.Authenticate(r.Context(), form.Username, form.Password)
	if err != nil {
		respondWithAuthChallenge(w, err, requestID)
		return
	}

	token, err := h.tokens.Issue(user.Username)
	if err != nil {
		respondWithError(w, errors.NewInternalError("failed to issue token", err).WithRequestID(requestID))
		return
	}

	respondWithJSON(w, http.StatusOK, tokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
	})
}

// respondWithAuthChallenge writes an auth failure with the bearer
// challenge header required on 401 responses.
func respondWithAuthChallenge(w http.ResponseWriter, err error, requestID string) {
	apiErr, ok := err.(*errors.APIError)
	if !ok {
		apiErr = errors.NewInternalError("authentication failed", err)
	}
	if apiErr.Code == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", "Bearer")
	}
	respondWithError(w, apiErr.WithRequestID(requestID))
}
