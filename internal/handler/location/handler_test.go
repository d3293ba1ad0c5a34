package location

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/waitingboard/api/internal/model"
	apperrors "github.com/waitingboard/api/pkg/errors"
)

type stubService struct {
	locations []*model.Location
	listErr   error
}

func (s *stubService) List(context.Context) ([]*model.Location, error) {
	return s.locations, s.listErr
}

func (s *stubService) Get(context.Context, int64) (*model.Location, error) {
	return nil, apperrors.NotFound("location", nil)
}

func (s *stubService) Exists(context.Context, string) (bool, error) { return false, nil }

func (s *stubService) Create(_ context.Context, name string) (*model.Location, error) {
	for _, l := range s.locations {
		if l.Name == name {
			return nil, apperrors.Conflict("location already exists", nil)
		}
	}
	l := &model.Location{ID: int64(len(s.locations) + 1), Name: name}
	s.locations = append(s.locations, l)
	return l, nil
}

func (s *stubService) ResolveNames(context.Context, []string) ([]*model.Location, error) {
	return nil, nil
}

func setupRouter(svc *stubService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(svc).RegisterRoutes(r, r)
	return r
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateLocation(t *testing.T) {
	r := setupRouter(&stubService{})

	w := do(r, http.MethodPost, "/locations", `{"name":"Main Clinic"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	var resp model.CreateLocationResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Main Clinic", resp.Location.Name)
	assert.NotEmpty(t, resp.Message)
}

func TestCreateLocationMissingName(t *testing.T) {
	r := setupRouter(&stubService{})

	w := do(r, http.MethodPost, "/locations", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"name is required"}`, w.Body.String())

	w = do(r, http.MethodPost, "/locations", `{"name":"   "}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"name cannot be empty"}`, w.Body.String())
}

func TestCreateLocationDuplicate(t *testing.T) {
	r := setupRouter(&stubService{locations: []*model.Location{{ID: 1, Name: "Main Clinic"}}})

	w := do(r, http.MethodPost, "/locations", `{"name":"Main Clinic"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.JSONEq(t, `{"error":"location already exists"}`, w.Body.String())
}

func TestListLocations(t *testing.T) {
	r := setupRouter(&stubService{locations: []*model.Location{{ID: 1, Name: "Main Clinic"}, {ID: 2, Name: "North"}}})

	w := do(r, http.MethodGet, "/locations", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[{"id":1,"name":"Main Clinic"},{"id":2,"name":"North"}]`, w.Body.String())
}

func TestListLocationsHidesInternalError(t *testing.T) {
	r := setupRouter(&stubService{listErr: errors.New("pq: password authentication failed")})

	w := do(r, http.MethodGet, "/locations", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, w.Body.String())
}
