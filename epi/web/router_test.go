package web

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"github.com/epihealth/epi-app/epi/service"
)

type RouterTestSuite struct {
	suite.Suite
	router http.Handler
}

func (s *RouterTestSuite) SetupTest() {
	api := &API{
		classifier: &service.MockClassifier{},
		insights:   &service.MockInsights{},
		cfg:        service.LoadConfig(),
	}
	s.router = api.NewAPIRouter()
}

func TestRouterTestSuite(t *testing.T) {
	suite.Run(t, new(RouterTestSuite))
}

func (s *RouterTestSuite) TestUnknownRoute() {
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/nope", nil))
	assert.Equal(s.T(), http.StatusNotFound, w.Code)
}

func (s *RouterTestSuite) TestClassifyRequiresPost() {
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/rules/classify-episode", nil))
	assert.Equal(s.T(), http.StatusMethodNotAllowed, w.Code)
}

func (s *RouterTestSuite) TestConnectionCloseHeader() {
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, httptest.NewRequest("GET", "/_version", nil))
	assert.Equal(s.T(), "close", w.Header().Get("Connection"))
}

func (s *RouterTestSuite) TestHTTPRouterRedirects() {
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "http://example.com/api/v1/episodes", nil)
	NewHTTPRouter().ServeHTTP(w, req)

	assert.Equal(s.T(), http.StatusMovedPermanently, w.Code)
	assert.Equal(s.T(), "https://example.com/api/v1/episodes", w.Header().Get("Location"))
}
