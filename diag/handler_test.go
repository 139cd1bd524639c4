package diag_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/centraunit/ioc"
	"github.com/centraunit/ioc/diag"
	"github.com/centraunit/ioc/mock"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRegistry(t *testing.T) *ioc.Registry {
	t.Helper()
	registry := ioc.New()
	_, err := ioc.RegisterInstance[mock.Logger](registry, mock.NewConsoleLogger())
	require.NoError(t, err)

	h, err := ioc.Register[mock.Database, *mock.MockDB](registry)
	require.NoError(t, err)
	h.As(ioc.LifetimeSingleton)
	require.NoError(t, h.Constructor(mock.NewMockDB))

	_, err = ioc.Register[mock.Cache, *mock.MockCache](registry)
	require.NoError(t, err)
	return registry
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestListRegistrations(t *testing.T) {
	registry := newRegistry(t)
	_, err := ioc.Resolve[mock.Database](registry)
	require.NoError(t, err)

	rec := get(t, diag.NewHandler(registry, nil), "/registrations")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var got []ioc.RegistrationInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))

	want := []ioc.RegistrationInfo{
		{Contract: "mock.Cache", Implementation: "*mock.MockCache", Lifetime: "unspecified", EffectiveLifetime: "transient"},
		{Contract: "mock.Database", Implementation: "*mock.MockDB", Lifetime: "singleton", EffectiveLifetime: "singleton", Cached: true},
		{Contract: "mock.Logger", Implementation: "*mock.ConsoleLogger", Lifetime: "singleton", EffectiveLifetime: "singleton", Fixed: true, Cached: true},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("registrations mismatch (-want +got):\n%s", diff)
	}
}

func TestShowRegistration(t *testing.T) {
	h := diag.NewHandler(newRegistry(t), nil)

	rec := get(t, h, "/registrations/"+url.PathEscape("mock.Database"))
	require.Equal(t, http.StatusOK, rec.Code)

	var info ioc.RegistrationInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &info))
	assert.Equal(t, "*mock.MockDB", info.Implementation)
	assert.False(t, info.Cached)

	rec = get(t, h, "/registrations/mock.Unknown")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "mock.Unknown")
}

func TestUnknownRoute(t *testing.T) {
	rec := get(t, diag.NewHandler(ioc.New(), nil), "/nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
