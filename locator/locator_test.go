package locator_test

import (
	"errors"
	"reflect"
	"testing"

	"github.com/centraunit/ioc"
	"github.com/centraunit/ioc/locator"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type ShellView struct {
	model any
}

func (v *ShellView) SetModel(model any) { v.model = model }

type ShellViewModel struct {
	Title string
}

type Settings struct{}

type SettingsViewModel struct{}

type AboutView struct{}

type AboutModel struct{}

type OrphanView struct{}

const pkg = "github.com/centraunit/ioc/locator_test"

func TestTypeName(t *testing.T) {
	got := []string{
		locator.TypeName(reflect.TypeOf(ShellView{})),
		locator.TypeName(reflect.TypeOf(&ShellView{})),
		locator.TypeName(reflect.TypeOf(0)),
		locator.TypeName(nil),
	}
	want := []string{pkg + ".ShellView", pkg + ".ShellView", "int", ""}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("TypeName mismatch (-want +got):\n%s", diff)
	}
}

func TestDefaultNameResolver(t *testing.T) {
	got := map[string]string{}
	for _, in := range []string{"app.ShellView", "app.Settings", "app.View"} {
		got[in] = locator.DefaultNameResolver(in)
	}
	want := map[string]string{
		"app.ShellView": "app.ShellViewModel",
		"app.Settings":  "app.SettingsViewModel",
		"app.View":      "app.ViewModel",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("DefaultNameResolver mismatch (-want +got):\n%s", diff)
	}
}

func TestLocateByConvention(t *testing.T) {
	l := locator.New()
	l.RegisterModelType(reflect.TypeOf(&ShellViewModel{}))
	l.RegisterModelType(reflect.TypeOf(SettingsViewModel{}))

	model, err := l.Locate(reflect.TypeOf(&ShellView{}))
	require.NoError(t, err)
	assert.IsType(t, &ShellViewModel{}, model)

	model, err = l.Locate(reflect.TypeOf(Settings{}))
	require.NoError(t, err)
	assert.IsType(t, SettingsViewModel{}, model)
}

func TestLocateNotFound(t *testing.T) {
	l := locator.New()
	_, err := l.Locate(reflect.TypeOf(OrphanView{}))

	var notFound *locator.NotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, pkg+".OrphanView", notFound.View)
	assert.Equal(t, pkg+".OrphanViewModel", notFound.ModelName)
}

func TestFactoryTakesPrecedence(t *testing.T) {
	l := locator.New()
	l.RegisterModelType(reflect.TypeOf(&ShellViewModel{}))
	locator.RegisterFactoryFor[ShellView](l, func() (any, error) {
		return &ShellViewModel{Title: "from factory"}, nil
	})

	model, err := l.Locate(reflect.TypeOf(&ShellView{}))
	require.NoError(t, err)
	assert.Equal(t, "from factory", model.(*ShellViewModel).Title)
}

func TestExplicitTypeAndCustomResolver(t *testing.T) {
	l := locator.New()
	locator.RegisterTypeFor[OrphanView, *ShellViewModel](l)

	model, err := l.Locate(reflect.TypeOf(OrphanView{}))
	require.NoError(t, err)
	assert.IsType(t, &ShellViewModel{}, model)

	l.RegisterModelType(reflect.TypeOf(AboutModel{}))
	_, err = l.Locate(reflect.TypeOf(AboutView{}))
	require.Error(t, err)

	l.SetNameResolver(func(viewName string) string {
		return viewName[:len(viewName)-len("View")] + "Model"
	})
	model, err = l.Locate(reflect.TypeOf(AboutView{}))
	require.NoError(t, err)
	assert.IsType(t, AboutModel{}, model)
}

func TestCustomActivator(t *testing.T) {
	var activated []reflect.Type
	l := locator.New(locator.WithActivator(func(t reflect.Type) (any, error) {
		activated = append(activated, t)
		return &ShellViewModel{Title: "activated"}, nil
	}))
	l.RegisterModelType(reflect.TypeOf(&ShellViewModel{}))

	model, err := l.Locate(reflect.TypeOf(&ShellView{}))
	require.NoError(t, err)
	assert.Equal(t, "activated", model.(*ShellViewModel).Title)
	assert.Equal(t, []reflect.Type{reflect.TypeOf(&ShellViewModel{})}, activated)

	l.SetActivator(nil)
	model, err = l.Locate(reflect.TypeOf(&ShellView{}))
	require.NoError(t, err)
	assert.Empty(t, model.(*ShellViewModel).Title)
}

func TestAutoWire(t *testing.T) {
	l := locator.New()
	l.RegisterModelType(reflect.TypeOf(&ShellViewModel{}))

	view := &ShellView{}
	model, err := l.AutoWire(view)
	require.NoError(t, err)
	assert.Same(t, model, view.model)

	_, err = l.AutoWire(nil)
	assert.Error(t, err)
}

func TestRegistryActivator(t *testing.T) {
	registry := ioc.New()
	shared := &ShellViewModel{Title: "shared"}
	_, err := ioc.RegisterInstance[*ShellViewModel](registry, shared)
	require.NoError(t, err)

	l := locator.New(locator.WithActivator(locator.RegistryActivator(registry)))
	l.RegisterModelType(reflect.TypeOf(&ShellViewModel{}))
	l.RegisterModelType(reflect.TypeOf(SettingsViewModel{}))

	model, err := l.AutoWire(&ShellView{})
	require.NoError(t, err)
	assert.Same(t, shared, model)

	model, err = l.Locate(reflect.TypeOf(Settings{}))
	require.NoError(t, err)
	assert.IsType(t, SettingsViewModel{}, model)
}
