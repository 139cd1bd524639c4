package ioc_test

import (
	"testing"

	"github.com/centraunit/ioc"
	"github.com/centraunit/ioc/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLoggerRegistry(t *testing.T) (*ioc.Registry, mock.Logger) {
	t.Helper()
	registry := ioc.New()
	logger := mock.NewConsoleLogger()
	_, err := ioc.RegisterInstance[mock.Logger](registry, logger)
	require.NoError(t, err)
	return registry, logger
}

func TestConstructorSelection(t *testing.T) {
	t.Run("WidestWins", func(t *testing.T) {
		registry, logger := newLoggerRegistry(t)
		require.NoError(t, registry.DefineConstructor(mock.NewWidget))
		require.NoError(t, registry.DefineConstructor(mock.NewWidgetWithLogger))
		_, err := ioc.Register[*mock.Widget, *mock.Widget](registry)
		require.NoError(t, err)

		widget, err := ioc.Resolve[*mock.Widget](registry)
		require.NoError(t, err)
		assert.Equal(t, "logger", widget.Via)
		assert.Same(t, logger, widget.Logger)
	})

	t.Run("WidestWinsRegardlessOfOrder", func(t *testing.T) {
		registry, _ := newLoggerRegistry(t)
		require.NoError(t, registry.DefineConstructor(mock.NewWidgetWithLogger))
		require.NoError(t, registry.DefineConstructor(mock.NewWidget))
		_, err := ioc.Register[*mock.Widget, *mock.Widget](registry)
		require.NoError(t, err)

		widget, err := ioc.Resolve[*mock.Widget](registry)
		require.NoError(t, err)
		assert.Equal(t, "logger", widget.Via)
	})

	t.Run("LaterEqualArityWins", func(t *testing.T) {
		registry, _ := newLoggerRegistry(t)
		require.NoError(t, registry.DefineConstructor(mock.NewWidgetWithLogger))
		require.NoError(t, registry.DefineConstructor(mock.NewWidgetWithLoggerAlt))
		_, err := ioc.Register[*mock.Widget, *mock.Widget](registry)
		require.NoError(t, err)

		widget, err := ioc.Resolve[*mock.Widget](registry)
		require.NoError(t, err)
		assert.Equal(t, "logger-alt", widget.Via)
	})

	t.Run("PreferredWins", func(t *testing.T) {
		registry, logger := newLoggerRegistry(t)
		h, err := ioc.Register[*mock.Gadget, *mock.Gadget](registry)
		require.NoError(t, err)
		require.NoError(t, h.Constructor(mock.NewGadget))
		require.NoError(t, h.PreferredConstructor(mock.NewGadgetPreferred))

		gadget, err := ioc.Resolve[*mock.Gadget](registry)
		require.NoError(t, err)
		assert.Equal(t, "preferred", gadget.Via)
		assert.Same(t, logger, gadget.Logger)
		assert.Nil(t, gadget.DB)
	})

	t.Run("FirstPreferredWins", func(t *testing.T) {
		registry, _ := newLoggerRegistry(t)
		require.NoError(t, registry.DefinePreferredConstructor(mock.NewWidgetWithLogger))
		require.NoError(t, registry.DefinePreferredConstructor(mock.NewWidgetWithLoggerAlt))
		_, err := ioc.Register[*mock.Widget, *mock.Widget](registry)
		require.NoError(t, err)

		widget, err := ioc.Resolve[*mock.Widget](registry)
		require.NoError(t, err)
		assert.Equal(t, "logger", widget.Via)
	})

	t.Run("ConstructorsAreSharedAcrossContracts", func(t *testing.T) {
		registry, _ := newLoggerRegistry(t)
		require.NoError(t, registry.DefineConstructor(mock.NewTickClock))
		_, err := ioc.Register[mock.Clock, *mock.TickClock](registry)
		require.NoError(t, err)
		_, err = ioc.Register[*mock.TickClock, *mock.TickClock](registry)
		require.NoError(t, err)

		clock, err := ioc.Resolve[mock.Clock](registry)
		require.NoError(t, err)
		concrete, err := ioc.Resolve[*mock.TickClock](registry)
		require.NoError(t, err)
		assert.NotZero(t, clock.ID())
		assert.NotZero(t, concrete.ID())
	})
}

func TestValueImplementation(t *testing.T) {
	type settings struct {
		Name string
	}

	registry := ioc.New()
	_, err := ioc.Register[settings, settings](registry)
	require.NoError(t, err)

	v, err := ioc.Resolve[settings](registry)
	require.NoError(t, err)
	assert.Equal(t, settings{}, v)

	require.NoError(t, registry.DefineConstructor(func() settings { return settings{Name: "built"} }))
	v, err = ioc.Resolve[settings](registry)
	require.NoError(t, err)
	assert.Equal(t, "built", v.Name)
}
