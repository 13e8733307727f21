package state

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inaciosamuel465/estateflow/internal/models"
)

func TestResolveDeepLink(t *testing.T) {
	c := newTestController(newFakeRemote())
	c.Store().SetProperties([]models.Property{
		{Base: models.Base{ID: "a1b2"}, Title: "Casa Azul"},
		{Base: models.Base{ID: "42"}, Title: "Casa Antiga"},
	})

	t.Run("matches canonical id", func(t *testing.T) {
		got := c.ResolveDeepLink(url.Values{"id": {"a1b2"}})
		require.NotNil(t, got.Property)
		assert.Equal(t, "property", got.Kind)
		assert.Equal(t, "Casa Azul", got.Property.Title)
	})

	t.Run("coerces legacy numeric forms", func(t *testing.T) {
		got := c.ResolveDeepLink(url.Values{"id": {"042"}})
		require.NotNil(t, got.Property)
		assert.Equal(t, "Casa Antiga", got.Property.Title)
	})

	t.Run("no id is a no-op", func(t *testing.T) {
		got := c.ResolveDeepLink(url.Values{})
		assert.Empty(t, got.Kind)
		assert.Nil(t, got.Property)
	})

	t.Run("unknown id is a silent no-op", func(t *testing.T) {
		got := c.ResolveDeepLink(url.Values{"id": {"nope"}})
		assert.Empty(t, got.Kind)
		assert.Nil(t, got.Property)
	})
}
