package state

import (
	"net/url"
	"strconv"

	"github.com/inaciosamuel465/estateflow/internal/models"
)

// DeepLink is the resolved landing target for a shared URL. Kind is empty
// when the query carried no recognizable target; unknown ids resolve to an
// empty result rather than an error so the caller can fall through to the
// default landing view.
type DeepLink struct {
	Kind     string           `json:"kind,omitempty"`
	Property *models.Property `json:"property,omitempty"`
}

// ResolveDeepLink inspects the query values of a shared link and returns the
// property it points at. Historical links carried numeric ids, so a value
// that parses as an integer is also matched against its canonical decimal
// form.
func (c *Controller) ResolveDeepLink(query url.Values) DeepLink {
	id := query.Get("id")
	if id == "" {
		return DeepLink{}
	}
	if p, ok := c.store.PropertyByID(id); ok {
		return DeepLink{Kind: "property", Property: &p}
	}
	if n, err := strconv.Atoi(id); err == nil {
		canonical := strconv.Itoa(n)
		if canonical != id {
			if p, ok := c.store.PropertyByID(canonical); ok {
				return DeepLink{Kind: "property", Property: &p}
			}
		}
	}
	return DeepLink{}
}
