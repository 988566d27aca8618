package admin

import (
	"context"

	"github.com/louisbranch/yardconsole/internal/services/admin/resource"
	"github.com/louisbranch/yardconsole/internal/services/admin/workflow"
	"golang.org/x/sync/errgroup"
)

// optionSet holds the loaded choices per option source key.
type optionSet map[string][]workflow.Option

// loadOptions fetches every option source used by def concurrently. A failed
// source is logged and left empty so the form stays usable.
func (h *Handler) loadOptions(ctx context.Context, def resource.Definition) optionSet {
	sources := def.Sources()
	if len(sources) == 0 {
		return optionSet{}
	}
	loaded := make([][]workflow.Option, len(sources))
	var group errgroup.Group
	for idx, key := range sources {
		group.Go(func() error {
			options, err := h.gateway.Options(ctx, key)
			if err != nil {
				h.logf("load options source=%s: %v", key, err)
				return nil
			}
			loaded[idx] = options
			return nil
		})
	}
	_ = group.Wait()

	out := make(optionSet, len(sources))
	for idx, key := range sources {
		out[key] = loaded[idx]
	}
	return out
}
