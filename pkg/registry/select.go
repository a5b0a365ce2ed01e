package registry

import (
	"context"
	"fmt"

	"github.com/holon-run/shipit/pkg/prompt"
)

// SelectOptions carries the user's registry flags.
type SelectOptions struct {
	// Skip bypasses selection entirely.
	Skip bool
	// Only restricts selection to these registries without prompting.
	Only []Kind
}

// Select decides which detected registries to publish to. Skip yields an
// empty selection; Only is intersected with detected; otherwise the user
// confirms each registry individually, in detection order.
func Select(ctx context.Context, p prompt.Prompter, detected []Descriptor, opts SelectOptions) ([]Descriptor, error) {
	if opts.Skip || len(detected) == 0 {
		return nil, nil
	}

	if len(opts.Only) > 0 {
		want := map[Kind]bool{}
		for _, k := range opts.Only {
			want[k] = true
		}
		var out []Descriptor
		for _, d := range detected {
			if want[d.Kind] {
				out = append(out, d)
			}
		}
		return out, nil
	}

	var out []Descriptor
	for _, d := range detected {
		ok, err := p.Confirm(ctx, prompt.ConfirmRequest{
			Message: fmt.Sprintf("Publish %s to %s?", d.Name+"@"+d.Version, d.Kind.DisplayName()),
			Default: true,
		})
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, d)
		}
	}
	return out, nil
}
