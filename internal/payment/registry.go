package payment

import "fmt"

// Registry maps gateway codes to their implementation.
type Registry struct {
	gateways map[string]Gateway
}

func NewRegistry(gateways ...Gateway) *Registry {
	r := &Registry{gateways: make(map[string]Gateway)}
	for _, g := range gateways {
		r.Register(g)
	}
	return r
}

func (r *Registry) Register(g Gateway) {
	r.gateways[g.Code()] = g
}

func (r *Registry) Get(code string) (Gateway, error) {
	if g, ok := r.gateways[code]; ok {
		return g, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedGateway, code)
}
