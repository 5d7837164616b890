package basis

import (
	"sync"

	"github.com/pkg/errors"
)

type tableKey struct {
	Geom      Geometry
	Order     int
	RuleOrder int
}

// Provider builds tables once per (geometry, order, rule) and shares them.
// Returned tables must be treated as read only.
type Provider struct {
	mu     sync.Mutex
	cache  map[tableKey]*Tables
	builds int
}

func NewProvider() *Provider {
	return &Provider{cache: make(map[tableKey]*Tables)}
}

func (p *Provider) GetBasisTables(geom Geometry, order int, ir IntegrationRule) (tb *Tables, err error) {
	if !geom.IsTensorProduct() {
		err = errors.Errorf("basis: %s is not a tensor product geometry", geom)
		return
	}
	key := tableKey{geom, order, ir.Order}
	p.mu.Lock()
	defer p.mu.Unlock()
	if tb = p.cache[key]; tb != nil {
		return
	}
	if tb, err = NewTables1D(order, ir); err != nil {
		return nil, err
	}
	p.cache[key] = tb
	p.builds++
	return
}

// Builds reports how many distinct table sets have been constructed.
func (p *Provider) Builds() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.builds
}
