package services

import (
	"context"
	"sync/atomic"

	"github.com/iota-uz/orgnav/modules/orgnav/domain/entities"
)

// EntityProvider loads the entity snapshot for a navigation session.
type EntityProvider interface {
	LoadDataset(ctx context.Context) (*entities.Dataset, error)
}

// Catalog holds the current dataset snapshot shared by the navigation services.
// Replacing the snapshot never mutates the previous one.
type Catalog struct {
	current atomic.Pointer[entities.Dataset]
}

func NewCatalog(d *entities.Dataset) *Catalog {
	c := &Catalog{}
	c.Replace(d)
	return c
}

func (c *Catalog) Dataset() *entities.Dataset {
	if d := c.current.Load(); d != nil {
		return d
	}
	return entities.NewDataset(nil, nil, nil, nil)
}

func (c *Catalog) Replace(d *entities.Dataset) {
	if d == nil {
		d = entities.NewDataset(nil, nil, nil, nil)
	}
	c.current.Store(d)
}

// Reload swaps in a fresh snapshot from the provider. On error the current snapshot stays.
func (c *Catalog) Reload(ctx context.Context, p EntityProvider) error {
	d, err := p.LoadDataset(ctx)
	if err != nil {
		return err
	}
	c.Replace(d)
	return nil
}
