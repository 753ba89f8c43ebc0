package client

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/solfarms/solfarm/common"
	"github.com/solfarms/solfarm/ledger"
	"github.com/solfarms/solfarm/names"
	"github.com/solfarms/solfarm/refdb"
	"github.com/solfarms/solfarm/registry"
)

// entityCache keeps one entity kind's directory records and decoded
// entities in memory. Consistency is revision-based: every refresh
// compares the directory header counter against the locally cached one
// and throws the entity cache away when they differ.
//
// The cache is single-owner. Client is documented as not safe for
// concurrent use, so there is no locking here.
type entityCache[T any] struct {
	reg         *registry.Registry
	storageName string
	decode      func([]byte) (T, error)

	refs     map[string]solana.PublicKey
	order    []string
	aliases  map[string]string
	entities map[string]T
	revision uint32
	loaded   bool
}

func newEntityCache[T any](reg *registry.Registry, storageName string, decode func([]byte) (T, error)) entityCache[T] {
	return entityCache[T]{
		reg:         reg,
		storageName: storageName,
		decode:      decode,
	}
}

// ensure loads or refreshes the directory records. The directory
// account itself is fetched on every call; decoded entities survive as
// long as the directory revision stands still.
func (c *entityCache[T]) ensure(ctx context.Context, lg ledger.Client) error {
	address, err := c.reg.RefdbAddress(c.storageName)
	if err != nil {
		return fmt.Errorf("derive %s directory: %w", c.storageName, err)
	}
	data, err := lg.GetAccountData(ctx, address)
	if err != nil {
		return fmt.Errorf("load %s directory: %w", c.storageName, err)
	}
	if !refdb.IsInitialized(data) {
		return fmt.Errorf("%s directory %s is not initialized", c.storageName, address)
	}
	header, err := refdb.DecodeHeader(data)
	if err != nil {
		return err
	}
	if c.loaded && header.Counter == c.revision {
		return nil
	}

	records, err := refdb.Records(data)
	if err != nil {
		return fmt.Errorf("read %s directory: %w", c.storageName, err)
	}
	c.refs = make(map[string]solana.PublicKey, len(records))
	c.order = make([]string, 0, len(records))
	for _, rec := range records {
		if rec.Reference.Type != refdb.ReferencePubkey {
			continue
		}
		if _, dup := c.refs[rec.Name]; !dup {
			c.order = append(c.order, rec.Name)
		}
		c.refs[rec.Name] = rec.Reference.Pubkey
	}
	c.aliases = names.LatestVersions(c.order)
	c.entities = make(map[string]T)
	c.revision = header.Counter
	c.loaded = true
	return nil
}

// resolve maps an unversioned name to the latest version's full name.
func (c *entityCache[T]) resolve(name string) string {
	if _, ok := c.refs[name]; ok {
		return name
	}
	if full, ok := c.aliases[name]; ok {
		return full
	}
	return name
}

// ref returns the account address a name points at.
func (c *entityCache[T]) ref(ctx context.Context, lg ledger.Client, name string) (solana.PublicKey, error) {
	if err := c.ensure(ctx, lg); err != nil {
		return solana.PublicKey{}, err
	}
	key, ok := c.refs[c.resolve(name)]
	if !ok {
		return solana.PublicKey{}, fmt.Errorf("%s %q: %w", c.storageName, name, common.ErrRecordNotFound)
	}
	return key, nil
}

// get returns one decoded entity, fetching its account on a cache miss.
func (c *entityCache[T]) get(ctx context.Context, lg ledger.Client, name string) (T, error) {
	var zero T
	if err := c.ensure(ctx, lg); err != nil {
		return zero, err
	}
	full := c.resolve(name)
	if entity, ok := c.entities[full]; ok {
		return entity, nil
	}
	key, ok := c.refs[full]
	if !ok {
		return zero, fmt.Errorf("%s %q: %w", c.storageName, name, common.ErrRecordNotFound)
	}
	data, err := lg.GetAccountData(ctx, key)
	if err != nil {
		return zero, fmt.Errorf("load %s %q: %w", c.storageName, name, err)
	}
	entity, err := c.decode(data)
	if err != nil {
		return zero, fmt.Errorf("decode %s %q: %w", c.storageName, name, err)
	}
	c.entities[full] = entity
	return entity, nil
}

// all returns every entity in directory order, bulk loading whatever
// the cache is missing in one paged multi-account fetch. A directory
// record pointing at a missing account is a hard error: the directory
// and the accounts it names are maintained together, so a dangling
// reference means the deployment is broken.
func (c *entityCache[T]) all(ctx context.Context, lg ledger.Client) (map[string]T, error) {
	if err := c.ensure(ctx, lg); err != nil {
		return nil, err
	}
	var missing []string
	for _, name := range c.order {
		if _, ok := c.entities[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		keys := make([]solana.PublicKey, len(missing))
		for i, name := range missing {
			keys[i] = c.refs[name]
		}
		accounts, err := lg.GetMultipleAccounts(ctx, keys)
		if err != nil {
			return nil, fmt.Errorf("bulk load %s: %w", c.storageName, err)
		}
		for i, data := range accounts {
			if data == nil {
				return nil, fmt.Errorf("%s %q points at missing account %s: %w",
					c.storageName, missing[i], keys[i], common.ErrRecordNotFound)
			}
			entity, err := c.decode(data)
			if err != nil {
				return nil, fmt.Errorf("decode %s %q: %w", c.storageName, missing[i], err)
			}
			c.entities[missing[i]] = entity
		}
	}
	out := make(map[string]T, len(c.order))
	for _, name := range c.order {
		out[name] = c.entities[name]
	}
	return out, nil
}

// listNames returns every record name in directory order.
func (c *entityCache[T]) listNames(ctx context.Context, lg ledger.Client) ([]string, error) {
	if err := c.ensure(ctx, lg); err != nil {
		return nil, err
	}
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out, nil
}

// findByRef reverse-maps an account address to its record name.
func (c *entityCache[T]) findByRef(ctx context.Context, lg ledger.Client, key solana.PublicKey) (string, error) {
	if err := c.ensure(ctx, lg); err != nil {
		return "", err
	}
	for _, name := range c.order {
		if c.refs[name].Equals(key) {
			return name, nil
		}
	}
	return "", fmt.Errorf("%s ref %s: %w", c.storageName, key, common.ErrRecordNotFound)
}

// insertOptimistic records a reference the client just asked the chain
// to add, without waiting for the next directory refresh.
func (c *entityCache[T]) insertOptimistic(name string, key solana.PublicKey) {
	if !c.loaded {
		return
	}
	if _, dup := c.refs[name]; !dup {
		c.order = append(c.order, name)
	}
	c.refs[name] = key
	c.aliases = names.LatestVersions(c.order)
	delete(c.entities, name)
}

// removeOptimistic drops a reference the client just asked the chain to
// delete.
func (c *entityCache[T]) removeOptimistic(name string) {
	if !c.loaded {
		return
	}
	if _, ok := c.refs[name]; !ok {
		return
	}
	delete(c.refs, name)
	delete(c.entities, name)
	for i, n := range c.order {
		if n == name {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	c.aliases = names.LatestVersions(c.order)
}

// reset empties the cache so the next call reloads from chain.
func (c *entityCache[T]) reset() {
	c.refs = nil
	c.order = nil
	c.aliases = nil
	c.entities = nil
	c.revision = 0
	c.loaded = false
}
