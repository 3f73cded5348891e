package api

import (
	"sync"

	lru "github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/rupfund/memberclient/internal/app/fund"
	"github.com/rupfund/memberclient/internal/app/fund/ethereum"
	"github.com/rupfund/memberclient/internal/app/fund/workflow"
)

// ControllerFactory builds the controller of one member.
type ControllerFactory func(account fund.Account) *workflow.Controller

// Registry keeps one controller per member. The least recently used
// controllers are dropped when the cache is full and their open flows are
// cancelled. A controller with a write still settling is parked instead and
// handed out again by the next Get for its account.
type Registry struct {
	mu       sync.Mutex
	cache    *lru.Cache
	settling map[fund.Account]*workflow.Controller
	factory  ControllerFactory
}

func NewRegistry(size int, factory ControllerFactory, log logrus.FieldLogger) (*Registry, error) {
	r := &Registry{
		settling: make(map[fund.Account]*workflow.Controller),
		factory:  factory,
	}
	// Runs inside cache.Add, which is only called with r.mu held.
	cache, err := lru.NewWithEvict(size, func(key, value interface{}) {
		c := value.(*workflow.Controller)
		busy := false
		for _, cancel := range []func() error{c.CancelContribution, c.CancelPayout} {
			if err := cancel(); err != nil {
				busy = true
			}
		}
		if busy {
			log.WithField("account", key).Info("evicted controller is settling, parking it")
			r.settling[key.(fund.Account)] = c
		}
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to init controller cache")
	}
	r.cache = cache
	return r, nil
}

// Get returns the controller of account, creating it on first use.
func (r *Registry) Get(raw string) (*workflow.Controller, error) {
	account, err := ethereum.ParseAccount(raw)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.cache.Get(account); ok {
		return c.(*workflow.Controller), nil
	}
	c, ok := r.settling[account]
	if ok {
		delete(r.settling, account)
	} else {
		c = r.factory(account)
	}
	r.prune()
	r.cache.Add(account, c)
	return c, nil
}

// prune forgets parked controllers that have settled. Must be called with r.mu held.
func (r *Registry) prune() {
	for account, c := range r.settling {
		if !c.Busy() {
			delete(r.settling, account)
		}
	}
}

// Len counts cached and parked controllers.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cache.Len() + len(r.settling)
}
