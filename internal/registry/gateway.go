package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/authguard/internal/autherr"
	"github.com/dmitrijs2005/authguard/internal/common"
	"github.com/dmitrijs2005/authguard/internal/logging"
	"github.com/dmitrijs2005/authguard/internal/report"
)

// Gateway is the null-safe, self-healing accessor over the user registry.
// It is the single place where stored bytes become validated User values:
// callers never see a structurally incomplete record, because incomplete
// records are repaired and re-persisted here before they leave the
// gateway.
type Gateway struct {
	store    Store
	logger   logging.Logger
	reporter *report.Reporter
	locks    *keyedMutex
}

func NewGateway(store Store, logger logging.Logger, reporter *report.Reporter) *Gateway {
	return &Gateway{
		store:    store,
		logger:   logger.With("component", "registry"),
		reporter: reporter,
		locks:    newKeyedMutex(),
	}
}

// EnsureStorageInitialized creates any missing storage structures with
// safe empty defaults. Idempotent; called on every startup.
func (g *Gateway) EnsureStorageInitialized(ctx context.Context) error {
	if err := g.store.Init(ctx); err != nil {
		e := autherr.New(autherr.CategoryRegistry, false, err)
		g.reporter.Report(ctx, e, "registry.init")
		return e
	}
	return nil
}

// GetUser looks up a user record. Absent identifiers yield
// common.ErrorNotFound. A record with missing optional substructures is
// repaired in place, persisted, and reported exactly once as a REGISTRY
// recovery; the repaired record is returned. The whole lookup-repair
// sequence holds the identifier's lock.
func (g *Gateway) GetUser(ctx context.Context, identifier string) (*User, error) {
	unlock := g.locks.lock(identifier)
	defer unlock()

	data, err := g.store.Get(ctx, identifier)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		e := autherr.New(autherr.CategoryRegistry, false, err)
		g.reporter.Report(ctx, e, "registry.getUser")
		return nil, e
	}

	user := &User{}
	if err := json.Unmarshal(data, user); err != nil {
		e := autherr.New(autherr.CategoryRegistry, false, fmt.Errorf("undecodable record %q: %w", identifier, err))
		g.reporter.Report(ctx, e, "registry.getUser")
		return nil, e
	}

	if !ValidateStructure(user) {
		e := autherr.New(autherr.CategoryRegistry, false, fmt.Errorf("record %q is missing identity fields", identifier))
		g.reporter.Report(ctx, e, "registry.getUser")
		return nil, e
	}

	if user.Repair() {
		if err := g.putLocked(ctx, user); err != nil {
			// the repaired record is still safe to return; only the
			// persist failed
			g.reporter.Report(ctx, autherr.New(autherr.CategoryRegistry, false, err), "registry.repairPersist")
		} else {
			g.reporter.Report(ctx,
				autherr.WithMessage(autherr.CategoryRegistry, "stored account record repaired", true, nil),
				"registry.repair")
			g.logger.Info(ctx, "repaired incomplete user record", "user", identifier)
		}
	}

	return user, nil
}

// SaveUser validates the record and writes it atomically under the
// identifier's lock. Structurally invalid input is rejected without any
// write.
func (g *Gateway) SaveUser(ctx context.Context, user *User) error {
	if !ValidateStructure(user) {
		return fmt.Errorf("user record rejected: %w", common.ErrorValidation)
	}

	unlock := g.locks.lock(user.Username)
	defer unlock()

	if err := g.putLocked(ctx, user); err != nil {
		e := autherr.New(autherr.CategoryRegistry, false, err)
		g.reporter.Report(ctx, e, "registry.saveUser")
		return e
	}
	return nil
}

// CreateUser is SaveUser restricted to new identifiers: it fails with
// common.ErrorAlreadyExists when the identifier is taken. The existence
// check and the write happen under the same lock.
func (g *Gateway) CreateUser(ctx context.Context, user *User) error {
	if !ValidateStructure(user) {
		return fmt.Errorf("user record rejected: %w", common.ErrorValidation)
	}

	unlock := g.locks.lock(user.Username)
	defer unlock()

	exists, err := g.store.Exists(ctx, user.Username)
	if err != nil {
		e := autherr.New(autherr.CategoryRegistry, false, err)
		g.reporter.Report(ctx, e, "registry.createUser")
		return e
	}
	if exists {
		return common.ErrorAlreadyExists
	}

	if err := g.putLocked(ctx, user); err != nil {
		e := autherr.New(autherr.CategoryRegistry, false, err)
		g.reporter.Report(ctx, e, "registry.createUser")
		return e
	}
	return nil
}

// putLocked marshals and writes; the caller must hold the identifier's lock.
func (g *Gateway) putLocked(ctx context.Context, user *User) error {
	user.Repair()

	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("marshal user record: %w", err)
	}
	return g.store.Put(ctx, user.Username, data)
}
