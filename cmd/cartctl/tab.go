package main

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/gaylashop/storefront/internal/broadcast"
	cartapp "github.com/gaylashop/storefront/internal/cart/app"
	cartadapter "github.com/gaylashop/storefront/internal/cart/infra/adapter"
	"github.com/gaylashop/storefront/internal/cart/infra/localstorage"
	"github.com/gaylashop/storefront/internal/cart/tabsync"
	"github.com/gaylashop/storefront/internal/cart/view"
	catalogapp "github.com/gaylashop/storefront/internal/catalog/app"
	catalogsqlite "github.com/gaylashop/storefront/internal/catalog/infra/sqlite"
	checkoutapp "github.com/gaylashop/storefront/internal/checkout/app"
	checkoutadapter "github.com/gaylashop/storefront/internal/checkout/infra/adapter"
	"github.com/gaylashop/storefront/internal/delivery"
	orderapp "github.com/gaylashop/storefront/internal/order/app"
	ordersqlite "github.com/gaylashop/storefront/internal/order/infra/sqlite"
	"github.com/gaylashop/storefront/internal/storage"
	"github.com/gaylashop/storefront/internal/storage/filestore"
	"github.com/gaylashop/storefront/internal/storage/sqlitestore"
	"github.com/gaylashop/storefront/pkg/config"
	"github.com/gaylashop/storefront/pkg/sqlite"
)

// tab is one view of the shared storage area: its own storage handle,
// broadcast channel, cart store and synchronizer.
type tab struct {
	store *cartapp.Store
	sync  *tabsync.Synchronizer
	badge *view.Badge

	closers []func() error
}

type backend interface {
	storage.Storage
	storage.Watcher
}

func openTab(ctx context.Context, cfg *config.Config, log *zap.Logger) (*tab, error) {
	t := &tab{}

	var area backend
	switch cfg.Storage.Backend {
	case config.BackendSQLite:
		db, err := sqlite.Open(sqlite.Config{Path: cfg.Path(cfg.Storage.SQLiteFile)})
		if err != nil {
			return nil, err
		}
		t.closers = append(t.closers, db.Close)

		st, err := sqlitestore.New(ctx, db,
			sqlitestore.WithPollInterval(cfg.GetPollInterval()),
			sqlitestore.WithLogger(log),
		)
		if err != nil {
			t.close()
			return nil, err
		}
		area = st
	default:
		st, err := filestore.Open(filepath.Join(cfg.Storage.DataDir, "localstorage"), log)
		if err != nil {
			return nil, err
		}
		area = st
	}

	ch := broadcast.New()
	t.closers = append(t.closers, func() error { ch.Close(); return nil })

	adapter := localstorage.NewAdapter(area, ch, log, localstorage.WithMaxLines(cfg.Cart.MaxLines))
	t.store = cartapp.NewStore(adapter,
		cartapp.WithMaxLines(cfg.Cart.MaxLines),
		cartapp.WithLogger(log),
	)
	t.sync = tabsync.New(adapter, ch, area, log)
	t.sync.ReloadOnRemote(t.store)
	t.badge = view.NewBadge()
	t.badge.Bind(t.sync)

	return t, nil
}

func (t *tab) close() error {
	var first error
	for i := len(t.closers) - 1; i >= 0; i-- {
		if err := t.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	t.closers = nil
	return first
}

// shop holds the catalog, order and checkout services backed by the shop
// database.
type shop struct {
	db       *sql.DB
	catalog  *catalogapp.Service
	lines    *cartadapter.CatalogServiceReader
	orders   *orderapp.Service
	checkout *checkoutapp.Service
}

func openShop(ctx context.Context, cfg *config.Config, t *tab, log *zap.Logger) (*shop, error) {
	table := make(map[int]delivery.Rate, len(cfg.Delivery.Rates))
	for code, r := range cfg.Delivery.Rates {
		table[code] = delivery.Rate{
			Stopdesk: decimal.NewFromInt(r.Stopdesk),
			Domicile: decimal.NewFromInt(r.Domicile),
		}
	}
	rates, err := delivery.NewRates(table)
	if err != nil {
		return nil, fmt.Errorf("delivery rates: %w", err)
	}

	db, err := sqlite.Open(sqlite.Config{Path: cfg.Path(cfg.Shop.SQLiteFile)})
	if err != nil {
		return nil, err
	}

	productRepo, err := catalogsqlite.NewProductRepo(ctx, db)
	if err != nil {
		db.Close()
		return nil, err
	}
	orderRepo, err := ordersqlite.NewOrderRepo(ctx, db)
	if err != nil {
		db.Close()
		return nil, err
	}

	catalogSvc := catalogapp.NewService(productRepo)
	orderSvc := orderapp.NewService(orderRepo)

	return &shop{
		db:      db,
		catalog: catalogSvc,
		lines:   cartadapter.NewCatalogServiceReader(catalogSvc),
		orders:  orderSvc,
		checkout: checkoutapp.NewService(
			checkoutadapter.NewCartStoreReader(t.store),
			checkoutadapter.NewCatalogServiceReader(catalogSvc),
			rates,
			checkoutadapter.NewOrderServiceWriter(orderSvc),
			log,
			10,
		),
	}, nil
}
