// verificar revisa la configuración y las dependencias del servicio de facturación sin emitir nada:
// directorios de artefactos, PostgreSQL (folio máximo), colecciones de bitácora en MongoDB, Redis y
// el contador de folios en archivo.
//
// Uso: go run ./cmd/verificar
// Sale con código 1 si alguna dependencia obligatoria falla.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jhoicas/facturacion-api/internal/domain/entity"
	infraMongo "github.com/jhoicas/facturacion-api/internal/infrastructure/mongo"
	"github.com/jhoicas/facturacion-api/internal/infrastructure/postgres"
	infraRedis "github.com/jhoicas/facturacion-api/internal/infrastructure/redis"
	"github.com/jhoicas/facturacion-api/internal/infrastructure/storage"
	"github.com/jhoicas/facturacion-api/pkg/config"
	"github.com/jhoicas/facturacion-api/pkg/logger"
)

type report struct {
	failed bool
}

func (r *report) ok(name, detail string) {
	fmt.Printf("  [OK]    %-22s %s\n", name, detail)
}

func (r *report) warn(name string, err error) {
	fmt.Printf("  [AVISO] %-22s %v\n", name, err)
}

func (r *report) fail(name string, err error) {
	r.failed = true
	fmt.Printf("  [FALLA] %-22s %v\n", name, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.NewWriter(os.Stderr, cfg.App.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	r := &report{}
	fmt.Println("Configuración")
	fmt.Printf("  entorno=%s prefijo=%s iva=%s%% moneda=%s pdf=%s artefactos=%s\n",
		cfg.App.Env, cfg.Billing.InvoicePrefix, cfg.Billing.TaxRate.Shift(2), cfg.Billing.Currency,
		cfg.Billing.PrintableEncoding, cfg.Artifacts.Backend)

	fmt.Println("Artefactos")
	if cfg.Artifacts.Backend == "fs" {
		fsStore := storage.NewFSStore(cfg.Artifacts)
		if err := fsStore.EnsureDirs(); err != nil {
			r.fail("directorios", err)
		} else {
			for area, dir := range fsStore.Dirs() {
				infos, err := fsStore.List(ctx, area)
				if err != nil {
					r.fail(string(area), err)
					continue
				}
				r.ok(string(area), fmt.Sprintf("%s (%d archivos)", dir, len(infos)))
			}
		}
	} else if _, err := storage.NewArtifactStore(ctx, cfg.Artifacts); err != nil {
		r.fail(cfg.Artifacts.Backend, err)
	} else {
		r.ok(cfg.Artifacts.Backend, "cliente configurado")
	}

	counter := storage.NewCounterFile(cfg.Billing.FolioFile)
	if v, err := counter.Read(); err != nil {
		r.warn("contador de folios", err)
	} else {
		r.ok("contador de folios", fmt.Sprintf("%s = %d", cfg.Billing.FolioFile, v))
	}

	fmt.Println("PostgreSQL")
	if pool, err := postgres.NewPool(ctx, cfg.DB); err != nil {
		r.fail("conexión", err)
	} else {
		if err := postgres.Ping(ctx, pool, 5*time.Second); err != nil {
			r.fail("conexión", err)
		} else if maxFolio, err := postgres.NewInvoiceRepository(pool).MaxFolio(ctx); err != nil {
			r.fail("folio máximo", err)
		} else {
			r.ok("folio máximo", fmt.Sprintf("%d", maxFolio))
		}
		pool.Close()
	}

	fmt.Println("MongoDB")
	if !cfg.Mongo.Enabled() {
		r.ok("bitácora", "desactivada (MONGO_URI vacío)")
	} else if store, err := infraMongo.Connect(ctx, cfg.Mongo, log); err != nil {
		r.warn("conexión", err)
	} else {
		for _, c := range []entity.LogCategory{entity.CategoryBilling, entity.CategorySystem} {
			exists, err := store.Exists(ctx, c)
			switch {
			case err != nil:
				r.warn(string(c), err)
			case !exists:
				r.warn(string(c), fmt.Errorf("colección no creada (se crea al iniciar la API)"))
			default:
				r.ok(string(c), "colección presente")
			}
		}
		_ = store.Close(ctx)
	}

	fmt.Println("Redis")
	if !cfg.Redis.Enabled() {
		r.ok("candado de folios", "desactivado (REDIS_ADDR vacío)")
	} else if client, err := infraRedis.NewClient(ctx, cfg.Redis); err != nil {
		r.warn("candado de folios", err)
	} else {
		r.ok("candado de folios", cfg.Redis.Addr)
		_ = client.Close()
	}

	if r.failed {
		os.Exit(1)
	}
	fmt.Println("Sistema listo")
}
