package driver

import (
	"cohere/internal/catalog"
	"cohere/internal/diag"
	"cohere/internal/observ"
)

// Options configure a check run. Zero values are usable.
type Options struct {
	MaxDiagnostics int // на единицу; 0 = значение по умолчанию diag.NewBag
	Jobs           int // 0 = GOMAXPROCS
	// Catalog supplies extern traits; nil means the embedded catalog.
	Catalog *catalog.Catalog
	Cache   *DiskCache
	Timer   *observ.Timer
	// Progress получает события по файлам, может быть nil.
	Progress ProgressSink
	// Sink additionally receives every diagnostic of every unit.
	// Calls are serialized by the driver.
	Sink diag.Reporter
}

func (o *Options) catalog() *catalog.Catalog {
	if o.Catalog == nil {
		o.Catalog = catalog.Default()
	}
	return o.Catalog
}
