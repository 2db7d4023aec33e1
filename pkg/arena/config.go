package arena

import (
	"fmt"
	"os"

	"github.com/xyproto/env/v2"

	"github.com/lordwindy/samrena/pkg/vmem"
	"github.com/lordwindy/samrena/pkg/xunsafe/layout"
)

const (
	// DefaultPageSize is the commit granularity used when Config.PageSize is
	// zero.
	DefaultPageSize = 64 << 10

	// MinPageSize is the smallest page size a configuration may override to.
	MinPageSize = 4 << 10

	// DefaultReserve is the reservation used when Config.MaxReserve is zero.
	DefaultReserve = 256 << 20

	// SessionReserve is the reservation of the session preset.
	SessionReserve = 256 << 30

	// GlobalReserve is the reservation of the global preset.
	GlobalReserve = 4 << 40
)

// Config controls arena construction.
//
// The zero value of every field means "use the default"; InitialPages is the
// exception and must be at least 1.
type Config struct {
	// InitialPages is the number of pages committed at construction.
	InitialPages int

	// PageSize overrides the commit page size. Zero selects
	// [DefaultPageSize]; a nonzero value must be at least [MinPageSize] and
	// is rounded up to an OS page multiple.
	PageSize int

	// MaxReserve bounds the reservation in bytes. Zero selects
	// [DefaultReserve]. The value is rounded up to the OS allocation
	// granularity.
	MaxReserve int

	// CommitSize is the granularity the committed range grows by. Zero
	// selects the page size.
	CommitSize int

	// EnableStats maintains allocation counters readable via [Arena.Stats].
	EnableStats bool

	// EnableDebug enables extra invariant checks on every mutation.
	EnableDebug bool

	// Logger receives the single-line message of a configuration validation
	// failure during construction. When nil, that message is written to
	// stderr; no other failure is reported this way.
	Logger func(msg string)
}

// DefaultConfig returns the default configuration: one committed 64 KiB page
// inside a 256 MiB reservation.
//
// The environment variables SAMRENA_MAX_RESERVE, SAMRENA_PAGE_SIZE and
// SAMRENA_DEBUG override the respective fields.
func DefaultConfig() Config {
	return Config{
		InitialPages: 1,
		PageSize:     env.Int("SAMRENA_PAGE_SIZE", 0),
		MaxReserve:   env.Int("SAMRENA_MAX_RESERVE", 0),
		EnableDebug:  env.Bool("SAMRENA_DEBUG"),
	}
}

// SessionConfig returns the session preset: a 256 GiB reservation for
// arenas that live as long as one session or request pipeline.
func SessionConfig() Config {
	cfg := DefaultConfig()
	cfg.MaxReserve = SessionReserve
	return cfg
}

// GlobalConfig returns the global preset: a 4 TiB reservation for one
// process-lifetime arena.
func GlobalConfig() Config {
	cfg := DefaultConfig()
	cfg.MaxReserve = GlobalReserve
	return cfg
}

// validate applies defaults and rejects inconsistent configurations.
func (cfg Config) validate() (Config, error) {
	if cfg.InitialPages < 1 {
		return cfg, fmt.Errorf("%w: InitialPages must be at least 1", ErrInvalidParameter)
	}

	if cfg.PageSize == 0 {
		cfg.PageSize = DefaultPageSize
	} else if cfg.PageSize < MinPageSize {
		return cfg, fmt.Errorf("%w: PageSize %d is below the %d minimum", ErrInvalidParameter, cfg.PageSize, MinPageSize)
	}
	cfg.PageSize = layout.RoundUp(cfg.PageSize, vmem.PageSize())

	if cfg.MaxReserve < 0 || cfg.CommitSize < 0 {
		return cfg, fmt.Errorf("%w: negative size", ErrInvalidParameter)
	}

	if cfg.MaxReserve == 0 {
		cfg.MaxReserve = DefaultReserve
	}
	cfg.MaxReserve = layout.RoundUp(cfg.MaxReserve, vmem.Granularity())

	if cfg.CommitSize == 0 {
		cfg.CommitSize = cfg.PageSize
	}
	cfg.CommitSize = layout.RoundUp(cfg.CommitSize, vmem.PageSize())

	if cfg.InitialPages*cfg.PageSize > cfg.MaxReserve {
		return cfg, fmt.Errorf("%w: initial commit %d exceeds reservation %d",
			ErrInvalidParameter, cfg.InitialPages*cfg.PageSize, cfg.MaxReserve)
	}

	return cfg, nil
}

// report delivers a construction diagnostic: to the configured logger if one
// is installed, else as a single line on stderr.
func (cfg Config) report(err error) {
	if cfg.Logger != nil {
		cfg.Logger(err.Error())
		return
	}
	fmt.Fprintln(os.Stderr, err.Error())
}
