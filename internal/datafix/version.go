package datafix

import (
	"fmt"
	"math"
)

const (
	// DataName is the saved-data entry holding fix state. Renaming it forces
	// every fix to run again on every world.
	DataName = "nomilabs.fix_data"
	// DataKey is the key of the stored version inside DataName.
	DataKey = "LabsFixer"
)

const (
	// VersionNew marks a world created without prior content. It must never
	// be migrated; compare it by equality only.
	VersionNew = math.MaxInt32

	// VersionCurrent is the present data format. Bump it on breaking changes,
	// otherwise no fix is applied.
	VersionCurrent = 3

	// VersionPreCapacitorRemapping is the last version whose custom
	// capacitors still carry their old tag data.
	VersionPreCapacitorRemapping = 2

	// VersionPreMaterialRework is the last version whose material meta items
	// use the old registry.
	VersionPreMaterialRework = 1

	// VersionDefault is assumed for stored but unversioned worlds.
	VersionDefault = 0

	// VersionDefaultSpecial is assumed for stored but unversioned worlds when
	// the special (Nomi-CEu specific) fixes are enabled.
	VersionDefaultSpecial = -1
)

// Decision is the outcome of the version gate for one world load.
type Decision struct {
	Run bool
	// Previous is the version fix predicates are evaluated against.
	Previous int

	Stored    int
	HasStored bool
}

// ShouldRun gates a migration pass. stored is ignored when hasStored is false.
func ShouldRun(stored int, hasStored, specialMode bool) Decision {
	d := Decision{Stored: stored, HasStored: hasStored}
	if !hasStored {
		d.Run = true
		d.Previous = VersionDefault
		if specialMode {
			d.Previous = VersionDefaultSpecial
		}
		return d
	}
	if stored == VersionNew || stored == VersionCurrent {
		d.Previous = stored
		return d
	}
	d.Run = true
	d.Previous = stored
	return d
}

// Newer reports a stored version from a later format than this build knows.
func (d Decision) Newer() bool {
	return d.HasStored && d.Stored != VersionNew && d.Stored > VersionCurrent
}

func (d Decision) String() string {
	stored := "none"
	if d.HasStored {
		stored = VersionName(d.Stored)
	}
	return fmt.Sprintf("run=%t previous=%s stored=%s", d.Run, VersionName(d.Previous), stored)
}

func VersionName(v int) string {
	switch v {
	case VersionNew:
		return "NEW"
	case VersionDefault:
		return "DEFAULT(0)"
	case VersionDefaultSpecial:
		return "DEFAULT_SPECIAL(-1)"
	}
	return fmt.Sprintf("%d", v)
}
