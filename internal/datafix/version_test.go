package datafix

import "testing"

func TestShouldRun(t *testing.T) {
	cases := []struct {
		name         string
		stored       int
		hasStored    bool
		special      bool
		wantRun      bool
		wantPrevious int
	}{
		{"unversioned", 0, false, false, true, VersionDefault},
		{"unversioned special", 0, false, true, true, VersionDefaultSpecial},
		{"current", VersionCurrent, true, false, false, VersionCurrent},
		{"current special", VersionCurrent, true, true, false, VersionCurrent},
		{"new", VersionNew, true, false, false, VersionNew},
		{"new special", VersionNew, true, true, false, VersionNew},
		{"pre material rework", VersionPreMaterialRework, true, false, true, VersionPreMaterialRework},
		{"pre capacitor", VersionPreCapacitorRemapping, true, true, true, VersionPreCapacitorRemapping},
		{"stored default", VersionDefault, true, true, true, VersionDefault},
		{"stored default special", VersionDefaultSpecial, true, false, true, VersionDefaultSpecial},
		{"newer format", VersionCurrent + 1, true, false, true, VersionCurrent + 1},
	}
	for _, tc := range cases {
		d := ShouldRun(tc.stored, tc.hasStored, tc.special)
		if d.Run != tc.wantRun {
			t.Fatalf("%s: run=%t want %t", tc.name, d.Run, tc.wantRun)
		}
		if d.Run && d.Previous != tc.wantPrevious {
			t.Fatalf("%s: previous=%d want %d", tc.name, d.Previous, tc.wantPrevious)
		}
	}
}

func TestShouldRun_IdempotentAfterPersistingCurrent(t *testing.T) {
	cases := []struct {
		v       int
		ok      bool
		special bool
		run     bool
		prev    int
	}{
		{0, false, false, true, VersionDefault},
		{0, false, true, true, VersionDefaultSpecial},
		{VersionDefaultSpecial, true, false, true, VersionDefaultSpecial},
		{VersionDefault, true, true, true, VersionDefault},
		{VersionPreMaterialRework, true, false, true, VersionPreMaterialRework},
		{VersionPreCapacitorRemapping, true, true, true, VersionPreCapacitorRemapping},
		{VersionCurrent, true, false, false, VersionCurrent},
		{VersionNew, true, true, false, VersionNew},
		{VersionCurrent + 7, true, false, true, VersionCurrent + 7},
	}
	for _, tc := range cases {
		first := ShouldRun(tc.v, tc.ok, tc.special)
		if first.Run != tc.run || first.Previous != tc.prev {
			t.Fatalf("stored=%d ok=%t special=%t: first gate %+v", tc.v, tc.ok, tc.special, first)
		}

		// The caller persists VersionCurrent after the pass.
		stored, ok := tc.v, tc.ok
		if first.Run {
			stored, ok = VersionCurrent, true
		}
		second := ShouldRun(stored, ok, tc.special)
		if second.Run {
			t.Fatalf("stored=%d ok=%t special=%t: second gate ran %+v", tc.v, tc.ok, tc.special, second)
		}
	}
}

func TestVersionNew_NeverMatchesThresholds(t *testing.T) {
	for _, threshold := range []int{VersionDefaultSpecial, VersionDefault, VersionPreMaterialRework, VersionPreCapacitorRemapping, VersionCurrent} {
		if AtMost(threshold)(VersionNew) {
			t.Fatalf("NEW must not satisfy <= %d", threshold)
		}
	}
	if !Exactly(VersionNew)(VersionNew) {
		t.Fatalf("equality against NEW must hold")
	}
}

func TestDecision_Newer(t *testing.T) {
	if !ShouldRun(VersionCurrent+1, true, false).Newer() {
		t.Fatalf("expected newer")
	}
	if ShouldRun(VersionNew, true, false).Newer() {
		t.Fatalf("NEW is not a newer format")
	}
	if ShouldRun(0, false, false).Newer() {
		t.Fatalf("unversioned is not newer")
	}
}
