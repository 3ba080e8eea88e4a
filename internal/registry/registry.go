// Package registry holds the tracked-operation table: the fixed mapping
// from operation name to operation family that both the rewriter and the
// shadow library dispatch on.
//
// The table is declared in an embedded CUE document and compiled exactly
// once, on first use. It is read-only afterward; there is no registration
// API. CUE's schema constraint rejects unknown families at load time, so a
// bad table is a startup failure rather than a silent misdispatch.
package registry

import (
	_ "embed"
	"fmt"
	"sort"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

//go:embed registry.cue
var registryCUE string

// Family categorizes a tracked operation; each family has one promotion
// policy in the shadow library.
type Family string

const (
	FamilyRandom          Family = "random"
	FamilyConstructor     Family = "constructor"
	FamilyElementary      Family = "elementary"
	FamilyDivision        Family = "division"
	FamilyComplexObserver Family = "complexobserver"
	FamilyStatistical     Family = "statistical"
	FamilyLinalg          Family = "linalg"
	FamilyBinary          Family = "binary"
	FamilyInclude         Family = "include"
)

var validFamilies = map[Family]bool{
	FamilyRandom:          true,
	FamilyConstructor:     true,
	FamilyElementary:      true,
	FamilyDivision:        true,
	FamilyComplexObserver: true,
	FamilyStatistical:     true,
	FamilyLinalg:          true,
	FamilyBinary:          true,
	FamilyInclude:         true,
}

var (
	loadOnce sync.Once
	loadErr  error
	table    map[string]Family
)

func load() {
	ctx := cuecontext.New()
	v := ctx.CompileString(registryCUE, cue.Filename("registry.cue"))
	if err := v.Err(); err != nil {
		loadErr = fmt.Errorf("compiling operation registry: %w", err)
		return
	}
	ops := v.LookupPath(cue.ParsePath("operations"))
	if err := ops.Err(); err != nil {
		loadErr = fmt.Errorf("operation registry missing operations table: %w", err)
		return
	}
	raw := map[string]string{}
	if err := ops.Decode(&raw); err != nil {
		loadErr = fmt.Errorf("decoding operation registry: %w", err)
		return
	}
	m := make(map[string]Family, len(raw))
	for name, fam := range raw {
		f := Family(fam)
		if !validFamilies[f] {
			loadErr = fmt.Errorf("operation %q has unknown family %q", name, fam)
			return
		}
		m[name] = f
	}
	table = m
}

// Lookup returns the family of a tracked operation name.
func Lookup(name string) (Family, bool) {
	loadOnce.Do(load)
	if loadErr != nil {
		panic(loadErr) // malformed embedded table is a build defect
	}
	f, ok := table[name]
	return f, ok
}

// Names returns all tracked operation names, sorted. Used by the CLI's ops
// listing and by tests asserting table completeness.
func Names() []string {
	loadOnce.Do(load)
	if loadErr != nil {
		panic(loadErr)
	}
	names := make([]string, 0, len(table))
	for n := range table {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
