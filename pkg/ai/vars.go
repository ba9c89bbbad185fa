package ai

import "time"

type SeedGeneratorFnType func() int64

// Seeds the generator of strategies created without an explicit *rand.Rand,
// by default uses current time in nanoseconds
var SeedGeneratorFn SeedGeneratorFnType = func() int64 {
	return time.Now().UnixNano()
}

// Set custom seed generator function, nil is ignored
func SetSeedGeneratorFn(f SeedGeneratorFnType) {
	if f != nil {
		SeedGeneratorFn = f
	}
}
